package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"reverse-geocoding/internal/filter"
	"reverse-geocoding/internal/page"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AugmentRequest is a batch of records to run through the filter.
type AugmentRequest struct {
	Columns []page.Column       `json:"columns" binding:"required"`
	Records [][]json.RawMessage `json:"records"`
}

// AugmentResponse carries the output schema and the augmented records.
type AugmentResponse struct {
	Columns []page.Column `json:"columns"`
	Records [][]any       `json:"records"`
}

// AugmentHandler runs posted batches through one configured filter task.
type AugmentHandler struct {
	task     filter.Task
	geocoder filter.Geocoder
	pageSize int
}

// NewAugmentHandler creates a new augment handler
func NewAugmentHandler(task filter.Task, geocoder filter.Geocoder, pageSize int) *AugmentHandler {
	return &AugmentHandler{task: task, geocoder: geocoder, pageSize: pageSize}
}

// Augment handles POST /augment requests
func (h *AugmentHandler) Augment(c *gin.Context) {
	var req AugmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	input := page.NewSchema(req.Columns...)
	output, err := filter.Transaction(h.task, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, err := decodeRecords(input, req.Records)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collector := &page.Collector{}
	stream, err := filter.Open(h.task, h.geocoder, input, output, collector, filter.WithPageSize(h.pageSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer stream.Close()

	if err := stream.Add(in); err != nil {
		log.Error().Err(err).Str("stream", stream.ID()).Msg("augment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if err := stream.Finish(); err != nil {
		log.Error().Err(err).Str("stream", stream.ID()).Msg("augment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	records := collector.Records()
	resp := AugmentResponse{
		Columns: output.Columns(),
		Records: make([][]any, 0, len(records)),
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, encodeRecord(rec))
	}

	c.JSON(http.StatusOK, resp)
}

func decodeRecords(schema page.Schema, rows [][]json.RawMessage) (page.Page, error) {
	p := make(page.Page, 0, len(rows))
	for i, row := range rows {
		if len(row) != schema.Len() {
			return nil, fmt.Errorf("record %d has %d values, expected %d", i, len(row), schema.Len())
		}
		rec := make(page.Record, len(row))
		for j, raw := range row {
			col := schema.Column(j)
			v, err := decodeValue(col.Type, raw)
			if err != nil {
				return nil, fmt.Errorf("record %d: column %q: %w", i, col.Name, err)
			}
			rec[j] = v
		}
		p = append(p, rec)
	}
	return p, nil
}

func decodeValue(typ page.Type, raw json.RawMessage) (page.Value, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return page.Null(), nil
	}

	switch typ {
	case page.Boolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return page.Value{}, err
		}
		return page.BooleanValue(b), nil
	case page.Long:
		var l int64
		if err := json.Unmarshal(raw, &l); err != nil {
			return page.Value{}, err
		}
		return page.LongValue(l), nil
	case page.Double:
		var d float64
		if err := json.Unmarshal(raw, &d); err != nil {
			return page.Value{}, err
		}
		return page.DoubleValue(d), nil
	case page.String:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return page.Value{}, err
		}
		return page.StringValue(s), nil
	case page.Timestamp:
		var t time.Time
		if err := json.Unmarshal(raw, &t); err != nil {
			return page.Value{}, err
		}
		return page.TimestampValue(t), nil
	case page.JSON:
		return page.JSONValue(append(json.RawMessage(nil), raw...)), nil
	default:
		return page.Value{}, errors.New("unsupported column type")
	}
}

func encodeRecord(rec page.Record) []any {
	out := make([]any, len(rec))
	for i, v := range rec {
		switch v.Type() {
		case page.Boolean:
			out[i] = v.AsBoolean()
		case page.Long:
			out[i] = v.AsLong()
		case page.Double:
			out[i] = v.AsDouble()
		case page.String:
			out[i] = v.AsString()
		case page.Timestamp:
			out[i] = v.AsTimestamp()
		case page.JSON:
			out[i] = v.AsJSON()
		default:
			out[i] = nil
		}
	}
	return out
}
