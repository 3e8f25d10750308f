package filter

import (
	"errors"
	"fmt"

	"reverse-geocoding/internal/metrics"
	"reverse-geocoding/internal/page"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrFinished is returned by Add or Finish once the stream is finished.
	ErrFinished = errors.New("filter: stream already finished")
	// ErrClosed is returned by Add or Finish once the stream is closed.
	ErrClosed = errors.New("filter: stream closed")
)

// Geocoder answers the three derived column kinds for a coordinate.
type Geocoder interface {
	ToPrefecture(lat, lon float64) string
	ToCity(lat, lon float64) string
	ToGeoHash(lat, lon float64) string
}

type state int

const (
	stateOpen state = iota
	stateFinished
	stateClosed
)

type derivedColumn struct {
	index int
	out   string
}

// Option configures a PageOutput.
type Option func(*options)

type options struct {
	pageSize int
}

// WithPageSize sets how many records are buffered before a page is pushed
// downstream.
func WithPageSize(n int) Option {
	return func(o *options) { o.pageSize = n }
}

// PageOutput is one open stream of the filter. It is not safe for
// concurrent use; run one PageOutput per partition instead.
type PageOutput struct {
	id       string
	geocoder Geocoder
	input    page.Schema
	columns  []page.Column
	lonCol   page.Column
	latCol   page.Column
	derived  []derivedColumn
	builder  *page.Builder
	state    state

	records   int64
	nullCoord int64
}

// Open starts a stream writing augmented records to out. outputSchema must
// be the schema returned by Transaction for the same task and input schema.
func Open(task Task, geocoder Geocoder, inputSchema, outputSchema page.Schema, out page.Output, opts ...Option) (*PageOutput, error) {
	o := options{pageSize: page.DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}

	if want := inputSchema.Len() + len(task.OutputColumns); outputSchema.Len() != want {
		return nil, fmt.Errorf("filter: output schema has %d columns, expected %d", outputSchema.Len(), want)
	}

	lonCol, ok := inputSchema.Lookup(task.TargetLon)
	if !ok {
		return nil, configErrorf("target_lon", "column %q not found in input schema", task.TargetLon)
	}
	latCol, ok := inputSchema.Lookup(task.TargetLat)
	if !ok {
		return nil, configErrorf("target_lat", "column %q not found in input schema", task.TargetLat)
	}

	// Derived columns always follow the input columns.
	columnIndex := make(map[string]int, len(task.OutputColumns))
	for i := inputSchema.Len(); i < outputSchema.Len(); i++ {
		c := outputSchema.Column(i)
		columnIndex[c.Name] = c.Index
	}
	columnTasks := make(map[string]OutputColumnTask, len(task.OutputColumns))
	for _, c := range task.OutputColumns {
		columnTasks[c.Name] = c
	}

	derived := make([]derivedColumn, 0, len(task.OutputColumns))
	for _, c := range task.OutputColumns {
		idx, ok := columnIndex[c.Name]
		if !ok {
			return nil, fmt.Errorf("filter: derived column %q missing from output schema", c.Name)
		}
		derived = append(derived, derivedColumn{index: idx, out: columnTasks[c.Name].Out})
	}

	p := &PageOutput{
		id:       uuid.NewString(),
		geocoder: geocoder,
		input:    inputSchema,
		columns:  inputSchema.Columns(),
		lonCol:   lonCol,
		latCol:   latCol,
		derived:  derived,
		builder:  page.NewBuilder(outputSchema, out, o.pageSize),
	}

	log.Debug().
		Str("stream", p.id).
		Int("input_columns", inputSchema.Len()).
		Int("derived_columns", len(derived)).
		Msg("filter stream opened")

	return p, nil
}

// ID identifies the stream in logs.
func (p *PageOutput) ID() string { return p.id }

// Records returns how many records have been emitted so far.
func (p *PageOutput) Records() int64 { return p.records }

// Add augments every record of the page, in order, and hands them to the
// downstream builder.
func (p *PageOutput) Add(pg page.Page) error {
	switch p.state {
	case stateFinished:
		return ErrFinished
	case stateClosed:
		return ErrClosed
	}

	for _, rec := range pg {
		if len(rec) != p.input.Len() {
			return fmt.Errorf("filter: record %d has %d values, input schema has %d columns", p.records, len(rec), p.input.Len())
		}
		if err := p.addRecord(rec); err != nil {
			return err
		}
		p.records++
	}
	metrics.RecordsTotal.Add(float64(len(pg)))

	return nil
}

func (p *PageOutput) addRecord(rec page.Record) error {
	lon, lonOK := coordinate(rec, p.lonCol)
	lat, latOK := coordinate(rec, p.latCol)

	for _, col := range p.columns {
		if err := copyColumn(p.builder, rec, col); err != nil {
			return err
		}
	}

	if !lonOK || !latOK {
		p.nullCoord++
		metrics.NullCoordinatesTotal.Inc()
		for _, d := range p.derived {
			p.builder.SetString(d.index, "")
		}
		return p.builder.AddRecord()
	}

	for _, d := range p.derived {
		switch d.out {
		case OutPref:
			p.builder.SetString(d.index, p.geocoder.ToPrefecture(lat, lon))
		case OutCity:
			p.builder.SetString(d.index, p.geocoder.ToCity(lat, lon))
		case OutHash:
			p.builder.SetString(d.index, p.geocoder.ToGeoHash(lat, lon))
		}
	}
	return p.builder.AddRecord()
}

// Finish flushes buffered records downstream. The stream accepts no more
// records afterwards.
func (p *PageOutput) Finish() error {
	switch p.state {
	case stateFinished:
		return ErrFinished
	case stateClosed:
		return ErrClosed
	}
	p.state = stateFinished

	if err := p.builder.Finish(); err != nil {
		return fmt.Errorf("filter: failed to finish stream %s: %w", p.id, err)
	}

	log.Info().
		Str("stream", p.id).
		Int64("records", p.records).
		Int64("null_coordinates", p.nullCoord).
		Msg("filter stream finished")
	return nil
}

// Close releases the downstream output. It may be called in any state,
// including after a failed Add, and only the first call has an effect.
func (p *PageOutput) Close() error {
	if p.state == stateClosed {
		return nil
	}
	finished := p.state == stateFinished
	p.state = stateClosed

	if finished {
		metrics.StreamsTotal.WithLabelValues("finished").Inc()
	} else {
		metrics.StreamsTotal.WithLabelValues("aborted").Inc()
		log.Warn().Str("stream", p.id).Int64("records", p.records).Msg("filter stream closed before finish")
	}

	if err := p.builder.Close(); err != nil {
		return fmt.Errorf("filter: failed to close stream %s: %w", p.id, err)
	}
	return nil
}

func coordinate(rec page.Record, col page.Column) (float64, bool) {
	v := rec[col.Index]
	if v.IsNull() {
		return 0, false
	}
	if col.Type == page.Long {
		return float64(v.AsLong()), true
	}
	return v.AsDouble(), true
}

// copyColumn writes the input value to the same position of the output
// record using the accessor of the column's declared type.
func copyColumn(b *page.Builder, rec page.Record, col page.Column) error {
	v := rec[col.Index]
	if v.IsNull() {
		b.SetNull(col.Index)
		return nil
	}

	switch col.Type {
	case page.Boolean:
		b.SetBoolean(col.Index, v.AsBoolean())
	case page.Long:
		b.SetLong(col.Index, v.AsLong())
	case page.Double:
		b.SetDouble(col.Index, v.AsDouble())
	case page.String:
		b.SetString(col.Index, v.AsString())
	case page.Timestamp:
		b.SetTimestamp(col.Index, v.AsTimestamp())
	case page.JSON:
		b.SetJSON(col.Index, v.AsJSON())
	default:
		return fmt.Errorf("filter: column %q has unsupported type %s", col.Name, col.Type)
	}
	return nil
}
