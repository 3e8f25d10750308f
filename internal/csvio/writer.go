package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"reverse-geocoding/internal/page"
)

// Writer is a page.Output encoding records as CSV rows. The header row is
// written before the first record, or on Finish for an empty stream.
type Writer struct {
	csv    *csv.Writer
	schema page.Schema
	header bool
	row    []string
	closed bool
}

// NewWriter returns a Writer for records of schema.
func NewWriter(w io.Writer, schema page.Schema, header bool) *Writer {
	return &Writer{
		csv:    csv.NewWriter(w),
		schema: schema,
		header: header,
		row:    make([]string, schema.Len()),
	}
}

func (w *Writer) writeHeader() error {
	if !w.header {
		return nil
	}
	w.header = false
	names := make([]string, 0, w.schema.Len())
	for _, c := range w.schema.Columns() {
		names = append(names, c.Name)
	}
	return w.csv.Write(names)
}

// Add writes every record of p.
func (w *Writer) Add(p page.Page) error {
	if w.closed {
		return page.ErrOutputClosed
	}
	if err := w.writeHeader(); err != nil {
		return fmt.Errorf("csvio: failed to write header: %w", err)
	}
	for _, rec := range p {
		if len(rec) != len(w.row) {
			return fmt.Errorf("csvio: record has %d values, schema has %d columns", len(rec), len(w.row))
		}
		for i, v := range rec {
			w.row[i] = formatValue(v)
		}
		if err := w.csv.Write(w.row); err != nil {
			return fmt.Errorf("csvio: failed to write row: %w", err)
		}
	}
	return nil
}

// Finish flushes buffered output.
func (w *Writer) Finish() error {
	if w.closed {
		return page.ErrOutputClosed
	}
	if err := w.writeHeader(); err != nil {
		return fmt.Errorf("csvio: failed to write header: %w", err)
	}
	w.csv.Flush()
	return w.csv.Error()
}

// Close marks the writer closed. The underlying io.Writer is owned by the
// caller.
func (w *Writer) Close() error {
	w.closed = true
	return nil
}

func formatValue(v page.Value) string {
	switch v.Type() {
	case page.Boolean:
		return strconv.FormatBool(v.AsBoolean())
	case page.Long:
		return strconv.FormatInt(v.AsLong(), 10)
	case page.Double:
		return strconv.FormatFloat(v.AsDouble(), 'f', -1, 64)
	case page.String:
		return v.AsString()
	case page.Timestamp:
		return v.AsTimestamp().Format(TimestampLayout)
	case page.JSON:
		return string(v.AsJSON())
	default:
		return ""
	}
}
