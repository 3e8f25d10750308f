// Package csvio moves pages in and out of CSV text. An empty field is read
// as null and null is written as an empty field.
package csvio

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"reverse-geocoding/internal/page"
)

// TimestampLayout is used for reading and writing timestamp columns.
const TimestampLayout = time.RFC3339Nano

// ParseColumns parses a column list such as "id:long,lat:double,lon:double".
// A column without a type is a string column.
func ParseColumns(list string) (page.Schema, error) {
	var cols []page.Column
	seen := make(map[string]struct{})
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, typName, hasType := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return page.Schema{}, fmt.Errorf("csvio: empty column name in %q", part)
		}
		if _, dup := seen[name]; dup {
			return page.Schema{}, fmt.Errorf("csvio: duplicate column %q", name)
		}
		seen[name] = struct{}{}

		typ := page.String
		if hasType {
			var err error
			if typ, err = page.ParseType(typName); err != nil {
				return page.Schema{}, fmt.Errorf("csvio: column %q: %w", name, err)
			}
		}
		cols = append(cols, page.Column{Name: name, Type: typ})
	}
	if len(cols) == 0 {
		return page.Schema{}, errors.New("csvio: no columns")
	}
	return page.NewSchema(cols...), nil
}

// Reader decodes CSV rows into pages of the given schema.
type Reader struct {
	csv    *csv.Reader
	schema page.Schema
	header bool
	line   int
}

// NewReader returns a Reader. When header is true the first row is skipped.
func NewReader(r io.Reader, schema page.Schema, header bool) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = schema.Len()
	cr.ReuseRecord = true
	return &Reader{csv: cr, schema: schema, header: header}
}

// ReadPage reads up to n records. It returns io.EOF once no record is left.
func (r *Reader) ReadPage(n int) (page.Page, error) {
	if n < 1 {
		n = page.DefaultPageSize
	}
	if r.header {
		r.header = false
		if _, err := r.csv.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("csvio: failed to read header: %w", err)
		}
	}

	var p page.Page
	for len(p) < n {
		row, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvio: failed to read row: %w", err)
		}
		r.line, _ = r.csv.FieldPos(0)

		rec, err := r.decode(row)
		if err != nil {
			return nil, err
		}
		p = append(p, rec)
	}
	if len(p) == 0 {
		return nil, io.EOF
	}
	return p, nil
}

func (r *Reader) decode(row []string) (page.Record, error) {
	rec := make(page.Record, len(row))
	for i, field := range row {
		col := r.schema.Column(i)
		v, err := parseValue(col.Type, field)
		if err != nil {
			return nil, fmt.Errorf("csvio: line %d: column %q: %w", r.line, col.Name, err)
		}
		rec[i] = v
	}
	return rec, nil
}

func parseValue(typ page.Type, field string) (page.Value, error) {
	if field == "" {
		return page.Null(), nil
	}

	switch typ {
	case page.Boolean:
		b, err := strconv.ParseBool(strings.TrimSpace(field))
		if err != nil {
			return page.Value{}, err
		}
		return page.BooleanValue(b), nil
	case page.Long:
		l, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return page.Value{}, err
		}
		return page.LongValue(l), nil
	case page.Double:
		d, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return page.Value{}, err
		}
		return page.DoubleValue(d), nil
	case page.String:
		return page.StringValue(field), nil
	case page.Timestamp:
		t, err := time.Parse(TimestampLayout, strings.TrimSpace(field))
		if err != nil {
			return page.Value{}, err
		}
		return page.TimestampValue(t), nil
	case page.JSON:
		if !json.Valid([]byte(field)) {
			return page.Value{}, fmt.Errorf("invalid json %q", field)
		}
		return page.JSONValue(json.RawMessage(field)), nil
	default:
		return page.Value{}, fmt.Errorf("unsupported type %s", typ)
	}
}
