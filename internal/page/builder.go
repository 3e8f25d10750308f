package page

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultPageSize is the number of records buffered before a page is pushed.
const DefaultPageSize = 1024

// ErrBuilderClosed is returned when records are added after Finish or Close.
var ErrBuilderClosed = errors.New("page: builder is finished or closed")

// Builder assembles records column by column and pushes them to an Output in
// pages of a fixed size.
type Builder struct {
	schema   Schema
	output   Output
	pageSize int

	current Record
	pending Page

	finished bool
	closed   bool
}

// NewBuilder creates a builder writing records of schema to output.
// A pageSize below 1 selects DefaultPageSize.
func NewBuilder(schema Schema, output Output, pageSize int) *Builder {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Builder{
		schema:   schema,
		output:   output,
		pageSize: pageSize,
		current:  make(Record, schema.Len()),
	}
}

// Schema returns the schema records are built for.
func (b *Builder) Schema() Schema { return b.schema }

func (b *Builder) SetNull(i int)                    { b.current[i] = Null() }
func (b *Builder) SetBoolean(i int, v bool)         { b.current[i] = BooleanValue(v) }
func (b *Builder) SetLong(i int, v int64)           { b.current[i] = LongValue(v) }
func (b *Builder) SetDouble(i int, v float64)       { b.current[i] = DoubleValue(v) }
func (b *Builder) SetString(i int, v string)        { b.current[i] = StringValue(v) }
func (b *Builder) SetTimestamp(i int, v time.Time)  { b.current[i] = TimestampValue(v) }
func (b *Builder) SetJSON(i int, v json.RawMessage) { b.current[i] = JSONValue(v) }

// AddRecord appends the record assembled so far and resets every column to
// null. A full page is pushed to the output.
func (b *Builder) AddRecord() error {
	if b.finished || b.closed {
		return ErrBuilderClosed
	}

	b.pending = append(b.pending, b.current)
	b.current = make(Record, b.schema.Len())

	if len(b.pending) >= b.pageSize {
		return b.Flush()
	}
	return nil
}

// Flush pushes buffered records, if any.
func (b *Builder) Flush() error {
	if len(b.pending) == 0 {
		return nil
	}
	p := b.pending
	b.pending = nil
	if err := b.output.Add(p); err != nil {
		return fmt.Errorf("page: failed to add page of %d records: %w", len(p), err)
	}
	return nil
}

// Finish pushes the remaining records and finishes the output.
func (b *Builder) Finish() error {
	if b.closed {
		return ErrBuilderClosed
	}
	if b.finished {
		return nil
	}
	b.finished = true

	if err := b.Flush(); err != nil {
		return err
	}
	return b.output.Finish()
}

// Close drops unflushed records and closes the output. Only the first call
// reaches the output.
func (b *Builder) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.pending = nil
	return b.output.Close()
}
