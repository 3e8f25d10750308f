package page

import (
	"encoding/json"
	"time"
)

// Value is a single cell: either null or a value of one of the column
// types. The zero Value is null.
type Value struct {
	typ Type
	b   bool
	l   int64
	d   float64
	s   string
	t   time.Time
	j   json.RawMessage
}

// Null returns the null value.
func Null() Value { return Value{} }

func BooleanValue(v bool) Value         { return Value{typ: Boolean, b: v} }
func LongValue(v int64) Value           { return Value{typ: Long, l: v} }
func DoubleValue(v float64) Value       { return Value{typ: Double, d: v} }
func StringValue(v string) Value        { return Value{typ: String, s: v} }
func TimestampValue(v time.Time) Value  { return Value{typ: Timestamp, t: v} }
func JSONValue(v json.RawMessage) Value { return Value{typ: JSON, j: v} }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.typ == 0 }

// Type returns the type of a non-null value, 0 for null.
func (v Value) Type() Type { return v.typ }

func (v Value) AsBoolean() bool         { return v.b }
func (v Value) AsLong() int64           { return v.l }
func (v Value) AsDouble() float64       { return v.d }
func (v Value) AsString() string        { return v.s }
func (v Value) AsTimestamp() time.Time  { return v.t }
func (v Value) AsJSON() json.RawMessage { return v.j }

// Record is one row aligned with a schema.
type Record []Value

// Page is a batch of records.
type Page []Record
