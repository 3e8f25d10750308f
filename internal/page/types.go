// Package page models typed tabular records and the push-based sink that
// carries them between pipeline stages.
package page

import (
	"fmt"
	"strings"
)

// Type is the declared type of a column.
type Type int

const (
	Boolean Type = iota + 1
	Long
	Double
	String
	Timestamp
	JSON
)

var typeNames = map[Type]string{
	Boolean:   "boolean",
	Long:      "long",
	Double:    "double",
	String:    "string",
	Timestamp: "timestamp",
	JSON:      "json",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is one of the declared column types.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseType resolves a configured type name such as "string" or "double".
func ParseType(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for t, s := range typeNames {
		if s == n {
			return t, nil
		}
	}
	return 0, fmt.Errorf("page: unknown column type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("page: unknown column type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
