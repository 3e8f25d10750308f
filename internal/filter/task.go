// Package filter implements the reverse-geocoding stage: it copies every
// input column through unchanged and appends prefecture, city or geohash
// columns computed from a latitude/longitude pair.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"reverse-geocoding/internal/config"
	"reverse-geocoding/internal/page"
)

// Derived column kinds.
const (
	OutPref = "pref"
	OutCity = "city"
	OutHash = "hash"
)

// ConfigError reports an invalid filter configuration. Key names the
// offending configuration entry.
type ConfigError struct {
	Key string
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("filter: invalid %s: %s", e.Key, e.Msg)
}

func configErrorf(key, format string, args ...any) error {
	return &ConfigError{Key: key, Msg: fmt.Sprintf(format, args...)}
}

// OutputColumnTask is a validated derived column.
type OutputColumnTask struct {
	Name string
	Type page.Type
	Out  string
}

// Task is a validated filter configuration.
type Task struct {
	TargetLon     string
	TargetLat     string
	Level         int
	OutputColumns []OutputColumnTask
}

// NewTask validates cfg against the precision of the loaded region table.
func NewTask(cfg config.FilterConfig, precision int) (Task, error) {
	task := Task{
		TargetLon: strings.TrimSpace(cfg.TargetLon),
		TargetLat: strings.TrimSpace(cfg.TargetLat),
	}
	if task.TargetLon == "" {
		return Task{}, configErrorf("target_lon", "required")
	}
	if task.TargetLat == "" {
		return Task{}, configErrorf("target_lat", "required")
	}

	levelStr := strings.TrimSpace(cfg.Level)
	if levelStr == "" {
		levelStr = config.DefaultLevel
	}
	level, err := strconv.Atoi(levelStr)
	if err != nil || level < 1 {
		return Task{}, configErrorf("level", "%q is not a positive integer", cfg.Level)
	}
	if level != precision {
		return Task{}, configErrorf("level", "%d is not supported by the loaded region table (precision %d)", level, precision)
	}
	task.Level = level

	seen := make(map[string]struct{}, len(cfg.OutputColumns))
	for i, c := range cfg.OutputColumns {
		key := fmt.Sprintf("output_columns[%d]", i)

		name := strings.TrimSpace(c.Name)
		if name == "" {
			return Task{}, configErrorf(key+".name", "required")
		}
		if _, dup := seen[name]; dup {
			return Task{}, configErrorf(key+".name", "duplicate derived column %q", name)
		}
		seen[name] = struct{}{}

		typ, err := page.ParseType(c.Type)
		if err != nil {
			return Task{}, configErrorf(key+".type", "%v", err)
		}
		if typ != page.String {
			return Task{}, configErrorf(key+".type", "derived column %q must be string, got %s", name, typ)
		}

		out := strings.TrimSpace(c.Out)
		if out == "" {
			out = config.DefaultOut
		}
		switch out {
		case OutPref, OutCity, OutHash:
		default:
			return Task{}, configErrorf(key+".out", "%q is not one of pref, city, hash", c.Out)
		}

		task.OutputColumns = append(task.OutputColumns, OutputColumnTask{Name: name, Type: typ, Out: out})
	}

	return task, nil
}

// BuildOutputSchema appends one column per derived column to the input schema.
func BuildOutputSchema(task Task, input page.Schema) page.Schema {
	out := input
	for _, c := range task.OutputColumns {
		out = out.Append(c.Name, c.Type)
	}
	return out
}

// Transaction checks task against the input schema and derives the output
// schema. Every configuration problem that depends on the input columns is
// reported here, before any record is processed.
func Transaction(task Task, input page.Schema) (page.Schema, error) {
	for _, c := range input.Columns() {
		if !c.Type.Valid() {
			return page.Schema{}, fmt.Errorf("filter: input column %q has unsupported type %s", c.Name, c.Type)
		}
	}

	if err := checkCoordinateColumn(input, "target_lon", task.TargetLon); err != nil {
		return page.Schema{}, err
	}
	if err := checkCoordinateColumn(input, "target_lat", task.TargetLat); err != nil {
		return page.Schema{}, err
	}

	for i, c := range task.OutputColumns {
		if _, ok := input.Lookup(c.Name); ok {
			return page.Schema{}, configErrorf(fmt.Sprintf("output_columns[%d].name", i), "%q collides with an input column", c.Name)
		}
	}

	return BuildOutputSchema(task, input), nil
}

func checkCoordinateColumn(input page.Schema, key, name string) error {
	col, ok := input.Lookup(name)
	if !ok {
		return configErrorf(key, "column %q not found in input schema", name)
	}
	if col.Type != page.Double && col.Type != page.Long {
		return configErrorf(key, "column %q must be double or long, got %s", name, col.Type)
	}
	return nil
}
