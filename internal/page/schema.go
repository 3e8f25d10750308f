package page

// Column is one typed position of a schema.
type Column struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Type  Type   `json:"type"`
}

// Schema is an ordered list of columns. Indexes are 0-based and match the
// column's position.
type Schema struct {
	columns []Column
}

// NewSchema builds a schema, assigning each column its position as index.
func NewSchema(columns ...Column) Schema {
	cols := make([]Column, len(columns))
	for i, c := range columns {
		c.Index = i
		cols[i] = c
	}
	return Schema{columns: cols}
}

// Append returns a new schema with one more column at the end.
func (s Schema) Append(name string, typ Type) Schema {
	cols := make([]Column, len(s.columns), len(s.columns)+1)
	copy(cols, s.columns)
	cols = append(cols, Column{Index: len(s.columns), Name: name, Type: typ})
	return Schema{columns: cols}
}

// Len returns the number of columns.
func (s Schema) Len() int {
	return len(s.columns)
}

// Column returns the column at index i.
func (s Schema) Column(i int) Column {
	return s.columns[i]
}

// Columns returns a copy of the columns.
func (s Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Lookup finds the first column with the given name.
func (s Schema) Lookup(name string) (Column, bool) {
	for _, c := range s.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
