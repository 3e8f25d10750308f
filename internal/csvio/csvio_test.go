package csvio

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"reverse-geocoding/internal/page"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumns(t *testing.T) {
	tests := []struct {
		name    string
		list    string
		want    []page.Column
		wantErr bool
	}{
		{
			name: "typed columns",
			list: "id:long, lat:double ,lon:DOUBLE",
			want: []page.Column{
				{Index: 0, Name: "id", Type: page.Long},
				{Index: 1, Name: "lat", Type: page.Double},
				{Index: 2, Name: "lon", Type: page.Double},
			},
		},
		{
			name: "untyped column is string",
			list: "name,ok:boolean",
			want: []page.Column{
				{Index: 0, Name: "name", Type: page.String},
				{Index: 1, Name: "ok", Type: page.Boolean},
			},
		},
		{name: "empty", list: " , ", wantErr: true},
		{name: "unknown type", list: "a:decimal", wantErr: true},
		{name: "empty name", list: ":long", wantErr: true},
		{name: "duplicate", list: "a,a:long", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := ParseColumns(tt.list)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, schema.Columns())
		})
	}
}

func allTypesSchema() page.Schema {
	return page.NewSchema(
		page.Column{Name: "flag", Type: page.Boolean},
		page.Column{Name: "id", Type: page.Long},
		page.Column{Name: "lat", Type: page.Double},
		page.Column{Name: "name", Type: page.String},
		page.Column{Name: "at", Type: page.Timestamp},
		page.Column{Name: "payload", Type: page.JSON},
	)
}

func TestReader_ReadPage(t *testing.T) {
	input := "flag,id,lat,name,at,payload\n" +
		"true,7,35.6721277,銀座,2016-03-14T12:30:00Z,\"{\"\"k\"\":1}\"\n" +
		",,,,,\n" +
		"false,-1,0,\"a,b\",2016-03-14T12:30:00.5+09:00,[]\n"

	r := NewReader(strings.NewReader(input), allTypesSchema(), true)

	first, err := r.ReadPage(2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	rec := first[0]
	assert.True(t, rec[0].AsBoolean())
	assert.Equal(t, int64(7), rec[1].AsLong())
	assert.Equal(t, 35.6721277, rec[2].AsDouble())
	assert.Equal(t, "銀座", rec[3].AsString())
	assert.True(t, time.Date(2016, 3, 14, 12, 30, 0, 0, time.UTC).Equal(rec[4].AsTimestamp()))
	assert.JSONEq(t, `{"k":1}`, string(rec[5].AsJSON()))

	for i, v := range first[1] {
		assert.True(t, v.IsNull(), "column %d", i)
	}

	second, err := r.ReadPage(2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "a,b", second[0][3].AsString())
	assert.False(t, second[0][0].AsBoolean())
	assert.False(t, second[0][0].IsNull())

	_, err = r.ReadPage(2)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_Errors(t *testing.T) {
	schema := page.NewSchema(
		page.Column{Name: "id", Type: page.Long},
		page.Column{Name: "payload", Type: page.JSON},
	)

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "bad long", input: "x,{}\n", wantErr: `column "id"`},
		{name: "bad json", input: "1,{nope\n", wantErr: `column "payload"`},
		{name: "wrong field count", input: "1\n", wantErr: "failed to read row"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.input), schema, false).ReadPage(10)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReader_EmptyInput(t *testing.T) {
	schema := page.NewSchema(page.Column{Name: "a", Type: page.String})

	_, err := NewReader(strings.NewReader(""), schema, true).ReadPage(10)
	assert.True(t, errors.Is(err, io.EOF))

	_, err = NewReader(strings.NewReader("a\n"), schema, true).ReadPage(10)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, allTypesSchema(), true)

	ts := time.Date(2016, 3, 14, 12, 30, 0, 500000000, time.UTC)
	require.NoError(t, w.Add(page.Page{
		{
			page.BooleanValue(true),
			page.LongValue(42),
			page.DoubleValue(139.75891209999997),
			page.StringValue("東京都, 中央区"),
			page.TimestampValue(ts),
			page.JSONValue(json.RawMessage(`{"k":1}`)),
		},
		make(page.Record, 6),
	}))
	require.NoError(t, w.Finish())
	require.NoError(t, w.Close())

	want := "flag,id,lat,name,at,payload\n" +
		"true,42,139.75891209999997,\"東京都, 中央区\",2016-03-14T12:30:00.5Z,\"{\"\"k\"\":1}\"\n" +
		",,,,,\n"
	assert.Equal(t, want, buf.String())

	assert.ErrorIs(t, w.Add(nil), page.ErrOutputClosed)
}

func TestWriter_EmptyStreamWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, page.NewSchema(page.Column{Name: "a"}, page.Column{Name: "b"}), true)

	require.NoError(t, w.Finish())
	assert.Equal(t, "a,b\n", buf.String())
}

func TestWriter_ArityMismatch(t *testing.T) {
	w := NewWriter(io.Discard, allTypesSchema(), false)
	assert.Error(t, w.Add(page.Page{{page.LongValue(1)}}))
}

func TestRoundTrip(t *testing.T) {
	input := "flag,id,lat,name,at,payload\n" +
		"true,1,35.6721277,x,2016-03-14T12:30:00Z,[1]\n" +
		",,,,,\n"

	r := NewReader(strings.NewReader(input), allTypesSchema(), true)
	p, err := r.ReadPage(10)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewWriter(&buf, allTypesSchema(), true)
	require.NoError(t, w.Add(p))
	require.NoError(t, w.Finish())

	assert.Equal(t, input, buf.String())
}
