package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reverse-geocoding/internal/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const filterYAML = `
type: reverse_geocoding
target_lon: lon
target_lat: lat
level: 5
output_columns:
  - {name: pref, type: string, out: pref}
  - {name: city, type: string, out: city}
  - {name: hash, type: string, out: hash}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestFilterCommand(t *testing.T) {
	cfg := writeFile(t, "filter.yaml", filterYAML)
	input := "id,lat,lon\n" +
		"1,35.6721277,139.75891209999997\n" +
		"2,0,0\n" +
		"3,,139.7\n"

	out, err := execute(t, input, "--config", cfg, "--columns", "id:long,lat:double,lon:double", "--page-size", "2")
	require.NoError(t, err)

	want := "id,lat,lon,pref,city,hash\n" +
		"1,35.6721277,139.75891209999997,東京都,東京都中央区,xn76u\n" +
		"2,0,0,,,s0000\n" +
		"3,,139.7,,,\n"
	assert.Equal(t, want, out)
}

func TestFilterCommand_Files(t *testing.T) {
	cfg := writeFile(t, "filter.yaml", filterYAML)
	in := writeFile(t, "in.csv", "43.19,140.78\n")
	outPath := filepath.Join(t.TempDir(), "out.csv")

	_, err := execute(t, "", "-c", cfg, "--columns", "lat:double,lon:double", "--header=false", "-i", in, "-o", outPath)
	require.NoError(t, err)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "43.19,140.78,北海道,北海道後志総合振興局余市郡余市町,xpsje\n", string(got))
}

func TestFilterCommand_Errors(t *testing.T) {
	cfg := writeFile(t, "filter.yaml", filterYAML)
	badLevel := writeFile(t, "level.yaml", strings.Replace(filterYAML, "level: 5", "level: 7", 1))

	tests := []struct {
		name      string
		args      []string
		configKey string
	}{
		{name: "columns flag required", args: []string{"-c", cfg}},
		{name: "missing config file", args: []string{"-c", filepath.Join(t.TempDir(), "nope.yaml"), "--columns", "lat:double,lon:double"}},
		{name: "missing target column", args: []string{"-c", cfg, "--columns", "lat:double"}, configKey: "target_lon"},
		{name: "level differs from table", args: []string{"-c", badLevel, "--columns", "lat:double,lon:double"}, configKey: "level"},
		{name: "missing reference", args: []string{"-c", cfg, "--columns", "lat:double,lon:double", "--reference", filepath.Join(t.TempDir(), "nope.csv")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)

			if tt.configKey != "" {
				var cfgErr *filter.ConfigError
				require.True(t, errors.As(err, &cfgErr))
				assert.Equal(t, tt.configKey, cfgErr.Key)
			}
		})
	}
}

func TestFilterCommand_BadRecord(t *testing.T) {
	cfg := writeFile(t, "filter.yaml", filterYAML)

	_, err := execute(t, "lat,lon\nnorth,139.7\n", "-c", cfg, "--columns", "lat:double,lon:double")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "lat"`)
}
