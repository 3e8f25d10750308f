package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yaml(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func writeAppConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadFilterConfig(t *testing.T) {
	fc, err := LoadFilterConfig(strings.NewReader(yaml(
		"type: reverse_geocoding",
		"target_lon: lon",
		"target_lat: lat",
		"level: 5",
		"output_columns:",
		"  - {name: pref, type: string, out: pref}",
		"  - {name: city, type: string, out: city}",
		"  - {name: hash, type: string, out: hash}",
	)))
	require.NoError(t, err)

	assert.Equal(t, "lon", fc.TargetLon)
	assert.Equal(t, "lat", fc.TargetLat)
	assert.Equal(t, "5", fc.Level)
	assert.Equal(t, []OutputColumn{
		{Name: "pref", Type: "string", Out: "pref"},
		{Name: "city", Type: "string", Out: "city"},
		{Name: "hash", Type: "string", Out: "hash"},
	}, fc.OutputColumns)
}

func TestLoadFilterConfig_Defaults(t *testing.T) {
	fc, err := LoadFilterConfig(strings.NewReader(yaml(
		"target_lon: longitude",
		"target_lat: latitude",
		"output_columns:",
		"  - {name: prefecture, type: string}",
	)))
	require.NoError(t, err)

	assert.Equal(t, DefaultLevel, fc.Level)
	require.Len(t, fc.OutputColumns, 1)
	assert.Equal(t, DefaultOut, fc.OutputColumns[0].Out)
}

func TestLoadFilterConfig_NoOutputColumns(t *testing.T) {
	fc, err := LoadFilterConfig(strings.NewReader(yaml("target_lon: lon", "target_lat: lat")))
	require.NoError(t, err)
	assert.Empty(t, fc.OutputColumns)
}

func TestLoadFilterConfig_InvalidYAML(t *testing.T) {
	_, err := LoadFilterConfig(strings.NewReader("output_columns: [\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := writeAppConfig(t, yaml(
		"server_address: 127.0.0.1:9000",
		"region_source: file",
		"reference_path: /data/geohash5.csv",
		"page_size: 256",
		"filter:",
		"  target_lon: lon",
		"  target_lat: lat",
		"  output_columns:",
		"    - {name: pref, type: string}",
		"    - {name: hash, type: string, out: hash}",
	))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddress)
	assert.Equal(t, RegionSourceFile, cfg.RegionSource)
	assert.Equal(t, "/data/geohash5.csv", cfg.ReferencePath)
	assert.Equal(t, 256, cfg.PageSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "5", cfg.Filter.Level)
	assert.Equal(t, []OutputColumn{
		{Name: "pref", Type: "string", Out: "pref"},
		{Name: "hash", Type: "string", Out: "hash"},
	}, cfg.Filter.OutputColumns)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := writeAppConfig(t, yaml("server_address: 127.0.0.1:9000"))
	t.Setenv("REVGEO_SERVER_ADDRESS", ":7070")
	t.Setenv("REVGEO_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ServerAddress)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, RegionSourceBundled, cfg.RegionSource)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err, "missing app.yaml")

	dir := writeAppConfig(t, yaml("region_source: s3"))
	_, err = LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region_source")
}
