package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Region table sources.
const (
	RegionSourceBundled  = "bundled"
	RegionSourceFile     = "file"
	RegionSourcePostgres = "postgres"
)

// DefaultLevel is the geohash precision of the bundled region table.
const DefaultLevel = "5"

// DefaultOut is the derived column kind used when "out" is omitted.
const DefaultOut = "pref"

// Config stores all configuration of the application.
// Values are read from a config file and may be overridden by REVGEO_* environment variables.
type Config struct {
	ServerAddress string       `mapstructure:"server_address"`
	DBSource      string       `mapstructure:"db_source"`
	RegionSource  string       `mapstructure:"region_source"`
	ReferencePath string       `mapstructure:"reference_path"`
	LogLevel      string       `mapstructure:"log_level"`
	LogPretty     bool         `mapstructure:"log_pretty"`
	PageSize      int          `mapstructure:"page_size"`
	Filter        FilterConfig `mapstructure:"filter"`
}

// FilterConfig is the configuration of one augmentation filter.
type FilterConfig struct {
	TargetLon     string         `mapstructure:"target_lon"`
	TargetLat     string         `mapstructure:"target_lat"`
	Level         string         `mapstructure:"level"`
	OutputColumns []OutputColumn `mapstructure:"output_columns"`
}

// OutputColumn declares one derived column.
type OutputColumn struct {
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
	Out  string `mapstructure:"out"`
}

// LoadConfig reads app.yaml from path. A .env file in the working directory,
// if present, is loaded into the environment first.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: failed to load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("REVGEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_address", "0.0.0.0:8080")
	v.SetDefault("db_source", "")
	v.SetDefault("region_source", RegionSourceBundled)
	v.SetDefault("reference_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("page_size", 1024)
	v.SetDefault("filter.target_lon", "")
	v.SetDefault("filter.target_lat", "")
	v.SetDefault("filter.level", DefaultLevel)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", filepath.Join(path, "app.yaml"), err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to decode: %w", err)
	}
	cfg.Filter.applyDefaults()

	switch cfg.RegionSource {
	case RegionSourceBundled, RegionSourceFile, RegionSourcePostgres:
	default:
		return Config{}, fmt.Errorf("config: unknown region_source %q", cfg.RegionSource)
	}

	return cfg, nil
}

// LoadFilterConfig parses a standalone filter definition in YAML.
func LoadFilterConfig(r io.Reader) (FilterConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("level", DefaultLevel)

	if err := v.ReadConfig(r); err != nil {
		return FilterConfig{}, fmt.Errorf("config: failed to read filter config: %w", err)
	}

	var fc FilterConfig
	if err := v.Unmarshal(&fc); err != nil {
		return FilterConfig{}, fmt.Errorf("config: failed to decode filter config: %w", err)
	}
	fc.applyDefaults()

	return fc, nil
}

func (fc *FilterConfig) applyDefaults() {
	if strings.TrimSpace(fc.Level) == "" {
		fc.Level = DefaultLevel
	}
	for i := range fc.OutputColumns {
		if fc.OutputColumns[i].Out == "" {
			fc.OutputColumns[i].Out = DefaultOut
		}
	}
}
