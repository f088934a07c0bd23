// Package config loads the layered application configuration: YAML
// file first, environment variables (prefix VCP) on top, then
// struct-level validation. All three binaries (cleaner, chartdata,
// web) share this configuration so they agree on the artifact path.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths. Relative paths resolve
// against DataDir (RawFile, DatasetFile, ReportsDir) or the working
// directory (DataDir, WebDir).
type PathsConfig struct {
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	RawFile     string `yaml:"raw_file" envconfig:"RAW_FILE" validate:"required"`
	DatasetFile string `yaml:"dataset_file" envconfig:"DATASET_FILE" validate:"required"`
	ReportsDir  string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	WebDir      string `yaml:"web_dir" envconfig:"WEB_DIR"`
}

// CleaningConfig tunes the cleaning pipeline. Defaults overrides the
// shipped fill_default values per canonical column; the exact defaults
// are configuration pending domain confirmation.
type CleaningConfig struct {
	Defaults       map[string]string `yaml:"defaults" envconfig:"DEFAULTS"`
	CategoryPolicy string            `yaml:"category_policy" envconfig:"CATEGORY_POLICY" validate:"oneof=first alphabetical"`
	TrendYearFloor int               `yaml:"trend_year_floor" envconfig:"TREND_YEAR_FLOOR" validate:"gt=0"`
}

// DashboardConfig tunes the dashboard server and chart generation.
type DashboardConfig struct {
	TopNDefault    int           `yaml:"top_n_default" envconfig:"TOP_N_DEFAULT" validate:"gt=0"`
	TopNMax        int           `yaml:"top_n_max" envconfig:"TOP_N_MAX" validate:"gt=0"`
	ReloadInterval time.Duration `yaml:"reload_interval" envconfig:"RELOAD_INTERVAL" validate:"gt=0"`
}

// Load builds the configuration in precedence order: code defaults,
// then the YAML file (if present), then VCP_* environment variables,
// then validation. Fields carry no envconfig defaults on purpose:
// envconfig would re-apply them over file-loaded values.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process("VCP", cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the shipped configuration defaults, before any file
// or environment is applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    100,
			RateLimitBurst:  50,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir:     "data",
			RawFile:     "investments.csv",
			DatasetFile: "cleaned_investments.csv",
			ReportsDir:  "reports",
			WebDir:      "web",
		},
		Cleaning: CleaningConfig{
			CategoryPolicy: "first",
			TrendYearFloor: 1980,
		},
		Dashboard: DashboardConfig{
			TopNDefault:    10,
			TopNMax:        50,
			ReloadInterval: 5 * time.Second,
		},
	}
}

// RawPath returns the resolved raw input path.
func (c *Config) RawPath() string {
	return c.resolveData(c.Paths.RawFile)
}

// DatasetPath returns the resolved cleaned dataset artifact path. This
// is the single contract shared by the cleaner (writer), the chartdata
// generator and the dashboard (readers).
func (c *Config) DatasetPath() string {
	return c.resolveData(c.Paths.DatasetFile)
}

// ReportsPath returns the resolved chart-data reports directory.
func (c *Config) ReportsPath() string {
	return c.resolveData(c.Paths.ReportsDir)
}

func (c *Config) resolveData(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.DataDir, p)
}

// findConfigFile checks the conventional locations for a config file.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}
