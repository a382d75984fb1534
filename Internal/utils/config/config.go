package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		MountMock       bool          `yaml:"mount_mock"`
	} `yaml:"server"`

	Upstream UpstreamConfig `yaml:"upstream"`

	Watchlist WatchlistConfig `yaml:"watchlist"`

	Logging LoggingConfig `yaml:"logging"`

	Alpaca AlpacaConfig `yaml:"alpaca"`

	Screener struct {
		Columns []ColumnConfig `yaml:"columns"`
	} `yaml:"screener"`

	// path the config was read from; SaveConfig writes back to it
	path string
}

type UpstreamConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	Retries           int           `yaml:"retries"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	// Mock serves the embedded fixtures instead of calling BaseURL.
	Mock bool `yaml:"mock"`
}

type WatchlistConfig struct {
	Driver     string `yaml:"driver"` // file | postgres | memory
	Path       string `yaml:"path"`
	MaxEntries int    `yaml:"max_entries"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // console | json
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type AlpacaConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Feed       string `yaml:"feed"`
	SeriesDays int    `yaml:"series_days"`
}

// ColumnConfig describes one screener table column.
type ColumnConfig struct {
	Key      string `yaml:"key" json:"key"`
	Label    string `yaml:"label" json:"label"`
	Sortable bool   `yaml:"sortable" json:"sortable"`
	Format   string `yaml:"format" json:"format"`
}

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	DefaultMaxWatchlist = 200
)

// Default returns the settings used when no config file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Upstream = UpstreamConfig{
		BaseURL:           "http://localhost:8080/mock",
		Timeout:           10 * time.Second,
		Retries:           3,
		RequestsPerSecond: 5,
		Mock:              true,
	}
	cfg.Watchlist = WatchlistConfig{
		Driver:     DriverFile,
		Path:       "watchlist.json",
		MaxEntries: DefaultMaxWatchlist,
	}
	cfg.Logging = LoggingConfig{
		Level:      "info",
		Format:     "console",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
	cfg.Alpaca = AlpacaConfig{Feed: "iex", SeriesDays: 60}
	cfg.Screener.Columns = DefaultColumns()
	return cfg
}

func DefaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{Key: "ticker", Label: "Ticker", Sortable: true, Format: "text"},
		{Key: "price", Label: "Price", Sortable: true, Format: "price"},
		{Key: "pctChange", Label: "% Chg", Sortable: true, Format: "percentChange"},
		{Key: "siPublic", Label: "SI Public", Sortable: true, Format: "percent1"},
		{Key: "siBroad", Label: "SI Broad", Sortable: true, Format: "percent1"},
		{Key: "dtc", Label: "DTC", Sortable: true, Format: "oneDecimal"},
		{Key: "rvol", Label: "RVOL", Sortable: true, Format: "oneDecimal"},
		{Key: "squeezeScore", Label: "Score", Sortable: true, Format: "score"},
		{Key: "catalyst", Label: "Catalyst", Sortable: false, Format: "bool"},
	}
}

func LoadConfig() (*Config, error) {
	// Resolve path relative to this file first
	_, filePath, _, ok := runtime.Caller(0)
	var basePath string
	if ok {
		basePath = filepath.Dir(filePath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	possiblePaths := []string{}
	if p := os.Getenv("SQUEEZE_CONFIG"); p != "" {
		possiblePaths = append(possiblePaths, p)
	}
	if basePath != "" {
		possiblePaths = append(possiblePaths, filepath.Join(basePath, "config.yaml"))
	}
	possiblePaths = append(possiblePaths,
		filepath.Join(cwd, "Internal", "utils", "config", "config.yaml"),
		"config.yaml",
	)

	for _, path := range possiblePaths {
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		return LoadConfigFrom(path)
	}

	cfg := Default()
	cfg.applyEnv()
	return cfg, nil
}

// LoadConfigFrom reads one YAML file. Fields it leaves out keep their
// defaults, and environment overrides are applied last.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	cfg.Screener.Columns = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Screener.Columns) == 0 {
		cfg.Screener.Columns = DefaultColumns()
	}
	if cfg.Watchlist.MaxEntries <= 0 || cfg.Watchlist.MaxEntries > DefaultMaxWatchlist {
		cfg.Watchlist.MaxEntries = DefaultMaxWatchlist
	}
	cfg.path = path
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) Path() string {
	return c.path
}

// Column looks up a configured column by key.
func (c *Config) Column(key string) (ColumnConfig, bool) {
	for _, col := range c.Screener.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return ColumnConfig{}, false
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnvOrDefault("SQUEEZE_ADDR", c.Server.Addr)
	c.Upstream.BaseURL = getEnvOrDefault("SQUEEZE_UPSTREAM_URL", c.Upstream.BaseURL)
	if v, err := strconv.ParseBool(os.Getenv("SQUEEZE_UPSTREAM_MOCK")); err == nil {
		c.Upstream.Mock = v
	}
	c.Watchlist.Driver = getEnvOrDefault("SQUEEZE_WATCHLIST_DRIVER", c.Watchlist.Driver)
	c.Watchlist.Path = getEnvOrDefault("SQUEEZE_WATCHLIST_PATH", c.Watchlist.Path)
	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", c.Logging.Level)
	if v, err := strconv.ParseBool(os.Getenv("ALPACA_ENABLED")); err == nil {
		c.Alpaca.Enabled = v
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SaveConfig writes cfg back to the file it was loaded from, or to
// config.yaml in the working directory.
func SaveConfig(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	path := cfg.path
	if path == "" {
		path = "config.yaml"
	}
	return os.WriteFile(path, data, 0644)
}
