// Package config loads, validates and saves the entitydeck configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/rshade/entitydeck/internal/engine/cache"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = "1.0.0"

// supportedVersions is the range of schema versions this build can read.
const supportedVersions = ">= 1.0.0, < 2.0.0"

// Source kinds.
const (
	SourceMock     = "mock"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Duplicate-id policies, mirrored from the fetch engine.
const (
	PolicyKeepFirst = "keep-first"
	PolicyAllow     = "allow"
)

const (
	configFileName = "config.yaml"
	outputTypeFile = "file"

	defaultPageSize        = 20
	defaultNearEndFraction = 0.9
	defaultDebounceMS      = 200
	defaultOverscan        = 5
	defaultInitialPanels   = 2
	defaultMockTotal       = 500
	defaultPageLatencyMS   = 300
	defaultDetailLatencyMS = 1500
	defaultCacheTTL        = "1h"
)

// Validation errors.
var (
	ErrInvalidPageSize        = errors.New("paging.page_size must be positive")
	ErrInvalidNearEndFraction = errors.New("paging.near_end_fraction must be in (0, 1)")
	ErrInvalidDebounce        = errors.New("paging.debounce_ms must not be negative")
	ErrInvalidPolicy          = errors.New("paging.duplicate_policy must be keep-first or allow")
	ErrInvalidSource          = errors.New("source.kind must be mock, sqlite or postgres")
	ErrMissingSQLitePath      = errors.New("source.sqlite_path is required for the sqlite source")
	ErrMissingPostgresDSN     = errors.New("source.postgres_dsn is required for the postgres source")
	ErrInvalidPanels          = errors.New("view.initial_panels must be at least 1")
	ErrUnsupportedVersion     = errors.New("unsupported config version")
)

// Config is the root of config.yaml.
type Config struct {
	Version     string            `yaml:"version"`
	Paging      PagingConfig      `yaml:"paging"`
	View        ViewConfig        `yaml:"view"`
	Source      SourceConfig      `yaml:"source"`
	DetailCache DetailCacheConfig `yaml:"detail_cache"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`

	configPath string
}

// PagingConfig tunes pagination.
type PagingConfig struct {
	PageSize        int     `yaml:"page_size"`
	NearEndFraction float64 `yaml:"near_end_fraction"`
	DebounceMS      int     `yaml:"debounce_ms"`
	DuplicatePolicy string  `yaml:"duplicate_policy"`
}

// ViewConfig tunes the panels.
type ViewConfig struct {
	Overscan         int  `yaml:"overscan"`
	InitialPanels    int  `yaml:"initial_panels"`
	ShareDetailCache bool `yaml:"share_detail_cache"`
}

// SourceConfig selects and tunes the backend.
type SourceConfig struct {
	Kind            string `yaml:"kind"`
	MockTotal       int    `yaml:"mock_total"`
	PageLatencyMS   int    `yaml:"page_latency_ms"`
	DetailLatencyMS int    `yaml:"detail_latency_ms"`
	SQLitePath      string `yaml:"sqlite_path,omitempty"`
	PostgresDSN     string `yaml:"postgres_dsn,omitempty"`
	CoalesceDetails bool   `yaml:"coalesce_details"`
}

// DetailCacheConfig configures the on-disk detail record cache.
type DetailCacheConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory,omitempty"`
	TTL       string `yaml:"ttl"`
	Compress  bool   `yaml:"compress"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint. An empty address disables it.
type MetricsConfig struct {
	Address string `yaml:"address,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Version: CurrentVersion,
		Paging: PagingConfig{
			PageSize:        defaultPageSize,
			NearEndFraction: defaultNearEndFraction,
			DebounceMS:      defaultDebounceMS,
			DuplicatePolicy: PolicyKeepFirst,
		},
		View: ViewConfig{
			Overscan:      defaultOverscan,
			InitialPanels: defaultInitialPanels,
		},
		Source: SourceConfig{
			Kind:            SourceMock,
			MockTotal:       defaultMockTotal,
			PageLatencyMS:   defaultPageLatencyMS,
			DetailLatencyMS: defaultDetailLatencyMS,
			CoalesceDetails: true,
		},
		DetailCache: DetailCacheConfig{TTL: defaultCacheTTL, Compress: true},
		Logging:     LoggingConfig{Level: "info", Format: "json"},
	}
	if dir, err := GetConfigDir(); err == nil {
		cfg.configPath = filepath.Join(dir, configFileName)
		cfg.Logging.File = filepath.Join(dir, "logs", "entitydeck.log")
		cfg.DetailCache.Directory = filepath.Join(dir, "cache")
	}
	return cfg
}

// New returns the defaults overlaid with the user's config file, when it exists and
// parses, and then with environment overrides.
func New() *Config {
	cfg := Default()
	if cfg.configPath != "" {
		if data, err := os.ReadFile(cfg.configPath); err == nil {
			loaded := Default()
			if yaml.Unmarshal(data, loaded) == nil {
				cfg = loaded
			}
		}
	}
	cfg.ApplyEnv()
	return cfg
}

// Load reads path over the defaults. Unlike New it reports read and parse errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.configPath = path
	return cfg, nil
}

// Save writes the config to its path, creating the directory when needed.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path is not set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the config to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Path returns the file the config was loaded from or will be saved to.
func (c *Config) Path() string { return c.configPath }

// SetPath changes the file used by Save.
func (c *Config) SetPath(path string) { c.configPath = path }

// ApplyEnv applies ENTITYDECK_* overrides. Unparsable numbers are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ENTITYDECK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ENTITYDECK_SOURCE"); v != "" {
		c.Source.Kind = v
	}
	if v := os.Getenv("ENTITYDECK_POSTGRES_DSN"); v != "" {
		c.Source.PostgresDSN = v
	}
	if n, err := strconv.Atoi(os.Getenv("ENTITYDECK_PAGE_SIZE")); err == nil {
		c.Paging.PageSize = n
	}
	if n, err := strconv.Atoi(os.Getenv("ENTITYDECK_DEBOUNCE_MS")); err == nil {
		c.Paging.DebounceMS = n
	}
}

// Validate checks every field and joins all problems into one error.
func (c *Config) Validate() error {
	var errs []error
	if err := validateVersion(c.Version); err != nil {
		errs = append(errs, err)
	}
	if c.Paging.PageSize <= 0 {
		errs = append(errs, ErrInvalidPageSize)
	}
	if c.Paging.NearEndFraction <= 0 || c.Paging.NearEndFraction >= 1 {
		errs = append(errs, ErrInvalidNearEndFraction)
	}
	if c.Paging.DebounceMS < 0 {
		errs = append(errs, ErrInvalidDebounce)
	}
	if c.Paging.DuplicatePolicy != PolicyKeepFirst && c.Paging.DuplicatePolicy != PolicyAllow {
		errs = append(errs, ErrInvalidPolicy)
	}
	if c.View.InitialPanels < 1 {
		errs = append(errs, ErrInvalidPanels)
	}
	switch c.Source.Kind {
	case SourceMock:
	case SourceSQLite:
		if c.Source.SQLitePath == "" {
			errs = append(errs, ErrMissingSQLitePath)
		}
	case SourcePostgres:
		if c.Source.PostgresDSN == "" {
			errs = append(errs, ErrMissingPostgresDSN)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidSource, c.Source.Kind))
	}
	if c.DetailCache.Enabled {
		if _, err := cache.ParseTTL(c.DetailCache.TTL); err != nil {
			errs = append(errs, fmt.Errorf("detail_cache.ttl: %w", err))
		}
	}
	return errors.Join(errs...)
}

func validateVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrUnsupportedVersion, version, err)
	}
	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w %s (supported %s)", ErrUnsupportedVersion, v, supportedVersions)
	}
	return nil
}

// Debounce returns the debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Paging.DebounceMS) * time.Millisecond
}

// CacheTTL returns the detail cache TTL, or the cache default when it does not parse.
func (c *Config) CacheTTL() time.Duration {
	ttl, err := cache.ParseTTL(c.DetailCache.TTL)
	if err != nil {
		return cache.DefaultTTL
	}
	return ttl
}

// PageLatency returns the mock page latency.
func (c *Config) PageLatency() time.Duration {
	return time.Duration(c.Source.PageLatencyMS) * time.Millisecond
}

// DetailLatency returns the mock detail latency.
func (c *Config) DetailLatency() time.Duration {
	return time.Duration(c.Source.DetailLatencyMS) * time.Millisecond
}
