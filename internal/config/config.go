package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/pebble/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "pebble.json"

	// DefaultInspectorAddr is the default inspector listen address.
	DefaultInspectorAddr = "localhost:7070"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "pebble"

	// DefaultSnapshotKey is the key snapshots are saved under.
	DefaultSnapshotKey = "default"

	// DefaultTableName is the default SQL snapshot table.
	DefaultTableName = "pebble_snapshots"
)

// Snapshot drivers.
const (
	DriverNone   = ""
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverS3     = "s3"
)

// Config represents the complete pebble.json configuration.
type Config struct {
	// Inspector contains inspector server configuration.
	Inspector InspectorConfig `json:"inspector,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// Snapshot contains snapshot persistence configuration.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	// Addr is the address the inspector listens on.
	Addr string `json:"addr,omitempty"`

	// AllowedOrigins restricts WebSocket origins. Empty allows all.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`

	// Subsystem is inserted between namespace and metric name.
	Subsystem string `json:"subsystem,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// SnapshotConfig contains snapshot persistence settings.
type SnapshotConfig struct {
	// Driver selects the store: memory, sqlite or s3. Empty disables
	// snapshots.
	Driver string `json:"driver,omitempty"`

	// DSN is the SQLite data source name.
	DSN string `json:"dsn,omitempty"`

	// Table is the SQL table name.
	Table string `json:"table,omitempty"`

	// Bucket is the S3 bucket.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to S3 object keys.
	Prefix string `json:"prefix,omitempty"`

	// Region is the S3 region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty"`

	// Key is the snapshot key within the store.
	Key string `json:"key,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for pebble.json in the directory and returns defaults if there is
// none.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return New(), nil
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("P020").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("P020").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("P020").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("P020").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Inspector.Addr == "" {
		c.Inspector.Addr = DefaultInspectorAddr
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Snapshot.Key == "" {
		c.Snapshot.Key = DefaultSnapshotKey
	}
	if c.Snapshot.Table == "" {
		c.Snapshot.Table = DefaultTableName
	}
	c.Snapshot.Driver = strings.ToLower(c.Snapshot.Driver)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := parseLevel(c.Log.Level); !ok {
		return invalid("log.level must be one of debug, info, warn, error; got " + quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format must be text or json; got " + quote(c.Log.Format))
	}

	switch c.Snapshot.Driver {
	case DriverNone, DriverMemory:
	case DriverSQLite:
		if c.Snapshot.DSN == "" {
			return invalid("snapshot.dsn is required for the sqlite driver")
		}
	case DriverS3:
		if c.Snapshot.Bucket == "" {
			return invalid("snapshot.bucket is required for the s3 driver")
		}
	default:
		return invalid("snapshot.driver must be memory, sqlite or s3; got " + quote(c.Snapshot.Driver))
	}
	return nil
}

// SnapshotsEnabled reports whether a snapshot driver is configured.
func (c *Config) SnapshotsEnabled() bool {
	return c.Snapshot.Driver != DriverNone
}

// NewLogger builds a slog.Logger writing to w as configured.
// Call Validate first; unknown values fall back to info and text.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// CheckOrigin returns a WebSocket origin check for the inspector, or nil to
// allow every origin.
func (c *Config) CheckOrigin() func(origin string) bool {
	if len(c.Inspector.AllowedOrigins) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(c.Inspector.AllowedOrigins))
	for _, o := range c.Inspector.AllowedOrigins {
		allowed[o] = true
	}
	return func(origin string) bool {
		return allowed[origin]
	}
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func invalid(detail string) error {
	return errors.New("P020").
		WithDetail(detail).
		WithSuggestion("Fix " + ConfigFileName + " and try again")
}

func quote(s string) string {
	return `"` + s + `"`
}
