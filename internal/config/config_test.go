package config

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/pebble/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Inspector.Addr != DefaultInspectorAddr {
		t.Errorf("Inspector.Addr = %q, want %q", cfg.Inspector.Addr, DefaultInspectorAddr)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want info/text", cfg.Log)
	}
	if cfg.Snapshot.Key != DefaultSnapshotKey {
		t.Errorf("Snapshot.Key = %q, want %q", cfg.Snapshot.Key, DefaultSnapshotKey)
	}
	if cfg.SnapshotsEnabled() {
		t.Error("snapshots should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// A missing file yields defaults.
	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load without file: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}
	if cfg.Inspector.Addr != DefaultInspectorAddr {
		t.Errorf("Inspector.Addr = %q, want default", cfg.Inspector.Addr)
	}

	configPath := filepath.Join(tmpDir, ConfigFileName)
	configJSON := `{
  "inspector": {"addr": ":9090"},
  "log": {"level": "debug", "format": "json"},
  "snapshot": {"driver": "SQLite", "dsn": "state.db"}
}
`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err = Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Inspector.Addr != ":9090" {
		t.Errorf("Inspector.Addr = %q, want %q", cfg.Inspector.Addr, ":9090")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}
	if cfg.Snapshot.Driver != DriverSQLite {
		t.Errorf("Snapshot.Driver = %q, want %q", cfg.Snapshot.Driver, DriverSQLite)
	}
	if cfg.Snapshot.Table != DefaultTableName {
		t.Errorf("Snapshot.Table = %q, want %q", cfg.Snapshot.Table, DefaultTableName)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want default", cfg.Metrics.Namespace)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(tmpDir)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if code := errors.CodeOf(err); code != "P020" {
		t.Errorf("code = %q, want P020", code)
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Snapshot.Driver = DriverS3
	cfg.Snapshot.Bucket = "states"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		t.Error("saved file should end with a newline")
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved file is not JSON: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Snapshot.Bucket != "states" || loaded.Snapshot.Driver != DriverS3 {
		t.Errorf("Snapshot = %+v", loaded.Snapshot)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"memory", func(c *Config) { c.Snapshot.Driver = DriverMemory }, ""},
		{"sqlite", func(c *Config) { c.Snapshot.Driver = DriverSQLite; c.Snapshot.DSN = "x.db" }, ""},
		{"sqlite without dsn", func(c *Config) { c.Snapshot.Driver = DriverSQLite }, "snapshot.dsn"},
		{"s3", func(c *Config) { c.Snapshot.Driver = DriverS3; c.Snapshot.Bucket = "b" }, ""},
		{"s3 without bucket", func(c *Config) { c.Snapshot.Driver = DriverS3 }, "snapshot.bucket"},
		{"unknown driver", func(c *Config) { c.Snapshot.Driver = "redis" }, "snapshot.driver"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error mentioning %q", tt.wantErr)
			}
			if code := errors.CodeOf(err); code != "P020" {
				t.Errorf("code = %q, want P020", code)
			}
			if !strings.Contains(err.(*errors.PebbleError).Detail, tt.wantErr) {
				t.Errorf("detail = %q, want it to mention %q", err.(*errors.PebbleError).Detail, tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		format    string
		level     string
		wantDebug bool
		wantJSON  bool
	}{
		{"text", "info", false, false},
		{"text", "debug", true, false},
		{"json", "warn", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.level, func(t *testing.T) {
			cfg := New()
			cfg.Log.Format = tt.format
			cfg.Log.Level = tt.level

			var buf bytes.Buffer
			logger := cfg.NewLogger(&buf)
			logger.Debug("probe")
			logger.Error("boom")

			out := buf.String()
			if got := strings.Contains(out, "probe"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v (%q)", got, tt.wantDebug, out)
			}
			if got := strings.HasPrefix(out, "{"); got != tt.wantJSON {
				t.Errorf("json output = %v, want %v (%q)", got, tt.wantJSON, out)
			}
			if !logger.Enabled(context.Background(), slog.LevelError) {
				t.Error("error level should always be enabled")
			}
		})
	}
}

func TestCheckOrigin(t *testing.T) {
	cfg := New()
	if cfg.CheckOrigin() != nil {
		t.Error("CheckOrigin() should be nil without allowed origins")
	}

	cfg.Inspector.AllowedOrigins = []string{"http://localhost:3000"}
	check := cfg.CheckOrigin()
	if !check("http://localhost:3000") {
		t.Error("listed origin rejected")
	}
	if check("http://evil.example") {
		t.Error("unlisted origin accepted")
	}
}
