package config

import (
	"strings"
	"testing"
	"time"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, ShutdownTimeout: time.Second, RequestTimeout: time.Second},
		Database: DatabaseConfig{URL: "postgres://localhost/test", MaxConns: 10, MinConns: 1},
		Import:   ImportConfig{MaxFileSize: 1, TimeZone: "UTC", TwoDigitYearPivot: 20, Comma: ",", MaxConcurrent: 2},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadEnv(env(nil))
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Database.Enabled() {
		t.Error("Database.Enabled() = true without DATABASE_URL")
	}
	if cfg.Import.MaxFileSize != 32<<20 {
		t.Errorf("Import.MaxFileSize = %d, want %d", cfg.Import.MaxFileSize, 32<<20)
	}
	if cfg.Import.TwoDigitYearPivot != 20 {
		t.Errorf("Import.TwoDigitYearPivot = %d, want %d", cfg.Import.TwoDigitYearPivot, 20)
	}
	if cfg.Import.Comma != "," {
		t.Errorf("Import.Comma = %q, want %q", cfg.Import.Comma, ",")
	}
	if cfg.Import.MaxConcurrent != 4 || cfg.Import.QueueTimeout != 30*time.Second {
		t.Errorf("Import concurrency = %d/%s, want 4/30s", cfg.Import.MaxConcurrent, cfg.Import.QueueTimeout)
	}
	loc, err := cfg.Import.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Import.Location() = %v, %v; want UTC", loc, err)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadEnv(env(map[string]string{
		"DATABASE_URL":       "postgres://localhost/test",
		"SERVER_PORT":        "9090",
		"IMPORT_MAX_ROWS":    "500",
		"IMPORT_TIME_ZONE":   "Europe/Moscow",
		"IMPORT_SHAPES_FILE": "shapes.yaml",
		"LOG_LEVEL":          "debug",
	}))
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if !cfg.Database.Enabled() {
		t.Error("Database.Enabled() = false with DATABASE_URL set")
	}
	if cfg.Import.MaxRows != 500 {
		t.Errorf("Import.MaxRows = %d, want %d", cfg.Import.MaxRows, 500)
	}
	if cfg.Import.ShapesFile != "shapes.yaml" {
		t.Errorf("Import.ShapesFile = %q, want %q", cfg.Import.ShapesFile, "shapes.yaml")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	// DB_URL works as fallback
	cfg, err := LoadEnv(env(map[string]string{"DB_URL": "postgres://localhost/alttest"}))
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if cfg.Database.URL != "postgres://localhost/alttest" {
		t.Errorf("Database.URL = %q, want %q", cfg.Database.URL, "postgres://localhost/alttest")
	}
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 7070)
	}
}

func TestLoad_Duration(t *testing.T) {
	cfg, err := LoadEnv(env(map[string]string{
		"SERVER_READ_TIMEOUT":  "45s",
		"DB_MAX_CONN_LIFETIME": "1m30s",
	}))
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Database.MaxConnLifetime != 90*time.Second {
		t.Errorf("Database.MaxConnLifetime = %v, want %v", cfg.Database.MaxConnLifetime, 90*time.Second)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	cfg, err := LoadEnv(env(map[string]string{
		"TRUSTED_PROXIES": "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16",
		"API_KEYS":        "k1,,k2",
	}))
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Server.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Server.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Server.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Server.TrustedProxies[i], v)
		}
	}
	if len(cfg.Server.APIKeys) != 2 {
		t.Errorf("APIKeys = %q, want 2 keys", cfg.Server.APIKeys)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	tests := map[string]string{
		"SERVER_PORT":         "eighty",
		"SERVER_READ_TIMEOUT": "soon",
	}
	for name, value := range tests {
		_, err := LoadEnv(env(map[string]string{name: value}))
		if err == nil {
			t.Errorf("LoadEnv(%s=%q) expected error", name, value)
			continue
		}
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
}

// ----------------------------------------------------------------------------
// Validate
// ----------------------------------------------------------------------------

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "SERVER_SHUTDOWN_TIMEOUT"},
		{"conns", func(c *Config) { c.Database.MinConns = 20 }, "DB_MAX_CONNS"},
		{"file size", func(c *Config) { c.Import.MaxFileSize = 0 }, "IMPORT_MAX_FILE_SIZE"},
		{"max rows", func(c *Config) { c.Import.MaxRows = -1 }, "IMPORT_MAX_ROWS"},
		{"max concurrent", func(c *Config) { c.Import.MaxConcurrent = 0 }, "IMPORT_MAX_CONCURRENT"},
		{"queue timeout", func(c *Config) { c.Import.QueueTimeout = -time.Second }, "IMPORT_QUEUE_TIMEOUT"},
		{"time zone", func(c *Config) { c.Import.TimeZone = "Mars/Olympus" }, "IMPORT_TIME_ZONE"},
		{"pivot", func(c *Config) { c.Import.TwoDigitYearPivot = 100 }, "IMPORT_TWO_DIGIT_YEAR_PIVOT"},
		{"comma", func(c *Config) { c.Import.Comma = ";;" }, "IMPORT_CSV_COMMA"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %s", err, tt.want)
			}
		})
	}
}

func TestValidate_DatabaseDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.Database = DatabaseConfig{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, pool sizes only matter with a database", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestString_MasksDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Database.URL = "postgres://user:secret@db/reports"

	s := cfg.String()
	if strings.Contains(s, "secret") {
		t.Errorf("String() leaks the database URL: %s", s)
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() = %s, want masked URL", s)
	}
	if got := (&ServerConfig{Host: "", Port: 80}).Addr(); got != ":80" {
		t.Errorf("Addr() = %q, want %q", got, ":80")
	}
}
