package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Load reads configuration from the process environment, applies defaults
// and validates the result.
func Load() (*Config, error) {
	return LoadEnv(os.Getenv)
}

// LoadEnv is Load with a custom variable lookup.
func LoadEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	if err := envSource(getenv).fill(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// envSource resolves struct tags against environment variables:
//
//	env:"NAME"       primary variable
//	envAlt:"OTHER"   fallback variable
//	default:"value"  used when both are unset
//	required:"true"  fail when no value is found
type envSource func(string) string

var durationType = reflect.TypeFor[time.Duration]()

// fill sets every tagged field of the struct v, descending into nested
// structs. All bad values are reported together.
func (src envSource) fill(v reflect.Value) error {
	var errs []error
	t := v.Type()
	for i := range t.NumField() {
		f, dst := t.Field(i), v.Field(i)
		if !dst.CanSet() {
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			if err := src.fill(dst); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		name, raw, err := src.lookup(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if raw == "" {
			continue
		}
		if err := decode(dst, raw); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", name, raw, err))
		}
	}
	return errors.Join(errs...)
}

func (src envSource) lookup(f reflect.StructField) (name, raw string, err error) {
	name = f.Tag.Get("env")
	if name == "" {
		return "", "", nil
	}
	raw = src(name)
	if alt := f.Tag.Get("envAlt"); raw == "" && alt != "" {
		raw = src(alt)
	}
	if raw != "" {
		return name, raw, nil
	}
	if f.Tag.Get("required") == "true" {
		return name, "", fmt.Errorf("required environment variable %s is not set", name)
	}
	return name, f.Tag.Get("default"), nil
}

// decode parses raw into dst according to its type.
func decode(dst reflect.Value, raw string) error {
	if dst.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		dst.SetInt(int64(d))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("%d out of range", n)
		}
		dst.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case reflect.Slice:
		if dst.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", dst.Type().Elem())
		}
		dst.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", dst.Type())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Database validation, only when saving is enabled
	if c.Database.Enabled() {
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
	}

	// Import validation
	if c.Import.MaxFileSize <= 0 {
		errs = append(errs, "IMPORT_MAX_FILE_SIZE must be positive")
	}
	if c.Import.MaxRows < 0 {
		errs = append(errs, "IMPORT_MAX_ROWS must be non-negative")
	}
	if _, err := c.Import.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("IMPORT_TIME_ZONE (%q) is not a known zone", c.Import.TimeZone))
	}
	if c.Import.TwoDigitYearPivot < 1 || c.Import.TwoDigitYearPivot > 99 {
		errs = append(errs, fmt.Sprintf("IMPORT_TWO_DIGIT_YEAR_PIVOT (%d) must be 1-99", c.Import.TwoDigitYearPivot))
	}
	if utf8.RuneCountInString(c.Import.Comma) != 1 {
		errs = append(errs, fmt.Sprintf("IMPORT_CSV_COMMA (%q) must be a single character", c.Import.Comma))
	}
	if c.Import.MaxConcurrent < 1 {
		errs = append(errs, fmt.Sprintf("IMPORT_MAX_CONCURRENT (%d) must be at least 1", c.Import.MaxConcurrent))
	}
	if c.Import.QueueTimeout < 0 {
		errs = append(errs, fmt.Sprintf("IMPORT_QUEUE_TIMEOUT (%s) must not be negative", c.Import.QueueTimeout))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	db := "disabled"
	if c.Database.Enabled() {
		db = "[MASKED]"
	}
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q}, ", c.Server.Addr())
	fmt.Fprintf(&b, "Database: {URL: %s, MaxConns: %d, MinConns: %d}, ",
		db, c.Database.MaxConns, c.Database.MinConns)
	fmt.Fprintf(&b, "Import: {MaxFileSize: %d, MaxRows: %d, MaxConcurrent: %d, TimeZone: %q, ShapesFile: %q}, ",
		c.Import.MaxFileSize, c.Import.MaxRows, c.Import.MaxConcurrent, c.Import.TimeZone, c.Import.ShapesFile)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
