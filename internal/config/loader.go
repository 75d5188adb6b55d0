package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads the configuration from the environment, fills in defaults and
// validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := fill(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// fill sets every env-tagged field of v, descending into the section structs.
func fill(v reflect.Value) error {
	t := v.Type()
	for i := range t.NumField() {
		field, fv := t.Field(i), v.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := fill(fv); err != nil {
				return err
			}
			continue
		}
		if !fv.CanSet() || field.Tag.Get("env") == "" {
			continue
		}

		name, raw, err := lookup(field.Tag)
		if err != nil {
			return err
		}
		if raw == "" {
			continue
		}
		if err := parse(fv, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, raw, err)
		}
	}
	return nil
}

// lookup returns the raw value for a field: the env var, then envAlt, then
// the default. A required field with neither variable set is an error.
func lookup(tag reflect.StructTag) (name, raw string, err error) {
	name = tag.Get("env")
	raw = os.Getenv(name)
	if raw == "" {
		if alt := tag.Get("envAlt"); alt != "" {
			raw = os.Getenv(alt)
		}
	}
	if raw != "" {
		return name, raw, nil
	}
	if tag.Get("required") == "true" {
		return name, "", fmt.Errorf("required environment variable %s is not set", name)
	}
	return name, tag.Get("default"), nil
}

// parse stores raw in fv. Config only uses strings, ints, bools, durations
// and comma-separated string lists.
func parse(fv reflect.Value, raw string) error {
	switch {
	case fv.Type() == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		fv.SetInt(int64(d))
	case fv.Kind() == reflect.String:
		fv.SetString(raw)
	case fv.Kind() == reflect.Int:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		fv.SetInt(int64(n))
	case fv.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		fv.SetBool(b)
	case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String:
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	problems = append(problems, c.Database.problems()...)
	problems = append(problems, c.Server.problems()...)
	problems = append(problems, c.Import.problems()...)
	problems = append(problems, c.Rate.problems()...)
	problems = append(problems, c.Security.problems()...)
	problems = append(problems, c.Logging.problems()...)

	if len(problems) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func (d *DatabaseConfig) problems() []string {
	var p []string
	if d.URL == "" {
		p = append(p, "DATABASE_URL is required")
	}
	if d.MaxConns <= 0 {
		p = append(p, "DB_MAX_CONNS must be positive")
	}
	if d.MinConns < 0 {
		p = append(p, "DB_MIN_CONNS must be non-negative")
	}
	if d.MaxConns < d.MinConns {
		p = append(p, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", d.MaxConns, d.MinConns))
	}
	if d.ConnectTimeout <= 0 {
		p = append(p, "DB_CONNECT_TIMEOUT must be positive")
	}
	return p
}

func (s *ServerConfig) problems() []string {
	var p []string
	if s.Port <= 0 || s.Port > 65535 {
		p = append(p, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", s.Port))
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.RequestTimeout < 0 {
		p = append(p, "SERVER_*_TIMEOUT values must be non-negative")
	}
	if s.ShutdownTimeout <= 0 {
		p = append(p, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	return p
}

func (i *ImportConfig) problems() []string {
	var p []string
	if i.Dir == "" && i.File == "" {
		p = append(p, "IMPORT_DIR or IMPORT_FILE must be set")
	}
	if !strings.HasPrefix(i.Extension, ".") || len(i.Extension) < 2 {
		p = append(p, fmt.Sprintf("IMPORT_EXTENSION (%q) must be a suffix such as .csv", i.Extension))
	}
	if i.ProgressEvery <= 0 {
		p = append(p, "IMPORT_PROGRESS_EVERY must be positive")
	}
	return p
}

// problems checks the limiter settings only when the limiter is on.
func (r *RateLimitConfig) problems() []string {
	if !r.Enabled {
		return nil
	}
	var p []string
	if r.RequestsPerMinute <= 0 {
		p = append(p, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if r.Burst <= 0 {
		p = append(p, "RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	return p
}

func (s *SecurityConfig) problems() []string {
	if s.RequireAPIKey && len(s.APIKeys) == 0 {
		return []string{"REQUIRE_API_KEY is true but API_KEYS is empty"}
	}
	return nil
}

func (l *LoggingConfig) problems() []string {
	var p []string
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		p = append(p, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", l.Level))
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		p = append(p, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", l.Format))
	}
	return p
}

// LogValue renders the configuration for structured logs. The database URL
// and API keys are never written out.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", c.Server.Addr()),
		slog.Group("database",
			slog.String("url", "[MASKED]"),
			slog.Int("max_conns", c.Database.MaxConns),
			slog.Int("min_conns", c.Database.MinConns),
		),
		slog.Group("import",
			slog.String("dir", c.Import.Dir),
			slog.String("file", c.Import.File),
			slog.String("extension", c.Import.Extension),
		),
		slog.Group("rate_limit",
			slog.Bool("enabled", c.Rate.Enabled),
			slog.Int("requests_per_minute", c.Rate.RequestsPerMinute),
			slog.Int("burst", c.Rate.Burst),
		),
		slog.Bool("require_api_key", c.Security.RequireAPIKey),
		slog.Int("api_keys", len(c.Security.APIKeys)),
		slog.String("log_level", c.Logging.Level),
	)
}
