// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, storage, swipe quotas, notification delivery, rate limiting and
// observability settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-match-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects the storage dialect and bounds every storage call.
type DBConfig struct {
	Driver  string        // sqlite|mysql
	Path    string        // SQLite file path
	DSN     string        // MySQL DSN (user:pass@tcp(host:3306)/db?parseTime=true)
	Timeout time.Duration // per-operation deadline
}

// RedisConfig holds connection settings for the Redis-backed notification queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QueueKey string
}

// NotifyConfig configures the asynchronous notification dispatcher and its
// sender adapters.
type NotifyConfig struct {
	Queue   string // memory|redis
	Workers int
	Buffer  int
	Redis   RedisConfig

	// Email (Resend)
	ResendAPIKey     string
	EmailFrom        string
	EmailMinInterval time.Duration
	EmailMaxRetries  int

	// Push (OneSignal)
	OneSignalAppID  string
	OneSignalAPIKey string

	AppURL string // used for links in emails
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	LogRedact      bool   // scrub PII from access logs
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DB DBConfig

	// Discovery
	DailySwipeLimit int    // swipes per calendar day
	QuotaTimezone   string // IANA name; empty means server local time

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Notifications
	Notify NotifyConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		LogRedact:      getbool("LOG_REDACT", true),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Storage
		DB: DBConfig{
			Driver:  strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:    getenv("DB_PATH", "app.db"),
			DSN:     getenv("DB_DSN", ""),
			Timeout: getdur("DB_TIMEOUT", 5*time.Second),
		},

		// Discovery
		DailySwipeLimit: getint("DAILY_SWIPE_LIMIT", 100),
		QuotaTimezone:   strings.TrimSpace(getenv("QUOTA_TIMEZONE", "")),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Notifications
		Notify: NotifyConfig{
			Queue:   strings.ToLower(getenv("NOTIFY_QUEUE", "memory")),
			Workers: getint("NOTIFY_WORKERS", 2),
			Buffer:  getint("NOTIFY_BUFFER", 256),
			Redis: RedisConfig{
				Addr:     getenv("REDIS_ADDR", "localhost:6379"),
				Password: getenv("REDIS_PASSWORD", ""),
				DB:       getint("REDIS_DB", 0),
				QueueKey: getenv("REDIS_QUEUE_KEY", "notify:events"),
			},
			ResendAPIKey:     getenv("RESEND_API_KEY", ""),
			EmailFrom:        getenv("EMAIL_FROM", "Therianr <noreply@therianr.com>"),
			EmailMinInterval: getdur("EMAIL_MIN_INTERVAL", 600*time.Millisecond),
			EmailMaxRetries:  getint("EMAIL_MAX_RETRIES", 2),
			OneSignalAppID:   getenv("ONESIGNAL_APP_ID", ""),
			OneSignalAPIKey:  getenv("ONESIGNAL_API_KEY", ""),
			AppURL:           strings.TrimRight(getenv("APP_URL", "https://therianr.com"), "/"),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-match-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "mysql":
		if strings.TrimSpace(cfg.DB.DSN) == "" {
			return cfg, errors.New("DB_DSN is required when DB_DRIVER=mysql")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, mysql")
	}
	if cfg.DB.Timeout <= 0 {
		return cfg, errors.New("DB_TIMEOUT must be > 0")
	}
	if cfg.DailySwipeLimit < 1 {
		return cfg, errors.New("DAILY_SWIPE_LIMIT must be >= 1")
	}
	if cfg.QuotaTimezone != "" {
		if _, err := time.LoadLocation(cfg.QuotaTimezone); err != nil {
			return cfg, errors.New("QUOTA_TIMEZONE must be a valid IANA zone name")
		}
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	switch cfg.Notify.Queue {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.Notify.Redis.Addr) == "" {
			return cfg, errors.New("REDIS_ADDR is required when NOTIFY_QUEUE=redis")
		}
	default:
		return cfg, errors.New("NOTIFY_QUEUE must be one of: memory, redis")
	}
	if cfg.Notify.Workers < 1 {
		return cfg, errors.New("NOTIFY_WORKERS must be >= 1")
	}
	if cfg.Notify.Buffer < 1 {
		return cfg, errors.New("NOTIFY_BUFFER must be >= 1")
	}
	if cfg.Notify.EmailMinInterval < 0 {
		return cfg, errors.New("EMAIL_MIN_INTERVAL must be >= 0")
	}
	if cfg.Notify.EmailMaxRetries < 0 {
		return cfg, errors.New("EMAIL_MAX_RETRIES must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// Location returns the timezone used for the daily swipe quota boundary.
// An empty or invalid QuotaTimezone yields time.Local.
func (c Config) Location() *time.Location {
	if c.QuotaTimezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.QuotaTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
