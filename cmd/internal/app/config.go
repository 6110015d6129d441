package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string // json, text or console

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Empty means in-memory stores.
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	DBMigrate   bool

	DBStatementTimeout  time.Duration
	DBMaxConnIdle       time.Duration
	DBHealthCheckPeriod time.Duration

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	MetricsEnabled bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("MINISOCIAL_HTTP_ADDR", "0.0.0.0:5000"),
		LogLevel:  EnvString("MINISOCIAL_LOG_LEVEL", "info"),
		LogFormat: EnvString("MINISOCIAL_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("MINISOCIAL_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("MINISOCIAL_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("MINISOCIAL_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("MINISOCIAL_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("MINISOCIAL_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("MINISOCIAL_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("MINISOCIAL_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("MINISOCIAL_DB_MIN_CONNS", 0),
		DBMigrate:   EnvBool("MINISOCIAL_DB_MIGRATE", true),

		DBStatementTimeout:  EnvDuration("MINISOCIAL_DB_STATEMENT_TIMEOUT", 5*time.Second),
		DBMaxConnIdle:       EnvDuration("MINISOCIAL_DB_MAX_CONN_IDLE", 5*time.Minute),
		DBHealthCheckPeriod: EnvDuration("MINISOCIAL_DB_HEALTH_CHECK_PERIOD", 30*time.Second),

		ReadinessRequireDB: EnvBool("MINISOCIAL_READINESS_REQUIRE_DB", false),

		CORSAllowedOrigins:   EnvList("MINISOCIAL_CORS_ALLOWED_ORIGINS", []string{"*"}),
		CORSAllowCredentials: EnvBool("MINISOCIAL_CORS_ALLOW_CREDENTIALS", false),
		CORSMaxAgeSeconds:    EnvInt("MINISOCIAL_CORS_MAX_AGE", 600),

		MetricsEnabled: EnvBool("MINISOCIAL_METRICS_ENABLED", true),
	}
}
