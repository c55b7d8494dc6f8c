package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/support-desk/internal/domain"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	SLA          SLAConfig
	Stats        StatsConfig
	Lock         LockConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines bearer token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// NotificationConfig holds outbound notification endpoints.
type NotificationConfig struct {
	EmailFrom    string
	WebhookURL   string
	AMQPURL      string
	AMQPExchange string
}

// SLAConfig holds the allowance table and the monitor schedule.
type SLAConfig struct {
	UrgentHours     float64
	HighHours       float64
	MediumHours     float64
	LowHours        float64
	MonitorSchedule string
}

// StatsConfig tunes statistics aggregation.
type StatsConfig struct {
	DuplicateBucket domain.TicketStatus
}

// LockConfig selects the per-ticket lock backend.
type LockConfig struct {
	Backend string
	TTL     time.Duration
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	duplicateBucket := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(os.Getenv("STATS_DUPLICATE_BUCKET"))))
	switch duplicateBucket {
	case "", domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed:
	default:
		return nil, fmt.Errorf("invalid STATS_DUPLICATE_BUCKET: %q", duplicateBucket)
	}

	lockBackend := strings.ToLower(getEnv("LOCK_BACKEND", "memory"))
	if lockBackend != "memory" && lockBackend != "redis" {
		return nil, fmt.Errorf("invalid LOCK_BACKEND: %q", lockBackend)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-desk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Notification: NotificationConfig{
			EmailFrom:    getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL:   getEnv("NOTIFY_WEBHOOK_URL", ""),
			AMQPURL:      getEnv("NOTIFY_AMQP_URL", ""),
			AMQPExchange: getEnv("NOTIFY_AMQP_EXCHANGE", "support-desk.events"),
		},
		SLA: SLAConfig{
			UrgentHours:     getEnvAsFloat("SLA_URGENT_HOURS", 2),
			HighHours:       getEnvAsFloat("SLA_HIGH_HOURS", 8),
			MediumHours:     getEnvAsFloat("SLA_MEDIUM_HOURS", 24),
			LowHours:        getEnvAsFloat("SLA_LOW_HOURS", 72),
			MonitorSchedule: getEnv("SLA_MONITOR_SCHEDULE", "@every 5m"),
		},
		Stats: StatsConfig{
			DuplicateBucket: duplicateBucket,
		},
		Lock: LockConfig{
			Backend: lockBackend,
			TTL:     time.Duration(getEnvAsInt("LOCK_TTL_SECONDS", 10)) * time.Second,
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Policy converts the configured hours into an SLA allowance table.
func (s SLAConfig) Policy() domain.SLAPolicy {
	hours := func(h float64) time.Duration {
		return time.Duration(h * float64(time.Hour))
	}
	return domain.SLAPolicy{
		domain.TicketPriorityUrgent: hours(s.UrgentHours),
		domain.TicketPriorityHigh:   hours(s.HighHours),
		domain.TicketPriorityMedium: hours(s.MediumHours),
		domain.TicketPriorityLow:    hours(s.LowHours),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
