package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Chat     ChatConfig
	Reminder ReminderConfig
	Catalog  CatalogConfig
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

// AuthConfig defines admin API authentication parameters.
type AuthConfig struct {
	JWTSecret         string
	TokenTTLMinutes   int
	GatewaySecretHash string
}

// ChatConfig holds the outbound chat gateway and well-known addresses.
type ChatConfig struct {
	GatewayURL        string
	SendTimeoutSec    int
	SharedAddress     string
	SupervisorAddress string
	DefaultTechnician string
}

// ReminderConfig tunes the stale-order sweeps.
type ReminderConfig struct {
	CriticalAfterHours int
	NormalAfterHours   int
	EscalateAfterHours int
	SLAHours           int
	ThrottleMillis     int
	SweepTimes         []string
	SummaryTime        string
}

// CatalogConfig controls catalog snapshot caching and classifier rules.
type CatalogConfig struct {
	CacheTTLSeconds int
	RulesetPath     string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "service-desk-bot"),
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
			JWTSecret:         getEnv("AUTH_JWT_SECRET", "dev-secret"),
			TokenTTLMinutes:   getEnvAsInt("AUTH_TOKEN_TTL_MINUTES", 60),
			GatewaySecretHash: os.Getenv("AUTH_GATEWAY_SECRET_HASH"),
		},
		Chat: ChatConfig{
			GatewayURL:        getEnv("CHAT_GATEWAY_URL", ""),
			SendTimeoutSec:    getEnvAsInt("CHAT_SEND_TIMEOUT_SECONDS", 10),
			SharedAddress:     getEnv("CHAT_SHARED_ADDRESS", "taller"),
			SupervisorAddress: getEnv("CHAT_SUPERVISOR_ADDRESS", "supervisor"),
			DefaultTechnician: getEnv("CHAT_DEFAULT_TECHNICIAN", ""),
		},
		Reminder: ReminderConfig{
			CriticalAfterHours: getEnvAsInt("REMINDER_CRITICAL_AFTER_HOURS", 2),
			NormalAfterHours:   getEnvAsInt("REMINDER_NORMAL_AFTER_HOURS", 4),
			EscalateAfterHours: getEnvAsInt("REMINDER_ESCALATE_AFTER_HOURS", 6),
			SLAHours:           getEnvAsInt("REMINDER_SLA_HOURS", 24),
			ThrottleMillis:     getEnvAsInt("REMINDER_THROTTLE_MILLIS", 1500),
			SweepTimes:         getEnvAsList("REMINDER_SWEEP_TIMES", "09:00,13:00,17:00"),
			SummaryTime:        getEnv("REMINDER_SUMMARY_TIME", "18:30"),
		},
		Catalog: CatalogConfig{
			CacheTTLSeconds: getEnvAsInt("CATALOG_CACHE_TTL_SECONDS", 300),
			RulesetPath:     getEnv("CLASSIFIER_RULESET_PATH", ""),
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

// CriticalAfter returns the stale threshold applied to critical orders.
func (r ReminderConfig) CriticalAfter() time.Duration {
	return time.Duration(r.CriticalAfterHours) * time.Hour
}

// NormalAfter returns the stale threshold applied to non-critical orders.
func (r ReminderConfig) NormalAfter() time.Duration {
	return time.Duration(r.NormalAfterHours) * time.Hour
}

// EscalateAfter returns the threshold for shared-channel escalation.
func (r ReminderConfig) EscalateAfter() time.Duration {
	return time.Duration(r.EscalateAfterHours) * time.Hour
}

// SLA returns the daily-summary breach threshold.
func (r ReminderConfig) SLA() time.Duration {
	return time.Duration(r.SLAHours) * time.Hour
}

// Throttle returns the fixed delay between outbound reminder sends.
func (r ReminderConfig) Throttle() time.Duration {
	return time.Duration(r.ThrottleMillis) * time.Millisecond
}

// CacheTTL returns the catalog snapshot TTL.
func (c CatalogConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// SendTimeout returns the outbound chat request timeout.
func (c ChatConfig) SendTimeout() time.Duration {
	if c.SendTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.SendTimeoutSec) * time.Second
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

func getEnvAsList(key, fallback string) []string {
	val := os.Getenv(key)
	if val == "" {
		val = fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
