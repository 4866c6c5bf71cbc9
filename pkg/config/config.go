package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	SMTP      SMTPConfig
	Push      PushConfig
	Scheduler SchedulerConfig
	Display   DisplayConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type LogConfig struct {
	Level  string
	Format string
}

// SMTPConfig configures the transactional email gateway.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// PushConfig configures the push delivery gateway client.
type PushConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SchedulerConfig tunes the delayed notification task scheduler.
type SchedulerConfig struct {
	PollInterval      time.Duration
	WorkerConcurrency int
	WorkerRetries     int
	DedupeTTL         time.Duration
}

// DisplayConfig controls human-facing formatting of instants.
type DisplayConfig struct {
	Timezone string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Username: v.GetString("SMTP_USERNAME"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("SMTP_FROM"),
	}

	cfg.Push = PushConfig{
		BaseURL: v.GetString("PUSH_GATEWAY_URL"),
		APIKey:  v.GetString("PUSH_GATEWAY_API_KEY"),
		Timeout: parseDuration(v.GetString("PUSH_GATEWAY_TIMEOUT"), 10*time.Second),
	}

	cfg.Scheduler = SchedulerConfig{
		PollInterval:      parseDuration(v.GetString("SCHEDULER_POLL_INTERVAL"), 15*time.Second),
		WorkerConcurrency: v.GetInt("SCHEDULER_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("SCHEDULER_WORKER_RETRIES"),
		DedupeTTL:         parseDuration(v.GetString("SCHEDULER_DEDUPE_TTL"), 7*24*time.Hour),
	}

	cfg.Display = DisplayConfig{
		Timezone: v.GetString("DISPLAY_TIMEZONE"),
	}

	if cfg.Env == EnvProduction {
		if cfg.JWT.Secret == "" || cfg.JWT.Secret == "dev_secret" {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		if cfg.SMTP.Host == "" {
			return nil, errors.New("SMTP_HOST must be set in production")
		}
		if cfg.Push.BaseURL == "" {
			return nil, errors.New("PUSH_GATEWAY_URL must be set in production")
		}
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/internal")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "lms")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "lms-platform")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "no-reply@lms.local")

	v.SetDefault("PUSH_GATEWAY_URL", "")
	v.SetDefault("PUSH_GATEWAY_API_KEY", "")
	v.SetDefault("PUSH_GATEWAY_TIMEOUT", "10s")

	v.SetDefault("SCHEDULER_POLL_INTERVAL", "15s")
	v.SetDefault("SCHEDULER_WORKER_CONCURRENCY", 4)
	v.SetDefault("SCHEDULER_WORKER_RETRIES", 3)
	v.SetDefault("SCHEDULER_DEDUPE_TTL", "168h")

	v.SetDefault("DISPLAY_TIMEZONE", "UTC")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
