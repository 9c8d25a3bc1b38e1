package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Matching  MatchingConfig
	Dispatch  DispatchConfig
	Embedding EmbeddingConfig
	Delivery  DeliveryConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	// BaseURL is the externally reachable origin used to build tracking
	// links embedded in outbound notifications.
	BaseURL  string
	LogJSON  bool
	LogDebug bool
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout      time.Duration
	PoolMaxConns        int32
	PoolMinConns        int32
	PoolMaxConnLifetime time.Duration
	PoolMaxConnIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type MatchingConfig struct {
	// QualificationFloor is the minimum score for a match to be persisted
	// and become eligible for notification.
	QualificationFloor float64
	HighScoreThreshold float64
	// ActivityWindow bounds how recently a candidate must have been active.
	ActivityWindow time.Duration
	// EmbeddingMaxAge bounds how stale a stored profile embedding may be.
	EmbeddingMaxAge time.Duration
}

type DispatchConfig struct {
	HourlyBudget   int
	BatchSize      int
	BatchDelay     time.Duration
	Concurrency    int
	DeliverTimeout time.Duration
}

type EmbeddingConfig struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type DeliveryConfig struct {
	APIURL  string
	APIKey  string
	From    string
	Timeout time.Duration
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		BaseURL:     req("APP_BASE_URL"),
		LogJSON:     optBool("LOG_JSON", true),
		LogDebug:    optBool("LOG_DEBUG", false),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),

		ConnectTimeout:      optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:        int32(optInt("DB_POOL_MAX_CONNS", 10)),
		PoolMinConns:        int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime: optDuration("DB_POOL_MAX_CONN_LIFETIME", time.Hour),
		PoolMaxConnIdleTime: optDuration("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
	}

	cfg.Matching = MatchingConfig{
		QualificationFloor: optFloat("MATCH_QUALIFICATION_FLOOR", 80),
		HighScoreThreshold: optFloat("MATCH_HIGH_SCORE_THRESHOLD", 90),
		ActivityWindow:     optDuration("CANDIDATE_ACTIVITY_WINDOW", 30*24*time.Hour),
		EmbeddingMaxAge:    optDuration("EMBEDDING_MAX_AGE", 60*24*time.Hour),
	}

	cfg.Dispatch = DispatchConfig{
		HourlyBudget:   optInt("DISPATCH_HOURLY_BUDGET", 100),
		BatchSize:      optInt("DISPATCH_BATCH_SIZE", 50),
		BatchDelay:     optDuration("DISPATCH_BATCH_DELAY", time.Second),
		Concurrency:    optInt("DISPATCH_CONCURRENCY", 10),
		DeliverTimeout: optDuration("DISPATCH_DELIVER_TIMEOUT", 15*time.Second),
	}

	cfg.Embedding = EmbeddingConfig{
		APIURL:  opt("EMBEDDING_API_URL"),
		APIKey:  opt("EMBEDDING_API_KEY"),
		Model:   opt("EMBEDDING_MODEL"),
		Timeout: optDuration("EMBEDDING_TIMEOUT", 30*time.Second),
	}

	cfg.Delivery = DeliveryConfig{
		APIURL:  opt("DELIVERY_API_URL"),
		APIKey:  opt("DELIVERY_API_KEY"),
		From:    opt("DELIVERY_FROM"),
		Timeout: optDuration("DELIVERY_TIMEOUT", 15*time.Second),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func optInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func optFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func optDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return v
}

func optBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
