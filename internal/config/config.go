package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB             DBConfig
	Redis          RedisConfig
	RateLimit      RateLimitConfig
	Cache          CacheConfig
	Port           string
	LogLevel       slog.Level
	CandidateLimit int
	CatalogSeed    string
}

type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig is a fixed window: Max requests per client per Window.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

type CacheConfig struct {
	BookTTL           time.Duration
	PreferenceTTL     time.Duration
	RecommendationTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	rateMax, _ := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "100"))
	candidateLimit, _ := strconv.Atoi(getEnv("CANDIDATE_LIMIT", "10"))

	rateWindow, err := getDuration("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}
	bookTTL, err := getDuration("CACHE_BOOK_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	prefTTL, err := getDuration("CACHE_PREFERENCE_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	recTTL, err := getDuration("CACHE_RECOMMENDATION_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	return &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "book_discovery"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		RateLimit: RateLimitConfig{
			Max:    rateMax,
			Window: rateWindow,
		},
		Cache: CacheConfig{
			BookTTL:           bookTTL,
			PreferenceTTL:     prefTTL,
			RecommendationTTL: recTTL,
		},
		Port:           getEnv("SERVER_PORT", "8080"),
		LogLevel:       parseLevel(getEnv("LOG_LEVEL", "info")),
		CandidateLimit: candidateLimit,
		CatalogSeed:    getEnv("CATALOG_SEED_PATH", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
