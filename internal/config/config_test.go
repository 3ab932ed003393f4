package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DB.Port != 5432 || cfg.DB.DBName != "book_discovery" {
		t.Errorf("DB = %+v", cfg.DB)
	}
	if cfg.RateLimit.Max != 100 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.CandidateLimit != 10 {
		t.Errorf("CandidateLimit = %d, want 10", cfg.CandidateLimit)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("CACHE_RECOMMENDATION_TTL", "2m")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CATALOG_SEED_PATH", "data/catalog.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9000" || cfg.DB.Port != 6543 {
		t.Errorf("Port = %q, DB.Port = %d", cfg.Port, cfg.DB.Port)
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("RateLimit.Window = %v", cfg.RateLimit.Window)
	}
	if cfg.Cache.RecommendationTTL != 2*time.Minute {
		t.Errorf("RecommendationTTL = %v", cfg.Cache.RecommendationTTL)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.CatalogSeed != "data/catalog.json" {
		t.Errorf("CatalogSeed = %q", cfg.CatalogSeed)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("DB_PORT", "not-a-port")
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid DB_PORT")
	}

	t.Setenv("DB_PORT", "5432")
	t.Setenv("CACHE_BOOK_TTL", "forever")
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid CACHE_BOOK_TTL")
	}
}

func TestDSN(t *testing.T) {
	d := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "books", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=books sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	d.SSLRootCert = "/certs/ca.pem"
	if got := d.DSN(); got != want+" sslrootcert=/certs/ca.pem" {
		t.Errorf("DSN() with cert = %q", got)
	}
}
