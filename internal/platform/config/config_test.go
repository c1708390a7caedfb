package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("STATEMENT_INTERVAL", "")
	t.Setenv("DEFAULT_BASE_RATE", "")

	cfg := FromEnv()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.StatementInterval != 24*time.Hour {
		t.Fatalf("expected 24h statement interval, got %v", cfg.StatementInterval)
	}
	if cfg.DefaultBaseRate != 10 {
		t.Fatalf("expected default base rate 10, got %v", cfg.DefaultBaseRate)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("RUN_SEED", "false")
	t.Setenv("STATEMENT_WEEKS", "4")
	t.Setenv("DEFAULT_BASE_RATE", "12.5")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := FromEnv()
	if cfg.Addr != ":9090" || cfg.RunSeed || cfg.StatementWeeks != 4 || cfg.DefaultBaseRate != 12.5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("expected fallback rate limit on bad input, got %d", cfg.RateLimitPerMinute)
	}
}

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/mentordash",
		JWTSecret:          "dev-secret",
		MaxBodyBytes:       4096,
		RateLimitPerMinute: 60,
		StatementWeeks:     8,
		DefaultBaseRate:    10,
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	missingDB := validConfig()
	missingDB.DatabaseURL = ""
	if err := missingDB.Validate(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}

	prod := validConfig()
	prod.Environment = "production"
	prod.RunSeed = false
	if err := prod.Validate(); err == nil {
		t.Fatal("expected short production secret to be rejected")
	}
	prod.JWTSecret = "0123456789abcdef0123456789abcdef"
	if err := prod.Validate(); err != nil {
		t.Fatalf("expected production config to pass, got %v", err)
	}

	badRate := validConfig()
	badRate.DefaultBaseRate = 0
	if err := badRate.Validate(); err == nil {
		t.Fatal("expected error for non-positive base rate")
	}
}
