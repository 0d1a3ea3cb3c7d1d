package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"BACKEND_PORT", "PORT", "ENV", "LOG_LEVEL", "DATABASE_URL",
		"DB_MAX_CONNS", "DB_STATEMENT_TIMEOUT", "BODY_LIMIT_BYTES",
		"CORS_ALLOWED_ORIGINS", "REDIS_ADDR", "LEAD_RATE_LIMIT", "LEAD_RATE_WINDOW",
		"METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "3001" {
		t.Fatalf("expected default port 3001, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.DBStatementTimeout != 5*time.Second {
		t.Fatalf("expected 5s statement timeout, got %s", cfg.DBStatementTimeout)
	}
	if cfg.BodyLimitBytes != 250*1024 {
		t.Fatalf("expected 250kb body limit, got %d", cfg.BodyLimitBytes)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected throttle disabled by default, got redis %q", cfg.RedisAddr)
	}
	if cfg.LeadRateLimit != 10 || cfg.LeadRateWindow != 10*time.Minute {
		t.Fatalf("unexpected rate defaults: %d per %s", cfg.LeadRateLimit, cfg.LeadRateWindow)
	}
	if !cfg.MetricsEnabled {
		t.Fatal("expected metrics enabled by default")
	}
	if cfg.IsProduction() {
		t.Fatal("development should not be production")
	}
}

func TestLoadPortFallsBackToPORT(t *testing.T) {
	t.Setenv("BACKEND_PORT", "")
	t.Setenv("PORT", "8080")
	if cfg := Load(); cfg.Port != "8080" {
		t.Fatalf("expected PORT fallback, got %s", cfg.Port)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BACKEND_PORT", "9090")
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_STATEMENT_TIMEOUT", "2s")
	t.Setenv("BODY_LIMIT_BYTES", "1024")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://didax.com.br, https://www.didax.com.br ,")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("LEAD_RATE_LIMIT", "3")
	t.Setenv("LEAD_RATE_WINDOW", "1h")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected BACKEND_PORT to win, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production env")
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.DBMaxConns != 25 {
		t.Fatalf("expected max conns override, got %d", cfg.DBMaxConns)
	}
	if cfg.DBStatementTimeout != 2*time.Second {
		t.Fatalf("expected statement timeout override, got %s", cfg.DBStatementTimeout)
	}
	if cfg.BodyLimitBytes != 1024 {
		t.Fatalf("expected body limit override, got %d", cfg.BodyLimitBytes)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://www.didax.com.br" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RedisAddr != "redis:6379" || !cfg.RedisTLS {
		t.Fatalf("unexpected redis config: %q tls=%v", cfg.RedisAddr, cfg.RedisTLS)
	}
	if cfg.LeadRateLimit != 3 || cfg.LeadRateWindow != time.Hour {
		t.Fatalf("unexpected rate override: %d per %s", cfg.LeadRateLimit, cfg.LeadRateWindow)
	}
	if cfg.MetricsEnabled {
		t.Fatal("expected metrics disabled")
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "lots")
	t.Setenv("DB_STATEMENT_TIMEOUT", "soon")
	cfg := Load()
	if cfg.DBMaxConns != 10 {
		t.Fatalf("expected default max conns, got %d", cfg.DBMaxConns)
	}
	if cfg.DBStatementTimeout != 5*time.Second {
		t.Fatalf("expected default statement timeout, got %s", cfg.DBStatementTimeout)
	}
}
