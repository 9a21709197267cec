package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("expected development environment, got %q", cfg.Environment)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if !cfg.UseInMemoryStore() {
		t.Error("expected memory store by default")
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.KafkaConfigured() {
		t.Error("expected kafka disabled by default")
	}
	if cfg.RedisConfigured() {
		t.Error("expected redis disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATA_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/shoponline")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTPPort != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTPPort)
	}
	if cfg.HTTPAddress() != ":9090" {
		t.Errorf("unexpected address %q", cfg.HTTPAddress())
	}
	if cfg.UseInMemoryStore() {
		t.Error("expected postgres store")
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("expected 2h session TTL, got %s", cfg.SessionTTL)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.AllowedOrigins)
	}
	if len(cfg.KafkaBrokers) != 2 || !cfg.KafkaConfigured() {
		t.Errorf("expected 2 kafka brokers, got %v", cfg.KafkaBrokers)
	}
	if !cfg.RedisConfigured() {
		t.Error("expected redis configured")
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestLoadRejectsInvalidSessionTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "-1h")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative session TTL")
	}
}

func TestLoadRequiresDatabaseURLForPostgres(t *testing.T) {
	t.Setenv("DATA_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when postgres store has no DATABASE_URL")
	}
}
