package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/zentra_test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GENERATE_TIMEOUT_SECONDS", "")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.GenerateTimeout != 90*time.Second {
		t.Fatalf("GenerateTimeout = %v, want %v", cfg.GenerateTimeout, 90*time.Second)
	}
	if cfg.HTTPWriteTimeout <= cfg.GenerateTimeout {
		t.Fatalf("HTTPWriteTimeout %v must exceed GenerateTimeout %v", cfg.HTTPWriteTimeout, cfg.GenerateTimeout)
	}
}

func TestLoadConfigRejectsWriteTimeoutBelowGeneration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/zentra_test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GENERATE_TIMEOUT_SECONDS", "90")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "30")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error for a write timeout below the generation timeout")
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error when DATABASE_URL is missing")
	}
}
