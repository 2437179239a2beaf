package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "API_BASE_URL", "API_TIMEOUT", "TAX_RATE", "CART_LOGIN_POLICY", "KAFKA_BROKERS", "APP_ENV"} {
		t.Setenv(k, "")
	}
	cfg := config.Load()
	if cfg.Port != "8080" {
		t.Fatalf("port: got %q", cfg.Port)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Fatalf("timeout: got %v", cfg.APITimeout)
	}
	if cfg.TaxRate != 0.10 {
		t.Fatalf("tax: got %v", cfg.TaxRate)
	}
	if cfg.LoginPolicy != "replace" {
		t.Fatalf("policy: got %q", cfg.LoginPolicy)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("brokers: got %v", cfg.KafkaBrokers)
	}
}

func TestLoadOverridesAndFallbacks(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("API_BASE_URL", "http://api.test/v1/")
	t.Setenv("API_TIMEOUT", "nonsense")
	t.Setenv("CART_LOGIN_POLICY", "MERGE")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	cfg := config.Load()
	if cfg.APIBaseURL != "http://api.test/v1" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Fatalf("bad timeout should fall back, got %v", cfg.APITimeout)
	}
	if cfg.LoginPolicy != "merge" {
		t.Fatalf("policy: got %q", cfg.LoginPolicy)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers: got %v", cfg.KafkaBrokers)
	}
}

func TestLoadEnvLocalFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env.local"), []byte("PORT=9191\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	t.Setenv("APP_ENV", "local")
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")
	cfg := config.Load()
	if cfg.Port != "9191" {
		t.Fatalf("expected PORT from .env.local, got %q", cfg.Port)
	}
}
