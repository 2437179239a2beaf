package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	applog "storefront/internal/log"
)

type Config struct {
	Port          string
	APIBaseURL    string
	APITimeout    time.Duration
	DBDriver      string
	DBDSN         string
	StateBackend  string
	RedisAddr     string
	LogFile       string
	KafkaBrokers  []string
	KafkaTopic    string
	LoginPolicy   string
	TaxRate       float64
	CookieSecure  bool
	TemplatesDisk string
}

// loadEnvFile pulls .env.local into the process env for local runs only.
func loadEnvFile() {
	if os.Getenv("APP_ENV") != "local" {
		return
	}
	if err := godotenv.Load(".env.local"); err != nil {
		applog.Warn(nil, "config.env_file.skip", err, map[string]any{"file": ".env.local"})
		return
	}
	applog.Info(nil, "config.env_file.loaded", map[string]any{"file": ".env.local"})
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func Load() Config {
	loadEnvFile()

	timeout, err := time.ParseDuration(env("API_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		applog.Warn(nil, "config.invalid", err, map[string]any{"key": "API_TIMEOUT", "using": "10s"})
		timeout = 10 * time.Second
	}
	tax, err := strconv.ParseFloat(env("TAX_RATE", "0.10"), 64)
	if err != nil || tax < 0 {
		applog.Warn(nil, "config.invalid", err, map[string]any{"key": "TAX_RATE", "using": 0.10})
		tax = 0.10
	}
	var brokers []string
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	policy := strings.ToLower(env("CART_LOGIN_POLICY", "replace"))
	if policy != "replace" && policy != "merge" {
		applog.Warn(nil, "config.invalid", nil, map[string]any{"key": "CART_LOGIN_POLICY", "value": policy, "using": "replace"})
		policy = "replace"
	}

	cfg := Config{
		Port:         env("PORT", "8080"),
		APIBaseURL:   strings.TrimRight(env("API_BASE_URL", "http://localhost:5000/api"), "/"),
		APITimeout:   timeout,
		DBDriver:     env("DB_DRIVER", "sqlite"),
		DBDSN:        env("DB_DSN", "storefront.db"), // sqlite file in project root
		StateBackend: env("STATE_BACKEND", "sql"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		LogFile:      os.Getenv("LOG_FILE"),
		KafkaBrokers: brokers,
		KafkaTopic:   env("KAFKA_TOPIC", "storefront.cart"),
		LoginPolicy:  policy,
		TaxRate:      tax,
		CookieSecure: env("COOKIE_SECURE", "false") == "true",
		// Non-empty means templates are read from disk and reloaded (dev).
		TemplatesDisk: os.Getenv("TEMPLATES_DIR"),
	}
	applog.Info(nil, "config.loaded", map[string]any{
		"port":          cfg.Port,
		"api_base_url":  cfg.APIBaseURL,
		"db_driver":     cfg.DBDriver,
		"state_backend": cfg.StateBackend,
		"login_policy":  cfg.LoginPolicy,
	})
	return cfg
}
