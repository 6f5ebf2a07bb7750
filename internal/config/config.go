package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/valleyviewvt/snowline/internal/subscribers"
)

// AppConfig is the process configuration, loaded from the environment.
type AppConfig struct {
	Port string

	// CacheDir is where the durable cache tier writes its per-key files.
	CacheDir string
	// CacheTTL bounds how long assembled resort data is served before
	// upstream is consulted again.
	CacheTTL time.Duration

	// HTTPTimeout is the per-request timeout for outbound upstream calls.
	HTTPTimeout time.Duration

	// PrewarmInterval controls how often the scheduler refreshes all resorts.
	PrewarmInterval time.Duration

	// Database is the subscriber store. Disabled when Host is empty.
	Database subscribers.Config

	// Email and digest delivery.
	ResendAPIKey string
	EmailFrom    string
	DigestSecret string
	DigestHour   int

	// MtnPowderToken authenticates the third-party resort feed.
	MtnPowderToken string
	// MtnPowderResortID selects the resort in the feed response.
	MtnPowderResortID string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.CacheDir = getenvDefault("CACHE_DIR", os.TempDir())

	ttl, err := getenvDuration("CACHE_TTL", "15m")
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = ttl

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	interval, err := getenvDuration("PREWARM_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	cfg.PrewarmInterval = interval

	cfg.Database = subscribers.Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     getenvDefault("DB_PORT", "3306"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   getenvDefault("DB_NAME", "snowline"),
	}

	cfg.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	cfg.EmailFrom = getenvDefault("EMAIL_FROM", "Snow Report <updates@valleyviewvt.com>")
	cfg.DigestSecret = os.Getenv("DIGEST_SECRET")

	cfg.DigestHour = getenvInt("DIGEST_HOUR", 7)
	if cfg.DigestHour < 0 || cfg.DigestHour > 23 {
		return nil, fmt.Errorf("invalid DIGEST_HOUR: %d", cfg.DigestHour)
	}

	cfg.MtnPowderToken = os.Getenv("MTNPOWDER_TOKEN")
	cfg.MtnPowderResortID = getenvDefault("MTNPOWDER_RESORT_ID", "1")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
