package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	JWTSecret   string
	RendererURL string

	// Settlement tuning. CaptureTimeout bounds the gateway call; a timeout
	// is treated as a decline, never as success.
	CaptureTimeout time.Duration
	CaptureDelay   time.Duration
	SettleRetries  int
	SettleBackoff  time.Duration
	InvoicePrefix  string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    os.Getenv("APP_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		RendererURL: os.Getenv("RENDERER_URL"),

		CaptureTimeout: durationEnv("CAPTURE_TIMEOUT", 5*time.Second),
		CaptureDelay:   durationEnv("CAPTURE_DELAY", 2*time.Second),
		SettleRetries:  intEnv("SETTLE_RETRIES", 3),
		SettleBackoff:  durationEnv("SETTLE_BACKOFF", 100*time.Millisecond),
		InvoicePrefix:  envOr("INVOICE_PREFIX", "FACT"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid duration in %s, using default: %v", key, err)
		return fallback
	}
	return d
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid integer in %s, using default: %v", key, err)
		return fallback
	}
	return n
}
