// Package config loads runtime settings from the environment.  A .env
// file, when present, is read by the caller before Load.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Checkout modes.
const (
	CheckoutHTTP   = "http"   // forward carts to the checkout service
	CheckoutLedger = "ledger" // record bookings in MySQL and acknowledge locally
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env        string        // APP_ENV (dev, test, prod)
	Port       string        // APP_PORT
	JWTSecret  string        // JWT_SECRET, signs browser-session tokens
	SessionTTL time.Duration // SESSION_TTL_MIN, idle lifetime of a browser session

	DBUser string // DB_USER
	DBPass string // DB_PASS (empty allowed)
	DBHost string // DB_HOST
	DBPort string // DB_PORT
	DBName string // DB_NAME

	RabbitURL string // RABBITMQ_URL, empty disables booking events

	ListingBaseURL  string        // LISTING_BASE_URL
	CheckoutMode    string        // CHECKOUT_MODE: http or ledger
	CheckoutURL     string        // CHECKOUT_URL, required in http mode
	CheckoutTimeout time.Duration // CHECKOUT_TIMEOUT

	LogLevel  string // LOG_LEVEL
	LogFormat string // LOG_FORMAT: json or text
}

// Load reads the environment into a Config.  Every missing required
// variable is reported in the returned error.
func Load() (Config, error) {
	cfg := Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            envStr("APP_PORT", "8080"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		SessionTTL:      time.Duration(envInt("SESSION_TTL_MIN", 30)) * time.Minute,
		DBUser:          os.Getenv("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          envStr("DB_HOST", "localhost"),
		DBPort:          envStr("DB_PORT", "3306"),
		DBName:          os.Getenv("DB_NAME"),
		RabbitURL:       envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		ListingBaseURL:  envStr("LISTING_BASE_URL", "http://localhost:8000"),
		CheckoutMode:    strings.ToLower(envStr("CHECKOUT_MODE", CheckoutHTTP)),
		CheckoutURL:     os.Getenv("CHECKOUT_URL"),
		CheckoutTimeout: envDur("CHECKOUT_TIMEOUT", 10*time.Second),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		LogFormat:       envStr("LOG_FORMAT", "json"),
	}

	var errs []error
	if cfg.JWTSecret == "" {
		errs = append(errs, missing("JWT_SECRET"))
	}
	if cfg.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("invalid SESSION_TTL_MIN: must be positive"))
	}
	switch cfg.CheckoutMode {
	case CheckoutHTTP:
		if cfg.CheckoutURL == "" {
			errs = append(errs, missing("CHECKOUT_URL"))
		}
	case CheckoutLedger:
		if cfg.DBUser == "" {
			errs = append(errs, missing("DB_USER"))
		}
		if cfg.DBName == "" {
			errs = append(errs, missing("DB_NAME"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid CHECKOUT_MODE %q: want %s or %s", cfg.CheckoutMode, CheckoutHTTP, CheckoutLedger))
	}
	return cfg, errors.Join(errs...)
}

func missing(key string) error { return fmt.Errorf("missing required env var: %s", key) }
