package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Load reads the environment, after merging a .env file when one exists.
// Variables already set in the environment win over the file.
func Load() App {
	loadDotenv()
	cfg, err := FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		panic(err)
	}
	return cfg
}

func loadDotenv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env", "err", err)
	}
}

// LoadJWTSecret reads only what token signing needs, so tooling can run
// without database settings.
func LoadJWTSecret() (string, error) {
	loadDotenv()
	return jwtSecret()
}

func jwtSecret() (string, error) {
	secret := getenv("JWT_SECRET", devJWTSecret)
	if getenv("APP_ENV", "dev") == "prod" && secret == devJWTSecret {
		return "", errors.New("JWT_SECRET must be set in prod")
	}
	return secret, nil
}

const devJWTSecret = "local_dev_secret"

func FromEnv() (App, error) {
	cfg := App{
		Port:              getenv("APP_PORT", "8080"),
		Env:               getenv("APP_ENV", "dev"),
		RedisURL:          os.Getenv("REDIS_URL"),
		RabbitMQURL:       os.Getenv("RABBITMQ_URL"),
		PaymentGatewayURL: os.Getenv("PAYMENT_GATEWAY_URL"),
		PaymentGatewayKey: os.Getenv("PAYMENT_GATEWAY_KEY"),
	}

	var err error
	if cfg.JWTSecret, err = jwtSecret(); err != nil {
		return App{}, err
	}
	if cfg.DatabaseURL, err = must("DATABASE_URL"); err != nil {
		return App{}, err
	}
	if cfg.TaxRate, err = fraction("TAX_RATE", 0.12); err != nil {
		return App{}, err
	}
	if cfg.DepositPercentage, err = fraction("DEPOSIT_PERCENTAGE", 0.5); err != nil {
		return App{}, err
	}
	if cfg.IdempotencyTTL, err = duration("IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return App{}, err
	}
	if cfg.NoShowSweepInterval, err = duration("NO_SHOW_SWEEP_INTERVAL", time.Hour); err != nil {
		return App{}, err
	}
	tz := getenv("HOTEL_TIMEZONE", "UTC")
	if cfg.HotelTimezone, err = time.LoadLocation(tz); err != nil {
		return App{}, fmt.Errorf("HOTEL_TIMEZONE: %w", err)
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) (string, error) {
	v := os.Getenv(k)
	if v == "" {
		return "", fmt.Errorf("missing env %s", k)
	}
	return v, nil
}

// fraction parses a rate in [0,1].
func fraction(k string, def float64) (float64, error) {
	raw := os.Getenv(k)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
		return 0, fmt.Errorf("%s: want a number between 0 and 1, got %q", k, raw)
	}
	return f, nil
}

func duration(k string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(k)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: want a duration like 30m, got %q", k, raw)
	}
	return d, nil
}
