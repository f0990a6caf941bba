package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	Env         string `env:"APP_ENV" default:"dev"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET"`

	RedisURL       string        `env:"REDIS_URL"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" default:"24h"`
	RabbitMQURL    string        `env:"RABBITMQ_URL"`

	PaymentGatewayURL string `env:"PAYMENT_GATEWAY_URL"`
	PaymentGatewayKey string `env:"PAYMENT_GATEWAY_KEY"`

	TaxRate             float64        `env:"TAX_RATE" default:"0.12"`
	DepositPercentage   float64        `env:"DEPOSIT_PERCENTAGE" default:"0.5"`
	HotelTimezone       *time.Location `env:"HOTEL_TIMEZONE" default:"UTC"`
	NoShowSweepInterval time.Duration  `env:"NO_SHOW_SWEEP_INTERVAL" default:"1h"`
}
