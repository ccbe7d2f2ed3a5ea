package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`
	AdminAddr  string `env:"ADMIN_ADDR" envDefault:":9091"`

	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR,required"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	SMSGatewayURL   string `env:"SMS_GATEWAY_URL"`
	SMSGatewayToken string `env:"SMS_GATEWAY_TOKEN"`

	AccountOpsURL   string `env:"ACCOUNT_OPS_URL"`
	AccountOpsToken string `env:"ACCOUNT_OPS_TOKEN"`

	// IntakeRatePerMin caps how many interests one account may file.
	IntakeRatePerMin int `env:"INTAKE_RATE_PER_MIN" envDefault:"5"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
