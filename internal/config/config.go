package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	SiteURL string `envconfig:"SITE_URL" default:"http://localhost:8080"`

	DBHost string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort string `envconfig:"DB_PORT" default:"3306"`
	DBUser string `envconfig:"DB_USER" default:"root"`
	DBPass string `envconfig:"DB_PASS" default:""`
	DBName string `envconfig:"DB_NAME" default:"cardstore"`

	RedisAddr    string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`

	JWTSecret   string `envconfig:"JWT_SECRET" default:"secret"`
	AdminSecret string `envconfig:"ADMIN_SECRET" required:"true"`

	PayPalBaseURL      string `envconfig:"PAYPAL_BASE_URL" default:"https://api-m.sandbox.paypal.com"`
	PayPalClientID     string `envconfig:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string `envconfig:"PAYPAL_CLIENT_SECRET"`

	MPBaseURL     string `envconfig:"MP_BASE_URL" default:"https://api.mercadopago.com"`
	MPAccessToken string `envconfig:"MP_ACCESS_TOKEN"`
	USDToARS      float64 `envconfig:"USD_TO_ARS" default:"0"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSN builds the MySQL connection string for database/sql.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}
