package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration read from the environment (and an optional .env file).
type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"APP_ENV"`
	ServiceName string `mapstructure:"SERVICE_NAME"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      string `mapstructure:"DB_PORT"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`
	DBTimeZone  string `mapstructure:"DB_TIMEZONE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	KafkaBrokers   string `mapstructure:"KAFKA_BROKERS"`
	KafkaSaleTopic string `mapstructure:"KAFKA_SALE_TOPIC"`

	JaegerEndpoint string `mapstructure:"JAEGER_ENDPOINT"`

	JWTSecret        string `mapstructure:"JWT_SECRET"`
	JWTExpirationHrs int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	CORSOrigins string `mapstructure:"CORS_ORIGIN"`

	ReceiptBrand       string        `mapstructure:"RECEIPT_BRAND"`
	CheckoutTimeout    time.Duration `mapstructure:"CHECKOUT_TIMEOUT"`
	NumberAttempts     int           `mapstructure:"CHECKOUT_NUMBER_ATTEMPTS"`
	LowStockThreshold  int           `mapstructure:"LOW_STOCK_THRESHOLD"`
	SeedRootName       string        `mapstructure:"SEED_ROOT_NAME"`
	SeedRootPIN        string        `mapstructure:"SEED_ROOT_PIN"`
	ReceiptCacheTTLHrs int           `mapstructure:"RECEIPT_CACHE_TTL_HOURS"`
}

// Load reads .env (if present) and binds every field to its env var.
func Load() (*Config, error) {
	// Missing .env is fine; system env still applies.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	defaults := map[string]interface{}{
		"PORT":                     "3000",
		"APP_ENV":                  "development",
		"SERVICE_NAME":             "kiosk-pos",
		"LOG_LEVEL":                "info",
		"DATABASE_URL":             "",
		"DB_HOST":                  "localhost",
		"DB_PORT":                  "5432",
		"DB_USER":                  "postgres",
		"DB_PASSWORD":              "postgres",
		"DB_NAME":                  "kiosk",
		"DB_TIMEZONE":              "UTC",
		"REDIS_URL":                "",
		"KAFKA_BROKERS":            "",
		"KAFKA_SALE_TOPIC":         "pos.sale.completed",
		"JAEGER_ENDPOINT":          "",
		"JWT_SECRET":               "your-super-secret-key-change-in-production",
		"JWT_EXPIRATION_HOURS":     12,
		"CORS_ORIGIN":              "*",
		"RECEIPT_BRAND":            "ALLIANCE DigiKiosk",
		"CHECKOUT_TIMEOUT":         "10s",
		"CHECKOUT_NUMBER_ATTEMPTS": 5,
		"LOW_STOCK_THRESHOLD":      3,
		"SEED_ROOT_NAME":           "Root",
		"SEED_ROOT_PIN":            "ad-000000",
		"RECEIPT_CACHE_TTL_HOURS":  24,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Brokers splits KAFKA_BROKERS on commas; empty means Kafka is disabled.
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
