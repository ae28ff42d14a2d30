package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type MySQL struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

func (m MySQL) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", m.User, m.Password, m.Host, m.Port, m.Database)
}

type Config struct {
	Port string

	MySQL MySQL

	// RedisHost empty disables the product cache.
	RedisHost string
	// RabbitMQURL empty disables event publishing.
	RabbitMQURL string
	Exchange    string

	// JWTSecret is required by the server only.
	JWTSecret string
	TokenTTL  time.Duration

	DeliveryFee  decimal.Decimal
	EnforceStock bool

	RestaurantLat     float64
	RestaurantLng     float64
	CourierTravelTime time.Duration

	WarmupProductIDs []uint64
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env: %v", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		MySQL: MySQL{
			User:     getEnv("MYSQL_USER", "root"),
			Password: os.Getenv("MYSQL_PASSWORD"),
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: getEnv("MYSQL_DATABASE", "delivery"),
		},
		RedisHost:   os.Getenv("REDIS_HOST"),
		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		Exchange:    getEnv("RABBITMQ_EXCHANGE", "order.exchange"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CourierTravelTime, err = durationEnv("COURIER_TRAVEL_TIME", 20*time.Minute); err != nil {
		return nil, err
	}
	if cfg.EnforceStock, err = boolEnv("ENFORCE_STOCK", true); err != nil {
		return nil, err
	}
	if cfg.RestaurantLat, err = floatEnv("RESTAURANT_LAT", 0); err != nil {
		return nil, err
	}
	if cfg.RestaurantLng, err = floatEnv("RESTAURANT_LNG", 0); err != nil {
		return nil, err
	}

	fee := getEnv("DELIVERY_FEE", "2.50")
	if cfg.DeliveryFee, err = decimal.NewFromString(fee); err != nil {
		return nil, fmt.Errorf("config: DELIVERY_FEE: %w", err)
	}
	if cfg.DeliveryFee.IsNegative() || !cfg.DeliveryFee.Equal(cfg.DeliveryFee.Round(2)) {
		return nil, fmt.Errorf("config: DELIVERY_FEE must be a non-negative amount with at most 2 decimal places")
	}

	if raw := os.Getenv("WARMUP_PRODUCT_IDS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("config: WARMUP_PRODUCT_IDS: %w", err)
			}
			cfg.WarmupProductIDs = append(cfg.WarmupProductIDs, id)
		}
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("config: PORT %q is not a number", cfg.Port)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}
