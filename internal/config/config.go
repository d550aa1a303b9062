package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string
	GRPCPort string
	LogLevel string

	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string

	CatalogDBPath         string
	CatalogMigrationsPath string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	// KafkaBrokers is empty when queued notifications are disabled.
	KafkaBrokers      []string
	NotificationTopic string

	WhatsAppCountryCode string

	RequestTimeout     time.Duration
	OrderTimeout       time.Duration
	ShutdownTimeout    time.Duration
	HealthInterval     time.Duration
	SellersCacheTTL    time.Duration
	MaxRequestBodySize int64
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	cfg := &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		GRPCPort: getEnv("GRPC_PORT", "50057"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         dbPort,
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "catalogo"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/repository/orders/migrations"),

		CatalogDBPath:         getEnv("CATALOG_DB_PATH", "./catalog.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/repository/catalog/migrations"),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "catalogo"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "")),
		NotificationTopic: getEnv("NOTIFICATION_TOPIC", "order-notifications"),

		WhatsAppCountryCode: getEnv("WHATSAPP_COUNTRY_CODE", "55"),

		MaxRequestBodySize: 1 << 20, // 1MB
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"REQUEST_TIMEOUT", "30s", &cfg.RequestTimeout},
		{"ORDER_TIMEOUT", "10s", &cfg.OrderTimeout},
		{"SHUTDOWN_TIMEOUT", "10s", &cfg.ShutdownTimeout},
		{"HEALTH_INTERVAL", "15s", &cfg.HealthInterval},
		{"SELLERS_CACHE_TTL", "30s", &cfg.SellersCacheTTL},
	}
	for _, dur := range durations {
		v, err := time.ParseDuration(getEnv(dur.key, dur.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", dur.key, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("invalid %s: must be positive", dur.key)
		}
		*dur.dest = v
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
