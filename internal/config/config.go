package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Поддерживаемые драйверы хранилища.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config — настройки приложения, собранные из окружения один раз на старте.
type Config struct {
	// HTTPAddr — адрес API-сервера.
	HTTPAddr string
	// MetricsAddr — адрес сервера метрик и health-проверок.
	MetricsAddr string

	// Storage: "memory" или "postgres".
	Storage     string
	DatabaseURL string

	// KafkaBrokers пуст — события заказов не публикуются.
	KafkaBrokers []string

	// RedisAddr пуст — rate limiting отключён.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTTTL    time.Duration

	// IdempotencyTTL — время жизни записей Idempotency-Key.
	IdempotencyTTL time.Duration

	LogLevel string
}

// Load читает конфигурацию из окружения. Файл .env, если он есть,
// подхватывается до чтения переменных; отсутствие файла не ошибка.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:       getEnv("SHOP_HTTP_ADDR", ":8080"),
		MetricsAddr:    getEnv("SHOP_METRICS_ADDR", ":9090"),
		Storage:        getEnv("SHOP_STORAGE", StorageMemory),
		DatabaseURL:    os.Getenv("SHOP_DATABASE_URL"),
		RedisAddr:      os.Getenv("SHOP_REDIS_ADDR"),
		RedisPassword:  os.Getenv("SHOP_REDIS_PASSWORD"),
		JWTSecret:      os.Getenv("SHOP_JWT_SECRET"),
		JWTTTL:         getDuration("SHOP_JWT_TTL", 24*time.Hour),
		IdempotencyTTL: getDuration("SHOP_IDEMPOTENCY_TTL", 24*time.Hour),
		LogLevel:       getEnv("SHOP_LOG_LEVEL", "info"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if db := os.Getenv("SHOP_REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHOP_REDIS_DB %q: %w", db, err)
		}
		cfg.RedisDB = n
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("SHOP_DATABASE_URL is required when SHOP_STORAGE=postgres")
		}
	default:
		return fmt.Errorf("unknown SHOP_STORAGE %q (want memory or postgres)", c.Storage)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("SHOP_JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
