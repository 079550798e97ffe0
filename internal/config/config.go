package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config carries the environment-driven settings shared by the services.
// Every value has a local-development default.
type Config struct {
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisHost string
	RedisPort int

	RabbitHost     string
	RabbitPort     int
	RabbitUser     string
	RabbitPassword string

	ConsulHost string
	ConsulPort int

	// CheckoutQueue is the delivery queue the order worker drains.
	CheckoutQueue string
	// VisibilityTimeout must exceed the worst-case processing latency of
	// one message, or claims overlap and redeliveries race the first
	// processing attempt (safe, but wasteful).
	VisibilityTimeout time.Duration
	PollWaitTime      time.Duration
	MaxMessages       int
	Workers           int
	CacheTTL          time.Duration
}

func Load() *Config {
	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:     getEnv("POSTGRES_USER", "swn"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "swn123"),
		PostgresDB:       getEnv("POSTGRES_DB", "swn"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnvInt("REDIS_PORT", 6379),

		RabbitHost:     getEnv("RABBITMQ_HOST", "localhost"),
		RabbitPort:     getEnvInt("RABBITMQ_PORT", 5672),
		RabbitUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		ConsulHost: getEnv("CONSUL_HOST", "localhost"),
		ConsulPort: getEnvInt("CONSUL_PORT", 8500),

		CheckoutQueue:     getEnv("CHECKOUT_QUEUE", "checkout.order"),
		VisibilityTimeout: time.Duration(getEnvInt("VISIBILITY_TIMEOUT_SECONDS", 30)) * time.Second,
		PollWaitTime:      time.Duration(getEnvInt("POLL_WAIT_SECONDS", 10)) * time.Second,
		MaxMessages:       getEnvInt("MAX_MESSAGES_PER_POLL", 10),
		Workers:           getEnvInt("CONSUMER_WORKERS", 4),
		CacheTTL:          time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️ Invalid value for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return parsed
}
