// Package config builds runtime configuration from the environment so main
// stays lean. All variables carry the CAREFLOW_ prefix.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full server configuration.
type Config struct {
	Addr            string
	LogLevel        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// PostgresConfig carries the connection settings for the primary store. An
// empty URL selects the in-memory stores (local runs, unit tests).
type PostgresConfig struct {
	URL          string
	MaxConns     int32
	ConnLifetime time.Duration
}

// RedisConfig carries the latest-assessment cache settings. An empty URL
// disables the cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// KafkaConfig carries the alert publisher settings. No brokers means alerts
// stay on the in-memory publisher.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

// FromEnv builds a Config from environment variables, defaulting everything
// required for a local run.
func FromEnv() Config {
	return Config{
		Addr:            envString("CAREFLOW_ADDR", ":8080"),
		LogLevel:        envString("CAREFLOW_LOG_LEVEL", "info"),
		RequestTimeout:  envDuration("CAREFLOW_REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: envDuration("CAREFLOW_SHUTDOWN_TIMEOUT", 10*time.Second),
		Postgres: PostgresConfig{
			URL:          os.Getenv("CAREFLOW_POSTGRES_URL"),
			MaxConns:     int32(envInt("CAREFLOW_POSTGRES_MAX_CONNS", 10)),
			ConnLifetime: envDuration("CAREFLOW_POSTGRES_CONN_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("CAREFLOW_REDIS_URL"),
			PoolSize:     envInt("CAREFLOW_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CAREFLOW_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("CAREFLOW_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CAREFLOW_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CAREFLOW_REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     envDuration("CAREFLOW_RISK_CACHE_TTL", 15*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:     envList("CAREFLOW_KAFKA_BROKERS"),
			TopicPrefix: envString("CAREFLOW_KAFKA_TOPIC_PREFIX", "careflow.alerts"),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
