package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr          string
	GatewayURL    string
	JWTSigningKey string

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig

	// AbandonHorizon is how old a pending gateway request may grow before the
	// sweeper marks it abandoned.
	AbandonHorizon time.Duration
	// SweepInterval is how often the sweeper runs.
	SweepInterval time.Duration
}

// PostgresConfig holds the incident ledger database settings. An empty DSN
// selects the in-memory ledger store.
type PostgresConfig struct {
	DSN string
}

// RedisConfig holds connection settings for the pending table and aggregate
// stores. An empty URL selects the in-memory stores.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds notification publishing settings. Empty brokers select
// the in-process channel worker instead.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables with development
// defaults.
func FromEnv() Server {
	cfg := Server{
		Addr:           envOr("RCF_ADDR", ":8080"),
		GatewayURL:     envOr("RCF_GATEWAY_URL", "http://localhost:9090"),
		JWTSigningKey:  envOr("RCF_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AbandonHorizon: envDurationOr("RCF_ABANDON_HORIZON", 24*time.Hour),
		SweepInterval:  envDurationOr("RCF_SWEEP_INTERVAL", time.Hour),
		Postgres: PostgresConfig{
			DSN: os.Getenv("RCF_POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("RCF_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: envOr("RCF_KAFKA_TOPIC", "rcf.notifications"),
		},
	}
	if brokers := os.Getenv("RCF_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
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
