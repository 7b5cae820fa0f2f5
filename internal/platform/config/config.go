// Package config loads process configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strings"
	"time"

	stringsutil "agricert/pkg/platform/strings"
)

// Config is the full process configuration.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
}

// Postgres captures the database connection settings. An empty URL selects
// the in-memory stores.
type Postgres struct {
	URL string
}

// Redis captures the certificate-cache settings. An empty URL disables the
// cache.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures the event-sink settings. Empty brokers select the in-process
// channel sink.
type Kafka struct {
	Brokers []string
	Topic   string
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Config {
	addr := os.Getenv("AGRICERT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("AGRICERT_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development fallback, override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("AGRICERT_KAFKA_TOPIC")
	if topic == "" {
		topic = "agricert.domain-events"
	}

	var brokers []string
	if raw := os.Getenv("AGRICERT_KAFKA_BROKERS"); raw != "" {
		brokers = stringsutil.DedupeAndTrim(strings.Split(raw, ","))
	}

	return Config{
		Server: Server{
			Addr:          addr,
			JWTSigningKey: jwtSigningKey,
		},
		Postgres: Postgres{
			URL: os.Getenv("AGRICERT_POSTGRES_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("AGRICERT_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}
