// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration.
type Config struct {
	Server     Server
	Log        Log
	Postgres   Postgres
	Redis      RedisConfig
	Kafka      Kafka
	Compliance Compliance
	Audit      Audit
}

// Server captures the ops HTTP listener settings.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type Log struct {
	Level  string
	Format string
}

// Postgres is optional; an empty DSN selects the in-memory stores.
type Postgres struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

// RedisConfig is optional; an empty URL falls back to an in-process scan lock.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka is optional; no brokers means notifications go to the log only.
type Kafka struct {
	Brokers           []string
	Topic             string
	ClientID          string
	Partitions        int32
	ReplicationFactor int16
	DeliveryTimeout   time.Duration
}

// Compliance configures the background expiry sweep and compliance scans.
type Compliance struct {
	SweepInterval time.Duration
	ScanInterval  time.Duration
	ScanWindow    time.Duration
	ScanParallel  int
	ScanLeaseTTL  time.Duration
	RulesFile     string
}

type Audit struct {
	AsyncBuffer     int
	DeliveryTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []string
	dur := func(key string, def time.Duration) time.Duration {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid duration %q", key, v))
			return def
		}
		return d
	}
	num := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid integer %q", key, v))
			return def
		}
		return n
	}

	cfg := Config{
		Server: Server{
			Addr:            envOr("LEDGER_ADDR", ":8080"),
			ShutdownTimeout: dur("LEDGER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Log: Log{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
		Postgres: Postgres{
			DSN:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    num("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    num("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: dur("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
			Migrate:         os.Getenv("DATABASE_MIGRATE") != "false",
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     num("REDIS_POOL_SIZE", 10),
			MinIdleConns: num("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  dur("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  dur("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: dur("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:           splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:             envOr("KAFKA_AUDIT_TOPIC", "ledger.audit.notifications"),
			ClientID:          envOr("KAFKA_CLIENT_ID", "ledger"),
			Partitions:        int32(num("KAFKA_AUDIT_PARTITIONS", 3)),
			ReplicationFactor: int16(num("KAFKA_AUDIT_REPLICATION", 1)),
			DeliveryTimeout:   dur("KAFKA_DELIVERY_TIMEOUT", 10*time.Second),
		},
		Compliance: Compliance{
			SweepInterval: dur("CONSENT_SWEEP_INTERVAL", time.Minute),
			ScanInterval:  dur("COMPLIANCE_SCAN_INTERVAL", time.Hour),
			ScanWindow:    dur("COMPLIANCE_SCAN_WINDOW", 30*24*time.Hour),
			ScanParallel:  num("COMPLIANCE_SCAN_PARALLELISM", 4),
			ScanLeaseTTL:  dur("COMPLIANCE_SCAN_LEASE_TTL", 5*time.Minute),
			RulesFile:     os.Getenv("COMPLIANCE_RULES_FILE"),
		},
		Audit: Audit{
			AsyncBuffer:     num("AUDIT_ASYNC_BUFFER", 1024),
			DeliveryTimeout: dur("AUDIT_DELIVERY_TIMEOUT", 15*time.Second),
		},
	}
	if cfg.Compliance.ScanParallel < 1 {
		cfg.Compliance.ScanParallel = 1
	}
	if len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
