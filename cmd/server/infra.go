package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"ledger/internal/platform/config"
	"ledger/internal/platform/httpserver"
	"ledger/internal/platform/kafka"
	"ledger/internal/platform/postgres"
	"ledger/internal/platform/redis"
)

// infra holds the optional external dependencies. Each is nil when its
// configuration is empty.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{}
	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		in.db = db
		if cfg.Postgres.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				in.Close(log)
				return nil, err
			}
		}
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.Close(log)
		return nil, err
	}
	in.redis = rc

	kc, err := kafka.NewClient(ctx, cfg.Kafka)
	if err != nil {
		in.Close(log)
		return nil, err
	}
	in.kafka = kc
	if kc != nil {
		if err := kafka.EnsureTopic(ctx, kc, cfg.Kafka, log); err != nil {
			in.Close(log)
			return nil, fmt.Errorf("ensure audit topic: %w", err)
		}
	}
	return in, nil
}

func (in *infra) Backend() string {
	if in.db != nil {
		return "postgres"
	}
	return "memory"
}

// Checks are the readiness probes for whatever is configured.
func (in *infra) Checks() map[string]httpserver.Check {
	checks := map[string]httpserver.Check{}
	if in.db != nil {
		checks["postgres"] = in.db.PingContext
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	if in.kafka != nil {
		checks["kafka"] = in.kafka.Ping
	}
	return checks
}

func (in *infra) Close(log *slog.Logger) {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Warn("closing redis", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			log.Warn("closing postgres", "error", err)
		}
	}
}
