package main

import (
	"context"
	"fmt"
	"log/slog"

	accessmetrics "ledger/internal/access/metrics"
	accessservice "ledger/internal/access/service"
	accessstore "ledger/internal/access/store"
	compliancemetrics "ledger/internal/compliance/metrics"
	"ledger/internal/compliance/models"
	"ledger/internal/compliance/rules"
	"ledger/internal/compliance/scheduler"
	"ledger/internal/compliance/scorer"
	complianceservice "ledger/internal/compliance/service"
	rulestore "ledger/internal/compliance/store/rule"
	"ledger/internal/compliance/store/scanlock"
	violationstore "ledger/internal/compliance/store/violation"
	consentmetrics "ledger/internal/consent/metrics"
	consentservice "ledger/internal/consent/service"
	consentstore "ledger/internal/consent/store"
	dirstore "ledger/internal/directory/store"
	"ledger/internal/platform/config"
	audit "ledger/pkg/platform/audit"
	"ledger/pkg/platform/audit/publisher"
	"ledger/pkg/platform/audit/sink"
	"ledger/pkg/platform/circuit"
)

// directory is what every service needs from the user and organization
// records.
type directory interface {
	consentservice.Directory
	complianceservice.Directory
	scorer.ScoreWriter
	scheduler.Organizations
}

type accessStore interface {
	accessservice.Store
	complianceservice.AccessReader
}

type stores struct {
	directory  directory
	consents   consentservice.Store
	accesses   accessStore
	rules      complianceservice.RuleStore
	violations complianceservice.ViolationStore
	leases     scheduler.Leaser
}

func buildStores(in *infra) stores {
	st := stores{}
	if in.db != nil {
		st.directory = dirstore.NewPostgres(in.db)
		st.consents = consentstore.NewPostgres(in.db)
		st.accesses = accessstore.NewPostgres(in.db)
		st.rules = rulestore.NewPostgres(in.db)
		st.violations = violationstore.NewPostgres(in.db)
	} else {
		st.directory = dirstore.NewInMemory()
		st.consents = consentstore.NewInMemory()
		st.accesses = accessstore.NewInMemory()
		st.rules = rulestore.NewInMemory()
		st.violations = violationstore.NewInMemory()
	}
	if in.redis != nil {
		st.leases = scanlock.NewRedis(in.redis.Client)
	} else {
		st.leases = scanlock.NewInMemory()
	}
	return st
}

type app struct {
	publisher  *publisher.Publisher
	consents   *consentservice.Service
	recorder   *accessservice.Recorder
	compliance *complianceservice.Service
	scheduler  *scheduler.Scheduler
}

func buildApp(ctx context.Context, cfg config.Config, in *infra, log *slog.Logger) (*app, error) {
	st := buildStores(in)

	sinks := []audit.Sink{sink.NewLog(log)}
	if in.kafka != nil {
		sinks = append(sinks, sink.NewKafka(in.kafka, cfg.Kafka.Topic,
			sink.WithBreaker(circuit.New("kafka-audit")),
			sink.WithKafkaLogger(log),
		))
	}
	pub := publisher.New(sinks,
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics()),
		publisher.WithAsyncBuffer(cfg.Audit.AsyncBuffer),
		publisher.WithDeliveryTimeout(cfg.Audit.DeliveryTimeout),
	)
	a := &app{publisher: pub}

	var err error
	a.consents, err = consentservice.New(st.consents, st.directory,
		consentservice.WithLogger(log),
		consentservice.WithMetrics(consentmetrics.New()),
		consentservice.WithAuditEmitter(pub),
	)
	if err != nil {
		return nil, fmt.Errorf("consent ledger: %w", err)
	}

	a.recorder, err = accessservice.New(st.accesses, a.consents,
		accessservice.WithLogger(log),
		accessservice.WithMetrics(accessmetrics.New()),
		accessservice.WithAuditEmitter(pub),
	)
	if err != nil {
		return nil, fmt.Errorf("access recorder: %w", err)
	}

	cm := compliancemetrics.New()
	sc, err := scorer.New(st.violations, st.accesses, st.directory,
		scorer.WithLogger(log),
		scorer.WithMetrics(cm),
	)
	if err != nil {
		return nil, fmt.Errorf("compliance scorer: %w", err)
	}

	registry := rules.Default()
	if err := registry.Register(models.RulePurposeLimitation, rules.PurposeLimitation(a.consents)); err != nil {
		return nil, err
	}
	a.compliance, err = complianceservice.New(st.rules, st.violations, st.accesses, st.directory, sc,
		complianceservice.WithLogger(log),
		complianceservice.WithMetrics(cm),
		complianceservice.WithAuditEmitter(pub),
		complianceservice.WithRegistry(registry),
		complianceservice.WithWindow(cfg.Compliance.ScanWindow),
	)
	if err != nil {
		return nil, fmt.Errorf("compliance engine: %w", err)
	}

	catalog, err := rules.LoadCatalog(cfg.Compliance.RulesFile)
	if err != nil {
		return nil, err
	}
	if _, err := a.compliance.SeedRules(ctx, catalog); err != nil {
		return nil, err
	}

	a.scheduler, err = scheduler.New(a.consents, a.compliance, st.directory, st.leases,
		scheduler.WithSweepInterval(cfg.Compliance.SweepInterval),
		scheduler.WithScanInterval(cfg.Compliance.ScanInterval),
		scheduler.WithParallel(cfg.Compliance.ScanParallel),
		scheduler.WithLeaseTTL(cfg.Compliance.ScanLeaseTTL),
		scheduler.WithLogger(log),
		scheduler.WithMetrics(cm),
	)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	return a, nil
}

// Close drains pending notifications.
func (a *app) Close() {
	_ = a.publisher.Close()
}
