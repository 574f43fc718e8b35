// Package scheduler runs the background consent expiry sweep and the
// periodic compliance scans.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	compliancemetrics "ledger/internal/compliance/metrics"
	"ledger/internal/compliance/models"
	"ledger/internal/compliance/store/scanlock"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/requestcontext"
)

const (
	DefaultSweepInterval = time.Minute
	DefaultScanInterval  = time.Hour
	DefaultParallel      = 4
	DefaultLeaseTTL      = 10 * time.Minute
)

type Expirer interface {
	ExpireDue(ctx context.Context, asOf time.Time) (int, error)
}

type Scanner interface {
	Scan(ctx context.Context, orgID id.OrganizationID) (*models.ScanResult, error)
}

type Organizations interface {
	ListOrganizationIDs(ctx context.Context) ([]id.OrganizationID, error)
}

// Leaser hands out per-organization scan leases.
type Leaser interface {
	Acquire(ctx context.Context, orgID id.OrganizationID, ttl time.Duration) (scanlock.Lease, error)
}

// Report summarizes one pass over every organization.
type Report struct {
	Scanned           int
	Skipped           int
	Failed            int
	ViolationsCreated int
}

type Scheduler struct {
	expirer       Expirer
	scanner       Scanner
	orgs          Organizations
	leaser        Leaser
	sweepInterval time.Duration
	scanInterval  time.Duration
	parallel      int
	leaseTTL      time.Duration
	logger        *slog.Logger
	metrics       *compliancemetrics.Metrics
}

type Option func(*Scheduler)

func WithSweepInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

func WithScanInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.scanInterval = d
		}
	}
}

// WithParallel bounds how many organizations are scanned at once.
func WithParallel(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.parallel = n
		}
	}
}

func WithLeaseTTL(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.leaseTTL = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func WithMetrics(m *compliancemetrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

func New(expirer Expirer, scanner Scanner, orgs Organizations, leaser Leaser, opts ...Option) (*Scheduler, error) {
	switch {
	case expirer == nil:
		return nil, errors.New("expirer is required")
	case scanner == nil:
		return nil, errors.New("scanner is required")
	case orgs == nil:
		return nil, errors.New("organization lister is required")
	case leaser == nil:
		return nil, errors.New("scan leaser is required")
	}
	s := &Scheduler{
		expirer:       expirer,
		scanner:       scanner,
		orgs:          orgs,
		leaser:        leaser,
		sweepInterval: DefaultSweepInterval,
		scanInterval:  DefaultScanInterval,
		parallel:      DefaultParallel,
		leaseTTL:      DefaultLeaseTTL,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run drives both loops until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.every(ctx, s.sweepInterval, func(ctx context.Context) {
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.WarnContext(ctx, "consent expiry sweep failed", "error", err)
			}
		})
		return nil
	})
	g.Go(func() error {
		s.every(ctx, s.scanInterval, func(ctx context.Context) {
			if _, err := s.ScanAll(ctx); err != nil {
				s.logger.WarnContext(ctx, "compliance scan pass failed", "error", err)
			}
		})
		return nil
	})
	return g.Wait()
}

func (s *Scheduler) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// SweepOnce expires every consent due at the current instant.
func (s *Scheduler) SweepOnce(ctx context.Context) (int, error) {
	return s.expirer.ExpireDue(ctx, requestcontext.Now(ctx))
}

// ScanAll scans every organization, at most parallel at a time. An
// organization another worker is scanning is skipped; one failed scan never
// stops the rest.
func (s *Scheduler) ScanAll(ctx context.Context) (Report, error) {
	orgIDs, err := s.orgs.ListOrganizationIDs(ctx)
	if err != nil {
		return Report{}, err
	}

	var (
		mu     sync.Mutex
		report Report
		g      errgroup.Group
	)
	g.SetLimit(s.parallel)
	for _, orgID := range orgIDs {
		g.Go(func() error {
			created, res := s.scanOne(ctx, orgID)
			mu.Lock()
			defer mu.Unlock()
			switch res {
			case outcomeScanned:
				report.Scanned++
				report.ViolationsCreated += created
			case outcomeSkipped:
				report.Skipped++
			default:
				report.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.InfoContext(ctx, "compliance scan pass complete",
		"organizations", len(orgIDs),
		"scanned", report.Scanned,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"violations_created", report.ViolationsCreated,
	)
	return report, nil
}

type outcome int

const (
	outcomeScanned outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (s *Scheduler) scanOne(ctx context.Context, orgID id.OrganizationID) (int, outcome) {
	lease, err := s.leaser.Acquire(ctx, orgID, s.leaseTTL)
	if errors.Is(err, sentinel.ErrLeaseHeld) {
		s.metrics.IncSkipped()
		s.logger.DebugContext(ctx, "scan lease held elsewhere", "organization_id", orgID)
		return 0, outcomeSkipped
	}
	if err != nil {
		s.logger.WarnContext(ctx, "scan lease unavailable", "organization_id", orgID, "error", err)
		return 0, outcomeFailed
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "scan lease release failed", "organization_id", orgID, "error", err)
		}
	}()

	result, err := s.scanner.Scan(ctx, orgID)
	if err != nil {
		s.logger.WarnContext(ctx, "compliance scan failed", "organization_id", orgID, "error", err)
		return 0, outcomeFailed
	}
	return result.ViolationsCreated, outcomeScanned
}
