// Package scorer derives an organization's compliance score from its
// unresolved violations and access volume, and is the only writer of that
// score.
package scorer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	compliancemetrics "ledger/internal/compliance/metrics"
	"ledger/internal/compliance/models"
	id "ledger/pkg/domain"
	dErrors "ledger/pkg/domain-errors"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/requestcontext"
)

type Violations interface {
	ListUnresolved(ctx context.Context, orgID id.OrganizationID) ([]*models.Violation, error)
}

type AccessCounter interface {
	CountByOrganization(ctx context.Context, orgID id.OrganizationID) (int, error)
}

// ScoreWriter persists the score on the organization record.
type ScoreWriter interface {
	SetComplianceScore(ctx context.Context, orgID id.OrganizationID, score float64, at time.Time) error
}

type Scorer struct {
	violations Violations
	accesses   AccessCounter
	writer     ScoreWriter
	logger     *slog.Logger
	metrics    *compliancemetrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Scorer)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		s.logger = logger
	}
}

func WithMetrics(m *compliancemetrics.Metrics) Option {
	return func(s *Scorer) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Scorer) {
		s.tracer = t
	}
}

func New(violations Violations, accesses AccessCounter, writer ScoreWriter, opts ...Option) (*Scorer, error) {
	if violations == nil || accesses == nil || writer == nil {
		return nil, errors.New("scorer requires violation, access, and score stores")
	}
	s := &Scorer{violations: violations, accesses: accesses, writer: writer, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("ledger/compliance")
	}
	return s, nil
}

// Recompute derives the score from current state and stores it. It never
// patches the previous score, so concurrent calls converge on the same value.
func (s *Scorer) Recompute(ctx context.Context, orgID id.OrganizationID) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.Recompute", trace.WithAttributes(
		attribute.String("organization_id", orgID.String()),
	))
	defer span.End()

	total, err := s.accesses.CountByOrganization(ctx, orgID)
	if err != nil {
		span.RecordError(err)
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count accesses")
	}
	unresolved, err := s.violations.ListUnresolved(ctx, orgID)
	if err != nil {
		span.RecordError(err)
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load unresolved violations")
	}

	score := models.ComputeScore(total, unresolved)
	if err := s.writer.SetComplianceScore(ctx, orgID, score, requestcontext.Now(ctx)); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		span.RecordError(err)
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store compliance score")
	}

	s.metrics.IncRecomputed()
	span.SetAttributes(attribute.Float64("score", score))
	s.logger.InfoContext(ctx, "compliance score updated",
		"organization_id", orgID,
		"score", score,
		"unresolved", len(unresolved),
		"accesses", total,
	)
	return score, nil
}
