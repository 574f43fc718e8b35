// Package service is the compliance rule engine: it scans an organization's
// recent access events against the active rules, records violations, and
// lets owners resolve them.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	accessmodels "ledger/internal/access/models"
	compliancemetrics "ledger/internal/compliance/metrics"
	"ledger/internal/compliance/models"
	"ledger/internal/compliance/rules"
	dirmodels "ledger/internal/directory/models"
	id "ledger/pkg/domain"
	dErrors "ledger/pkg/domain-errors"
	audit "ledger/pkg/platform/audit"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/requestcontext"
)

// DefaultWindow is how far back a scan looks.
const DefaultWindow = 30 * 24 * time.Hour

type RuleStore interface {
	Ensure(ctx context.Context, r *models.Rule) (*models.Rule, error)
	ListActive(ctx context.Context) ([]*models.Rule, error)
}

type ViolationStore interface {
	Create(ctx context.Context, v *models.Violation) (bool, error)
	FindByID(ctx context.Context, violationID id.ViolationID) (*models.Violation, error)
	List(ctx context.Context, orgID id.OrganizationID, filter models.ViolationFilter, page id.Page) ([]*models.Violation, int, error)
	ListUnresolved(ctx context.Context, orgID id.OrganizationID) ([]*models.Violation, error)
	Count(ctx context.Context, orgID id.OrganizationID) (int, error)
	Execute(ctx context.Context, violationID id.ViolationID, validate func(*models.Violation) error, mutate func(*models.Violation)) (*models.Violation, error)
}

// AccessReader is the read side of the access recorder's store.
type AccessReader interface {
	ListByOrganizationSince(ctx context.Context, orgID id.OrganizationID, since time.Time) ([]*accessmodels.AccessEvent, error)
	CountByOrganization(ctx context.Context, orgID id.OrganizationID) (int, error)
	CountAuthorizedByOrganization(ctx context.Context, orgID id.OrganizationID) (int, error)
}

type Directory interface {
	FindOrganization(ctx context.Context, orgID id.OrganizationID) (*dirmodels.Organization, error)
}

// ScoreRecomputer is the compliance scorer.
type ScoreRecomputer interface {
	Recompute(ctx context.Context, orgID id.OrganizationID) (float64, error)
}

type Service struct {
	rules      RuleStore
	violations ViolationStore
	accesses   AccessReader
	directory  Directory
	scorer     ScoreRecomputer
	registry   *rules.Registry
	window     time.Duration
	emitter    audit.Emitter
	logger     *slog.Logger
	metrics    *compliancemetrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *compliancemetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditEmitter sets where violation notifications go.
func WithAuditEmitter(e audit.Emitter) Option {
	return func(s *Service) {
		s.emitter = e
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithRegistry replaces the default check registry.
func WithRegistry(r *rules.Registry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// WithWindow sets how far back a scan looks. Non-positive values are ignored.
func WithWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.window = d
		}
	}
}

func New(ruleStore RuleStore, violations ViolationStore, accesses AccessReader, directory Directory, scorer ScoreRecomputer, opts ...Option) (*Service, error) {
	switch {
	case ruleStore == nil:
		return nil, errors.New("rule store is required")
	case violations == nil:
		return nil, errors.New("violation store is required")
	case accesses == nil:
		return nil, errors.New("access reader is required")
	case directory == nil:
		return nil, errors.New("directory is required")
	case scorer == nil:
		return nil, errors.New("score recomputer is required")
	}
	s := &Service{
		rules:      ruleStore,
		violations: violations,
		accesses:   accesses,
		directory:  directory,
		scorer:     scorer,
		window:     DefaultWindow,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = rules.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("ledger/compliance")
	}
	return s, nil
}

// SeedRules makes sure every catalog entry exists as a rule. Existing rules
// are left untouched.
func (s *Service) SeedRules(ctx context.Context, entries []rules.CatalogEntry) ([]*models.Rule, error) {
	now := requestcontext.Now(ctx)
	out := make([]*models.Rule, 0, len(entries))
	for _, e := range entries {
		r, err := e.Rule(now)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid rule catalog entry")
		}
		stored, err := s.rules.Ensure(ctx, r)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed rule "+r.Name)
		}
		out = append(out, stored)
	}
	s.logger.InfoContext(ctx, "compliance rules seeded", "count", len(out))
	return out, nil
}

// Scan evaluates every active rule against the organization's access events
// inside the scan window. Re-scanning the same window creates no duplicate
// violations. The returned score already reflects any violations found.
func (s *Service) Scan(ctx context.Context, orgID id.OrganizationID) (*models.ScanResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "compliance.Scan", trace.WithAttributes(
		attribute.String("organization_id", orgID.String()),
	))
	defer span.End()

	result, err := s.scan(ctx, orgID)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveScan("error", start)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("violations_created", result.ViolationsCreated),
		attribute.Float64("score", result.Score),
	)
	s.metrics.ObserveScan("ok", start)
	s.logger.InfoContext(ctx, "compliance scan complete",
		"organization_id", orgID,
		"events_scanned", result.EventsScanned,
		"rules_evaluated", result.RulesEvaluated,
		"violations_created", result.ViolationsCreated,
		"score", result.Score,
		"request_id", requestcontext.RequestID(ctx),
	)
	return result, nil
}

func (s *Service) scan(ctx context.Context, orgID id.OrganizationID) (*models.ScanResult, error) {
	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "organization ID is required")
	}
	org, err := s.directory.FindOrganization(ctx, orgID)
	if err != nil {
		return nil, wrapLookupErr(err, "organization not found")
	}

	now := requestcontext.Now(ctx)
	windowStart := now.Add(-s.window)
	events, err := s.accesses.ListByOrganizationSince(ctx, orgID, windowStart)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access events")
	}
	active, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load compliance rules")
	}

	result := &models.ScanResult{
		OrganizationID: orgID,
		EventsScanned:  len(events),
		WindowStart:    windowStart,
		ScannedAt:      now,
	}
	for _, rule := range active {
		check, ok := s.registry.Lookup(rule.Type)
		if !ok {
			s.metrics.IncNoop(string(rule.Type))
			s.logger.InfoContext(ctx, "no check registered for rule type",
				"rule_id", rule.ID,
				"rule_type", rule.Type,
			)
			continue
		}
		result.RulesEvaluated++

		findings, err := check(ctx, rules.Input{
			Rule:           rule,
			OrganizationID: orgID,
			Events:         events,
			WindowStart:    windowStart,
			AsOf:           now,
		})
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "rule "+rule.Name+" failed")
		}
		created, err := s.record(ctx, org, rule, findings, now)
		if err != nil {
			return nil, err
		}
		result.ViolationsCreated += created
	}

	score, err := s.scorer.Recompute(ctx, orgID)
	if err != nil {
		return nil, err
	}
	result.Score = score
	return result, nil
}

// record stores one violation per finding. A finding already recorded for
// the same rule and access event counts as nothing new.
func (s *Service) record(ctx context.Context, org *dirmodels.Organization, rule *models.Rule, findings []rules.Finding, now time.Time) (int, error) {
	created := 0
	for _, f := range findings {
		v, err := models.NewViolation(id.NewViolationID(), rule, org.ID, f.AccessEventID, f.Description, now)
		if err != nil {
			return created, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build violation")
		}
		fresh, err := s.violations.Create(ctx, v)
		if err != nil {
			return created, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save violation")
		}
		if !fresh {
			continue
		}
		created++
		s.metrics.IncDetected(string(rule.Type), string(v.Severity))
		s.notifyDetected(ctx, rule, v)
	}
	return created, nil
}

// Resolve closes a violation. Only the organization's owner or an admin may
// resolve, and only detected or investigating violations can be resolved.
func (s *Service) Resolve(ctx context.Context, violationID id.ViolationID, principal id.Principal, notes string) (*models.Violation, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.Resolve", trace.WithAttributes(
		attribute.String("violation_id", violationID.String()),
	))
	defer span.End()

	if violationID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "violation ID is required")
	}
	if utf8.RuneCountInString(notes) > models.MaxResolutionNotesLength {
		return nil, dErrors.New(dErrors.CodeValidation, "resolution notes must be 2000 characters or less")
	}

	existing, err := s.violations.FindByID(ctx, violationID)
	if err != nil {
		return nil, wrapViolationErr(err)
	}
	org, err := s.directory.FindOrganization(ctx, existing.OrganizationID)
	if err != nil {
		return nil, wrapLookupErr(err, "organization not found")
	}
	if !org.IsActedForBy(principal) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the organization owner or an admin may resolve violations")
	}

	now := requestcontext.Now(ctx)
	v, err := s.violations.Execute(ctx, violationID,
		func(v *models.Violation) error {
			return translateInvariant(v.CanResolve(), dErrors.CodeConflict)
		},
		func(v *models.Violation) {
			v.ApplyResolution(now, principal.ID, notes)
		},
	)
	if err != nil {
		span.RecordError(err)
		return nil, wrapViolationErr(err)
	}

	s.metrics.IncResolved()
	s.logger.InfoContext(ctx, "violation resolved",
		"violation_id", v.ID,
		"organization_id", v.OrganizationID,
		"resolved_by", principal.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	if _, err := s.scorer.Recompute(ctx, v.OrganizationID); err != nil {
		s.logger.ErrorContext(ctx, "score recompute after resolve failed",
			"organization_id", v.OrganizationID,
			"error", err,
		)
	}
	return v, nil
}

// GetViolation returns one violation.
func (s *Service) GetViolation(ctx context.Context, violationID id.ViolationID) (*models.Violation, error) {
	v, err := s.violations.FindByID(ctx, violationID)
	if err != nil {
		return nil, wrapViolationErr(err)
	}
	return v, nil
}

// ListViolations pages through an organization's violations, newest first.
func (s *Service) ListViolations(ctx context.Context, orgID id.OrganizationID, filter models.ViolationFilter, page id.Page) (id.PageResult[*models.Violation], error) {
	if err := filter.Validate(); err != nil {
		return id.PageResult[*models.Violation]{}, err
	}
	items, total, err := s.violations.List(ctx, orgID, filter, page)
	if err != nil {
		return id.PageResult[*models.Violation]{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list violations")
	}
	return id.NewPageResult(items, total, page), nil
}

// Summary is the organization's compliance dashboard.
func (s *Service) Summary(ctx context.Context, orgID id.OrganizationID) (*models.Summary, error) {
	org, err := s.directory.FindOrganization(ctx, orgID)
	if err != nil {
		return nil, wrapLookupErr(err, "organization not found")
	}
	total, err := s.accesses.CountByOrganization(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count accesses")
	}
	authorized, err := s.accesses.CountAuthorizedByOrganization(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count authorized accesses")
	}
	violations, err := s.violations.Count(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count violations")
	}
	unresolved, err := s.violations.ListUnresolved(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load unresolved violations")
	}

	bySeverity := make(map[models.Severity]int, len(models.Severities()))
	for _, sev := range models.Severities() {
		bySeverity[sev] = 0
	}
	for _, v := range unresolved {
		bySeverity[v.Severity]++
	}
	return &models.Summary{
		OrganizationID:       org.ID,
		OrganizationName:     org.Name,
		Score:                org.ComplianceScore,
		ScoreUpdatedAt:       org.ScoreUpdatedAt,
		TotalAccesses:        total,
		AuthorizedAccesses:   authorized,
		AuthorizationRate:    models.AuthorizationRate(total, authorized),
		TotalViolations:      violations,
		UnresolvedViolations: len(unresolved),
		UnresolvedBySeverity: bySeverity,
	}, nil
}

func (s *Service) notifyDetected(ctx context.Context, rule *models.Rule, v *models.Violation) {
	if s.emitter == nil {
		return
	}
	attrs := map[string]string{
		"violation_id": v.ID.String(),
		"rule_id":      rule.ID.String(),
		"rule_name":    rule.Name,
		"severity":     string(v.Severity),
	}
	if v.AccessEventID != nil {
		attrs["access_event_id"] = v.AccessEventID.String()
	}
	err := s.emitter.Emit(ctx, audit.Event{
		Kind:       audit.KindViolationDetected,
		Audience:   audit.ToOrganization(v.OrganizationID),
		Title:      "Compliance violation detected",
		Message:    v.Description,
		Attributes: attrs,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "violation notification failed",
			"violation_id", v.ID,
			"error", err,
		)
	}
}

func translateInvariant(err error, code dErrors.Code) error {
	if err == nil {
		return nil
	}
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(code, dErrors.MessageOf(err))
	}
	return err
}

func wrapViolationErr(err error) error {
	var de *dErrors.Error
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "violation not found")
	case errors.As(err, &de):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "violation store failure")
	}
}

func wrapLookupErr(err error, notFoundMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "directory lookup failed")
}
