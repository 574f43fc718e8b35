// Package service implements the consent ledger: granting, revoking, and
// expiring consents, and answering whether a consent authorizes access to a
// data type at an instant.
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

	consentmetrics "ledger/internal/consent/metrics"
	"ledger/internal/consent/models"
	dirmodels "ledger/internal/directory/models"
	id "ledger/pkg/domain"
	dErrors "ledger/pkg/domain-errors"
	audit "ledger/pkg/platform/audit"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/requestcontext"
)

type Store interface {
	Save(ctx context.Context, c *models.Consent) error
	FindByID(ctx context.Context, consentID id.ConsentID) (*models.Consent, error)
	ListByUserAndOrganization(ctx context.Context, userID id.UserID, orgID id.OrganizationID) ([]*models.Consent, error)
	ListByUser(ctx context.Context, userID id.UserID, filter models.ListFilter, page id.Page) ([]*models.Consent, int, error)
	ListByOrganization(ctx context.Context, orgID id.OrganizationID, filter models.ListFilter, page id.Page) ([]*models.Consent, int, error)
	Execute(ctx context.Context, consentID id.ConsentID, validate func(*models.Consent) error, mutate func(*models.Consent)) (*models.Consent, error)
	ExpireDue(ctx context.Context, asOf time.Time) (int, error)
}

// Directory resolves the accounts a consent binds together.
type Directory interface {
	FindUser(ctx context.Context, userID id.UserID) (*dirmodels.User, error)
	FindOrganization(ctx context.Context, orgID id.OrganizationID) (*dirmodels.Organization, error)
}

// Service is the consent ledger.
type Service struct {
	store     Store
	directory Directory
	audit     *auditEmitter
	logger    *slog.Logger
	metrics   *consentmetrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *consentmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditEmitter sets where grant and revoke notifications go.
func WithAuditEmitter(e audit.Emitter) Option {
	return func(s *Service) {
		s.audit = newAuditEmitter(e, s.logger)
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(store Store, directory Directory, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("consent store is required")
	}
	if directory == nil {
		return nil, errors.New("directory is required")
	}
	s := &Service{store: store, directory: directory, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.audit == nil {
		s.audit = newAuditEmitter(nil, s.logger)
	}
	s.audit.logger = s.logger
	if s.tracer == nil {
		s.tracer = otel.Tracer("ledger/consent")
	}
	return s, nil
}

// GrantRequest carries the subject's grant. DurationDays nil means the
// consent never expires.
type GrantRequest struct {
	UserID             id.UserID
	OrganizationID     id.OrganizationID
	DataTypes          []id.DataType
	Purpose            id.Purpose
	PurposeDescription string
	DurationDays       *int
}

func (r GrantRequest) validate() error {
	if r.UserID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "user ID is required")
	}
	if r.OrganizationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "organization ID is required")
	}
	if len(r.DataTypes) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one data type is required")
	}
	for _, dt := range r.DataTypes {
		if !dt.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "invalid data type: "+string(dt))
		}
	}
	if !r.Purpose.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid purpose: "+string(r.Purpose))
	}
	if utf8.RuneCountInString(r.PurposeDescription) > models.MaxPurposeDescriptionLength {
		return dErrors.New(dErrors.CodeValidation, "purpose description must be 500 characters or less")
	}
	if r.DurationDays != nil && (*r.DurationDays < 1 || *r.DurationDays > models.MaxDurationDays) {
		return dErrors.New(dErrors.CodeValidation, "duration must be between 1 and 3650 days")
	}
	return nil
}

// Grant records a new active consent and notifies both parties.
func (s *Service) Grant(ctx context.Context, req GrantRequest) (*models.Consent, error) {
	ctx, span := s.tracer.Start(ctx, "consent.Grant", trace.WithAttributes(
		attribute.String("organization_id", req.OrganizationID.String()),
		attribute.String("purpose", string(req.Purpose)),
	))
	defer span.End()

	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := s.directory.FindUser(ctx, req.UserID); err != nil {
		return nil, wrapLookupErr(err, "user not found")
	}
	org, err := s.directory.FindOrganization(ctx, req.OrganizationID)
	if err != nil {
		return nil, wrapLookupErr(err, "organization not found")
	}

	c, err := models.NewConsent(id.NewConsentID(), req.UserID, req.OrganizationID,
		req.DataTypes, req.Purpose, req.PurposeDescription, req.DurationDays, requestcontext.Now(ctx))
	if err != nil {
		return nil, translateInvariant(err, dErrors.CodeValidation)
	}
	if err := s.store.Save(ctx, c); err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save consent")
	}

	s.metrics.IncGranted(string(c.Purpose))
	s.logger.InfoContext(ctx, "consent granted",
		"consent_id", c.ID,
		"user_id", c.UserID,
		"organization_id", c.OrganizationID,
		"purpose", c.Purpose,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.audit.emitGranted(ctx, c, org.Name)
	return c, nil
}

// Revoke withdraws a consent. Only the consent's subject may revoke it.
func (s *Service) Revoke(ctx context.Context, consentID id.ConsentID, requester id.UserID, reason string) (*models.Consent, error) {
	ctx, span := s.tracer.Start(ctx, "consent.Revoke", trace.WithAttributes(
		attribute.String("consent_id", consentID.String()),
	))
	defer span.End()

	if consentID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "consent ID is required")
	}
	if utf8.RuneCountInString(reason) > models.MaxRevokeReasonLength {
		return nil, dErrors.New(dErrors.CodeValidation, "revoke reason must be 500 characters or less")
	}

	now := requestcontext.Now(ctx)
	c, err := s.store.Execute(ctx, consentID,
		func(c *models.Consent) error {
			if c.UserID != requester {
				return dErrors.New(dErrors.CodeForbidden, "only the data subject may revoke this consent")
			}
			return translateInvariant(c.CanRevoke(now), dErrors.CodeConflict)
		},
		func(c *models.Consent) {
			c.ApplyRevocation(now, reason)
		},
	)
	if err != nil {
		return nil, wrapConsentErr(err)
	}

	s.metrics.IncRevoked()
	s.logger.InfoContext(ctx, "consent revoked",
		"consent_id", c.ID,
		"user_id", c.UserID,
		"organization_id", c.OrganizationID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.audit.emitRevoked(ctx, c)
	return c, nil
}

// Get returns one consent.
func (s *Service) Get(ctx context.Context, consentID id.ConsentID) (*models.Consent, error) {
	c, err := s.store.FindByID(ctx, consentID)
	if err != nil {
		return nil, wrapConsentErr(err)
	}
	return c, nil
}

// Check reports whether some consent from userID to orgID authorizes dt at
// asOf, and why not when none does.
func (s *Service) Check(ctx context.Context, userID id.UserID, orgID id.OrganizationID, dt id.DataType, asOf time.Time) (models.Verdict, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "consent.Check")
	defer span.End()

	if !dt.IsValid() {
		return models.Verdict{}, dErrors.New(dErrors.CodeValidation, "invalid data type: "+string(dt))
	}
	consents, err := s.store.ListByUserAndOrganization(ctx, userID, orgID)
	if err != nil {
		span.RecordError(err)
		return models.Verdict{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consents")
	}

	verdict := models.Evaluate(consents, dt, asOf)
	outcome := "valid"
	if !verdict.Valid {
		outcome = "invalid"
	}
	span.SetAttributes(attribute.Bool("valid", verdict.Valid))
	s.metrics.ObserveCheck(outcome, start)
	return verdict, nil
}

// IsValid is Check reduced to its yes/no answer.
func (s *Service) IsValid(ctx context.Context, userID id.UserID, orgID id.OrganizationID, dt id.DataType, asOf time.Time) (bool, error) {
	v, err := s.Check(ctx, userID, orgID, dt, asOf)
	if err != nil {
		return false, err
	}
	return v.Valid, nil
}

// ValidPurposes lists the purposes for which dt may be processed at asOf.
func (s *Service) ValidPurposes(ctx context.Context, userID id.UserID, orgID id.OrganizationID, dt id.DataType, asOf time.Time) ([]id.Purpose, error) {
	if !dt.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid data type: "+string(dt))
	}
	consents, err := s.store.ListByUserAndOrganization(ctx, userID, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consents")
	}
	return models.ValidPurposes(consents, dt, asOf), nil
}

// ExpireDue marks every active consent whose expiry is at or before asOf.
// Running it twice for the same asOf changes nothing the second time.
func (s *Service) ExpireDue(ctx context.Context, asOf time.Time) (int, error) {
	ctx, span := s.tracer.Start(ctx, "consent.ExpireDue")
	defer span.End()

	if asOf.After(requestcontext.Now(ctx)) {
		return 0, dErrors.New(dErrors.CodeValidation, "cannot expire consents ahead of the clock")
	}
	n, err := s.store.ExpireDue(ctx, asOf)
	if err != nil {
		span.RecordError(err)
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to expire consents")
	}
	s.metrics.AddExpired(n)
	if n > 0 {
		s.logger.InfoContext(ctx, "expired consents", "count", n, "as_of", asOf)
	}
	return n, nil
}

// ListForUser pages through a subject's consents, newest first.
func (s *Service) ListForUser(ctx context.Context, userID id.UserID, status *models.Status, page id.Page) (id.PageResult[*models.Consent], error) {
	filter, err := s.filter(ctx, status)
	if err != nil {
		return id.PageResult[*models.Consent]{}, err
	}
	items, total, err := s.store.ListByUser(ctx, userID, filter, page)
	if err != nil {
		return id.PageResult[*models.Consent]{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list consents")
	}
	return id.NewPageResult(items, total, page), nil
}

// ListForOrganization pages through consents held by an organization.
func (s *Service) ListForOrganization(ctx context.Context, orgID id.OrganizationID, status *models.Status, page id.Page) (id.PageResult[*models.Consent], error) {
	filter, err := s.filter(ctx, status)
	if err != nil {
		return id.PageResult[*models.Consent]{}, err
	}
	items, total, err := s.store.ListByOrganization(ctx, orgID, filter, page)
	if err != nil {
		return id.PageResult[*models.Consent]{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list consents")
	}
	return id.NewPageResult(items, total, page), nil
}

func (s *Service) filter(ctx context.Context, status *models.Status) (models.ListFilter, error) {
	if status != nil && !status.IsValid() {
		return models.ListFilter{}, dErrors.New(dErrors.CodeValidation, "invalid consent status: "+string(*status))
	}
	return models.ListFilter{Status: status, AsOf: requestcontext.Now(ctx)}, nil
}

// translateInvariant rewrites a model invariant violation into code,
// leaving other errors alone.
func translateInvariant(err error, code dErrors.Code) error {
	if err == nil {
		return nil
	}
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(code, dErrors.MessageOf(err))
	}
	return err
}

func wrapConsentErr(err error) error {
	var de *dErrors.Error
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "consent not found")
	case errors.As(err, &de):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "consent store failure")
	}
}

func wrapLookupErr(err error, notFoundMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "directory lookup failed")
}
