// Package service records access events, stamping each with the consent
// ledger's verdict at the instant of access.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ledger/internal/access/agent"
	accessmetrics "ledger/internal/access/metrics"
	"ledger/internal/access/models"
	consentmodels "ledger/internal/consent/models"
	id "ledger/pkg/domain"
	dErrors "ledger/pkg/domain-errors"
	audit "ledger/pkg/platform/audit"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/requestcontext"
)

type Store interface {
	Save(ctx context.Context, e *models.AccessEvent) error
	FindByID(ctx context.Context, eventID id.AccessEventID) (*models.AccessEvent, error)
	ListByUser(ctx context.Context, userID id.UserID, r models.Range, page id.Page) ([]*models.AccessEvent, int, error)
	ListByOrganization(ctx context.Context, orgID id.OrganizationID, r models.Range, page id.Page) ([]*models.AccessEvent, int, error)
	ListUnauthorized(ctx context.Context, filter models.UnauthorizedFilter, limit int) ([]*models.AccessEvent, error)
}

// ConsentOracle is the consent ledger as seen by the recorder.
type ConsentOracle interface {
	Check(ctx context.Context, userID id.UserID, orgID id.OrganizationID, dt id.DataType, asOf time.Time) (consentmodels.Verdict, error)
	Get(ctx context.Context, consentID id.ConsentID) (*consentmodels.Consent, error)
}

// Recorder is the access recorder.
type Recorder struct {
	store   Store
	oracle  ConsentOracle
	emitter audit.Emitter
	logger  *slog.Logger
	metrics *accessmetrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Recorder)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func WithMetrics(m *accessmetrics.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithAuditEmitter sets where unauthorized-access alerts go.
func WithAuditEmitter(e audit.Emitter) Option {
	return func(r *Recorder) {
		r.emitter = e
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(r *Recorder) {
		r.tracer = t
	}
}

func New(store Store, oracle ConsentOracle, opts ...Option) (*Recorder, error) {
	if store == nil {
		return nil, errors.New("access store is required")
	}
	if oracle == nil {
		return nil, errors.New("consent oracle is required")
	}
	r := &Recorder{store: store, oracle: oracle, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer("ledger/access")
	}
	return r, nil
}

// RecordRequest describes one access. ConsentHint names the consent the
// caller believes applies; it is cross-checked but never relaxes the verdict.
// ClientIP and UserAgent fall back to the request context when empty.
type RecordRequest struct {
	UserID         id.UserID
	OrganizationID id.OrganizationID
	DataType       id.DataType
	Action         id.Action
	Purpose        id.Purpose
	Principal      string
	ClientIP       string
	UserAgent      string
	ConsentHint    *id.ConsentID
}

func (req RecordRequest) validate() error {
	if req.UserID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "user ID is required")
	}
	if req.OrganizationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "organization ID is required")
	}
	if req.Principal == "" {
		return dErrors.New(dErrors.CodeValidation, "accessing principal is required")
	}
	if !req.DataType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid data type: "+string(req.DataType))
	}
	if !req.Action.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid action: "+string(req.Action))
	}
	if !req.Purpose.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid purpose: "+string(req.Purpose))
	}
	if req.ConsentHint != nil && req.ConsentHint.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "consent hint must be a valid consent ID")
	}
	return nil
}

// Record judges the access against the consent ledger at now and persists
// it whatever the verdict. Unauthorized accesses alert the subject.
func (r *Recorder) Record(ctx context.Context, req RecordRequest) (*models.AccessEvent, error) {
	ctx, span := r.tracer.Start(ctx, "access.Record", trace.WithAttributes(
		attribute.String("organization_id", req.OrganizationID.String()),
		attribute.String("data_type", string(req.DataType)),
	))
	defer span.End()

	if err := req.validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	verdict, err := r.oracle.Check(ctx, req.UserID, req.OrganizationID, req.DataType, now)
	if err != nil {
		span.RecordError(err)
		return nil, asInternal(err, "consent check failed")
	}

	event, err := models.NewAccessEvent(id.NewAccessEventID(), req.UserID, req.OrganizationID,
		req.Principal, req.DataType, req.Action, req.Purpose, verdict.Valid, now)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	event.ClientIP = firstNonEmpty(req.ClientIP, requestcontext.ClientIP(ctx))
	event.UserAgent = firstNonEmpty(req.UserAgent, requestcontext.UserAgent(ctx))
	event.AgentSummary = agent.Describe(event.UserAgent)
	event.ConsentID = verdict.ConsentID

	if req.ConsentHint != nil {
		matched, err := r.crossCheckHint(ctx, req, now)
		if err != nil {
			return nil, err
		}
		if matched {
			event.ConsentID = req.ConsentHint
		}
	}

	if err := r.store.Save(ctx, event); err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record access event")
	}

	r.metrics.IncRecorded(string(event.DataType), event.Authorized)
	span.SetAttributes(attribute.Bool("authorized", event.Authorized))
	logAttrs := []any{
		"access_event_id", event.ID,
		"organization_id", event.OrganizationID,
		"data_type", event.DataType,
		"action", event.Action,
		"authorized", event.Authorized,
		"request_id", requestcontext.RequestID(ctx),
	}
	if event.Authorized {
		r.logger.InfoContext(ctx, "access recorded", logAttrs...)
	} else {
		r.logger.WarnContext(ctx, "unauthorized access recorded", append(logAttrs, "reason", verdict.Reason)...)
		r.alertSubject(ctx, event, verdict.Reason)
	}
	return event, nil
}

// crossCheckHint reports whether the hinted consent authorizes the access on
// its own. A mismatch is logged; only a store failure is an error.
func (r *Recorder) crossCheckHint(ctx context.Context, req RecordRequest, now time.Time) (bool, error) {
	hinted, err := r.oracle.Get(ctx, *req.ConsentHint)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			r.metrics.IncHintMismatch()
			r.logger.WarnContext(ctx, "consent hint not found", "consent_id", req.ConsentHint)
			return false, nil
		}
		return false, asInternal(err, "consent hint lookup failed")
	}
	matches := hinted.UserID == req.UserID &&
		hinted.OrganizationID == req.OrganizationID &&
		hinted.Covers(req.DataType) &&
		hinted.IsValidAt(now)
	if !matches {
		r.metrics.IncHintMismatch()
		r.logger.WarnContext(ctx, "consent hint does not authorize access",
			"consent_id", hinted.ID,
			"hint_status", hinted.EffectiveStatus(now),
		)
	}
	return matches, nil
}

func (r *Recorder) alertSubject(ctx context.Context, e *models.AccessEvent, reason consentmodels.Reason) {
	if r.emitter == nil {
		return
	}
	err := r.emitter.Emit(ctx, audit.Event{
		Kind:     audit.KindDataAccessed,
		Audience: audit.ToUser(e.UserID),
		Title:    "Your data was accessed",
		Message:  "Your " + string(e.DataType) + " data was accessed without an active consent",
		Attributes: map[string]string{
			"access_event_id": e.ID.String(),
			"organization_id": e.OrganizationID.String(),
			"data_type":       string(e.DataType),
			"action":          string(e.Action),
			"purpose":         string(e.Purpose),
			"authorized":      "false",
			"reason":          string(reason),
			"client_ip":       e.ClientIP,
			"device":          e.AgentSummary,
		},
	})
	if err != nil {
		r.logger.WarnContext(ctx, "access notification failed",
			"access_event_id", e.ID,
			"error", err,
		)
	}
}

// Get returns one access event.
func (r *Recorder) Get(ctx context.Context, eventID id.AccessEventID) (*models.AccessEvent, error) {
	e, err := r.store.FindByID(ctx, eventID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "access event not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access event")
	}
	return e, nil
}

// ListForUser pages through accesses to a subject's data, newest first.
func (r *Recorder) ListForUser(ctx context.Context, userID id.UserID, rng models.Range, page id.Page) (id.PageResult[*models.AccessEvent], error) {
	if err := rng.Validate(); err != nil {
		return id.PageResult[*models.AccessEvent]{}, err
	}
	items, total, err := r.store.ListByUser(ctx, userID, rng, page)
	if err != nil {
		return id.PageResult[*models.AccessEvent]{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list access events")
	}
	return id.NewPageResult(items, total, page), nil
}

// ListForOrganization pages through an organization's accesses, newest first.
func (r *Recorder) ListForOrganization(ctx context.Context, orgID id.OrganizationID, rng models.Range, page id.Page) (id.PageResult[*models.AccessEvent], error) {
	if err := rng.Validate(); err != nil {
		return id.PageResult[*models.AccessEvent]{}, err
	}
	items, total, err := r.store.ListByOrganization(ctx, orgID, rng, page)
	if err != nil {
		return id.PageResult[*models.AccessEvent]{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list access events")
	}
	return id.NewPageResult(items, total, page), nil
}

// UnauthorizedSince returns at most MaxUnauthorizedResults unauthorized
// accesses, newest first. A nil orgID spans every organization.
func (r *Recorder) UnauthorizedSince(ctx context.Context, orgID *id.OrganizationID, since *time.Time) ([]*models.AccessEvent, error) {
	events, err := r.store.ListUnauthorized(ctx, models.UnauthorizedFilter{OrganizationID: orgID, Since: since}, models.MaxUnauthorizedResults)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list unauthorized access")
	}
	return events, nil
}

// asInternal keeps an internal error as is and wraps anything else.
func asInternal(err error, msg string) error {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
