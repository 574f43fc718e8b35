package service

import (
	"context"
	"log/slog"
	"strings"

	"ledger/internal/consent/models"
	audit "ledger/pkg/platform/audit"
)

// auditEmitter raises consent notifications. Delivery failures are logged
// and never fail the ledger write.
type auditEmitter struct {
	emitter audit.Emitter
	logger  *slog.Logger
}

func newAuditEmitter(e audit.Emitter, logger *slog.Logger) *auditEmitter {
	return &auditEmitter{emitter: e, logger: logger}
}

func (a *auditEmitter) emitGranted(ctx context.Context, c *models.Consent, orgName string) {
	attrs := consentAttrs(c)
	a.emit(ctx, audit.Event{
		Kind:       audit.KindConsentGranted,
		Audience:   audit.ToOrganization(c.OrganizationID),
		Title:      "New consent granted",
		Message:    "A data subject granted consent for " + string(c.Purpose),
		Attributes: attrs,
	})
	a.emit(ctx, audit.Event{
		Kind:       audit.KindConsentGranted,
		Audience:   audit.ToUser(c.UserID),
		Title:      "Consent recorded",
		Message:    "You granted " + orgName + " consent for " + string(c.Purpose),
		Attributes: attrs,
	})
}

func (a *auditEmitter) emitRevoked(ctx context.Context, c *models.Consent) {
	attrs := consentAttrs(c)
	a.emit(ctx, audit.Event{
		Kind:       audit.KindConsentRevoked,
		Audience:   audit.ToOrganization(c.OrganizationID),
		Title:      "Consent revoked",
		Message:    "A data subject revoked consent for " + string(c.Purpose),
		Attributes: attrs,
	})
	a.emit(ctx, audit.Event{
		Kind:       audit.KindConsentRevoked,
		Audience:   audit.ToUser(c.UserID),
		Title:      "Consent revoked",
		Message:    "Your consent for " + string(c.Purpose) + " has been revoked",
		Attributes: attrs,
	})
}

func (a *auditEmitter) emit(ctx context.Context, event audit.Event) {
	if a.emitter == nil {
		return
	}
	if err := a.emitter.Emit(ctx, event); err != nil && a.logger != nil {
		a.logger.WarnContext(ctx, "consent notification failed",
			"kind", event.Kind,
			"audience_type", event.Audience.Type,
			"error", err,
		)
	}
}

func consentAttrs(c *models.Consent) map[string]string {
	types := make([]string, len(c.DataTypes))
	for i, dt := range c.DataTypes {
		types[i] = string(dt)
	}
	return map[string]string{
		"consent_id": c.ID.String(),
		"purpose":    string(c.Purpose),
		"data_types": strings.Join(types, ","),
	}
}
