// Package audit carries the notifications the ledger raises for data
// subjects and organizations: data access, consent changes, and detected
// violations.
//
// Emitters never block or fail the ledger write they accompany. The
// publisher fans each event out to one or more Sinks (structured log, Kafka,
// in-memory) either synchronously or through a bounded async buffer.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "ledger/pkg/domain"
)

// Kind is the notification type.
type Kind string

const (
	KindDataAccessed      Kind = "data_accessed"
	KindConsentGranted    Kind = "consent_granted"
	KindConsentRevoked    Kind = "consent_revoked"
	KindViolationDetected Kind = "violation_detected"
)

// AudienceType distinguishes data subjects from organizations.
type AudienceType string

const (
	AudienceUser         AudienceType = "user"
	AudienceOrganization AudienceType = "organization"
)

// Audience is the recipient of a notification.
type Audience struct {
	Type AudienceType `json:"type"`
	ID   string       `json:"id"`
}

func ToUser(userID id.UserID) Audience {
	return Audience{Type: AudienceUser, ID: userID.String()}
}

func ToOrganization(orgID id.OrganizationID) Audience {
	return Audience{Type: AudienceOrganization, ID: orgID.String()}
}

// Event is one notification. Keep it transport-agnostic so sinks can fan out.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Kind       Kind              `json:"kind"`
	Audience   Audience          `json:"audience"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Emitter is what domain services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Sink delivers an event to one destination.
type Sink interface {
	Deliver(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event Event) error

func (f SinkFunc) Deliver(ctx context.Context, event Event) error {
	return f(ctx, event)
}
