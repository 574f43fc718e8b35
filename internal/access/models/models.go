// Package models defines the access event, the frozen record that an
// organization touched a subject's data.
package models

import (
	"time"

	id "ledger/pkg/domain"
	dErrors "ledger/pkg/domain-errors"
)

// MaxUnauthorizedResults caps the unauthorized-access view.
const MaxUnauthorizedResults = 100

// AccessEvent records one access. Authorized is decided once, at creation,
// from the consent ledger at OccurredAt and never recomputed.
type AccessEvent struct {
	ID             id.AccessEventID
	UserID         id.UserID
	OrganizationID id.OrganizationID
	ConsentID      *id.ConsentID
	Principal      string
	DataType       id.DataType
	Action         id.Action
	Purpose        id.Purpose
	ClientIP       string
	UserAgent      string
	AgentSummary   string
	Authorized     bool
	OccurredAt     time.Time
}

// NewAccessEvent builds an event from validated fields. The authorization
// verdict is supplied by the caller and frozen from here on.
func NewAccessEvent(
	eventID id.AccessEventID,
	userID id.UserID,
	orgID id.OrganizationID,
	principal string,
	dt id.DataType,
	action id.Action,
	purpose id.Purpose,
	authorized bool,
	now time.Time,
) (*AccessEvent, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user ID is required")
	}
	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization ID is required")
	}
	if principal == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "accessing principal is required")
	}
	if !dt.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid data type: "+string(dt))
	}
	if !action.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid action: "+string(action))
	}
	if !purpose.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid purpose: "+string(purpose))
	}
	return &AccessEvent{
		ID:             eventID,
		UserID:         userID,
		OrganizationID: orgID,
		Principal:      principal,
		DataType:       dt,
		Action:         action,
		Purpose:        purpose,
		Authorized:     authorized,
		OccurredAt:     now,
	}, nil
}

func (e *AccessEvent) Clone() *AccessEvent {
	if e == nil {
		return nil
	}
	out := *e
	if e.ConsentID != nil {
		cid := *e.ConsentID
		out.ConsentID = &cid
	}
	return &out
}

// Range bounds OccurredAt. Both ends are inclusive; a nil end is open.
type Range struct {
	From *time.Time
	To   *time.Time
}

func (r Range) Validate() error {
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return dErrors.New(dErrors.CodeValidation, "date range end is before its start")
	}
	return nil
}

func (r Range) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// UnauthorizedFilter scopes the unauthorized-access view. Zero values mean
// every organization and all time.
type UnauthorizedFilter struct {
	OrganizationID *id.OrganizationID
	Since          *time.Time
}

func (f UnauthorizedFilter) Matches(e *AccessEvent) bool {
	if e.Authorized {
		return false
	}
	if f.OrganizationID != nil && e.OrganizationID != *f.OrganizationID {
		return false
	}
	if f.Since != nil && e.OccurredAt.Before(*f.Since) {
		return false
	}
	return true
}
