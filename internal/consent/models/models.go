// Package models defines the consent aggregate and the pure evaluation of
// consent validity at an instant.
package models

import (
	"sort"
	"time"
	"unicode/utf8"

	id "ledger/pkg/domain"
	dErrors "ledger/pkg/domain-errors"
)

// Status is the stored lifecycle marker. Validity is never read from it
// alone: ExpiresAt and RevokedAt decide whether a consent holds at an instant.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
	StatusExpired Status = "expired"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusRevoked, StatusExpired:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid consent status: "+s)
	}
	return st, nil
}

const (
	MaxPurposeDescriptionLength = 500
	MaxRevokeReasonLength       = 500
	MaxDurationDays             = 3650
)

// Consent records one subject's permission for one organization to process
// a set of data types for one purpose.
//
// Invariants:
//   - DataTypes is non-empty and free of duplicates
//   - Status moves only active -> revoked or active -> expired
//   - RevokedAt is set iff Status is revoked
//   - GrantedAt, UserID, OrganizationID, DataTypes, and Purpose never change
type Consent struct {
	ID                 id.ConsentID
	UserID             id.UserID
	OrganizationID     id.OrganizationID
	DataTypes          []id.DataType
	Purpose            id.Purpose
	PurposeDescription string
	Status             Status
	GrantedAt          time.Time
	ExpiresAt          *time.Time
	RevokedAt          *time.Time
	RevokeReason       string
}

// NewConsent builds an active consent. durationDays, when non-nil, must be
// in [1, MaxDurationDays]; nil means the consent never expires.
func NewConsent(
	consentID id.ConsentID,
	userID id.UserID,
	orgID id.OrganizationID,
	dataTypes []id.DataType,
	purpose id.Purpose,
	description string,
	durationDays *int,
	now time.Time,
) (*Consent, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user ID is required")
	}
	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization ID is required")
	}
	if len(dataTypes) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "at least one data type is required")
	}
	for _, dt := range dataTypes {
		if !dt.IsValid() {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid data type: "+string(dt))
		}
	}
	if !purpose.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid purpose: "+string(purpose))
	}
	if utf8.RuneCountInString(description) > MaxPurposeDescriptionLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "purpose description must be 500 characters or less")
	}

	c := &Consent{
		ID:                 consentID,
		UserID:             userID,
		OrganizationID:     orgID,
		DataTypes:          id.DedupeDataTypes(dataTypes),
		Purpose:            purpose,
		PurposeDescription: description,
		Status:             StatusActive,
		GrantedAt:          now,
	}
	if durationDays != nil {
		days := *durationDays
		if days < 1 || days > MaxDurationDays {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "duration must be between 1 and 3650 days")
		}
		expires := now.AddDate(0, 0, days)
		c.ExpiresAt = &expires
	}
	return c, nil
}

// Covers reports whether dt is one of the consented data types.
func (c *Consent) Covers(dt id.DataType) bool {
	for _, have := range c.DataTypes {
		if have == dt {
			return true
		}
	}
	return false
}

// IsExpiredAt reports whether the expiry instant has been reached at t.
func (c *Consent) IsExpiredAt(t time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(t)
}

// IsRevokedAt reports whether the consent had been withdrawn by t.
func (c *Consent) IsRevokedAt(t time.Time) bool {
	if c.RevokedAt != nil {
		return !c.RevokedAt.After(t)
	}
	return c.Status == StatusRevoked
}

// IsValidAt computes validity at t from timestamps, so a consent whose expiry
// passed before the sweep ran is already invalid, and historical instants
// replay correctly.
func (c *Consent) IsValidAt(t time.Time) bool {
	if c.GrantedAt.After(t) {
		return false
	}
	return !c.IsRevokedAt(t) && !c.IsExpiredAt(t)
}

// EffectiveStatus is the status a reader should see at t.
func (c *Consent) EffectiveStatus(t time.Time) Status {
	if c.Status == StatusActive && c.IsExpiredAt(t) {
		return StatusExpired
	}
	return c.Status
}

// CanRevoke checks the consent is still revocable at now.
func (c *Consent) CanRevoke(now time.Time) error {
	switch {
	case c.Status == StatusRevoked:
		return dErrors.New(dErrors.CodeInvariantViolation, "consent is already revoked")
	case c.Status == StatusExpired || c.IsExpiredAt(now):
		return dErrors.New(dErrors.CodeInvariantViolation, "consent has already expired")
	}
	return nil
}

func (c *Consent) ApplyRevocation(now time.Time, reason string) {
	c.Status = StatusRevoked
	c.RevokedAt = &now
	c.RevokeReason = reason
}

// CanExpire reports whether a sweep at asOf should mark the consent expired.
func (c *Consent) CanExpire(asOf time.Time) bool {
	return c.Status == StatusActive && c.IsExpiredAt(asOf)
}

func (c *Consent) ApplyExpiry() {
	c.Status = StatusExpired
}

// Clone returns a deep copy.
func (c *Consent) Clone() *Consent {
	cp := *c
	cp.DataTypes = append([]id.DataType(nil), c.DataTypes...)
	if c.ExpiresAt != nil {
		t := *c.ExpiresAt
		cp.ExpiresAt = &t
	}
	if c.RevokedAt != nil {
		t := *c.RevokedAt
		cp.RevokedAt = &t
	}
	return &cp
}

// Reason explains a negative verdict.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonNoConsent          Reason = "no consent found"
	ReasonNotActive          Reason = "consent expired or revoked"
	ReasonDataTypeNotCovered Reason = "data type not included in consent"
)

// Verdict is the outcome of checking consent for one data type.
type Verdict struct {
	Valid     bool
	Reason    Reason
	ConsentID *id.ConsentID
}

// Evaluate decides whether any of consents authorizes dt at asOf. When
// several authorize it, the most recently granted one is reported.
func Evaluate(consents []*Consent, dt id.DataType, asOf time.Time) Verdict {
	if len(consents) == 0 {
		return Verdict{Reason: ReasonNoConsent}
	}
	ordered := append([]*Consent(nil), consents...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].GrantedAt.After(ordered[j].GrantedAt)
	})

	anyValid := false
	for _, c := range ordered {
		if !c.IsValidAt(asOf) {
			continue
		}
		anyValid = true
		if c.Covers(dt) {
			consentID := c.ID
			return Verdict{Valid: true, ConsentID: &consentID}
		}
	}
	if anyValid {
		return Verdict{Reason: ReasonDataTypeNotCovered}
	}
	return Verdict{Reason: ReasonNotActive}
}

// ValidPurposes returns the distinct purposes of consents authorizing dt at
// asOf, in order of first grant.
func ValidPurposes(consents []*Consent, dt id.DataType, asOf time.Time) []id.Purpose {
	ordered := append([]*Consent(nil), consents...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].GrantedAt.Before(ordered[j].GrantedAt)
	})
	seen := make(map[id.Purpose]struct{})
	var out []id.Purpose
	for _, c := range ordered {
		if !c.IsValidAt(asOf) || !c.Covers(dt) {
			continue
		}
		if _, ok := seen[c.Purpose]; ok {
			continue
		}
		seen[c.Purpose] = struct{}{}
		out = append(out, c.Purpose)
	}
	return out
}

// ListFilter narrows consent listings. Status, when set, is compared against
// EffectiveStatus at AsOf.
type ListFilter struct {
	Status *Status
	AsOf   time.Time
}

func (f ListFilter) Matches(c *Consent) bool {
	return f.Status == nil || c.EffectiveStatus(f.AsOf) == *f.Status
}
