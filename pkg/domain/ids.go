package domain

import (
	"github.com/google/uuid"

	dErrors "ledger/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so the compiler rejects passing an
// organization ID where a consent ID is expected.
type (
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	ConsentID      uuid.UUID
	AccessEventID  uuid.UUID
	RuleID         uuid.UUID
	ViolationID    uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id OrganizationID) String() string { return uuid.UUID(id).String() }
func (id ConsentID) String() string      { return uuid.UUID(id).String() }
func (id AccessEventID) String() string  { return uuid.UUID(id).String() }
func (id RuleID) String() string         { return uuid.UUID(id).String() }
func (id ViolationID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id OrganizationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ConsentID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id AccessEventID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id RuleID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ViolationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// New* constructors mint random identifiers.
func NewUserID() UserID                 { return UserID(uuid.New()) }
func NewOrganizationID() OrganizationID { return OrganizationID(uuid.New()) }
func NewConsentID() ConsentID           { return ConsentID(uuid.New()) }
func NewAccessEventID() AccessEventID   { return AccessEventID(uuid.New()) }
func NewRuleID() RuleID                 { return RuleID(uuid.New()) }
func NewViolationID() ViolationID       { return ViolationID(uuid.New()) }

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

func ParseOrganizationID(s string) (OrganizationID, error) {
	u, err := parseUUID(s, "organization ID")
	return OrganizationID(u), err
}

func ParseConsentID(s string) (ConsentID, error) {
	u, err := parseUUID(s, "consent ID")
	return ConsentID(u), err
}

func ParseAccessEventID(s string) (AccessEventID, error) {
	u, err := parseUUID(s, "access event ID")
	return AccessEventID(u), err
}

func ParseRuleID(s string) (RuleID, error) {
	u, err := parseUUID(s, "rule ID")
	return RuleID(u), err
}

func ParseViolationID(s string) (ViolationID, error) {
	u, err := parseUUID(s, "violation ID")
	return ViolationID(u), err
}

// parseUUID rejects empty, malformed, and nil UUIDs.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" cannot be nil")
	}
	return u, nil
}
