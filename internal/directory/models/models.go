// Package models holds the account directory the ledger resolves subjects
// and organizations against. Account management itself lives elsewhere.
package models

import (
	"time"

	id "ledger/pkg/domain"
	dErrors "ledger/pkg/domain-errors"
)

// User is any account: a data subject (citizen), an organization operator,
// or an administrator.
type User struct {
	ID        id.UserID
	Email     string
	FullName  string
	Role      id.Role
	CreatedAt time.Time
}

// Organization is a data controller holding consents.
//
// Invariants:
//   - OwnerID names the account allowed to act for the organization
//   - ComplianceScore stays within [0, 100]; only scoring writes it
type Organization struct {
	ID              id.OrganizationID
	OwnerID         id.UserID
	Name            string
	ComplianceScore float64
	ScoreUpdatedAt  *time.Time
	CreatedAt       time.Time
}

// InitialComplianceScore is the score of an organization never scanned.
const InitialComplianceScore = 100.0

func NewOrganization(orgID id.OrganizationID, ownerID id.UserID, name string, now time.Time) (*Organization, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization name cannot be empty")
	}
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization owner is required")
	}
	return &Organization{
		ID:              orgID,
		OwnerID:         ownerID,
		Name:            name,
		ComplianceScore: InitialComplianceScore,
		CreatedAt:       now,
	}, nil
}

// IsActedForBy reports whether p may act on the organization's behalf.
func (o *Organization) IsActedForBy(p id.Principal) bool {
	return p.IsAdmin() || p.ID == o.OwnerID
}
