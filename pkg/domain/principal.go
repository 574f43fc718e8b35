package domain

import dErrors "ledger/pkg/domain-errors"

// Role is the kind of account a principal acts as.
type Role string

const (
	RoleCitizen      Role = "citizen"
	RoleOrganization Role = "organization"
	RoleAdmin        Role = "admin"
)

func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleCitizen, RoleOrganization, RoleAdmin:
		return r, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "invalid role: "+s)
	}
}

func (r Role) String() string {
	return string(r)
}

// Principal is an authenticated actor. Authentication happens upstream; the
// ledger only trusts the ID and role it is handed.
type Principal struct {
	ID   UserID
	Role Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
