package rules

import (
	"context"
	"fmt"
	"time"

	id "ledger/pkg/domain"
)

// ConsentRequired flags every unauthorized access in the window.
func ConsentRequired(_ context.Context, in Input) ([]Finding, error) {
	var out []Finding
	for _, e := range in.Events {
		if e.Authorized {
			continue
		}
		eid := e.ID
		out = append(out, Finding{
			AccessEventID: &eid,
			Description:   fmt.Sprintf("Unauthorized %s of %s data without valid consent", e.Action, e.DataType),
		})
	}
	return out, nil
}

// PurposeOracle answers which purposes a subject's consents allow.
type PurposeOracle interface {
	ValidPurposes(ctx context.Context, userID id.UserID, orgID id.OrganizationID, dt id.DataType, asOf time.Time) ([]id.Purpose, error)
}

// PurposeLimitation flags authorized accesses whose purpose no consent valid
// at the time of access allows. Unauthorized accesses are left to
// ConsentRequired.
func PurposeLimitation(oracle PurposeOracle) Check {
	return func(ctx context.Context, in Input) ([]Finding, error) {
		var out []Finding
		for _, e := range in.Events {
			if !e.Authorized {
				continue
			}
			purposes, err := oracle.ValidPurposes(ctx, e.UserID, e.OrganizationID, e.DataType, e.OccurredAt)
			if err != nil {
				return nil, fmt.Errorf("purpose lookup for access %s: %w", e.ID, err)
			}
			if containsPurpose(purposes, e.Purpose) {
				continue
			}
			eid := e.ID
			out = append(out, Finding{
				AccessEventID: &eid,
				Description:   fmt.Sprintf("Access to %s data for %s, which no consent allows", e.DataType, e.Purpose),
			})
		}
		return out, nil
	}
}

func containsPurpose(purposes []id.Purpose, p id.Purpose) bool {
	for _, have := range purposes {
		if have == p {
			return true
		}
	}
	return false
}
