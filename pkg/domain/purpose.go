package domain

import dErrors "ledger/pkg/domain-errors"

// Purpose identifies why an organization processes a subject's data.
// Invariant: the value is one of the NDPR lawful-basis purposes below.
//
// Usage: construct via ParsePurpose at trust boundaries; direct casting
// bypasses validation.
type Purpose string

const (
	PurposeAccountOpening        Purpose = "account_opening"
	PurposeKYCVerification       Purpose = "kyc_verification"
	PurposeTransactionProcessing Purpose = "transaction_processing"
	PurposeServiceDelivery       Purpose = "service_delivery"
	PurposeMarketing             Purpose = "marketing"
	PurposeAnalytics             Purpose = "analytics"
	PurposeLegalObligation       Purpose = "legal_obligation"
	PurposeContractFulfillment   Purpose = "contract_fulfillment"
)

var validPurposes = map[Purpose]bool{
	PurposeAccountOpening:        true,
	PurposeKYCVerification:       true,
	PurposeTransactionProcessing: true,
	PurposeServiceDelivery:       true,
	PurposeMarketing:             true,
	PurposeAnalytics:             true,
	PurposeLegalObligation:       true,
	PurposeContractFulfillment:   true,
}

// ParsePurpose constructs a Purpose from external input.
func ParsePurpose(s string) (Purpose, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "purpose cannot be empty")
	}
	p := Purpose(s)
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid purpose: "+s)
	}
	return p, nil
}

// IsValid reports whether p is a supported purpose.
func (p Purpose) IsValid() bool {
	return validPurposes[p]
}

func (p Purpose) String() string {
	return string(p)
}
