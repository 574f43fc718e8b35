package domain

import dErrors "ledger/pkg/domain-errors"

// DataType is a category of personal data covered by consent.
type DataType string

const (
	DataTypePersonalInfo DataType = "personal_info"
	DataTypeFinancial    DataType = "financial"
	DataTypeHealth       DataType = "health"
	DataTypeBiometric    DataType = "biometric"
	DataTypeLocation     DataType = "location"
	DataTypeContact      DataType = "contact"
	DataTypeEmployment   DataType = "employment"
	DataTypeEducation    DataType = "education"
)

// AllDataTypes lists every supported category in catalog order.
var AllDataTypes = []DataType{
	DataTypePersonalInfo,
	DataTypeFinancial,
	DataTypeHealth,
	DataTypeBiometric,
	DataTypeLocation,
	DataTypeContact,
	DataTypeEmployment,
	DataTypeEducation,
}

var validDataTypes = func() map[DataType]bool {
	m := make(map[DataType]bool, len(AllDataTypes))
	for _, dt := range AllDataTypes {
		m[dt] = true
	}
	return m
}()

func ParseDataType(s string) (DataType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "data type cannot be empty")
	}
	dt := DataType(s)
	if !dt.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid data type: "+s)
	}
	return dt, nil
}

// ParseDataTypes parses, validates, and deduplicates a list of data types,
// preserving first-seen order.
func ParseDataTypes(values []string) ([]DataType, error) {
	out := make([]DataType, 0, len(values))
	for _, v := range values {
		dt, err := ParseDataType(v)
		if err != nil {
			return nil, err
		}
		out = append(out, dt)
	}
	return DedupeDataTypes(out), nil
}

// DedupeDataTypes removes repeated entries, preserving order.
func DedupeDataTypes(values []DataType) []DataType {
	if len(values) == 0 {
		return values
	}
	seen := make(map[DataType]struct{}, len(values))
	result := make([]DataType, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

func (d DataType) IsValid() bool {
	return validDataTypes[d]
}

func (d DataType) String() string {
	return string(d)
}
