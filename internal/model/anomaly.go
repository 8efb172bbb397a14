package model

// AnomalyType names one category of injected defect.
type AnomalyType string

const (
	AnomalyMissingField               AnomalyType = "MissingField"
	AnomalyInvalidValue               AnomalyType = "InvalidValue"
	AnomalyInvalidDateFormat          AnomalyType = "InvalidDateFormat"
	AnomalyDuplicateClaim             AnomalyType = "DuplicateClaim"
	AnomalyInvalidProcedureCode       AnomalyType = "InvalidProcedureCode"
	AnomalyInvalidModifierCombination AnomalyType = "InvalidModifierCombination"
	AnomalyAgeGenderMismatch          AnomalyType = "AgeGenderMismatch"
	AnomalyInvalidProvider            AnomalyType = "InvalidProvider"
	AnomalyInvalidPatientInfo         AnomalyType = "InvalidPatientInfo"
	AnomalyMissingDocumentation       AnomalyType = "MissingDocumentation"
)

// AllAnomalyTypes lists every anomaly type in canonical order. The injector
// tests types in this order, which fixes its random draw sequence.
var AllAnomalyTypes = []AnomalyType{
	AnomalyMissingField,
	AnomalyInvalidValue,
	AnomalyInvalidDateFormat,
	AnomalyDuplicateClaim,
	AnomalyInvalidProcedureCode,
	AnomalyInvalidModifierCombination,
	AnomalyAgeGenderMismatch,
	AnomalyInvalidProvider,
	AnomalyInvalidPatientInfo,
	AnomalyMissingDocumentation,
}

// AnomalyTypeByName returns the AnomalyType with the given name, or ok=false.
func AnomalyTypeByName(name string) (AnomalyType, bool) {
	for _, t := range AllAnomalyTypes {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// Anomaly records one corruption applied to a claim. Field, OriginalValue
// and NewValue are nil when the anomaly does not touch a field.
type Anomaly struct {
	Type          AnomalyType `json:"anomaly_type"`
	Description   string      `json:"description"`
	Field         *string     `json:"field"`
	OriginalValue *string     `json:"original_value"`
	NewValue      *string     `json:"new_value"`
}

// Record pairs a claim with the anomalies injected into it.
type Record struct {
	Claim     Claim     `json:"claim"`
	Anomalies []Anomaly `json:"anomalies"`
}
