// Package anomaly corrupts generated claims with realistic defects.
//
// For each claim the Injector draws once against the base rate. A claim that
// clears it gets one Bernoulli draw per type, in model.AllAnomalyTypes order,
// whether or not the type has a configured rate. The mutators themselves
// never draw, so a gated claim always consumes exactly 1+len(AllAnomalyTypes)
// values from the stream.
package anomaly

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gyeh/zedigen/internal/model"
	"github.com/gyeh/zedigen/internal/rng"
)

// Replacement values written by the mutators.
const (
	InvalidServiceDate   = "01/01/1970"
	InvalidProcedureCode = "INVALID_CODE"
	InvalidModifier      = "AAA"
	InvalidNPI           = "000"
	InvalidDateOfBirth   = "2010-13-40"
	PaymentOverage       = 1000
)

// SeenSet tracks claim ids already considered for duplicate detection.
type SeenSet map[string]struct{}

// NewSeenSet returns an empty SeenSet.
func NewSeenSet() SeenSet {
	return make(SeenSet)
}

// Contains reports whether id has been recorded.
func (s SeenSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Injector applies anomalies to claims. It owns its random stream and its
// SeenSet; it is not safe for concurrent use.
type Injector struct {
	cfg  Config
	src  *rng.Source
	seen SeenSet
	log  zerolog.Logger
}

// New returns an Injector. seen is retained for the Injector's lifetime; a
// nil seen starts empty.
func New(cfg Config, src *rng.Source, seen SeenSet, log zerolog.Logger) *Injector {
	if seen == nil {
		seen = NewSeenSet()
	}
	if cfg.TypeRates == nil {
		cfg.TypeRates = map[model.AnomalyType]float64{}
	}
	return &Injector{cfg: cfg, src: src, seen: seen, log: log}
}

// Seen returns the set of claim ids recorded by DuplicateClaim checks.
func (inj *Injector) Seen() SeenSet {
	return inj.seen
}

// Inject mutates claim in place and returns the anomalies applied. The
// returned slice is never nil.
func (inj *Injector) Inject(claim *model.Claim) []model.Anomaly {
	anomalies := []model.Anomaly{}

	if inj.src.Float64() >= inj.cfg.BaseRate {
		return anomalies
	}

	for _, t := range model.AllAnomalyTypes {
		if inj.src.Float64() >= inj.cfg.TypeRates[t] {
			continue
		}
		if a, ok := inj.apply(t, claim); ok {
			anomalies = append(anomalies, a)
		}
	}

	if inj.cfg.LogAnomalies {
		for _, a := range anomalies {
			ev := inj.log.Info().
				Str("claim_id", claim.ClaimID).
				Str("anomaly_type", string(a.Type))
			if a.Field != nil {
				ev = ev.Str("field", *a.Field)
			}
			if a.OriginalValue != nil {
				ev = ev.Str("original", *a.OriginalValue)
			}
			if a.NewValue != nil {
				ev = ev.Str("new", *a.NewValue)
			}
			ev.Msg(a.Description)
		}
	}
	return anomalies
}

// Apply runs a single mutator regardless of rates. ok is false when the
// mutator declines.
func (inj *Injector) Apply(t model.AnomalyType, claim *model.Claim) (model.Anomaly, bool) {
	return inj.apply(t, claim)
}

func (inj *Injector) apply(t model.AnomalyType, c *model.Claim) (model.Anomaly, bool) {
	switch t {
	case model.AnomalyMissingField:
		return missingField(c), true
	case model.AnomalyInvalidValue:
		return invalidValue(c), true
	case model.AnomalyInvalidDateFormat:
		return invalidDateFormat(c)
	case model.AnomalyDuplicateClaim:
		return inj.duplicateClaim(c)
	case model.AnomalyInvalidProcedureCode:
		return invalidProcedureCode(c)
	case model.AnomalyInvalidModifierCombination:
		return invalidModifierCombination(c)
	case model.AnomalyAgeGenderMismatch:
		return ageGenderMismatch(c), true
	case model.AnomalyInvalidProvider:
		return invalidProvider(c), true
	case model.AnomalyInvalidPatientInfo:
		return invalidPatientInfo(c), true
	case model.AnomalyMissingDocumentation:
		return model.Anomaly{
			Type:        model.AnomalyMissingDocumentation,
			Description: "Missing documentation for claim",
		}, true
	}
	return model.Anomaly{}, false
}

func fieldChange(t model.AnomalyType, desc, field, original, updated string) model.Anomaly {
	return model.Anomaly{
		Type:          t,
		Description:   desc,
		Field:         &field,
		OriginalValue: &original,
		NewValue:      &updated,
	}
}

func missingField(c *model.Claim) model.Anomaly {
	original := c.ClaimID
	c.ClaimID = ""
	return fieldChange(model.AnomalyMissingField, "Missing required claim_id", "claim_id", original, c.ClaimID)
}

func invalidValue(c *model.Claim) model.Anomaly {
	original := c.TotalPayment
	c.TotalPayment = c.TotalCharge + PaymentOverage
	return fieldChange(model.AnomalyInvalidValue, "Payment exceeds charge", "total_payment",
		fmt.Sprint(original), fmt.Sprint(c.TotalPayment))
}

func invalidDateFormat(c *model.Claim) (model.Anomaly, bool) {
	if len(c.ServiceLines) == 0 {
		return model.Anomaly{}, false
	}
	line := &c.ServiceLines[0]
	original := line.ServiceDate
	line.ServiceDate = InvalidServiceDate
	return fieldChange(model.AnomalyInvalidDateFormat, "Invalid service date format", "service_date",
		original, line.ServiceDate), true
}

// duplicateClaim declines for an id already seen, since such a claim is a
// natural duplicate; otherwise it records the id and flags the candidate.
func (inj *Injector) duplicateClaim(c *model.Claim) (model.Anomaly, bool) {
	if inj.seen.Contains(c.ClaimID) {
		return model.Anomaly{}, false
	}
	inj.seen[c.ClaimID] = struct{}{}

	field, original := "claim_id", c.ClaimID
	return model.Anomaly{
		Type:          model.AnomalyDuplicateClaim,
		Description:   "Duplicate claim ID",
		Field:         &field,
		OriginalValue: &original,
	}, true
}

func invalidProcedureCode(c *model.Claim) (model.Anomaly, bool) {
	if len(c.ServiceLines) == 0 {
		return model.Anomaly{}, false
	}
	line := &c.ServiceLines[0]
	original := line.ProcedureCode
	line.ProcedureCode = InvalidProcedureCode
	return fieldChange(model.AnomalyInvalidProcedureCode, "Invalid procedure code", "procedure_code",
		original, line.ProcedureCode), true
}

func invalidModifierCombination(c *model.Claim) (model.Anomaly, bool) {
	if len(c.ServiceLines) == 0 {
		return model.Anomaly{}, false
	}
	line := &c.ServiceLines[0]
	original := fmt.Sprintf("%q", line.Modifiers)
	line.Modifiers = []string{InvalidModifier, InvalidModifier}
	return fieldChange(model.AnomalyInvalidModifierCombination, "Invalid modifier combination", "modifiers",
		original, fmt.Sprintf("%q", line.Modifiers)), true
}

func ageGenderMismatch(c *model.Claim) model.Anomaly {
	original := c.Patient.Gender
	if original == "M" || original == "m" {
		c.Patient.Gender = "F"
	} else {
		c.Patient.Gender = "M"
	}
	return fieldChange(model.AnomalyAgeGenderMismatch, "Age/gender mismatch for procedure", "patient.gender",
		original, c.Patient.Gender)
}

func invalidProvider(c *model.Claim) model.Anomaly {
	original := c.BillingProvider.NPI
	c.BillingProvider.NPI = InvalidNPI
	return fieldChange(model.AnomalyInvalidProvider, "Invalid provider NPI", "billing_provider.npi",
		original, c.BillingProvider.NPI)
}

func invalidPatientInfo(c *model.Claim) model.Anomaly {
	original := c.Patient.DateOfBirth
	c.Patient.DateOfBirth = InvalidDateOfBirth
	return fieldChange(model.AnomalyInvalidPatientInfo, "Invalid patient date of birth", "patient.date_of_birth",
		original, c.Patient.DateOfBirth)
}
