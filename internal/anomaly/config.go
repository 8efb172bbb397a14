package anomaly

import (
	"fmt"

	"github.com/gyeh/zedigen/internal/model"
)

// Config controls how often the injector corrupts claims.
type Config struct {
	// BaseRate is the probability that a claim enters injection at all.
	BaseRate float64
	// TypeRates is the per-type probability applied to claims that clear
	// BaseRate. Types absent from the map never fire.
	TypeRates map[model.AnomalyType]float64
	// LogAnomalies sends every emitted anomaly to the logger.
	LogAnomalies bool
}

// DefaultTypeRates returns the default per-type probabilities.
func DefaultTypeRates() map[model.AnomalyType]float64 {
	return map[model.AnomalyType]float64{
		model.AnomalyMissingField:               0.3,
		model.AnomalyInvalidValue:               0.2,
		model.AnomalyInvalidDateFormat:          0.1,
		model.AnomalyDuplicateClaim:             0.05,
		model.AnomalyInvalidProcedureCode:       0.15,
		model.AnomalyInvalidModifierCombination: 0.1,
		model.AnomalyAgeGenderMismatch:          0.05,
		model.AnomalyInvalidProvider:            0.1,
		model.AnomalyInvalidPatientInfo:         0.2,
		model.AnomalyMissingDocumentation:       0.1,
	}
}

// DefaultConfig returns a 1% base rate with the default type rates and
// logging enabled.
func DefaultConfig() Config {
	return Config{
		BaseRate:     0.01,
		TypeRates:    DefaultTypeRates(),
		LogAnomalies: true,
	}
}

// ParseTypeRates converts a name-keyed rate map into a typed one. Unknown
// names and probabilities outside [0,1] are rejected.
func ParseTypeRates(in map[string]float64) (map[model.AnomalyType]float64, error) {
	out := make(map[model.AnomalyType]float64, len(in))
	for name, rate := range in {
		t, ok := model.AnomalyTypeByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown anomaly type %q", name)
		}
		if rate < 0 || rate > 1 {
			return nil, fmt.Errorf("anomaly type %s: rate %v outside [0,1]", name, rate)
		}
		out[t] = rate
	}
	return out, nil
}
