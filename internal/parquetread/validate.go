package parquetread

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/zedigen/internal/model"
)

// RequiredColumns must be present for a file to be read as claim lines.
var RequiredColumns = []string{"claim_id", "status", "total_charge_cents", "billing_npi"}

// ValidateSchema checks that the Parquet schema carries the claim columns.
func ValidateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !columns[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Summary is an aggregate over claim-line rows.
type Summary struct {
	Rows            int
	Claims          int
	AnomalousClaims int
	AnomalyTypes    map[string]int
	PlacesOfService map[string]int // line rows per code
}

// Summarize counts distinct claims and anomaly types. Anomaly types repeat on
// every line of a claim, so each claim is counted once; rows with an empty
// claim id collapse into one claim.
func Summarize(rows []model.ClaimLineRow) Summary {
	s := Summary{
		Rows:            len(rows),
		AnomalyTypes:    make(map[string]int),
		PlacesOfService: make(map[string]int),
	}
	seen := make(map[string]bool)
	for _, r := range rows {
		if r.PlaceOfService != nil {
			s.PlacesOfService[*r.PlaceOfService]++
		}
		if seen[r.ClaimID] {
			continue
		}
		seen[r.ClaimID] = true
		s.Claims++
		if r.AnomalyTypes == nil || *r.AnomalyTypes == "" {
			continue
		}
		s.AnomalousClaims++
		for _, t := range strings.Split(*r.AnomalyTypes, ",") {
			s.AnomalyTypes[t]++
		}
	}
	return s
}
