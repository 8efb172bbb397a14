// Package claims assembles synthetic claims from a patient and providers.
//
// Draw order per GenerateClaim: claim id, line count, then for each line:
// procedure index, payment factor, modifier count, one draw per modifier.
package claims

import (
	"fmt"
	"time"

	"github.com/gyeh/zedigen/internal/model"
	"github.com/gyeh/zedigen/internal/normalize"
	"github.com/gyeh/zedigen/internal/refdata"
	"github.com/gyeh/zedigen/internal/rng"
)

const (
	minClaimNumber = 10_000_000
	maxClaimNumber = 99_999_999

	MinLines     = 1
	MaxLines     = 5
	MaxModifiers = 2

	// DefaultPlaceOfService is the office place-of-service code.
	DefaultPlaceOfService = "11"
)

// Generator builds claims. It is not safe for concurrent use.
type Generator struct {
	src        *rng.Source
	procedures []refdata.ProcedureCode
	modifiers  []string
	now        func() time.Time
}

// New returns a Generator drawing from src. An empty procedure table is
// replaced by refdata.FallbackProcedure. now supplies the service date; nil
// means time.Now.
func New(src *rng.Source, ref *refdata.Set, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	procedures := ref.ProcedureCodes
	if len(procedures) == 0 {
		procedures = []refdata.ProcedureCode{refdata.FallbackProcedure}
	}
	return &Generator{
		src:        src,
		procedures: procedures,
		modifiers:  ref.Modifiers,
		now:        now,
	}
}

// GenerateClaim assembles a claim for patient billed by billing, optionally
// rendered by rendering.
func (g *Generator) GenerateClaim(patient model.Person, billing model.Provider, rendering *model.Provider) model.Claim {
	claimID := fmt.Sprintf("CLM%08d", g.src.IntBetween(minClaimNumber, maxClaimNumber))
	numLines := int(g.src.IntBetween(MinLines, MaxLines))
	serviceDate := g.now().Format(normalize.ISODate)

	lines := make([]model.ServiceLine, 0, numLines)
	var totalCharge, totalPayment, totalAdjustment int64

	for i := 0; i < numLines; i++ {
		proc := g.procedures[g.src.IntN(len(g.procedures))]

		charge := proc.TypicalCharge
		factor := 0.5 + g.src.Float64()*0.5
		payment := int64(float64(charge) * factor)
		adjustment := charge - payment

		totalCharge += charge
		totalPayment += payment
		totalAdjustment += adjustment

		lines = append(lines, model.ServiceLine{
			LineNumber:           i + 1,
			ProcedureCode:        proc.Code,
			ProcedureDescription: proc.Description,
			ServiceDate:          serviceDate,
			ChargeAmount:         charge,
			PaymentAmount:        payment,
			PaidAmount:           payment,
			AdjustmentAmount:     adjustment,
			Units:                proc.TypicalUnits,
			PlaceOfService:       DefaultPlaceOfService,
			Modifiers:            g.pickModifiers(),
		})
	}

	return model.Claim{
		ClaimID:               claimID,
		Patient:               patient,
		BillingProvider:       billing,
		RenderingProvider:     rendering,
		ServiceLines:          lines,
		TotalCharge:           totalCharge,
		TotalPayment:          totalPayment,
		TotalAdjustment:       totalAdjustment,
		PatientResponsibility: (totalCharge - totalPayment) / 2,
		Status:                model.StatusFor(totalCharge, totalPayment),
	}
}

// pickModifiers draws 0..MaxModifiers distinct modifiers with a partial
// Fisher-Yates shuffle over a copy of the list.
func (g *Generator) pickModifiers() []string {
	k := g.src.IntN(MaxModifiers + 1)
	if k > len(g.modifiers) {
		k = len(g.modifiers)
	}
	out := make([]string, 0, k)
	if k == 0 {
		return out
	}
	pool := append([]string(nil), g.modifiers...)
	for i := 0; i < k; i++ {
		j := i + g.src.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		out = append(out, pool[i])
	}
	return out
}
