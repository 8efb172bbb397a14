package x12

import (
	"time"

	"github.com/gyeh/zedigen/internal/model"
)

const (
	DefaultSender   = "SENDER001"
	DefaultReceiver = "RECEIVER01"

	PayerName = "PAYER NAME"
	PayerID   = "1234567890"
	PayerTrn  = "PAYER123"

	claimFilingIndicator = "11"
	payerClaimPrefix     = "PCN"
	adjustmentGroup      = "CO"
	adjustmentReason     = "45"
)

// ClaimStatusCode maps a claim status to CLP02.
func ClaimStatusCode(s model.ClaimStatus) string {
	if s == model.StatusDenied {
		return "4"
	}
	return "1"
}

// Build835 assembles the transaction set for one claim. Segment order is
// BPR, TRN, DTM, N1 (payer), N1 (payee), CLP, then SVC per service line
// with a CAS when the line carries an adjustment.
func Build835(c *model.Claim, now time.Time, ctrl string) *TransactionSet {
	ts := NewTransactionSet(ctrl)
	ts.Add(
		BPR{PaymentAmount: c.TotalPayment, CreditDebit: 'C', PaymentMethod: "ACH", PaymentDate: now},
		TRN{ReferenceID: c.ClaimID, OriginatorCompany: PayerTrn},
		DTM{Qualifier: "405", Date: now},
		N1{EntityID: "PR", Name: PayerName, IDQualifier: "PI", IDCode: PayerID},
		N1{EntityID: "PE", Name: c.BillingProvider.Name, IDQualifier: "XX", IDCode: c.BillingProvider.NPI},
		CLP{
			ClaimID:               c.ClaimID,
			StatusCode:            ClaimStatusCode(c.Status),
			ChargeAmount:          c.TotalCharge,
			PaidAmount:            c.TotalPayment,
			PatientResponsibility: c.PatientResponsibility,
			ClaimFilingIndicator:  claimFilingIndicator,
			PayerClaimNumber:      payerClaimPrefix + c.ClaimID,
		},
	)
	for _, l := range c.ServiceLines {
		var rev string
		if l.RevenueCode != nil {
			rev = *l.RevenueCode
		}
		ts.Add(SVC{
			ProcedureCode: l.ProcedureCode,
			ChargeAmount:  l.ChargeAmount,
			PaidAmount:    l.PaidAmount,
			RevenueCode:   rev,
			Units:         l.Units,
		})
		if l.AdjustmentAmount > 0 {
			ts.Add(CAS{
				GroupCode:  adjustmentGroup,
				ReasonCode: adjustmentReason,
				Amount:     l.AdjustmentAmount,
				Units:      l.Units,
			})
		}
	}
	return ts
}

// Encoder wraps claims into a single interchange with one functional group.
type Encoder struct {
	Sender   string
	Receiver string

	controls *ControlNumbers
	now      func() time.Time
}

// NewEncoder returns an Encoder with the default sender and receiver ids.
func NewEncoder(controls *ControlNumbers, now func() time.Time) *Encoder {
	if now == nil {
		now = time.Now
	}
	return &Encoder{
		Sender:   DefaultSender,
		Receiver: DefaultReceiver,
		controls: controls,
		now:      now,
	}
}

// Encode builds the interchange for claims. The envelope timestamp is taken
// once and reused for every transaction set.
func (e *Encoder) Encode(claims []model.Claim) *Interchange {
	at := e.now().UTC()
	ic := NewInterchange(e.Sender, e.Receiver, e.controls.Next(), at)
	g := NewFunctionalGroup(e.Sender, e.Receiver, e.controls.Next(), at)
	for i := range claims {
		g.AddTransactionSet(Build835(&claims[i], at, e.controls.Next()))
	}
	ic.AddFunctionalGroup(g)
	return ic
}
