package model

// ClaimStatus is the adjudication outcome of a claim.
type ClaimStatus string

const (
	StatusPaid    ClaimStatus = "Paid"
	StatusDenied  ClaimStatus = "Denied"
	StatusPartial ClaimStatus = "Partial"
	StatusPending ClaimStatus = "Pending"
)

// StatusFor derives the status from claim totals: Denied when nothing was
// paid, Partial when less than the charge was paid, Paid otherwise.
func StatusFor(totalCharge, totalPayment int64) ClaimStatus {
	switch {
	case totalPayment == 0:
		return StatusDenied
	case totalPayment < totalCharge:
		return StatusPartial
	default:
		return StatusPaid
	}
}

// ServiceLine is one billed procedure. Amounts are integer cents.
type ServiceLine struct {
	LineNumber           int      `json:"line_number"`
	ProcedureCode        string   `json:"procedure_code"`
	ProcedureDescription string   `json:"procedure_description"`
	ServiceDate          string   `json:"service_date"`
	ChargeAmount         int64    `json:"charge_amount"`
	PaymentAmount        int64    `json:"payment_amount"`
	PaidAmount           int64    `json:"paid_amount"`
	AdjustmentAmount     int64    `json:"adjustment_amount"`
	Units                float64  `json:"units"`
	PlaceOfService       string   `json:"place_of_service"`
	RevenueCode          *string  `json:"revenue_code"`
	Modifiers            []string `json:"modifiers"`
}

// Claim is a synthetic healthcare claim. Totals are integer cents.
type Claim struct {
	ClaimID               string        `json:"claim_id"`
	Patient               Person        `json:"patient"`
	BillingProvider       Provider      `json:"billing_provider"`
	RenderingProvider     *Provider     `json:"rendering_provider"`
	ServiceLines          []ServiceLine `json:"service_lines"`
	TotalCharge           int64         `json:"total_charge"`
	TotalPayment          int64         `json:"total_payment"`
	TotalAdjustment       int64         `json:"total_adjustment"`
	PatientResponsibility int64         `json:"patient_responsibility"`
	Status                ClaimStatus   `json:"status"`
}
