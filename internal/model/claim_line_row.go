package model

import "strings"

// ClaimLineRow is the flattened Parquet representation of one service line.
// Claim-level fields repeat on every line of the same claim. Money fields
// stay in integer cents.
type ClaimLineRow struct {
	ClaimID               string `parquet:"claim_id"`
	Status                string `parquet:"status"`
	TotalCharge           int64  `parquet:"total_charge_cents"`
	TotalPayment          int64  `parquet:"total_payment_cents"`
	TotalAdjustment       int64  `parquet:"total_adjustment_cents"`
	PatientResponsibility int64  `parquet:"patient_responsibility_cents"`

	// Patient
	PatientID          string `parquet:"patient_id"`
	PatientFirstName   string `parquet:"patient_first_name"`
	PatientLastName    string `parquet:"patient_last_name"`
	PatientDateOfBirth string `parquet:"patient_date_of_birth"`
	PatientGender      string `parquet:"patient_gender"`
	PatientCity        string `parquet:"patient_city"`
	PatientState       string `parquet:"patient_state"`
	PatientZip         string `parquet:"patient_zip"`

	// Providers
	BillingNPI      string  `parquet:"billing_npi"`
	BillingName     string  `parquet:"billing_name"`
	BillingType     string  `parquet:"billing_provider_type"`
	BillingTaxonomy string  `parquet:"billing_taxonomy"`
	RenderingNPI    *string `parquet:"rendering_npi,optional"`

	// Service line (absent when the claim has no lines)
	LineNumber           *int32   `parquet:"line_number,optional"`
	ProcedureCode        *string  `parquet:"procedure_code,optional"`
	ProcedureDescription *string  `parquet:"procedure_description,optional"`
	ServiceDate          *string  `parquet:"service_date,optional"`
	ChargeAmount         *int64   `parquet:"charge_cents,optional"`
	PaymentAmount        *int64   `parquet:"payment_cents,optional"`
	AdjustmentAmount     *int64   `parquet:"adjustment_cents,optional"`
	Units                *float64 `parquet:"units,optional"`
	PlaceOfService       *string  `parquet:"place_of_service,optional"`
	RevenueCode          *string  `parquet:"revenue_code,optional"`
	Modifiers            []string `parquet:"modifiers,list"`

	// Anomaly types injected into the claim, comma separated
	AnomalyTypes *string `parquet:"anomaly_types,optional"`
}

// LineRows flattens a record into one row per service line. A claim with no
// lines still yields a single row carrying the claim-level fields.
func (r *Record) LineRows() []ClaimLineRow {
	c := &r.Claim
	base := ClaimLineRow{
		ClaimID:               c.ClaimID,
		Status:                string(c.Status),
		TotalCharge:           c.TotalCharge,
		TotalPayment:          c.TotalPayment,
		TotalAdjustment:       c.TotalAdjustment,
		PatientResponsibility: c.PatientResponsibility,

		PatientID:          c.Patient.ID,
		PatientFirstName:   c.Patient.FirstName,
		PatientLastName:    c.Patient.LastName,
		PatientDateOfBirth: c.Patient.DateOfBirth,
		PatientGender:      c.Patient.Gender,
		PatientCity:        c.Patient.Address.City,
		PatientState:       c.Patient.Address.State,
		PatientZip:         c.Patient.Address.ZipCode,

		BillingNPI:  c.BillingProvider.NPI,
		BillingName: c.BillingProvider.Name,
		BillingType: c.BillingProvider.ProviderType,
	}
	if len(c.BillingProvider.TaxonomyCodes) > 0 {
		base.BillingTaxonomy = c.BillingProvider.TaxonomyCodes[0]
	}
	if c.RenderingProvider != nil {
		npi := c.RenderingProvider.NPI
		base.RenderingNPI = &npi
	}
	if len(r.Anomalies) > 0 {
		names := make([]string, len(r.Anomalies))
		for i, a := range r.Anomalies {
			names[i] = string(a.Type)
		}
		joined := strings.Join(names, ",")
		base.AnomalyTypes = &joined
	}

	if len(c.ServiceLines) == 0 {
		return []ClaimLineRow{base}
	}

	rows := make([]ClaimLineRow, len(c.ServiceLines))
	for i := range c.ServiceLines {
		sl := c.ServiceLines[i]
		row := base
		lineNumber := int32(sl.LineNumber)
		row.LineNumber = &lineNumber
		row.ProcedureCode = &sl.ProcedureCode
		row.ProcedureDescription = &sl.ProcedureDescription
		row.ServiceDate = &sl.ServiceDate
		row.ChargeAmount = &sl.ChargeAmount
		row.PaymentAmount = &sl.PaymentAmount
		row.AdjustmentAmount = &sl.AdjustmentAmount
		row.Units = &sl.Units
		row.PlaceOfService = &sl.PlaceOfService
		row.RevenueCode = sl.RevenueCode
		row.Modifiers = sl.Modifiers
		rows[i] = row
	}
	return rows
}
