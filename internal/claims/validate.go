package claims

import (
	"fmt"
	"regexp"

	"github.com/gyeh/zedigen/internal/model"
	"github.com/gyeh/zedigen/internal/normalize"
)

var claimIDPattern = regexp.MustCompile(`^CLM[0-9]{8}$`)

// ValidationError reports a generated claim that breaks one of the
// generation-time invariants.
type ValidationError struct {
	ClaimID string
	Rule    string
	Detail  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("claim %s: %s: %s", e.ClaimID, e.Rule, e.Detail)
}

// Validate checks the invariants GenerateClaim guarantees. It is meant for
// claims before anomaly injection; injected claims are expected to fail.
func Validate(c *model.Claim) error {
	fail := func(rule, format string, args ...any) error {
		return &ValidationError{ClaimID: c.ClaimID, Rule: rule, Detail: fmt.Sprintf(format, args...)}
	}

	if !claimIDPattern.MatchString(c.ClaimID) {
		return fail("claim_id", "%q does not match CLM + 8 digits", c.ClaimID)
	}
	if _, ok := normalize.ParseISODate(c.Patient.DateOfBirth); !ok {
		return fail("date_of_birth", "%q is not YYYY-MM-DD", c.Patient.DateOfBirth)
	}
	if n := len(c.ServiceLines); n < MinLines || n > MaxLines {
		return fail("service_lines", "%d lines, want %d..%d", n, MinLines, MaxLines)
	}

	var charge, payment, adjustment int64
	for i, sl := range c.ServiceLines {
		if sl.LineNumber != i+1 {
			return fail("line_number", "line %d numbered %d", i+1, sl.LineNumber)
		}
		if _, ok := normalize.ParseISODate(sl.ServiceDate); !ok {
			return fail("service_date", "line %d: %q is not YYYY-MM-DD", sl.LineNumber, sl.ServiceDate)
		}
		if sl.AdjustmentAmount != sl.ChargeAmount-sl.PaymentAmount {
			return fail("adjustment_amount", "line %d: %d != %d - %d",
				sl.LineNumber, sl.AdjustmentAmount, sl.ChargeAmount, sl.PaymentAmount)
		}
		if len(sl.Modifiers) > MaxModifiers {
			return fail("modifiers", "line %d has %d modifiers", sl.LineNumber, len(sl.Modifiers))
		}
		charge += sl.ChargeAmount
		payment += sl.PaymentAmount
		adjustment += sl.AdjustmentAmount
	}

	if c.TotalCharge != charge {
		return fail("total_charge", "%d != sum of lines %d", c.TotalCharge, charge)
	}
	if c.TotalPayment != payment {
		return fail("total_payment", "%d != sum of lines %d", c.TotalPayment, payment)
	}
	if c.TotalAdjustment != adjustment {
		return fail("total_adjustment", "%d != sum of lines %d", c.TotalAdjustment, adjustment)
	}
	if want := (c.TotalCharge - c.TotalPayment) / 2; c.PatientResponsibility != want {
		return fail("patient_responsibility", "%d, want %d", c.PatientResponsibility, want)
	}
	if want := model.StatusFor(c.TotalCharge, c.TotalPayment); c.Status != want {
		return fail("status", "%s, want %s", c.Status, want)
	}
	return nil
}
