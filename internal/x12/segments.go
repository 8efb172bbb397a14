// Package x12 encodes claim batches as X12 835-style interchanges.
//
// The segment vocabulary is closed: every segment type in this package
// implements Segment, and the unexported marker keeps other packages from
// adding variants. Elements are joined with ElementSeparator and each
// segment ends with SegmentTerminator followed by a newline.
package x12

import (
	"fmt"
	"strings"
	"time"

	"github.com/gyeh/zedigen/internal/normalize"
)

const (
	ElementSeparator  = "*"
	SegmentTerminator = "~"
	ComponentSep      = ":"

	implementationRef = "005010X221A1"
)

// Segment is one field-delimited line of an interchange.
type Segment interface {
	// ID is the segment identifier, e.g. "CLP".
	ID() string
	// Elements are the ordered data elements after the identifier.
	Elements() []string
	segment()
}

// Render formats s as a single terminated segment without a newline.
func Render(s Segment) string {
	var b strings.Builder
	b.WriteString(s.ID())
	for _, e := range s.Elements() {
		b.WriteString(ElementSeparator)
		b.WriteString(e)
	}
	b.WriteString(SegmentTerminator)
	return b.String()
}

// ISA is the interchange control header.
type ISA struct {
	SenderID       string
	ReceiverID     string
	Date           time.Time
	ControlNumber  string
	UsageIndicator byte // 'P' production, 'T' test
}

func (ISA) ID() string { return "ISA" }
func (s ISA) Elements() []string {
	return []string{
		"00", "          ", "00", "          ",
		"ZZ", fmt.Sprintf("%-15s", s.SenderID),
		"ZZ", fmt.Sprintf("%-15s", s.ReceiverID),
		s.Date.Format("060102"), s.Date.Format("1504"),
		"^", "00501", s.ControlNumber, "0", string(s.UsageIndicator),
		"",
	}
}
func (ISA) segment() {}

// GS is the functional group header.
type GS struct {
	SenderID      string
	ReceiverID    string
	Date          time.Time
	ControlNumber string
}

func (GS) ID() string { return "GS" }
func (s GS) Elements() []string {
	return []string{
		"HP", s.SenderID, s.ReceiverID,
		s.Date.Format(normalize.X12Date), s.Date.Format("1504"),
		s.ControlNumber, "X", implementationRef,
	}
}
func (GS) segment() {}

// ST is the transaction set header.
type ST struct {
	ControlNumber string
}

func (ST) ID() string { return "ST" }
func (s ST) Elements() []string {
	return []string{"835", s.ControlNumber, implementationRef}
}
func (ST) segment() {}

// BPR is the financial information (payment summary) segment.
type BPR struct {
	PaymentAmount int64 // cents
	CreditDebit   byte  // 'C' credit, 'D' debit
	PaymentMethod string
	PaymentDate   time.Time
}

func (BPR) ID() string { return "BPR" }
func (s BPR) Elements() []string {
	return []string{
		"C", normalize.CentsToDollars(s.PaymentAmount), string(s.CreditDebit), s.PaymentMethod,
		"CCP", "01", "999999999", "DA", "999999999", "9999999999", "",
		"01", "999999999", "DA", "999999999",
		s.PaymentDate.Format(normalize.X12Date),
	}
}
func (BPR) segment() {}

// TRN is the reassociation trace number.
type TRN struct {
	ReferenceID       string
	OriginatorCompany string
}

func (TRN) ID() string { return "TRN" }
func (s TRN) Elements() []string {
	return []string{"1", s.ReferenceID, s.OriginatorCompany}
}
func (TRN) segment() {}

// DTM is a date/time reference.
type DTM struct {
	Qualifier string // 405 = production date
	Date      time.Time
}

func (DTM) ID() string { return "DTM" }
func (s DTM) Elements() []string {
	return []string{s.Qualifier, s.Date.Format(normalize.X12Date)}
}
func (DTM) segment() {}

// N1 identifies a party (payer or payee).
type N1 struct {
	EntityID    string // PR payer, PE payee
	Name        string
	IDQualifier string
	IDCode      string
}

func (N1) ID() string { return "N1" }
func (s N1) Elements() []string {
	return []string{s.EntityID, s.Name, s.IDQualifier, s.IDCode}
}
func (N1) segment() {}

// CLP is the claim payment information segment.
type CLP struct {
	ClaimID               string
	StatusCode            string
	ChargeAmount          int64 // cents
	PaidAmount            int64 // cents
	PatientResponsibility int64 // cents
	ClaimFilingIndicator  string
	PayerClaimNumber      string
}

func (CLP) ID() string { return "CLP" }
func (s CLP) Elements() []string {
	return []string{
		s.ClaimID, s.StatusCode,
		normalize.CentsToDollars(s.ChargeAmount),
		normalize.CentsToDollars(s.PaidAmount),
		normalize.CentsToDollars(s.PatientResponsibility),
		s.ClaimFilingIndicator, s.PayerClaimNumber,
		"11", "1",
	}
}
func (CLP) segment() {}

// SVC is the service payment information segment.
type SVC struct {
	ProcedureCode string
	ChargeAmount  int64 // cents
	PaidAmount    int64 // cents
	RevenueCode   string
	Units         float64
}

func (SVC) ID() string { return "SVC" }
func (s SVC) Elements() []string {
	return []string{
		"HC" + ComponentSep + s.ProcedureCode,
		normalize.CentsToDollars(s.ChargeAmount),
		normalize.CentsToDollars(s.PaidAmount),
		s.RevenueCode,
		normalize.Units(s.Units),
	}
}
func (SVC) segment() {}

// CAS is a claim adjustment.
type CAS struct {
	GroupCode  string // CO contractual obligation
	ReasonCode string
	Amount     int64 // cents
	Units      float64
}

func (CAS) ID() string { return "CAS" }
func (s CAS) Elements() []string {
	return []string{
		s.GroupCode, s.ReasonCode,
		normalize.CentsToDollars(s.Amount),
		fmt.Sprintf("%.0f", s.Units),
	}
}
func (CAS) segment() {}

// SE is the transaction set trailer. SegmentCount includes ST and SE.
type SE struct {
	SegmentCount  int
	ControlNumber string
}

func (SE) ID() string { return "SE" }
func (s SE) Elements() []string {
	return []string{fmt.Sprint(s.SegmentCount), s.ControlNumber}
}
func (SE) segment() {}

// GE is the functional group trailer.
type GE struct {
	TransactionSets int
	ControlNumber   string
}

func (GE) ID() string { return "GE" }
func (s GE) Elements() []string {
	return []string{fmt.Sprint(s.TransactionSets), s.ControlNumber}
}
func (GE) segment() {}

// IEA is the interchange control trailer.
type IEA struct {
	FunctionalGroups int
	ControlNumber    string
}

func (IEA) ID() string { return "IEA" }
func (s IEA) Elements() []string {
	return []string{fmt.Sprint(s.FunctionalGroups), s.ControlNumber}
}
func (IEA) segment() {}
