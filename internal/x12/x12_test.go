package x12

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gyeh/zedigen/internal/model"
	"github.com/gyeh/zedigen/internal/rng"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func strp(s string) *string { return &s }

func sampleClaim(id string, lines int) model.Claim {
	c := model.Claim{
		ClaimID:               id,
		BillingProvider:       model.Provider{NPI: "1234567893", Name: "Acme Clinic"},
		TotalCharge:           30000,
		TotalPayment:          20000,
		TotalAdjustment:       10000,
		PatientResponsibility: 10000,
		Status:                model.StatusPartial,
	}
	for i := 0; i < lines; i++ {
		c.ServiceLines = append(c.ServiceLines, model.ServiceLine{
			LineNumber:       i + 1,
			ProcedureCode:    "99213",
			ChargeAmount:     15000,
			PaymentAmount:    10000,
			PaidAmount:       10000,
			AdjustmentAmount: 5000,
			Units:            1,
			RevenueCode:      strp("0450"),
		})
	}
	return c
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		seg  Segment
		want string
	}{
		{"isa", ISA{SenderID: "SENDER001", ReceiverID: "RECEIVER01", Date: fixedNow, ControlNumber: "000000010001", UsageIndicator: 'P'},
			"ISA*00*          *00*          *ZZ*SENDER001      *ZZ*RECEIVER01     *240305*1407*^*00501*000000010001*0*P*~"},
		{"gs", GS{SenderID: "S", ReceiverID: "R", Date: fixedNow, ControlNumber: "7"},
			"GS*HP*S*R*20240305*1407*7*X*005010X221A1~"},
		{"st", ST{ControlNumber: "42"}, "ST*835*42*005010X221A1~"},
		{"bpr", BPR{PaymentAmount: 100050, CreditDebit: 'C', PaymentMethod: "ACH", PaymentDate: fixedNow},
			"BPR*C*1000.50*C*ACH*CCP*01*999999999*DA*999999999*9999999999**01*999999999*DA*999999999*20240305~"},
		{"trn", TRN{ReferenceID: "1234567890", OriginatorCompany: "COMPANY123"}, "TRN*1*1234567890*COMPANY123~"},
		{"dtm", DTM{Qualifier: "405", Date: fixedNow}, "DTM*405*20240305~"},
		{"n1", N1{EntityID: "PR", Name: "PAYER NAME", IDQualifier: "PI", IDCode: "1"}, "N1*PR*PAYER NAME*PI*1~"},
		{"clp", CLP{ClaimID: "CLM1", StatusCode: "1", ChargeAmount: 20000, PaidAmount: 10000, PatientResponsibility: 500, ClaimFilingIndicator: "11", PayerClaimNumber: "PCNCLM1"},
			"CLP*CLM1*1*200.00*100.00*5.00*11*PCNCLM1*11*1~"},
		{"svc", SVC{ProcedureCode: "99213", ChargeAmount: 15000, PaidAmount: 10000, RevenueCode: "0450", Units: 1.5},
			"SVC*HC:99213*150.00*100.00*0450*1.5~"},
		{"cas", CAS{GroupCode: "CO", ReasonCode: "45", Amount: 5000, Units: 2}, "CAS*CO*45*50.00*2~"},
		{"se", SE{SegmentCount: 12, ControlNumber: "42"}, "SE*12*42~"},
		{"ge", GE{TransactionSets: 3, ControlNumber: "7"}, "GE*3*7~"},
		{"iea", IEA{FunctionalGroups: 1, ControlNumber: "9"}, "IEA*1*9~"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.seg); got != tt.want {
				t.Errorf("Render:\n got %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestTransactionSet_CountIncludesHeaderAndTrailer(t *testing.T) {
	ts := NewTransactionSet("0001")
	if ts.Trailer.SegmentCount != 2 {
		t.Fatalf("empty set count = %d, want 2", ts.Trailer.SegmentCount)
	}
	for i := 1; i <= 5; i++ {
		ts.Add(DTM{Qualifier: "405", Date: fixedNow})
		if ts.Trailer.SegmentCount != i+2 {
			t.Fatalf("after %d adds count = %d, want %d", i, ts.Trailer.SegmentCount, i+2)
		}
	}
	if ts.Header.ControlNumber != ts.Trailer.ControlNumber {
		t.Errorf("ST ctrl %q != SE ctrl %q", ts.Header.ControlNumber, ts.Trailer.ControlNumber)
	}
}

func TestEnvelopeCounters(t *testing.T) {
	ic := NewInterchange("S", "R", "100", fixedNow)
	g := NewFunctionalGroup("S", "R", "200", fixedNow)
	for i := 0; i < 4; i++ {
		g.AddTransactionSet(NewTransactionSet("30" + string(rune('0'+i))))
		if g.Trailer.TransactionSets != i+1 {
			t.Fatalf("GE count = %d, want %d", g.Trailer.TransactionSets, i+1)
		}
	}
	ic.AddFunctionalGroup(g)
	if ic.Trailer.FunctionalGroups != 1 {
		t.Errorf("IEA count = %d, want 1", ic.Trailer.FunctionalGroups)
	}
	if g.Header.ControlNumber != g.Trailer.ControlNumber {
		t.Errorf("GS/GE ctrl mismatch")
	}
	if ic.Header.ControlNumber != ic.Trailer.ControlNumber {
		t.Errorf("ISA/IEA ctrl mismatch")
	}
}

func TestBuild835_SegmentOrder(t *testing.T) {
	c := sampleClaim("CLM00000001", 2)
	c.ServiceLines[1].AdjustmentAmount = 0

	ts := Build835(&c, fixedNow, "0001")
	var ids []string
	for _, s := range ts.Segments {
		ids = append(ids, s.ID())
	}
	want := "BPR TRN DTM N1 N1 CLP SVC CAS SVC"
	if got := strings.Join(ids, " "); got != want {
		t.Fatalf("segments = %q, want %q", got, want)
	}
	if ts.Trailer.SegmentCount != len(ts.Segments)+2 {
		t.Errorf("SE count = %d, want %d", ts.Trailer.SegmentCount, len(ts.Segments)+2)
	}
	clp := ts.Segments[5].(CLP)
	if clp.PayerClaimNumber != "PCNCLM00000001" {
		t.Errorf("payer claim number = %q", clp.PayerClaimNumber)
	}
	if clp.StatusCode != "1" {
		t.Errorf("status code = %q, want 1", clp.StatusCode)
	}
	payee := ts.Segments[4].(N1)
	if payee.IDCode != "1234567893" || payee.Name != "Acme Clinic" {
		t.Errorf("payee = %+v", payee)
	}
}

func TestBuild835_NoLinesNoRevenueCode(t *testing.T) {
	c := sampleClaim("CLM1", 0)
	ts := Build835(&c, fixedNow, "1")
	if len(ts.Segments) != 6 {
		t.Fatalf("segments = %d, want 6", len(ts.Segments))
	}

	c = sampleClaim("CLM2", 1)
	c.ServiceLines[0].RevenueCode = nil
	ts = Build835(&c, fixedNow, "2")
	if got := Render(ts.Segments[6]); got != "SVC*HC:99213*150.00*100.00**1~" {
		t.Errorf("svc = %q", got)
	}
}

func TestClaimStatusCode(t *testing.T) {
	for s, want := range map[model.ClaimStatus]string{
		model.StatusDenied:  "4",
		model.StatusPaid:    "1",
		model.StatusPartial: "1",
		model.StatusPending: "1",
	} {
		if got := ClaimStatusCode(s); got != want {
			t.Errorf("ClaimStatusCode(%s) = %q, want %q", s, got, want)
		}
	}
}

func TestControlNumbers_FormatAndUnique(t *testing.T) {
	cn := NewControlNumbers(rng.New(1), clock)
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		n := cn.Next()
		if len(n) != 12 {
			t.Fatalf("control number %q has length %d", n, len(n))
		}
		if !strings.HasPrefix(n, "09647620") { // 1709647620 % 1e8
			t.Fatalf("control number %q has unexpected prefix", n)
		}
		if seen[n] {
			t.Fatalf("duplicate control number %q", n)
		}
		seen[n] = true
	}
	if cn.Issued() != 500 {
		t.Errorf("Issued = %d", cn.Issued())
	}
}

func TestControlNumbers_ExhaustedSuffixStepsPrefix(t *testing.T) {
	cn := NewControlNumbers(rng.New(7), clock)
	for i := 0; i < controlSuffixMod; i++ {
		cn.issued[fmt.Sprintf("09647620%04d", i)] = struct{}{}
	}
	n := cn.Next()
	if !strings.HasPrefix(n, "09647621") {
		t.Errorf("control number %q did not step the prefix", n)
	}
}

func TestEncoder_Encode(t *testing.T) {
	claims := []model.Claim{sampleClaim("CLM1", 1), sampleClaim("CLM2", 3), sampleClaim("CLM3", 0)}
	enc := NewEncoder(NewControlNumbers(rng.New(42), clock), clock)
	ic := enc.Encode(claims)

	var buf bytes.Buffer
	n, err := ic.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo returned %d, buffer has %d", n, buf.Len())
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	count := func(prefix string) int {
		k := 0
		for _, l := range lines {
			if strings.HasPrefix(l, prefix+"*") {
				k++
			}
		}
		return k
	}
	if count("ISA") != 1 || count("IEA") != 1 || count("GS") != 1 || count("GE") != 1 {
		t.Fatalf("envelope segments wrong:\n%s", buf.String())
	}
	if count("ST") != 3 || count("SE") != 3 {
		t.Fatalf("ST=%d SE=%d, want 3", count("ST"), count("SE"))
	}
	if !strings.HasPrefix(lines[len(lines)-1], "IEA*1*") {
		t.Errorf("last line = %q", lines[len(lines)-1])
	}
	if !strings.HasPrefix(lines[len(lines)-2], "GE*3*") {
		t.Errorf("GE line = %q", lines[len(lines)-2])
	}
	for _, l := range lines {
		if !strings.HasSuffix(l, SegmentTerminator) {
			t.Errorf("line %q not terminated", l)
		}
	}

	// same clock and seed, same bytes
	var again bytes.Buffer
	if _, err := NewEncoder(NewControlNumbers(rng.New(42), clock), clock).Encode(claims).WriteTo(&again); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), again.Bytes()) {
		t.Error("encoding is not reproducible")
	}
}
