package x12

import (
	"bufio"
	"io"
	"time"
)

// TransactionSet is one ST/SE-enclosed 835 transaction.
type TransactionSet struct {
	Header   ST
	Segments []Segment
	Trailer  SE
}

// NewTransactionSet returns an empty set whose header and trailer share ctrl.
func NewTransactionSet(ctrl string) *TransactionSet {
	return &TransactionSet{
		Header:  ST{ControlNumber: ctrl},
		Trailer: SE{SegmentCount: 2, ControlNumber: ctrl},
	}
}

// Add appends body segments and recomputes the SE count.
func (t *TransactionSet) Add(segs ...Segment) {
	t.Segments = append(t.Segments, segs...)
	t.Trailer.SegmentCount = len(t.Segments) + 2
}

// FunctionalGroup is a GS/GE-enclosed group of transaction sets.
type FunctionalGroup struct {
	Header  GS
	Sets    []*TransactionSet
	Trailer GE
}

func NewFunctionalGroup(sender, receiver, ctrl string, at time.Time) *FunctionalGroup {
	return &FunctionalGroup{
		Header:  GS{SenderID: sender, ReceiverID: receiver, Date: at, ControlNumber: ctrl},
		Trailer: GE{ControlNumber: ctrl},
	}
}

// AddTransactionSet appends ts and recomputes the GE count.
func (g *FunctionalGroup) AddTransactionSet(ts *TransactionSet) {
	g.Sets = append(g.Sets, ts)
	g.Trailer.TransactionSets = len(g.Sets)
}

// Interchange is the outermost ISA/IEA envelope.
type Interchange struct {
	Header  ISA
	Groups  []*FunctionalGroup
	Trailer IEA
}

func NewInterchange(sender, receiver, ctrl string, at time.Time) *Interchange {
	return &Interchange{
		Header: ISA{
			SenderID:       sender,
			ReceiverID:     receiver,
			Date:           at,
			ControlNumber:  ctrl,
			UsageIndicator: 'P',
		},
		Trailer: IEA{ControlNumber: ctrl},
	}
}

// AddFunctionalGroup appends g and recomputes the IEA count.
func (ic *Interchange) AddFunctionalGroup(g *FunctionalGroup) {
	ic.Groups = append(ic.Groups, g)
	ic.Trailer.FunctionalGroups = len(ic.Groups)
}

// Segments flattens the interchange in wire order.
func (ic *Interchange) Segments() []Segment {
	out := []Segment{ic.Header}
	for _, g := range ic.Groups {
		out = append(out, g.Header)
		for _, ts := range g.Sets {
			out = append(out, ts.Header)
			out = append(out, ts.Segments...)
			out = append(out, ts.Trailer)
		}
		out = append(out, g.Trailer)
	}
	return append(out, ic.Trailer)
}

// WriteTo writes the interchange, one segment per line.
func (ic *Interchange) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, s := range ic.Segments() {
		k, err := bw.WriteString(Render(s) + "\n")
		n += int64(k)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}
