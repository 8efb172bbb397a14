// Package conformance checks an X12 document for the segments an 835
// interchange must carry.
package conformance

import (
	"fmt"
	"io"
	"strings"
)

// RequiredSegments lists the segment identifiers checked, in report order.
var RequiredSegments = []string{
	"ISA", "GS", "ST", "BPR", "TRN", "DTM", "N1", "CLP", "SVC", "SE", "GE", "IEA",
}

// Result reports which required segments were seen.
type Result struct {
	Present map[string]bool
	Found   int
	Total   int
}

// Score is the share of required segments present, in percent.
func (r Result) Score() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Found) / float64(r.Total) * 100
}

// Check splits content on the segment terminator and records each
// segment's identifier.
func Check(content string) Result {
	present := make(map[string]bool)
	for _, seg := range strings.Split(content, "~") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		id, _, _ := strings.Cut(seg, "*")
		present[id] = true
	}
	r := Result{Present: present, Total: len(RequiredSegments)}
	for _, id := range RequiredSegments {
		if present[id] {
			r.Found++
		}
	}
	return r
}

// Report writes the per-segment status lines and the score.
func (r Result) Report(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Segment presence:\n")
	for _, id := range RequiredSegments {
		status := "MISSING"
		if r.Present[id] {
			status = "OK"
		}
		fmt.Fprintf(&b, "  %-3s - %s\n", id, status)
	}
	fmt.Fprintf(&b, "\nScore: %d/%d segments present (%.1f%%)\n", r.Found, r.Total, r.Score())
	_, err := io.WriteString(w, b.String())
	return err
}
