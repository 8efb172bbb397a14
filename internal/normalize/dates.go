package normalize

import "time"

const (
	// ISODate is the layout of dates carried on claims and persons.
	ISODate = "2006-01-02"
	// X12Date is the CCYYMMDD layout used inside segments.
	X12Date = "20060102"
)

// Days returns the whole number of days from a to b (counted by calendar date).
func Days(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// ParseISODate parses a YYYY-MM-DD date. ok is false when s is not a valid
// calendar date in that layout.
func ParseISODate(s string) (time.Time, bool) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
