package x12

import (
	"fmt"
	"time"

	"github.com/gyeh/zedigen/internal/rng"
)

const (
	controlPrefixMod = 100_000_000
	controlSuffixMod = 10_000
)

// ControlNumbers issues envelope control numbers of the form %08d%04d:
// the clock's unix seconds mod 10^8 followed by a random suffix. Numbers are
// unique for the lifetime of the value; a collision steps the suffix and,
// once the suffix space of a prefix is exhausted, the prefix.
type ControlNumbers struct {
	src    *rng.Source
	now    func() time.Time
	issued map[string]struct{}
}

func NewControlNumbers(src *rng.Source, now func() time.Time) *ControlNumbers {
	if now == nil {
		now = time.Now
	}
	return &ControlNumbers{src: src, now: now, issued: make(map[string]struct{})}
}

// Next returns a control number not previously returned by c.
func (c *ControlNumbers) Next() string {
	prefix := c.now().Unix() % controlPrefixMod
	if prefix < 0 {
		prefix += controlPrefixMod
	}
	suffix := c.src.Int64N(controlSuffixMod)
	for tries := 0; ; tries++ {
		if tries == controlSuffixMod {
			prefix = (prefix + 1) % controlPrefixMod
			tries = 0
		}
		n := fmt.Sprintf("%08d%04d", prefix, suffix)
		if _, dup := c.issued[n]; !dup {
			c.issued[n] = struct{}{}
			return n
		}
		suffix = (suffix + 1) % controlSuffixMod
	}
}

// Issued reports how many control numbers c has handed out.
func (c *ControlNumbers) Issued() int { return len(c.issued) }
