// Package rng provides the seeded random streams every generator owns.
//
// A Source wraps a ChaCha8 stream. The same stream backs both the numeric
// draws (through math/rand/v2) and byte reads (used for UUIDs), so one
// seed reproduces everything a generator emits.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Stream identifiers for SubSeed. Each generator draws from its own stream so
// adding draws to one of them does not shift the others.
const (
	StreamPopulation uint64 = iota + 1
	StreamClaims
	StreamAnomalies
	StreamControlNumbers
)

// Source is a deterministic random source. It is not safe for concurrent use.
type Source struct {
	*rand.Rand
	stream *rand.ChaCha8
}

// New returns a Source seeded from seed.
func New(seed uint64) *Source {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	return fromKey(key)
}

// NewSeed draws a fresh master seed from the operating system.
func NewSeed() uint64 {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

func fromKey(key [32]byte) *Source {
	cc := rand.NewChaCha8(key)
	return &Source{Rand: rand.New(cc), stream: cc}
}

// Read fills p with bytes from the underlying stream. It never fails.
func (s *Source) Read(p []byte) (int, error) {
	return s.stream.Read(p)
}

// Bool reports whether a draw in [0,1) falls below p.
func (s *Source) Bool(p float64) bool {
	return s.Float64() < p
}

// IntBetween returns a uniform integer in [lo, hi].
func (s *Source) IntBetween(lo, hi int64) int64 {
	return lo + s.Int64N(hi-lo+1)
}

// SubSeed derives the seed of stream n from a master seed using SplitMix64
// finalization, so distinct streams are decorrelated.
func SubSeed(seed, n uint64) uint64 {
	z := seed + n*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
