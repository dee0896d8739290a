// Package rng provides explicit, per-owner random sources.
//
// Every consumer owns its own instance, seeded once at construction, so
// drawing numbers in one system can never shift the sequence of another.
package rng

import "github.com/MichaelTJones/pcg"

// Source yields uniformly distributed floats in [0, 1].
type Source interface {
	Float64() float64
}

// Range returns a value uniformly drawn from [lo, hi].
func Range(s Source, lo, hi float64) float64 {
	return lo + (hi-lo)*s.Float64()
}

// Chance reports true with probability p.
func Chance(s Source, p float64) bool {
	return s.Float64() < p
}

// LCG is the classic linear congruential generator used for track layout.
// Its sequence is part of the generated track's identity: the same seed
// must always produce the same segments.
type LCG struct {
	state uint32
}

const (
	lcgMul = 1103515245
	lcgInc = 12345
	lcgMax = 0x7FFF
)

// NewLCG creates a generator seeded with seed. Zero is a valid seed.
func NewLCG(seed uint32) *LCG {
	return &LCG{state: seed}
}

// Next advances the generator and returns a 15-bit value.
func (l *LCG) Next() uint32 {
	l.state = l.state*lcgMul + lcgInc
	return (l.state >> 16) & lcgMax
}

// Float64 returns a value in [0, 1].
func (l *LCG) Float64() float64 {
	return float64(l.Next()) / lcgMax
}

// PCG wraps a PCG32 stream for the AI's per-controller noise.
type PCG struct {
	r *pcg.PCG32
}

// pcgStream selects the PCG increment; controllers differ by seed only.
const pcgStream = 0xda3e39cb94b95bdb

// NewPCG creates a PCG32 source seeded with seed.
func NewPCG(seed uint64) *PCG {
	r := pcg.NewPCG32()
	r.Seed(seed, pcgStream)
	return &PCG{r: r}
}

// Float64 returns a value in [0, 1].
func (p *PCG) Float64() float64 {
	return float64(p.r.Random()) / (1<<32 - 1)
}
