// Package rng provides the seeded xorshift32 stream that drives generation.
//
// The stream is deliberately simple and fast. It reproduces the reference
// recurrence bit for bit, so a seed always yields the same sequence of
// floats regardless of platform. Every helper consumes the one stream in
// call order; reordering calls changes every value drawn afterwards.
package rng

import "math"

// Stream is a xorshift32 generator. The zero value is not usable; create
// streams with [New].
type Stream struct {
	state uint32
}

// New creates a stream seeded with seed. A zero seed is remapped to 1
// because zero is a fixed point of xorshift.
func New(seed uint32) *Stream {
	if seed == 0 {
		seed = 1
	}
	return &Stream{state: seed}
}

// Uint32 advances the stream and returns the raw 32-bit state.
func (s *Stream) Uint32() uint32 {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return x
}

// Float64 returns the next value in [0, 1).
func (s *Stream) Float64() float64 {
	return float64(s.Uint32()) / 4294967296
}

// Int returns an integer in [lo, hi], both inclusive.
//
// The result is floor(next*(hi-lo+1)) + lo. Callers are responsible for
// lo <= hi; inverted bounds produce values outside the range rather than a
// panic.
func (s *Stream) Int(lo, hi int) int {
	return int(math.Floor(s.Float64()*float64(hi-lo+1))) + lo
}

// Range returns lo + next*(hi-lo).
func (s *Stream) Range(lo, hi float64) float64 {
	return lo + s.Float64()*(hi-lo)
}

// Choice returns a uniformly drawn element of values. It panics on an empty
// slice, like indexing would.
func Choice[T any](s *Stream, values []T) T {
	return values[s.Int(0, len(values)-1)]
}
