// Package cell implements the parameter cell: a plain scalar value written
// by control threads and read by the audio thread without locks.
//
// The float cell reinterprets its bits through a uint32, the same trick
// pkg/framework/param.Parameter uses for float64, generalized here to the
// small family of scalar kinds a parameter cell actually needs (bool,
// float32, int32, small enum).
package cell

import (
	"math"
	"sync/atomic"
)

// Float is a lock-free float32 cell.
type Float struct {
	bits atomic.Uint32
}

// NewFloat returns a Float initialized to v.
func NewFloat(v float32) *Float {
	f := &Float{}
	f.Store(v)
	return f
}

// Load returns the most recently stored value.
func (f *Float) Load() float32 {
	return math.Float32frombits(f.bits.Load())
}

// Store writes v, visible to any subsequent Load.
func (f *Float) Store(v float32) {
	f.bits.Store(math.Float32bits(v))
}

// Bool is a lock-free boolean cell.
type Bool struct {
	v atomic.Bool
}

// NewBool returns a Bool initialized to v.
func NewBool(v bool) *Bool {
	b := &Bool{}
	b.Store(v)
	return b
}

// Load returns the most recently stored value.
func (b *Bool) Load() bool { return b.v.Load() }

// Store writes v.
func (b *Bool) Store(v bool) { b.v.Store(v) }

// Int32 is a lock-free int32 cell, used for slot indices and similar small
// integers.
type Int32 struct {
	v atomic.Int32
}

// NewInt32 returns an Int32 initialized to v.
func NewInt32(v int32) *Int32 {
	c := &Int32{}
	c.Store(v)
	return c
}

// Load returns the most recently stored value.
func (c *Int32) Load() int32 { return c.v.Load() }

// Store writes v.
func (c *Int32) Store(v int32) { c.v.Store(v) }

// Enum is a lock-free cell over a small closed set of string-backed values,
// stored as an int32 ordinal. Used for stereo mode and similar settings
// that the control protocol addresses by name.
type Enum struct {
	v atomic.Int32
}

// NewEnum returns an Enum initialized to ordinal v.
func NewEnum(v int32) *Enum {
	e := &Enum{}
	e.Store(v)
	return e
}

// Load returns the current ordinal.
func (e *Enum) Load() int32 { return e.v.Load() }

// Store writes ordinal v.
func (e *Enum) Store(v int32) { e.v.Store(v) }

// Dirty is a one-shot flag a setter raises and a block-processing routine
// lowers after recomputing whatever the flag guards (e.g. filter
// coefficients). Used by the EQ bands; the reverb publishes its
// parameters through an atomic pointer swap instead.
type Dirty struct {
	v atomic.Bool
}

// Mark raises the flag.
func (d *Dirty) Mark() { d.v.Store(true) }

// CheckAndClear reports whether the flag was set, clearing it atomically.
func (d *Dirty) CheckAndClear() bool { return d.v.CompareAndSwap(true, false) }
