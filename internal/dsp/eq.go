package dsp

import (
	"github.com/hoopipi/hoopipi/internal/cell"
	"github.com/hoopipi/hoopipi/internal/smooth"
	"github.com/hoopipi/hoopipi/pkg/dsp/filter"
)

// EQ center frequencies and Qs, grounded 1:1 on
// original_source/HoopiPi/ThreeBandEQ.h.
const (
	eqBassFreqHz   = 120.0
	eqMidFreqHz    = 750.0
	eqTrebleFreqHz = 3000.0
	eqShelfQ       = 0.707
	eqMidQ         = 1.0

	eqGainMinDB = -20.0
	eqGainMaxDB = 20.0

	// eqConvergeEpsilonDB is how close the smoothed gain must get to its
	// target before coefficient recomputation stops (the "dirty flag"
	// optimization spec §4.A calls for — skip the biquad-coefficient trig
	// once a band has settled).
	eqConvergeEpsilonDB = 1e-3
)

type band struct {
	biquad    *filter.Biquad
	targetDB  *cell.Float
	dirty     cell.Dirty
	smoothed  *smooth.Gain
	lastAppliedDB float32
	recomputing   bool
}

func newBand() *band {
	return &band{
		biquad:   filter.NewBiquad(1),
		targetDB: cell.NewFloat(0),
		smoothed: smooth.NewGain(0),
	}
}

func (b *band) setDB(db float64) {
	if db < eqGainMinDB {
		db = eqGainMinDB
	} else if db > eqGainMaxDB {
		db = eqGainMaxDB
	}
	b.targetDB.Store(float32(db))
	b.dirty.Mark()
}

// step advances the band's gain smoother by one sample and recomputes its
// biquad coefficients via recompute whenever they're still converging.
// recompute is one of setLowShelf/setPeakingEQ/setHighShelf bound by EQ.
func (b *band) step(recompute func(gainDB float64)) {
	if b.dirty.CheckAndClear() {
		b.recomputing = true
	}
	if !b.recomputing {
		return
	}
	target := b.targetDB.Load()
	smoothedDB := b.smoothed.Next(target)
	if abs32(smoothedDB-b.lastAppliedDB) < eqConvergeEpsilonDB && abs32(smoothedDB-target) < eqConvergeEpsilonDB {
		b.recomputing = false
	}
	recompute(float64(smoothedDB))
	b.lastAppliedDB = smoothedDB
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// ThreeBandEQ is three cascaded biquads (low-shelf, peaking, high-shelf),
// grounded on original_source/HoopiPi/ThreeBandEQ.h (frequencies/Qs/dB
// clamp) and pkg/dsp/filter.Biquad (Direct-Form-I state + design functions).
type ThreeBandEQ struct {
	Enabled *cell.Bool

	sampleRate float64
	bass       *band
	mid        *band
	treble     *band
}

// NewThreeBandEQ returns a flat, enabled ThreeBandEQ tuned for sampleRate.
func NewThreeBandEQ(sampleRate float64) *ThreeBandEQ {
	eq := &ThreeBandEQ{
		Enabled:    cell.NewBool(true),
		sampleRate: sampleRate,
		bass:       newBand(),
		mid:        newBand(),
		treble:     newBand(),
	}
	eq.bass.biquad.SetLowShelf(sampleRate, eqBassFreqHz, eqShelfQ, 0)
	eq.mid.biquad.SetPeakingEQ(sampleRate, eqMidFreqHz, eqMidQ, 0)
	eq.treble.biquad.SetHighShelf(sampleRate, eqTrebleFreqHz, eqShelfQ, 0)
	return eq
}

// SetBassDB sets the low-shelf gain target in dB, clamped to [-20,20].
func (eq *ThreeBandEQ) SetBassDB(db float64) { eq.bass.setDB(db) }

// SetMidDB sets the peaking gain target in dB, clamped to [-20,20].
func (eq *ThreeBandEQ) SetMidDB(db float64) { eq.mid.setDB(db) }

// SetTrebleDB sets the high-shelf gain target in dB, clamped to [-20,20].
func (eq *ThreeBandEQ) SetTrebleDB(db float64) { eq.treble.setDB(db) }

// BassDB, MidDB, TrebleDB report the last-written (unsmoothed) targets, for
// status snapshots.
func (eq *ThreeBandEQ) BassDB() float64   { return float64(eq.bass.targetDB.Load()) }
func (eq *ThreeBandEQ) MidDB() float64    { return float64(eq.mid.targetDB.Load()) }
func (eq *ThreeBandEQ) TrebleDB() float64 { return float64(eq.treble.targetDB.Load()) }

// Process applies the three cascaded bands in place, respecting Enabled.
func (eq *ThreeBandEQ) Process(buf []float32) {
	if !eq.Enabled.Load() {
		return
	}
	setBass := func(db float64) { eq.bass.biquad.SetLowShelf(eq.sampleRate, eqBassFreqHz, eqShelfQ, db) }
	setMid := func(db float64) { eq.mid.biquad.SetPeakingEQ(eq.sampleRate, eqMidFreqHz, eqMidQ, db) }
	setTreble := func(db float64) { eq.treble.biquad.SetHighShelf(eq.sampleRate, eqTrebleFreqHz, eqShelfQ, db) }

	for i := range buf {
		eq.bass.step(setBass)
		eq.mid.step(setMid)
		eq.treble.step(setTreble)

		s := buf[i : i+1]
		eq.bass.biquad.Process(s, 0)
		eq.mid.biquad.Process(s, 0)
		eq.treble.biquad.Process(s, 0)
	}
}
