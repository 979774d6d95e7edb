package dsp

import (
	"math"

	"github.com/hoopipi/hoopipi/internal/cell"
	"github.com/hoopipi/hoopipi/pkg/dsp/gain"
)

// NoiseGate is a one-pole-envelope hard gate: gain is 0 or 1 depending on
// whether the envelope of |x| exceeds the threshold. Grounded on
// original_source/HoopiPi/NoiseGate.{h,cpp} (exact attack/release
// constants) and pkg/dsp/dynamics/gate.go's state-machine idiom, simplified
// to the plain hard gate spec §4.A calls for.
type NoiseGate struct {
	Enabled   *cell.Bool
	ThreshDB  *cell.Float

	attackCoeff  float32
	releaseCoeff float32

	envelope float32
	gain     float32
}

const (
	gateAttackMs  = 1.0
	gateReleaseMs = 100.0
)

// NewNoiseGate returns a NoiseGate tuned for sampleRate, enabled by default
// with a -40dB threshold (matching original_source's persisted default).
func NewNoiseGate(sampleRate float64) *NoiseGate {
	g := &NoiseGate{
		Enabled:  cell.NewBool(true),
		ThreshDB: cell.NewFloat(-40.0),
		gain:     1.0,
	}
	g.updateCoefficients(sampleRate)
	return g
}

func (g *NoiseGate) updateCoefficients(sampleRate float64) {
	g.attackCoeff = float32(math.Exp(-1.0 / (gateAttackMs * sampleRate / 1000.0)))
	g.releaseCoeff = float32(math.Exp(-1.0 / (gateReleaseMs * sampleRate / 1000.0)))
}

// Reset zeroes the envelope and opens the gate, matching
// original_source/HoopiPi/NoiseGate.cpp's reset().
func (g *NoiseGate) Reset() {
	g.envelope = 0
	g.gain = 1.0
}

// Process applies the gate in place.
func (g *NoiseGate) Process(buf []float32) {
	if !g.Enabled.Load() {
		return
	}
	threshLinear := gain.DbToLinear32(g.ThreshDB.Load())

	for i, x := range buf {
		abs := x
		if abs < 0 {
			abs = -abs
		}
		if abs > g.envelope {
			g.envelope = g.attackCoeff*g.envelope + (1-g.attackCoeff)*abs
		} else {
			g.envelope = g.releaseCoeff*g.envelope + (1-g.releaseCoeff)*abs
		}

		if g.envelope > threshLinear {
			g.gain = 1.0
		} else {
			g.gain = 0.0
		}

		buf[i] = x * g.gain
	}
}
