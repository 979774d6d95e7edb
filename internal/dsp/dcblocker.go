package dsp

import (
	"math"

	"github.com/hoopipi/hoopipi/internal/cell"
)

// DCBlockFreqHz is the fixed cutoff original_source/HoopiPi/DCBlocker.h
// uses; the spec (§4.A) names it directly.
const DCBlockFreqHz = 10.0

// DCBlocker is the first-order IIR y[n] = x[n] - x[n-1] + R*y[n-1],
// grounded 1:1 on original_source/HoopiPi/DCBlocker.{h,cpp} and
// pkg/dsp/utility/dcblocker.go's SimpleDCBlocker (same default cutoff).
type DCBlocker struct {
	Enabled *cell.Bool

	coefficient float32
	x1, y1      float32
}

// NewDCBlocker returns a DCBlocker tuned for sampleRate, enabled by default.
func NewDCBlocker(sampleRate float64) *DCBlocker {
	d := &DCBlocker{Enabled: cell.NewBool(true)}
	d.coefficient = float32(1.0 - 2.0*math.Pi*DCBlockFreqHz/sampleRate)
	return d
}

// Reset zeroes both state registers.
func (d *DCBlocker) Reset() {
	d.x1 = 0
	d.y1 = 0
}

// Process applies the filter in place.
func (d *DCBlocker) Process(buf []float32) {
	if !d.Enabled.Load() {
		return
	}
	x1, y1 := d.x1, d.y1
	for i, x0 := range buf {
		y0 := x0 - x1 + d.coefficient*y1
		buf[i] = y0
		x1 = x0
		y1 = y0
	}
	d.x1, d.y1 = x1, y1
}
