package engine

import (
	"github.com/hoopipi/hoopipi/internal/cell"
	"github.com/hoopipi/hoopipi/internal/dsp"
	"github.com/hoopipi/hoopipi/internal/model"
	"github.com/hoopipi/hoopipi/internal/smooth"
	"github.com/hoopipi/hoopipi/pkg/dsp/gain"
)

// channel is one per-channel DSP chain: gain → gate → model → EQ →
// DC blocker → gain, per spec §4.G's pseudocode. Every field but the two
// smoothers is a parameter cell written by control threads; the smoothers
// are audio-thread-private.
type channel struct {
	InputGainDB  *cell.Float
	OutputGainDB *cell.Float
	BypassModel  *cell.Bool
	ActiveSlot   *cell.Int32 // 0 selects slotA, anything else selects slotB

	Gate *dsp.NoiseGate
	EQ   *dsp.ThreeBandEQ
	DC   *dsp.DCBlocker

	smoothedIn  *smooth.Gain
	smoothedOut *smooth.Gain
}

func newChannel(sampleRate float64, bypassModelDefault bool) *channel {
	return &channel{
		InputGainDB:  cell.NewFloat(0),
		OutputGainDB: cell.NewFloat(0),
		BypassModel:  cell.NewBool(bypassModelDefault),
		ActiveSlot:   cell.NewInt32(0),
		Gate:         dsp.NewNoiseGate(sampleRate),
		EQ:           dsp.NewThreeBandEQ(sampleRate),
		DC:           dsp.NewDCBlocker(sampleRate),
		smoothedIn:   smooth.NewGain(1.0),
		smoothedOut:  smooth.NewGain(1.0),
	}
}

// activeSlot resolves this channel's selected slot.
func (c *channel) activeSlot(slotA, slotB *model.Slot) *model.Slot {
	if c.ActiveSlot.Load() == 0 {
		return slotA
	}
	return slotB
}

// process runs the full per-channel chain over buf in place.
func (c *channel) process(buf []float32, slotA, slotB *model.Slot, normalize bool) {
	inTarget := gain.DbToLinear32(c.InputGainDB.Load())
	for i := range buf {
		buf[i] *= c.smoothedIn.Next(inTarget)
	}

	c.Gate.Process(buf)

	if !c.BypassModel.Load() {
		slot := c.activeSlot(slotA, slotB)
		slot.Process(buf, buf, normalize)
	}

	c.EQ.Process(buf)
	c.DC.Process(buf)

	outTarget := gain.DbToLinear32(c.OutputGainDB.Load())
	for i := range buf {
		buf[i] *= c.smoothedOut.Next(outTarget)
	}
}
