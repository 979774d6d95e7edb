package backing

import "github.com/hoopipi/hoopipi/pkg/dsp/interpolation"

// resampleLinear resamples a single channel to outputRate using
// pkg/dsp/interpolation's Linear, grounded 1:1 on BackingTrack.cpp's
// resampleAudio.
func resampleLinear(input []float32, inputRate, outputRate int) []float32 {
	if len(input) == 0 || inputRate <= 0 || outputRate <= 0 {
		return nil
	}
	if inputRate == outputRate {
		out := make([]float32, len(input))
		copy(out, input)
		return out
	}

	ratio := float64(outputRate) / float64(inputRate)
	outFrames := int(float64(len(input)) * ratio)
	out := make([]float32, outFrames)

	for i := 0; i < outFrames; i++ {
		inputPos := float64(i) / ratio
		idx := int(inputPos)
		frac := float32(inputPos - float64(idx))

		switch {
		case idx+1 < len(input):
			out[i] = interpolation.Linear(input[idx], input[idx+1], frac)
		case idx < len(input):
			out[i] = input[idx]
		default:
			out[i] = 0
		}
	}

	return out
}
