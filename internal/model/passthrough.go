package model

import "os"

// fileCheckedPassthrough satisfies Model by copying input to output
// unchanged. It stands in for the externally linked neural-inference
// backend this package's non-goal excludes (spec §1); internal/app wires
// NewPassthroughFactory until a real backend is linked in.
type fileCheckedPassthrough struct {
	sampleRate int
}

func (fileCheckedPassthrough) Process(in, out []float32)    { copy(out, in) }
func (fileCheckedPassthrough) RecommendedOutputDB() float32 { return 0 }
func (m fileCheckedPassthrough) SampleRate() int             { return m.sampleRate }
func (fileCheckedPassthrough) SetMaxBlockSize(int)           {}
func (fileCheckedPassthrough) Close()                        {}

// NewPassthroughFactory returns a Factory that validates path exists and
// then produces a passthrough Model running at sampleRate. It exists so
// the command-line binaries have something to hand a Loader while no
// real inference backend is linked in.
func NewPassthroughFactory(sampleRate int) Factory {
	return func(path string) (Model, error) {
		if path == "" {
			return nil, os.ErrInvalid
		}
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		return fileCheckedPassthrough{sampleRate: sampleRate}, nil
	}
}
