// Package model implements the model slot (spec §4.B) and its asynchronous
// loader (spec §4.C), grounded on
// original_source/HoopiPi/ModelLoader.{h,cpp}.
package model

import "errors"

// ErrNotReady names the condition of a slot with no installed model. No
// function in this package returns it: Slot.Process passes input through
// instead.
var ErrNotReady = errors.New("model: slot not ready")

// Model is the narrow interface a neural amplifier model must satisfy.
// Per spec §1's explicit non-goal ("the core does not itself implement the
// neural network inference"), this package implements Model only with the
// copy-through stand-in in passthrough.go and the test double in
// model_test.go — a real implementation is linked in externally.
type Model interface {
	// Process runs len(in) samples through the model. in and out may alias.
	Process(in, out []float32)
	// RecommendedOutputDB is the model's self-reported output level
	// adjustment, used to compute the slot's normalization gain.
	RecommendedOutputDB() float32
	// SampleRate is the model's native sample rate.
	SampleRate() int
	// SetMaxBlockSize configures the model's largest expected block.
	SetMaxBlockSize(n int)
	// Close releases any resources the model holds.
	Close()
}

// Factory constructs a Model from a file path. Supplied by the caller so
// this package stays independent of any concrete inference backend.
type Factory func(path string) (Model, error)
