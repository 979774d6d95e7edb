package model

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	fadeOutBeforeLoadTimeout = 60 * time.Millisecond
	fadeOutBeforeUnloadTimeout = 100 * time.Millisecond
	prewarmSamples = 256
)

// Loader is the single long-lived worker per slot that loads models from
// disk in the background and installs them with a crossfade, per spec
// §4.C, grounded on original_source/HoopiPi/ModelLoader.{h,cpp}.
type Loader struct {
	slot       *Slot
	factory    Factory
	maxBlock   int

	mu          sync.Mutex // guards pendingPath/requested, the worker's "predicate"
	pendingPath string
	requested   bool

	wake    chan struct{}
	done    chan struct{}
	running atomic.Bool

	lastErr atomic.Pointer[string]
}

// NewLoader starts a Loader's worker goroutine for slot, using factory to
// construct models and maxBlockSize as the model's configured maximum
// block size.
func NewLoader(slot *Slot, factory Factory, maxBlockSize int) *Loader {
	l := &Loader{
		slot:     slot,
		factory:  factory,
		maxBlock: maxBlockSize,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	l.running.Store(true)
	go l.workerLoop()
	return l
}

// LoadAsync requests a background load of path, superseding any
// not-yet-started pending request (spec §4.C: "a new request queued while
// one is running supersedes any pending (not running) request").
func (l *Loader) LoadAsync(path string) {
	l.mu.Lock()
	l.pendingPath = path
	l.requested = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Unload is a load of "nothing": fade out, clear ready, destroy (spec
// §4.C "Unload").
func (l *Loader) Unload() {
	l.slot.fade.requestFadeOut()
	waitForFadeIdle(l.slot, fadeOutBeforeUnloadTimeout)

	l.slot.ready.Store(false)
	l.slot.clear()
}

// LastError returns the most recent load failure's message, or "" if the
// last load (if any) succeeded.
func (l *Loader) LastError() string {
	if p := l.lastErr.Load(); p != nil {
		return *p
	}
	return ""
}

// Close stops the worker goroutine and waits for it to exit.
func (l *Loader) Close() {
	l.running.Store(false)
	select {
	case l.wake <- struct{}{}:
	default:
	}
	<-l.done
}

func (l *Loader) workerLoop() {
	defer close(l.done)
	for l.running.Load() {
		<-l.wake

		if !l.running.Load() {
			return
		}

		l.mu.Lock()
		requested := l.requested
		path := l.pendingPath
		l.requested = false
		l.mu.Unlock()

		if requested {
			l.doLoad(path)
		}
	}
}

func (l *Loader) doLoad(path string) {
	if l.slot.IsReady() {
		l.slot.fade.requestFadeOut()
		waitForFadeIdle(l.slot, fadeOutBeforeLoadTimeout)
	}

	l.slot.ready.Store(false)

	m, err := l.factory(path)
	if err != nil {
		l.setLastErr(fmt.Errorf("load model %q: %w", path, err))
		l.slot.clear()
		return
	}

	m.SetMaxBlockSize(l.maxBlock)

	silence := make([]float32, prewarmSamples)
	scratch := make([]float32, prewarmSamples)
	m.Process(silence, scratch)

	loudness := m.RecommendedOutputDB()
	normGain := normalizationGainFromDB(loudness)

	l.slot.install(path, m, normGain)

	l.slot.fade.requestFadeIn()
	l.slot.ready.Store(true)
	l.setLastErr(nil)
}

func (l *Loader) setLastErr(err error) {
	if err == nil {
		l.lastErr.Store(nil)
		return
	}
	msg := err.Error()
	l.lastErr.Store(&msg)
}

// waitForFadeIdle polls the slot's fade state until Idle or timeout
// elapses. A poll loop stands in for original_source's
// condition_variable::wait_for(timeout, predicate) — this package has no
// RT-thread-owned condition variable to wait on, since the RT thread must
// never block; the worker bounds its own wait instead (spec §4.C, §5
// "Timeouts").
func waitForFadeIdle(s *Slot, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.FadeState() == FadeIdle {
			return
		}
		time.Sleep(500 * time.Microsecond)
	}
}
