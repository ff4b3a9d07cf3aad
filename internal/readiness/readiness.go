// Package readiness tracks whether enough samples have accumulated to
// analyze a session, and lets callers wait for that moment.
//
// The wait is a one-shot future: each waiter is resolved exactly once, with
// true on readiness and false on timeout or stop. The on-ready notification
// fires exactly once per tracker, on the first transition to ready or on the
// first timeout (callers may inspect partial results after a timeout).
package readiness

import (
	"sync"
	"time"

	"botsense/internal/telemetry"
)

// State is the tracker lifecycle state.
type State int

const (
	StateNotStarted State = iota
	StateCollecting
	StateReady
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateCollecting:
		return "collecting"
	case StateReady:
		return "ready"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Tracker is the readiness state machine for one session.
type Tracker struct {
	mu         sync.Mutex
	state      State
	enabled    []telemetry.Channel
	minSamples map[telemetry.Channel]int
	waiters    []chan bool
	onReady    func()
	fired      bool
}

// New creates a tracker for the given enabled channels and per-channel
// sample minimums. onReady may be nil.
func New(enabled []telemetry.Channel, minSamples map[telemetry.Channel]int, onReady func()) *Tracker {
	return &Tracker{
		state:      StateNotStarted,
		enabled:    enabled,
		minSamples: minSamples,
		onReady:    onReady,
	}
}

// Start moves the tracker into the collecting state.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateNotStarted {
		t.state = StateCollecting
	}
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Ready reports whether the tracker has reached the ready state.
func (t *Tracker) Ready() bool {
	return t.State() == StateReady
}

// Observe re-evaluates the readiness predicate against current sample
// counts. Called on every sample arrival.
func (t *Tracker) Observe(counts map[telemetry.Channel]int) {
	t.mu.Lock()
	if t.state != StateCollecting || !t.satisfied(counts) {
		t.mu.Unlock()
		return
	}
	t.state = StateReady
	waiters := t.drainLocked()
	fire := t.markFiredLocked()
	t.mu.Unlock()

	for _, w := range waiters {
		w <- true
	}
	if fire != nil {
		runNotification(fire)
	}
}

// satisfied is the readiness predicate: at least min(2, enabledCount)
// channels must individually meet their minimum. A single-channel deployment
// can become ready alone; a multi-channel one needs corroboration.
func (t *Tracker) satisfied(counts map[telemetry.Channel]int) bool {
	needed := 2
	if len(t.enabled) < needed {
		needed = len(t.enabled)
	}
	if needed == 0 {
		return false
	}
	met := 0
	for _, ch := range t.enabled {
		min := t.minSamples[ch]
		if min <= 0 {
			min = 1
		}
		if counts[ch] >= min {
			met++
		}
	}
	return met >= needed
}

// Wait blocks until the tracker becomes ready, the timeout elapses, or the
// tracker stops. Returns true only on readiness. If the tracker is already
// terminal the result is immediate.
func (t *Tracker) Wait(timeout time.Duration) bool {
	t.mu.Lock()
	switch t.state {
	case StateReady:
		t.mu.Unlock()
		return true
	case StateNotStarted, StateTimedOut:
		t.mu.Unlock()
		return false
	}
	ch := make(chan bool, 1)
	t.waiters = append(t.waiters, ch)
	t.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ok := <-ch:
		return ok
	case <-timer.C:
		t.timeout()
		// The timeout resolved every pending waiter, including ours.
		return <-ch
	}
}

// timeout moves a still-collecting tracker to the timed-out state, resolves
// all waiters with false, and still fires the on-ready notification once so
// callers can inspect partial results.
func (t *Tracker) timeout() {
	t.mu.Lock()
	if t.state != StateCollecting {
		t.mu.Unlock()
		return
	}
	t.state = StateTimedOut
	waiters := t.drainLocked()
	fire := t.markFiredLocked()
	t.mu.Unlock()

	for _, w := range waiters {
		w <- false
	}
	if fire != nil {
		runNotification(fire)
	}
}

// Stop resolves any pending waiters with false regardless of readiness and
// cancels the pending notification.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if t.state == StateCollecting {
		t.state = StateTimedOut
	}
	t.fired = true // suppress any later notification
	waiters := t.drainLocked()
	t.mu.Unlock()

	for _, w := range waiters {
		w <- false
	}
}

func (t *Tracker) drainLocked() []chan bool {
	waiters := t.waiters
	t.waiters = nil
	return waiters
}

// markFiredLocked returns the notification callback if it has not fired
// yet, claiming the single fire.
func (t *Tracker) markFiredLocked() func() {
	if t.fired || t.onReady == nil {
		return nil
	}
	t.fired = true
	return t.onReady
}

// runNotification invokes the on-ready callback, discarding panics: a
// misbehaving consumer must not disturb readiness bookkeeping.
func runNotification(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
