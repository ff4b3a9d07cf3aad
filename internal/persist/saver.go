package persist

import (
	"sync"
	"time"
)

// Saver coalesces snapshot writes: however often Schedule is called during
// the debounce window, the save function runs once when the window closes.
// High-frequency channels (mouse movement) would otherwise rewrite the
// snapshot hundreds of times a second.
type Saver struct {
	mu       sync.Mutex
	interval time.Duration
	save     func()
	timer    *time.Timer
	armed    bool
	closed   bool
}

// NewSaver creates a debounced saver. save runs on the saver's timer
// goroutine and must be safe to call from there.
func NewSaver(interval time.Duration, save func()) *Saver {
	if interval <= 0 {
		interval = time.Second
	}
	return &Saver{interval: interval, save: save}
}

// Schedule requests a save at the end of the current debounce window.
func (s *Saver) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.armed {
		return
	}
	s.armed = true
	s.timer = time.AfterFunc(s.interval, s.fire)
}

func (s *Saver) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.armed = false
	s.mu.Unlock()
	s.save()
}

// Flush runs any pending save immediately.
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.closed || !s.armed {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.armed = false
	s.mu.Unlock()
	s.save()
}

// Close flushes any pending save and stops the saver.
func (s *Saver) Close() {
	s.Flush()
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
}
