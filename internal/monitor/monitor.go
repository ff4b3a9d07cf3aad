// Package monitor is the public facade of the scoring engine: it owns the
// sample store for one session, feeds the readiness tracker, and produces
// fused results on demand.
package monitor

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"botsense/internal/analyzer"
	"botsense/internal/calibration"
	"botsense/internal/fusion"
	"botsense/internal/persist"
	"botsense/internal/readiness"
	"botsense/internal/telemetry"
)

// Options configures a Monitor. The zero value is usable: default
// calibration, all channels enabled, no persistence, no callbacks.
type Options struct {
	// Calibration is the validated weight/threshold configuration. Nil
	// selects the built-in defaults.
	Calibration *calibration.Config

	// Enabled lists the channels this deployment collects. Empty enables
	// all channels.
	Enabled []telemetry.Channel

	// Store enables snapshot persistence when non-nil.
	Store persist.Store

	// StorageKey is the snapshot key; defaults to "botsense/session".
	StorageKey string

	// SaveInterval is the snapshot debounce window; defaults to 1s.
	SaveInterval time.Duration

	// OnSample is invoked after each recorded sample. Panics are discarded.
	OnSample func(ch telemetry.Channel)

	// OnReady is invoked exactly once, on readiness or first wait timeout.
	// Panics are discarded.
	OnReady func()

	// Probe is the one-shot rendering latency probe, invoked once per
	// session start when set. A nil return means the probe was unavailable.
	Probe func() *telemetry.RenderTiming

	// Logger receives operational logs. Nil disables logging.
	Logger *slog.Logger

	// now overrides the clock in tests.
	now func() time.Time
}

// Monitor collects interaction telemetry for one session and scores it.
// All methods are safe for concurrent use.
type Monitor struct {
	mu sync.Mutex

	cal     calibration.Config
	enabled []telemetry.Channel
	store   *telemetry.Store
	session telemetry.Session
	stopped time.Time

	// pendingKeys maps a key to its down-timestamp until the matching up
	// arrives.
	pendingKeys map[string]pendingKey

	// Generic trusted-event bookkeeping for the collector's DOM-like events.
	trustedEvents int
	genericEvents int

	tracker *readiness.Tracker
	saver   *persist.Saver

	kvStore    persist.Store
	storageKey string

	onSample func(ch telemetry.Channel)
	probe    func() *telemetry.RenderTiming
	log      *slog.Logger
	now      func() time.Time
}

type pendingKey struct {
	downMs  float64
	trusted bool
}

// New constructs a monitor. A persisted snapshot under the storage key is
// restored if present and intact; anything else counts as nothing to
// restore.
func New(opts Options) (*Monitor, error) {
	cal := calibration.Defaults()
	if opts.Calibration != nil {
		if err := calibration.Validate(opts.Calibration); err != nil {
			return nil, err
		}
		cal = *opts.Calibration
	}

	enabled := opts.Enabled
	if len(enabled) == 0 {
		enabled = telemetry.Channels
	}

	key := opts.StorageKey
	if key == "" {
		key = "botsense/session"
	}

	now := opts.now
	if now == nil {
		now = time.Now
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	m := &Monitor{
		cal:         cal,
		enabled:     enabled,
		store:       telemetry.NewStore(),
		pendingKeys: make(map[string]pendingKey),
		kvStore:     opts.Store,
		storageKey:  key,
		onSample:    opts.OnSample,
		probe:       opts.Probe,
		log:         log,
		now:         now,
	}

	m.tracker = readiness.New(enabled, cal.MinSamples, func() {
		m.mu.Lock()
		m.session.ReadyFired = true
		m.mu.Unlock()
		if opts.OnReady != nil {
			safeCall(opts.OnReady)
		}
	})

	if m.kvStore != nil {
		m.restore()
		m.saver = persist.NewSaver(opts.SaveInterval, m.snapshot)
	}

	return m, nil
}

// Start begins (or resumes) the session. Idempotent.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.session.IsRunning {
		m.mu.Unlock()
		return
	}
	m.session.IsRunning = true
	if m.session.StartTime.IsZero() {
		m.session.StartTime = m.now()
	}
	probe := m.probe
	alreadyProbed := m.store.Rendering != nil
	m.mu.Unlock()

	m.tracker.Start()
	m.log.Info("session started")

	if probe != nil && !alreadyProbed {
		go m.runProbe(probe)
	}
}

func (m *Monitor) runProbe(probe func() *telemetry.RenderTiming) {
	defer func() { _ = recover() }()
	timing := probe()
	if timing == nil {
		return
	}
	m.SetRenderTiming(*timing)
}

// Stop retires the session and returns the final result. Collected samples
// are kept: later Results calls still work. The second of two Stop calls
// returns nil.
func (m *Monitor) Stop() *fusion.Result {
	m.mu.Lock()
	if !m.session.IsRunning {
		m.mu.Unlock()
		return nil
	}
	m.session.IsRunning = false
	m.stopped = m.now()
	m.mu.Unlock()

	m.tracker.Stop()
	if m.saver != nil {
		m.saver.Flush()
	}
	m.log.Info("session stopped")

	result := m.Results()
	return &result
}

// Status reports the session state.
type Status struct {
	IsRunning    bool                      `json:"is_running"`
	ElapsedMs    float64                   `json:"elapsed_ms"`
	SampleCounts map[telemetry.Channel]int `json:"sample_counts"`
	Ready        bool                      `json:"ready"`
}

// Status returns the current session state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		IsRunning:    m.session.IsRunning,
		ElapsedMs:    m.elapsedLocked(),
		SampleCounts: m.store.Counts(),
		Ready:        m.tracker.Ready(),
	}
}

func (m *Monitor) elapsedLocked() float64 {
	if m.session.StartTime.IsZero() {
		return 0
	}
	end := m.now()
	if !m.session.IsRunning && !m.stopped.IsZero() {
		end = m.stopped
	}
	return float64(end.Sub(m.session.StartTime)) / float64(time.Millisecond)
}

// Results recomputes the fused verdict from the current buffers. Callable
// anytime, including after Stop.
func (m *Monitor) Results() fusion.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsLocked()
}

func (m *Monitor) resultsLocked() fusion.Result {
	verdicts := map[telemetry.Channel]analyzer.Verdict{
		telemetry.ChannelMouse:     analyzer.AnalyzeMouse(m.store.Mouse, &m.cal),
		telemetry.ChannelKeyboard:  analyzer.AnalyzeKeyboard(m.store.Keys, &m.cal),
		telemetry.ChannelScroll:    analyzer.AnalyzeScroll(m.store.Scrolls, &m.cal),
		telemetry.ChannelTouch:     analyzer.AnalyzeTouch(m.store.Touches, &m.cal),
		telemetry.ChannelSensors:   analyzer.AnalyzeSensors(m.store.Sensors, &m.cal),
		telemetry.ChannelRendering: analyzer.AnalyzeRendering(m.store.Rendering, &m.cal),
	}
	return fusion.Fuse(verdicts, m.store.Counts(), m.elapsedLocked(), &m.cal)
}

// WaitForReady blocks until enough samples exist to analyze, the timeout
// elapses, or the session stops. Resolves false immediately when the
// session is not running.
func (m *Monitor) WaitForReady(timeout time.Duration) bool {
	m.mu.Lock()
	running := m.session.IsRunning
	m.mu.Unlock()
	if !running {
		return false
	}
	return m.tracker.Wait(timeout)
}

// Clear discards all collected samples and the persisted snapshot. A
// consumer wanting a clean session on the same instance calls this between
// Stop and Start.
func (m *Monitor) Clear() {
	m.mu.Lock()
	m.store.Clear()
	m.session = telemetry.Session{}
	m.stopped = time.Time{}
	m.pendingKeys = make(map[string]pendingKey)
	m.trustedEvents = 0
	m.genericEvents = 0
	m.mu.Unlock()

	if m.kvStore != nil {
		if err := m.kvStore.Remove(m.storageKey); err != nil {
			m.log.Debug("snapshot remove failed", "error", err)
		}
	}
}

// safeCall runs a consumer callback, discarding panics so they never
// interrupt ingestion or readiness bookkeeping.
func safeCall(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
