package monitor

import (
	"botsense/internal/persist"
	"botsense/internal/telemetry"
)

// RecordPointerMove ingests one pointer movement sample.
func (m *Monitor) RecordPointerMove(s telemetry.MouseSample) {
	m.record(telemetry.ChannelMouse, func() { m.store.AddMouse(s) })
}

// RecordKeyDown marks a key as pressed. The sample is completed and stored
// when the matching RecordKeyUp arrives.
func (m *Monitor) RecordKeyDown(key string, timestampMs float64, trusted bool) {
	m.mu.Lock()
	if m.session.IsRunning {
		m.pendingKeys[key] = pendingKey{downMs: timestampMs, trusted: trusted}
	}
	m.mu.Unlock()
}

// RecordKeyUp completes a pending key press. An up without a matching down
// (focus moved mid-press) is dropped.
func (m *Monitor) RecordKeyUp(key string, timestampMs float64) {
	m.mu.Lock()
	pending, ok := m.pendingKeys[key]
	if !ok || !m.session.IsRunning {
		m.mu.Unlock()
		return
	}
	delete(m.pendingKeys, key)
	m.mu.Unlock()

	m.record(telemetry.ChannelKeyboard, func() {
		m.store.AddKey(telemetry.KeySample{
			TimestampMs: pending.downMs,
			Key:         key,
			HoldTimeMs:  timestampMs - pending.downMs,
			Trusted:     pending.trusted,
		})
	})
}

// RecordScroll ingests one scroll sample with absolute offsets.
func (m *Monitor) RecordScroll(s telemetry.ScrollSample) {
	m.record(telemetry.ChannelScroll, func() { m.store.AddScroll(s) })
}

// RecordTouchStart ingests a touch contact beginning.
func (m *Monitor) RecordTouchStart(s telemetry.TouchSample) {
	m.record(telemetry.ChannelTouch, func() { m.store.AddTouch(s) })
}

// RecordTouchMove ingests a touch contact movement.
func (m *Monitor) RecordTouchMove(s telemetry.TouchSample) {
	m.record(telemetry.ChannelTouch, func() { m.store.AddTouch(s) })
}

// RecordMotion ingests one ambient motion reading.
func (m *Monitor) RecordMotion(s telemetry.SensorSample) {
	m.record(telemetry.ChannelSensors, func() { m.store.AddSensor(s) })
}

// RecordTrustedEvent tracks the trust flag of a generic collector event.
// The running untrusted ratio surfaces in the calibration export.
func (m *Monitor) RecordTrustedEvent(trusted bool) {
	m.mu.Lock()
	if m.session.IsRunning {
		m.genericEvents++
		if trusted {
			m.trustedEvents++
		}
	}
	m.mu.Unlock()
}

// SetRenderTiming records the rendering probe result.
func (m *Monitor) SetRenderTiming(t telemetry.RenderTiming) {
	m.record(telemetry.ChannelRendering, func() { m.store.SetRendering(t) })
}

// record appends a sample under the lock, then drives readiness,
// persistence and the sample callback.
func (m *Monitor) record(ch telemetry.Channel, add func()) {
	m.mu.Lock()
	if !m.session.IsRunning || !m.channelEnabled(ch) {
		m.mu.Unlock()
		return
	}
	add()
	counts := m.store.Counts()
	m.mu.Unlock()

	m.tracker.Observe(counts)
	if m.saver != nil {
		m.saver.Schedule()
	}
	if m.onSample != nil {
		onSample := m.onSample
		safeCall(func() { onSample(ch) })
	}
}

func (m *Monitor) channelEnabled(ch telemetry.Channel) bool {
	for _, e := range m.enabled {
		if e == ch {
			return true
		}
	}
	return false
}

// snapshot persists the current buffers. Best effort: failures are logged
// at debug and otherwise swallowed.
func (m *Monitor) snapshot() {
	m.mu.Lock()
	blob, err := persist.Encode(m.session.StartTime, m.store)
	m.mu.Unlock()
	if err != nil {
		m.log.Debug("snapshot encode failed", "error", err)
		return
	}
	if err := m.kvStore.Set(m.storageKey, blob); err != nil {
		m.log.Debug("snapshot write failed", "error", err)
	}
}

// restore loads a persisted snapshot if one exists and is intact.
func (m *Monitor) restore() {
	blob, ok, err := m.kvStore.Get(m.storageKey)
	if err != nil || !ok {
		return
	}
	start, store, err := persist.Decode(blob)
	if err != nil {
		m.log.Debug("snapshot unusable, starting fresh", "error", err)
		return
	}
	m.mu.Lock()
	m.store = store
	m.session.StartTime = start
	m.mu.Unlock()
	m.log.Info("session restored", "samples", store.Counts())
}
