package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botsense/internal/calibration"
	"botsense/internal/telemetry"
)

// typeAt builds a key buffer from explicit press timestamps.
func typeAt(timestamps []float64, holdMs float64, trusted bool) []telemetry.KeySample {
	samples := make([]telemetry.KeySample, len(timestamps))
	for i, ts := range timestamps {
		samples[i] = telemetry.KeySample{
			TimestampMs: ts,
			Key:         "x",
			HoldTimeMs:  holdMs,
			Trusted:     trusted,
		}
	}
	return samples
}

// humanTyping produces irregular press intervals and hold times.
func humanTyping(n int) []telemetry.KeySample {
	noise := &chaosNoise{state: 5.0}
	samples := make([]telemetry.KeySample, n)
	t := 0.0
	for i := 0; i < n; i++ {
		t += 130 + noise.next()*250
		samples[i] = telemetry.KeySample{
			TimestampMs: t,
			Key:         "x",
			HoldTimeMs:  60 + noise.next()*50,
			Trusted:     true,
		}
	}
	return samples
}

func TestAnalyzeKeyboard_InsufficientSamples(t *testing.T) {
	cfg := calibration.Defaults()
	v := AnalyzeKeyboard(nil, &cfg)
	assert.False(t, v.Available)
	v = AnalyzeKeyboard(humanTyping(1), &cfg)
	assert.False(t, v.Available)
}

func TestAnalyzeKeyboard_RoboticCadence(t *testing.T) {
	cfg := calibration.Defaults()

	// Identical holds on an exact 50ms metronome.
	timestamps := make([]float64, 30)
	for i := range timestamps {
		timestamps[i] = float64(i) * 50
	}
	v := AnalyzeKeyboard(typeAt(timestamps, 10, true), &cfg)

	require.True(t, v.Available)
	assert.True(t, v.Triggered("low_hold_variance"))
	assert.True(t, v.Triggered("low_interkey_variance"))
	assert.False(t, v.Triggered("untrusted_events"))
	assert.InDelta(t, 0.70, v.Score, 1e-9)
}

func TestAnalyzeKeyboard_HumanCadence(t *testing.T) {
	cfg := calibration.Defaults()
	v := AnalyzeKeyboard(humanTyping(30), &cfg)

	require.True(t, v.Available)
	assert.False(t, v.Triggered("low_hold_variance"))
	assert.False(t, v.Triggered("low_interkey_variance"))
	assert.False(t, v.Triggered("untrusted_events"))
	assert.Zero(t, v.Score)
}

func TestAnalyzeKeyboard_UntrustedEvents(t *testing.T) {
	cfg := calibration.Defaults()
	samples := humanTyping(20)
	for i := range samples {
		samples[i].Trusted = false
	}
	v := AnalyzeKeyboard(samples, &cfg)

	assert.True(t, v.Triggered("untrusted_events"))
	assert.Equal(t, 1.0, v.Metrics["untrusted_ratio"])
}

// Reading pauses are negative evidence: they pull the score back down even
// when hold times look mechanical.
func TestAnalyzeKeyboard_ReadingPausesRelief(t *testing.T) {
	cfg := calibration.Defaults()
	timestamps := make([]float64, 20)
	t0 := 0.0
	for i := range timestamps {
		if i%2 == 0 {
			t0 += 150
		} else {
			t0 += 8000
		}
		timestamps[i] = t0
	}
	v := AnalyzeKeyboard(typeAt(timestamps, 80, true), &cfg)

	require.True(t, v.Available)
	assert.True(t, v.Triggered("low_hold_variance"))
	assert.True(t, v.Triggered(RuleReadingPauses))
	assert.InDelta(t, 0.05, v.Score, 1e-9)
}

func TestAnalyzeKeyboard_PasteBursts(t *testing.T) {
	cfg := calibration.Defaults()
	var timestamps []float64
	t0 := 0.0

	// Two paste-speed bursts and one slow deliberate one.
	for b := 0; b < 2; b++ {
		for i := 0; i < 12; i++ {
			timestamps = append(timestamps, t0)
			t0++
		}
		t0 += 2000
	}
	for i := 0; i < 6; i++ {
		timestamps = append(timestamps, t0)
		t0 += 100
	}

	v := AnalyzeKeyboard(typeAt(timestamps, 40, true), &cfg)

	require.True(t, v.Available)
	assert.Equal(t, 3.0, v.Metrics["burst_count"])
	assert.InDelta(t, 2.0/3.0, v.Metrics["paste_burst_ratio"], 1e-9)
	assert.True(t, v.Triggered("paste_bursts"))
}

// =============================================================================
// Burst detection internals
// =============================================================================

func TestDetectBursts(t *testing.T) {
	// Five keys inside 10ms form one burst at paste speed.
	fast := []float64{0, 2.5, 5, 7.5, 10}
	bursts := detectBursts(fast, 150, 5)
	require.Len(t, bursts, 1)
	assert.Equal(t, 5, bursts[0].count)
	assert.Greater(t, bursts[0].rate, 200.0)

	// The same five keys spread over a second never bunch up.
	slow := []float64{0, 250, 500, 750, 1000}
	assert.Empty(t, detectBursts(slow, 150, 5))

	assert.Empty(t, detectBursts(nil, 150, 5))
}

func TestClassifyBurstRate(t *testing.T) {
	cfg := calibration.Defaults()
	rules := &cfg.Keyboard

	tests := []struct {
		rate float64
		want burstClass
	}{
		{5, burstHuman},
		{12, burstHuman},
		{20, burstFastTypist},
		{30, burstDictation},
		{60, burstAutocomplete},
		{250, burstPaste},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyBurstRate(tt.rate, rules), "rate %v", tt.rate)
	}
}
