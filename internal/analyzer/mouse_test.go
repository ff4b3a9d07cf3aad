package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botsense/internal/calibration"
	"botsense/internal/telemetry"
)

// Synthetic path generators

// chaosNoise is a deterministic pseudo-random source so path tests stay
// reproducible without seeding math/rand.
type chaosNoise struct{ state float64 }

func (c *chaosNoise) next() float64 {
	c.state = math.Mod(c.state*73.13+17.77, 31)
	return c.state / 31
}

// linearBotPath moves diagonally in identical steps on a fixed clock: the
// naive automation signature.
func linearBotPath(n int) []telemetry.MouseSample {
	samples := make([]telemetry.MouseSample, n)
	for i := 0; i < n; i++ {
		samples[i] = telemetry.MouseSample{
			TimestampMs: float64(i) * 16,
			X:           float64(i) * 10,
			Y:           float64(i) * 10,
		}
	}
	return samples
}

// humanLikePath wanders with bursty step sizes and skewed, irregular
// inter-sample intervals.
func humanLikePath(n int) []telemetry.MouseSample {
	noise := &chaosNoise{state: 3.0}
	samples := make([]telemetry.MouseSample, 0, n)
	t, x, y := 0.0, 200.0, 200.0
	for i := 0; i < n; i++ {
		dt := noise.next()
		t += 9 + 85*dt*dt
		j := noise.next()
		x += (noise.next()*2-1)*40*j + 4
		y += (noise.next()*2-1)*36*j + 3
		samples = append(samples, telemetry.MouseSample{TimestampMs: t, X: x, Y: y})
	}
	return samples
}

// =============================================================================
// Availability and basic scoring
// =============================================================================

func TestAnalyzeMouse_InsufficientSamples(t *testing.T) {
	cfg := calibration.Defaults()
	v := AnalyzeMouse(nil, &cfg)
	assert.False(t, v.Available)
	assert.Zero(t, v.Score)
	assert.Zero(t, v.Confidence)

	v = AnalyzeMouse([]telemetry.MouseSample{{X: 1, Y: 1}}, &cfg)
	assert.False(t, v.Available)
}

func TestAnalyzeMouse_LinearBot(t *testing.T) {
	cfg := calibration.Defaults()
	v := AnalyzeMouse(linearBotPath(30), &cfg)

	require.True(t, v.Available)
	assert.Greater(t, v.Metrics["efficiency"], 0.99)
	assert.True(t, v.Triggered(RuleStraightLines))
	assert.True(t, v.Triggered(RuleConstantTiming))
	assert.True(t, v.Triggered(RuleLowTimingVariance))
	assert.True(t, v.Triggered("efficiency"))
	assert.True(t, v.Triggered("sub_pattern"))
	assert.True(t, v.Triggered("timestamp_entropy"))

	// Several naive tells at once pins the score to the ceiling.
	assert.Equal(t, 1.0, v.Score)
	assert.Equal(t, 1.0, v.Confidence)
}

func TestAnalyzeMouse_HumanPath(t *testing.T) {
	cfg := calibration.Defaults()
	v := AnalyzeMouse(humanLikePath(40), &cfg)

	require.True(t, v.Available)
	assert.Less(t, v.Score, 0.2)
	assert.False(t, v.Triggered(RuleStraightLines))
	assert.False(t, v.Triggered(RuleConstantTiming))
	assert.False(t, v.Triggered("efficiency"))
	assert.False(t, v.Triggered("sub_pattern"))
	assert.Less(t, v.Metrics["efficiency"], 0.95)
}

func TestAnalyzeMouse_ConfidenceScalesWithSamples(t *testing.T) {
	cfg := calibration.Defaults()

	few := AnalyzeMouse(humanLikePath(10), &cfg)
	full := AnalyzeMouse(humanLikePath(40), &cfg)

	// 10 of the 20 required samples.
	assert.InDelta(t, 0.5, few.Confidence, 1e-9)
	assert.Equal(t, 1.0, full.Confidence)
}

// =============================================================================
// Adversarial variants
// =============================================================================

// A bot that adds sinusoidal jitter on top of linear motion defeats the
// straightness detectors but lights up the periodic-noise residual check.
func TestAnalyzeMouse_JitteredBotStillCaught(t *testing.T) {
	cfg := calibration.Defaults()
	samples := make([]telemetry.MouseSample, 60)
	for i := range samples {
		phase := 2 * math.Pi * float64(i) / 8
		samples[i] = telemetry.MouseSample{
			TimestampMs: float64(i) * 20,
			X:           float64(i)*5 + 3*math.Sin(phase),
			Y:           float64(i)*5 + 3*math.Cos(phase),
		}
	}
	v := AnalyzeMouse(samples, &cfg)

	require.True(t, v.Available)
	assert.True(t, v.Triggered("periodic_noise"))
	assert.True(t, v.Triggered(RuleConstantTiming))
	assert.GreaterOrEqual(t, v.Score, 0.5)
}

func TestAnalyzeMouse_PointerTypeSwitchFlagged(t *testing.T) {
	cfg := calibration.Defaults()
	samples := humanLikePath(40)
	for i := range samples {
		samples[i].PointerType = "mouse"
	}
	samples[25].PointerType = "touch"

	v := AnalyzeMouse(samples, &cfg)
	require.True(t, v.Available)
	assert.True(t, v.Triggered("pointer_fingerprint"))
}

func TestAnalyzeMouse_MissingPressureOnLargeBuffer(t *testing.T) {
	cfg := calibration.Defaults()

	// Below the pressure floor nothing fires.
	v := AnalyzeMouse(humanLikePath(40), &cfg)
	assert.False(t, v.Triggered("pressure"))

	// A large buffer with no pressure anywhere does.
	v = AnalyzeMouse(humanLikePath(60), &cfg)
	assert.True(t, v.Triggered("pressure"))

	// The same buffer with varying pressure reads as real hardware.
	noise := &chaosNoise{state: 9.0}
	samples := humanLikePath(60)
	for i := range samples {
		samples[i].HasPressure = true
		samples[i].Pressure = 0.3 + noise.next()*0.4
	}
	v = AnalyzeMouse(samples, &cfg)
	assert.False(t, v.Triggered("pressure"))
}

// =============================================================================
// Path helpers
// =============================================================================

func TestSubPatternRatio(t *testing.T) {
	// Multiples of 16ms within a scripted-delay family.
	assert.Equal(t, 1.0, subPatternRatio([]float64{16, 32, 48, 16.5}))

	// Off-grid intervals.
	assert.Equal(t, 0.0, subPatternRatio([]float64{13.4, 27.6, 42.9}))

	assert.Equal(t, 0.0, subPatternRatio(nil))
}

func TestMousePath_Efficiency(t *testing.T) {
	// Out-and-back path covers distance but ends near the start.
	samples := []telemetry.MouseSample{
		{TimestampMs: 0, X: 0, Y: 0},
		{TimestampMs: 20, X: 100, Y: 0},
		{TimestampMs: 40, X: 10, Y: 0},
	}
	p := newMousePath(samples)
	assert.InDelta(t, 10.0/190.0, p.efficiency(), 1e-9)
}
