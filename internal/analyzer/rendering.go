package analyzer

import (
	"math"

	"botsense/internal/calibration"
	"botsense/internal/telemetry"
)

// AnalyzeRendering scores the one-shot rendering latency probe. Compiling
// even a trivial shader takes real time on real hardware: implausibly fast
// means a stubbed or virtualized backend, implausibly slow means software
// emulation, and an exactly round duration means a mocked timing API.
func AnalyzeRendering(timing *telemetry.RenderTiming, cfg *calibration.Config) Verdict {
	if timing == nil {
		return unavailable()
	}
	rules := &cfg.Rendering
	d := timing.DurationMs

	metrics := map[string]float64{"duration_ms": d}

	breakdown := map[string]Rule{
		"implausibly_fast": {
			Triggered: d < rules.FastMs,
			Weight:    rules.FastWeight,
			Value:     d,
			Threshold: rules.FastMs,
		},
		"implausibly_slow": {
			Triggered: d > rules.SlowMs,
			Weight:    rules.SlowWeight,
			Value:     d,
			Threshold: rules.SlowMs,
		},
		"round_duration": {
			Triggered: d > 0 && d == math.Trunc(d),
			Weight:    rules.RoundWeight,
			Value:     d,
			Threshold: 0,
		},
	}

	score := 0.0
	for _, r := range breakdown {
		if r.Triggered {
			score += r.Weight
		}
	}

	return Verdict{
		Available:  true,
		Score:      clamp01(score),
		Confidence: confidenceFor(1, cfg.MinSamples[telemetry.ChannelRendering]),
		Metrics:    metrics,
		Breakdown:  breakdown,
	}
}
