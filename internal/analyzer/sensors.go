package analyzer

import (
	"botsense/internal/calibration"
	"botsense/internal/telemetry"
)

// AnalyzeSensors scores ambient motion readings. Real accelerometers carry
// thermal noise even on a desk; near-zero variance across every axis means
// the readings are synthesized. Confidence is fixed: the channel is noisy
// and permission-gated, so sample count says little about trust.
func AnalyzeSensors(samples []telemetry.SensorSample, cfg *calibration.Config) Verdict {
	if len(samples) == 0 {
		return unavailable()
	}
	rules := &cfg.Sensors

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	zs := make([]float64, len(samples))
	for i, s := range samples {
		xs[i], ys[i], zs[i] = s.X, s.Y, s.Z
	}

	metrics := map[string]float64{
		"x_variance": Variance(xs),
		"y_variance": Variance(ys),
		"z_variance": Variance(zs),
	}

	still := metrics["x_variance"] < rules.VarianceFloor &&
		metrics["y_variance"] < rules.VarianceFloor &&
		metrics["z_variance"] < rules.VarianceFloor

	breakdown := map[string]Rule{
		"dead_sensors": {
			Triggered: still,
			Weight:    rules.StillWeight,
			Value:     metrics["x_variance"] + metrics["y_variance"] + metrics["z_variance"],
			Threshold: rules.VarianceFloor,
		},
	}

	score := 0.0
	if still {
		score = rules.StillWeight
	}

	return Verdict{
		Available:  true,
		Score:      clamp01(score),
		Confidence: rules.FixedConfidence,
		Metrics:    metrics,
		Breakdown:  breakdown,
	}
}
