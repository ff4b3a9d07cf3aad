package analyzer

import (
	"botsense/internal/calibration"
	"botsense/internal/telemetry"
)

// AnalyzeTouch scores a touch contact buffer using contact force and radius
// variance plus event rate. Real fingers never press with perfectly constant
// force; synthetic drivers rarely vary it at all.
func AnalyzeTouch(samples []telemetry.TouchSample, cfg *calibration.Config) Verdict {
	if len(samples) < 2 {
		return unavailable()
	}
	rules := &cfg.Touch

	forces := make([]float64, 0, len(samples))
	radii := make([]float64, 0, len(samples))
	for _, s := range samples {
		forces = append(forces, s.Force)
		radii = append(radii, (s.RadiusX+s.RadiusY)/2)
	}

	spanMs := samples[len(samples)-1].TimestampMs - samples[0].TimestampMs
	eventsPerSec := 0.0
	if spanMs > 0 {
		eventsPerSec = float64(len(samples)) / (spanMs / 1000)
	}

	metrics := map[string]float64{
		"force_variance":  Variance(forces),
		"radius_variance": Variance(radii),
		"events_per_sec":  eventsPerSec,
	}

	breakdown := map[string]Rule{
		"low_force_variance": {
			Triggered: metrics["force_variance"] < rules.LowForceVarianceThreshold,
			Weight:    rules.LowForceVarianceWeight,
			Value:     metrics["force_variance"],
			Threshold: rules.LowForceVarianceThreshold,
		},
		"high_force_variance": {
			Triggered: metrics["force_variance"] > rules.HighForceVarianceThreshold,
			Weight:    rules.HighForceVarianceWeight,
			Value:     metrics["force_variance"],
			Threshold: rules.HighForceVarianceThreshold,
		},
		"low_radius_variance": {
			Triggered: metrics["radius_variance"] < rules.LowRadiusVarianceThreshold,
			Weight:    rules.LowRadiusVarianceWeight,
			Value:     metrics["radius_variance"],
			Threshold: rules.LowRadiusVarianceThreshold,
		},
		"event_rate": {
			Triggered: eventsPerSec > rules.EventRateThreshold,
			Weight:    rules.EventRateWeight,
			Value:     eventsPerSec,
			Threshold: rules.EventRateThreshold,
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
		Confidence: confidenceFor(len(samples), cfg.MinSamples[telemetry.ChannelTouch]),
		Metrics:    metrics,
		Breakdown:  breakdown,
	}
}
