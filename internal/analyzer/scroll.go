package analyzer

import (
	"math"

	"botsense/internal/calibration"
	"botsense/internal/telemetry"
)

// AnalyzeScroll scores a scroll buffer.
//
// Both extremes of delta variance are suspicious: near-zero means a
// repetitive scripted pattern, very high means artificially erratic motion.
// Very high interval variance is a human reading pause and subtracts.
func AnalyzeScroll(samples []telemetry.ScrollSample, cfg *calibration.Config) Verdict {
	if len(samples) < 2 {
		return unavailable()
	}
	rules := &cfg.Scroll

	deltas := make([]float64, 0, len(samples)-1)
	intervals := make([]float64, 0, len(samples)-1)
	distinct := make(map[float64]struct{})
	for i := 1; i < len(samples); i++ {
		d := math.Hypot(samples[i].ScrollX-samples[i-1].ScrollX, samples[i].ScrollY-samples[i-1].ScrollY)
		deltas = append(deltas, d)
		distinct[d] = struct{}{}
		intervals = append(intervals, samples[i].TimestampMs-samples[i-1].TimestampMs)
	}

	spanMs := samples[len(samples)-1].TimestampMs - samples[0].TimestampMs
	eventsPerSec := 0.0
	if spanMs > 0 {
		eventsPerSec = float64(len(samples)) / (spanMs / 1000)
	}

	metrics := map[string]float64{
		"delta_variance":       Variance(deltas),
		"interval_variance":    Variance(intervals),
		"distinct_delta_ratio": float64(len(distinct)) / float64(len(deltas)),
		"events_per_sec":       eventsPerSec,
	}

	breakdown := map[string]Rule{
		"low_delta_variance": {
			Triggered: metrics["delta_variance"] < rules.LowDeltaVarianceThreshold,
			Weight:    rules.LowDeltaVarianceWeight,
			Value:     metrics["delta_variance"],
			Threshold: rules.LowDeltaVarianceThreshold,
		},
		"high_delta_variance": {
			Triggered: metrics["delta_variance"] > rules.HighDeltaVarianceThreshold,
			Weight:    rules.HighDeltaVarianceWeight,
			Value:     metrics["delta_variance"],
			Threshold: rules.HighDeltaVarianceThreshold,
		},
		"repeated_deltas": {
			Triggered: metrics["distinct_delta_ratio"] < rules.DistinctDeltaRatioThreshold,
			Weight:    rules.DistinctDeltaRatioWeight,
			Value:     metrics["distinct_delta_ratio"],
			Threshold: rules.DistinctDeltaRatioThreshold,
		},
		"event_rate": {
			Triggered: eventsPerSec > rules.EventRateThreshold,
			Weight:    rules.EventRateWeight,
			Value:     eventsPerSec,
			Threshold: rules.EventRateThreshold,
		},
		RuleReadingPauses: {
			Triggered: metrics["interval_variance"] > rules.HighIntervalVarianceThreshold,
			Weight:    -rules.HighIntervalVarianceRelief,
			Value:     metrics["interval_variance"],
			Threshold: rules.HighIntervalVarianceThreshold,
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
		Confidence: confidenceFor(len(samples), cfg.MinSamples[telemetry.ChannelScroll]),
		Metrics:    metrics,
		Breakdown:  breakdown,
	}
}
