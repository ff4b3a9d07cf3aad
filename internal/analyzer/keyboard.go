package analyzer

import (
	"botsense/internal/calibration"
	"botsense/internal/telemetry"
)

// AnalyzeKeyboard scores a key press buffer.
//
// Low hold-time and inter-key variance point at scripted typing. Very high
// inter-key variance is the opposite: reading and thinking pauses, treated
// as negative evidence and subtracted from the score.
func AnalyzeKeyboard(samples []telemetry.KeySample, cfg *calibration.Config) Verdict {
	if len(samples) < 2 {
		return unavailable()
	}
	rules := &cfg.Keyboard

	holds := make([]float64, 0, len(samples))
	timestamps := make([]float64, 0, len(samples))
	untrusted := 0
	for _, s := range samples {
		holds = append(holds, s.HoldTimeMs)
		timestamps = append(timestamps, s.TimestampMs)
		if !s.Trusted {
			untrusted++
		}
	}
	intervals := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(timestamps); i++ {
		intervals = append(intervals, timestamps[i]-timestamps[i-1])
	}

	bursts := detectBursts(timestamps, rules.BurstWindowMs, rules.BurstMinSize)
	pasteBursts := 0
	for _, b := range bursts {
		if classifyBurstRate(b.rate, rules) >= burstPaste {
			pasteBursts++
		}
	}
	pasteRatio := 0.0
	if len(bursts) > 0 {
		pasteRatio = float64(pasteBursts) / float64(len(bursts))
	}

	metrics := map[string]float64{
		"hold_variance":     Variance(holds),
		"interkey_variance": Variance(intervals),
		"untrusted_ratio":   float64(untrusted) / float64(len(samples)),
		"burst_count":       float64(len(bursts)),
		"paste_burst_ratio": pasteRatio,
	}

	breakdown := map[string]Rule{
		"low_hold_variance": {
			Triggered: metrics["hold_variance"] < rules.LowHoldVarianceThreshold,
			Weight:    rules.LowHoldVarianceWeight,
			Value:     metrics["hold_variance"],
			Threshold: rules.LowHoldVarianceThreshold,
		},
		"low_interkey_variance": {
			Triggered: metrics["interkey_variance"] < rules.LowInterKeyVarianceThreshold,
			Weight:    rules.LowInterKeyVarianceWeight,
			Value:     metrics["interkey_variance"],
			Threshold: rules.LowInterKeyVarianceThreshold,
		},
		"untrusted_events": {
			Triggered: metrics["untrusted_ratio"] > rules.UntrustedRatioThreshold,
			Weight:    rules.UntrustedRatioWeight,
			Value:     metrics["untrusted_ratio"],
			Threshold: rules.UntrustedRatioThreshold,
		},
		"paste_bursts": {
			Triggered: pasteRatio > rules.PasteBurstRatio,
			Weight:    rules.PasteBurstWeight,
			Value:     pasteRatio,
			Threshold: rules.PasteBurstRatio,
		},
		RuleReadingPauses: {
			Triggered: metrics["interkey_variance"] > rules.HighInterKeyVarianceThreshold,
			Weight:    -rules.HighInterKeyVarianceRelief,
			Value:     metrics["interkey_variance"],
			Threshold: rules.HighInterKeyVarianceThreshold,
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
		Confidence: confidenceFor(len(samples), cfg.MinSamples[telemetry.ChannelKeyboard]),
		Metrics:    metrics,
		Breakdown:  breakdown,
	}
}

// burstClass orders input rate classes from slowest to fastest.
type burstClass int

const (
	burstHuman burstClass = iota
	burstFastTypist
	burstDictation
	burstAutocomplete
	burstPaste
)

type burst struct {
	count int
	rate  float64 // chars per second
}

// detectBursts groups key timestamps separated by at most windowMs into
// bursts and returns those reaching minSize.
func detectBursts(timestamps []float64, windowMs float64, minSize int) []burst {
	if len(timestamps) == 0 || windowMs <= 0 {
		return nil
	}
	var bursts []burst
	start := timestamps[0]
	count := 1
	flush := func(end float64) {
		if count >= minSize && minSize > 0 {
			dur := (end - start) / 1000
			if dur <= 0 {
				dur = 0.001
			}
			bursts = append(bursts, burst{count: count, rate: float64(count) / dur})
		}
	}
	for i := 1; i < len(timestamps); i++ {
		if timestamps[i]-timestamps[i-1] <= windowMs {
			count++
			continue
		}
		flush(timestamps[i-1])
		start = timestamps[i]
		count = 1
	}
	flush(timestamps[len(timestamps)-1])
	return bursts
}

// classifyBurstRate maps a chars/sec rate to its class.
func classifyBurstRate(rate float64, rules *calibration.KeyboardRules) burstClass {
	switch {
	case rate > rules.PasteRate:
		return burstPaste
	case rate > rules.DictationRate:
		return burstAutocomplete
	case rate > rules.FastTypistRate:
		return burstDictation
	case rate > rules.HumanRate:
		return burstFastTypist
	default:
		return burstHuman
	}
}
