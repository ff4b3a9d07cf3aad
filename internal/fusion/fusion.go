// Package fusion combines per-channel verdicts into one score, confidence
// and classification.
//
// The safeguard order is fixed: gate, corroborate, aggregate, downscale,
// rescue, discount, duration-gate. Later stages assume the earlier ones
// already ran; reordering them changes the meaning of every threshold.
package fusion

import (
	"botsense/internal/analyzer"
	"botsense/internal/calibration"
	"botsense/internal/telemetry"
)

// Class is the discrete verdict tier.
type Class string

const (
	ClassBot           Class = "BOT"
	ClassSuspicious    Class = "SUSPICIOUS"
	ClassLikelyHuman   Class = "LIKELY_HUMAN"
	ClassVerifiedHuman Class = "VERIFIED_HUMAN"

	// ClassError reports a misconfigured classification ladder instead of
	// crashing, so bad calibration is visible in output.
	ClassError Class = "ERROR"
)

// Metadata describes the session the verdict was computed over.
type Metadata struct {
	SampleCounts map[telemetry.Channel]int `json:"sample_counts"`
	DurationMs   float64                   `json:"duration_ms"`
}

// Result is the fused session verdict.
type Result struct {
	Channels   map[telemetry.Channel]analyzer.Verdict `json:"channels"`
	Score      float64                                `json:"score"`
	Confidence float64                                `json:"confidence"`
	Class      Class                                  `json:"classification"`
	Metadata   Metadata                               `json:"metadata"`
}

// Fuse runs the safeguard pipeline over the per-channel verdicts.
func Fuse(channels map[telemetry.Channel]analyzer.Verdict, counts map[telemetry.Channel]int, durationMs float64, cfg *calibration.Config) Result {
	sg := &cfg.Safeguards

	result := Result{
		Channels: channels,
		Metadata: Metadata{SampleCounts: counts, DurationMs: durationMs},
	}

	// 1. Confidence gate: too few samples to trust, regardless of score.
	gated := make(map[telemetry.Channel]analyzer.Verdict)
	for ch, v := range channels {
		if v.Available && v.Confidence >= sg.MinConfidenceGate {
			gated[ch] = v
		}
	}

	// 2. Corroboration count among behavioral channels. Sensors and the
	// rendering probe are excluded: neither carries enough signal to vouch
	// for another channel.
	corroborating := 0
	for ch, v := range gated {
		if ch == telemetry.ChannelSensors || ch == telemetry.ChannelRendering {
			continue
		}
		if v.Score >= sg.SuspiciousChannelThreshold {
			corroborating++
		}
	}

	// 3. Sensor gating: sensors alone can never start an escalation.
	nonSensorSuspicious := corroborating
	if v, ok := gated[telemetry.ChannelRendering]; ok && v.Score >= sg.SuspiciousChannelThreshold {
		nonSensorSuspicious++
	}
	if nonSensorSuspicious == 0 {
		delete(gated, telemetry.ChannelSensors)
	}

	// 4. Rendering decisiveness cap: when the probe is the only suspicious
	// channel its score cannot alone clear the bot threshold.
	if v, ok := gated[telemetry.ChannelRendering]; ok &&
		corroborating == 0 && v.Score >= sg.SuspiciousChannelThreshold && v.Score > sg.MaxChannelContribution {
		v.Score = sg.MaxChannelContribution
		gated[telemetry.ChannelRendering] = v
	}

	// 5. Confidence-weighted aggregation with per-channel contribution caps.
	var contribution, normalizer, weightSum float64
	for ch, v := range gated {
		w := cfg.ChannelWeights[ch]
		if w == 0 {
			continue
		}
		c := v.Score * v.Confidence * w
		if limit := sg.MaxChannelContribution * w; c > limit {
			c = limit
		}
		contribution += c
		normalizer += v.Confidence * w
		weightSum += w
	}
	score := 0.0
	if normalizer > 0 {
		score = contribution / normalizer
	}
	if weightSum > 0 {
		result.Confidence = normalizer / weightSum
	}

	// 6. Single-channel downscale: a bot-level aggregate without
	// corroboration is reduced, not trusted.
	if corroborating < sg.MinSuspiciousChannels && score >= sg.BotThreshold {
		score *= sg.SingleChannelDownscale
	}

	// 7. Multi-channel rescue: cheap bots that interleave action types
	// dilute every per-channel score. Several weak behavioral signals with
	// no sophisticated signature get boosted back up to the rescue cap.
	weak := 0
	for ch, v := range gated {
		if ch == telemetry.ChannelSensors {
			continue
		}
		if v.Score > sg.RescueThreshold {
			weak++
		}
	}
	smoothSignature := channels[telemetry.ChannelMouse].Triggered(analyzer.RuleSmoothCurvature)
	if weak >= sg.RescueMinChannels && !smoothSignature && score < sg.RescueCap {
		score *= sg.RescueMultiplier
		if score > sg.RescueCap {
			score = sg.RescueCap
		}
	}

	// 8. Sophistication discount: weak mouse evidence outweighed by human
	// pause patterns on both keyboard and scroll. Some automation-tool
	// residue leaked through, but the session was human-paced.
	mouse, mouseOK := gated[telemetry.ChannelMouse]
	if mouseOK && mouse.Score > 0 && mouse.Score < sg.SophisticationMouseMax &&
		channels[telemetry.ChannelKeyboard].Triggered(analyzer.RuleReadingPauses) &&
		channels[telemetry.ChannelScroll].Triggered(analyzer.RuleReadingPauses) {
		score *= sg.SophisticationDiscount
	}

	// 9. Session-duration gating: detection needs accumulated behavior.
	if durationMs < sg.MinSessionMs {
		score = 0
	} else if durationMs < sg.ShortSessionMs && score > sg.ShortSessionCap {
		score = sg.ShortSessionCap
	}

	if score > 1 {
		score = 1
	}
	result.Score = score
	result.Class = Classify(score, sg)
	return result
}

// Classify maps a score to its tier. A non-descending threshold ladder is a
// configuration fault and reported as ClassError.
func Classify(score float64, sg *calibration.Safeguards) Class {
	if !(sg.BotThreshold > sg.SuspiciousThreshold && sg.SuspiciousThreshold > sg.LikelyHumanThreshold) {
		return ClassError
	}
	switch {
	case score >= sg.BotThreshold:
		return ClassBot
	case score >= sg.SuspiciousThreshold:
		return ClassSuspicious
	case score >= sg.LikelyHumanThreshold:
		return ClassLikelyHuman
	default:
		return ClassVerifiedHuman
	}
}
