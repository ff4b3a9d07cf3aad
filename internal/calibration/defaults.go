package calibration

import "botsense/internal/telemetry"

// Defaults returns the built-in calibration.
//
// Values come from iterative calibration runs against recorded human and
// scripted sessions; see the calibration-data export for the reference
// ranges they were tuned against.
func Defaults() Config {
	return Config{
		ChannelWeights: map[telemetry.Channel]float64{
			telemetry.ChannelMouse:     1.0,
			telemetry.ChannelKeyboard:  0.9,
			telemetry.ChannelScroll:    0.7,
			telemetry.ChannelTouch:     0.7,
			telemetry.ChannelSensors:   0.4,
			telemetry.ChannelRendering: 0.5,
		},
		MinSamples: map[telemetry.Channel]int{
			telemetry.ChannelMouse:     20,
			telemetry.ChannelKeyboard:  8,
			telemetry.ChannelScroll:    6,
			telemetry.ChannelTouch:     6,
			telemetry.ChannelSensors:   10,
			telemetry.ChannelRendering: 1,
		},
		Mouse: MouseRules{
			StraightLineRatioThreshold: 0.80,
			StraightLineWeight:         0.30,

			EfficiencyThreshold: 0.95,
			EfficiencyWeight:    0.20,

			LowVelocityVarianceThreshold: 0.05,
			LowVelocityVarianceWeight:    0.15,
			LowAccelVarianceThreshold:    0.02,

			LowTimingVarianceThreshold: 2.0,
			LowTimingVarianceWeight:    0.15,

			ConstantTimingCV:     0.08,
			ConstantTimingWeight: 0.25,

			SubPatternMatchRatio: 0.70,
			SubPatternWeight:     0.25,

			SmoothCurvatureCV:     0.50,
			SmoothCurvatureWeight: 0.30,

			PressureMinSamples: 50,
			PressureWeight:     0.15,

			TimestampEntropyThreshold: 0.50,
			TimestampEntropyWeight:    0.20,

			FingerprintMinSamples: 100,
			FingerprintWeight:     0.15,

			PeriodicNoiseThreshold: 0.60,
			PeriodicNoiseWeight:    0.25,

			NaiveBoost: 1.4,
		},
		Keyboard: KeyboardRules{
			LowHoldVarianceThreshold: 4.0,
			LowHoldVarianceWeight:    0.35,

			LowInterKeyVarianceThreshold: 60.0,
			LowInterKeyVarianceWeight:    0.35,

			UntrustedRatioThreshold: 0.20,
			UntrustedRatioWeight:    0.40,

			HighInterKeyVarianceThreshold: 4.0e6,
			HighInterKeyVarianceRelief:    0.30,

			BurstWindowMs:    150,
			BurstMinSize:     5,
			PasteBurstRatio:  0.30,
			PasteBurstWeight: 0.25,
			HumanRate:        12,
			FastTypistRate:   25,
			DictationRate:    50,
			PasteRate:        200,
		},
		Scroll: ScrollRules{
			LowDeltaVarianceThreshold:  1.0,
			LowDeltaVarianceWeight:     0.30,
			HighDeltaVarianceThreshold: 2.5e5,
			HighDeltaVarianceWeight:    0.20,

			DistinctDeltaRatioThreshold: 0.15,
			DistinctDeltaRatioWeight:    0.20,

			EventRateThreshold: 40,
			EventRateWeight:    0.25,

			HighIntervalVarianceThreshold: 4.0e6,
			HighIntervalVarianceRelief:    0.25,
		},
		Touch: TouchRules{
			LowForceVarianceThreshold:  1e-4,
			LowForceVarianceWeight:     0.30,
			HighForceVarianceThreshold: 0.2,
			HighForceVarianceWeight:    0.20,

			LowRadiusVarianceThreshold: 1e-3,
			LowRadiusVarianceWeight:    0.25,

			EventRateThreshold: 60,
			EventRateWeight:    0.25,
		},
		Sensors: SensorRules{
			VarianceFloor:   1e-4,
			StillWeight:     0.8,
			FixedConfidence: 0.5,
		},
		Rendering: RenderingRules{
			FastMs:      0.1,
			FastWeight:  0.6,
			SlowMs:      100,
			SlowWeight:  0.4,
			RoundWeight: 0.3,
		},
		Safeguards: Safeguards{
			MinConfidenceGate:          0.25,
			SuspiciousChannelThreshold: 0.50,
			MinSuspiciousChannels:      2,
			MaxChannelContribution:     0.85,
			SingleChannelDownscale:     0.60,

			RescueThreshold:   0.28,
			RescueMinChannels: 2,
			RescueMultiplier:  1.35,
			RescueCap:         0.68,

			SophisticationMouseMax: 0.45,
			SophisticationDiscount: 0.55,

			MinSessionMs:    3000,
			ShortSessionMs:  8000,
			ShortSessionCap: 0.50,

			BotThreshold:         0.70,
			SuspiciousThreshold:  0.45,
			LikelyHumanThreshold: 0.20,
		},
	}
}
