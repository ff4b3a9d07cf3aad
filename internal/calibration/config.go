// Package calibration defines the weight and threshold configuration
// consumed by the channel analyzers and the fusion engine.
//
// A Config is built once, validated, and treated as immutable for the life
// of a monitor instance. Numeric values here are a starting calibration
// derived from recorded sessions, not load-bearing constants; they are meant
// to be tuned per deployment from the calibration-data export.
package calibration

import "botsense/internal/telemetry"

// Config is the complete calibration for one monitor instance.
type Config struct {
	// ChannelWeights scales each channel's contribution during fusion.
	// Weights need not sum to 1; fusion normalizes by confidence-weighted
	// totals.
	ChannelWeights map[telemetry.Channel]float64 `toml:"channel_weights" json:"channel_weights"`

	// MinSamples is the per-channel sample count at which a channel reaches
	// full confidence, and the readiness minimum for that channel.
	MinSamples map[telemetry.Channel]int `toml:"min_samples" json:"min_samples"`

	Mouse     MouseRules     `toml:"mouse" json:"mouse"`
	Keyboard  KeyboardRules  `toml:"keyboard" json:"keyboard"`
	Scroll    ScrollRules    `toml:"scroll" json:"scroll"`
	Touch     TouchRules     `toml:"touch" json:"touch"`
	Sensors   SensorRules    `toml:"sensors" json:"sensors"`
	Rendering RenderingRules `toml:"rendering" json:"rendering"`

	Safeguards Safeguards `toml:"safeguards" json:"safeguards"`
}

// MouseRules holds thresholds and rule weights for the pointer analyzer.
type MouseRules struct {
	// StraightLineRatioThreshold flags paths dominated by axis-aligned or
	// collinear segments.
	StraightLineRatioThreshold float64 `toml:"straight_line_ratio_threshold" json:"straight_line_ratio_threshold"`
	StraightLineWeight         float64 `toml:"straight_line_weight" json:"straight_line_weight"`

	// EfficiencyThreshold flags near-perfect point-to-point paths.
	// Humans land between roughly 0.3 and 0.85.
	EfficiencyThreshold float64 `toml:"efficiency_threshold" json:"efficiency_threshold"`
	EfficiencyWeight    float64 `toml:"efficiency_weight" json:"efficiency_weight"`

	// Low velocity variance needs corroboration from low acceleration
	// variance or the sub-pattern detector before it scores; slow careful
	// humans trip it alone.
	LowVelocityVarianceThreshold float64 `toml:"low_velocity_variance_threshold" json:"low_velocity_variance_threshold"`
	LowVelocityVarianceWeight    float64 `toml:"low_velocity_variance_weight" json:"low_velocity_variance_weight"`
	LowAccelVarianceThreshold    float64 `toml:"low_accel_variance_threshold" json:"low_accel_variance_threshold"`

	LowTimingVarianceThreshold float64 `toml:"low_timing_variance_threshold" json:"low_timing_variance_threshold"`
	LowTimingVarianceWeight    float64 `toml:"low_timing_variance_weight" json:"low_timing_variance_weight"`

	// ConstantTimingCV is the coefficient-of-variation floor for inter-event
	// intervals. Catches fixed-delay drivers regardless of absolute speed.
	ConstantTimingCV     float64 `toml:"constant_timing_cv" json:"constant_timing_cv"`
	ConstantTimingWeight float64 `toml:"constant_timing_weight" json:"constant_timing_weight"`

	// SubPatternMatchRatio is the fraction of intervals within 1ms of a
	// common scripted delay (10/16/20/33/50/100ms) that triggers the rule.
	SubPatternMatchRatio float64 `toml:"sub_pattern_match_ratio" json:"sub_pattern_match_ratio"`
	SubPatternWeight     float64 `toml:"sub_pattern_weight" json:"sub_pattern_weight"`

	// SmoothCurvatureCV flags parametric-curve motion: curvature with a
	// coefficient of variation this low does not occur in hand movement.
	SmoothCurvatureCV     float64 `toml:"smooth_curvature_cv" json:"smooth_curvature_cv"`
	SmoothCurvatureWeight float64 `toml:"smooth_curvature_weight" json:"smooth_curvature_weight"`

	// Pressure analysis only applies once enough samples exist to expect
	// pressure capable hardware to have reported something.
	PressureMinSamples int     `toml:"pressure_min_samples" json:"pressure_min_samples"`
	PressureWeight     float64 `toml:"pressure_weight" json:"pressure_weight"`

	// TimestampEntropyThreshold is the normalized Shannon entropy floor for
	// 10ms-bucketed inter-event intervals.
	TimestampEntropyThreshold float64 `toml:"timestamp_entropy_threshold" json:"timestamp_entropy_threshold"`
	TimestampEntropyWeight    float64 `toml:"timestamp_entropy_weight" json:"timestamp_entropy_weight"`

	// Fingerprint consistency: pointer kind switching mid-session, or a long
	// session with no advanced pointer properties at all.
	FingerprintMinSamples int     `toml:"fingerprint_min_samples" json:"fingerprint_min_samples"`
	FingerprintWeight     float64 `toml:"fingerprint_weight" json:"fingerprint_weight"`

	// PeriodicNoiseThreshold is the maximum autocorrelation (lags 2..20 of
	// the detrended path residual) tolerated before flagging sinusoidal
	// synthetic jitter.
	PeriodicNoiseThreshold float64 `toml:"periodic_noise_threshold" json:"periodic_noise_threshold"`
	PeriodicNoiseWeight    float64 `toml:"periodic_noise_weight" json:"periodic_noise_weight"`

	// NaiveBoost multiplies the aggregate when at least two naive signals
	// (straight lines, raw low timing variance, constant timing) fire
	// together. Cheap bots trip several obvious tells at once.
	NaiveBoost float64 `toml:"naive_boost" json:"naive_boost"`
}

// KeyboardRules holds thresholds and rule weights for the keyboard analyzer.
type KeyboardRules struct {
	LowHoldVarianceThreshold float64 `toml:"low_hold_variance_threshold" json:"low_hold_variance_threshold"`
	LowHoldVarianceWeight    float64 `toml:"low_hold_variance_weight" json:"low_hold_variance_weight"`

	LowInterKeyVarianceThreshold float64 `toml:"low_interkey_variance_threshold" json:"low_interkey_variance_threshold"`
	LowInterKeyVarianceWeight    float64 `toml:"low_interkey_variance_weight" json:"low_interkey_variance_weight"`

	UntrustedRatioThreshold float64 `toml:"untrusted_ratio_threshold" json:"untrusted_ratio_threshold"`
	UntrustedRatioWeight    float64 `toml:"untrusted_ratio_weight" json:"untrusted_ratio_weight"`

	// Very high inter-key variance is reading/thinking pauses: negative
	// evidence, subtracted from the score.
	HighInterKeyVarianceThreshold float64 `toml:"high_interkey_variance_threshold" json:"high_interkey_variance_threshold"`
	HighInterKeyVarianceRelief    float64 `toml:"high_interkey_variance_relief" json:"high_interkey_variance_relief"`

	// Burst classing (chars/sec). Bursts at or above the paste class feed
	// the paste-burst rule.
	BurstWindowMs    float64 `toml:"burst_window_ms" json:"burst_window_ms"`
	BurstMinSize     int     `toml:"burst_min_size" json:"burst_min_size"`
	PasteBurstRatio  float64 `toml:"paste_burst_ratio" json:"paste_burst_ratio"`
	PasteBurstWeight float64 `toml:"paste_burst_weight" json:"paste_burst_weight"`

	// Rate class boundaries in chars/sec: human below HumanRate, then fast
	// typist, dictation, autocomplete; above PasteRate is paste/synthetic.
	HumanRate        float64 `toml:"human_rate" json:"human_rate"`
	FastTypistRate   float64 `toml:"fast_typist_rate" json:"fast_typist_rate"`
	DictationRate    float64 `toml:"dictation_rate" json:"dictation_rate"`
	PasteRate        float64 `toml:"paste_rate" json:"paste_rate"`
}

// ScrollRules holds thresholds and rule weights for the scroll analyzer.
type ScrollRules struct {
	LowDeltaVarianceThreshold  float64 `toml:"low_delta_variance_threshold" json:"low_delta_variance_threshold"`
	LowDeltaVarianceWeight     float64 `toml:"low_delta_variance_weight" json:"low_delta_variance_weight"`
	HighDeltaVarianceThreshold float64 `toml:"high_delta_variance_threshold" json:"high_delta_variance_threshold"`
	HighDeltaVarianceWeight    float64 `toml:"high_delta_variance_weight" json:"high_delta_variance_weight"`

	DistinctDeltaRatioThreshold float64 `toml:"distinct_delta_ratio_threshold" json:"distinct_delta_ratio_threshold"`
	DistinctDeltaRatioWeight    float64 `toml:"distinct_delta_ratio_weight" json:"distinct_delta_ratio_weight"`

	EventRateThreshold float64 `toml:"event_rate_threshold" json:"event_rate_threshold"`
	EventRateWeight    float64 `toml:"event_rate_weight" json:"event_rate_weight"`

	HighIntervalVarianceThreshold float64 `toml:"high_interval_variance_threshold" json:"high_interval_variance_threshold"`
	HighIntervalVarianceRelief    float64 `toml:"high_interval_variance_relief" json:"high_interval_variance_relief"`
}

// TouchRules holds thresholds and rule weights for the touch analyzer.
type TouchRules struct {
	LowForceVarianceThreshold  float64 `toml:"low_force_variance_threshold" json:"low_force_variance_threshold"`
	LowForceVarianceWeight     float64 `toml:"low_force_variance_weight" json:"low_force_variance_weight"`
	HighForceVarianceThreshold float64 `toml:"high_force_variance_threshold" json:"high_force_variance_threshold"`
	HighForceVarianceWeight    float64 `toml:"high_force_variance_weight" json:"high_force_variance_weight"`

	LowRadiusVarianceThreshold float64 `toml:"low_radius_variance_threshold" json:"low_radius_variance_threshold"`
	LowRadiusVarianceWeight    float64 `toml:"low_radius_variance_weight" json:"low_radius_variance_weight"`

	EventRateThreshold float64 `toml:"event_rate_threshold" json:"event_rate_threshold"`
	EventRateWeight    float64 `toml:"event_rate_weight" json:"event_rate_weight"`
}

// SensorRules holds thresholds for the ambient motion analyzer.
type SensorRules struct {
	// VarianceFloor: real sensors carry noise; variance below the floor on
	// every axis is a stub.
	VarianceFloor float64 `toml:"variance_floor" json:"variance_floor"`
	StillWeight   float64 `toml:"still_weight" json:"still_weight"`

	// FixedConfidence is always reported for this channel: it is noisy and
	// permission gated, so sample count says little.
	FixedConfidence float64 `toml:"fixed_confidence" json:"fixed_confidence"`
}

// RenderingRules holds thresholds for the rendering-latency probe analyzer.
type RenderingRules struct {
	// FastMs: implausibly fast compilation suggests a stubbed or
	// virtualized backend.
	FastMs     float64 `toml:"fast_ms" json:"fast_ms"`
	FastWeight float64 `toml:"fast_weight" json:"fast_weight"`

	// SlowMs: implausibly slow suggests software emulation.
	SlowMs     float64 `toml:"slow_ms" json:"slow_ms"`
	SlowWeight float64 `toml:"slow_weight" json:"slow_weight"`

	// RoundWeight fires on suspiciously round durations (exact multiples of
	// whole milliseconds), a tell for mocked timing APIs.
	RoundWeight float64 `toml:"round_weight" json:"round_weight"`
}

// Safeguards are the global fusion constants.
type Safeguards struct {
	// MinConfidenceGate drops channels with too few samples to trust.
	MinConfidenceGate float64 `toml:"min_confidence_gate" json:"min_confidence_gate"`

	// SuspiciousChannelThreshold is the per-channel score at which a channel
	// counts toward corroboration.
	SuspiciousChannelThreshold float64 `toml:"suspicious_channel_threshold" json:"suspicious_channel_threshold"`

	// MinSuspiciousChannels is the corroboration requirement before a high
	// aggregate stands unreduced.
	MinSuspiciousChannels int `toml:"min_suspicious_channels" json:"min_suspicious_channels"`

	// MaxChannelContribution caps any single channel's weighted share.
	MaxChannelContribution float64 `toml:"max_channel_contribution" json:"max_channel_contribution"`

	// SingleChannelDownscale is applied when the aggregate crosses
	// BotThreshold without corroboration.
	SingleChannelDownscale float64 `toml:"single_channel_downscale" json:"single_channel_downscale"`

	// Rescue recovers cheap bots whose evidence is diluted across channels:
	// several weak non-sensor signals and no sophisticated signature.
	RescueThreshold   float64 `toml:"rescue_threshold" json:"rescue_threshold"`
	RescueMinChannels int     `toml:"rescue_min_channels" json:"rescue_min_channels"`
	RescueMultiplier  float64 `toml:"rescue_multiplier" json:"rescue_multiplier"`
	RescueCap         float64 `toml:"rescue_cap" json:"rescue_cap"`

	// Sophistication discount: weak mouse evidence outweighed by human
	// pause patterns on both keyboard and scroll.
	SophisticationMouseMax float64 `toml:"sophistication_mouse_max" json:"sophistication_mouse_max"`
	SophisticationDiscount float64 `toml:"sophistication_discount" json:"sophistication_discount"`

	// Session duration gates. Below MinSessionMs the score is forced to 0;
	// below ShortSessionMs it is capped at ShortSessionCap.
	MinSessionMs    float64 `toml:"min_session_ms" json:"min_session_ms"`
	ShortSessionMs  float64 `toml:"short_session_ms" json:"short_session_ms"`
	ShortSessionCap float64 `toml:"short_session_cap" json:"short_session_cap"`

	// Classification cut points, strictly descending.
	BotThreshold         float64 `toml:"bot_threshold" json:"bot_threshold"`
	SuspiciousThreshold  float64 `toml:"suspicious_threshold" json:"suspicious_threshold"`
	LikelyHumanThreshold float64 `toml:"likely_human_threshold" json:"likely_human_threshold"`
}
