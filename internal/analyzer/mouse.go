package analyzer

import (
	"math"

	"botsense/internal/calibration"
	"botsense/internal/telemetry"
)

// scriptedDelaysMs are the sleep intervals automation frameworks default to.
// The sub-pattern detector checks whether inter-event intervals cluster on
// multiples of these.
var scriptedDelaysMs = []float64{10, 16, 20, 33, 50, 100}

// straightAngleTolerance is the angular slack (radians) under which a
// segment counts as collinear with its predecessor.
const straightAngleTolerance = 0.02

// AnalyzeMouse scores a pointer movement buffer.
func AnalyzeMouse(samples []telemetry.MouseSample, cfg *calibration.Config) Verdict {
	if len(samples) < 2 {
		return unavailable()
	}
	rules := &cfg.Mouse

	path := newMousePath(samples)

	metrics := map[string]float64{
		"velocity_variance":   Variance(path.velocities),
		"angle_variance":      Variance(path.angleChanges),
		"straight_line_ratio": path.straightRatio(),
		"efficiency":          path.efficiency(),
		"timing_variance":     Variance(path.intervals),
		"accel_variance":      Variance(path.accels),
		"timing_cv":           CoefVariation(path.intervals),
		"sub_pattern_ratio":   subPatternRatio(path.intervals),
		"curvature_cv":        path.curvatureCV(),
		"timestamp_entropy":   NormalizedEntropy(path.intervals, 10),
		"max_autocorr":        path.maxResidualAutocorr(),
	}

	breakdown := make(map[string]Rule)

	breakdown[RuleStraightLines] = Rule{
		Triggered: metrics["straight_line_ratio"] > rules.StraightLineRatioThreshold,
		Weight:    rules.StraightLineWeight,
		Value:     metrics["straight_line_ratio"],
		Threshold: rules.StraightLineRatioThreshold,
	}
	breakdown["efficiency"] = Rule{
		Triggered: metrics["efficiency"] > rules.EfficiencyThreshold,
		Weight:    rules.EfficiencyWeight,
		Value:     metrics["efficiency"],
		Threshold: rules.EfficiencyThreshold,
	}

	// Low velocity variance alone describes slow careful humans just as well
	// as bots. It only scores when corroborated by low acceleration variance
	// or the sub-pattern detector.
	lowVel := metrics["velocity_variance"] < rules.LowVelocityVarianceThreshold && len(path.velocities) > 0
	lowAccel := metrics["accel_variance"] < rules.LowAccelVarianceThreshold && len(path.accels) > 0
	subPattern := metrics["sub_pattern_ratio"] > rules.SubPatternMatchRatio
	breakdown["low_velocity_variance"] = Rule{
		Triggered: lowVel && (lowAccel || subPattern),
		Weight:    rules.LowVelocityVarianceWeight,
		Value:     metrics["velocity_variance"],
		Threshold: rules.LowVelocityVarianceThreshold,
	}

	breakdown[RuleLowTimingVariance] = Rule{
		Triggered: metrics["timing_variance"] < rules.LowTimingVarianceThreshold,
		Weight:    rules.LowTimingVarianceWeight,
		Value:     metrics["timing_variance"],
		Threshold: rules.LowTimingVarianceThreshold,
	}
	breakdown[RuleConstantTiming] = Rule{
		Triggered: len(path.intervals) >= 2 && metrics["timing_cv"] < rules.ConstantTimingCV,
		Weight:    rules.ConstantTimingWeight,
		Value:     metrics["timing_cv"],
		Threshold: rules.ConstantTimingCV,
	}
	breakdown["sub_pattern"] = Rule{
		Triggered: subPattern,
		Weight:    rules.SubPatternWeight,
		Value:     metrics["sub_pattern_ratio"],
		Threshold: rules.SubPatternMatchRatio,
	}
	breakdown[RuleSmoothCurvature] = Rule{
		Triggered: metrics["curvature_cv"] > 0 && metrics["curvature_cv"] < rules.SmoothCurvatureCV,
		Weight:    rules.SmoothCurvatureWeight,
		Value:     metrics["curvature_cv"],
		Threshold: rules.SmoothCurvatureCV,
	}
	breakdown["pressure"] = pressureRule(samples, rules)
	breakdown["timestamp_entropy"] = Rule{
		Triggered: len(path.intervals) >= 2 && metrics["timestamp_entropy"] < rules.TimestampEntropyThreshold,
		Weight:    rules.TimestampEntropyWeight,
		Value:     metrics["timestamp_entropy"],
		Threshold: rules.TimestampEntropyThreshold,
	}
	breakdown["pointer_fingerprint"] = fingerprintRule(samples, rules)
	breakdown["periodic_noise"] = Rule{
		Triggered: metrics["max_autocorr"] > rules.PeriodicNoiseThreshold,
		Weight:    rules.PeriodicNoiseWeight,
		Value:     metrics["max_autocorr"],
		Threshold: rules.PeriodicNoiseThreshold,
	}

	score := 0.0
	for _, r := range breakdown {
		if r.Triggered {
			score += r.Weight
		}
	}

	// Unsophisticated bots trip several obvious tells at once: boost when at
	// least two naive signals coincide.
	naive := 0
	for _, name := range []string{RuleStraightLines, RuleLowTimingVariance, RuleConstantTiming} {
		if breakdown[name].Triggered {
			naive++
		}
	}
	if naive >= 2 {
		score *= rules.NaiveBoost
	}

	return Verdict{
		Available:  true,
		Score:      clamp01(score),
		Confidence: confidenceFor(len(samples), cfg.MinSamples[telemetry.ChannelMouse]),
		Metrics:    metrics,
		Breakdown:  breakdown,
	}
}

// mousePath holds the derived per-step series for one pointer buffer.
type mousePath struct {
	samples      []telemetry.MouseSample
	intervals    []float64 // inter-sample ms
	velocities   []float64 // px/ms
	accels       []float64 // successive velocity deltas
	angles       []float64 // step headings
	angleChanges []float64
	straightSegs int
	totalSegs    int
	pathLen      float64
}

func newMousePath(samples []telemetry.MouseSample) *mousePath {
	p := &mousePath{samples: samples}
	for i := 1; i < len(samples); i++ {
		prev, curr := samples[i-1], samples[i]
		dx := curr.X - prev.X
		dy := curr.Y - prev.Y
		dist := math.Hypot(dx, dy)
		dt := curr.TimestampMs - prev.TimestampMs

		p.pathLen += dist
		if dt > 0 {
			p.intervals = append(p.intervals, dt)
			p.velocities = append(p.velocities, dist/dt)
		}

		if dist == 0 {
			continue
		}
		angle := math.Atan2(dy, dx)
		p.totalSegs++
		straight := dx == 0 || dy == 0
		if !straight && len(p.angles) > 0 {
			change := angleDelta(angle, p.angles[len(p.angles)-1])
			p.angleChanges = append(p.angleChanges, change)
			if change < straightAngleTolerance {
				straight = true
			}
		}
		if straight {
			p.straightSegs++
		}
		p.angles = append(p.angles, angle)
	}
	for i := 1; i < len(p.velocities); i++ {
		p.accels = append(p.accels, p.velocities[i]-p.velocities[i-1])
	}
	return p
}

// angleDelta returns the absolute angular difference folded into [0, pi].
func angleDelta(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

func (p *mousePath) straightRatio() float64 {
	if p.totalSegs == 0 {
		return 0
	}
	return float64(p.straightSegs) / float64(p.totalSegs)
}

// efficiency is the straight-line distance between first and last point
// divided by the total path length. Bots tend toward 1.0; humans wander
// between roughly 0.3 and 0.85.
func (p *mousePath) efficiency() float64 {
	if p.pathLen == 0 {
		return 0
	}
	first := p.samples[0]
	last := p.samples[len(p.samples)-1]
	return math.Hypot(last.X-first.X, last.Y-first.Y) / p.pathLen
}

// curvatureCV is the coefficient of variation of second-difference
// magnitudes along the path. Parametric curve generators produce unnaturally
// uniform curvature.
func (p *mousePath) curvatureCV() float64 {
	n := len(p.samples)
	if n < 3 {
		return 0
	}
	curvatures := make([]float64, 0, n-2)
	for i := 2; i < n; i++ {
		ddx := p.samples[i].X - 2*p.samples[i-1].X + p.samples[i-2].X
		ddy := p.samples[i].Y - 2*p.samples[i-1].Y + p.samples[i-2].Y
		curvatures = append(curvatures, math.Hypot(ddx, ddy))
	}
	return CoefVariation(curvatures)
}

// maxResidualAutocorr detrends the X and Y paths and returns the strongest
// autocorrelation of either residual at lags 2..20. Sinusoidal jitter
// injected on top of linear motion correlates strongly with itself.
func (p *mousePath) maxResidualAutocorr() float64 {
	xs := make([]float64, len(p.samples))
	ys := make([]float64, len(p.samples))
	for i, s := range p.samples {
		xs[i] = s.X
		ys[i] = s.Y
	}
	best := MaxAutocorr(Detrend(xs), 2, 20)
	if r := MaxAutocorr(Detrend(ys), 2, 20); r > best {
		best = r
	}
	return best
}

// subPatternRatio is the fraction of intervals within 1ms of a multiple of a
// common scripted delay.
func subPatternRatio(intervals []float64) float64 {
	if len(intervals) == 0 {
		return 0
	}
	matched := 0
	for _, iv := range intervals {
		for _, base := range scriptedDelaysMs {
			mult := math.Round(iv / base)
			if mult >= 1 && math.Abs(iv-mult*base) <= 1 {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(intervals))
}

// pressureRule flags near-constant pressure, or pressure entirely absent on
// a buffer large enough that capable hardware would have reported some.
func pressureRule(samples []telemetry.MouseSample, rules *calibration.MouseRules) Rule {
	var pressures []float64
	for _, s := range samples {
		if s.HasPressure {
			pressures = append(pressures, s.Pressure)
		}
	}
	rule := Rule{Weight: rules.PressureWeight, Threshold: float64(rules.PressureMinSamples)}
	if len(samples) < rules.PressureMinSamples {
		return rule
	}
	if len(pressures) < len(samples)/10 {
		// Mostly absent despite a large sample count.
		rule.Triggered = true
		rule.Value = float64(len(pressures))
		return rule
	}
	variance := Variance(pressures)
	rule.Value = variance
	rule.Triggered = variance < 1e-6
	return rule
}

// fingerprintRule flags a pointer kind that changes mid-session, or a long
// session with no advanced pointer properties at all.
func fingerprintRule(samples []telemetry.MouseSample, rules *calibration.MouseRules) Rule {
	rule := Rule{Weight: rules.FingerprintWeight, Threshold: float64(rules.FingerprintMinSamples)}

	kinds := make(map[string]struct{})
	advanced := false
	for _, s := range samples {
		if s.PointerType != "" {
			kinds[s.PointerType] = struct{}{}
		}
		if s.HasPressure || s.TiltX != 0 || s.TiltY != 0 || s.Width > 1 || s.Height > 1 {
			advanced = true
		}
	}
	rule.Value = float64(len(kinds))
	if len(kinds) > 1 {
		rule.Triggered = true
		return rule
	}
	if len(samples) >= rules.FingerprintMinSamples && !advanced {
		rule.Triggered = true
	}
	return rule
}
