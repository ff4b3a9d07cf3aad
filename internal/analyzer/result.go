package analyzer

// Rule records how one detection rule evaluated: the observed value, the
// threshold it was compared against, and the weight it contributes when
// triggered. Relief rules (negative evidence) carry a negative weight.
type Rule struct {
	Triggered bool    `json:"triggered"`
	Weight    float64 `json:"weight"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

// Verdict is the output of one channel analyzer.
type Verdict struct {
	Available  bool               `json:"available"`
	Score      float64            `json:"score"`
	Confidence float64            `json:"confidence"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Breakdown  map[string]Rule    `json:"breakdown,omitempty"`
}

// Rule names referenced outside their analyzer (the fusion engine keys off
// these for rescue and discount decisions).
const (
	RuleSmoothCurvature   = "smooth_curvature"
	RuleStraightLines     = "straight_lines"
	RuleLowTimingVariance = "low_timing_variance"
	RuleConstantTiming    = "constant_timing"
	RuleReadingPauses     = "reading_pauses"
)

// Triggered reports whether the named rule fired in this verdict.
func (v Verdict) Triggered(rule string) bool {
	r, ok := v.Breakdown[rule]
	return ok && r.Triggered
}

// unavailable is the verdict for a buffer too small to analyze.
func unavailable() Verdict {
	return Verdict{Available: false, Score: 0, Confidence: 0}
}

// confidenceFor scales sample count against the channel minimum, capped at 1.
func confidenceFor(count, minSamples int) float64 {
	if minSamples <= 0 {
		return 1
	}
	c := float64(count) / float64(minSamples)
	if c > 1 {
		return 1
	}
	return c
}
