package monitor

import "botsense/internal/fusion"

// Range is an expected human range for one metric, used when tuning
// thresholds against recorded sessions.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CalibrationData is the diagnostic export for threshold tuning: the full
// result with per-rule breakdowns, plus baseline reference ranges observed
// in human sessions.
type CalibrationData struct {
	Result         fusion.Result    `json:"result"`
	UntrustedRatio float64          `json:"untrusted_ratio"`
	Baselines      map[string]Range `json:"baselines"`
}

// baselineRanges are per-metric human reference ranges from recorded
// sessions. They describe where genuine interaction lands, not hard limits.
var baselineRanges = map[string]Range{
	"mouse.efficiency":            {Min: 0.3, Max: 0.85},
	"mouse.straight_line_ratio":   {Min: 0.05, Max: 0.6},
	"mouse.timing_cv":             {Min: 0.15, Max: 1.2},
	"mouse.timestamp_entropy":     {Min: 0.55, Max: 0.95},
	"mouse.curvature_cv":          {Min: 0.6, Max: 2.5},
	"keyboard.hold_variance":      {Min: 50, Max: 2500},
	"keyboard.interkey_variance":  {Min: 1e3, Max: 5e6},
	"scroll.distinct_delta_ratio": {Min: 0.3, Max: 1.0},
	"scroll.events_per_sec":       {Min: 0.5, Max: 30},
	"touch.force_variance":        {Min: 1e-3, Max: 0.15},
	"sensors.axis_variance":       {Min: 1e-3, Max: 2.0},
	"rendering.duration_ms":       {Min: 0.5, Max: 60},
}

// CalibrationData returns the diagnostic export: fresh results, scoring
// breakdowns and the baseline reference ranges.
func (m *Monitor) CalibrationData() CalibrationData {
	m.mu.Lock()
	result := m.resultsLocked()
	ratio := 0.0
	if m.genericEvents > 0 {
		ratio = 1 - float64(m.trustedEvents)/float64(m.genericEvents)
	}
	m.mu.Unlock()

	return CalibrationData{
		Result:         result,
		UntrustedRatio: ratio,
		Baselines:      baselineRanges,
	}
}
