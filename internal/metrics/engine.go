package metrics

import (
	"botsense/internal/fusion"
	"botsense/internal/telemetry"
)

// Engine holds the daemon's metric set.
type Engine struct {
	registry *Registry

	EventsDispatched *Counter
	EventsSkipped    *Counter
	SessionsStarted  *Counter
	ConfigReloads    *Counter

	Samples map[telemetry.Channel]*Counter

	Score      *Gauge
	Confidence *Gauge
	Ready      *Gauge

	ScoringDuration *Histogram
}

// NewEngine registers the daemon metric set on the given registry. A nil
// registry gets a fresh "botsense" namespace.
func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = NewRegistry("botsense")
	}

	e := &Engine{
		registry: registry,

		EventsDispatched: registry.Counter(
			"events_dispatched_total",
			"Collector events routed into the sample store", nil),
		EventsSkipped: registry.Counter(
			"events_skipped_total",
			"Collector lines dropped as malformed or unknown", nil),
		SessionsStarted: registry.Counter(
			"sessions_started_total",
			"Monitoring sessions started", nil),
		ConfigReloads: registry.Counter(
			"config_reloads_total",
			"Successful configuration hot reloads", nil),

		Samples: make(map[telemetry.Channel]*Counter, len(telemetry.Channels)),

		Score: registry.Gauge(
			"score",
			"Current fused bot score", nil),
		Confidence: registry.Gauge(
			"confidence",
			"Current fused confidence", nil),
		Ready: registry.Gauge(
			"ready",
			"1 once enough samples exist to analyze", nil),

		ScoringDuration: registry.Histogram(
			"scoring_duration_seconds",
			"Wall time of one analyze-and-fuse pass", nil, nil),
	}

	for _, ch := range telemetry.Channels {
		e.Samples[ch] = registry.Counter(
			"samples_total",
			"Samples recorded per channel",
			Labels{"channel": string(ch)})
	}
	return e
}

// Registry returns the backing registry, for serving.
func (e *Engine) Registry() *Registry { return e.registry }

// ObserveResult publishes a fused result to the score gauges.
func (e *Engine) ObserveResult(r *fusion.Result) {
	if r == nil {
		return
	}
	e.Score.Set(r.Score)
	e.Confidence.Set(r.Confidence)
}
