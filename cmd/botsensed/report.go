package main

import (
	"fmt"
	"io"
	"log/slog"

	"botsense/internal/config"
	"botsense/internal/fusion"
	"botsense/internal/logging"
	"botsense/internal/telemetry"
)

func newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	lc := cfg.Logging
	if lc.Component == "" {
		lc.Component = "botsensed"
	}
	return logging.New(lc)
}

func printResult(w io.Writer, r *fusion.Result) {
	fmt.Fprintf(w, "Classification: %s\n", r.Class)
	fmt.Fprintf(w, "Score:          %.3f\n", r.Score)
	fmt.Fprintf(w, "Confidence:     %.3f\n", r.Confidence)
	fmt.Fprintf(w, "Duration:       %.0f ms\n", r.Metadata.DurationMs)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Channels:")

	for _, ch := range telemetry.Channels {
		v, ok := r.Channels[ch]
		if !ok || !v.Available {
			fmt.Fprintf(w, "  %-10s (no data)\n", ch)
			continue
		}
		fmt.Fprintf(w, "  %-10s score=%.3f confidence=%.3f", ch, v.Score, v.Confidence)
		triggered := 0
		for _, rule := range v.Breakdown {
			if rule.Triggered {
				triggered++
			}
		}
		if triggered > 0 {
			fmt.Fprintf(w, " rules=%d", triggered)
		}
		fmt.Fprintln(w)
	}
}
