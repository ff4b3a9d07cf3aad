// botsense-score - One-shot scorer for recorded collector sessions
//
// Reads an NDJSON event file (or stdin) and prints the classification.
// Useful for offline triage and for replaying sessions against a candidate
// calibration.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	json "github.com/goccy/go-json"

	"botsense/internal/calibration"
	"botsense/internal/collector"
	"botsense/internal/fusion"
	"botsense/internal/monitor"
	"botsense/internal/telemetry"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	var (
		calPath     = flag.String("calibration", "", "calibration override file (json or toml)")
		format      = flag.String("format", "text", "output format: text or json")
		breakdown   = flag.Bool("breakdown", false, "print the per-rule scoring breakdown")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `botsense-score - Score a recorded collector session

Usage:
  botsense-score [options] [session.ndjson]

Reads NDJSON events from the given file, or stdin when omitted.

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  botsense-score session.ndjson
  session-gen -profile linear-bot | botsense-score -breakdown
  botsense-score -calibration strict.json -format json session.ndjson
`)
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("botsense-score %s (commit %s, built %s)\n", version, commit, buildTime)
		return
	}

	cal, err := loadCalibration(*calPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: calibration: %v\n", err)
		os.Exit(1)
	}

	var in io.Reader = os.Stdin
	if path := flag.Arg(0); path != "" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	mon, err := monitor.New(monitor.Options{Calibration: &cal})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	mon.Start()

	dispatched, skipped, err := collector.Stream(in, mon)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: read events: %v\n", err)
		os.Exit(1)
	}
	if dispatched == 0 {
		fmt.Fprintln(os.Stderr, "Error: no usable events in input")
		os.Exit(1)
	}

	result := mon.Stop()

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: encode result: %v\n", err)
			os.Exit(1)
		}
	default:
		printReport(result, dispatched, skipped, *breakdown)
	}
	if result.Class == fusion.ClassBot {
		os.Exit(2)
	}
}

func loadCalibration(path string) (calibration.Config, error) {
	if path == "" {
		return calibration.Build()
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return calibration.Config{}, err
	}
	if isTOML(path) {
		return calibration.Build(calibration.WithTOML(doc))
	}
	return calibration.Build(calibration.WithJSON(doc))
}

func isTOML(path string) bool {
	return len(path) > 5 && path[len(path)-5:] == ".toml"
}

func printReport(r *fusion.Result, dispatched, skipped int, breakdown bool) {
	fmt.Printf("Classification: %s\n", r.Class)
	fmt.Printf("Score:          %.3f\n", r.Score)
	fmt.Printf("Confidence:     %.3f\n", r.Confidence)
	fmt.Printf("Duration:       %.0f ms\n", r.Metadata.DurationMs)
	fmt.Printf("Events:         %d dispatched, %d skipped\n", dispatched, skipped)
	fmt.Println()

	for _, ch := range telemetry.Channels {
		v, ok := r.Channels[ch]
		if !ok || !v.Available {
			fmt.Printf("  %-10s (no data)\n", ch)
			continue
		}
		fmt.Printf("  %-10s score=%.3f confidence=%.3f samples=%d\n",
			ch, v.Score, v.Confidence, r.Metadata.SampleCounts[ch])
		if !breakdown {
			continue
		}
		names := make([]string, 0, len(v.Breakdown))
		for name := range v.Breakdown {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			rule := v.Breakdown[name]
			mark := " "
			if rule.Triggered {
				mark = "*"
			}
			fmt.Printf("    %s %-24s value=%.4f threshold=%.4f weight=%.2f\n",
				mark, name, rule.Value, rule.Threshold, rule.Weight)
		}
	}
}
