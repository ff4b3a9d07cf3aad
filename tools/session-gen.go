// session-gen generates synthetic collector sessions for exercising the
// scoring pipeline without a real browser in front of it.
//
// Usage:
//
//	go run tools/session-gen.go -profile human | botsensed run
//	go run tools/session-gen.go -profile linear-bot -output bot.ndjson
//	go run tools/session-gen.go -profile jitter-bot -duration 20s -seed 7
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"
)

// event mirrors the collector's NDJSON record.
type event struct {
	Type        string  `json:"type"`
	TimestampMs float64 `json:"t"`
	Trusted     bool    `json:"trusted"`
	X           float64 `json:"x,omitempty"`
	Y           float64 `json:"y,omitempty"`
	Pressure    float64 `json:"pressure,omitempty"`
	HasPressure bool    `json:"has_pressure,omitempty"`
	Key         string  `json:"key,omitempty"`
	ScrollX     float64 `json:"sx,omitempty"`
	ScrollY     float64 `json:"sy,omitempty"`
	Force       float64 `json:"force,omitempty"`
	RadiusX     float64 `json:"radius_x,omitempty"`
	RadiusY     float64 `json:"radius_y,omitempty"`
	Z           float64 `json:"z,omitempty"`
	DurationMs  float64 `json:"duration_ms,omitempty"`
}

// profile describes how a session's pointer and keyboard streams behave.
type profile struct {
	name        string
	description string

	// Pointer path shape.
	linearPath   bool    // perfectly straight segments between waypoints
	fixedStepMs  float64 // 0 means human-jittered intervals
	jitterAmpPx  float64 // synthetic positional jitter added per point
	meanStepMs   float64
	stepStdDevMs float64

	// Keyboard cadence.
	meanInterKeyMs   float64
	interKeyStdDevMs float64
	meanHoldMs       float64
	holdStdDevMs     float64
	pasteBursts      bool

	// Whether events carry the trusted flag a real input source gets.
	trusted bool

	readingPauses bool
}

var profiles = map[string]profile{
	"human": {
		name:             "Human",
		description:      "Curved pointer paths, irregular typing, reading pauses",
		meanStepMs:       18,
		stepStdDevMs:     9,
		meanInterKeyMs:   160,
		interKeyStdDevMs: 80,
		meanHoldMs:       85,
		holdStdDevMs:     30,
		trusted:          true,
		readingPauses:    true,
	},
	"linear-bot": {
		name:         "Linear Bot",
		description:  "Straight-line pointer moves on a fixed timer, untrusted events",
		linearPath:   true,
		fixedStepMs:  16,
		meanInterKeyMs:   50,
		interKeyStdDevMs: 0,
		meanHoldMs:       10,
		holdStdDevMs:     0,
	},
	"jitter-bot": {
		name:         "Jitter Bot",
		description:  "Scripted motion with fake random noise layered on top",
		linearPath:   true,
		fixedStepMs:  20,
		jitterAmpPx:  2,
		meanInterKeyMs:   55,
		interKeyStdDevMs: 4,
		meanHoldMs:       12,
		holdStdDevMs:     2,
		trusted:      true,
	},
	"replay": {
		name:         "Replay",
		description:  "Human-shaped path replayed with uniform 10ms timestamps",
		fixedStepMs:  10,
		meanStepMs:   10,
		meanInterKeyMs:   150,
		interKeyStdDevMs: 70,
		meanHoldMs:       80,
		holdStdDevMs:     25,
		pasteBursts:  true,
	},
}

func main() {
	var (
		profileName = flag.String("profile", "human", "session profile to generate")
		duration    = flag.Duration("duration", 15*time.Second, "simulated session length")
		output      = flag.String("output", "", "output file (default stdout)")
		seed        = flag.Int64("seed", 0, "random seed (0 uses the current time)")
		list        = flag.Bool("list", false, "list available profiles")
	)
	flag.Parse()

	if *list {
		names := make([]string, 0, len(profiles))
		for name := range profiles {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			p := profiles[name]
			fmt.Printf("  %-12s %s\n", name, p.description)
		}
		return
	}

	p, ok := profiles[*profileName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown profile %q (try -list)\n", *profileName)
		os.Exit(1)
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(s))

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	events := generate(p, rng, duration.Seconds()*1000)
	w := bufio.NewWriter(out)
	defer w.Flush()
	enc := json.NewEncoder(w)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Fprintf(os.Stderr, "generated %d events (%s, seed %d)\n", len(events), p.name, s)
}

func generate(p profile, rng *rand.Rand, durationMs float64) []event {
	var events []event
	events = append(events, pointerStream(p, rng, durationMs)...)
	events = append(events, keyStream(p, rng, durationMs)...)
	events = append(events, scrollStream(p, rng, durationMs)...)
	events = append(events, event{Type: "render_timing", TimestampMs: 5, DurationMs: renderFor(p, rng)})

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].TimestampMs < events[j].TimestampMs
	})
	return events
}

// pointerStream walks waypoints across a 1280x800 viewport. Human paths
// curve between waypoints with noisy intervals; bot paths interpolate
// linearly on a fixed clock.
func pointerStream(p profile, rng *rand.Rand, durationMs float64) []event {
	var events []event
	t := 50.0
	x, y := 100.0, 100.0

	for t < durationMs {
		tx := rng.Float64() * 1280
		ty := rng.Float64() * 800
		steps := 20 + rng.Intn(20)

		for i := 1; i <= steps && t < durationMs; i++ {
			frac := float64(i) / float64(steps)
			var px, py float64
			if p.linearPath {
				px = x + (tx-x)*frac
				py = y + (ty-y)*frac
			} else {
				// Quadratic ease with perpendicular drift reads as a
				// hand-drawn arc.
				ease := frac * frac * (3 - 2*frac)
				px = x + (tx-x)*ease + rng.NormFloat64()*3
				py = y + (ty-y)*ease + math.Sin(frac*math.Pi)*25 + rng.NormFloat64()*3
			}
			if p.jitterAmpPx > 0 {
				px += (rng.Float64()*2 - 1) * p.jitterAmpPx
				py += (rng.Float64()*2 - 1) * p.jitterAmpPx
			}

			if p.fixedStepMs > 0 {
				t += p.fixedStepMs
			} else {
				t += math.Max(4, p.meanStepMs+rng.NormFloat64()*p.stepStdDevMs)
			}
			events = append(events, event{
				Type:        "pointer_move",
				TimestampMs: t,
				Trusted:     p.trusted,
				X:           px,
				Y:           py,
			})
		}
		x, y = tx, ty

		// Dwell at the waypoint.
		if p.readingPauses {
			t += 300 + rng.Float64()*1200
		} else {
			t += 100
		}
	}
	return events
}

func keyStream(p profile, rng *rand.Rand, durationMs float64) []event {
	const letters = "etaoinshrdlucmfwyp bvkjxqz"
	var events []event
	t := 800.0
	typed := 0

	for t < durationMs {
		key := string(letters[rng.Intn(len(letters))])
		hold := math.Max(3, p.meanHoldMs+rng.NormFloat64()*p.holdStdDevMs)
		events = append(events,
			event{Type: "key_down", TimestampMs: t, Trusted: p.trusted, Key: key},
			event{Type: "key_up", TimestampMs: t + hold, Key: key},
		)
		typed++

		if p.pasteBursts && typed%40 == 0 {
			// A paste lands a burst of keys inside a few milliseconds.
			for i := 0; i < 12; i++ {
				k := string(letters[rng.Intn(len(letters))])
				bt := t + float64(i)
				events = append(events,
					event{Type: "key_down", TimestampMs: bt, Trusted: p.trusted, Key: k},
					event{Type: "key_up", TimestampMs: bt + 2, Key: k},
				)
			}
			t += 2000
			continue
		}

		gap := math.Max(10, p.meanInterKeyMs+rng.NormFloat64()*p.interKeyStdDevMs)
		t += hold + gap

		if p.readingPauses && typed%25 == 0 {
			t += 2500 + rng.Float64()*3000
		}
	}
	return events
}

func scrollStream(p profile, rng *rand.Rand, durationMs float64) []event {
	var events []event
	t := 1500.0
	// Scroll samples carry the absolute offset; the analyzer differences
	// consecutive samples itself.
	offset := 0.0
	for t < durationMs {
		delta := 40 + rng.Float64()*80
		if p.fixedStepMs > 0 && p.jitterAmpPx == 0 {
			delta = 100
		}
		offset += delta
		events = append(events, event{
			Type:        "scroll",
			TimestampMs: t,
			Trusted:     p.trusted,
			ScrollY:     offset,
		})
		if p.readingPauses {
			t += 800 + rng.Float64()*2500
		} else {
			t += 250
		}
	}
	return events
}

func renderFor(p profile, rng *rand.Rand) float64 {
	if p.linearPath {
		// Headless environments render suspiciously fast and round.
		return 2
	}
	return 18 + rng.Float64()*40
}
