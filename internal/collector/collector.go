// Package collector defines the wire format at the Event Collector
// boundary: newline-delimited JSON events, one per line, dispatched to the
// monitor's typed ingestion methods. The engine does not care how the
// collector sourced them.
package collector

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"botsense/internal/monitor"
	"botsense/internal/telemetry"
)

// Event is the flat NDJSON record the collector emits. Type selects which
// fields are meaningful.
type Event struct {
	Type        string  `json:"type"`
	TimestampMs float64 `json:"t"`
	Trusted     bool    `json:"trusted"`

	// Pointer / touch position.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// Pointer metadata.
	Pressure    float64 `json:"pressure,omitempty"`
	HasPressure bool    `json:"has_pressure,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	TiltX       float64 `json:"tilt_x,omitempty"`
	TiltY       float64 `json:"tilt_y,omitempty"`
	PointerType string  `json:"pointer_type,omitempty"`

	// Keyboard.
	Key string `json:"key,omitempty"`

	// Scroll offsets.
	ScrollX float64 `json:"sx,omitempty"`
	ScrollY float64 `json:"sy,omitempty"`

	// Touch contact.
	Force   float64 `json:"force,omitempty"`
	RadiusX float64 `json:"radius_x,omitempty"`
	RadiusY float64 `json:"radius_y,omitempty"`

	// Ambient motion axes reuse X/Y plus Z.
	Z float64 `json:"z,omitempty"`

	// Rendering probe.
	DurationMs float64 `json:"duration_ms,omitempty"`
}

// Event type names.
const (
	TypePointerMove  = "pointer_move"
	TypeKeyDown      = "key_down"
	TypeKeyUp        = "key_up"
	TypeScroll       = "scroll"
	TypeTouchStart   = "touch_start"
	TypeTouchMove    = "touch_move"
	TypeMotion       = "motion"
	TypeDOMEvent     = "dom_event"
	TypeRenderTiming = "render_timing"
)

// ErrUnknownEvent is returned for an event type the engine does not ingest.
var ErrUnknownEvent = errors.New("unknown event type")

// Dispatch routes one event to the monitor.
func Dispatch(m *monitor.Monitor, e Event) error {
	switch e.Type {
	case TypePointerMove:
		m.RecordPointerMove(telemetry.MouseSample{
			TimestampMs: e.TimestampMs,
			X:           e.X,
			Y:           e.Y,
			Trusted:     e.Trusted,
			Pressure:    e.Pressure,
			HasPressure: e.HasPressure,
			Width:       e.Width,
			Height:      e.Height,
			TiltX:       e.TiltX,
			TiltY:       e.TiltY,
			PointerType: e.PointerType,
		})
	case TypeKeyDown:
		m.RecordKeyDown(e.Key, e.TimestampMs, e.Trusted)
	case TypeKeyUp:
		m.RecordKeyUp(e.Key, e.TimestampMs)
	case TypeScroll:
		m.RecordScroll(telemetry.ScrollSample{
			TimestampMs: e.TimestampMs,
			ScrollX:     e.ScrollX,
			ScrollY:     e.ScrollY,
			Trusted:     e.Trusted,
		})
	case TypeTouchStart, TypeTouchMove:
		s := telemetry.TouchSample{
			TimestampMs: e.TimestampMs,
			X:           e.X,
			Y:           e.Y,
			Force:       e.Force,
			RadiusX:     e.RadiusX,
			RadiusY:     e.RadiusY,
			Trusted:     e.Trusted,
		}
		if e.Type == TypeTouchStart {
			m.RecordTouchStart(s)
		} else {
			m.RecordTouchMove(s)
		}
	case TypeMotion:
		m.RecordMotion(telemetry.SensorSample{
			TimestampMs: e.TimestampMs,
			X:           e.X,
			Y:           e.Y,
			Z:           e.Z,
		})
	case TypeDOMEvent:
		m.RecordTrustedEvent(e.Trusted)
	case TypeRenderTiming:
		m.SetRenderTiming(telemetry.RenderTiming{
			DurationMs:  e.DurationMs,
			TimestampMs: e.TimestampMs,
		})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	return nil
}

// Stream reads NDJSON events from r and dispatches each to the monitor.
// Malformed lines and unknown event types are counted and skipped, not
// fatal: a noisy collector must not kill the session. Returns the number of
// dispatched events and the number of skipped lines.
func Stream(r io.Reader, m *monitor.Monitor) (dispatched, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			skipped++
			continue
		}
		if err := Dispatch(m, e); err != nil {
			skipped++
			continue
		}
		dispatched++
	}
	return dispatched, skipped, scanner.Err()
}
