// Package telemetry defines the interaction samples collected during a
// session and the append-only per-channel store that holds them.
//
// IMPORTANT: samples carry timing and geometry only - no text content is
// ever recorded. A keyboard sample knows how long a key was held, not
// which character it produced beyond the collector-supplied key class.
package telemetry

import "time"

// Channel identifies one category of interaction telemetry.
type Channel string

const (
	ChannelMouse     Channel = "mouse"
	ChannelKeyboard  Channel = "keyboard"
	ChannelScroll    Channel = "scroll"
	ChannelTouch     Channel = "touch"
	ChannelSensors   Channel = "sensors"
	ChannelRendering Channel = "rendering"
)

// Channels lists all channels in fusion order.
var Channels = []Channel{
	ChannelMouse,
	ChannelKeyboard,
	ChannelScroll,
	ChannelTouch,
	ChannelSensors,
	ChannelRendering,
}

// MouseSample is one pointer movement observation.
type MouseSample struct {
	TimestampMs float64 `json:"t"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Trusted     bool    `json:"trusted"`

	// Pointer metadata. Pressure and contact geometry are only present on
	// hardware that reports them; HasPressure distinguishes a real zero
	// reading from an absent one.
	Pressure    float64 `json:"pressure,omitempty"`
	HasPressure bool    `json:"has_pressure,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	TiltX       float64 `json:"tilt_x,omitempty"`
	TiltY       float64 `json:"tilt_y,omitempty"`
	PointerType string  `json:"pointer_type,omitempty"`
}

// KeySample is one completed key press (down followed by up).
type KeySample struct {
	TimestampMs float64 `json:"t"`
	Key         string  `json:"key"`
	HoldTimeMs  float64 `json:"hold_ms"`
	Trusted     bool    `json:"trusted"`
}

// ScrollSample carries absolute scroll offsets at one instant.
type ScrollSample struct {
	TimestampMs float64 `json:"t"`
	ScrollX     float64 `json:"sx"`
	ScrollY     float64 `json:"sy"`
	Trusted     bool    `json:"trusted"`
}

// TouchSample is one touch contact observation.
type TouchSample struct {
	TimestampMs float64 `json:"t"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Force       float64 `json:"force"`
	RadiusX     float64 `json:"radius_x"`
	RadiusY     float64 `json:"radius_y"`
	Trusted     bool    `json:"trusted"`
}

// SensorSample is one ambient motion reading (accelerometer axes).
type SensorSample struct {
	TimestampMs float64 `json:"t"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
}

// RenderTiming is the one-shot rendering latency probe result.
type RenderTiming struct {
	DurationMs  float64 `json:"duration_ms"`
	TimestampMs float64 `json:"t"`
}

// Session tracks the lifecycle of one monitored interaction session.
type Session struct {
	StartTime  time.Time
	IsRunning  bool
	ReadyFired bool
}
