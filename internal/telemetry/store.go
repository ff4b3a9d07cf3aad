package telemetry

// Store holds the per-channel sample buffers for one session.
//
// Buffers are append-only: samples are recorded in arrival order and never
// reordered or dropped while the session lives. The store itself is not
// goroutine-safe; the owning monitor serializes access.
type Store struct {
	Mouse   []MouseSample
	Keys    []KeySample
	Scrolls []ScrollSample
	Touches []TouchSample
	Sensors []SensorSample

	// Rendering is at most one probe result per session.
	Rendering *RenderTiming
}

// NewStore returns an empty sample store.
func NewStore() *Store {
	return &Store{}
}

// AddMouse appends a pointer movement sample.
func (s *Store) AddMouse(m MouseSample) { s.Mouse = append(s.Mouse, m) }

// AddKey appends a completed key press sample.
func (s *Store) AddKey(k KeySample) { s.Keys = append(s.Keys, k) }

// AddScroll appends a scroll sample.
func (s *Store) AddScroll(sc ScrollSample) { s.Scrolls = append(s.Scrolls, sc) }

// AddTouch appends a touch sample.
func (s *Store) AddTouch(t TouchSample) { s.Touches = append(s.Touches, t) }

// AddSensor appends an ambient motion sample.
func (s *Store) AddSensor(m SensorSample) { s.Sensors = append(s.Sensors, m) }

// SetRendering records the rendering probe result. Later calls overwrite
// earlier ones; the probe runs once per session start.
func (s *Store) SetRendering(r RenderTiming) { s.Rendering = &r }

// Count returns the number of samples held for one channel.
func (s *Store) Count(ch Channel) int {
	switch ch {
	case ChannelMouse:
		return len(s.Mouse)
	case ChannelKeyboard:
		return len(s.Keys)
	case ChannelScroll:
		return len(s.Scrolls)
	case ChannelTouch:
		return len(s.Touches)
	case ChannelSensors:
		return len(s.Sensors)
	case ChannelRendering:
		if s.Rendering != nil {
			return 1
		}
		return 0
	}
	return 0
}

// Counts returns the sample count for every channel.
func (s *Store) Counts() map[Channel]int {
	counts := make(map[Channel]int, len(Channels))
	for _, ch := range Channels {
		counts[ch] = s.Count(ch)
	}
	return counts
}

// Clear drops all collected samples. Session restarts that want a clean
// slate call this explicitly; Stop never does.
func (s *Store) Clear() {
	s.Mouse = nil
	s.Keys = nil
	s.Scrolls = nil
	s.Touches = nil
	s.Sensors = nil
	s.Rendering = nil
}
