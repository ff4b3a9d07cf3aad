package persist

import (
	"encoding/hex"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/crypto/blake2b"

	"botsense/internal/telemetry"
)

// snapshotVersion is bumped when the payload layout changes; older versions
// restore as empty rather than being migrated.
const snapshotVersion = 1

// ErrCorruptSnapshot marks a snapshot whose checksum or structure does not
// hold up. Callers treat it as "nothing to restore".
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Payload is the persisted session state: the full per-channel sample
// arrays plus the session start time.
type Payload struct {
	StartTimeMs int64 `json:"start_time_ms"`

	Mouse   []telemetry.MouseSample  `json:"mouse,omitempty"`
	Keys    []telemetry.KeySample    `json:"keys,omitempty"`
	Scrolls []telemetry.ScrollSample `json:"scrolls,omitempty"`
	Touches []telemetry.TouchSample  `json:"touches,omitempty"`
	Sensors []telemetry.SensorSample `json:"sensors,omitempty"`

	Rendering *telemetry.RenderTiming `json:"rendering,omitempty"`
}

// envelope wraps the payload with an integrity checksum. A blob that was
// truncated by a quota-limited backend or corrupted in transit fails the
// checksum and restores as empty.
type envelope struct {
	Version  int             `json:"v"`
	Checksum string          `json:"checksum"`
	Payload  json.RawMessage `json:"payload"`
}

// Encode serializes a session snapshot to the persisted string form.
func Encode(start time.Time, store *telemetry.Store) (string, error) {
	payload := Payload{
		StartTimeMs: start.UnixMilli(),
		Mouse:       store.Mouse,
		Keys:        store.Keys,
		Scrolls:     store.Scrolls,
		Touches:     store.Touches,
		Sensors:     store.Sensors,
		Rendering:   store.Rendering,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(raw)
	blob, err := json.Marshal(envelope{
		Version:  snapshotVersion,
		Checksum: hex.EncodeToString(sum[:]),
		Payload:  raw,
	})
	if err != nil {
		return "", err
	}
	return string(blob), nil
}

// Decode parses a persisted snapshot, verifying version and checksum.
func Decode(blob string) (time.Time, *telemetry.Store, error) {
	var env envelope
	if err := json.Unmarshal([]byte(blob), &env); err != nil {
		return time.Time{}, nil, ErrCorruptSnapshot
	}
	if env.Version != snapshotVersion {
		return time.Time{}, nil, ErrCorruptSnapshot
	}
	sum := blake2b.Sum256(env.Payload)
	if hex.EncodeToString(sum[:]) != env.Checksum {
		return time.Time{}, nil, ErrCorruptSnapshot
	}
	var payload Payload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return time.Time{}, nil, ErrCorruptSnapshot
	}
	store := &telemetry.Store{
		Mouse:     payload.Mouse,
		Keys:      payload.Keys,
		Scrolls:   payload.Scrolls,
		Touches:   payload.Touches,
		Sensors:   payload.Sensors,
		Rendering: payload.Rendering,
	}
	return time.UnixMilli(payload.StartTimeMs), store, nil
}
