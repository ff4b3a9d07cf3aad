package calibration

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"

	"botsense/internal/telemetry"
)

// ErrInvalidConfig is returned when an override produces a structurally
// invalid calibration.
var ErrInvalidConfig = errors.New("invalid calibration config")

// Override mutates a calibration during Build. Overrides are applied to a
// copy of the defaults, so a partial document never leaves a sub-block
// incomplete: fields the document does not mention keep their default.
type Override func(*Config) error

// Build constructs a validated calibration from the defaults plus the given
// overrides, applied in order. Structural problems (negative weights,
// non-descending classification cut points) are rejected here, at
// construction, rather than surfacing at scoring time.
func Build(overrides ...Override) (Config, error) {
	cfg := Defaults()
	for _, ovr := range overrides {
		if err := ovr(&cfg); err != nil {
			return Config{}, err
		}
	}
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithJSON applies a JSON override document. The document is checked
// against the calibration schema before it is merged.
func WithJSON(doc []byte) Override {
	return func(cfg *Config) error {
		if err := validateSchema(doc); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if err := json.Unmarshal(doc, cfg); err != nil {
			return fmt.Errorf("%w: parse overrides: %v", ErrInvalidConfig, err)
		}
		return nil
	}
}

// WithTOML applies a TOML override document.
func WithTOML(doc []byte) Override {
	return func(cfg *Config) error {
		if err := toml.Unmarshal(doc, cfg); err != nil {
			return fmt.Errorf("%w: parse overrides: %v", ErrInvalidConfig, err)
		}
		return nil
	}
}

// WithFunc applies a programmatic override.
func WithFunc(fn func(*Config)) Override {
	return func(cfg *Config) error {
		fn(cfg)
		return nil
	}
}

// Validate checks a calibration for structural problems.
func Validate(cfg *Config) error {
	for ch, w := range cfg.ChannelWeights {
		if w < 0 {
			return fmt.Errorf("%w: negative weight %v for channel %q", ErrInvalidConfig, w, ch)
		}
	}
	for _, ch := range telemetry.Channels {
		if _, ok := cfg.ChannelWeights[ch]; !ok {
			return fmt.Errorf("%w: missing weight for channel %q", ErrInvalidConfig, ch)
		}
		if n, ok := cfg.MinSamples[ch]; !ok || n < 1 {
			return fmt.Errorf("%w: min samples for channel %q must be >= 1", ErrInvalidConfig, ch)
		}
	}

	sg := &cfg.Safeguards
	if sg.MinConfidenceGate < 0 || sg.MinConfidenceGate > 1 {
		return fmt.Errorf("%w: min_confidence_gate must be in [0,1]", ErrInvalidConfig)
	}
	if sg.MaxChannelContribution <= 0 || sg.MaxChannelContribution > 1 {
		return fmt.Errorf("%w: max_channel_contribution must be in (0,1]", ErrInvalidConfig)
	}
	if sg.SingleChannelDownscale <= 0 || sg.SingleChannelDownscale > 1 {
		return fmt.Errorf("%w: single_channel_downscale must be in (0,1]", ErrInvalidConfig)
	}
	if sg.MinSuspiciousChannels < 1 {
		return fmt.Errorf("%w: min_suspicious_channels must be >= 1", ErrInvalidConfig)
	}
	if sg.RescueMultiplier < 1 {
		return fmt.Errorf("%w: rescue_multiplier must be >= 1", ErrInvalidConfig)
	}
	if sg.RescueCap <= 0 || sg.RescueCap > 1 {
		return fmt.Errorf("%w: rescue_cap must be in (0,1]", ErrInvalidConfig)
	}
	if sg.SophisticationDiscount <= 0 || sg.SophisticationDiscount > 1 {
		return fmt.Errorf("%w: sophistication_discount must be in (0,1]", ErrInvalidConfig)
	}
	if sg.MinSessionMs < 0 || sg.ShortSessionMs < sg.MinSessionMs {
		return fmt.Errorf("%w: session duration gates must satisfy 0 <= min <= short", ErrInvalidConfig)
	}

	// Classification cut points must be strictly descending.
	if !(sg.BotThreshold > sg.SuspiciousThreshold &&
		sg.SuspiciousThreshold > sg.LikelyHumanThreshold &&
		sg.LikelyHumanThreshold > 0) {
		return fmt.Errorf("%w: classification thresholds must be strictly descending and positive", ErrInvalidConfig)
	}
	if sg.BotThreshold > 1 {
		return fmt.Errorf("%w: bot_threshold must be <= 1", ErrInvalidConfig)
	}

	if cfg.Mouse.NaiveBoost < 1 {
		return fmt.Errorf("%w: mouse naive_boost must be >= 1", ErrInvalidConfig)
	}
	if cfg.Sensors.FixedConfidence < 0 || cfg.Sensors.FixedConfidence > 1 {
		return fmt.Errorf("%w: sensors fixed_confidence must be in [0,1]", ErrInvalidConfig)
	}
	return nil
}
