package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botsense/internal/telemetry"
)

func TestBuild_DefaultsAreValid(t *testing.T) {
	cfg, err := Build()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestBuild_WithFunc(t *testing.T) {
	cfg, err := Build(WithFunc(func(c *Config) {
		c.ChannelWeights[telemetry.ChannelSensors] = 0
		c.Safeguards.BotThreshold = 0.8
	}))
	require.NoError(t, err)
	assert.Zero(t, cfg.ChannelWeights[telemetry.ChannelSensors])
	assert.Equal(t, 0.8, cfg.Safeguards.BotThreshold)

	// Untouched fields keep their defaults.
	assert.Equal(t, Defaults().Mouse, cfg.Mouse)
}

// =============================================================================
// JSON overrides
// =============================================================================

func TestBuild_WithJSONPartialMerge(t *testing.T) {
	doc := []byte(`{
		"mouse": {"straight_line_ratio_threshold": 0.9},
		"safeguards": {"bot_threshold": 0.75}
	}`)
	cfg, err := Build(WithJSON(doc))
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Mouse.StraightLineRatioThreshold)
	assert.Equal(t, 0.75, cfg.Safeguards.BotThreshold)

	// Sibling fields in a partially overridden block survive.
	assert.Equal(t, Defaults().Mouse.StraightLineWeight, cfg.Mouse.StraightLineWeight)
	assert.Equal(t, Defaults().Safeguards.SuspiciousThreshold, cfg.Safeguards.SuspiciousThreshold)
}

func TestBuild_WithJSONRejectsUnknownTopLevelKey(t *testing.T) {
	_, err := Build(WithJSON([]byte(`{"mices": {"x": 1}}`)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuild_WithJSONRejectsNonNumericLeaf(t *testing.T) {
	_, err := Build(WithJSON([]byte(`{"mouse": {"straight_line_weight": "high"}}`)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuild_WithJSONRejectsMalformedDocument(t *testing.T) {
	_, err := Build(WithJSON([]byte(`{"mouse":`)))
	require.Error(t, err)
}

func TestBuild_WithJSONRejectsNegativeWeight(t *testing.T) {
	_, err := Build(WithJSON([]byte(`{"channel_weights": {"mouse": -1}}`)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// =============================================================================
// TOML overrides
// =============================================================================

func TestBuild_WithTOMLPartialMerge(t *testing.T) {
	doc := []byte(`
[keyboard]
low_hold_variance_threshold = 6.5

[safeguards]
min_session_ms = 5000
short_session_ms = 12000
`)
	cfg, err := Build(WithTOML(doc))
	require.NoError(t, err)

	assert.Equal(t, 6.5, cfg.Keyboard.LowHoldVarianceThreshold)
	assert.Equal(t, 5000.0, cfg.Safeguards.MinSessionMs)
	assert.Equal(t, Defaults().Keyboard.PasteRate, cfg.Keyboard.PasteRate)
}

func TestBuild_WithTOMLMalformed(t *testing.T) {
	_, err := Build(WithTOML([]byte(`[keyboard`)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// =============================================================================
// Structural validation
// =============================================================================

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative channel weight", func(c *Config) {
			c.ChannelWeights[telemetry.ChannelMouse] = -0.1
		}},
		{"missing channel weight", func(c *Config) {
			delete(c.ChannelWeights, telemetry.ChannelTouch)
		}},
		{"zero min samples", func(c *Config) {
			c.MinSamples[telemetry.ChannelKeyboard] = 0
		}},
		{"equal cut points", func(c *Config) {
			c.Safeguards.SuspiciousThreshold = c.Safeguards.BotThreshold
		}},
		{"ascending cut points", func(c *Config) {
			c.Safeguards.LikelyHumanThreshold = 0.9
		}},
		{"zero likely-human threshold", func(c *Config) {
			c.Safeguards.LikelyHumanThreshold = 0
		}},
		{"bot threshold above one", func(c *Config) {
			c.Safeguards.BotThreshold = 1.5
		}},
		{"short session before min", func(c *Config) {
			c.Safeguards.ShortSessionMs = 1000
		}},
		{"downscale above one", func(c *Config) {
			c.Safeguards.SingleChannelDownscale = 1.2
		}},
		{"rescue multiplier below one", func(c *Config) {
			c.Safeguards.RescueMultiplier = 0.9
		}},
		{"naive boost below one", func(c *Config) {
			c.Mouse.NaiveBoost = 0.5
		}},
		{"fixed confidence above one", func(c *Config) {
			c.Sensors.FixedConfidence = 1.5
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestBuild_OverrideProducingInvalidConfigRejected(t *testing.T) {
	_, err := Build(WithFunc(func(c *Config) {
		c.Safeguards.BotThreshold = 0.1
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
