package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botsense/internal/telemetry"
)

// ============================================================================
// Test helpers
// ============================================================================

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// ============================================================================
// Loading
// ============================================================================

func TestLoader_LoadTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[channels]
enabled = ["mouse", "keyboard"]

[storage]
type = "memory"
debounce_ms = 250

[readiness]
timeout_ms = 5000
`)
	loader := NewLoader(path)
	defer loader.Close()

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"mouse", "keyboard"}, cfg.Channels.Enabled)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 250, cfg.Storage.DebounceMs)
	assert.Equal(t, 5000, cfg.Readiness.TimeoutMs)

	// Unset sections keep their defaults.
	assert.Equal(t, "botsense/session", cfg.Storage.Key)
}

func TestLoader_LoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
channels:
  enabled: [scroll]
storage:
  type: memory
`)
	loader := NewLoader(path)
	defer loader.Close()

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"scroll"}, cfg.Channels.Enabled)
	assert.Equal(t, "memory", cfg.Storage.Type)
}

func TestLoader_LoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"storage": {"type": "memory"}}`)
	loader := NewLoader(path)
	defer loader.Close()

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Type)
}

func TestLoader_UnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.ini", "storage=memory")
	loader := NewLoader(path)
	defer loader.Close()

	_, err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoader_MissingFile(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent.toml"))
	defer loader.Close()

	_, err := loader.Load()
	require.Error(t, err)
}

func TestLoader_InvalidConfigRejected(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[channels]
enabled = ["telepathy"]
`)
	loader := NewLoader(path)
	defer loader.Close()

	_, err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown channel")
}

func TestLoader_SQLiteRequiresPath(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[storage]
type = "sqlite"
`)
	loader := NewLoader(path)
	defer loader.Close()

	_, err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a path")
}

// ============================================================================
// Environment overrides
// ============================================================================

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("BOTSENSE_LOG_LEVEL", "debug")
	t.Setenv("BOTSENSE_STORAGE_TYPE", "memory")
	t.Setenv("BOTSENSE_READY_TIMEOUT_MS", "2500")

	path := writeConfig(t, "config.toml", `
[logging]
level = "warn"
`)
	loader := NewLoader(path)
	defer loader.Close()

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 2500, cfg.Readiness.TimeoutMs)
}

func TestLoader_EnvOverrideBadIntIgnored(t *testing.T) {
	t.Setenv("BOTSENSE_READY_TIMEOUT_MS", "soon")

	path := writeConfig(t, "config.toml", "")
	loader := NewLoader(path)
	defer loader.Close()

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Readiness.TimeoutMs, cfg.Readiness.TimeoutMs)
}

// ============================================================================
// Channel resolution
// ============================================================================

func TestConfig_EnabledChannelsDefaultsToAll(t *testing.T) {
	cfg := Default()
	chans, err := cfg.EnabledChannels()
	require.NoError(t, err)
	assert.Equal(t, telemetry.Channels, chans)
}

func TestConfig_EnabledChannelsCaseInsensitive(t *testing.T) {
	cfg := Default()
	cfg.Channels.Enabled = []string{"Mouse", "KEYBOARD"}
	chans, err := cfg.EnabledChannels()
	require.NoError(t, err)
	assert.Equal(t, []telemetry.Channel{telemetry.ChannelMouse, telemetry.ChannelKeyboard}, chans)
}

// ============================================================================
// Hot reload
// ============================================================================

func TestLoader_WatchReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[storage]
type = "memory"
`)
	loader := NewLoader(path)
	defer loader.Close()

	_, err := loader.Load()
	require.NoError(t, err)

	changed := make(chan *Config, 1)
	loader.OnChange(func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	require.NoError(t, loader.Watch())

	require.NoError(t, os.WriteFile(path, []byte(`
[storage]
type = "none"
`), 0600))

	select {
	case cfg := <-changed:
		assert.Equal(t, "none", cfg.Storage.Type)
		assert.Equal(t, "none", loader.Config().Storage.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestLoader_OnChangeRegistrationDuringReloads(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[storage]
type = "memory"
`)
	loader := NewLoader(path)
	defer loader.Close()

	_, err := loader.Load()
	require.NoError(t, err)

	fired := make(chan struct{}, 64)
	loader.OnChange(func(*Config) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, loader.Watch())

	// Keep registering callbacks while writes trigger reloads on the
	// watcher goroutine; the race detector flags unsynchronized access.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			loader.OnChange(func(*Config) {})
			time.Sleep(time.Millisecond)
		}
	}()
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`
[storage]
type = "memory"
`), 0600))
		time.Sleep(10 * time.Millisecond)
	}
	<-done

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestLoader_InvalidReloadKeepsOldConfig(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[storage]
type = "memory"
`)
	loader := NewLoader(path)
	defer loader.Close()

	_, err := loader.Load()
	require.NoError(t, err)
	require.NoError(t, loader.Watch())

	require.NoError(t, os.WriteFile(path, []byte(`
[storage]
type = "punchcards"
`), 0600))

	select {
	case err := <-loader.Errors():
		assert.Contains(t, err.Error(), "unknown storage type")
	case <-time.After(5 * time.Second):
		t.Fatal("reload error never reported")
	}

	assert.Equal(t, "memory", loader.Config().Storage.Type)
}

// ============================================================================
// Calibration loading
// ============================================================================

func TestConfig_LoadCalibrationDefaults(t *testing.T) {
	cfg := Default()
	cal, err := cfg.LoadCalibration()
	require.NoError(t, err)
	assert.Equal(t, 1.0, cal.ChannelWeights[telemetry.ChannelMouse])
}

func TestConfig_LoadCalibrationJSONOverride(t *testing.T) {
	override := writeConfig(t, "cal.json", `{"safeguards": {"bot_threshold": 0.8}}`)
	cfg := Default()
	cfg.Calibration.Path = override

	cal, err := cfg.LoadCalibration()
	require.NoError(t, err)
	assert.Equal(t, 0.8, cal.Safeguards.BotThreshold)
	assert.Equal(t, 0.45, cal.Safeguards.SuspiciousThreshold)
}

func TestConfig_LoadCalibrationTOMLOverride(t *testing.T) {
	override := writeConfig(t, "cal.toml", `
[safeguards]
bot_threshold = 0.75
`)
	cfg := Default()
	cfg.Calibration.Path = override

	cal, err := cfg.LoadCalibration()
	require.NoError(t, err)
	assert.Equal(t, 0.75, cal.Safeguards.BotThreshold)
}

func TestConfig_LoadCalibrationUnsupportedFormat(t *testing.T) {
	override := writeConfig(t, "cal.yaml", "safeguards:\n  bot_threshold: 0.8\n")
	cfg := Default()
	cfg.Calibration.Path = override

	_, err := cfg.LoadCalibration()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported calibration format")
}
