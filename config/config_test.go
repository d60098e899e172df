package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "./models/CHAIR.glb", cfg.Model)
	assert.Equal(t, float32(75), cfg.Camera.Fov)
	assert.Equal(t, [3]float32{0, 1.5, 6}, cfg.Camera.Eye)
	assert.Equal(t, float32(2), cfg.Camera.MinDistance)
	assert.Equal(t, float32(10), cfg.Camera.MaxDistance)
	assert.Equal(t, [3]float32{3, 3, 3}, cfg.PostLoad.Scale)
	assert.Equal(t, [3]float32{0, -0.5, 0}, cfg.PostLoad.Position)
	assert.Equal(t, [3]float32{5, 5, 5}, cfg.Lights.DirectionalPosition)
	assert.Equal(t, 320, cfg.Window.MinWidth)
	assert.Equal(t, 200, cfg.Window.MinHeight)
	assert.Zero(t, cfg.Window.MaxWidth)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
model: https://example.com/lamp.glb
color: "#00ff00"
camera:
  max_distance: 20
post_load:
  scale: [1, 1, 1]
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/lamp.glb", cfg.Model)
	assert.Equal(t, "#00ff00", cfg.Color)
	assert.Equal(t, float32(20), cfg.Camera.MaxDistance)
	assert.Equal(t, float32(2), cfg.Camera.MinDistance)
	assert.Equal(t, [3]float32{1, 1, 1}, cfg.PostLoad.Scale)
	assert.Equal(t, [3]float32{0, -0.5, 0}, cfg.PostLoad.Position)
	assert.Equal(t, 1280, cfg.Window.Width)
}

func TestDecodeEmptyIsDefault(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("camera:\n  zoom: 3\n"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"empty model":        func(c *Config) { c.Model = " " },
		"zero min distance":  func(c *Config) { c.Camera.MinDistance = 0 },
		"min above max":      func(c *Config) { c.Camera.MinDistance = 11 },
		"non-positive fov":   func(c *Config) { c.Camera.Fov = 0 },
		"near after far":     func(c *Config) { c.Camera.Near = 2000 },
		"negative near":      func(c *Config) { c.Camera.Near = -1 },
		"zero window":        func(c *Config) { c.Window.Width = 0 },
		"bad msaa":           func(c *Config) { c.Window.MSAA = 2 },
		"negative limit":     func(c *Config) { c.Window.MaxHeight = -1 },
		"below min width":    func(c *Config) { c.Window.Width = 100 },
		"above max height":   func(c *Config) { c.Window.MaxHeight = 600 },
		"bad colour":         func(c *Config) { c.Color = "not-a-colour" },
		"bad light colour":   func(c *Config) { c.Lights.AmbientColor = "#12" },
		"bad log level":      func(c *Config) { c.Log.Level = "loud" },
		"bad log format":     func(c *Config) { c.Log.Format = "xml" },
		"zero tick rate":     func(c *Config) { c.TickRate = 0 },
		"bad damping spring": func(c *Config) { c.Camera.DampingRatio = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestWindowLimitsDecode(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
window:
  width: 800
  height: 600
  min_width: 0
  max_width: 1920
  max_height: 1080
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.Window.MinWidth)
	assert.Equal(t, 200, cfg.Window.MinHeight)
	assert.Equal(t, 1920, cfg.Window.MaxWidth)
	assert.Equal(t, 1080, cfg.Window.MaxHeight)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watch: true\nwindow:\n  width: 640\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Watch)
	assert.Equal(t, 640, cfg.Window.Width)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}
