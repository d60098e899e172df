// Package config holds the viewer configuration: defaults, YAML decoding and validation.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full viewer configuration.
type Config struct {
	// Model is the path or URL of the asset to load at startup.
	Model string `yaml:"model"`

	// Color is an optional colour applied once the model has loaded.
	Color string `yaml:"color,omitempty"`

	// Watch reloads the model when the file content changes.
	Watch bool `yaml:"watch"`

	// Headless renders without a window.
	Headless bool `yaml:"headless"`

	// Frames stops the viewer after this many frames. 0 runs until closed.
	Frames uint64 `yaml:"frames"`

	// TickRate is the headless frame rate.
	TickRate float64 `yaml:"tick_rate"`

	// Profile enables the periodic frame report.
	Profile bool `yaml:"profile"`

	Window   WindowConfig   `yaml:"window"`
	Camera   CameraConfig   `yaml:"camera"`
	Lights   LightsConfig   `yaml:"lights"`
	PostLoad PostLoadConfig `yaml:"post_load"`
	Control  ControlConfig  `yaml:"control"`
	Log      LogConfig      `yaml:"log"`
}

// WindowConfig configures the window and the surface.
type WindowConfig struct {
	Title    string `yaml:"title"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	VSync    bool   `yaml:"vsync"`
	MSAA     int    `yaml:"msaa"`
	Software bool   `yaml:"software"`

	// MinWidth and MinHeight bound interactive resizing; zero removes the bound.
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`

	// MaxWidth and MaxHeight bound interactive resizing; zero leaves the axis unbounded.
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// CameraConfig configures the perspective camera and the orbit controller.
type CameraConfig struct {
	// Fov is the vertical field of view in degrees.
	Fov  float32 `yaml:"fov"`
	Near float32 `yaml:"near"`
	Far  float32 `yaml:"far"`

	Eye    [3]float32 `yaml:"eye"`
	Target [3]float32 `yaml:"target"`

	MinDistance float32 `yaml:"min_distance"`
	MaxDistance float32 `yaml:"max_distance"`

	Damping          bool    `yaml:"damping"`
	DampingFrequency float64 `yaml:"damping_frequency"`
	DampingRatio     float64 `yaml:"damping_ratio"`
}

// LightsConfig configures the ambient and directional lights.
type LightsConfig struct {
	AmbientColor         string     `yaml:"ambient_color"`
	AmbientIntensity     float32    `yaml:"ambient_intensity"`
	DirectionalColor     string     `yaml:"directional_color"`
	DirectionalIntensity float32    `yaml:"directional_intensity"`
	DirectionalPosition  [3]float32 `yaml:"directional_position"`
}

// PostLoadConfig is the transform applied to every loaded model.
type PostLoadConfig struct {
	Scale    [3]float32 `yaml:"scale"`
	Position [3]float32 `yaml:"position"`
}

// ControlConfig configures the HTTP/WebSocket control surface.
type ControlConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is json or console.
	Format string `yaml:"format"`
}

// Default returns the built-in settings: the chair model in a 1280x720 window that
// resizes down to 320x200, seen from (0,1.5,6) through a 75 degree lens, orbit
// distance clamped to [2,10] with damping, scaled by 3 and lowered by 0.5 after loading.
//
// Returns:
//   - *Config: a new default configuration
func Default() *Config {
	return &Config{
		Model:    "./models/CHAIR.glb",
		TickRate: 60,
		Window: WindowConfig{
			Title:     "oxy-viewer",
			Width:     1280,
			Height:    720,
			VSync:     true,
			MSAA:      4,
			MinWidth:  320,
			MinHeight: 200,
		},
		Camera: CameraConfig{
			Fov:              75,
			Near:             0.1,
			Far:              1000,
			Eye:              [3]float32{0, 1.5, 6},
			MinDistance:      2,
			MaxDistance:      10,
			Damping:          true,
			DampingFrequency: 6,
			DampingRatio:     1,
		},
		Lights: LightsConfig{
			AmbientColor:         "white",
			AmbientIntensity:     1.5,
			DirectionalColor:     "white",
			DirectionalIntensity: 2,
			DirectionalPosition:  [3]float32{5, 5, 5},
		},
		PostLoad: PostLoadConfig{
			Scale:    [3]float32{3, 3, 3},
			Position: [3]float32{0, -0.5, 0},
		},
		Control: ControlConfig{
			Addr: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
//
// Parameters:
//   - path: the YAML file, or ""
//
// Returns:
//   - *Config: the decoded, validated configuration
//   - error: a read, decode or validation error
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads YAML from r over the defaults and validates the result.
// Unknown keys are rejected.
//
// Parameters:
//   - r: the YAML source
//
// Returns:
//   - *Config: the decoded, validated configuration
//   - error: a decode or validation error
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints.
//
// Returns:
//   - error: ErrInvalidConfig joined with every problem found, or nil
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(c.Model) == "" {
		add("model must be set")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		add("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.MinWidth < 0 || c.Window.MinHeight < 0 || c.Window.MaxWidth < 0 || c.Window.MaxHeight < 0 {
		add("window size limits must not be negative")
	}
	if !within(c.Window.Width, c.Window.MinWidth, c.Window.MaxWidth) {
		add("window width %d outside limits [%d,%d]", c.Window.Width, c.Window.MinWidth, c.Window.MaxWidth)
	}
	if !within(c.Window.Height, c.Window.MinHeight, c.Window.MaxHeight) {
		add("window height %d outside limits [%d,%d]", c.Window.Height, c.Window.MinHeight, c.Window.MaxHeight)
	}
	if c.Window.MSAA != 1 && c.Window.MSAA != 4 {
		add("msaa must be 1 or 4, got %d", c.Window.MSAA)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		add("fov %v must be in (0,180)", c.Camera.Fov)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= 0 || c.Camera.Near >= c.Camera.Far {
		add("near %v and far %v must be positive with near < far", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.MinDistance <= 0 || c.Camera.MinDistance > c.Camera.MaxDistance {
		add("distance bounds [%v,%v] must be positive with min <= max", c.Camera.MinDistance, c.Camera.MaxDistance)
	}
	if c.Camera.Damping && (c.Camera.DampingFrequency <= 0 || c.Camera.DampingRatio <= 0) {
		add("damping frequency %v and ratio %v must be positive", c.Camera.DampingFrequency, c.Camera.DampingRatio)
	}
	for name, value := range map[string]string{
		"ambient_color":     c.Lights.AmbientColor,
		"directional_color": c.Lights.DirectionalColor,
	} {
		if _, err := common.ParseColor(value); err != nil {
			add("%s: %w", name, err)
		}
	}
	if c.Color != "" {
		if _, err := common.ParseColor(c.Color); err != nil {
			add("color: %w", err)
		}
	}
	if c.TickRate <= 0 {
		add("tick_rate %v must be positive", c.TickRate)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		add("log format %q must be json or console", c.Log.Format)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// within reports whether v lies in [lo,hi], where hi of zero means unbounded.
func within(v, lo, hi int) bool {
	return v >= lo && (hi == 0 || v <= hi)
}
