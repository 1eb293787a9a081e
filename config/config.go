// Package config provides configuration loading and access for the renderer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all renderer configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Tubes     TubesConfig     `yaml:"tubes"`
	Pulse     PulseConfig     `yaml:"pulse"`
	Glow      GlowConfig      `yaml:"glow"`
	Colors    ColorsConfig    `yaml:"colors"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
	Resizable bool   `yaml:"resizable"`
}

// TubesConfig holds the tube field layout.
type TubesConfig struct {
	Spacing      float64 `yaml:"spacing"`       // Vertical distance between tube anchors
	AngleDegrees float64 `yaml:"angle_degrees"` // Shared tube angle
	Thickness    float64 `yaml:"thickness"`     // Base stroke width of the tube body
	MarginFactor float64 `yaml:"margin_factor"` // Field margin above/below the viewport, as a fraction of the diagonal
	Extension    float64 `yaml:"extension"`     // Extra length on each end, as a fraction of the diagonal
}

// PulseConfig holds pulse sampling ranges.
type PulseConfig struct {
	SpeedMin       float64 `yaml:"speed_min"`
	SpeedMax       float64 `yaml:"speed_max"`
	LengthMin      float64 `yaml:"length_min"`
	LengthMax      float64 `yaml:"length_max"`
	IntensityMin   float64 `yaml:"intensity_min"`
	IntensityMax   float64 `yaml:"intensity_max"`
	ResetMin       float64 `yaml:"reset_min"`       // Closest a reset pulse restarts before the tube start
	ResetRange     float64 `yaml:"reset_range"`     // Width of the reset window
	ResetStagger   float64 `yaml:"reset_stagger"`   // Extra reset distance per tube index
	InitialJitter  float64 `yaml:"initial_jitter"`  // Random part of the first start offset
	InitialStagger float64 `yaml:"initial_stagger"` // First start offset per tube index
}

// GlowConfig holds the pulse glow pass parameters.
type GlowConfig struct {
	WidthFactor     float64 `yaml:"width_factor"`      // Glow stroke = thickness * this
	CoreWidthFactor float64 `yaml:"core_width_factor"` // Core stroke = thickness * this
	Blur            float64 `yaml:"blur"`              // Shadow blur radius of the glow stroke
}

// ColorsConfig holds every colour the renderer paints with.
type ColorsConfig struct {
	Background Color   `yaml:"background"`
	Shadow     Color   `yaml:"shadow"`
	Border     Color   `yaml:"border"`
	Core       Color   `yaml:"core"`
	GlowShadow Color   `yaml:"glow_shadow"`
	PulseCore  Color   `yaml:"pulse_core"`
	Gradient   []Color `yaml:"gradient"` // Four stops: tail, 0.3, 0.7, head; alpha scaled by intensity
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int `yaml:"perf_window"`  // Frames per rolling perf window
	LogInterval int `yaml:"log_interval"` // Frames between perf logs (0 = window size)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Diagonal    float64 // Diagonal of the configured screen
	LogInterval int     // Effective Telemetry.LogInterval
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// MinExtension is the smallest tubes.extension that keeps every tube
// spanning the viewport.
const MinExtension = 0.5

// Validate reports every setting that would break the simulation.
func (c *Config) Validate() error {
	var errs []error
	if c.Tubes.Spacing <= 0 {
		errs = append(errs, fmt.Errorf("tubes.spacing must be positive, got %v", c.Tubes.Spacing))
	}
	if c.Tubes.Thickness <= 0 {
		errs = append(errs, fmt.Errorf("tubes.thickness must be positive, got %v", c.Tubes.Thickness))
	}
	if c.Tubes.MarginFactor < 0 {
		errs = append(errs, fmt.Errorf("tubes.margin_factor must not be negative, got %v", c.Tubes.MarginFactor))
	}
	// Tubes must stay at least twice the diagonal to cross the viewport.
	if c.Tubes.Extension < MinExtension {
		errs = append(errs, fmt.Errorf("tubes.extension must be at least %v, got %v", MinExtension, c.Tubes.Extension))
	}
	p := c.Pulse
	if p.SpeedMin <= 0 || p.SpeedMax < p.SpeedMin {
		errs = append(errs, fmt.Errorf("pulse speed range [%v, %v] invalid", p.SpeedMin, p.SpeedMax))
	}
	if p.LengthMin <= 0 || p.LengthMax < p.LengthMin {
		errs = append(errs, fmt.Errorf("pulse length range [%v, %v] invalid", p.LengthMin, p.LengthMax))
	}
	if p.IntensityMin < 0 || p.IntensityMax > 1 || p.IntensityMax < p.IntensityMin {
		errs = append(errs, fmt.Errorf("pulse intensity range [%v, %v] invalid", p.IntensityMin, p.IntensityMax))
	}
	if p.ResetMin <= 0 {
		errs = append(errs, fmt.Errorf("pulse.reset_min must be positive, got %v", p.ResetMin))
	}
	if p.ResetRange < 0 || p.ResetStagger < 0 || p.InitialJitter < 0 || p.InitialStagger < 0 {
		errs = append(errs, errors.New("pulse reset and initial offsets must not be negative"))
	}
	if len(c.Colors.Gradient) != 4 {
		errs = append(errs, fmt.Errorf("colors.gradient needs 4 stops, got %d", len(c.Colors.Gradient)))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	w := float64(c.Screen.Width)
	h := float64(c.Screen.Height)
	c.Derived.Diagonal = math.Sqrt(w*w + h*h)

	c.Derived.LogInterval = c.Telemetry.LogInterval
	if c.Derived.LogInterval <= 0 {
		c.Derived.LogInterval = c.Telemetry.PerfWindow
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Color is a straight-alpha colour written as "#rrggbb" or "#rrggbbaa".
type Color color.NRGBA

// NRGBA returns the colour as a standard library value.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA(c)
}

// String formats the colour as lowercase hex, dropping a full alpha.
func (c Color) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Color) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}
