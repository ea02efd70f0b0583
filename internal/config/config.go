// Package config is the file-facing shape of a full setup: scene, run
// parameters, camera, and output size, serialized as YAML.
package config

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/kmoroz/gravbasin/internal/camera"
	"github.com/kmoroz/gravbasin/internal/integrator"
	"github.com/kmoroz/gravbasin/internal/render"
	"github.com/kmoroz/gravbasin/internal/scene"
	"github.com/kmoroz/gravbasin/internal/sim"
)

type BodyConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Mass   float64 `yaml:"mass"`
	Radius float64 `yaml:"radius"`
	Color  string  `yaml:"color"`
}

type CameraConfig struct {
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
	Zoom    float64 `yaml:"zoom"`
	VX      float64 `yaml:"vx"`
	VY      float64 `yaml:"vy"`
}

type Config struct {
	// Preset, when set, overrides Bodies/G/Softening with a built-in scene.
	Preset    string       `yaml:"preset,omitempty"`
	Bodies    []BodyConfig `yaml:"bodies,omitempty"`
	G         float64      `yaml:"g"`
	Softening float64      `yaml:"softening"`

	Dt           float64 `yaml:"dt"`
	MaxSteps     int     `yaml:"max_steps"`
	Method       string  `yaml:"method"`
	EscapeRadius float64 `yaml:"escape_radius"`

	Camera CameraConfig `yaml:"camera"`

	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Workers int `yaml:"workers"`
}

func Default() *Config {
	sp := sim.DefaultParams()
	rp := render.DefaultParams()
	return &Config{
		Preset:       "wells",
		Dt:           sp.Dt,
		MaxSteps:     sp.MaxSteps,
		Method:       sp.Method.String(),
		EscapeRadius: sp.EscapeRadius,
		Camera:       CameraConfig{Zoom: 1},
		Width:        rp.Width,
		Height:       rp.Height,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	// The default preset must not shadow a file that brings its own bodies;
	// fall back to it only when the file names neither.
	cfg.Preset = ""
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Preset == "" && len(cfg.Bodies) == 0 {
		cfg.Preset = Default().Preset
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Scene builds the validated scene, preferring the preset when named.
func (c *Config) Scene() (*scene.Scene, error) {
	if c.Preset != "" {
		return scene.Preset(c.Preset)
	}
	bodies := make([]scene.Body, len(c.Bodies))
	for i, b := range c.Bodies {
		col, err := parseHexColor(b.Color)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		bodies[i] = scene.Body{
			Pos:    r2.Vec{X: b.X, Y: b.Y},
			Mass:   b.Mass,
			Radius: b.Radius,
			Color:  col,
		}
	}
	return scene.New(bodies, c.G, c.Softening)
}

func (c *Config) SimParams() (sim.Params, error) {
	m, err := integrator.ParseMethod(c.Method)
	if err != nil {
		return sim.Params{}, err
	}
	p := sim.Params{Dt: c.Dt, MaxSteps: c.MaxSteps, Method: m, EscapeRadius: c.EscapeRadius}
	return p, p.Validate()
}

func (c *Config) View() camera.Camera {
	return camera.Camera{
		Offset:    r2.Vec{X: c.Camera.OffsetX, Y: c.Camera.OffsetY},
		Zoom:      c.Camera.Zoom,
		LaunchVel: r2.Vec{X: c.Camera.VX, Y: c.Camera.VY},
	}
}

func (c *Config) RenderParams() render.Params {
	return render.Params{Width: c.Width, Height: c.Height, Workers: c.Workers}
}

func parseHexColor(s string) (color.RGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("config: bad color %q (want #rrggbb)", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// FormatColor renders a body color back to the #rrggbb config form.
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
