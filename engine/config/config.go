package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/volren/engine/math"
	"github.com/spaghettifunk/volren/engine/volume"
)

// Shading holds the ray-march parameters pushed to the composite pass.
// All fields are hot-reloadable at runtime.
type Shading struct {
	StepSize         float32 `toml:"step_size"`
	BaseDistance     float32 `toml:"base_distance"`
	OpacityThreshold float32 `toml:"opacity_threshold"`
	Ambient          float32 `toml:"ambient"`
	Diffuse          float32 `toml:"diffuse"`
	Specular         float32 `toml:"specular"`
	Shininess        float32 `toml:"shininess"`
	Enabled          bool    `toml:"enabled"`
}

type Window struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	Title  string `toml:"title"`
}

type TransferPoint struct {
	Position float32    `toml:"position"`
	Color    [4]float32 `toml:"color"`
}

type Config struct {
	Window           Window          `toml:"window"`
	SampleCount      uint32          `toml:"sample_count"`
	VolumePath       string          `toml:"volume_path"`
	LogLevel         string          `toml:"log_level"`
	DebugAddress     string          `toml:"debug_address"`
	TransferFunction []TransferPoint `toml:"transfer_function"`
	Shading          Shading         `toml:"shading"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Window: Window{
			Width:  1000,
			Height: 1000,
			Title:  "Volren",
		},
		SampleCount: 4,
		VolumePath:  "data/stagbeetle277x277x164.dat",
		LogLevel:    "info",
		TransferFunction: []TransferPoint{
			{Position: 0.0, Color: [4]float32{0, 0, 0, 0}},
			{Position: 0.2, Color: [4]float32{0.91, 0.7, 0.61, 0.2}},
			{Position: 0.5, Color: [4]float32{0.91, 0.7, 0.61, 0.6}},
			{Position: 1.0, Color: [4]float32{1, 1, 0.85, 0.9}},
		},
		Shading: Shading{
			StepSize:         0.0025,
			BaseDistance:     0.0025,
			OpacityThreshold: 0.95,
			Ambient:          0.5,
			Diffuse:          0.5,
			Specular:         0.5,
			Shininess:        32.0,
			Enabled:          true,
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window size must be non-zero, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.SampleCount == 0 || (c.SampleCount&(c.SampleCount-1)) != 0 {
		return fmt.Errorf("sample count must be a power of two >= 1, got %d", c.SampleCount)
	}
	if len(c.TransferFunction) == 0 {
		return fmt.Errorf("transfer function has no control points")
	}
	if c.Shading.StepSize <= 0 {
		return fmt.Errorf("step size must be positive, got %f", c.Shading.StepSize)
	}
	if c.Shading.BaseDistance < 0 {
		return fmt.Errorf("base distance must be non-negative, got %f", c.Shading.BaseDistance)
	}
	return nil
}

// ControlPoints converts the configured transfer function into the
// volume package's control-point form.
func (c *Config) ControlPoints() []volume.ControlPoint {
	points := make([]volume.ControlPoint, len(c.TransferFunction))
	for i, tp := range c.TransferFunction {
		points[i] = volume.ControlPoint{
			Position: tp.Position,
			Color:    math.NewVec4(tp.Color[0], tp.Color[1], tp.Color[2], tp.Color[3]),
		}
	}
	return points
}
