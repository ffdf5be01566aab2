package config

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
)

// Preset is a named starting point. Apply only overrides what differs
// from DefaultConfig.
type Preset struct {
	Description string
	Apply       func(*Config)
}

var Presets = map[string]Preset{
	"hover": {"hold 5 m with the altitude PID", func(c *Config) {
		c.Duration = 30
		c.Input.Mode = InputHold
		c.Input.Hold.Target = 5
	}},
	"liftoff": {"full thrust, ease off, then cut", func(c *Config) {
		c.Duration = 8
		c.Input.Mode = InputScript
		c.Input.Keyframes = []control.Keyframe{
			{At: 0, Inputs: control.Inputs{Thrust: 1}},
			{At: 1.5, Inputs: control.Inputs{Thrust: 0.2}},
			{At: 4, Inputs: control.Inputs{Thrust: 0}},
		}
	}},
	"drop": {"free fall from 10 m", func(c *Config) {
		c.Duration = 5
		c.Init.Position = []float64{0, 0, 10}
	}},
	"tilted": {"spawned rolled by -15 degrees", func(c *Config) {
		c.Duration = 10
		c.Init.Roll = -15
		c.Init.Position = []float64{0, 0, 2}
		c.Input.Mode = InputConstant
		c.Input.Constant = control.Inputs{Thrust: 0.25}
	}},
	"nodrag": {"drifting at 2 m/s with drag off", func(c *Config) {
		c.Duration = 10
		c.Quad.Drag = []float64{0, 0, 0}
		c.Init.Position = []float64{0, 0, 5}
		c.Init.Velocity = []float64{2, 0, 0}
		c.Input.Mode = InputHold
	}},
}

// GetPreset returns a fresh config with the named preset applied.
func GetPreset(name string) (*Config, error) {
	preset, ok := Presets[name]
	if !ok {
		return nil, errors.Wrapf(dynamo.ErrUnknownPreset, "%q (available: %v)", name, ListPresets())
	}
	cfg := DefaultConfig()
	cfg.Name = name
	preset.Apply(cfg)
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
