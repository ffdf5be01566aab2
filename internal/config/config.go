package config

import (
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/models"
	"github.com/san-kum/quadsim/internal/sim"
)

const (
	DefaultTickPeriod    = models.DefaultTickPeriod
	DefaultFrameDt       = 1.0 / 60
	DefaultDuration      = 10.0
	DefaultUnitsPerMeter = 100.0
	DefaultSpeedLimit    = 20.0
	DefaultKp            = 0.1
	DefaultKi            = 0.01
	DefaultKd            = 0.1
	DefaultTarget        = 5.0
)

// Input modes.
const (
	InputConstant = "constant"
	InputScript   = "script"
	InputHold     = "hold"
)

type Config struct {
	Name          string               `yaml:"name"`
	TickPeriod    float64              `yaml:"tick_period"`
	FrameDt       float64              `yaml:"frame_dt"`
	Duration      float64              `yaml:"duration"`
	ValidateState bool                 `yaml:"validate_state"`
	UnitsPerMeter float64              `yaml:"units_per_meter"`
	SpeedLimit    float64              `yaml:"speed_limit"`
	Quad          QuadConfig           `yaml:"quad"`
	Init          InitStateConfig      `yaml:"init_state"`
	Mapper        control.MapperParams `yaml:"mapper"`
	Input         InputConfig          `yaml:"input"`
}

type QuadConfig struct {
	Mass              float64   `yaml:"mass"`
	Gravity           float64   `yaml:"gravity"`
	ThrustCoefficient float64   `yaml:"thrust_coefficient"`
	Drag              []float64 `yaml:"drag"`
}

type InitStateConfig struct {
	// Position in meters. Ignored when WorldPosition is set.
	Position []float64 `yaml:"position"`
	// WorldPosition is the host placement in world units; it is divided
	// by UnitsPerMeter.
	WorldPosition []float64 `yaml:"world_position,omitempty"`
	Velocity      []float64 `yaml:"velocity"`
	// Orientation in degrees, math frame.
	Roll  float64 `yaml:"roll"`
	Pitch float64 `yaml:"pitch"`
	Yaw   float64 `yaml:"yaw"`
}

type InputConfig struct {
	Mode      string             `yaml:"mode"`
	Constant  control.Inputs     `yaml:"constant"`
	Script    string             `yaml:"script,omitempty"`
	Keyframes []control.Keyframe `yaml:"keyframes,omitempty"`
	Hold      HoldConfig         `yaml:"hold"`
}

type HoldConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Target float64 `yaml:"target"`
}

func DefaultConfig() *Config {
	p := models.DefaultParams()
	return &Config{
		Name:          "default",
		TickPeriod:    DefaultTickPeriod,
		FrameDt:       DefaultFrameDt,
		Duration:      DefaultDuration,
		ValidateState: true,
		UnitsPerMeter: DefaultUnitsPerMeter,
		SpeedLimit:    DefaultSpeedLimit,
		Quad: QuadConfig{
			Mass:              p.Mass,
			Gravity:           p.Gravity,
			ThrustCoefficient: p.ThrustCoefficient,
			Drag:              []float64{p.Drag[0], p.Drag[1], p.Drag[2]},
		},
		Init: InitStateConfig{
			Position: []float64{0, 0, 0},
			Velocity: []float64{0, 0, 0},
		},
		Mapper: control.DefaultMapperParams(),
		Input: InputConfig{
			Mode: InputConstant,
			Hold: HoldConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd, Target: DefaultTarget},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
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

// Validate checks every field that the simulator would otherwise turn
// into NaN or a stuck loop.
func (c *Config) Validate() error {
	if !positive(c.TickPeriod) {
		return errors.Wrapf(dynamo.ErrParameterBounds, "tick_period must be positive and finite, got %v", c.TickPeriod)
	}
	if !(c.FrameDt >= 0) || math.IsInf(c.FrameDt, 0) {
		return errors.Wrapf(dynamo.ErrParameterBounds, "frame_dt must be finite and not negative, got %v", c.FrameDt)
	}
	if !positive(c.Duration) {
		return errors.Wrapf(dynamo.ErrParameterBounds, "duration must be positive and finite, got %v", c.Duration)
	}
	if !positive(c.UnitsPerMeter) {
		return errors.Wrapf(dynamo.ErrParameterBounds, "units_per_meter must be positive and finite, got %v", c.UnitsPerMeter)
	}
	if c.Mapper.MinSpeed > c.Mapper.MaxSpeed {
		return errors.Wrapf(dynamo.ErrParameterBounds, "mapper.min_speed %v exceeds max_speed %v", c.Mapper.MinSpeed, c.Mapper.MaxSpeed)
	}
	p, err := c.QuadParams()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return errors.WithMessage(err, "quad")
	}
	if _, err := c.InitialConditions(); err != nil {
		return err
	}
	switch c.Input.Mode {
	case "", InputConstant, InputHold:
	case InputScript:
		if c.Input.Script == "" && len(c.Input.Keyframes) == 0 {
			return errors.Wrap(dynamo.ErrParameterBounds, "input.mode script needs input.script or input.keyframes")
		}
	default:
		return errors.Wrapf(dynamo.ErrParameterBounds, "unknown input.mode %q", c.Input.Mode)
	}
	return nil
}

func (c *Config) QuadParams() (models.Params, error) {
	drag, err := vec3("quad.drag", c.Quad.Drag)
	if err != nil {
		return models.Params{}, err
	}
	return models.Params{
		Mass:              c.Quad.Mass,
		Gravity:           c.Quad.Gravity,
		ThrustCoefficient: c.Quad.ThrustCoefficient,
		Drag:              drag,
		TickPeriod:        c.TickPeriod,
	}, nil
}

func (c *Config) InitialConditions() (models.InitialConditions, error) {
	var ic models.InitialConditions
	var err error

	if len(c.Init.WorldPosition) > 0 {
		world, err := vec3("init_state.world_position", c.Init.WorldPosition)
		if err != nil {
			return ic, err
		}
		ic.Position = dynamo.FromWorld(world, c.UnitsPerMeter)
	} else if ic.Position, err = vec3("init_state.position", c.Init.Position); err != nil {
		return ic, err
	}
	if ic.Velocity, err = vec3("init_state.velocity", c.Init.Velocity); err != nil {
		return ic, err
	}
	ic.Orientation = dynamo.Euler{
		Roll:  mgl64.DegToRad(c.Init.Roll),
		Pitch: mgl64.DegToRad(c.Init.Pitch),
		Yaw:   mgl64.DegToRad(c.Init.Yaw),
	}
	return ic, nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		TickPeriod:    c.TickPeriod,
		FrameDt:       c.FrameDt,
		Duration:      c.Duration,
		ValidateState: c.ValidateState,
	}
}

// Source builds the input source for the run. hover is the throttle fed
// forward by the altitude hold.
func (c *Config) Source(hover float64) (control.Source, error) {
	switch c.Input.Mode {
	case "", InputConstant:
		return control.Constant(c.Input.Constant), nil
	case InputScript:
		if c.Input.Script != "" {
			script, err := control.LoadScript(c.Input.Script)
			if err != nil {
				return nil, err
			}
			return script, nil
		}
		return control.NewScript(c.Input.Keyframes), nil
	case InputHold:
		h := c.Input.Hold
		hold := control.NewAltitudeHold(h.Kp, h.Ki, h.Kd, h.Target, hover)
		hold.Inner = control.Constant(c.Input.Constant)
		return hold, nil
	}
	return nil, errors.Wrapf(dynamo.ErrParameterBounds, "unknown input.mode %q", c.Input.Mode)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func vec3(field string, v []float64) (dynamo.Vec3, error) {
	switch len(v) {
	case 0:
		return dynamo.Vec3{}, nil
	case 3:
		return dynamo.Vec3{v[0], v[1], v[2]}, nil
	}
	return dynamo.Vec3{}, errors.Wrapf(dynamo.ErrParameterBounds, "%s needs 3 components, got %d", field, len(v))
}
