package control

import "math"

// Axis names as bound by the host input layer.
const (
	AxisThrust    = "Thrust"
	AxisMoveUp    = "MoveUp"
	AxisMoveRight = "MoveRight"
)

const (
	// nearlyZero is the tolerance under which an axis counts as released.
	nearlyZero = 1e-8

	turnThreshold   = 0.2
	yawPitchCoupled = -0.2
	yawToRoll       = 0.5
	levelGain       = -2.0
	releaseDecel    = -0.5
)

type MapperParams struct {
	// Acceleration is how quickly forward speed changes.
	Acceleration float64 `yaml:"acceleration"`
	// TurnSpeed scales stick deflection into a target rate.
	TurnSpeed           float64 `yaml:"turn_speed"`
	MinSpeed            float64 `yaml:"min_speed"`
	MaxSpeed            float64 `yaml:"max_speed"`
	InitialForwardSpeed float64 `yaml:"initial_forward_speed"`
	// InterpSpeed is the smoothing rate in 1/s.
	InterpSpeed float64 `yaml:"interp_speed"`
}

func DefaultMapperParams() MapperParams {
	return MapperParams{
		Acceleration:        500,
		TurnSpeed:           50,
		MinSpeed:            500,
		MaxSpeed:            4000,
		InitialForwardSpeed: 500,
		InterpSpeed:         2,
	}
}

// Rates are the smoothed legacy channels. The flight model never reads
// them.
type Rates struct {
	Forward, Pitch, Yaw, Roll float64
}

// Mapper converts raw axes into throttle and smoothed rate targets.
type Mapper struct {
	params   MapperParams
	throttle float64
	rates    Rates
}

func NewMapper(p MapperParams) *Mapper {
	return &Mapper{
		params: p,
		rates:  Rates{Forward: clamp(p.InitialForwardSpeed, p.MinSpeed, p.MaxSpeed)},
	}
}

// Update applies one frame of input in binding order: Thrust, MoveUp,
// MoveRight. currentRoll is the host-frame roll in degrees.
func (m *Mapper) Update(in Inputs, currentRoll, dt float64) {
	m.OnThrottle(in.Thrust, dt)
	m.OnPitchStick(in.MoveUp, dt)
	m.OnRollStick(in.MoveRight, currentRoll, dt)
}

// OnThrottle integrates forward speed and latches the raw throttle. A
// released stick decelerates at half the configured rate.
func (m *Mapper) OnThrottle(raw, dt float64) {
	acc := raw * m.params.Acceleration
	if math.Abs(raw) <= nearlyZero {
		acc = releaseDecel * m.params.Acceleration
	}
	m.rates.Forward = clamp(m.rates.Forward+dt*acc, m.params.MinSpeed, m.params.MaxSpeed)
	m.throttle = raw
}

// OnPitchStick steers pitch rate; any yaw rate pulls the nose down a bit.
func (m *Mapper) OnPitchStick(raw, dt float64) {
	target := -raw * m.params.TurnSpeed
	target += math.Abs(m.rates.Yaw) * yawPitchCoupled
	m.rates.Pitch = FInterpTo(m.rates.Pitch, target, dt, m.params.InterpSpeed)
}

// OnRollStick steers yaw rate. While turning the roll rate follows yaw,
// otherwise it works against the current roll to level out.
func (m *Mapper) OnRollStick(raw, currentRoll, dt float64) {
	m.rates.Yaw = FInterpTo(m.rates.Yaw, raw*m.params.TurnSpeed, dt, m.params.InterpSpeed)

	target := currentRoll * levelGain
	if math.Abs(raw) > turnThreshold {
		target = m.rates.Yaw * yawToRoll
	}
	m.rates.Roll = FInterpTo(m.rates.Roll, target, dt, m.params.InterpSpeed)
}

// OnCollision stops the forward-speed channel. The flight model is not
// affected.
func (m *Mapper) OnCollision() {
	m.rates.Forward = 0
}

func (m *Mapper) Throttle() float64 { return m.throttle }
func (m *Mapper) Rates() Rates { return m.rates }
func (m *Mapper) Params() MapperParams { return m.params }

// FInterpTo moves current toward target by a fraction dt*speed of the
// remaining distance, clamped to [0,1]. A non-positive speed jumps
// straight to target.
func FInterpTo(current, target, dt, speed float64) float64 {
	if speed <= 0 {
		return target
	}
	dist := target - current
	if dist*dist < nearlyZero {
		return target
	}
	return current + dist*clamp(dt*speed, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
