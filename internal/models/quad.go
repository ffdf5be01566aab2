package models

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/integrators"
	"github.com/san-kum/quadsim/internal/logging"
)

const (
	DefaultMass              = 0.2
	DefaultGravity           = 9.8
	DefaultThrustCoefficient = 9.8
	DefaultDragCoefficient   = 0.1
	DefaultTickPeriod        = 0.02
)

// Params are the physical constants of the airframe. They are fixed once
// Initialize succeeds.
type Params struct {
	Mass              float64
	Gravity           float64
	ThrustCoefficient float64
	// Drag holds the diagonal of the drag tensor, one coefficient per
	// inertial axis.
	Drag       dynamo.Vec3
	TickPeriod float64
}

func DefaultParams() Params {
	return Params{
		Mass:              DefaultMass,
		Gravity:           DefaultGravity,
		ThrustCoefficient: DefaultThrustCoefficient,
		Drag:              dynamo.Vec3{DefaultDragCoefficient, DefaultDragCoefficient, DefaultDragCoefficient},
		TickPeriod:        DefaultTickPeriod,
	}
}

// Validate rejects parameter sets that would make Step produce NaN.
func (p Params) Validate() error {
	switch {
	case !(p.Mass > 0) || math.IsInf(p.Mass, 0):
		return errors.Wrapf(dynamo.ErrParameterBounds, "mass must be positive and finite, got %v", p.Mass)
	case !(p.TickPeriod > 0) || math.IsInf(p.TickPeriod, 0):
		return errors.Wrapf(dynamo.ErrParameterBounds, "tick period must be positive and finite, got %v", p.TickPeriod)
	case math.IsNaN(p.Gravity) || math.IsInf(p.Gravity, 0):
		return errors.Wrapf(dynamo.ErrParameterBounds, "gravity must be finite, got %v", p.Gravity)
	case math.IsNaN(p.ThrustCoefficient) || math.IsInf(p.ThrustCoefficient, 0):
		return errors.Wrapf(dynamo.ErrParameterBounds, "thrust coefficient must be finite, got %v", p.ThrustCoefficient)
	case !dynamo.IsFinite(p.Drag):
		return errors.Wrapf(dynamo.ErrParameterBounds, "drag must be finite, got %v", p.Drag)
	}
	for i, c := range p.Drag {
		if c < 0 {
			return errors.Wrapf(dynamo.ErrParameterBounds, "drag[%d] must not be negative, got %v", i, c)
		}
	}
	return nil
}

type InitialConditions struct {
	Position    dynamo.Vec3
	Velocity    dynamo.Vec3
	Orientation dynamo.Euler
}

// Quad is the point-mass quadcopter flight model. Thrust acts along body
// +Z, rotated into the inertial frame by the stored attitude; gravity and
// linear drag act in the inertial frame. Attitude is held, there are no
// rotational dynamics.
type Quad struct {
	params     Params
	gravity    dynamo.Vec3
	drag       mgl64.Mat3
	initial    InitialConditions
	integrator *integrators.Euler

	pos, vel, acc dynamo.Vec3
	att           dynamo.Euler
	throttle      float64
	grounded      bool

	log *zap.Logger
}

func NewQuad(log *zap.Logger) *Quad {
	return &Quad{
		integrator: integrators.NewEuler(),
		log:        logging.OrNop(log).Named("quad"),
	}
}

// Initialize sets the constants and applies the initial conditions.
// Calling it again with the same arguments leaves the model in the same
// state as calling it once.
func (q *Quad) Initialize(p Params, ic InitialConditions) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !dynamo.IsFinite(ic.Position) || !dynamo.IsFinite(ic.Velocity) || !ic.Orientation.IsValid() {
		return errors.Wrap(dynamo.ErrInvalidState, "initial conditions")
	}

	q.params = p
	q.gravity = dynamo.Vec3{0, 0, -p.Gravity}
	q.drag = mgl64.Diag3(p.Drag)
	q.initial = ic
	q.Reset()

	q.log.Debug("initialized",
		zap.Float64("mass", p.Mass),
		zap.Float64("gravity", p.Gravity),
		zap.Float64("thrust_coefficient", p.ThrustCoefficient),
		zap.Float64s("drag", p.Drag[:]),
		zap.Float64("tick_period", p.TickPeriod),
	)
	return nil
}

// Reset reapplies the stored initial conditions.
func (q *Quad) Reset() {
	q.pos = q.initial.Position
	q.vel = q.initial.Velocity
	q.acc = dynamo.Vec3{}
	q.att = q.initial.Orientation
	q.throttle = 0
	q.grounded = false
}

// ThrustDirection is body +Z expressed in the inertial frame for a
// yaw-pitch-roll attitude.
func ThrustDirection(e dynamo.Euler) dynamo.Vec3 {
	sr, cr := math.Sincos(e.Roll)
	sp, cp := math.Sincos(e.Pitch)
	sy, cy := math.Sincos(e.Yaw)
	return dynamo.Vec3{
		cy*sp*cr + sy*sr,
		sy*sp*cr - cy*sr,
		cp * cr,
	}
}

// thrustAccel returns the inertial acceleration produced by a thrust force.
func (q *Quad) thrustAccel(thrust float64) dynamo.Vec3 {
	specific := thrust / q.params.Mass
	return ThrustDirection(q.att).Mul(specific)
}

// dragAccel is (1/m)·D·v.
func (q *Quad) dragAccel() dynamo.Vec3 {
	return q.drag.Mul3x1(q.vel).Mul(1 / q.params.Mass)
}

// Step advances the model by one fixed tick.
//
// While the quad sits on or below the ground plane and the net vertical
// acceleration does not point up, z is pinned to 0 and integration is
// skipped for the tick. Velocity is left untouched.
func (q *Quad) Step(dt, throttle float64) dynamo.Pose {
	q.throttle = throttle
	thrust := q.params.ThrustCoefficient * throttle

	q.acc = q.gravity.Add(q.thrustAccel(thrust)).Sub(q.dragAccel())

	if ce := q.log.Check(zap.DebugLevel, "tick"); ce != nil {
		ce.Write(
			zap.Float64("throttle", throttle),
			zap.Float64("ax", q.acc[0]),
			zap.Float64("ay", q.acc[1]),
			zap.Float64("az", q.acc[2]),
		)
	}

	if q.pos[2] <= 0 && q.acc[2] <= 0 {
		q.pos[2] = 0
		q.grounded = true
	} else {
		q.pos, q.vel = q.integrator.Step(q.pos, q.vel, q.acc, dt)
		q.grounded = false
	}

	return q.Pose()
}

// Validate reports ErrInvalidState when any state component stopped
// being finite.
func (q *Quad) Validate() error {
	switch {
	case !dynamo.IsFinite(q.pos):
		return errors.Wrapf(dynamo.ErrInvalidState, "position %v", q.pos)
	case !dynamo.IsFinite(q.vel):
		return errors.Wrapf(dynamo.ErrInvalidState, "velocity %v", q.vel)
	case !dynamo.IsFinite(q.acc):
		return errors.Wrapf(dynamo.ErrInvalidState, "acceleration %v", q.acc)
	case !q.att.IsValid():
		return errors.Wrapf(dynamo.ErrInvalidState, "orientation %+v", q.att)
	}
	return nil
}

func (q *Quad) Pose() dynamo.Pose {
	return dynamo.Pose{Position: q.pos, Orientation: q.att}
}

// Sample returns the full tick record; Time is left for the caller.
func (q *Quad) Sample() dynamo.Sample {
	return dynamo.Sample{
		Position:     q.pos,
		Velocity:     q.vel,
		Acceleration: q.acc,
		Orientation:  q.att,
		Throttle:     q.throttle,
		Grounded:     q.grounded,
	}
}

func (q *Quad) Position() dynamo.Vec3     { return q.pos }
func (q *Quad) Velocity() dynamo.Vec3     { return q.vel }
func (q *Quad) Acceleration() dynamo.Vec3 { return q.acc }
func (q *Quad) Orientation() dynamo.Euler { return q.att }
func (q *Quad) Grounded() bool            { return q.grounded }
func (q *Quad) Params() Params            { return q.params }
func (q *Quad) TickPeriod() float64       { return q.params.TickPeriod }

// HoverThrottle is the throttle whose thrust exactly cancels gravity when
// level.
func (q *Quad) HoverThrottle() float64 {
	if q.params.ThrustCoefficient == 0 {
		return math.Inf(1)
	}
	return q.params.Mass * q.params.Gravity / q.params.ThrustCoefficient
}
