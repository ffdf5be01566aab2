package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is an inertial-frame vector.
type Vec3 = mgl64.Vec3

// Euler holds math-frame attitude in radians.
type Euler struct {
	Roll, Pitch, Yaw float64
}

// Rotator is the host display orientation in degrees. Every axis is the
// negation of the corresponding Euler angle because the host's rotation
// convention is mirrored relative to the math frame.
type Rotator struct {
	Pitch, Yaw, Roll float64
}

// HostRotator converts math-frame radians into the host rotator.
func (e Euler) HostRotator() Rotator {
	return Rotator{
		Pitch: -mgl64.RadToDeg(e.Pitch),
		Yaw:   -mgl64.RadToDeg(e.Yaw),
		Roll:  -mgl64.RadToDeg(e.Roll),
	}
}

// Euler converts a host rotator back into math-frame radians.
func (r Rotator) Euler() Euler {
	return Euler{
		Roll:  -mgl64.DegToRad(r.Roll),
		Pitch: -mgl64.DegToRad(r.Pitch),
		Yaw:   -mgl64.DegToRad(r.Yaw),
	}
}

func (e Euler) IsValid() bool {
	return finite(e.Roll) && finite(e.Pitch) && finite(e.Yaw)
}

// Pose is the published output of one fixed tick.
type Pose struct {
	Position    Vec3
	Orientation Euler
}

// World returns the position scaled into host world units.
func (p Pose) World(unitsPerMeter float64) Vec3 {
	return p.Position.Mul(unitsPerMeter)
}

// Rotator returns the orientation in the host convention.
func (p Pose) Rotator() Rotator {
	return p.Orientation.HostRotator()
}

// FromWorld converts a host placement into meters.
func FromWorld(v Vec3, unitsPerMeter float64) Vec3 {
	return v.Mul(1 / unitsPerMeter)
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Sample is everything recorded about one fixed tick.
type Sample struct {
	Time         float64
	Position     Vec3
	Velocity     Vec3
	Acceleration Vec3
	Orientation  Euler
	Throttle     float64
	Grounded     bool
}

// Pose returns the pose part of the sample.
func (s Sample) Pose() Pose {
	return Pose{Position: s.Position, Orientation: s.Orientation}
}

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Observer is notified after every fixed tick.
type Observer interface {
	OnStep(s Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Sample)

func (f ObserverFunc) OnStep(s Sample) { f(s) }

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded sample, or the zero sample.
func (r *Result) Final() Sample {
	if len(r.Samples) == 0 {
		return Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}
