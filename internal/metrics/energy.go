package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Energy is the mean mechanical energy (kinetic plus potential above the
// ground plane) over the observed ticks.
type Energy struct {
	name        string
	mass        float64
	gravity     float64
	samples     int
	totalEnergy float64
}

func NewEnergy(mass, gravity float64) *Energy {
	return &Energy{
		name:    "energy",
		mass:    mass,
		gravity: gravity,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s dynamo.Sample) {
	ke := 0.5 * e.mass * s.Velocity.Dot(s.Velocity)
	pe := e.mass * e.gravity * s.Position[2]
	e.totalEnergy += ke + pe
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// MaxAltitude tracks the highest z reached.
type MaxAltitude struct {
	name    string
	max     float64
	samples int
}

func NewMaxAltitude() *MaxAltitude {
	return &MaxAltitude{name: "max_altitude"}
}

func (m *MaxAltitude) Name() string { return m.name }

func (m *MaxAltitude) Observe(s dynamo.Sample) {
	if m.samples == 0 {
		m.max = s.Position[2]
	}
	m.max = math.Max(m.max, s.Position[2])
	m.samples++
}

func (m *MaxAltitude) Value() float64 {
	return m.max
}

func (m *MaxAltitude) Reset() {
	m.max = 0
	m.samples = 0
}
