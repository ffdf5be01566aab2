package integrators

import "github.com/san-kum/quadsim/internal/dynamo"

// Euler advances a position/velocity pair by one fixed step. Velocity is
// updated first and the new velocity moves the position, matching the
// order the flight model has always used.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(pos, vel, acc dynamo.Vec3, dt float64) (dynamo.Vec3, dynamo.Vec3) {
	vel = vel.Add(acc.Mul(dt))
	pos = pos.Add(vel.Mul(dt))
	return pos, vel
}
