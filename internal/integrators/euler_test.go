package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/quadsim/internal/dynamo"
)

func TestEulerConstantAcceleration(t *testing.T) {
	integ := NewEuler()

	pos := dynamo.Vec3{0, 0, 10}
	vel := dynamo.Vec3{1, 0, 0}
	acc := dynamo.Vec3{0, 0, -9.8}
	dt := 0.02

	pos, vel = integ.Step(pos, vel, acc, dt)

	if math.Abs(vel[2]-(-9.8*dt)) > 1e-12 {
		t.Errorf("vz: got %f, expected %f", vel[2], -9.8*dt)
	}
	// position uses the already-updated velocity
	expectedZ := 10 + vel[2]*dt
	if math.Abs(pos[2]-expectedZ) > 1e-12 {
		t.Errorf("z: got %f, expected %f", pos[2], expectedZ)
	}
	if math.Abs(pos[0]-dt) > 1e-12 {
		t.Errorf("x: got %f, expected %f", pos[0], dt)
	}
}

func TestEulerZeroStep(t *testing.T) {
	integ := NewEuler()
	pos := dynamo.Vec3{1, 2, 3}
	vel := dynamo.Vec3{4, 5, 6}

	p, v := integ.Step(pos, vel, dynamo.Vec3{7, 8, 9}, 0)
	if p != pos || v != vel {
		t.Errorf("zero dt changed state: pos=%v vel=%v", p, v)
	}
}

func TestEulerFreefallConverges(t *testing.T) {
	integ := NewEuler()
	pos := dynamo.Vec3{0, 0, 0}
	vel := dynamo.Vec3{}
	acc := dynamo.Vec3{0, 0, -9.8}

	dt := 0.001
	steps := 1000
	for i := 0; i < steps; i++ {
		pos, vel = integ.Step(pos, vel, acc, dt)
	}

	expected := -0.5 * 9.8 * 1.0
	if math.Abs(pos[2]-expected) > 0.01 {
		t.Errorf("z after 1s: got %.5f, expected ~%.5f", pos[2], expected)
	}
}
