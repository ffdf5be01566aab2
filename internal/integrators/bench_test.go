package integrators

import (
	"testing"

	"github.com/san-kum/quadsim/internal/dynamo"
)

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	pos := dynamo.Vec3{0, 0, 5}
	vel := dynamo.Vec3{}
	acc := dynamo.Vec3{0.1, 0, -9.8}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos, vel = integrator.Step(pos, vel, acc, 0.02)
	}
	_ = pos
}
