package models

import (
	"math"

	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/quadsim/internal/dynamo"
)

var _ = Describe("Quad", func() {
	var q *Quad

	BeforeEach(func() {
		q = NewQuad(nil)
	})

	Describe("Initialize", func() {
		DescribeTable("rejects bad parameters",
			func(mutate func(*Params)) {
				p := DefaultParams()
				mutate(&p)
				err := q.Initialize(p, InitialConditions{})
				Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
			},
			Entry("zero mass", func(p *Params) { p.Mass = 0 }),
			Entry("negative mass", func(p *Params) { p.Mass = -1 }),
			Entry("NaN mass", func(p *Params) { p.Mass = math.NaN() }),
			Entry("zero tick", func(p *Params) { p.TickPeriod = 0 }),
			Entry("infinite gravity", func(p *Params) { p.Gravity = math.Inf(1) }),
			Entry("negative drag", func(p *Params) { p.Drag = dynamo.Vec3{0.1, -0.1, 0.1} }),
		)

		It("rejects non-finite initial conditions", func() {
			err := q.Initialize(DefaultParams(), InitialConditions{Position: dynamo.Vec3{math.NaN(), 0, 0}})
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		})

		It("builds the gravity vector pointing down", func() {
			Expect(q.Initialize(DefaultParams(), InitialConditions{Position: dynamo.Vec3{0, 0, 3}})).To(Succeed())
			q.Step(DefaultTickPeriod, 0)
			Expect(q.Acceleration()).To(Equal(dynamo.Vec3{0, 0, -DefaultGravity}))
		})
	})

	Describe("Step", func() {
		BeforeEach(func() {
			Expect(q.Initialize(DefaultParams(), InitialConditions{Position: dynamo.Vec3{0, 0, 2}})).To(Succeed())
		})

		It("falls and then rests on the ground plane", func() {
			for i := 0; i < 200; i++ {
				q.Step(DefaultTickPeriod, 0)
			}
			Expect(q.Position()[2]).To(Equal(0.0))
			Expect(q.Grounded()).To(BeTrue())
			Expect(q.Velocity()[2]).To(BeNumerically("<", 0))
		})

		It("climbs under full throttle", func() {
			start := q.Position()[2]
			for i := 0; i < 50; i++ {
				q.Step(DefaultTickPeriod, 1)
			}
			Expect(q.Position()[2]).To(BeNumerically(">", start))
			Expect(q.Validate()).To(Succeed())
		})

		It("approaches drag-limited terminal velocity", func() {
			for i := 0; i < 5000; i++ {
				q.Step(DefaultTickPeriod, 1)
			}
			// (k*u/m - g) = D*v/m
			terminal := (DefaultThrustCoefficient - DefaultMass*DefaultGravity) / DefaultDragCoefficient
			Expect(q.Velocity()[2]).To(BeNumerically("~", terminal, 1e-3))
		})

		It("reports non-finite state", func() {
			q.Step(DefaultTickPeriod, math.Inf(1))
			Expect(errors.Is(q.Validate(), dynamo.ErrInvalidState)).To(BeTrue())
		})
	})

	Describe("Pose", func() {
		It("negates every axis for the host rotator", func() {
			ic := InitialConditions{Orientation: dynamo.Euler{Roll: 0.1, Pitch: -0.2, Yaw: 0.3}}
			Expect(q.Initialize(DefaultParams(), ic)).To(Succeed())

			r := q.Step(DefaultTickPeriod, 0).Rotator()
			Expect(r.Roll).To(BeNumerically("~", -0.1*180/math.Pi, 1e-9))
			Expect(r.Pitch).To(BeNumerically("~", 0.2*180/math.Pi, 1e-9))
			Expect(r.Yaw).To(BeNumerically("~", -0.3*180/math.Pi, 1e-9))
		})

		It("scales position into world units", func() {
			Expect(q.Initialize(DefaultParams(), InitialConditions{Position: dynamo.Vec3{1, 2, 3}})).To(Succeed())
			Expect(q.Pose().World(100)).To(Equal(dynamo.Vec3{100, 200, 300}))
		})
	})
})
