package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
)

var _ = Describe("Frame", func() {
	var (
		v   *testVehicle
		s   *Simulator
		cfg Config
	)

	BeforeEach(func() {
		v = &testVehicle{}
		s = newTestSim(v, control.Inputs{Thrust: 0.25})
		cfg = Config{TickPeriod: 0.02}
	})

	It("runs no tick until a full period has accumulated", func() {
		n, err := s.Frame(cfg, 0.015)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(0))

		n, err = s.Frame(cfg, 0.015)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
		Expect(s.Ticks()).To(Equal(1))
	})

	It("catches up after a long frame", func() {
		n, err := s.Frame(cfg, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(5))
		Expect(s.Time()).To(BeNumerically("~", 0.1, 1e-12))
	})

	It("feeds the mapper throttle to every tick", func() {
		_, err := s.Frame(cfg, 0.06)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.throttles).To(Equal([]float64{0.25, 0.25, 0.25}))
	})

	It("notifies observers with stamped samples", func() {
		var times []float64
		s.AddObserver(dynamo.ObserverFunc(func(smp dynamo.Sample) {
			times = append(times, smp.Time)
		}))

		_, err := s.Frame(cfg, 0.04)
		Expect(err).NotTo(HaveOccurred())
		Expect(times).To(HaveLen(2))
		Expect(times[1]).To(BeNumerically("~", 0.04, 1e-12))
	})

	It("rewinds on reset", func() {
		_, _ = s.Frame(cfg, 0.1)
		s.Reset()
		Expect(s.Ticks()).To(BeZero())
		Expect(s.Last().Position[2]).To(BeZero())
	})
})
