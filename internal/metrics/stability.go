package metrics

import "github.com/san-kum/quadsim/internal/dynamo"

// Stability is the fraction of ticks whose speed stayed under threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.Sample) {
	s.samples++
	if x.Velocity.Len() > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// GroundTime is the fraction of ticks spent pinned to the ground plane.
type GroundTime struct {
	name     string
	grounded int
	samples  int
}

func NewGroundTime() *GroundTime {
	return &GroundTime{name: "ground_time"}
}

func (g *GroundTime) Name() string { return g.name }

func (g *GroundTime) Observe(s dynamo.Sample) {
	g.samples++
	if s.Grounded {
		g.grounded++
	}
}

func (g *GroundTime) Value() float64 {
	if g.samples == 0 {
		return 0
	}
	return float64(g.grounded) / float64(g.samples)
}

func (g *GroundTime) Reset() {
	g.grounded = 0
	g.samples = 0
}

// Default is the metric set recorded for every run.
func Default(mass, gravity, speedLimit float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(mass, gravity),
		NewMaxAltitude(),
		NewControlEffort(),
		NewThrottleSlew(),
		NewStability(speedLimit),
		NewGroundTime(),
	}
}
