package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// AltitudeError is the RMS distance between the altitude and a fixed
// target over the run.
type AltitudeError struct {
	target  float64
	sumSq   float64
	samples int
}

func NewAltitudeError(target float64) *AltitudeError {
	return &AltitudeError{target: target}
}

func (a *AltitudeError) Name() string { return "altitude_error" }

func (a *AltitudeError) Observe(s dynamo.Sample) {
	d := s.Position[2] - a.target
	a.sumSq += d * d
	a.samples++
}

func (a *AltitudeError) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return math.Sqrt(a.sumSq / float64(a.samples))
}

func (a *AltitudeError) Reset() {
	a.sumSq = 0
	a.samples = 0
}
