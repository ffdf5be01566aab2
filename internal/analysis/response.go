package analysis

import (
	"math"

	"github.com/pkg/errors"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Response summarizes how the altitude approached a target.
type Response struct {
	Target float64

	// RiseTime is the first time the altitude covered 90% of the way
	// from its start to the target. Negative if it never did.
	RiseTime float64

	// Overshoot is the farthest excursion past the target as a fraction
	// of the commanded change.
	Overshoot float64

	// SettlingTime is the time after which the altitude stayed within
	// band of the target. Valid only when Settled.
	SettlingTime float64
	Settled      bool

	SteadyStateErr float64
	PeakAltitude   float64
}

// AnalyzeResponse measures the altitude step response. band is the
// settling tolerance as a fraction of the commanded change.
func AnalyzeResponse(samples []dynamo.Sample, target, band float64) (Response, error) {
	if len(samples) < 2 {
		return Response{}, errors.Errorf("response needs at least 2 samples, got %d", len(samples))
	}
	start := samples[0].Position[2]
	step := target - start
	if math.Abs(step) < 1e-9 {
		return Response{}, errors.Wrapf(dynamo.ErrParameterBounds, "target %v equals starting altitude", target)
	}
	if !(band > 0) {
		return Response{}, errors.Wrapf(dynamo.ErrParameterBounds, "band must be positive, got %v", band)
	}

	r := Response{Target: target, RiseTime: -1, PeakAltitude: start}
	dir := math.Copysign(1, step)
	tol := band * math.Abs(step)
	settledFrom := -1

	for i, s := range samples {
		z := s.Position[2]
		if dir*z > dir*r.PeakAltitude {
			r.PeakAltitude = z
		}
		if r.RiseTime < 0 && dir*(z-start) >= 0.9*math.Abs(step) {
			r.RiseTime = s.Time - samples[0].Time
		}
		if math.Abs(z-target) <= tol {
			if settledFrom < 0 {
				settledFrom = i
			}
		} else {
			settledFrom = -1
		}
	}

	if past := dir * (r.PeakAltitude - target); past > 0 {
		r.Overshoot = past / math.Abs(step)
	}
	if settledFrom >= 0 {
		r.Settled = true
		r.SettlingTime = samples[settledFrom].Time - samples[0].Time
	}
	r.SteadyStateErr = math.Abs(samples[len(samples)-1].Position[2] - target)
	return r, nil
}
