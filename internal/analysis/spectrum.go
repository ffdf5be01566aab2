package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/pkg/errors"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Oscillation is one spectral peak.
type Oscillation struct {
	Frequency float64 // Hz
	Amplitude float64 // m
}

// Spectrum returns the one-sided amplitude spectrum of value over
// samples with the mean removed. Samples must be evenly spaced in time.
func Spectrum(samples []dynamo.Sample, value func(dynamo.Sample) float64) (freqs, amps []float64, err error) {
	n := len(samples)
	if n < 4 {
		return nil, nil, errors.Errorf("spectrum needs at least 4 samples, got %d", n)
	}
	dt := samples[1].Time - samples[0].Time
	if !(dt > 0) {
		return nil, nil, errors.Wrapf(dynamo.ErrParameterBounds, "sample spacing %v", dt)
	}

	data := make([]float64, n)
	mean := 0.0
	for i, s := range samples {
		data[i] = value(s)
		mean += data[i]
	}
	mean /= float64(n)
	for i := range data {
		data[i] -= mean
	}

	coeffs := fft.FFTReal(data)
	half := n / 2
	freqs = make([]float64, half)
	amps = make([]float64, half)
	for k := 0; k < half; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		amps[k] = 2 * cmplx.Abs(coeffs[k]) / float64(n)
	}
	return freqs, amps, nil
}

// DominantOscillation finds the strongest non-DC component of the
// altitude trace.
func DominantOscillation(samples []dynamo.Sample) (Oscillation, error) {
	freqs, amps, err := Spectrum(samples, func(s dynamo.Sample) float64 { return s.Position[2] })
	if err != nil {
		return Oscillation{}, err
	}

	best := 1
	for k := 2; k < len(amps); k++ {
		if amps[k] > amps[best] {
			best = k
		}
	}
	return Oscillation{Frequency: freqs[best], Amplitude: amps[best]}, nil
}
