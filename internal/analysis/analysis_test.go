package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/quadsim/internal/dynamo"
)

func trace(n int, dt float64, z func(t float64) float64) []dynamo.Sample {
	samples := make([]dynamo.Sample, n)
	for i := range samples {
		t := float64(i) * dt
		samples[i] = dynamo.Sample{Time: t, Position: dynamo.Vec3{0, 0, z(t)}}
	}
	return samples
}

func TestDominantOscillation(t *testing.T) {
	samples := trace(500, 0.01, func(t float64) float64 {
		return 1 + 0.5*math.Sin(2*math.Pi*2*t)
	})

	osc, err := DominantOscillation(samples)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if math.Abs(osc.Frequency-2) > 1e-9 {
		t.Errorf("expected 2 Hz, got %f", osc.Frequency)
	}
	if math.Abs(osc.Amplitude-0.5) > 1e-3 {
		t.Errorf("expected amplitude 0.5, got %f", osc.Amplitude)
	}
}

func TestSpectrumRejectsShortTrace(t *testing.T) {
	if _, _, err := Spectrum(trace(3, 0.01, math.Sin), func(s dynamo.Sample) float64 { return s.Position[2] }); err == nil {
		t.Error("expected error for 3 samples")
	}
	if _, _, err := Spectrum(trace(8, 0, math.Sin), func(s dynamo.Sample) float64 { return s.Position[2] }); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for zero spacing, got %v", err)
	}
}

func TestAnalyzeResponseFirstOrder(t *testing.T) {
	samples := trace(2001, 0.01, func(t float64) float64 { return 5 * (1 - math.Exp(-t)) })

	r, err := AnalyzeResponse(samples, 5, 0.02)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	if math.Abs(r.RiseTime-math.Log(10)) > 0.011 {
		t.Errorf("expected rise time ln(10), got %f", r.RiseTime)
	}
	if r.Overshoot != 0 {
		t.Errorf("first order response should not overshoot, got %f", r.Overshoot)
	}
	if !r.Settled || math.Abs(r.SettlingTime-math.Log(50)) > 0.011 {
		t.Errorf("expected settling at ln(50), got %f (settled=%v)", r.SettlingTime, r.Settled)
	}
	if r.SteadyStateErr > 1e-6 {
		t.Errorf("expected tiny steady state error, got %g", r.SteadyStateErr)
	}
}

func TestAnalyzeResponseOvershoot(t *testing.T) {
	samples := trace(1001, 0.01, func(t float64) float64 {
		return 10 * (1 - math.Exp(-t)*math.Cos(3*t))
	})

	r, err := AnalyzeResponse(samples, 10, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if r.Overshoot <= 0 {
		t.Errorf("underdamped response should overshoot, got %f", r.Overshoot)
	}
	if r.PeakAltitude <= 10 {
		t.Errorf("expected peak above target, got %f", r.PeakAltitude)
	}
}

func TestAnalyzeResponseNeverSettles(t *testing.T) {
	samples := trace(100, 0.01, func(float64) float64 { return 0 })
	r, err := AnalyzeResponse(samples, 5, 0.02)
	if err != nil {
		t.Fatal(err)
	}
	if r.Settled || r.RiseTime >= 0 {
		t.Errorf("a grounded trace never rises or settles: %+v", r)
	}
	if r.SteadyStateErr != 5 {
		t.Errorf("expected error 5, got %f", r.SteadyStateErr)
	}
}

func TestAnalyzeResponseRejects(t *testing.T) {
	samples := trace(10, 0.01, func(float64) float64 { return 2 })
	if _, err := AnalyzeResponse(samples, 2, 0.02); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for zero step, got %v", err)
	}
	if _, err := AnalyzeResponse(samples, 5, 0); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for zero band, got %v", err)
	}
}

func TestPhasePortraitASCII(t *testing.T) {
	samples := trace(200, 0.05, func(t float64) float64 { return math.Sin(t) })
	for i := range samples {
		samples[i].Velocity[2] = math.Cos(samples[i].Time)
	}

	points := PhasePortrait(samples)
	if len(points) != 200 || points[0].Y != 1 {
		t.Fatalf("unexpected portrait start %+v", points[0])
	}

	out := PhasePortraitToASCII(points, 40, 20)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 20 {
		t.Errorf("expected 20 rows, got %d", len(lines))
	}
	if !strings.Contains(out, "•") || !strings.Contains(out, "│") || !strings.Contains(out, "─") {
		t.Error("expected points and both axes")
	}

	if PhasePortraitToASCII(nil, 40, 20) != "" {
		t.Error("empty portrait should render nothing")
	}
}
