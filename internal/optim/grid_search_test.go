package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/experiment"
)

func hoverBase(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.GetPreset("hover")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Duration = 10
	return cfg
}

func TestTuneHoldPrefersProportionalGain(t *testing.T) {
	gains, score, err := TuneHold(context.Background(), hoverBase(t),
		[]float64{0, 0.1}, []float64{0}, []float64{0.1}, nil)
	if err != nil {
		t.Fatalf("tune failed: %v", err)
	}

	if gains.Kp != 0.1 {
		t.Errorf("expected kp=0.1 to win, got %+v", gains)
	}
	if score >= 5 {
		t.Errorf("best RMS error should beat sitting on the ground, got %f", score)
	}
}

func TestSearchSkipsUnbuildablePoints(t *testing.T) {
	base := hoverBase(t)
	build := func(p map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		cfg.Quad.Mass = p["mass"]
		return experiment.New(&cfg, nil, nil)
	}

	g := NewGridSearch([]string{"mass"}, [][]float64{{-1, 0.2}}, nil)
	best, _, err := g.Search(context.Background(), build, "max_altitude")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best["mass"] != 0.2 {
		t.Errorf("expected the valid mass, got %v", best)
	}
}

func TestSearchUnknownMetric(t *testing.T) {
	base := hoverBase(t)
	build := func(map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		return experiment.New(&cfg, nil, nil)
	}

	g := NewGridSearch([]string{"x"}, [][]float64{{1}}, nil)
	if _, _, err := g.Search(context.Background(), build, "nope"); err == nil {
		t.Error("expected error for unrecorded metric")
	}
}

func TestSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2}}, nil)
	_, _, err := g.Search(ctx, func(map[string]float64) (*experiment.Experiment, error) {
		t.Fatal("build should not run after cancel")
		return nil, nil
	}, "energy")
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
}

func TestSearchMismatchedRanges(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{1}}, nil)
	_, _, err := g.Search(context.Background(), nil, "energy")
	if !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}
