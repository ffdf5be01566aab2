package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/dynamo"
)

func writeScenario(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunScenario(t *testing.T) {
	path := writeScenario(t, `
name: checkout
steps:
  - preset: drop
    duration: 3
    save_as: short-drop
  - duration: 2
    keyframes:
      - at: 0
        thrust: 1
`)

	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	results, err := RunScenario(context.Background(), scenario, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].Name != "short-drop" {
		t.Errorf("expected save_as name, got %s", results[0].Name)
	}
	if results[0].Result.StepsTaken != 150 {
		t.Errorf("expected 150 steps, got %d", results[0].Result.StepsTaken)
	}
	if z := results[1].Result.Final().Position[2]; z <= 0 {
		t.Errorf("scripted full thrust should climb, z=%f", z)
	}
}

func TestRunScenarioStopsOnBadStep(t *testing.T) {
	path := writeScenario(t, `
steps:
  - preset: drop
  - preset: loop-the-loop
`)
	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), scenario, nil)
	if !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected the first step to finish, got %d results", len(results))
	}
}

func TestLoadScenarioEmpty(t *testing.T) {
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestMonteCarloDrops(t *testing.T) {
	base, err := config.GetPreset("drop")
	if err != nil {
		t.Fatal(err)
	}

	mc := &MonteCarloConfig{
		Base:           base,
		PositionSpread: 2,
		VelocitySpread: 1,
		NumTrials:      8,
		Seed:           42,
	}
	results, err := RunMonteCarlo(context.Background(), mc, nil)
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}
	if len(results) != 8 {
		t.Fatalf("expected 8 trials, got %d", len(results))
	}

	landed, diverged := MonteCarloStats(results)
	if landed != 8 || diverged != 0 {
		t.Errorf("every drop should land: landed=%d diverged=%d", landed, diverged)
	}

	if results[0].Initial.Position == results[1].Initial.Position {
		t.Error("trials should start from different positions")
	}
	if base.Init.Position[2] != 10 {
		t.Error("base config must not be modified")
	}
}

func TestMonteCarloDeterministicSeed(t *testing.T) {
	base := config.DefaultConfig()
	base.Duration = 0.5
	mc := &MonteCarloConfig{Base: base, PositionSpread: 1, NumTrials: 3, Seed: 7}

	a, err := RunMonteCarlo(context.Background(), mc, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RunMonteCarlo(context.Background(), mc, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].Initial.Position != b[i].Initial.Position {
			t.Errorf("trial %d differs between runs with the same seed", i)
		}
	}
}

func TestMonteCarloRejectsZeroTrials(t *testing.T) {
	mc := &MonteCarloConfig{Base: config.DefaultConfig()}
	if _, err := RunMonteCarlo(context.Background(), mc, nil); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}
