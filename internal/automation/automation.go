// Package automation runs scripted batches of flights: YAML scenarios and
// Monte Carlo dispersions of the initial state.
package automation

import (
	"context"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/experiment"
	"github.com/san-kum/quadsim/internal/logging"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset or a config file and overrides a few
// fields. Zero values leave the base untouched.
type ScenarioStep struct {
	Preset    string             `yaml:"preset"`
	Config    string             `yaml:"config"`
	Duration  float64            `yaml:"duration"`
	Mass      float64            `yaml:"mass"`
	Keyframes []control.Keyframe `yaml:"keyframes"`
	SaveAs    string             `yaml:"save_as"`
}

// StepResult pairs a finished step with its experiment.
type StepResult struct {
	Name       string
	Experiment *experiment.Experiment
	Result     *dynamo.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, errors.Wrapf(err, "parse scenario %s", path)
	}
	if len(scenario.Steps) == 0 {
		return nil, errors.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

func (s ScenarioStep) build() (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		p, err := config.GetPreset(s.Preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}

	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Mass > 0 {
		cfg.Quad.Mass = s.Mass
	}
	if len(s.Keyframes) > 0 {
		cfg.Input.Mode = config.InputScript
		cfg.Input.Script = ""
		cfg.Input.Keyframes = s.Keyframes
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, nil
}

// RunScenario executes all steps in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, log *zap.Logger) ([]StepResult, error) {
	log = logging.OrNop(log).Named("scenario")
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.build()
		if err != nil {
			return results, errors.WithMessagef(err, "step %d", i+1)
		}
		log.Info("step", zap.Int("n", i+1), zap.Int("of", len(scenario.Steps)), zap.String("name", cfg.Name))

		exp, err := experiment.New(cfg, nil, log)
		if err != nil {
			return results, errors.WithMessagef(err, "step %d setup", i+1)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, errors.WithMessagef(err, "step %d run", i+1)
		}

		results = append(results, StepResult{Name: cfg.Name, Experiment: exp, Result: result})
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial position and velocity of a base
// config uniformly by up to the given spreads on every axis.
type MonteCarloConfig struct {
	Base           *config.Config
	PositionSpread float64
	VelocitySpread float64
	NumTrials      int
	Seed           int64
}

// MonteCarloResult holds one trial.
type MonteCarloResult struct {
	TrialID  int
	Initial  dynamo.Sample
	Final    dynamo.Sample
	Landed   bool
	Diverged bool
}

// RunMonteCarlo executes trials sequentially. A zero seed uses the clock.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, log *zap.Logger) ([]MonteCarloResult, error) {
	if mc.NumTrials <= 0 {
		return nil, errors.Wrapf(dynamo.ErrParameterBounds, "trials must be positive, got %d", mc.NumTrials)
	}

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	jitter := func(spread float64) float64 { return (rng.Float64() - 0.5) * 2 * spread }

	base, err := mc.Base.InitialConditions()
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, 0, mc.NumTrials)
	for trial := 0; trial < mc.NumTrials; trial++ {
		cfg := *mc.Base
		pos, vel := make([]float64, 3), make([]float64, 3)
		for i := 0; i < 3; i++ {
			pos[i] = base.Position[i] + jitter(mc.PositionSpread)
			vel[i] = base.Velocity[i] + jitter(mc.VelocitySpread)
		}
		// Spawns never start underground.
		pos[2] = math.Max(pos[2], 0)
		cfg.Init.Position = pos
		cfg.Init.WorldPosition = nil
		cfg.Init.Velocity = vel

		exp, err := experiment.New(&cfg, nil, log)
		if err != nil {
			return results, errors.WithMessagef(err, "trial %d", trial)
		}

		initial := exp.Quad().Sample()
		result, err := exp.Run(ctx)
		diverged := errors.Is(err, dynamo.ErrInvalidState)
		if err != nil && !diverged {
			return results, errors.WithMessagef(err, "trial %d", trial)
		}

		final := result.Final()
		results = append(results, MonteCarloResult{
			TrialID:  trial,
			Initial:  initial,
			Final:    final,
			Landed:   final.Grounded,
			Diverged: diverged,
		})
	}

	return results, nil
}

// MonteCarloStats counts landed and diverged trials.
func MonteCarloStats(results []MonteCarloResult) (landed int, diverged int) {
	for _, r := range results {
		if r.Landed {
			landed++
		}
		if r.Diverged {
			diverged++
		}
	}
	return
}
