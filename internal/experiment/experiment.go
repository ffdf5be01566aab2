// Package experiment assembles a complete flight from a run config: the
// quad, its mapper, the input source, the simulator and its metrics.
package experiment

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/metrics"
	"github.com/san-kum/quadsim/internal/models"
	"github.com/san-kum/quadsim/internal/sim"
	"github.com/san-kum/quadsim/internal/storage"
)

type Experiment struct {
	cfg       *config.Config
	quad      *models.Quad
	source    control.Source
	simulator *sim.Simulator
}

// New validates cfg and wires a flight. A non-nil source replaces the
// one described by cfg.Input, which is how interactive front ends plug in
// a control.Manual.
func New(cfg *config.Config, source control.Source, log *zap.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "config %s", cfg.Name)
	}

	params, err := cfg.QuadParams()
	if err != nil {
		return nil, err
	}
	ic, err := cfg.InitialConditions()
	if err != nil {
		return nil, err
	}

	q := models.NewQuad(log)
	if err := q.Initialize(params, ic); err != nil {
		return nil, err
	}

	if source == nil {
		if source, err = cfg.Source(q.HoverThrottle()); err != nil {
			return nil, err
		}
	}

	s := sim.New(q, control.NewMapper(cfg.Mapper), source, sim.WithLogger(log))
	for _, m := range metrics.Default(params.Mass, params.Gravity, cfg.SpeedLimit) {
		s.AddMetric(m)
	}

	return &Experiment{
		cfg:       cfg,
		quad:      q,
		source:    source,
		simulator: s,
	}, nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	return e.simulator.Run(ctx, e.cfg.SimConfig())
}

// RunRealtime flies against the wall clock until ctx is done or the
// configured duration passes.
func (e *Experiment) RunRealtime(ctx context.Context) error {
	return e.simulator.RunRealtime(ctx, e.cfg.SimConfig())
}

func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
func (e *Experiment) Quad() *models.Quad        { return e.quad }
func (e *Experiment) Config() *config.Config    { return e.cfg }

// Metadata describes the run for storage.
func (e *Experiment) Metadata() storage.RunMetadata {
	p := e.quad.Params()
	return storage.RunMetadata{
		Name:          e.cfg.Name,
		TickPeriod:    e.cfg.TickPeriod,
		Duration:      e.cfg.Duration,
		InputMode:     e.cfg.Input.Mode,
		Mass:          p.Mass,
		Gravity:       p.Gravity,
		ThrustCoeff:   p.ThrustCoefficient,
		Drag:          p.Drag,
		UnitsPerMeter: e.cfg.UnitsPerMeter,
	}
}
