package experiment

import (
	"context"

	"go.uber.org/zap"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/sim"
)

// Sweep flies one copy of cfg per thrust level, each holding that
// constant Thrust input, in parallel. Results follow the order of thrusts.
func Sweep(ctx context.Context, cfg *config.Config, thrusts []float64, log *zap.Logger) ([]*dynamo.Result, error) {
	sims := make([]*sim.Simulator, 0, len(thrusts))
	for _, thrust := range thrusts {
		c := *cfg
		c.Input = config.InputConfig{
			Mode:     config.InputConstant,
			Constant: control.Inputs{Thrust: thrust},
		}
		exp, err := New(&c, nil, log)
		if err != nil {
			return nil, err
		}
		sims = append(sims, exp.Simulator())
	}
	return sim.NewEnsemble(sims...).Run(ctx, cfg.SimConfig())
}
