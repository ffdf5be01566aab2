// Package optim searches parameter grids for the flight that minimizes a
// run metric.
package optim

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/experiment"
	"github.com/san-kum/quadsim/internal/logging"
	"github.com/san-kum/quadsim/internal/metrics"
)

// BuildFunc wires a flight for one grid point.
type BuildFunc func(params map[string]float64) (*experiment.Experiment, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	log        *zap.Logger
}

func NewGridSearch(params []string, ranges [][]float64, log *zap.Logger) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, log: logging.OrNop(log).Named("optim")}
}

// Search tries every combination and returns the one with the lowest
// metric. Points that fail to build are skipped; points that diverge
// count as infinitely bad.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, errors.Wrapf(dynamo.ErrParameterBounds, "%d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, &best, &bestParams)
	if err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		return nil, best, errors.Errorf("no grid point produced %s", metricName)
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build BuildFunc,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(dynamo.ErrContextCanceled, err.Error())
	}

	if depth == len(g.paramNames) {
		exp, err := build(current)
		if err != nil {
			g.log.Debug("skip point", zap.Any("params", current), zap.Error(err))
			return nil
		}

		result, err := exp.Run(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrap(dynamo.ErrContextCanceled, ctxErr.Error())
		}
		if err != nil {
			g.log.Debug("point diverged", zap.Any("params", current), zap.Error(err))
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return errors.Errorf("metric %s not recorded", metricName)
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
			g.log.Debug("new best", zap.Any("params", current), zap.Float64(metricName, val))
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, build, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// Gains is one altitude-hold tuning.
type Gains struct {
	Kp, Ki, Kd float64
}

// TuneHold grid-searches altitude-hold gains against base, which is
// switched to hold mode, and returns the gains with the lowest RMS
// altitude error.
func TuneHold(ctx context.Context, base *config.Config, kp, ki, kd []float64, log *zap.Logger) (Gains, float64, error) {
	build := func(p map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		cfg.Input.Mode = config.InputHold
		cfg.Input.Hold.Kp = p["kp"]
		cfg.Input.Hold.Ki = p["ki"]
		cfg.Input.Hold.Kd = p["kd"]

		exp, err := experiment.New(&cfg, nil, log)
		if err != nil {
			return nil, err
		}
		exp.Simulator().AddMetric(metrics.NewAltitudeError(cfg.Input.Hold.Target))
		return exp, nil
	}

	g := NewGridSearch([]string{"kp", "ki", "kd"}, [][]float64{kp, ki, kd}, log)
	best, score, err := g.Search(ctx, build, "altitude_error")
	if err != nil {
		return Gains{}, score, err
	}
	return Gains{Kp: best["kp"], Ki: best["ki"], Kd: best["kd"]}, score, nil
}
