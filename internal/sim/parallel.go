package sim

import (
	"context"
	"sync"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Ensemble runs independent simulators side by side. Each simulator owns
// its own vehicle, so runs share nothing.
type Ensemble struct {
	sims []*Simulator
}

func NewEnsemble(sims ...*Simulator) *Ensemble {
	return &Ensemble{sims: sims}
}

func (e *Ensemble) Len() int { return len(e.sims) }

// Run executes every simulator with the same config. Results keep the
// order of the simulators; the first error wins.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(e.sims))
	errs := make([]error, len(e.sims))

	var wg sync.WaitGroup
	for i, s := range e.sims {
		wg.Add(1)
		go func(idx int, s *Simulator) {
			defer wg.Done()
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i, s)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}

	return results, nil
}
