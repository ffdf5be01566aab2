package sim

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/logging"
)

// tickEpsilon absorbs float error when counting whole ticks in a span.
const tickEpsilon = 1e-9

const (
	// maxTicks bounds a batch run so the tick count fits an int.
	maxTicks = 1 << 40
	// maxPrealloc caps the sample buffer reserved up front; longer runs
	// grow it by append.
	maxPrealloc = 1 << 16
)

// Simulator is the host loop: it samples an input source once per frame,
// feeds the mapper, and steps the vehicle on a fixed tick. It is the only
// writer of vehicle state and is not safe for concurrent use.
type Simulator struct {
	vehicle   Vehicle
	mapper    *control.Mapper
	source    control.Source
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	log       *zap.Logger

	t       float64
	ticks   int
	pending float64
	last    dynamo.Sample
}

type Option func(*Simulator)

func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		s.log = logging.OrNop(l).Named("sim")
	}
}

func New(v Vehicle, mapper *control.Mapper, source control.Source, opts ...Option) *Simulator {
	s := &Simulator{
		vehicle:   v,
		mapper:    mapper,
		source:    source,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.last = v.Sample()
	return s
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Mapper exposes the control mapper so hosts can forward collisions.
func (s *Simulator) Mapper() *control.Mapper { return s.mapper }

// Last returns the sample recorded by the most recent tick.
func (s *Simulator) Last() dynamo.Sample { return s.last }

func (s *Simulator) Time() float64 { return s.t }
func (s *Simulator) Ticks() int    { return s.ticks }

// Reset returns the vehicle to its initial conditions and rewinds the
// clock. Sources with memory start over; mapper state is kept.
func (s *Simulator) Reset() {
	s.vehicle.Reset()
	if r, ok := s.source.(control.Resetter); ok {
		r.Reset()
	}
	s.t = 0
	s.ticks = 0
	s.pending = 0
	s.last = s.vehicle.Sample()
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Input runs the per-frame callback: sample the source and update the
// mapper with the frame delta. A pending collision is delivered after the
// axes, so it holds until the next frame's throttle update.
func (s *Simulator) Input(frameDt float64) {
	in := s.source.Sample(s.last)
	s.mapper.Update(in, s.last.Orientation.HostRotator().Roll, frameDt)

	if c, ok := s.source.(control.Collider); ok && c.TakeCollision() {
		s.log.Debug("collision", zap.Float64("t", s.t))
		s.mapper.OnCollision()
	}
}

// Tick runs one fixed dynamics step with the mapper's current throttle.
func (s *Simulator) Tick(cfg Config) error {
	s.vehicle.Step(cfg.TickPeriod, s.mapper.Throttle())
	s.ticks++
	s.t = float64(s.ticks) * cfg.TickPeriod

	sample := s.vehicle.Sample()
	sample.Time = s.t
	s.last = sample

	if cfg.ValidateState {
		if err := s.vehicle.Validate(); err != nil {
			s.log.Error("state diverged", zap.Int("step", s.ticks), zap.Float64("t", s.t), zap.Error(err))
			return &dynamo.SimulationError{Step: s.ticks, Time: s.t, Pose: sample.Pose(), Wrapped: err}
		}
	}

	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, obs := range s.observers {
		obs.OnStep(sample)
	}
	return nil
}

// Frame runs one input frame and every fixed tick that became due during
// it. It returns the number of ticks taken.
func (s *Simulator) Frame(cfg Config, frameDt float64) (int, error) {
	s.Input(frameDt)

	s.pending += frameDt
	n := 0
	for s.pending+tickEpsilon >= cfg.TickPeriod {
		s.pending -= cfg.TickPeriod
		if err := s.Tick(cfg); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Run simulates cfg.Duration seconds as fast as possible and records every
// tick.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*dynamo.Result, error) {
	if err := validateConfig(cfg, true); err != nil {
		return nil, err
	}

	total := int(math.Floor(cfg.Duration/cfg.TickPeriod + tickEpsilon))
	result := &dynamo.Result{
		Samples: make([]dynamo.Sample, 0, min(total+1, maxPrealloc)),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	s.Reset()
	result.Samples = append(result.Samples, s.last)

	frameDt := cfg.frameDt()
	start := s.ticks
	s.log.Info("run started",
		zap.Float64("tick_period", cfg.TickPeriod),
		zap.Float64("frame_dt", frameDt),
		zap.Float64("duration", cfg.Duration),
		zap.Int("ticks", total),
	)

	for s.ticks-start < total {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		s.Input(frameDt)
		s.pending += frameDt
		for s.pending+tickEpsilon >= cfg.TickPeriod && s.ticks-start < total {
			s.pending -= cfg.TickPeriod
			if err := s.Tick(cfg); err != nil {
				result.Errors = append(result.Errors, err)
				s.collect(result)
				return result, err
			}
			result.StepsTaken++
			result.Samples = append(result.Samples, s.last)
		}
	}

	s.collect(result)
	s.log.Info("run finished", zap.Int("steps", result.StepsTaken), zap.Float64("t", s.t))
	return result, nil
}

// RunRealtime paces the loop against the wall clock: one ticker drives the
// fixed tick, another the input frame. Both are served from a single
// goroutine so the vehicle still has one writer.
func (s *Simulator) RunRealtime(ctx context.Context, cfg Config) error {
	if err := validateConfig(cfg, false); err != nil {
		return err
	}

	tick := time.NewTicker(seconds(cfg.TickPeriod))
	defer tick.Stop()
	frame := time.NewTicker(seconds(cfg.frameDt()))
	defer frame.Stop()

	lastFrame := time.Now()
	s.log.Info("realtime loop started", zap.Float64("tick_period", cfg.TickPeriod))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("realtime loop stopped", zap.Int("steps", s.ticks))
			return ctx.Err()
		case now := <-frame.C:
			s.Input(now.Sub(lastFrame).Seconds())
			lastFrame = now
		case <-tick.C:
			if err := s.Tick(cfg); err != nil {
				return err
			}
			if cfg.Duration > 0 && s.t+tickEpsilon >= cfg.Duration {
				return nil
			}
		}
	}
}

func (s *Simulator) collect(result *dynamo.Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config, needDuration bool) error {
	if !(cfg.TickPeriod > 0) || math.IsInf(cfg.TickPeriod, 0) {
		return errors.Wrapf(dynamo.ErrParameterBounds, "tick period must be positive and finite, got %f", cfg.TickPeriod)
	}
	if !(cfg.FrameDt >= 0) || math.IsInf(cfg.FrameDt, 0) {
		return errors.Wrapf(dynamo.ErrParameterBounds, "frame dt must be finite and not negative, got %f", cfg.FrameDt)
	}
	if !(cfg.Duration >= 0) || math.IsInf(cfg.Duration, 0) {
		return errors.Wrapf(dynamo.ErrParameterBounds, "duration must be finite and not negative, got %f", cfg.Duration)
	}
	if needDuration {
		if cfg.Duration == 0 {
			return errors.Wrap(dynamo.ErrParameterBounds, "duration must be positive")
		}
		if cfg.Duration/cfg.TickPeriod > maxTicks {
			return errors.Wrapf(dynamo.ErrParameterBounds, "duration %g s is more than %d ticks", cfg.Duration, int64(maxTicks))
		}
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
