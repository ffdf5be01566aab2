package sim

import "github.com/san-kum/quadsim/internal/dynamo"

// Vehicle is the narrow surface the host loop needs from a flight model.
type Vehicle interface {
	Step(dt, throttle float64) dynamo.Pose
	Sample() dynamo.Sample
	Validate() error
	Reset()
}

type Config struct {
	// TickPeriod is the fixed dynamics period in seconds.
	TickPeriod float64
	// FrameDt is the input frame period. Zero means one frame per tick.
	FrameDt float64
	// Duration of the run in seconds. RunRealtime treats zero as
	// "until the context is canceled".
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		TickPeriod:    0.02,
		FrameDt:       1.0 / 60,
		Duration:      10.0,
		ValidateState: true,
	}
}

func (c Config) frameDt() float64 {
	if c.FrameDt > 0 {
		return c.FrameDt
	}
	return c.TickPeriod
}
