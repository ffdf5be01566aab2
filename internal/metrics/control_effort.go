package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// ControlEffort is the mean absolute throttle fed to the dynamics.
type ControlEffort struct {
	total float64
	ticks int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(s dynamo.Sample) {
	c.total += math.Abs(s.Throttle)
	c.ticks++
}

func (c *ControlEffort) Value() float64 {
	if c.ticks == 0 {
		return 0
	}
	return c.total / float64(c.ticks)
}

func (c *ControlEffort) Reset() { *c = ControlEffort{} }

// ThrottleSlew is the mean absolute throttle change between ticks. A
// chattering hold loop shows up here long before it shows in altitude.
type ThrottleSlew struct {
	prev   float64
	total  float64
	deltas int
	seeded bool
}

func NewThrottleSlew() *ThrottleSlew { return &ThrottleSlew{} }

func (t *ThrottleSlew) Name() string { return "throttle_slew" }

func (t *ThrottleSlew) Observe(s dynamo.Sample) {
	if t.seeded {
		t.total += math.Abs(s.Throttle - t.prev)
		t.deltas++
	}
	t.prev = s.Throttle
	t.seeded = true
}

func (t *ThrottleSlew) Value() float64 {
	if t.deltas == 0 {
		return 0
	}
	return t.total / float64(t.deltas)
}

func (t *ThrottleSlew) Reset() { *t = ThrottleSlew{} }
