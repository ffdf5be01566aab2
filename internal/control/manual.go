package control

import (
	"sync"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Manual holds the most recent axes set by an interactive front end. It
// is safe to Set from one goroutine while the simulation samples it from
// another.
type Manual struct {
	mu        sync.Mutex
	in        Inputs
	collision bool
}

func NewManual() *Manual {
	return &Manual{}
}

// Set replaces all three axes, clamped to [-1, 1].
func (c *Manual) Set(in Inputs) {
	c.mu.Lock()
	c.in = in.Clamp()
	c.mu.Unlock()
}

// Nudge adds to one axis, clamped to [-1, 1]. Unknown axes are ignored.
func (c *Manual) Nudge(axis string, delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch axis {
	case AxisThrust:
		c.in.Thrust += delta
	case AxisMoveUp:
		c.in.MoveUp += delta
	case AxisMoveRight:
		c.in.MoveRight += delta
	}
	c.in = c.in.Clamp()
}

// Sample returns the stored axes.
func (c *Manual) Sample(dynamo.Sample) Inputs {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.in
}

// Collide records a collision for the simulation loop to pick up on its
// next frame.
func (c *Manual) Collide() {
	c.mu.Lock()
	c.collision = true
	c.mu.Unlock()
}

// TakeCollision reports and clears a pending collision.
func (c *Manual) TakeCollision() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	hit := c.collision
	c.collision = false
	return hit
}
