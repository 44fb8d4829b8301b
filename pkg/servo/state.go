package servo

import "time"

// controlState is the shared state both loops and the facade read and
// write. Everything here is guarded by the controller mutex.
type controlState struct {
	torque   []bool    // per servo: position control active
	velocity []float64 // per servo: speed limit in rad/s
	position []float64 // per servo: target position in rad
	period   time.Duration
}

func newControlState(n int, period time.Duration) *controlState {
	return &controlState{
		torque:   make([]bool, n),
		velocity: make([]float64, n),
		position: make([]float64, n),
		period:   period,
	}
}

// periodFor maps a velocity limit to a tick period: the fastest requested
// servo deserves the finest timestep. Linear between the anchors, clamped
// outside them, rounded to whole milliseconds.
func (c *Controller) periodFor(v float64) time.Duration {
	switch {
	case v <= c.velMin:
		return c.periodMax
	case v >= c.velMax:
		return c.periodMin
	}

	frac := (v - c.velMin) / (c.velMax - c.velMin)
	p := time.Duration(float64(c.periodMax) + frac*float64(c.periodMin-c.periodMax))
	p = p.Round(time.Millisecond)

	if p < c.periodMin {
		p = c.periodMin
	}
	if p > c.periodMax {
		p = c.periodMax
	}
	return p
}
