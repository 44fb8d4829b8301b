package sim

import (
	"fmt"
	"sync"
)

// Engine is the built-in physics backend: each actuator is a unit-inertia
// spring-damper servo pulled toward its control value. Integration is
// semi-implicit Euler at the model timestep.
//
// The engine has its own lock so a viewer can take position snapshots
// while the control loop is between ticks. Snapshots are tear-free but may
// trail the latest step.
type Engine struct {
	model *Model

	mu         sync.Mutex
	qpos       []float64
	qvel       []float64
	ctrl       []float64
	sensordata []float64 // three torque channels per actuator
}

// NewEngine validates the model and returns an engine at the home pose.
func NewEngine(m *Model) (*Engine, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		model:      m,
		qpos:       make([]float64, len(m.Actuators)),
		qvel:       make([]float64, len(m.Actuators)),
		ctrl:       make([]float64, len(m.Actuators)),
		sensordata: make([]float64, 3*len(m.Actuators)),
	}
	e.reset()
	return e, nil
}

// Reset returns the arm to the home pose with zero velocity.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Engine) reset() {
	for i, a := range e.model.Actuators {
		e.qpos[i] = a.Home
		e.qvel[i] = 0
		e.ctrl[i] = a.Home
	}
	for i := range e.sensordata {
		e.sensordata[i] = 0
	}
}

func (e *Engine) Model() *Model { return e.model }

func (e *Engine) NumActuators() int { return len(e.model.Actuators) }

// Step integrates one model timestep.
func (e *Engine) Step() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	dt := e.model.Timestep
	for i := range e.qpos {
		a := &e.model.Actuators[i]

		force := a.Gain*(e.ctrl[i]-e.qpos[i]) - a.Damping*e.qvel[i]
		force = clamp(force, a.ForceRange[0], a.ForceRange[1])

		// unit inertia: force is acceleration
		e.qvel[i] += dt * force
		e.qpos[i] += dt * e.qvel[i]

		base := 3 * i
		e.sensordata[base] = a.Axis[0] * force
		e.sensordata[base+1] = a.Axis[1] * force
		e.sensordata[base+2] = a.Axis[2] * force
	}
	return nil
}

func (e *Engine) Position(servo int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.qpos[servo]
}

// Positions returns a snapshot of all actuator positions.
func (e *Engine) Positions() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]float64, len(e.qpos))
	copy(out, e.qpos)
	return out
}

// Velocity returns the instantaneous velocity of one actuator.
func (e *Engine) Velocity(servo int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.qvel[servo]
}

func (e *Engine) Axis(servo int) [3]float64 {
	return e.model.Actuators[servo].Axis
}

// SensorBase returns the first channel of the actuator's torque triple.
func (e *Engine) SensorBase(servo int) int { return 3 * servo }

func (e *Engine) SensorData(base, count int) []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]float64, count)
	for k := 0; k < count; k++ {
		if i := base + k; i >= 0 && i < len(e.sensordata) {
			out[k] = e.sensordata[i]
		}
	}
	return out
}

// SetControl sets the target an actuator is pulled toward, clamped to the
// actuator's control range.
func (e *Engine) SetControl(servo int, value float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a := &e.model.Actuators[servo]
	e.ctrl[servo] = clamp(value, a.CtrlRange[0], a.CtrlRange[1])
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
