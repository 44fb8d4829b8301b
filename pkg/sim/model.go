package sim

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Actuator describes one simulated joint: its motion axis, the admissible
// control and force ranges, the spring-damper constants the engine
// integrates with, and the home pose it resets to.
type Actuator struct {
	Name       string     `json:"name"`
	Axis       [3]float64 `json:"axis"`
	CtrlRange  [2]float64 `json:"ctrl_range"`
	ForceRange [2]float64 `json:"force_range"`
	Gain       float64    `json:"gain"`
	Damping    float64    `json:"damping"`
	Home       float64    `json:"home"`
}

// Model is a loadable arm description for the engine.
type Model struct {
	Name      string     `json:"name"`
	Timestep  float64    `json:"timestep"`
	Actuators []Actuator `json:"actuators"`
}

// LoadModel reads a model from a JSON file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

// Save writes the model as indented JSON.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// Validate checks that the model is integrable: at least one actuator,
// a positive timestep, ordered ranges, unit axes, and homes inside the
// control range.
func (m *Model) Validate() error {
	if len(m.Actuators) == 0 {
		return fmt.Errorf("no actuators")
	}
	if m.Timestep <= 0 {
		return fmt.Errorf("timestep %g is not positive", m.Timestep)
	}
	for i, a := range m.Actuators {
		if a.Name == "" {
			return fmt.Errorf("actuator %d has no name", i)
		}
		if a.CtrlRange[0] >= a.CtrlRange[1] {
			return fmt.Errorf("actuator %s: ctrl range [%g, %g] is not ordered", a.Name, a.CtrlRange[0], a.CtrlRange[1])
		}
		if a.ForceRange[0] >= a.ForceRange[1] {
			return fmt.Errorf("actuator %s: force range [%g, %g] is not ordered", a.Name, a.ForceRange[0], a.ForceRange[1])
		}
		norm := math.Sqrt(a.Axis[0]*a.Axis[0] + a.Axis[1]*a.Axis[1] + a.Axis[2]*a.Axis[2])
		if math.Abs(norm-1) > 1e-6 {
			return fmt.Errorf("actuator %s: axis is not unit length", a.Name)
		}
		if a.Home < a.CtrlRange[0] || a.Home > a.CtrlRange[1] {
			return fmt.Errorf("actuator %s: home %g outside ctrl range", a.Name, a.Home)
		}
		if a.Gain <= 0 {
			return fmt.Errorf("actuator %s: gain %g is not positive", a.Name, a.Gain)
		}
		if a.Damping < 0 {
			return fmt.Errorf("actuator %s: damping %g is negative", a.Name, a.Damping)
		}
	}
	return nil
}

// ReactorX200 returns the built-in model of the six-actuator ReactorX-200
// arm: five rotary joints plus a linear gripper slide.
func ReactorX200() *Model {
	deg := func(d float64) float64 { return d * math.Pi / 180 }

	return &Model{
		Name:     "reactorx200",
		Timestep: 0.002,
		Actuators: []Actuator{
			{
				Name:       "waist",
				Axis:       [3]float64{0, 0, 1},
				CtrlRange:  [2]float64{-math.Pi, math.Pi},
				ForceRange: [2]float64{-8, 8},
				Gain:       100,
				Damping:    20,
			},
			{
				Name:       "shoulder",
				Axis:       [3]float64{0, 1, 0},
				CtrlRange:  [2]float64{deg(-108), deg(113)},
				ForceRange: [2]float64{-18, 18},
				Gain:       100,
				Damping:    20,
			},
			{
				Name:       "elbow",
				Axis:       [3]float64{0, 1, 0},
				CtrlRange:  [2]float64{deg(-108), deg(93)},
				ForceRange: [2]float64{-13, 13},
				Gain:       100,
				Damping:    20,
			},
			{
				Name:       "wrist_angle",
				Axis:       [3]float64{0, 1, 0},
				CtrlRange:  [2]float64{deg(-100), deg(123)},
				ForceRange: [2]float64{-5, 5},
				Gain:       100,
				Damping:    20,
			},
			{
				Name:       "wrist_rotation",
				Axis:       [3]float64{1, 0, 0},
				CtrlRange:  [2]float64{-math.Pi, math.Pi},
				ForceRange: [2]float64{-5, 5},
				Gain:       100,
				Damping:    20,
			},
			{
				Name:       "gripper",
				Axis:       [3]float64{1, 0, 0},
				CtrlRange:  [2]float64{0.015, 0.035},
				ForceRange: [2]float64{-8, 8},
				Gain:       100,
				Damping:    20,
				Home:       0.022,
			},
		},
	}
}
