package arm

import (
	"errors"
	"fmt"
)

// Multi fans one control surface out to several controllers, typically a
// simulated twin alongside physical hardware. Writes go to every
// controller in order and stop at the first failure; reads come from the
// first controller, which is the source of truth.
type Multi struct {
	ctrls []Controller
}

// NewMulti wraps one or more controllers. The first one answers all reads.
func NewMulti(ctrls ...Controller) (*Multi, error) {
	if len(ctrls) == 0 {
		return nil, fmt.Errorf("no controllers")
	}
	return &Multi{ctrls: ctrls}, nil
}

func (m *Multi) each(op string, f func(Controller) error) error {
	for i, c := range m.ctrls {
		if err := f(c); err != nil {
			return fmt.Errorf("%s on controller %d: %w", op, i, err)
		}
	}
	return nil
}

func (m *Multi) SetTorque(servo int, on bool) error {
	return m.each("set torque", func(c Controller) error { return c.SetTorque(servo, on) })
}

func (m *Multi) Torque(servo int) (bool, error) {
	return m.ctrls[0].Torque(servo)
}

func (m *Multi) SetVelocity(servo int, v float64) error {
	return m.each("set velocity", func(c Controller) error { return c.SetVelocity(servo, v) })
}

func (m *Multi) Velocity(servo int) (float64, error) {
	return m.ctrls[0].Velocity(servo)
}

func (m *Multi) SetPosition(servo int, pos float64) error {
	return m.each("set position", func(c Controller) error { return c.SetPosition(servo, pos) })
}

func (m *Multi) Position(servo int) (float64, error) {
	return m.ctrls[0].Position(servo)
}

func (m *Multi) Force(servo int) (float64, error) {
	return m.ctrls[0].Force(servo)
}

func (m *Multi) FactoryReset(servo int) error {
	return m.each("factory reset", func(c Controller) error { return c.FactoryReset(servo) })
}

func (m *Multi) Reboot(servo int) error {
	return m.each("reboot", func(c Controller) error { return c.Reboot(servo) })
}

func (m *Multi) Status(servo int) (int, error) {
	return m.ctrls[0].Status(servo)
}

func (m *Multi) MovingStatus(servo int) (int, error) {
	return m.ctrls[0].MovingStatus(servo)
}

func (m *Multi) DisableAll() {
	for _, c := range m.ctrls {
		c.DisableAll()
	}
}

// Close shuts every controller down and reports all failures.
func (m *Multi) Close() error {
	var errs []error
	for i, c := range m.ctrls {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close controller %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
