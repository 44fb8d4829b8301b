package arm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownJoint is returned for joint names the arm was not built
	// with.
	ErrUnknownJoint = errors.New("unknown joint")

	// ErrOutOfRange rejects values outside a joint's configured limits.
	ErrOutOfRange = errors.New("value out of range")
)

// Controller is the indexed control surface the arm drives. It is
// implemented by servo.Controller for one backend and by Multi for a
// fan-out to several.
type Controller interface {
	SetTorque(servo int, on bool) error
	Torque(servo int) (bool, error)
	SetVelocity(servo int, v float64) error
	Velocity(servo int) (float64, error)
	SetPosition(servo int, pos float64) error
	Position(servo int) (float64, error)
	Force(servo int) (float64, error)
	FactoryReset(servo int) error
	Reboot(servo int) error
	Status(servo int) (int, error)
	MovingStatus(servo int) (int, error)
	DisableAll()
	Close() error
}

// Spec configures one joint: which servo index it drives, its unit
// conversions, the limits enforced in application units, and the speed
// applied at construction.
type Spec struct {
	ID        int
	Units     Units
	PosLimits Range
	VelLimits Range
	Home      float64
	Velocity  float64
	Reverse   bool
}

// Servo exposes one joint in application units.
type Servo struct {
	ctrl  Controller
	joint Joint
	spec  Spec
}

func (s *Servo) factor() float64 {
	if s.spec.Reverse {
		return -1
	}
	return 1
}

// ID returns the servo index on the controller.
func (s *Servo) ID() int { return s.spec.ID }

// Joint returns the joint name.
func (s *Servo) Joint() Joint { return s.joint }

// PosLimits returns the admissible position range in application units.
func (s *Servo) PosLimits() Range { return s.spec.PosLimits }

// EnableTorque engages position control for the joint.
func (s *Servo) EnableTorque() error {
	return s.ctrl.SetTorque(s.spec.ID, true)
}

// DisableTorque releases the joint.
func (s *Servo) DisableTorque() error {
	return s.ctrl.SetTorque(s.spec.ID, false)
}

// TorqueEnabled reports whether the joint is under position control.
func (s *Servo) TorqueEnabled() (bool, error) {
	return s.ctrl.Torque(s.spec.ID)
}

// SetPosition commands the joint toward a position, checked against the
// joint limits first.
func (s *Servo) SetPosition(pos float64) error {
	if !s.spec.PosLimits.Contains(pos) {
		return fmt.Errorf("joint %s: position %.2f outside [%.2f, %.2f]: %w",
			s.joint, pos, s.spec.PosLimits.Min, s.spec.PosLimits.Max, ErrOutOfRange)
	}
	return s.ctrl.SetPosition(s.spec.ID, s.spec.Units.Position.ToSys(s.factor()*pos))
}

// Position reads the joint's current position.
func (s *Servo) Position() (float64, error) {
	sys, err := s.ctrl.Position(s.spec.ID)
	if err != nil {
		return 0, err
	}
	return s.factor() * s.spec.Units.Position.ToApp(sys), nil
}

// SetVelocity sets the joint speed limit, checked against the velocity
// limits first. The joint must not be under torque.
func (s *Servo) SetVelocity(v float64) error {
	if !s.spec.VelLimits.Contains(v) {
		return fmt.Errorf("joint %s: velocity %.2f outside [%.2f, %.2f]: %w",
			s.joint, v, s.spec.VelLimits.Min, s.spec.VelLimits.Max, ErrOutOfRange)
	}
	return s.ctrl.SetVelocity(s.spec.ID, s.spec.Units.Velocity.ToSys(v))
}

// Velocity reads the joint speed limit.
func (s *Servo) Velocity() (float64, error) {
	sys, err := s.ctrl.Velocity(s.spec.ID)
	if err != nil {
		return 0, err
	}
	return s.spec.Units.Velocity.ToApp(sys), nil
}

// Force reads the load on the joint as a percentage of its rated torque.
// The joint must be under torque.
func (s *Servo) Force() (float64, error) {
	sys, err := s.ctrl.Force(s.spec.ID)
	if err != nil {
		return 0, err
	}
	return s.spec.Units.Torque.ToApp(sys), nil
}

// Home moves the joint to its home position.
func (s *Servo) Home() error {
	return s.SetPosition(s.spec.Home)
}

// FactoryReset resets the servo; it comes back with torque released.
func (s *Servo) FactoryReset() error {
	return s.ctrl.FactoryReset(s.spec.ID)
}

// Reboot power-cycles the servo; it comes back with torque released.
func (s *Servo) Reboot() error {
	return s.ctrl.Reboot(s.spec.ID)
}

// Status reads the servo's hardware error word.
func (s *Servo) Status() (int, error) {
	return s.ctrl.Status(s.spec.ID)
}

// MovingStatus reads the servo's motion profile flag.
func (s *Servo) MovingStatus() (int, error) {
	return s.ctrl.MovingStatus(s.spec.ID)
}
