package arm

import "fmt"

// Arm groups named joints over one controller. Bulk operations run in
// joint order; the first failing joint aborts the rest.
type Arm struct {
	ctrl   Controller
	servos map[Joint]*Servo
	order  []Joint
}

// New builds an arm from joint specs and applies each joint's default
// velocity. Joints must be torque-free at this point, which is how both
// the engine and a freshly attached controller come up.
func New(ctrl Controller, specs map[Joint]Spec) (*Arm, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no joints configured")
	}

	a := &Arm{
		ctrl:   ctrl,
		servos: make(map[Joint]*Servo, len(specs)),
	}
	for _, j := range AllJoints() {
		spec, ok := specs[j]
		if !ok {
			continue
		}
		s := &Servo{ctrl: ctrl, joint: j, spec: spec}
		if err := s.SetVelocity(spec.Velocity); err != nil {
			return nil, fmt.Errorf("joint %s: apply default velocity: %w", j, err)
		}
		a.servos[j] = s
		a.order = append(a.order, j)
	}

	if len(a.order) != len(specs) {
		for j := range specs {
			if _, ok := a.servos[j]; !ok {
				return nil, fmt.Errorf("joint %q: %w", j, ErrUnknownJoint)
			}
		}
	}
	return a, nil
}

// Joints returns the configured joints in servo order.
func (a *Arm) Joints() []Joint {
	out := make([]Joint, len(a.order))
	copy(out, a.order)
	return out
}

// Servo returns the named joint.
func (a *Arm) Servo(j Joint) (*Servo, error) {
	s, ok := a.servos[j]
	if !ok {
		return nil, fmt.Errorf("joint %q: %w", j, ErrUnknownJoint)
	}
	return s, nil
}

// EnableTorque engages position control for one joint.
func (a *Arm) EnableTorque(j Joint) error {
	s, err := a.Servo(j)
	if err != nil {
		return err
	}
	return s.EnableTorque()
}

// DisableTorque releases one joint.
func (a *Arm) DisableTorque(j Joint) error {
	s, err := a.Servo(j)
	if err != nil {
		return err
	}
	return s.DisableTorque()
}

// EnableAll engages position control for every joint.
func (a *Arm) EnableAll() error {
	for _, j := range a.order {
		if err := a.servos[j].EnableTorque(); err != nil {
			return err
		}
	}
	return nil
}

// DisableAll releases every joint in one controller call.
func (a *Arm) DisableAll() {
	a.ctrl.DisableAll()
}

// SetPosition commands one joint.
func (a *Arm) SetPosition(j Joint, pos float64) error {
	s, err := a.Servo(j)
	if err != nil {
		return err
	}
	return s.SetPosition(pos)
}

// Position reads one joint.
func (a *Arm) Position(j Joint) (float64, error) {
	s, err := a.Servo(j)
	if err != nil {
		return 0, err
	}
	return s.Position()
}

// SetPositions commands every joint, in joint order.
func (a *Arm) SetPositions(pos []float64) error {
	if len(pos) != len(a.order) {
		return fmt.Errorf("%d positions for %d joints", len(pos), len(a.order))
	}
	for i, j := range a.order {
		if err := a.servos[j].SetPosition(pos[i]); err != nil {
			return err
		}
	}
	return nil
}

// Positions reads every joint, in joint order.
func (a *Arm) Positions() ([]float64, error) {
	out := make([]float64, len(a.order))
	for i, j := range a.order {
		p, err := a.servos[j].Position()
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// SetVelocity sets one joint's speed limit.
func (a *Arm) SetVelocity(j Joint, v float64) error {
	s, err := a.Servo(j)
	if err != nil {
		return err
	}
	return s.SetVelocity(v)
}

// SetVelocities sets every joint's speed limit, in joint order.
func (a *Arm) SetVelocities(vel []float64) error {
	if len(vel) != len(a.order) {
		return fmt.Errorf("%d velocities for %d joints", len(vel), len(a.order))
	}
	for i, j := range a.order {
		if err := a.servos[j].SetVelocity(vel[i]); err != nil {
			return err
		}
	}
	return nil
}

// Velocities reads every joint's speed limit, in joint order.
func (a *Arm) Velocities() ([]float64, error) {
	out := make([]float64, len(a.order))
	for i, j := range a.order {
		v, err := a.servos[j].Velocity()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// TorqueStates reports which joints are under position control, in joint
// order.
func (a *Arm) TorqueStates() ([]bool, error) {
	out := make([]bool, len(a.order))
	for i, j := range a.order {
		on, err := a.servos[j].TorqueEnabled()
		if err != nil {
			return nil, err
		}
		out[i] = on
	}
	return out, nil
}

// Force reads the load on one joint.
func (a *Arm) Force(j Joint) (float64, error) {
	s, err := a.Servo(j)
	if err != nil {
		return 0, err
	}
	return s.Force()
}

// Forces reads the load on every joint, in joint order. Every joint must
// be under torque.
func (a *Arm) Forces() ([]float64, error) {
	out := make([]float64, len(a.order))
	for i, j := range a.order {
		f, err := a.servos[j].Force()
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// Home moves one joint to its home position.
func (a *Arm) Home(j Joint) error {
	s, err := a.Servo(j)
	if err != nil {
		return err
	}
	return s.Home()
}

// HomeAll moves every joint to its home position.
func (a *Arm) HomeAll() error {
	for _, j := range a.order {
		if err := a.servos[j].Home(); err != nil {
			return err
		}
	}
	return nil
}

// OpenGripper drives the gripper to its widest configured position.
func (a *Arm) OpenGripper() error {
	s, err := a.Servo(Gripper)
	if err != nil {
		return err
	}
	return s.SetPosition(s.spec.PosLimits.Max)
}

// CloseGripper drives the gripper to its narrowest configured position.
func (a *Arm) CloseGripper() error {
	s, err := a.Servo(Gripper)
	if err != nil {
		return err
	}
	return s.SetPosition(s.spec.PosLimits.Min)
}

// Close releases every joint and shuts the controller down.
func (a *Arm) Close() error {
	a.ctrl.DisableAll()
	return a.ctrl.Close()
}
