package servo

import "errors"

var (
	// ErrInvalidIndex is returned when a servo index is outside the
	// backend's actuator range.
	ErrInvalidIndex = errors.New("servo index out of range")

	// ErrTorqueEnabled rejects operations that require a passive servo,
	// such as changing its velocity limit.
	ErrTorqueEnabled = errors.New("torque is enabled")

	// ErrTorqueDisabled rejects operations that require an active servo,
	// such as commanding a position or reading force.
	ErrTorqueDisabled = errors.New("torque is disabled")

	// ErrInvalidVelocity rejects negative velocity limits.
	ErrInvalidVelocity = errors.New("velocity must not be negative")

	// ErrShutdownTimeout reports a loop that did not confirm exit within
	// the close timeout. The loop may still be running.
	ErrShutdownTimeout = errors.New("loop did not stop in time")
)
