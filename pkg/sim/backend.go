// Package sim provides the simulation side of armsim: the capability
// interface the servo controller drives, an arm model description, and a
// built-in spring-damper physics engine implementing that interface.
package sim

// Backend is the capability surface the servo controller needs from a
// physics engine or hardware bridge. Implementations own the ground-truth
// actuator state; the controller only reads positions and sensor channels
// and writes per-actuator control values.
//
// Step advances the backend by one integration step. Hardware-backed
// implementations use it to flush buffered control writes and refresh
// cached reads in a single bus transaction. A Step error is fatal to the
// control loop: the controller stops rather than keep stepping an
// inconsistent backend.
type Backend interface {
	NumActuators() int
	Step() error

	// Position returns the generalized position of one actuator.
	Position(servo int) float64

	// Axis returns the actuator's unit motion axis.
	Axis(servo int) [3]float64

	// SensorBase returns the first sensor channel of the servo's torque
	// triple. The channel layout is backend-defined; callers must not
	// assume a fixed stride.
	SensorBase(servo int) int

	// SensorData returns count channels starting at base. Channels outside
	// the backend's sensor array read as zero.
	SensorData(base, count int) []float64

	SetControl(servo int, value float64)
}

// Viewer is a render target the controller keeps approximately current.
// Sync pushes the latest backend state to the render surface; Active
// reports whether the surface still exists (a closed window or quit TUI
// returns false and ends the viewer loop without stopping the simulation).
//
// Viewer reads are eventually consistent: a synced frame may trail the
// physics loop by one or more ticks.
type Viewer interface {
	Sync() error
	Active() bool
}
