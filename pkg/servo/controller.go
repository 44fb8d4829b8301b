// Package servo implements rate-limited position control for a group of
// servos over a sim.Backend. A Controller runs two loops: a physics loop
// that nudges every torque-enabled servo toward its target position at an
// adaptive tick rate, and a viewer loop that keeps an optional render
// target roughly current at a fixed, coarser cadence.
//
// All facade operations and the physics tick share one mutex, so reads
// observe either the state before or after a tick, never a torn one.
package servo

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gwillem/armsim/pkg/sim"
)

const (
	// DefaultVelMin and DefaultVelMax anchor the velocity-to-period map:
	// 1 rpm and 61 rpm expressed in rad/s.
	DefaultVelMin = math.Pi / 30
	DefaultVelMax = 61 * math.Pi / 30

	DefaultPeriodMin = 2 * time.Millisecond
	DefaultPeriodMax = 20 * time.Millisecond

	// DefaultFramePeriod is the viewer sync cadence.
	DefaultFramePeriod = 200 * time.Millisecond

	// closeGrace gives the loops a moment to observe the stop signal
	// before Close starts waiting on them.
	closeGrace  = 100 * time.Millisecond
	joinTimeout = time.Second
)

// Config carries the controller dependencies and tuning. Zero tuning
// fields fall back to the defaults above.
type Config struct {
	Backend sim.Backend
	Viewer  sim.Viewer // optional; nil runs headless

	// VelMin/VelMax (rad/s) map to PeriodMax/PeriodMin: faster servos get
	// finer ticks.
	VelMin    float64
	VelMax    float64
	PeriodMin time.Duration
	PeriodMax time.Duration

	FramePeriod time.Duration
}

// Controller drives a backend toward per-servo target positions without
// exceeding per-servo velocity limits.
type Controller struct {
	backend sim.Backend
	viewer  sim.Viewer
	n       int

	velMin      float64
	velMax      float64
	periodMin   time.Duration
	periodMax   time.Duration
	framePeriod time.Duration

	mu       sync.Mutex
	state    *controlState
	running  bool
	runErr   error
	stop     chan struct{}
	physDone chan struct{}
	viewDone chan struct{}

	logCh chan string
}

// NewController validates the config and returns a stopped controller with
// all servos passive.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("no backend configured")
	}
	n := cfg.Backend.NumActuators()
	if n <= 0 {
		return nil, fmt.Errorf("backend reports %d actuators", n)
	}

	if cfg.VelMin == 0 {
		cfg.VelMin = DefaultVelMin
	}
	if cfg.VelMax == 0 {
		cfg.VelMax = DefaultVelMax
	}
	if cfg.PeriodMin == 0 {
		cfg.PeriodMin = DefaultPeriodMin
	}
	if cfg.PeriodMax == 0 {
		cfg.PeriodMax = DefaultPeriodMax
	}
	if cfg.FramePeriod == 0 {
		cfg.FramePeriod = DefaultFramePeriod
	}
	if cfg.VelMin >= cfg.VelMax {
		return nil, fmt.Errorf("velocity anchors [%g, %g] are not ordered", cfg.VelMin, cfg.VelMax)
	}
	if cfg.PeriodMin <= 0 || cfg.PeriodMin >= cfg.PeriodMax {
		return nil, fmt.Errorf("period anchors [%s, %s] are not ordered", cfg.PeriodMin, cfg.PeriodMax)
	}

	return &Controller{
		backend:     cfg.Backend,
		viewer:      cfg.Viewer,
		n:           n,
		velMin:      cfg.VelMin,
		velMax:      cfg.VelMax,
		periodMin:   cfg.PeriodMin,
		periodMax:   cfg.PeriodMax,
		framePeriod: cfg.FramePeriod,
		state:       newControlState(n, cfg.PeriodMin),
		logCh:       make(chan string, 10),
	}, nil
}

// NumServos returns the number of servos the backend exposes.
func (c *Controller) NumServos() int { return c.n }

// Logs returns diagnostic messages from the loops. The channel is never
// closed; messages are dropped when nobody reads.
func (c *Controller) Logs() <-chan string { return c.logCh }

func (c *Controller) checkServo(servo int) error {
	if servo < 0 || servo >= c.n {
		return fmt.Errorf("servo %d: %w", servo, ErrInvalidIndex)
	}
	return nil
}

// SetTorque switches a servo between passive and position-controlled. Only
// torque-enabled servos are moved by the physics loop.
func (c *Controller) SetTorque(servo int, on bool) error {
	if err := c.checkServo(servo); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.torque[servo] = on
	return nil
}

// Torque reports whether the servo is position-controlled.
func (c *Controller) Torque(servo int) (bool, error) {
	if err := c.checkServo(servo); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.torque[servo], nil
}

// DisableAll switches every servo passive in one critical section.
func (c *Controller) DisableAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.state.torque {
		c.state.torque[i] = false
	}
}

// SetVelocity sets the servo's speed limit in rad/s and retunes the tick
// period for it. The servo must be passive.
func (c *Controller) SetVelocity(servo int, v float64) error {
	if err := c.checkServo(servo); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("servo %d: velocity %g: %w", servo, v, ErrInvalidVelocity)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.torque[servo] {
		return fmt.Errorf("set velocity on servo %d: %w", servo, ErrTorqueEnabled)
	}
	c.state.velocity[servo] = v
	c.state.period = c.periodFor(v)
	return nil
}

// Velocity returns the servo's speed limit in rad/s.
func (c *Controller) Velocity(servo int) (float64, error) {
	if err := c.checkServo(servo); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.velocity[servo], nil
}

// SetPosition sets the target the physics loop moves the servo toward. The
// servo must be torque-enabled.
func (c *Controller) SetPosition(servo int, pos float64) error {
	if err := c.checkServo(servo); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.torque[servo] {
		return fmt.Errorf("set position on servo %d: %w", servo, ErrTorqueDisabled)
	}
	c.state.position[servo] = pos
	return nil
}

// Position reads the servo's current position from the backend, regardless
// of torque state.
func (c *Controller) Position(servo int) (float64, error) {
	if err := c.checkServo(servo); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.Position(servo), nil
}

// Force returns the torque sensed about the servo's motion axis: the dot
// product of the axis with the servo's three sensor channels. The servo
// must be torque-enabled.
func (c *Controller) Force(servo int) (float64, error) {
	if err := c.checkServo(servo); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.torque[servo] {
		return 0, fmt.Errorf("read force on servo %d: %w", servo, ErrTorqueDisabled)
	}

	axis := c.backend.Axis(servo)
	data := c.backend.SensorData(c.backend.SensorBase(servo), 3)
	var f float64
	for i := 0; i < 3 && i < len(data); i++ {
		f += axis[i] * data[i]
	}
	return f, nil
}

// FactoryReset emulates a servo reset: the servo drops out of position
// control. Targets and limits are left for the caller to reapply.
func (c *Controller) FactoryReset(servo int) error {
	return c.SetTorque(servo, false)
}

// Reboot emulates a servo reboot. Like a real power cycle it leaves the
// servo passive.
func (c *Controller) Reboot(servo int) error {
	return c.SetTorque(servo, false)
}

// Status returns the servo's hardware error word. Simulated servos never
// fault.
func (c *Controller) Status(servo int) (int, error) {
	if err := c.checkServo(servo); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return 0, nil
}

// MovingStatus returns the servo's motion profile flag. Simulated servos
// report idle.
func (c *Controller) MovingStatus(servo int) (int, error) {
	if err := c.checkServo(servo); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return 0, nil
}

// TickPeriod returns the current physics tick period.
func (c *Controller) TickPeriod() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.period
}

// Running reports whether the physics loop is live.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Err returns the error that stopped the last run, if any. It is cleared
// by Start.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runErr
}

// Start launches the physics loop, and the viewer loop when a viewer is
// configured. Calling Start on a running controller is a no-op.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}

	c.running = true
	c.runErr = nil
	c.stop = make(chan struct{})
	c.physDone = make(chan struct{})
	c.viewDone = nil

	go c.physicsLoop(c.stop, c.physDone)
	if c.viewer != nil {
		c.viewDone = make(chan struct{})
		go c.viewerLoop(c.stop, c.viewDone)
	}
}

// Close signals both loops to stop and waits a bounded time for each to
// confirm. A loop that misses the deadline is reported with
// ErrShutdownTimeout but not waited on further. Closing a stopped
// controller is a no-op.
func (c *Controller) Close() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	close(c.stop)
	physDone, viewDone := c.physDone, c.viewDone
	c.mu.Unlock()

	time.Sleep(closeGrace)

	var errs []error
	if err := waitLoop(physDone, "physics"); err != nil {
		errs = append(errs, err)
	}
	if viewDone != nil {
		if err := waitLoop(viewDone, "viewer"); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func waitLoop(done <-chan struct{}, name string) error {
	select {
	case <-done:
		return nil
	case <-time.After(joinTimeout):
		return fmt.Errorf("%s loop: %w", name, ErrShutdownTimeout)
	}
}

// fail records the first fatal loop error and stops the run.
func (c *Controller) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	c.runErr = err
	close(c.stop)
}

// physicsLoop ticks the backend at the adaptive period. The period is
// re-read every iteration so velocity changes take effect on the next
// tick. Waits are sliced to a tenth of the period so a newly shortened
// period is honored promptly.
func (c *Controller) physicsLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		default:
		}

		period := c.TickPeriod()
		if elapsed := time.Since(last); elapsed < period {
			wait := period - elapsed
			if slice := period / 10; slice < wait {
				wait = slice
			}
			select {
			case <-stop:
				return
			case <-time.After(wait):
			}
			continue
		}

		if err := c.tick(); err != nil {
			c.log("physics: %v", err)
			c.fail(fmt.Errorf("physics tick: %w", err))
			return
		}
		last = time.Now()
	}
}

// tick is one critical section: command every torque-enabled servo one
// velocity-limited step toward its target, then advance the backend.
func (c *Controller) tick() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dt := c.state.period.Seconds()
	for i, on := range c.state.torque {
		if !on {
			continue
		}
		pos := c.backend.Position(i)
		maxStep := c.state.velocity[i] * dt
		step := clampStep(c.state.position[i]-pos, maxStep)
		c.backend.SetControl(i, pos+step)
	}
	return c.backend.Step()
}

func clampStep(diff, limit float64) float64 {
	if diff > limit {
		return limit
	}
	if diff < -limit {
		return -limit
	}
	return diff
}

// viewerLoop syncs the render target at the frame period. It ends on its
// own when the target goes away or a sync fails; the physics loop keeps
// running either way.
func (c *Controller) viewerLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		default:
		}

		if !c.viewer.Active() {
			c.log("viewer: render target closed")
			return
		}

		if elapsed := time.Since(last); elapsed < c.framePeriod {
			wait := c.framePeriod - elapsed
			if slice := c.framePeriod / 10; slice < wait {
				wait = slice
			}
			select {
			case <-stop:
				return
			case <-time.After(wait):
			}
			continue
		}

		if err := c.viewer.Sync(); err != nil {
			c.log("viewer: sync: %v", err)
			return
		}
		last = time.Now()
	}
}

func (c *Controller) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case c.logCh <- msg:
	default:
	}
}
