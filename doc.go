// Package armsim provides a simulated control loop for robot arms.
//
// It pairs a small spring-damper physics engine with the controller that
// drives real hardware, so the same joint-level API works against a
// simulated ReactorX-200 or a chain of Feetech servos on a serial bus.
//
// # Installation
//
//	go install github.com/gwillem/armsim/cmd/armsim@latest
//
// # Usage
//
// Run the demo to watch the simulated arm sweep through its joints:
//
//	armsim demo
//
// Pass a serial port to mirror the motion onto real servos:
//
//	armsim demo --port /dev/ttyUSB0
//
// Drive individual joints interactively:
//
//	armsim jog
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/armsim: CLI with demo, jog, scan and info commands
//   - pkg/servo: Stepping loop, torque gating and adaptive tick period
//   - pkg/sim: Physics backend, viewer interface and arm models
//   - pkg/arm: Named joints, unit conversion and multi-controller fan-out
//   - pkg/bus: Feetech serial bus backend and port scanning
package armsim
