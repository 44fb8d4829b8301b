// Package bus bridges the servo controller to physical Feetech servos over
// a serial bus. It implements the same backend interface as the built-in
// engine: control writes are buffered and flushed by Step in one sync
// write, followed by one sync read that refreshes the position cache, so
// every bus transaction happens on the controller's tick.
//
// Physical servos hold hardware torque for as long as the bridge is open;
// the controller's torque flags gate only which servos receive new goals.
// The bus has no torque sensing, so force reads come back zero.
package bus

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

const (
	ticksPerRev = 4096
	centerTick  = 2048
)

// Config describes the serial attachment. Zero fields fall back to a
// six-servo chain with IDs 1-6 at 1 Mbaud.
type Config struct {
	Port     string
	BaudRate int
	IDs      []int // bus IDs in actuator order
	Timeout  time.Duration
}

// group is the subset of feetech.ServoGroup the bridge drives.
type group interface {
	Positions(ctx context.Context) (map[int]int, error)
	SetPositions(ctx context.Context, positions feetech.PositionMap) error
	EnableAll(ctx context.Context) error
	DisableAll(ctx context.Context) error
}

// Bus is a hardware-backed servo backend.
type Bus struct {
	bus       *feetech.Bus
	group     group
	ids       []int
	opTimeout time.Duration

	mu      sync.Mutex
	pos     []float64 // cached positions in rad, refreshed by Step
	pending feetech.PositionMap
}

// New opens the serial port, primes the position cache and enables torque
// on every servo.
func New(cfg Config) (*Bus, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 1_000_000
	}
	if len(cfg.IDs) == 0 {
		cfg.IDs = []int{1, 2, 3, 4, 5, 6}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 100 * time.Millisecond
	}

	hw, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: cfg.BaudRate,
		Protocol: feetech.ProtocolSTS,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus %s: %w", cfg.Port, err)
	}

	b, err := attach(feetech.NewServoGroupByIDs(hw, cfg.IDs...), cfg.IDs)
	if err != nil {
		hw.Close()
		return nil, err
	}
	b.bus = hw
	return b, nil
}

func attach(g group, ids []int) (*Bus, error) {
	b := &Bus{
		group:     g,
		ids:       ids,
		opTimeout: time.Second,
		pos:       make([]float64, len(ids)),
		pending:   make(feetech.PositionMap, len(ids)),
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.opTimeout)
	defer cancel()

	raw, err := g.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("prime positions: %w", err)
	}
	b.cache(raw)

	if err := g.EnableAll(ctx); err != nil {
		return nil, fmt.Errorf("enable servos: %w", err)
	}
	return b, nil
}

func (b *Bus) cache(raw map[int]int) {
	for i, id := range b.ids {
		if t, ok := raw[id]; ok {
			b.pos[i] = radFromTicks(t)
		}
	}
}

func (b *Bus) NumActuators() int { return len(b.ids) }

// Step flushes buffered goals in one sync write and refreshes the position
// cache in one sync read. Any bus error surfaces here and stops the
// control loop.
func (b *Bus) Step() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), b.opTimeout)
	defer cancel()

	if len(b.pending) > 0 {
		if err := b.group.SetPositions(ctx, b.pending); err != nil {
			return fmt.Errorf("write goal positions: %w", err)
		}
		clear(b.pending)
	}

	raw, err := b.group.Positions(ctx)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}
	b.cache(raw)
	return nil
}

// Position returns the servo position from the last sync read.
func (b *Bus) Position(servo int) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos[servo]
}

// Axis is nominal: the bus cannot sense torque, so the axis never
// contributes to a force reading.
func (b *Bus) Axis(servo int) [3]float64 { return [3]float64{0, 0, 1} }

// SensorBase points outside the (empty) sensor array; force reads resolve
// to zero.
func (b *Bus) SensorBase(servo int) int { return -1 }

func (b *Bus) SensorData(base, count int) []float64 {
	return make([]float64, count)
}

// SetControl buffers a goal position until the next Step.
func (b *Bus) SetControl(servo int, value float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[b.ids[servo]] = ticksFromRad(value)
}

// Close releases the servos and the serial port.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), b.opTimeout)
	defer cancel()

	var errs []error
	if err := b.group.DisableAll(ctx); err != nil {
		errs = append(errs, fmt.Errorf("disable servos: %w", err))
	}
	if b.bus != nil {
		if err := b.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bus: %w", err))
		}
	}
	return errors.Join(errs...)
}

func radFromTicks(t int) float64 {
	return float64(t-centerTick) * (2 * math.Pi / ticksPerRev)
}

func ticksFromRad(r float64) int {
	t := centerTick + int(math.Round(r*(ticksPerRev/(2*math.Pi))))
	if t < 0 {
		t = 0
	}
	if t > ticksPerRev-1 {
		t = ticksPerRev - 1
	}
	return t
}
