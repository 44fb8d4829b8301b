package bus

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

type fakeGroup struct {
	pos      map[int]int
	writes   []feetech.PositionMap
	enables  int
	disables int
	posErr   error
	setErr   error
}

func (g *fakeGroup) Positions(ctx context.Context) (map[int]int, error) {
	if g.posErr != nil {
		return nil, g.posErr
	}
	out := make(map[int]int, len(g.pos))
	for id, t := range g.pos {
		out[id] = t
	}
	return out, nil
}

func (g *fakeGroup) SetPositions(ctx context.Context, positions feetech.PositionMap) error {
	if g.setErr != nil {
		return g.setErr
	}
	snap := make(feetech.PositionMap, len(positions))
	for id, t := range positions {
		snap[id] = t
		g.pos[id] = t
	}
	g.writes = append(g.writes, snap)
	return nil
}

func (g *fakeGroup) EnableAll(ctx context.Context) error {
	g.enables++
	return nil
}

func (g *fakeGroup) DisableAll(ctx context.Context) error {
	g.disables++
	return nil
}

func newFakeGroup(ids ...int) *fakeGroup {
	g := &fakeGroup{pos: make(map[int]int)}
	for _, id := range ids {
		g.pos[id] = centerTick
	}
	return g
}

func TestTickConversion(t *testing.T) {
	tests := []struct {
		name  string
		ticks int
		rad   float64
	}{
		{"center", 2048, 0},
		{"quarter turn", 3072, math.Pi / 2},
		{"reverse quarter", 1024, -math.Pi / 2},
		{"low stop", 0, -math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := radFromTicks(tt.ticks); math.Abs(got-tt.rad) > 1e-9 {
				t.Errorf("radFromTicks(%d) = %g, want %g", tt.ticks, got, tt.rad)
			}
			if got := ticksFromRad(tt.rad); got != tt.ticks {
				t.Errorf("ticksFromRad(%g) = %d, want %d", tt.rad, got, tt.ticks)
			}
		})
	}

	// out-of-range radians clamp to the tick stops
	if got := ticksFromRad(10); got != ticksPerRev-1 {
		t.Errorf("ticksFromRad(10) = %d, want %d", got, ticksPerRev-1)
	}
	if got := ticksFromRad(-10); got != 0 {
		t.Errorf("ticksFromRad(-10) = %d, want 0", got)
	}
}

func TestAttachPrimesAndEnables(t *testing.T) {
	g := newFakeGroup(1, 2, 3)
	g.pos[2] = 3072

	b, err := attach(g, []int{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}

	if g.enables != 1 {
		t.Fatalf("EnableAll called %d times, want 1", g.enables)
	}
	if got := b.Position(1); math.Abs(got-math.Pi/2) > 1e-9 {
		t.Fatalf("primed position = %g, want pi/2", got)
	}
	if got := b.Position(0); got != 0 {
		t.Fatalf("primed position = %g, want 0", got)
	}
	if b.NumActuators() != 3 {
		t.Fatalf("NumActuators = %d, want 3", b.NumActuators())
	}
}

func TestAttachFailsWhenBusUnreadable(t *testing.T) {
	g := newFakeGroup(1)
	g.posErr = errors.New("no reply")
	if _, err := attach(g, []int{1}); err == nil {
		t.Fatal("attach succeeded with unreadable bus")
	}
}

func TestStepFlushesBufferedGoals(t *testing.T) {
	g := newFakeGroup(1, 2)
	b, err := attach(g, []int{1, 2})
	if err != nil {
		t.Fatal(err)
	}

	b.SetControl(0, math.Pi/2)
	b.SetControl(1, -math.Pi/2)
	if len(g.writes) != 0 {
		t.Fatal("goals written before Step")
	}

	if err := b.Step(); err != nil {
		t.Fatal(err)
	}
	if len(g.writes) != 1 {
		t.Fatalf("%d sync writes, want 1", len(g.writes))
	}
	want := feetech.PositionMap{1: 3072, 2: 1024}
	for id, ticks := range want {
		if got := g.writes[0][id]; got != ticks {
			t.Errorf("servo %d written %d, want %d", id, got, ticks)
		}
	}

	// the same Step refreshed the cache from the bus
	if got := b.Position(0); math.Abs(got-math.Pi/2) > 1e-3 {
		t.Errorf("cached position = %g, want pi/2", got)
	}

	// goals are not rewritten on an idle tick
	if err := b.Step(); err != nil {
		t.Fatal(err)
	}
	if len(g.writes) != 1 {
		t.Fatalf("idle Step wrote goals again: %d writes", len(g.writes))
	}
}

func TestStepSurfacesBusErrors(t *testing.T) {
	g := newFakeGroup(1)
	b, err := attach(g, []int{1})
	if err != nil {
		t.Fatal(err)
	}

	cause := errors.New("port gone")
	g.posErr = cause
	if err := b.Step(); !errors.Is(err, cause) {
		t.Fatalf("Step = %v, want wrapped %v", err, cause)
	}

	g.posErr = nil
	g.setErr = cause
	b.SetControl(0, 1)
	if err := b.Step(); !errors.Is(err, cause) {
		t.Fatalf("Step = %v, want wrapped %v", err, cause)
	}
}

func TestForceChannelsReadZero(t *testing.T) {
	g := newFakeGroup(1)
	b, err := attach(g, []int{1})
	if err != nil {
		t.Fatal(err)
	}

	data := b.SensorData(b.SensorBase(0), 3)
	if len(data) != 3 {
		t.Fatalf("sensor data length %d, want 3", len(data))
	}
	for k, v := range data {
		if v != 0 {
			t.Fatalf("channel %d = %g, want 0", k, v)
		}
	}
}

func TestCloseReleasesServos(t *testing.T) {
	g := newFakeGroup(1, 2)
	b, err := attach(g, []int{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if g.disables != 1 {
		t.Fatalf("DisableAll called %d times, want 1", g.disables)
	}
}
