package arm

import (
	"errors"
	"math"
	"testing"
)

func TestNewAppliesDefaultVelocities(t *testing.T) {
	fc := newFakeCtrl(6)
	a, err := NewReactorX200(fc)
	if err != nil {
		t.Fatal(err)
	}

	if got := len(a.Joints()); got != 6 {
		t.Fatalf("%d joints, want 6", got)
	}
	// every rotary joint starts at the gentle default
	want := 10 * math.Pi / 30
	for i := 0; i < 5; i++ {
		if math.Abs(fc.vel[i]-want) > 1e-9 {
			t.Errorf("servo %d velocity %g, want %g", i, fc.vel[i], want)
		}
	}
	if fc.vel[5] <= 0 {
		t.Error("gripper velocity not applied")
	}
}

func TestNewRejectsUnknownJoint(t *testing.T) {
	specs := ReactorX200Specs()
	specs["spinner"] = testSpec(6)

	if _, err := New(newFakeCtrl(7), specs); !errors.Is(err, ErrUnknownJoint) {
		t.Fatalf("New = %v, want ErrUnknownJoint", err)
	}
}

func TestNewRejectsEmptySpecs(t *testing.T) {
	if _, err := New(newFakeCtrl(6), nil); err == nil {
		t.Fatal("empty specs accepted")
	}
}

func TestServoLookup(t *testing.T) {
	a, err := NewReactorX200(newFakeCtrl(6))
	if err != nil {
		t.Fatal(err)
	}

	s, err := a.Servo(Elbow)
	if err != nil {
		t.Fatal(err)
	}
	if s.ID() != 2 || s.Joint() != Elbow {
		t.Fatalf("lookup returned servo %d joint %s", s.ID(), s.Joint())
	}

	if _, err := a.Servo("tentacle"); !errors.Is(err, ErrUnknownJoint) {
		t.Fatalf("lookup = %v, want ErrUnknownJoint", err)
	}
}

func TestJointOrderMatchesServoIndexes(t *testing.T) {
	a, err := NewReactorX200(newFakeCtrl(6))
	if err != nil {
		t.Fatal(err)
	}
	for i, j := range a.Joints() {
		s, err := a.Servo(j)
		if err != nil {
			t.Fatal(err)
		}
		if s.ID() != i {
			t.Errorf("joint %s at slot %d drives servo %d", j, i, s.ID())
		}
	}
}

func TestSetPositionsInOrder(t *testing.T) {
	fc := newFakeCtrl(6)
	a, err := NewReactorX200(fc)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.SetPositions([]float64{10, 20, 30}); err == nil {
		t.Fatal("length mismatch accepted")
	}

	pos := []float64{10, 20, 30, 40, 50, 5}
	if err := a.SetPositions(pos); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		want := pos[i] * math.Pi / 180
		if math.Abs(fc.targets[i]-want) > 1e-9 {
			t.Errorf("servo %d target %g, want %g", i, fc.targets[i], want)
		}
	}
}

func TestPositionsReadInOrder(t *testing.T) {
	fc := newFakeCtrl(6)
	a, err := NewReactorX200(fc)
	if err != nil {
		t.Fatal(err)
	}

	fc.cur[1] = math.Pi / 4
	got, err := a.Positions()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 6 {
		t.Fatalf("%d positions, want 6", len(got))
	}
	if math.Abs(got[1]-45) > 1e-9 {
		t.Fatalf("shoulder reads %g deg, want 45", got[1])
	}
}

func TestEnableAllAndDisableAll(t *testing.T) {
	fc := newFakeCtrl(6)
	a, err := NewReactorX200(fc)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.EnableAll(); err != nil {
		t.Fatal(err)
	}
	states, err := a.TorqueStates()
	if err != nil {
		t.Fatal(err)
	}
	for i, on := range states {
		if !on {
			t.Errorf("joint %d not enabled", i)
		}
	}

	// the bulk release is one controller call, not six
	a.DisableAll()
	if fc.disableAlls != 1 {
		t.Fatalf("DisableAll fanned out to %d calls", fc.disableAlls)
	}
	states, err = a.TorqueStates()
	if err != nil {
		t.Fatal(err)
	}
	for i, on := range states {
		if on {
			t.Errorf("joint %d still enabled", i)
		}
	}
}

func TestGripperOpenClose(t *testing.T) {
	fc := newFakeCtrl(6)
	a, err := NewReactorX200(fc)
	if err != nil {
		t.Fatal(err)
	}

	units := gripperUnits(8).Position
	if err := a.OpenGripper(); err != nil {
		t.Fatal(err)
	}
	if got, want := fc.targets[5], units.ToSys(20); math.Abs(got-want) > 1e-9 {
		t.Fatalf("open target %g, want %g", got, want)
	}

	if err := a.CloseGripper(); err != nil {
		t.Fatal(err)
	}
	if got, want := fc.targets[5], units.ToSys(-10); math.Abs(got-want) > 1e-9 {
		t.Fatalf("close target %g, want %g", got, want)
	}
}

func TestHomeAll(t *testing.T) {
	fc := newFakeCtrl(6)
	a, err := NewReactorX200(fc)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.HomeAll(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if math.Abs(fc.targets[i]) > 1e-9 {
			t.Errorf("servo %d homed to %g, want 0", i, fc.targets[i])
		}
	}
}

func TestCloseReleasesBeforeShutdown(t *testing.T) {
	fc := newFakeCtrl(6)
	a, err := NewReactorX200(fc)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if fc.disableAlls != 1 || fc.closes != 1 {
		t.Fatalf("disableAlls=%d closes=%d, want 1 and 1", fc.disableAlls, fc.closes)
	}

	last := fc.calls[len(fc.calls)-1]
	if last != "close" {
		t.Fatalf("last call %q, want close after release", last)
	}
	if prev := fc.calls[len(fc.calls)-2]; prev != "disable all" {
		t.Fatalf("call before close was %q, want disable all", prev)
	}
}
