package arm

import (
	"math"
	"testing"
)

func TestRotaryPositionScale(t *testing.T) {
	pos := rotaryUnits(8).Position

	tests := []struct {
		name string
		deg  float64
		rad  float64
	}{
		{"zero", 0, 0},
		{"quarter turn", 90, math.Pi / 2},
		{"reverse quarter", -90, -math.Pi / 2},
		{"low stop", -180, -math.Pi},
		{"high stop", maxAppDeg, maxAppDeg * math.Pi / 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pos.ToSys(tt.deg); math.Abs(got-tt.rad) > 1e-9 {
				t.Errorf("ToSys(%g) = %g, want %g", tt.deg, got, tt.rad)
			}
			if got := pos.ToApp(tt.rad); math.Abs(got-tt.deg) > 1e-9 {
				t.Errorf("ToApp(%g) = %g, want %g", tt.rad, got, tt.deg)
			}
		})
	}
}

func TestScaleClampsOutsideRange(t *testing.T) {
	pos := rotaryUnits(8).Position

	if got := pos.ToSys(500); math.Abs(got-maxAppDeg*math.Pi/180) > 1e-9 {
		t.Errorf("ToSys(500) = %g, want clamp at %g", got, maxAppDeg*math.Pi/180)
	}
	if got := pos.ToSys(-500); math.Abs(got+math.Pi) > 1e-9 {
		t.Errorf("ToSys(-500) = %g, want clamp at %g", got, -math.Pi)
	}
	if got := pos.ToApp(10); math.Abs(got-maxAppDeg) > 1e-9 {
		t.Errorf("ToApp(10) = %g, want clamp at %g", got, maxAppDeg)
	}
}

func TestGripperPositionScale(t *testing.T) {
	pos := gripperUnits(8).Position

	tests := []struct {
		deg    float64
		meters float64
	}{
		{-30, 0.015},
		{60, 0.035},
		{0, 0.015 + 30.0/90.0*0.02},
	}

	for _, tt := range tests {
		if got := pos.ToSys(tt.deg); math.Abs(got-tt.meters) > 1e-9 {
			t.Errorf("ToSys(%g) = %g, want %g", tt.deg, got, tt.meters)
		}
		if got := pos.ToApp(tt.meters); math.Abs(got-tt.deg) > 1e-9 {
			t.Errorf("ToApp(%g) = %g, want %g", tt.meters, got, tt.deg)
		}
	}
}

func TestVelocityScale(t *testing.T) {
	vel := rotaryUnits(8).Velocity

	// rpm to rad/s is a pure pi/30 factor
	if got := vel.ToSys(10); math.Abs(got-10*math.Pi/30) > 1e-9 {
		t.Errorf("ToSys(10 rpm) = %g, want %g", got, 10*math.Pi/30)
	}
	if got := vel.ToApp(math.Pi); math.Abs(got-30) > 1e-9 {
		t.Errorf("ToApp(pi rad/s) = %g rpm, want 30", got)
	}
}

func TestTorqueScale(t *testing.T) {
	tor := rotaryUnits(8).Torque

	tests := []struct {
		sys float64
		app float64
	}{
		{0, 0},
		{4, 50},
		{-8, -100},
		{8, 100},
	}
	for _, tt := range tests {
		if got := tor.ToApp(tt.sys); math.Abs(got-tt.app) > 1e-9 {
			t.Errorf("ToApp(%g) = %g, want %g", tt.sys, got, tt.app)
		}
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{-10, 20}
	for _, x := range []float64{-10, 0, 20} {
		if !r.Contains(x) {
			t.Errorf("Contains(%g) = false", x)
		}
	}
	for _, x := range []float64{-10.01, 20.01} {
		if r.Contains(x) {
			t.Errorf("Contains(%g) = true", x)
		}
	}
}

func TestDegenerateRangeConverts(t *testing.T) {
	s := Scale{App: Range{5, 5}, Sys: Range{0, 1}}
	if got := s.ToSys(7); got != 0 {
		t.Errorf("degenerate ToSys = %g, want 0", got)
	}
}
