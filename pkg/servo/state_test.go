package servo

import (
	"testing"
	"time"
)

func TestPeriodFor(t *testing.T) {
	c, err := NewController(Config{Backend: newFakeBackend(6)})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		vel  float64
		want time.Duration
	}{
		{"zero clamps to coarsest", 0, 20 * time.Millisecond},
		{"below anchor clamps to coarsest", DefaultVelMin / 2, 20 * time.Millisecond},
		{"at slow anchor", DefaultVelMin, 20 * time.Millisecond},
		{"at fast anchor", DefaultVelMax, 2 * time.Millisecond},
		{"above anchor clamps to finest", 100, 2 * time.Millisecond},
		{"midpoint", (DefaultVelMin + DefaultVelMax) / 2, 11 * time.Millisecond},
		{"interpolated and rounded", 2, 15 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.periodFor(tt.vel); got != tt.want {
				t.Errorf("periodFor(%g) = %s, want %s", tt.vel, got, tt.want)
			}
		})
	}
}

func TestPeriodStaysInRange(t *testing.T) {
	c, err := NewController(Config{Backend: newFakeBackend(6)})
	if err != nil {
		t.Fatal(err)
	}

	for v := 0.0; v < 8; v += 0.05 {
		p := c.periodFor(v)
		if p < DefaultPeriodMin || p > DefaultPeriodMax {
			t.Fatalf("periodFor(%g) = %s outside [%s, %s]", v, p, DefaultPeriodMin, DefaultPeriodMax)
		}
		if p != p.Round(time.Millisecond) {
			t.Fatalf("periodFor(%g) = %s is not a whole millisecond", v, p)
		}
	}
}

func TestSetVelocityRetunesPeriod(t *testing.T) {
	c, err := NewController(Config{Backend: newFakeBackend(6)})
	if err != nil {
		t.Fatal(err)
	}

	if err := c.SetVelocity(0, DefaultVelMax); err != nil {
		t.Fatal(err)
	}
	if got := c.TickPeriod(); got != 2*time.Millisecond {
		t.Fatalf("period after fast servo = %s, want 2ms", got)
	}

	// the most recent accepted call wins, even when it is slower
	if err := c.SetVelocity(1, DefaultVelMin); err != nil {
		t.Fatal(err)
	}
	if got := c.TickPeriod(); got != 20*time.Millisecond {
		t.Fatalf("period after slow servo = %s, want 20ms", got)
	}

	// rejected calls leave the period alone
	if err := c.SetVelocity(2, -1); err == nil {
		t.Fatal("negative velocity accepted")
	}
	if err := c.SetTorque(3, true); err != nil {
		t.Fatal(err)
	}
	if err := c.SetVelocity(3, DefaultVelMax); err == nil {
		t.Fatal("velocity change accepted while torque enabled")
	}
	if got := c.TickPeriod(); got != 20*time.Millisecond {
		t.Fatalf("period changed by rejected calls: %s", got)
	}
}
