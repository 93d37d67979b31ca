package synth_test

import (
	"math"
	"testing"

	"github.com/vsariola/acidbox/synth"
)

const tolerance = 1e-6

func expectValue(t *testing.T, what string, got, expected float64) {
	t.Helper()
	if math.Abs(got-expected) > tolerance {
		t.Fatalf("%v: got %v, expected %v", what, got, expected)
	}
}

func TestLinearRamp(t *testing.T) {
	p := synth.NewParam(1)
	p.LinearRampToValueAtTime(3, 1)
	expectValue(t, "start", p.ValueAt(0), 1)
	expectValue(t, "middle", p.ValueAt(0.5), 2)
	expectValue(t, "end", p.ValueAt(1), 3)
	expectValue(t, "after", p.ValueAt(5), 3)
	expectValue(t, "advance", p.Advance(0.25), 1.5)
	expectValue(t, "value", p.Value(), 1.5)
}

func TestExponentialRamp(t *testing.T) {
	p := synth.NewParam(1)
	p.ExponentialRampToValueAtTime(0.01, 2)
	expectValue(t, "middle", p.ValueAt(1), 0.1)
	p = synth.NewParam(1)
	p.ExponentialRampToValueAtTime(0, 1)
	expectValue(t, "floor", p.ValueAt(1), synth.ExpFloor)
}

func TestSetValueAtTime(t *testing.T) {
	p := synth.NewParam(5)
	p.SetValueAtTime(7, 1)
	expectValue(t, "before", p.ValueAt(0.999), 5)
	expectValue(t, "at", p.ValueAt(1), 7)
	p.LinearRampToValueAtTime(9, 2)
	expectValue(t, "ramp from the set value", p.ValueAt(1.5), 8)
}

func TestAdvanceDropsPassedEvents(t *testing.T) {
	p := synth.NewParam(0)
	p.SetValueAtTime(1, 1)
	p.LinearRampToValueAtTime(2, 2)
	p.SetValueAtTime(4, 3)
	if p.Pending() != 3 {
		t.Fatalf("expected 3 pending events, got %v", p.Pending())
	}
	p.Advance(1.5)
	if p.Pending() != 2 {
		t.Fatalf("expected 2 pending events after t = 1.5, got %v", p.Pending())
	}
	expectValue(t, "ramp continues", p.ValueAt(1.75), 1.75)
	p.Advance(10)
	if p.Pending() != 0 {
		t.Fatalf("expected no pending events, got %v", p.Pending())
	}
	expectValue(t, "last", p.Value(), 4)
}

func TestCancelScheduledValues(t *testing.T) {
	p := synth.NewParam(0)
	p.SetValueAtTime(1, 1)
	p.LinearRampToValueAtTime(2, 2)
	p.CancelScheduledValues(1.5)
	if p.Pending() != 1 {
		t.Fatalf("expected 1 pending event, got %v", p.Pending())
	}
	expectValue(t, "after cancel", p.ValueAt(3), 1)
}
