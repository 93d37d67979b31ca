package synth_test

import (
	"math"
	"testing"

	"github.com/vsariola/acidbox"
	"github.com/vsariola/acidbox/synth"
)

func TestDelayFeedback(t *testing.T) {
	d := synth.NewDelay(sampleRate)
	out := make([]float64, 31)
	for i := range out {
		x := 0.0
		if i == 0 {
			x = 1
		}
		out[i] = d.Process(x, 10, 0.5)
	}
	for i, v := range out {
		expected := 0.0
		switch i {
		case 10:
			expected = 1
		case 20:
			expected = 0.5
		case 30:
			expected = 0.25
		}
		if math.Abs(v-expected) > tolerance {
			t.Fatalf("delay output %d is %v, expected %v", i, v, expected)
		}
	}
}

func TestDistortionCurve(t *testing.T) {
	curve := synth.DistortionCurve(0)
	if len(curve) != synth.CurveLength {
		t.Fatalf("curve has %d points, expected %d", len(curve), synth.CurveLength)
	}
	var s synth.Shaper
	s.SetCurve(curve)
	// with k = 0 the curve is x / 3
	for _, x := range []float64{-0.9, -0.5, 0, 0.3, 0.9} {
		if got := s.Process(x); math.Abs(got-x/3) > 1e-4 {
			t.Fatalf("shape(%v) = %v, expected %v", x, got, x/3)
		}
	}
	if got := s.Process(5); got != float64(curve[len(curve)-1]) {
		t.Fatalf("inputs above 1 should take the last point of the curve, got %v", got)
	}
	if got := s.Process(-5); got != float64(curve[0]) {
		t.Fatalf("inputs below -1 should take the first point of the curve, got %v", got)
	}
	hard := synth.DistortionCurve(400)
	if hard[len(hard)*3/4] <= curve[len(curve)*3/4] {
		t.Fatalf("a larger amount should drive the curve harder")
	}
}

func TestShaperPassesThroughWithoutCurve(t *testing.T) {
	var s synth.Shaper
	if got := s.Process(0.7); got != 0.7 {
		t.Fatalf("shaper without a curve changed 0.7 to %v", got)
	}
}

func TestOscillatorSine(t *testing.T) {
	o := synth.Oscillator{Waveform: acidbox.Sine}
	expected := []float64{0, 1, 0, -1, 0}
	for i, e := range expected {
		if got := o.Next(sampleRate/4, sampleRate); math.Abs(got-e) > tolerance {
			t.Fatalf("sample %d is %v, expected %v", i, got, e)
		}
	}
}

func TestOscillatorRange(t *testing.T) {
	for _, w := range acidbox.Waveforms {
		o := synth.Oscillator{Waveform: w}
		for i := 0; i < sampleRate/10; i++ {
			if v := o.Next(110, sampleRate); v < -1.01 || v > 1.01 {
				t.Fatalf("%v sample %d out of range: %v", w, i, v)
			}
		}
	}
}

func TestLowpassPassesDC(t *testing.T) {
	var f synth.Lowpass
	var y float64
	for i := 0; i < sampleRate/10; i++ {
		y = f.Process(1, 1000, 0, sampleRate)
	}
	if math.Abs(y-1) > 1e-3 {
		t.Fatalf("lowpass settled at %v for a constant input of 1", y)
	}
}
