package synth

import (
	"math"

	"github.com/vsariola/acidbox"
)

// Oscillator is a phase accumulating oscillator. Square and sawtooth use
// polyBLEP correction to keep aliasing down at high pitches.
type Oscillator struct {
	Waveform acidbox.Waveform
	phase    float64 // 0..1
}

// Next returns the next sample for frequency freq (Hz) at sampleRate.
func (o *Oscillator) Next(freq, sampleRate float64) float64 {
	dt := freq / sampleRate
	if dt < 0 {
		dt = 0
	}
	if dt > 0.5 {
		dt = 0.5
	}
	p := o.phase
	var out float64
	switch o.Waveform {
	case acidbox.Sine:
		out = math.Sin(2 * math.Pi * p)
	case acidbox.Square:
		out = 1
		if p >= 0.5 {
			out = -1
		}
		out += polyBLEP(p, dt)
		out -= polyBLEP(math.Mod(p+0.5, 1), dt)
	case acidbox.Triangle:
		out = 1 - 4*math.Abs(p-0.5)
	default: // sawtooth
		out = 2*p - 1
		out -= polyBLEP(p, dt)
	}
	o.phase += dt
	if o.phase >= 1 {
		o.phase -= 1
	}
	return out
}

// polyBLEP is the two-sample polynomial correction around a discontinuity of
// height 2 at phase 0.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}
