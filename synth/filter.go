package synth

import "math"

// Lowpass is a second order lowpass biquad. Q is given in decibels, the way
// the resonance peak of a lowpass biquad is usually specified in web audio
// graphs. Coefficients are recomputed only when the frequency or Q changes.
type Lowpass struct {
	freq, q    float64
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

// Process filters one sample with cutoff freq (Hz) and resonance q (dB).
func (f *Lowpass) Process(x, freq, q, sampleRate float64) float64 {
	if freq != f.freq || q != f.q {
		f.coefficients(freq, q, sampleRate)
	}
	y := f.b0*x + f.z1
	f.z1 = f.b1*x - f.a1*y + f.z2
	f.z2 = f.b2*x - f.a2*y
	return y
}

func (f *Lowpass) coefficients(freq, q, sampleRate float64) {
	f.freq, f.q = freq, q
	nyquist := sampleRate / 2
	if freq < 10 {
		freq = 10
	}
	if freq > nyquist*0.999 {
		freq = nyquist * 0.999
	}
	w0 := 2 * math.Pi * freq / sampleRate
	sin, cos := math.Sincos(w0)
	alpha := sin / (2 * math.Pow(10, q/20))
	a0 := 1 + alpha
	f.b0 = (1 - cos) / 2 / a0
	f.b1 = (1 - cos) / a0
	f.b2 = f.b0
	f.a1 = -2 * cos / a0
	f.a2 = (1 - alpha) / a0
}
