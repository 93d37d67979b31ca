package synth

import "math"

// CurveLength is the number of points in a distortion curve.
const CurveLength = 44100

// DistortionCurve returns the waveshaping curve for amount k:
//
//	shape(x) = (3+k) * x * 20 * (π/180) / (π + k*|x|)
//
// sampled at x = 2i/CurveLength - 1, i.e. uniformly over [-1, 1).
func DistortionCurve(k float64) []float32 {
	curve := make([]float32, CurveLength)
	const deg = math.Pi / 180
	for i := range curve {
		x := float64(i*2)/CurveLength - 1
		curve[i] = float32((3 + k) * x * 20 * deg / (math.Pi + k*math.Abs(x)))
	}
	return curve
}

// Shaper maps samples through a curve with linear interpolation. Point i of
// the curve is the output for x = 2i/len(curve) - 1, the sampling used by
// DistortionCurve. Inputs beyond the curve take its end values. A nil curve
// passes the signal through.
type Shaper struct {
	curve []float32
}

// SetCurve replaces the curve. The slice must not be modified afterwards.
func (s *Shaper) SetCurve(curve []float32) {
	s.curve = curve
}

func (s *Shaper) Curve() []float32 { return s.curve }

func (s *Shaper) Process(x float64) float64 {
	c := s.curve
	n := len(c)
	if n == 0 || math.IsNaN(x) {
		return x
	}
	v := float64(n) / 2 * (x + 1)
	if v <= 0 {
		return float64(c[0])
	}
	if v >= float64(n-1) {
		return float64(c[n-1])
	}
	k := int(v)
	f := v - float64(k)
	return (1-f)*float64(c[k]) + f*float64(c[k+1])
}
