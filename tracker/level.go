package tracker

import (
	"errors"
	"math"

	"github.com/viterin/vek/vek32"
	"github.com/vsariola/acidbox"
)

type (
	Decibel float32

	// LevelMeter follows the peak level of the output, in decibels relative
	// to full scale (0 dB = signal level of +-1).
	LevelMeter struct {
		Level   Decibel // current smoothed level
		Attack  float64 // attack time constant in seconds
		Release float64 // release time constant in seconds
		Min     Decibel // floor, to avoid negative infinities
		Max     Decibel

		tmp []float32
	}
)

var errNaN = errors.New("NaN detected in output")

func NewLevelMeter() LevelMeter {
	return LevelMeter{Level: -60, Attack: 1.5e-3, Release: 1.5, Min: -60, Max: 12}
}

// Update measures the block peak of the left channel (the chain is mono, so
// both channels are equal) and smooths it into Level with an exponentially
// decaying average: Attack is the time constant when the peak is above the
// current level, Release when it is below.
//
// Smoothing is done once per block, so the time constants are scaled by the
// block length.
func (v *LevelMeter) Update(buffer acidbox.AudioBuffer, sampleRate int) error {
	if len(buffer) == 0 {
		return nil
	}
	if cap(v.tmp) < len(buffer) {
		v.tmp = make([]float32, len(buffer))
	}
	tmp := v.tmp[:len(buffer)]
	for i := range buffer {
		tmp[i] = buffer[i][0]
	}
	vek32.Abs_Inplace(tmp)
	if math.IsNaN(float64(vek32.Sum(tmp))) {
		return errNaN
	}
	peak := vek32.Max(tmp)
	dB := v.Min
	if peak > 0 {
		dB = Decibel(20 * math.Log10(float64(peak)))
	}
	dB = min(max(dB, v.Min), v.Max)
	blockTime := float64(len(buffer)) / float64(sampleRate)
	tc := v.Attack
	if dB < v.Level {
		tc = v.Release
	}
	// from https://en.wikipedia.org/wiki/Exponential_smoothing
	alpha := 1 - math.Exp(-blockTime/tc)
	v.Level += (dB - v.Level) * Decibel(alpha)
	return nil
}
