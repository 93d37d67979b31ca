package tracker

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/vsariola/acidbox"
	"github.com/vsariola/acidbox/synth"
)

// staticSource serves a fixed pattern and parameter set to a sequencer.
type staticSource struct {
	pattern acidbox.Pattern
	params  acidbox.Params
}

func (s staticSource) Snapshot() (acidbox.Pattern, acidbox.Params) { return s.pattern, s.params }

// Render plays ticks steps of the pattern offline and returns the audio,
// followed by tail seconds of the delay and release ringing out. Unlike live
// playback, ticks are clocked by the sample count, so the result is
// deterministic for a given random source. rnd may be nil.
func Render(params acidbox.Params, pattern acidbox.Pattern, sampleRate, ticks int, tail float64, rnd *rand.Rand) (acidbox.AudioBuffer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if err := pattern.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	if ticks < 0 || tail < 0 {
		return nil, fmt.Errorf("ticks (%d) and tail (%g) must not be negative", ticks, tail)
	}
	chain := synth.NewChain(sampleRate, params, pattern)
	seq := NewSequencer(staticSource{pattern, params}, chain, rnd)
	seq.SetMode(params.Mode)
	seq.Start()
	interval := params.TickInterval() * float64(sampleRate)
	length := int(math.Round(float64(ticks)*interval + tail*float64(sampleRate)))
	buffer := make(acidbox.AudioBuffer, length)
	pos := 0
	for i := 0; i < ticks; i++ {
		seq.Tick()
		next := min(int(math.Round(float64(i+1)*interval)), length)
		chain.Render(buffer[pos:next])
		pos = next
	}
	chain.Render(buffer[pos:])
	return buffer, nil
}
