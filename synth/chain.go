package synth

import (
	"github.com/viterin/vek/vek32"
	"github.com/vsariola/acidbox"
)

type (
	// Chain is the monophonic signal graph:
	//
	//	oscillator -> lowpass -> envelope gain -> master gain -> shaper -> delay
	//	                                                          ^        |
	//	                                                          +- fb <--+
	//
	// The delay output is the output of the chain; it is written to both
	// channels of the rendered buffer. All parameter changes are scheduled on
	// the chain's own sample clock, so a Chain must only be used from one
	// goroutine.
	Chain struct {
		sampleRate float64
		frame      int64

		osc    Oscillator
		filter Lowpass
		shaper Shaper
		delay  *Delay

		Pitch      *Param // oscillator frequency, Hz
		Cutoff     *Param // filter frequency, Hz
		Q          *Param // filter resonance, dB
		Envelope   *Param // envelope gain
		DelayTime  *Param // seconds
		Feedback   *Param
		MasterGain float32

		sig, env []float32
	}

	// NoteEvent is everything needed to play one step.
	NoteEvent struct {
		Pitch   acidbox.Pitch
		Prev    acidbox.Pitch // pitch of the preceding step, the origin of a slide
		HasPrev bool
		Accent  bool
		Slide   bool

		Tuning      int     // semitones
		MasterTune  float64 // cents
		Decay       float64 // seconds
		EnvMod      float64
		AccentLevel float64
		Cutoff      float64 // Hz, the cutoff the filter envelope returns to, without trim
	}
)

const (
	// NoteGain is the envelope peak of a step without accent.
	NoteGain     = 0.7
	AttackTime   = 0.01
	ReleaseTime  = 0.05
	SlideTime    = 0.1
	GlideTime    = 0.01
	SilenceTime  = 0.05
	EnvModRange  = 1000 // Hz of cutoff sweep at full envelope modulation
	DefaultPitch = 440
)

// NewChain builds the graph with the initial values taken from params. The
// oscillator starts at the frequency of the first active step of pattern, or
// at A4 if no step is active.
func NewChain(sampleRate int, params acidbox.Params, pattern acidbox.Pattern) *Chain {
	freq := float64(DefaultPitch)
	if s, ok := pattern.FirstActive(); ok {
		freq = acidbox.Frequency(s.Note, s.Octave, params.Tuning, params.MasterTune)
	}
	c := &Chain{
		sampleRate: float64(sampleRate),
		delay:      NewDelay(sampleRate),
		Pitch:      NewParam(freq),
		Cutoff:     NewParam(params.FilterCutoff()),
		Q:          NewParam(params.FilterQ()),
		Envelope:   NewParam(0),
		DelayTime:  NewParam(params.Delay),
		Feedback:   NewParam(params.Feedback),
		MasterGain: 0.5,
	}
	c.osc.Waveform = params.Waveform
	c.shaper.SetCurve(DistortionCurve(params.Distortion))
	return c
}

func (c *Chain) SampleRate() int { return int(c.sampleRate) }

// Now is the time of the next frame to be rendered, in seconds.
func (c *Chain) Now() float64 { return float64(c.frame) / c.sampleRate }

// Frame is the index of the next frame to be rendered.
func (c *Chain) Frame() int64 { return c.frame }

// SetWaveform switches the oscillator timbre immediately.
func (c *Chain) SetWaveform(w acidbox.Waveform) { c.osc.Waveform = w }

func (c *Chain) Waveform() acidbox.Waveform { return c.osc.Waveform }

// SetFilter sets the static filter: the effective cutoff is cutoff + trim
// and the effective Q is resonance + vintage*5.
func (c *Chain) SetFilter(cutoff, resonance, trim, vintage float64) {
	now := c.Now()
	c.Cutoff.SetValueAtTime(cutoff+trim, now)
	c.Q.SetValueAtTime(resonance+vintage*5, now)
}

// SetCurve replaces the distortion curve, normally one built with
// DistortionCurve off the audio thread.
func (c *Chain) SetCurve(curve []float32) { c.shaper.SetCurve(curve) }

// SetDistortionAmount regenerates the distortion curve for amount k.
func (c *Chain) SetDistortionAmount(k float64) { c.shaper.SetCurve(DistortionCurve(k)) }

func (c *Chain) Curve() []float32 { return c.shaper.Curve() }

func (c *Chain) SetDelay(seconds float64) { c.DelayTime.SetValueAtTime(seconds, c.Now()) }

func (c *Chain) SetFeedback(gain float64) { c.Feedback.SetValueAtTime(gain, c.Now()) }

// TriggerNote schedules pitch, amplitude envelope and filter envelope for
// one step, starting at the current frame. The filter envelope sweeps from
// e.Cutoff + e.EnvMod*EnvModRange back to e.Cutoff; trim only shifts the
// static cutoff set by SetFilter.
func (c *Chain) TriggerNote(e NoteEvent) {
	now := c.Now()
	freq := e.Pitch.Frequency(e.Tuning, e.MasterTune)
	if e.Slide && e.HasPrev {
		c.Pitch.CancelScheduledValues(now)
		c.Pitch.SetValueAtTime(e.Prev.Frequency(e.Tuning, e.MasterTune), now)
		c.Pitch.LinearRampToValueAtTime(freq, now+SlideTime)
	} else {
		c.Pitch.SetValueAtTime(freq, now)
		c.Pitch.ExponentialRampToValueAtTime(freq, now+GlideTime)
	}

	gain := NoteGain
	if e.Accent {
		gain = e.AccentLevel
	}
	c.Envelope.CancelScheduledValues(now)
	c.Envelope.SetValueAtTime(c.Envelope.Value(), now)
	c.Envelope.LinearRampToValueAtTime(gain, now+AttackTime)
	c.Envelope.ExponentialRampToValueAtTime(ExpFloor, now+e.Decay+ReleaseTime)

	c.Cutoff.CancelScheduledValues(now)
	c.Cutoff.SetValueAtTime(e.Cutoff+e.EnvMod*EnvModRange, now)
	c.Cutoff.ExponentialRampToValueAtTime(e.Cutoff, now+e.Decay)
}

// Silence cancels the pending envelope and fades the gain out linearly, to
// stop without a click.
func (c *Chain) Silence() {
	now := c.Now()
	c.Envelope.CancelScheduledValues(now)
	c.Envelope.SetValueAtTime(c.Envelope.Value(), now)
	c.Envelope.LinearRampToValueAtTime(0, now+SilenceTime)
}

// Render fills buf and advances the sample clock by len(buf) frames.
func (c *Chain) Render(buf acidbox.AudioBuffer) {
	n := len(buf)
	if cap(c.sig) < n {
		c.sig = make([]float32, n)
		c.env = make([]float32, n)
	}
	sig, env := c.sig[:n], c.env[:n]
	for i := range sig {
		t := float64(c.frame+int64(i)) / c.sampleRate
		x := c.osc.Next(c.Pitch.Advance(t), c.sampleRate)
		x = c.filter.Process(x, c.Cutoff.Advance(t), c.Q.Advance(t), c.sampleRate)
		sig[i] = float32(x)
		env[i] = float32(c.Envelope.Advance(t))
	}
	vek32.Mul_Inplace(sig, env)
	vek32.MulNumber_Inplace(sig, c.MasterGain)
	for i := range sig {
		t := float64(c.frame+int64(i)) / c.sampleRate
		x := c.shaper.Process(float64(sig[i]))
		y := float32(c.delay.Process(x, c.DelayTime.Advance(t)*c.sampleRate, c.Feedback.Advance(t)))
		buf[i] = [2]float32{y, y}
	}
	c.frame += int64(n)
}
