package tracker

import (
	"github.com/vsariola/acidbox"
	"github.com/vsariola/acidbox/synth"
)

// Messages to the player. Each one is applied on the audio thread at the
// start of the next block.
type (
	NoteMsg struct{ synth.NoteEvent }

	SilenceMsg struct{}

	WaveformMsg struct{ acidbox.Waveform }

	// FilterMsg carries all four controls of the static filter, since the
	// effective cutoff and Q are each a sum of two of them.
	FilterMsg struct {
		Cutoff, Resonance, Trim, Vintage float64
	}

	// CurveMsg replaces the distortion curve. The curve is computed by the
	// sender, off the audio thread.
	CurveMsg struct{ Curve []float32 }

	DelayMsg    struct{ Seconds float64 }
	FeedbackMsg struct{ Gain float64 }

	// ResetMsg replaces the whole signal chain, dropping delay tails and any
	// scheduled automation.
	ResetMsg struct{ Chain *synth.Chain }
)

// Notifications to the model, carried in MsgToModel.Data.
type (
	RecordingChanged struct{ Recording bool }
	PlayingChanged   struct{ Playing bool }

	Alert struct {
		Name     string
		Message  string
		Priority AlertPriority
	}

	AlertPriority int
)

const (
	None AlertPriority = iota
	Info
	Warning
	Error
)

func (p AlertPriority) String() string {
	switch p {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "none"
}
