package tracker

import (
	"github.com/vsariola/acidbox"
	"github.com/vsariola/acidbox/synth"
	"go.uber.org/zap"
)

// Player is the audio callback of the engine, run in the audio thread. It
// owns the signal chain: every change to the chain arrives as a message on
// broker.ToPlayer and is applied at the start of the next block, so note
// triggers are quantized to block boundaries. At most one note is started
// per block; a second note waits for the following block so that it does not
// overwrite the first. After rendering, the block is measured for the level
// meter and handed to the capture tap.
type Player struct {
	chain   *synth.Chain
	broker  *Broker
	meter   LevelMeter
	crash   bool
	pending any // message held back to the next block
	logger  *zap.Logger
}

func NewPlayer(broker *Broker, chain *synth.Chain, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{chain: chain, broker: broker, meter: NewLevelMeter(), logger: logger}
}

// Process renders audio to the given buffer, filling it completely.
func (p *Player) Process(buffer acidbox.AudioBuffer) {
	p.processMessages()
	if p.crash {
		buffer.Clear()
	} else {
		p.chain.Render(buffer)
	}
	if err := p.meter.Update(buffer, p.chain.SampleRate()); err != nil {
		// a NaN never leaves the feedback loop by itself, so mute until the
		// chain is reset
		buffer.Clear()
		p.broker.Capture.Write(buffer)
		p.crash = true
		p.logger.Error("muting output", zap.Error(err))
		p.send(Alert{Name: "PlayerCrash", Message: err.Error(), Priority: Error})
		return
	}
	p.broker.Capture.Write(buffer)
	TrySend(p.broker.ToModel, MsgToModel{HasLevel: true, Level: p.meter.Level})
}

// AudioSource adapts the player to an acidbox.AudioContext.
func (p *Player) AudioSource() acidbox.AudioSource {
	return func(buf acidbox.AudioBuffer) error {
		p.Process(buf)
		return nil
	}
}

func (p *Player) processMessages() {
	notes := 0
	if p.pending != nil {
		msg := p.pending
		p.pending = nil
		notes += p.apply(msg)
	}
	for { // process new message
		select {
		case msg := <-p.broker.ToPlayer:
			if _, ok := msg.(NoteMsg); ok && notes > 0 {
				// keep the order of the messages after the note as well
				p.pending = msg
				return
			}
			notes += p.apply(msg)
		default:
			return
		}
	}
}

// apply applies one message to the chain and returns the number of notes it
// started.
func (p *Player) apply(msg any) int {
	switch m := msg.(type) {
	case NoteMsg:
		p.chain.TriggerNote(m.NoteEvent)
		return 1
	case SilenceMsg:
		p.chain.Silence()
	case WaveformMsg:
		p.chain.SetWaveform(m.Waveform)
	case FilterMsg:
		p.chain.SetFilter(m.Cutoff, m.Resonance, m.Trim, m.Vintage)
	case CurveMsg:
		p.chain.SetCurve(m.Curve)
	case DelayMsg:
		p.chain.SetDelay(m.Seconds)
	case FeedbackMsg:
		p.chain.SetFeedback(m.Gain)
	case ResetMsg:
		p.chain = m.Chain
		p.crash = false
		p.logger.Debug("signal chain reset")
	default:
		// ignore unknown messages
	}
	return 0
}

// all sends from player are non-blocking, to ensure that the audio thread
// cannot end up in a dead-lock
func (p *Player) send(data any) {
	TrySend(p.broker.ToModel, MsgToModel{Data: data})
}
