package tracker

import (
	"math/rand/v2"
	"sync"

	"github.com/vsariola/acidbox"
	"github.com/vsariola/acidbox/synth"
)

type (
	// Sequencer walks the pattern one step per Tick, according to the
	// playback mode, and triggers the active steps on a Voice. It has two
	// states, stopped and playing; ticks while stopped do nothing. The
	// sequencer does not keep time itself: a Clock calls Tick live, the
	// offline renderer calls it every tick interval worth of samples.
	Sequencer struct {
		mu      sync.Mutex
		playing bool
		cursor  Cursor
		mode    acidbox.PlaybackMode
		rand    *rand.Rand

		source StepSource
		voice  Voice
		notify func(index int)
	}

	// Cursor is the playback position. Step is a hidden counter that
	// advances once per tick; the played index is derived from it and the
	// playback mode.
	Cursor struct {
		Step      int
		Direction Direction
	}

	Direction int

	// StepSource gives the sequencer the pattern and parameters at the time
	// of each tick, so edits take effect on the next step played.
	StepSource interface {
		Snapshot() (acidbox.Pattern, acidbox.Params)
	}

	// Voice plays the notes. *synth.Chain implements it directly; live, the
	// notes are sent to the audio thread instead (see BrokerVoice).
	Voice interface {
		TriggerNote(e synth.NoteEvent)
		Silence()
	}

	// BrokerVoice forwards notes to the player through the broker.
	BrokerVoice struct{ Broker *Broker }
)

const (
	Forward Direction = iota
	Backward
)

func NewSequencer(source StepSource, voice Voice, rnd *rand.Rand) *Sequencer {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sequencer{source: source, voice: voice, rand: rnd, mode: acidbox.Forward}
}

// OnStep sets the callback invoked with the played index after every tick.
// It is called with the sequencer locked and must not call back into it.
func (s *Sequencer) OnStep(f func(index int)) {
	s.mu.Lock()
	s.notify = f
	s.mu.Unlock()
}

// Start begins playback from the first step. It returns false if the
// sequencer was already playing.
func (s *Sequencer) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return false
	}
	s.playing = true
	s.cursor = Cursor{}
	return true
}

// Stop ends playback, fades the voice out and rewinds the cursor. It
// returns false if the sequencer was already stopped.
func (s *Sequencer) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return false
	}
	s.playing = false
	s.cursor = Cursor{}
	s.voice.Silence()
	return true
}

// Reset stops playback if needed and rewinds the cursor in any case. It
// returns true if playback was stopped.
func (s *Sequencer) Reset() bool {
	stopped := s.Stop()
	s.mu.Lock()
	s.cursor = Cursor{}
	s.mu.Unlock()
	return stopped
}

func (s *Sequencer) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Sequencer) Cursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Sequencer) Mode() acidbox.PlaybackMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode changes the playback mode and rewinds the cursor.
func (s *Sequencer) SetMode(m acidbox.PlaybackMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	s.cursor = Cursor{}
}

// Tick plays one step. It returns the played index, or ok=false if the
// sequencer is stopped.
func (s *Sequencer) Tick() (index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return 0, false
	}
	index = s.index()
	pattern, params := s.source.Snapshot()
	if step := pattern[index]; step.Active {
		e := synth.NoteEvent{
			Pitch:       step.Pitch(),
			Accent:      step.Accent,
			Slide:       step.Slide,
			Tuning:      params.Tuning,
			MasterTune:  params.MasterTune,
			Decay:       params.Decay,
			EnvMod:      params.EnvMod,
			AccentLevel: params.Accent,
			Cutoff:      params.Cutoff,
		}
		if index > 0 {
			e.Prev, e.HasPrev = pattern[index-1].Pitch(), true
		}
		s.voice.TriggerNote(e)
	}
	if s.notify != nil {
		s.notify(index)
	}
	s.advance()
	return index, true
}

func (s *Sequencer) index() int {
	switch s.mode {
	case acidbox.Reverse, acidbox.Invert:
		return acidbox.PatternLength - 1 - s.cursor.Step
	case acidbox.Random:
		return s.rand.IntN(acidbox.PatternLength)
	default: // forward and fwrev, where the counter already sweeps back
		return s.cursor.Step
	}
}

func (s *Sequencer) advance() {
	c := &s.cursor
	if s.mode != acidbox.FwRev {
		c.Step = (c.Step + 1) % acidbox.PatternLength
		return
	}
	// the direction flips at the bounds and the same advance steps away
	// from them, so neither end is played twice in a row
	switch {
	case c.Direction == Forward && c.Step >= acidbox.PatternLength-1:
		c.Direction = Backward
		c.Step = acidbox.PatternLength - 2
	case c.Direction == Forward:
		c.Step++
	case c.Step <= 0:
		c.Direction = Forward
		c.Step = 1
	default:
		c.Step--
	}
}

func (v BrokerVoice) TriggerNote(e synth.NoteEvent) {
	TrySend(v.Broker.ToPlayer, any(NoteMsg{e}))
}

func (v BrokerVoice) Silence() {
	TrySend(v.Broker.ToPlayer, any(SilenceMsg{}))
}
