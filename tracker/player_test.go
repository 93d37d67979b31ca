package tracker_test

import (
	"math"
	"testing"

	"github.com/vsariola/acidbox"
	"github.com/vsariola/acidbox/synth"
	"github.com/vsariola/acidbox/tracker"
)

func newPlayer(t *testing.T) (*tracker.Player, *tracker.Broker) {
	t.Helper()
	params := acidbox.DefaultParams()
	params.Delay = 0
	broker := tracker.NewBroker()
	chain := synth.NewChain(44100, params, acidbox.NewPattern())
	return tracker.NewPlayer(broker, chain, nil), broker
}

func peak(buf acidbox.AudioBuffer) float64 {
	ret := 0.0
	for _, f := range buf {
		ret = math.Max(ret, math.Abs(float64(f[0])))
	}
	return ret
}

func drainLevels(broker *tracker.Broker) (levels int, data []any) {
	for {
		select {
		case msg := <-broker.ToModel:
			if msg.HasLevel {
				levels++
			}
			if msg.Data != nil {
				data = append(data, msg.Data)
			}
		default:
			return
		}
	}
}

func TestPlayerAppliesNotes(t *testing.T) {
	p, broker := newPlayer(t)
	buf := make(acidbox.AudioBuffer, 2048)
	p.Process(buf)
	if peak(buf) != 0 {
		t.Fatalf("player produced sound before any note")
	}
	tracker.TrySend(broker.ToPlayer, any(tracker.NoteMsg{NoteEvent: synth.NoteEvent{
		Pitch:       acidbox.Pitch{Note: "A", Octave: 2},
		Decay:       0.5,
		AccentLevel: 0.8,
		Cutoff:      1000,
	}}))
	p.Process(buf)
	if peak(buf) == 0 {
		t.Fatalf("player stayed silent after a note")
	}
	if levels, _ := drainLevels(broker); levels != 2 {
		t.Fatalf("expected a level notification per block, got %d", levels)
	}
}

func TestPlayerKeepsNotesInTheSameBlock(t *testing.T) {
	params := acidbox.DefaultParams()
	params.Delay = 0
	broker := tracker.NewBroker()
	chain := synth.NewChain(44100, params, acidbox.NewPattern())
	p := tracker.NewPlayer(broker, chain, nil)
	for _, pitch := range []acidbox.Pitch{{Note: "A", Octave: 3}, {Note: "C", Octave: 2}} {
		tracker.TrySend(broker.ToPlayer, any(tracker.NoteMsg{NoteEvent: synth.NoteEvent{
			Pitch:       pitch,
			Decay:       0.5,
			AccentLevel: 0.8,
			Cutoff:      1000,
		}}))
	}
	buf := make(acidbox.AudioBuffer, acidbox.DefaultBlockSize)
	p.Process(buf)
	if f := chain.Pitch.Value(); math.Abs(f-220) > 1e-2 {
		t.Fatalf("the first note should sound in the first block, pitch is %v Hz", f)
	}
	p.Process(buf)
	if f := chain.Pitch.Value(); math.Abs(f-65.4064) > 1e-2 {
		t.Fatalf("the second note should sound in the next block, pitch is %v Hz", f)
	}
}

func TestPlayerFeedsCapture(t *testing.T) {
	p, broker := newPlayer(t)
	broker.Capture.Start()
	buf := make(acidbox.AudioBuffer, 512)
	p.Process(buf)
	p.Process(buf)
	c, _ := broker.Capture.Stop()
	if c.Frames() != 1024 {
		t.Fatalf("captured %d frames, expected 1024", c.Frames())
	}
}

func TestPlayerMutesOnNaN(t *testing.T) {
	p, broker := newPlayer(t)
	tracker.TrySend(broker.ToPlayer, any(tracker.FilterMsg{Cutoff: math.NaN(), Resonance: 1}))
	buf := make(acidbox.AudioBuffer, 256)
	p.Process(buf)
	_, data := drainLevels(broker)
	crashed := false
	for _, d := range data {
		if a, ok := d.(tracker.Alert); ok && a.Priority == tracker.Error {
			crashed = true
		}
	}
	if !crashed {
		t.Fatalf("NaN output should raise an error alert, got %v", data)
	}
	p.Process(buf)
	for i, f := range buf {
		if f != [2]float32{} {
			t.Fatalf("a crashed player should output silence, frame %d is %v", i, f)
		}
	}
	drainLevels(broker)
	chain := synth.NewChain(44100, acidbox.DefaultParams(), acidbox.NewPattern())
	tracker.TrySend(broker.ToPlayer, any(tracker.ResetMsg{Chain: chain}))
	p.Process(buf)
	if levels, data := drainLevels(broker); levels != 1 || len(data) != 0 {
		t.Fatalf("after a reset the player should render again, got %d levels and %v", levels, data)
	}
}

func TestPlayerKeepsNaNOutOfCapture(t *testing.T) {
	p, broker := newPlayer(t)
	broker.Capture.Start()
	tracker.TrySend(broker.ToPlayer, any(tracker.FilterMsg{Cutoff: math.NaN(), Resonance: 1}))
	p.Process(make(acidbox.AudioBuffer, 256))
	c, _ := broker.Capture.Stop()
	if c.Frames() != 256 {
		t.Fatalf("captured %d frames, expected 256", c.Frames())
	}
	for i := range c.Left {
		if c.Left[i] != 0 || c.Right[i] != 0 {
			t.Fatalf("frame %d of a crashed block was captured as %v, %v", i, c.Left[i], c.Right[i])
		}
	}
}

func TestAudioSource(t *testing.T) {
	p, _ := newPlayer(t)
	if err := p.AudioSource()(make(acidbox.AudioBuffer, 64)); err != nil {
		t.Fatalf("the player source should never end, got %v", err)
	}
}
