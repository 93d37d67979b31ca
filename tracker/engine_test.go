package tracker_test

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/vsariola/acidbox"
	"github.com/vsariola/acidbox/tracker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newEngine(t *testing.T) (*tracker.Engine, *tracker.Broker, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	broker := tracker.NewBroker()
	e, err := tracker.NewEngine(broker, acidbox.DefaultConfig(),
		tracker.WithLogger(zap.New(core)),
		tracker.WithRand(rand.New(rand.NewPCG(1, 2))),
		tracker.WithPattern(allActive()))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	t.Cleanup(func() {
		if err := e.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return e, broker, logs
}

func drainPlayer(broker *tracker.Broker) []any {
	var ret []any
	for {
		select {
		case msg := <-broker.ToPlayer:
			ret = append(ret, msg)
		default:
			return ret
		}
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := acidbox.DefaultConfig()
	cfg.Params.Tempo = 20
	if _, err := tracker.NewEngine(tracker.NewBroker(), cfg); !acidbox.IsValidationError(err) {
		t.Fatalf("tempo 20 should have been rejected, got %v", err)
	}
	pattern := acidbox.NewPattern()
	pattern[0].Note = "H"
	if _, err := tracker.NewEngine(tracker.NewBroker(), acidbox.DefaultConfig(), tracker.WithPattern(pattern)); err == nil {
		t.Fatalf("a pattern with note H should have been rejected")
	}
}

func TestRejectedEditsKeepState(t *testing.T) {
	e, broker, logs := newEngine(t)
	pattern, params := e.Snapshot()
	if _, err := e.SetTempo(500); !acidbox.IsValidationError(err) {
		t.Fatalf("tempo 500 should have been rejected, got %v", err)
	}
	if _, err := e.SetCutoff(5); err == nil {
		t.Fatalf("cutoff 5 Hz should have been rejected")
	}
	if err := e.SetNote(3, "H", 2); !acidbox.IsValidationError(err) {
		t.Fatalf("note H should have been rejected, got %v", err)
	}
	if err := e.SetNote(3, "c", 7); !acidbox.IsValidationError(err) {
		t.Fatalf("octave 7 should have been rejected, got %v", err)
	}
	if err := e.ToggleSlide(16); err == nil {
		t.Fatalf("step 16 should have been rejected")
	}
	p2, params2 := e.Snapshot()
	if p2 != pattern || params2 != params {
		t.Fatalf("rejected edits changed the engine state")
	}
	if msgs := drainPlayer(broker); len(msgs) != 0 {
		t.Fatalf("rejected edits sent %v to the player", msgs)
	}
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 5 {
		t.Fatalf("expected 5 warnings, got %d", n)
	}
}

func TestEditsReachThePlayer(t *testing.T) {
	e, broker, _ := newEngine(t)
	if prev, err := e.SetWaveform(acidbox.Square); err != nil || prev != acidbox.Sawtooth {
		t.Fatalf("SetWaveform: %v, %v", prev, err)
	}
	if _, err := e.SetTrim(-100); err != nil {
		t.Fatalf("SetTrim failed: %v", err)
	}
	if _, err := e.SetDistortion(50); err != nil {
		t.Fatalf("SetDistortion failed: %v", err)
	}
	if _, err := e.SetDelay(0.5); err != nil {
		t.Fatalf("SetDelay failed: %v", err)
	}
	if _, err := e.SetFeedback(0.1); err != nil {
		t.Fatalf("SetFeedback failed: %v", err)
	}
	msgs := drainPlayer(broker)
	if len(msgs) != 5 {
		t.Fatalf("expected 5 player messages, got %v", msgs)
	}
	if m, ok := msgs[0].(tracker.WaveformMsg); !ok || m.Waveform != acidbox.Square {
		t.Fatalf("first message is %#v", msgs[0])
	}
	if m, ok := msgs[1].(tracker.FilterMsg); !ok || m.Cutoff != 1000 || m.Trim != -100 {
		t.Fatalf("second message is %#v", msgs[1])
	}
	if m, ok := msgs[2].(tracker.CurveMsg); !ok || len(m.Curve) == 0 {
		t.Fatalf("third message is %#v", msgs[2])
	}
	if m, ok := msgs[3].(tracker.DelayMsg); !ok || m.Seconds != 0.5 {
		t.Fatalf("fourth message is %#v", msgs[3])
	}
	if m, ok := msgs[4].(tracker.FeedbackMsg); !ok || m.Gain != 0.1 {
		t.Fatalf("fifth message is %#v", msgs[4])
	}
	if p := e.Params(); p.Waveform != acidbox.Square || p.Trim != -100 || p.Distortion != 50 {
		t.Fatalf("params not updated: %+v", p)
	}
}

func TestPatternEdits(t *testing.T) {
	e, _, _ := newEngine(t)
	if err := e.SetNote(2, "f#", 1); err != nil {
		t.Fatalf("SetNote failed: %v", err)
	}
	e.ToggleAccent(2)
	e.ToggleActive(2)
	s := e.Pattern()[2]
	if s.Note != "F#" || s.Octave != 1 || !s.Accent || s.Active {
		t.Fatalf("step 2 is %+v", s)
	}
	p := e.Randomize()
	if e.Pattern() != p {
		t.Fatalf("Randomize did not install the pattern it returned")
	}
	bad := acidbox.NewPattern()
	bad[15].Octave = -1
	if err := e.SetPattern(bad); err == nil {
		t.Fatalf("invalid pattern accepted")
	}
	if e.Pattern() != p {
		t.Fatalf("a rejected pattern replaced the current one")
	}
}

func TestStopRecordingWhenIdle(t *testing.T) {
	e, _, _ := newEngine(t)
	wav, err := e.StopRecording()
	if wav != nil || err != nil {
		t.Fatalf("StopRecording when idle should return nil, nil, got %d bytes, %v", len(wav), err)
	}
}

func TestRecording(t *testing.T) {
	e, broker, _ := newEngine(t)
	player := tracker.NewPlayer(broker, e.NewChain(), nil)
	e.StartRecording()
	if !e.Recording() {
		t.Fatalf("engine should be recording")
	}
	buf := make(acidbox.AudioBuffer, 1000)
	player.Process(buf)
	player.Process(buf)
	wav, err := e.StopRecording()
	if err != nil {
		t.Fatalf("StopRecording failed: %v", err)
	}
	if len(wav) != 44+2000*4 {
		t.Fatalf("recording is %d bytes, expected %d", len(wav), 44+2000*4)
	}
	var states []bool
	for {
		msg, ok := tracker.TimeoutReceive(broker.ToModel, 10*time.Millisecond)
		if !ok {
			break
		}
		if r, ok := msg.Data.(tracker.RecordingChanged); ok {
			states = append(states, r.Recording)
		}
	}
	if len(states) != 2 || !states[0] || states[1] {
		t.Fatalf("expected recording notifications true, false; got %v", states)
	}
}

func TestTransport(t *testing.T) {
	e, broker, _ := newEngine(t)
	if _, err := e.SetTempo(200); err != nil {
		t.Fatalf("SetTempo failed: %v", err)
	}
	e.Start()
	e.Start()
	if !e.Playing() {
		t.Fatalf("engine should be playing")
	}
	var steps []int
	playing := 0
	for len(steps) < 3 {
		msg, ok := tracker.TimeoutReceive(broker.ToModel, 2*time.Second)
		if !ok {
			t.Fatalf("timed out waiting for steps, got %v", steps)
		}
		if msg.HasStep {
			steps = append(steps, msg.Step)
		}
		if _, ok := msg.Data.(tracker.PlayingChanged); ok {
			playing++
		}
	}
	expectIndices(t, steps, []int{0, 1, 2})
	if playing != 1 {
		t.Fatalf("starting twice should notify once, got %d", playing)
	}
	e.Stop()
	if e.Playing() {
		t.Fatalf("engine should be stopped")
	}
	silenced := false
	for _, m := range drainPlayer(broker) {
		if _, ok := m.(tracker.SilenceMsg); ok {
			silenced = true
		}
	}
	if !silenced {
		t.Fatalf("stopping should silence the player")
	}
	if c := e.Cursor(); c != (tracker.Cursor{}) {
		t.Fatalf("stopping should rewind, cursor is %+v", c)
	}
}

func TestSetTempoWhilePlaying(t *testing.T) {
	e, broker, _ := newEngine(t)
	e.Start()
	if prev, err := e.SetTempo(200); err != nil || prev != 120 {
		t.Fatalf("SetTempo: %v, %v", prev, err)
	}
	for {
		msg, ok := tracker.TimeoutReceive(broker.ToModel, 2*time.Second)
		if !ok {
			t.Fatalf("no steps after a tempo change")
		}
		if msg.HasStep {
			break
		}
	}
	e.Reset()
	if e.Playing() {
		t.Fatalf("reset should stop playback")
	}
}

func TestConcurrentModeChanges(t *testing.T) {
	e, _, _ := newEngine(t)
	var wg sync.WaitGroup
	for _, m := range acidbox.PlaybackModes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				e.SetPlaybackMode(m)
			}
		}()
	}
	wg.Wait()
	if p, s := e.Params().Mode, e.PlaybackMode(); p != s {
		t.Fatalf("parameters say %v, the sequencer plays %v", p, s)
	}
}

func TestUndoRedo(t *testing.T) {
	e, _, _ := newEngine(t)
	if e.Undo() {
		t.Fatalf("nothing to undo in a new engine")
	}
	original := e.Pattern()
	e.SetNote(0, "D", 1)
	e.SetNote(0, "E", 1) // merged with the previous edit
	e.ToggleAccent(5)
	edited := e.Pattern()
	if !e.Undo() {
		t.Fatalf("Undo failed")
	}
	if e.Pattern()[5].Accent != original[5].Accent || e.Pattern()[0].Note != "E" {
		t.Fatalf("undo should revert only the accent toggle")
	}
	e.Undo()
	if e.Pattern() != original {
		t.Fatalf("two undos should restore the original pattern")
	}
	if e.Undo() {
		t.Fatalf("undo stack should be empty")
	}
	e.Redo()
	e.Redo()
	if e.Pattern() != edited {
		t.Fatalf("redo should restore the edited pattern")
	}
	e.SetNote(1, "x", 1) // rejected edits are not recorded
	e.Undo()
	e.Randomize()
	if e.Redo() {
		t.Fatalf("a new edit should clear the redo stack")
	}
}
