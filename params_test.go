package acidbox_test

import (
	"math"
	"strings"
	"testing"

	"github.com/vsariola/acidbox"
)

func TestDefaultParamsAreValid(t *testing.T) {
	p := acidbox.DefaultParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("default params are invalid: %v", err)
	}
}

func TestSetTempo(t *testing.T) {
	p := acidbox.DefaultParams()
	prev, err := p.SetTempo(140)
	if err != nil {
		t.Fatalf("SetTempo(140) failed: %v", err)
	}
	if prev != 120 || p.Tempo != 140 {
		t.Fatalf("SetTempo(140): prev %v, tempo %v", prev, p.Tempo)
	}
	for _, bpm := range []int{59, 201, 0, -120} {
		if _, err := p.SetTempo(bpm); !acidbox.IsValidationError(err) {
			t.Fatalf("SetTempo(%v) should have returned a validation error, got %v", bpm, err)
		}
		if p.Tempo != 140 {
			t.Fatalf("rejected SetTempo(%v) changed the tempo to %v", bpm, p.Tempo)
		}
	}
}

func TestSettersRejectOutOfRange(t *testing.T) {
	p := acidbox.DefaultParams()
	before := p
	setters := map[string]func() error{
		"cutoff":     func() error { _, err := p.SetCutoff(10); return err },
		"resonance":  func() error { _, err := p.SetResonance(31); return err },
		"decay":      func() error { _, err := p.SetDecay(0); return err },
		"feedback":   func() error { _, err := p.SetFeedback(1.5); return err },
		"delay":      func() error { _, err := p.SetDelay(math.NaN()); return err },
		"tuning":     func() error { _, err := p.SetTuning(25); return err },
		"distortion": func() error { _, err := p.SetDistortion(-1); return err },
		"waveform":   func() error { _, err := p.SetWaveform("noise"); return err },
		"mode":       func() error { _, err := p.SetMode("shuffle"); return err },
	}
	for name, set := range setters {
		if err := set(); !acidbox.IsValidationError(err) {
			t.Fatalf("%v: expected a validation error, got %v", name, err)
		}
	}
	if p != before {
		t.Fatalf("rejected setters changed the params: %+v", p)
	}
}

func TestParsePlaybackMode(t *testing.T) {
	m, err := acidbox.ParsePlaybackMode(" FwRev ")
	if err != nil || m != acidbox.FwRev {
		t.Fatalf("ParsePlaybackMode: %v, %v", m, err)
	}
	if _, err := acidbox.ParsePlaybackMode("backwards"); err == nil {
		t.Fatalf("unknown mode should have been rejected")
	}
	w, err := acidbox.ParseWaveform("SQUARE")
	if err != nil || w != acidbox.Square {
		t.Fatalf("ParseWaveform: %v, %v", w, err)
	}
}

func TestTickInterval(t *testing.T) {
	if got := acidbox.TickInterval(120); math.Abs(got-0.125) > 1e-12 {
		t.Fatalf("tick at 120 BPM is %v s, expected 0.125 s", got)
	}
	p := acidbox.DefaultParams()
	p.Cutoff, p.Trim, p.Resonance, p.Vintage = 1000, -200, 2, 0.5
	if p.FilterCutoff() != 800 {
		t.Fatalf("FilterCutoff = %v, expected 800", p.FilterCutoff())
	}
	if p.FilterQ() != 4.5 {
		t.Fatalf("FilterQ = %v, expected 4.5", p.FilterQ())
	}
}

func TestReadConfig(t *testing.T) {
	yml := `
params:
  waveform: square
  tempo: 150
  mode: fwrev
audio:
  sampleRate: 48000
log:
  level: debug
`
	cfg, err := acidbox.ReadConfig(strings.NewReader(yml))
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if cfg.Params.Waveform != acidbox.Square || cfg.Params.Tempo != 150 || cfg.Params.Mode != acidbox.FwRev {
		t.Fatalf("params not decoded: %+v", cfg.Params)
	}
	if cfg.Audio.SampleRate != 48000 || cfg.Audio.BlockSize != acidbox.DefaultBlockSize {
		t.Fatalf("audio config not decoded: %+v", cfg.Audio)
	}
	if cfg.Params.Cutoff != acidbox.DefaultParams().Cutoff {
		t.Fatalf("missing fields should keep their defaults, cutoff = %v", cfg.Params.Cutoff)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
	if _, err := acidbox.ReadConfig(strings.NewReader(`{"params": {"tempo": 300}}`)); !acidbox.IsValidationError(err) {
		t.Fatalf("tempo 300 should have been rejected, got %v", err)
	}
}

func TestBlockSizeShorterThanTick(t *testing.T) {
	cfg := acidbox.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("the default config should be valid, got %v", err)
	}
	if n := acidbox.MaxBlockSize(44100); n != 3307 {
		t.Fatalf("MaxBlockSize(44100) = %d, expected 3307", n)
	}
	cfg.Audio.BlockSize = 4096
	if err := cfg.Validate(); !acidbox.IsValidationError(err) {
		t.Fatalf("a 4096 frame block at 44100 Hz is longer than a tick at 200 BPM, got %v", err)
	}
	cfg.Audio.SampleRate = 96000
	if err := cfg.Validate(); err != nil {
		t.Fatalf("a 4096 frame block at 96000 Hz is shorter than a tick, got %v", err)
	}
}
