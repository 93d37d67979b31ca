package acidbox

import (
	"fmt"
	"math"
	"strings"
)

type (
	// Waveform selects the oscillator timbre.
	Waveform string

	// PlaybackMode is the policy governing the order in which the sequencer
	// visits the steps.
	PlaybackMode string

	// Params is the flat set of synthesizer and transport controls. Params is
	// a plain value; the engine owns the live copy and the setters below
	// validate before mutating, returning the previous value.
	Params struct {
		Waveform   Waveform     `json:"waveform" yaml:"waveform"`
		Tuning     int          `json:"tuning" yaml:"tuning"`         // semitones
		MasterTune float64      `json:"masterTune" yaml:"masterTune"` // cents
		Cutoff     float64      `json:"cutoff" yaml:"cutoff"`         // Hz
		Resonance  float64      `json:"resonance" yaml:"resonance"`   // Q
		EnvMod     float64      `json:"envMod" yaml:"envMod"`
		Decay      float64      `json:"decay" yaml:"decay"`   // seconds
		Accent     float64      `json:"accent" yaml:"accent"` // gain 0..1
		Trim       float64      `json:"trim" yaml:"trim"`     // Hz added to the cutoff
		Vintage    float64      `json:"vintage" yaml:"vintage"`
		Distortion float64      `json:"distortion" yaml:"distortion"`
		Delay      float64      `json:"delay" yaml:"delay"` // seconds
		Feedback   float64      `json:"feedback" yaml:"feedback"`
		Tempo      int          `json:"tempo" yaml:"tempo"` // BPM
		Mode       PlaybackMode `json:"mode" yaml:"mode"`
	}

	// ParamRange documents the inclusive range of one numeric parameter.
	ParamRange struct {
		Name string
		Min  float64
		Max  float64
	}
)

const (
	Sine     Waveform = "sine"
	Square   Waveform = "square"
	Sawtooth Waveform = "sawtooth"
	Triangle Waveform = "triangle"
)

const (
	Forward PlaybackMode = "forward"
	Reverse PlaybackMode = "reverse"
	FwRev   PlaybackMode = "fwrev"
	Invert  PlaybackMode = "invert"
	Random  PlaybackMode = "random"
)

var Waveforms = []Waveform{Sine, Square, Sawtooth, Triangle}

var PlaybackModes = []PlaybackMode{Forward, Reverse, FwRev, Invert, Random}

// ParamRanges lists the accepted range of every numeric parameter.
var ParamRanges = map[string]ParamRange{
	"tuning":     {Name: "tuning", Min: -24, Max: 24},
	"masterTune": {Name: "masterTune", Min: -1200, Max: 1200},
	"cutoff":     {Name: "cutoff", Min: 20, Max: 20000},
	"resonance":  {Name: "resonance", Min: 0, Max: 30},
	"envMod":     {Name: "envMod", Min: 0, Max: 1},
	"decay":      {Name: "decay", Min: 0.01, Max: 5},
	"accent":     {Name: "accent", Min: 0, Max: 1},
	"trim":       {Name: "trim", Min: -1000, Max: 1000},
	"vintage":    {Name: "vintage", Min: 0, Max: 1},
	"distortion": {Name: "distortion", Min: 0, Max: 400},
	"delay":      {Name: "delay", Min: 0, Max: 1},
	"feedback":   {Name: "feedback", Min: 0, Max: 1},
	"tempo":      {Name: "tempo", Min: 60, Max: 200},
}

func (w Waveform) Valid() bool {
	for _, v := range Waveforms {
		if v == w {
			return true
		}
	}
	return false
}

func ParseWaveform(s string) (Waveform, error) {
	w := Waveform(strings.ToLower(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", &ValidationError{Field: "waveform", Value: s, Reason: "must be sine, square, sawtooth or triangle"}
	}
	return w, nil
}

func (m PlaybackMode) Valid() bool {
	for _, v := range PlaybackModes {
		if v == m {
			return true
		}
	}
	return false
}

func ParsePlaybackMode(s string) (PlaybackMode, error) {
	m := PlaybackMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", &ValidationError{Field: "playback mode", Value: s, Reason: "must be forward, reverse, fwrev, invert or random"}
	}
	return m, nil
}

// DefaultParams returns the parameter set the synthesizer starts with.
func DefaultParams() Params {
	return Params{
		Waveform:   Sawtooth,
		Cutoff:     1000,
		Resonance:  1,
		EnvMod:     0.5,
		Decay:      0.5,
		Accent:     0.8,
		Delay:      0.3,
		Feedback:   0.3,
		Tempo:      120,
		Mode:       Forward,
		Tuning:     0,
		MasterTune: 0,
	}
}

// Check returns a ValidationError if v is outside the range of parameter
// name.
func (r ParamRange) Check(v float64) error {
	if math.IsNaN(v) || v < r.Min || v > r.Max {
		return &ValidationError{Field: r.Name, Value: v, Reason: fmt.Sprintf("must be within %g..%g", r.Min, r.Max)}
	}
	return nil
}

func set[T int | float64](dst *T, name string, v T) (prev T, err error) {
	if err := ParamRanges[name].Check(float64(v)); err != nil {
		return *dst, err
	}
	prev, *dst = *dst, v
	return prev, nil
}

func (p *Params) SetWaveform(w Waveform) (Waveform, error) {
	if !w.Valid() {
		return p.Waveform, &ValidationError{Field: "waveform", Value: w, Reason: "unknown waveform"}
	}
	prev := p.Waveform
	p.Waveform = w
	return prev, nil
}

func (p *Params) SetMode(m PlaybackMode) (PlaybackMode, error) {
	if !m.Valid() {
		return p.Mode, &ValidationError{Field: "playback mode", Value: m, Reason: "unknown playback mode"}
	}
	prev := p.Mode
	p.Mode = m
	return prev, nil
}

func (p *Params) SetTuning(semitones int) (int, error) { return set(&p.Tuning, "tuning", semitones) }
func (p *Params) SetMasterTune(cents float64) (float64, error) {
	return set(&p.MasterTune, "masterTune", cents)
}
func (p *Params) SetCutoff(hz float64) (float64, error) { return set(&p.Cutoff, "cutoff", hz) }
func (p *Params) SetResonance(q float64) (float64, error) { return set(&p.Resonance, "resonance", q) }
func (p *Params) SetEnvMod(v float64) (float64, error) { return set(&p.EnvMod, "envMod", v) }
func (p *Params) SetDecay(sec float64) (float64, error) { return set(&p.Decay, "decay", sec) }
func (p *Params) SetAccent(v float64) (float64, error) { return set(&p.Accent, "accent", v) }
func (p *Params) SetTrim(hz float64) (float64, error) { return set(&p.Trim, "trim", hz) }
func (p *Params) SetVintage(v float64) (float64, error) { return set(&p.Vintage, "vintage", v) }
func (p *Params) SetDistortion(k float64) (float64, error) {
	return set(&p.Distortion, "distortion", k)
}
func (p *Params) SetDelay(sec float64) (float64, error) { return set(&p.Delay, "delay", sec) }
func (p *Params) SetFeedback(v float64) (float64, error) { return set(&p.Feedback, "feedback", v) }
func (p *Params) SetTempo(bpm int) (int, error) { return set(&p.Tempo, "tempo", bpm) }

// Validate checks every field of the parameter set.
func (p *Params) Validate() error {
	if !p.Waveform.Valid() {
		return &ValidationError{Field: "waveform", Value: p.Waveform, Reason: "unknown waveform"}
	}
	if !p.Mode.Valid() {
		return &ValidationError{Field: "playback mode", Value: p.Mode, Reason: "unknown playback mode"}
	}
	checks := []struct {
		name string
		v    float64
	}{
		{"tuning", float64(p.Tuning)},
		{"masterTune", p.MasterTune},
		{"cutoff", p.Cutoff},
		{"resonance", p.Resonance},
		{"envMod", p.EnvMod},
		{"decay", p.Decay},
		{"accent", p.Accent},
		{"trim", p.Trim},
		{"vintage", p.Vintage},
		{"distortion", p.Distortion},
		{"delay", p.Delay},
		{"feedback", p.Feedback},
		{"tempo", float64(p.Tempo)},
	}
	for _, c := range checks {
		if err := ParamRanges[c.name].Check(c.v); err != nil {
			return err
		}
	}
	return nil
}

// FilterCutoff is the effective static cutoff of the filter: cutoff + trim.
func (p *Params) FilterCutoff() float64 { return p.Cutoff + p.Trim }

// FilterQ is the effective Q of the filter: resonance biased by the vintage
// condition.
func (p *Params) FilterQ() float64 { return p.Resonance + p.Vintage*5 }

// TickInterval is the length of one sixteenth note at the configured tempo,
// in seconds.
func (p *Params) TickInterval() float64 {
	return TickInterval(p.Tempo)
}

func TickInterval(bpm int) float64 {
	return 60 / float64(bpm) / 4
}
