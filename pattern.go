package acidbox

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"

	"gopkg.in/yaml.v3"
)

// PatternLength is the fixed number of steps in a Pattern.
const PatternLength = 16

type (
	// Step is one slot of the pattern. Steps are value objects; the Pattern
	// owns them and a Step is only ever replaced as a whole after validation.
	Step struct {
		Active bool       `json:"active" yaml:"active"`
		Note   PitchClass `json:"note" yaml:"note"`
		Octave int        `json:"octave" yaml:"octave"`
		Accent bool       `json:"accent" yaml:"accent"`
		Slide  bool       `json:"slide" yaml:"slide"`
	}

	// Pattern is the fixed length sequence of steps. The index order is the
	// playback order for the forward playback mode. A Pattern is never
	// resized.
	Pattern [PatternLength]Step
)

// DefaultStep is the inactive C3 step every pattern starts with.
var DefaultStep = Step{Note: "C", Octave: 3}

func (s Step) Pitch() Pitch { return Pitch{Note: s.Note, Octave: s.Octave} }

func (s Step) Validate() error {
	return s.Pitch().Validate()
}

// NewPattern returns a pattern with all steps inactive C3 without accent or
// slide.
func NewPattern() Pattern {
	var p Pattern
	for i := range p {
		p[i] = DefaultStep
	}
	return p
}

// Validate checks every step, returning the first error with the step index.
func (p *Pattern) Validate() error {
	for i, s := range p {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func checkIndex(index int) error {
	if index < 0 || index >= PatternLength {
		return &ValidationError{Field: "step index", Value: index, Reason: fmt.Sprintf("must be within 0..%d", PatternLength-1)}
	}
	return nil
}

// SetStep replaces the step at index. An invalid step leaves the pattern
// untouched.
func (p *Pattern) SetStep(index int, s Step) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	p[index] = s
	return nil
}

// SetPitch changes the note and octave of the step at index, keeping its
// flags.
func (p *Pattern) SetPitch(index int, pitch Pitch) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	if err := pitch.Validate(); err != nil {
		return err
	}
	p[index].Note, p[index].Octave = pitch.Note, pitch.Octave
	return nil
}

func (p *Pattern) ToggleActive(index int) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	p[index].Active = !p[index].Active
	return nil
}

func (p *Pattern) ToggleAccent(index int) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	p[index].Accent = !p[index].Accent
	return nil
}

func (p *Pattern) ToggleSlide(index int) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	p[index].Slide = !p[index].Slide
	return nil
}

// RandomPattern generates a pattern where each step is active with
// probability 0.5, has a random note and octave, and accent and slide are
// each set with probability 0.3.
func RandomPattern(r *rand.Rand) Pattern {
	var p Pattern
	for i := range p {
		p[i] = Step{
			Active: r.Float64() > 0.5,
			Note:   PitchClasses[r.IntN(len(PitchClasses))],
			Octave: r.IntN(MaxOctave + 1),
			Accent: r.Float64() > 0.7,
			Slide:  r.Float64() > 0.7,
		}
	}
	return p
}

// FirstActive returns the first active step of the pattern.
func (p *Pattern) FirstActive() (Step, bool) {
	for _, s := range p {
		if s.Active {
			return s, true
		}
	}
	return Step{}, false
}

// ReadPattern decodes a pattern given as a JSON or YAML array of exactly
// PatternLength step records. The pattern is validated before it is returned.
func ReadPattern(r io.Reader) (Pattern, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Pattern{}, fmt.Errorf("could not read pattern: %w", err)
	}
	var steps []Step
	if errJSON := json.Unmarshal(b, &steps); errJSON != nil {
		steps = nil
		if errYaml := yaml.Unmarshal(b, &steps); errYaml != nil {
			return Pattern{}, fmt.Errorf("the pattern could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	if len(steps) != PatternLength {
		return Pattern{}, &ValidationError{Field: "pattern length", Value: len(steps), Reason: fmt.Sprintf("must be exactly %d steps", PatternLength)}
	}
	var p Pattern
	copy(p[:], steps)
	if err := p.Validate(); err != nil {
		return Pattern{}, err
	}
	return p, nil
}

// WriteJSON writes the pattern as an array of step records indented by two
// spaces, the format of exported pattern.json files.
func (p *Pattern) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p[:]); err != nil {
		return fmt.Errorf("could not encode pattern as json: %w", err)
	}
	return nil
}

func (p *Pattern) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p[:]); err != nil {
		return fmt.Errorf("could not encode pattern as yaml: %w", err)
	}
	return enc.Close()
}
