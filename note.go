package acidbox

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type (
	// PitchClass is one of the twelve chromatic note names, using sharps:
	// "C", "C#", "D" ... "B".
	PitchClass string

	// Pitch is a note name together with an octave. Octave 0 starts at C0 =
	// 16.3516 Hz.
	Pitch struct {
		Note   PitchClass
		Octave int
	}
)

const (
	MinOctave = 0
	MaxOctave = 5
)

// PitchClasses lists the valid note names in chromatic order.
var PitchClasses = []PitchClass{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// octave 0 of the 12-tone equal tempered scale, A0 = 27.5 Hz
var baseFrequencies = [12]float64{
	16.3516, 17.3239, 18.3540, 19.4454, 20.6017, 21.8268,
	23.1247, 24.4997, 25.9565, 27.5000, 29.1352, 30.8677,
}

var upper = cases.Upper(language.Und)

// Index returns the chromatic index of the pitch class (C = 0, B = 11), or -1
// if the name is not a valid pitch class.
func (p PitchClass) Index() int {
	return slices.Index(PitchClasses, p)
}

func (p PitchClass) Valid() bool { return p.Index() >= 0 }

// ParseNote converts user input such as "c#" or " A " into a PitchClass.
func ParseNote(s string) (PitchClass, error) {
	n := PitchClass(upper.String(strings.TrimSpace(s)))
	if !n.Valid() {
		return "", &ValidationError{Field: "note", Value: s, Reason: "not one of C, C#, D, D#, E, F, F#, G, G#, A, A#, B"}
	}
	return n, nil
}

// ParsePitch parses strings of the form "C3" or "f#0".
func ParsePitch(s string) (Pitch, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Pitch{}, &ValidationError{Field: "pitch", Value: s, Reason: "expected note name followed by octave"}
	}
	note, err := ParseNote(s[:len(s)-1])
	if err != nil {
		return Pitch{}, err
	}
	octave := int(s[len(s)-1] - '0')
	p := Pitch{Note: note, Octave: octave}
	if err := p.Validate(); err != nil {
		return Pitch{}, err
	}
	return p, nil
}

func (p Pitch) Validate() error {
	if !p.Note.Valid() {
		return &ValidationError{Field: "note", Value: string(p.Note), Reason: "not a valid pitch class"}
	}
	if p.Octave < MinOctave || p.Octave > MaxOctave {
		return &ValidationError{Field: "octave", Value: p.Octave, Reason: fmt.Sprintf("must be within %d..%d", MinOctave, MaxOctave)}
	}
	return nil
}

func (p Pitch) String() string {
	return fmt.Sprintf("%s%d", p.Note, p.Octave)
}

// Frequency returns the frequency of note in octave in Hz, transposed by
// tuning semitones and masterTune cents. The note and octave must be valid;
// callers validate at the boundary.
func Frequency(note PitchClass, octave int, tuning int, masterTune float64) float64 {
	base := baseFrequencies[note.Index()] * math.Exp2(float64(octave))
	return base * math.Exp2(float64(tuning)/12) * math.Exp2(masterTune/1200)
}

// Frequency is a shorthand for Frequency(p.Note, p.Octave, tuning, masterTune).
func (p Pitch) Frequency(tuning int, masterTune float64) float64 {
	return Frequency(p.Note, p.Octave, tuning, masterTune)
}
