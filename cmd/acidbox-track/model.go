package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vsariola/acidbox"
	"github.com/vsariola/acidbox/tracker"
)

type Model struct {
	engine        *tracker.Engine
	broker        *tracker.Broker
	patternFile   string
	recordingFile string

	cursor    int
	playhead  int
	playing   bool
	recording bool
	level     tracker.Decibel
	status    string
	quitting  bool
}

// ModelMsg wraps a notification from the engine or the player.
type ModelMsg tracker.MsgToModel

type statusMsg string

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	stepStyle     = lipgloss.NewStyle().Width(4).Align(lipgloss.Center).Foreground(lipgloss.Color("250"))
	inactiveStyle = stepStyle.Foreground(lipgloss.Color("240"))
	playheadStyle = stepStyle.Background(lipgloss.Color("205")).Foreground(lipgloss.Color("0"))
	cursorStyle   = lipgloss.NewStyle().Width(4).Align(lipgloss.Center).Foreground(lipgloss.Color("212")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Width(11).Foreground(lipgloss.Color("245"))
	recordStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	meterStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	clipStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const meterWidth = 36

func NewModel(engine *tracker.Engine, broker *tracker.Broker, patternFile, recordingFile string) Model {
	return Model{
		engine:        engine,
		broker:        broker,
		patternFile:   patternFile,
		recordingFile: recordingFile,
		level:         -60,
	}
}

func ListenForUpdates(broker *tracker.Broker) tea.Cmd {
	return func() tea.Msg {
		return ModelMsg(<-broker.ToModel)
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.broker)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case ModelMsg:
		if msg.HasStep {
			m.playhead = msg.Step
		}
		if msg.HasLevel {
			m.level = msg.Level
		}
		switch d := msg.Data.(type) {
		case tracker.PlayingChanged:
			m.playing = d.Playing
		case tracker.RecordingChanged:
			m.recording = d.Recording
		case tracker.Alert:
			m.status = fmt.Sprintf("%v: %v", d.Priority, d.Message)
		}
		return m, ListenForUpdates(m.broker)
	case statusMsg:
		m.status = string(msg)
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	e := m.engine
	params := e.Params()
	step := e.Pattern()[m.cursor]
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		e.Stop()
		return m, tea.Quit
	case " ":
		if e.Playing() {
			e.Stop()
		} else {
			e.Start()
		}
	case "backspace":
		e.Reset()
	case "left", "h":
		m.cursor = (m.cursor + acidbox.PatternLength - 1) % acidbox.PatternLength
	case "right", "l":
		m.cursor = (m.cursor + 1) % acidbox.PatternLength
	case "enter":
		return m, m.report(e.ToggleActive(m.cursor))
	case "a":
		return m, m.report(e.ToggleAccent(m.cursor))
	case "s":
		return m, m.report(e.ToggleSlide(m.cursor))
	case "up", "k":
		note, octave := transpose(step, 1)
		return m, m.report(e.SetNote(m.cursor, note, octave))
	case "down", "j":
		note, octave := transpose(step, -1)
		return m, m.report(e.SetNote(m.cursor, note, octave))
	case "]":
		return m, m.report(e.SetNote(m.cursor, string(step.Note), step.Octave+1))
	case "[":
		return m, m.report(e.SetNote(m.cursor, string(step.Note), step.Octave-1))
	case "R":
		e.Randomize()
	case "u":
		e.Undo()
	case "U":
		e.Redo()
	case "+", "=":
		return m, m.report2(e.SetTempo(params.Tempo + 5))
	case "-", "_":
		return m, m.report2(e.SetTempo(params.Tempo - 5))
	case "m":
		return m, m.report2(e.SetPlaybackMode(next(acidbox.PlaybackModes, params.Mode)))
	case "w":
		return m, m.report2(e.SetWaveform(next(acidbox.Waveforms, params.Waveform)))
	case "c":
		return m, m.report2(e.SetCutoff(params.Cutoff * 1.1))
	case "C":
		return m, m.report2(e.SetCutoff(params.Cutoff / 1.1))
	case "e":
		return m, m.report2(e.SetEnvMod(params.EnvMod + 0.05))
	case "E":
		return m, m.report2(e.SetEnvMod(params.EnvMod - 0.05))
	case "d":
		return m, m.report2(e.SetDecay(params.Decay + 0.05))
	case "D":
		return m, m.report2(e.SetDecay(params.Decay - 0.05))
	case "x":
		return m, m.report2(e.SetDistortion(params.Distortion + 20))
	case "X":
		return m, m.report2(e.SetDistortion(params.Distortion - 20))
	case "r":
		if !e.Recording() {
			e.StartRecording()
			return m, nil
		}
		return m, m.saveRecording()
	case "z":
		e.ResetSynth()
		m.status = "synth reset"
	case "ctrl+s":
		return m, m.savePattern()
	}
	return m, nil
}

// report turns a rejected edit into a status line message.
func (m Model) report(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return func() tea.Msg { return statusMsg(err.Error()) }
}

func (m Model) report2(_ any, err error) tea.Cmd { return m.report(err) }

func (m Model) saveRecording() tea.Cmd {
	e, file := m.engine, m.recordingFile
	return func() tea.Msg {
		wav, err := e.StopRecording()
		if err != nil {
			return statusMsg(fmt.Sprintf("recording failed: %v", err))
		}
		if err := os.WriteFile(file, wav, 0644); err != nil {
			return statusMsg(fmt.Sprintf("could not write %v: %v", file, err))
		}
		return statusMsg(fmt.Sprintf("wrote %v (%d bytes)", file, len(wav)))
	}
}

func (m Model) savePattern() tea.Cmd {
	if m.patternFile == "" {
		return func() tea.Msg { return statusMsg("no pattern file given on the command line") }
	}
	pattern, file := m.engine.Pattern(), m.patternFile
	return func() tea.Msg {
		f, err := os.Create(file)
		if err != nil {
			return statusMsg(err.Error())
		}
		defer f.Close()
		if strings.HasSuffix(file, ".yml") || strings.HasSuffix(file, ".yaml") {
			err = pattern.WriteYAML(f)
		} else {
			err = pattern.WriteJSON(f)
		}
		if err != nil {
			return statusMsg(err.Error())
		}
		return statusMsg("saved " + file)
	}
}

// transpose moves the step by semitones, carrying into the octave.
func transpose(s acidbox.Step, semitones int) (string, int) {
	i := s.Note.Index() + semitones
	octave := s.Octave
	for i < 0 {
		i += 12
		octave--
	}
	for i >= 12 {
		i -= 12
		octave++
	}
	return string(acidbox.PitchClasses[i]), octave
}

func next[T comparable](values []T, v T) T {
	for i, w := range values {
		if w == v {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	pattern, params := m.engine.Snapshot()
	var b strings.Builder
	b.WriteString(titleStyle.Render("acidbox"))
	if m.recording {
		b.WriteString("  " + recordStyle.Render("● REC"))
	}
	b.WriteString("\n\n")

	var notes, flags, marks strings.Builder
	for i, s := range pattern {
		style := stepStyle
		if !s.Active {
			style = inactiveStyle
		}
		if m.playing && i == m.playhead {
			style = playheadStyle
		}
		name := "--"
		if s.Active {
			name = s.Pitch().String()
		}
		notes.WriteString(style.Render(name))
		f := ""
		if s.Accent {
			f += "A"
		}
		if s.Slide {
			f += "S"
		}
		flags.WriteString(stepStyle.Render(f))
		if i == m.cursor {
			marks.WriteString(cursorStyle.Render("^"))
		} else {
			marks.WriteString(cursorStyle.Render(""))
		}
	}
	b.WriteString(notes.String() + "\n" + flags.String() + "\n" + marks.String() + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	transport := "stopped"
	if m.playing {
		transport = "playing"
	}
	row("transport", fmt.Sprintf("%v, %d BPM, %v", transport, params.Tempo, params.Mode))
	row("waveform", string(params.Waveform))
	row("filter", fmt.Sprintf("%.0f Hz, Q %.1f, env %.2f, decay %.2f s", params.FilterCutoff(), params.FilterQ(), params.EnvMod, params.Decay))
	row("drive", fmt.Sprintf("%.0f", params.Distortion))
	row("delay", fmt.Sprintf("%.2f s, feedback %.2f", params.Delay, params.Feedback))
	row("level", m.meter())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(helpStyle.Render("space play/stop · ←→ cursor · ↑↓[] note · enter/a/s active/accent/slide · R random · u/U undo/redo\n+- tempo · m mode · w wave · cC eE dD xX cutoff/env/decay/drive · r record · z reset synth · ctrl+s save · q quit"))
	return b.String()
}

func (m Model) meter() string {
	n := int(float32(meterWidth) * (float32(m.level) + 60) / 72)
	n = max(0, min(meterWidth, n))
	style := meterStyle
	if m.level > 0 {
		style = clipStyle
	}
	return style.Render(strings.Repeat("█", n)) + strings.Repeat("·", meterWidth-n) + fmt.Sprintf(" %5.1f dB", float32(m.level))
}
