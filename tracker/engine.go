package tracker

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vsariola/acidbox"
	"github.com/vsariola/acidbox/synth"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type (
	// Engine is the controller of the synthesizer. It owns the live pattern
	// and parameters, validates every edit coming from the user interface,
	// drives the sequencer clock and hands recordings over as .wav files.
	//
	// Changes to the sound are forwarded to the audio thread as messages
	// through the broker; the Engine never touches the signal chain itself.
	// None of its methods block on the audio thread.
	Engine struct {
		mu         sync.Mutex
		params     acidbox.Params
		pattern    acidbox.Pattern
		sampleRate int
		rand       *rand.Rand
		history    history

		transport sync.Mutex // serializes start, stop, tempo and mode changes
		broker    *Broker
		seq       *Sequencer
		clock     *Clock
		logger    *zap.Logger
	}

	// Option configures an Engine.
	Option func(*Engine)
)

// WithLogger sets the logger of the engine. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRand sets the random source used by the random playback mode and by
// Randomize.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rand = r
	}
}

// WithPattern sets the initial pattern. The pattern is validated by
// NewEngine.
func WithPattern(p acidbox.Pattern) Option {
	return func(e *Engine) {
		e.pattern = p
	}
}

// NewEngine creates an engine with the parameters and sample rate of cfg
// and an empty pattern.
func NewEngine(broker *Broker, cfg acidbox.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	e := &Engine{
		params:     cfg.Params,
		pattern:    acidbox.NewPattern(),
		sampleRate: cfg.Audio.SampleRate,
		broker:     broker,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.pattern.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	if e.rand == nil {
		e.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	// the sequencer gets its own generator, it is used from the clock
	// goroutine without holding e.mu
	e.seq = NewSequencer(e, BrokerVoice{broker}, rand.New(rand.NewPCG(e.rand.Uint64(), e.rand.Uint64())))
	e.seq.SetMode(e.params.Mode)
	e.seq.OnStep(e.notifyStep)
	e.clock = NewClock(e.tick)
	return e, nil
}

// Snapshot returns copies of the current pattern and parameters.
func (e *Engine) Snapshot() (acidbox.Pattern, acidbox.Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pattern, e.params
}

func (e *Engine) Params() acidbox.Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

func (e *Engine) Pattern() acidbox.Pattern {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pattern
}

func (e *Engine) SampleRate() int { return e.sampleRate }

// NewChain builds a signal chain initialized from the current state, for a
// Player or for a ResetMsg.
func (e *Engine) NewChain() *synth.Chain {
	pattern, params := e.Snapshot()
	return synth.NewChain(e.sampleRate, params, pattern)
}

// ResetSynth replaces the signal chain of the player with a fresh one.
func (e *Engine) ResetSynth() {
	TrySend(e.broker.ToPlayer, any(ResetMsg{Chain: e.NewChain()}))
	e.logger.Info("synth reset")
}

// update applies a validated parameter setter under the lock. On error the
// parameters are left as they were.
func update[T any](e *Engine, name string, set func(*acidbox.Params, T) (T, error), v T) (T, error) {
	e.mu.Lock()
	prev, err := set(&e.params, v)
	e.mu.Unlock()
	if err != nil {
		e.logger.Warn("rejected parameter", zap.String("param", name), zap.Any("value", v), zap.Error(err))
		return prev, err
	}
	e.logger.Debug("parameter changed", zap.String("param", name), zap.Any("from", prev), zap.Any("to", v))
	return prev, nil
}

func (e *Engine) SetWaveform(w acidbox.Waveform) (acidbox.Waveform, error) {
	prev, err := update(e, "waveform", (*acidbox.Params).SetWaveform, w)
	if err == nil {
		e.sendToPlayer(WaveformMsg{w})
	}
	return prev, err
}

// SetTuning and SetMasterTune take effect from the next note.
func (e *Engine) SetTuning(semitones int) (int, error) {
	return update(e, "tuning", (*acidbox.Params).SetTuning, semitones)
}

func (e *Engine) SetMasterTune(cents float64) (float64, error) {
	return update(e, "masterTune", (*acidbox.Params).SetMasterTune, cents)
}

func (e *Engine) SetCutoff(hz float64) (float64, error) {
	return e.updateFilter("cutoff", (*acidbox.Params).SetCutoff, hz)
}

func (e *Engine) SetResonance(q float64) (float64, error) {
	return e.updateFilter("resonance", (*acidbox.Params).SetResonance, q)
}

func (e *Engine) SetTrim(hz float64) (float64, error) {
	return e.updateFilter("trim", (*acidbox.Params).SetTrim, hz)
}

func (e *Engine) SetVintage(v float64) (float64, error) {
	return e.updateFilter("vintage", (*acidbox.Params).SetVintage, v)
}

// SetEnvMod, SetDecay and SetAccent are read by the sequencer when a step is
// played.
func (e *Engine) SetEnvMod(v float64) (float64, error) {
	return update(e, "envMod", (*acidbox.Params).SetEnvMod, v)
}

func (e *Engine) SetDecay(seconds float64) (float64, error) {
	return update(e, "decay", (*acidbox.Params).SetDecay, seconds)
}

func (e *Engine) SetAccent(level float64) (float64, error) {
	return update(e, "accent", (*acidbox.Params).SetAccent, level)
}

// SetDistortion regenerates the waveshaping curve on the calling goroutine
// and hands it to the audio thread.
func (e *Engine) SetDistortion(k float64) (float64, error) {
	prev, err := update(e, "distortion", (*acidbox.Params).SetDistortion, k)
	if err == nil {
		e.sendToPlayer(CurveMsg{Curve: synth.DistortionCurve(k)})
	}
	return prev, err
}

func (e *Engine) SetDelay(seconds float64) (float64, error) {
	prev, err := update(e, "delay", (*acidbox.Params).SetDelay, seconds)
	if err == nil {
		e.sendToPlayer(DelayMsg{Seconds: seconds})
	}
	return prev, err
}

func (e *Engine) SetFeedback(gain float64) (float64, error) {
	prev, err := update(e, "feedback", (*acidbox.Params).SetFeedback, gain)
	if err == nil {
		e.sendToPlayer(FeedbackMsg{Gain: gain})
	}
	return prev, err
}

// SetTempo changes the tempo. Out of range values are rejected and the
// previous tempo is kept. While playing, the clock is restarted at the new
// tick interval.
func (e *Engine) SetTempo(bpm int) (int, error) {
	e.transport.Lock()
	defer e.transport.Unlock()
	prev, err := update(e, "tempo", (*acidbox.Params).SetTempo, bpm)
	if err != nil || !e.seq.Playing() {
		return prev, err
	}
	if err := e.clock.Start(tickDuration(bpm)); err != nil {
		e.logger.Error("restarting sequencer clock", zap.Error(err))
	}
	return prev, nil
}

// SetPlaybackMode changes the playback mode and rewinds the cursor.
func (e *Engine) SetPlaybackMode(m acidbox.PlaybackMode) (acidbox.PlaybackMode, error) {
	e.transport.Lock()
	defer e.transport.Unlock()
	prev, err := update(e, "mode", (*acidbox.Params).SetMode, m)
	if err == nil {
		e.seq.SetMode(m)
	}
	return prev, err
}

func (e *Engine) updateFilter(name string, set func(*acidbox.Params, float64) (float64, error), v float64) (float64, error) {
	prev, err := update(e, name, set, v)
	if err != nil {
		return prev, err
	}
	p := e.Params()
	e.sendToPlayer(FilterMsg{Cutoff: p.Cutoff, Resonance: p.Resonance, Trim: p.Trim, Vintage: p.Vintage})
	return prev, nil
}

// SetPattern replaces the whole pattern. Every step is validated before any
// is accepted.
func (e *Engine) SetPattern(p acidbox.Pattern) error {
	if err := p.Validate(); err != nil {
		e.logger.Warn("rejected pattern", zap.Error(err))
		return err
	}
	e.mu.Lock()
	e.history.save(e.pattern, "")
	e.pattern = p
	e.mu.Unlock()
	e.logger.Debug("pattern replaced")
	return nil
}

// Randomize replaces the pattern with a random one and returns it.
func (e *Engine) Randomize() acidbox.Pattern {
	e.mu.Lock()
	e.history.save(e.pattern, "")
	e.pattern = acidbox.RandomPattern(e.rand)
	p := e.pattern
	e.mu.Unlock()
	e.logger.Debug("pattern randomized")
	return p
}

// editStep applies f to the pattern under the lock. f must leave the
// pattern untouched when it fails.
func (e *Engine) editStep(op string, index int, f func(p *acidbox.Pattern) error) error {
	e.mu.Lock()
	before := e.pattern
	err := f(&e.pattern)
	if err == nil {
		e.history.save(before, fmt.Sprintf("%v/%d", op, index))
	}
	e.mu.Unlock()
	if err != nil {
		e.logger.Warn("rejected step edit", zap.String("op", op), zap.Int("step", index), zap.Error(err))
		return err
	}
	e.logger.Debug("step edited", zap.String("op", op), zap.Int("step", index))
	return nil
}

func (e *Engine) SetStep(index int, s acidbox.Step) error {
	return e.editStep("set", index, func(p *acidbox.Pattern) error { return p.SetStep(index, s) })
}

// SetNote sets the note and octave of a step. The note name is case
// insensitive. An invalid note or octave leaves the step unchanged.
func (e *Engine) SetNote(index int, note string, octave int) error {
	return e.editStep("note", index, func(p *acidbox.Pattern) error {
		n, err := acidbox.ParseNote(note)
		if err != nil {
			return err
		}
		return p.SetPitch(index, acidbox.Pitch{Note: n, Octave: octave})
	})
}

func (e *Engine) ToggleActive(index int) error {
	return e.editStep("active", index, func(p *acidbox.Pattern) error { return p.ToggleActive(index) })
}

func (e *Engine) ToggleAccent(index int) error {
	return e.editStep("accent", index, func(p *acidbox.Pattern) error { return p.ToggleAccent(index) })
}

func (e *Engine) ToggleSlide(index int) error {
	return e.editStep("slide", index, func(p *acidbox.Pattern) error { return p.ToggleSlide(index) })
}

// Undo reverts the last pattern edit. It returns false if there was nothing
// to undo.
func (e *Engine) Undo() bool {
	e.mu.Lock()
	var ok bool
	e.pattern, ok = e.history.undo(e.pattern)
	e.mu.Unlock()
	if ok {
		e.logger.Debug("pattern edit undone")
	}
	return ok
}

func (e *Engine) Redo() bool {
	e.mu.Lock()
	var ok bool
	e.pattern, ok = e.history.redo(e.pattern)
	e.mu.Unlock()
	if ok {
		e.logger.Debug("pattern edit redone")
	}
	return ok
}

// Start starts the sequencer. Starting while playing is a no-op.
func (e *Engine) Start() {
	e.transport.Lock()
	defer e.transport.Unlock()
	if !e.seq.Start() {
		return
	}
	interval := tickDuration(e.Params().Tempo)
	if err := e.clock.Start(interval); err != nil {
		e.logger.Error("starting sequencer clock", zap.Error(err))
	}
	e.logger.Debug("sequencer started", zap.Duration("tick", interval))
	e.send(PlayingChanged{Playing: true})
}

// Stop stops the sequencer, fading out the sound. Stopping while stopped is
// a no-op.
func (e *Engine) Stop() {
	e.transport.Lock()
	defer e.transport.Unlock()
	if !e.seq.Stop() {
		return
	}
	e.stopClock()
	e.logger.Debug("sequencer stopped")
	e.send(PlayingChanged{Playing: false})
}

// Reset stops the sequencer if it is playing and rewinds to the first step.
func (e *Engine) Reset() {
	e.transport.Lock()
	defer e.transport.Unlock()
	if e.seq.Reset() {
		e.stopClock()
		e.send(PlayingChanged{Playing: false})
	}
	e.logger.Debug("sequencer reset")
}

func (e *Engine) Playing() bool { return e.seq.Playing() }

// PlaybackMode is the mode the sequencer is playing in.
func (e *Engine) PlaybackMode() acidbox.PlaybackMode { return e.seq.Mode() }

// Cursor returns the current playback position.
func (e *Engine) Cursor() Cursor { return e.seq.Cursor() }

// StartRecording arms the capture tap. Starting while recording is a no-op.
func (e *Engine) StartRecording() {
	if !e.broker.Capture.Start() {
		return
	}
	e.logger.Info("recording started")
	e.send(RecordingChanged{Recording: true})
}

// StopRecording disarms the capture tap and returns everything captured as
// a 16-bit stereo .wav file. If nothing was being recorded, it returns nil.
func (e *Engine) StopRecording() ([]byte, error) {
	c, ok := e.broker.Capture.Stop()
	if !ok {
		return nil, nil
	}
	e.logger.Info("recording stopped", zap.Int("frames", c.Frames()))
	e.send(RecordingChanged{Recording: false})
	wav, err := c.Wav(e.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("could not encode recording: %w", err)
	}
	return wav, nil
}

func (e *Engine) Recording() bool { return e.broker.Capture.Armed() }

// Close stops the sequencer and discards any recording in progress.
func (e *Engine) Close() (err error) {
	e.transport.Lock()
	defer e.transport.Unlock()
	e.seq.Stop()
	err = multierr.Append(err, e.clock.Stop())
	if c, ok := e.broker.Capture.Stop(); ok {
		e.logger.Warn("discarding unsaved recording", zap.Int("frames", c.Frames()))
	}
	if err != nil {
		e.logger.Error("closing engine", zap.Error(err))
	}
	return err
}

func (e *Engine) tick() {
	e.seq.Tick()
}

func (e *Engine) stopClock() {
	if err := e.clock.Stop(); err != nil {
		e.logger.Error("stopping sequencer clock", zap.Error(err))
	}
}

func (e *Engine) notifyStep(index int) {
	TrySend(e.broker.ToModel, MsgToModel{HasStep: true, Step: index})
}

func (e *Engine) send(data any) {
	TrySend(e.broker.ToModel, MsgToModel{Data: data})
}

func (e *Engine) sendToPlayer(msg any) {
	if !TrySend(e.broker.ToPlayer, msg) {
		e.logger.Warn("player queue full, dropping message", zap.String("msg", fmt.Sprintf("%T", msg)))
	}
}

func tickDuration(bpm int) time.Duration {
	return time.Duration(acidbox.TickInterval(bpm) * float64(time.Second))
}
