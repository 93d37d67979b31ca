package synth

import "math"

// ExpFloor is the smallest magnitude an exponential ramp can target. True
// zero is never reached by an exponential curve, so ramps "to zero" end here.
const ExpFloor = 0.001

type (
	// Param is a scheduled, automatable parameter value. Changes are
	// requested at absolute times (seconds on the chain's sample clock) and
	// the value is evaluated once per sample with Advance. Ramps start from
	// the time and value of the preceding event.
	//
	// A Param is owned by a single goroutine (the audio thread); scheduling
	// calls are applied between blocks, so from the renderer's point of view
	// every request is atomic.
	Param struct {
		value  float64 // last computed value
		t0, v0 float64 // time and value of the last event already passed
		events []event
	}

	event struct {
		kind  eventKind
		time  float64
		value float64
	}

	eventKind int
)

const (
	setValue eventKind = iota
	linearRamp
	exponentialRamp
)

func NewParam(value float64) *Param {
	return &Param{value: value, v0: value}
}

// Value returns the value computed at the last call to Advance, or the
// initial value.
func (p *Param) Value() float64 { return p.value }

// SetValueAtTime jumps to value at time t.
func (p *Param) SetValueAtTime(value, t float64) {
	p.insert(event{kind: setValue, time: t, value: value})
}

// LinearRampToValueAtTime ramps linearly from the previous event to value,
// arriving at time t.
func (p *Param) LinearRampToValueAtTime(value, t float64) {
	p.insert(event{kind: linearRamp, time: t, value: value})
}

// ExponentialRampToValueAtTime ramps exponentially from the previous event to
// value, arriving at time t. Targets smaller than ExpFloor are raised to it.
func (p *Param) ExponentialRampToValueAtTime(value, t float64) {
	if value < ExpFloor {
		value = ExpFloor
	}
	p.insert(event{kind: exponentialRamp, time: t, value: value})
}

// CancelScheduledValues removes every event at or after t. A ramp that was in
// progress is removed too, so callers normally follow this with
// SetValueAtTime(p.Value(), t).
func (p *Param) CancelScheduledValues(t float64) {
	for i, e := range p.events {
		if e.time >= t {
			p.events = p.events[:i]
			return
		}
	}
}

// Pending returns the number of events not yet reached.
func (p *Param) Pending() int { return len(p.events) }

// ValueAt evaluates the automation curve at time t without consuming any
// events.
func (p *Param) ValueAt(t float64) float64 {
	v, _, _, _ := p.eval(t)
	return v
}

// Advance evaluates the curve at time t, drops the events that have been
// passed and stores the result as the current value. t must not decrease
// between calls.
func (p *Param) Advance(t float64) float64 {
	v, n, t0, v0 := p.eval(t)
	if n > 0 {
		p.t0, p.v0 = t0, v0
		p.events = p.events[:copy(p.events, p.events[n:])]
	}
	p.value = v
	return v
}

// eval returns the value at t, the number of events passed by t and the time
// and value of the last passed event.
func (p *Param) eval(t float64) (v float64, passed int, t0, v0 float64) {
	t0, v0 = p.t0, p.v0
	for i, e := range p.events {
		if e.time <= t {
			t0, v0 = e.time, e.value
			continue
		}
		if t <= t0 {
			return v0, i, t0, v0
		}
		switch e.kind {
		case linearRamp:
			return v0 + (e.value-v0)*(t-t0)/(e.time-t0), i, t0, v0
		case exponentialRamp:
			if v0 == 0 || (v0 < 0) != (e.value < 0) {
				return v0, i, t0, v0
			}
			return v0 * math.Pow(e.value/v0, (t-t0)/(e.time-t0)), i, t0, v0
		default:
			return v0, i, t0, v0
		}
	}
	return v0, len(p.events), t0, v0
}

// insert keeps the events ordered by time; an event with the same time as
// existing ones goes after them.
func (p *Param) insert(e event) {
	i := len(p.events)
	for i > 0 && p.events[i-1].time > e.time {
		i--
	}
	p.events = append(p.events, event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}
