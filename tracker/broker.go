package tracker

import "time"

type (
	// Broker is the centralized message broker of the engine. It is used to
	// communicate between the controller (Engine), the sequencer clock and
	// the audio thread (Player). The broker is many-to-one communication,
	// implemented with one channel for each recipient:
	//
	//   - ToPlayer carries scheduling requests to the audio thread. They are
	//     applied at the start of the next block, so a request is atomic from
	//     the point of view of the renderer.
	//   - ToModel carries notifications (current step, recording state, output
	//     level) to whoever renders the user interface.
	//
	// The capture tap is owned by the broker too: it is the one hand-off point
	// of audio data from the audio thread to the controller.
	//
	// All sends are non-blocking (TrySend), so that neither the audio thread
	// nor the sequencer clock can ever dead-lock on a slow receiver.
	Broker struct {
		ToPlayer chan any
		ToModel  chan MsgToModel

		Capture Tap
	}

	// MsgToModel is a notification sent to the UI collaborator. The often
	// sent data (step position and levels) are not boxed to avoid
	// allocations; infrequent messages travel in Data.
	MsgToModel struct {
		HasStep bool
		Step    int // index of the step that was just played

		HasLevel bool
		Level    Decibel // peak level of the last rendered block

		Data any // RecordingChanged, PlayingChanged, Alert
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToPlayer: make(chan any, 1024),
		ToModel:  make(chan MsgToModel, 1024),
	}
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
