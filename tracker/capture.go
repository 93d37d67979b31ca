package tracker

import (
	"sync"
	"sync/atomic"

	"github.com/vsariola/acidbox"
)

type (
	// Tap duplicates the blocks rendered by the player into a capture
	// session while one is armed. The tap is a sink only: it never writes
	// back into the live signal, so recording cannot leak into the output.
	//
	// At most one session is active. The audio thread finds it through an
	// atomic pointer; the session mutex is held only for the append of a
	// single block, never across blocks.
	Tap struct {
		session atomic.Pointer[session]
	}

	session struct {
		mu          sync.Mutex
		left, right [][]float32
		frames      int
		closed      bool
	}

	// Capture is the audio of a finished session, flattened per channel in
	// arrival order.
	Capture struct {
		Left, Right []float32
	}
)

// Start arms a new, empty session. It returns false, and leaves the running
// session alone, if one is already armed.
func (t *Tap) Start() bool {
	return t.session.CompareAndSwap(nil, &session{})
}

// Armed reports whether a session is currently capturing.
func (t *Tap) Armed() bool { return t.session.Load() != nil }

// Write clones buf into the armed session, if any. Called from the audio
// thread.
func (t *Tap) Write(buf acidbox.AudioBuffer) {
	s := t.session.Load()
	if s == nil || len(buf) == 0 {
		return
	}
	left, right := buf.Channels()
	s.mu.Lock()
	if !s.closed {
		s.left = append(s.left, left)
		s.right = append(s.right, right)
		s.frames += len(buf)
	}
	s.mu.Unlock()
}

// Stop disarms the tap and hands over everything captured since Start. ok is
// false if no session was armed. A session that received no blocks yields an
// empty capture.
func (t *Tap) Stop() (c Capture, ok bool) {
	s := t.session.Swap(nil)
	if s == nil {
		return Capture{}, false
	}
	s.mu.Lock()
	s.closed = true
	left, right, frames := s.left, s.right, s.frames
	s.left, s.right = nil, nil
	s.mu.Unlock()
	return Capture{Left: flatten(left, frames), Right: flatten(right, frames)}, true
}

// Frames returns the length of the capture, in frames.
func (c Capture) Frames() int { return len(c.Left) }

// Wav interleaves the two channels and encodes them as a 16-bit stereo PCM
// .wav file.
func (c Capture) Wav(sampleRate int) ([]byte, error) {
	return acidbox.Wav(acidbox.Interleave(c.Left, c.Right), sampleRate)
}

func flatten(blocks [][]float32, length int) []float32 {
	ret := make([]float32, 0, length)
	for _, b := range blocks {
		ret = append(ret, b...)
	}
	return ret
}
