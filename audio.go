package acidbox

import "io"

type (
	// AudioBuffer is a buffer of stereo frames, left channel first.
	AudioBuffer [][2]float32

	// AudioSource fills the buffer completely. It is called from the audio
	// thread and must not block.
	AudioSource func(buf AudioBuffer) error

	// AudioContext is a live audio output. Play starts pulling blocks from
	// the source until the returned CloserWaiter is closed.
	AudioContext interface {
		Play(source AudioSource) CloserWaiter
		SampleRate() int
	}

	CloserWaiter interface {
		io.Closer
		Wait()
	}
)

// DefaultSampleRate is the sample rate used when none is configured.
const DefaultSampleRate = 44100

// Clone returns a copy of the buffer that does not share memory with it.
func (b AudioBuffer) Clone() AudioBuffer {
	ret := make(AudioBuffer, len(b))
	copy(ret, b)
	return ret
}

// Clear zeroes every frame of the buffer.
func (b AudioBuffer) Clear() {
	for i := range b {
		b[i] = [2]float32{}
	}
}

// Channels splits the buffer into separate left and right sample slices.
func (b AudioBuffer) Channels() (left, right []float32) {
	left = make([]float32, len(b))
	right = make([]float32, len(b))
	for i, f := range b {
		left[i], right[i] = f[0], f[1]
	}
	return left, right
}

// Source returns an AudioSource playing the buffer once. After the end of
// the buffer, the rest of the block is filled with silence and io.EOF is
// returned.
func (b AudioBuffer) Source() AudioSource {
	pos := 0
	return func(buf AudioBuffer) error {
		n := copy(buf, b[pos:])
		pos += n
		if n < len(buf) {
			buf[n:].Clear()
			return io.EOF
		}
		return nil
	}
}
