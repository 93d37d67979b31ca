package oto

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/acidbox"
	"go.uber.org/multierr"
)

type (
	// OtoContext is an acidbox.AudioContext playing through the default
	// audio device of the system.
	OtoContext struct {
		ctx        *oto.Context
		sampleRate int
		blockSize  int

		mu      sync.Mutex
		players map[*OtoPlayer]struct{}
	}

	// OtoPlayer pulls audio from a source, one block at a time, and feeds it
	// to the device as 16-bit little-endian samples.
	OtoPlayer struct {
		context *OtoContext
		player  *oto.Player
		done    chan struct{}
		once    sync.Once
	}

	sourceReader struct {
		source  acidbox.AudioSource
		buffer  acidbox.AudioBuffer
		bytes   []byte
		pending []byte // converted samples not yet read by oto
		err     error
		finish  func()
	}
)

// NewContext opens the default audio device. sampleRate is in Hz, blockSize
// is the number of frames the source is asked to render at a time. If the
// system has no usable audio output, the returned error wraps
// acidbox.ErrUnsupportedEnvironment.
func NewContext(sampleRate, blockSize int) (*OtoContext, error) {
	if blockSize <= 0 {
		blockSize = acidbox.DefaultBlockSize
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w: %v", acidbox.ErrUnsupportedEnvironment, err)
	}
	<-ready
	return &OtoContext{
		ctx:        ctx,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		players:    map[*OtoPlayer]struct{}{},
	}, nil
}

func (c *OtoContext) SampleRate() int { return c.sampleRate }

// Play starts playing the source. Playing continues until the returned
// CloserWaiter is closed or the source returns an error; Wait blocks until
// then.
func (c *OtoContext) Play(source acidbox.AudioSource) acidbox.CloserWaiter {
	p := &OtoPlayer{context: c, done: make(chan struct{})}
	r := &sourceReader{
		source: source,
		buffer: make(acidbox.AudioBuffer, c.blockSize),
		finish: p.finish,
	}
	p.player = c.ctx.NewPlayer(r)
	// two blocks of 16-bit stereo frames
	p.player.SetBufferSize(c.blockSize * 4 * 2)
	c.mu.Lock()
	c.players[p] = struct{}{}
	c.mu.Unlock()
	p.player.Play()
	return p
}

// Close stops all players still playing and suspends the device.
func (c *OtoContext) Close() (err error) {
	c.mu.Lock()
	players := make([]*OtoPlayer, 0, len(c.players))
	for p := range c.players {
		players = append(players, p)
	}
	c.mu.Unlock()
	for _, p := range players {
		err = multierr.Append(err, p.Close())
	}
	if e := c.ctx.Suspend(); e != nil {
		err = multierr.Append(err, fmt.Errorf("cannot suspend oto context: %w", e))
	}
	return err
}

// Wait blocks until the player has been closed or its source has ended.
func (p *OtoPlayer) Wait() {
	<-p.done
}

// Close disposes of resources
func (p *OtoPlayer) Close() error {
	p.finish()
	p.context.mu.Lock()
	_, ok := p.context.players[p]
	delete(p.context.players, p)
	p.context.mu.Unlock()
	if !ok {
		return nil
	}
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

func (p *OtoPlayer) finish() {
	p.once.Do(func() { close(p.done) })
}

// Read implements io.Reader for oto: it renders a new block from the
// source whenever the previously converted samples have all been consumed.
// A block returned together with io.EOF is still played.
func (r *sourceReader) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		if len(r.pending) == 0 {
			if r.err != nil {
				r.finish()
				break
			}
			r.err = r.source(r.buffer)
			if r.err != nil && !errors.Is(r.err, io.EOF) {
				r.finish()
				break
			}
			// reuse the capacity of the previous conversion
			r.bytes = FloatBufferTo16BitLE(r.buffer, r.bytes[:0])
			r.pending = r.bytes
		}
		c := copy(b[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}
	if n == 0 && r.err != nil {
		return 0, io.EOF
	}
	return n, nil
}
