package tracker

import (
	"errors"
	"sync"
	"time"
)

// Clock calls a function periodically in its own goroutine. The first call
// happens one interval after Start. Changing the interval tears the ticker
// down and starts a new one; a call already in flight is not affected.
//
// Like the goroutines of the broker, the clock goroutine is closed by
// sending to a close channel with capacity 1, and reports back on a finished
// channel.
type Clock struct {
	mu       sync.Mutex
	tick     func()
	interval time.Duration
	close    chan struct{}
	finished chan struct{}
}

const clockCloseTimeout = 3 * time.Second

var errClockTimeout = errors.New("sequencer clock did not stop in time")

func NewClock(tick func()) *Clock {
	return &Clock{tick: tick}
}

// Start starts ticking at the given interval, restarting the ticker if the
// clock is already running.
func (c *Clock) Start(interval time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.stop()
	c.interval = interval
	c.close = make(chan struct{}, 1)
	c.finished = make(chan struct{}, 1)
	go c.run(interval, c.close, c.finished)
	return err
}

// Stop stops the clock and waits for the goroutine to exit. Stopping a
// stopped clock is a no-op.
func (c *Clock) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop()
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close != nil
}

func (c *Clock) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

func (c *Clock) stop() error {
	if c.close == nil {
		return nil
	}
	TrySend(c.close, struct{}{})
	_, ok := TimeoutReceive(c.finished, clockCloseTimeout)
	c.close, c.finished = nil, nil
	if !ok {
		return errClockTimeout
	}
	return nil
}

func (c *Clock) run(interval time.Duration, closeChan <-chan struct{}, finished chan<- struct{}) {
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		finished <- struct{}{}
	}()
	for {
		select {
		case <-closeChan:
			return
		case <-ticker.C:
			// a close request and a tick can be ready at once
			select {
			case <-closeChan:
				return
			default:
			}
			c.tick()
		}
	}
}
