package synth

// MaxDelayTime is the longest delay a Delay line supports, in seconds.
const MaxDelayTime = 1.0

// Delay is a fractional delay line with its output fed back to its input
// through a gain. Inside the loop the delay is at least one sample.
type Delay struct {
	buffer []float64
	pos    int
}

func NewDelay(sampleRate int) *Delay {
	return &Delay{buffer: make([]float64, int(MaxDelayTime*float64(sampleRate))+2)}
}

// Process pushes x into the line and returns the delayed signal. delay is in
// samples, feedback is the gain of the loop from the output back to the
// input.
func (d *Delay) Process(x, delay, feedback float64) float64 {
	n := len(d.buffer)
	if delay < 1 {
		delay = 1
	}
	if delay > float64(n-2) {
		delay = float64(n - 2)
	}
	i := int(delay)
	frac := delay - float64(i)
	a := d.buffer[(d.pos-i+n)%n]
	b := d.buffer[(d.pos-i-1+n)%n]
	out := a + (b-a)*frac
	d.buffer[d.pos] = x + feedback*out
	d.pos++
	if d.pos == n {
		d.pos = 0
	}
	return out
}
