package race

// TickRate is the fixed simulation rate in ticks per second.
const TickRate = 60

// maxFrame bounds the wall time credited per frame so a stall cannot queue
// an unbounded burst of ticks.
const maxFrame = 0.1

// Clock converts variable frame times into a whole number of fixed steps.
type Clock struct {
	Step  float64
	accum float64
}

// NewClock returns a clock stepping at rate ticks per second.
func NewClock(rate int) *Clock {
	if rate <= 0 {
		rate = TickRate
	}
	return &Clock{Step: 1 / float64(rate)}
}

// Advance credits frame seconds of wall time and returns how many steps to
// run now.
func (c *Clock) Advance(frame float64) int {
	if frame > maxFrame {
		frame = maxFrame
	}
	if frame > 0 {
		c.accum += frame
	}
	n := int(c.accum / c.Step)
	c.accum -= float64(n) * c.Step
	return n
}

// Alpha returns the fraction of a step left in the accumulator.
func (c *Clock) Alpha() float64 {
	return c.accum / c.Step
}
