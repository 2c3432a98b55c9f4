package nettime

import "time"

// Batch is a contiguous block of frame numbers owed to the simulation.
// When Count is 0 the bounds are meaningless.
type Batch struct {
	First uint32
	Last  uint32
	Count int
}

// Stepper drives a NetworkTime from a wall clock. Each Step call
// measures the time since the previous call, banks it, drains as many
// whole frames as the bank covers, and reports the resulting batch.
//
// Like NetworkTime itself, a Stepper belongs to a single goroutine.
type Stepper struct {
	time  *NetworkTime
	clock Clock
	last  time.Time
}

// NewStepper returns a Stepper driving t from clock. A nil clock means
// the system clock.
func NewStepper(t *NetworkTime, clock Clock) *Stepper {
	if clock == nil {
		clock = SystemClock
	}
	return &Stepper{time: t, clock: clock}
}

// Time returns the NetworkTime the stepper drives.
func (s *Stepper) Time() *NetworkTime {
	return s.time
}

// Step banks the wall-clock time since the previous Step call, advances
// one frame per fully banked per-frame duration, and returns the batch
// of frame numbers the simulation should now run. The first call
// measures no delta; the batch then reflects only the initial lag.
//
// The batch includes frames advanced by earlier Step calls that have not
// been acknowledged with Ack yet.
func (s *Stepper) Step() Batch {
	now := s.clock.Now()
	if !s.last.IsZero() {
		s.time.AddElapsed(now.Sub(s.last))
	}
	s.last = now

	for s.time.Elapsed() >= s.time.PerFrameDuration() {
		s.time.AdvanceFrame()
	}

	first, last, ok := s.time.FramesToRun()
	if !ok {
		return Batch{}
	}
	return Batch{First: first, Last: last, Count: int(last-first) + 1}
}

// Ack marks the most recently reported batch as processed.
func (s *Stepper) Ack() {
	s.time.ResetFrameLag()
}
