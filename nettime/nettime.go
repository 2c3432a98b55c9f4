package nettime

import "time"

// DefaultTicksPerMinute is the number of network frames executed per
// minute when no tick rate has been configured.
const DefaultTicksPerMinute = 100

// NetworkTime tracks the state of the network simulation separately from
// however often the host loop actually runs. Wall-clock time is banked
// with AddElapsed and drained one fixed-length frame at a time with
// AdvanceFrame; FramesToRun reports the batch of frame numbers the
// caller still owes to the simulation.
//
// NetworkTime is a plain value type with no locking. It is meant to be
// owned and mutated by a single goroutine (the host loop).
type NetworkTime struct {
	// frameNumber is the index of the most recently completed frame.
	frameNumber uint32
	// elapsed is the wall-clock time banked since the last frame was
	// consumed.
	elapsed time.Duration
	// perFrameDuration is the fixed length of one network frame.
	perFrameDuration time.Duration
	// messageSendRate means "send a message every N frames".
	messageSendRate uint8
	// frameLag counts frames advanced since the caller last called
	// ResetFrameLag. Usually 0 or 1 if the simulation is keeping up.
	frameLag uint32
}

// New returns a NetworkTime with the default configuration: frame 0,
// nothing banked, 100 frames per minute, a message on every frame, and
// an initial lag of 1 so systems get a chance to run on frame 0.
func New() *NetworkTime {
	return &NetworkTime{
		frameNumber:      0,
		elapsed:          0,
		perFrameDuration: time.Minute / DefaultTicksPerMinute,
		messageSendRate:  1,
		frameLag:         1,
	}
}

// NewFromConfig returns a NetworkTime configured from cfg. Zero rates
// are rejected with ErrInvalidRate rather than clamped, so a
// misconfigured host loop fails at startup instead of dividing by zero
// frames later.
func NewFromConfig(cfg Config) (*NetworkTime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := New()
	if err := t.SetTickRate(cfg.TickRateHz); err != nil {
		return nil, err
	}
	if err := t.SetMessageSendRate(cfg.MessageSendRate); err != nil {
		return nil, err
	}
	return t, nil
}

// AddElapsed banks the given wall-clock duration. It never advances the
// frame counter; draining is the caller's loop:
//
//	for t.Elapsed() >= t.PerFrameDuration() {
//		t.AdvanceFrame()
//	}
func (t *NetworkTime) AddElapsed(d time.Duration) {
	t.elapsed += d
}

// AdvanceFrame consumes exactly one frame of banked time: the frame
// number and frame lag go up by one and the per-frame duration is
// subtracted from the bank. It does not check that enough time was
// banked; calling it without a sufficiency check can drive the bank
// negative. Use AdvanceFrameChecked to have the check enforced.
func (t *NetworkTime) AdvanceFrame() {
	t.frameNumber++
	t.elapsed -= t.perFrameDuration
	t.frameLag++
}

// AdvanceFrameChecked is AdvanceFrame with the sufficiency check made
// explicit. It returns ErrInsufficientElapsed, and changes nothing, if
// less than one frame's worth of time is banked.
func (t *NetworkTime) AdvanceFrameChecked() error {
	if t.elapsed < t.perFrameDuration {
		return ErrInsufficientElapsed
	}
	t.AdvanceFrame()
	return nil
}

// FramesToRun returns the inclusive range [first, last] of frame numbers
// the caller still needs to run this host frame, and whether the range
// is non-empty. With a lag of zero there is nothing owed and ok is
// false; first and last are then meaningless.
//
// The range never extends below frame 0, even if the lag somehow exceeds
// the frame number.
func (t *NetworkTime) FramesToRun() (first, last uint32, ok bool) {
	if t.frameLag == 0 {
		return 0, 0, false
	}
	start := int64(t.frameNumber) - int64(t.frameLag) + 1
	if start < 0 {
		start = 0
	}
	return uint32(start), t.frameNumber, true
}

// ResetFrameLag marks the owed frames as processed. Call it after
// running the batch reported by FramesToRun.
func (t *NetworkTime) ResetFrameLag() {
	t.frameLag = 0
}

// ShouldSendNow reports whether a message should be sent on the current
// frame, based on the configured send rate.
func (t *NetworkTime) ShouldSendNow() bool {
	return t.ShouldSend(t.frameNumber)
}

// ShouldSend reports whether a message should be sent on the given
// frame. The cadence is aligned to the frame number itself (every Nth
// frame), so the answer is reproducible for a given frame no matter how
// the simulation reached it.
func (t *NetworkTime) ShouldSend(frame uint32) bool {
	return frame%uint32(t.messageSendRate) == 0
}

// FrameNumber returns the index of the most recently completed frame.
func (t *NetworkTime) FrameNumber() uint32 {
	return t.frameNumber
}

// SetFrameNumber force-sets the frame counter, bypassing lag accounting.
// Useful when resynchronizing with an authoritative server. The banked
// time and frame lag are left untouched; after a large jump the caller
// should reconcile those separately.
func (t *NetworkTime) SetFrameNumber(frame uint32) {
	t.frameNumber = frame
}

// Elapsed returns the wall-clock time banked since the last frame was
// consumed.
func (t *NetworkTime) Elapsed() time.Duration {
	return t.elapsed
}

// PerFrameDuration returns the fixed length of one network frame.
func (t *NetworkTime) PerFrameDuration() time.Duration {
	return t.perFrameDuration
}

// MessageSendRate returns N in "send a message every N frames".
func (t *NetworkTime) MessageSendRate() uint8 {
	return t.messageSendRate
}

// FrameLag returns the number of frames advanced since the last
// ResetFrameLag call.
func (t *NetworkTime) FrameLag() uint32 {
	return t.frameLag
}

// SetTickRate sets the rate at which the network progresses, in hertz.
// The per-frame duration becomes exactly one second divided by hz.
// Returns ErrInvalidRate if hz is zero, or so large that the division
// truncates to a zero duration; the per-frame duration must stay
// strictly positive or the drain loop would never terminate.
func (t *NetworkTime) SetTickRate(hz uint32) error {
	if hz == 0 {
		return ErrInvalidRate
	}
	perFrame := time.Second / time.Duration(hz)
	if perFrame <= 0 {
		return ErrInvalidRate
	}
	t.perFrameDuration = perFrame
	return nil
}

// SetMessageSendRate sets the cadence to "every n frames". Returns
// ErrInvalidRate if n is zero, which would make the send predicate a
// division by zero.
func (t *NetworkTime) SetMessageSendRate(n uint8) error {
	if n == 0 {
		return ErrInvalidRate
	}
	t.messageSendRate = n
	return nil
}
