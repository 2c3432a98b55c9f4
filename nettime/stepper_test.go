package nettime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStepper(t *testing.T, hz uint32) (*Stepper, *ManualClock) {
	t.Helper()
	nt, err := NewFromConfig(Config{TickRateHz: hz, MessageSendRate: 1})
	require.NoError(t, err)
	clock := NewManualClock(time.Unix(0, 0))
	return NewStepper(nt, clock), clock
}

func TestStepperFirstStepMeasuresNoDelta(t *testing.T) {
	s, _ := newTestStepper(t, 20)

	batch := s.Step()

	// only the initial lag of 1, covering frame 0
	assert.Equal(t, Batch{First: 0, Last: 0, Count: 1}, batch)
	assert.Equal(t, time.Duration(0), s.Time().Elapsed())
}

func TestStepperDrainsWholeFrames(t *testing.T) {
	s, clock := newTestStepper(t, 20) // 50ms per frame
	s.Step()
	s.Ack()

	clock.Advance(125 * time.Millisecond)
	batch := s.Step()

	assert.Equal(t, Batch{First: 1, Last: 2, Count: 2}, batch)
	assert.Equal(t, 25*time.Millisecond, s.Time().Elapsed())
}

func TestStepperCarriesRemainderForward(t *testing.T) {
	s, clock := newTestStepper(t, 20)
	s.Step()
	s.Ack()

	clock.Advance(30 * time.Millisecond)
	assert.Equal(t, Batch{}, s.Step(), "30ms banks no full frame at 20hz")

	clock.Advance(30 * time.Millisecond)
	batch := s.Step()
	assert.Equal(t, 1, batch.Count, "remainder plus new delta covers one frame")
	assert.Equal(t, 10*time.Millisecond, s.Time().Elapsed())
}

func TestStepperAccumulatesUnackedBatches(t *testing.T) {
	s, clock := newTestStepper(t, 10) // 100ms per frame
	s.Step()
	s.Ack()

	clock.Advance(100 * time.Millisecond)
	first := s.Step()
	require.Equal(t, 1, first.Count)

	// no Ack between steps: the second batch includes the first
	clock.Advance(100 * time.Millisecond)
	second := s.Step()
	assert.Equal(t, Batch{First: 1, Last: 2, Count: 2}, second)

	s.Ack()
	clock.Advance(100 * time.Millisecond)
	third := s.Step()
	assert.Equal(t, Batch{First: 3, Last: 3, Count: 1}, third)
}

func TestStepperNilClockDefaultsToSystem(t *testing.T) {
	s := NewStepper(New(), nil)
	batch := s.Step()
	assert.Equal(t, 1, batch.Count)
}
