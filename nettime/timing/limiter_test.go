package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoOpLimiterReturnsImmediately(t *testing.T) {
	l := NewNoOpLimiter()

	start := time.Now()
	for i := 0; i < 1000; i++ {
		l.WaitForNextFrame()
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestTickerLimiterPacesFrames(t *testing.T) {
	l := NewTickerLimiter(10 * time.Millisecond)
	defer l.Stop()

	start := time.Now()
	for i := 0; i < 5; i++ {
		l.WaitForNextFrame()
	}
	elapsed := time.Since(start)

	// 5 frames at 10ms should take roughly 50ms; allow generous slack
	// for scheduler jitter on CI machines.
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}

func TestAdaptiveLimiterPacesFrames(t *testing.T) {
	l := NewAdaptiveLimiter(10 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 5; i++ {
		l.WaitForNextFrame()
	}
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
}

func TestAdaptiveLimiterResetClearsSchedule(t *testing.T) {
	l := NewAdaptiveLimiter(time.Hour)
	l.Reset()

	// after a reset the next frame is due immediately
	start := time.Now()
	l.WaitForNextFrame()
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
