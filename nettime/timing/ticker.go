package timing

import "time"

// TickerLimiter uses time.Ticker for simple, consistent frame timing.
// Less accurate than AdaptiveLimiter but simpler and good enough for
// most cases.
type TickerLimiter struct {
	frameTime time.Duration
	ticker    *time.Ticker
	ch        <-chan time.Time
}

func NewTickerLimiter(frameTime time.Duration) *TickerLimiter {
	ticker := time.NewTicker(frameTime)
	return &TickerLimiter{
		frameTime: frameTime,
		ticker:    ticker,
		ch:        ticker.C,
	}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ch
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.frameTime)
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
