package nettime

import (
	"fmt"
	"time"
)

// Config holds the tunable parameters of a NetworkTime. Both fields are
// required; zero values fail validation.
type Config struct {
	// TickRateHz is the network frame rate in frames per second.
	TickRateHz uint32
	// MessageSendRate means "send a message every N frames".
	MessageSendRate uint8
}

// Validate checks that both rates are positive and that the tick rate
// yields a representable, strictly positive per-frame duration.
func (c Config) Validate() error {
	if c.TickRateHz == 0 || time.Second/time.Duration(c.TickRateHz) <= 0 {
		return fmt.Errorf("tick rate: %w", ErrInvalidRate)
	}
	if c.MessageSendRate == 0 {
		return fmt.Errorf("message send rate: %w", ErrInvalidRate)
	}
	return nil
}
