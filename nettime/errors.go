package nettime

import "errors"

var (
	// ErrInvalidRate is returned when a tick rate or message send rate
	// of zero is supplied.
	ErrInvalidRate = errors.New("rate must be at least 1")

	// ErrInsufficientElapsed is returned by AdvanceFrameChecked when
	// less than one frame of wall-clock time has been banked.
	ErrInsufficientElapsed = errors.New("not enough elapsed time banked for a frame")
)
