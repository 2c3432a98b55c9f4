package transport

import "errors"

// ErrClosed is returned when broadcasting through a closed Broadcaster.
var ErrClosed = errors.New("broadcaster is closed")
