package bridge

import "errors"

// Domain errors for the bridge package.
var (
	// ErrSlotMissing is returned by Tick when a display region has not been
	// bound into session state yet.
	ErrSlotMissing = errors.New("bridge: display slot not bound")

	// ErrReceiveTimeout is returned when a oneshot receive gets no message in time.
	ErrReceiveTimeout = errors.New("bridge: no inbound message before timeout")

	// ErrFeedStopped is returned when starting a Feed after Stop.
	ErrFeedStopped = errors.New("bridge: feed stopped")
)
