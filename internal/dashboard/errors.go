package dashboard

import "errors"

// Domain errors for the dashboard package.
var (
	// ErrUnknownWidget is returned when a change targets a key with no widget.
	ErrUnknownWidget = errors.New("dashboard: unknown widget")

	// ErrInvalidValue is returned when a widget value has the wrong type or
	// is out of range.
	ErrInvalidValue = errors.New("dashboard: invalid widget value")

	// ErrRuntimeClosed is returned when using a Runtime after its session ended.
	ErrRuntimeClosed = errors.New("dashboard: session closed")
)
