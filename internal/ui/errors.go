package ui

import "errors"

// Domain errors for the ui package.
var (
	// ErrInvalidFragment is returned when a fragment has no name, no Run
	// function or a non-positive interval.
	ErrInvalidFragment = errors.New("ui: invalid fragment")

	// ErrDuplicateFragment is returned when a fragment name is already registered.
	ErrDuplicateFragment = errors.New("ui: fragment already registered")

	// ErrUnknownFragment is returned when triggering an unregistered fragment.
	ErrUnknownFragment = errors.New("ui: unknown fragment")

	// ErrUnknownRegion is returned when looking up a region that was never bound.
	ErrUnknownRegion = errors.New("ui: unknown region")

	// ErrSchedulerStopped is returned when adding fragments after Stop.
	ErrSchedulerStopped = errors.New("ui: scheduler stopped")
)
