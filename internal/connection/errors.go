package connection

import "errors"

// Domain errors for the connection package.
var (
	// ErrClosed is returned by Get after Close has been called.
	ErrClosed = errors.New("connection: manager closed")

	// ErrNotDialed is returned by HealthCheck before the first Get.
	ErrNotDialed = errors.New("connection: broker not dialed yet")
)
