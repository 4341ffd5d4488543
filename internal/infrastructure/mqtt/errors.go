package mqtt

import (
	"errors"
	"fmt"
)

// Domain-specific errors for MQTT operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed is returned when the initial connection attempt fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when a publish operation fails.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed is returned when a subscribe operation fails.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrUnsubscribeFailed is returned when an unsubscribe operation fails.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS is returned when an invalid QoS level is specified.
	// Valid QoS levels are 0, 1, or 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")

	// ErrWildcardTopic is returned when publishing to a topic filter.
	ErrWildcardTopic = errors.New("mqtt: cannot publish to a topic containing wildcards")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("mqtt: operation timed out")
)

// Connect return codes. Values 1-5 are the MQTT 3.1.1 CONNACK codes.
const (
	ReturnCodeAccepted          byte = 0x00
	ReturnCodeBadProtocol       byte = 0x01
	ReturnCodeIDRejected        byte = 0x02
	ReturnCodeServerUnavailable byte = 0x03
	ReturnCodeBadCredentials    byte = 0x04
	ReturnCodeNotAuthorised     byte = 0x05

	// ReturnCodeNetworkError covers failures where no CONNACK was received
	// (refused TCP connection, DNS failure, timeout).
	ReturnCodeNetworkError byte = 0x80
)

// ConnectError describes a failed connection attempt together with the
// broker's return code.
//
// errors.Is(err, ErrConnectionFailed) holds for every ConnectError.
type ConnectError struct {
	ReturnCode byte
	Err        error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%v (return code %d): %v", ErrConnectionFailed, e.ReturnCode, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ConnectError) Unwrap() []error {
	return []error{ErrConnectionFailed, e.Err}
}

// ReturnCode extracts the connect return code from err.
// It returns ReturnCodeAccepted for a nil error and ReturnCodeNetworkError
// for errors that carry no code.
func ReturnCode(err error) byte {
	if err == nil {
		return ReturnCodeAccepted
	}
	var ce *ConnectError
	if errors.As(err, &ce) {
		return ce.ReturnCode
	}
	return ReturnCodeNetworkError
}
