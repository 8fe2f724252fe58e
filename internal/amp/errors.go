package amp

import "errors"

var (
	// ErrClosed indicates an operation on a closed connection.
	ErrClosed = errors.New("amp: connection closed")

	// ErrTransport indicates the control port failed mid-operation.
	ErrTransport = errors.New("amp: transport error")

	// ErrInvalidZone indicates a zone id outside the device's zone set.
	ErrInvalidZone = errors.New("amp: invalid zone")

	// ErrInvalidSource indicates a source index outside the device's range.
	ErrInvalidSource = errors.New("amp: invalid source")
)
