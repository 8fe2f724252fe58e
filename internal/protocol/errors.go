package protocol

import "errors"

var (
	// ErrUnknownProtocol indicates no codec is registered under the
	// requested identifier.
	ErrUnknownProtocol = errors.New("protocol: unknown protocol")

	// ErrUnsupportedAction indicates the amplifier family has no wire
	// command for the requested action.
	ErrUnsupportedAction = errors.New("protocol: unsupported action")

	// ErrInvalidCommand indicates a command field cannot be represented in
	// the family's grammar.
	ErrInvalidCommand = errors.New("protocol: invalid command")

	// ErrMalformedResponse indicates a status response did not match the
	// family's response grammar.
	ErrMalformedResponse = errors.New("protocol: malformed response")
)
