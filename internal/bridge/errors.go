package bridge

import "errors"

// Sentinel errors for command routing and payload validation.
var (
	// ErrUnknownDevice indicates a command topic named a device that is not
	// registered with the bridge.
	ErrUnknownDevice = errors.New("bridge: unknown device")

	// ErrDuplicateDevice indicates a device id was registered twice.
	ErrDuplicateDevice = errors.New("bridge: duplicate device")

	// ErrBadTopic indicates a command arrived on a topic that does not match
	// the command scheme.
	ErrBadTopic = errors.New("bridge: bad command topic")

	// ErrBadPayload indicates a command payload could not be parsed or is
	// missing a required field.
	ErrBadPayload = errors.New("bridge: bad command payload")

	// ErrUnknownAction indicates a command payload named an action the
	// bridge does not dispatch.
	ErrUnknownAction = errors.New("bridge: unknown action")
)
