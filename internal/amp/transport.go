package amp

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/openav/multizone-core/internal/profile"
)

// Transport is a framed request/response channel to an amplifier's control
// port. Every request produces a response frame ending in the protocol's
// terminator, even for set commands (amplifiers echo an acknowledgement).
type Transport interface {
	// Roundtrip writes frame and reads until the response terminator or
	// context cancellation.
	Roundtrip(ctx context.Context, frame []byte) ([]byte, error)

	// Close releases the underlying port.
	Close() error
}

// SerialTransport drives an RS-232 control port via go.bug.st/serial.
//
// Thread Safety: a mutex serializes roundtrips, so a response is always
// read by the request that triggered it.
type SerialTransport struct {
	mu         sync.Mutex
	port       serial.Port
	terminator []byte
	readChunk  time.Duration
}

// OpenSerial opens the named port with the profile's RS-232 parameters and
// frames responses on the given terminator.
func OpenSerial(portName string, params profile.RS232Params, terminator []byte) (*SerialTransport, error) {
	mode, err := serialMode(params)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrTransport, portName, err)
	}

	// Short per-read timeout so the read loop can observe context
	// cancellation between chunks.
	readChunk := 100 * time.Millisecond
	if err := port.SetReadTimeout(readChunk); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: set read timeout on %s: %v", ErrTransport, portName, err)
	}

	return &SerialTransport{
		port:       port,
		terminator: terminator,
		readChunk:  readChunk,
	}, nil
}

// serialMode maps descriptor RS-232 parameters onto the library's mode
// struct.
func serialMode(params profile.RS232Params) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: params.BaudRate,
		DataBits: params.ByteSize,
	}

	switch params.Parity {
	case "", "N":
		mode.Parity = serial.NoParity
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	default:
		return nil, fmt.Errorf("%w: unsupported parity %q", ErrTransport, params.Parity)
	}

	switch params.StopBits {
	case 0, 1:
		mode.StopBits = serial.OneStopBit
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("%w: unsupported stop bits %d", ErrTransport, params.StopBits)
	}

	return mode, nil
}

// Roundtrip writes frame and accumulates response bytes until the
// terminator arrives or ctx is done.
func (t *SerialTransport) Roundtrip(ctx context.Context, frame []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.port.Write(frame); err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrTransport, err)
	}

	var buf bytes.Buffer
	chunk := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}

		n, err := t.port.Read(chunk)
		if err != nil {
			return nil, fmt.Errorf("%w: read: %v", ErrTransport, err)
		}
		buf.Write(chunk[:n])

		if bytes.HasSuffix(buf.Bytes(), t.terminator) {
			return buf.Bytes(), nil
		}
	}
}

// Close closes the serial port.
func (t *SerialTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port.Close()
}
