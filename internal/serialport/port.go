package serialport

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
)

// Port is the part of a serial port used for capture. It is satisfied by
// serial.Port and by test doubles.
type Port interface {
	io.ReadWriteCloser
}

// Opener opens a serial port. Tests replace OpenPort.
type Opener func(path string, mode *serial.Mode) (Port, error)

// OpenPort is the Opener used by Open.
var OpenPort Opener = func(path string, mode *serial.Mode) (Port, error) {
	return serial.Open(path, mode)
}

// Capture is an open SLCAN channel. Read returns the raw ASCII frames.
type Capture struct {
	port      Port
	closeOnce sync.Once
	closeErr  error
}

// Open opens the serial port at path and starts the SLCAN channel.
func Open(path string, opts PortOptions) (*Capture, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	commands, err := opts.SetupCommands()
	if err != nil {
		return nil, err
	}

	port, err := OpenPort(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}

	for _, command := range commands {
		if _, err := io.WriteString(port, command); err != nil {
			port.Close()
			return nil, fmt.Errorf("failed to send SLCAN command %q: %w", command[:1], err)
		}
	}

	return &Capture{port: port}, nil
}

func (c *Capture) Read(p []byte) (int, error) {
	return c.port.Read(p)
}

// Close closes the CAN channel and the port. It is safe to call more than
// once and from another goroutine to interrupt a blocked Read.
func (c *Capture) Close() error {
	c.closeOnce.Do(func() {
		_, writeErr := io.WriteString(c.port, "C\r")
		c.closeErr = errors.Join(writeErr, c.port.Close())
	})
	return c.closeErr
}
