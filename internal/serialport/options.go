// Package serialport opens SLCAN (Lawicel) serial adapters for live capture.
package serialport

import (
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// PortOptions describe the serial connection and the CAN bitrate the adapter
// is configured with.
type PortOptions struct {
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`
	Bitrate  string `json:"bitrate"` // CAN bitrate, for example "500k"
}

// bitrateCodes maps CAN bitrates to the argument of the SLCAN S command.
var bitrateCodes = map[string]string{
	"10k":  "0",
	"20k":  "1",
	"50k":  "2",
	"100k": "3",
	"125k": "4",
	"250k": "5",
	"500k": "6",
	"800k": "7",
	"1m":   "8",
}

// Normalize validates the options and applies defaults for any unset values.
func (o PortOptions) Normalize() (PortOptions, error) {
	opts := o

	if opts.BaudRate <= 0 {
		opts.BaudRate = 115200
	}

	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}

	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	parity := strings.TrimSpace(strings.ToUpper(opts.Parity))
	switch parity {
	case "", "N", "NONE":
		parity = "N"
	case "E", "EVEN":
		parity = "E"
	case "O", "ODD":
		parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}
	opts.Parity = parity

	bitrate := strings.TrimSpace(strings.ToLower(opts.Bitrate))
	if bitrate == "" {
		bitrate = "500k"
	}
	if _, ok := bitrateCodes[bitrate]; !ok {
		return opts, fmt.Errorf("unsupported CAN bitrate %q", opts.Bitrate)
	}
	opts.Bitrate = bitrate

	return opts, nil
}

// SerialMode converts the options into the serial.Mode used by
// go.bug.st/serial.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: serial.OneStopBit,
	}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	switch opts.Parity {
	case "N":
		mode.Parity = serial.NoParity
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	}

	return mode, nil
}

// SetupCommands returns the SLCAN commands that open the CAN channel: close
// whatever was open, set the bitrate, open.
func (o PortOptions) SetupCommands() ([]string, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	return []string{"C\r", "S" + bitrateCodes[opts.Bitrate] + "\r", "O\r"}, nil
}
