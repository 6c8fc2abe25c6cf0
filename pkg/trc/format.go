// Package trc renders normalized CAN records into the text trace formats read
// by PCAN-View and similar bus analysis tools.
package trc

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"cantrace/pkg/canlog"
)

// Formatter renders records of one output format.
type Formatter interface {
	// Check reports whether a record can be rendered at all. It is called
	// before the record is numbered, so a refused record leaves no gap.
	Check(r canlog.Record) error

	// Header returns the text written once before the first row, or "".
	Header(first canlog.Normalized) string

	// Row returns one newline terminated row.
	Row(n canlog.Normalized) string
}

// Format names an output format.
type Format string

const (
	FormatPCAN  Format = "pcan"
	FormatTRC   Format = "trc"
	FormatJSONL Format = "jsonl"
)

var formats = map[Format]bool{
	FormatPCAN:  false,
	FormatTRC:   true,
	FormatJSONL: true,
}

// Formats returns all output formats sorted by name.
func Formats() []Format {
	result := make([]Format, 0, len(formats))
	for f := range formats {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(name)
	if _, ok := formats[f]; !ok {
		return "", fmt.Errorf("unknown format %q", name)
	}
	return f, nil
}

// NeedsTimestamps reports whether the format renders real times.
func (f Format) NeedsTimestamps() bool {
	return formats[f]
}

// ErrOverflow is returned by Check for records with more data bytes than the
// byte columns of the format when the overflow policy is OverflowReject.
var ErrOverflow = errors.New("record has more than 8 data bytes")

// Overflow selects what happens to records with more than ByteColumns data
// bytes.
type Overflow string

const (
	// OverflowWiden writes all bytes and the real length.
	OverflowWiden Overflow = "widen"
	// OverflowTruncate writes the first ByteColumns bytes and length 8.
	OverflowTruncate Overflow = "truncate"
	// OverflowReject refuses the record.
	OverflowReject Overflow = "reject"
)

// ParseOverflow validates an overflow policy name.
func ParseOverflow(name string) (Overflow, error) {
	switch o := Overflow(name); o {
	case OverflowWiden, OverflowTruncate, OverflowReject:
		return o, nil
	default:
		return "", fmt.Errorf("unknown overflow policy %q: expected widen, truncate or reject", name)
	}
}

// Options configure a Formatter.
type Options struct {
	Overflow Overflow
	Location *time.Location // for the TRC start time, nil means time.Local
}

// New returns the Formatter for f.
func New(f Format, opts Options) (Formatter, error) {
	switch f {
	case FormatPCAN:
		return PCANFormatter{}, nil
	case FormatTRC:
		return &TRCFormatter{Overflow: opts.Overflow, Location: opts.Location}, nil
	case FormatJSONL:
		return JSONLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}
