package convert

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cantrace/pkg/canlog"
	"cantrace/pkg/trc"
)

// LocationEnv names the environment variable used as default for
// Options.Location.
const LocationEnv = "CANTRACE_TZ"

// Options describe one conversion. The zero value converts candump -L logs to
// TRC with local start times.
type Options struct {
	Dialect   string `json:"dialect"`
	Format    string `json:"format"`
	Overflow  string `json:"overflow"`
	StrictHex bool   `json:"strict_hex"`
	Location  string `json:"location"`
	Interface string `json:"interface"` // for captures without interface names
}

// Normalize validates the options and applies defaults for any unset values.
func (o Options) Normalize() (Options, error) {
	opts := o

	if opts.Dialect == "" {
		opts.Dialect = string(canlog.DialectCandumpLog)
	}
	dialect, err := canlog.ParseDialect(opts.Dialect)
	if err != nil {
		return opts, err
	}

	if opts.Format == "" {
		opts.Format = string(DefaultFormat(dialect))
	}
	format, err := trc.ParseFormat(opts.Format)
	if err != nil {
		return opts, err
	}
	if format.NeedsTimestamps() != dialect.Timed() {
		return opts, fmt.Errorf("format %q cannot be written from dialect %q: supported formats are %s",
			format, dialect, joinFormats(CompatibleFormats(dialect)))
	}

	if opts.Overflow == "" {
		opts.Overflow = string(trc.OverflowWiden)
	}
	if _, err := trc.ParseOverflow(opts.Overflow); err != nil {
		return opts, err
	}

	if opts.Location == "" {
		opts.Location = os.Getenv(LocationEnv)
	}
	if opts.Location == "" {
		opts.Location = "Local"
	}
	if _, err := time.LoadLocation(opts.Location); err != nil {
		return opts, fmt.Errorf("invalid time zone %q: %w", opts.Location, err)
	}

	if opts.Interface == "" {
		opts.Interface = "can0"
	}

	return opts, nil
}

// DefaultFormat returns the format written for a dialect unless another one
// is requested.
func DefaultFormat(d canlog.Dialect) trc.Format {
	if d.Timed() {
		return trc.FormatTRC
	}
	return trc.FormatPCAN
}

// CompatibleFormats lists the formats that can be written from a dialect.
func CompatibleFormats(d canlog.Dialect) []trc.Format {
	var result []trc.Format
	for _, f := range trc.Formats() {
		if f.NeedsTimestamps() == d.Timed() {
			result = append(result, f)
		}
	}
	return result
}

func joinFormats(formats []trc.Format) string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Formatter builds the formatter for normalized options.
func (o Options) Formatter() (trc.Formatter, error) {
	loc, err := time.LoadLocation(o.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", o.Location, err)
	}
	return trc.New(trc.Format(o.Format), trc.Options{
		Overflow: trc.Overflow(o.Overflow),
		Location: loc,
	})
}

// NewSource builds the record source reading from r for normalized options.
func (o Options) NewSource(r io.Reader) (canlog.Source, error) {
	dialect := canlog.Dialect(o.Dialect)
	if dialect == canlog.DialectPcap {
		return canlog.NewPcapSource(r, o.Interface)
	}
	parser, err := canlog.NewLineParser(dialect, o.StrictHex)
	if err != nil {
		return nil, err
	}
	return canlog.NewLineSource(r, parser), nil
}
