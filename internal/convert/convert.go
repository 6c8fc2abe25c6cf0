// Package convert drives the conversion of one CAN log into one trace.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cantrace/pkg/canlog"
	"cantrace/pkg/trc"
)

// ErrNoParsableInput is returned when the whole input yielded no record.
var ErrNoParsableInput = errors.New("no parsable input lines found")

// State is the state of a Driver.
type State int

const (
	AwaitingFirstRecord State = iota
	Streaming
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitingFirstRecord:
		return "awaiting-first-record"
	case Streaming:
		return "streaming"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stats summarize a run.
type Stats struct {
	Lines    int // lines or packets read
	Records  int // rows written
	Skipped  int // lines or packets that did not parse
	Rejected int // records refused by the formatter
	First    float64
	Last     float64
}

// Driver streams records from a Source through a Formatter into a writer.
// Rows are written as soon as they are formatted; nothing is held back.
type Driver struct {
	source     canlog.Source
	formatter  trc.Formatter
	writer     io.Writer
	normalizer canlog.Normalizer
	state      State
	stats      Stats
}

// NewDriver creates a Driver for one run.
func NewDriver(source canlog.Source, formatter trc.Formatter, writer io.Writer) *Driver {
	return &Driver{
		source:    source,
		formatter: formatter,
		writer:    writer,
	}
}

// State returns the current state.
func (d *Driver) State() State {
	return d.state
}

// Run consumes the source until it is exhausted or ctx is done. A cancelled
// context ends the run like the end of the input. Run fails with
// ErrNoParsableInput if no row was written.
func (d *Driver) Run(ctx context.Context) (Stats, error) {
	if d.state != AwaitingFirstRecord {
		return d.stats, fmt.Errorf("driver already ran (state %s)", d.state)
	}

	for ctx.Err() == nil {
		record, err := d.source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				// The source was closed to interrupt a blocking read.
				break
			}
			return d.fail(err)
		}

		if err := d.formatter.Check(record); err != nil {
			d.stats.Rejected++
			slog.Warn("Skipping record", "error", err, "line", d.source.Stats().Lines)
			continue
		}

		normalized, first := d.normalizer.Observe(record)
		if first {
			if header := d.formatter.Header(normalized); header != "" {
				if _, err := io.WriteString(d.writer, header); err != nil {
					return d.fail(fmt.Errorf("writing header: %w", err))
				}
			}
			d.stats.First = normalized.Timestamp
			d.state = Streaming
		}
		if _, err := io.WriteString(d.writer, d.formatter.Row(normalized)); err != nil {
			return d.fail(fmt.Errorf("writing row %d: %w", normalized.Index, err))
		}
		d.stats.Records++
		d.stats.Last = normalized.Timestamp
	}

	d.collectSourceStats()
	if d.stats.Records == 0 {
		d.state = Failed
		return d.stats, ErrNoParsableInput
	}
	d.state = Done
	return d.stats, nil
}

func (d *Driver) fail(err error) (Stats, error) {
	d.collectSourceStats()
	d.state = Failed
	return d.stats, err
}

func (d *Driver) collectSourceStats() {
	sourceStats := d.source.Stats()
	d.stats.Lines = sourceStats.Lines
	d.stats.Skipped = sourceStats.Skipped
}

// Convert converts everything read from in and writes it to out.
func Convert(ctx context.Context, opts Options, in io.Reader, out io.Writer) (Stats, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return Stats{}, err
	}
	formatter, err := opts.Formatter()
	if err != nil {
		return Stats{}, err
	}
	source, err := opts.NewSource(in)
	if err != nil {
		return Stats{}, err
	}
	return NewDriver(source, formatter, out).Run(ctx)
}

// Stdio are the streams used for the "-" paths.
type Stdio struct {
	In  io.Reader
	Out io.Writer
}

// ConvertFile converts the file input into the file output. "-" reads
// stdio.In; "" or "-" as output writes stdio.Out. The options are validated
// and the input is opened before the output is created, so neither mistake
// truncates an existing output file. Both files are closed on every path. A
// failed run may leave a partially written output file.
func ConvertFile(ctx context.Context, opts Options, input, output string, stdio Stdio) (stats Stats, err error) {
	opts, err = opts.Normalize()
	if err != nil {
		return Stats{}, err
	}

	in, err := OpenInput(input, stdio.In)
	if err != nil {
		return Stats{}, err
	}
	defer in.Close()

	out, err := CreateOutput(output, stdio.Out)
	if err != nil {
		return Stats{}, err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing output: %w", closeErr)
		}
	}()

	stats, err = Convert(ctx, opts, in, out)
	if err != nil {
		return stats, err
	}
	slog.Debug("Conversion finished", "input", input, "lines", stats.Lines, "records", stats.Records,
		"skipped", stats.Skipped, "rejected", stats.Rejected)
	return stats, nil
}

// OpenInput opens a file for reading, or returns stdin for "-".
func OpenInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

// CreateOutput creates or truncates a file, or returns stdout for "" and
// "-".
func CreateOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
