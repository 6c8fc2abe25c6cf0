package canlog

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
)

// MaxLineLength is the longest line a LineSource parses. Longer lines are
// skipped.
const MaxLineLength = 1024 * 1024

// Source yields records one at a time. Next returns io.EOF after the last
// record. Input that does not parse is skipped and counted in Stats.
type Source interface {
	Next() (Record, error)
	Stats() SourceStats
}

// SourceStats counts what a Source has consumed so far.
type SourceStats struct {
	Lines   int // lines or packets read
	Skipped int // lines or packets that did not yield a record
}

// LineSource reads text lines from an io.Reader and parses each with a
// LineParser.
type LineSource struct {
	reader  *bufio.Reader
	parser  LineParser
	line    []byte
	afterCR bool // the previous line ended with \r, drop a \n right after it
	stats   SourceStats
}

var _ Source = &LineSource{}

// NewLineSource creates a LineSource. It holds at most one line in memory.
func NewLineSource(reader io.Reader, parser LineParser) *LineSource {
	return &LineSource{
		reader: bufio.NewReader(reader),
		parser: parser,
	}
}

func (s *LineSource) Next() (Record, error) {
	for {
		line, tooLong, err := s.readLine()
		if err == io.EOF {
			return Record{}, io.EOF
		}
		if err != nil {
			return Record{}, fmt.Errorf("reading line %d: %w", s.stats.Lines+1, err)
		}
		s.stats.Lines++

		if tooLong {
			s.stats.Skipped++
			slog.Debug("Skipping overlong line", "line", s.stats.Lines, "limit", MaxLineLength)
			continue
		}
		record, ok := s.parser.ParseLine(line)
		if !ok {
			s.stats.Skipped++
			slog.Debug("Skipping unparsable line", "line", s.stats.Lines, "text", line)
			continue
		}
		return record, nil
	}
}

func (s *LineSource) Stats() SourceStats {
	return s.stats
}

// readLine returns the next line without its terminator. A line ends at \n,
// \r\n or a bare \r; it is returned as soon as the terminator is read. Bytes
// beyond MaxLineLength are discarded and the line is reported as too long.
func (s *LineSource) readLine() (string, bool, error) {
	s.line = s.line[:0]
	tooLong := false
	for {
		c, err := s.reader.ReadByte()
		if err != nil {
			if err == io.EOF && (len(s.line) > 0 || tooLong) {
				return string(s.line), tooLong, nil
			}
			return "", false, err
		}

		afterCR := s.afterCR
		s.afterCR = false
		switch {
		case c == '\n' && afterCR:
			// second half of \r\n
			continue
		case c == '\n':
			return string(s.line), tooLong, nil
		case c == '\r':
			s.afterCR = true
			return string(s.line), tooLong, nil
		}

		if len(s.line) < MaxLineLength {
			s.line = append(s.line, c)
		} else {
			tooLong = true
		}
	}
}
