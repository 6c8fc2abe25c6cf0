package canlog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LineParser extracts a Record from one line of text. It returns false if the
// line does not belong to the dialect.
type LineParser interface {
	ParseLine(line string) (Record, bool)
}

// NewLineParser returns the parser for a line based dialect.
func NewLineParser(d Dialect, strictHex bool) (LineParser, error) {
	switch d {
	case DialectCandump:
		return CandumpParser{}, nil
	case DialectCandumpLog:
		return CandumpLogParser{StrictHex: strictHex}, nil
	case DialectSLCAN:
		return SLCANParser{}, nil
	default:
		return nil, fmt.Errorf("dialect %q is not line based", d)
	}
}

// CandumpParser parses the default candump output.
type CandumpParser struct{}

var _ LineParser = CandumpParser{}

func (CandumpParser) ParseLine(line string) (Record, bool) {
	parts := strings.Fields(line)
	if len(parts) < 4 {
		return Record{}, false
	}
	return Record{
		Interface:   parts[0],
		RawID:       parts[1],
		DeclaredLen: strings.Trim(parts[2], "[]"),
		Data:        parts[3:],
	}, true
}

// Example: (1702392714.875963)  can0  00000301#1122334455667788
var candumpLogLine = regexp.MustCompile(`^\((\d+\.\d+)\)\s+(\S+)\s+([0-9A-Fa-f]+)#([0-9A-Fa-f]*)$`)

// CandumpLogParser parses candump -L lines.
type CandumpLogParser struct {
	// StrictHex rejects lines whose data has an odd number of hex digits.
	// Otherwise the last digit is dropped.
	StrictHex bool
}

var _ LineParser = CandumpLogParser{}

func (p CandumpLogParser) ParseLine(line string) (Record, bool) {
	m := candumpLogLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Record{}, false
	}
	ts, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Record{}, false
	}
	id, err := strconv.ParseUint(m[3], 16, 64)
	if err != nil {
		return Record{}, false
	}
	data := m[4]
	if p.StrictHex && len(data)%2 != 0 {
		return Record{}, false
	}
	return Record{
		Timestamp:    ts,
		HasTimestamp: true,
		Interface:    m[2],
		ID:           id,
		RawID:        m[3],
		Data:         hexPairs(data),
	}, true
}

// hexPairs splits s into two character strings. A trailing single character
// is dropped.
func hexPairs(s string) []string {
	pairs := make([]string, 0, len(s)/2)
	for i := 0; i+1 < len(s); i += 2 {
		pairs = append(pairs, s[i:i+2])
	}
	return pairs
}

// SLCANParser parses Lawicel ASCII data frames.
type SLCANParser struct{}

var _ LineParser = SLCANParser{}

func (SLCANParser) ParseLine(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Record{}, false
	}

	var idLen int
	switch line[0] {
	case 't':
		idLen = 3
	case 'T':
		idLen = 8
	default:
		return Record{}, false
	}

	if len(line) < 1+idLen+1 {
		return Record{}, false
	}
	rawID := line[1 : 1+idLen]
	id, err := strconv.ParseUint(rawID, 16, 32)
	if err != nil {
		return Record{}, false
	}

	lengthHex := line[1+idLen : 2+idLen]
	length, err := strconv.ParseUint(lengthHex, 16, 8)
	if err != nil || length > 8 {
		return Record{}, false
	}

	start := 2 + idLen
	end := start + int(length)*2
	if len(line) < end {
		return Record{}, false
	}
	data := line[start:end]
	if !isHex(data) {
		return Record{}, false
	}

	return Record{
		RawID:       rawID,
		ID:          id,
		DeclaredLen: lengthHex,
		Data:        hexPairs(data),
	}, true
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
