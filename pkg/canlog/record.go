package canlog

import (
	"fmt"
	"sort"
)

// Record is one CAN frame recovered from a log line.
type Record struct {
	Timestamp    float64 // seconds since the epoch, only valid if HasTimestamp
	HasTimestamp bool
	Interface    string
	ID           uint64 // arbitration id, parsed from hex
	RawID        string // id as written in the log
	DeclaredLen  string // declared data length, empty if the dialect has none
	Data         []string
}

// Len returns the number of data bytes carried by the record.
func (r Record) Len() int {
	return len(r.Data)
}

// Dialect names an input log format.
type Dialect string

const (
	DialectCandump    Dialect = "candump"
	DialectCandumpLog Dialect = "candump-log"
	DialectSLCAN      Dialect = "slcan"
	DialectPcap       Dialect = "pcap"
)

var dialects = map[Dialect]struct {
	timed       bool
	description string
}{
	DialectCandump:    {false, "candump default output: can0  123   [8]  11 22 ..."},
	DialectCandumpLog: {true, "candump -L log: (1700000000.000000) can0 123#1122"},
	DialectSLCAN:      {false, "Lawicel ASCII frames: t1238112233445566778899"},
	DialectPcap:       {true, "pcap capture with link type CAN_SOCKETCAN"},
}

// Dialects returns all known dialects sorted by name.
func Dialects() []Dialect {
	result := make([]Dialect, 0, len(dialects))
	for d := range dialects {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// ParseDialect validates a dialect name.
func ParseDialect(name string) (Dialect, error) {
	d := Dialect(name)
	if _, ok := dialects[d]; !ok {
		return "", fmt.Errorf("unknown dialect %q", name)
	}
	return d, nil
}

// Timed reports whether records of this dialect carry real timestamps.
func (d Dialect) Timed() bool {
	return dialects[d].timed
}

// Description returns a one line example of the dialect.
func (d Dialect) Description() string {
	return dialects[d].description
}

// LineBased reports whether the dialect is parsed line by line.
func (d Dialect) LineBased() bool {
	return d != DialectPcap
}
