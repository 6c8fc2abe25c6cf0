package trc

import (
	"fmt"
	"math"
	"strings"
	"time"

	"cantrace/pkg/canlog"
)

const (
	// FileVersion is the TRC file version written in the header.
	FileVersion = "2.0"

	// ByteColumns is the number of data columns of a TRC row.
	ByteColumns = 8

	// Padding fills byte columns beyond the data length.
	Padding = "--"

	// StartTimeLayout is the layout of the ;$STARTTIME header value.
	StartTimeLayout = "2006-01-02 15:04:05.000000"
)

// Columns lists the column roles declared in the header: number, time
// offset, type, id, direction, length and the byte columns.
var Columns = []string{"N", "O", "T", "I", "d", "L", "B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8"}

// TRCFormatter writes PCAN TRC version 2.0 files.
//
//	;$FILEVERSION=2.0
//	;$STARTTIME=2023-11-14 22:13:20.000000
//	;$COLUMNS=N,O,T,I,d,L,B1,B2,B3,B4,B5,B6,B7,B8
//	     1)   0.000000  can0 Rx 00000123 8 11 22 33 44 55 66 77 88
//	     2)   0.500000  can0 Rx 0000001A 2 AA BB -- -- -- -- -- --
type TRCFormatter struct {
	Overflow Overflow
	Location *time.Location
}

var _ Formatter = &TRCFormatter{}

func (f *TRCFormatter) Check(r canlog.Record) error {
	if f.Overflow == OverflowReject && r.Len() > ByteColumns {
		return fmt.Errorf("%w: id %X has %d", ErrOverflow, r.ID, r.Len())
	}
	return nil
}

func (f *TRCFormatter) Header(first canlog.Normalized) string {
	var b strings.Builder
	fmt.Fprintf(&b, ";$FILEVERSION=%s\n", FileVersion)
	fmt.Fprintf(&b, ";$STARTTIME=%s\n", StartTime(first.Timestamp, f.Location).Format(StartTimeLayout))
	fmt.Fprintf(&b, ";$COLUMNS=%s\n", strings.Join(Columns, ","))
	return b.String()
}

func (f *TRCFormatter) Row(n canlog.Normalized) string {
	data := n.Data
	if f.Overflow == OverflowTruncate && len(data) > ByteColumns {
		data = data[:ByteColumns]
	}
	return fmt.Sprintf("%6d) %10.6f %5s Rx %08X %1d %s\n",
		n.Index, n.Relative, n.Interface, n.ID, len(data), byteColumns(data))
}

// byteColumns joins data and pads it to ByteColumns columns.
func byteColumns(data []string) string {
	columns := make([]string, 0, max(len(data), ByteColumns))
	columns = append(columns, data...)
	for len(columns) < ByteColumns {
		columns = append(columns, Padding)
	}
	return strings.Join(columns, " ")
}

// StartTime converts seconds since the epoch to a wall clock time in loc,
// rounded to the microsecond. A nil loc means time.Local.
func StartTime(seconds float64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMicro(int64(math.Round(seconds * 1e6))).In(loc)
}
