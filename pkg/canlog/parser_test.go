package canlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCandumpParser_ValidLine(t *testing.T) {
	record, ok := CandumpParser{}.ParseLine("can0 123 [8] 11 22 33 44 55 66 77 88")

	require.True(t, ok)
	require.Equal(t, "can0", record.Interface)
	require.Equal(t, "123", record.RawID)
	require.Equal(t, "8", record.DeclaredLen)
	require.Equal(t, []string{"11", "22", "33", "44", "55", "66", "77", "88"}, record.Data)
	require.False(t, record.HasTimestamp)
}

func TestCandumpParser_KeepsTokensVerbatim(t *testing.T) {
	// The declared length is not checked against the data, and the id is
	// not checked for hex.
	record, ok := CandumpParser{}.ParseLine("  vcan1\tXYZ  [[3]]  aa  bb\r")

	require.True(t, ok)
	require.Equal(t, "vcan1", record.Interface)
	require.Equal(t, "XYZ", record.RawID)
	require.Equal(t, "3", record.DeclaredLen)
	require.Equal(t, []string{"aa", "bb"}, record.Data)
}

func TestCandumpParser_TooFewTokens(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"can0",
		"can0 123",
		"can0 123 [0]",
	}

	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			_, ok := CandumpParser{}.ParseLine(line)
			require.False(t, ok)
		})
	}
}

func TestCandumpLogParser_ValidLine(t *testing.T) {
	record, ok := CandumpLogParser{}.ParseLine("(1700000000.000000) can0 123#1122334455667788")

	require.True(t, ok)
	require.True(t, record.HasTimestamp)
	require.Equal(t, 1700000000.0, record.Timestamp)
	require.Equal(t, "can0", record.Interface)
	require.Equal(t, uint64(0x123), record.ID)
	require.Equal(t, []string{"11", "22", "33", "44", "55", "66", "77", "88"}, record.Data)
	require.Equal(t, 8, record.Len())
}

func TestCandumpLogParser_Variants(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		id    uint64
		iface string
		data  []string
	}{
		{
			name:  "empty data",
			line:  "(1.5) vcan0 7FF#",
			id:    0x7FF,
			iface: "vcan0",
			data:  []string{},
		},
		{
			name:  "extended id and wide whitespace",
			line:  "(1702392714.875963)  can0  00000301#1122",
			id:    0x301,
			iface: "can0",
			data:  []string{"11", "22"},
		},
		{
			name:  "lower case hex keeps case",
			line:  "(2.0) can1 1a#aabb",
			id:    0x1A,
			iface: "can1",
			data:  []string{"aa", "bb"},
		},
		{
			name:  "surrounding whitespace and CR",
			line:  "  (2.0) can1 1#01 \r",
			id:    0x1,
			iface: "can1",
			data:  []string{"01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, ok := CandumpLogParser{}.ParseLine(tt.line)
			require.True(t, ok)
			require.Equal(t, tt.id, record.ID)
			require.Equal(t, tt.iface, record.Interface)
			require.Equal(t, tt.data, record.Data)
		})
	}
}

func TestCandumpLogParser_NonMatching(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"comment", "# recorded on can0"},
		{"simple dialect", "can0 123 [2] 11 22"},
		{"timestamp without fraction", "(1700000000) can0 123#11"},
		{"missing parenthesis", "1700000000.0 can0 123#11"},
		{"missing interface", "(1700000000.0) 123#11"},
		{"missing hash", "(1700000000.0) can0 12311"},
		{"non hex id", "(1700000000.0) can0 12G#11"},
		{"non hex data", "(1700000000.0) can0 123#11ZZ"},
		{"trailing text", "(1700000000.0) can0 123#11 R"},
		{"can fd frame", "(1700000000.0) can0 123##311223344"},
		{"id overflows 64 bits", "(1700000000.0) can0 1FFFFFFFFFFFFFFFFF#11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := CandumpLogParser{}.ParseLine(tt.line)
			require.False(t, ok)
		})
	}
}

// An odd number of data digits drops the last digit. This is inherited from
// the tool this converter replaces; whether it should be a parse error is
// still open, see --strict-hex.
func TestCandumpLogParser_OddLengthData(t *testing.T) {
	record, ok := CandumpLogParser{}.ParseLine("(1.0) can0 123#AABBC")
	require.True(t, ok)
	require.Equal(t, []string{"AA", "BB"}, record.Data)

	record, ok = CandumpLogParser{}.ParseLine("(1.0) can0 123#A")
	require.True(t, ok)
	require.Empty(t, record.Data)

	_, ok = CandumpLogParser{StrictHex: true}.ParseLine("(1.0) can0 123#AABBC")
	require.False(t, ok)

	record, ok = CandumpLogParser{StrictHex: true}.ParseLine("(1.0) can0 123#AABB")
	require.True(t, ok)
	require.Equal(t, []string{"AA", "BB"}, record.Data)
}

func TestSLCANParser_Frames(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		id     uint64
		rawID  string
		length string
		data   []string
	}{
		{
			name:   "standard frame",
			line:   "t1238112233445566778899",
			id:     0x123,
			rawID:  "123",
			length: "8",
			data:   []string{"11", "22", "33", "44", "55", "66", "77", "88"},
		},
		{
			name:   "adapter time stamp is ignored",
			line:   "t12321122EA60",
			id:     0x123,
			rawID:  "123",
			length: "2",
			data:   []string{"11", "22"},
		},
		{
			name:   "extended frame",
			line:   "T123456782AABB",
			id:     0x12345678,
			rawID:  "12345678",
			length: "2",
			data:   []string{"AA", "BB"},
		},
		{
			name:   "no data",
			line:   "t7FF0\r",
			id:     0x7FF,
			rawID:  "7FF",
			length: "0",
			data:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, ok := SLCANParser{}.ParseLine(tt.line)
			require.True(t, ok)
			require.Equal(t, tt.id, record.ID)
			require.Equal(t, tt.rawID, record.RawID)
			require.Equal(t, tt.length, record.DeclaredLen)
			require.Equal(t, tt.data, record.Data)
			require.False(t, record.HasTimestamp)
		})
	}
}

func TestSLCANParser_NonMatching(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"ack", "z"},
		{"remote frame", "r1230"},
		{"short id", "t12"},
		{"missing length", "t123"},
		{"non hex id", "tXYZ1AA"},
		{"length above 8", "t1239112233445566778899"},
		{"truncated data", "t1234AABB"},
		{"non hex data", "t1232ZZ11"},
		{"version reply", "V1013"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := SLCANParser{}.ParseLine(tt.line)
			require.False(t, ok)
		})
	}
}

func TestNewLineParser(t *testing.T) {
	parser, err := NewLineParser(DialectCandumpLog, true)
	require.NoError(t, err)
	require.Equal(t, CandumpLogParser{StrictHex: true}, parser)

	parser, err = NewLineParser(DialectCandump, false)
	require.NoError(t, err)
	require.Equal(t, CandumpParser{}, parser)

	parser, err = NewLineParser(DialectSLCAN, false)
	require.NoError(t, err)
	require.Equal(t, SLCANParser{}, parser)

	_, err = NewLineParser(DialectPcap, false)
	require.Error(t, err)
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("candump-log")
	require.NoError(t, err)
	require.True(t, d.Timed())
	require.True(t, d.LineBased())

	d, err = ParseDialect("pcap")
	require.NoError(t, err)
	require.True(t, d.Timed())
	require.False(t, d.LineBased())

	require.False(t, DialectCandump.Timed())
	require.False(t, DialectSLCAN.Timed())

	_, err = ParseDialect("asc")
	require.Error(t, err)

	require.Equal(t, []Dialect{DialectCandump, DialectCandumpLog, DialectPcap, DialectSLCAN}, Dialects())
}
