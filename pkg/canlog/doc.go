// Package canlog reads CAN bus logs written by common capture tools and turns
// them into a stream of records.
//
// # Dialects
//
// Every dialect has a LineParser (or, for binary captures, a Source) that maps
// one line of text to one Record, or reports a non-match. Non-matching lines
// are skipped; they are never an error.
//
// # candump
//
// The default output of candump. No timestamp.
//
//	can0  123   [8]  11 22 33 44 55 66 77 88
//
// Fields:
//
//   - interface: first token, used verbatim
//   - id: second token, used verbatim (not validated as hex)
//   - declared length: third token with the surrounding brackets removed
//   - data: all remaining tokens, passed through unchanged
//
// A line with fewer than four whitespace separated tokens is skipped.
//
// # candump-log
//
// The log format of candump -L (and candump -l files).
//
//	(1700000000.000000) can0 123#1122334455667788
//
// The whole line must have this shape:
//
//	(seconds.fraction) interface hexid#hexdata
//
// The data part may be empty. It is split into pairs of hex characters. An odd
// trailing character is dropped unless the parser is strict.
//
// # slcan
//
// Lawicel ASCII frames as written by SLCAN serial adapters.
//
//	t1238112233445566778899AB
//	T1234567821AABB
//
//   - t: 3 hex digits standard id, T: 8 hex digits extended id
//   - one hex digit data length (0 to 8)
//   - data length pairs of hex digits
//   - anything after the data (the adapter time stamp) is ignored
//
// Remote frames (r, R) and status replies are skipped.
//
// # pcap
//
// Binary captures with link type LINKTYPE_CAN_SOCKETCAN (227), for example
// from tcpdump -i can0 -w file.pcap. See PcapSource.
//
// # Line endings
//
// Lines may end with \n, \r\n or a bare \r. SLCAN adapters terminate frames
// with \r only, so a line is handed out as soon as its terminator arrives.
// Lines longer than MaxLineLength are skipped like any other line that does
// not parse.
package canlog
