package canlog

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// LinkTypeCANSocketCAN is LINKTYPE_CAN_SOCKETCAN from the tcpdump link type
// registry.
const LinkTypeCANSocketCAN = layers.LinkType(227)

// ErrLinkType is returned when a capture does not contain SocketCAN frames.
var ErrLinkType = errors.New("capture link type is not CAN_SOCKETCAN")

// SocketCAN can_id flags and masks, see include/uapi/linux/can.h.
const (
	canEffFlag = 0x80000000
	canRtrFlag = 0x40000000
	canErrFlag = 0x20000000
	canEffMask = 0x1FFFFFFF
	canSffMask = 0x7FF

	canFrameHeader = 8
)

var pcapngMagic = []byte{0x0A, 0x0D, 0x0D, 0x0A}

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
}

// PcapSource reads CAN frames from a pcap or pcapng capture.
type PcapSource struct {
	packets  packetReader
	linkType layers.LinkType
	iface    string
	stats    SourceStats
}

var _ Source = &PcapSource{}

// NewPcapSource reads the capture header from reader. iface names the
// interface written into every record, since pcap files do not carry it per
// packet.
func NewPcapSource(reader io.Reader, iface string) (*PcapSource, error) {
	buffered := bufio.NewReader(reader)
	magic, err := buffered.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("reading capture header: %w", err)
	}

	source := &PcapSource{iface: iface}
	if bytes.Equal(magic, pcapngMagic) {
		ng, err := pcapgo.NewNgReader(buffered, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("reading pcapng header: %w", err)
		}
		source.packets = ng
		source.linkType = ng.LinkType()
	} else {
		r, err := pcapgo.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("reading pcap header: %w", err)
		}
		source.packets = r
		source.linkType = r.LinkType()
	}

	if source.linkType != LinkTypeCANSocketCAN {
		return nil, fmt.Errorf("%w: got %d", ErrLinkType, source.linkType)
	}
	return source, nil
}

func (s *PcapSource) Next() (Record, error) {
	for {
		data, ci, err := s.packets.ReadPacketData()
		if err == io.EOF {
			return Record{}, io.EOF
		}
		if err != nil {
			return Record{}, fmt.Errorf("reading packet %d: %w", s.stats.Lines+1, err)
		}
		s.stats.Lines++

		record, ok := DecodeSocketCAN(data)
		if !ok {
			s.stats.Skipped++
			slog.Debug("Skipping packet", "packet", s.stats.Lines, "length", len(data))
			continue
		}
		ts := ci.Timestamp
		record.Timestamp = float64(ts.Unix()) + float64(ts.Nanosecond())/1e9
		record.HasTimestamp = true
		record.Interface = s.iface
		return record, nil
	}
}

func (s *PcapSource) Stats() SourceStats {
	return s.stats
}

// DecodeSocketCAN decodes one LINKTYPE_CAN_SOCKETCAN packet. Error frames,
// remote frames and truncated packets are rejected. The id in this link type
// is in network byte order.
func DecodeSocketCAN(packet []byte) (Record, bool) {
	if len(packet) < canFrameHeader {
		return Record{}, false
	}
	canID := binary.BigEndian.Uint32(packet[0:4])
	if canID&(canErrFlag|canRtrFlag) != 0 {
		return Record{}, false
	}
	length := int(packet[4])
	if len(packet) < canFrameHeader+length {
		return Record{}, false
	}

	var id uint32
	var rawID string
	if canID&canEffFlag != 0 {
		id = canID & canEffMask
		rawID = fmt.Sprintf("%08X", id)
	} else {
		id = canID & canSffMask
		rawID = fmt.Sprintf("%03X", id)
	}

	payload := packet[canFrameHeader : canFrameHeader+length]
	data := make([]string, len(payload))
	for i, b := range payload {
		data[i] = fmt.Sprintf("%02X", b)
	}

	return Record{
		ID:          uint64(id),
		RawID:       rawID,
		DeclaredLen: strconv.Itoa(length),
		Data:        data,
	}, true
}

// EncodeSocketCAN builds a LINKTYPE_CAN_SOCKETCAN packet for a data frame.
// Ids above 0x7FF get the extended flag.
func EncodeSocketCAN(id uint32, payload []byte) []byte {
	canID := id
	if id > canSffMask {
		canID = (id & canEffMask) | canEffFlag
	}
	packet := make([]byte, canFrameHeader+len(payload))
	binary.BigEndian.PutUint32(packet[0:4], canID)
	packet[4] = byte(len(payload))
	copy(packet[canFrameHeader:], payload)
	return packet
}
