package mpegts

import "fmt"

const (
	packetSize     = 188
	packetSizeM2TS = 192 // 4-byte arrival timestamp + TS packet
	syncByte       = 0x47
)

// Sniff reports the packet size of a transport stream held in buf: 188 for
// plain TS, 192 for M2TS. It requires two consecutive sync bytes.
func Sniff(buf []byte) (int, bool) {
	for _, size := range []int{packetSize, packetSizeM2TS} {
		prefix := size - packetSize
		if len(buf) >= prefix+size+1 && buf[prefix] == syncByte && buf[prefix+size] == syncByte {
			return size, true
		}
	}
	return 0, false
}

// parsePacket parses one TS packet. buf may carry the M2TS timestamp prefix.
func parsePacket(buf []byte) (Packet, error) {
	switch len(buf) {
	case packetSize:
	case packetSizeM2TS:
		buf = buf[packetSizeM2TS-packetSize:]
	default:
		return Packet{}, fmt.Errorf("mpegts: packet size %d", len(buf))
	}
	if buf[0] != syncByte {
		return Packet{}, fmt.Errorf("mpegts: invalid sync byte 0x%02X", buf[0])
	}

	var p Packet
	h := &p.Header
	h.TransportErrorIndicator = buf[1]&0x80 != 0
	h.PayloadUnitStartIndicator = buf[1]&0x40 != 0
	h.PID = uint16(buf[1]&0x1F)<<8 | uint16(buf[2])
	h.HasPayload = buf[3]&0x10 != 0
	h.ContinuityCounter = buf[3] & 0x0F

	offset := 4
	if buf[3]&0x20 != 0 {
		afLen := int(buf[4])
		if afLen > 0 {
			h.DiscontinuityIndicator = buf[5]&0x80 != 0
		}
		offset += 1 + afLen
	}
	if h.HasPayload && offset < packetSize {
		p.Payload = buf[offset:packetSize]
	}
	return p, nil
}
