package mpegts

import "fmt"

// parsePES parses a complete PES packet. Only stream IDs with the optional
// header are accepted; PGS is carried on private_stream_1 (0xBD).
func parsePES(pid uint16, payload []byte) (*PES, error) {
	if len(payload) < 9 || payload[0] != 0 || payload[1] != 0 || payload[2] != 1 {
		return nil, fmt.Errorf("mpegts: PID 0x%X: invalid PES start", pid)
	}
	pes := &PES{PID: pid, StreamID: payload[3], PTS: -1, DTS: -1}

	flags := payload[7] >> 6
	dataStart := 9 + int(payload[8])
	if dataStart > len(payload) {
		return nil, fmt.Errorf("mpegts: PID 0x%X: PES header exceeds payload", pid)
	}
	if flags&0x2 != 0 && len(payload) >= 14 {
		pes.PTS = parseTimestamp(payload[9:14])
	}
	if flags == 0x3 && len(payload) >= 19 {
		pes.DTS = parseTimestamp(payload[14:19])
	}

	end := len(payload)
	if n := int(payload[4])<<8 | int(payload[5]); n > 0 && 6+n < end {
		end = 6 + n
	}
	if dataStart > end {
		dataStart = end
	}
	pes.Data = payload[dataStart:end]
	return pes, nil
}

// parseTimestamp decodes a 33-bit PTS or DTS from its 5-byte PES encoding.
func parseTimestamp(b []byte) int64 {
	return int64(b[0]>>1&0x07)<<30 |
		int64(b[1])<<22 |
		int64(b[2]>>1)<<15 |
		int64(b[3])<<7 |
		int64(b[4]>>1)
}
