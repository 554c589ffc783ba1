// Package mpegts extracts Presentation Graphic Stream tracks from MPEG
// transport streams, including the 192-byte packet variant used by Blu-ray
// M2TS files. It discovers PGS elementary streams through PAT/PMT, reassembles
// their PES packets, and rebuilds each track as a ".sup" byte stream that
// [github.com/zsiec/pgs/internal/pgs] can decode.
package mpegts

// StreamTypePGS is the PMT stream type of a Presentation Graphic Stream.
const StreamTypePGS = 0x90

// Packet is a parsed transport stream packet. Payload aliases the input.
type Packet struct {
	Header  PacketHeader
	Payload []byte
}

// PacketHeader contains the header fields the demuxer acts on.
type PacketHeader struct {
	PID                       uint16
	ContinuityCounter         uint8
	HasPayload                bool
	PayloadUnitStartIndicator bool
	TransportErrorIndicator   bool
	DiscontinuityIndicator    bool
}

// PES is a reassembled PES packet from an elementary stream.
type PES struct {
	PID      uint16
	StreamID uint8
	// PTS and DTS are 33-bit 90 kHz timestamps, or -1 when absent.
	PTS  int64
	DTS  int64
	Data []byte
}

// Track is one PGS elementary stream rebuilt as ".sup" bytes.
type Track struct {
	PID  uint16
	Data []byte
	PES  int
}
