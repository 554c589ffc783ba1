package mpegts

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const supMagic = 0x5047

// AppendSUP appends the segments carried by a PGS PES packet to dst with
// ".sup" framing: each segment is prefixed by the magic and the packet's
// PTS and DTS, truncated to 32 bits. Absent timestamps are written as 0.
func AppendSUP(dst []byte, pes *PES) ([]byte, error) {
	var pts, dts uint32
	if pes.PTS >= 0 {
		pts = uint32(pes.PTS)
	}
	if pes.DTS >= 0 {
		dts = uint32(pes.DTS)
	}

	data := pes.Data
	for len(data) > 0 {
		if len(data) < 3 {
			return dst, fmt.Errorf("mpegts: PID 0x%X: truncated segment header", pes.PID)
		}
		n := 3 + int(binary.BigEndian.Uint16(data[1:3]))
		if n > len(data) {
			return dst, fmt.Errorf("mpegts: PID 0x%X: segment of %d bytes exceeds PES payload of %d", pes.PID, n, len(data))
		}
		dst = binary.BigEndian.AppendUint16(dst, supMagic)
		dst = binary.BigEndian.AppendUint32(dst, pts)
		dst = binary.BigEndian.AppendUint32(dst, dts)
		dst = append(dst, data[:n]...)
		data = data[n:]
	}
	return dst, nil
}

// ExtractPGS demuxes r and returns every PGS track in order of first
// appearance, each rebuilt as ".sup" bytes.
func ExtractPGS(ctx context.Context, r io.Reader, opts ...func(*Demuxer)) ([]*Track, error) {
	d := NewDemuxer(ctx, r, opts...)
	var tracks []*Track
	byPID := make(map[uint16]*Track)
	for {
		pes, err := d.NextPES()
		if errors.Is(err, io.EOF) {
			return tracks, nil
		}
		if err != nil {
			return tracks, err
		}
		t, ok := byPID[pes.PID]
		if !ok {
			t = &Track{PID: pes.PID}
			byPID[pes.PID] = t
			tracks = append(tracks, t)
		}
		if t.Data, err = AppendSUP(t.Data, pes); err != nil {
			return tracks, err
		}
		t.PES++
	}
}
