package mpegts

import "fmt"

const (
	pidPAT     = 0x0000
	tableIDPAT = 0x00
	tableIDPMT = 0x02
)

// elementaryStream is one entry of a PMT.
type elementaryStream struct {
	PID        uint16
	StreamType uint8
}

// sectionLen returns the total length of the PSI section at the start of
// data, or -1 if the header is incomplete.
func sectionLen(data []byte) int {
	if len(data) < 3 {
		return -1
	}
	return 3 + (int(data[1]&0x0F)<<8 | int(data[2]))
}

// parsePAT returns the PMT PIDs of every program in a PAT section.
func parsePAT(section []byte) ([]uint16, error) {
	if len(section) < 12 || section[0] != tableIDPAT {
		return nil, fmt.Errorf("mpegts: malformed PAT")
	}
	if err := checkCRC(section); err != nil {
		return nil, fmt.Errorf("mpegts: PAT: %w", err)
	}
	var pids []uint16
	for i := 8; i+4 <= len(section)-4; i += 4 {
		program := uint16(section[i])<<8 | uint16(section[i+1])
		if program == 0 {
			continue // network PID
		}
		pids = append(pids, uint16(section[i+2]&0x1F)<<8|uint16(section[i+3]))
	}
	return pids, nil
}

// parsePMT returns the elementary streams listed in a PMT section.
func parsePMT(section []byte) ([]elementaryStream, error) {
	if len(section) < 16 || section[0] != tableIDPMT {
		return nil, fmt.Errorf("mpegts: malformed PMT")
	}
	if err := checkCRC(section); err != nil {
		return nil, fmt.Errorf("mpegts: PMT: %w", err)
	}
	end := len(section) - 4
	offset := 12 + (int(section[10]&0x0F)<<8 | int(section[11]))

	var streams []elementaryStream
	for offset+5 <= end {
		streams = append(streams, elementaryStream{
			StreamType: section[offset],
			PID:        uint16(section[offset+1]&0x1F)<<8 | uint16(section[offset+2]),
		})
		offset += 5 + (int(section[offset+3]&0x0F)<<8 | int(section[offset+4]))
	}
	return streams, nil
}
