package mpegts

import "fmt"

// mpeg2Poly is the CRC-32/MPEG-2 polynomial, processed MSB first. The
// reflected tables of hash/crc32 cannot compute it.
const mpeg2Poly = 0x04C11DB7

// crcTable is a 256-word table for an unreflected CRC32.
type crcTable [256]uint32

var mpeg2Table = makeCRCTable(mpeg2Poly)

// makeCRCTable builds the MSB-first table for poly.
func makeCRCTable(poly uint32) *crcTable {
	t := new(crcTable)
	for i := range t {
		crc := uint32(i) << 24
		for range 8 {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

// updateCRC feeds p into crc using tab.
func updateCRC(crc uint32, tab *crcTable, p []byte) uint32 {
	for _, b := range p {
		crc = crc<<8 ^ tab[byte(crc>>24)^b]
	}
	return crc
}

// crc32MPEG2 returns the PSI section checksum of data: initial value
// 0xFFFFFFFF, no final XOR.
func crc32MPEG2(data []byte) uint32 {
	return updateCRC(0xFFFFFFFF, mpeg2Table, data)
}

// checkCRC verifies a PSI section whose last four bytes are its CRC32. Run
// over the whole section including its CRC, the checksum is zero.
func checkCRC(section []byte) error {
	if len(section) < 4 {
		return fmt.Errorf("mpegts: section too short for CRC32")
	}
	if crc32MPEG2(section) != 0 {
		return fmt.Errorf("mpegts: CRC32 mismatch")
	}
	return nil
}
