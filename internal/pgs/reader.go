package pgs

import "encoding/binary"

// byteReader reads big-endian fields from a byte slice. A read past the end
// of data records a TruncatedStreamError and yields zero values; callers
// check err once a record has been read.
type byteReader struct {
	data  []byte
	pos   int
	base  int // stream offset of data[0]
	short *TruncatedStreamError
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

func (r *byteReader) offset() int {
	return r.base + r.pos
}

func (r *byteReader) remaining() int {
	return len(r.data) - r.pos
}

func (r *byteReader) err() error {
	if r.short != nil {
		return r.short
	}
	return nil
}

// need reports whether n more bytes can be read. The first failing call
// records the shortfall and moves the cursor to the end of data.
func (r *byteReader) need(n int) bool {
	if r.short != nil {
		return false
	}
	if n > r.remaining() {
		r.short = &TruncatedStreamError{Offset: r.offset(), Want: n, Have: r.remaining()}
		r.pos = len(r.data)
		return false
	}
	return true
}

func (r *byteReader) readUint8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *byteReader) readUint16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *byteReader) readInt16() int16 {
	return int16(r.readUint16())
}

func (r *byteReader) readUint24() uint32 {
	if !r.need(3) {
		return 0
	}
	b := r.data[r.pos:]
	r.pos += 3
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func (r *byteReader) readInt32() int32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return int32(v)
}

// readBytes returns the next n bytes without copying. The result's capacity
// is clipped so appends by the caller cannot overwrite the buffer.
func (r *byteReader) readBytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b
}

// sub returns a reader bounded to the next n bytes and advances r past them.
func (r *byteReader) sub(n int) *byteReader {
	s := &byteReader{base: r.offset()}
	s.data = r.readBytes(n)
	return s
}
