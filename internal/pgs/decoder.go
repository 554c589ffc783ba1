package pgs

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
)

const (
	magic = 0x5047 // "PG"

	// headerSize is the fixed segment header: magic, PTS, DTS, type, size.
	headerSize = 13
)

// Decoder reads packets from a PGS stream held in memory. The buffer is not
// copied and must not be modified while the decoder is in use. A Decoder is
// not safe for concurrent use; independent decoders may share a buffer.
type Decoder struct {
	r   *byteReader
	err error
}

// NewDecoder validates that buf starts with a PGS segment header and returns
// a decoder positioned at its first byte.
func NewDecoder(buf []byte) (*Decoder, error) {
	if len(buf) < headerSize || binary.BigEndian.Uint16(buf) != magic {
		return nil, &FormatError{Reason: "empty or not a PGS stream"}
	}
	return &Decoder{r: newByteReader(buf)}, nil
}

// Offset returns the cursor position: the start of the next segment, or the
// buffer length once the stream is exhausted.
func (d *Decoder) Offset() int {
	return d.r.offset()
}

// Next decodes the next segment. It returns io.EOF once the whole buffer has
// been consumed. Any other error is final: subsequent calls return it again.
func (d *Decoder) Next() (*Packet, error) {
	if d.err != nil {
		return nil, d.err
	}
	p, err := d.next()
	if err != nil {
		d.err = err
		return nil, err
	}
	return p, nil
}

func (d *Decoder) next() (*Packet, error) {
	r := d.r
	if r.remaining() == 0 {
		return nil, io.EOF
	}
	start := r.offset()

	m := r.readUint16()
	if err := r.err(); err != nil {
		return nil, err
	}
	if m != magic {
		return nil, &FormatError{Offset: start, Reason: "corrupt segment boundary"}
	}

	p := &Packet{Kind: KindEnd}
	p.PTS = Timestamp(r.readInt32())
	p.DTS = Timestamp(r.readInt32())
	typ := r.readUint8()
	size := int(r.readInt16())
	if err := r.err(); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, &FormatError{Offset: start, Reason: fmt.Sprintf("negative segment size %d", size)}
	}

	body := r.sub(size)
	if err := r.err(); err != nil {
		return nil, err
	}

	var err error
	switch typ {
	case segmentTypePalette:
		p.Kind = KindPalette
		p.Segment, err = readPalette(body, size)
	case segmentTypeObjectData:
		p.Kind = KindObjectData
		p.Segment, err = readObjectData(body)
	case segmentTypeComposition:
		p.Kind = KindComposition
		p.Segment, err = readComposition(body)
	case segmentTypeWindowDefinition:
		p.Kind = KindWindowDefinition
		p.Segment, err = readWindowDefinition(body)
	default:
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pgs: %s segment at offset %d: %w", p.Kind, start, err)
	}
	if left := body.remaining(); left != 0 {
		return nil, &FormatError{
			Offset: start,
			Reason: fmt.Sprintf("%s body declares %d bytes, %d unread", p.Kind, size, left),
		}
	}
	return p, nil
}

// All returns an iterator over the remaining packets. Iteration stops at
// end of stream or after yielding the first error.
func (d *Decoder) All() iter.Seq2[*Packet, error] {
	return func(yield func(*Packet, error) bool) {
		for {
			p, err := d.Next()
			if err == io.EOF {
				return
			}
			if !yield(p, err) || err != nil {
				return
			}
		}
	}
}

// DecodeAll decodes every packet in buf.
func DecodeAll(buf []byte) ([]*Packet, error) {
	d, err := NewDecoder(buf)
	if err != nil {
		return nil, err
	}
	var packets []*Packet
	for p, err := range d.All() {
		if err != nil {
			return packets, err
		}
		packets = append(packets, p)
	}
	return packets, nil
}
