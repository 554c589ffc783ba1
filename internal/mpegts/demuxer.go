package mpegts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
)

// Demuxer reads transport stream packets from a reader and produces the
// reassembled PES packets of selected elementary streams. Streams are
// selected by PMT stream type; by default only PGS.
type Demuxer struct {
	ctx         context.Context
	reader      io.Reader
	readBuf     []byte
	pktSize     int
	log         *slog.Logger
	streamTypes map[uint8]bool

	pmtPIDs  map[uint16]bool
	sections map[uint16][]byte
	streams  map[uint16]*pesBuffer
	out      []*PES
	eof      bool
}

// pesBuffer accumulates the payloads of one PID until the next unit start.
type pesBuffer struct {
	data    []byte
	cc      uint8
	started bool
}

// NewDemuxer creates a demuxer reading from r.
func NewDemuxer(ctx context.Context, r io.Reader, opts ...func(*Demuxer)) *Demuxer {
	d := &Demuxer{
		ctx:         ctx,
		reader:      r,
		pktSize:     packetSize,
		log:         slog.Default(),
		streamTypes: map[uint8]bool{StreamTypePGS: true},
		pmtPIDs:     make(map[uint16]bool),
		sections:    make(map[uint16][]byte),
		streams:     make(map[uint16]*pesBuffer),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "mpegts-demuxer")
	d.readBuf = make([]byte, d.pktSize)
	return d
}

// DemuxerOptPacketSize sets the packet size: 188 for TS, 192 for M2TS.
func DemuxerOptPacketSize(size int) func(*Demuxer) {
	return func(d *Demuxer) {
		d.pktSize = size
	}
}

// DemuxerOptStreamTypes replaces the set of PMT stream types to extract.
func DemuxerOptStreamTypes(types ...uint8) func(*Demuxer) {
	return func(d *Demuxer) {
		d.streamTypes = make(map[uint8]bool, len(types))
		for _, t := range types {
			d.streamTypes[t] = true
		}
	}
}

// DemuxerOptLogger sets the logger used for skipped packets and sections.
func DemuxerOptLogger(log *slog.Logger) func(*Demuxer) {
	return func(d *Demuxer) {
		if log != nil {
			d.log = log
		}
	}
}

// NextPES returns the next complete PES packet of a selected stream. It
// returns io.EOF once the reader is exhausted and every buffered packet has
// been returned. Corrupt packets and sections are skipped.
func (d *Demuxer) NextPES() (*PES, error) {
	for {
		if len(d.out) > 0 {
			pes := d.out[0]
			d.out = d.out[1:]
			return pes, nil
		}
		if d.eof {
			return nil, io.EOF
		}
		if err := d.ctx.Err(); err != nil {
			return nil, err
		}

		if _, err := io.ReadFull(d.reader, d.readBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				d.eof = true
				d.flushAll()
				continue
			}
			return nil, err
		}

		pkt, err := parsePacket(d.readBuf)
		if err != nil {
			d.log.Debug("skipping packet", "error", err)
			continue
		}
		d.handle(pkt)
	}
}

func (d *Demuxer) handle(pkt Packet) {
	h := pkt.Header
	if h.TransportErrorIndicator || len(pkt.Payload) == 0 {
		return
	}
	if h.PID == pidPAT || d.pmtPIDs[h.PID] {
		d.handleSection(pkt)
		return
	}
	if buf, ok := d.streams[h.PID]; ok {
		d.handlePES(buf, pkt)
	}
}

// handleSection accumulates a PSI section and applies it once complete.
// Payload bytes are copied because they alias the read buffer.
func (d *Demuxer) handleSection(pkt Packet) {
	pid := pkt.Header.PID
	payload := pkt.Payload
	if pkt.Header.PayloadUnitStartIndicator {
		start := 1 + int(payload[0])
		if start > len(payload) {
			delete(d.sections, pid)
			return
		}
		d.sections[pid] = append([]byte(nil), payload[start:]...)
	} else if cur, ok := d.sections[pid]; ok {
		d.sections[pid] = append(cur, payload...)
	} else {
		return
	}

	sec := d.sections[pid]
	n := sectionLen(sec)
	if n < 0 || len(sec) < n {
		return
	}
	delete(d.sections, pid)
	d.applySection(pid, sec[:n])
}

func (d *Demuxer) applySection(pid uint16, sec []byte) {
	if pid == pidPAT {
		pmts, err := parsePAT(sec)
		if err != nil {
			d.log.Debug("skipping PAT", "error", err)
			return
		}
		for _, p := range pmts {
			d.pmtPIDs[p] = true
		}
		return
	}

	streams, err := parsePMT(sec)
	if err != nil {
		d.log.Debug("skipping PMT", "pid", pid, "error", err)
		return
	}
	for _, es := range streams {
		if !d.streamTypes[es.StreamType] {
			continue
		}
		if _, ok := d.streams[es.PID]; !ok {
			d.streams[es.PID] = &pesBuffer{}
			d.log.Debug("stream discovered", "pid", es.PID, "stream_type", es.StreamType)
		}
	}
}

func (d *Demuxer) handlePES(buf *pesBuffer, pkt Packet) {
	h := pkt.Header
	if h.PayloadUnitStartIndicator {
		d.flush(h.PID, buf)
		buf.started = true
	} else {
		if !buf.started {
			return
		}
		expected := (buf.cc + 1) & 0x0F
		if h.ContinuityCounter == buf.cc {
			return // duplicate packet
		}
		if h.ContinuityCounter != expected && !h.DiscontinuityIndicator {
			d.log.Debug("continuity error, dropping PES", "pid", h.PID, "cc", h.ContinuityCounter, "expected", expected)
			buf.data = nil
			buf.started = false
			return
		}
	}
	buf.cc = h.ContinuityCounter
	buf.data = append(buf.data, pkt.Payload...)

	// Bounded PES packets are complete as soon as their length is reached.
	if len(buf.data) >= 6 {
		if n := int(buf.data[4])<<8 | int(buf.data[5]); n > 0 && len(buf.data) >= 6+n {
			d.flush(h.PID, buf)
		}
	}
}

func (d *Demuxer) flush(pid uint16, buf *pesBuffer) {
	data := buf.data
	buf.data = nil
	buf.started = false
	if len(data) == 0 {
		return
	}
	pes, err := parsePES(pid, data)
	if err != nil {
		d.log.Debug("skipping PES", "error", err)
		return
	}
	d.out = append(d.out, pes)
}

func (d *Demuxer) flushAll() {
	pids := make([]uint16, 0, len(d.streams))
	for pid := range d.streams {
		pids = append(pids, pid)
	}
	slices.Sort(pids)
	for _, pid := range pids {
		d.flush(pid, d.streams[pid])
	}
}
