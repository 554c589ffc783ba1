// Package stats accumulates per-stream PGS telemetry: segment counts by
// kind, display sets, epoch starts, encoded object bytes, and the span of
// presentation timestamps.
package stats

import (
	"sync"
	"sync/atomic"

	"github.com/zsiec/pgs/internal/pgs"
)

// Snapshot is a point-in-time view of a Recorder.
type Snapshot struct {
	Packets            int64            `json:"packets"`
	Segments           map[string]int64 `json:"segments"`
	DisplaySets        int64            `json:"displaySets"`
	EpochStarts        int64            `json:"epochStarts"`
	CompositionObjects int64            `json:"compositionObjects"`
	PaletteEntries     int64            `json:"paletteEntries"`
	ObjectBytes        int64            `json:"objectBytes"`
	FirstPTS           int64            `json:"firstPTS"`
	LastPTS            int64            `json:"lastPTS"`
	DurationMs         int64            `json:"durationMs"`
}

// Recorder counts packets as they are decoded. It is safe for concurrent
// use, so a reporter may Snapshot while a decoder records.
type Recorder struct {
	packets        atomic.Int64
	displaySets    atomic.Int64
	epochStarts    atomic.Int64
	compObjects    atomic.Int64
	paletteEntries atomic.Int64
	objectBytes    atomic.Int64

	mu       sync.Mutex
	kinds    map[pgs.SegmentKind]int64
	firstPTS pgs.Timestamp
	lastPTS  pgs.Timestamp
	seenPTS  bool
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{kinds: make(map[pgs.SegmentKind]int64)}
}

// Record accounts for one decoded packet. An end packet closes a display set.
func (r *Recorder) Record(p *pgs.Packet) {
	r.packets.Add(1)

	switch seg := p.Segment.(type) {
	case *pgs.CompositionSegment:
		r.compObjects.Add(int64(len(seg.Objects)))
		if seg.State == pgs.StateEpochStart {
			r.epochStarts.Add(1)
		}
	case *pgs.PaletteSegment:
		r.paletteEntries.Add(int64(len(seg.Entries)))
	case *pgs.ObjectDataSegment:
		if seg.Image != nil {
			r.objectBytes.Add(int64(len(seg.Image.Data)))
		}
	case nil:
		r.displaySets.Add(1)
	}

	r.mu.Lock()
	r.kinds[p.Kind]++
	if !r.seenPTS {
		r.firstPTS = p.PTS
		r.seenPTS = true
	}
	r.lastPTS = p.PTS
	r.mu.Unlock()
}

// Snapshot returns the current counters.
func (r *Recorder) Snapshot() Snapshot {
	s := Snapshot{
		Packets:            r.packets.Load(),
		DisplaySets:        r.displaySets.Load(),
		EpochStarts:        r.epochStarts.Load(),
		CompositionObjects: r.compObjects.Load(),
		PaletteEntries:     r.paletteEntries.Load(),
		ObjectBytes:        r.objectBytes.Load(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s.Segments = make(map[string]int64, len(r.kinds))
	for k, n := range r.kinds {
		s.Segments[k.String()] = n
	}
	if r.seenPTS {
		s.FirstPTS = int64(r.firstPTS)
		s.LastPTS = int64(r.lastPTS)
		s.DurationMs = (r.lastPTS.Duration() - r.firstPTS.Duration()).Milliseconds()
	}
	return s
}
