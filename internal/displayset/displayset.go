// Package displayset groups decoded PGS packets into display sets: the run of
// composition, window, palette, and object segments closed by an end segment
// that together describe one on-screen subtitle state. Object data split
// across several segments is reassembled per object ID.
package displayset

import (
	"errors"
	"fmt"

	"github.com/zsiec/pgs/internal/pgs"
)

// ErrOrphanFragment is returned when a continuation fragment arrives for an
// object whose first fragment was never seen.
var ErrOrphanFragment = errors.New("displayset: fragment without a first fragment")

// Object is a bitmap object reassembled from one or more object segments.
type Object struct {
	ID         uint16 `json:"id"`
	Version    uint8  `json:"version"`
	Width      uint16 `json:"width"`
	Height     uint16 `json:"height"`
	DataLength uint32 `json:"dataLength"`
	Data       []byte `json:"-"`
	Fragments  int    `json:"fragments"`
	Complete   bool   `json:"complete"`
}

// DisplaySet is one composition and the definitions that accompany it.
// Composition is nil if the set did not start with a composition segment.
type DisplaySet struct {
	PTS         pgs.Timestamp           `json:"pts"`
	DTS         pgs.Timestamp           `json:"dts"`
	Composition *pgs.CompositionSegment `json:"composition,omitempty"`
	Windows     []pgs.Window            `json:"windows,omitempty"`
	Palettes    []*pgs.PaletteSegment   `json:"palettes,omitempty"`
	Objects     []*Object               `json:"objects,omitempty"`
	Packets     int                     `json:"packets"`
	Ended       bool                    `json:"ended"`
}

// EpochStart reports whether the set begins a new epoch, discarding all
// previously defined objects, windows, and palettes.
func (ds *DisplaySet) EpochStart() bool {
	return ds.Composition != nil && ds.Composition.State == pgs.StateEpochStart
}

// Assembler accumulates packets into display sets. It is not safe for
// concurrent use.
type Assembler struct {
	cur     *DisplaySet
	pending map[uint16]*Object
}

// NewAssembler returns an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{pending: make(map[uint16]*Object)}
}

// Add feeds one packet. It returns a display set when p completes one: on an
// end packet, or when a composition segment arrives before the previous set
// was ended. Otherwise it returns nil.
func (a *Assembler) Add(p *pgs.Packet) (*DisplaySet, error) {
	var done *DisplaySet
	if p.Kind == pgs.KindComposition && a.cur != nil && a.cur.Composition != nil {
		done = a.Flush()
	}
	if a.cur == nil {
		a.cur = &DisplaySet{PTS: p.PTS, DTS: p.DTS}
	}
	ds := a.cur
	ds.Packets++

	switch seg := p.Segment.(type) {
	case *pgs.CompositionSegment:
		ds.Composition = seg
	case *pgs.WindowDefinitionSegment:
		ds.Windows = append(ds.Windows, seg.Windows...)
	case *pgs.PaletteSegment:
		ds.Palettes = append(ds.Palettes, seg)
	case *pgs.ObjectDataSegment:
		if err := a.addObject(ds, seg); err != nil {
			return done, err
		}
	case nil:
		ds.Ended = true
		return a.Flush(), nil
	}
	return done, nil
}

// addObject starts a new object or appends a fragment to a pending one. A
// segment for an object with a pending first fragment continues it unless it
// is itself a first fragment.
func (a *Assembler) addObject(ds *DisplaySet, seg *pgs.ObjectDataSegment) error {
	obj, pending := a.pending[seg.ID]
	if pending && seg.Sequence != pgs.SequenceFirst {
		if seg.Image != nil {
			obj.Data = append(obj.Data, seg.Image.Data...)
		}
		obj.Fragments++
		if seg.Sequence == pgs.SequenceLast {
			obj.Complete = true
			delete(a.pending, seg.ID)
		}
		return nil
	}
	if seg.Sequence == pgs.SequenceLast {
		return fmt.Errorf("%w: object %d", ErrOrphanFragment, seg.ID)
	}

	obj = &Object{
		ID:         seg.ID,
		Version:    seg.Version,
		Width:      seg.Width(),
		Height:     seg.Height(),
		DataLength: seg.DataLength,
		Fragments:  1,
		Complete:   seg.Sequence == pgs.SequenceFirstAndLast,
	}
	if seg.Image != nil {
		obj.Data = append([]byte(nil), seg.Image.Data...)
	}
	ds.Objects = append(ds.Objects, obj)
	if obj.Complete {
		delete(a.pending, seg.ID)
	} else {
		a.pending[seg.ID] = obj
	}
	return nil
}

// Flush returns the set in progress, ended or not, and resets the assembler.
// It returns nil if no packets were added since the last set completed.
func (a *Assembler) Flush() *DisplaySet {
	ds := a.cur
	a.cur = nil
	clear(a.pending)
	return ds
}

// Collect decodes every remaining packet from dec and returns the display
// sets in stream order. A trailing set without an end segment is included
// with Ended false.
func Collect(dec *pgs.Decoder) ([]*DisplaySet, error) {
	a := NewAssembler()
	var sets []*DisplaySet
	for p, err := range dec.All() {
		if err != nil {
			return sets, err
		}
		ds, err := a.Add(p)
		if ds != nil {
			sets = append(sets, ds)
		}
		if err != nil {
			return sets, err
		}
	}
	if ds := a.Flush(); ds != nil {
		sets = append(sets, ds)
	}
	return sets, nil
}
