package pgs

import (
	"fmt"
	"time"
)

// Segment type codes as they appear in the segment header.
const (
	segmentTypePalette          = 0x14
	segmentTypeObjectData       = 0x15
	segmentTypeComposition      = 0x16
	segmentTypeWindowDefinition = 0x17
)

// SegmentKind identifies the body layout of a decoded segment.
type SegmentKind uint8

// Segment kinds. KindEnd is reported for any type code other than the four
// known bodies, which includes the 0x80 end-of-display-set segment.
const (
	KindEnd SegmentKind = iota
	KindComposition
	KindWindowDefinition
	KindPalette
	KindObjectData
)

func (k SegmentKind) String() string {
	switch k {
	case KindComposition:
		return "PCS"
	case KindWindowDefinition:
		return "WDS"
	case KindPalette:
		return "PDS"
	case KindObjectData:
		return "ODS"
	case KindEnd:
		return "END"
	}
	return fmt.Sprintf("SegmentKind(%d)", uint8(k))
}

func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Timestamp is a PTS or DTS value in ticks of the 90 kHz presentation clock.
type Timestamp int32

// Duration converts the timestamp to a time.Duration.
func (ts Timestamp) Duration() time.Duration {
	return time.Duration(ts) * time.Millisecond / 90
}

// Packet is one decoded segment. Segment is nil when Kind is KindEnd.
type Packet struct {
	PTS     Timestamp   `json:"pts"`
	DTS     Timestamp   `json:"dts"`
	Kind    SegmentKind `json:"kind"`
	Segment Segment     `json:"segment,omitempty"`
}

// Segment is implemented by the four typed segment bodies.
type Segment interface {
	Kind() SegmentKind
}

// CompositionState describes how a composition relates to the epoch.
type CompositionState uint8

const (
	StateNormal CompositionState = iota
	StateAcquisitionPoint
	StateEpochStart
)

// compositionStateFromByte maps 0x00 and 0x40 exactly; every other value is
// treated as an epoch start.
func compositionStateFromByte(b uint8) CompositionState {
	switch b {
	case 0x00:
		return StateNormal
	case 0x40:
		return StateAcquisitionPoint
	default:
		return StateEpochStart
	}
}

func (s CompositionState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateAcquisitionPoint:
		return "acquisitionPoint"
	case StateEpochStart:
		return "epochStart"
	}
	return fmt.Sprintf("CompositionState(%d)", uint8(s))
}

func (s CompositionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CompositionSegment (PCS) describes the composition of one display set.
type CompositionSegment struct {
	Width             uint16              `json:"width"`
	Height            uint16              `json:"height"`
	FrameRate         uint8               `json:"frameRate"`
	CompositionNumber uint16              `json:"compositionNumber"`
	State             CompositionState    `json:"state"`
	PaletteUpdate     bool                `json:"paletteUpdate"`
	PaletteID         uint8               `json:"paletteId"`
	Objects           []CompositionObject `json:"objects"`
}

func (*CompositionSegment) Kind() SegmentKind { return KindComposition }

// CompositionObject places an object inside a window. Crop is non-nil only
// when the object's cropped flag is set.
type CompositionObject struct {
	ObjectID uint16 `json:"objectId"`
	WindowID uint8  `json:"windowId"`
	X        uint16 `json:"x"`
	Y        uint16 `json:"y"`
	Crop     *Crop  `json:"crop,omitempty"`
}

// Cropped reports whether the object carries a cropping rectangle.
func (o CompositionObject) Cropped() bool {
	return o.Crop != nil
}

// Crop is the visible region of a cropped composition object.
type Crop struct {
	X      uint16 `json:"x"`
	Y      uint16 `json:"y"`
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
}

// WindowDefinitionSegment (WDS) lists the screen regions objects draw into.
type WindowDefinitionSegment struct {
	Windows []Window `json:"windows"`
}

func (*WindowDefinitionSegment) Kind() SegmentKind { return KindWindowDefinition }

// Window is a rectangular screen region.
type Window struct {
	ID     uint8  `json:"id"`
	X      uint16 `json:"x"`
	Y      uint16 `json:"y"`
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
}

// PaletteSegment (PDS) defines or updates palette entries.
type PaletteSegment struct {
	ID      uint8          `json:"id"`
	Version uint8          `json:"version"`
	Entries []PaletteEntry `json:"entries"`
}

func (*PaletteSegment) Kind() SegmentKind { return KindPalette }

// PaletteEntry binds a palette index to a color.
type PaletteEntry struct {
	ID    uint8 `json:"id"`
	Color Color `json:"color"`
}

// Color is a Y'CrCb color with alpha, as stored in the stream.
type Color struct {
	Y  uint8 `json:"y"`
	Cr uint8 `json:"cr"`
	Cb uint8 `json:"cb"`
	A  uint8 `json:"a"`
}

// SequenceFlag marks an object segment's position in a fragmented object.
type SequenceFlag uint8

const (
	SequenceFirstAndLast SequenceFlag = iota
	SequenceFirst
	SequenceLast
)

// sequenceFlagFromByte maps 0x40 and 0x80 exactly; every other value is
// treated as a complete, unfragmented object.
func sequenceFlagFromByte(b uint8) SequenceFlag {
	switch b {
	case 0x40:
		return SequenceLast
	case 0x80:
		return SequenceFirst
	default:
		return SequenceFirstAndLast
	}
}

func (f SequenceFlag) String() string {
	switch f {
	case SequenceFirstAndLast:
		return "firstAndLast"
	case SequenceFirst:
		return "first"
	case SequenceLast:
		return "last"
	}
	return fmt.Sprintf("SequenceFlag(%d)", uint8(f))
}

func (f SequenceFlag) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ObjectDataSegment (ODS) carries a run-length encoded bitmap, or a fragment
// of one. Image is nil when the declared data length leaves no room for
// pixel data.
type ObjectDataSegment struct {
	ID         uint16       `json:"id"`
	Version    uint8        `json:"version"`
	Sequence   SequenceFlag `json:"sequence"`
	DataLength uint32       `json:"dataLength"`
	Image      *ObjectImage `json:"image,omitempty"`
}

func (*ObjectDataSegment) Kind() SegmentKind { return KindObjectData }

// Width returns the bitmap width, or 0 when no image is present.
func (s *ObjectDataSegment) Width() uint16 {
	if s.Image == nil {
		return 0
	}
	return s.Image.Width
}

// Height returns the bitmap height, or 0 when no image is present.
func (s *ObjectDataSegment) Height() uint16 {
	if s.Image == nil {
		return 0
	}
	return s.Image.Height
}

// ObjectImage is the still-encoded bitmap of an object segment. Data aliases
// the decoder's input buffer.
type ObjectImage struct {
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
	Data   []byte `json:"-"`
}
