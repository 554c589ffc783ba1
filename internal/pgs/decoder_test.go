package pgs

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"testing"
	"time"
)

// Golden vectors for byte-level decoding checks.
var goldenVectors = map[string]string{
	// pts=0 dts=1, one window id=0 at (5,10) sized 100x50.
	"SingleWindow": "5047" + "00000000" + "00000001" + "17" + "000a" + "01" + "00" + "0005" + "000a" + "0064" + "0032",
	// End-of-display-set segment with an empty body.
	"EndOnly": "5047" + "00015f90" + "00015f90" + "80" + "0000",
}

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func segment(typ byte, pts, dts int32, body ...byte) []byte {
	b := []byte{0x50, 0x47}
	b = binary.BigEndian.AppendUint32(b, uint32(pts))
	b = binary.BigEndian.AppendUint32(b, uint32(dts))
	b = append(b, typ)
	b = binary.BigEndian.AppendUint16(b, uint16(len(body)))
	return append(b, body...)
}

func stream(segs ...[]byte) []byte {
	return bytes.Join(segs, nil)
}

var (
	compositionBody = []byte{
		0x07, 0x80, // width 1920
		0x04, 0x38, // height 1080
		0x10,       // frame rate
		0x00, 0x01, // composition number
		0x80,       // epoch start
		0x00,       // palette update off
		0x00,       // palette id
		0x02,       // object count
		// object 0, not cropped
		0x00, 0x00, 0x00, 0x00, 0x00, 0x64, 0x03, 0xE8,
		// object 1, cropped
		0x00, 0x01, 0x01, 0x40, 0x00, 0xC8, 0x03, 0x20,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x50, 0x00, 0x14,
	}
	windowBody = []byte{
		0x01,
		0x00, 0x00, 0x05, 0x00, 0x0A, 0x00, 0x64, 0x00, 0x32,
	}
	paletteBody = []byte{
		0x00, 0x00,
		0x00, 0x10, 0x80, 0x80, 0x00,
		0x01, 0xEB, 0x80, 0x80, 0xFF,
	}
	objectBody = []byte{
		0x00, 0x00, // id
		0x00,             // version
		0xC0,             // sequence flag
		0x00, 0x00, 0x07, // data length
		0x00, 0x02, // width
		0x00, 0x01, // height
		0x01, 0x02, 0x03,
	}
)

func displaySet() []byte {
	return stream(
		segment(0x16, 90000, 90000, compositionBody...),
		segment(0x17, 90000, 90000, windowBody...),
		segment(0x14, 90000, 90000, paletteBody...),
		segment(0x15, 90000, 90000, objectBody...),
		segment(0x80, 90000, 90000),
	)
}

func TestNewDecoder_Rejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		buf  []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"twelve_bytes", mustHex(t, goldenVectors["SingleWindow"])[:12]},
		{"bad_magic", append([]byte{0x50, 0x48}, make([]byte, 11)...)},
		{"swapped_magic", append([]byte{0x47, 0x50}, make([]byte, 11)...)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d, err := NewDecoder(tc.buf)
			if d != nil {
				t.Error("decoder should be nil")
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want *FormatError", err)
			}
			if fe.Reason != "empty or not a PGS stream" {
				t.Errorf("reason = %q", fe.Reason)
			}
			if !errors.Is(err, ErrFormat) {
				t.Error("errors.Is(err, ErrFormat) should be true")
			}
		})
	}
}

func TestNewDecoder_MinimalHeader(t *testing.T) {
	t.Parallel()
	d, err := NewDecoder(segment(0x80, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if d.Offset() != 0 {
		t.Errorf("Offset = %d, want 0", d.Offset())
	}
}

func TestDecoder_SingleWindow(t *testing.T) {
	t.Parallel()
	buf := mustHex(t, goldenVectors["SingleWindow"])
	d, err := NewDecoder(buf)
	if err != nil {
		t.Fatal(err)
	}

	p, err := d.Next()
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != KindWindowDefinition {
		t.Fatalf("Kind = %v, want WDS", p.Kind)
	}
	if p.PTS != 0 || p.DTS != 1 {
		t.Errorf("PTS/DTS = %d/%d, want 0/1", p.PTS, p.DTS)
	}
	wds, ok := p.Segment.(*WindowDefinitionSegment)
	if !ok {
		t.Fatalf("Segment = %T, want *WindowDefinitionSegment", p.Segment)
	}
	want := Window{ID: 0, X: 5, Y: 10, Width: 100, Height: 50}
	if len(wds.Windows) != 1 || wds.Windows[0] != want {
		t.Errorf("Windows = %+v, want [%+v]", wds.Windows, want)
	}

	if _, err := d.Next(); err != io.EOF {
		t.Errorf("second Next err = %v, want io.EOF", err)
	}
	if d.Offset() != len(buf) {
		t.Errorf("Offset = %d, want %d", d.Offset(), len(buf))
	}
}

func TestDecoder_Composition(t *testing.T) {
	t.Parallel()
	d, err := NewDecoder(segment(0x16, 900, 0, compositionBody...))
	if err != nil {
		t.Fatal(err)
	}
	p, err := d.Next()
	if err != nil {
		t.Fatal(err)
	}
	pcs := p.Segment.(*CompositionSegment)
	if pcs.Width != 1920 || pcs.Height != 1080 {
		t.Errorf("size = %dx%d, want 1920x1080", pcs.Width, pcs.Height)
	}
	if pcs.FrameRate != 0x10 {
		t.Errorf("FrameRate = 0x%X, want 0x10", pcs.FrameRate)
	}
	if pcs.CompositionNumber != 1 {
		t.Errorf("CompositionNumber = %d, want 1", pcs.CompositionNumber)
	}
	if pcs.State != StateEpochStart {
		t.Errorf("State = %v, want epochStart", pcs.State)
	}
	if pcs.PaletteUpdate {
		t.Error("PaletteUpdate should be false")
	}
	if len(pcs.Objects) != 2 {
		t.Fatalf("objects = %d, want 2", len(pcs.Objects))
	}

	o0 := pcs.Objects[0]
	if o0.Cropped() || o0.Crop != nil {
		t.Error("object 0 should not carry a crop")
	}
	if o0.X != 100 || o0.Y != 1000 {
		t.Errorf("object 0 position = (%d,%d), want (100,1000)", o0.X, o0.Y)
	}

	o1 := pcs.Objects[1]
	if !o1.Cropped() {
		t.Fatal("object 1 should be cropped")
	}
	if o1.ObjectID != 1 || o1.WindowID != 1 {
		t.Errorf("object 1 ids = %d/%d, want 1/1", o1.ObjectID, o1.WindowID)
	}
	wantCrop := Crop{X: 0, Y: 0, Width: 80, Height: 20}
	if *o1.Crop != wantCrop {
		t.Errorf("Crop = %+v, want %+v", *o1.Crop, wantCrop)
	}
}

func TestDecoder_CompositionFlags(t *testing.T) {
	t.Parallel()
	tests := []struct {
		state, update byte
		wantState     CompositionState
		wantUpdate    bool
	}{
		{0x00, 0x80, StateNormal, true},
		{0x40, 0x00, StateAcquisitionPoint, false},
		{0x80, 0x00, StateEpochStart, false},
		{0xC0, 0x40, StateEpochStart, false},
		{0x01, 0x81, StateEpochStart, false},
	}
	for _, tc := range tests {
		body := []byte{0, 0, 0, 0, 0x10, 0, 0, tc.state, tc.update, 0, 0}
		d, err := NewDecoder(segment(0x16, 0, 0, body...))
		if err != nil {
			t.Fatal(err)
		}
		p, err := d.Next()
		if err != nil {
			t.Fatal(err)
		}
		pcs := p.Segment.(*CompositionSegment)
		if pcs.State != tc.wantState {
			t.Errorf("state byte 0x%02X: State = %v, want %v", tc.state, pcs.State, tc.wantState)
		}
		if pcs.PaletteUpdate != tc.wantUpdate {
			t.Errorf("update byte 0x%02X: PaletteUpdate = %v, want %v", tc.update, pcs.PaletteUpdate, tc.wantUpdate)
		}
		if len(pcs.Objects) != 0 {
			t.Errorf("objects = %d, want 0", len(pcs.Objects))
		}
	}
}

func TestDecoder_CroppedFlagExact(t *testing.T) {
	t.Parallel()
	// 0xC0 is not the cropped flag, so no crop fields follow.
	body := []byte{0, 0, 0, 0, 0x10, 0, 0, 0, 0, 0, 1, 0x00, 0x07, 0x00, 0xC0, 0x00, 0x01, 0x00, 0x02}
	d, err := NewDecoder(segment(0x16, 0, 0, body...))
	if err != nil {
		t.Fatal(err)
	}
	p, err := d.Next()
	if err != nil {
		t.Fatal(err)
	}
	obj := p.Segment.(*CompositionSegment).Objects[0]
	if obj.Cropped() {
		t.Error("flag 0xC0 should not be treated as cropped")
	}
	if obj.ObjectID != 7 || obj.X != 1 || obj.Y != 2 {
		t.Errorf("object = %+v", obj)
	}
}

func TestDecoder_Palette(t *testing.T) {
	t.Parallel()
	d, err := NewDecoder(segment(0x14, 0, 0, paletteBody...))
	if err != nil {
		t.Fatal(err)
	}
	p, err := d.Next()
	if err != nil {
		t.Fatal(err)
	}
	pds := p.Segment.(*PaletteSegment)
	if want := (len(paletteBody) - 2) / 5; len(pds.Entries) != want {
		t.Fatalf("entries = %d, want %d", len(pds.Entries), want)
	}
	want := PaletteEntry{ID: 1, Color: Color{Y: 0xEB, Cr: 0x80, Cb: 0x80, A: 0xFF}}
	if pds.Entries[1] != want {
		t.Errorf("entry 1 = %+v, want %+v", pds.Entries[1], want)
	}
}

func TestDecoder_PaletteSizes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"header_only", 2, false},
		{"one_entry", 7, false},
		{"max_entries", 2 + 5*256, false},
		{"partial_entry", 4, true},
		{"too_small", 1, true},
		{"empty", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d, err := NewDecoder(segment(0x14, 0, 0, make([]byte, tc.size)...))
			if err != nil {
				t.Fatal(err)
			}
			p, err := d.Next()
			if tc.wantErr {
				if !errors.Is(err, ErrFormat) {
					t.Errorf("err = %v, want ErrFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := len(p.Segment.(*PaletteSegment).Entries); got != (tc.size-2)/5 {
				t.Errorf("entries = %d, want %d", got, (tc.size-2)/5)
			}
		})
	}
}

func TestDecoder_ObjectData(t *testing.T) {
	t.Parallel()
	d, err := NewDecoder(segment(0x15, 0, 0, objectBody...))
	if err != nil {
		t.Fatal(err)
	}
	p, err := d.Next()
	if err != nil {
		t.Fatal(err)
	}
	ods := p.Segment.(*ObjectDataSegment)
	if ods.Sequence != SequenceFirstAndLast {
		t.Errorf("Sequence = %v, want firstAndLast", ods.Sequence)
	}
	if ods.Image == nil {
		t.Fatal("Image should be present")
	}
	if ods.Width() != 2 || ods.Height() != 1 {
		t.Errorf("size = %dx%d, want 2x1", ods.Width(), ods.Height())
	}
	if len(ods.Image.Data) != int(ods.DataLength)-4 {
		t.Errorf("data length = %d, want %d", len(ods.Image.Data), ods.DataLength-4)
	}
	if !bytes.Equal(ods.Image.Data, []byte{1, 2, 3}) {
		t.Errorf("data = %x", ods.Image.Data)
	}
}

func TestDecoder_ObjectDataWithoutImage(t *testing.T) {
	t.Parallel()
	for _, length := range []byte{0, 3, 4} {
		body := []byte{0x00, 0x05, 0x01, 0x80, 0x00, 0x00, length}
		d, err := NewDecoder(segment(0x15, 0, 0, body...))
		if err != nil {
			t.Fatal(err)
		}
		p, err := d.Next()
		if err != nil {
			t.Fatalf("length %d: %v", length, err)
		}
		ods := p.Segment.(*ObjectDataSegment)
		if ods.Image != nil {
			t.Errorf("length %d: Image should be nil", length)
		}
		if ods.Width() != 0 || ods.Height() != 0 {
			t.Errorf("length %d: size = %dx%d, want 0x0", length, ods.Width(), ods.Height())
		}
		if ods.ID != 5 || ods.Version != 1 {
			t.Errorf("length %d: id/version = %d/%d", length, ods.ID, ods.Version)
		}
	}
}

func TestDecoder_SequenceFlags(t *testing.T) {
	t.Parallel()
	tests := []struct {
		flag byte
		want SequenceFlag
	}{
		{0x40, SequenceLast},
		{0x80, SequenceFirst},
		{0xC0, SequenceFirstAndLast},
		{0x00, SequenceFirstAndLast},
		{0x41, SequenceFirstAndLast},
	}
	for _, tc := range tests {
		body := []byte{0x00, 0x00, 0x00, tc.flag, 0x00, 0x00, 0x00}
		d, err := NewDecoder(segment(0x15, 0, 0, body...))
		if err != nil {
			t.Fatal(err)
		}
		p, err := d.Next()
		if err != nil {
			t.Fatal(err)
		}
		if got := p.Segment.(*ObjectDataSegment).Sequence; got != tc.want {
			t.Errorf("flag 0x%02X: Sequence = %v, want %v", tc.flag, got, tc.want)
		}
	}
}

func TestDecoder_FirstFragmentOverrun(t *testing.T) {
	t.Parallel()
	// A first fragment declares 4+10 bytes of data but its segment only holds 4.
	body := []byte{0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x0E, 0x00, 0x10, 0x00, 0x08, 0xAA, 0xBB, 0xCC, 0xDD}
	d, err := NewDecoder(segment(0x15, 0, 0, body...))
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.Next()
	var te *TruncatedStreamError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TruncatedStreamError", err)
	}
	if te.Want != 10 || te.Have != 4 {
		t.Errorf("Want/Have = %d/%d, want 10/4", te.Want, te.Have)
	}
}

func TestDecoder_FragmentDataMatchesDeclaredLength(t *testing.T) {
	t.Parallel()
	first := []byte{0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x07, 0x00, 0x10, 0x00, 0x08, 0xAA, 0xBB, 0xCC}
	last := []byte{0x00, 0x01, 0x00, 0x40, 0x00, 0x00, 0x05, 0x00, 0x10, 0x00, 0x08, 0xDD}
	packets, err := DecodeAll(stream(segment(0x15, 0, 0, first...), segment(0x15, 0, 0, last...)))
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range packets {
		ods := p.Segment.(*ObjectDataSegment)
		if got, want := len(ods.Image.Data), int(ods.DataLength)-4; got != want {
			t.Errorf("fragment %d: len(Data) = %d, want %d", i, got, want)
		}
	}
}

func TestDecoder_ObjectDataOverrun(t *testing.T) {
	t.Parallel()
	// A complete object may not declare more data than its segment holds.
	body := []byte{0x00, 0x01, 0x00, 0xC0, 0x00, 0x00, 0x0E, 0x00, 0x10, 0x00, 0x08, 0xAA}
	d, err := NewDecoder(segment(0x15, 0, 0, body...))
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.Next()
	var te *TruncatedStreamError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TruncatedStreamError", err)
	}
	if te.Want != 10 || te.Have != 1 {
		t.Errorf("Want/Have = %d/%d, want 10/1", te.Want, te.Have)
	}
}

func TestDecoder_DataAliasesBuffer(t *testing.T) {
	t.Parallel()
	buf := segment(0x15, 0, 0, objectBody...)
	d, err := NewDecoder(buf)
	if err != nil {
		t.Fatal(err)
	}
	p, err := d.Next()
	if err != nil {
		t.Fatal(err)
	}
	data := p.Segment.(*ObjectDataSegment).Image.Data
	if cap(data) != len(data) {
		t.Errorf("cap = %d, want %d", cap(data), len(data))
	}
	_ = append(data, 0xFF)
	if !bytes.Equal(buf, segment(0x15, 0, 0, objectBody...)) {
		t.Error("append to object data modified the input buffer")
	}
}

func TestDecoder_UnknownType(t *testing.T) {
	t.Parallel()
	buf := stream(
		segment(0x99, 7, 8, 0xDE, 0xAD, 0xBE),
		mustHex(t, goldenVectors["SingleWindow"]),
	)
	d, err := NewDecoder(buf)
	if err != nil {
		t.Fatal(err)
	}
	p, err := d.Next()
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != KindEnd || p.Segment != nil {
		t.Errorf("packet = %+v, want END with no segment", p)
	}
	if p.PTS != 7 || p.DTS != 8 {
		t.Errorf("PTS/DTS = %d/%d, want 7/8", p.PTS, p.DTS)
	}
	if d.Offset() != 16 {
		t.Errorf("Offset = %d, want 16", d.Offset())
	}
	p, err = d.Next()
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != KindWindowDefinition {
		t.Errorf("Kind = %v, want WDS", p.Kind)
	}
}

func TestDecoder_EndSegment(t *testing.T) {
	t.Parallel()
	d, err := NewDecoder(mustHex(t, goldenVectors["EndOnly"]))
	if err != nil {
		t.Fatal(err)
	}
	p, err := d.Next()
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != KindEnd || p.Segment != nil {
		t.Errorf("packet = %+v", p)
	}
	if p.PTS.Duration() != time.Second {
		t.Errorf("PTS duration = %v, want 1s", p.PTS.Duration())
	}
}

func TestDecoder_DisplaySet(t *testing.T) {
	t.Parallel()
	buf := displaySet()
	packets, err := DecodeAll(buf)
	if err != nil {
		t.Fatal(err)
	}
	want := []SegmentKind{KindComposition, KindWindowDefinition, KindPalette, KindObjectData, KindEnd}
	if len(packets) != len(want) {
		t.Fatalf("packets = %d, want %d", len(packets), len(want))
	}
	for i, p := range packets {
		if p.Kind != want[i] {
			t.Errorf("packet %d Kind = %v, want %v", i, p.Kind, want[i])
		}
		if p.Segment != nil && p.Segment.Kind() != p.Kind {
			t.Errorf("packet %d segment kind = %v, packet kind = %v", i, p.Segment.Kind(), p.Kind)
		}
		if p.PTS != 90000 {
			t.Errorf("packet %d PTS = %d, want 90000", i, p.PTS)
		}
	}
}

func TestDecoder_ConsumesBufferExactly(t *testing.T) {
	t.Parallel()
	buf := stream(displaySet(), displaySet())
	d, err := NewDecoder(buf)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, err := range d.All() {
		if err != nil {
			t.Fatal(err)
		}
		n++
	}
	if n != 10 {
		t.Errorf("packets = %d, want 10", n)
	}
	if d.Offset() != len(buf) {
		t.Errorf("Offset = %d, want %d", d.Offset(), len(buf))
	}
}

func TestDecoder_CorruptBoundary(t *testing.T) {
	t.Parallel()
	second := segment(0x80, 0, 0)
	second[1] = 0x00
	buf := stream(mustHex(t, goldenVectors["SingleWindow"]), second)
	d, err := NewDecoder(buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Next(); err != nil {
		t.Fatal(err)
	}
	_, err = d.Next()
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FormatError", err)
	}
	if fe.Reason != "corrupt segment boundary" {
		t.Errorf("reason = %q", fe.Reason)
	}
	if fe.Offset != 23 {
		t.Errorf("Offset = %d, want 23", fe.Offset)
	}

	// Errors are sticky.
	if _, err2 := d.Next(); err2 != err {
		t.Errorf("second err = %v, want %v", err2, err)
	}
}

func TestDecoder_Truncated(t *testing.T) {
	t.Parallel()
	full := displaySet()
	tests := []struct {
		name string
		buf  []byte
	}{
		{"header", stream(mustHex(t, goldenVectors["SingleWindow"]), full[:8])},
		{"body", full[:20]},
		{"magic_byte", stream(mustHex(t, goldenVectors["SingleWindow"]), []byte{0x50})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d, err := NewDecoder(tc.buf)
			if err != nil {
				t.Fatal(err)
			}
			var last error
			for _, err := range d.All() {
				last = err
			}
			if !errors.Is(last, ErrTruncated) {
				t.Errorf("err = %v, want ErrTruncated", last)
			}
		})
	}
}

func TestDecoder_CountExceedsBody(t *testing.T) {
	t.Parallel()
	// Declares three windows but carries one.
	body := append([]byte{0x03}, windowBody[1:]...)
	d, err := NewDecoder(segment(0x17, 0, 0, body...))
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.Next()
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", err)
	}

	// A cropped object missing its crop fields.
	pcs := compositionBody[:len(compositionBody)-8]
	d, err = NewDecoder(segment(0x16, 0, 0, pcs...))
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.Next()
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", err)
	}
}

func TestDecoder_BodySizeMismatch(t *testing.T) {
	t.Parallel()
	body := append(append([]byte{}, windowBody...), 0x00)
	d, err := NewDecoder(segment(0x17, 0, 0, body...))
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.Next()
	if !errors.Is(err, ErrFormat) {
		t.Errorf("err = %v, want ErrFormat", err)
	}
}

func TestDecoder_NegativeSize(t *testing.T) {
	t.Parallel()
	buf := segment(0x17, 0, 0)
	buf[11], buf[12] = 0xFF, 0xFF
	d, err := NewDecoder(buf)
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.Next()
	if !errors.Is(err, ErrFormat) {
		t.Errorf("err = %v, want ErrFormat", err)
	}
}

func TestDecoder_NegativeTimestamps(t *testing.T) {
	t.Parallel()
	d, err := NewDecoder(segment(0x80, -90, -1))
	if err != nil {
		t.Fatal(err)
	}
	p, err := d.Next()
	if err != nil {
		t.Fatal(err)
	}
	if p.PTS != -90 || p.DTS != -1 {
		t.Errorf("PTS/DTS = %d/%d, want -90/-1", p.PTS, p.DTS)
	}
	if p.PTS.Duration() != -time.Millisecond {
		t.Errorf("Duration = %v, want -1ms", p.PTS.Duration())
	}
}

func TestDecoder_IndependentInstances(t *testing.T) {
	t.Parallel()
	buf := displaySet()
	d1, _ := NewDecoder(buf)
	d2, _ := NewDecoder(buf)
	if _, err := d1.Next(); err != nil {
		t.Fatal(err)
	}
	p, err := d2.Next()
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != KindComposition {
		t.Errorf("Kind = %v, want PCS", p.Kind)
	}
}

func TestDecoder_AllStopsOnBreak(t *testing.T) {
	t.Parallel()
	d, err := NewDecoder(displaySet())
	if err != nil {
		t.Fatal(err)
	}
	for p, err := range d.All() {
		if err != nil {
			t.Fatal(err)
		}
		if p.Kind == KindPalette {
			break
		}
	}
	p, err := d.Next()
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != KindObjectData {
		t.Errorf("Kind after break = %v, want ODS", p.Kind)
	}
}

func TestSegmentKindString(t *testing.T) {
	t.Parallel()
	tests := map[SegmentKind]string{
		KindComposition:      "PCS",
		KindWindowDefinition: "WDS",
		KindPalette:          "PDS",
		KindObjectData:       "ODS",
		KindEnd:              "END",
		SegmentKind(42):      "SegmentKind(42)",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
