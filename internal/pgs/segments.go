package pgs

import "fmt"

const (
	paletteHeaderSize = 2
	paletteEntrySize  = 5

	// objectSizeFields is the width and height counted by an object
	// segment's data length field.
	objectSizeFields = 4

	croppedFlag       = 0x40
	paletteUpdateFlag = 0x80
)

func readComposition(r *byteReader) (*CompositionSegment, error) {
	pcs := &CompositionSegment{}
	pcs.Width = r.readUint16()
	pcs.Height = r.readUint16()
	pcs.FrameRate = r.readUint8()
	pcs.CompositionNumber = r.readUint16()
	pcs.State = compositionStateFromByte(r.readUint8())
	pcs.PaletteUpdate = r.readUint8() == paletteUpdateFlag
	pcs.PaletteID = r.readUint8()

	count := int(r.readUint8())
	if err := r.err(); err != nil {
		return nil, err
	}
	pcs.Objects = make([]CompositionObject, 0, count)
	for i := 0; i < count; i++ {
		obj := CompositionObject{}
		obj.ObjectID = r.readUint16()
		obj.WindowID = r.readUint8()
		cropped := r.readUint8() == croppedFlag
		obj.X = r.readUint16()
		obj.Y = r.readUint16()
		if cropped {
			obj.Crop = &Crop{
				X:      r.readUint16(),
				Y:      r.readUint16(),
				Width:  r.readUint16(),
				Height: r.readUint16(),
			}
		}
		if err := r.err(); err != nil {
			return nil, fmt.Errorf("composition object %d/%d: %w", i+1, count, err)
		}
		pcs.Objects = append(pcs.Objects, obj)
	}
	return pcs, nil
}

func readWindowDefinition(r *byteReader) (*WindowDefinitionSegment, error) {
	count := int(r.readUint8())
	windows := make([]Window, 0, count)
	for i := 0; i < count; i++ {
		windows = append(windows, Window{
			ID:     r.readUint8(),
			X:      r.readUint16(),
			Y:      r.readUint16(),
			Width:  r.readUint16(),
			Height: r.readUint16(),
		})
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return &WindowDefinitionSegment{Windows: windows}, nil
}

// readPalette derives the entry count from the declared body size, which
// must be the two header bytes plus a whole number of entries.
func readPalette(r *byteReader, size int) (*PaletteSegment, error) {
	if size < paletteHeaderSize || (size-paletteHeaderSize)%paletteEntrySize != 0 {
		return nil, &FormatError{
			Offset: r.offset(),
			Reason: fmt.Sprintf("palette body size %d is not 2 + 5n", size),
		}
	}
	pds := &PaletteSegment{}
	pds.ID = r.readUint8()
	pds.Version = r.readUint8()

	n := (size - paletteHeaderSize) / paletteEntrySize
	pds.Entries = make([]PaletteEntry, 0, n)
	for i := 0; i < n; i++ {
		e := PaletteEntry{ID: r.readUint8()}
		e.Color.Y = r.readUint8()
		e.Color.Cr = r.readUint8()
		e.Color.Cb = r.readUint8()
		e.Color.A = r.readUint8()
		pds.Entries = append(pds.Entries, e)
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return pds, nil
}

// readObjectData reads width, height and pixel data only when the 24-bit
// data length leaves room for them. Every fragment, first or not, carries
// this header and declares only the data it holds itself.
func readObjectData(r *byteReader) (*ObjectDataSegment, error) {
	ods := &ObjectDataSegment{}
	ods.ID = r.readUint16()
	ods.Version = r.readUint8()
	ods.Sequence = sequenceFlagFromByte(r.readUint8())
	ods.DataLength = r.readUint24()

	n := int(ods.DataLength) - objectSizeFields
	if n > 0 {
		img := &ObjectImage{}
		img.Width = r.readUint16()
		img.Height = r.readUint16()
		img.Data = r.readBytes(n)
		ods.Image = img
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return ods, nil
}
