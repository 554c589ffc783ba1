// Package pgs decodes Presentation Graphic Stream (PGS) subtitle data, the
// segment-based bitmap subtitle format carried on Blu-ray video tracks and
// commonly stored in ".sup" files.
//
// The central type is [Decoder], which wraps an in-memory buffer and yields
// one [Packet] per segment from [Decoder.Next]. Each packet carries the
// segment's presentation and decode timestamps and, for the four known
// segment types, a typed body: [CompositionSegment], [WindowDefinitionSegment],
// [PaletteSegment], or [ObjectDataSegment].
//
// Run-length encoded pixel data inside object segments is surfaced as an
// opaque byte slice; decoding it into an image is left to the caller.
package pgs
