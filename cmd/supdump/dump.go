package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/zsiec/pgs/internal/config"
	"github.com/zsiec/pgs/internal/displayset"
	"github.com/zsiec/pgs/internal/mpegts"
	"github.com/zsiec/pgs/internal/pgs"
	"github.com/zsiec/pgs/internal/stats"
)

// dumper writes the decoded contents of one stream.
type dumper struct {
	cfg  *config.Config
	name string
	w    io.Writer
	log  *slog.Logger
}

func (d *dumper) dumpFile(ctx context.Context, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	d.log.Debug("read stream", "bytes", len(buf))
	if size, ok := mpegts.Sniff(buf); ok {
		return d.dumpTransportStream(ctx, buf, size)
	}
	return d.dump(ctx, buf)
}

// dumpTransportStream extracts every PGS track from a TS or M2TS file and
// dumps each one under "<name>#<pid>".
func (d *dumper) dumpTransportStream(ctx context.Context, buf []byte, packetSize int) error {
	tracks, err := mpegts.ExtractPGS(ctx, bytes.NewReader(buf),
		mpegts.DemuxerOptPacketSize(packetSize),
		mpegts.DemuxerOptLogger(d.log),
	)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("no PGS tracks in transport stream")
	}
	for _, t := range tracks {
		d.log.Debug("extracted PGS track", "pid", t.PID, "pes", t.PES, "bytes", len(t.Data))
		td := *d
		td.name = fmt.Sprintf("%s#0x%04X", d.name, t.PID)
		td.log = d.log.With("pid", t.PID)
		if err := td.dump(ctx, t.Data); err != nil {
			return fmt.Errorf("PID 0x%04X: %w", t.PID, err)
		}
	}
	return nil
}

func (d *dumper) dump(ctx context.Context, buf []byte) error {
	dec, err := pgs.NewDecoder(buf)
	if err != nil {
		return err
	}
	rec := stats.NewRecorder()
	asm := displayset.NewAssembler()
	start := time.Now()

	for p, err := range dec.All() {
		if err != nil {
			return fmt.Errorf("after %d packets: %w", rec.Snapshot().Packets, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rec.Record(p)

		if !d.cfg.DisplaySets {
			if err := d.writePacket(p); err != nil {
				return err
			}
			continue
		}
		ds, err := asm.Add(p)
		if ds != nil {
			if werr := d.writeDisplaySet(ds); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
	if d.cfg.DisplaySets {
		if ds := asm.Flush(); ds != nil {
			d.log.Warn("stream ended inside a display set", "pts", ds.PTS)
			if err := d.writeDisplaySet(ds); err != nil {
				return err
			}
		}
	}

	snap := rec.Snapshot()
	d.log.Debug("stream decoded",
		"packets", snap.Packets,
		"display_sets", snap.DisplaySets,
		"elapsed", time.Since(start),
	)
	if d.cfg.Summary {
		return d.writeSummary(snap)
	}
	return nil
}

type packetRecord struct {
	File string `json:"file"`
	*pgs.Packet
}

type displaySetRecord struct {
	File string `json:"file"`
	*displayset.DisplaySet
}

type summaryRecord struct {
	File    string         `json:"file"`
	Summary stats.Snapshot `json:"summary"`
}

func (d *dumper) writePacket(p *pgs.Packet) error {
	if d.cfg.Quiet {
		return nil
	}
	if d.cfg.Format == config.FormatJSON {
		return json.NewEncoder(d.w).Encode(packetRecord{File: d.name, Packet: p})
	}
	_, err := fmt.Fprintf(d.w, "%s %s\n", d.name, formatPacket(p))
	return err
}

func (d *dumper) writeDisplaySet(ds *displayset.DisplaySet) error {
	if d.cfg.Quiet {
		return nil
	}
	if d.cfg.Format == config.FormatJSON {
		return json.NewEncoder(d.w).Encode(displaySetRecord{File: d.name, DisplaySet: ds})
	}
	_, err := fmt.Fprintf(d.w, "%s %s\n", d.name, formatDisplaySet(ds))
	return err
}

func (d *dumper) writeSummary(s stats.Snapshot) error {
	if d.cfg.Format == config.FormatJSON {
		return json.NewEncoder(d.w).Encode(summaryRecord{File: d.name, Summary: s})
	}
	_, err := fmt.Fprintf(d.w, "%s summary packets=%d display_sets=%d epochs=%d objects=%d object_bytes=%d duration=%s segments=%s\n",
		d.name, s.Packets, s.DisplaySets, s.EpochStarts, s.CompositionObjects, s.ObjectBytes,
		time.Duration(s.DurationMs)*time.Millisecond, formatCounts(s.Segments))
	return err
}

// formatTimestamp renders a 90 kHz timestamp as HH:MM:SS.mmm.
func formatTimestamp(ts pgs.Timestamp) string {
	d := ts.Duration()
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%s%02d:%02d:%02d.%03d", sign, h, m, s, d/time.Millisecond)
}

func formatPacket(p *pgs.Packet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pts=%s dts=%s %s", formatTimestamp(p.PTS), formatTimestamp(p.DTS), p.Kind)

	switch seg := p.Segment.(type) {
	case *pgs.CompositionSegment:
		fmt.Fprintf(&b, " %dx%d comp=%d state=%s palette=%d update=%t objects=%d",
			seg.Width, seg.Height, seg.CompositionNumber, seg.State, seg.PaletteID, seg.PaletteUpdate, len(seg.Objects))
		for _, o := range seg.Objects {
			fmt.Fprintf(&b, " [obj=%d win=%d at=%d,%d", o.ObjectID, o.WindowID, o.X, o.Y)
			if o.Crop != nil {
				fmt.Fprintf(&b, " crop=%d,%d %dx%d", o.Crop.X, o.Crop.Y, o.Crop.Width, o.Crop.Height)
			}
			b.WriteByte(']')
		}
	case *pgs.WindowDefinitionSegment:
		fmt.Fprintf(&b, " windows=%d", len(seg.Windows))
		for _, w := range seg.Windows {
			fmt.Fprintf(&b, " [id=%d at=%d,%d %dx%d]", w.ID, w.X, w.Y, w.Width, w.Height)
		}
	case *pgs.PaletteSegment:
		fmt.Fprintf(&b, " id=%d version=%d entries=%d", seg.ID, seg.Version, len(seg.Entries))
	case *pgs.ObjectDataSegment:
		fmt.Fprintf(&b, " id=%d version=%d seq=%s length=%d", seg.ID, seg.Version, seg.Sequence, seg.DataLength)
		if seg.Image != nil {
			fmt.Fprintf(&b, " %dx%d data=%d", seg.Image.Width, seg.Image.Height, len(seg.Image.Data))
		}
	}
	return b.String()
}

func formatDisplaySet(ds *displayset.DisplaySet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pts=%s set packets=%d", formatTimestamp(ds.PTS), ds.Packets)
	if c := ds.Composition; c != nil {
		fmt.Fprintf(&b, " comp=%d state=%s", c.CompositionNumber, c.State)
	}
	fmt.Fprintf(&b, " windows=%d palettes=%d objects=%d", len(ds.Windows), len(ds.Palettes), len(ds.Objects))
	for _, o := range ds.Objects {
		fmt.Fprintf(&b, " [obj=%d %dx%d data=%d fragments=%d complete=%t]",
			o.ID, o.Width, o.Height, len(o.Data), o.Fragments, o.Complete)
	}
	if !ds.Ended {
		b.WriteString(" unterminated")
	}
	return b.String()
}

// formatCounts renders segment counts in a fixed kind order.
func formatCounts(counts map[string]int64) string {
	kinds := []pgs.SegmentKind{pgs.KindComposition, pgs.KindWindowDefinition, pgs.KindPalette, pgs.KindObjectData, pgs.KindEnd}
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		if n := counts[k.String()]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", k, n))
		}
	}
	return strings.Join(parts, ",")
}
