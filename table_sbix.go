/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/tiff"
)

// SbixTable represents the standard bitmap graphics table (sbix).
// https://docs.microsoft.com/en-us/typography/opentype/spec/sbix
type SbixTable struct {
	Version uint16
	Flags   uint16
	Strikes []*SbixStrike
}

// SbixStrike is a set of glyph bitmaps for one pixels-per-em size. Glyphs has an entry for every
// glyph of the font, nil for glyphs without a bitmap.
type SbixStrike struct {
	PPEM   uint16
	PPI    uint16
	Glyphs []*SbixGlyph
}

// SbixGlyph is the bitmap of a glyph.
type SbixGlyph struct {
	OriginOffsetX int16
	OriginOffsetY int16
	GraphicType   Tag
	Data          []byte
}

// Graphic types of sbix glyph data.
var (
	SbixGraphicPNG  = MakeTag("png ")
	SbixGraphicJPEG = MakeTag("jpg ")
	SbixGraphicTIFF = MakeTag("tiff")
	SbixGraphicDupe = MakeTag("dupe")
	SbixGraphicMask = MakeTag("mask")
	SbixGraphicPDF  = MakeTag("pdf ")
)

// Tag implements Table.
func (t *SbixTable) Tag() Tag { return TagSbix }

// Strike returns the strike closest in size to `ppem`, preferring larger ones, or nil.
func (t *SbixTable) Strike(ppem uint16) *SbixStrike {
	var best *SbixStrike
	for _, s := range t.Strikes {
		switch {
		case best == nil:
			best = s
		case best.PPEM < ppem && s.PPEM > best.PPEM:
			best = s
		case s.PPEM >= ppem && s.PPEM < best.PPEM:
			best = s
		}
	}
	return best
}

// Glyph returns the bitmap of `gid` in `s`, following 'dupe' references. Returns nil when the glyph
// has no bitmap.
func (s *SbixStrike) Glyph(gid GlyphIndex) *SbixGlyph {
	for hops := 0; hops <= len(s.Glyphs); hops++ {
		if int(gid) >= len(s.Glyphs) {
			return nil
		}
		g := s.Glyphs[gid]
		if g == nil || g.GraphicType != SbixGraphicDupe {
			return g
		}
		if len(g.Data) < 2 {
			return nil
		}
		gid = GlyphIndex(g.Data[0])<<8 | GlyphIndex(g.Data[1])
	}
	logrus.Debug("sbix dupe chain does not end")
	return nil
}

// Image decodes the bitmap of `g`. PNG, JPEG and TIFF graphics are supported.
func (g *SbixGlyph) Image() (image.Image, error) {
	r := bytes.NewReader(g.Data)
	switch g.GraphicType {
	case SbixGraphicPNG:
		return png.Decode(r)
	case SbixGraphicJPEG:
		return jpeg.Decode(r)
	case SbixGraphicTIFF:
		return tiff.Decode(r)
	}
	return nil, fmt.Errorf("%w: sbix graphic type %s", ErrUnsupportedFormat, g.GraphicType)
}

func decodeSbix(r *byteReader, ctx *decodeContext) (Table, error) {
	numGlyphs, err := ctx.numGlyphs()
	if err != nil {
		return nil, err
	}

	t := &SbixTable{}
	var numStrikes uint32
	err = r.read(&t.Version, &t.Flags, &numStrikes)
	if err != nil {
		return nil, err
	}
	if int(numStrikes) > r.Remaining()/4 {
		return nil, fmt.Errorf("%w: %d sbix strikes", ErrTruncatedInput, numStrikes)
	}
	var strikeOffsets []offset32
	err = r.readSlice(&strikeOffsets, int(numStrikes))
	if err != nil {
		return nil, err
	}

	for i, so := range strikeOffsets {
		section := fmt.Sprintf("strike %d", i)
		if err := r.Seek(int64(so)); err != nil {
			ctx.report(section, SeverityMajor, int64(so), "%v", err)
			continue
		}
		s := &SbixStrike{}
		err = r.read(&s.PPEM, &s.PPI)
		if err != nil {
			ctx.report(section, SeverityMajor, int64(so), "%v", err)
			continue
		}
		var offsets []offset32
		err = r.readSlice(&offsets, numGlyphs+1)
		if err != nil {
			ctx.report(section, SeverityMajor, int64(so), "%v", err)
			continue
		}

		s.Glyphs = make([]*SbixGlyph, numGlyphs)
		for gid := 0; gid < numGlyphs; gid++ {
			start, end := int(so)+int(offsets[gid]), int(so)+int(offsets[gid+1])
			if end == start {
				continue
			}
			if end < start+8 {
				ctx.report(section, SeverityMinor, int64(so)+4+4*int64(gid), "glyph %d data of %d bytes", gid, end-start)
				continue
			}
			gr, err := r.sub(start, end-start)
			if err != nil {
				ctx.report(section, SeverityMinor, int64(start), "glyph %d: %v", gid, err)
				continue
			}
			g := &SbixGlyph{}
			err = gr.read(&g.OriginOffsetX, &g.OriginOffsetY, &g.GraphicType)
			if err != nil {
				return nil, err
			}
			g.Data = append([]byte(nil), gr.rest()...)
			s.Glyphs[gid] = g
		}
		t.Strikes = append(t.Strikes, s)
	}
	return t, nil
}

func (t *SbixTable) encode(w *byteWriter, ctx *encodeContext) error {
	numGlyphs, err := ctx.numGlyphs()
	if err != nil {
		return err
	}
	for i, s := range t.Strikes {
		if len(s.Glyphs) != numGlyphs {
			return fmt.Errorf("%w: sbix strike %d has %d glyphs, maxp has %d", ErrInconsistentModel,
				i, len(s.Glyphs), numGlyphs)
		}
	}

	err = w.write(t.Version, t.Flags, uint32(len(t.Strikes)))
	if err != nil {
		return err
	}
	strikeOffsets := make([]reservation, len(t.Strikes))
	for i := range t.Strikes {
		strikeOffsets[i] = w.reserve(4)
	}

	for i, s := range t.Strikes {
		start := w.Len()
		if err := strikeOffsets[i].fill(offset32(start)); err != nil {
			return err
		}
		err = w.write(s.PPEM, s.PPI)
		if err != nil {
			return err
		}
		offsets := w.reserve(4 * (numGlyphs + 1))
		glyphOffsets := make([]offset32, 0, numGlyphs+1)
		for _, g := range s.Glyphs {
			glyphOffsets = append(glyphOffsets, offset32(w.Len()-start))
			if g == nil {
				continue
			}
			err = w.write(g.OriginOffsetX, g.OriginOffsetY, g.GraphicType)
			if err != nil {
				return err
			}
			if err := w.writeBytes(g.Data); err != nil {
				return err
			}
		}
		glyphOffsets = append(glyphOffsets, offset32(w.Len()-start))
		fields := make([]interface{}, len(glyphOffsets))
		for j, off := range glyphOffsets {
			fields[j] = off
		}
		if err := offsets.fill(fields...); err != nil {
			return err
		}
	}
	return nil
}
