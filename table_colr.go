/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// COLRTable represents the color table (COLR). Version 0 layer lists are decoded, later versions
// are kept as raw data in Data.
// https://docs.microsoft.com/en-us/typography/opentype/spec/colr
type COLRTable struct {
	Version    uint16
	BaseGlyphs []ColorGlyph // sorted by GlyphID.

	Data []byte // version 1 and later.
}

// ColorGlyph is a base glyph with the layers it is drawn with, bottom layer first.
type ColorGlyph struct {
	GlyphID GlyphIndex
	Layers  []ColorLayer
}

// ColorLayer is a glyph drawn with a CPAL palette entry. PaletteIndex 0xFFFF is the text color.
type ColorLayer struct {
	GlyphID      GlyphIndex
	PaletteIndex uint16
}

// Tag implements Table.
func (t *COLRTable) Tag() Tag { return TagCOLR }

// Layers returns the layers of base glyph `gid` or nil.
func (t *COLRTable) Layers(gid GlyphIndex) []ColorLayer {
	i := sort.Search(len(t.BaseGlyphs), func(i int) bool {
		return t.BaseGlyphs[i].GlyphID >= gid
	})
	if i < len(t.BaseGlyphs) && t.BaseGlyphs[i].GlyphID == gid {
		return t.BaseGlyphs[i].Layers
	}
	return nil
}

func decodeCOLR(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &COLRTable{}
	var numBaseGlyphs, numLayers uint16
	var baseOffset, layerOffset offset32
	err := r.read(&t.Version, &numBaseGlyphs, &baseOffset, &layerOffset, &numLayers)
	if err != nil {
		return nil, err
	}
	if t.Version > 0 {
		logrus.Debugf("COLR version %d - kept as raw data", t.Version)
		t.Data = append([]byte(nil), r.data...)
		return t, nil
	}

	layers := make([]ColorLayer, numLayers)
	lr, err := r.sub(int(layerOffset), 4*int(numLayers))
	if err != nil {
		return nil, err
	}
	for i := range layers {
		err = lr.read(&layers[i].GlyphID, &layers[i].PaletteIndex)
		if err != nil {
			return nil, err
		}
	}

	br, err := r.sub(int(baseOffset), 6*int(numBaseGlyphs))
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(numBaseGlyphs); i++ {
		var gid GlyphIndex
		var first, num uint16
		err = br.read(&gid, &first, &num)
		if err != nil {
			return nil, err
		}
		if int(first)+int(num) > len(layers) {
			ctx.report("baseGlyphRecords", SeverityMajor, int64(baseOffset)+6*int64(i),
				"glyph %d layers [%d,%d) outside %d layer records", gid, first, int(first)+int(num), len(layers))
			continue
		}
		t.BaseGlyphs = append(t.BaseGlyphs, ColorGlyph{
			GlyphID: gid,
			Layers:  append([]ColorLayer(nil), layers[first:int(first)+int(num)]...),
		})
	}
	if !sort.SliceIsSorted(t.BaseGlyphs, func(i, j int) bool {
		return t.BaseGlyphs[i].GlyphID < t.BaseGlyphs[j].GlyphID
	}) {
		ctx.report("baseGlyphRecords", SeverityMinor, int64(baseOffset), "base glyphs not sorted")
		t.sortBaseGlyphs()
	}
	return t, nil
}

func (t *COLRTable) sortBaseGlyphs() {
	sort.SliceStable(t.BaseGlyphs, func(i, j int) bool {
		return t.BaseGlyphs[i].GlyphID < t.BaseGlyphs[j].GlyphID
	})
}

func (t *COLRTable) encode(w *byteWriter, ctx *encodeContext) error {
	if t.Version > 0 {
		return w.writeBytes(t.Data)
	}
	t.sortBaseGlyphs()

	numLayers := 0
	for _, bg := range t.BaseGlyphs {
		numLayers += len(bg.Layers)
	}
	if len(t.BaseGlyphs) > 0xFFFF || numLayers > 0xFFFF {
		return fmt.Errorf("%w: COLR with %d base glyphs and %d layers", ErrInconsistentModel,
			len(t.BaseGlyphs), numLayers)
	}

	const headerLen = 14
	baseOffset := offset32(headerLen)
	layerOffset := baseOffset + offset32(6*len(t.BaseGlyphs))
	err := w.write(t.Version, uint16(len(t.BaseGlyphs)), baseOffset, layerOffset, uint16(numLayers))
	if err != nil {
		return err
	}

	first := 0
	for _, bg := range t.BaseGlyphs {
		err = w.write(bg.GlyphID, uint16(first), uint16(len(bg.Layers)))
		if err != nil {
			return err
		}
		first += len(bg.Layers)
	}
	for _, bg := range t.BaseGlyphs {
		for _, l := range bg.Layers {
			err = w.write(l.GlyphID, l.PaletteIndex)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
