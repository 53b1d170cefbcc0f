/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LocaTable represents the Index to Location (loca) table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/loca
//
// Offsets are byte offsets into glyf regardless of the stored format. The extra entry at the end
// gives the length of the last glyph. On write the offsets are taken from the encoded glyf table.
type LocaTable struct {
	Offsets []uint32 // numGlyphs+1 entries.
}

// Tag implements Table.
func (t *LocaTable) Tag() Tag { return TagLoca }

// GlyphRange returns the byte range [start, end) of glyph `gid` within glyf.
func (t *LocaTable) GlyphRange(gid GlyphIndex) (int64, int64, error) {
	if int(gid)+1 >= len(t.Offsets) {
		logrus.Debugf("Range check error (loca gid %d)", gid)
		return 0, 0, errRangeCheck
	}
	return int64(t.Offsets[gid]), int64(t.Offsets[gid+1]), nil
}

func decodeLoca(r *byteReader, ctx *decodeContext) (Table, error) {
	head := ctx.head()
	if head == nil {
		logrus.Debug("head not set - required for loca")
		return nil, fmt.Errorf("%w: head (needed by loca)", ErrTableNotFound)
	}
	numGlyphs, err := ctx.numGlyphs()
	if err != nil {
		return nil, err
	}

	t := &LocaTable{}
	switch head.IndexToLocFormat {
	case 0:
		var short []uint16
		err = r.readSlice(&short, numGlyphs+1)
		if err != nil {
			return nil, err
		}
		t.Offsets = make([]uint32, len(short))
		for i, off := range short {
			t.Offsets[i] = 2 * uint32(off)
		}
	case 1:
		err = r.readSlice(&t.Offsets, numGlyphs+1)
		if err != nil {
			return nil, err
		}
	default:
		logrus.Debugf("Invalid indexToLocFormat %d", head.IndexToLocFormat)
		return nil, fmt.Errorf("%w: indexToLocFormat %d", ErrCorruptTable, head.IndexToLocFormat)
	}

	for i := 0; i < numGlyphs; i++ {
		if t.Offsets[i] > t.Offsets[i+1] {
			ctx.report("offsets", SeverityMinor, int64(i), "offset of glyph %d decreases (%d > %d)",
				i+1, t.Offsets[i], t.Offsets[i+1])
		}
	}

	return t, nil
}

func (t *LocaTable) encode(w *byteWriter, ctx *encodeContext) error {
	offsets, format, err := ctx.glyphLocations()
	if err != nil {
		return err
	}

	if format == 0 {
		for _, off := range offsets {
			if err := w.writeUint16(uint16(off / 2)); err != nil {
				return err
			}
		}
		return nil
	}
	return w.writeSlice(offsets)
}
