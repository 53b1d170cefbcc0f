/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
)

// LTSHTable represents the linear threshold table (LTSH): per glyph, the pixel size from which
// the advance width scales linearly.
// https://docs.microsoft.com/en-us/typography/opentype/spec/ltsh
type LTSHTable struct {
	Version uint16
	YPels   []uint8
}

// Tag implements Table.
func (t *LTSHTable) Tag() Tag { return TagLTSH }

func decodeLTSH(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &LTSHTable{}
	var numGlyphs uint16
	err := r.read(&t.Version, &numGlyphs)
	if err != nil {
		return nil, err
	}
	err = r.readSlice(&t.YPels, int(numGlyphs))
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *LTSHTable) encode(w *byteWriter, ctx *encodeContext) error {
	numGlyphs, err := ctx.numGlyphs()
	if err != nil {
		return err
	}
	if len(t.YPels) != numGlyphs {
		return fmt.Errorf("%w: LTSH has %d glyphs, maxp has %d", ErrInconsistentModel, len(t.YPels), numGlyphs)
	}
	err = w.write(t.Version, uint16(len(t.YPels)))
	if err != nil {
		return err
	}
	return w.writeBytes(t.YPels)
}
