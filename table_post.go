/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/cryptobyte"
)

// Versions of the post table.
const (
	postVersion10 Fixed = 0x00010000
	postVersion20 Fixed = 0x00020000
	postVersion25 Fixed = 0x00025000
	postVersion30 Fixed = 0x00030000
)

// PostTable represents a PostScript (post) table.
// This table contains additional information needed for use on PostScript printers.
// Includes FontInfo dictionary entries and the PostScript names of all glyphs.
//
//   - version 1.0 is used the font file contains exactly the 258 glyphs in the standard Macintosh TrueType font file.
//     Glyph list on: https://developer.apple.com/fonts/TrueType-Reference-Manual/RM06/Chap6post.html
//   - version 2.0 is used for fonts that contain some glyphs not in the standard set or have different ordering.
//   - version 2.5 can handle nonstandard ordering of the standard mac glyphs via offsets.
//   - other versions do not contain post glyph name data. Data of unknown versions is kept in Extra.
type PostTable struct {
	// header (all versions).
	Version            Fixed
	ItalicAngle        Fixed // in degrees.
	UnderlinePosition  FWord
	UnderlineThickness FWord
	IsFixedPitch       uint32
	MinMemType42       uint32
	MaxMemType42       uint32
	MinMemType1        uint32
	MaxMemType1        uint32

	// Version 2.0: per glyph index into the standard names (< 258) or into Names (258 and up).
	GlyphNameIndex []uint16
	Names          []string

	// Version 2.5: per glyph offset into the standard names.
	Offsets []int8

	// Trailing data of versions without a known layout.
	Extra []byte
}

// Tag implements Table.
func (t *PostTable) Tag() Tag { return TagPost }

// NumNamedGlyphs returns the number of glyphs the table has names for.
func (t *PostTable) NumNamedGlyphs() int {
	switch t.Version {
	case postVersion10:
		return len(macGlyphNames)
	case postVersion20:
		return len(t.GlyphNameIndex)
	case postVersion25:
		return len(t.Offsets)
	}
	return 0
}

// GlyphName returns the PostScript name of `gid`, or false when the table has no name for it.
func (t *PostTable) GlyphName(gid GlyphIndex) (GlyphName, bool) {
	i := int(gid)
	switch t.Version {
	case postVersion10:
		if i < len(macGlyphNames) {
			return macGlyphNames[i], true
		}
	case postVersion20:
		if i >= len(t.GlyphNameIndex) {
			return "", false
		}
		ni := int(t.GlyphNameIndex[i])
		if ni < len(macGlyphNames) {
			return macGlyphNames[ni], true
		}
		ni -= len(macGlyphNames)
		if ni < len(t.Names) {
			return GlyphName(t.Names[ni]), true
		}
	case postVersion25:
		if i >= len(t.Offsets) {
			return "", false
		}
		ni := i + int(t.Offsets[i])
		if ni >= 0 && ni < len(macGlyphNames) {
			return macGlyphNames[ni], true
		}
	}
	return "", false
}

// SetGlyphNames switches the table to version 2.0 with `names` as the glyph names. Standard
// Macintosh names are referenced by index and the others are stored once in the name pool.
func (t *PostTable) SetGlyphNames(names []GlyphName) {
	t.Version = postVersion20
	t.Offsets = nil
	t.Extra = nil
	t.GlyphNameIndex = make([]uint16, len(names))
	t.Names = nil
	pool := map[GlyphName]uint16{}
	for i, name := range names {
		if mi, ok := macGlyphIndex[name]; ok {
			t.GlyphNameIndex[i] = mi
			continue
		}
		pi, ok := pool[name]
		if !ok {
			pi = uint16(len(macGlyphNames) + len(t.Names))
			pool[name] = pi
			t.Names = append(t.Names, string(name))
		}
		t.GlyphNameIndex[i] = pi
	}
}

/*
 See https://developer.apple.com/fonts/TrueType-Reference-Manual/RM06/Chap6post.html
 and https://docs.microsoft.com/en-us/typography/opentype/spec/post
 for details regarding the format.
*/

func decodePost(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &PostTable{}
	err := r.read(&t.Version, &t.ItalicAngle, &t.UnderlinePosition, &t.UnderlineThickness, &t.IsFixedPitch)
	if err != nil {
		return nil, err
	}
	err = r.read(&t.MinMemType42, &t.MaxMemType42, &t.MinMemType1, &t.MaxMemType1)
	if err != nil {
		return nil, err
	}

	logrus.Debugf("post version: %v 0x%X", t.Version.Float64(), uint32(t.Version))
	switch t.Version {
	case postVersion10, postVersion30:
	case postVersion20:
		var numGlyphs uint16
		err = r.read(&numGlyphs)
		if err != nil {
			return nil, err
		}
		checkPostGlyphCount(ctx, numGlyphs)
		err = r.readSlice(&t.GlyphNameIndex, int(numGlyphs))
		if err != nil {
			return nil, err
		}

		pool := cryptobyte.String(r.rest())
		for !pool.Empty() {
			var name cryptobyte.String
			if !pool.ReadUint8LengthPrefixed(&name) {
				ctx.report("names", SeverityMinor, r.Offset()+int64(r.Remaining()-len(pool)),
					"truncated glyph name")
				break
			}
			t.Names = append(t.Names, string(name))
		}
		logrus.Tracef("post: %d custom names", len(t.Names))

		for gid, ni := range t.GlyphNameIndex {
			if int(ni) >= len(macGlyphNames)+len(t.Names) {
				ctx.report("glyphNameIndex", SeverityMajor, 34+2*int64(gid),
					"glyph %d refers to name %d outside the pool of %d", gid, ni, len(t.Names))
			}
		}
	case postVersion25:
		var numGlyphs uint16
		err = r.read(&numGlyphs)
		if err != nil {
			return nil, err
		}
		checkPostGlyphCount(ctx, numGlyphs)
		err = r.readSlice(&t.Offsets, int(numGlyphs))
		if err != nil {
			return nil, err
		}
	default:
		logrus.Debugf("Unsupported version of post (0x%X) - trailing data kept raw", uint32(t.Version))
		t.Extra = append([]byte(nil), r.rest()...)
	}

	return t, nil
}

// checkPostGlyphCount warns when the post glyph count differs from maxp.numGlyphs.
func checkPostGlyphCount(ctx *decodeContext, numGlyphs uint16) {
	maxp := ctx.maxp()
	if maxp == nil {
		ctx.report("numGlyphs", SeverityMinor, 32, "maxp table missing, glyph count unchecked")
		return
	}
	if maxp.NumGlyphs != numGlyphs {
		ctx.report("numGlyphs", SeverityMinor, 32, "post numGlyphs != maxp.numGlyphs (%d != %d)",
			numGlyphs, maxp.NumGlyphs)
	}
}

func (t *PostTable) encode(w *byteWriter, ctx *encodeContext) error {
	err := w.write(t.Version, t.ItalicAngle, t.UnderlinePosition, t.UnderlineThickness, t.IsFixedPitch)
	if err != nil {
		return err
	}
	err = w.write(t.MinMemType42, t.MaxMemType42, t.MinMemType1, t.MaxMemType1)
	if err != nil {
		return err
	}

	switch t.Version {
	case postVersion10, postVersion30:
		return nil
	case postVersion20:
		if err := t.checkGlyphCount(ctx, len(t.GlyphNameIndex)); err != nil {
			return err
		}
		limit := len(macGlyphNames) + len(t.Names)
		for gid, ni := range t.GlyphNameIndex {
			if int(ni) >= limit {
				return fmt.Errorf("%w: post glyph %d name index %d out of range (%d names)",
					ErrInconsistentModel, gid, ni, limit)
			}
		}
		err = w.write(uint16(len(t.GlyphNameIndex)))
		if err != nil {
			return err
		}
		err = w.writeUint16(t.GlyphNameIndex...)
		if err != nil {
			return err
		}
		var b cryptobyte.Builder
		for _, name := range t.Names {
			if len(name) > 255 {
				return fmt.Errorf("%w: glyph name %q longer than 255 bytes", ErrInconsistentModel, name)
			}
			b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
				b.AddBytes([]byte(name))
			})
		}
		pool, err := b.Bytes()
		if err != nil {
			return err
		}
		return w.writeBytes(pool)
	case postVersion25:
		if err := t.checkGlyphCount(ctx, len(t.Offsets)); err != nil {
			return err
		}
		err = w.write(uint16(len(t.Offsets)))
		if err != nil {
			return err
		}
		return w.writeSlice(t.Offsets)
	}
	return w.writeBytes(t.Extra)
}

// checkGlyphCount requires `n` named glyphs to match maxp.numGlyphs.
func (t *PostTable) checkGlyphCount(ctx *encodeContext, n int) error {
	numGlyphs, err := ctx.numGlyphs()
	if err != nil {
		return err
	}
	if n != numGlyphs {
		return fmt.Errorf("%w: post names %d glyphs, maxp has %d", ErrInconsistentModel, n, numGlyphs)
	}
	return nil
}
