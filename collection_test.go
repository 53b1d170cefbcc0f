/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCollection returns two test fonts that differ in their family name.
func newTestCollection(t *testing.T) *Collection {
	t.Helper()
	other := newTestFont(t)
	nr, err := NewNameRecord(3, 1, 0x409, NameIDFamily, "Unitype Other")
	require.NoError(t, err)
	other.Name().Records[0] = nr
	return &Collection{Fonts: []*Font{newTestFont(t), other}}
}

func writeCollection(t *testing.T, c *Collection) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf, nil))
	return buf.Bytes()
}

func TestCollectionWrite(t *testing.T) {
	data := writeCollection(t, newTestCollection(t))
	assert.Equal(t, []byte("ttcf"), data[:4])
	assert.Equal(t, 0, len(data)%4)
	require.NoError(t, Validate(data))

	c, err := ParseCollectionBytes(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), c.MajorVersion)
	require.Len(t, c.Fonts, 2)
	assert.Equal(t, "Unitype Test", c.Fonts[0].Name().NameByID(NameIDFamily))
	assert.Equal(t, "Unitype Other", c.Fonts[1].Name().NameByID(NameIDFamily))

	// Identical tables are stored once.
	for _, tag := range []Tag{TagCmap, TagGlyf, TagHhea, TagHmtx, TagLoca, TagMaxp, TagPost} {
		assert.Equal(t, c.Fonts[0].trec.trMap[tag].offset, c.Fonts[1].trec.trMap[tag].offset, tag.String())
	}
	assert.NotEqual(t, c.Fonts[0].trec.trMap[TagName].offset, c.Fonts[1].trec.trMap[TagName].offset)

	for _, f := range c.Fonts {
		assert.Equal(t, testNumGlyphs, f.NumGlyphs())
		assert.Equal(t, testGlyphTwoSquares, f.GlyphIndex('B'))
		f.DecodeAll()
		assert.Empty(t, f.Diagnostics())
	}

	// The first font is returned for single font parsing.
	fnt, err := ParseBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "Unitype Test", fnt.Name().NameByID(NameIDFamily))

	assert.Equal(t, data, writeCollection(t, c))
}

func TestCollectionSignature(t *testing.T) {
	c := newTestCollection(t)
	c.Signature = []byte{0, 0, 0, 1, 0, 0, 0, 0}
	data := writeCollection(t, c)
	require.NoError(t, Validate(data))

	decoded, err := ParseCollectionBytes(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), decoded.MajorVersion)
	assert.Equal(t, c.Signature, decoded.Signature)
	assert.Len(t, decoded.Fonts, 2)

	// A version 2 header without signature.
	c.Signature = nil
	c.MajorVersion = 2
	decoded, err = ParseCollectionBytes(writeCollection(t, c))
	require.NoError(t, err)
	assert.Equal(t, uint16(2), decoded.MajorVersion)
	assert.Nil(t, decoded.Signature)
}

func TestCollectionErrors(t *testing.T) {
	data := writeCollection(t, newTestCollection(t))

	// Damage the glyf data shared by both fonts.
	c, err := ParseCollectionBytes(data)
	require.NoError(t, err)
	glyf := c.Fonts[0].trec.trMap[TagGlyf]
	damaged := append([]byte(nil), data...)
	damaged[glyf.offset+12] ^= 0x01
	err = Validate(damaged)
	assert.ErrorIs(t, err, ErrCorruptTable)
	assert.Contains(t, err.Error(), "font 0")

	// More fonts than the header holds.
	truncated := append([]byte(nil), data[:16]...)
	binary.BigEndian.PutUint32(truncated[8:], 100)
	_, err = ParseCollectionBytes(truncated)
	assert.ErrorIs(t, err, ErrTruncatedInput)

	// A single font is a collection of one.
	single, err := ParseCollectionBytes(writeFont(t, newTestFont(t), nil))
	require.NoError(t, err)
	assert.Len(t, single.Fonts, 1)
}

// buildDfont returns a resource fork holding `fonts` as 'sfnt' resources, preceded by a 'FOND'
// resource type. Without fonts the fork only has the 'FOND' type.
func buildDfont(t *testing.T, fonts ...[]byte) []byte {
	t.Helper()
	data := &byteWriter{}
	var dataOffsets []uint32
	for _, f := range fonts {
		dataOffsets = append(dataOffsets, uint32(data.Len()))
		require.NoError(t, data.write(uint32(len(f))))
		require.NoError(t, data.writeBytes(f))
	}

	const typeListOffset = 28
	numTypes := 1
	if len(fonts) > 0 {
		numTypes = 2
	}
	refListStart := 2 + 8*numTypes
	m := &byteWriter{}
	require.NoError(t, m.writeBytes(make([]byte, 24)))
	nameListOffset := typeListOffset + refListStart + 12*(1+len(fonts))
	require.NoError(t, m.write(uint16(typeListOffset), uint16(nameListOffset)))
	require.NoError(t, m.write(uint16(numTypes-1)))
	require.NoError(t, m.write(MakeTag("FOND"), uint16(0), uint16(refListStart)))
	if len(fonts) > 0 {
		require.NoError(t, m.write(sfntResourceType, uint16(len(fonts)-1), uint16(refListStart+12)))
	}
	require.NoError(t, m.write(uint16(128), uint16(0xFFFF), uint32(0), uint32(0)))
	for i, off := range dataOffsets {
		require.NoError(t, m.write(uint16(256+i), uint16(0xFFFF), off, uint32(0)))
	}

	w := &byteWriter{}
	require.NoError(t, w.write(uint32(16), uint32(16+data.Len()), uint32(data.Len()), uint32(m.Len())))
	require.NoError(t, w.writeBytes(data.Bytes()))
	require.NoError(t, w.writeBytes(m.Bytes()))
	return w.Bytes()
}

func TestDfont(t *testing.T) {
	c := newTestCollection(t)
	regular := writeFont(t, c.Fonts[0], nil)
	other := writeFont(t, c.Fonts[1], nil)
	data := buildDfont(t, regular, other)

	format, err := detectFormat(data)
	require.NoError(t, err)
	assert.Equal(t, formatDfont, format)

	dfont, err := ParseCollectionBytes(data)
	require.NoError(t, err)
	require.Len(t, dfont.Fonts, 2)
	assert.Equal(t, "Unitype Test", dfont.Fonts[0].Name().NameByID(NameIDFamily))
	assert.Equal(t, "Unitype Other", dfont.Fonts[1].Name().NameByID(NameIDFamily))
	assert.Equal(t, testGlyphSquare, dfont.Fonts[1].GlyphIndex('A'))
	require.NoError(t, Validate(data))

	// A dfont is rewritten as a collection.
	ttc, err := ParseCollectionBytes(writeCollection(t, dfont))
	require.NoError(t, err)
	assert.Len(t, ttc.Fonts, 2)

	_, err = ParseDfont(buildDfont(t))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDetectFormat(t *testing.T) {
	testcases := []struct {
		name   string
		data   []byte
		format int
		err    error
	}{
		{"truetype", []byte{0, 1, 0, 0, 0, 0}, formatSfnt, nil},
		{"cff", []byte("OTTO\x00\x00"), formatSfnt, nil},
		{"apple", []byte("true\x00\x00"), formatSfnt, nil},
		{"collection", []byte("ttcf\x00\x01"), formatCollection, nil},
		{"woff", []byte("wOFF\x00\x01\x00\x00"), 0, ErrUnsupportedFormat},
		{"short", []byte{0, 1}, 0, ErrTruncatedInput},
	}
	for _, tcase := range testcases {
		t.Run(tcase.name, func(t *testing.T) {
			format, err := detectFormat(tcase.data)
			if tcase.err != nil {
				assert.ErrorIs(t, err, tcase.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tcase.format, format)
		})
	}
}

func TestValidate(t *testing.T) {
	data := writeFont(t, newTestFont(t), nil)
	require.NoError(t, Validate(data))
	fnt, err := ParseBytes(data)
	require.NoError(t, err)
	head := fnt.trec.trMap[TagHead]

	testcases := []struct {
		name   string
		modify func(b []byte)
		err    error
	}{
		{
			"checksum adjustment",
			func(b []byte) { b[int(head.offset)+headChecksumAdjustmentOffset+3] ^= 0x01 },
			ErrCorruptTable,
		},
		{
			"table checksum",
			func(b []byte) { b[12+4] ^= 0x01 },
			ErrCorruptTable,
		},
		{
			"overlap",
			func(b []byte) {
				// The second record starts inside the first table.
				first := binary.BigEndian.Uint32(b[12+8:])
				binary.BigEndian.PutUint32(b[12+16+8:], first+4)
			},
			ErrCorruptTable,
		},
		{
			"outside",
			func(b []byte) {
				// post is the last record and the last table.
				binary.BigEndian.PutUint32(b[12+16*8+8:], 1<<20)
			},
			ErrTruncatedInput,
		},
	}
	for _, tcase := range testcases {
		t.Run(tcase.name, func(t *testing.T) {
			b := append([]byte(nil), data...)
			tcase.modify(b)
			assert.ErrorIs(t, Validate(b), tcase.err)
		})
	}

	assert.ErrorIs(t, Validate([]byte("wOFF\x00\x01\x00\x00")), ErrUnsupportedFormat)
}

func TestValidateGaps(t *testing.T) {
	data := writeFont(t, newTestFont(t), nil)
	fnt, err := ParseBytes(data)
	require.NoError(t, err)
	numTables := int(fnt.ot.numTables)
	dirEnd := 12 + 16*numTables
	cmap := fnt.trec.trMap[TagCmap]
	cmapEnd := int(alignTo(uint32(cmap.offset)+cmap.length, 4))

	// withGap inserts 4 zero bytes at `pos` and moves the tables behind it.
	withGap := func(pos int) []byte {
		b := append([]byte(nil), data[:pos]...)
		b = append(b, 0, 0, 0, 0)
		b = append(b, data[pos:]...)
		for i := 0; i < numTables; i++ {
			rec := b[12+16*i+8:]
			if off := binary.BigEndian.Uint32(rec); int(off) >= pos {
				binary.BigEndian.PutUint32(rec, off+4)
			}
		}
		return b
	}

	testcases := []struct {
		name string
		pos  int
		msg  string
	}{
		{"after directory", dirEnd, "4 bytes between directory and cmap"},
		{"between tables", cmapEnd, "4 bytes between cmap and glyf"},
	}
	for _, tcase := range testcases {
		t.Run(tcase.name, func(t *testing.T) {
			b := withGap(tcase.pos)
			fnt, err := ParseBytes(b)
			require.NoError(t, err)
			require.NoError(t, fnt.validateTables())

			err = Validate(b)
			assert.ErrorIs(t, err, ErrCorruptTable)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tcase.msg)
		})
	}
}
