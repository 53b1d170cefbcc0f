/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTableOrder(t *testing.T) {
	data := writeFont(t, newTestFont(t), nil)
	fnt, err := ParseBytes(data)
	require.NoError(t, err)

	expected := []Tag{TagCmap, TagGlyf, TagHead, TagHhea, TagHmtx, TagLoca, TagMaxp, TagName, TagPost}
	assert.Equal(t, expected, fnt.Tags())

	assert.Equal(t, uint16(len(expected)), fnt.ot.numTables)
	assert.Equal(t, uint16(128), fnt.ot.searchRange)
	assert.Equal(t, uint16(3), fnt.ot.entrySelector)
	assert.Equal(t, uint16(16), fnt.ot.rangeShift)

	// Table data follows the directory, 4-byte aligned and in directory order.
	pos := uint32(12 + 16*len(expected))
	for _, ti := range fnt.Directory() {
		assert.Zero(t, ti.Offset%4, ti.Tag.String())
		assert.Equal(t, alignTo(pos, 4), ti.Offset, ti.Tag.String())
		pos = ti.Offset + ti.Length
	}
	assert.Zero(t, len(data)%4)
}

func TestWriteChecksums(t *testing.T) {
	f := newTestFont(t)
	data := writeFont(t, f, nil)

	assert.Equal(t, uint32(checksumMagic), calcChecksum(data))
	require.NoError(t, Validate(data))

	// The adjustment is also stored in the model.
	fnt, err := ParseBytes(data)
	require.NoError(t, err)
	assert.Equal(t, f.Head().CheckSumAdjustment, fnt.Head().CheckSumAdjustment)
	assert.NotZero(t, fnt.Head().CheckSumAdjustment)

	// Any modification is caught.
	data[len(data)-20] ^= 0x01
	assert.ErrorIs(t, Validate(data), ErrCorruptTable)
}

func TestWriteIdempotent(t *testing.T) {
	data := writeFont(t, newTestFont(t), nil)
	fnt, err := ParseBytes(data)
	require.NoError(t, err)

	assert.Equal(t, data, writeFont(t, fnt, nil))
	// Writing again from the same model gives the same bytes.
	assert.Equal(t, data, writeFont(t, fnt, nil))
}

func TestWriteGlyphs(t *testing.T) {
	f := newTestFont(t)
	fnt := reparse(t, f)

	assert.Equal(t, int16(0), fnt.Head().IndexToLocFormat)
	// Glyph 0 is empty, the simple glyph is padded to 22 bytes and the composite takes 24.
	assert.Equal(t, []uint32{0, 0, 22, 46}, fnt.Loca().Offsets)

	glyf := fnt.Glyf()
	require.NotNil(t, glyf)
	for gid := GlyphIndex(0); gid < testNumGlyphs; gid++ {
		want, err := f.Glyf().Outline(gid)
		require.NoError(t, err)
		got, err := glyf.Outline(gid)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("glyph %d outline mismatch (-want +got):\n%s", gid, diff)
		}
	}

	g, err := glyf.Glyph(testGlyphTwoSquares)
	require.NoError(t, err)
	require.True(t, g.IsComposite())
	assert.Equal(t, GlyphHeader{NumberOfContours: -1, XMax: 300, YMax: 100}, g.Header)
	comps := g.Composite.Components
	require.Len(t, comps, 2)
	assert.Equal(t, ArgsAreXYValues|MoreComponents, comps[0].Flags)
	assert.Equal(t, ArgsAreXYValues|Arg1And2AreWords, comps[1].Flags)
	assert.Equal(t, int32(200), comps[1].Arg1)
	assert.Equal(t, 4, comps[1].PointBase)
	assert.Equal(t, 1, comps[1].ContourBase)
}

func TestWriteLongLoca(t *testing.T) {
	// A glyph whose points all need 16-bit deltas pushes the following offsets past the range
	// of the short loca format.
	const numPoints = 40000
	big := &SimpleGlyph{
		EndPtsOfContours: []uint16{numPoints - 1},
		Flags:            make([]SimpleGlyphFlag, numPoints),
		X:                make([]int16, numPoints),
		Y:                make([]int16, numPoints),
	}
	for i := range big.Flags {
		big.Flags[i] = OnCurvePoint
		big.X[i] = int16(300 * (i % 2))
		big.Y[i] = int16(300 * (i % 2))
	}

	f := newTestFont(t)
	f.Glyf().Glyphs[testGlyphSquare] = NewSimpleGlyph(big)
	f.Maxp().MaxPoints = numPoints

	fnt := reparse(t, f)
	assert.Equal(t, int16(1), fnt.Head().IndexToLocFormat)
	assert.Equal(t, int16(1), f.Head().IndexToLocFormat)
	offsets := fnt.Loca().Offsets
	require.Len(t, offsets, testNumGlyphs+1)
	assert.Greater(t, offsets[2], uint32(0x1FFFE))

	n, err := fnt.Glyf().NumPoints(testGlyphTwoSquares)
	require.NoError(t, err)
	assert.Equal(t, 2*numPoints, n)
	require.NoError(t, Validate(writeFont(t, fnt, nil)))
}

func TestWriteUnsupportedTables(t *testing.T) {
	fftm := MakeTag("FFTM")
	f := newTestFont(t)
	f.SetTable(&UnsupportedTable{tag: fftm, Data: []byte{1, 2, 3}})

	fnt, err := ParseBytes(writeFont(t, f, nil))
	require.NoError(t, err)
	assert.False(t, fnt.HasTable(fftm))

	fnt, err = ParseBytes(writeFont(t, f, &WriteOptions{KeepUnsupported: true}))
	require.NoError(t, err)
	require.True(t, fnt.HasTable(fftm))
	assert.Equal(t, fftm, fnt.Tags()[0])
	tbl, ok := fnt.Table(fftm)
	require.True(t, ok)
	require.IsType(t, &UnsupportedTable{}, tbl)
	assert.Equal(t, []byte{1, 2, 3}, tbl.(*UnsupportedTable).Data)
}

func TestWriteInclude(t *testing.T) {
	f := newTestFont(t)
	include := map[Tag]bool{TagHead: true, TagMaxp: true, TagCmap: true, TagName: true}
	fnt, err := ParseBytes(writeFont(t, f, &WriteOptions{Include: include}))
	require.NoError(t, err)
	assert.Equal(t, []Tag{TagCmap, TagHead, TagMaxp, TagName}, fnt.Tags())
	assert.Equal(t, testGlyphTwoSquares, fnt.GlyphIndex('B'))
}

func TestWriteInconsistentModel(t *testing.T) {
	testcases := []struct {
		name   string
		modify func(f *Font)
		opts   *WriteOptions
	}{
		{"hmtx and hhea disagree", func(f *Font) {
			f.Hhea().NumberOfMetrics = 3
		}, nil},
		{"hmtx and maxp disagree", func(f *Font) {
			f.Hmtx().SideBearings = nil
		}, nil},
		{"loca without glyf", func(f *Font) {
			f.RemoveTable(TagGlyf)
		}, nil},
		{"glyf without loca", func(f *Font) {
			f.RemoveTable(TagLoca)
		}, nil},
		{"loca without head", func(f *Font) {
			f.RemoveTable(TagHead)
		}, nil},
		{"glyf without maxp", func(f *Font) {
			f.RemoveTable(TagMaxp)
		}, nil},
		{"include loca without glyf", nil,
			&WriteOptions{Include: map[Tag]bool{TagHead: true, TagMaxp: true, TagLoca: true}}},
		{"include glyf without head", nil,
			&WriteOptions{Include: map[Tag]bool{TagMaxp: true, TagLoca: true, TagGlyf: true}}},
		{"include hmtx without hhea", nil,
			&WriteOptions{Include: map[Tag]bool{TagHead: true, TagMaxp: true, TagHmtx: true}}},
		{"glyph count", func(f *Font) {
			f.Glyf().Glyphs = f.Glyf().Glyphs[:2]
		}, nil},
		{"simple glyph coordinates", func(f *Font) {
			f.Glyf().Glyphs[testGlyphSquare].Simple.X = []int16{0}
		}, nil},
		{"composite transform", func(f *Font) {
			f.Glyf().Glyphs[testGlyphTwoSquares].Composite.Components[0].Flags |= WeHaveAScale
		}, nil},
		{"post name index", func(f *Font) {
			f.Post().GlyphNameIndex[1] = 300
		}, nil},
	}

	for _, tcase := range testcases {
		t.Run(tcase.name, func(t *testing.T) {
			f := newTestFont(t)
			if tcase.modify != nil {
				tcase.modify(f)
			}
			var buf []byte
			err := f.Write(&sliceWriter{&buf}, tcase.opts)
			assert.ErrorIs(t, err, ErrInconsistentModel)
			assert.Empty(t, buf)
		})
	}
}

// sliceWriter appends written data to a slice.
type sliceWriter struct {
	buf *[]byte
}

func (w *sliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}
