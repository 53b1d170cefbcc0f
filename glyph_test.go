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

func TestPackFlags(t *testing.T) {
	a := OnCurvePoint | XIsSameOrPositiveVector
	b := XShortVector | YShortVector

	testcases := []struct {
		flags  []SimpleGlyphFlag
		packed []byte
	}{
		{nil, nil},
		{[]SimpleGlyphFlag{a}, []byte{uint8(a)}},
		{[]SimpleGlyphFlag{a, a, a, b}, []byte{uint8(a | RepeatFlag), 2, uint8(b)}},
		{[]SimpleGlyphFlag{b, a, a}, []byte{uint8(b), uint8(a | RepeatFlag), 1}},
	}
	for _, tcase := range testcases {
		packed := packFlags(tcase.flags)
		assert.Equal(t, tcase.packed, packed)

		unpacked, err := unpackFlags(newByteReader(packed), len(tcase.flags))
		require.NoError(t, err)
		assert.Equal(t, len(tcase.flags), len(unpacked))
		for i := range unpacked {
			assert.Equal(t, tcase.flags[i], unpacked[i])
		}
	}

	// Runs are limited to 256 flags.
	long := make([]SimpleGlyphFlag, 300)
	for i := range long {
		long[i] = a
	}
	packed := packFlags(long)
	assert.Equal(t, []byte{uint8(a | RepeatFlag), 255, uint8(a | RepeatFlag), 43}, packed)
	unpacked, err := unpackFlags(newByteReader(packed), len(long))
	require.NoError(t, err)
	assert.Equal(t, long, unpacked)

	// Repeats past the number of points.
	_, err = unpackFlags(newByteReader([]byte{uint8(a | RepeatFlag), 5}), 3)
	assert.ErrorIs(t, err, ErrCorruptTable)
}

func TestSimpleGlyphEncoding(t *testing.T) {
	on := OnCurvePoint
	g := &SimpleGlyph{
		EndPtsOfContours: []uint16{2, 6},
		Instructions:     Program{0xB0, 0x01},
		Flags:            []SimpleGlyphFlag{on, 0, on, on | OverlapSimple, on, 0, on},
		X:                []int16{0, 255, 255, -1, 300, -32768, 32767},
		Y:                []int16{0, -255, 1, 1, -256, 0, 0},
	}

	w := &byteWriter{}
	require.NoError(t, g.encode(w))

	decoded, err := decodeSimpleGlyph(newByteReader(w.Bytes()), len(g.EndPtsOfContours))
	require.NoError(t, err)
	assert.Equal(t, g.EndPtsOfContours, decoded.EndPtsOfContours)
	assert.Equal(t, g.Instructions, decoded.Instructions)
	assert.Equal(t, g.X, decoded.X)
	assert.Equal(t, g.Y, decoded.Y)
	for i, flag := range decoded.Flags {
		assert.Equal(t, g.Flags[i], flag&semanticFlags, "point %d", i)
	}
	assert.Equal(t, 7, decoded.NumPoints())

	// Encoding the decoded glyph yields the same data.
	w2 := &byteWriter{}
	require.NoError(t, decoded.encode(w2))
	assert.Equal(t, w.Bytes(), w2.Bytes())

	xMin, yMin, xMax, yMax := g.bounds()
	assert.Equal(t, []int16{-32768, -256, 32767, 1}, []int16{xMin, yMin, xMax, yMax})
}

func TestSimpleGlyphCorrupt(t *testing.T) {
	// Contour end points must not decrease.
	data := []byte{0, 5, 0, 3, 0, 0}
	_, err := decodeSimpleGlyph(newByteReader(data), 2)
	assert.ErrorIs(t, err, ErrCorruptTable)

	// Instructions longer than the glyph data.
	data = []byte{0, 0, 0, 10, 1}
	_, err = decodeSimpleGlyph(newByteReader(data), 1)
	assert.ErrorIs(t, err, ErrTruncatedInput)

	// Missing coordinates.
	data = []byte{0, 0, 0, 0, uint8(OnCurvePoint)}
	_, err = decodeSimpleGlyph(newByteReader(data), 1)
	assert.ErrorIs(t, err, ErrTruncatedInput)
}

func TestCompositeGlyphEncoding(t *testing.T) {
	g := &CompositeGlyph{
		Components: []GlyphComponent{
			{
				Flags:      ArgsAreXYValues | WeHaveAScale | UseMyMetrics,
				GlyphIndex: 1,
				Arg1:       -5,
				Arg2:       7,
				Transform:  []F2Dot14{0x2000},
			},
			{
				Flags:      WeHaveATwoByTwo,
				GlyphIndex: 300,
				Arg1:       3,
				Arg2:       0,
				Transform:  []F2Dot14{0x4000, 0, -0x2000, 0x4000},
			},
		},
		Instructions: Program{0x01},
	}

	w := &byteWriter{}
	require.NoError(t, g.encode(w))
	// Flags, glyph index, 2 byte args and 1 scale value for the first component, flags, glyph
	// index, 2 byte args and 4 matrix values for the second and 3 bytes of instructions.
	assert.Equal(t, 8+14+3, w.Len())

	decoded, err := decodeCompositeGlyph(newByteReader(w.Bytes()))
	require.NoError(t, err)
	require.Len(t, decoded.Components, 2)
	assert.Equal(t, g.Instructions, decoded.Instructions)

	c0, c1 := decoded.Components[0], decoded.Components[1]
	assert.Equal(t, ArgsAreXYValues|WeHaveAScale|UseMyMetrics|MoreComponents, c0.Flags)
	assert.Equal(t, []int32{-5, 7}, []int32{c0.Arg1, c0.Arg2})
	assert.Equal(t, []F2Dot14{0x2000}, c0.Transform)
	assert.Equal(t, -1, c0.PointBase)

	assert.Equal(t, WeHaveATwoByTwo|WeHaveInstructions, c1.Flags)
	assert.Equal(t, GlyphIndex(300), c1.GlyphIndex)
	assert.Equal(t, []int32{3, 0}, []int32{c1.Arg1, c1.Arg2})
	assert.Equal(t, g.Components[1].Transform, c1.Transform)

	assert.Equal(t, "argsAreXYValues|weHaveAScale|moreComponents|useMyMetrics", c0.Flags.String())
}

func TestComponentMatrix(t *testing.T) {
	testcases := []struct {
		name string
		comp GlyphComponent
		x, y float64 // Transformed point 10,10.
	}{
		{"offset", GlyphComponent{Flags: ArgsAreXYValues, Arg1: 10, Arg2: 20}, 20, 30},
		{"scale", GlyphComponent{Flags: ArgsAreXYValues | WeHaveAScale, Arg1: 10, Arg2: 20,
			Transform: []F2Dot14{0x2000}}, 15, 25},
		{"scaled offset", GlyphComponent{Flags: ArgsAreXYValues | WeHaveAScale | ScaledComponentOffset,
			Arg1: 10, Arg2: 20, Transform: []F2Dot14{0x2000}}, 10, 15},
		{"x and y scale", GlyphComponent{Flags: ArgsAreXYValues | WeHaveAnXAndYScale,
			Transform: []F2Dot14{0x4000, -0x4000}}, 10, -10},
		{"two by two", GlyphComponent{Flags: ArgsAreXYValues | WeHaveATwoByTwo,
			Transform: []F2Dot14{0, 0x4000, -0x4000, 0}}, -10, 10},
		{"point numbers", GlyphComponent{Arg1: 10, Arg2: 20}, 10, 10},
	}
	for _, tcase := range testcases {
		t.Run(tcase.name, func(t *testing.T) {
			x, y := tcase.comp.Matrix().Transform(10, 10)
			assert.InDelta(t, tcase.x, x, 1e-9)
			assert.InDelta(t, tcase.y, y, 1e-9)
		})
	}
}

func TestCompositeOutline(t *testing.T) {
	glyf := &GlyfTable{Glyphs: []*Glyph{
		NewSimpleGlyph(squareGlyph(100)),
		NewCompositeGlyph(&CompositeGlyph{Components: []GlyphComponent{
			// Half size square at 10,20.
			{Flags: ArgsAreXYValues | WeHaveAScale, GlyphIndex: 0, Arg1: 10, Arg2: 20,
				Transform: []F2Dot14{0x2000}},
			// Full size square with its first point on the third point of the first square.
			{GlyphIndex: 0, Arg1: 2, Arg2: 0},
		}}, 10, 20, 160, 170),
		nil,
	}}

	n, err := glyf.NumPoints(1)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	o, err := glyf.Outline(1)
	require.NoError(t, err)
	on := func(x, y float64) OutlinePoint { return OutlinePoint{X: x, Y: y, OnCurve: true} }
	expected := &Outline{
		Points: []OutlinePoint{
			on(10, 20), on(60, 20), on(60, 70), on(10, 70),
			on(60, 70), on(160, 70), on(160, 170), on(60, 170),
		},
		EndPoints: []int{3, 7},
	}
	if diff := cmp.Diff(expected, o); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}

	empty, err := glyf.Outline(2)
	require.NoError(t, err)
	assert.Empty(t, empty.Points)

	_, err = glyf.Outline(3)
	assert.ErrorIs(t, err, errRangeCheck)

	// Anchor points out of range.
	glyf.Glyphs[1].Composite.Components[1].Arg1 = 20
	_, err = glyf.Outline(1)
	assert.ErrorIs(t, err, ErrCorruptTable)
}

func TestCompositePointIndex(t *testing.T) {
	on := OnCurvePoint
	pentagon := &SimpleGlyph{
		EndPtsOfContours: []uint16{4},
		Flags:            []SimpleGlyphFlag{on, on, 0, on, on},
		X:                []int16{0, 50, 60, 30, -10},
		Y:                []int16{0, 0, 40, 70, 40},
	}
	f := newTestFont(t)
	f.SetTable(&GlyfTable{Glyphs: []*Glyph{
		nil,
		NewSimpleGlyph(pentagon),
		NewCompositeGlyph(&CompositeGlyph{Components: []GlyphComponent{
			{Flags: ArgsAreXYValues, GlyphIndex: 1},
			{Flags: ArgsAreXYValues, GlyphIndex: 1, Arg1: 10, Arg2: 20},
		}}, -10, 0, 70, 90),
	}})

	glyf := reparse(t, f).Glyf()
	require.NotNil(t, glyf)
	n, err := glyf.NumPoints(2)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	g, err := glyf.Glyph(2)
	require.NoError(t, err)
	assert.Equal(t, 5, g.Composite.Components[1].PointBase)
	assert.Equal(t, 1, g.Composite.Components[1].ContourBase)

	o, err := glyf.Outline(2)
	require.NoError(t, err)
	require.Len(t, o.Points, 10)
	assert.Equal(t, OutlinePoint{X: 60 + 10, Y: 40 + 20}, o.Points[7])
	assert.Equal(t, []int{4, 9}, o.EndPoints)
}

func TestCyclicComposite(t *testing.T) {
	f := newTestFont(t)
	glyphs := f.Glyf().Glyphs
	glyphs[1] = NewCompositeGlyph(&CompositeGlyph{Components: []GlyphComponent{
		{Flags: ArgsAreXYValues, GlyphIndex: 2},
	}}, 0, 0, 100, 100)
	glyphs[2] = NewCompositeGlyph(&CompositeGlyph{Components: []GlyphComponent{
		{Flags: ArgsAreXYValues, GlyphIndex: 0},
		{Flags: ArgsAreXYValues, GlyphIndex: 1},
	}}, 0, 0, 100, 100)

	fnt := reparse(t, f)
	glyf := fnt.Glyf()
	require.NotNil(t, glyf)

	// The glyphs are kept. Point bases from the cyclic reference on are unknown.
	g1, err := glyf.Glyph(1)
	require.NoError(t, err)
	require.NotNil(t, g1)
	assert.Equal(t, -1, g1.Composite.Components[0].PointBase)
	assert.Equal(t, -1, g1.Composite.Components[0].ContourBase)

	g2, err := glyf.Glyph(2)
	require.NoError(t, err)
	require.NotNil(t, g2)
	assert.Equal(t, 0, g2.Composite.Components[0].PointBase)
	assert.Equal(t, -1, g2.Composite.Components[1].PointBase)
	assert.Equal(t, -1, g2.Composite.Components[1].ContourBase)

	diags := fnt.Diagnostics()
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, TagGlyf, d.Table)
		assert.Equal(t, SeverityMajor, d.Severity)
	}
	assert.Equal(t, "glyph 1", diags[0].Section)

	_, err = glyf.Outline(1)
	assert.ErrorIs(t, err, ErrCorruptTable)
	_, err = glyf.NumPoints(2)
	assert.ErrorIs(t, err, ErrCorruptTable)
}
