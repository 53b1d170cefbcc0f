/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernTable(t *testing.T) {
	kern := &KernTable{Subtables: []*KernSubtable{
		{
			Coverage: kernHorizontal,
			Pairs: []KernPair{
				{Left: 3, Right: 1, Value: -20},
				{Left: 1, Right: 2, Value: -50},
				{Left: 1, Right: 3, Value: 10},
			},
		},
		{
			Coverage: kernHorizontal,
			Pairs:    []KernPair{{Left: 1, Right: 2, Value: -5}},
		},
		{
			// Cross-stream values are not kerning.
			Coverage: kernHorizontal | kernCrossStream,
			Pairs:    []KernPair{{Left: 1, Right: 2, Value: 100}},
		},
		{
			Format:   2,
			Coverage: kernHorizontal,
			Data:     []byte{0, 1, 2, 3},
		},
	}}

	w := &byteWriter{}
	require.NoError(t, kern.encode(w, nil))
	assert.Equal(t, 4+(6+8+18)+(6+8+6)+(6+8+6)+(6+4), w.Len())

	ctx := newTestDecodeContext(TagKern)
	tbl, err := decodeKern(newByteReader(w.Bytes()), ctx)
	require.NoError(t, err)
	assert.Empty(t, ctx.font.Diagnostics())
	decoded := tbl.(*KernTable)
	require.Len(t, decoded.Subtables, 4)
	assert.Equal(t, kern, decoded)

	// Pairs are sorted on write.
	assert.Equal(t, GlyphIndex(3), decoded.Subtables[0].Pairs[2].Left)

	testcases := []struct {
		left, right GlyphIndex
		value       FWord
	}{
		{1, 2, -55},
		{1, 3, 10},
		{3, 1, -20},
		{2, 1, 0},
	}
	for _, tcase := range testcases {
		assert.Equal(t, tcase.value, decoded.Kerning(tcase.left, tcase.right), "%d/%d", tcase.left, tcase.right)
	}
}

func TestKernOverride(t *testing.T) {
	kern := &KernTable{Subtables: []*KernSubtable{
		{Coverage: kernHorizontal, Pairs: []KernPair{{Left: 1, Right: 2, Value: -50}}},
		{Coverage: kernHorizontal | kernOverride, Pairs: []KernPair{{Left: 1, Right: 2, Value: -10}}},
		{Coverage: kernHorizontal | kernMinimum, Pairs: []KernPair{{Left: 1, Right: 2, Value: 5}}},
	}}
	assert.Equal(t, FWord(5), kern.Kerning(1, 2))

	kern.Subtables = kern.Subtables[:2]
	assert.Equal(t, FWord(-10), kern.Kerning(1, 2))
}

func TestKernApple(t *testing.T) {
	kern := &KernTable{Apple: true, Subtables: []*KernSubtable{
		{Pairs: []KernPair{{Left: 4, Right: 5, Value: -30}}},
		{Coverage: kernAppleVertical, Pairs: []KernPair{{Left: 4, Right: 5, Value: 7}}},
	}}

	w := &byteWriter{}
	require.NoError(t, kern.encode(w, nil))
	assert.Equal(t, []byte{0, 1, 0, 0, 0, 0, 0, 2}, w.Bytes()[:8])
	assert.Equal(t, []byte{0, 0, 0, 8 + 8 + 6, 0x00, 0x00, 0, 0}, w.Bytes()[8:16])

	ctx := newTestDecodeContext(TagKern)
	tbl, err := decodeKern(newByteReader(w.Bytes()), ctx)
	require.NoError(t, err)
	decoded := tbl.(*KernTable)
	assert.True(t, decoded.Apple)
	assert.Equal(t, kernAppleVertical, decoded.Subtables[1].Coverage)
	assert.Equal(t, FWord(-30), decoded.Kerning(4, 5))
}

func TestKernTruncated(t *testing.T) {
	w := &byteWriter{}
	require.NoError(t, w.write(uint16(0), uint16(1)))
	require.NoError(t, w.write(uint16(0), uint16(6+8+12), uint16(kernHorizontal)))
	require.NoError(t, w.write(uint16(2), uint16(12), uint16(1), uint16(0)))
	require.NoError(t, w.write(GlyphIndex(1), GlyphIndex(2), FWord(-1)))

	ctx := newTestDecodeContext(TagKern)
	tbl, err := decodeKern(newByteReader(w.Bytes()), ctx)
	require.NoError(t, err)
	assert.Empty(t, tbl.(*KernTable).Subtables)
	diags := ctx.font.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityMajor, diags[0].Severity)

	_, err = decodeKern(newByteReader([]byte{0, 2, 0, 0}), ctx)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
