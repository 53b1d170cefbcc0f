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

func TestPostGlyphNames(t *testing.T) {
	f := newTestFont(t)
	f.Post().SetGlyphNames([]GlyphName{".notdef", "a", "a.alt"})
	post := f.Post()
	assert.Equal(t, []uint16{0, 68, 258}, post.GlyphNameIndex)
	assert.Equal(t, []string{"a.alt"}, post.Names)

	// Repeated names share the pool entry.
	post.SetGlyphNames([]GlyphName{"a.alt", "b.alt", "a.alt"})
	assert.Equal(t, []uint16{258, 259, 258}, post.GlyphNameIndex)
	assert.Equal(t, []string{"a.alt", "b.alt"}, post.Names)

	fnt := reparse(t, f)
	decoded := fnt.Post()
	require.NotNil(t, decoded)
	assert.Equal(t, postVersion20, decoded.Version)
	assert.Equal(t, FWord(-100), decoded.UnderlinePosition)
	assert.Equal(t, 3, decoded.NumNamedGlyphs())
	for gid, expected := range []GlyphName{"a.alt", "b.alt", "a.alt"} {
		name, ok := decoded.GlyphName(GlyphIndex(gid))
		require.True(t, ok)
		assert.Equal(t, expected, name)
	}
	_, ok := decoded.GlyphName(3)
	assert.False(t, ok)
}

func TestPostVersions(t *testing.T) {
	testcases := []struct {
		name     string
		post     *PostTable
		numNamed int
		gid      GlyphIndex
		expected GlyphName
		ok       bool
	}{
		{"1.0", &PostTable{Version: postVersion10}, 258, 68, "a", true},
		{"2.5", &PostTable{Version: postVersion25, Offsets: []int8{0, 1, 66}}, 3, 2, "a", true},
		{"2.5 first", &PostTable{Version: postVersion25, Offsets: []int8{0, 1, 66}}, 3, 1, "nonmarkingreturn", true},
		{"3.0", &PostTable{Version: postVersion30}, 0, 1, "", false},
	}
	for _, tcase := range testcases {
		t.Run(tcase.name, func(t *testing.T) {
			f := newTestFont(t)
			f.SetTable(tcase.post)
			decoded := reparse(t, f).Post()
			require.NotNil(t, decoded)
			assert.Equal(t, tcase.post.Version, decoded.Version)
			assert.Equal(t, tcase.numNamed, decoded.NumNamedGlyphs())
			name, ok := decoded.GlyphName(tcase.gid)
			assert.Equal(t, tcase.ok, ok)
			assert.Equal(t, tcase.expected, name)
		})
	}
}

func TestPostUnknownVersion(t *testing.T) {
	f := newTestFont(t)
	f.SetTable(&PostTable{Version: 0x00040000, Extra: []byte{1, 2, 3, 4}})

	decoded := reparse(t, f).Post()
	require.NotNil(t, decoded)
	assert.Equal(t, Fixed(0x00040000), decoded.Version)
	assert.Equal(t, []byte{1, 2, 3, 4}, decoded.Extra)
	assert.Equal(t, 0, decoded.NumNamedGlyphs())
}

func TestPostDiagnostics(t *testing.T) {
	w := &byteWriter{}
	require.NoError(t, w.write(postVersion20, Fixed(0), FWord(0), FWord(0), uint32(0)))
	require.NoError(t, w.write(uint32(0), uint32(0), uint32(0), uint32(0)))
	require.NoError(t, w.writeUint16(2, 0, 259))
	require.NoError(t, w.writeBytes([]byte{3, 'a', 'b', 'c', 9, 'x'}))

	ctx := newTestDecodeContext(TagPost)
	tbl, err := decodePost(newByteReader(w.Bytes()), ctx)
	require.NoError(t, err)
	post := tbl.(*PostTable)
	assert.Equal(t, []string{"abc"}, post.Names)

	var issues []string
	for _, d := range ctx.font.Diagnostics() {
		issues = append(issues, d.Section)
	}
	// No maxp, a truncated name and an index past the pool.
	assert.Equal(t, []string{"numGlyphs", "names", "glyphNameIndex"}, issues)
}

func TestPostGlyphCountMismatch(t *testing.T) {
	f := newTestFont(t)
	f.Post().SetGlyphNames([]GlyphName{".notdef"})

	var buf []byte
	err := f.Write(&sliceWriter{&buf}, nil)
	assert.ErrorIs(t, err, ErrInconsistentModel)
}
