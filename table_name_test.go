/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameRecordEncoding(t *testing.T) {
	testcases := []struct {
		platformID, encodingID uint16
		str                    string
		data                   []byte
	}{
		{3, 1, "Aé", []byte{0, 'A', 0, 0xE9}},
		{0, 3, "€", []byte{0x20, 0xAC}},
		{1, 0, "Aé", []byte{'A', 0x8E}}, // Mac Roman.
		{1, 1, "raw", []byte("raw")},    // Kept as is.
	}
	for _, tcase := range testcases {
		nr, err := NewNameRecord(tcase.platformID, tcase.encodingID, 0, NameIDFamily, tcase.str)
		require.NoError(t, err)
		assert.Equal(t, tcase.data, nr.Data)
		assert.Equal(t, tcase.str, nr.String())
	}

	nr := &NameRecord{PlatformID: 3, EncodingID: 1, Data: []byte{0, 'a', 0, 0x07}}
	assert.Equal(t, `a'\a'`, nr.Decoded())
}

func TestNameTable(t *testing.T) {
	record := func(pid, eid, lid, nid uint16, s string) *NameRecord {
		nr, err := NewNameRecord(pid, eid, lid, nid, s)
		require.NoError(t, err)
		return nr
	}
	lang, err := utf16be.NewEncoder().Bytes([]byte("en-GB"))
	require.NoError(t, err)

	name := &NameTable{
		Records: []*NameRecord{
			record(1, 0, 0, NameIDFamily, "Mac Family"),
			record(3, 1, 0x409, NameIDFamily, "Family"),
			record(3, 1, 0x8000, NameIDFamily, "Family"),
			record(3, 1, 0x409, NameIDSubfamily, "Bold"),
			record(1, 0, 0, NameIDCopyright, "(c) Nobody"),
		},
		LangTags: [][]byte{lang},
	}

	w := &byteWriter{}
	require.NoError(t, name.encode(w, nil))

	// 5 records, 1 language tag, and the strings: "Family" is stored once.
	headerLen := 6 + 12*5 + 2 + 4
	assert.Equal(t, headerLen+len("Mac Family")+12+8+len("(c) Nobody")+10, w.Len())

	ctx := newTestDecodeContext(TagName)
	tbl, err := decodeName(newByteReader(w.Bytes()), ctx)
	require.NoError(t, err)
	decoded := tbl.(*NameTable)
	assert.Equal(t, uint16(1), decoded.Format)
	assert.Equal(t, name.Records, decoded.Records)

	assert.Equal(t, "Family", decoded.NameByID(NameIDFamily))
	assert.Equal(t, "Bold", decoded.NameByID(NameIDSubfamily))
	assert.Equal(t, "(c) Nobody", decoded.NameByID(NameIDCopyright))
	assert.Equal(t, "", decoded.NameByID(NameIDPostScriptName))

	tag, ok := decoded.LangTag(0x8000)
	require.True(t, ok)
	assert.Equal(t, "en-GB", tag)
	_, ok = decoded.LangTag(0x8001)
	assert.False(t, ok)
	_, ok = decoded.LangTag(0x409)
	assert.False(t, ok)
}

func TestNameTableStringOutside(t *testing.T) {
	w := &byteWriter{}
	require.NoError(t, w.write(uint16(0), uint16(2), uint16(30)))
	require.NoError(t, w.write(uint16(3), uint16(1), uint16(0x409), uint16(1), uint16(4), uint16(0)))
	require.NoError(t, w.write(uint16(3), uint16(1), uint16(0x409), uint16(2), uint16(4), uint16(2)))
	require.NoError(t, w.writeBytes([]byte{0, 'O', 0, 'K'}))

	ctx := newTestDecodeContext(TagName)
	tbl, err := decodeName(newByteReader(w.Bytes()), ctx)
	require.NoError(t, err)
	decoded := tbl.(*NameTable)
	require.Len(t, decoded.Records, 1)
	assert.Equal(t, "OK", decoded.Records[0].String())

	diags := ctx.font.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityMajor, diags[0].Severity)
	assert.Equal(t, "record 1", diags[0].Section)
}

func TestNameTableLargeStorage(t *testing.T) {
	data := func(b byte) []byte {
		return bytes.Repeat([]byte{0, b}, 20000)
	}
	name := &NameTable{
		Records: []*NameRecord{
			{PlatformID: 3, EncodingID: 1, LanguageID: 0x409, NameID: NameIDCopyright, Data: data('a')},
			{PlatformID: 3, EncodingID: 1, LanguageID: 0x409, NameID: NameIDFull, Data: data('b')},
		},
	}

	// Storage runs past 64K while every string offset fits in 16 bits.
	w := &byteWriter{}
	require.NoError(t, name.encode(w, nil))
	assert.Equal(t, 6+12*2+80000, w.Len())

	ctx := newTestDecodeContext(TagName)
	tbl, err := decodeName(newByteReader(w.Bytes()), ctx)
	require.NoError(t, err)
	assert.Equal(t, name.Records, tbl.(*NameTable).Records)
	assert.Empty(t, ctx.font.Diagnostics())

	// A third string would start beyond 64K.
	name.Records = append(name.Records,
		&NameRecord{PlatformID: 3, EncodingID: 1, LanguageID: 0x409, NameID: NameIDVersion, Data: data('c')})
	assert.ErrorIs(t, name.encode(&byteWriter{}, nil), ErrInconsistentModel)
}
