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

func TestTableRecordsRead(t *testing.T) {
	w := &byteWriter{}
	records := []tableRecord{
		{tableTag: TagHead, checksum: 0x11111111, offset: 300, length: 54},
		{tableTag: TagCmap, checksum: 0x22222222, offset: 100, length: 200},
		{tableTag: TagHead, checksum: 0x33333333, offset: 400, length: 54}, // Duplicate.
	}
	for _, rec := range records {
		require.NoError(t, rec.write(w))
	}

	trs, err := parseTableRecords(newByteReader(w.Bytes()), len(records))
	require.NoError(t, err)
	require.Len(t, trs.list, 2)
	assert.Equal(t, records[0], *trs.trMap[TagHead])
	assert.Equal(t, records[1], *trs.trMap[TagCmap])

	sorted := trs.byOffset()
	assert.Equal(t, TagCmap, sorted[0].tableTag)
	assert.Equal(t, TagHead, sorted[1].tableTag)

	_, err = parseTableRecords(newByteReader(w.Bytes()), 4)
	assert.ErrorIs(t, err, ErrTruncatedInput)
}

func TestTableRecordsSetRemove(t *testing.T) {
	trs := newTableRecords()
	trs.Set(TagHead, 12, 54, 1)
	trs.Set(TagMaxp, 68, 32, 2)
	trs.Set(TagHead, 100, 54, 3)

	require.Len(t, trs.list, 2)
	assert.Equal(t, TagHead, trs.list[0].tableTag)
	assert.Equal(t, offset32(100), trs.trMap[TagHead].offset)
	assert.Equal(t, uint32(3), trs.list[0].checksum)

	trs.Remove(TagHead)
	require.Len(t, trs.list, 1)
	assert.Equal(t, TagMaxp, trs.list[0].tableTag)
	_, has := trs.trMap[TagHead]
	assert.False(t, has)

	// Removing an absent tag is a no-op.
	trs.Remove(TagGlyf)
	assert.Len(t, trs.list, 1)
}
