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

// Test marshalling and unmarshalling offset table.
func TestOffsetTableReadWrite(t *testing.T) {
	testcases := []struct {
		sfntVersion uint32
		numTables   int
		// Expected offset table parameters.
		expected offsetTable
	}{
		{
			sfntVersionTrueType, 16,
			offsetTable{
				sfntVersion:   0x10000, // opentype
				numTables:     16,
				searchRange:   256,
				entrySelector: 4,
				rangeShift:    0,
			},
		},
		{
			sfntVersionTrueType, 15,
			offsetTable{
				sfntVersion:   0x10000,
				numTables:     15,
				searchRange:   128,
				entrySelector: 3,
				rangeShift:    112,
			},
		},
		{
			sfntVersionOpenType, 18,
			offsetTable{
				sfntVersion:   0x4F54544F, // OTTO
				numTables:     18,
				searchRange:   256,
				entrySelector: 4,
				rangeShift:    32,
			},
		},
		{
			sfntVersionApple, 1,
			offsetTable{
				sfntVersion:   0x74727565, // true
				numTables:     1,
				searchRange:   16,
				entrySelector: 0,
				rangeShift:    0,
			},
		},
	}

	for _, tcase := range testcases {
		ot := newOffsetTable(tcase.sfntVersion, tcase.numTables)
		assert.Equal(t, tcase.expected, *ot)

		w := &byteWriter{}
		require.NoError(t, ot.write(w))
		require.Equal(t, 12, w.Len())

		ot2, err := parseOffsetTable(newByteReader(w.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, ot, ot2)
	}
}

func TestOffsetTableUnknownVersion(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 1, 0, 16, 0, 0, 0, 0}
	_, err := parseOffsetTable(newByteReader(data))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = parseOffsetTable(newByteReader(data[:8]))
	assert.ErrorIs(t, err, ErrTruncatedInput)
}
