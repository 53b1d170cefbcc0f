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
	"golang.org/x/image/font/gofont/goregular"
)

func TestByteReaderRead(t *testing.T) {
	data := []byte{
		0x00, 0x01, 0x80, 0x00, // Fixed 1.5
		0xFF, 0xFE, // int16 -2
		0xC0, 0x00, // F2Dot14 -1.0
		'g', 'l', 'y', 'f', // Tag
		0x00, 0x00, 0x00, 0x00, 0xD8, 0x9A, 0x5E, 0x48, // LongDateTime
		0x7F, // uint8
	}
	r := newByteReader(data)

	var fixed Fixed
	var i16 int16
	var f2 F2Dot14
	var tag Tag
	var ldt LongDateTime
	var u8 uint8
	err := r.read(&fixed, &i16, &f2, &tag, &ldt, &u8)
	require.NoError(t, err)
	assert.Equal(t, 1.5, fixed.Float64())
	assert.Equal(t, int16(-2), i16)
	assert.Equal(t, -1.0, f2.Float64())
	assert.Equal(t, TagGlyf, tag)
	assert.Equal(t, LongDateTime(0xD89A5E48), ldt)
	assert.Equal(t, uint8(0x7F), u8)
	assert.Equal(t, 0, r.Remaining())

	// Reading past the end.
	err = r.read(&u8)
	assert.ErrorIs(t, err, ErrTruncatedInput)

	// Unsupported field types.
	r = newByteReader(data)
	var s string
	err = r.read(&s)
	assert.ErrorIs(t, err, errTypeCheck)
}

func TestByteReaderSub(t *testing.T) {
	r := newByteReader([]byte{0, 1, 2, 3, 4, 5, 6, 7})

	sr, err := r.sub(2, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, sr.Len())

	var vals []uint16
	require.NoError(t, sr.readSlice(&vals, 2))
	assert.Equal(t, []uint16{0x0203, 0x0405}, vals)

	_, err = r.sub(6, 4)
	assert.ErrorIs(t, err, ErrTruncatedInput)

	assert.ErrorIs(t, r.Seek(9), ErrTruncatedInput)
	require.NoError(t, r.Seek(5))
	assert.Equal(t, []byte{5, 6, 7}, r.rest())
	assert.Equal(t, int64(5), r.Offset())
}

func TestByteWriterReservation(t *testing.T) {
	w := &byteWriter{}
	require.NoError(t, w.write(uint16(1)))
	res := w.reserve(6)
	require.NoError(t, w.writeBytes([]byte{0xAA}))
	w.pad(4)
	assert.Equal(t, 12, w.Len())

	require.NoError(t, res.fill(offset32(0x01020304), int16(-1)))
	assert.Equal(t, []byte{0, 1, 1, 2, 3, 4, 0xFF, 0xFF, 0xAA, 0, 0, 0}, w.Bytes())

	// The filled values must match the reservation exactly.
	assert.ErrorIs(t, res.fill(uint16(1)), errRangeCheck)

	require.NoError(t, w.writeUint32At(8, 0xDEADBEEF))
	assert.ErrorIs(t, w.writeUint32At(10, 0), errRangeCheck)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, w.Bytes()[8:])
}

func TestByteWriterFlush(t *testing.T) {
	var buf bytes.Buffer
	w := newByteWriter(&buf)
	require.NoError(t, w.write(MakeTag("OTTO"), Fixed(0x00010000), LongDateTime(1)))
	require.NoError(t, w.writeSlice([]int8{-1, 1}))
	require.NoError(t, w.flush())
	assert.Equal(t, 0, w.Len())
	assert.Equal(t, []byte{'O', 'T', 'T', 'O', 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0xFF, 1}, buf.Bytes())

	assert.ErrorIs(t, (&byteWriter{}).flush(), errNilReceiver)
	assert.ErrorIs(t, w.writeSlice([]string{"x"}), errTypeCheck)
}

func TestCalcChecksum(t *testing.T) {
	testcases := []struct {
		data     []byte
		expected uint32
	}{
		{nil, 0},
		{[]byte{1, 2, 3}, 0x01020300},
		{[]byte{0, 0, 0, 1, 0, 0, 0, 2}, 3},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 2, 0x10}, 0x10000001},
	}
	for _, tcase := range testcases {
		assert.Equal(t, tcase.expected, calcChecksum(tcase.data), "% X", tcase.data)
	}
}

// Reading values through byteReader.read compared with the typed readers it dispatches to.

func BenchmarkReadFields(b *testing.B) {
	data := goregular.TTF
	var sum int64
	for i := 0; i < b.N; i++ {
		r := newByteReader(data)
		for j := 0; j < 1000; j++ {
			var val offset16
			r.read(&val)
			sum += int64(val)
		}
	}
	b.Logf("Result: %d (N: %d)", sum, b.N)
}

func BenchmarkReadUint16(b *testing.B) {
	data := goregular.TTF
	var sum int64
	for i := 0; i < b.N; i++ {
		r := newByteReader(data)
		for j := 0; j < 1000; j++ {
			val, _ := r.readUint16()
			sum += int64(val)
		}
	}
	b.Logf("Result: %d (N: %d)", sum, b.N)
}

func BenchmarkParseGoRegular(b *testing.B) {
	for i := 0; i < b.N; i++ {
		fnt, err := ParseBytes(goregular.TTF)
		if err != nil {
			b.Fatalf("Error: %v", err)
		}
		fnt.DecodeAll()
	}
}
