/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// byteWriter appends big-endian binary data as fit for truetype fonts. Writes are buffered until
// flushed, which allows reserving space for fields whose value is known only later (lengths,
// offsets, checksums) and filling it in afterwards.
type byteWriter struct {
	w   io.Writer
	buf []byte
}

func newByteWriter(w io.Writer) *byteWriter {
	return &byteWriter{
		w: w,
	}
}

func (w *byteWriter) flush() error {
	if w.w == nil {
		return errNilReceiver
	}
	_, err := w.w.Write(w.buf)
	if err != nil {
		return err
	}

	w.buf = w.buf[:0]
	return nil
}

// Len returns the length of the current buffer, i.e. the position of the append cursor.
func (w *byteWriter) Len() int {
	return len(w.buf)
}

// Bytes returns the buffered data.
func (w *byteWriter) Bytes() []byte {
	return w.buf
}

// checksum returns the checksum of the current buffer.
func (w *byteWriter) checksum() uint32 {
	return calcChecksum(w.buf)
}

// checksumRange returns the checksum of buffer bytes [start, end).
func (w *byteWriter) checksumRange(start, end int) uint32 {
	return calcChecksum(w.buf[start:end])
}

// calcChecksum sums `data` as big-endian uint32 words, zero padding the last word.
func calcChecksum(data []byte) uint32 {
	var sum uint32
	n := len(data) &^ 3
	for i := 0; i < n; i += 4 {
		sum += binary.BigEndian.Uint32(data[i:])
	}
	if n < len(data) {
		var last [4]byte
		copy(last[:], data[n:])
		sum += binary.BigEndian.Uint32(last[:])
	}
	return sum
}

// reservation is a region of the buffer set aside for later filling.
type reservation struct {
	w   *byteWriter
	pos int
	n   int
}

// reserve appends `n` zero bytes and returns a handle for filling them in later.
func (w *byteWriter) reserve(n int) reservation {
	pos := len(w.buf)
	w.buf = append(w.buf, make([]byte, n)...)
	return reservation{w: w, pos: pos, n: n}
}

// fill writes `fields` into the reserved region without disturbing the append cursor.
// The fields must fit the reserved size exactly.
func (res reservation) fill(fields ...interface{}) error {
	tmp := &byteWriter{}
	if err := tmp.write(fields...); err != nil {
		return err
	}
	if tmp.Len() != res.n {
		logrus.Debugf("Reservation size mismatch (%d != %d)", tmp.Len(), res.n)
		return errRangeCheck
	}
	copy(res.w.buf[res.pos:], tmp.buf)
	return nil
}

// pad appends zero bytes until the length is a multiple of `align`.
func (w *byteWriter) pad(align int) {
	for len(w.buf)%align != 0 {
		w.buf = append(w.buf, 0)
	}
}

// writeUint32At overwrites 4 bytes at absolute position `pos`.
func (w *byteWriter) writeUint32At(pos int, val uint32) error {
	if pos < 0 || pos+4 > len(w.buf) {
		return errRangeCheck
	}
	binary.BigEndian.PutUint32(w.buf[pos:], val)
	return nil
}

func (w *byteWriter) writeBytes(b []byte) error {
	w.buf = append(w.buf, b...)
	return nil
}

func (w *byteWriter) writeSlice(slice interface{}) error {
	switch t := slice.(type) {
	case []uint8:
		w.buf = append(w.buf, t...)
	case []int8:
		for _, val := range t {
			w.buf = append(w.buf, uint8(val))
		}
	case []uint16:
		return w.writeUint16(t...)
	case []int16:
		return w.writeInt16(t...)
	case []FWord:
		for _, val := range t {
			w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(val))
		}
	case []uint32:
		for _, val := range t {
			w.buf = binary.BigEndian.AppendUint32(w.buf, val)
		}
	case []offset16:
		for _, val := range t {
			w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(val))
		}
	case []offset32:
		for _, val := range t {
			w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(val))
		}
	default:
		logrus.Debugf("Write type check error: %T (slice)", t)
		return errTypeCheck
	}
	return nil
}

// Write a series of values to `w`.
func (w *byteWriter) write(fields ...interface{}) error {
	for _, f := range fields {
		switch t := f.(type) {
		case uint8:
			w.buf = append(w.buf, t)
		case int8:
			w.buf = append(w.buf, uint8(t))
		case uint16:
			w.buf = binary.BigEndian.AppendUint16(w.buf, t)
		case int16:
			w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(t))
		case GlyphIndex:
			w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(t))
		case FWord:
			w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(t))
		case UFWord:
			w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(t))
		case F2Dot14:
			w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(t))
		case offset16:
			w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(t))
		case uint32:
			w.buf = binary.BigEndian.AppendUint32(w.buf, t)
		case int32:
			w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(t))
		case Fixed:
			w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(t))
		case offset32:
			w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(t))
		case Tag:
			w.buf = append(w.buf, t[:]...)
		case uint64:
			w.buf = binary.BigEndian.AppendUint64(w.buf, t)
		case LongDateTime:
			w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(t))
		default:
			logrus.Debugf("Write type check error: %T", t)
			return fmt.Errorf("%w: %T", errTypeCheck, t)
		}
	}

	return nil
}

func (w *byteWriter) writeUint8(vals ...uint8) error {
	w.buf = append(w.buf, vals...)
	return nil
}

func (w *byteWriter) writeUint16(vals ...uint16) error {
	for _, val := range vals {
		w.buf = binary.BigEndian.AppendUint16(w.buf, val)
	}
	return nil
}

func (w *byteWriter) writeInt16(vals ...int16) error {
	for _, val := range vals {
		w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(val))
	}
	return nil
}
