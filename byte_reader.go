/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"
)

// byteReader provides sequential big-endian access to a fixed byte region, typically the data of a
// single table. Reads that go past the end of the region fail with ErrTruncatedInput.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

// Offset returns current offset position of `r`.
func (r *byteReader) Offset() int64 {
	return int64(r.pos)
}

// Len returns the size of the region.
func (r *byteReader) Len() int {
	return len(r.data)
}

// Remaining returns the number of unread bytes.
func (r *byteReader) Remaining() int {
	return len(r.data) - r.pos
}

// Seek seeks to offset.
func (r *byteReader) Seek(offset int64) error {
	if offset < 0 || offset > int64(len(r.data)) {
		return fmt.Errorf("%w: seek to %d in region of %d bytes", ErrTruncatedInput, offset, len(r.data))
	}
	r.pos = int(offset)
	return nil
}

// Skip skips over `n` bytes.
func (r *byteReader) Skip(n int) error {
	_, err := r.next(n)
	return err
}

// next returns the next `n` bytes and advances.
func (r *byteReader) next(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedInput, n, r.pos, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// sub returns a reader over `length` bytes starting at `offset` of the region.
func (r *byteReader) sub(offset, length int) (*byteReader, error) {
	if offset < 0 || length < 0 || offset+length > len(r.data) {
		return nil, fmt.Errorf("%w: range [%d,%d) outside region of %d bytes", ErrTruncatedInput, offset, offset+length, len(r.data))
	}
	return newByteReader(r.data[offset : offset+length]), nil
}

// rest returns the unread part of the region without advancing.
func (r *byteReader) rest() []byte {
	return r.data[r.pos:]
}

// readBytes reads bytes straight from `r`. The result is a copy.
func (r *byteReader) readBytes(bp *[]byte, length int) error {
	b, err := r.next(length)
	if err != nil {
		return err
	}
	*bp = make([]byte, length)
	copy(*bp, b)
	return nil
}

// readSlice reads a series of values into `slice` from `r` (big endian).
func (r *byteReader) readSlice(slice interface{}, length int) error {
	if length < 0 {
		return errRangeCheck
	}
	switch t := slice.(type) {
	case *[]uint8:
		b, err := r.next(length)
		if err != nil {
			return err
		}
		*t = append(*t, b...)
	case *[]int8:
		b, err := r.next(length)
		if err != nil {
			return err
		}
		for _, val := range b {
			*t = append(*t, int8(val))
		}
	case *[]uint16:
		b, err := r.next(2 * length)
		if err != nil {
			return err
		}
		for i := 0; i < length; i++ {
			*t = append(*t, binary.BigEndian.Uint16(b[2*i:]))
		}
	case *[]int16:
		b, err := r.next(2 * length)
		if err != nil {
			return err
		}
		for i := 0; i < length; i++ {
			*t = append(*t, int16(binary.BigEndian.Uint16(b[2*i:])))
		}
	case *[]FWord:
		b, err := r.next(2 * length)
		if err != nil {
			return err
		}
		for i := 0; i < length; i++ {
			*t = append(*t, FWord(binary.BigEndian.Uint16(b[2*i:])))
		}
	case *[]uint32:
		b, err := r.next(4 * length)
		if err != nil {
			return err
		}
		for i := 0; i < length; i++ {
			*t = append(*t, binary.BigEndian.Uint32(b[4*i:]))
		}
	case *[]offset16:
		b, err := r.next(2 * length)
		if err != nil {
			return err
		}
		for i := 0; i < length; i++ {
			*t = append(*t, offset16(binary.BigEndian.Uint16(b[2*i:])))
		}
	case *[]offset32:
		b, err := r.next(4 * length)
		if err != nil {
			return err
		}
		for i := 0; i < length; i++ {
			*t = append(*t, offset32(binary.BigEndian.Uint32(b[4*i:])))
		}

	default:
		logrus.Debugf("Unsupported type: %T (readSlice)", t)
		return errTypeCheck
	}
	return nil
}

// read reads a series of fields from `r`.
func (r *byteReader) read(fields ...interface{}) error {
	for _, f := range fields {
		switch t := f.(type) {
		case *F2Dot14:
			val, err := r.readUint16()
			if err != nil {
				return err
			}
			*t = F2Dot14(val)
		case *Fixed:
			val, err := r.readUint32()
			if err != nil {
				return err
			}
			*t = Fixed(val)
		case *FWord:
			val, err := r.readUint16()
			if err != nil {
				return err
			}
			*t = FWord(val)
		case *UFWord:
			val, err := r.readUint16()
			if err != nil {
				return err
			}
			*t = UFWord(val)
		case *int8:
			val, err := r.readUint8()
			if err != nil {
				return err
			}
			*t = int8(val)
		case *int16:
			val, err := r.readUint16()
			if err != nil {
				return err
			}
			*t = int16(val)
		case *int32:
			val, err := r.readUint32()
			if err != nil {
				return err
			}
			*t = int32(val)
		case *LongDateTime:
			val, err := r.readUint64()
			if err != nil {
				return err
			}
			*t = LongDateTime(val)
		case *offset16:
			val, err := r.readUint16()
			if err != nil {
				return err
			}
			*t = offset16(val)
		case *offset32:
			val, err := r.readUint32()
			if err != nil {
				return err
			}
			*t = offset32(val)
		case *uint8:
			val, err := r.readUint8()
			if err != nil {
				return err
			}
			*t = val
		case *uint16:
			val, err := r.readUint16()
			if err != nil {
				return err
			}
			*t = val
		case *GlyphIndex:
			val, err := r.readUint16()
			if err != nil {
				return err
			}
			*t = GlyphIndex(val)
		case *Tag:
			b, err := r.next(4)
			if err != nil {
				return err
			}
			copy(t[:], b)
		case *uint32:
			val, err := r.readUint32()
			if err != nil {
				return err
			}
			*t = val
		case *uint64:
			val, err := r.readUint64()
			if err != nil {
				return err
			}
			*t = val

		default:
			logrus.Debugf("Unsupported type: %T (read)", t)
			return errTypeCheck
		}
	}
	return nil
}

func (r *byteReader) readUint8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *byteReader) readUint16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *byteReader) readInt16() (int16, error) {
	val, err := r.readUint16()
	return int16(val), err
}

func (r *byteReader) readUint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *byteReader) readUint64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}
