/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"encoding/binary"
	"math"
	"strings"
	"time"

	"golang.org/x/exp/constraints"
)

// GlyphName is a representation of a glyph name, e.g. from Adobe's glyph list.
type GlyphName string

// GlyphIndex or Glyph ID (GID) represent each glyph within a font.
type GlyphIndex uint16

/*
Types in truetype fonts:
https://docs.microsoft.com/en-us/typography/opentype/spec/otff

Data Type	Description
--------------------------------------------------------
uint8	  8-bit unsigned integer.
int8	  8-bit signed integer.
uint16	  16-bit unsigned integer.
int16	  16-bit signed integer.
uint24	  24-bit unsigned integer.
uint32	  32-bit unsigned integer.
int32	  32-bit signed integer.
Fixed	  32-bit signed fixed-point number (16.16)
FWORD	  int16 that describes a quantity in font design units.
UFWORD	  uint16 that describes a quantity in font design units.
F2DOT14	  16-bit signed fixed number with the low 14 bits of fraction (2.14).
LONGDATETIME
          Date represented in number of seconds since 12:00 midnight, January 1, 1904.
          The value is represented as a signed 64-bit integer.
Tag	      Array of four uint8s (length = 32 bits) used to identify a table,
          design-variation axis, script, language system, feature, or baseline
Offset16  Short offset to a table, same as uint16, NULL offset = 0x0000
Offset32  Long offset to a table, same as uint32, NULL offset = 0x00000000
*/

// Fixed is a 32-bit signed fixed-point number (16.16).
type Fixed int32

// FWord is an int16 quantity in font design units.
type FWord int16

// UFWord is a uint16 quantity in font design units.
type UFWord uint16

// F2Dot14 is a 16-bit signed fixed number with the low 14 bits of fraction (2.14).
type F2Dot14 int16

// LongDateTime is the number of seconds since 12:00 midnight, January 1, 1904 UTC.
type LongDateTime int64

// Tag identifies a table, e.g. "glyf".
type Tag [4]uint8

type offset16 uint16
type offset32 uint32

// MakeTag returns the tag for `s`, trimmed or padded with spaces to 4 bytes.
func MakeTag(s string) Tag {
	bb := []byte(s)
	if len(bb) > 4 {
		// Trim to 4 bytes.
		bb = bb[:4]
	}
	for len(bb) < 4 {
		// Pad with spaces to fill 4 bytes.
		bb = append(bb, ' ')
	}

	var t Tag
	copy(t[:], bb)
	return t
}

func (t Tag) String() string {
	return strings.TrimSpace(string(t[:]))
}

// Uint32 returns `t` as a big-endian unsigned integer. Tables are ordered by this value.
func (t Tag) Uint32() uint32 {
	return binary.BigEndian.Uint32(t[:])
}

// Parts returns the integral and decimal portions of `f`.
func (f Fixed) Parts() (uint16, uint16) {
	return uint16(uint32(f) >> 16), uint16(uint32(f) & 0xFFFF)
}

// Float64 returns `f` as a float64.
func (f Fixed) Float64() float64 {
	l, r := f.Parts()
	integral := float64(int16(l))
	fraction := float64(r) / 65536.0
	return integral + fraction
}

// FixedFromFloat returns the 16.16 fixed-point value nearest to `v`.
func FixedFromFloat(v float64) Fixed {
	return Fixed(int32(math.Round(v * 65536)))
}

// Float64 returns `f` as a float64.
func (f F2Dot14) Float64() float64 {
	return float64(f) / 16384.0
}

// F2Dot14FromFloat returns the 2.14 fixed-point value nearest to `v`, clamped to the
// representable range [-2, 2).
func F2Dot14FromFloat(v float64) F2Dot14 {
	n := math.Round(v * 16384)
	if n > math.MaxInt16 {
		n = math.MaxInt16
	} else if n < math.MinInt16 {
		n = math.MinInt16
	}
	return F2Dot14(int16(n))
}

var epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// Time returns `d` as a time.Time in UTC.
func (d LongDateTime) Time() time.Time {
	return time.Unix(epoch1904.Unix()+int64(d), 0).UTC()
}

// LongDateTimeFromTime returns `t` as seconds since the 1904 epoch.
func LongDateTimeFromTime(t time.Time) LongDateTime {
	return LongDateTime(t.Unix() - epoch1904.Unix())
}

// alignTo rounds `n` up to a multiple of `align`.
func alignTo[T constraints.Integer](n, align T) T {
	return (n + align - 1) / align * align
}
