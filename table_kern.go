/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/sirupsen/logrus"
)

// KernTable represents the kerning table (kern) in either the Microsoft layout (version 0) or the
// Apple layout (version 1.0).
// https://docs.microsoft.com/en-us/typography/opentype/spec/kern
// https://developer.apple.com/fonts/TrueType-Reference-Manual/RM06/Chap6kern.html
type KernTable struct {
	Apple     bool
	Subtables []*KernSubtable
}

// KernSubtable is a kern subtable. Format 0 subtables are decoded into Pairs, the bodies of other
// formats are kept in Data.
type KernSubtable struct {
	Version    uint16 // Microsoft layout only.
	Format     uint8
	Coverage   uint8  // Coverage flags without the format.
	TupleIndex uint16 // Apple layout only.

	Pairs []KernPair
	Data  []byte
}

// KernPair is a kerning value for a pair of glyphs. Positive values move the glyphs apart.
type KernPair struct {
	Left  GlyphIndex
	Right GlyphIndex
	Value FWord
}

// Microsoft coverage flags.
const (
	kernHorizontal  uint8 = 1 << 0
	kernMinimum     uint8 = 1 << 1
	kernCrossStream uint8 = 1 << 2
	kernOverride    uint8 = 1 << 3
)

// Apple coverage flags.
const (
	kernAppleVertical    uint8 = 0x80
	kernAppleCrossStream uint8 = 0x40
	kernAppleVariation   uint8 = 0x20
)

// Tag implements Table.
func (t *KernTable) Tag() Tag { return TagKern }

// horizontal returns true if `st` holds plain horizontal kerning values.
func (t *KernTable) horizontal(st *KernSubtable) bool {
	if st.Format != 0 {
		return false
	}
	if t.Apple {
		return st.Coverage&(kernAppleVertical|kernAppleCrossStream|kernAppleVariation) == 0
	}
	return st.Coverage&(kernHorizontal|kernCrossStream) == kernHorizontal
}

// Kerning returns the combined horizontal kerning of the glyph pair over all format 0 subtables.
func (t *KernTable) Kerning(left, right GlyphIndex) FWord {
	var total FWord
	for _, st := range t.Subtables {
		if !t.horizontal(st) {
			continue
		}
		value, ok := st.lookup(left, right)
		if !ok {
			continue
		}
		switch {
		case !t.Apple && st.Coverage&kernMinimum != 0:
			if total < value {
				total = value
			}
		case !t.Apple && st.Coverage&kernOverride != 0:
			total = value
		default:
			total += value
		}
	}
	return total
}

func kernKey(left, right GlyphIndex) uint32 {
	return uint32(left)<<16 | uint32(right)
}

// lookup finds the pair by binary search. Pairs are sorted by left and right glyph.
func (st *KernSubtable) lookup(left, right GlyphIndex) (FWord, bool) {
	key := kernKey(left, right)
	i := sort.Search(len(st.Pairs), func(i int) bool {
		return kernKey(st.Pairs[i].Left, st.Pairs[i].Right) >= key
	})
	if i < len(st.Pairs) && st.Pairs[i].Left == left && st.Pairs[i].Right == right {
		return st.Pairs[i].Value, true
	}
	return 0, false
}

func decodeKern(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &KernTable{}
	version, err := r.readUint16()
	if err != nil {
		return nil, err
	}

	var nTables uint32
	switch version {
	case 0:
		n, err := r.readUint16()
		if err != nil {
			return nil, err
		}
		nTables = uint32(n)
	case 1:
		t.Apple = true
		var minor uint16
		err = r.read(&minor, &nTables)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: kern version %d", ErrUnsupportedFormat, version)
	}
	logrus.Debugf("kern: apple=%v subtables=%d", t.Apple, nTables)

	for i := 0; i < int(nTables) && r.Remaining() > 0; i++ {
		start := r.Offset()
		section := fmt.Sprintf("subtable %d", i)
		st := &KernSubtable{}
		var length uint32
		var coverage uint16
		headerLen := 6
		if t.Apple {
			err = r.read(&length, &coverage, &st.TupleIndex)
			headerLen = 8
			st.Format, st.Coverage = uint8(coverage), uint8(coverage>>8)
		} else {
			var length16 uint16
			err = r.read(&st.Version, &length16, &coverage)
			length = uint32(length16)
			st.Format, st.Coverage = uint8(coverage>>8), uint8(coverage)
		}
		if err != nil {
			return nil, err
		}

		if st.Format == 0 {
			err = decodeKernPairs(r, st)
			if err != nil {
				ctx.report(section, SeverityMajor, start, "%v", err)
				break
			}
			// The 16-bit length of large Microsoft subtables overflows; the pair count is authoritative.
			if end := start + int64(length); !t.Apple && end != r.Offset() {
				logrus.Debugf("kern subtable %d length %d disagrees with pair count", i, length)
			}
			t.Subtables = append(t.Subtables, st)
			continue
		}

		if int(length) < headerLen {
			ctx.report(section, SeverityMajor, start, "invalid subtable length %d", length)
			break
		}
		data, err := r.next(int(length) - headerLen)
		if err != nil {
			ctx.report(section, SeverityMajor, start, "%v", err)
			break
		}
		logrus.Debugf("kern subtable format %d - kept as raw data", st.Format)
		st.Data = append([]byte(nil), data...)
		t.Subtables = append(t.Subtables, st)
	}
	return t, nil
}

func decodeKernPairs(r *byteReader, st *KernSubtable) error {
	var nPairs, searchRange, entrySelector, rangeShift uint16
	err := r.read(&nPairs, &searchRange, &entrySelector, &rangeShift)
	if err != nil {
		return err
	}
	st.Pairs = make([]KernPair, nPairs)
	for i := range st.Pairs {
		p := &st.Pairs[i]
		err = r.read(&p.Left, &p.Right, &p.Value)
		if err != nil {
			return err
		}
	}
	sorted := sort.SliceIsSorted(st.Pairs, func(i, j int) bool {
		return kernKey(st.Pairs[i].Left, st.Pairs[i].Right) < kernKey(st.Pairs[j].Left, st.Pairs[j].Right)
	})
	if !sorted {
		logrus.Debug("kern pairs not sorted - sorting")
		st.sortPairs()
	}
	return nil
}

func (st *KernSubtable) sortPairs() {
	sort.SliceStable(st.Pairs, func(i, j int) bool {
		return kernKey(st.Pairs[i].Left, st.Pairs[i].Right) < kernKey(st.Pairs[j].Left, st.Pairs[j].Right)
	})
}

func (t *KernTable) encode(w *byteWriter, ctx *encodeContext) error {
	if t.Apple {
		err := w.write(uint16(1), uint16(0), uint32(len(t.Subtables)))
		if err != nil {
			return err
		}
	} else {
		if len(t.Subtables) > 0xFFFF {
			return fmt.Errorf("%w: %d kern subtables", ErrInconsistentModel, len(t.Subtables))
		}
		err := w.write(uint16(0), uint16(len(t.Subtables)))
		if err != nil {
			return err
		}
	}

	for i, st := range t.Subtables {
		if err := t.encodeSubtable(w, st); err != nil {
			return fmt.Errorf("kern subtable %d: %w", i, err)
		}
	}
	return nil
}

func (t *KernTable) encodeSubtable(w *byteWriter, st *KernSubtable) error {
	headerLen := 6
	if t.Apple {
		headerLen = 8
	}
	bodyLen := len(st.Data)
	if st.Format == 0 {
		if len(st.Pairs) > 0xFFFF {
			return fmt.Errorf("%w: %d kern pairs", ErrInconsistentModel, len(st.Pairs))
		}
		bodyLen = 8 + 6*len(st.Pairs)
	}
	length := headerLen + bodyLen

	var err error
	if t.Apple {
		err = w.write(uint32(length), uint16(st.Coverage)<<8|uint16(st.Format), st.TupleIndex)
	} else {
		// Oversized Microsoft subtables keep the truncated length, readers rely on the pair count.
		err = w.write(st.Version, uint16(length), uint16(st.Format)<<8|uint16(st.Coverage))
	}
	if err != nil {
		return err
	}

	if st.Format != 0 {
		return w.writeBytes(st.Data)
	}

	st.sortPairs()
	nPairs := len(st.Pairs)
	var searchRange, entrySelector, rangeShift int
	if nPairs > 0 {
		entrySelector = bits.Len(uint(nPairs)) - 1
		searchRange = 6 * (1 << entrySelector)
		rangeShift = 6*nPairs - searchRange
	}
	err = w.write(uint16(nPairs), uint16(searchRange), uint16(entrySelector), uint16(rangeShift))
	if err != nil {
		return err
	}
	for _, p := range st.Pairs {
		err = w.write(p.Left, p.Right, p.Value)
		if err != nil {
			return err
		}
	}
	return nil
}
