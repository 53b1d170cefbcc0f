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

// CmapFormat4 is the segment mapping to delta values table over 16-bit codes. The segment arrays are
// parallel and sorted by EndCode. The last segment must end at 0xFFFF.
type CmapFormat4 struct {
	Lang          uint16
	EndCode       []uint16
	StartCode     []uint16
	IDDelta       []int16
	IDRangeOffset []uint16 // 0 or the byte offset from the element itself into GlyphIDArray.
	GlyphIDArray  []uint16
}

// Format implements CmapSubtable.
func (s *CmapFormat4) Format() uint16 { return 4 }

// Language implements CmapSubtable.
func (s *CmapFormat4) Language() uint32 { return uint32(s.Lang) }

// Lookup implements CmapSubtable.
func (s *CmapFormat4) Lookup(code uint32) GlyphIndex {
	if code > 0xFFFF {
		return 0
	}
	c := uint16(code)
	i := sort.Search(len(s.EndCode), func(i int) bool {
		return s.EndCode[i] >= c
	})
	if i == len(s.EndCode) || s.StartCode[i] > c {
		return 0
	}
	return s.segmentLookup(i, c)
}

// segmentLookup maps `c` within segment `i`.
func (s *CmapFormat4) segmentLookup(i int, c uint16) GlyphIndex {
	if s.IDRangeOffset[i] == 0 {
		// Modulo 65536.
		return GlyphIndex(c + uint16(s.IDDelta[i]))
	}
	// idRangeOffset/2 is the word offset from the idRangeOffset element, which lies
	// segCount-i words before the start of glyphIdArray.
	index := int(s.IDRangeOffset[i]/2) + int(c-s.StartCode[i]) - (len(s.EndCode) - i)
	if index < 0 || index >= len(s.GlyphIDArray) {
		return 0
	}
	gid := s.GlyphIDArray[index]
	if gid == 0 {
		return 0
	}
	return GlyphIndex(gid + uint16(s.IDDelta[i]))
}

// Range implements CmapSubtable.
func (s *CmapFormat4) Range(fn func(code uint32, gid GlyphIndex)) {
	for i := range s.EndCode {
		for c := uint32(s.StartCode[i]); c <= uint32(s.EndCode[i]); c++ {
			if c == 0xFFFF && s.StartCode[i] == 0xFFFF {
				// Terminating segment.
				break
			}
			fn(c, s.segmentLookup(i, uint16(c)))
		}
	}
}

func decodeCmapFormat4(r *byteReader, ctx *decodeContext, section string) (*CmapFormat4, error) {
	s := &CmapFormat4{}
	err := r.Skip(4)
	if err != nil {
		return nil, err
	}

	var segCountX2, searchRange, entrySelector, rangeShift uint16
	err = r.read(&s.Lang, &segCountX2, &searchRange, &entrySelector, &rangeShift)
	if err != nil {
		return nil, err
	}
	if segCountX2%2 != 0 {
		return nil, fmt.Errorf("%w: odd segCountX2 %d", ErrCorruptTable, segCountX2)
	}
	segCount := int(segCountX2 / 2)

	err = r.readSlice(&s.EndCode, segCount)
	if err != nil {
		return nil, err
	}
	var reservedPad uint16
	err = r.read(&reservedPad)
	if err != nil {
		return nil, err
	}
	err = r.readSlice(&s.StartCode, segCount)
	if err != nil {
		return nil, err
	}
	err = r.readSlice(&s.IDDelta, segCount)
	if err != nil {
		return nil, err
	}
	err = r.readSlice(&s.IDRangeOffset, segCount)
	if err != nil {
		return nil, err
	}
	err = r.readSlice(&s.GlyphIDArray, r.Remaining()/2)
	if err != nil {
		return nil, err
	}

	for i := 0; i < segCount; i++ {
		if s.StartCode[i] > s.EndCode[i] {
			return nil, fmt.Errorf("%w: segment %d starts after it ends", ErrCorruptTable, i)
		}
		if i > 0 && s.EndCode[i] <= s.EndCode[i-1] {
			ctx.report(section, SeverityMinor, 14+2*int64(i), "segment end codes not increasing at %d", i)
		}
	}
	if segCount > 0 && s.EndCode[segCount-1] != 0xFFFF {
		logrus.Debug("Format 4 subtable without terminating segment")
		ctx.report(section, SeverityMinor, -1, "last segment does not end at 0xFFFF")
	}
	return s, nil
}

func (s *CmapFormat4) encode(w *byteWriter) error {
	segCount := len(s.EndCode)
	if len(s.StartCode) != segCount || len(s.IDDelta) != segCount || len(s.IDRangeOffset) != segCount {
		return fmt.Errorf("%w: format 4 segment arrays differ in length", ErrInconsistentModel)
	}
	length := 16 + 8*segCount + 2*len(s.GlyphIDArray)
	if length > 0xFFFF {
		return fmt.Errorf("%w: format 4 subtable of %d bytes", ErrInconsistentModel, length)
	}

	var searchRange, entrySelector, rangeShift uint16
	if segCount > 0 {
		sel := bits.Len(uint(segCount)) - 1
		searchRange = uint16(2 << sel)
		entrySelector = uint16(sel)
		rangeShift = uint16(2*segCount) - searchRange
	}

	err := w.write(uint16(4), uint16(length), s.Lang, uint16(2*segCount), searchRange, entrySelector, rangeShift)
	if err != nil {
		return err
	}
	err = w.writeUint16(s.EndCode...)
	if err != nil {
		return err
	}
	err = w.writeUint16(0) // reservedPad.
	if err != nil {
		return err
	}
	err = w.writeUint16(s.StartCode...)
	if err != nil {
		return err
	}
	err = w.writeInt16(s.IDDelta...)
	if err != nil {
		return err
	}
	err = w.writeUint16(s.IDRangeOffset...)
	if err != nil {
		return err
	}
	return w.writeUint16(s.GlyphIDArray...)
}

// NewCmapFormat4 returns a format 4 subtable for the codes of `mapping` in the basic multilingual
// plane. Runs of consecutive codes become segments, mapped by delta when their glyphs are
// consecutive too and through the glyph array otherwise.
func NewCmapFormat4(mapping map[rune]GlyphIndex) *CmapFormat4 {
	type segment struct {
		start, end rune
		gids       []GlyphIndex
	}
	var segs []segment
	for _, code := range sortedCodes(mapping) {
		if code < 0 || code >= 0xFFFF {
			continue
		}
		if n := len(segs); n > 0 && segs[n-1].end+1 == code {
			segs[n-1].end = code
			segs[n-1].gids = append(segs[n-1].gids, mapping[code])
			continue
		}
		segs = append(segs, segment{start: code, end: code, gids: []GlyphIndex{mapping[code]}})
	}

	s := &CmapFormat4{}
	segCount := len(segs) + 1
	numMapped := 0
	for i, seg := range segs {
		s.StartCode = append(s.StartCode, uint16(seg.start))
		s.EndCode = append(s.EndCode, uint16(seg.end))
		contiguous := true
		for j := 1; j < len(seg.gids); j++ {
			if seg.gids[j] != seg.gids[0]+GlyphIndex(j) {
				contiguous = false
				break
			}
		}
		if contiguous {
			s.IDDelta = append(s.IDDelta, int16(uint16(seg.gids[0])-uint16(seg.start)))
			s.IDRangeOffset = append(s.IDRangeOffset, 0)
			continue
		}
		offset := 2 * (segCount - i + len(s.GlyphIDArray))
		s.IDDelta = append(s.IDDelta, 0)
		s.IDRangeOffset = append(s.IDRangeOffset, uint16(offset))
		for _, gid := range seg.gids {
			s.GlyphIDArray = append(s.GlyphIDArray, uint16(gid))
		}
		numMapped++
	}
	logrus.Tracef("Format 4: %d segments, %d through glyph array", segCount, numMapped)

	// Terminating segment.
	s.StartCode = append(s.StartCode, 0xFFFF)
	s.EndCode = append(s.EndCode, 0xFFFF)
	s.IDDelta = append(s.IDDelta, 1)
	s.IDRangeOffset = append(s.IDRangeOffset, 0)
	return s
}
