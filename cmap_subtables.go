/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// CmapFormat0 is the byte encoding table: a flat array indexed by 8-bit code.
type CmapFormat0 struct {
	Lang     uint16
	GlyphIDs [256]uint8
}

// Format implements CmapSubtable.
func (s *CmapFormat0) Format() uint16 { return 0 }

// Language implements CmapSubtable.
func (s *CmapFormat0) Language() uint32 { return uint32(s.Lang) }

// Lookup implements CmapSubtable.
func (s *CmapFormat0) Lookup(code uint32) GlyphIndex {
	if code > 0xFF {
		return 0
	}
	return GlyphIndex(s.GlyphIDs[code])
}

// Range implements CmapSubtable.
func (s *CmapFormat0) Range(fn func(code uint32, gid GlyphIndex)) {
	for code, gid := range s.GlyphIDs {
		fn(uint32(code), GlyphIndex(gid))
	}
}

func decodeCmapFormat0(r *byteReader) (*CmapFormat0, error) {
	s := &CmapFormat0{}
	err := r.Skip(4) // format, length.
	if err != nil {
		return nil, err
	}
	err = r.read(&s.Lang)
	if err != nil {
		return nil, err
	}
	b, err := r.next(256)
	if err != nil {
		return nil, err
	}
	copy(s.GlyphIDs[:], b)
	return s, nil
}

func (s *CmapFormat0) encode(w *byteWriter) error {
	err := w.write(uint16(0), uint16(6+256), s.Lang)
	if err != nil {
		return err
	}
	return w.writeBytes(s.GlyphIDs[:])
}

// CmapFormat2 is the high-byte mapping through table, used for mixed 8/16-bit encodings.
type CmapFormat2 struct {
	Lang          uint16
	SubHeaderKeys [256]uint16 // Subheader index times 8, by high byte.
	SubHeaders    []CmapSubHeader
	GlyphIDArray  []uint16
}

// CmapSubHeader covers a contiguous range of low bytes.
type CmapSubHeader struct {
	FirstCode     uint16
	EntryCount    uint16
	IDDelta       int16
	IDRangeOffset uint16 // Relative to the position of this field.
}

// Format implements CmapSubtable.
func (s *CmapFormat2) Format() uint16 { return 2 }

// Language implements CmapSubtable.
func (s *CmapFormat2) Language() uint32 { return uint32(s.Lang) }

// Lookup implements CmapSubtable. Codes 0-255 whose key selects subheader 0 are single-byte codes,
// all others are read as high byte and low byte.
func (s *CmapFormat2) Lookup(code uint32) GlyphIndex {
	if code > 0xFFFF {
		return 0
	}
	if code <= 0xFF && s.SubHeaderKeys[code] == 0 {
		return s.lookup(0, uint16(code))
	}
	k := int(s.SubHeaderKeys[code>>8] / 8)
	if k == 0 {
		return 0
	}
	return s.lookup(k, uint16(code&0xFF))
}

func (s *CmapFormat2) lookup(k int, low uint16) GlyphIndex {
	if k >= len(s.SubHeaders) {
		return 0
	}
	sh := s.SubHeaders[k]
	if low < sh.FirstCode || int(low) >= int(sh.FirstCode)+int(sh.EntryCount) {
		return 0
	}
	// idRangeOffset counts from the field itself, which is the last of the subheader's 8 bytes.
	fieldPos := 8*k + 6
	arrayPos := 8 * len(s.SubHeaders)
	index := (fieldPos+int(sh.IDRangeOffset)-arrayPos)/2 + int(low-sh.FirstCode)
	if index < 0 || index >= len(s.GlyphIDArray) {
		return 0
	}
	gid := s.GlyphIDArray[index]
	if gid == 0 {
		return 0
	}
	return GlyphIndex(uint16(int(gid) + int(sh.IDDelta)))
}

// Range implements CmapSubtable.
func (s *CmapFormat2) Range(fn func(code uint32, gid GlyphIndex)) {
	for high := uint32(0); high < 256; high++ {
		k := int(s.SubHeaderKeys[high] / 8)
		if k == 0 {
			if gid := s.lookup(0, uint16(high)); gid != 0 {
				fn(high, gid)
			}
			continue
		}
		if k >= len(s.SubHeaders) {
			continue
		}
		sh := s.SubHeaders[k]
		for low := uint32(sh.FirstCode); low < uint32(sh.FirstCode)+uint32(sh.EntryCount) && low < 256; low++ {
			if gid := s.lookup(k, uint16(low)); gid != 0 {
				fn(high<<8|low, gid)
			}
		}
	}
}

func decodeCmapFormat2(r *byteReader) (*CmapFormat2, error) {
	s := &CmapFormat2{}
	err := r.Skip(4)
	if err != nil {
		return nil, err
	}
	err = r.read(&s.Lang)
	if err != nil {
		return nil, err
	}

	maxKey := uint16(0)
	for i := range s.SubHeaderKeys {
		err := r.read(&s.SubHeaderKeys[i])
		if err != nil {
			return nil, err
		}
		if s.SubHeaderKeys[i] > maxKey {
			maxKey = s.SubHeaderKeys[i]
		}
	}

	numSubHeaders := int(maxKey/8) + 1
	for i := 0; i < numSubHeaders; i++ {
		var sh CmapSubHeader
		err := r.read(&sh.FirstCode, &sh.EntryCount, &sh.IDDelta, &sh.IDRangeOffset)
		if err != nil {
			return nil, err
		}
		s.SubHeaders = append(s.SubHeaders, sh)
	}

	err = r.readSlice(&s.GlyphIDArray, r.Remaining()/2)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CmapFormat2) encode(w *byteWriter) error {
	length := 6 + 2*256 + 8*len(s.SubHeaders) + 2*len(s.GlyphIDArray)
	if length > 0xFFFF {
		return fmt.Errorf("%w: format 2 subtable of %d bytes", ErrInconsistentModel, length)
	}
	err := w.write(uint16(2), uint16(length), s.Lang)
	if err != nil {
		return err
	}
	err = w.writeUint16(s.SubHeaderKeys[:]...)
	if err != nil {
		return err
	}
	for _, sh := range s.SubHeaders {
		err := w.write(sh.FirstCode, sh.EntryCount, sh.IDDelta, sh.IDRangeOffset)
		if err != nil {
			return err
		}
	}
	return w.writeUint16(s.GlyphIDArray...)
}

// CmapFormat6 is the trimmed table mapping: a dense array for a single range of codes.
type CmapFormat6 struct {
	Lang      uint16
	FirstCode uint16
	GlyphIDs  []uint16
}

// Format implements CmapSubtable.
func (s *CmapFormat6) Format() uint16 { return 6 }

// Language implements CmapSubtable.
func (s *CmapFormat6) Language() uint32 { return uint32(s.Lang) }

// Lookup implements CmapSubtable.
func (s *CmapFormat6) Lookup(code uint32) GlyphIndex {
	if code < uint32(s.FirstCode) || code-uint32(s.FirstCode) >= uint32(len(s.GlyphIDs)) {
		return 0
	}
	return GlyphIndex(s.GlyphIDs[code-uint32(s.FirstCode)])
}

// Range implements CmapSubtable.
func (s *CmapFormat6) Range(fn func(code uint32, gid GlyphIndex)) {
	for i, gid := range s.GlyphIDs {
		fn(uint32(s.FirstCode)+uint32(i), GlyphIndex(gid))
	}
}

func decodeCmapFormat6(r *byteReader) (*CmapFormat6, error) {
	s := &CmapFormat6{}
	err := r.Skip(4)
	if err != nil {
		return nil, err
	}
	var entryCount uint16
	err = r.read(&s.Lang, &s.FirstCode, &entryCount)
	if err != nil {
		return nil, err
	}
	return s, r.readSlice(&s.GlyphIDs, int(entryCount))
}

func (s *CmapFormat6) encode(w *byteWriter) error {
	length := 10 + 2*len(s.GlyphIDs)
	if length > 0xFFFF {
		return fmt.Errorf("%w: format 6 subtable of %d bytes", ErrInconsistentModel, length)
	}
	err := w.write(uint16(6), uint16(length), s.Lang, s.FirstCode, uint16(len(s.GlyphIDs)))
	if err != nil {
		return err
	}
	return w.writeUint16(s.GlyphIDs...)
}

// CmapFormat12 is the segmented coverage table over the full 32-bit code space.
type CmapFormat12 struct {
	Lang   uint32
	Groups []CmapGroup // Sorted by StartCharCode.
}

// CmapGroup maps [StartCharCode, EndCharCode] to consecutive glyphs from StartGlyphID.
type CmapGroup struct {
	StartCharCode uint32
	EndCharCode   uint32
	StartGlyphID  uint32
}

// NewCmapFormat12 returns a format 12 subtable for `mapping`, grouping consecutive codes mapped to
// consecutive glyphs.
func NewCmapFormat12(mapping map[rune]GlyphIndex) *CmapFormat12 {
	codes := sortedCodes(mapping)
	s := &CmapFormat12{}
	for _, code := range codes {
		gid := uint32(mapping[code])
		if n := len(s.Groups); n > 0 {
			g := &s.Groups[n-1]
			if uint32(code) == g.EndCharCode+1 && gid == g.StartGlyphID+(g.EndCharCode-g.StartCharCode)+1 {
				g.EndCharCode++
				continue
			}
		}
		s.Groups = append(s.Groups, CmapGroup{StartCharCode: uint32(code), EndCharCode: uint32(code), StartGlyphID: gid})
	}
	return s
}

func sortedCodes(mapping map[rune]GlyphIndex) []rune {
	codes := make([]rune, 0, len(mapping))
	for code := range mapping {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Format implements CmapSubtable.
func (s *CmapFormat12) Format() uint16 { return 12 }

// Language implements CmapSubtable.
func (s *CmapFormat12) Language() uint32 { return s.Lang }

// Lookup implements CmapSubtable.
func (s *CmapFormat12) Lookup(code uint32) GlyphIndex {
	i := sort.Search(len(s.Groups), func(i int) bool {
		return s.Groups[i].EndCharCode >= code
	})
	if i == len(s.Groups) || s.Groups[i].StartCharCode > code {
		return 0
	}
	g := s.Groups[i]
	return GlyphIndex(code - g.StartCharCode + g.StartGlyphID)
}

// Range implements CmapSubtable.
func (s *CmapFormat12) Range(fn func(code uint32, gid GlyphIndex)) {
	for _, g := range s.Groups {
		for code := g.StartCharCode; ; code++ {
			fn(code, GlyphIndex(code-g.StartCharCode+g.StartGlyphID))
			if code == g.EndCharCode {
				break
			}
		}
	}
}

func decodeCmapFormat12(r *byteReader) (*CmapFormat12, error) {
	s := &CmapFormat12{}
	err := r.Skip(8) // format, reserved, length.
	if err != nil {
		return nil, err
	}
	var numGroups uint32
	err = r.read(&s.Lang, &numGroups)
	if err != nil {
		return nil, err
	}
	if int64(numGroups)*12 > int64(r.Remaining()) {
		logrus.Debugf("Format 12 groups exceed subtable (%d)", numGroups)
		return nil, fmt.Errorf("%w: %d format 12 groups", ErrTruncatedInput, numGroups)
	}
	s.Groups = make([]CmapGroup, numGroups)
	for i := range s.Groups {
		g := &s.Groups[i]
		err := r.read(&g.StartCharCode, &g.EndCharCode, &g.StartGlyphID)
		if err != nil {
			return nil, err
		}
		if g.EndCharCode < g.StartCharCode {
			return nil, fmt.Errorf("%w: format 12 group %d ends before start", ErrCorruptTable, i)
		}
	}
	return s, nil
}

func (s *CmapFormat12) encode(w *byteWriter) error {
	err := w.write(uint16(12), uint16(0))
	if err != nil {
		return err
	}
	length := w.reserve(4)
	start := w.Len() - 8
	err = w.write(s.Lang, uint32(len(s.Groups)))
	if err != nil {
		return err
	}
	for _, g := range s.Groups {
		err := w.write(g.StartCharCode, g.EndCharCode, g.StartGlyphID)
		if err != nil {
			return err
		}
	}
	return length.fill(uint32(w.Len() - start))
}

// CmapUnknown is a subtable of a format without decoder, kept as raw bytes for re-writing.
type CmapUnknown struct {
	format uint16
	Data   []byte // Whole subtable, including format and length.
}

// Format implements CmapSubtable.
func (s *CmapUnknown) Format() uint16 { return s.format }

// Language implements CmapSubtable.
func (s *CmapUnknown) Language() uint32 { return 0 }

// Lookup implements CmapSubtable. Unknown subtables map nothing.
func (s *CmapUnknown) Lookup(code uint32) GlyphIndex { return 0 }

// Range implements CmapSubtable.
func (s *CmapUnknown) Range(fn func(code uint32, gid GlyphIndex)) {}

func (s *CmapUnknown) encode(w *byteWriter) error {
	return w.writeBytes(s.Data)
}
