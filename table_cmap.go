/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
)

// CmapTable represents a Character to Glyph Index Mapping Table (cmap).
// https://docs.microsoft.com/en-us/typography/opentype/spec/cmap
type CmapTable struct {
	Version uint16

	// Encodings in directory order. Encodings that share a physical subtable reference the same
	// CmapSubtable value.
	Encodings []CmapEncoding
}

// CmapEncoding is an encoding record with its subtable.
type CmapEncoding struct {
	PlatformID uint16
	EncodingID uint16
	Subtable   CmapSubtable
}

// CmapSubtable maps character codes of one encoding to glyph indices.
type CmapSubtable interface {
	// Format returns the subtable format number.
	Format() uint16

	// Language returns the Macintosh language code, 0 for language independent subtables.
	Language() uint32

	// Lookup returns the glyph for `code` or 0 (.notdef) when unmapped.
	Lookup(code uint32) GlyphIndex

	// Range calls `fn` for every mapped code in increasing code order.
	Range(fn func(code uint32, gid GlyphIndex))

	encode(w *byteWriter) error
}

// Tag implements Table.
func (t *CmapTable) Tag() Tag { return TagCmap }

// Subtable returns the subtable for `platformID`, `encodingID` or nil.
func (t *CmapTable) Subtable(platformID, encodingID uint16) CmapSubtable {
	for _, enc := range t.Encodings {
		if enc.PlatformID == platformID && enc.EncodingID == encodingID {
			return enc.Subtable
		}
	}
	return nil
}

// unicodeSubtable returns the preferred subtable for Unicode lookups. macRoman is true when the
// subtable is the Macintosh Roman one, whose codes must be translated from runes first.
func (t *CmapTable) unicodeSubtable() (sub CmapSubtable, macRoman bool) {
	preferred := []struct{ pid, eid uint16 }{
		{3, 10}, {0, 6}, {0, 4}, {3, 1}, {0, 3},
	}
	for _, p := range preferred {
		if sub := t.Subtable(p.pid, p.eid); sub != nil {
			return sub, false
		}
	}
	for _, enc := range t.Encodings {
		if enc.PlatformID == 0 {
			return enc.Subtable, false
		}
	}
	if sub := t.Subtable(1, 0); sub != nil {
		return sub, true
	}
	return nil, false
}

// Lookup returns the glyph index for `r` using the best Unicode subtable: (3,10), (0,6), (0,4),
// (3,1), (0,3), any other platform 0 subtable, and finally (1,0) through the Mac Roman encoding.
// Returns 0 when unmapped.
func (t *CmapTable) Lookup(r rune) GlyphIndex {
	sub, macRoman := t.unicodeSubtable()
	if sub == nil || r < 0 {
		return 0
	}
	if !macRoman {
		return sub.Lookup(uint32(r))
	}
	b, ok := charmap.Macintosh.EncodeRune(r)
	if !ok {
		return 0
	}
	return sub.Lookup(uint32(b))
}

// Coverage returns the set of runes mapped to a glyph other than .notdef by the best Unicode
// subtable.
func (t *CmapTable) Coverage() *bitset.BitSet {
	set := bitset.New(0x10000)
	sub, macRoman := t.unicodeSubtable()
	if sub == nil {
		return set
	}
	sub.Range(func(code uint32, gid GlyphIndex) {
		if gid == 0 {
			return
		}
		if macRoman {
			if code > 0xFF {
				return
			}
			code = uint32(charmap.Macintosh.DecodeByte(byte(code)))
		}
		set.Set(uint(code))
	})
	return set
}

type cmapEncodingRecord struct {
	platformID uint16
	encodingID uint16
	offset     offset32
}

func decodeCmap(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &CmapTable{}
	var numTables uint16
	err := r.read(&t.Version, &numTables)
	if err != nil {
		return nil, err
	}

	records := make([]cmapEncodingRecord, numTables)
	for i := range records {
		err := r.read(&records[i].platformID, &records[i].encodingID, &records[i].offset)
		if err != nil {
			return nil, err
		}
	}

	// Subtables are visited in offset order, so records that point at the same offset share one
	// decoded subtable.
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return records[order[i]].offset < records[order[j]].offset
	})

	subtables := make([]CmapSubtable, len(records))
	pos := int64(r.Offset())
	lastOffset := int64(-1)
	var last CmapSubtable
	for _, i := range order {
		rec := records[i]
		offset := int64(rec.offset)
		if offset == lastOffset {
			subtables[i] = last
			continue
		}
		if offset < pos {
			logrus.Debugf("cmap subtable offset %d overlaps previous data (%d)", offset, pos)
			return nil, fmt.Errorf("%w: cmap subtable offset %d before %d", ErrCorruptTable, offset, pos)
		}

		section := fmt.Sprintf("subtable %d/%d", rec.platformID, rec.encodingID)
		sub, length, err := decodeCmapSubtable(r, offset, ctx, section)
		if err != nil {
			ctx.report(section, SeverityMajor, offset, "%v", err)
			lastOffset, last = offset, nil
			pos = offset
			continue
		}
		subtables[i] = sub
		lastOffset, last = offset, sub
		pos = offset + length
	}

	for i, rec := range records {
		if subtables[i] == nil {
			continue
		}
		t.Encodings = append(t.Encodings, CmapEncoding{
			PlatformID: rec.platformID,
			EncodingID: rec.encodingID,
			Subtable:   subtables[i],
		})
	}
	return t, nil
}

// decodeCmapSubtable decodes the subtable at `offset` and returns it with its length in bytes.
func decodeCmapSubtable(r *byteReader, offset int64, ctx *decodeContext, section string) (CmapSubtable, int64, error) {
	if err := r.Seek(offset); err != nil {
		return nil, 0, err
	}
	format, err := r.readUint16()
	if err != nil {
		return nil, 0, err
	}

	length, err := cmapSubtableLength(r, format)
	if err != nil {
		return nil, 0, err
	}
	if offset+length > int64(r.Len()) {
		ctx.report(section, SeverityMinor, offset, "length %d exceeds table, truncated to %d",
			length, int64(r.Len())-offset)
		length = int64(r.Len()) - offset
	}
	sr, err := r.sub(int(offset), int(length))
	if err != nil {
		return nil, 0, err
	}

	var sub CmapSubtable
	switch format {
	case 0:
		sub, err = decodeCmapFormat0(sr)
	case 2:
		sub, err = decodeCmapFormat2(sr)
	case 4:
		sub, err = decodeCmapFormat4(sr, ctx, section)
	case 6:
		sub, err = decodeCmapFormat6(sr)
	case 12:
		sub, err = decodeCmapFormat12(sr)
	default:
		logrus.Debugf("Unsupported cmap format %d - kept as raw data", format)
		sub = &CmapUnknown{format: format, Data: append([]byte(nil), sr.data...)}
	}
	if err != nil {
		return nil, 0, err
	}
	return sub, length, nil
}

// cmapSubtableLength reads the length field that follows the format number.
func cmapSubtableLength(r *byteReader, format uint16) (int64, error) {
	switch {
	case format == 14:
		length, err := r.readUint32()
		return int64(length), err
	case format >= 8:
		var reserved uint16
		var length uint32
		err := r.read(&reserved, &length)
		return int64(length), err
	}
	length, err := r.readUint16()
	return int64(length), err
}

func (t *CmapTable) encode(w *byteWriter, ctx *encodeContext) error {
	encodings := append([]CmapEncoding(nil), t.Encodings...)
	sort.SliceStable(encodings, func(i, j int) bool {
		a, b := encodings[i], encodings[j]
		if a.PlatformID != b.PlatformID {
			return a.PlatformID < b.PlatformID
		}
		if a.EncodingID != b.EncodingID {
			return a.EncodingID < b.EncodingID
		}
		return a.Subtable.Language() < b.Subtable.Language()
	})

	err := w.write(t.Version, uint16(len(encodings)))
	if err != nil {
		return err
	}

	offsets := make([]reservation, len(encodings))
	for i, enc := range encodings {
		if enc.Subtable == nil {
			return fmt.Errorf("%w: cmap encoding %d/%d without subtable", ErrInconsistentModel, enc.PlatformID, enc.EncodingID)
		}
		err := w.write(enc.PlatformID, enc.EncodingID)
		if err != nil {
			return err
		}
		offsets[i] = w.reserve(4)
	}

	written := map[CmapSubtable]offset32{}
	for i, enc := range encodings {
		off, ok := written[enc.Subtable]
		if !ok {
			off = offset32(w.Len())
			if err := enc.Subtable.encode(w); err != nil {
				return fmt.Errorf("subtable %d/%d: %w", enc.PlatformID, enc.EncodingID, err)
			}
			written[enc.Subtable] = off
		}
		if err := offsets[i].fill(off); err != nil {
			return err
		}
	}
	return nil
}
