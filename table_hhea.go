/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

// HheaTable represents the horizontal header table (hhea) or, with identical layout, the
// vertical header table (vhea). For vhea, Ascender/Descender/LineGap hold vertTypoAscender,
// vertTypoDescender and vertTypoLineGap and NumberOfMetrics counts vmtx long metrics.
// https://docs.microsoft.com/en-us/typography/opentype/spec/hhea
type HheaTable struct {
	tag              Tag
	MajorVersion     uint16
	MinorVersion     uint16
	Ascender         FWord
	Descender        FWord
	LineGap          FWord
	AdvanceMax       UFWord
	MinSideBearing1  FWord // minLeftSideBearing or minTopSideBearing.
	MinSideBearing2  FWord // minRightSideBearing or minBottomSideBearing.
	MaxExtent        FWord
	CaretSlopeRise   int16
	CaretSlopeRun    int16
	CaretOffset      int16
	MetricDataFormat int16
	NumberOfMetrics  uint16 // Number of long metric entries in hmtx/vmtx.
	reserved         [4]int16
}

// NewHheaTable returns an empty horizontal header.
func NewHheaTable() *HheaTable {
	return &HheaTable{tag: TagHhea, MajorVersion: 1}
}

// NewVheaTable returns an empty vertical header.
func NewVheaTable() *HheaTable {
	return &HheaTable{tag: TagVhea, MajorVersion: 1, MinorVersion: 0x1000}
}

// Tag implements Table.
func (t *HheaTable) Tag() Tag {
	if t.tag == (Tag{}) {
		return TagHhea
	}
	return t.tag
}

func decodeHhea(r *byteReader, ctx *decodeContext) (Table, error) {
	return decodeMetricsHeader(r, TagHhea)
}

func decodeVhea(r *byteReader, ctx *decodeContext) (Table, error) {
	return decodeMetricsHeader(r, TagVhea)
}

func decodeMetricsHeader(r *byteReader, tag Tag) (*HheaTable, error) {
	t := &HheaTable{tag: tag}
	err := r.read(&t.MajorVersion, &t.MinorVersion)
	if err != nil {
		return nil, err
	}

	err = r.read(&t.Ascender, &t.Descender, &t.LineGap)
	if err != nil {
		return nil, err
	}

	err = r.read(&t.AdvanceMax, &t.MinSideBearing1, &t.MinSideBearing2, &t.MaxExtent)
	if err != nil {
		return nil, err
	}

	err = r.read(&t.CaretSlopeRise, &t.CaretSlopeRun, &t.CaretOffset)
	if err != nil {
		return nil, err
	}

	// Reserved, expected to be zero.
	err = r.read(&t.reserved[0], &t.reserved[1], &t.reserved[2], &t.reserved[3])
	if err != nil {
		return nil, err
	}

	return t, r.read(&t.MetricDataFormat, &t.NumberOfMetrics)
}

func (t *HheaTable) encode(w *byteWriter, ctx *encodeContext) error {
	err := w.write(t.MajorVersion, t.MinorVersion)
	if err != nil {
		return err
	}

	err = w.write(t.Ascender, t.Descender, t.LineGap)
	if err != nil {
		return err
	}

	err = w.write(t.AdvanceMax, t.MinSideBearing1, t.MinSideBearing2, t.MaxExtent)
	if err != nil {
		return err
	}

	err = w.write(t.CaretSlopeRise, t.CaretSlopeRun, t.CaretOffset)
	if err != nil {
		return err
	}

	err = w.writeInt16(t.reserved[:]...)
	if err != nil {
		return err
	}

	return w.write(t.MetricDataFormat, t.NumberOfMetrics)
}
