/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// HmtxTable represents the horizontal metrics table (hmtx) or the vertical metrics table (vmtx).
// https://docs.microsoft.com/en-us/typography/opentype/spec/hmtx
type HmtxTable struct {
	tag          Tag
	Metrics      []LongMetric // Length is numberOfMetrics from hhea/vhea.
	SideBearings []int16      // Length is numGlyphs - numberOfMetrics.
}

// LongMetric is an advance and a side bearing (left for hmtx, top for vmtx).
type LongMetric struct {
	Advance     uint16
	SideBearing int16
}

// NewHmtxTable returns an empty horizontal metrics table.
func NewHmtxTable() *HmtxTable { return &HmtxTable{tag: TagHmtx} }

// NewVmtxTable returns an empty vertical metrics table.
func NewVmtxTable() *HmtxTable { return &HmtxTable{tag: TagVmtx} }

// Tag implements Table.
func (t *HmtxTable) Tag() Tag {
	if t.tag == (Tag{}) {
		return TagHmtx
	}
	return t.tag
}

// Metric returns the advance and side bearing of `gid`. Glyphs past the long metrics share the
// advance of the last long metric.
func (t *HmtxTable) Metric(gid GlyphIndex) (uint16, int16, error) {
	n := len(t.Metrics)
	if int(gid) < n {
		m := t.Metrics[gid]
		return m.Advance, m.SideBearing, nil
	}
	i := int(gid) - n
	if n == 0 || i >= len(t.SideBearings) {
		logrus.Debugf("Range check error (%s gid %d)", t.Tag(), gid)
		return 0, 0, errRangeCheck
	}
	return t.Metrics[n-1].Advance, t.SideBearings[i], nil
}

func decodeHmtx(r *byteReader, ctx *decodeContext) (Table, error) {
	return decodeMetrics(r, ctx, TagHmtx, ctx.hhea())
}

func decodeVmtx(r *byteReader, ctx *decodeContext) (Table, error) {
	return decodeMetrics(r, ctx, TagVmtx, ctx.vhea())
}

func decodeMetrics(r *byteReader, ctx *decodeContext, tag Tag, header *HheaTable) (*HmtxTable, error) {
	if header == nil {
		logrus.Debugf("%s: metrics header missing", tag)
		return nil, fmt.Errorf("%w: header table for %s", ErrTableNotFound, tag)
	}
	numGlyphs, err := ctx.numGlyphs()
	if err != nil {
		return nil, err
	}

	numberOfMetrics := int(header.NumberOfMetrics)
	if numberOfMetrics > numGlyphs {
		ctx.report("", SeverityMajor, 0, "numberOfMetrics %d exceeds numGlyphs %d", numberOfMetrics, numGlyphs)
		numberOfMetrics = numGlyphs
	}

	t := &HmtxTable{tag: tag}
	for i := 0; i < numberOfMetrics; i++ {
		var lm LongMetric
		err := r.read(&lm.Advance, &lm.SideBearing)
		if err != nil {
			return nil, err
		}
		t.Metrics = append(t.Metrics, lm)
	}

	sbLen := numGlyphs - numberOfMetrics
	if 2*sbLen > r.Remaining() {
		ctx.report("side bearings", SeverityMinor, r.Offset(), "%d of %d side bearings present",
			r.Remaining()/2, sbLen)
		sbLen = r.Remaining() / 2
	}
	err = r.readSlice(&t.SideBearings, sbLen)
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (t *HmtxTable) encode(w *byteWriter, ctx *encodeContext) error {
	header := ctx.font.Hhea()
	if t.Tag() == TagVmtx {
		header = ctx.font.Vhea()
	}
	if header == nil {
		return fmt.Errorf("%w: %s without header table", ErrInconsistentModel, t.Tag())
	}
	if int(header.NumberOfMetrics) != len(t.Metrics) {
		return fmt.Errorf("%w: %s has %d long metrics, header declares %d",
			ErrInconsistentModel, t.Tag(), len(t.Metrics), header.NumberOfMetrics)
	}
	numGlyphs, err := ctx.numGlyphs()
	if err != nil {
		return err
	}
	if len(t.Metrics)+len(t.SideBearings) != numGlyphs {
		return fmt.Errorf("%w: %s covers %d glyphs, maxp declares %d",
			ErrInconsistentModel, t.Tag(), len(t.Metrics)+len(t.SideBearings), numGlyphs)
	}

	for _, m := range t.Metrics {
		err := w.write(m.Advance, m.SideBearing)
		if err != nil {
			return err
		}
	}
	return w.writeSlice(t.SideBearings)
}
