/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
)

// HdmxTable represents the horizontal device metrics table (hdmx).
// https://docs.microsoft.com/en-us/typography/opentype/spec/hdmx
type HdmxTable struct {
	Version uint16
	Records []*HdmxRecord // sorted by PixelSize.
}

// HdmxRecord holds the advance widths in pixels of all glyphs at one size.
type HdmxRecord struct {
	PixelSize uint8
	MaxWidth  uint8
	Widths    []uint8 // per glyph.
}

// Tag implements Table.
func (t *HdmxTable) Tag() Tag { return TagHdmx }

func decodeHdmx(r *byteReader, ctx *decodeContext) (Table, error) {
	numGlyphs, err := ctx.numGlyphs()
	if err != nil {
		return nil, err
	}

	t := &HdmxTable{}
	var numRecords int16
	var sizeDeviceRecord int32
	err = r.read(&t.Version, &numRecords, &sizeDeviceRecord)
	if err != nil {
		return nil, err
	}
	if numRecords < 0 || int(sizeDeviceRecord) < 2+numGlyphs {
		return nil, fmt.Errorf("%w: %d records of %d bytes for %d glyphs", ErrCorruptTable,
			numRecords, sizeDeviceRecord, numGlyphs)
	}

	for i := 0; i < int(numRecords); i++ {
		start := 8 + i*int(sizeDeviceRecord)
		rr, err := r.sub(start, 2+numGlyphs)
		if err != nil {
			return nil, err
		}
		rec := &HdmxRecord{}
		err = rr.read(&rec.PixelSize, &rec.MaxWidth)
		if err != nil {
			return nil, err
		}
		err = rr.readSlice(&rec.Widths, numGlyphs)
		if err != nil {
			return nil, err
		}
		if i > 0 && rec.PixelSize <= t.Records[i-1].PixelSize {
			ctx.report("records", SeverityMinor, int64(start), "pixel sizes not increasing at record %d", i)
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func (t *HdmxTable) encode(w *byteWriter, ctx *encodeContext) error {
	numGlyphs, err := ctx.numGlyphs()
	if err != nil {
		return err
	}
	if len(t.Records) > 0x7FFF {
		return fmt.Errorf("%w: %d hdmx records", ErrInconsistentModel, len(t.Records))
	}

	size := alignTo(2+numGlyphs, 4)
	err = w.write(t.Version, int16(len(t.Records)), int32(size))
	if err != nil {
		return err
	}
	for i, rec := range t.Records {
		if len(rec.Widths) != numGlyphs {
			return fmt.Errorf("%w: hdmx record %d has %d widths, maxp has %d glyphs", ErrInconsistentModel,
				i, len(rec.Widths), numGlyphs)
		}
		err = w.write(rec.PixelSize, rec.MaxWidth)
		if err != nil {
			return err
		}
		if err := w.writeBytes(rec.Widths); err != nil {
			return err
		}
		w.pad(4)
	}
	return nil
}
