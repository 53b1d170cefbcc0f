/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// HeadTable represents the font header (head).
// https://docs.microsoft.com/en-us/typography/opentype/spec/head
type HeadTable struct {
	MajorVersion       uint16
	MinorVersion       uint16
	FontRevision       Fixed
	CheckSumAdjustment uint32 // Set by the write pass.
	MagicNumber        uint32
	Flags              uint16
	UnitsPerEm         uint16
	Created            LongDateTime
	Modified           LongDateTime
	XMin               int16
	YMin               int16
	XMax               int16
	YMax               int16
	MacStyle           uint16
	LowestRecPPEM      uint16
	FontDirectionHint  int16
	IndexToLocFormat   int16 // 0 for short loca offsets, 1 for long.
	GlyphDataFormat    int16
}

// Tag implements Table.
func (t *HeadTable) Tag() Tag { return TagHead }

func decodeHead(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &HeadTable{}
	err := r.read(&t.MajorVersion, &t.MinorVersion, &t.FontRevision)
	if err != nil {
		return nil, err
	}

	err = r.read(&t.CheckSumAdjustment, &t.MagicNumber)
	if err != nil {
		return nil, err
	}
	if t.MagicNumber != headMagicNumber {
		logrus.Debugf("head magic number mismatch (0x%08X)", t.MagicNumber)
		return nil, fmt.Errorf("%w: head magic number 0x%08X", ErrCorruptTable, t.MagicNumber)
	}

	err = r.read(&t.Flags, &t.UnitsPerEm, &t.Created, &t.Modified)
	if err != nil {
		return nil, err
	}

	err = r.read(&t.XMin, &t.YMin, &t.XMax, &t.YMax)
	if err != nil {
		return nil, err
	}

	err = r.read(&t.MacStyle, &t.LowestRecPPEM, &t.FontDirectionHint, &t.IndexToLocFormat, &t.GlyphDataFormat)
	if err != nil {
		return nil, err
	}
	if t.IndexToLocFormat != 0 && t.IndexToLocFormat != 1 {
		ctx.report("indexToLocFormat", SeverityMajor, 50, "invalid value %d", t.IndexToLocFormat)
	}
	return t, nil
}

// encode writes the head table with a zero checkSumAdjustment. The assembly pass patches the
// adjustment once the whole file has been laid out.
func (t *HeadTable) encode(w *byteWriter, ctx *encodeContext) error {
	locFormat, err := ctx.indexToLocFormat(t.IndexToLocFormat)
	if err != nil {
		return err
	}

	err = w.write(t.MajorVersion, t.MinorVersion, t.FontRevision, uint32(0), uint32(headMagicNumber))
	if err != nil {
		return err
	}

	err = w.write(t.Flags, t.UnitsPerEm, t.Created, t.Modified, t.XMin, t.YMin, t.XMax, t.YMax)
	if err != nil {
		return err
	}

	return w.write(t.MacStyle, t.LowestRecPPEM, t.FontDirectionHint, locFormat, t.GlyphDataFormat)
}
