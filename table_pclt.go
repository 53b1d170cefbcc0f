/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"bytes"
)

// PCLTTable represents the PCL 5 table (PCLT).
// https://docs.microsoft.com/en-us/typography/opentype/spec/pclt
type PCLTTable struct {
	Version             Fixed
	FontNumber          uint32
	Pitch               uint16
	XHeight             uint16
	Style               uint16
	TypeFamily          uint16
	CapHeight           uint16
	SymbolSet           uint16
	Typeface            [16]byte
	CharacterComplement [8]byte
	FileName            [6]byte
	StrokeWeight        int8
	WidthType           int8
	SerifStyle          uint8
	reserved            uint8
}

// Tag implements Table.
func (t *PCLTTable) Tag() Tag { return TagPCLT }

// TypefaceName returns the typeface with trailing padding removed.
func (t *PCLTTable) TypefaceName() string {
	return string(bytes.TrimRight(t.Typeface[:], "\x00 "))
}

func decodePCLT(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &PCLTTable{}
	err := r.read(&t.Version, &t.FontNumber, &t.Pitch, &t.XHeight, &t.Style, &t.TypeFamily,
		&t.CapHeight, &t.SymbolSet)
	if err != nil {
		return nil, err
	}
	for _, field := range [][]byte{t.Typeface[:], t.CharacterComplement[:], t.FileName[:]} {
		b, err := r.next(len(field))
		if err != nil {
			return nil, err
		}
		copy(field, b)
	}
	err = r.read(&t.StrokeWeight, &t.WidthType, &t.SerifStyle, &t.reserved)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *PCLTTable) encode(w *byteWriter, ctx *encodeContext) error {
	err := w.write(t.Version, t.FontNumber, t.Pitch, t.XHeight, t.Style, t.TypeFamily,
		t.CapHeight, t.SymbolSet)
	if err != nil {
		return err
	}
	for _, field := range [][]byte{t.Typeface[:], t.CharacterComplement[:], t.FileName[:]} {
		if err := w.writeBytes(field); err != nil {
			return err
		}
	}
	return w.write(t.StrokeWeight, t.WidthType, t.SerifStyle, t.reserved)
}
