/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
	"image/color"
)

// CPALTable represents the color palette table (CPAL), versions 0 and 1.
// https://docs.microsoft.com/en-us/typography/opentype/spec/cpal
type CPALTable struct {
	Version           uint16
	NumPaletteEntries uint16
	Palettes          [][]color.NRGBA // each of NumPaletteEntries colors.

	// Version 1. Nil slices are written as absent arrays.
	PaletteTypes  []uint32 // per palette.
	PaletteLabels []uint16 // per palette, name IDs or 0xFFFF.
	EntryLabels   []uint16 // per palette entry, name IDs or 0xFFFF.
}

// Palette type flags.
const (
	PaletteUsableWithLightBackground uint32 = 1 << 0
	PaletteUsableWithDarkBackground  uint32 = 1 << 1
)

// Tag implements Table.
func (t *CPALTable) Tag() Tag { return TagCPAL }

func decodeCPAL(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &CPALTable{}
	var numPalettes, numColorRecords uint16
	var colorRecordsOffset offset32
	err := r.read(&t.Version, &t.NumPaletteEntries, &numPalettes, &numColorRecords, &colorRecordsOffset)
	if err != nil {
		return nil, err
	}
	if t.Version > 1 {
		return nil, fmt.Errorf("%w: CPAL version %d", ErrUnsupportedFormat, t.Version)
	}

	var indices []uint16
	err = r.readSlice(&indices, int(numPalettes))
	if err != nil {
		return nil, err
	}

	var typesOffset, labelsOffset, entryLabelsOffset offset32
	if t.Version == 1 {
		err = r.read(&typesOffset, &labelsOffset, &entryLabelsOffset)
		if err != nil {
			return nil, err
		}
	}

	cr, err := r.sub(int(colorRecordsOffset), 4*int(numColorRecords))
	if err != nil {
		return nil, err
	}
	colors := make([]color.NRGBA, numColorRecords)
	for i := range colors {
		bgra, err := cr.next(4)
		if err != nil {
			return nil, err
		}
		colors[i] = color.NRGBA{B: bgra[0], G: bgra[1], R: bgra[2], A: bgra[3]}
	}

	n := int(t.NumPaletteEntries)
	for i, first := range indices {
		if int(first)+n > len(colors) {
			return nil, fmt.Errorf("%w: palette %d entries [%d,%d) outside %d color records",
				ErrCorruptTable, i, first, int(first)+n, len(colors))
		}
		t.Palettes = append(t.Palettes, append([]color.NRGBA(nil), colors[first:int(first)+n]...))
	}

	if typesOffset != 0 {
		sr, err := r.sub(int(typesOffset), 4*int(numPalettes))
		if err != nil {
			return nil, err
		}
		err = sr.readSlice(&t.PaletteTypes, int(numPalettes))
		if err != nil {
			return nil, err
		}
	}
	if labelsOffset != 0 {
		sr, err := r.sub(int(labelsOffset), 2*int(numPalettes))
		if err != nil {
			return nil, err
		}
		err = sr.readSlice(&t.PaletteLabels, int(numPalettes))
		if err != nil {
			return nil, err
		}
	}
	if entryLabelsOffset != 0 {
		sr, err := r.sub(int(entryLabelsOffset), 2*n)
		if err != nil {
			ctx.report("paletteEntryLabels", SeverityMinor, int64(entryLabelsOffset), "%v", err)
		} else if err := sr.readSlice(&t.EntryLabels, n); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *CPALTable) encode(w *byteWriter, ctx *encodeContext) error {
	n := int(t.NumPaletteEntries)
	numPalettes := len(t.Palettes)
	for i, p := range t.Palettes {
		if len(p) != n {
			return fmt.Errorf("%w: palette %d has %d colors, want %d", ErrInconsistentModel, i, len(p), n)
		}
	}
	if numPalettes*n > 0xFFFF {
		return fmt.Errorf("%w: %d color records", ErrInconsistentModel, numPalettes*n)
	}
	if t.Version == 1 {
		if t.PaletteTypes != nil && len(t.PaletteTypes) != numPalettes {
			return fmt.Errorf("%w: %d palette types for %d palettes", ErrInconsistentModel, len(t.PaletteTypes), numPalettes)
		}
		if t.PaletteLabels != nil && len(t.PaletteLabels) != numPalettes {
			return fmt.Errorf("%w: %d palette labels for %d palettes", ErrInconsistentModel, len(t.PaletteLabels), numPalettes)
		}
		if t.EntryLabels != nil && len(t.EntryLabels) != n {
			return fmt.Errorf("%w: %d entry labels for %d entries", ErrInconsistentModel, len(t.EntryLabels), n)
		}
	}

	err := w.write(t.Version, t.NumPaletteEntries, uint16(numPalettes), uint16(numPalettes*n))
	if err != nil {
		return err
	}
	colorRecordsOffset := w.reserve(4)
	for i := range t.Palettes {
		err = w.write(uint16(i * n))
		if err != nil {
			return err
		}
	}
	var typesOffset, labelsOffset, entryLabelsOffset reservation
	if t.Version == 1 {
		typesOffset, labelsOffset, entryLabelsOffset = w.reserve(4), w.reserve(4), w.reserve(4)
	}

	err = colorRecordsOffset.fill(offset32(w.Len()))
	if err != nil {
		return err
	}
	for _, p := range t.Palettes {
		for _, c := range p {
			err = w.writeUint8(c.B, c.G, c.R, c.A)
			if err != nil {
				return err
			}
		}
	}
	if t.Version != 1 {
		return nil
	}

	if t.PaletteTypes != nil {
		if err := typesOffset.fill(offset32(w.Len())); err != nil {
			return err
		}
		if err := w.writeSlice(t.PaletteTypes); err != nil {
			return err
		}
	}
	if t.PaletteLabels != nil {
		if err := labelsOffset.fill(offset32(w.Len())); err != nil {
			return err
		}
		if err := w.writeUint16(t.PaletteLabels...); err != nil {
			return err
		}
	}
	if t.EntryLabels != nil {
		if err := entryLabelsOffset.fill(offset32(w.Len())); err != nil {
			return err
		}
		if err := w.writeUint16(t.EntryLabels...); err != nil {
			return err
		}
	}
	return nil
}
