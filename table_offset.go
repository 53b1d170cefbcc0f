/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
	"math/bits"

	"github.com/sirupsen/logrus"
)

// Values of offsetTable.sfntVersion.
const (
	sfntVersionTrueType = 0x00010000
	sfntVersionOpenType = 0x4F54544F // 'OTTO'
	sfntVersionApple    = 0x74727565 // 'true'
	sfntVersionType1    = 0x74797031 // 'typ1'
)

// offsetTable is the fixed 12 byte header of a font.
type offsetTable struct {
	sfntVersion   uint32
	numTables     uint16
	searchRange   uint16
	entrySelector uint16
	rangeShift    uint16
}

func isKnownSfntVersion(v uint32) bool {
	switch v {
	case sfntVersionTrueType, sfntVersionOpenType, sfntVersionApple, sfntVersionType1:
		return true
	}
	return false
}

func parseOffsetTable(r *byteReader) (*offsetTable, error) {
	ot := &offsetTable{}

	err := r.read(&ot.sfntVersion, &ot.numTables, &ot.searchRange)
	if err != nil {
		return nil, err
	}

	err = r.read(&ot.entrySelector, &ot.rangeShift)
	if err != nil {
		return nil, err
	}

	if !isKnownSfntVersion(ot.sfntVersion) {
		logrus.Debugf("Unknown sfnt version 0x%08X", ot.sfntVersion)
		return nil, fmt.Errorf("%w: sfnt version 0x%08X", ErrUnsupportedFormat, ot.sfntVersion)
	}

	return ot, nil
}

// newOffsetTable returns the header for `numTables` tables with the derived binary search fields.
func newOffsetTable(sfntVersion uint32, numTables int) *offsetTable {
	if numTables == 0 {
		return &offsetTable{sfntVersion: sfntVersion}
	}
	sel := bits.Len(uint(numTables)) - 1
	searchRange := 16 * (1 << sel)
	return &offsetTable{
		sfntVersion:   sfntVersion,
		numTables:     uint16(numTables),
		searchRange:   uint16(searchRange),
		entrySelector: uint16(sel),
		rangeShift:    uint16(16*numTables - searchRange),
	}
}

func (t *offsetTable) write(w *byteWriter) error {
	if t == nil {
		return errRequiredField
	}
	return w.write(t.sfntVersion, t.numTables, t.searchRange, t.entrySelector, t.rangeShift)
}
