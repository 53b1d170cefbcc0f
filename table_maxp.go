/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Values of MaxpTable.Version.
const (
	maxpVersion05 Fixed = 0x00005000 // CFF outlines, only numGlyphs.
	maxpVersion10 Fixed = 0x00010000 // TrueType outlines.
)

// MaxpTable represents the Maximum Profile (maxp) table.
// This table establishes the memory requirements for the font.
type MaxpTable struct {
	// Version 0.5 and above:
	Version   Fixed
	NumGlyphs uint16

	// Version 1.0 and above:
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

// Tag implements Table.
func (t *MaxpTable) Tag() Tag { return TagMaxp }

func decodeMaxp(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &MaxpTable{}

	err := r.read(&t.Version, &t.NumGlyphs)
	if err != nil {
		return nil, err
	}

	switch {
	case t.Version == maxpVersion05:
		return t, nil
	case t.Version < maxpVersion10:
		logrus.Debugf("Range check error (maxp version 0x%08X)", uint32(t.Version))
		return nil, fmt.Errorf("%w: maxp version 0x%08X", ErrCorruptTable, uint32(t.Version))
	}

	err = r.read(&t.MaxPoints, &t.MaxContours, &t.MaxCompositePoints, &t.MaxCompositeContours)
	if err != nil {
		return nil, err
	}

	err = r.read(&t.MaxZones, &t.MaxTwilightPoints, &t.MaxStorage, &t.MaxFunctionDefs, &t.MaxInstructionDefs)
	if err != nil {
		return nil, err
	}

	return t, r.read(&t.MaxStackElements, &t.MaxSizeOfInstructions, &t.MaxComponentElements, &t.MaxComponentDepth)
}

func (t *MaxpTable) encode(w *byteWriter, ctx *encodeContext) error {
	err := w.write(t.Version, t.NumGlyphs)
	if err != nil {
		return err
	}
	if t.Version == maxpVersion05 {
		return nil
	}
	if t.Version < maxpVersion10 {
		logrus.Debug("Range check error (maxp)")
		return fmt.Errorf("%w: maxp version 0x%08X", ErrInconsistentModel, uint32(t.Version))
	}

	err = w.write(t.MaxPoints, t.MaxContours, t.MaxCompositePoints, t.MaxCompositeContours)
	if err != nil {
		return err
	}

	err = w.write(t.MaxZones, t.MaxTwilightPoints, t.MaxStorage, t.MaxFunctionDefs, t.MaxInstructionDefs)
	if err != nil {
		return err
	}

	return w.write(t.MaxStackElements, t.MaxSizeOfInstructions, t.MaxComponentElements, t.MaxComponentDepth)
}
