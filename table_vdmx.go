/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
)

// VDMXTable represents the vertical device metrics table (VDMX).
// https://docs.microsoft.com/en-us/typography/opentype/spec/vdmx
type VDMXTable struct {
	Version uint16
	Ratios  []VDMXRatio
	Groups  []*VDMXGroup
}

// VDMXRatio is an aspect ratio range with the index of its group in Groups. Several ratios may
// share a group.
type VDMXRatio struct {
	CharSet     uint8
	XRatio      uint8
	YStartRatio uint8
	YEndRatio   uint8
	Group       int
}

// VDMXGroup holds the maximum and minimum y values per pixel height for a range of sizes.
type VDMXGroup struct {
	StartSize uint8
	EndSize   uint8
	Entries   []VDMXEntry
}

// VDMXEntry is the record for one pixel height.
type VDMXEntry struct {
	YPelHeight uint16
	YMax       int16
	YMin       int16
}

// Tag implements Table.
func (t *VDMXTable) Tag() Tag { return TagVDMX }

func decodeVDMX(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &VDMXTable{}
	var numRecs, numRatios uint16
	err := r.read(&t.Version, &numRecs, &numRatios)
	if err != nil {
		return nil, err
	}

	t.Ratios = make([]VDMXRatio, numRatios)
	for i := range t.Ratios {
		rr := &t.Ratios[i]
		err = r.read(&rr.CharSet, &rr.XRatio, &rr.YStartRatio, &rr.YEndRatio)
		if err != nil {
			return nil, err
		}
	}
	var offsets []offset16
	err = r.readSlice(&offsets, int(numRatios))
	if err != nil {
		return nil, err
	}

	groups := map[offset16]int{}
	for i, off := range offsets {
		if gi, ok := groups[off]; ok {
			t.Ratios[i].Group = gi
			continue
		}
		if err := r.Seek(int64(off)); err != nil {
			return nil, err
		}
		g := &VDMXGroup{}
		var recs uint16
		err = r.read(&recs, &g.StartSize, &g.EndSize)
		if err != nil {
			return nil, err
		}
		g.Entries = make([]VDMXEntry, recs)
		for j := range g.Entries {
			e := &g.Entries[j]
			err = r.read(&e.YPelHeight, &e.YMax, &e.YMin)
			if err != nil {
				return nil, err
			}
		}
		groups[off] = len(t.Groups)
		t.Ratios[i].Group = len(t.Groups)
		t.Groups = append(t.Groups, g)
	}
	if int(numRecs) != len(t.Groups) {
		ctx.report("numRecs", SeverityMinor, 2, "numRecs %d, found %d groups", numRecs, len(t.Groups))
	}
	return t, nil
}

func (t *VDMXTable) encode(w *byteWriter, ctx *encodeContext) error {
	for i, rr := range t.Ratios {
		if rr.Group < 0 || rr.Group >= len(t.Groups) {
			return fmt.Errorf("%w: VDMX ratio %d refers to group %d of %d", ErrInconsistentModel,
				i, rr.Group, len(t.Groups))
		}
	}
	err := w.write(t.Version, uint16(len(t.Groups)), uint16(len(t.Ratios)))
	if err != nil {
		return err
	}
	for _, rr := range t.Ratios {
		err = w.write(rr.CharSet, rr.XRatio, rr.YStartRatio, rr.YEndRatio)
		if err != nil {
			return err
		}
	}
	offsets := make([]reservation, len(t.Ratios))
	for i := range t.Ratios {
		offsets[i] = w.reserve(2)
	}

	groupOffsets := make([]offset16, len(t.Groups))
	for i, g := range t.Groups {
		if w.Len() > 0xFFFF {
			return fmt.Errorf("%w: VDMX groups beyond 64K", ErrInconsistentModel)
		}
		groupOffsets[i] = offset16(w.Len())
		err = w.write(uint16(len(g.Entries)), g.StartSize, g.EndSize)
		if err != nil {
			return err
		}
		for _, e := range g.Entries {
			err = w.write(e.YPelHeight, e.YMax, e.YMin)
			if err != nil {
				return err
			}
		}
	}
	for i, rr := range t.Ratios {
		if err := offsets[i].fill(groupOffsets[rr.Group]); err != nil {
			return err
		}
	}
	return nil
}
