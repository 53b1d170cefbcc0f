/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
)

// GaspTable represents the grid-fitting and scan-conversion procedure table (gasp).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gasp
type GaspTable struct {
	Version uint16
	Ranges  []GaspRange // sorted by increasing MaxPPEM, the last one 0xFFFF.
}

// GaspRange gives the rendering behavior for sizes up to and including MaxPPEM.
type GaspRange struct {
	MaxPPEM  uint16
	Behavior uint16
}

// Tag implements Table.
func (t *GaspTable) Tag() Tag { return TagGasp }

// Behavior returns the flags that apply at `ppem`.
func (t *GaspTable) Behavior(ppem uint16) uint16 {
	for _, gr := range t.Ranges {
		if ppem <= gr.MaxPPEM {
			return gr.Behavior
		}
	}
	return 0
}

func decodeGasp(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &GaspTable{}
	var numRanges uint16
	err := r.read(&t.Version, &numRanges)
	if err != nil {
		return nil, err
	}
	if t.Version > 1 {
		return nil, fmt.Errorf("%w: gasp version %d", ErrUnsupportedFormat, t.Version)
	}
	t.Ranges = make([]GaspRange, numRanges)
	for i := range t.Ranges {
		err = r.read(&t.Ranges[i].MaxPPEM, &t.Ranges[i].Behavior)
		if err != nil {
			return nil, err
		}
		if i > 0 && t.Ranges[i].MaxPPEM <= t.Ranges[i-1].MaxPPEM {
			ctx.report("ranges", SeverityMinor, 4+4*int64(i), "rangeMaxPPEM not increasing at %d", i)
		}
	}
	if n := len(t.Ranges); n > 0 && t.Ranges[n-1].MaxPPEM != 0xFFFF {
		ctx.report("ranges", SeverityMinor, 4+4*int64(n-1), "last range ends at %d, not 0xFFFF", t.Ranges[n-1].MaxPPEM)
	}
	return t, nil
}

func (t *GaspTable) encode(w *byteWriter, ctx *encodeContext) error {
	err := w.write(t.Version, uint16(len(t.Ranges)))
	if err != nil {
		return err
	}
	for _, gr := range t.Ranges {
		err = w.write(gr.MaxPPEM, gr.Behavior)
		if err != nil {
			return err
		}
	}
	return nil
}
