/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/sirupsen/logrus"

	"github.com/unidoc/unitype/internal/transform"
)

// OutlinePoint is a point of a flattened glyph outline in font units.
type OutlinePoint struct {
	X, Y    float64
	OnCurve bool
}

// Outline is a glyph outline with composite components flattened into one point list.
type Outline struct {
	Points    []OutlinePoint
	EndPoints []int // Index of the last point of each contour.
}

// Outline returns the outline of glyph `gid`. Component glyphs are placed by their transform and
// offset or by matching the anchor points given in the component arguments. Glyphs without
// outline yield an empty Outline.
func (t *GlyfTable) Outline(gid GlyphIndex) (*Outline, error) {
	visiting := bitset.New(uint(len(t.Glyphs)))
	return t.outline(gid, 0, visiting)
}

func (t *GlyfTable) outline(gid GlyphIndex, depth int, visiting *bitset.BitSet) (*Outline, error) {
	g, err := t.Glyph(gid)
	if err != nil {
		return nil, err
	}
	o := &Outline{}
	if g == nil {
		return o, nil
	}

	if g.Simple != nil {
		for i := range g.Simple.X {
			o.Points = append(o.Points, OutlinePoint{
				X:       float64(g.Simple.X[i]),
				Y:       float64(g.Simple.Y[i]),
				OnCurve: g.Simple.Flags[i].IsSet(OnCurvePoint),
			})
		}
		for _, e := range g.Simple.EndPtsOfContours {
			o.EndPoints = append(o.EndPoints, int(e))
		}
		return o, nil
	}
	if g.Composite == nil {
		return o, nil
	}

	if depth > maxComponentDepth {
		return nil, fmt.Errorf("%w: component nesting deeper than %d", ErrCorruptTable, maxComponentDepth)
	}
	if visiting.Test(uint(gid)) {
		logrus.Debugf("Cyclic component reference to glyph %d", gid)
		return nil, fmt.Errorf("%w: cyclic component reference to glyph %d", ErrCorruptTable, gid)
	}
	visiting.Set(uint(gid))
	defer visiting.Clear(uint(gid))

	for i := range g.Composite.Components {
		comp := &g.Composite.Components[i]
		sub, err := t.outline(comp.GlyphIndex, depth+1, visiting)
		if err != nil {
			return nil, err
		}

		m := comp.Matrix()
		if !comp.Flags.IsSet(ArgsAreXYValues) {
			m, err = anchorMatrix(m, o, sub, comp)
			if err != nil {
				return nil, err
			}
		}

		base := len(o.Points)
		if m.IsIdentity() {
			o.Points = append(o.Points, sub.Points...)
		} else {
			for _, p := range sub.Points {
				x, y := m.Transform(p.X, p.Y)
				o.Points = append(o.Points, OutlinePoint{X: x, Y: y, OnCurve: p.OnCurve})
			}
		}
		for _, e := range sub.EndPoints {
			o.EndPoints = append(o.EndPoints, base+e)
		}
	}
	return o, nil
}

// anchorMatrix extends `m` by the translation that moves component point Arg2 onto the composite's
// point Arg1.
func anchorMatrix(m transform.Matrix, parent, child *Outline, comp *GlyphComponent) (transform.Matrix, error) {
	p1, p2 := int(comp.Arg1), int(comp.Arg2)
	if p1 >= len(parent.Points) || p2 >= len(child.Points) {
		logrus.Debugf("Anchor points out of range (%d/%d, %d/%d)", p1, len(parent.Points), p2, len(child.Points))
		return m, fmt.Errorf("%w: anchor point out of range", ErrCorruptTable)
	}
	cx, cy := m.Transform(child.Points[p2].X, child.Points[p2].Y)
	m.Translate(parent.Points[p1].X-cx, parent.Points[p1].Y-cy)
	return m, nil
}
