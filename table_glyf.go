/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/sirupsen/logrus"
)

// GlyfTable represents the Glyph Data table (glyf).
// Information that describes the glyphs in the font in the TrueType outline format.
//
// The 'glyf' table is comprised of a list of glyph data blocks, each of which provides
// the description for a single glyph. Glyphs are referenced by identifiers (glyph IDs),
// which are sequential integers beginning at zero. The total number of glyphs is specified
// by the numGlyphs field in the 'maxp' table. The 'glyf' table does not include any overall
// table header or records providing offsets to glyph data blocks. Rather, the 'loca' table
// provides an array of offsets, indexed by glyph IDs, which provide the location of each
// glyph data block within the 'glyf' table. Note that the 'glyf' table must always be used
// in conjunction with the 'loca' and 'maxp' tables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/glyf
type GlyfTable struct {
	// Glyphs indexed by glyph ID. A nil entry is a glyph without outline (e.g. space).
	Glyphs []*Glyph
}

// Tag implements Table.
func (t *GlyfTable) Tag() Tag { return TagGlyf }

// Glyph is a glyph description: simple or composite.
type Glyph struct {
	Header    GlyphHeader
	Simple    *SimpleGlyph
	Composite *CompositeGlyph
}

// GlyphHeader represents the glyph header in the glyf table (one for each glyph).
type GlyphHeader struct {
	NumberOfContours int16 // Negative for composite glyphs.
	XMin             int16
	YMin             int16
	XMax             int16
	YMax             int16
}

func (h *GlyphHeader) read(r *byteReader) error {
	return r.read(&h.NumberOfContours, &h.XMin, &h.YMin, &h.XMax, &h.YMax)
}

func (h *GlyphHeader) write(w *byteWriter) error {
	return w.write(h.NumberOfContours, h.XMin, h.YMin, h.XMax, h.YMax)
}

// IsComposite returns true if `g` is a composite glyph.
func (g *Glyph) IsComposite() bool {
	return g.Composite != nil
}

// NewSimpleGlyph returns a glyph for `sg` with a header matching its contours and points.
func NewSimpleGlyph(sg *SimpleGlyph) *Glyph {
	g := &Glyph{Simple: sg}
	g.Header.NumberOfContours = int16(len(sg.EndPtsOfContours))
	g.Header.XMin, g.Header.YMin, g.Header.XMax, g.Header.YMax = sg.bounds()
	return g
}

// NewCompositeGlyph returns a glyph for `cg` with the given bounding box.
func NewCompositeGlyph(cg *CompositeGlyph, xMin, yMin, xMax, yMax int16) *Glyph {
	return &Glyph{
		Header:    GlyphHeader{NumberOfContours: -1, XMin: xMin, YMin: yMin, XMax: xMax, YMax: yMax},
		Composite: cg,
	}
}

// Glyph returns the glyph `gid` or nil for glyphs without outline.
func (t *GlyfTable) Glyph(gid GlyphIndex) (*Glyph, error) {
	if int(gid) >= len(t.Glyphs) {
		logrus.Debugf("Range check error (glyf gid %d)", gid)
		return nil, errRangeCheck
	}
	return t.Glyphs[gid], nil
}

func decodeGlyf(r *byteReader, ctx *decodeContext) (Table, error) {
	loca := ctx.loca()
	if loca == nil {
		logrus.Debug("required field missing (glyf)")
		return nil, fmt.Errorf("%w: loca (needed by glyf)", ErrTableNotFound)
	}
	numGlyphs, err := ctx.numGlyphs()
	if err != nil {
		return nil, err
	}
	if len(loca.Offsets) != numGlyphs+1 {
		return nil, fmt.Errorf("%w: loca has %d offsets for %d glyphs", ErrCorruptTable, len(loca.Offsets), numGlyphs)
	}

	logrus.Debugf("parsing glyfs - number of glyphs: %d", numGlyphs)

	t := &GlyfTable{Glyphs: make([]*Glyph, numGlyphs)}

	// First pass: headers and simple glyphs. Composites reference other glyphs by index, so their
	// bodies are decoded once every simple glyph exists.
	var composites []GlyphIndex
	spans := make([]*byteReader, numGlyphs)
	for i := 0; i < numGlyphs; i++ {
		gid := GlyphIndex(i)
		start, end, err := loca.GlyphRange(gid)
		if err != nil {
			return nil, err
		}
		if end <= start {
			// No outline.
			continue
		}
		gr, err := r.sub(int(start), int(end-start))
		if err != nil {
			ctx.report(fmt.Sprintf("glyph %d", gid), SeverityMajor, start, "%v", err)
			continue
		}

		g := &Glyph{}
		if err := g.Header.read(gr); err != nil {
			ctx.report(fmt.Sprintf("glyph %d", gid), SeverityMajor, start, "%v", err)
			continue
		}
		if g.Header.NumberOfContours < 0 {
			t.Glyphs[gid] = g
			spans[gid] = gr
			composites = append(composites, gid)
			continue
		}

		logrus.Tracef("simple glyph %d data, contours: %d", gid, g.Header.NumberOfContours)
		g.Simple, err = decodeSimpleGlyph(gr, int(g.Header.NumberOfContours))
		if err != nil {
			ctx.report(fmt.Sprintf("glyph %d", gid), SeverityMajor, start, "%v", err)
			continue
		}
		t.Glyphs[gid] = g
	}

	// Second pass: composite glyphs.
	for _, gid := range composites {
		g := t.Glyphs[gid]
		g.Composite, err = decodeCompositeGlyph(spans[gid])
		if err != nil {
			ctx.report(fmt.Sprintf("glyph %d", gid), SeverityMajor, int64(loca.Offsets[gid]), "%v", err)
			t.Glyphs[gid] = nil
		}
	}

	res := newComponentResolver(t)
	for _, gid := range composites {
		if t.Glyphs[gid] == nil {
			continue
		}
		if _, err := res.resolve(gid, 0); err != nil {
			ctx.report(fmt.Sprintf("glyph %d", gid), SeverityMajor, int64(loca.Offsets[gid]), "%v", err)
		}
	}

	return t, nil
}

// glyphCount is the number of points and contours of a glyph, components included.
type glyphCount struct {
	points   int
	contours int
}

// componentResolver computes the point and contour bases of composite glyph components. Counts
// are memoised per glyph and a visited set guards against cyclic component references.
type componentResolver struct {
	glyf     *GlyfTable
	memo     map[GlyphIndex]glyphCount
	visiting *bitset.BitSet
}

func newComponentResolver(glyf *GlyfTable) *componentResolver {
	return &componentResolver{
		glyf:     glyf,
		memo:     map[GlyphIndex]glyphCount{},
		visiting: bitset.New(uint(len(glyf.Glyphs))),
	}
}

func (res *componentResolver) resolve(gid GlyphIndex, depth int) (glyphCount, error) {
	if c, ok := res.memo[gid]; ok {
		return c, nil
	}
	if int(gid) >= len(res.glyf.Glyphs) {
		return glyphCount{}, fmt.Errorf("%w: component glyph %d out of range", ErrCorruptTable, gid)
	}
	g := res.glyf.Glyphs[gid]
	switch {
	case g == nil:
		return glyphCount{}, nil
	case g.Simple != nil:
		c := glyphCount{points: g.Simple.NumPoints(), contours: len(g.Simple.EndPtsOfContours)}
		res.memo[gid] = c
		return c, nil
	case g.Composite == nil:
		return glyphCount{}, nil
	}

	if depth > maxComponentDepth {
		logrus.Debugf("Component nesting too deep at glyph %d", gid)
		return glyphCount{}, fmt.Errorf("%w: component nesting deeper than %d", ErrCorruptTable, maxComponentDepth)
	}
	if res.visiting.Test(uint(gid)) {
		logrus.Debugf("Cyclic component reference to glyph %d", gid)
		return glyphCount{}, fmt.Errorf("%w: cyclic component reference to glyph %d", ErrCorruptTable, gid)
	}
	res.visiting.Set(uint(gid))
	defer res.visiting.Clear(uint(gid))

	var total glyphCount
	for i := range g.Composite.Components {
		comp := &g.Composite.Components[i]
		c, err := res.resolve(comp.GlyphIndex, depth+1)
		if err != nil {
			for j := i; j < len(g.Composite.Components); j++ {
				g.Composite.Components[j].PointBase = -1
				g.Composite.Components[j].ContourBase = -1
			}
			return glyphCount{}, err
		}
		comp.PointBase = total.points
		comp.ContourBase = total.contours
		total.points += c.points
		total.contours += c.contours
	}
	res.memo[gid] = total
	return total, nil
}

// NumPoints returns the number of points of glyph `gid` with composite components flattened.
func (t *GlyfTable) NumPoints(gid GlyphIndex) (int, error) {
	c, err := newComponentResolver(t).resolve(gid, 0)
	return c.points, err
}

// encode writes the glyphs sequentially with 2-byte alignment and hands the resulting offsets to
// loca and head through `ctx`.
func (t *GlyfTable) encode(w *byteWriter, ctx *encodeContext) error {
	numGlyphs, err := ctx.numGlyphs()
	if err != nil {
		return err
	}
	if numGlyphs != len(t.Glyphs) {
		logrus.Debug("Incorrect number of glyph descriptions")
		return fmt.Errorf("%w: glyf has %d glyphs, maxp declares %d", ErrInconsistentModel, len(t.Glyphs), numGlyphs)
	}

	offsets := make([]uint32, 0, numGlyphs+1)
	for gid, g := range t.Glyphs {
		offsets = append(offsets, uint32(w.Len()))
		if g == nil {
			continue
		}
		if err := g.encode(w); err != nil {
			return fmt.Errorf("glyph %d: %w", gid, err)
		}
		w.pad(2)
	}
	offsets = append(offsets, uint32(w.Len()))
	ctx.setGlyphOffsets(offsets)
	return nil
}

func (g *Glyph) encode(w *byteWriter) error {
	h := g.Header
	switch {
	case g.Simple != nil:
		h.NumberOfContours = int16(len(g.Simple.EndPtsOfContours))
	case g.Composite != nil:
		if h.NumberOfContours >= 0 {
			h.NumberOfContours = -1
		}
	default:
		return fmt.Errorf("%w: glyph without description", ErrInconsistentModel)
	}
	if err := h.write(w); err != nil {
		return err
	}
	if g.Simple != nil {
		return g.Simple.encode(w)
	}
	return g.Composite.encode(w)
}
