/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/unidoc/unitype/internal/transform"
)

// CompositeGlyphFlag represents the flags of a composite glyph component.
type CompositeGlyphFlag uint16

// Composite glyph component flag bits.
const (
	Arg1And2AreWords CompositeGlyphFlag = (1 << iota) // If set, the args are 16-bit, otherwise 8-bit.
	ArgsAreXYValues                                   // If set, the args are signed xy values, otherwise unsigned point numbers.
	RoundXYToGrid
	WeHaveAScale
	_              // reserved
	MoreComponents // Indicates at least one component following this one.
	WeHaveAnXAndYScale
	WeHaveATwoByTwo
	WeHaveInstructions
	UseMyMetrics
	OverlapCompound
	ScaledComponentOffset
	UnscaledComponentOffset
)

// IsSet returns true if `flag` is set in `f`.
func (f CompositeGlyphFlag) IsSet(flag CompositeGlyphFlag) bool {
	return f&flag != 0
}

func (f CompositeGlyphFlag) String() string {
	var flags []string

	if f.IsSet(Arg1And2AreWords) {
		flags = append(flags, "arg1And2AreWords")
	}
	if f.IsSet(ArgsAreXYValues) {
		flags = append(flags, "argsAreXYValues")
	}
	if f.IsSet(RoundXYToGrid) {
		flags = append(flags, "roundXYToGrid")
	}
	if f.IsSet(WeHaveAScale) {
		flags = append(flags, "weHaveAScale")
	}
	if f.IsSet(MoreComponents) {
		flags = append(flags, "moreComponents")
	}
	if f.IsSet(WeHaveAnXAndYScale) {
		flags = append(flags, "weHaveAnXAndYScale")
	}
	if f.IsSet(WeHaveATwoByTwo) {
		flags = append(flags, "weHaveATwoByTwo")
	}
	if f.IsSet(WeHaveInstructions) {
		flags = append(flags, "weHaveInstructions")
	}
	if f.IsSet(UseMyMetrics) {
		flags = append(flags, "useMyMetrics")
	}
	if f.IsSet(OverlapCompound) {
		flags = append(flags, "overlapCompound")
	}
	if f.IsSet(ScaledComponentOffset) {
		flags = append(flags, "scaledComponentOffset")
	}
	if f.IsSet(UnscaledComponentOffset) {
		flags = append(flags, "unscaledComponentOffset")
	}

	return strings.Join(flags, "|")
}

// CompositeGlyph represents a composite glyph description, i.e. one with numberOfContours < 0.
type CompositeGlyph struct {
	Components []GlyphComponent

	// Instructions following the last component. Nil when the last component does not have the
	// instructions flag set.
	Instructions Program
}

// GlyphComponent is a reference to another glyph, placed by an offset or by matching points.
type GlyphComponent struct {
	Flags      CompositeGlyphFlag
	GlyphIndex GlyphIndex

	// Arg1 and Arg2 are (dx, dy) when ArgsAreXYValues is set, otherwise the point number in the
	// composite so far and the point number in the component that are to be matched.
	Arg1, Arg2 int32

	// Transform holds 1 value (uniform scale), 2 values (x and y scale) or 4 values (2x2 matrix
	// xscale, scale01, scale10, yscale) depending on the flags.
	Transform []F2Dot14

	// Index of the component's first point and contour within the composite's numbering.
	// -1 when it cannot be determined (unknown or cyclic component reference).
	PointBase   int
	ContourBase int
}

// Matrix returns the component's transform including the offset when args are xy values.
func (c *GlyphComponent) Matrix() transform.Matrix {
	a, b, cc, d := 1.0, 0.0, 0.0, 1.0
	switch {
	case c.Flags.IsSet(WeHaveAScale) && len(c.Transform) >= 1:
		a = c.Transform[0].Float64()
		d = a
	case c.Flags.IsSet(WeHaveAnXAndYScale) && len(c.Transform) >= 2:
		a = c.Transform[0].Float64()
		d = c.Transform[1].Float64()
	case c.Flags.IsSet(WeHaveATwoByTwo) && len(c.Transform) >= 4:
		a = c.Transform[0].Float64()
		b = c.Transform[1].Float64()
		cc = c.Transform[2].Float64()
		d = c.Transform[3].Float64()
	}
	m := transform.NewMatrix(a, b, cc, d, 0, 0)
	if !c.Flags.IsSet(ArgsAreXYValues) {
		return m
	}
	dx, dy := float64(c.Arg1), float64(c.Arg2)
	if c.Flags.IsSet(ScaledComponentOffset) && !c.Flags.IsSet(UnscaledComponentOffset) {
		dx, dy = m.TransformVector(dx, dy)
	}
	if c.Flags.IsSet(RoundXYToGrid) {
		dx, dy = math.Round(dx), math.Round(dy)
	}
	m.Translate(dx, dy)
	return m
}

func transformLen(flags CompositeGlyphFlag) int {
	switch {
	case flags.IsSet(WeHaveAScale):
		return 1
	case flags.IsSet(WeHaveAnXAndYScale):
		return 2
	case flags.IsSet(WeHaveATwoByTwo):
		return 4
	}
	return 0
}

// decodeCompositeGlyph reads the component records of a composite glyph at the current position
// of `r`. Point and contour bases are resolved later, once all glyphs are known.
func decodeCompositeGlyph(r *byteReader) (*CompositeGlyph, error) {
	g := &CompositeGlyph{}

	instructionsFollow := false
	for {
		comp := GlyphComponent{PointBase: -1, ContourBase: -1}
		var flags uint16
		err := r.read(&flags, &comp.GlyphIndex)
		if err != nil {
			return nil, err
		}
		comp.Flags = CompositeGlyphFlag(flags)

		switch {
		case comp.Flags.IsSet(Arg1And2AreWords) && comp.Flags.IsSet(ArgsAreXYValues):
			var arg1, arg2 int16
			err = r.read(&arg1, &arg2)
			comp.Arg1, comp.Arg2 = int32(arg1), int32(arg2)
		case comp.Flags.IsSet(Arg1And2AreWords):
			var arg1, arg2 uint16
			err = r.read(&arg1, &arg2)
			comp.Arg1, comp.Arg2 = int32(arg1), int32(arg2)
		case comp.Flags.IsSet(ArgsAreXYValues):
			var arg1, arg2 int8
			err = r.read(&arg1, &arg2)
			comp.Arg1, comp.Arg2 = int32(arg1), int32(arg2)
		default:
			var arg1, arg2 uint8
			err = r.read(&arg1, &arg2)
			comp.Arg1, comp.Arg2 = int32(arg1), int32(arg2)
		}
		if err != nil {
			return nil, err
		}

		if n := transformLen(comp.Flags); n > 0 {
			comp.Transform = make([]F2Dot14, n)
			for i := range comp.Transform {
				if err := r.read(&comp.Transform[i]); err != nil {
					return nil, err
				}
			}
		}

		g.Components = append(g.Components, comp)
		if !comp.Flags.IsSet(MoreComponents) {
			instructionsFollow = comp.Flags.IsSet(WeHaveInstructions)
			break
		}
	}

	if instructionsFollow {
		var err error
		g.Instructions, err = readProgram(r)
		if err != nil {
			logrus.Debug("Failed to read composite instructions")
			return nil, err
		}
	}

	return g, nil
}

func fitsInt8(v int32) bool  { return v >= math.MinInt8 && v <= math.MaxInt8 }
func fitsUint8(v int32) bool { return v >= 0 && v <= math.MaxUint8 }

func (g *CompositeGlyph) encode(w *byteWriter) error {
	if len(g.Components) == 0 {
		return fmt.Errorf("%w: composite glyph without components", ErrInconsistentModel)
	}

	for i, comp := range g.Components {
		flags := comp.Flags &^ (MoreComponents | WeHaveInstructions)
		last := i == len(g.Components)-1
		if !last {
			flags |= MoreComponents
		} else if g.Instructions != nil {
			flags |= WeHaveInstructions
		}

		xy := flags.IsSet(ArgsAreXYValues)
		if !flags.IsSet(Arg1And2AreWords) {
			if (xy && !(fitsInt8(comp.Arg1) && fitsInt8(comp.Arg2))) ||
				(!xy && !(fitsUint8(comp.Arg1) && fitsUint8(comp.Arg2))) {
				flags |= Arg1And2AreWords
			}
		}
		if len(comp.Transform) != transformLen(flags) {
			return fmt.Errorf("%w: component %d has %d transform values for flags %s",
				ErrInconsistentModel, i, len(comp.Transform), flags)
		}

		err := w.write(uint16(flags), comp.GlyphIndex)
		if err != nil {
			return err
		}

		switch {
		case flags.IsSet(Arg1And2AreWords):
			err = w.writeUint16(uint16(comp.Arg1), uint16(comp.Arg2))
		default:
			err = w.writeUint8(uint8(comp.Arg1), uint8(comp.Arg2))
		}
		if err != nil {
			return err
		}

		for _, v := range comp.Transform {
			if err := w.write(v); err != nil {
				return err
			}
		}
	}

	if g.Instructions != nil {
		return writeProgram(w, g.Instructions)
	}
	return nil
}
