/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// SimpleGlyphFlag represents a flag data representation of a point in a simple glyph.
type SimpleGlyphFlag uint8

// Simple glyph flag bits.
const (
	OnCurvePoint SimpleGlyphFlag = (1 << iota)
	XShortVector
	YShortVector
	RepeatFlag
	XIsSameOrPositiveVector
	YIsSameOrPositiveVector
	OverlapSimple
	reservedSimpleFlag
)

// semanticFlags are the bits that carry meaning beyond the coordinate encoding.
const semanticFlags = OnCurvePoint | OverlapSimple

// IsSet returns true if `flag` is set in `f`.
func (f SimpleGlyphFlag) IsSet(flag SimpleGlyphFlag) bool {
	return f&flag != 0
}

func (f SimpleGlyphFlag) String() string {
	var flags []string
	if f.IsSet(OnCurvePoint) {
		flags = append(flags, "onCurvePoint")
	}
	if f.IsSet(XShortVector) {
		flags = append(flags, "xShortVector")
	}
	if f.IsSet(YShortVector) {
		flags = append(flags, "yShortVector")
	}
	if f.IsSet(RepeatFlag) {
		flags = append(flags, "repeatFlag")
	}
	if f.IsSet(XIsSameOrPositiveVector) {
		flags = append(flags, "xIsSameOrPositiveVector")
	}
	if f.IsSet(YIsSameOrPositiveVector) {
		flags = append(flags, "yIsSameOrPositiveVector")
	}
	if f.IsSet(OverlapSimple) {
		flags = append(flags, "overlapSimple")
	}
	if f.IsSet(reservedSimpleFlag) {
		flags = append(flags, "reserved")
	}
	return strings.Join(flags, "|")
}

// SimpleGlyph represents a simple (non composite) glyph description, i.e. one with
// numberOfContours >= 0.
type SimpleGlyph struct {
	// Point indices for the last point of each contour, in increasing numeric order.
	EndPtsOfContours []uint16
	Instructions     Program

	// One flag per point, with the repeat bit cleared. Coordinates are absolute.
	Flags []SimpleGlyphFlag
	X     []int16
	Y     []int16
}

// NumPoints returns the total number of points of all contours.
func (g *SimpleGlyph) NumPoints() int {
	if len(g.EndPtsOfContours) == 0 {
		return 0
	}
	return int(g.EndPtsOfContours[len(g.EndPtsOfContours)-1]) + 1
}

// decodeSimpleGlyph reads a simple glyph with `numContours` contours at the current position of `r`.
func decodeSimpleGlyph(r *byteReader, numContours int) (*SimpleGlyph, error) {
	g := &SimpleGlyph{}
	if numContours == 0 && r.Remaining() < 2 {
		// Header only.
		return g, nil
	}

	err := r.readSlice(&g.EndPtsOfContours, numContours)
	if err != nil {
		return nil, err
	}
	for i := 1; i < numContours; i++ {
		if g.EndPtsOfContours[i] < g.EndPtsOfContours[i-1] {
			logrus.Debugf("Contour end points not increasing (%v)", g.EndPtsOfContours)
			return nil, fmt.Errorf("%w: contour end points not increasing", ErrCorruptTable)
		}
	}

	g.Instructions, err = readProgram(r)
	if err != nil {
		return nil, err
	}

	numPoints := g.NumPoints()
	logrus.Tracef("Simple glyph - number of points: %d", numPoints)

	g.Flags, err = unpackFlags(r, numPoints)
	if err != nil {
		return nil, err
	}

	g.X, err = readCoordinates(r, g.Flags, XShortVector, XIsSameOrPositiveVector)
	if err != nil {
		return nil, err
	}
	g.Y, err = readCoordinates(r, g.Flags, YShortVector, YIsSameOrPositiveVector)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// unpackFlags reads `numPoints` run-length encoded flags. A flag with the repeat bit is followed by
// the number of additional times it occurs. The repeat bit is cleared in the result.
func unpackFlags(r *byteReader, numPoints int) ([]SimpleGlyphFlag, error) {
	flags := make([]SimpleGlyphFlag, 0, numPoints)
	for len(flags) < numPoints {
		b, err := r.readUint8()
		if err != nil {
			return nil, err
		}
		flag := SimpleGlyphFlag(b)
		count := 1
		if flag.IsSet(RepeatFlag) {
			repeats, err := r.readUint8()
			if err != nil {
				return nil, err
			}
			count += int(repeats)
			flag &^= RepeatFlag
		}
		if len(flags)+count > numPoints {
			logrus.Debugf("Number of flags != number of points (%d > %d)", len(flags)+count, numPoints)
			return nil, fmt.Errorf("%w: flag repeat past point count %d", ErrCorruptTable, numPoints)
		}
		for i := 0; i < count; i++ {
			flags = append(flags, flag)
		}
	}
	return flags, nil
}

// readCoordinates reads delta encoded coordinates and accumulates them into absolute values.
func readCoordinates(r *byteReader, flags []SimpleGlyphFlag, short, same SimpleGlyphFlag) ([]int16, error) {
	coords := make([]int16, len(flags))
	var last int16
	for i, flag := range flags {
		var delta int16
		switch {
		case flag.IsSet(short):
			b, err := r.readUint8()
			if err != nil {
				return nil, err
			}
			delta = int16(b)
			if !flag.IsSet(same) {
				delta = -delta
			}
		case flag.IsSet(same):
			delta = 0
		default:
			val, err := r.readInt16()
			if err != nil {
				return nil, err
			}
			delta = val
		}
		last += delta
		coords[i] = last
	}
	return coords, nil
}

// updateFlags returns flags for absolute coordinates `xs`, `ys` with the minimal encoding: zero
// deltas elided via the same bit, deltas up to 255 in a byte with the sign in the same bit and
// others as int16. Only the on-curve and overlap bits of `flags` are kept.
func updateFlags(flags []SimpleGlyphFlag, xs, ys []int16) []SimpleGlyphFlag {
	out := make([]SimpleGlyphFlag, len(flags))
	var lastX, lastY int16
	for i := range flags {
		flag := flags[i] & semanticFlags
		flag |= coordinateFlag(xs[i]-lastX, XShortVector, XIsSameOrPositiveVector)
		flag |= coordinateFlag(ys[i]-lastY, YShortVector, YIsSameOrPositiveVector)
		lastX, lastY = xs[i], ys[i]
		out[i] = flag
	}
	return out
}

func coordinateFlag(delta int16, short, same SimpleGlyphFlag) SimpleGlyphFlag {
	switch {
	case delta == 0:
		return same
	case delta > 0 && delta <= 255:
		return short | same
	case delta < 0 && delta >= -255:
		return short
	}
	return 0
}

// packFlags run-length encodes `flags`. Runs are formed greedily with at most 256 flags, as the
// repeat count is a single byte.
func packFlags(flags []SimpleGlyphFlag) []byte {
	var out []byte
	for i := 0; i < len(flags); {
		flag := flags[i] &^ RepeatFlag
		j := i + 1
		for j < len(flags) && flags[j]&^RepeatFlag == flag && j-i < 256 {
			j++
		}
		if run := j - i; run > 1 {
			out = append(out, uint8(flag|RepeatFlag), uint8(run-1))
		} else {
			out = append(out, uint8(flag))
		}
		i = j
	}
	return out
}

func writeCoordinates(w *byteWriter, flags []SimpleGlyphFlag, coords []int16, short, same SimpleGlyphFlag) error {
	var last int16
	for i, flag := range flags {
		delta := coords[i] - last
		last = coords[i]
		switch {
		case flag.IsSet(short):
			if delta < 0 {
				delta = -delta
			}
			if err := w.writeUint8(uint8(delta)); err != nil {
				return err
			}
		case flag.IsSet(same):
		default:
			if err := w.writeInt16(delta); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *SimpleGlyph) encode(w *byteWriter) error {
	numPoints := g.NumPoints()
	if len(g.Flags) != numPoints || len(g.X) != numPoints || len(g.Y) != numPoints {
		logrus.Debugf("#flags/#x/#y != #points (%d/%d/%d/%d)", len(g.Flags), len(g.X), len(g.Y), numPoints)
		return fmt.Errorf("%w: simple glyph with %d points has %d flags, %d x and %d y coordinates",
			ErrInconsistentModel, numPoints, len(g.Flags), len(g.X), len(g.Y))
	}

	err := w.writeUint16(g.EndPtsOfContours...)
	if err != nil {
		return err
	}

	err = writeProgram(w, g.Instructions)
	if err != nil {
		return err
	}

	flags := updateFlags(g.Flags, g.X, g.Y)
	err = w.writeBytes(packFlags(flags))
	if err != nil {
		return err
	}

	err = writeCoordinates(w, flags, g.X, XShortVector, XIsSameOrPositiveVector)
	if err != nil {
		return err
	}
	return writeCoordinates(w, flags, g.Y, YShortVector, YIsSameOrPositiveVector)
}

// bounds returns the bounding box of the glyph's points.
func (g *SimpleGlyph) bounds() (xMin, yMin, xMax, yMax int16) {
	for i := range g.X {
		x, y := g.X[i], g.Y[i]
		if i == 0 || x < xMin {
			xMin = x
		}
		if i == 0 || x > xMax {
			xMax = x
		}
		if i == 0 || y < yMin {
			yMin = y
		}
		if i == 0 || y > yMax {
			yMax = y
		}
	}
	return xMin, yMin, xMax, yMax
}
