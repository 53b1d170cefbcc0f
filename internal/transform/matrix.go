/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package transform provides the 2D affine matrix used to place composite glyph components.
package transform

import (
	"fmt"
	"math"
)

// Matrix is a linear transform matrix in homogenous coordinates.
//
//	/ a  b  0 \
//	| c  d  0 |
//	\ tx ty 1 /
//
// A point (x, y) maps to (a*x + c*y + tx, b*x + d*y + ty). This matches the layout of a
// composite glyph component's 2x2 transform (xscale, scale01, scale10, yscale) and offset.
type Matrix [9]float64

// IdentityMatrix returns the identity transform.
func IdentityMatrix() Matrix {
	return NewMatrix(1, 0, 0, 1, 0, 0)
}

// TranslationMatrix returns a matrix that translates by `tx`, `ty`.
func TranslationMatrix(tx, ty float64) Matrix {
	return NewMatrix(1, 0, 0, 1, tx, ty)
}

// NewMatrix returns an affine transform matrix laid out in homogenous coordinates as
//
//	a  b  0
//	c  d  0
//	tx ty 1
func NewMatrix(a, b, c, d, tx, ty float64) Matrix {
	m := Matrix{}
	m.Set(a, b, c, d, tx, ty)
	return m
}

// String returns a string describing `m`.
func (m Matrix) String() string {
	a, b, c, d, tx, ty := m[0], m[1], m[3], m[4], m[6], m[7]
	return fmt.Sprintf("[%7.4f,%7.4f,%7.4f,%7.4f:%7.4f,%7.4f]", a, b, c, d, tx, ty)
}

// Set sets `m` to affine transform a,b,c,d,tx,ty.
func (m *Matrix) Set(a, b, c, d, tx, ty float64) {
	m[0], m[1] = a, b
	m[3], m[4] = c, d
	m[6], m[7] = tx, ty
	m[2], m[5], m[8] = 0, 0, 1
}

// Mult returns `m` × `b`: the transform that applies `m` and then `b`.
func (m Matrix) Mult(b Matrix) Matrix {
	return Matrix{
		m[0]*b[0] + m[1]*b[3] + m[2]*b[6],
		m[0]*b[1] + m[1]*b[4] + m[2]*b[7],
		m[0]*b[2] + m[1]*b[5] + m[2]*b[8],
		m[3]*b[0] + m[4]*b[3] + m[5]*b[6],
		m[3]*b[1] + m[4]*b[4] + m[5]*b[7],
		m[3]*b[2] + m[4]*b[5] + m[5]*b[8],
		m[6]*b[0] + m[7]*b[3] + m[8]*b[6],
		m[6]*b[1] + m[7]*b[4] + m[8]*b[7],
		m[6]*b[2] + m[7]*b[5] + m[8]*b[8],
	}
}

// Translate appends a translation of `tx`, `ty` to `m`.
func (m *Matrix) Translate(tx, ty float64) {
	*m = m.Mult(TranslationMatrix(tx, ty))
}

// Translation returns the translation part of `m`.
func (m Matrix) Translation() (float64, float64) {
	return m[6], m[7]
}

// Transform returns coordinates `x`, `y` transformed by `m`.
func (m Matrix) Transform(x, y float64) (float64, float64) {
	xp := x*m[0] + y*m[3] + m[6]
	yp := x*m[1] + y*m[4] + m[7]
	return xp, yp
}

// TransformVector returns `x`, `y` transformed by the linear part of `m`, without translation.
func (m Matrix) TransformVector(x, y float64) (float64, float64) {
	return x*m[0] + y*m[3], x*m[1] + y*m[4]
}

// Angle returns the angle of the affine transform in `m` in degrees, in [0, 360).
func (m Matrix) Angle() float64 {
	theta := math.Atan2(-m[1], m[0])
	if theta < 0.0 {
		theta += 2 * math.Pi
	}
	return theta / math.Pi * 180.0
}

// IsIdentity returns true if `m` is exactly the identity transform.
func (m Matrix) IsIdentity() bool {
	return m == IdentityMatrix()
}
