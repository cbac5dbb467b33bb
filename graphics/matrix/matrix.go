// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2024  the Archivekit Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package matrix implements the affine transformation matrices used in
// PDF files.
package matrix

import "math"

// Matrix contains a PDF transformation matrix.  The elements are stored
// in the same order as for the "cm" operator in PDF content streams.
// The matrix [a b c d e f] transforms a point (x, y) to
// (a*x+c*y+e, b*x+d*y+f).
type Matrix [6]float64

// Identity is the identity transformation.
var Identity = Matrix{1, 0, 0, 1, 0, 0}

// Translate moves the origin of the coordinate system.
func Translate(dx, dy float64) Matrix {
	return Matrix{1, 0, 0, 1, dx, dy}
}

// Scale scales the coordinate system.
func Scale(xScale, yScale float64) Matrix {
	return Matrix{xScale, 0, 0, yScale, 0, 0}
}

// Rotate rotates the coordinate system by the given angle (in radians,
// counter-clockwise).
func Rotate(phi float64) Matrix {
	c := math.Cos(phi)
	s := math.Sin(phi)
	return Matrix{c, s, -s, c, 0, 0}
}

// RotateDeg rotates the coordinate system by the given angle (in
// degrees, counter-clockwise).
func RotateDeg(phi float64) Matrix {
	return Rotate(phi * math.Pi / 180)
}

// Mul multiplies two transformation matrices.  The result is the
// transformation which first applies A and then B.
func (A Matrix) Mul(B Matrix) Matrix {
	return Matrix{
		A[0]*B[0] + A[1]*B[2],
		A[0]*B[1] + A[1]*B[3],
		A[2]*B[0] + A[3]*B[2],
		A[2]*B[1] + A[3]*B[3],
		A[4]*B[0] + A[5]*B[2] + B[4],
		A[4]*B[1] + A[5]*B[3] + B[5],
	}
}

// Inv returns the inverse transformation of A.  If A is singular, the
// zero matrix is returned.
func (A Matrix) Inv() Matrix {
	det := A[0]*A[3] - A[1]*A[2]
	if det == 0 {
		return Matrix{}
	}
	return Matrix{
		A[3] / det,
		-A[1] / det,
		-A[2] / det,
		A[0] / det,
		(A[2]*A[5] - A[3]*A[4]) / det,
		(A[1]*A[4] - A[0]*A[5]) / det,
	}
}

// Apply transforms a point from user space to device space.
func (A Matrix) Apply(x, y float64) (float64, float64) {
	return A[0]*x + A[2]*y + A[4], A[1]*x + A[3]*y + A[5]
}

// ApplyVec transforms a vector, ignoring the translation part of the
// matrix.
func (A Matrix) ApplyVec(x, y float64) (float64, float64) {
	return A[0]*x + A[2]*y, A[1]*x + A[3]*y
}

// IsSingular reports whether the determinant of the matrix is close to
// zero, so that the matrix cannot be inverted reliably.
func (A Matrix) IsSingular() bool {
	det := A[0]*A[3] - A[1]*A[2]
	return math.Abs(det) < 1e-6
}
