// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2023  the Archivekit Authors
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

package graphics

import "github.com/archivekit/pdfcore/graphics/matrix"

// Matrix contains a PDF transformation matrix.  This is an alias for
// [matrix.Matrix].
type Matrix = matrix.Matrix

// IdentityMatrix is the identity transformation.
var IdentityMatrix = matrix.Identity

// Translate moves the origin of the coordinate system.
func Translate(dx, dy float64) Matrix {
	return matrix.Translate(dx, dy)
}

// Scale scales the coordinate system.
func Scale(xScale, yScale float64) Matrix {
	return matrix.Scale(xScale, yScale)
}

// Rotate rotates the coordinate system by the given angle (in radians,
// counter-clockwise).
func Rotate(phi float64) Matrix {
	return matrix.Rotate(phi)
}
