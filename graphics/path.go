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

// This file implements the path construction and path painting
// operators.

// MoveTo starts a new subpath at the given point.
func (w *Writer) MoveTo(x, y float64) {
	w.writeOps(x, y, "m")
}

// LineTo appends a straight line segment to the current subpath.
func (w *Writer) LineTo(x, y float64) {
	w.writeOps(x, y, "l")
}

// CurveTo appends a cubic Bezier curve to the current subpath.
func (w *Writer) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	w.writeOps(x1, y1, x2, y2, x3, y3, "c")
}

// Rectangle appends a rectangle to the current path, as a closed
// subpath.
func (w *Writer) Rectangle(x, y, width, height float64) {
	w.writeOps(x, y, width, height, "re")
}

// ClosePath closes the current subpath.
func (w *Writer) ClosePath() {
	w.writeOps("h")
}

// Stroke strokes the current path.
func (w *Writer) Stroke() {
	w.writeOps("S")
}

// CloseAndStroke closes and strokes the current path.
func (w *Writer) CloseAndStroke() {
	w.writeOps("s")
}

// Fill fills the current path, using the nonzero winding number rule.
func (w *Writer) Fill() {
	w.writeOps("f")
}

// FillEvenOdd fills the current path, using the even-odd rule.
func (w *Writer) FillEvenOdd() {
	w.writeOps("f*")
}

// FillAndStroke fills and strokes the current path.
func (w *Writer) FillAndStroke() {
	w.writeOps("B")
}

// EndPath ends the path without filling or stroking it.  This is
// mostly used to set clipping paths.
func (w *Writer) EndPath() {
	w.writeOps("n")
}

// ClipNonZero sets the current path as the clipping path, using the
// nonzero winding number rule.
func (w *Writer) ClipNonZero() {
	w.writeOps("W")
}

// ClipEvenOdd sets the current path as the clipping path, using the
// even-odd rule.
func (w *Writer) ClipEvenOdd() {
	w.writeOps("W*")
}

// DrawXObject paints the given XObject (a form or an image).  This
// emits a "Do" operator.
func (w *Writer) DrawXObject(obj Resource) {
	if w.Err != nil {
		return
	}
	name := w.getResourceName(catXObject, obj)
	w.writeOps(name, "Do")
}

// DrawShading paints the given shading, subject to the current
// clipping path.  This emits a "sh" operator.
func (w *Writer) DrawShading(shading Resource) {
	if w.Err != nil {
		return
	}
	name := w.getResourceName(catShading, shading)
	w.writeOps(name, "sh")
}
