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

import (
	"errors"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/graphics/matrix"
)

// TextStart starts a text object.  This emits a "BT" operator.
func (w *Writer) TextStart() {
	if w.Err != nil {
		return
	}
	w.nesting = append(w.nesting, pairText)
	w.TextMatrix = matrix.Identity
	w.TextLineMatrix = matrix.Identity
	w.Set |= StateTextMatrix
	w.writeOps("BT")
}

// TextEnd ends a text object.  This emits an "ET" operator.
func (w *Writer) TextEnd() {
	if w.Err != nil {
		return
	}
	if len(w.nesting) == 0 || w.nesting[len(w.nesting)-1] != pairText {
		w.Err = errors.New("TextEnd: no matching TextStart")
		return
	}
	w.nesting = w.nesting[:len(w.nesting)-1]
	w.Set &^= StateTextMatrix
	w.writeOps("ET")
}

// TextSetCharacterSpacing sets the character spacing.
func (w *Writer) TextSetCharacterSpacing(spacing float64) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateTextCharacterSpacing) && spacing == w.TextCharacterSpacing {
		return
	}
	w.TextCharacterSpacing = spacing
	w.Set |= StateTextCharacterSpacing
	w.writeOps(spacing, "Tc")
}

// TextSetWordSpacing sets the word spacing.
func (w *Writer) TextSetWordSpacing(spacing float64) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateTextWordSpacing) && spacing == w.TextWordSpacing {
		return
	}
	w.TextWordSpacing = spacing
	w.Set |= StateTextWordSpacing
	w.writeOps(spacing, "Tw")
}

// TextSetHorizontalScaling sets the horizontal scaling.  The argument
// is in percent; 100 corresponds to the normal glyph width.
func (w *Writer) TextSetHorizontalScaling(scaling float64) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateTextHorizontalScaling) && scaling/100 == w.TextHorizonalScaling {
		return
	}
	w.TextHorizonalScaling = scaling / 100
	w.Set |= StateTextHorizontalScaling
	w.writeOps(scaling, "Tz")
}

// TextSetLeading sets the leading, i.e. the vertical distance between
// consecutive baselines of text.
func (w *Writer) TextSetLeading(leading float64) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateTextLeading) && leading == w.TextLeading {
		return
	}
	w.TextLeading = leading
	w.Set |= StateTextLeading
	w.writeOps(leading, "TL")
}

// TextSetFont sets the font and font size.
func (w *Writer) TextSetFont(font Resource, size float64) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateTextFont) && w.TextFont != nil &&
		w.TextFont.PDFObject() == font.PDFObject() &&
		w.TextFont.DefaultName() == font.DefaultName() &&
		w.TextFontSize == size {
		return
	}
	w.TextFont = font
	w.TextFontSize = size
	w.Set |= StateTextFont
	name := w.getResourceName(catFont, font)
	w.writeOps(name, size, "Tf")
}

// TextSetRenderingMode sets the text rendering mode.
func (w *Writer) TextSetRenderingMode(mode TextRenderingMode) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateTextRenderingMode) && mode == w.TextRenderingMode {
		return
	}
	w.TextRenderingMode = mode
	w.Set |= StateTextRenderingMode
	w.writeOps(int(mode), "Tr")
}

// TextSetRise sets the text rise.
func (w *Writer) TextSetRise(rise float64) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateTextRise) && rise == w.TextRise {
		return
	}
	w.TextRise = rise
	w.Set |= StateTextRise
	w.writeOps(rise, "Ts")
}

// TextFirstLine moves to the start of the next line of text, offset by
// (dx, dy) from the start of the current line.  This emits a "Td"
// operator.
func (w *Writer) TextFirstLine(dx, dy float64) {
	if w.Err != nil {
		return
	}
	w.TextLineMatrix = matrix.Translate(dx, dy).Mul(w.TextLineMatrix)
	w.TextMatrix = w.TextLineMatrix
	w.writeOps(dx, dy, "Td")
}

// TextSecondLine moves to the start of the next line of text and sets
// the leading to -dy.  This emits a "TD" operator.
func (w *Writer) TextSecondLine(dx, dy float64) {
	if w.Err != nil {
		return
	}
	w.TextLeading = -dy
	w.Set |= StateTextLeading
	w.TextLineMatrix = matrix.Translate(dx, dy).Mul(w.TextLineMatrix)
	w.TextMatrix = w.TextLineMatrix
	w.writeOps(dx, dy, "TD")
}

// TextSetMatrix sets the text matrix and the text line matrix.  This
// emits a "Tm" operator.
func (w *Writer) TextSetMatrix(m matrix.Matrix) {
	if w.Err != nil {
		return
	}
	w.TextMatrix = m
	w.TextLineMatrix = m
	w.writeOps(m[0], m[1], m[2], m[3], m[4], m[5], "Tm")
}

// TextNextLine moves to the start of the next line of text, using the
// current leading.  This emits a "T*" operator.
func (w *Writer) TextNextLine() {
	if w.Err != nil {
		return
	}
	w.TextLineMatrix = matrix.Translate(0, -w.TextLeading).Mul(w.TextLineMatrix)
	w.TextMatrix = w.TextLineMatrix
	w.writeOps("T*")
}

// TextShowString shows a PDF string.  This emits a "Tj" operator.
func (w *Writer) TextShowString(s pdf.String) {
	if w.Err != nil {
		return
	}
	if !w.isSet(StateTextFont) {
		w.Err = errors.New("TextShowString: no font set")
		return
	}
	w.writeOps(s, "Tj")
}
