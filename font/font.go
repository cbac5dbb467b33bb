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

// Package font provides access to the fonts used in PDF content
// streams.  The package reads font dictionaries as far as needed to
// split PDF strings into character codes, to map codes to Unicode, and
// to compute glyph advances.  Loading and subsetting of font programs
// is outside the scope of this package.
package font

import (
	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/graphics/matrix"
)

// Char is a single character code decoded from a PDF string.
type Char struct {
	// Code is the character code.
	Code uint32

	// CID is the character identifier for composite fonts.  For simple
	// fonts this equals Code.
	CID uint32

	// Text is the text content of the character, or "" if no mapping
	// to text is known.
	Text string

	// Width is the glyph advance in glyph space units, where 1000
	// units correspond to the font size.
	Width float64

	// IsSpace indicates that the character is a single-byte code 32,
	// which is subject to word spacing.
	IsSpace bool
}

// Embedded gives access to a font used in a PDF content stream.
type Embedded interface {
	pdf.Resource

	// WritingMode returns 0 for horizontal writing and 1 for vertical
	// writing.
	WritingMode() int

	// Decode iterates over the character codes of a PDF string.
	Decode(s pdf.String, yield func(c Char) bool)
}

// Font is a font read from a PDF file.
type Font struct {
	// Name is the name under which the font is known in the resource
	// dictionary.
	Name pdf.Name

	// Ref is the PDF object underlying the font.
	Ref pdf.Object

	// Subtype is the font type, e.g. "Type1", "TrueType", "Type0" or
	// "Type3".
	Subtype pdf.Name

	// Composite indicates a Type0 (CID-keyed) font, which uses
	// multi-byte character codes.
	Composite bool

	// Vertical indicates vertical writing mode.
	Vertical bool

	// FontMatrix maps glyph space to text space for Type3 fonts.  For
	// all other font types this is [0.001 0 0 0.001 0 0].
	FontMatrix matrix.Matrix

	// CharProcs contains the glyph procedures of a Type3 font.
	CharProcs pdf.Dict

	// Resources is the resource dictionary of a Type3 font, if any.
	Resources pdf.Object

	widths     map[uint32]float64
	diffNames  map[uint32]string
	missing    float64
	toUnicode  *ToUnicode
	simpleText map[uint32]string
}

// DefaultName implements the [pdf.Resource] interface.
func (f *Font) DefaultName() pdf.Name {
	return f.Name
}

// PDFObject implements the [pdf.Resource] interface.
func (f *Font) PDFObject() pdf.Object {
	return f.Ref
}

// WritingMode implements the [Embedded] interface.
func (f *Font) WritingMode() int {
	if f.Vertical {
		return 1
	}
	return 0
}

// Equal reports whether two fonts refer to the same font dictionary.
// This is used by cmp.Diff in unit tests.
func (f *Font) Equal(other *Font) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Name == other.Name && f.Ref == other.Ref
}

// Decode implements the [Embedded] interface.
func (f *Font) Decode(s pdf.String, yield func(c Char) bool) {
	if f.Composite {
		for i := 0; i+1 < len(s); i += 2 {
			code := uint32(s[i])<<8 | uint32(s[i+1])
			if !yield(f.makeChar(code)) {
				return
			}
		}
		return
	}
	for _, b := range s {
		if !yield(f.makeChar(uint32(b))) {
			return
		}
	}
}

func (f *Font) makeChar(code uint32) Char {
	c := Char{
		Code:    code,
		CID:     code,
		IsSpace: !f.Composite && code == 32,
	}

	if w, ok := f.widths[code]; ok {
		c.Width = w
	} else {
		c.Width = f.missing
	}

	if f.toUnicode != nil {
		if text, ok := f.toUnicode.Lookup(code); ok {
			c.Text = text
			return c
		}
	}
	if text, ok := f.simpleText[code]; ok {
		c.Text = text
		return c
	}
	if !f.Composite && code >= 32 && code < 127 {
		// fall back to ASCII for unmapped codes of simple fonts
		c.Text = string(rune(code))
	}
	return c
}
