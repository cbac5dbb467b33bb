// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2025  the Archivekit Authors
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

// Package backend defines the interface between the content stream
// interpreter and output devices such as rasterizers, printers, and
// text extractors.
//
// A device receives drawing calls in content stream order, after the
// graphics state has been made consistent.  Devices only implement the
// calls they care about; [BaseDevice] provides no-op implementations
// for everything else.
package backend

import (
	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/graphics"
	"github.com/archivekit/pdfcore/graphics/color"
	"github.com/archivekit/pdfcore/graphics/matrix"
)

// Device receives the drawing primitives of a page.
type Device interface {
	// StartPage is called once before the first drawing operation of a
	// page.
	StartPage(pageNo int, state *graphics.State) error

	// EndPage is called after the last drawing operation of a page.
	EndPage() error

	// Flush is called periodically during long content streams.
	Flush() error

	// UpdateState is called whenever parts of the graphics state
	// change.  The changed parameters are given in bits.
	UpdateState(state *graphics.State, bits graphics.StateBits) error

	// Stroke strokes a path.
	Stroke(path *Path, state *graphics.State) error

	// Fill fills a path.  If evenOdd is true, the even-odd rule is
	// used instead of the nonzero winding number rule.
	Fill(path *Path, evenOdd bool, state *graphics.State) error

	// Clip intersects the clipping path with the given path.
	Clip(path *Path, evenOdd bool) error

	// DrawGlyph shows a single glyph.
	DrawGlyph(g Glyph, state *graphics.State) error

	// DrawImage draws an image.  The image data is described by the
	// stream or dictionary img; maskColors is the optional color key
	// masking range.
	DrawImage(img pdf.Object, maskColors []int, state *graphics.State) error

	// DrawMaskedImage draws an image with an explicit stencil mask.
	DrawMaskedImage(img, mask pdf.Object, state *graphics.State) error

	// DrawSoftMaskedImage draws an image with a soft mask.
	DrawSoftMaskedImage(img, mask pdf.Object, state *graphics.State) error

	// ShadedFill fills the current clipping region with a shading.
	ShadedFill(quads []ShadedQuad, state *graphics.State) error

	// BeginTransparencyGroup and EndTransparencyGroup bracket the
	// rendering of a transparency group.
	BeginTransparencyGroup(bbox pdf.Rectangle, isolated, knockout bool) error
	EndTransparencyGroup() error

	// Capability queries.

	// NeedNonText reports whether the device wants to receive
	// non-text drawing operations.
	NeedNonText() bool

	// UseTilingPatternFill reports whether the device handles tiling
	// patterns itself.  If false, the interpreter expands patterns
	// into individual drawing calls.
	UseTilingPatternFill() bool

	// UpsideDown reports whether the device coordinate system has the
	// origin in the top left corner.
	UpsideDown() bool
}

// Glyph is a positioned glyph passed to the device.
type Glyph struct {
	// Matrix maps glyph space to device space.
	Matrix matrix.Matrix

	// Code is the character code.
	Code uint32

	// Text is the Unicode text of the glyph.
	Text string

	// Width is the advance in text space units.
	Width float64
}

// Path is a sequence of subpaths in device coordinates.
type Path struct {
	Subpaths []Subpath
}

// Subpath is a sequence of points.  Points with IsCtrl set are control
// points of cubic Bezier segments.
type Subpath struct {
	Points []Point
	Closed bool
}

// Point is a point of a subpath.
type Point struct {
	X, Y   float64
	IsCtrl bool
}

// ShadedQuad is a filled quadrilateral produced by the shading engine.
type ShadedQuad struct {
	X, Y  [4]float64
	Color color.Color
}

// BaseDevice is a Device with no-op implementations of all methods.
// Devices can embed BaseDevice and override only the methods they
// need.
type BaseDevice struct{}

// StartPage implements the [Device] interface.
func (BaseDevice) StartPage(int, *graphics.State) error { return nil }

// EndPage implements the [Device] interface.
func (BaseDevice) EndPage() error { return nil }

// Flush implements the [Device] interface.
func (BaseDevice) Flush() error { return nil }

// UpdateState implements the [Device] interface.
func (BaseDevice) UpdateState(*graphics.State, graphics.StateBits) error { return nil }

// Stroke implements the [Device] interface.
func (BaseDevice) Stroke(*Path, *graphics.State) error { return nil }

// Fill implements the [Device] interface.
func (BaseDevice) Fill(*Path, bool, *graphics.State) error { return nil }

// Clip implements the [Device] interface.
func (BaseDevice) Clip(*Path, bool) error { return nil }

// DrawGlyph implements the [Device] interface.
func (BaseDevice) DrawGlyph(Glyph, *graphics.State) error { return nil }

// DrawImage implements the [Device] interface.
func (BaseDevice) DrawImage(pdf.Object, []int, *graphics.State) error { return nil }

// DrawMaskedImage implements the [Device] interface.
func (BaseDevice) DrawMaskedImage(pdf.Object, pdf.Object, *graphics.State) error { return nil }

// DrawSoftMaskedImage implements the [Device] interface.
func (BaseDevice) DrawSoftMaskedImage(pdf.Object, pdf.Object, *graphics.State) error { return nil }

// ShadedFill implements the [Device] interface.
func (BaseDevice) ShadedFill([]ShadedQuad, *graphics.State) error { return nil }

// BeginTransparencyGroup implements the [Device] interface.
func (BaseDevice) BeginTransparencyGroup(pdf.Rectangle, bool, bool) error { return nil }

// EndTransparencyGroup implements the [Device] interface.
func (BaseDevice) EndTransparencyGroup() error { return nil }

// NeedNonText implements the [Device] interface.
func (BaseDevice) NeedNonText() bool { return true }

// UseTilingPatternFill implements the [Device] interface.
func (BaseDevice) UseTilingPatternFill() bool { return false }

// UpsideDown implements the [Device] interface.
func (BaseDevice) UpsideDown() bool { return false }
