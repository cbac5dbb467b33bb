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

// Package graphics implements the graphics state of PDF content
// streams, together with a writer which emits content stream operators
// and a reader which reconstructs the graphics state from a content
// stream.
package graphics

import (
	"fmt"
	"math"
	"strings"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/graphics/color"
	"github.com/archivekit/pdfcore/graphics/matrix"
)

// Resource represents a named resource used in a content stream.
type Resource = pdf.Resource

// Res is a simple implementation of the [Resource] interface.
type Res struct {
	// DefName is the name under which the resource prefers to be
	// known.  This can be empty.
	DefName pdf.Name

	// Data is the PDF object representing the resource.
	Data pdf.Object
}

// DefaultName implements the [Resource] interface.
func (r *Res) DefaultName() pdf.Name {
	return r.DefName
}

// PDFObject implements the [Resource] interface.
func (r *Res) PDFObject() pdf.Object {
	return r.Data
}

// State collects the graphics state parameters of a PDF content
// stream.  The Set field records which of the parameters have been set
// explicitly.
type State struct {
	// CTM is the current transformation matrix from user space to
	// device space.
	CTM matrix.Matrix

	StrokeColor color.Color
	FillColor   color.Color

	// TextMatrix and TextLineMatrix are only valid between "BT" and
	// "ET" operators.
	TextMatrix     matrix.Matrix
	TextLineMatrix matrix.Matrix

	TextFont     Resource
	TextFontSize float64

	TextCharacterSpacing float64
	TextWordSpacing      float64

	// TextHorizonalScaling is the horizontal scaling factor.  The
	// value 1 corresponds to the normal width of the glyphs.
	TextHorizonalScaling float64

	TextLeading       float64
	TextRenderingMode TextRenderingMode
	TextRise          float64
	TextKnockout      bool

	LineWidth   float64
	LineCap     LineCapStyle
	LineJoin    LineJoinStyle
	MiterLimit  float64
	DashPattern []float64
	DashPhase   float64

	RenderingIntent  RenderingIntent
	StrokeAdjustment bool

	BlendMode              pdf.Object
	SoftMask               pdf.Object
	StrokeAlpha            float64
	FillAlpha              float64
	AlphaSourceFlag        bool
	BlackPointCompensation pdf.Name

	OverprintStroke bool
	OverprintFill   bool // for PDF<1.3 this must equal OverprintStroke
	OverprintMode   int

	BlackGeneration   pdf.Object
	UnderColorRemoval pdf.Object
	TransferFunction  pdf.Object
	Halftone          pdf.Object
	HalftoneOriginX   float64
	HalftoneOriginY   float64

	FlatnessTolerance   float64
	SmoothnessTolerance float64

	// Set records which of the graphics state parameters above have
	// known values.
	Set StateBits
}

// NewState returns a State with all parameters set to their default
// values.
func NewState() State {
	res := State{
		CTM: matrix.Identity,

		StrokeColor: color.DeviceGray(0),
		FillColor:   color.DeviceGray(0),

		TextHorizonalScaling: 1,

		LineWidth:  1,
		LineCap:    LineCapButt,
		LineJoin:   LineJoinMiter,
		MiterLimit: 10,

		RenderingIntent: RenderingIntentRelativeColorimetric,

		BlendMode:              pdf.Name("Normal"),
		StrokeAlpha:            1,
		FillAlpha:              1,
		BlackPointCompensation: "Default",

		FlatnessTolerance: 1,

		Set: stateDefaults,
	}
	return res
}

// Clone returns a copy of the state.  Mutable fields are copied, so
// that changes to the copy do not affect the original.
func (s State) Clone() State {
	res := s
	if s.DashPattern != nil {
		res.DashPattern = append([]float64(nil), s.DashPattern...)
	}
	return res
}

// StateBits is a bit mask describing a subset of graphics state
// parameters.
type StateBits uint64

// The graphics state parameters.
const (
	StateTextFont StateBits = 1 << iota
	StateTextKnockout
	StateLineWidth
	StateLineCap
	StateLineJoin
	StateMiterLimit
	StateLineDash
	StateRenderingIntent
	StateStrokeAdjustment
	StateBlendMode
	StateSoftMask
	StateStrokeAlpha
	StateFillAlpha
	StateAlphaSourceFlag
	StateBlackPointCompensation
	StateOverprint
	StateOverprintMode
	StateBlackGeneration
	StateUnderColorRemoval
	StateTransferFunction
	StateHalftone
	StateHalftoneOrigin
	StateFlatnessTolerance
	StateSmoothnessTolerance
	StateStrokeColor
	StateFillColor
	StateTextCharacterSpacing
	StateTextWordSpacing
	StateTextHorizontalScaling
	StateTextLeading
	StateTextRenderingMode
	StateTextRise
	StateTextMatrix

	stateFirstUnused

	// AllStateBits covers all graphics state parameters.
	AllStateBits = stateFirstUnused - 1

	// OpStateBits lists the parameters which can be set using
	// individual content stream operators (as opposed to parameters
	// which require an ExtGState resource).
	OpStateBits = StateTextFont |
		StateLineWidth |
		StateLineCap |
		StateLineJoin |
		StateMiterLimit |
		StateLineDash |
		StateRenderingIntent |
		StateFlatnessTolerance |
		StateStrokeColor |
		StateFillColor |
		StateTextCharacterSpacing |
		StateTextWordSpacing |
		StateTextHorizontalScaling |
		StateTextLeading |
		StateTextRenderingMode |
		StateTextRise

	// stateDefaults lists the parameters which have default values
	// specified for them.
	stateDefaults = AllStateBits &^ (StateTextFont | StateTextMatrix |
		StateSoftMask | StateBlackGeneration | StateUnderColorRemoval |
		StateTransferFunction | StateHalftone | StateHalftoneOrigin)
)

// stateNames maps bit positions in a StateBits value to the names of
// the corresponding graphics state parameters.
var stateNames = []string{
	"TextFont",
	"TextKnockout",
	"LineWidth",
	"LineCap",
	"LineJoin",
	"MiterLimit",
	"LineDash",
	"RenderingIntent",
	"StrokeAdjustment",
	"BlendMode",
	"SoftMask",
	"StrokeAlpha",
	"FillAlpha",
	"AlphaSourceFlag",
	"BlackPointCompensation",
	"Overprint",
	"OverprintMode",
	"BlackGeneration",
	"UnderColorRemoval",
	"TransferFunction",
	"Halftone",
	"HalftoneOrigin",
	"FlatnessTolerance",
	"SmoothnessTolerance",
	"StrokeColor",
	"FillColor",
	"TextCharacterSpacing",
	"TextWordSpacing",
	"TextHorizontalScaling",
	"TextLeading",
	"TextRenderingMode",
	"TextRise",
	"TextMatrix",
}

// Names returns the names of the parameters in the given set.
func (bits StateBits) Names() []string {
	var res []string
	for i, state := 0, StateBits(1); state < stateFirstUnused; i, state = i+1, state<<1 {
		if bits&state != 0 {
			res = append(res, stateNames[i])
		}
	}
	return res
}

// LineCapStyle is the style of the end of a line.
type LineCapStyle uint8

// The line cap styles.
const (
	LineCapButt   LineCapStyle = 0
	LineCapRound  LineCapStyle = 1
	LineCapSquare LineCapStyle = 2
)

// LineJoinStyle is the style of the corner of a line.
type LineJoinStyle uint8

// The line join styles.
const (
	LineJoinMiter LineJoinStyle = 0
	LineJoinRound LineJoinStyle = 1
	LineJoinBevel LineJoinStyle = 2
)

// RenderingIntent describes how colors outside the gamut of the output
// device are handled.
type RenderingIntent pdf.Name

// The rendering intents defined in the PDF specification.
const (
	RenderingIntentAbsoluteColorimetric RenderingIntent = "AbsoluteColorimetric"
	RenderingIntentRelativeColorimetric RenderingIntent = "RelativeColorimetric"
	RenderingIntentSaturation           RenderingIntent = "Saturation"
	RenderingIntentPerceptual           RenderingIntent = "Perceptual"
)

// TextRenderingMode describes how text is rendered.
type TextRenderingMode uint8

// The text rendering modes.
const (
	TextRenderingModeFill TextRenderingMode = iota
	TextRenderingModeStroke
	TextRenderingModeFillStroke
	TextRenderingModeInvisible
	TextRenderingModeFillClip
	TextRenderingModeStrokeClip
	TextRenderingModeFillStrokeClip
	TextRenderingModeClip
)

// MarkedContent describes a marked-content point or sequence in a
// content stream.
type MarkedContent struct {
	// Tag is the marked-content tag.
	Tag pdf.Name

	// Properties is the property list, or nil if no properties are
	// given.
	Properties *PropertyList

	// Inline indicates that the property list was given inline in the
	// content stream, rather than as a named resource.
	Inline bool
}

// PropertyList gives access to the entries of a marked-content
// property list.
type PropertyList struct {
	R    pdf.Getter
	Dict pdf.Dict
}

// Get returns the value of the given property, resolving indirect
// references.
func (p *PropertyList) Get(key pdf.Name) (pdf.Object, error) {
	return pdf.Resolve(p.R, p.Dict[key])
}

// ApplyTo sets the parameters recorded in the state on a writer, using
// content stream operators.  Parameters which cannot be set using
// operators cause an error.
func (s State) ApplyTo(w *Writer) {
	if w.Err != nil {
		return
	}

	if bad := s.Set & AllStateBits &^ OpStateBits; bad != 0 {
		w.Err = fmt.Errorf("parameters can only be set using an ExtGState resource: %s",
			strings.Join(bad.Names(), ", "))
		return
	}

	if s.Set&StateLineWidth != 0 {
		w.SetLineWidth(s.LineWidth)
	}
	if s.Set&StateLineCap != 0 {
		w.SetLineCap(s.LineCap)
	}
	if s.Set&StateLineJoin != 0 {
		w.SetLineJoin(s.LineJoin)
	}
	if s.Set&StateMiterLimit != 0 {
		w.SetMiterLimit(s.MiterLimit)
	}
	if s.Set&StateLineDash != 0 {
		w.SetDashPattern(s.DashPattern, s.DashPhase)
	}
	if s.Set&StateRenderingIntent != 0 {
		w.SetRenderingIntent(s.RenderingIntent)
	}
	if s.Set&StateFlatnessTolerance != 0 {
		w.SetFlatnessTolerance(s.FlatnessTolerance)
	}
	if s.Set&StateStrokeColor != 0 {
		w.SetStrokeColor(s.StrokeColor)
	}
	if s.Set&StateFillColor != 0 {
		w.SetFillColor(s.FillColor)
	}
	if s.Set&StateTextFont != 0 {
		w.TextSetFont(s.TextFont, s.TextFontSize)
	}
	if s.Set&StateTextCharacterSpacing != 0 {
		w.TextSetCharacterSpacing(s.TextCharacterSpacing)
	}
	if s.Set&StateTextWordSpacing != 0 {
		w.TextSetWordSpacing(s.TextWordSpacing)
	}
	if s.Set&StateTextHorizontalScaling != 0 {
		w.TextSetHorizontalScaling(s.TextHorizonalScaling * 100)
	}
	if s.Set&StateTextLeading != 0 {
		w.TextSetLeading(s.TextLeading)
	}
	if s.Set&StateTextRenderingMode != 0 {
		w.TextSetRenderingMode(s.TextRenderingMode)
	}
	if s.Set&StateTextRise != 0 {
		w.TextSetRise(s.TextRise)
	}
}

func nearlyEqual(a, b float64) bool {
	const eps = 1e-6
	return math.Abs(a-b) < eps
}

func sliceNearlyEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, x := range a {
		if !nearlyEqual(x, b[i]) {
			return false
		}
	}
	return true
}
