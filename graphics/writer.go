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
	"fmt"
	"io"
	"strconv"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/graphics/color"
	"github.com/archivekit/pdfcore/graphics/matrix"
)

// Writer writes a PDF content stream and tracks the graphics state.
type Writer struct {
	State

	// Version is the PDF version of the file the content stream is
	// part of.
	Version pdf.Version

	// Resources collects the resources used by the content stream.
	Resources *pdf.Resources

	// Err is the first error encountered while writing the content
	// stream.  Once an error has occurred, all writer methods become
	// no-ops.
	Err error

	Content io.Writer

	stack   []State
	nesting []pairType

	resNames map[resCategory]map[pdf.Object]pdf.Name
}

type pairType byte

const (
	pairPage pairType = iota + 1
	pairText
	pairMarkedContent
)

type resCategory byte

const (
	catExtGState resCategory = iota
	catColorSpace
	catPattern
	catShading
	catXObject
	catFont
	catProperties
)

// NewWriter creates a new Writer.
func NewWriter(w io.Writer, v pdf.Version) *Writer {
	return &Writer{
		State:     NewState(),
		Version:   v,
		Resources: &pdf.Resources{},
		Content:   w,
		resNames:  map[resCategory]map[pdf.Object]pdf.Name{},
	}
}

// isSet reports whether all of the given parameters are set in the
// graphics state.
func (w *Writer) isSet(bits StateBits) bool {
	return w.Set&bits == bits
}

// coord formats a number for use in the content stream.  The exact
// decimal representation is used, so that reading the content stream
// back reproduces the graphics state bit for bit.
func (w *Writer) coord(x float64) string {
	return pdf.AsString(pdf.Number(x))
}

func (w *Writer) writeOps(args ...interface{}) {
	if w.Err != nil {
		return
	}
	for i, arg := range args {
		if i > 0 {
			_, w.Err = io.WriteString(w.Content, " ")
			if w.Err != nil {
				return
			}
		}
		switch x := arg.(type) {
		case string:
			_, w.Err = io.WriteString(w.Content, x)
		case float64:
			_, w.Err = io.WriteString(w.Content, w.coord(x))
		case int:
			_, w.Err = io.WriteString(w.Content, strconv.Itoa(x))
		case pdf.Object:
			w.Err = pdf.Format(w.Content, pdf.OptContentStream, x)
		default:
			w.Err = fmt.Errorf("unexpected argument type %T", arg)
		}
		if w.Err != nil {
			return
		}
	}
	_, w.Err = io.WriteString(w.Content, "\n")
}

// getResourceName returns the name under which a resource is known in
// the resource dictionary, adding the resource to the dictionary if
// needed.
func (w *Writer) getResourceName(category resCategory, r Resource) pdf.Name {
	data := r.PDFObject()

	names := w.resNames[category]
	if names == nil {
		names = map[pdf.Object]pdf.Name{}
		w.resNames[category] = names
	}
	if name, ok := names[data]; ok {
		return name
	}

	var dict map[pdf.Name]pdf.Object
	var tmpl string
	switch category {
	case catExtGState:
		if w.Resources.ExtGState == nil {
			w.Resources.ExtGState = map[pdf.Name]pdf.Object{}
		}
		dict = w.Resources.ExtGState
		tmpl = "E%d"
	case catColorSpace:
		if w.Resources.ColorSpace == nil {
			w.Resources.ColorSpace = map[pdf.Name]pdf.Object{}
		}
		dict = w.Resources.ColorSpace
		tmpl = "C%d"
	case catPattern:
		if w.Resources.Pattern == nil {
			w.Resources.Pattern = map[pdf.Name]pdf.Object{}
		}
		dict = w.Resources.Pattern
		tmpl = "P%d"
	case catShading:
		if w.Resources.Shading == nil {
			w.Resources.Shading = map[pdf.Name]pdf.Object{}
		}
		dict = w.Resources.Shading
		tmpl = "S%d"
	case catXObject:
		if w.Resources.XObject == nil {
			w.Resources.XObject = map[pdf.Name]pdf.Object{}
		}
		dict = w.Resources.XObject
		tmpl = "X%d"
	case catFont:
		if w.Resources.Font == nil {
			w.Resources.Font = map[pdf.Name]pdf.Object{}
		}
		dict = w.Resources.Font
		tmpl = "F%d"
	case catProperties:
		if w.Resources.Properties == nil {
			w.Resources.Properties = map[pdf.Name]pdf.Object{}
		}
		dict = w.Resources.Properties
		tmpl = "M%d"
	}

	name := r.DefaultName()
	if name != "" {
		if _, taken := dict[name]; taken {
			name = ""
		}
	}
	for i := len(dict); name == ""; i++ {
		candidate := pdf.Name(fmt.Sprintf(tmpl, i))
		if _, taken := dict[candidate]; !taken {
			name = candidate
		}
	}

	// Resources with no associated object are referenced by name only
	// and do not appear in the resource dictionary.
	if data != nil && data != pdf.Object(pdf.Reference(0)) {
		dict[name] = data
	}
	names[data] = name
	return name
}

// PushGraphicsState saves the current graphics state.  This emits a
// "q" operator.
func (w *Writer) PushGraphicsState() {
	if w.Err != nil {
		return
	}
	w.nesting = append(w.nesting, pairPage)
	w.stack = append(w.stack, w.State.Clone())
	w.writeOps("q")
}

// PopGraphicsState restores the previously saved graphics state.  This
// emits a "Q" operator.
func (w *Writer) PopGraphicsState() {
	if w.Err != nil {
		return
	}
	if len(w.nesting) == 0 || w.nesting[len(w.nesting)-1] != pairPage {
		w.Err = errors.New("PopGraphicsState: no matching PushGraphicsState")
		return
	}
	w.nesting = w.nesting[:len(w.nesting)-1]
	w.State = w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	w.writeOps("Q")
}

// Transform applies a transformation matrix to the coordinate system.
// This emits a "cm" operator.
func (w *Writer) Transform(m matrix.Matrix) {
	if w.Err != nil {
		return
	}
	w.CTM = m.Mul(w.CTM)
	w.writeOps(m[0], m[1], m[2], m[3], m[4], m[5], "cm")
}

// SetLineWidth sets the line width.
func (w *Writer) SetLineWidth(width float64) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateLineWidth) && width == w.LineWidth {
		return
	}
	w.LineWidth = width
	w.Set |= StateLineWidth
	w.writeOps(width, "w")
}

// SetLineCap sets the line cap style.
func (w *Writer) SetLineCap(cap LineCapStyle) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateLineCap) && cap == w.LineCap {
		return
	}
	w.LineCap = cap
	w.Set |= StateLineCap
	w.writeOps(int(cap), "J")
}

// SetLineJoin sets the line join style.
func (w *Writer) SetLineJoin(join LineJoinStyle) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateLineJoin) && join == w.LineJoin {
		return
	}
	w.LineJoin = join
	w.Set |= StateLineJoin
	w.writeOps(int(join), "j")
}

// SetMiterLimit sets the miter limit.
func (w *Writer) SetMiterLimit(limit float64) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateMiterLimit) && limit == w.MiterLimit {
		return
	}
	w.MiterLimit = limit
	w.Set |= StateMiterLimit
	w.writeOps(limit, "M")
}

// SetDashPattern sets the line dash pattern.
func (w *Writer) SetDashPattern(pattern []float64, phase float64) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateLineDash) &&
		sliceEqual(pattern, w.DashPattern) && phase == w.DashPhase {
		return
	}
	w.DashPattern = append([]float64(nil), pattern...)
	w.DashPhase = phase
	w.Set |= StateLineDash

	arr := make(pdf.Array, len(pattern))
	for i, x := range pattern {
		arr[i] = pdf.Number(x)
	}
	w.writeOps(arr, phase, "d")
}

// SetRenderingIntent sets the rendering intent.
func (w *Writer) SetRenderingIntent(intent RenderingIntent) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateRenderingIntent) && intent == w.RenderingIntent {
		return
	}
	w.RenderingIntent = intent
	w.Set |= StateRenderingIntent
	w.writeOps(pdf.Name(intent), "ri")
}

// SetFlatnessTolerance sets the flatness tolerance.
func (w *Writer) SetFlatnessTolerance(flatness float64) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateFlatnessTolerance) && flatness == w.FlatnessTolerance {
		return
	}
	w.FlatnessTolerance = flatness
	w.Set |= StateFlatnessTolerance
	w.writeOps(flatness, "i")
}

// SetStrokeColor sets the color for stroking operations.
func (w *Writer) SetStrokeColor(c color.Color) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateStrokeColor) && colorsEqual(c, w.StrokeColor) {
		return
	}
	w.StrokeColor = c
	w.Set |= StateStrokeColor
	w.writeColor(c, true)
}

// SetFillColor sets the color for non-stroking operations.
func (w *Writer) SetFillColor(c color.Color) {
	if w.Err != nil {
		return
	}
	if w.isSet(StateFillColor) && colorsEqual(c, w.FillColor) {
		return
	}
	w.FillColor = c
	w.Set |= StateFillColor
	w.writeColor(c, false)
}

func (w *Writer) writeColor(c color.Color, stroke bool) {
	switch col := c.(type) {
	case color.DeviceGray:
		if stroke {
			w.writeOps(float64(col), "G")
		} else {
			w.writeOps(float64(col), "g")
		}
	case color.DeviceRGB:
		if stroke {
			w.writeOps(col[0], col[1], col[2], "RG")
		} else {
			w.writeOps(col[0], col[1], col[2], "rg")
		}
	case color.DeviceCMYK:
		if stroke {
			w.writeOps(col[0], col[1], col[2], col[3], "K")
		} else {
			w.writeOps(col[0], col[1], col[2], col[3], "k")
		}
	default:
		w.Err = fmt.Errorf("unsupported color type %T", c)
	}
}

// SetExtGState applies a graphics state parameter dictionary.  This
// emits a "gs" operator.
func (w *Writer) SetExtGState(ext *ExtGState) {
	if w.Err != nil {
		return
	}
	ext.ApplyTo(&w.State)
	name := w.getResourceName(catExtGState, ext)
	w.writeOps(name, "gs")
}

func sliceEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, x := range a {
		if x != b[i] {
			return false
		}
	}
	return true
}

func colorsEqual(a, b color.Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch x := a.(type) {
	case color.DeviceGray:
		y, ok := b.(color.DeviceGray)
		return ok && x == y
	case color.DeviceRGB:
		y, ok := b.(color.DeviceRGB)
		return ok && x == y
	case color.DeviceCMYK:
		y, ok := b.(color.DeviceCMYK)
		return ok && x == y
	default:
		return false
	}
}

// ExtGState represents a graphics state parameter dictionary.
type ExtGState struct {
	Res

	// Value holds the graphics state parameters described by the
	// dictionary.  The Set field of Value records which parameters are
	// present.
	Value State
}

// ApplyTo updates a graphics state with the parameters from the
// dictionary.
func (e *ExtGState) ApplyTo(s *State) {
	set := e.Value.Set
	s.Set |= set

	if set&StateTextFont != 0 {
		s.TextFont = e.Value.TextFont
		s.TextFontSize = e.Value.TextFontSize
	}
	if set&StateTextKnockout != 0 {
		s.TextKnockout = e.Value.TextKnockout
	}
	if set&StateLineWidth != 0 {
		s.LineWidth = e.Value.LineWidth
	}
	if set&StateLineCap != 0 {
		s.LineCap = e.Value.LineCap
	}
	if set&StateLineJoin != 0 {
		s.LineJoin = e.Value.LineJoin
	}
	if set&StateMiterLimit != 0 {
		s.MiterLimit = e.Value.MiterLimit
	}
	if set&StateLineDash != 0 {
		s.DashPattern = append([]float64(nil), e.Value.DashPattern...)
		s.DashPhase = e.Value.DashPhase
	}
	if set&StateRenderingIntent != 0 {
		s.RenderingIntent = e.Value.RenderingIntent
	}
	if set&StateStrokeAdjustment != 0 {
		s.StrokeAdjustment = e.Value.StrokeAdjustment
	}
	if set&StateBlendMode != 0 {
		s.BlendMode = e.Value.BlendMode
	}
	if set&StateSoftMask != 0 {
		s.SoftMask = e.Value.SoftMask
	}
	if set&StateStrokeAlpha != 0 {
		s.StrokeAlpha = e.Value.StrokeAlpha
	}
	if set&StateFillAlpha != 0 {
		s.FillAlpha = e.Value.FillAlpha
	}
	if set&StateAlphaSourceFlag != 0 {
		s.AlphaSourceFlag = e.Value.AlphaSourceFlag
	}
	if set&StateBlackPointCompensation != 0 {
		s.BlackPointCompensation = e.Value.BlackPointCompensation
	}
	if set&StateOverprint != 0 {
		s.OverprintStroke = e.Value.OverprintStroke
		s.OverprintFill = e.Value.OverprintFill
	}
	if set&StateOverprintMode != 0 {
		s.OverprintMode = e.Value.OverprintMode
	}
	if set&StateBlackGeneration != 0 {
		s.BlackGeneration = e.Value.BlackGeneration
	}
	if set&StateUnderColorRemoval != 0 {
		s.UnderColorRemoval = e.Value.UnderColorRemoval
	}
	if set&StateTransferFunction != 0 {
		s.TransferFunction = e.Value.TransferFunction
	}
	if set&StateHalftone != 0 {
		s.Halftone = e.Value.Halftone
	}
	if set&StateHalftoneOrigin != 0 {
		s.HalftoneOriginX = e.Value.HalftoneOriginX
		s.HalftoneOriginY = e.Value.HalftoneOriginY
	}
	if set&StateFlatnessTolerance != 0 {
		s.FlatnessTolerance = e.Value.FlatnessTolerance
	}
	if set&StateSmoothnessTolerance != 0 {
		s.SmoothnessTolerance = e.Value.SmoothnessTolerance
	}
}
