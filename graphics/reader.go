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
	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/graphics/color"
	"github.com/archivekit/pdfcore/graphics/matrix"
)

// Reader reconstructs the graphics state from the operators of a
// content stream.  Malformed operators are ignored, so that as much of
// a damaged content stream as possible is processed.
type Reader struct {
	State

	// R is used to resolve indirect references in resources.  It can
	// be nil, in which case resources requiring object lookup are
	// ignored.
	R pdf.Getter

	// Resources is the resource dictionary of the content stream.
	Resources *pdf.Resources

	stack []State
}

// Reset returns the reader to its initial state.
func (r *Reader) Reset() {
	r.State = NewState()
	r.stack = r.stack[:0]
}

// UpdateState updates the graphics state according to a content stream
// operator.  Operators which do not affect the graphics state, and
// operators with malformed arguments, are ignored.
func (r *Reader) UpdateState(op string, args []pdf.Object) error {
	return r.do(op, args)
}

func (r *Reader) do(op string, args []pdf.Object) error {
	getNum := func(i int) (float64, bool) {
		if i >= len(args) {
			return 0, false
		}
		return getNumber(args[i])
	}
	getAllNums := func(n int) ([]float64, bool) {
		if len(args) < n {
			return nil, false
		}
		res := make([]float64, n)
		for i := range res {
			x, ok := getNum(i)
			if !ok {
				return nil, false
			}
			res[i] = x
		}
		return res, true
	}
	getInt := func(i int) (pdf.Integer, bool) {
		if i >= len(args) {
			return 0, false
		}
		x, ok := args[i].(pdf.Integer)
		return x, ok
	}
	getName := func(i int) (pdf.Name, bool) {
		if i >= len(args) {
			return "", false
		}
		x, ok := args[i].(pdf.Name)
		return x, ok
	}

	switch op {
	case "q":
		r.stack = append(r.stack, r.State.Clone())
	case "Q":
		if len(r.stack) > 0 {
			r.State = r.stack[len(r.stack)-1]
			r.stack = r.stack[:len(r.stack)-1]
		}
	case "cm":
		if m, ok := getAllNums(6); ok {
			r.CTM = matrix.Matrix{m[0], m[1], m[2], m[3], m[4], m[5]}.Mul(r.CTM)
		}

	case "w":
		if x, ok := getNum(0); ok {
			r.LineWidth = x
			r.Set |= StateLineWidth
		}
	case "J":
		if x, ok := getInt(0); ok && x >= 0 && x <= 2 {
			r.LineCap = LineCapStyle(x)
			r.Set |= StateLineCap
		}
	case "j":
		if x, ok := getInt(0); ok && x >= 0 && x <= 2 {
			r.LineJoin = LineJoinStyle(x)
			r.Set |= StateLineJoin
		}
	case "M":
		if x, ok := getNum(0); ok {
			r.MiterLimit = x
			r.Set |= StateMiterLimit
		}
	case "d":
		patObj, ok1 := args0Array(args)
		pattern, ok2 := convertDashPattern(patObj)
		phase, ok3 := getNum(1)
		if ok1 && ok2 && ok3 {
			r.DashPattern = pattern
			r.DashPhase = phase
			r.Set |= StateLineDash
		}
	case "ri":
		if name, ok := getName(0); ok {
			r.RenderingIntent = RenderingIntent(name)
			r.Set |= StateRenderingIntent
		}
	case "i":
		if x, ok := getNum(0); ok {
			r.FlatnessTolerance = x
			r.Set |= StateFlatnessTolerance
		}
	case "gs":
		if name, ok := getName(0); ok {
			ext, err := r.ReadExtGState(name)
			if err == nil && ext != nil {
				ext.ApplyTo(&r.State)
			}
		}

	case "BT":
		r.TextMatrix = matrix.Identity
		r.TextLineMatrix = matrix.Identity
		r.Set |= StateTextMatrix
	case "ET":
		r.Set &^= StateTextMatrix

	case "Tc":
		if x, ok := getNum(0); ok {
			r.TextCharacterSpacing = x
			r.Set |= StateTextCharacterSpacing
		}
	case "Tw":
		if x, ok := getNum(0); ok {
			r.TextWordSpacing = x
			r.Set |= StateTextWordSpacing
		}
	case "Tz":
		if x, ok := getNum(0); ok {
			r.TextHorizonalScaling = x / 100
			r.Set |= StateTextHorizontalScaling
		}
	case "TL":
		if x, ok := getNum(0); ok {
			r.TextLeading = x
			r.Set |= StateTextLeading
		}
	case "Tf":
		name, ok1 := getName(0)
		size, ok2 := getNum(1)
		if ok1 && ok2 {
			var data pdf.Object
			if r.Resources != nil {
				data = r.Resources.Font[name]
			}
			r.TextFont = &Res{DefName: name, Data: data}
			r.TextFontSize = size
			r.Set |= StateTextFont
		}
	case "Tr":
		if x, ok := getInt(0); ok && x >= 0 && x <= 7 {
			r.TextRenderingMode = TextRenderingMode(x)
			r.Set |= StateTextRenderingMode
		}
	case "Ts":
		if x, ok := getNum(0); ok {
			r.TextRise = x
			r.Set |= StateTextRise
		}

	case "Td":
		if m, ok := getAllNums(2); ok && r.Set&StateTextMatrix != 0 {
			r.TextLineMatrix = matrix.Translate(m[0], m[1]).Mul(r.TextLineMatrix)
			r.TextMatrix = r.TextLineMatrix
		}
	case "TD":
		if m, ok := getAllNums(2); ok && r.Set&StateTextMatrix != 0 {
			r.TextLeading = -m[1]
			r.Set |= StateTextLeading
			r.TextLineMatrix = matrix.Translate(m[0], m[1]).Mul(r.TextLineMatrix)
			r.TextMatrix = r.TextLineMatrix
		}
	case "Tm":
		if m, ok := getAllNums(6); ok && r.Set&StateTextMatrix != 0 {
			r.TextMatrix = matrix.Matrix{m[0], m[1], m[2], m[3], m[4], m[5]}
			r.TextLineMatrix = r.TextMatrix
		}
	case "T*":
		if r.Set&StateTextMatrix != 0 {
			r.TextLineMatrix = matrix.Translate(0, -r.TextLeading).Mul(r.TextLineMatrix)
			r.TextMatrix = r.TextLineMatrix
		}

	case "G":
		if x, ok := getNum(0); ok {
			r.StrokeColor = color.DeviceGray(x)
			r.Set |= StateStrokeColor
		}
	case "g":
		if x, ok := getNum(0); ok {
			r.FillColor = color.DeviceGray(x)
			r.Set |= StateFillColor
		}
	case "RG":
		if v, ok := getAllNums(3); ok {
			r.StrokeColor = color.DeviceRGB{v[0], v[1], v[2]}
			r.Set |= StateStrokeColor
		}
	case "rg":
		if v, ok := getAllNums(3); ok {
			r.FillColor = color.DeviceRGB{v[0], v[1], v[2]}
			r.Set |= StateFillColor
		}
	case "K":
		if v, ok := getAllNums(4); ok {
			r.StrokeColor = color.DeviceCMYK{v[0], v[1], v[2], v[3]}
			r.Set |= StateStrokeColor
		}
	case "k":
		if v, ok := getAllNums(4); ok {
			r.FillColor = color.DeviceCMYK{v[0], v[1], v[2], v[3]}
			r.Set |= StateFillColor
		}
	}
	return nil
}

// ReadExtGState reads a graphics state parameter dictionary from the
// resources of the content stream.
func (r *Reader) ReadExtGState(name pdf.Name) (*ExtGState, error) {
	if r.R == nil || r.Resources == nil {
		return nil, nil
	}
	obj := r.Resources.ExtGState[name]
	if obj == nil {
		return nil, nil
	}
	dict, err := pdf.GetDictTyped(r.R, obj, "ExtGState")
	if err != nil {
		return nil, err
	}

	res := &ExtGState{
		Res: Res{DefName: name, Data: obj},
	}
	val := &res.Value

	if x, err := pdf.GetNumber(r.R, dict["LW"]); err == nil && dict["LW"] != nil {
		val.LineWidth = float64(x)
		val.Set |= StateLineWidth
	}
	if x, err := pdf.GetInteger(r.R, dict["LC"]); err == nil && dict["LC"] != nil {
		val.LineCap = LineCapStyle(x)
		val.Set |= StateLineCap
	}
	if x, err := pdf.GetInteger(r.R, dict["LJ"]); err == nil && dict["LJ"] != nil {
		val.LineJoin = LineJoinStyle(x)
		val.Set |= StateLineJoin
	}
	if x, err := pdf.GetNumber(r.R, dict["ML"]); err == nil && dict["ML"] != nil {
		val.MiterLimit = float64(x)
		val.Set |= StateMiterLimit
	}
	if arr, err := pdf.GetArray(r.R, dict["D"]); err == nil && len(arr) == 2 {
		if patObj, err := pdf.GetArray(r.R, arr[0]); err == nil {
			if pattern, ok := convertDashPattern(patObj); ok {
				if phase, ok := getNumber(arr[1]); ok {
					val.DashPattern = pattern
					val.DashPhase = phase
					val.Set |= StateLineDash
				}
			}
		}
	}
	if x, err := pdf.GetName(r.R, dict["RI"]); err == nil && dict["RI"] != nil {
		val.RenderingIntent = RenderingIntent(x)
		val.Set |= StateRenderingIntent
	}
	if x, err := pdf.GetBoolean(r.R, dict["SA"]); err == nil && dict["SA"] != nil {
		val.StrokeAdjustment = bool(x)
		val.Set |= StateStrokeAdjustment
	}
	if dict["BM"] != nil {
		val.BlendMode = dict["BM"]
		val.Set |= StateBlendMode
	}
	if dict["SMask"] != nil {
		val.SoftMask = dict["SMask"]
		val.Set |= StateSoftMask
	}
	if x, err := pdf.GetNumber(r.R, dict["CA"]); err == nil && dict["CA"] != nil {
		val.StrokeAlpha = float64(x)
		val.Set |= StateStrokeAlpha
	}
	if x, err := pdf.GetNumber(r.R, dict["ca"]); err == nil && dict["ca"] != nil {
		val.FillAlpha = float64(x)
		val.Set |= StateFillAlpha
	}
	if x, err := pdf.GetBoolean(r.R, dict["AIS"]); err == nil && dict["AIS"] != nil {
		val.AlphaSourceFlag = bool(x)
		val.Set |= StateAlphaSourceFlag
	}
	if x, err := pdf.GetBoolean(r.R, dict["OP"]); err == nil && dict["OP"] != nil {
		val.OverprintStroke = bool(x)
		val.OverprintFill = bool(x)
		val.Set |= StateOverprint
	}
	if x, err := pdf.GetBoolean(r.R, dict["op"]); err == nil && dict["op"] != nil {
		val.OverprintFill = bool(x)
		val.Set |= StateOverprint
	}
	if x, err := pdf.GetInteger(r.R, dict["OPM"]); err == nil && dict["OPM"] != nil {
		val.OverprintMode = int(x)
		val.Set |= StateOverprintMode
	}
	if dict["BG2"] != nil {
		val.BlackGeneration = dict["BG2"]
		val.Set |= StateBlackGeneration
	} else if dict["BG"] != nil {
		val.BlackGeneration = dict["BG"]
		val.Set |= StateBlackGeneration
	}
	if dict["UCR2"] != nil {
		val.UnderColorRemoval = dict["UCR2"]
		val.Set |= StateUnderColorRemoval
	} else if dict["UCR"] != nil {
		val.UnderColorRemoval = dict["UCR"]
		val.Set |= StateUnderColorRemoval
	}
	if dict["TR2"] != nil {
		val.TransferFunction = dict["TR2"]
		val.Set |= StateTransferFunction
	} else if dict["TR"] != nil {
		val.TransferFunction = dict["TR"]
		val.Set |= StateTransferFunction
	}
	if dict["HT"] != nil {
		val.Halftone = dict["HT"]
		val.Set |= StateHalftone
	}
	if x, err := pdf.GetNumber(r.R, dict["FL"]); err == nil && dict["FL"] != nil {
		val.FlatnessTolerance = float64(x)
		val.Set |= StateFlatnessTolerance
	}
	if x, err := pdf.GetNumber(r.R, dict["SM"]); err == nil && dict["SM"] != nil {
		val.SmoothnessTolerance = float64(x)
		val.Set |= StateSmoothnessTolerance
	}
	if x, err := pdf.GetBoolean(r.R, dict["TK"]); err == nil && dict["TK"] != nil {
		val.TextKnockout = bool(x)
		val.Set |= StateTextKnockout
	}
	if arr, err := pdf.GetArray(r.R, dict["Font"]); err == nil && len(arr) == 2 {
		if size, ok := getNumber(arr[1]); ok {
			val.TextFont = &Res{Data: arr[0]}
			val.TextFontSize = size
			val.Set |= StateTextFont
		}
	}

	return res, nil
}

// getNumber converts a PDF object to a float64.
func getNumber(obj pdf.Object) (float64, bool) {
	switch x := obj.(type) {
	case pdf.Integer:
		return float64(x), true
	case pdf.Real:
		return float64(x), true
	case pdf.Number:
		return float64(x), true
	default:
		return 0, false
	}
}

func args0Array(args []pdf.Object) (pdf.Array, bool) {
	if len(args) == 0 {
		return nil, false
	}
	x, ok := args[0].(pdf.Array)
	return x, ok
}

// convertDashPattern converts a PDF array to a dash pattern.
func convertDashPattern(obj pdf.Array) ([]float64, bool) {
	if obj == nil {
		return nil, false
	}
	pattern := make([]float64, len(obj))
	for i, elem := range obj {
		x, ok := getNumber(elem)
		if !ok {
			return nil, false
		}
		pattern[i] = x
	}
	return pattern, true
}
