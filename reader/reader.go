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

// Package reader interprets the content streams of PDF pages.
//
// The reader maintains the graphics state while it walks a content
// stream, recurses into form XObjects and Type 3 glyph procedures, and
// reports the objects it finds via callback functions and via an
// optional output device.
package reader

import (
	"errors"
	"fmt"
	"io"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/font"
	"github.com/archivekit/pdfcore/graphics"
	"github.com/archivekit/pdfcore/graphics/operator"
	"github.com/archivekit/pdfcore/reader/scanner"
)

// MarkedContentEvent describes the kind of a marked-content callback.
type MarkedContentEvent int

// The marked-content events.
const (
	// MarkedContentPoint is a single marked-content point (operators
	// "MP" and "DP").
	MarkedContentPoint MarkedContentEvent = iota

	// MarkedContentBegin is the start of a marked-content sequence
	// (operators "BMC" and "BDC").
	MarkedContentBegin

	// MarkedContentEnd is the end of a marked-content sequence
	// (operator "EMC").
	MarkedContentEnd
)

// maxMarkedContentDepth bounds the nesting of marked-content
// sequences.
const maxMarkedContentDepth = 64

// maxRecursionDepth bounds the nesting of form XObjects and Type 3
// glyph procedures.
const maxRecursionDepth = 100

// errorLimit is the number of recoverable errors after which
// processing of a content stream is abandoned.
const errorLimit = 500

// Glyph describes a single glyph shown on the page, in device
// coordinates.
type Glyph struct {
	// X, Y is the glyph origin.
	X, Y float64

	// XMin, YMin, XMax, YMax is an approximate bounding box.
	XMin, YMin, XMax, YMax float64

	// Advance is the horizontal advance in device units.
	Advance float64

	// Text is the text content of the glyph, or "".
	Text string

	// Size is the font size, scaled to device units.
	Size float64

	// Rotation is the quadrant of the glyph rotation: 0-3 for 0, 90,
	// 180 and 270 degrees.
	Rotation int

	// Invisible indicates text in rendering mode 3.
	Invisible bool

	// StreamPos is the operator count at the time the glyph was shown,
	// and NBytes the length of its character code in the PDF string.
	StreamPos int
	NBytes    int

	// FontRef is the font dictionary the glyph was shown with.
	FontRef pdf.Reference
}

// Reader parses PDF content streams.
type Reader struct {
	graphics.Reader

	// EveryOp, if set, is called for every operator before it is
	// interpreted.  Returning an error aborts processing.
	EveryOp func(op string, args []pdf.Object) error

	// MarkedContent, if set, is called for every marked-content point
	// and sequence.
	MarkedContent func(event MarkedContentEvent, mc *graphics.MarkedContent) error

	// MarkedContentStack holds the currently open marked-content
	// sequences.
	MarkedContentStack []*graphics.MarkedContent

	// TextEvent, if set, is called with the decoded text of every text
	// showing operator.
	TextEvent func(text string) error

	// DrawGlyph, if set, is called for every glyph shown on the page.
	DrawGlyph func(g Glyph) error

	// DrawImage, if set, is called for every image drawn on the page.
	// For inline images, obj is the image dictionary and data holds
	// the raw image data; for image XObjects, obj is the stream
	// reference.
	DrawImage func(obj pdf.Object, data []byte) error

	// Shading, if set, is called for the "sh" operator.
	Shading func(obj pdf.Object) error

	// AbortCheck, if set, is polled periodically.  Returning true
	// aborts processing at the next operator boundary.
	AbortCheck func() bool

	// Errors collects the recoverable errors found while parsing.
	Errors []error

	scanner *scanner.Scanner

	fonts    map[pdf.Name]*font.Font
	active   map[pdf.Reference]bool
	depth    int
	errCount int
	opCount  int
}

// ErrAborted is returned when processing is stopped by the AbortCheck
// callback.
var ErrAborted = errors.New("processing aborted")

// New creates a new content stream reader.  The second argument is
// reserved for a font loader and can be nil.
func New(r pdf.Getter, _ interface{}) *Reader {
	res := &Reader{
		Reader: graphics.Reader{
			R:     r,
			State: graphics.NewState(),
		},
		MarkedContentStack: []*graphics.MarkedContent{},
		scanner:            scanner.NewScanner(),
		fonts:              map[pdf.Name]*font.Font{},
		active:             map[pdf.Reference]bool{},
	}
	return res
}

// Reset prepares the reader for a new content stream.
func (r *Reader) Reset() {
	r.Reader.Reset()
	r.MarkedContentStack = r.MarkedContentStack[:0]
	r.Errors = r.Errors[:0]
	r.scanner.Reset()
	r.fonts = map[pdf.Name]*font.Font{}
	r.active = map[pdf.Reference]bool{}
	r.depth = 0
	r.errCount = 0
	r.opCount = 0
}

// report records a recoverable error.  The returned flag indicates
// whether processing should continue.
func (r *Reader) report(err error) bool {
	r.errCount++
	if len(r.Errors) < 32 {
		r.Errors = append(r.Errors, err)
	}
	return r.errCount <= errorLimit
}

// ParsePage parses the content streams of the given page dictionary.
func (r *Reader) ParsePage(pageDict pdf.Object) error {
	page, err := pdf.GetDictTyped(r.R, pageDict, "Page")
	if err != nil {
		return err
	}
	if page == nil {
		return &pdf.MalformedFileError{Err: errors.New("missing page dictionary")}
	}

	resources, err := pdf.ExtractResources(r.R, page["Resources"])
	if err != nil {
		return err
	}
	r.Resources = resources

	return r.parseContents(page["Contents"])
}

// parseContents interprets a /Contents entry, which can either be a
// single stream or an array of streams which are concatenated.  A loop
// in the array of content streams is reported once, and nothing is
// rendered from the loop.
func (r *Reader) parseContents(obj pdf.Object) error {
	contents, err := pdf.Resolve(r.R, obj)
	if err != nil {
		return err
	}

	var parts []pdf.Object
	switch x := contents.(type) {
	case pdf.Array:
		parts = x
	case *pdf.Stream:
		parts = []pdf.Object{obj}
	case nil:
		return nil
	default:
		return &pdf.MalformedFileError{
			Err: fmt.Errorf("invalid /Contents entry %T", contents),
		}
	}

	seen := map[pdf.Reference]bool{}
	var readers []io.Reader
	for _, part := range parts {
		if ref, isRef := part.(pdf.Reference); isRef {
			if seen[ref] {
				r.report(errors.New("loop in content streams"))
				return nil
			}
			seen[ref] = true
		}
		stm, err := pdf.GetStream(r.R, part)
		if err != nil {
			if !r.report(err) {
				return nil
			}
			continue
		}
		if stm == nil {
			continue
		}
		decoded, err := pdf.DecodeStream(r.R, stm, 0)
		if err != nil {
			if !r.report(err) {
				return nil
			}
			continue
		}
		readers = append(readers, decoded, bytes1(' '))
	}

	return r.ParseContentStream(io.MultiReader(readers...))
}

func bytes1(c byte) io.Reader {
	return &oneByteReader{c: c}
}

type oneByteReader struct {
	c    byte
	done bool
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.done || len(p) == 0 {
		return 0, io.EOF
	}
	p[0] = r.c
	r.done = true
	return 1, nil
}

// ParseContentStream interprets a single content stream.
func (r *Reader) ParseContentStream(stm io.Reader) error {
	s := scanner.NewScanner()
	s.SetInput(stm)
	for s.Scan() {
		op := s.Operator()

		r.opCount++
		if r.opCount%10 == 0 && r.AbortCheck != nil && r.AbortCheck() {
			return ErrAborted
		}

		if r.EveryOp != nil {
			err := r.EveryOp(op.Name, op.Args)
			if err != nil {
				return err
			}
		}

		err := r.do(op.Name, op.Args, s)
		if err != nil {
			return err
		}
		if r.errCount > errorLimit {
			break
		}
	}
	return s.Error()
}

// do interprets a single operator.  Operators which only affect the
// graphics state are delegated to the graphics package.
func (r *Reader) do(op string, args []pdf.Object, s *scanner.Scanner) error {
	switch op {
	case "MP", "DP":
		mc, err := r.extractMarkedContent(args)
		if err != nil || mc == nil {
			return err
		}
		if r.MarkedContent != nil {
			return r.MarkedContent(MarkedContentPoint, mc)
		}

	case "BMC", "BDC":
		mc, err := r.extractMarkedContent(args)
		if err != nil || mc == nil {
			return err
		}
		if len(r.MarkedContentStack) >= maxMarkedContentDepth {
			return nil
		}
		r.MarkedContentStack = append(r.MarkedContentStack, mc)
		if r.MarkedContent != nil {
			return r.MarkedContent(MarkedContentBegin, mc)
		}

	case "EMC":
		if len(r.MarkedContentStack) == 0 {
			// unmatched EMC operators are ignored
			return nil
		}
		mc := r.MarkedContentStack[len(r.MarkedContentStack)-1]
		r.MarkedContentStack = r.MarkedContentStack[:len(r.MarkedContentStack)-1]
		if r.MarkedContent != nil {
			return r.MarkedContent(MarkedContentEnd, mc)
		}

	case "Tf":
		// Load the font before the graphics package updates the state,
		// so that text decoding is available later.
		if len(args) >= 2 {
			if name, ok := args[0].(pdf.Name); ok {
				F, err := r.loadFont(name)
				if err == nil && F != nil {
					if size, ok := getNumber(args[1]); ok {
						r.TextFont = F
						r.TextFontSize = size
						r.Set |= graphics.StateTextFont
						return nil
					}
				} else if err != nil && !r.report(err) {
					return nil
				}
			}
		}
		return r.UpdateState(op, args)

	case "Tj":
		if len(args) >= 1 {
			if str, ok := args[0].(pdf.String); ok {
				return r.showText(str)
			}
		}

	case "'":
		if len(args) >= 1 {
			if str, ok := args[0].(pdf.String); ok {
				r.UpdateState("T*", nil)
				return r.showText(str)
			}
		}

	case "\"":
		if len(args) >= 3 {
			aw, ok1 := getNumber(args[0])
			ac, ok2 := getNumber(args[1])
			str, ok3 := args[2].(pdf.String)
			if ok1 && ok2 && ok3 {
				r.TextWordSpacing = aw
				r.TextCharacterSpacing = ac
				r.UpdateState("T*", nil)
				return r.showText(str)
			}
		}

	case "TJ":
		if len(args) >= 1 {
			if arr, ok := args[0].(pdf.Array); ok {
				for _, elem := range arr {
					if str, isString := elem.(pdf.String); isString {
						err := r.showText(str)
						if err != nil {
							return err
						}
					} else if d, ok := getNumber(elem); ok {
						r.advanceText(-d / 1000 * r.TextFontSize)
					}
				}
			}
		}

	case "Do":
		if len(args) >= 1 {
			if name, ok := args[0].(pdf.Name); ok {
				err := r.doXObject(name)
				if err != nil && !r.report(err) {
					return nil
				}
			}
		}

	case "sh":
		if len(args) >= 1 {
			if name, ok := args[0].(pdf.Name); ok && r.Shading != nil && r.Resources != nil {
				if obj := r.Resources.Shading[name]; obj != nil {
					return r.Shading(obj)
				}
			}
		}

	case "BI":
		// The image dictionary entries follow as operands of the "ID"
		// operator.

	case "ID":
		// Inline images carry their data in the content stream.  The
		// data must be consumed even if the image is not drawn, so
		// that the scanner stays in sync.
		dict := pdf.Dict{}
		for i := 0; i+1 < len(args); i += 2 {
			if key, ok := args[i].(pdf.Name); ok {
				dict[key] = args[i+1]
			}
		}
		data, err := s.ReadInlineImageData()
		if err != nil {
			r.report(err)
			return nil
		}
		if r.DrawImage != nil {
			return r.DrawImage(dict, data)
		}

	case "BX", "EX":
		// compatibility sections are ignored

	default:
		// Unknown operators and operators with malformed operands are
		// skipped, so that one bad operator does not spoil the page.
		desc, known := operator.Find(op)
		if !known {
			r.report(fmt.Errorf("unknown operator %q", op))
			return nil
		}
		checked, err := desc.Check(args)
		if err != nil {
			r.report(fmt.Errorf("operator %q: %w", op, err))
			return nil
		}
		return r.UpdateState(op, checked)
	}
	return nil
}

// extractMarkedContent builds a MarkedContent record from the
// arguments of the MP, DP, BMC, and BDC operators.
func (r *Reader) extractMarkedContent(args []pdf.Object) (*graphics.MarkedContent, error) {
	if len(args) == 0 {
		return nil, nil
	}
	tag, ok := args[0].(pdf.Name)
	if !ok {
		return nil, nil
	}

	mc := &graphics.MarkedContent{Tag: tag}
	if len(args) >= 2 {
		switch x := args[1].(type) {
		case pdf.Dict:
			mc.Properties = &graphics.PropertyList{R: r.R, Dict: x}
			mc.Inline = true
		case pdf.Name:
			if r.Resources != nil {
				dict, err := pdf.GetDict(r.R, r.Resources.Properties[x])
				if err != nil {
					r.report(err)
					return nil, nil
				}
				mc.Properties = &graphics.PropertyList{R: r.R, Dict: dict}
			}
		}
	}
	return mc, nil
}

// loadFont reads the font with the given resource name.
func (r *Reader) loadFont(name pdf.Name) (*font.Font, error) {
	if F, ok := r.fonts[name]; ok {
		return F, nil
	}
	if r.Resources == nil || r.R == nil {
		return nil, nil
	}
	obj := r.Resources.Font[name]
	if obj == nil {
		return nil, nil
	}
	F, err := font.Extract(r.R, obj, name)
	if err != nil {
		return nil, err
	}
	r.fonts[name] = F
	return F, nil
}

// ReadFont reads a font from the given object.
func (r *Reader) ReadFont(obj pdf.Object, name pdf.Name) (*font.Font, error) {
	return font.Extract(r.R, obj, name)
}

// doXObject processes the "Do" operator.
func (r *Reader) doXObject(name pdf.Name) error {
	if r.Resources == nil || r.R == nil {
		return nil
	}
	obj := r.Resources.XObject[name]
	if obj == nil {
		return nil
	}
	stm, err := pdf.GetStream(r.R, obj)
	if err != nil || stm == nil {
		return err
	}

	subtype, err := pdf.GetName(r.R, stm.Dict["Subtype"])
	if err != nil {
		return err
	}
	switch subtype {
	case "Image":
		if r.DrawImage != nil {
			return r.DrawImage(obj, nil)
		}
		return nil
	case "Form":
		return r.doForm(obj, stm)
	default:
		return nil
	}
}

// doForm recursively interprets a form XObject.  The recursion depth
// is bounded, and forms which invoke themselves are skipped.
func (r *Reader) doForm(obj pdf.Object, stm *pdf.Stream) error {
	if r.depth >= maxRecursionDepth {
		// excessively deep form nesting is silently skipped
		return nil
	}
	ref, isRef := obj.(pdf.Reference)
	if isRef {
		if r.active[ref] {
			r.report(errors.New("loop in form XObjects"))
			return nil
		}
		r.active[ref] = true
		defer delete(r.active, ref)
	}

	savedState := r.State.Clone()
	savedResources := r.Resources

	if m, err := pdf.GetMatrix(r.R, stm.Dict["Matrix"]); err == nil && stm.Dict["Matrix"] != nil {
		r.CTM = graphics.Matrix(m).Mul(r.CTM)
	}
	if resObj := stm.Dict["Resources"]; resObj != nil {
		res, err := pdf.ExtractResources(r.R, resObj)
		if err == nil {
			r.Resources = res
		}
	}

	decoded, err := pdf.DecodeStream(r.R, stm, 0)
	if err != nil {
		r.Resources = savedResources
		r.State = savedState
		r.report(err)
		return nil
	}

	r.depth++
	err = r.ParseContentStream(decoded)
	r.depth--

	r.Resources = savedResources
	r.State = savedState
	return err
}

// showText processes a text-showing operator.
func (r *Reader) showText(s pdf.String) error {
	F, _ := r.TextFont.(*font.Font)
	if F == nil || r.Set&graphics.StateTextMatrix == 0 {
		return nil
	}

	var text []byte
	var cbErr error
	F.Decode(s, func(c font.Char) bool {
		text = append(text, c.Text...)

		if r.DrawGlyph != nil {
			cbErr = r.emitGlyph(F, c)
			if cbErr != nil {
				return false
			}
		}

		// advance the text matrix
		w := c.Width/1000*r.TextFontSize + r.TextCharacterSpacing
		if c.IsSpace {
			w += r.TextWordSpacing
		}
		r.advanceText(w)
		return true
	})
	if cbErr != nil {
		return cbErr
	}

	if r.TextEvent != nil && len(text) > 0 {
		return r.TextEvent(string(text))
	}
	return nil
}

// advanceText moves the text matrix by the given distance along the
// writing direction.
func (r *Reader) advanceText(w float64) {
	r.TextMatrix = graphics.Translate(w*r.TextHorizonalScaling, 0).Mul(r.TextMatrix)
}

// emitGlyph computes the device-space geometry of a glyph and calls
// the DrawGlyph callback.
func (r *Reader) emitGlyph(F *font.Font, c font.Char) error {
	trm := r.TextMatrix.Mul(r.CTM)

	x, y := trm.Apply(0, r.TextRise)
	w := c.Width / 1000 * r.TextFontSize * r.TextHorizonalScaling
	dx, dy := trm.ApplyVec(w, 0)

	// an approximate bounding box based on the font size
	ascent := 0.8 * r.TextFontSize
	descent := -0.2 * r.TextFontSize
	x0, y0 := trm.Apply(0, descent+r.TextRise)
	x1, y1 := trm.Apply(w/max(r.TextHorizonalScaling, 1e-6), ascent+r.TextRise)
	_ = x1

	nBytes := 1
	if F.Composite {
		nBytes = 2
	}
	fontRef, _ := F.PDFObject().(pdf.Reference)
	g := Glyph{
		X:         x,
		Y:         y,
		FontRef:   fontRef,
		Advance:   dist(dx, dy),
		Text:      c.Text,
		Size:      r.TextFontSize * matrixScale(trm),
		Rotation:  quadrant(trm),
		Invisible: r.TextRenderingMode == graphics.TextRenderingModeInvisible,
		StreamPos: r.opCount,
		NBytes:    nBytes,
	}
	g.XMin = min(x0, x+dx)
	g.XMax = max(x0, x+dx)
	g.YMin = min(y0, y1)
	g.YMax = max(y0, y1)
	return r.DrawGlyph(g)
}

func dist(dx, dy float64) float64 {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// matrixScale estimates the scaling factor of a matrix.
func matrixScale(m graphics.Matrix) float64 {
	sx := m[0]
	if sx < 0 {
		sx = -sx
	}
	sy := m[3]
	if sy < 0 {
		sy = -sy
	}
	if sx > sy {
		return sx
	}
	if sy > 0 {
		return sy
	}
	b := m[1]
	if b < 0 {
		b = -b
	}
	return b
}

// quadrant determines the rotation quadrant of the text direction.
func quadrant(m graphics.Matrix) int {
	switch {
	case m[0] > 0 && m[0] >= abs(m[1]):
		return 0
	case m[1] > 0 && m[1] > abs(m[0]):
		return 1
	case m[0] < 0 && -m[0] >= abs(m[1]):
		return 2
	default:
		return 3
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

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
