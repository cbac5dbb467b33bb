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

// Package shading paints the PDF shading types by recursive
// subdivision into small constant-color regions.
//
// Function-based shadings (type 1) are subdivided into quads.  Axial
// and radial shadings (types 2 and 3) bisect the shading axis on an
// integer lattice of 256 points until the color difference across a
// band is below the color resolution.  Gouraud triangle meshes (types
// 4 and 5) subdivide each triangle at the edge midpoints, and
// Coons/tensor patch meshes (types 6 and 7) split each patch four ways
// using de Casteljau's construction.  Each terminal region is passed
// to a sink function as a quadrilateral with a constant color;
// triangles repeat their last vertex, and terminal patches are
// approximated by their four corners.
package shading

import (
	"errors"
	"math"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/function"
	"github.com/archivekit/pdfcore/graphics/color"
	"github.com/archivekit/pdfcore/graphics/matrix"
)

const (
	// maxDepth bounds the recursive subdivision of function shadings,
	// triangle meshes, and patch meshes.
	maxDepth = 6

	// axialMaxSplits is the size of the integer lattice used when
	// bisecting the axis of axial and radial shadings.
	axialMaxSplits = 256

	// colorDelta is the color resolution in component units; colors
	// closer than this are considered equal.
	colorDelta = 1.0 / 256
)

// Sink receives the terminal regions of a shading.  The quadrilateral
// is given in device coordinates.
type Sink func(x, y [4]float64, col color.Color) error

// Shading describes a parametric fill.
type Shading struct {
	// Type is the shading type, 1 to 7.
	Type int

	// Space is the color space of the shading.
	Space color.Space

	// Function maps parameter values to color components.  For
	// function shadings the function takes two inputs; for axial and
	// radial shadings it takes one.  Mesh shadings may use a function
	// to map a single parametric value per vertex to a color.
	Function pdf.Function

	// Domain is the parameter domain.
	Domain []float64

	// Coords are the geometry parameters: [x0 y0 x1 y1] for axial
	// shadings, [x0 y0 r0 x1 y1 r1] for radial shadings.
	Coords []float64

	// Matrix maps shading space to the space the shading is painted
	// in (type 1 only).
	Matrix matrix.Matrix

	// Extend indicates whether the shading extends beyond the start
	// and end of the axis.
	Extend [2]bool

	// Background, if non-nil, is painted before the shading itself.
	Background color.Color

	// The mesh parameters of shading types 4 to 7.
	BitsPerCoordinate int
	BitsPerComponent  int
	BitsPerFlag       int
	VerticesPerRow    int
	Decode            []float64
	MeshData          []byte
}

// Extract reads a shading dictionary.
func Extract(x *pdf.Extractor, obj pdf.Object) (*Shading, error) {
	resolved, err := pdf.Resolve(x.R, obj)
	if err != nil {
		return nil, err
	}
	var dict pdf.Dict
	var stm *pdf.Stream
	switch v := resolved.(type) {
	case pdf.Dict:
		dict = v
	case *pdf.Stream:
		stm = v
		dict = v.Dict
	default:
		return nil, &pdf.MalformedFileError{
			Err: errors.New("invalid shading object"),
		}
	}

	tp, err := pdf.GetInteger(x.R, dict["ShadingType"])
	if err != nil {
		return nil, err
	}
	sh := &Shading{
		Type:   int(tp),
		Matrix: matrix.Identity,
	}

	if csObj := dict["ColorSpace"]; csObj != nil {
		sh.Space, err = color.ExtractSpace(x, csObj)
		if err != nil {
			return nil, err
		}
	}
	if dict["Function"] != nil {
		fn, err := extractFunction(x, dict["Function"])
		if err != nil {
			return nil, err
		}
		sh.Function = fn
	}
	sh.Domain, err = pdf.GetFloatArray(x.R, dict["Domain"])
	if err != nil {
		return nil, err
	}
	sh.Coords, err = pdf.GetFloatArray(x.R, dict["Coords"])
	if err != nil {
		return nil, err
	}
	if m, err := pdf.GetMatrix(x.R, dict["Matrix"]); err == nil && dict["Matrix"] != nil {
		sh.Matrix = matrix.Matrix(m)
	}
	if ext, err := pdf.GetArray(x.R, dict["Extend"]); err == nil && len(ext) == 2 {
		e0, _ := ext[0].(pdf.Boolean)
		e1, _ := ext[1].(pdf.Boolean)
		sh.Extend[0] = bool(e0)
		sh.Extend[1] = bool(e1)
	}

	if tp >= 4 && tp <= 7 {
		if stm == nil {
			return nil, &pdf.MalformedFileError{
				Err: errors.New("mesh shading must be a stream"),
			}
		}
		bpc, err := pdf.GetInteger(x.R, dict["BitsPerCoordinate"])
		if err != nil {
			return nil, err
		}
		sh.BitsPerCoordinate = int(bpc)
		bpcomp, err := pdf.GetInteger(x.R, dict["BitsPerComponent"])
		if err != nil {
			return nil, err
		}
		sh.BitsPerComponent = int(bpcomp)
		bpf, err := pdf.GetInteger(x.R, dict["BitsPerFlag"])
		if err != nil {
			return nil, err
		}
		sh.BitsPerFlag = int(bpf)
		vpr, err := pdf.GetInteger(x.R, dict["VerticesPerRow"])
		if err != nil {
			return nil, err
		}
		sh.VerticesPerRow = int(vpr)
		sh.Decode, err = pdf.GetFloatArray(x.R, dict["Decode"])
		if err != nil {
			return nil, err
		}
		sh.MeshData, err = pdf.ReadAll(x.R, stm)
		if err != nil {
			return nil, err
		}
	}

	return sh, nil
}

// numInputs returns the number of color values stored per mesh vertex:
// one if the shading uses a function, the number of color space
// channels otherwise.
func (sh *Shading) numInputs() int {
	if sh.Function != nil {
		return 1
	}
	if sh.Space != nil && sh.Space.Channels() > 0 {
		return sh.Space.Channels()
	}
	return 1
}

// color evaluates the shading function at parameter t and converts the
// result to a color.
func (sh *Shading) color(t ...float64) color.Color {
	if sh.Function == nil {
		return componentsToColor(sh.Space, t)
	}
	_, n := sh.Function.Shape()
	out := make([]float64, n)
	sh.Function.Apply(out, t...)
	return componentsToColor(sh.Space, out)
}

func componentsToColor(space color.Space, values []float64) color.Color {
	var family pdf.Name
	if space != nil {
		family = space.Family()
	}
	switch family {
	case "DeviceRGB", "CalRGB", "Lab", "ICCBased":
		if len(values) >= 3 {
			return color.DeviceRGB{values[0], values[1], values[2]}
		}
	case "DeviceCMYK":
		if len(values) >= 4 {
			return color.DeviceCMYK{values[0], values[1], values[2], values[3]}
		}
	}
	if len(values) >= 1 {
		return color.DeviceGray(values[0])
	}
	return color.DeviceGray(0)
}

// colorDistance returns the maximum component difference of two
// colors, in the 16-bit RGB representation.
func colorDistance(a, b color.Color) float64 {
	ra, ga, ba, _ := a.RGBA()
	rb, gb, bb, _ := b.RGBA()
	d := 0.0
	for _, pair := range [][2]uint32{{ra, rb}, {ga, gb}, {ba, bb}} {
		delta := math.Abs(float64(pair[0]) - float64(pair[1]))
		if delta > d {
			d = delta
		}
	}
	return d / 0xffff
}

// avgColor averages two colors of the same concrete type.
func avgColor(a, b color.Color) color.Color {
	switch x := a.(type) {
	case color.DeviceGray:
		if y, ok := b.(color.DeviceGray); ok {
			return color.DeviceGray((float64(x) + float64(y)) / 2)
		}
	case color.DeviceRGB:
		if y, ok := b.(color.DeviceRGB); ok {
			return color.DeviceRGB{
				(x[0] + y[0]) / 2, (x[1] + y[1]) / 2, (x[2] + y[2]) / 2,
			}
		}
	case color.DeviceCMYK:
		if y, ok := b.(color.DeviceCMYK); ok {
			return color.DeviceCMYK{
				(x[0] + y[0]) / 2, (x[1] + y[1]) / 2,
				(x[2] + y[2]) / 2, (x[3] + y[3]) / 2,
			}
		}
	}
	return a
}

// Paint renders the shading.  The clip rectangle gives the device
// region the shading is painted into, and ctm maps shading space to
// device space.
func (sh *Shading) Paint(clip pdf.Rectangle, ctm matrix.Matrix, sink Sink) error {
	switch sh.Type {
	case 1:
		return sh.paintFunction(ctm, sink)
	case 2:
		return sh.paintAxial(clip, ctm, sink)
	case 3:
		return sh.paintRadial(clip, ctm, sink)
	case 4, 5:
		return sh.paintGouraud(ctm, sink)
	case 6, 7:
		return sh.paintPatchMesh(ctm, sink)
	default:
		return errors.New("unsupported shading type")
	}
}

// paintFunction renders a function-based shading by adaptive 2x2
// subdivision of the domain.  At least one subdivision is performed,
// and subdivision stops either when the corner colors agree or when
// the maximum depth is reached.
func (sh *Shading) paintFunction(ctm matrix.Matrix, sink Sink) error {
	domain := sh.Domain
	if len(domain) != 4 {
		domain = []float64{0, 1, 0, 1}
	}
	m := sh.Matrix.Mul(ctm)
	return sh.subdivideQuad(domain[0], domain[1], domain[2], domain[3], 0, m, sink)
}

func (sh *Shading) subdivideQuad(x0, x1, y0, y1 float64, depth int, m matrix.Matrix, sink Sink) error {
	c00 := sh.color(x0, y0)
	c10 := sh.color(x1, y0)
	c01 := sh.color(x0, y1)
	c11 := sh.color(x1, y1)

	split := depth == 0
	if !split && depth < maxDepth {
		corners := []color.Color{c00, c10, c11, c01}
		for i := range corners {
			if colorDistance(corners[i], corners[(i+1)%4]) > colorDelta {
				split = true
				break
			}
		}
	}

	if split && depth < maxDepth {
		xm := (x0 + x1) / 2
		ym := (y0 + y1) / 2
		for _, sub := range [][4]float64{
			{x0, xm, y0, ym},
			{xm, x1, y0, ym},
			{x0, xm, ym, y1},
			{xm, x1, ym, y1},
		} {
			err := sh.subdivideQuad(sub[0], sub[1], sub[2], sub[3], depth+1, m, sink)
			if err != nil {
				return err
			}
		}
		return nil
	}

	mid := sh.color((x0+x1)/2, (y0+y1)/2)
	var xs, ys [4]float64
	for i, pt := range [][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}} {
		xs[i], ys[i] = m.Apply(pt[0], pt[1])
	}
	return sink(xs, ys, mid)
}

// domainColor evaluates the shading function at the lattice parameter
// t, clamping to the function domain.
func (sh *Shading) domainColor(t, t0, t1 float64) color.Color {
	var tt float64
	switch {
	case t < 0:
		tt = t0
	case t > 1:
		tt = t1
	default:
		tt = t0 + (t1-t0)*t
	}
	return sh.color(tt)
}

// paintAxial traverses the t axis and paints bands perpendicular to
// the axis.  The axis is bisected on an integer lattice of
// axialMaxSplits points, with the color test suppressed while
// j - i > axialMaxSplits/4 so that at least two splits happen even
// when the color does not change smoothly along the axis.
func (sh *Shading) paintAxial(clip pdf.Rectangle, ctm matrix.Matrix, sink Sink) error {
	if len(sh.Coords) < 4 {
		return errors.New("invalid axial shading coordinates")
	}
	x0, y0 := sh.Coords[0], sh.Coords[1]
	x1, y1 := sh.Coords[2], sh.Coords[3]

	t0, t1 := 0.0, 1.0
	if len(sh.Domain) == 2 {
		t0, t1 = sh.Domain[0], sh.Domain[1]
	}

	// the clip region in shading space
	xMin, yMin, xMax, yMax := userClipBBox(clip, ctm)

	// compute the t range covered by the four clip corners
	dx := x1 - x0
	dy := y1 - y0
	dxdyZero := math.Abs(dx) < 0.01 && math.Abs(dy) < 0.01
	horiz := math.Abs(dy) < math.Abs(dx)
	var tMin, tMax float64
	if !dxdyZero {
		mul := 1 / (dx*dx + dy*dy)
		first := true
		for _, pt := range [][2]float64{
			{xMin, yMin}, {xMin, yMax}, {xMax, yMin}, {xMax, yMax},
		} {
			t := ((pt[0]-x0)*dx + (pt[1]-y0)*dy) * mul
			if first || t < tMin {
				tMin = t
			}
			if first || t > tMax {
				tMax = t
			}
			first = false
		}
		if tMin < 0 && !sh.Extend[0] {
			tMin = 0
		}
		if tMax > 1 && !sh.Extend[1] {
			tMax = 1
		}
	}

	// perpendicular extent of a band at lattice parameter t
	bandEdge := func(t float64) (ux, uy, vx, vy float64) {
		tx := x0 + t*dx
		ty := y0 + t*dy
		var sMin, sMax float64
		if !dxdyZero {
			if horiz {
				sMin = (yMin - ty) / dx
				sMax = (yMax - ty) / dx
			} else {
				sMin = (xMin - tx) / -dy
				sMax = (xMax - tx) / -dy
			}
			if sMin > sMax {
				sMin, sMax = sMax, sMin
			}
		}
		ux = tx - sMin*dy
		uy = ty + sMin*dx
		vx = tx - sMax*dy
		vy = ty + sMax*dx
		return ux, uy, vx, vy
	}

	var ta [axialMaxSplits + 1]float64
	var next [axialMaxSplits + 1]int
	ta[0] = tMin
	next[0] = axialMaxSplits
	ta[axialMaxSplits] = tMax

	color0 := sh.domainColor(tMin, t0, t1)
	ux0, uy0, vx0, vy0 := bandEdge(tMin)

	i := 0
	for i < axialMaxSplits {
		// bisect until the color difference is small enough or the
		// bisection limit is hit
		j := next[i]
		var color1 color.Color
		for {
			color1 = sh.domainColor(ta[j], t0, t1)
			if j <= i+1 {
				break
			}
			// require at least two splits (to avoid problems where the
			// color doesn't change smoothly along the t axis)
			if j-i <= axialMaxSplits/4 &&
				colorDistance(color1, color0) <= colorDelta {
				break
			}
			k := (i + j) / 2
			ta[k] = 0.5 * (ta[i] + ta[j])
			next[i] = k
			next[k] = j
			j = k
		}

		ux1, uy1, vx1, vy1 := bandEdge(ta[j])

		// use the average of the colors of the two sides of the band
		var xs, ys [4]float64
		for k, pt := range [][2]float64{
			{ux0, uy0}, {vx0, vy0}, {vx1, vy1}, {ux1, uy1},
		} {
			xs[k], ys[k] = ctm.Apply(pt[0], pt[1])
		}
		err := sink(xs, ys, avgColor(color0, color1))
		if err != nil {
			return err
		}

		ux0, uy0, vx0, vy0 = ux1, uy1, vx1, vy1
		color0 = color1
		i = next[i]
	}
	return nil
}

// paintRadial paints annular bands between circles interpolated along
// the axis between the two defining circles.  Starting from the first
// circle, each band extends as far towards the second circle as the
// color tolerance allows, found by bisection on an integer lattice of
// axialMaxSplits points; at least one split is always performed.
func (sh *Shading) paintRadial(clip pdf.Rectangle, ctm matrix.Matrix, sink Sink) error {
	if len(sh.Coords) < 6 {
		return errors.New("invalid radial shading coordinates")
	}
	x0, y0, r0 := sh.Coords[0], sh.Coords[1], sh.Coords[2]
	x1, y1, r1 := sh.Coords[3], sh.Coords[4], sh.Coords[5]

	t0, t1 := 0.0, 1.0
	if len(sh.Domain) == 2 {
		t0, t1 = sh.Domain[0], sh.Domain[1]
	}

	xMin, yMin, xMax, yMax := userClipBBox(clip, ctm)

	// the range of the axis parameter s; s=0 is the first circle and
	// s=1 the second.  The extension stops once the circle radius
	// drops to zero or the circle no longer touches the clip region.
	circleVisible := func(s float64) bool {
		cx := x0 + s*(x1-x0)
		cy := y0 + s*(y1-y0)
		cr := r0 + s*(r1-r0)
		if cr < 0 {
			return false
		}
		return cx+cr >= xMin && cx-cr <= xMax && cy+cr >= yMin && cy-cr <= yMax
	}
	sMin, sMax := 0.0, 1.0
	if sh.Extend[0] {
		for sMin > -20 && circleVisible(sMin-0.5) {
			sMin -= 0.5
		}
	}
	if sh.Extend[1] {
		for sMax < 20 && circleVisible(sMax+0.5) {
			sMax += 0.5
		}
	}

	// The number of polygon segments per circle is chosen for a curve
	// flatness of 0.1 pixel on the largest circle.
	scale := math.Max(math.Max(math.Abs(ctm[0]), math.Abs(ctm[1])),
		math.Max(math.Abs(ctm[2]), math.Abs(ctm[3])))
	t := scale * math.Max(r0, r1)
	n := 3
	if t >= 1 {
		n = int(math.Pi / math.Acos(1-0.1/t))
		if n < 3 {
			n = 3
		} else if n > 200 {
			n = 200
		}
	}

	circleAt := func(s float64) (cx, cy, cr float64) {
		return x0 + s*(x1-x0), y0 + s*(y1-y0), math.Max(r0+s*(r1-r0), 0)
	}

	ia := 0
	sa := sMin
	colorA := sh.domainColor(sa, t0, t1)
	xa, ya, ra := circleAt(sa)

	for ia < axialMaxSplits {
		// go as far along the axis as the color tolerance allows; the
		// test ib < axialMaxSplits forces at least one split, to avoid
		// problems when the innermost and outermost colors are equal
		ib := axialMaxSplits
		sb := sMax
		colorB := sh.domainColor(sb, t0, t1)
		for ib-ia > 1 {
			if colorDistance(colorB, colorA) <= colorDelta && ib < axialMaxSplits {
				break
			}
			ib = (ia + ib) / 2
			sb = sMin + float64(ib)/axialMaxSplits*(sMax-sMin)
			colorB = sh.domainColor(sb, t0, t1)
		}

		xb, yb, rb := circleAt(sb)
		bandColor := avgColor(colorA, colorB)

		// paint the annular band between the two circles
		for k := 0; k < n; k++ {
			a0 := 2 * math.Pi * float64(k) / float64(n)
			a1 := 2 * math.Pi * float64(k+1) / float64(n)

			var xs, ys [4]float64
			pts := [][2]float64{
				{xa + ra*math.Cos(a0), ya + ra*math.Sin(a0)},
				{xa + ra*math.Cos(a1), ya + ra*math.Sin(a1)},
				{xb + rb*math.Cos(a1), yb + rb*math.Sin(a1)},
				{xb + rb*math.Cos(a0), yb + rb*math.Sin(a0)},
			}
			for j, pt := range pts {
				xs[j], ys[j] = ctm.Apply(pt[0], pt[1])
			}
			err := sink(xs, ys, bandColor)
			if err != nil {
				return err
			}
		}

		xa, ya, ra = xb, yb, rb
		colorA = colorB
		ia = ib
	}
	return nil
}

// userClipBBox maps the device clip rectangle back to shading space.
func userClipBBox(clip pdf.Rectangle, ctm matrix.Matrix) (xMin, yMin, xMax, yMax float64) {
	inv := ctm.Inv()
	first := true
	for _, pt := range [][2]float64{
		{clip.LLx, clip.LLy},
		{clip.URx, clip.LLy},
		{clip.LLx, clip.URy},
		{clip.URx, clip.URy},
	} {
		x, y := inv.Apply(pt[0], pt[1])
		if first || x < xMin {
			xMin = x
		}
		if first || x > xMax {
			xMax = x
		}
		if first || y < yMin {
			yMin = y
		}
		if first || y > yMax {
			yMax = y
		}
		first = false
	}
	return xMin, yMin, xMax, yMax
}

func extractFunction(x *pdf.Extractor, obj pdf.Object) (pdf.Function, error) {
	// Several functions can be given as an array; they are combined
	// into one function with multiple outputs.
	resolved, err := pdf.Resolve(x.R, obj)
	if err != nil {
		return nil, err
	}
	if arr, ok := resolved.(pdf.Array); ok && len(arr) > 0 {
		obj = arr[0]
	}
	return function.Extract(x, obj)
}
