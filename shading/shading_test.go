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

package shading

import (
	"math"
	"testing"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/function"
	"github.com/archivekit/pdfcore/graphics/color"
	"github.com/archivekit/pdfcore/graphics/matrix"
)

func rampFunction() pdf.Function {
	return &function.Type2{
		XMin: 0,
		XMax: 1,
		C0:   []float64{0},
		C1:   []float64{1},
		N:    1,
	}
}

func TestAxialBands(t *testing.T) {
	sh := &Shading{
		Type:     2,
		Space:    color.SpaceDeviceGray,
		Function: rampFunction(),
		Coords:   []float64{0, 0, 100, 0},
	}

	clip := pdf.Rectangle{LLx: 0, LLy: 0, URx: 100, URy: 100}
	var count int
	var first, last color.Color
	err := sh.Paint(clip, matrix.Identity, func(x, y [4]float64, col color.Color) error {
		if count == 0 {
			first = col
		}
		last = col
		count++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// the axis must be subdivided at least twice
	if count < 2 {
		t.Fatalf("got %d bands, want at least 2", count)
	}
	if count > axialMaxSplits {
		t.Fatalf("got %d bands, want at most %d", count, axialMaxSplits)
	}

	// the shading runs from black to white
	g0 := first.(color.DeviceGray)
	g1 := last.(color.DeviceGray)
	if float64(g0) > 0.1 || float64(g1) < 0.9 {
		t.Errorf("unexpected end colors %g, %g", float64(g0), float64(g1))
	}
}

func TestFunctionShadingSubdivides(t *testing.T) {
	fn := &function.Type4{
		Domain:  []float64{0, 1, 0, 1},
		Range:   []float64{0, 1},
		Program: "pop", // color depends on x only
	}
	sh := &Shading{
		Type:     1,
		Space:    color.SpaceDeviceGray,
		Function: fn,
		Matrix:   matrix.Identity,
	}

	var count int
	err := sh.Paint(pdf.Rectangle{URx: 1, URy: 1}, matrix.Identity,
		func(x, y [4]float64, col color.Color) error {
			count++
			return nil
		})
	if err != nil {
		t.Fatal(err)
	}

	// at least one subdivision is required, even for flat colors
	if count < 4 {
		t.Errorf("got %d quads, want at least 4", count)
	}
}

func TestConstantFunctionShading(t *testing.T) {
	fn := &function.Type4{
		Domain:  []float64{0, 1, 0, 1},
		Range:   []float64{0, 1},
		Program: "pop pop 0.5",
	}
	sh := &Shading{
		Type:     1,
		Space:    color.SpaceDeviceGray,
		Function: fn,
		Matrix:   matrix.Identity,
	}

	var count int
	err := sh.Paint(pdf.Rectangle{URx: 1, URy: 1}, matrix.Identity,
		func(x, y [4]float64, col color.Color) error {
			count++
			g := col.(color.DeviceGray)
			if math.Abs(float64(g)-0.5) > 1e-9 {
				t.Errorf("got color %g, want 0.5", float64(g))
			}
			return nil
		})
	if err != nil {
		t.Fatal(err)
	}

	// a constant shading needs no subdivision beyond the mandatory
	// first level
	if count != 4 {
		t.Errorf("got %d quads, want 4", count)
	}
}

func TestRadialAnnuli(t *testing.T) {
	sh := &Shading{
		Type:     3,
		Space:    color.SpaceDeviceGray,
		Function: rampFunction(),
		Coords:   []float64{50, 50, 0, 50, 50, 40},
	}

	clip := pdf.Rectangle{URx: 100, URy: 100}
	var count int
	err := sh.Paint(clip, matrix.Identity, func(x, y [4]float64, col color.Color) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if count == 0 {
		t.Error("no output for radial shading")
	}
}

func TestGouraudFreeForm(t *testing.T) {
	// two triangles sharing an edge: the first is uniformly black, the
	// second ramps to white
	data := []byte{
		0, 0, 0, 0, // flag 0, (0, 0), gray 0
		0, 100, 0, 0, // flag 0, (100, 0), gray 0
		0, 0, 100, 0, // flag 0, (0, 100), gray 0
		1, 100, 100, 255, // flag 1, (100, 100), gray 1
	}
	sh := &Shading{
		Type:              4,
		Space:             color.SpaceDeviceGray,
		BitsPerCoordinate: 8,
		BitsPerComponent:  8,
		BitsPerFlag:       8,
		Decode:            []float64{0, 255, 0, 255, 0, 1},
		MeshData:          data,
	}

	var count int
	var first color.Color
	err := sh.Paint(pdf.Rectangle{URx: 100, URy: 100}, matrix.Identity,
		func(x, y [4]float64, col color.Color) error {
			if count == 0 {
				first = col
			}
			count++
			return nil
		})
	if err != nil {
		t.Fatal(err)
	}

	// the first triangle is flat and is emitted as a single region;
	// the second is subdivided
	if count < 2 {
		t.Fatalf("got %d regions, want at least 2", count)
	}
	if g, ok := first.(color.DeviceGray); !ok || g != 0 {
		t.Errorf("first region has color %v, want black", first)
	}
}

func TestGouraudLattice(t *testing.T) {
	// a 2x2 lattice of uniformly colored vertices gives two flat
	// triangles
	data := []byte{
		0, 0, 128,
		100, 0, 128,
		0, 100, 128,
		100, 100, 128,
	}
	sh := &Shading{
		Type:              5,
		Space:             color.SpaceDeviceGray,
		BitsPerCoordinate: 8,
		BitsPerComponent:  8,
		VerticesPerRow:    2,
		Decode:            []float64{0, 255, 0, 255, 0, 1},
		MeshData:          data,
	}

	var count int
	err := sh.Paint(pdf.Rectangle{URx: 100, URy: 100}, matrix.Identity,
		func(x, y [4]float64, col color.Color) error {
			count++
			g := col.(color.DeviceGray)
			if math.Abs(float64(g)-128.0/255) > 1e-9 {
				t.Errorf("got color %g, want %g", float64(g), 128.0/255)
			}
			return nil
		})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("got %d regions, want 2", count)
	}
}

func TestCoonsPatch(t *testing.T) {
	// one square patch with equal corner colors paints a single region
	// bounded by its four corners
	data := []byte{
		0, // flag 0
		// first edge, (0,0) to (0,30)
		0, 0, 0, 10, 0, 20, 0, 30,
		// second edge, to (30,30)
		10, 30, 20, 30, 30, 30,
		// third edge, to (30,0)
		30, 20, 30, 10, 30, 0,
		// fourth edge, back towards (0,0)
		20, 0, 10, 0,
		// corner colors
		128, 128, 128, 128,
	}
	sh := &Shading{
		Type:              6,
		Space:             color.SpaceDeviceGray,
		BitsPerCoordinate: 8,
		BitsPerComponent:  8,
		BitsPerFlag:       8,
		Decode:            []float64{0, 255, 0, 255, 0, 1},
		MeshData:          data,
	}

	var count int
	var xs, ys [4]float64
	err := sh.Paint(pdf.Rectangle{URx: 30, URy: 30}, matrix.Identity,
		func(x, y [4]float64, col color.Color) error {
			count++
			xs, ys = x, y
			return nil
		})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("got %d regions, want 1", count)
	}

	want := [4][2]float64{{0, 0}, {0, 30}, {30, 30}, {30, 0}}
	for i, pt := range want {
		if math.Abs(xs[i]-pt[0]) > 1e-9 || math.Abs(ys[i]-pt[1]) > 1e-9 {
			t.Errorf("corner %d = (%g, %g), want (%g, %g)",
				i, xs[i], ys[i], pt[0], pt[1])
		}
	}
}

func TestAxialTieBreak(t *testing.T) {
	// A function whose color is constant along the axis: the bisection
	// must still produce at least two bands, because the color test is
	// suppressed while j-i > axialMaxSplits/4.
	fn := &function.Type2{
		XMin: 0,
		XMax: 1,
		C0:   []float64{0.5},
		C1:   []float64{0.5},
		N:    1,
	}
	sh := &Shading{
		Type:     2,
		Space:    color.SpaceDeviceGray,
		Function: fn,
		Coords:   []float64{0, 0, 100, 0},
	}

	var count int
	err := sh.Paint(pdf.Rectangle{URx: 100, URy: 100}, matrix.Identity,
		func(x, y [4]float64, col color.Color) error {
			count++
			return nil
		})
	if err != nil {
		t.Fatal(err)
	}
	if count < 2 {
		t.Errorf("got %d bands, want at least 2", count)
	}
}
