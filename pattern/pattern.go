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

// Package pattern expands PDF tiling patterns into individual tile
// placements, and gives access to shading patterns.
package pattern

import (
	"errors"
	"math"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/graphics/matrix"
	"github.com/archivekit/pdfcore/shading"
)

// Pattern is a tiling or shading pattern read from a PDF file.
type Pattern struct {
	// PatternType is 1 for tiling patterns and 2 for shading patterns.
	PatternType int

	// PaintType is 1 for colored and 2 for uncolored tiling patterns.
	PaintType int

	// BBox is the pattern cell bounding box, in pattern space.
	BBox pdf.Rectangle

	// XStep, YStep are the tile spacing in pattern space.
	XStep, YStep float64

	// Matrix maps pattern space to the default coordinate space of
	// the page.
	Matrix matrix.Matrix

	// Content is the content stream of a tiling pattern.
	Content *pdf.Stream

	// Resources is the resource dictionary of a tiling pattern.
	Resources pdf.Object

	// Shading is the shading of a shading pattern.
	Shading *shading.Shading
}

// IsColored implements the color.Pattern interface.
func (p *Pattern) IsColored() bool {
	return p.PatternType == 2 || p.PaintType == 1
}

// Extract reads a pattern from a PDF file.
func Extract(x *pdf.Extractor, obj pdf.Object) (*Pattern, error) {
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
			Err: errors.New("invalid pattern object"),
		}
	}

	tp, err := pdf.GetInteger(x.R, dict["PatternType"])
	if err != nil {
		return nil, err
	}

	p := &Pattern{
		PatternType: int(tp),
		Matrix:      matrix.Identity,
	}
	if m, err := pdf.GetMatrix(x.R, dict["Matrix"]); err == nil && dict["Matrix"] != nil {
		p.Matrix = matrix.Matrix(m)
	}

	switch tp {
	case 1:
		if stm == nil {
			return nil, &pdf.MalformedFileError{
				Err: errors.New("tiling pattern must be a stream"),
			}
		}
		paintType, err := pdf.GetInteger(x.R, dict["PaintType"])
		if err != nil {
			return nil, err
		}
		p.PaintType = int(paintType)
		bbox, err := pdf.GetRectangle(x.R, dict["BBox"])
		if err != nil {
			return nil, err
		}
		if bbox == nil {
			return nil, &pdf.MalformedFileError{
				Err: errors.New("missing pattern /BBox"),
			}
		}
		p.BBox = *bbox
		xStep, err := pdf.GetNumber(x.R, dict["XStep"])
		if err != nil {
			return nil, err
		}
		yStep, err := pdf.GetNumber(x.R, dict["YStep"])
		if err != nil {
			return nil, err
		}
		p.XStep = float64(xStep)
		p.YStep = float64(yStep)
		if p.XStep == 0 {
			p.XStep = p.BBox.Dx()
		}
		if p.YStep == 0 {
			p.YStep = p.BBox.Dy()
		}
		p.Content = stm
		p.Resources = dict["Resources"]

	case 2:
		sh, err := shading.Extract(x, dict["Shading"])
		if err != nil {
			return nil, err
		}
		p.Shading = sh

	default:
		return nil, &pdf.MalformedFileError{
			Err: errors.New("invalid pattern type"),
		}
	}
	return p, nil
}

// Tile is one placement of the pattern cell, given as the offset in
// pattern space.
type Tile struct {
	X, Y float64
}

// maxTiles bounds the number of tiles produced for one fill, to guard
// against tiny step values.
const maxTiles = 1 << 16

// Tiles enumerates the tile placements needed to cover the device
// region clip.  The transformation from pattern space to device space
// is `(pattern matrix) x baseToDevice`; if it is (nearly) singular, no
// tiles are produced.
func (p *Pattern) Tiles(clip pdf.Rectangle, baseToDevice matrix.Matrix) ([]Tile, error) {
	if p.PatternType != 1 {
		return nil, errors.New("not a tiling pattern")
	}
	if p.XStep == 0 || p.YStep == 0 {
		return nil, errors.New("invalid tile step")
	}

	m := p.Matrix.Mul(baseToDevice)
	if m.IsSingular() {
		return nil, nil
	}
	inv := m.Inv()

	// map the clip rectangle to pattern space
	xMin, yMin := math.Inf(1), math.Inf(1)
	xMax, yMax := math.Inf(-1), math.Inf(-1)
	for _, pt := range [][2]float64{
		{clip.LLx, clip.LLy},
		{clip.URx, clip.LLy},
		{clip.LLx, clip.URy},
		{clip.URx, clip.URy},
	} {
		x, y := inv.Apply(pt[0], pt[1])
		xMin = math.Min(xMin, x)
		xMax = math.Max(xMax, x)
		yMin = math.Min(yMin, y)
		yMax = math.Max(yMax, y)
	}

	// enumerate the integer lattice indices whose cell overlaps the
	// clip region
	xi0 := int(math.Ceil((xMin - p.BBox.URx) / p.XStep))
	xi1 := int(math.Floor((xMax-p.BBox.LLx)/p.XStep)) + 1
	yi0 := int(math.Ceil((yMin - p.BBox.URy) / p.YStep))
	yi1 := int(math.Floor((yMax-p.BBox.LLy)/p.YStep)) + 1

	nx := xi1 - xi0
	ny := yi1 - yi0
	if nx <= 0 || ny <= 0 {
		return nil, nil
	}
	if nx > maxTiles || ny > maxTiles || nx*ny > maxTiles {
		return nil, errors.New("too many pattern tiles")
	}

	tiles := make([]Tile, 0, nx*ny)
	for yi := yi0; yi < yi1; yi++ {
		for xi := xi0; xi < xi1; xi++ {
			tiles = append(tiles, Tile{
				X: float64(xi) * p.XStep,
				Y: float64(yi) * p.YStep,
			})
		}
	}
	return tiles, nil
}
