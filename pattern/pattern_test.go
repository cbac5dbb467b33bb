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

package pattern

import (
	"testing"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/graphics/matrix"
)

func TestTiles(t *testing.T) {
	p := &Pattern{
		PatternType: 1,
		PaintType:   1,
		BBox:        pdf.Rectangle{URx: 10, URy: 10},
		XStep:       10,
		YStep:       10,
		Matrix:      matrix.Identity,
	}

	clip := pdf.Rectangle{LLx: 0, LLy: 0, URx: 25, URy: 15}
	tiles, err := p.Tiles(clip, matrix.Identity)
	if err != nil {
		t.Fatal(err)
	}

	// tiles at x in {-10?, 0, 10, 20} x y in {0, 10}: the enumeration
	// must cover the whole clip region
	covered := map[Tile]bool{}
	for _, tile := range tiles {
		covered[tile] = true
	}
	for _, want := range []Tile{{0, 0}, {10, 0}, {20, 0}, {0, 10}, {10, 10}, {20, 10}} {
		if !covered[want] {
			t.Errorf("missing tile %v", want)
		}
	}
}

func TestTilesWithTransform(t *testing.T) {
	p := &Pattern{
		PatternType: 1,
		PaintType:   1,
		BBox:        pdf.Rectangle{URx: 5, URy: 5},
		XStep:       5,
		YStep:       5,
		Matrix:      matrix.Scale(2, 2),
	}

	clip := pdf.Rectangle{URx: 20, URy: 20}
	tiles, err := p.Tiles(clip, matrix.Identity)
	if err != nil {
		t.Fatal(err)
	}

	// in pattern space the clip region is 10x10 units, i.e. 2x2 tiles
	// plus boundary overlap
	if len(tiles) < 4 {
		t.Errorf("got %d tiles, want at least 4", len(tiles))
	}
}

func TestTilesSingularMatrix(t *testing.T) {
	p := &Pattern{
		PatternType: 1,
		BBox:        pdf.Rectangle{URx: 10, URy: 10},
		XStep:       10,
		YStep:       10,
		Matrix:      matrix.Matrix{0, 0, 0, 0, 5, 5},
	}

	tiles, err := p.Tiles(pdf.Rectangle{URx: 100, URy: 100}, matrix.Identity)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 0 {
		t.Errorf("got %d tiles for a singular matrix, want 0", len(tiles))
	}
}

func TestTileLimit(t *testing.T) {
	p := &Pattern{
		PatternType: 1,
		BBox:        pdf.Rectangle{URx: 0.001, URy: 0.001},
		XStep:       0.001,
		YStep:       0.001,
		Matrix:      matrix.Identity,
	}

	_, err := p.Tiles(pdf.Rectangle{URx: 10000, URy: 10000}, matrix.Identity)
	if err == nil {
		t.Error("tile explosion not detected")
	}
}
