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

package textlayout

import (
	"math"
	"sort"
	"strings"
)

// clippedTextMaxWordSpace is the largest gap, relative to the glyph
// size, across which a fully clipped glyph is still appended to an
// existing line.
const clippedTextMaxWordSpace = 0.5

// underlineSlack is the tolerance, relative to the glyph size, when
// matching underline bars to word baselines.
const underlineSlack = 0.3

// hyperlinkSlack is the tolerance, in device units, when testing
// whether a link rectangle covers a word.
const hyperlinkSlack = 2.0

// Rect is an axis-aligned rectangle in device coordinates.
type Rect struct {
	XMin, YMin, XMax, YMax float64
}

// Link is the active region of a hyperlink.
type Link struct {
	Rect

	// URI is the link target.
	URI string
}

// AddUnderline records an underline bar.  Underlines are matched to
// words after the layout analysis.
func (e *Extractor) AddUnderline(r Rect) {
	e.underlines = append(e.underlines, r)
}

// AddLink records a hyperlink region.
func (e *Extractor) AddLink(r Rect, uri string) {
	e.links = append(e.links, Link{Rect: r, URI: uri})
}

// reinsertClipped appends the withheld, fully clipped glyphs to the
// line whose vertical range brackets the glyph center, provided the
// line ends close enough to the left edge of the glyph.  Glyphs with
// no matching line are dropped; every glyph ends up in at most one
// line.
func (e *Extractor) reinsertClipped(lines []Line, rot int) []Line {
	for _, c := range e.clipped {
		c = unrotate(c, rot)
		yMid := (c.YMin + c.YMax) / 2

		for i := range lines {
			line := &lines[i]
			if yMid < line.YMin || yMid > line.YMax {
				continue
			}
			if c.XMin < line.XMax ||
				c.XMin-line.XMax > clippedTextMaxWordSpace*c.Size {
				continue
			}

			k := len(line.Words) - 1
			line.Words[k].Chars = append(line.Words[k].Chars, c)
			setWordBBox(&line.Words[k])
			setLineBBox(line)
			break
		}
	}
	return lines
}

// attachDecorations marks words as underlined or linked, using the
// collected underline bars and link regions.
func (e *Extractor) attachDecorations(page *Page) {
	if len(e.underlines) == 0 && len(e.links) == 0 {
		return
	}

	forEachWord(page, func(w *Word) {
		size := 1.0
		if len(w.Chars) > 0 {
			size = w.Chars[0].Size
		}
		slack := underlineSlack * size

		for _, bar := range e.underlines {
			// the bar must run along the baseline and span the word
			if bar.YMin > w.YMin+slack || bar.YMax < w.YMin-slack {
				continue
			}
			if bar.XMin > w.XMin+slack || bar.XMax < w.XMax-slack {
				continue
			}
			w.Underlined = true
			break
		}

		for _, link := range e.links {
			if w.XMin >= link.XMin-hyperlinkSlack &&
				w.XMax <= link.XMax+hyperlinkSlack &&
				w.YMin >= link.YMin-hyperlinkSlack &&
				w.YMax <= link.YMax+hyperlinkSlack {
				w.LinkURI = link.URI
				break
			}
		}
	})
}

func forEachWord(page *Page, fn func(w *Word)) {
	for i := range page.Columns {
		col := &page.Columns[i]
		for j := range col.Paragraphs {
			par := &col.Paragraphs[j]
			for k := range par.Lines {
				line := &par.Lines[k]
				for l := range line.Words {
					fn(&line.Words[l])
				}
			}
		}
	}
}

// assignPhysicalPositions computes the character column of each line
// start for the physical layout output.  The pitch defaults to 0.4
// times the average font size, so that the horizontal positions of the
// original page survive in the text grid.
func (e *Extractor) assignPhysicalPositions(page *Page) {
	for i := range page.Columns {
		col := &page.Columns[i]
		for j := range col.Paragraphs {
			par := &col.Paragraphs[j]
			for k := range par.Lines {
				line := &par.Lines[k]
				pitch := e.opt.FixedPitch
				if pitch <= 0 {
					size := lineSize(line)
					if size <= 0 {
						size = 10
					}
					pitch = 0.4 * size
				}
				line.PhysX = int((line.XMin-col.XMin)/pitch + 0.5)
			}
		}
	}
}

// physRow is one row of the physical layout grid.
type physRow struct {
	y    float64
	text []rune
}

// TextPhysical renders the page as a two-dimensional character grid
// which preserves the physical layout: columns are placed side by
// side, line indentation is kept, and missing cells are spaces.  The
// second return value is the total height of the grid in rows.
func (e *Extractor) TextPhysical() (string, int) {
	page := e.Layout()

	var rows []physRow
	rowFor := func(y, size float64) *physRow {
		for i := range rows {
			if math.Abs(rows[i].y-y) < 0.7*size {
				return &rows[i]
			}
		}
		rows = append(rows, physRow{y: y})
		return &rows[len(rows)-1]
	}

	// columns are stacked horizontally with a small gap
	xOffset := 0
	for i := range page.Columns {
		col := &page.Columns[i]
		colWidth := 0
		for j := range col.Paragraphs {
			par := &col.Paragraphs[j]
			for k := range par.Lines {
				line := &par.Lines[k]
				row := rowFor(line.YMin, lineSize(line)+1)

				x := xOffset + line.PhysX
				text := []rune(line.Text())
				for len(row.text) < x {
					row.text = append(row.text, ' ')
				}
				row.text = append(row.text[:x], text...)
				if w := x + len(text); w > colWidth {
					colWidth = w
				}
			}
		}
		xOffset = colWidth + 2
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].y > rows[j].y
	})

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(strings.TrimRight(string(row.text), " "))
		sb.WriteString(e.opt.LineEnding)
	}
	return sb.String(), len(rows)
}

// TextTable renders the page like TextPhysical, but with the more
// aggressive column splitting of table layout mode enabled.
func (e *Extractor) TextTable() (string, int) {
	saved := e.opt.TableLayout
	e.opt.TableLayout = true
	text, height := e.TextPhysical()
	e.opt.TableLayout = saved
	return text, height
}

// TextRaw returns the glyph text in the exact order the glyphs were
// received, without any reordering.
func (e *Extractor) TextRaw() string {
	var sb strings.Builder
	for _, c := range e.chars {
		sb.WriteString(c.Text)
	}
	return sb.String()
}
