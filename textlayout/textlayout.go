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

// Package textlayout reconstructs readable text from the glyphs of a
// PDF page.
//
// Glyphs arrive in content stream order.  The layout analysis rotates
// the page so that the dominant text direction is horizontal, removes
// duplicate glyphs, partitions the page into a tree of columns and
// lines by searching for gaps in the occupancy profiles, groups the
// glyphs of each line into words, and finally merges lines into
// paragraphs and columns in reading order.
package textlayout

import (
	"math"
	"sort"
	"strings"

	"github.com/archivekit/pdfcore"
)

// Options controls the layout analysis.
type Options struct {
	// KeepTinyChars keeps glyphs with very small sizes.
	KeepTinyChars bool

	// DiscardClipped drops glyphs whose bounding box is fully clipped
	// away; by default they are re-inserted into the nearest line.
	DiscardClipped bool

	// TableLayout splits columns more aggressively, so that table
	// cells line up in the output.
	TableLayout bool

	// FixedPitch, if non-zero, is the character pitch used for
	// physical layout output.
	FixedPitch float64

	// LineEnding is used to join lines in text output.  The default
	// is "\n".
	LineEnding string
}

// Char is a positioned glyph record.
type Char struct {
	// XMin, YMin, XMax, YMax is the glyph bounding box in device
	// coordinates.
	XMin, YMin, XMax, YMax float64

	// Text is the Unicode text of the glyph.
	Text string

	// Size is the font size in device units.
	Size float64

	// Rotation is the rotation quadrant, 0 to 3.
	Rotation int

	// Invisible marks glyphs with text rendering mode 3.
	Invisible bool

	// Clipped marks glyphs whose bounding box lies entirely outside
	// the clipping region.
	Clipped bool

	// Font is the font dictionary the glyph was shown with.
	Font pdf.Reference

	// StreamPos is the position of the glyph in the content stream, in
	// operator counts, and NBytes the length of its character code.
	StreamPos int
	NBytes    int
}

// Word is a group of characters without intervening word spaces.
type Word struct {
	Chars []Char

	XMin, YMin, XMax, YMax float64

	// Underlined is set when an underline bar runs along the baseline
	// of the word.
	Underlined bool

	// LinkURI is the target of the hyperlink covering the word, if
	// any.
	LinkURI string
}

// Text returns the text of the word.
func (w *Word) Text() string {
	var sb strings.Builder
	for _, c := range w.Chars {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// Line is a sequence of words sharing a baseline.
type Line struct {
	Words []Word

	XMin, YMin, XMax, YMax float64

	// PhysX is the character column of the line start in the physical
	// layout grid.
	PhysX int
}

// Text returns the text of the line, with single spaces between
// words.
func (l *Line) Text() string {
	parts := make([]string, len(l.Words))
	for i := range l.Words {
		parts[i] = l.Words[i].Text()
	}
	return strings.Join(parts, " ")
}

// Paragraph is a group of consecutive lines.
type Paragraph struct {
	Lines []Line

	XMin, YMin, XMax, YMax float64
}

// Column is a group of paragraphs sharing a horizontal range.
type Column struct {
	Paragraphs []Paragraph

	XMin, YMin, XMax, YMax float64
}

// Page is the result of the layout analysis.
type Page struct {
	Columns []Column

	// Rotation is the dominant rotation quadrant of the page text.
	Rotation int
}

// Extractor collects glyphs and performs the layout analysis.
type Extractor struct {
	opt     Options
	chars   []Char
	clipped []Char

	underlines []Rect
	links      []Link

	actualText  *string
	actualXMin  float64
	actualYMin  float64
	actualXMax  float64
	actualYMax  float64
	actualSize  float64
	actualValid bool
}

// New creates a new text extractor.
func New(opt *Options) *Extractor {
	if opt == nil {
		opt = &Options{}
	}
	if opt.LineEnding == "" {
		opt.LineEnding = "\n"
	}
	return &Extractor{opt: *opt}
}

// Add records one glyph.
func (e *Extractor) Add(c Char) {
	if c.Text == "" {
		return
	}
	if !e.opt.KeepTinyChars && c.XMax-c.XMin < 0.01 && c.YMax-c.YMin < 0.01 {
		return
	}

	if c.Clipped {
		if !e.opt.DiscardClipped {
			e.clipped = append(e.clipped, c)
		}
		return
	}

	if e.actualText != nil {
		// While an ActualText span is open, only the covered extent is
		// recorded; the replacement text is emitted when the span ends.
		if !e.actualValid {
			e.actualXMin, e.actualYMin = c.XMin, c.YMin
			e.actualXMax, e.actualYMax = c.XMax, c.YMax
			e.actualSize = c.Size
			e.actualValid = true
		} else {
			e.actualXMin = math.Min(e.actualXMin, c.XMin)
			e.actualYMin = math.Min(e.actualYMin, c.YMin)
			e.actualXMax = math.Max(e.actualXMax, c.XMax)
			e.actualYMax = math.Max(e.actualYMax, c.YMax)
		}
		return
	}

	e.chars = append(e.chars, c)
}

// BeginActualText starts an ActualText span.  Glyphs added until the
// matching EndActualText only contribute their extent; the text is
// replaced by the given string.
func (e *Extractor) BeginActualText(text string) {
	s := text
	e.actualText = &s
	e.actualValid = false
}

// EndActualText closes an ActualText span and emits one synthetic
// glyph per code point, distributed evenly across the covered extent.
func (e *Extractor) EndActualText() {
	if e.actualText == nil {
		return
	}
	text := *e.actualText
	e.actualText = nil
	if !e.actualValid || text == "" {
		return
	}

	runes := []rune(text)
	n := len(runes)
	w := (e.actualXMax - e.actualXMin) / float64(n)
	for i, r := range runes {
		e.chars = append(e.chars, Char{
			XMin: e.actualXMin + float64(i)*w,
			XMax: e.actualXMin + float64(i+1)*w,
			YMin: e.actualYMin,
			YMax: e.actualYMax,
			Text: string(r),
			Size: e.actualSize,
		})
	}
}

// Layout performs the layout analysis on the collected glyphs.
func (e *Extractor) Layout() *Page {
	chars := e.chars

	page := &Page{}
	if len(chars) == 0 {
		return page
	}

	// find the dominant rotation
	var counts [4]int
	for _, c := range chars {
		counts[c.Rotation&3]++
	}
	rot := 0
	for i := 1; i < 4; i++ {
		if counts[i] > counts[rot] {
			rot = i
		}
	}
	page.Rotation = rot

	// rotate all glyphs so that the dominant rotation becomes 0, and
	// drop glyphs with other rotations
	work := make([]Char, 0, len(chars))
	for _, c := range chars {
		if c.Rotation&3 != rot {
			continue
		}
		work = append(work, unrotate(c, rot))
	}
	if len(work) == 0 {
		return page
	}

	work = dedupe(work)

	root := split(work, 0)
	root.classify()
	lines := flattenLines(root)
	lines = e.reinsertClipped(lines, rot)
	columns := e.groupColumns(lines, root.tag)
	for i := range columns {
		columns[i].Paragraphs = groupParagraphs(columns[i].lines)
		setColumnBBox(&columns[i])
	}

	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].XMin < columns[j].XMin
	})
	for _, col := range columns {
		page.Columns = append(page.Columns, col.Column)
	}

	e.attachDecorations(page)
	e.assignPhysicalPositions(page)
	return page
}

// Text returns the page text in reading order.
func (e *Extractor) Text() string {
	page := e.Layout()
	var sb strings.Builder
	for i := range page.Columns {
		col := &page.Columns[i]
		for j := range col.Paragraphs {
			par := &col.Paragraphs[j]
			for k := range par.Lines {
				sb.WriteString(par.Lines[k].Text())
				sb.WriteString(e.opt.LineEnding)
			}
		}
	}
	return sb.String()
}

// unrotate maps a glyph bounding box so that rotation quadrant rot
// becomes horizontal.
func unrotate(c Char, rot int) Char {
	switch rot & 3 {
	case 1:
		c.XMin, c.YMin, c.XMax, c.YMax = c.YMin, -c.XMax, c.YMax, -c.XMin
	case 2:
		c.XMin, c.YMin, c.XMax, c.YMax = -c.XMax, -c.YMax, -c.XMin, -c.YMin
	case 3:
		c.XMin, c.YMin, c.XMax, c.YMax = -c.YMax, c.XMin, -c.YMin, c.XMax
	}
	c.Rotation = 0
	return c
}

// dedupe removes duplicate glyphs.  Two glyphs are duplicates if they
// show the same text at (nearly) the same position; such glyphs are
// produced by fake-bold rendering and by shadow effects.
func dedupe(chars []Char) []Char {
	sort.SliceStable(chars, func(i, j int) bool {
		if chars[i].XMin != chars[j].XMin {
			return chars[i].XMin < chars[j].XMin
		}
		return chars[i].YMin < chars[j].YMin
	})

	res := chars[:0]
charLoop:
	for _, c := range chars {
		for k := len(res) - 1; k >= 0; k-- {
			prev := res[k]
			if c.XMin-prev.XMin >= 0.1*c.Size {
				break
			}
			if prev.Text == c.Text &&
				math.Abs(c.XMin-prev.XMin) < 0.1*c.Size &&
				math.Abs(c.YMin-prev.YMin) < 0.2*c.Size {
				continue charLoop
			}
		}
		res = append(res, c)
	}
	return res
}

// blockTag classifies the nodes of the partition tree.
type blockTag int

const (
	// tagLine marks a leaf holding the glyphs of one line.
	tagLine blockTag = iota

	// tagColumn marks a stack of at least two lines.
	tagColumn

	// tagMulticolumn marks all other splits.
	tagMulticolumn
)

// block is a node of the recursive partition tree.
type block struct {
	chars    []Char
	children []*block
	vertical bool // true if the split line is vertical
	tag      blockTag
}

// classify tags the partition tree in post order: leaves are lines,
// horizontal splits whose children are all lines or columns become
// columns, and everything else is a multicolumn region.
func (b *block) classify() {
	if b.children == nil {
		b.tag = tagLine
		return
	}
	allStacked := !b.vertical
	lines := 0
	for _, child := range b.children {
		child.classify()
		switch child.tag {
		case tagLine:
			lines++
		case tagColumn:
			lines += 2
		default:
			allStacked = false
		}
	}
	if allStacked && lines >= 2 {
		b.tag = tagColumn
	} else {
		b.tag = tagMulticolumn
	}
}

// split recursively partitions the glyphs by cutting along the largest
// gap in the horizontal or vertical occupancy profile.
func split(chars []Char, depth int) *block {
	b := &block{chars: chars}
	if len(chars) < 2 || depth > 32 {
		return b
	}

	minSize := math.Inf(1)
	avgSize := 0.0
	xMin, yMin := math.Inf(1), math.Inf(1)
	xMax, yMax := math.Inf(-1), math.Inf(-1)
	for _, c := range chars {
		minSize = math.Min(minSize, c.Size)
		avgSize += c.Size
		xMin = math.Min(xMin, c.XMin)
		xMax = math.Max(xMax, c.XMax)
		yMin = math.Min(yMin, c.YMin)
		yMax = math.Max(yMax, c.YMax)
	}
	avgSize /= float64(len(chars))

	precision := math.Max(0.05*minSize, 0.2)

	// occupancy profiles; the top of each glyph is pulled down and the
	// bottom slightly up, so that small overlaps between lines do not
	// prevent splits
	nx := int((xMax-xMin)/precision) + 1
	ny := int((yMax-yMin)/precision) + 1
	if nx <= 0 || ny <= 0 || nx > 1<<20 || ny > 1<<20 {
		return b
	}
	hProfile := make([]int, nx)
	vProfile := make([]int, ny)
	for _, c := range chars {
		h := c.YMax - c.YMin
		top := c.YMin + 0.875*h
		bot := c.YMin + 0.04*h
		for i := idx(c.XMin, xMin, precision, nx); i <= idx(c.XMax, xMin, precision, nx); i++ {
			hProfile[i]++
		}
		for i := idx(bot, yMin, precision, ny); i <= idx(top, yMin, precision, ny); i++ {
			vProfile[i]++
		}
	}

	hGapPos, hGapSize := largestGap(hProfile)
	vGapPos, vGapSize := largestGap(vProfile)

	// A vertical gap separates lines; a modest gap between baselines
	// is enough.  A horizontal gap separates columns and must be much
	// wider than a word space.
	vOK := float64(vGapSize) >= math.Max(0.3, 0.15*avgSize/precision)
	hOK := float64(hGapSize)*precision >= 2.5*avgSize

	switch {
	case vOK && (!hOK || vGapSize >= hGapSize):
		// split into top and bottom part
		cut := yMin + float64(vGapPos)*precision
		var lower, upper []Char
		for _, c := range chars {
			if (c.YMin+c.YMax)/2 < cut {
				lower = append(lower, c)
			} else {
				upper = append(upper, c)
			}
		}
		if len(lower) == 0 || len(upper) == 0 {
			return b
		}
		b.vertical = false
		b.children = []*block{split(upper, depth+1), split(lower, depth+1)}
		b.chars = nil
	case hOK:
		// split into left and right part
		cut := xMin + float64(hGapPos)*precision
		var left, right []Char
		for _, c := range chars {
			if (c.XMin+c.XMax)/2 < cut {
				left = append(left, c)
			} else {
				right = append(right, c)
			}
		}
		if len(left) == 0 || len(right) == 0 {
			return b
		}
		b.vertical = true
		b.children = []*block{split(left, depth+1), split(right, depth+1)}
		b.chars = nil
	}
	return b
}

func idx(x, origin, precision float64, n int) int {
	i := int((x - origin) / precision)
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// largestGap returns the middle position and size of the largest run
// of zero entries in the profile, ignoring runs at the edges.
func largestGap(profile []int) (int, int) {
	bestPos, bestSize := 0, 0
	runStart := -1
	for i, v := range profile {
		if v == 0 {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart > 0 {
			size := i - runStart
			if size > bestSize {
				bestSize = size
				bestPos = runStart + size/2
			}
		}
		runStart = -1
	}
	return bestPos, bestSize
}

// flattenLines returns the terminal blocks of the partition tree in
// top-to-bottom, left-to-right order, converted to lines.
func flattenLines(b *block) []Line {
	if b.children != nil {
		var res []Line
		for _, child := range b.children {
			res = append(res, flattenLines(child)...)
		}
		return res
	}
	if len(b.chars) == 0 {
		return nil
	}
	return []Line{makeLine(b.chars)}
}

// makeLine sorts the glyphs of a leaf by X and groups them into words.
//
// The word space threshold is derived from the distribution of the
// gaps within the line: lines with uniform gaps form a single word,
// and lines with clearly separated gap clusters split between the
// clusters.
func makeLine(chars []Char) Line {
	sort.SliceStable(chars, func(i, j int) bool {
		return chars[i].XMin < chars[j].XMin
	})

	avgSize := 0.0
	for _, c := range chars {
		avgSize += c.Size
	}
	avgSize /= float64(len(chars))

	minGap, maxGap := math.Inf(1), math.Inf(-1)
	for i := 1; i < len(chars); i++ {
		gap := chars[i].XMin - chars[i-1].XMax
		if gap < minGap {
			minGap = gap
		}
		if gap > maxGap {
			maxGap = gap
		}
	}

	var tau float64
	switch {
	case len(chars) < 2 || maxGap-minGap < 0.15*avgSize:
		tau = math.Inf(1) // a single word
	case maxGap-minGap < 0.3*avgSize:
		tau = (minGap + maxGap) / 2
	default:
		tau = minGap + 0.15*avgSize
	}

	line := Line{}
	var word Word
	for i, c := range chars {
		if i > 0 {
			gap := c.XMin - chars[i-1].XMax
			sizeChange := math.Abs(c.Size-chars[i-1].Size) > 0.01*avgSize
			if gap > tau || sizeChange && gap > 0 {
				line.Words = append(line.Words, word)
				word = Word{}
			}
		}
		word.Chars = append(word.Chars, c)
	}
	if len(word.Chars) > 0 {
		line.Words = append(line.Words, word)
	}

	for i := range line.Words {
		setWordBBox(&line.Words[i])
	}
	setLineBBox(&line)
	return line
}

type columnBuilder struct {
	Column
	lines []Line
}

// groupColumns assigns lines to columns by overlapping horizontal
// ranges.
func (e *Extractor) groupColumns(lines []Line, rootTag blockTag) []columnBuilder {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].YMin > lines[j].YMin
	})

	// In table layout mode, lines of a multicolumn page only join a
	// column when they cover almost the same horizontal range, so that
	// table cells stay apart.
	minOverlap := 0.5
	if e.opt.TableLayout && rootTag == tagMulticolumn {
		minOverlap = 0.9
	}

	var cols []columnBuilder
lineLoop:
	for _, line := range lines {
		for i := range cols {
			c := &cols[i]
			overlap := math.Min(line.XMax, c.XMax) - math.Max(line.XMin, c.XMin)
			if overlap > minOverlap*(line.XMax-line.XMin) {
				c.lines = append(c.lines, line)
				c.XMin = math.Min(c.XMin, line.XMin)
				c.XMax = math.Max(c.XMax, line.XMax)
				continue lineLoop
			}
		}
		cols = append(cols, columnBuilder{
			Column: Column{
				XMin: line.XMin,
				XMax: line.XMax,
			},
			lines: []Line{line},
		})
	}
	return cols
}


// groupParagraphs merges consecutive lines into paragraphs.  A new
// paragraph starts when the line spacing jumps, when the font size
// changes, or when a line is outdented relative to the previous
// lines.  The order of these tests follows the reference
// implementation.
func groupParagraphs(lines []Line) []Paragraph {
	if len(lines) == 0 {
		return nil
	}

	// average line spacing within the column
	avgSpacing := 0.0
	n := 0
	for i := 1; i < len(lines); i++ {
		d := lines[i-1].YMin - lines[i].YMin
		if d > 0 {
			avgSpacing += d
			n++
		}
	}
	if n > 0 {
		avgSpacing /= float64(n)
	}

	const paragraphSpacingThreshold = 1.3
	const paragraphFontSizeDelta = 0.05

	var res []Paragraph
	par := Paragraph{Lines: []Line{lines[0]}, XMin: lines[0].XMin}
	for i := 1; i < len(lines); i++ {
		prev := &par.Lines[len(par.Lines)-1]
		line := lines[i]

		spacing := prev.YMin - line.YMin
		sameSpacing := n == 0 || spacing <= paragraphSpacingThreshold*avgSpacing
		sameSize := math.Abs(lineSize(prev)-lineSize(&line)) <=
			paragraphFontSizeDelta*math.Max(lineSize(prev), 1)
		outdented := line.XMin < par.XMin-0.5*lineSize(&line) && len(par.Lines) > 1

		if sameSpacing && sameSize && !outdented {
			par.Lines = append(par.Lines, line)
			par.XMin = math.Min(par.XMin, line.XMin)
		} else {
			setParagraphBBox(&par)
			res = append(res, par)
			par = Paragraph{Lines: []Line{line}, XMin: line.XMin}
		}
	}
	setParagraphBBox(&par)
	res = append(res, par)
	return res
}

func lineSize(l *Line) float64 {
	total, n := 0.0, 0
	for _, w := range l.Words {
		for _, c := range w.Chars {
			total += c.Size
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func setWordBBox(w *Word) {
	w.XMin, w.YMin = math.Inf(1), math.Inf(1)
	w.XMax, w.YMax = math.Inf(-1), math.Inf(-1)
	for _, c := range w.Chars {
		w.XMin = math.Min(w.XMin, c.XMin)
		w.YMin = math.Min(w.YMin, c.YMin)
		w.XMax = math.Max(w.XMax, c.XMax)
		w.YMax = math.Max(w.YMax, c.YMax)
	}
}

func setLineBBox(l *Line) {
	l.XMin, l.YMin = math.Inf(1), math.Inf(1)
	l.XMax, l.YMax = math.Inf(-1), math.Inf(-1)
	for _, w := range l.Words {
		l.XMin = math.Min(l.XMin, w.XMin)
		l.YMin = math.Min(l.YMin, w.YMin)
		l.XMax = math.Max(l.XMax, w.XMax)
		l.YMax = math.Max(l.YMax, w.YMax)
	}
}

func setParagraphBBox(p *Paragraph) {
	p.XMin, p.YMin = math.Inf(1), math.Inf(1)
	p.XMax, p.YMax = math.Inf(-1), math.Inf(-1)
	for _, l := range p.Lines {
		p.XMin = math.Min(p.XMin, l.XMin)
		p.YMin = math.Min(p.YMin, l.YMin)
		p.XMax = math.Max(p.XMax, l.XMax)
		p.YMax = math.Max(p.YMax, l.YMax)
	}
}

func setColumnBBox(c *columnBuilder) {
	c.YMin, c.YMax = math.Inf(1), math.Inf(-1)
	c.XMin, c.XMax = math.Inf(1), math.Inf(-1)
	for _, p := range c.Paragraphs {
		c.XMin = math.Min(c.XMin, p.XMin)
		c.YMin = math.Min(c.YMin, p.YMin)
		c.XMax = math.Max(c.XMax, p.XMax)
		c.YMax = math.Max(c.YMax, p.YMax)
	}
}
