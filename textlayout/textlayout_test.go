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
	"strings"
	"testing"
)

// addString adds the characters of s as a row of glyphs starting at
// (x, y).
func addString(e *Extractor, s string, x, y, size float64) {
	w := 0.6 * size
	for i, r := range s {
		if r == ' ' {
			continue
		}
		x0 := x + float64(i)*w
		e.Add(Char{
			XMin: x0,
			YMin: y,
			XMax: x0 + 0.9*w,
			YMax: y + size,
			Text: string(r),
			Size: size,
		})
	}
}

func TestSingleWord(t *testing.T) {
	e := New(nil)
	addString(e, "Hello", 100, 100, 12)

	page := e.Layout()
	if len(page.Columns) != 1 {
		t.Fatalf("got %d columns, want 1", len(page.Columns))
	}
	col := page.Columns[0]
	if len(col.Paragraphs) != 1 || len(col.Paragraphs[0].Lines) != 1 {
		t.Fatalf("unexpected paragraph/line structure")
	}
	line := col.Paragraphs[0].Lines[0]
	if len(line.Words) != 1 {
		t.Fatalf("got %d words, want 1", len(line.Words))
	}
	if got := line.Words[0].Text(); got != "Hello" {
		t.Errorf("got %q, want %q", got, "Hello")
	}

	// X positions must be strictly increasing
	chars := line.Words[0].Chars
	for i := 1; i < len(chars); i++ {
		if chars[i].XMin <= chars[i-1].XMin {
			t.Errorf("char %d out of order", i)
		}
	}

	if got := strings.TrimSpace(e.Text()); got != "Hello" {
		t.Errorf("Text() = %q, want %q", got, "Hello")
	}
}

func TestWords(t *testing.T) {
	e := New(nil)
	addString(e, "Hello", 100, 100, 12)
	addString(e, "World", 160, 100, 12)

	text := strings.TrimSpace(e.Text())
	if text != "Hello World" {
		t.Errorf("got %q, want %q", text, "Hello World")
	}
}

func TestLines(t *testing.T) {
	e := New(nil)
	addString(e, "first", 100, 130, 12)
	addString(e, "second", 100, 112, 12)

	text := e.Text()
	want := "first\nsecond\n"
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}
}

func TestTwoColumns(t *testing.T) {
	e := New(nil)
	// two clusters of lines, separated by a wide gap; the right column
	// must be emitted after the whole left column
	for i := 0; i < 5; i++ {
		y := 200 - float64(i)*15
		addString(e, "left", 50, y, 10)
		addString(e, "right", 210, y, 10)
	}

	page := e.Layout()
	if len(page.Columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(page.Columns))
	}

	text := e.Text()
	leftIdx := strings.LastIndex(text, "left")
	rightIdx := strings.Index(text, "right")
	if leftIdx > rightIdx {
		t.Errorf("columns out of reading order:\n%s", text)
	}
}

func TestDedup(t *testing.T) {
	e := New(nil)
	addString(e, "A", 100, 100, 12)
	// a slightly offset copy, as produced by fake-bold rendering
	e.Add(Char{
		XMin: 100.2, YMin: 100.1, XMax: 106.2, YMax: 112.1,
		Text: "A", Size: 12,
	})

	page := e.Layout()
	count := 0
	for _, col := range page.Columns {
		for _, par := range col.Paragraphs {
			for _, line := range par.Lines {
				for _, word := range line.Words {
					count += len(word.Chars)
				}
			}
		}
	}
	if count != 1 {
		t.Errorf("got %d glyphs after dedup, want 1", count)
	}
}

func TestRotationNormalization(t *testing.T) {
	e := New(nil)
	// vertical text: boxes stacked along the Y axis with rotation 1
	for i, r := range "rotated" {
		y := 100 + float64(i)*8
		e.Add(Char{
			XMin: 100, YMin: y, XMax: 112, YMax: y + 7,
			Text: string(r), Size: 12, Rotation: 1,
		})
	}

	page := e.Layout()
	if page.Rotation != 1 {
		t.Errorf("dominant rotation = %d, want 1", page.Rotation)
	}
	if got := strings.TrimSpace(e.Text()); got != "rotated" {
		t.Errorf("got %q, want %q", got, "rotated")
	}
}

func TestParagraphs(t *testing.T) {
	e := New(nil)
	// two paragraphs separated by a double line spacing
	addString(e, "one", 100, 200, 10)
	addString(e, "two", 100, 188, 10)
	addString(e, "three", 100, 176, 10)
	addString(e, "four", 100, 140, 10)
	addString(e, "five", 100, 128, 10)

	page := e.Layout()
	if len(page.Columns) != 1 {
		t.Fatalf("got %d columns, want 1", len(page.Columns))
	}
	if got := len(page.Columns[0].Paragraphs); got != 2 {
		t.Fatalf("got %d paragraphs, want 2", got)
	}
}

func TestBBoxNesting(t *testing.T) {
	e := New(nil)
	addString(e, "alpha", 100, 130, 12)
	addString(e, "beta", 100, 112, 12)

	page := e.Layout()
	for _, col := range page.Columns {
		for _, par := range col.Paragraphs {
			if par.XMin < col.XMin || par.XMax > col.XMax ||
				par.YMin < col.YMin || par.YMax > col.YMax {
				t.Errorf("paragraph bbox outside column bbox")
			}
			for _, line := range par.Lines {
				if line.XMin < par.XMin || line.XMax > par.XMax {
					t.Errorf("line bbox outside paragraph bbox")
				}
			}
		}
	}
}

func TestActualText(t *testing.T) {
	e := New(nil)
	e.BeginActualText("fi")
	// the visible glyph is a ligature with bogus text
	e.Add(Char{XMin: 100, YMin: 100, XMax: 112, YMax: 112, Text: "?", Size: 12})
	e.EndActualText()

	if got := strings.TrimSpace(e.Text()); got != "fi" {
		t.Errorf("got %q, want %q", got, "fi")
	}
}

func TestSearch(t *testing.T) {
	e := New(nil)
	addString(e, "Hello", 100, 100, 12)
	addString(e, "World", 160, 100, 12)

	hits := e.Find("world", nil)
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].XMin < 159 || hits[0].XMin > 161 {
		t.Errorf("unexpected hit position %g", hits[0].XMin)
	}

	if hits := e.Find("world", &SearchOptions{CaseSensitive: true}); len(hits) != 0 {
		t.Errorf("case-sensitive search found %d hits, want 0", len(hits))
	}
}

func TestClippedReinsertion(t *testing.T) {
	e := New(nil)
	addString(e, "cut", 100, 100, 12)

	// a fully clipped glyph just right of the line
	e.Add(Char{
		XMin: 122, YMin: 100, XMax: 128, YMax: 112,
		Text: "!", Size: 12, Clipped: true,
	})
	// a clipped glyph far away must be dropped
	e.Add(Char{
		XMin: 400, YMin: 300, XMax: 406, YMax: 312,
		Text: "?", Size: 12, Clipped: true,
	})

	text := strings.TrimSpace(e.Text())
	if text != "cut!" {
		t.Errorf("got %q, want %q", text, "cut!")
	}
	if strings.Contains(text, "?") {
		t.Error("distant clipped glyph not dropped")
	}
}

func TestClippedDiscard(t *testing.T) {
	e := New(&Options{DiscardClipped: true})
	addString(e, "cut", 100, 100, 12)
	e.Add(Char{
		XMin: 122, YMin: 100, XMax: 128, YMax: 112,
		Text: "!", Size: 12, Clipped: true,
	})

	if got := strings.TrimSpace(e.Text()); got != "cut" {
		t.Errorf("got %q, want %q", got, "cut")
	}
}

func TestPhysicalLayout(t *testing.T) {
	e := New(&Options{FixedPitch: 7.2})
	addString(e, "one", 100, 130, 12)
	addString(e, "two", 136, 112, 12) // indented by five characters

	text, height := e.TextPhysical()
	if height != 2 {
		t.Errorf("height = %d, want 2", height)
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0] != "one" {
		t.Errorf("line 1 = %q, want %q", lines[0], "one")
	}
	if lines[1] != "     two" {
		t.Errorf("line 2 = %q, want %q", lines[1], "     two")
	}
}

func TestDecorations(t *testing.T) {
	e := New(nil)
	addString(e, "plain", 100, 100, 12)
	addString(e, "marked", 200, 100, 12)

	// an underline bar along the baseline of "marked"
	e.AddUnderline(Rect{XMin: 198, YMin: 98, XMax: 245, YMax: 99.5})
	// a link region covering "marked"
	e.AddLink(Rect{XMin: 198, YMin: 95, XMax: 245, YMax: 115}, "https://example.com")

	page := e.Layout()
	var plain, marked *Word
	forEachWord(page, func(w *Word) {
		switch w.Text() {
		case "plain":
			tmp := *w
			plain = &tmp
		case "marked":
			tmp := *w
			marked = &tmp
		}
	})
	if plain == nil || marked == nil {
		t.Fatal("words not found")
	}
	if plain.Underlined || plain.LinkURI != "" {
		t.Error("decorations attached to the wrong word")
	}
	if !marked.Underlined {
		t.Error("underline not attached")
	}
	if marked.LinkURI != "https://example.com" {
		t.Errorf("link = %q", marked.LinkURI)
	}
}

func TestTextRaw(t *testing.T) {
	e := New(nil)
	// raw order is the order of arrival, not reading order
	addString(e, "b", 110, 100, 12)
	addString(e, "a", 100, 100, 12)

	if got := e.TextRaw(); got != "ba" {
		t.Errorf("TextRaw = %q, want %q", got, "ba")
	}
	if got := strings.TrimSpace(e.Text()); got != "ab" {
		t.Errorf("Text = %q, want %q", got, "ab")
	}
}

func TestBlockTags(t *testing.T) {
	var chars []Char
	add := func(s string, x, y float64) {
		for i, r := range s {
			x0 := x + float64(i)*7.2
			chars = append(chars, Char{
				XMin: x0, YMin: y, XMax: x0 + 6.5, YMax: y + 12,
				Text: string(r), Size: 12,
			})
		}
	}

	// a single line is a leaf
	chars = nil
	add("one", 100, 100)
	root := split(chars, 0)
	root.classify()
	if root.tag != tagLine {
		t.Errorf("single line tagged %v, want tagLine", root.tag)
	}

	// two stacked lines form a column
	chars = nil
	add("one", 100, 130)
	add("two", 100, 112)
	root = split(chars, 0)
	root.classify()
	if root.tag != tagColumn {
		t.Errorf("stacked lines tagged %v, want tagColumn", root.tag)
	}

	// two side-by-side stacks form a multicolumn region
	chars = nil
	for i := 0; i < 3; i++ {
		y := 130 - float64(i)*15
		add("left", 50, y)
		add("right", 250, y)
	}
	root = split(chars, 0)
	root.classify()
	if root.tag != tagMulticolumn {
		t.Errorf("side-by-side stacks tagged %v, want tagMulticolumn", root.tag)
	}
}
