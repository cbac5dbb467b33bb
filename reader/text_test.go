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

package reader

import (
	"strings"
	"testing"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/internal/debug/memfile"
)

// embedTestFont writes a simple font with fixed widths to the file.
func embedTestFont(w *pdf.Writer) pdf.Reference {
	ref := w.Alloc()
	widths := make(pdf.Array, 95)
	for i := range widths {
		widths[i] = pdf.Integer(500)
	}
	err := w.Put(ref, pdf.Dict{
		"Type":      pdf.Name("Font"),
		"Subtype":   pdf.Name("Type1"),
		"BaseFont":  pdf.Name("Helvetica"),
		"FirstChar": pdf.Integer(32),
		"Widths":    widths,
	})
	if err != nil {
		panic(err)
	}
	return ref
}

func TestShowText(t *testing.T) {
	w, _ := memfile.NewPDFWriter(pdf.V1_7, nil)
	F := embedTestFont(w)

	r := New(w, nil)
	r.Resources = &pdf.Resources{
		Font: map[pdf.Name]pdf.Object{"F1": F},
	}

	var glyphs []Glyph
	var text []string
	r.DrawGlyph = func(g Glyph) error {
		glyphs = append(glyphs, g)
		return nil
	}
	r.TextEvent = func(s string) error {
		text = append(text, s)
		return nil
	}

	content := "q 1 0 0 1 72 72 cm /F1 12 Tf BT 100 100 Td (Hello) Tj ET Q"
	err := r.ParseContentStream(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(text, ""); got != "Hello" {
		t.Errorf("text = %q, want Hello", got)
	}
	if len(glyphs) != 5 {
		t.Fatalf("got %d glyphs, want 5", len(glyphs))
	}

	// X positions strictly increasing, Y constant, size 12
	for i, g := range glyphs {
		if i > 0 {
			if g.X <= glyphs[i-1].X {
				t.Errorf("glyph %d out of order", i)
			}
			if g.Y != glyphs[i-1].Y {
				t.Errorf("glyph %d not on the baseline", i)
			}
		}
		if g.Size != 12 {
			t.Errorf("glyph %d has size %g, want 12", i, g.Size)
		}
	}

	// the first glyph starts at (100+72, 100+72)
	if glyphs[0].X != 172 || glyphs[0].Y != 172 {
		t.Errorf("first glyph at (%g, %g), want (172, 172)", glyphs[0].X, glyphs[0].Y)
	}

	// each advance is 500/1000 * 12 = 6
	if d := glyphs[1].X - glyphs[0].X; d != 6 {
		t.Errorf("glyph advance = %g, want 6", d)
	}
}

func TestStateRestoredAfterQ(t *testing.T) {
	w, _ := memfile.NewPDFWriter(pdf.V1_7, nil)
	r := New(w, nil)

	content := "2 w q 5 w Q"
	err := r.ParseContentStream(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	if r.LineWidth != 2 {
		t.Errorf("LineWidth = %g, want 2", r.LineWidth)
	}
}

func TestAbort(t *testing.T) {
	w, _ := memfile.NewPDFWriter(pdf.V1_7, nil)
	r := New(w, nil)

	var count int
	r.EveryOp = func(op string, args []pdf.Object) error {
		count++
		return nil
	}
	r.AbortCheck = func() bool { return count > 15 }

	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("1 w ")
	}
	err := r.ParseContentStream(strings.NewReader(sb.String()))
	if err != ErrAborted {
		t.Fatalf("got %v, want ErrAborted", err)
	}
	if count > 30 {
		t.Errorf("processing continued after abort (%d ops)", count)
	}
}

func TestInlineImageConsumed(t *testing.T) {
	w, _ := memfile.NewPDFWriter(pdf.V1_7, nil)
	r := New(w, nil)

	var gotDict pdf.Dict
	var gotData []byte
	r.DrawImage = func(obj pdf.Object, data []byte) error {
		gotDict, _ = obj.(pdf.Dict)
		gotData = data
		return nil
	}

	// the binary image data must not confuse the scanner; the
	// following "w" operator must still be seen
	var lineWidthSeen bool
	r.EveryOp = func(op string, args []pdf.Object) error {
		if op == "w" {
			lineWidthSeen = true
		}
		return nil
	}

	content := "BI /W 2 /H 2 /BPC 8 /CS /G ID \x00\x41\x80\xff EI 3 w"
	err := r.ParseContentStream(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}

	if gotDict == nil {
		t.Fatal("inline image not reported")
	}
	if gotDict["W"] != pdf.Integer(2) {
		t.Errorf("W = %v, want 2", gotDict["W"])
	}
	if string(gotData) != "\x00\x41\x80\xff" {
		t.Errorf("data = % x", gotData)
	}
	if !lineWidthSeen {
		t.Error("scanner lost sync after inline image")
	}
}
