// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2024  the Archivekit Authors
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

package font

import (
	"testing"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/internal/debug/memfile"
)

func TestSimpleFont(t *testing.T) {
	w, _ := memfile.NewPDFWriter(pdf.V1_7, nil)

	ref := w.Alloc()
	err := w.Put(ref, pdf.Dict{
		"Type":      pdf.Name("Font"),
		"Subtype":   pdf.Name("Type1"),
		"BaseFont":  pdf.Name("Helvetica"),
		"FirstChar": pdf.Integer(65),
		"Widths":    pdf.Array{pdf.Integer(600), pdf.Integer(700)},
	})
	if err != nil {
		t.Fatal(err)
	}

	F, err := Extract(w, ref, "F1")
	if err != nil {
		t.Fatal(err)
	}
	if F.DefaultName() != "F1" {
		t.Errorf("DefaultName = %q, want F1", F.DefaultName())
	}
	if F.WritingMode() != 0 {
		t.Errorf("WritingMode = %d, want 0", F.WritingMode())
	}

	var chars []Char
	F.Decode(pdf.String("AB "), func(c Char) bool {
		chars = append(chars, c)
		return true
	})
	if len(chars) != 3 {
		t.Fatalf("got %d chars, want 3", len(chars))
	}
	if chars[0].Text != "A" || chars[0].Width != 600 {
		t.Errorf("char 0 = %+v", chars[0])
	}
	if chars[1].Text != "B" || chars[1].Width != 700 {
		t.Errorf("char 1 = %+v", chars[1])
	}
	if !chars[2].IsSpace {
		t.Errorf("char 2 not detected as space")
	}
}

func TestEncodingDifferences(t *testing.T) {
	w, _ := memfile.NewPDFWriter(pdf.V1_7, nil)

	ref := w.Alloc()
	err := w.Put(ref, pdf.Dict{
		"Type":    pdf.Name("Font"),
		"Subtype": pdf.Name("Type1"),
		"Encoding": pdf.Dict{
			"Type": pdf.Name("Encoding"),
			"Differences": pdf.Array{
				pdf.Integer(200),
				pdf.Name("adieresis"),
				pdf.Name("germandbls"),
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	F, err := Extract(w, ref, "F1")
	if err != nil {
		t.Fatal(err)
	}

	var text string
	F.Decode(pdf.String{200, 201}, func(c Char) bool {
		text += c.Text
		return true
	})
	if text != "äß" {
		t.Errorf("got %q, want %q", text, "äß")
	}
}

func TestToUnicodeLookup(t *testing.T) {
	cmap := `
/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
1 begincodespacerange
<00> <ff>
endcodespacerange
2 beginbfchar
<41> <0041>
<42> <00480069>
endbfchar
1 beginbfrange
<61> <63> <0078>
endbfrange
endcmap
end
end
`
	tu, err := ParseToUnicode([]byte(cmap))
	if err != nil {
		t.Fatal(err)
	}

	if text, _ := tu.Lookup(0x41); text != "A" {
		t.Errorf("Lookup(0x41) = %q, want A", text)
	}
	if text, _ := tu.Lookup(0x42); text != "Hi" {
		t.Errorf("Lookup(0x42) = %q, want Hi", text)
	}
	// ranges increment the final code point
	if text, _ := tu.Lookup(0x62); text != "y" {
		t.Errorf("Lookup(0x62) = %q, want y", text)
	}
	if _, ok := tu.Lookup(0x99); ok {
		t.Error("unexpected mapping for unmapped code")
	}
}

func TestCompositeFont(t *testing.T) {
	w, _ := memfile.NewPDFWriter(pdf.V1_7, nil)

	ref := w.Alloc()
	err := w.Put(ref, pdf.Dict{
		"Type":     pdf.Name("Font"),
		"Subtype":  pdf.Name("Type0"),
		"Encoding": pdf.Name("Identity-H"),
		"DescendantFonts": pdf.Array{pdf.Dict{
			"Type":     pdf.Name("Font"),
			"Subtype":  pdf.Name("CIDFontType2"),
			"DW":       pdf.Integer(1000),
			"W":        pdf.Array{pdf.Integer(3), pdf.Array{pdf.Integer(500), pdf.Integer(600)}},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	F, err := Extract(w, ref, "F1")
	if err != nil {
		t.Fatal(err)
	}
	if !F.Composite {
		t.Fatal("font not detected as composite")
	}

	var chars []Char
	F.Decode(pdf.String{0, 3, 0, 4, 0, 9}, func(c Char) bool {
		chars = append(chars, c)
		return true
	})
	if len(chars) != 3 {
		t.Fatalf("got %d chars, want 3", len(chars))
	}
	if chars[0].Width != 500 || chars[1].Width != 600 || chars[2].Width != 1000 {
		t.Errorf("widths = %g, %g, %g", chars[0].Width, chars[1].Width, chars[2].Width)
	}
}
