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

package imagepipe

import (
	"testing"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/internal/debug/memfile"
)

func TestInlineImage(t *testing.T) {
	w, _ := memfile.NewPDFWriter(pdf.V1_7, nil)
	x := pdf.NewExtractor(w)

	dict := pdf.Dict{
		"W":   pdf.Integer(2),
		"H":   pdf.Integer(2),
		"BPC": pdf.Integer(8),
		"CS":  pdf.Name("G"),
	}
	data := []byte{0, 64, 128, 255}

	img, err := Extract(x, dict, data)
	if err != nil {
		t.Fatal(err)
	}
	if img.Kind != KindPlain {
		t.Errorf("Kind = %v, want KindPlain", img.Kind)
	}
	if img.Width != 2 || img.Height != 2 {
		t.Errorf("size = %dx%d, want 2x2", img.Width, img.Height)
	}

	rows, err := img.Rows()
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	row1 := rows.Next()
	if row1 == nil || row1[0] != 0 || row1[1] != 64 {
		t.Errorf("row 1 = %v, want [0 64]", row1)
	}
	row2 := rows.Next()
	if row2 == nil || row2[0] != 128 || row2[1] != 255 {
		t.Errorf("row 2 = %v, want [128 255]", row2)
	}
	if rows.Next() != nil {
		t.Error("unexpected extra row")
	}
}

func TestSubByteSamples(t *testing.T) {
	w, _ := memfile.NewPDFWriter(pdf.V1_7, nil)
	x := pdf.NewExtractor(w)

	dict := pdf.Dict{
		"W":   pdf.Integer(4),
		"H":   pdf.Integer(1),
		"BPC": pdf.Integer(2),
		"CS":  pdf.Name("G"),
	}
	data := []byte{0b11_10_01_00}

	img, err := Extract(x, dict, data)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := img.Rows()
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	row := rows.Next()
	want := []uint16{3, 2, 1, 0}
	for i, v := range want {
		if row[i] != v {
			t.Errorf("sample %d = %d, want %d", i, row[i], v)
		}
	}
}

func TestImageMask(t *testing.T) {
	w, _ := memfile.NewPDFWriter(pdf.V1_7, nil)
	x := pdf.NewExtractor(w)

	dict := pdf.Dict{
		"W":  pdf.Integer(8),
		"H":  pdf.Integer(1),
		"IM": pdf.Boolean(true),
	}
	img, err := Extract(x, dict, []byte{0xF0})
	if err != nil {
		t.Fatal(err)
	}
	if img.Kind != KindImageMask {
		t.Errorf("Kind = %v, want KindImageMask", img.Kind)
	}
	if img.BitsPerComponent != 1 {
		t.Errorf("BitsPerComponent = %d, want 1", img.BitsPerComponent)
	}
}

func TestColorKeyMask(t *testing.T) {
	w, _ := memfile.NewPDFWriter(pdf.V1_7, nil)
	x := pdf.NewExtractor(w)

	ref := w.Alloc()
	stream, err := w.OpenStream(ref, pdf.Dict{
		"Type":             pdf.Name("XObject"),
		"Subtype":          pdf.Name("Image"),
		"Width":            pdf.Integer(1),
		"Height":           pdf.Integer(1),
		"BitsPerComponent": pdf.Integer(8),
		"ColorSpace":       pdf.Name("DeviceRGB"),
		"Mask": pdf.Array{
			pdf.Integer(250), pdf.Integer(255),
			pdf.Integer(250), pdf.Integer(255),
			pdf.Integer(250), pdf.Integer(255),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	stream.Write([]byte{255, 255, 255})
	err = stream.Close()
	if err != nil {
		t.Fatal(err)
	}

	img, err := Extract(x, ref, nil)
	if err != nil {
		t.Fatal(err)
	}
	if img.Kind != KindColorKey {
		t.Errorf("Kind = %v, want KindColorKey", img.Kind)
	}
	if len(img.MaskColors) != 6 || img.MaskColors[0] != 250 {
		t.Errorf("MaskColors = %v", img.MaskColors)
	}
	if img.NumComponents() != 3 {
		t.Errorf("NumComponents = %d, want 3", img.NumComponents())
	}
}
