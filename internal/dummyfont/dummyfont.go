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

// Package dummyfont embeds a minimal font into a PDF file, for use in
// unit tests.
package dummyfont

import (
	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/graphics"
)

// Embed writes a minimal Type1 font dictionary to the file and returns
// the corresponding resource.
func Embed(w pdf.Putter, name pdf.Name) *graphics.Res {
	ref := w.Alloc()
	dict := pdf.Dict{
		"Type":     pdf.Name("Font"),
		"Subtype":  pdf.Name("Type1"),
		"BaseFont": pdf.Name("Helvetica"),
	}
	err := w.Put(ref, dict)
	if err != nil {
		panic(err)
	}
	return &graphics.Res{
		DefName: name,
		Data:    ref,
	}
}
