// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2021  the Archivekit Authors
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

// Package pdf provides support for reading and writing PDF files.
//
// This package treats PDF files as containers holding a sequence of
// objects (dictionaries, arrays, streams, and the elementary types).
// Objects are written sequentially, but can be read in any order.
//
// A [Reader] is used to read an existing PDF file:
//
//	r, err := pdf.Open("in.pdf", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//	catalog := r.GetMeta().Catalog
//	... use the catalog to locate objects in the file ...
//
// A [Writer] is used to write a new PDF file:
//
//	w, err := pdf.Create("out.pdf", pdf.V1_7, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	... add objects using w.Put() and w.OpenStream() ...
//	err = w.Close()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The subpackages implement the higher layers of a PDF renderer: the
// content stream interpreter (reader), the graphics state (graphics),
// shadings, patterns and images (shading, pattern, imagepipe), and
// text extraction with layout analysis (textlayout).
package pdf
