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

// Package memfile provides an in-memory PDF writer for use in unit
// tests.
package memfile

import (
	"errors"
	"io"

	"github.com/archivekit/pdfcore"
)

// File is an in-memory file which implements io.Writer and
// io.WriteSeeker.  The data written so far can be inspected via the
// Data field.
type File struct {
	Data   []byte
	offset int64
}

// Write implements the io.Writer interface.
func (f *File) Write(p []byte) (int, error) {
	end := f.offset + int64(len(p))
	for int64(len(f.Data)) < end {
		f.Data = append(f.Data, 0)
	}
	copy(f.Data[f.offset:end], p)
	f.offset = end
	return len(p), nil
}

// Seek implements the io.Seeker interface.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = f.offset + offset
	case io.SeekEnd:
		pos = int64(len(f.Data)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if pos < 0 {
		return 0, errors.New("invalid offset")
	}
	f.offset = pos
	return pos, nil
}

// New creates a new, empty File.
func New() *File {
	return &File{}
}

// NewPDFWriter creates a PDF writer which writes to an in-memory file.
// The document catalog is initialised with a dummy page tree, so that
// the writer can be closed without adding any pages.
func NewPDFWriter(v pdf.Version, opt *pdf.WriterOptions) (*pdf.Writer, *File) {
	f := New()
	w, err := pdf.NewWriter(f, v, opt)
	if err != nil {
		panic(err)
	}
	w.GetMeta().Catalog.Pages = w.Alloc()
	return w, f
}

// AddBlankPage writes a minimal page tree with one empty page to the
// file.
func AddBlankPage(w *pdf.Writer) error {
	pageRef := w.Alloc()
	pagesRef := w.GetMeta().Catalog.Pages
	if pagesRef == 0 {
		pagesRef = w.Alloc()
		w.GetMeta().Catalog.Pages = pagesRef
	}
	err := w.Put(pageRef, pdf.Dict{
		"Type":     pdf.Name("Page"),
		"Parent":   pagesRef,
		"MediaBox": &pdf.Rectangle{URx: 612, URy: 792},
	})
	if err != nil {
		return err
	}
	return w.Put(pagesRef, pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Kids":  pdf.Array{pageRef},
		"Count": pdf.Integer(1),
	})
}
