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

package pdf

import "errors"

// Extractor reads complex data structures from a PDF file.  It keeps
// track of the indirect objects currently being extracted, so that
// reference loops in malformed files are detected instead of causing
// unbounded recursion.
type Extractor struct {
	// R is the PDF file the objects are read from.
	R Getter

	active map[Reference]bool
}

// NewExtractor creates a new Extractor for the given file.
func NewExtractor(r Getter) *Extractor {
	return &Extractor{
		R:      r,
		active: map[Reference]bool{},
	}
}

// Visit marks an indirect object as being extracted.  An error is
// returned if the object is already being extracted, i.e. if the file
// contains a reference loop.  Every successful call to Visit must be
// paired with a call to [Extractor.Done].
func (x *Extractor) Visit(ref Reference) error {
	if x.active[ref] {
		return &MalformedFileError{
			Err: errors.New("reference loop"),
			Loc: []string{"object " + ref.String()},
		}
	}
	x.active[ref] = true
	return nil
}

// Done marks an indirect object as completely extracted.
func (x *Extractor) Done(ref Reference) {
	delete(x.active, ref)
}
