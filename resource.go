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

package pdf

import "errors"

// Embedder represents a resource which can be embedded in a PDF file,
// e.g. a font, a color space, or a function.
type Embedder interface {
	// Embed writes the resource to the PDF file and returns the object
	// which can be used to refer to it, usually a [Reference].
	Embed(rm *ResourceManager) (Native, error)
}

// ResourceManager embeds resources in a PDF file.  Each resource is only
// embedded once, even if it is used in several places.
//
// A ResourceManager is not safe for concurrent use.
type ResourceManager struct {
	// Out is the PDF file the resources are embedded into.
	Out *Writer

	embedded map[Embedder]Native
	closed   bool
}

// NewResourceManager creates a new ResourceManager for the given writer.
func NewResourceManager(w *Writer) *ResourceManager {
	return &ResourceManager{
		Out:      w,
		embedded: map[Embedder]Native{},
	}
}

// Embed embeds a resource in the PDF file.  If the resource has been
// embedded before, the stored object is returned instead.
func (rm *ResourceManager) Embed(r Embedder) (Native, error) {
	if obj, seen := rm.embedded[r]; seen {
		return obj, nil
	}
	if rm.closed {
		return nil, errors.New("resource manager is closed")
	}

	obj, err := r.Embed(rm)
	if err != nil {
		return nil, err
	}
	rm.embedded[r] = obj
	return obj, nil
}

// Close marks the resource manager as closed.  No new resources can be
// embedded after Close has been called.
func (rm *ResourceManager) Close() error {
	rm.closed = true
	return nil
}
