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

import (
	"bytes"
	"io"
)

// A Copier copies objects from one PDF file to another, allocating new
// object numbers in the target file as needed.  Every indirect object
// is copied at most once; repeated references resolve to the same copy,
// so that shared resources stay shared and reference cycles terminate.
type Copier struct {
	r Getter
	w *Writer

	// copied maps references in the source file to the corresponding
	// references in the target file.
	copied map[Reference]Reference
}

// NewCopier creates a new Copier which copies objects from r to w.
func NewCopier(w *Writer, r Getter) *Copier {
	return &Copier{
		r:      r,
		w:      w,
		copied: make(map[Reference]Reference),
	}
}

// Copy copies an object, replacing all references inside it with
// references valid in the target file.  The returned object has the
// same type as the input.
func (c *Copier) Copy(obj Native) (Native, error) {
	switch x := obj.(type) {
	case Reference:
		return c.CopyReference(x)
	case Dict:
		return c.CopyDict(x)
	case Array:
		return c.CopyArray(x)
	case *Stream:
		dict, err := c.CopyDict(x.Dict)
		if err != nil {
			return nil, err
		}
		// The stream data is copied into memory, so that the copy
		// stays valid after the source file is closed.
		var body []byte
		if x.R != nil {
			if ss, ok := x.R.(io.Seeker); ok {
				_, err = ss.Seek(0, io.SeekStart)
				if err != nil {
					return nil, err
				}
			}
			body, err = io.ReadAll(x.R)
			if err != nil {
				return nil, err
			}
		}
		return &Stream{
			Dict: dict,
			R:    bytes.NewReader(body),
		}, nil
	default:
		return obj, nil
	}
}

// CopyDict copies a dictionary.
func (c *Copier) CopyDict(obj Dict) (Dict, error) {
	res := make(Dict, len(obj))
	for key, val := range obj {
		if val == nil {
			continue
		}
		repl, err := c.Copy(val.AsPDF(c.w.GetOptions()))
		if err != nil {
			return nil, err
		}
		res[key] = repl
	}
	return res, nil
}

// CopyArray copies an array.
func (c *Copier) CopyArray(obj Array) (Array, error) {
	res := make(Array, len(obj))
	for i, val := range obj {
		if val == nil {
			continue
		}
		repl, err := c.Copy(val.AsPDF(c.w.GetOptions()))
		if err != nil {
			return nil, err
		}
		res[i] = repl
	}
	return res, nil
}

// CopyReference copies the indirect object behind a reference and
// returns the reference in the target file.  Chains of indirect
// references are flattened: the returned reference always points to a
// direct object.
func (c *Copier) CopyReference(obj Reference) (Reference, error) {
	if newRef, done := c.copied[obj]; done {
		return newRef, nil
	}

	// The translation entry must exist before the object contents are
	// copied, so that self-referential objects do not recurse forever.
	newRef := c.w.Alloc()
	c.copied[obj] = newRef

	val, err := Resolve(c.r, obj)
	if err != nil {
		return 0, err
	}
	repl, err := c.Copy(val)
	if err != nil {
		return 0, err
	}
	err = c.w.Put(newRef, repl)
	if err != nil {
		return 0, err
	}
	return newRef, nil
}

// Redirect maps a reference in the source file to an already existing
// object in the target file, overriding the copy mechanism.
func (c *Copier) Redirect(origRef, newRef Reference) {
	c.copied[origRef] = newRef
}
