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

package pdf

import "errors"

// Resource represents a named resource in a PDF content stream, e.g. a
// font or an image.
type Resource interface {
	// DefaultName returns the name under which the resource prefers to
	// be known in the resource dictionary.  The empty name indicates
	// that any name can be used.
	DefaultName() Name

	// PDFObject returns the PDF object representing the resource,
	// usually a [Reference].
	PDFObject() Object
}

// Resources describes a PDF resource dictionary.  See section 7.8.3 of
// ISO 32000-2:2020 for details.
type Resources struct {
	// ExtGState maps resource names to graphics state parameter
	// dictionaries.
	ExtGState map[Name]Object `pdf:"optional"`

	// ColorSpace maps resource names to color spaces.
	ColorSpace map[Name]Object `pdf:"optional"`

	// Pattern maps resource names to pattern objects.
	Pattern map[Name]Object `pdf:"optional"`

	// Shading maps resource names to shading dictionaries.
	Shading map[Name]Object `pdf:"optional"`

	// XObject maps resource names to external objects.
	XObject map[Name]Object `pdf:"optional"`

	// Font maps resource names to font dictionaries.
	Font map[Name]Object `pdf:"optional"`

	// ProcSet holds the predefined procedure set names (deprecated).
	ProcSet Array `pdf:"optional"`

	// Properties maps resource names to property list dictionaries,
	// for use with the BDC and DP operators.
	Properties map[Name]Object `pdf:"optional"`
}

// AsDict returns the PDF dictionary corresponding to the resources.
func (r *Resources) AsDict() Dict {
	if r == nil {
		return nil
	}
	res := Dict{}
	addMap := func(key Name, m map[Name]Object) {
		if len(m) == 0 {
			return
		}
		sub := make(Dict, len(m))
		for name, obj := range m {
			sub[name] = obj
		}
		res[key] = sub
	}
	addMap("ExtGState", r.ExtGState)
	addMap("ColorSpace", r.ColorSpace)
	addMap("Pattern", r.Pattern)
	addMap("Shading", r.Shading)
	addMap("XObject", r.XObject)
	addMap("Font", r.Font)
	addMap("Properties", r.Properties)
	if len(r.ProcSet) > 0 {
		res["ProcSet"] = r.ProcSet
	}
	return res
}

// ExtractResources reads a resource dictionary from a PDF file.
func ExtractResources(r Getter, obj Object) (*Resources, error) {
	dict, err := GetDict(r, obj)
	if err != nil {
		return nil, err
	}

	res := &Resources{}
	readMap := func(key Name) (map[Name]Object, error) {
		sub, err := GetDict(r, dict[key])
		if err != nil || sub == nil {
			return nil, err
		}
		m := make(map[Name]Object, len(sub))
		for name, obj := range sub {
			m[name] = obj
		}
		return m, nil
	}

	if res.ExtGState, err = readMap("ExtGState"); err != nil {
		return nil, err
	}
	if res.ColorSpace, err = readMap("ColorSpace"); err != nil {
		return nil, err
	}
	if res.Pattern, err = readMap("Pattern"); err != nil {
		return nil, err
	}
	if res.Shading, err = readMap("Shading"); err != nil {
		return nil, err
	}
	if res.XObject, err = readMap("XObject"); err != nil {
		return nil, err
	}
	if res.Font, err = readMap("Font"); err != nil {
		return nil, err
	}
	if res.Properties, err = readMap("Properties"); err != nil {
		return nil, err
	}
	res.ProcSet, err = GetArray(r, dict["ProcSet"])
	if err != nil {
		return nil, err
	}
	return res, nil
}

// IsMalformed reports whether an error is a [MalformedFileError].
func IsMalformed(err error) bool {
	var malformed *MalformedFileError
	return errors.As(err, &malformed)
}
