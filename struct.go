// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2022  the Archivekit Authors
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
	"errors"
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/text/language"
)

// This file implements a simple codec which converts between Go structs
// and PDF dictionaries, controlled by `pdf:"..."` struct tags.  The
// following tags are supported:
//
//	optional    - the field is omitted when empty and may be missing
//	extra       - a map[string]string holding all unknown dict entries
//	allowstring - for Name fields, also accept String values on reading
//	Type=Foo    - on a blank field, adds a /Type entry when encoding; on
//	              decoding the entry is skipped and its value not checked
//
// The codec is used for the document catalog and the document information
// dictionary.

type structField struct {
	index       int
	name        Name
	optional    bool
	allowstring bool
}

type structInfo struct {
	dictType Name
	fields   []structField
	extra    int // field index of the "extra" map, or -1
}

func parseStructInfo(tp reflect.Type) *structInfo {
	info := &structInfo{extra: -1}
	for i := 0; i < tp.NumField(); i++ {
		f := tp.Field(i)
		tag := f.Tag.Get("pdf")

		if f.Name == "_" {
			if tpName, found := strings.CutPrefix(tag, "Type="); found {
				info.dictType = Name(tpName)
			}
			continue
		}
		if !f.IsExported() {
			continue
		}

		var sf structField
		sf.index = i
		sf.name = Name(f.Name)
		for _, opt := range strings.Split(tag, ",") {
			switch opt {
			case "optional":
				sf.optional = true
			case "allowstring":
				sf.allowstring = true
			case "extra":
				info.extra = i
			}
		}
		if info.extra == i {
			continue
		}
		info.fields = append(info.fields, sf)
	}
	return info
}

var (
	languageTagType = reflect.TypeOf(language.Tag{})
	objectType      = reflect.TypeOf((*Object)(nil)).Elem()
)

// AsDict converts a struct to a PDF dictionary.  The argument must be a
// pointer to a struct, or nil.
func AsDict(s interface{}) Dict {
	v := reflect.ValueOf(s)
	if !v.IsValid() || v.Kind() == reflect.Ptr && v.IsNil() {
		return nil
	}
	v = v.Elem()
	info := parseStructInfo(v.Type())

	res := Dict{}
	if info.dictType != "" {
		res["Type"] = info.dictType
	}

	for _, sf := range info.fields {
		fVal := v.Field(sf.index)
		obj, empty := encodeStructField(fVal)
		if empty {
			continue
		}
		res[sf.name] = obj
	}

	if info.extra >= 0 {
		extra, _ := v.Field(info.extra).Interface().(map[string]string)
		for key, val := range extra {
			if _, exists := res[Name(key)]; exists {
				continue
			}
			res[Name(key)] = TextString(val)
		}
	}

	return res
}

// encodeStructField converts a single struct field to a PDF object.  The
// second return value indicates that the field is empty and can be
// omitted from the dictionary.
func encodeStructField(v reflect.Value) (Object, bool) {
	switch x := v.Interface().(type) {
	case TextString:
		return x, x == ""
	case Date:
		return x, x.IsZero()
	case Version:
		s, err := x.ToString()
		if err != nil {
			return nil, true
		}
		return Name(s), false
	case Reference:
		return x, x == 0
	case Name:
		return x, x == ""
	case String:
		return x, len(x) == 0
	case Integer:
		return x, x == 0
	case Real:
		return x, x == 0
	case language.Tag:
		if x.IsRoot() || x == (language.Tag{}) {
			return nil, true
		}
		return TextString(x.String()), false
	case bool:
		return Boolean(x), !x
	case int:
		return Integer(x), x == 0
	case float64:
		return Real(x), x == 0
	}

	if v.Type().Implements(objectType) {
		obj, _ := v.Interface().(Object)
		return obj, obj == nil
	}

	return nil, true
}

// DecodeDict initialises a struct using the data from a PDF dictionary.
// The argument s must be a pointer to a struct.
//
// Missing required fields are reported as an error, but decoding
// continues so that the remaining fields are still filled in.
func DecodeDict(r Getter, s interface{}, d Dict) error {
	v := reflect.ValueOf(s).Elem()
	info := parseStructInfo(v.Type())

	seen := map[Name]bool{}
	if info.dictType != "" {
		seen["Type"] = true
	}

	var firstErr error
	report := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, sf := range info.fields {
		seen[sf.name] = true

		obj := d[sf.name]
		if obj == nil {
			if !sf.optional {
				report(&MalformedFileError{
					Err: fmt.Errorf("required field %s is missing", sf.name),
				})
			}
			continue
		}

		err := decodeStructField(r, v.Field(sf.index), obj, sf)
		if err != nil {
			report(Wrap(err, string(sf.name)))
		}
	}

	if info.extra >= 0 {
		extra := map[string]string{}
		for key, val := range d {
			if seen[key] || val == nil {
				continue
			}
			s, err := GetTextString(r, val)
			if err != nil {
				continue
			}
			extra[string(key)] = string(s)
		}
		if len(extra) > 0 {
			v.Field(info.extra).Set(reflect.ValueOf(extra))
		}
	}

	return firstErr
}

func decodeStructField(r Getter, fVal reflect.Value, obj Object, sf structField) error {
	switch fVal.Interface().(type) {
	case TextString:
		s, err := GetTextString(r, obj)
		if err != nil {
			return err
		}
		fVal.Set(reflect.ValueOf(s))
	case Date:
		d, err := decodeDate(r, obj)
		if err != nil {
			return err
		}
		fVal.Set(reflect.ValueOf(d))
	case Version:
		ver, err := decodeVersion(r, obj)
		if err != nil {
			return err
		}
		fVal.Set(reflect.ValueOf(ver))
	case Reference:
		ref, ok := obj.(Reference)
		if !ok {
			return &MalformedFileError{
				Err: fmt.Errorf("expected Reference but got %T", obj),
			}
		}
		fVal.Set(reflect.ValueOf(ref))
	case Name:
		resolved, err := Resolve(r, obj)
		if err != nil {
			return err
		}
		switch x := resolved.(type) {
		case Name:
			fVal.Set(reflect.ValueOf(x))
		case String:
			if !sf.allowstring {
				return &MalformedFileError{
					Err: fmt.Errorf("expected Name but got %T", resolved),
				}
			}
			fVal.Set(reflect.ValueOf(Name(x)))
		default:
			return &MalformedFileError{
				Err: fmt.Errorf("expected Name but got %T", resolved),
			}
		}
	case String:
		s, err := GetString(r, obj)
		if err != nil {
			return err
		}
		fVal.Set(reflect.ValueOf(s))
	case Integer:
		x, err := GetInteger(r, obj)
		if err != nil {
			return err
		}
		fVal.Set(reflect.ValueOf(x))
	case Real:
		x, err := GetNumber(r, obj)
		if err != nil {
			return err
		}
		fVal.Set(reflect.ValueOf(Real(x)))
	case language.Tag:
		s, err := GetTextString(r, obj)
		if err != nil {
			return err
		}
		tag, err := language.Parse(string(s))
		if err != nil {
			return &MalformedFileError{Err: err}
		}
		fVal.Set(reflect.ValueOf(tag))
	case bool:
		x, err := GetBoolean(r, obj)
		if err != nil {
			return err
		}
		fVal.SetBool(bool(x))
	case int:
		x, err := GetInteger(r, obj)
		if err != nil {
			return err
		}
		fVal.SetInt(int64(x))
	case float64:
		x, err := GetNumber(r, obj)
		if err != nil {
			return err
		}
		fVal.SetFloat(float64(x))
	default:
		if fVal.Type() == objectType || fVal.Type().Implements(objectType) {
			fVal.Set(reflect.ValueOf(obj))
			return nil
		}
		return &InternalError{
			Err: fmt.Errorf("unsupported struct field type %s", fVal.Type()),
		}
	}
	return nil
}

func decodeDate(r Getter, obj Object) (Date, error) {
	var zero Date
	resolved, err := Resolve(r, obj)
	if err != nil {
		return zero, err
	}
	if d, ok := resolved.(asDater); ok {
		return d.AsDate()
	}
	if d, ok := obj.(asDater); ok {
		return d.AsDate()
	}
	return zero, errNoDate
}

func decodeVersion(r Getter, obj Object) (Version, error) {
	resolved, err := Resolve(r, obj)
	if err != nil {
		return 0, err
	}

	var s string
	switch x := resolved.(type) {
	case Name:
		s = string(x)
	case String:
		s = string(x.AsTextString())
	case Real:
		s = formatPDFFloat(float64(x))
	default:
		return 0, &MalformedFileError{
			Err: fmt.Errorf("expected version but got %T", resolved),
		}
	}
	ver, err := ParseVersion(s)
	if err != nil {
		return 0, &MalformedFileError{Err: err}
	}
	return ver, nil
}

var _ = errors.New // keep the import used if the code above changes
