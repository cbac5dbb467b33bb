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

package color

import (
	"errors"
	"fmt"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/function"
)

// ExtractSpace reads a color space from a PDF file.
func ExtractSpace(x *pdf.Extractor, obj pdf.Object) (Space, error) {
	if ref, isRef := obj.(pdf.Reference); isRef {
		err := x.Visit(ref)
		if err != nil {
			return nil, err
		}
		defer x.Done(ref)
	}

	resolved, err := pdf.Resolve(x.R, obj)
	if err != nil {
		return nil, err
	}

	switch v := resolved.(type) {
	case pdf.Name:
		return spaceByName(v)
	case pdf.Array:
		return extractSpaceArray(x, v)
	default:
		return nil, &pdf.MalformedFileError{
			Err: fmt.Errorf("expected color space but got %T", resolved),
		}
	}
}

func spaceByName(name pdf.Name) (Space, error) {
	switch name {
	case "DeviceGray", "G":
		return SpaceDeviceGray, nil
	case "DeviceRGB", "RGB":
		return SpaceDeviceRGB, nil
	case "DeviceCMYK", "CMYK":
		return SpaceDeviceCMYK, nil
	case "Pattern":
		return spacePatternColored{}, nil
	case "Indexed", "I":
		return nil, errors.New("color: missing parameters for Indexed color space")
	default:
		return nil, fmt.Errorf("color: unknown color space %q", string(name))
	}
}

func extractSpaceArray(x *pdf.Extractor, arr pdf.Array) (Space, error) {
	if len(arr) == 0 {
		return nil, errors.New("color: empty color space array")
	}
	family, err := pdf.GetName(x.R, arr[0])
	if err != nil {
		return nil, err
	}
	if len(arr) == 1 {
		return spaceByName(family)
	}

	switch family {
	case "CalGray":
		dict, err := pdf.GetDict(x.R, arr[1])
		if err != nil {
			return nil, err
		}
		wp, err := pdf.GetFloatArray(x.R, dict["WhitePoint"])
		if err != nil {
			return nil, err
		}
		bp, err := pdf.GetFloatArray(x.R, dict["BlackPoint"])
		if err != nil {
			return nil, err
		}
		gamma := 1.0
		if dict["Gamma"] != nil {
			g, err := pdf.GetNumber(x.R, dict["Gamma"])
			if err != nil {
				return nil, err
			}
			gamma = float64(g)
		}
		return CalGray(wp, bp, gamma)

	case "CalRGB":
		dict, err := pdf.GetDict(x.R, arr[1])
		if err != nil {
			return nil, err
		}
		wp, err := pdf.GetFloatArray(x.R, dict["WhitePoint"])
		if err != nil {
			return nil, err
		}
		bp, err := pdf.GetFloatArray(x.R, dict["BlackPoint"])
		if err != nil {
			return nil, err
		}
		gamma, err := pdf.GetFloatArray(x.R, dict["Gamma"])
		if err != nil {
			return nil, err
		}
		matrix, err := pdf.GetFloatArray(x.R, dict["Matrix"])
		if err != nil {
			return nil, err
		}
		return CalRGB(wp, bp, gamma, matrix)

	case "Lab":
		dict, err := pdf.GetDict(x.R, arr[1])
		if err != nil {
			return nil, err
		}
		wp, err := pdf.GetFloatArray(x.R, dict["WhitePoint"])
		if err != nil {
			return nil, err
		}
		bp, err := pdf.GetFloatArray(x.R, dict["BlackPoint"])
		if err != nil {
			return nil, err
		}
		ranges, err := pdf.GetFloatArray(x.R, dict["Range"])
		if err != nil {
			return nil, err
		}
		return Lab(wp, bp, ranges)

	case "ICCBased":
		stm, err := pdf.GetStream(x.R, arr[1])
		if err != nil {
			return nil, err
		}
		if stm == nil {
			return nil, errors.New("color: missing ICC profile stream")
		}
		profile, err := pdf.ReadAll(x.R, stm)
		if err != nil {
			return nil, err
		}
		ranges, err := pdf.GetFloatArray(x.R, stm.Dict["Range"])
		if err != nil {
			return nil, err
		}
		return ICCBased(profile, ranges)

	case "Pattern":
		base, err := ExtractSpace(x, arr[1])
		if err != nil {
			return nil, err
		}
		return spacePatternUncolored{base: base}, nil

	case "Indexed", "I":
		if len(arr) < 4 {
			return nil, errors.New("color: invalid Indexed color space")
		}
		base, err := ExtractSpace(x, arr[1])
		if err != nil {
			return nil, err
		}
		hival, err := pdf.GetInteger(x.R, arr[2])
		if err != nil {
			return nil, err
		}
		if hival < 0 || hival > 255 {
			return nil, errors.New("color: invalid hival")
		}
		lookup, err := extractLookup(x, arr[3])
		if err != nil {
			return nil, err
		}

		numChannels := base.Channels()
		need := (int(hival) + 1) * numChannels
		if len(lookup) < need {
			return nil, errors.New("color: lookup table too short")
		}
		colors := make([]Color, hival+1)
		for i := range colors {
			values := make([]float64, numChannels)
			for j := range values {
				values[j] = float64(lookup[i*numChannels+j]) / 255
			}
			col, err := makeColor(base, values)
			if err != nil {
				return nil, err
			}
			colors[i] = col
		}
		return Indexed(colors)

	case "Separation":
		if len(arr) < 4 {
			return nil, errors.New("color: invalid Separation color space")
		}
		name, err := pdf.GetName(x.R, arr[1])
		if err != nil {
			return nil, err
		}
		alt, err := ExtractSpace(x, arr[2])
		if err != nil {
			return nil, err
		}
		fn, err := function.Extract(x, arr[3])
		if err != nil {
			return nil, err
		}
		return Separation(name, alt, fn)

	case "DeviceN":
		if len(arr) < 4 {
			return nil, errors.New("color: invalid DeviceN color space")
		}
		namesObj, err := pdf.GetArray(x.R, arr[1])
		if err != nil {
			return nil, err
		}
		names := make([]pdf.Name, len(namesObj))
		for i, obj := range namesObj {
			name, err := pdf.GetName(x.R, obj)
			if err != nil {
				return nil, err
			}
			names[i] = name
		}
		alt, err := ExtractSpace(x, arr[2])
		if err != nil {
			return nil, err
		}
		fn, err := function.Extract(x, arr[3])
		if err != nil {
			return nil, err
		}
		var attr pdf.Dict
		if len(arr) > 4 {
			attr, err = pdf.GetDict(x.R, arr[4])
			if err != nil {
				return nil, err
			}
		}
		return DeviceN(names, alt, fn, attr)

	default:
		return nil, fmt.Errorf("color: unknown color space %q", string(family))
	}
}

// extractLookup reads an indexed lookup table, which can be given
// either as a string or as a stream.
func extractLookup(x *pdf.Extractor, obj pdf.Object) ([]byte, error) {
	resolved, err := pdf.Resolve(x.R, obj)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case pdf.String:
		return []byte(v), nil
	case *pdf.Stream:
		return pdf.ReadAll(x.R, v)
	default:
		return nil, errors.New("color: invalid lookup table")
	}
}

// makeColor constructs a color in the given color space from component
// values.
func makeColor(space Space, values []float64) (Color, error) {
	switch s := space.(type) {
	case spaceDeviceGray:
		return DeviceGray(values[0]), nil
	case spaceDeviceRGB:
		return DeviceRGB{values[0], values[1], values[2]}, nil
	case spaceDeviceCMYK:
		return DeviceCMYK{values[0], values[1], values[2], values[3]}, nil
	case *SpaceCalGray:
		return s.New(values[0]), nil
	case *SpaceCalRGB:
		return s.New(values[0], values[1], values[2]), nil
	case *SpaceLab:
		r := s.ranges()
		l := values[0] * 100
		a := r[0] + values[1]*(r[1]-r[0])
		b := r[2] + values[2]*(r[3]-r[2])
		return s.New(l, a, b)
	case *SpaceICCBased:
		return s.New(values)
	default:
		return nil, fmt.Errorf("color: cannot make color in %q space", space.Family())
	}
}
