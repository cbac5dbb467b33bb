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

	"seehuhn.de/go/icc"

	"github.com/archivekit/pdfcore"
)

// The built-in sRGB profiles.
var (
	sRGBv2 = icc.SRGBv2Profile
	sRGBv4 = icc.SRGBv4Profile
)

// SpaceICCBased is an ICC-based color space.
type SpaceICCBased struct {
	// N is the number of color components.
	N int

	// Ranges gives the valid range for each component, as pairs of
	// values.
	Ranges []float64

	profile []byte
}

// ICCBased creates a new ICC-based color space from an ICC color
// profile.  If ranges is nil, all components use the range from 0 to 1.
func ICCBased(profile []byte, ranges []float64) (*SpaceICCBased, error) {
	n, err := iccNumComponents(profile)
	if err != nil {
		return nil, err
	}
	if ranges == nil {
		ranges = make([]float64, 0, 2*n)
		for i := 0; i < n; i++ {
			ranges = append(ranges, 0, 1)
		}
	} else if len(ranges) != 2*n {
		return nil, errors.New("color: invalid ranges")
	}
	return &SpaceICCBased{
		N:       n,
		Ranges:  ranges,
		profile: profile,
	}, nil
}

// iccNumComponents reads the number of color components from the header
// of an ICC profile.
func iccNumComponents(profile []byte) (int, error) {
	if len(profile) < 128 {
		return 0, errors.New("color: ICC profile too short")
	}
	colorSpace := string(profile[16:20])
	switch colorSpace {
	case "GRAY":
		return 1, nil
	case "RGB ", "Lab ", "XYZ ":
		return 3, nil
	case "CMYK":
		return 4, nil
	default:
		return 0, fmt.Errorf("color: unsupported ICC color space %q", colorSpace)
	}
}

// Family implements the [Space] interface.
func (s *SpaceICCBased) Family() pdf.Name { return "ICCBased" }

// Channels implements the [Space] interface.
func (s *SpaceICCBased) Channels() int { return s.N }

// New returns a color in this color space.
func (s *SpaceICCBased) New(values []float64) (Color, error) {
	if len(values) != s.N {
		return nil, errors.New("color: wrong number of components")
	}
	for i, x := range values {
		if x < s.Ranges[2*i] || x > s.Ranges[2*i+1] {
			return nil, errors.New("color: component value out of range")
		}
	}
	return colorICCBased{Space: s, Values: values}, nil
}

// isDefaultRanges reports whether all component ranges are [0, 1].
func (s *SpaceICCBased) isDefaultRanges() bool {
	for i := 0; i < s.N; i++ {
		if s.Ranges[2*i] != 0 || s.Ranges[2*i+1] != 1 {
			return false
		}
	}
	return true
}

// Embed implements the [pdf.Embedder] interface.
func (s *SpaceICCBased) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	dict := pdf.Dict{
		"N": pdf.Integer(s.N),
	}
	if !s.isDefaultRanges() {
		dict["Range"] = floatArray(s.Ranges)
	}

	streamRef := rm.Out.Alloc()
	w, err := rm.Out.OpenStream(streamRef, dict, &pdf.FilterCompress{})
	if err != nil {
		return nil, err
	}
	_, err = w.Write(s.profile)
	if err != nil {
		return nil, err
	}
	err = w.Close()
	if err != nil {
		return nil, err
	}

	ref := rm.Out.Alloc()
	err = rm.Out.Put(ref, pdf.Array{pdf.Name("ICCBased"), streamRef})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// spaceSRGB is the sRGB color space, an ICCBased color space using one
// of the built-in sRGB profiles.
type spaceSRGB struct{}

// Family implements the [Space] interface.
func (s spaceSRGB) Family() pdf.Name { return "ICCBased" }

// Channels implements the [Space] interface.
func (s spaceSRGB) Channels() int { return 3 }

// Embed implements the [pdf.Embedder] interface.
func (s spaceSRGB) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	space, err := ICCBased(sRGBv2, nil)
	if err != nil {
		return nil, err
	}
	return rm.Embed(space)
}
