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
	"reflect"

	"github.com/archivekit/pdfcore"
)

// Space represents a PDF color space.
type Space interface {
	pdf.Embedder

	// Family returns the name of the color space family.
	Family() pdf.Name

	// Channels returns the number of color components.
	Channels() int
}

// SpacesEqual reports whether two color spaces are equal.
func SpacesEqual(a, b Space) bool {
	return reflect.DeepEqual(a, b)
}

// The simple device color spaces.
var (
	// SpaceDeviceGray is the DeviceGray color space.
	SpaceDeviceGray Space = spaceDeviceGray{}

	// SpaceDeviceRGB is the DeviceRGB color space.
	SpaceDeviceRGB Space = spaceDeviceRGB{}

	// SpaceDeviceCMYK is the DeviceCMYK color space.
	SpaceDeviceCMYK Space = spaceDeviceCMYK{}
)

type spaceDeviceGray struct{}

// Family implements the [Space] interface.
func (s spaceDeviceGray) Family() pdf.Name { return "DeviceGray" }

// Channels implements the [Space] interface.
func (s spaceDeviceGray) Channels() int { return 1 }

// Embed implements the [pdf.Embedder] interface.
func (s spaceDeviceGray) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	return pdf.Name("DeviceGray"), nil
}

// New returns a color in the DeviceGray color space.
func (s spaceDeviceGray) New(gray float64) Color {
	return DeviceGray(gray)
}

type spaceDeviceRGB struct{}

// Family implements the [Space] interface.
func (s spaceDeviceRGB) Family() pdf.Name { return "DeviceRGB" }

// Channels implements the [Space] interface.
func (s spaceDeviceRGB) Channels() int { return 3 }

// Embed implements the [pdf.Embedder] interface.
func (s spaceDeviceRGB) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	return pdf.Name("DeviceRGB"), nil
}

// New returns a color in the DeviceRGB color space.
func (s spaceDeviceRGB) New(r, g, b float64) Color {
	return DeviceRGB{r, g, b}
}

type spaceDeviceCMYK struct{}

// Family implements the [Space] interface.
func (s spaceDeviceCMYK) Family() pdf.Name { return "DeviceCMYK" }

// Channels implements the [Space] interface.
func (s spaceDeviceCMYK) Channels() int { return 4 }

// Embed implements the [pdf.Embedder] interface.
func (s spaceDeviceCMYK) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	return pdf.Name("DeviceCMYK"), nil
}

// New returns a color in the DeviceCMYK color space.
func (s spaceDeviceCMYK) New(c, m, y, k float64) Color {
	return DeviceCMYK{c, m, y, k}
}

// SpaceCalGray is a CalGray color space.
type SpaceCalGray struct {
	WhitePoint []float64
	BlackPoint []float64
	Gamma      float64
}

// CalGray creates a new CalGray color space.
func CalGray(whitePoint, blackPoint []float64, gamma float64) (*SpaceCalGray, error) {
	if err := checkWhitePoint(whitePoint); err != nil {
		return nil, err
	}
	if err := checkBlackPoint(blackPoint); err != nil {
		return nil, err
	}
	if gamma <= 0 {
		return nil, errors.New("color: invalid gamma value")
	}
	return &SpaceCalGray{
		WhitePoint: whitePoint,
		BlackPoint: blackPoint,
		Gamma:      gamma,
	}, nil
}

// Family implements the [Space] interface.
func (s *SpaceCalGray) Family() pdf.Name { return "CalGray" }

// Channels implements the [Space] interface.
func (s *SpaceCalGray) Channels() int { return 1 }

// New returns a color in this color space.
func (s *SpaceCalGray) New(value float64) Color {
	return colorCalGray{Space: s, Value: value}
}

// FromXYZ returns the color in this color space which is closest to the
// given XYZ coordinates (relative to the D50 white point).
func (s *SpaceCalGray) FromXYZ(X, Y, Z float64) Color {
	_, y, _ := bradfordAdapt(X, Y, Z, WhitePointD50, s.WhitePoint)
	A := y / s.WhitePoint[1]
	return colorCalGray{Space: s, Value: pow(clip01(A), 1/s.Gamma)}
}

// Embed implements the [pdf.Embedder] interface.
func (s *SpaceCalGray) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	dict := pdf.Dict{
		"WhitePoint": floatArray(s.WhitePoint),
		"Gamma":      pdf.Number(s.Gamma),
	}
	if s.BlackPoint != nil {
		dict["BlackPoint"] = floatArray(s.BlackPoint)
	}
	ref := rm.Out.Alloc()
	err := rm.Out.Put(ref, pdf.Array{pdf.Name("CalGray"), dict})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// SpaceCalRGB is a CalRGB color space.
type SpaceCalRGB struct {
	WhitePoint []float64
	BlackPoint []float64
	Gamma      []float64
	Matrix     []float64
}

// CalRGB creates a new CalRGB color space.
func CalRGB(whitePoint, blackPoint, gamma, matrix []float64) (*SpaceCalRGB, error) {
	if err := checkWhitePoint(whitePoint); err != nil {
		return nil, err
	}
	if err := checkBlackPoint(blackPoint); err != nil {
		return nil, err
	}
	if gamma != nil && len(gamma) != 3 {
		return nil, errors.New("color: invalid gamma array")
	}
	if matrix != nil && len(matrix) != 9 {
		return nil, errors.New("color: invalid matrix")
	}
	return &SpaceCalRGB{
		WhitePoint: whitePoint,
		BlackPoint: blackPoint,
		Gamma:      gamma,
		Matrix:     matrix,
	}, nil
}

// Family implements the [Space] interface.
func (s *SpaceCalRGB) Family() pdf.Name { return "CalRGB" }

// Channels implements the [Space] interface.
func (s *SpaceCalRGB) Channels() int { return 3 }

// New returns a color in this color space.
func (s *SpaceCalRGB) New(r, g, b float64) Color {
	return colorCalRGB{Space: s, Values: [3]float64{r, g, b}}
}

func (s *SpaceCalRGB) matrix() [9]float64 {
	// The matrix is stored in column order, [XA YA ZA XB YB ZB XC YC ZC].
	m := [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	if len(s.Matrix) == 9 {
		copy(m[:], s.Matrix)
	}
	return m
}

// FromXYZ returns the color in this color space which is closest to the
// given XYZ coordinates (relative to the D50 white point).
func (s *SpaceCalRGB) FromXYZ(X, Y, Z float64) Color {
	X, Y, Z = bradfordAdapt(X, Y, Z, WhitePointD50, s.WhitePoint)
	m := s.matrix() // column order; inv3 and mul3 use row-major matrices
	minv := inv3([9]float64{m[0], m[3], m[6], m[1], m[4], m[7], m[2], m[5], m[8]})
	a, b, c := mul3(minv, X, Y, Z)
	var res [3]float64
	for i, x := range []float64{a, b, c} {
		gamma := 1.0
		if len(s.Gamma) == 3 {
			gamma = s.Gamma[i]
		}
		res[i] = pow(clip01(x), 1/gamma)
	}
	return colorCalRGB{Space: s, Values: res}
}

// Embed implements the [pdf.Embedder] interface.
func (s *SpaceCalRGB) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	dict := pdf.Dict{
		"WhitePoint": floatArray(s.WhitePoint),
	}
	if s.BlackPoint != nil {
		dict["BlackPoint"] = floatArray(s.BlackPoint)
	}
	if s.Gamma != nil {
		dict["Gamma"] = floatArray(s.Gamma)
	}
	if s.Matrix != nil {
		dict["Matrix"] = floatArray(s.Matrix)
	}
	ref := rm.Out.Alloc()
	err := rm.Out.Put(ref, pdf.Array{pdf.Name("CalRGB"), dict})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// SpaceLab is a CIE 1976 L*a*b* color space.
type SpaceLab struct {
	WhitePoint []float64
	BlackPoint []float64
	Ranges     []float64
}

// Lab creates a new L*a*b* color space.
func Lab(whitePoint, blackPoint, ranges []float64) (*SpaceLab, error) {
	if err := checkWhitePoint(whitePoint); err != nil {
		return nil, err
	}
	if err := checkBlackPoint(blackPoint); err != nil {
		return nil, err
	}
	if ranges != nil {
		if len(ranges) != 4 || ranges[0] > ranges[1] || ranges[2] > ranges[3] {
			return nil, errors.New("color: invalid ranges")
		}
	}
	return &SpaceLab{
		WhitePoint: whitePoint,
		BlackPoint: blackPoint,
		Ranges:     ranges,
	}, nil
}

// Family implements the [Space] interface.
func (s *SpaceLab) Family() pdf.Name { return "Lab" }

// Channels implements the [Space] interface.
func (s *SpaceLab) Channels() int { return 3 }

func (s *SpaceLab) ranges() []float64 {
	if len(s.Ranges) == 4 {
		return s.Ranges
	}
	return []float64{-100, 100, -100, 100}
}

// New returns a color in this color space.
func (s *SpaceLab) New(l, a, b float64) (Color, error) {
	r := s.ranges()
	if l < 0 || l > 100 {
		return nil, fmt.Errorf("color: L* value %g out of range", l)
	}
	if a < r[0] || a > r[1] || b < r[2] || b > r[3] {
		return nil, fmt.Errorf("color: a*/b* values (%g, %g) out of range", a, b)
	}
	return colorLab{Space: s, Values: [3]float64{l, a, b}}, nil
}

// FromXYZ returns the color in this color space which is closest to the
// given XYZ coordinates (relative to the D50 white point).
func (s *SpaceLab) FromXYZ(X, Y, Z float64) Color {
	wp := s.WhitePoint
	X, Y, Z = bradfordAdapt(X, Y, Z, WhitePointD50, wp)

	fx := labF(X / wp[0])
	fy := labF(Y / wp[1])
	fz := labF(Z / wp[2])

	L := 116*fy - 16
	a := 500 * (fx - fy)
	b := 200 * (fy - fz)

	r := s.ranges()
	return colorLab{Space: s, Values: [3]float64{
		clip(L, 0, 100),
		clip(a, r[0], r[1]),
		clip(b, r[2], r[3]),
	}}
}

// Embed implements the [pdf.Embedder] interface.
func (s *SpaceLab) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	dict := pdf.Dict{
		"WhitePoint": floatArray(s.WhitePoint),
	}
	if s.BlackPoint != nil {
		dict["BlackPoint"] = floatArray(s.BlackPoint)
	}
	if s.Ranges != nil {
		dict["Range"] = floatArray(s.Ranges)
	}
	ref := rm.Out.Alloc()
	err := rm.Out.Put(ref, pdf.Array{pdf.Name("Lab"), dict})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// spacePatternColored is the color space for colored (PaintType 1)
// tiling patterns and shading patterns.
type spacePatternColored struct{}

// Family implements the [Space] interface.
func (s spacePatternColored) Family() pdf.Name { return "Pattern" }

// Channels implements the [Space] interface.
func (s spacePatternColored) Channels() int { return 0 }

// Embed implements the [pdf.Embedder] interface.
func (s spacePatternColored) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	return pdf.Name("Pattern"), nil
}

// spacePatternUncolored is the color space for uncolored (PaintType 2)
// tiling patterns, together with the underlying color space.
type spacePatternUncolored struct {
	base Space
}

// Family implements the [Space] interface.
func (s spacePatternUncolored) Family() pdf.Name { return "Pattern" }

// Channels implements the [Space] interface.
func (s spacePatternUncolored) Channels() int { return s.base.Channels() }

// Embed implements the [pdf.Embedder] interface.
func (s spacePatternUncolored) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	base, err := rm.Embed(s.base)
	if err != nil {
		return nil, err
	}
	ref := rm.Out.Alloc()
	err = rm.Out.Put(ref, pdf.Array{pdf.Name("Pattern"), base})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// SpaceIndexed is an indexed color space.
type SpaceIndexed struct {
	// Colors is the color table.  All colors must be in the same base
	// color space.
	Colors []Color
}

// Indexed creates a new indexed color space.
func Indexed(colors []Color) (*SpaceIndexed, error) {
	if len(colors) == 0 || len(colors) > 256 {
		return nil, errors.New("color: invalid number of colors")
	}
	base := colors[0].ColorSpace()
	for _, c := range colors[1:] {
		if !SpacesEqual(c.ColorSpace(), base) {
			return nil, errors.New("color: inconsistent base color space")
		}
	}
	switch base.Family() {
	case "Pattern", "Indexed":
		return nil, errors.New("color: invalid base color space")
	}
	return &SpaceIndexed{Colors: colors}, nil
}

// Family implements the [Space] interface.
func (s *SpaceIndexed) Family() pdf.Name { return "Indexed" }

// Channels implements the [Space] interface.
func (s *SpaceIndexed) Channels() int { return 1 }

// New returns the color with the given index.
func (s *SpaceIndexed) New(idx int) (Color, error) {
	if idx < 0 || idx >= len(s.Colors) {
		return nil, errors.New("color: index out of range")
	}
	return colorIndexed{Space: s, Index: idx}, nil
}

// Embed implements the [pdf.Embedder] interface.
func (s *SpaceIndexed) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	base := s.Colors[0].ColorSpace()
	baseObj, err := rm.Embed(base)
	if err != nil {
		return nil, err
	}

	numChannels := base.Channels()
	lookup := make(pdf.String, 0, len(s.Colors)*numChannels)
	for _, c := range s.Colors {
		for _, x := range c.values() {
			lookup = append(lookup, byte(clip01(x)*255+0.5))
		}
	}

	ref := rm.Out.Alloc()
	err = rm.Out.Put(ref, pdf.Array{
		pdf.Name("Indexed"),
		baseObj,
		pdf.Integer(len(s.Colors) - 1),
		lookup,
	})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// SpaceSeparation is a Separation color space.
type SpaceSeparation struct {
	// Name is the name of the colorant.
	Name pdf.Name

	// Alternate is the alternate color space.
	Alternate Space

	// TintTransform maps tint values to colors in the alternate color
	// space.
	TintTransform pdf.Function
}

// Separation creates a new Separation color space.
func Separation(name pdf.Name, alternate Space, tintTransform pdf.Function) (*SpaceSeparation, error) {
	if alternate == nil || tintTransform == nil {
		return nil, errors.New("color: missing alternate space or tint transform")
	}
	m, n := tintTransform.Shape()
	if m != 1 || n != alternate.Channels() {
		return nil, errors.New("color: invalid tint transform shape")
	}
	return &SpaceSeparation{
		Name:          name,
		Alternate:     alternate,
		TintTransform: tintTransform,
	}, nil
}

// Family implements the [Space] interface.
func (s *SpaceSeparation) Family() pdf.Name { return "Separation" }

// Channels implements the [Space] interface.
func (s *SpaceSeparation) Channels() int { return 1 }

// Embed implements the [pdf.Embedder] interface.
func (s *SpaceSeparation) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	alt, err := rm.Embed(s.Alternate)
	if err != nil {
		return nil, err
	}
	fn, err := rm.Embed(s.TintTransform)
	if err != nil {
		return nil, err
	}
	ref := rm.Out.Alloc()
	err = rm.Out.Put(ref, pdf.Array{pdf.Name("Separation"), s.Name, alt, fn})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// SpaceDeviceN is a DeviceN color space.
type SpaceDeviceN struct {
	// Names are the names of the colorants.
	Names []pdf.Name

	// Alternate is the alternate color space.
	Alternate Space

	// TintTransform maps tint values to colors in the alternate color
	// space.
	TintTransform pdf.Function

	// Attributes is the optional attributes dictionary.
	Attributes pdf.Dict
}

// DeviceN creates a new DeviceN color space.
func DeviceN(names []pdf.Name, alternate Space, tintTransform pdf.Function, attributes pdf.Dict) (*SpaceDeviceN, error) {
	if len(names) == 0 {
		return nil, errors.New("color: no colorant names")
	}
	if alternate == nil || tintTransform == nil {
		return nil, errors.New("color: missing alternate space or tint transform")
	}
	m, n := tintTransform.Shape()
	if m != len(names) || n != alternate.Channels() {
		return nil, errors.New("color: invalid tint transform shape")
	}
	return &SpaceDeviceN{
		Names:         names,
		Alternate:     alternate,
		TintTransform: tintTransform,
		Attributes:    attributes,
	}, nil
}

// Family implements the [Space] interface.
func (s *SpaceDeviceN) Family() pdf.Name { return "DeviceN" }

// Channels implements the [Space] interface.
func (s *SpaceDeviceN) Channels() int { return len(s.Names) }

// Embed implements the [pdf.Embedder] interface.
func (s *SpaceDeviceN) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	alt, err := rm.Embed(s.Alternate)
	if err != nil {
		return nil, err
	}
	fn, err := rm.Embed(s.TintTransform)
	if err != nil {
		return nil, err
	}
	names := make(pdf.Array, len(s.Names))
	for i, name := range s.Names {
		names[i] = name
	}
	arr := pdf.Array{pdf.Name("DeviceN"), names, alt, fn}
	if s.Attributes != nil {
		arr = append(arr, s.Attributes)
	}
	ref := rm.Out.Alloc()
	err = rm.Out.Put(ref, arr)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func checkWhitePoint(wp []float64) error {
	if len(wp) != 3 || wp[0] <= 0 || wp[1] != 1 || wp[2] <= 0 {
		return errors.New("color: invalid white point")
	}
	return nil
}

func checkBlackPoint(bp []float64) error {
	if bp == nil {
		return nil
	}
	if len(bp) != 3 || bp[0] < 0 || bp[1] < 0 || bp[2] < 0 {
		return errors.New("color: invalid black point")
	}
	return nil
}

func floatArray(values []float64) pdf.Array {
	res := make(pdf.Array, len(values))
	for i, x := range values {
		res[i] = pdf.Number(x)
	}
	return res
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
