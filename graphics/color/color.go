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

// Package color implements the PDF color spaces and colors within these
// color spaces.
package color

// A Color represents a color in a PDF file.
//
// In addition to describing the color for use in PDF content streams,
// colors can approximate their appearance on a computer screen: ToXYZ
// returns CIE 1931 XYZ coordinates relative to a D50 white point, and
// RGBA implements the image/color.Color interface from the Go standard
// library.
type Color interface {
	// ColorSpace returns the color space of the color.
	ColorSpace() Space

	// values returns the color component values for use in content
	// streams.
	values() []float64

	// ToXYZ returns the CIE 1931 XYZ coordinates of the color, using a
	// D50 white point.
	ToXYZ() (X, Y, Z float64)

	// RGBA implements the image/color.Color interface.
	RGBA() (r, g, b, a uint32)
}

// DeviceGray represents a gray value in the DeviceGray color space.
// The value 0 is black, the value 1 is white.
type DeviceGray float64

// Aliases for the color types, so that older code keeps compiling.
type (
	colorDeviceGray = DeviceGray
	colorDeviceRGB  = DeviceRGB
	colorDeviceCMYK = DeviceCMYK
)

// ColorSpace implements the [Color] interface.
func (c DeviceGray) ColorSpace() Space { return SpaceDeviceGray }

func (c DeviceGray) values() []float64 { return []float64{float64(c)} }

// ToXYZ implements the [Color] interface.
func (c DeviceGray) ToXYZ() (float64, float64, float64) {
	g := clip01(float64(c))
	return srgbToXYZ(g, g, g)
}

// RGBA implements the image/color.Color interface.
func (c DeviceGray) RGBA() (uint32, uint32, uint32, uint32) {
	return rgbaFromXYZ(c)
}

// DeviceRGB represents a color in the DeviceRGB color space.  The three
// components are red, green and blue, in the range from 0 to 1.
type DeviceRGB [3]float64

// ColorSpace implements the [Color] interface.
func (c DeviceRGB) ColorSpace() Space { return SpaceDeviceRGB }

func (c DeviceRGB) values() []float64 { return c[:] }

// ToXYZ implements the [Color] interface.
func (c DeviceRGB) ToXYZ() (float64, float64, float64) {
	return srgbToXYZ(clip01(c[0]), clip01(c[1]), clip01(c[2]))
}

// RGBA implements the image/color.Color interface.
func (c DeviceRGB) RGBA() (uint32, uint32, uint32, uint32) {
	return rgbaFromXYZ(c)
}

// DeviceCMYK represents a color in the DeviceCMYK color space.  The
// four components are cyan, magenta, yellow and black, in the range
// from 0 to 1.
type DeviceCMYK [4]float64

// ColorSpace implements the [Color] interface.
func (c DeviceCMYK) ColorSpace() Space { return SpaceDeviceCMYK }

func (c DeviceCMYK) values() []float64 { return c[:] }

// ToXYZ implements the [Color] interface.
func (c DeviceCMYK) ToXYZ() (float64, float64, float64) {
	r := (1 - clip01(c[0])) * (1 - clip01(c[3]))
	g := (1 - clip01(c[1])) * (1 - clip01(c[3]))
	b := (1 - clip01(c[2])) * (1 - clip01(c[3]))
	return srgbToXYZ(r, g, b)
}

// RGBA implements the image/color.Color interface.
func (c DeviceCMYK) RGBA() (uint32, uint32, uint32, uint32) {
	return rgbaFromXYZ(c)
}

// colorSRGB is a color in the sRGB color space (an ICCBased color space
// using one of the built-in sRGB profiles).
type colorSRGB [3]float64

// SRGB returns a color in the sRGB color space.
func SRGB(r, g, b float64) Color {
	return colorSRGB{r, g, b}
}

// ColorSpace implements the [Color] interface.
func (c colorSRGB) ColorSpace() Space { return spaceSRGB{} }

func (c colorSRGB) values() []float64 { return c[:] }

// ToXYZ implements the [Color] interface.
func (c colorSRGB) ToXYZ() (float64, float64, float64) {
	return srgbToXYZ(clip01(c[0]), clip01(c[1]), clip01(c[2]))
}

// RGBA implements the image/color.Color interface.
func (c colorSRGB) RGBA() (uint32, uint32, uint32, uint32) {
	return rgbaFromXYZ(c)
}

// colorCalGray is a color in a CalGray color space.
type colorCalGray struct {
	Space *SpaceCalGray
	Value float64
}

// ColorSpace implements the [Color] interface.
func (c colorCalGray) ColorSpace() Space { return c.Space }

func (c colorCalGray) values() []float64 { return []float64{c.Value} }

// ToXYZ implements the [Color] interface.
func (c colorCalGray) ToXYZ() (float64, float64, float64) {
	wp := c.Space.WhitePoint
	A := pow(clip01(c.Value), c.Space.Gamma)
	return bradfordAdapt(A*wp[0], A*wp[1], A*wp[2], wp, WhitePointD50)
}

// RGBA implements the image/color.Color interface.
func (c colorCalGray) RGBA() (uint32, uint32, uint32, uint32) {
	return rgbaFromXYZ(c)
}

// colorCalRGB is a color in a CalRGB color space.
type colorCalRGB struct {
	Space  *SpaceCalRGB
	Values [3]float64
}

// ColorSpace implements the [Color] interface.
func (c colorCalRGB) ColorSpace() Space { return c.Space }

func (c colorCalRGB) values() []float64 { return c.Values[:] }

// ToXYZ implements the [Color] interface.
func (c colorCalRGB) ToXYZ() (float64, float64, float64) {
	s := c.Space
	var abc [3]float64
	for i := range abc {
		gamma := 1.0
		if len(s.Gamma) == 3 {
			gamma = s.Gamma[i]
		}
		abc[i] = pow(clip01(c.Values[i]), gamma)
	}
	m := s.matrix()
	X := m[0]*abc[0] + m[3]*abc[1] + m[6]*abc[2]
	Y := m[1]*abc[0] + m[4]*abc[1] + m[7]*abc[2]
	Z := m[2]*abc[0] + m[5]*abc[1] + m[8]*abc[2]
	return bradfordAdapt(X, Y, Z, s.WhitePoint, WhitePointD50)
}

// RGBA implements the image/color.Color interface.
func (c colorCalRGB) RGBA() (uint32, uint32, uint32, uint32) {
	return rgbaFromXYZ(c)
}

// colorLab is a color in a CIE 1976 L*a*b* color space.
type colorLab struct {
	Space  *SpaceLab
	Values [3]float64
}

// ColorSpace implements the [Color] interface.
func (c colorLab) ColorSpace() Space { return c.Space }

func (c colorLab) values() []float64 { return c.Values[:] }

// ToXYZ implements the [Color] interface.
func (c colorLab) ToXYZ() (float64, float64, float64) {
	wp := c.Space.WhitePoint
	L, a, b := c.Values[0], c.Values[1], c.Values[2]

	fy := (L + 16) / 116
	fx := fy + a/500
	fz := fy - b/200

	X := wp[0] * labFinv(fx)
	Y := wp[1] * labFinv(fy)
	Z := wp[2] * labFinv(fz)
	return bradfordAdapt(X, Y, Z, wp, WhitePointD50)
}

// RGBA implements the image/color.Color interface.
func (c colorLab) RGBA() (uint32, uint32, uint32, uint32) {
	return rgbaFromXYZ(c)
}

// colorICCBased is a color in an ICC-based color space.  Since this
// library does not include a full ICC engine, the on-screen appearance
// is approximated by the corresponding device color space.
type colorICCBased struct {
	Space  *SpaceICCBased
	Values []float64
}

// ColorSpace implements the [Color] interface.
func (c colorICCBased) ColorSpace() Space { return c.Space }

func (c colorICCBased) values() []float64 { return c.Values }

// ToXYZ implements the [Color] interface.
func (c colorICCBased) ToXYZ() (float64, float64, float64) {
	switch len(c.Values) {
	case 1:
		return DeviceGray(c.Values[0]).ToXYZ()
	case 4:
		return DeviceCMYK{c.Values[0], c.Values[1], c.Values[2], c.Values[3]}.ToXYZ()
	default:
		var rgb DeviceRGB
		copy(rgb[:], c.Values)
		return rgb.ToXYZ()
	}
}

// RGBA implements the image/color.Color interface.
func (c colorICCBased) RGBA() (uint32, uint32, uint32, uint32) {
	return rgbaFromXYZ(c)
}

// colorIndexed is a color in an indexed color space.
type colorIndexed struct {
	Space *SpaceIndexed
	Index int
}

// ColorSpace implements the [Color] interface.
func (c colorIndexed) ColorSpace() Space { return c.Space }

func (c colorIndexed) values() []float64 { return []float64{float64(c.Index)} }

// ToXYZ implements the [Color] interface.
func (c colorIndexed) ToXYZ() (float64, float64, float64) {
	if c.Space == nil || c.Index < 0 || c.Index >= len(c.Space.Colors) {
		return srgbToXYZ(0, 0, 0)
	}
	return c.Space.Colors[c.Index].ToXYZ()
}

// RGBA implements the image/color.Color interface.
func (c colorIndexed) RGBA() (uint32, uint32, uint32, uint32) {
	return rgbaFromXYZ(c)
}

// colorColoredPattern is a colored (PaintType 1) tiling pattern or a
// shading pattern, used as a color.
type colorColoredPattern struct {
	Pat Pattern
}

// ColoredPattern returns a color which paints the given pattern.
func ColoredPattern(pat Pattern) Color {
	return colorColoredPattern{Pat: pat}
}

// ColorSpace implements the [Color] interface.
func (c colorColoredPattern) ColorSpace() Space { return spacePatternColored{} }

func (c colorColoredPattern) values() []float64 { return nil }

// ToXYZ implements the [Color] interface.  The averaged appearance of a
// pattern is approximated by a middle gray.
func (c colorColoredPattern) ToXYZ() (float64, float64, float64) {
	return srgbToXYZ(0.5, 0.5, 0.5)
}

// RGBA implements the image/color.Color interface.
func (c colorColoredPattern) RGBA() (uint32, uint32, uint32, uint32) {
	return rgbaFromXYZ(c)
}

// colorUncoloredPattern is an uncolored (PaintType 2) tiling pattern
// together with the color to paint it in.
type colorUncoloredPattern struct {
	Pat Pattern
	Col Color
}

// UncoloredPattern returns a color which paints the given pattern using
// the color col.
func UncoloredPattern(pat Pattern, col Color) Color {
	return &colorUncoloredPattern{Pat: pat, Col: col}
}

// ColorSpace implements the [Color] interface.
func (c *colorUncoloredPattern) ColorSpace() Space {
	return spacePatternUncolored{base: c.Col.ColorSpace()}
}

func (c *colorUncoloredPattern) values() []float64 {
	return c.Col.values()
}

// ToXYZ implements the [Color] interface.
func (c *colorUncoloredPattern) ToXYZ() (float64, float64, float64) {
	return c.Col.ToXYZ()
}

// RGBA implements the image/color.Color interface.
func (c *colorUncoloredPattern) RGBA() (uint32, uint32, uint32, uint32) {
	return rgbaFromXYZ(c)
}

// Pattern represents a PDF tiling or shading pattern.
type Pattern interface {
	// IsColored reports whether the pattern includes its own color
	// information.
	IsColored() bool
}
