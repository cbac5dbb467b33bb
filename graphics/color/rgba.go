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

import "math"

// This file implements the conversion between PDF color values and
// screen colors.  Internally, colors are represented as CIE 1931 XYZ
// coordinates relative to a D50 white point (the profile connection
// space of ICC), and converted to sRGB for display.

// Standard white points, as [X, Y, Z] with Y normalized to 1.
var (
	// WhitePointD65 is the CIE standard illuminant D65, corresponding
	// to average daylight.
	WhitePointD65 = []float64{0.9505, 1.0, 1.089}

	// WhitePointD50 is the CIE standard illuminant D50, used as the
	// profile connection space white point by ICC.
	WhitePointD50 = []float64{0.9647, 1.0, 0.8249}
)

// The Bradford chromatic adaptation matrix and its inverse.
var bradfordM = [9]float64{
	0.8951, 0.2664, -0.1614,
	-0.7502, 1.7135, 0.0367,
	0.0389, -0.0685, 1.0296,
}

var bradfordMInv = inv3(bradfordM)

// bradfordAdapt converts XYZ coordinates relative to the white point
// wpSrc into XYZ coordinates relative to the white point wpDst, using
// the Bradford chromatic adaptation transform.
func bradfordAdapt(X, Y, Z float64, wpSrc, wpDst []float64) (float64, float64, float64) {
	rhoS, gamS, betS := mul3(bradfordM, wpSrc[0], wpSrc[1], wpSrc[2])
	rhoD, gamD, betD := mul3(bradfordM, wpDst[0], wpDst[1], wpDst[2])

	rho, gam, bet := mul3(bradfordM, X, Y, Z)
	rho *= rhoD / rhoS
	gam *= gamD / gamS
	bet *= betD / betS
	return mul3(bradfordMInv, rho, gam, bet)
}

// The sRGB primaries and white point chromaticities, from IEC 61966-2-1.
// The conversion matrix is derived from these values, so that the
// mapping between (1,1,1) and the white point is exact.
var (
	srgbWhite = []float64{0.3127 / 0.3290, 1, (1 - 0.3127 - 0.3290) / 0.3290}
	srgbM     = srgbMatrix()
	srgbMInv  = inv3(srgbM)
)

func srgbMatrix() [9]float64 {
	type xy struct{ x, y float64 }
	prim := []xy{{0.64, 0.33}, {0.30, 0.60}, {0.15, 0.06}}

	// columns of the un-scaled matrix
	var m [9]float64
	for i, p := range prim {
		m[i] = p.x / p.y
		m[3+i] = 1
		m[6+i] = (1 - p.x - p.y) / p.y
	}

	// scale the columns so that (1,1,1) maps to the white point
	minv := inv3(m)
	sr, sg, sb := mul3(minv, srgbWhite[0], srgbWhite[1], srgbWhite[2])
	for i, s := range []float64{sr, sg, sb} {
		m[i] *= s
		m[3+i] *= s
		m[6+i] *= s
	}
	return m
}

// srgbToXYZ converts sRGB component values to XYZ coordinates relative
// to the D50 white point.
func srgbToXYZ(r, g, b float64) (float64, float64, float64) {
	X, Y, Z := mul3(srgbM, srgbDecode(r), srgbDecode(g), srgbDecode(b))
	return bradfordAdapt(X, Y, Z, srgbWhite, WhitePointD50)
}

// xyzToSRGB converts XYZ coordinates relative to the D50 white point to
// sRGB component values.
func xyzToSRGB(X, Y, Z float64) (float64, float64, float64) {
	X, Y, Z = bradfordAdapt(X, Y, Z, WhitePointD50, srgbWhite)
	r, g, b := mul3(srgbMInv, X, Y, Z)
	return srgbEncode(r), srgbEncode(g), srgbEncode(b)
}

func srgbDecode(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func srgbEncode(c float64) float64 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

// rgbaFromXYZ computes 16-bit sRGB values from the XYZ coordinates of a
// color.
func rgbaFromXYZ(c Color) (uint32, uint32, uint32, uint32) {
	X, Y, Z := c.ToXYZ()
	r, g, b := xyzToSRGB(X, Y, Z)
	return toUint32(r), toUint32(g), toUint32(b), 0xffff
}

func toUint32(c float64) uint32 {
	x := math.Round(clip01(c) * 0xffff)
	return uint32(x)
}

func clip01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func pow(x, gamma float64) float64 {
	if gamma == 1 {
		return x
	}
	return math.Pow(x, gamma)
}

// The CIELAB transfer function and its inverse.

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}

func labFinv(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta {
		return t * t * t
	}
	return 3 * delta * delta * (t - 4.0/29.0)
}

// mul3 multiplies a 3x3 matrix (in row-major order) with a vector.
func mul3(m [9]float64, x, y, z float64) (float64, float64, float64) {
	return m[0]*x + m[1]*y + m[2]*z,
		m[3]*x + m[4]*y + m[5]*z,
		m[6]*x + m[7]*y + m[8]*z
}

// inv3 inverts a 3x3 matrix given in row-major order.
func inv3(m [9]float64) [9]float64 {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[3], m[4], m[5]
	g, h, i := m[6], m[7], m[8]

	A := e*i - f*h
	B := -(d*i - f*g)
	C := d*h - e*g
	det := a*A + b*B + c*C

	return [9]float64{
		A / det, -(b*i - c*h) / det, (b*f - c*e) / det,
		B / det, (a*i - c*g) / det, -(a*f - c*d) / det,
		C / det, -(a*h - b*g) / det, (a*e - b*d) / det,
	}
}

// isValues reports whether the slice have contains exactly the given
// values.
func isValues(have []float64, want ...float64) bool {
	if len(have) != len(want) {
		return false
	}
	for i, x := range want {
		if have[i] != x {
			return false
		}
	}
	return true
}
