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

// Package function implements the PDF function types: sampled functions
// (type 0), exponential interpolation functions (type 2), stitching
// functions (type 3), and PostScript calculator functions (type 4).
package function

import (
	"math"

	"github.com/archivekit/pdfcore"
)

// isFinite reports whether x is neither NaN nor infinite.
func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// isRange reports whether [x, y] is a valid, finite interval.
func isRange(x, y float64) bool {
	return isFinite(x) && isFinite(y) && x <= y
}

// clip restricts x to the interval [lo, hi].
func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// interpolate maps x from the interval [xMin, xMax] to the interval
// [yMin, yMax].
func interpolate(x, xMin, xMax, yMin, yMax float64) float64 {
	if xMax == xMin {
		return yMin
	}
	return yMin + (x-xMin)*(yMax-yMin)/(xMax-xMin)
}

// toFloatArray converts a slice of float64 values to a PDF array.
func toFloatArray(values []float64) pdf.Array {
	res := make(pdf.Array, len(values))
	for i, x := range values {
		res[i] = pdf.Number(x)
	}
	return res
}

// repairPairs truncates a slice of interval boundaries to an even
// length.
func repairPairs(values []float64) []float64 {
	return values[:len(values)/2*2]
}

// clipOutputs writes the given values to out, clipping each value to
// the corresponding interval of the range, if set.
func clipOutputs(out, values, rng []float64) {
	for i := range out {
		var y float64
		if i < len(values) {
			y = values[i]
		}
		if 2*i+1 < len(rng) {
			y = clip(y, rng[2*i], rng[2*i+1])
		}
		out[i] = y
	}
}
