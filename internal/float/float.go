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

// Package float formats floating point numbers for use in PDF content
// streams.
package float

import (
	"math"
	"strconv"
	"strings"
)

// Format formats a floating point number with the given number of
// decimal digits.  Trailing zeros are removed, and the leading zero of
// a number between 0 and 1 is omitted; negative numbers keep theirs
// (-0.2).
func Format(x float64, digits int) string {
	s := strconv.FormatFloat(x, 'f', digits, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	switch s {
	case "", "-", "-0":
		return "0"
	}
	if strings.HasPrefix(s, "0.") {
		s = s[1:]
	}
	return s
}

// Round rounds a floating point number to the given number of decimal
// digits.
func Round(x float64, digits int) float64 {
	scale := math.Pow10(digits)
	y := math.Round(x*scale) / scale
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return x
	}
	return y
}
