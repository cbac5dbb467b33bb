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

import "math"

// Round rounds x to the given number of decimal digits.  Negative values
// of digits round to powers of ten.
func Round(x float64, digits int) float64 {
	scale := math.Pow10(digits)
	y := math.Round(x*scale) / scale
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return x
	}
	return y
}
