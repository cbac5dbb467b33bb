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

package function

import (
	"errors"
	"fmt"
	"math"

	"github.com/archivekit/pdfcore"
)

// Type2 represents an exponential interpolation function, which maps an
// input value x to the values C0 + x^N * (C1 - C0).
type Type2 struct {
	// XMin and XMax give the domain of the function.
	XMin, XMax float64

	// Range (optional) limits the output values of the function.
	Range []float64

	// C0 holds the function values for x = 0.
	C0 []float64

	// C1 holds the function values for x = 1.
	C1 []float64

	// N is the interpolation exponent.
	N float64
}

// FunctionType implements the [pdf.Function] interface.
func (f *Type2) FunctionType() int { return 2 }

// Shape implements the [pdf.Function] interface.
func (f *Type2) Shape() (int, int) {
	n := len(f.C0)
	if len(f.C1) > n {
		n = len(f.C1)
	}
	if n == 0 {
		n = 1
	}
	return 1, n
}

// GetDomain implements the [pdf.Function] interface.
func (f *Type2) GetDomain() []float64 {
	return []float64{f.XMin, f.XMax}
}

func (f *Type2) validate() error {
	if !isRange(f.XMin, f.XMax) {
		return errors.New("invalid domain")
	}
	if len(f.C0) != len(f.C1) {
		return fmt.Errorf("C0 and C1 have different lengths (%d != %d)",
			len(f.C0), len(f.C1))
	}
	if len(f.Range) > 0 && len(f.Range) != 2*len(f.C0) {
		return errors.New("invalid Range length")
	}
	if !isFinite(f.N) {
		return errors.New("invalid exponent")
	}
	if f.N != math.Trunc(f.N) && f.XMin < 0 {
		return errors.New("non-integer exponent with negative domain")
	}
	if f.N < 0 && f.XMin <= 0 && f.XMax >= 0 {
		return errors.New("negative exponent with zero in domain")
	}
	return nil
}

func (f *Type2) repair() {
	f.Range = repairPairs(f.Range)
	if len(f.C0) != len(f.C1) {
		n := min(len(f.C0), len(f.C1))
		f.C0 = f.C0[:n]
		f.C1 = f.C1[:n]
	}
	if len(f.C0) == 0 {
		f.C0 = []float64{0}
		f.C1 = []float64{1}
	}
}

// Apply implements the [pdf.Function] interface.
func (f *Type2) Apply(out []float64, inputs ...float64) {
	var x float64
	if len(inputs) > 0 {
		x = clip(inputs[0], f.XMin, f.XMax)
	}

	_, n := f.Shape()
	values := make([]float64, n)
	t := math.Pow(x, f.N)
	for i := range values {
		var c0, c1 float64
		if i < len(f.C0) {
			c0 = f.C0[i]
		}
		c1 = 1
		if i < len(f.C1) {
			c1 = f.C1[i]
		}
		values[i] = c0 + t*(c1-c0)
	}
	clipOutputs(out, values, f.Range)
}

// Embed implements the [pdf.Embedder] interface.
func (f *Type2) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	err := f.validate()
	if err != nil {
		return nil, err
	}

	dict := pdf.Dict{
		"FunctionType": pdf.Integer(2),
		"Domain":       toFloatArray([]float64{f.XMin, f.XMax}),
		"C0":           toFloatArray(f.C0),
		"C1":           toFloatArray(f.C1),
		"N":            pdf.Number(f.N),
	}
	if len(f.Range) > 0 {
		dict["Range"] = toFloatArray(f.Range)
	}

	ref := rm.Out.Alloc()
	err = rm.Out.Put(ref, dict)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func extractType2(x *pdf.Extractor, dict pdf.Dict) (*Type2, error) {
	domain, err := pdf.GetFloatArray(x.R, dict["Domain"])
	if err != nil {
		return nil, err
	}
	if len(domain) < 2 {
		domain = []float64{0, 1}
	}

	rng, err := pdf.GetFloatArray(x.R, dict["Range"])
	if err != nil {
		return nil, err
	}

	c0, err := pdf.GetFloatArray(x.R, dict["C0"])
	if err != nil {
		return nil, err
	}
	if c0 == nil {
		c0 = []float64{0}
	}
	c1, err := pdf.GetFloatArray(x.R, dict["C1"])
	if err != nil {
		return nil, err
	}
	if c1 == nil {
		c1 = []float64{1}
	}

	n, err := pdf.GetNumber(x.R, dict["N"])
	if err != nil {
		return nil, err
	}

	f := &Type2{
		XMin:  domain[0],
		XMax:  domain[1],
		Range: rng,
		C0:    c0,
		C1:    c1,
		N:     float64(n),
	}
	f.repair()
	return f, nil
}
