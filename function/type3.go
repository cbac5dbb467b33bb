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

	"github.com/archivekit/pdfcore"
)

// Type3 represents a stitching function, which combines several
// one-input functions into a single function on the domain
// [XMin, XMax].
type Type3 struct {
	// XMin and XMax give the domain of the function.
	XMin, XMax float64

	// Range (optional) limits the output values of the function.
	Range []float64

	// Functions holds the k sub-functions.
	Functions []pdf.Function

	// Bounds holds the k-1 interval boundaries between the
	// sub-functions.
	Bounds []float64

	// Encode maps each subdomain to the domain of the corresponding
	// sub-function.
	Encode []float64
}

// FunctionType implements the [pdf.Function] interface.
func (f *Type3) FunctionType() int { return 3 }

// Shape implements the [pdf.Function] interface.
func (f *Type3) Shape() (int, int) {
	if len(f.Range) > 0 {
		return 1, len(f.Range) / 2
	}
	if len(f.Functions) > 0 {
		_, n := f.Functions[0].Shape()
		return 1, n
	}
	return 1, 0
}

// GetDomain implements the [pdf.Function] interface.
func (f *Type3) GetDomain() []float64 {
	return []float64{f.XMin, f.XMax}
}

func (f *Type3) validate() error {
	if !isRange(f.XMin, f.XMax) {
		return errors.New("invalid domain")
	}
	if len(f.Functions) == 0 {
		return errors.New("no sub-functions")
	}
	if len(f.Bounds) != len(f.Functions)-1 {
		return fmt.Errorf("%d sub-functions need %d bounds, got %d",
			len(f.Functions), len(f.Functions)-1, len(f.Bounds))
	}
	prev := f.XMin
	for _, b := range f.Bounds {
		if !(b >= prev) || b > f.XMax {
			return errors.New("bounds not ordered")
		}
		prev = b
	}
	if len(f.Encode) != 2*len(f.Functions) {
		return fmt.Errorf("%d sub-functions need %d encode values, got %d",
			len(f.Functions), 2*len(f.Functions), len(f.Encode))
	}
	return nil
}

func (f *Type3) repair() {
	f.Range = repairPairs(f.Range)
	f.Encode = repairPairs(f.Encode)
	k := len(f.Functions)
	if len(f.Bounds) > k-1 && k > 0 {
		f.Bounds = f.Bounds[:k-1]
	}
	for len(f.Encode) < 2*k {
		f.Encode = append(f.Encode, 0, 1)
	}
}

// findSubdomain returns the index of the sub-function responsible for
// the input value x, together with the boundaries of the corresponding
// subdomain.
//
// Subdomains are half-open intervals, closed on the left, except that
// the last subdomain also includes its right boundary.  As a special
// case, if the first bound coincides with XMin, the first subdomain is
// the degenerate interval [XMin, XMin].
func (f *Type3) findSubdomain(x float64) (int, float64, float64) {
	if len(f.Bounds) > 0 && f.Bounds[0] == f.XMin && x == f.XMin {
		return 0, f.XMin, f.XMin
	}

	idx := 0
	for idx < len(f.Bounds) && x >= f.Bounds[idx] {
		idx++
	}

	a := f.XMin
	if idx > 0 {
		a = f.Bounds[idx-1]
	}
	b := f.XMax
	if idx < len(f.Bounds) {
		b = f.Bounds[idx]
	}
	return idx, a, b
}

// Apply implements the [pdf.Function] interface.
func (f *Type3) Apply(out []float64, inputs ...float64) {
	if len(f.Functions) == 0 {
		clipOutputs(out, nil, f.Range)
		return
	}

	var x float64
	if len(inputs) > 0 {
		x = clip(inputs[0], f.XMin, f.XMax)
	}

	idx, a, b := f.findSubdomain(x)
	var e0, e1 float64 = 0, 1
	if 2*idx+1 < len(f.Encode) {
		e0 = f.Encode[2*idx]
		e1 = f.Encode[2*idx+1]
	}
	t := interpolate(x, a, b, e0, e1)

	sub := f.Functions[idx]
	_, n := sub.Shape()
	values := make([]float64, n)
	sub.Apply(values, t)

	if len(f.Range) > 0 {
		clipOutputs(out, values, f.Range)
	} else {
		copy(out, values)
	}
}

// Embed implements the [pdf.Embedder] interface.
func (f *Type3) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	err := f.validate()
	if err != nil {
		return nil, err
	}

	functions := make(pdf.Array, len(f.Functions))
	for i, sub := range f.Functions {
		obj, err := rm.Embed(sub)
		if err != nil {
			return nil, err
		}
		functions[i] = obj
	}

	dict := pdf.Dict{
		"FunctionType": pdf.Integer(3),
		"Domain":       toFloatArray([]float64{f.XMin, f.XMax}),
		"Functions":    functions,
		"Bounds":       toFloatArray(f.Bounds),
		"Encode":       toFloatArray(f.Encode),
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

func extractType3(x *pdf.Extractor, dict pdf.Dict) (*Type3, error) {
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

	functionsObj, err := pdf.GetArray(x.R, dict["Functions"])
	if err != nil {
		return nil, err
	}
	functions := make([]pdf.Function, len(functionsObj))
	for i, obj := range functionsObj {
		sub, err := Extract(x, obj)
		if err != nil {
			return nil, pdf.Wrap(err, fmt.Sprintf("Functions[%d]", i))
		}
		functions[i] = sub
	}

	bounds, err := pdf.GetFloatArray(x.R, dict["Bounds"])
	if err != nil {
		return nil, err
	}
	encode, err := pdf.GetFloatArray(x.R, dict["Encode"])
	if err != nil {
		return nil, err
	}

	f := &Type3{
		XMin:      domain[0],
		XMax:      domain[1],
		Range:     rng,
		Functions: functions,
		Bounds:    bounds,
		Encode:    encode,
	}
	f.repair()
	return f, nil
}
