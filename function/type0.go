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

// Type0 represents a sampled function, defined by a grid of sample
// values together with interpolation rules.
type Type0 struct {
	// Domain gives the valid input ranges, as pairs of values.
	Domain []float64

	// Range gives the output value ranges, as pairs of values.
	Range []float64

	// Size gives the number of samples in each input dimension.
	Size []int

	// BitsPerSample is the number of bits used to represent each
	// sample.  Valid values are 1, 2, 4, 8, 12, 16, 24, and 32.
	BitsPerSample int

	// UseCubic selects Catmull-Rom spline interpolation instead of
	// linear interpolation.  This corresponds to /Order 3 in the PDF
	// file.
	UseCubic bool

	// Encode (optional) maps each input interval to a range of sample
	// indices.  The default is [0, Size[0]-1, 0, Size[1]-1, ...].
	Encode []float64

	// Decode (optional) maps sample values to output values.  The
	// default is the Range.
	Decode []float64

	// Samples holds the packed sample values.
	Samples []byte
}

// FunctionType implements the [pdf.Function] interface.
func (f *Type0) FunctionType() int { return 0 }

// Shape implements the [pdf.Function] interface.
func (f *Type0) Shape() (int, int) {
	return len(f.Domain) / 2, len(f.Range) / 2
}

// GetDomain implements the [pdf.Function] interface.
func (f *Type0) GetDomain() []float64 {
	return f.Domain
}

func (f *Type0) validate() error {
	if len(f.Domain)%2 != 0 {
		return errors.New("invalid Domain length")
	}
	for i := 0; i+1 < len(f.Domain); i += 2 {
		if !isRange(f.Domain[i], f.Domain[i+1]) {
			return errors.New("invalid Domain")
		}
	}
	if len(f.Range)%2 != 0 {
		return errors.New("invalid Range length")
	}

	m, n := f.Shape()
	if len(f.Size) != m {
		return fmt.Errorf("%d inputs need %d sizes, got %d",
			m, m, len(f.Size))
	}
	for _, s := range f.Size {
		if s < 1 {
			return errors.New("invalid Size")
		}
	}

	switch f.BitsPerSample {
	case 1, 2, 4, 8, 12, 16, 24, 32:
		// pass
	default:
		return fmt.Errorf("invalid BitsPerSample %d", f.BitsPerSample)
	}

	if len(f.Encode) > 0 && len(f.Encode) != 2*m {
		return errors.New("invalid Encode length")
	}
	if len(f.Decode) > 0 && len(f.Decode) != 2*n {
		return errors.New("invalid Decode length")
	}

	numSamples := n
	for _, s := range f.Size {
		if numSamples > math.MaxInt/s {
			return errors.New("too many samples")
		}
		numSamples *= s
	}
	if need := (numSamples*f.BitsPerSample + 7) / 8; len(f.Samples) < need {
		return fmt.Errorf("need %d sample bytes, got %d", need, len(f.Samples))
	}

	return nil
}

func (f *Type0) repair() {
	f.Domain = repairPairs(f.Domain)
	f.Range = repairPairs(f.Range)
	f.Encode = repairPairs(f.Encode)
	f.Decode = repairPairs(f.Decode)

	m, _ := f.Shape()
	for len(f.Size) < m {
		f.Size = append(f.Size, 2)
	}
	f.Size = f.Size[:m]
	if len(f.Encode) > 2*m {
		f.Encode = f.Encode[:2*m]
	}
}

// extractSampleAtIndex returns the sample with the given flat index
// from the packed sample data.
func (f *Type0) extractSampleAtIndex(idx int) float64 {
	bits := f.BitsPerSample
	bitOffset := idx * bits

	var val uint64
	for i := 0; i < bits; i++ {
		pos := bitOffset + i
		byteIdx := pos / 8
		if byteIdx >= len(f.Samples) {
			return 0
		}
		bit := f.Samples[byteIdx] >> (7 - pos%8) & 1
		val = val<<1 | uint64(bit)
	}
	return float64(val)
}

// sampleValue returns the decoded output value j of the grid point with
// the given indices.
func (f *Type0) sampleValue(indices []int, j int) float64 {
	_, n := f.Shape()

	flat := 0
	stride := 1
	for i, idx := range indices {
		flat += idx * stride
		stride *= f.Size[i]
	}
	raw := f.extractSampleAtIndex(flat*n + j)

	maxVal := float64(uint64(1)<<f.BitsPerSample - 1)
	d0, d1 := 0.0, maxVal
	if 2*j+1 < len(f.Decode) {
		d0, d1 = f.Decode[2*j], f.Decode[2*j+1]
	} else if 2*j+1 < len(f.Range) {
		d0, d1 = f.Range[2*j], f.Range[2*j+1]
	}
	return interpolate(raw, 0, maxVal, d0, d1)
}

// Apply implements the [pdf.Function] interface.
func (f *Type0) Apply(out []float64, inputs ...float64) {
	m, n := f.Shape()
	if n == 0 {
		return
	}

	// map the inputs to sample space
	pos := make([]float64, m)
	for i := 0; i < m; i++ {
		var x float64
		if i < len(inputs) {
			x = clip(inputs[i], f.Domain[2*i], f.Domain[2*i+1])
		} else {
			x = f.Domain[2*i]
		}
		e0, e1 := 0.0, float64(f.Size[i]-1)
		if 2*i+1 < len(f.Encode) {
			e0, e1 = f.Encode[2*i], f.Encode[2*i+1]
		}
		e := interpolate(x, f.Domain[2*i], f.Domain[2*i+1], e0, e1)
		pos[i] = clip(e, 0, float64(f.Size[i]-1))
	}

	values := make([]float64, n)
	if m == 1 && f.UseCubic {
		for j := 0; j < n; j++ {
			values[j] = f.splineInterpolate(pos[0], j)
		}
	} else {
		f.multilinear(pos, values)
	}

	clipOutputs(out, values, f.Range)
}

// multilinear performs multilinear interpolation between the 2^m grid
// points surrounding pos.
func (f *Type0) multilinear(pos []float64, values []float64) {
	m, n := f.Shape()

	base := make([]int, m)
	frac := make([]float64, m)
	for i, p := range pos {
		b := int(math.Floor(p))
		if b > f.Size[i]-2 {
			b = f.Size[i] - 2
		}
		if b < 0 {
			b = 0
		}
		base[i] = b
		frac[i] = p - float64(b)
	}

	indices := make([]int, m)
	for corner := 0; corner < 1<<m; corner++ {
		weight := 1.0
		for i := 0; i < m; i++ {
			idx := base[i]
			if corner&(1<<i) != 0 {
				idx++
				weight *= frac[i]
			} else {
				weight *= 1 - frac[i]
			}
			if idx > f.Size[i]-1 {
				idx = f.Size[i] - 1
			}
			indices[i] = idx
		}
		if weight == 0 {
			continue
		}
		for j := 0; j < n; j++ {
			values[j] += weight * f.sampleValue(indices, j)
		}
	}
}

// splineInterpolate evaluates a Catmull-Rom spline through the sample
// values, as used by Ghostscript for /Order 3 functions.  The end
// points are duplicated to obtain tangents at the boundary.
func (f *Type0) splineInterpolate(pos float64, j int) float64 {
	size := f.Size[0]
	sample := func(i int) float64 {
		if i < 0 {
			i = 0
		}
		if i > size-1 {
			i = size - 1
		}
		return f.sampleValue([]int{i}, j)
	}

	i0 := int(math.Floor(pos))
	if i0 > size-2 {
		i0 = size - 2
	}
	if i0 < 0 {
		i0 = 0
	}
	t := pos - float64(i0)

	p1 := sample(i0)
	p2 := sample(i0 + 1)
	m1 := (p2 - sample(i0-1)) / 2
	m2 := (sample(i0+2) - p1) / 2

	t2 := t * t
	t3 := t2 * t
	return (2*t3-3*t2+1)*p1 + (t3-2*t2+t)*m1 + (-2*t3+3*t2)*p2 + (t3-t2)*m2
}

// Embed implements the [pdf.Embedder] interface.
func (f *Type0) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	err := f.validate()
	if err != nil {
		return nil, err
	}

	size := make(pdf.Array, len(f.Size))
	for i, s := range f.Size {
		size[i] = pdf.Integer(s)
	}

	dict := pdf.Dict{
		"FunctionType":  pdf.Integer(0),
		"Domain":        toFloatArray(f.Domain),
		"Range":         toFloatArray(f.Range),
		"Size":          size,
		"BitsPerSample": pdf.Integer(f.BitsPerSample),
	}
	if f.UseCubic {
		dict["Order"] = pdf.Integer(3)
	}
	if len(f.Encode) > 0 {
		dict["Encode"] = toFloatArray(f.Encode)
	}
	if len(f.Decode) > 0 {
		dict["Decode"] = toFloatArray(f.Decode)
	}

	ref := rm.Out.Alloc()
	w, err := rm.Out.OpenStream(ref, dict, &pdf.FilterCompress{})
	if err != nil {
		return nil, err
	}
	_, err = w.Write(f.Samples)
	if err != nil {
		return nil, err
	}
	err = w.Close()
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func extractType0(x *pdf.Extractor, stream *pdf.Stream) (*Type0, error) {
	dict := stream.Dict

	domain, err := pdf.GetFloatArray(x.R, dict["Domain"])
	if err != nil {
		return nil, err
	}
	rng, err := pdf.GetFloatArray(x.R, dict["Range"])
	if err != nil {
		return nil, err
	}

	sizeObj, err := pdf.GetArray(x.R, dict["Size"])
	if err != nil {
		return nil, err
	}
	size := make([]int, len(sizeObj))
	for i, obj := range sizeObj {
		s, err := pdf.GetInteger(x.R, obj)
		if err != nil {
			return nil, err
		}
		size[i] = int(s)
	}

	bitsPerSample, err := pdf.GetInteger(x.R, dict["BitsPerSample"])
	if err != nil {
		return nil, err
	}
	order, err := pdf.GetInteger(x.R, dict["Order"])
	if err != nil {
		return nil, err
	}

	encode, err := pdf.GetFloatArray(x.R, dict["Encode"])
	if err != nil {
		return nil, err
	}
	decode, err := pdf.GetFloatArray(x.R, dict["Decode"])
	if err != nil {
		return nil, err
	}

	samples, err := pdf.ReadAll(x.R, stream)
	if err != nil {
		return nil, err
	}

	f := &Type0{
		Domain:        domain,
		Range:         rng,
		Size:          size,
		BitsPerSample: int(bitsPerSample),
		UseCubic:      order == 3,
		Encode:        encode,
		Decode:        decode,
		Samples:       samples,
	}
	f.repair()
	if err := f.validate(); err != nil {
		return nil, &pdf.MalformedFileError{Err: err}
	}
	return f, nil
}
