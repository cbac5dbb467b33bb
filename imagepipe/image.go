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

// Package imagepipe decodes the images used on PDF pages.
//
// The package classifies images into the five cases distinguished by
// the page interpreter (plain, image mask, color-key masked,
// stencil-masked and soft-masked), and provides a row-based pixel iterator over the
// decoded samples.
package imagepipe

import (
	"errors"
	"fmt"
	"io"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/graphics/color"
)

// Kind describes how an image interacts with its mask.
type Kind int

// The image dispatch cases.
const (
	// KindPlain is an image without a mask.
	KindPlain Kind = iota

	// KindImageMask is a 1 bit-per-pixel stencil mask painted in the
	// current fill color.
	KindImageMask

	// KindColorKey is an image with color key masking, i.e. a range
	// of sample values which are not painted.
	KindColorKey

	// KindStencilMasked is an image with an explicit stencil mask
	// image.
	KindStencilMasked

	// KindSoftMasked is an image with a soft (alpha) mask.
	KindSoftMasked
)

// Image describes an image XObject or inline image.
type Image struct {
	Kind Kind

	Width  int
	Height int

	// BitsPerComponent is the number of bits per color component.
	BitsPerComponent int

	// Space is the color space of the image samples.  This is nil for
	// image masks.
	Space color.Space

	// Decode is the sample decode array, or nil for the default.
	Decode []float64

	// MaskColors holds pairs of min/max sample values for color key
	// masking.
	MaskColors []int

	// Mask is the stencil or soft mask image, if any.
	Mask pdf.Object

	// Interpolate indicates that the image should be smoothed when
	// scaled.
	Interpolate bool

	stream *pdf.Stream
	r      pdf.Getter
}

// imageDictKey returns the value of an image dictionary entry,
// accepting both the full name and the abbreviation used for inline
// images.
func imageDictKey(dict pdf.Dict, name, abbrev pdf.Name) pdf.Object {
	if obj := dict[name]; obj != nil {
		return obj
	}
	return dict[abbrev]
}

// Extract reads the parameters of an image.  For inline images, data
// holds the raw bytes between the ID and EI operators; for image
// XObjects, data is nil and the samples are read from the stream.
func Extract(x *pdf.Extractor, obj pdf.Object, data []byte) (*Image, error) {
	var dict pdf.Dict
	var stm *pdf.Stream

	resolved, err := pdf.Resolve(x.R, obj)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case pdf.Dict:
		dict = v
	case *pdf.Stream:
		stm = v
		dict = v.Dict
	default:
		return nil, &pdf.MalformedFileError{
			Err: fmt.Errorf("invalid image object %T", resolved),
		}
	}

	img := &Image{
		stream: stm,
		r:      x.R,
	}
	if data != nil {
		// Inline image data is wrapped into a stream, so that the
		// abbreviated filter names from the image dictionary apply.
		streamDict := pdf.Dict{
			"Length": pdf.Integer(len(data)),
		}
		if f := imageDictKey(dict, "Filter", "F"); f != nil {
			streamDict["Filter"] = f
		}
		if dp := imageDictKey(dict, "DecodeParms", "DP"); dp != nil {
			streamDict["DecodeParms"] = dp
		}
		img.stream = &pdf.Stream{
			Dict: streamDict,
			R:    newByteReader(data),
		}
	}

	w, err := pdf.GetInteger(x.R, imageDictKey(dict, "Width", "W"))
	if err != nil {
		return nil, err
	}
	h, err := pdf.GetInteger(x.R, imageDictKey(dict, "Height", "H"))
	if err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 || w > 1<<20 || h > 1<<20 {
		return nil, &pdf.MalformedFileError{
			Err: errors.New("invalid image dimensions"),
		}
	}
	img.Width = int(w)
	img.Height = int(h)

	bpc, err := pdf.GetInteger(x.R, imageDictKey(dict, "BitsPerComponent", "BPC"))
	if err != nil {
		return nil, err
	}
	img.BitsPerComponent = int(bpc)

	isMask, err := pdf.GetBoolean(x.R, imageDictKey(dict, "ImageMask", "IM"))
	if err != nil {
		return nil, err
	}
	if interp, err := pdf.GetBoolean(x.R, imageDictKey(dict, "Interpolate", "I")); err == nil {
		img.Interpolate = bool(interp)
	}
	img.Decode, err = pdf.GetFloatArray(x.R, imageDictKey(dict, "Decode", "D"))
	if err != nil {
		return nil, err
	}

	if isMask {
		img.Kind = KindImageMask
		img.BitsPerComponent = 1
		return img, nil
	}

	if csObj := imageDictKey(dict, "ColorSpace", "CS"); csObj != nil {
		img.Space, err = color.ExtractSpace(x, csObj)
		if err != nil {
			return nil, err
		}
	}
	if img.BitsPerComponent < 1 || img.BitsPerComponent > 16 {
		return nil, &pdf.MalformedFileError{
			Err: errors.New("invalid image bit depth"),
		}
	}

	// classify the masking behavior
	if smask := dict["SMask"]; smask != nil {
		img.Kind = KindSoftMasked
		img.Mask = smask
		return img, nil
	}
	maskObj, err := pdf.Resolve(x.R, dict["Mask"])
	if err != nil {
		return nil, err
	}
	switch mask := maskObj.(type) {
	case nil:
		img.Kind = KindPlain
	case pdf.Array:
		img.Kind = KindColorKey
		img.MaskColors = make([]int, 0, len(mask))
		for _, elem := range mask {
			v, err := pdf.GetInteger(x.R, elem)
			if err != nil {
				return nil, err
			}
			img.MaskColors = append(img.MaskColors, int(v))
		}
	case *pdf.Stream:
		img.Kind = KindStencilMasked
		img.Mask = dict["Mask"]
	default:
		img.Kind = KindPlain
	}
	return img, nil
}

// NumComponents returns the number of color components per pixel.
func (img *Image) NumComponents() int {
	if img.Kind == KindImageMask {
		return 1
	}
	if img.Space == nil {
		return 1
	}
	if n := img.Space.Channels(); n > 0 {
		return n
	}
	return 1
}

// Rows returns an iterator over the decoded sample rows of the image.
// Each row holds Width*NumComponents sample values.
type Rows struct {
	r     io.ReadCloser
	buf   []byte
	row   []uint16
	comps int
	bits  int
	width int
	err   error
}

// Rows opens the image data and returns a row iterator.
func (img *Image) Rows() (*Rows, error) {
	comps := img.NumComponents()
	bits := img.BitsPerComponent

	bitsPerRow := img.Width * comps * bits
	if bitsPerRow <= 0 || bitsPerRow > 1<<28 {
		return nil, errors.New("image row too large")
	}

	if img.stream == nil {
		return nil, errors.New("no image data")
	}
	src, err := pdf.DecodeStream(img.r, img.stream, 0)
	if err != nil {
		return nil, err
	}

	return &Rows{
		r:     src,
		buf:   make([]byte, (bitsPerRow+7)/8),
		row:   make([]uint16, img.Width*comps),
		comps: comps,
		bits:  bits,
		width: img.Width,
	}, nil
}

// Next reads the next row of samples.  It returns nil at the end of
// the image data.
func (rows *Rows) Next() []uint16 {
	if rows.err != nil {
		return nil
	}
	_, err := io.ReadFull(rows.r, rows.buf)
	if err != nil {
		rows.err = err
		return nil
	}

	// unpack the component values through a bit accumulator
	var acc uint32
	var nBits int
	pos := 0
	for i := range rows.row {
		for nBits < rows.bits {
			acc = acc<<8 | uint32(rows.buf[pos])
			pos++
			nBits += 8
		}
		rows.row[i] = uint16(acc >> (nBits - rows.bits) & (1<<rows.bits - 1))
		nBits -= rows.bits
	}
	return rows.row
}

// Close releases the underlying stream.
func (rows *Rows) Close() error {
	return rows.r.Close()
}

func newByteReader(data []byte) io.Reader {
	return &byteReader{data: data}
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
