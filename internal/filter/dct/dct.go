// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2026  the Archivekit Authors
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

// Package dct implements the PDF DCTDecode filter on top of the standard
// library's baseline and progressive JPEG decoder, unpacking the result
// into component-interleaved bytes (1 component for grayscale, 3 for
// YCbCr->RGB, 4 for CMYK/YCCK) the way the rest of the image pipeline
// expects raw sample data.
package dct

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"
)

// Decode reads a complete JFIF/Adobe JPEG stream from r and returns a
// ReadCloser yielding row-major, component-packed pixel bytes. The number
// of components is determined by the decoded image's color model and can
// be recovered from the first Read by dividing the bounds' area; callers
// that need it ahead of time should decode into an image.Image directly
// via DecodeImage.
func Decode(r io.Reader) (io.ReadCloser, error) {
	img, _, err := DecodeImage(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(packImage(img))), nil
}

// Components reports how many interleaved bytes per pixel Decode produces
// for the given image.
func Components(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.CMYK:
		return 4
	default:
		return 3
	}
}

// DecodeImage decodes a JPEG stream and reports the image plus its
// component count, without packing into bytes.
func DecodeImage(r io.Reader) (image.Image, int, error) {
	img, err := jpeg.Decode(r)
	if err != nil {
		return nil, 0, err
	}
	return img, Components(img), nil
}

func packImage(img image.Image) []byte {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch px := img.(type) {
	case *image.Gray:
		out := make([]byte, w*h)
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				out[i] = px.GrayAt(x, y).Y
				i++
			}
		}
		return out
	case *image.CMYK:
		out := make([]byte, w*h*4)
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				off := px.PixOffset(x, y)
				copy(out[i:i+4], px.Pix[off:off+4])
				i += 4
			}
		}
		return out
	default:
		out := make([]byte, w*h*3)
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				out[i] = byte(r >> 8)
				out[i+1] = byte(g >> 8)
				out[i+2] = byte(b >> 8)
				i += 3
			}
		}
		return out
	}
}

// ErrUnsupportedTransform is returned for a /ColorTransform value outside
// {-1, 0, 1}.
var ErrUnsupportedTransform = errors.New("dct: unsupported ColorTransform value")

// ColorTransform selects how the Adobe APP14 marker's transform value is
// interpreted: -1 uses the marker (or format default) as-is, 0 forces no
// YCbCr/YCCK transform, 1 forces the transform.
type ColorTransform int

func (c ColorTransform) valid() bool { return c >= -1 && c <= 1 }

// DecodeWithParams mirrors Decode but validates the /ColorTransform
// parameter per the filter dictionary; the standard decoder always
// honors the embedded Adobe marker, so a non-default ColorTransform value
// is only rejected if out of range.
func DecodeWithParams(r io.Reader, colorTransform ColorTransform) (io.ReadCloser, error) {
	if !colorTransform.valid() {
		return nil, ErrUnsupportedTransform
	}
	return Decode(r)
}
