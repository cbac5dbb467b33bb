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

// Package predict implements the PNG and TIFF predictors used by the
// Flate and LZW filters' /Predictor, /Columns, /Colors and
// /BitsPerComponent parameters.
package predict

import (
	"errors"
	"fmt"
	"io"
)

// Params holds the predictor parameters shared by the Flate and LZW
// filters.
type Params struct {
	Predictor        int // 1=none, 2=TIFF, 10-15=PNG
	Colors           int
	BitsPerComponent int
	Columns          int
}

// Validate checks that the parameters are in range.
func (p Params) Validate() error {
	if p.Predictor != 1 && p.Predictor != 2 && (p.Predictor < 10 || p.Predictor > 15) {
		return fmt.Errorf("predict: invalid Predictor %d", p.Predictor)
	}
	if p.Colors < 1 {
		return errors.New("predict: Colors must be >= 1")
	}
	if p.Predictor == 2 && p.Colors > 60 {
		return errors.New("predict: Colors too large for TIFF predictor")
	}
	if p.Predictor >= 10 && p.Colors > 256 {
		return errors.New("predict: Colors too large for PNG predictor")
	}
	switch p.BitsPerComponent {
	case 1, 2, 4, 8, 16:
	default:
		return fmt.Errorf("predict: invalid BitsPerComponent %d", p.BitsPerComponent)
	}
	if p.Columns < 1 {
		return errors.New("predict: Columns must be >= 1")
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("Predictor=%d Colors=%d BitsPerComponent=%d Columns=%d",
		p.Predictor, p.Colors, p.BitsPerComponent, p.Columns)
}

// bytesPerPixel is the PDF spec's Bpp: the (rounded up) number of bytes
// needed to hold one pixel's worth of components.
func (p Params) bytesPerPixel() int {
	bits := p.Colors * p.BitsPerComponent
	return (bits + 7) / 8
}

// bytesPerRow is Bpl, excluding the leading guard/tag bytes.
func (p Params) bytesPerRow() int {
	bits := p.Columns * p.Colors * p.BitsPerComponent
	return (bits + 7) / 8
}

// NewReader wraps r, applying reverse prediction to the decompressed
// stream it produces. If p.Predictor is 1, r is returned unchanged.
func NewReader(r io.Reader, p *Params) (io.Reader, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch {
	case p.Predictor == 1:
		return r, nil
	case p.Predictor == 2:
		return newTIFFReader(r, *p), nil
	default:
		return newPNGReader(r, *p), nil
	}
}

// NewWriter wraps w, applying the forward predictor to data written to
// it. If p.Predictor is 1, w is returned unchanged.
func NewWriter(w io.WriteCloser, p *Params) (io.WriteCloser, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch {
	case p.Predictor == 1:
		return w, nil
	case p.Predictor == 2:
		return newTIFFWriter(w, *p), nil
	default:
		return newPNGWriter(w, *p), nil
	}
}
