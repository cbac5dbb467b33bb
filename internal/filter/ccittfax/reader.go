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

package ccittfax

import "io"

// Reader decodes a CCITT Group 3/4 bit stream into packed 1-bit-per-pixel
// rows, MSB first, one row per p.Columns bits rounded up to a byte.
type Reader struct {
	p       Params
	br      *bitReader
	refLine []byte // previous decoded row, for 2D modes
	line    []byte // row currently being assembled
	out     []byte // bytes of line not yet delivered to the caller
	rows    int
	err     error
}

// NewReader validates p and returns a Reader over r.
func NewReader(r io.Reader, p *Params) (*Reader, error) {
	pp := *p
	if err := pp.Validate(); err != nil {
		return nil, err
	}
	return &Reader{p: pp, br: newBitReader(r)}, nil
}

func (d *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(d.out) > 0 {
			c := copy(p[n:], d.out)
			d.out = d.out[c:]
			n += c
			continue
		}
		if d.err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, d.err
		}
		if max := d.p.rows(); max > 0 && d.rows >= max {
			d.err = io.EOF
			continue
		}
		if err := d.decodeNextRow(); err != nil {
			d.err = err
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
	}
	return n, nil
}

func (d *Reader) decodeNextRow() error {
	d.line = nil
	var err error
	if d.p.K < 0 {
		err = d.decode2DRow()
	} else if d.p.K == 0 {
		err = d.decode1DRow()
	} else {
		// mixed 1D/2D Group 3: a tag bit selects the row's coding, 1 for
		// 1D and 0 for 2D, following the leading EOL when present.
		tag, tErr := d.br.ReadBit()
		if tErr != nil {
			return tErr
		}
		if tag == 1 {
			err = d.decode1DRow()
		} else {
			err = d.decode2DRow()
		}
	}
	if err != nil {
		return err
	}
	d.fillRowBits(len(d.line)*8, d.p.Columns, false) // extend a short row to full width with zero bits
	if d.p.EncodedByteAlign {
		d.br.align()
	}
	d.refLine = append([]byte(nil), d.line...)
	d.out = d.line
	d.rows++
	return nil
}

// fillRowBits extends d.line as needed to cover bit positions [0,end) and,
// when fill is true, sets bits [start,end) to 1.
func (d *Reader) fillRowBits(start, end int, fill bool) {
	if end <= start {
		return
	}
	needed := (end + 7) / 8
	if len(d.line) < needed {
		grown := make([]byte, needed)
		copy(grown, d.line)
		d.line = grown
	}
	if !fill {
		return
	}
	for bit := start; bit < end; bit++ {
		byteIdx := bit / 8
		bitIdx := uint(7 - bit%8)
		d.line[byteIdx] |= 1 << bitIdx
	}
}

func (d *Reader) blackBit() byte {
	if d.p.BlackIs1 {
		return 1
	}
	return 0
}

func (d *Reader) decode1DRow() error {
	pos := 0
	white := true
	blackBit := d.blackBit()
	for pos < d.p.Columns {
		tree := whiteTree
		if !white {
			tree = blackTree
		}
		run, err := decodeRun(d.br, tree)
		if err != nil {
			return err
		}
		end := pos + run
		if end > d.p.Columns {
			end = d.p.Columns
		}
		if !white {
			d.fillRowBits(pos, end, blackBit == 1)
		} else {
			d.fillRowBits(pos, end, blackBit == 0)
		}
		pos = end
		white = !white
	}
	return nil
}

func (d *Reader) decode2DRow() error {
	blackBit := d.blackBit()
	a0 := -1
	white := true
	for a0 < d.p.Columns {
		currentBit := byte(1)
		if !white {
			currentBit = 0
		}
		if d.p.BlackIs1 {
			currentBit = 1 - currentBit
		}
		mode, err := decodeMode(d.br)
		if err != nil {
			return err
		}
		switch mode {
		case modePass:
			_, b2 := Params(d.p).findB1B2(d.refLine, a0, currentBit)
			fill := (white && blackBit == 0) || (!white && blackBit == 1)
			start := a0
			if start < 0 {
				start = 0
			}
			d.fillRowBits(start, b2, fill)
			a0 = b2
		case modeHorizontal:
			tree1, tree2 := whiteTree, blackTree
			if !white {
				tree1, tree2 = blackTree, whiteTree
			}
			run1, err := decodeRun(d.br, tree1)
			if err != nil {
				return err
			}
			run2, err := decodeRun(d.br, tree2)
			if err != nil {
				return err
			}
			start := a0
			if start < 0 {
				start = 0
			}
			mid := start + run1
			if mid > d.p.Columns {
				mid = d.p.Columns
			}
			end := mid + run2
			if end > d.p.Columns {
				end = d.p.Columns
			}
			fillFirst := (white && blackBit == 0) || (!white && blackBit == 1)
			d.fillRowBits(start, mid, fillFirst)
			d.fillRowBits(mid, end, !fillFirst)
			a0 = end
		case modeV0, modeVR1, modeVR2, modeVR3, modeVL1, modeVL2, modeVL3:
			b1, _ := Params(d.p).findB1B2(d.refLine, a0, currentBit)
			delta := 0
			switch mode {
			case modeVR1:
				delta = 1
			case modeVR2:
				delta = 2
			case modeVR3:
				delta = 3
			case modeVL1:
				delta = -1
			case modeVL2:
				delta = -2
			case modeVL3:
				delta = -3
			}
			a1 := b1 + delta
			if a1 < 0 {
				a1 = 0
			}
			if a1 > d.p.Columns {
				a1 = d.p.Columns
			}
			start := a0
			if start < 0 {
				start = 0
			}
			fill := (white && blackBit == 0) || (!white && blackBit == 1)
			d.fillRowBits(start, a1, fill)
			a0 = a1
			white = !white
		case modeEOL:
			return io.EOF
		default:
			return ErrInvalidCode
		}
	}
	return nil
}
