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

// Package ccittfax implements the PDF CCITTFaxDecode/Encode filter: the
// ITU-T T.4 (Group 3) one-dimensional and T.6 (Group 4) two-dimensional
// modified-READ coding schemes used for bilevel scanned images.
package ccittfax

import (
	"errors"
	"fmt"
)

// maxColumns bounds the row width accepted by NewReader/NewWriter, guarding
// against pathological /Columns values driving unbounded allocation.
const maxColumns = 1 << 20

// Params mirrors the PDF CCITTFaxDecode parameter dictionary.
type Params struct {
	K                      int // <0: Group 4 (pure 2D), 0: Group 3 1D, >0: Group 3 mixed 1D/2D
	Columns                int // 0 defaults to 1728
	Rows                   int // 0 means unknown; decoding stops at EndOfBlock or EOF
	MaxRows                int // alias accepted by callers that pass an explicit row count
	EndOfLine              bool
	EncodedByteAlign       bool
	EndOfBlock             bool // PDF default is true; callers constructing from a dict should set it explicitly
	IgnoreEndOfBlock       bool // when set, never wait for an EOB code to terminate decoding
	BlackIs1               bool
	DamagedRowsBeforeError int
}

func (p Params) rows() int {
	if p.Rows > 0 {
		return p.Rows
	}
	return p.MaxRows
}

// Validate checks and normalizes Columns, returning an error for an
// out-of-range value.
func (p *Params) Validate() error {
	if p.Columns < 0 {
		return fmt.Errorf("ccittfax: negative Columns %d", p.Columns)
	}
	if p.Columns == 0 {
		p.Columns = 1728
	}
	if p.Columns > maxColumns {
		return fmt.Errorf("ccittfax: Columns %d exceeds limit %d", p.Columns, maxColumns)
	}
	return nil
}

// ErrInvalidCode is returned when the bit stream contains a code that
// matches no entry in the white/black run-length or 2D mode tables.
var ErrInvalidCode = errors.New("ccittfax: invalid code word")

// findB1B2 locates the two reference-line changing elements used by the
// Group 4 two-dimensional coding modes, per ITU-T T.6 §2.2.1: b1 is the
// first changing element on line strictly to the right of a0 and of the
// opposite color to a0 (whose actual color is currentBit); b2 is the next
// changing element after b1. A changing element is a position whose pixel
// differs from the one immediately before it; the pixel at position -1 is
// the imaginary all-white starting element. Both return values are
// p.Columns when no such element exists.
func (p Params) findB1B2(line []byte, a0 int, currentBit byte) (b1, b2 int) {
	columns := p.Columns
	whiteBit := byte(1)
	if p.BlackIs1 {
		whiteBit = 0
	}
	getBit := func(pos int) byte {
		if pos < 0 || pos >= columns {
			return whiteBit
		}
		byteIdx := pos / 8
		if byteIdx >= len(line) {
			return whiteBit
		}
		bitIdx := uint(7 - pos%8)
		return (line[byteIdx] >> bitIdx) & 1
	}

	findNext := func(start int, prevColor byte) (int, byte) {
		for pos := start; pos < columns; pos++ {
			c := getBit(pos)
			if c != prevColor {
				return pos, c
			}
			prevColor = c
		}
		return columns, prevColor
	}

	prevColor := getBit(a0)
	b1pos, b1color := findNext(a0+1, prevColor)
	for b1pos < columns && b1color == currentBit {
		b1pos, b1color = findNext(b1pos+1, b1color)
	}
	if b1pos >= columns {
		return columns, columns
	}
	b2pos, _ := findNext(b1pos+1, b1color)
	return b1pos, b2pos
}
