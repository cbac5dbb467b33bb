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

import (
	"errors"
	"fmt"
	"io"
)

// Writer encodes 1 bit-per-pixel image rows in CCITT Group 3 or Group 4
// fax format.  Input rows are packed most-significant bit first, one
// row per Columns bits, padded to full bytes.
type Writer struct {
	p  Params
	bw *bitWriter

	rowBytes int
	buf      []byte
	refLine  []byte
	closed   bool
}

// NewWriter creates a new CCITT fax encoder.
func NewWriter(w io.Writer, p *Params) (*Writer, error) {
	pp := *p
	if err := pp.Validate(); err != nil {
		return nil, err
	}
	if pp.K > 0 {
		return nil, errors.New("ccittfax: mixed 1D/2D encoding not supported")
	}
	rowBytes := (pp.Columns + 7) / 8
	return &Writer{
		p:        pp,
		bw:       newBitWriter(w),
		rowBytes: rowBytes,
		buf:      make([]byte, 0, rowBytes),
	}, nil
}

// Write implements the io.Writer interface.
func (e *Writer) Write(p []byte) (int, error) {
	if e.closed {
		return 0, errors.New("ccittfax: writer is closed")
	}
	total := 0
	for len(p) > 0 {
		n := e.rowBytes - len(e.buf)
		if n > len(p) {
			n = len(p)
		}
		e.buf = append(e.buf, p[:n]...)
		p = p[n:]
		total += n
		if len(e.buf) == e.rowBytes {
			err := e.encodeRow(e.buf)
			if err != nil {
				return total, err
			}
			e.buf = e.buf[:0]
		}
	}
	return total, nil
}

// Close flushes buffered bits.  If EndOfLine is set, it first writes six
// EOL codes (the return-to-control sequence); no other end-of-block code
// is written.
func (e *Writer) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if len(e.buf) > 0 {
		return fmt.Errorf("ccittfax: %d stray bytes at end of image data", len(e.buf))
	}
	if e.p.EndOfLine {
		// return to control: six consecutive EOL codes
		for range 6 {
			err := e.bw.WriteBits(1, 12)
			if err != nil {
				return err
			}
		}
	}
	return e.bw.Flush()
}

// whiteAt reports whether the pixel at position pos in the packed row
// is white.
func (e *Writer) whiteAt(row []byte, pos int) bool {
	bit := row[pos/8]>>(7-pos%8)&1 == 1
	if e.p.BlackIs1 {
		return !bit
	}
	return bit
}

func (e *Writer) encodeRow(row []byte) error {
	if e.p.EndOfLine {
		err := e.bw.WriteBits(1, 12)
		if err != nil {
			return err
		}
	}

	var err error
	if e.p.K < 0 {
		err = e.encode2DRow(row)
	} else {
		err = e.encode1DRow(row)
	}
	if err != nil {
		return err
	}

	if e.p.EncodedByteAlign {
		err = e.bw.Align()
		if err != nil {
			return err
		}
	}
	e.refLine = append(e.refLine[:0], row...)
	return nil
}

func (e *Writer) encode1DRow(row []byte) error {
	columns := e.p.Columns
	pos := 0
	white := true
	for pos < columns {
		run := 0
		for pos+run < columns && e.whiteAt(row, pos+run) == white {
			run++
		}
		table := whiteCodes
		if !white {
			table = blackCodes
		}
		for _, c := range encodeRunCode(table, run) {
			err := e.bw.WriteCode(c)
			if err != nil {
				return err
			}
		}
		pos += run
		white = !white
	}
	return nil
}

// changes returns the positions of the changing elements in a packed
// row.  A changing element is a pixel whose color differs from that of
// the previous pixel; the imaginary pixel before the row is white.
func (e *Writer) changes(row []byte) []int {
	columns := e.p.Columns
	var res []int
	prevWhite := true
	for i := 0; i < columns; i++ {
		w := e.whiteAt(row, i)
		if w != prevWhite {
			res = append(res, i)
		}
		prevWhite = w
	}
	return res
}

func (e *Writer) encode2DRow(row []byte) error {
	columns := e.p.Columns
	ref := e.refLine
	if ref == nil {
		// the reference line for the first row is an imaginary all-white row
		ref = make([]byte, e.rowBytes)
		if !e.p.BlackIs1 {
			for i := range ref {
				ref[i] = 0xFF
			}
		}
	}

	changesC := e.changes(row)
	changesR := e.changes(ref)

	// find the first changing element on the given line strictly to the
	// right of pos; which of the changing elements are white is
	// determined by their parity, since runs alternate starting with
	// white
	next := func(changes []int, pos int, white bool) int {
		for i, p := range changes {
			if p <= pos {
				continue
			}
			isWhite := i%2 == 1 // even indices start black runs
			if isWhite == white {
				return p
			}
		}
		return columns
	}

	a0 := -1
	a0White := true
	for a0 < columns {
		// a1: the next changing element on the coding line
		a1 := columns
		for _, p := range changesC {
			if p > a0 {
				a1 = p
				break
			}
		}
		// b1: the next changing element on the reference line with
		// color opposite to a0; b2: the changing element following b1
		b1 := next(changesR, a0, !a0White)
		b2 := columns
		for _, p := range changesR {
			if p > b1 {
				b2 = p
				break
			}
		}

		switch {
		case b2 < a1:
			// pass mode
			err := e.bw.WriteCode(modeCodeBits[modePass])
			if err != nil {
				return err
			}
			a0 = b2
		case a1-b1 >= -3 && a1-b1 <= 3:
			// vertical mode
			var mode twoDimMode
			switch a1 - b1 {
			case 0:
				mode = modeV0
			case 1:
				mode = modeVR1
			case 2:
				mode = modeVR2
			case 3:
				mode = modeVR3
			case -1:
				mode = modeVL1
			case -2:
				mode = modeVL2
			case -3:
				mode = modeVL3
			}
			err := e.bw.WriteCode(modeCodeBits[mode])
			if err != nil {
				return err
			}
			a0 = a1
			a0White = !a0White
		default:
			// horizontal mode: emit the two runs starting at a0
			a2 := columns
			for _, p := range changesC {
				if p > a1 {
					a2 = p
					break
				}
			}
			err := e.bw.WriteCode(modeCodeBits[modeHorizontal])
			if err != nil {
				return err
			}
			start := a0
			if start < 0 {
				start = 0
			}
			table1, table2 := whiteCodes, blackCodes
			if !a0White {
				table1, table2 = blackCodes, whiteCodes
			}
			for _, c := range encodeRunCode(table1, a1-start) {
				err = e.bw.WriteCode(c)
				if err != nil {
					return err
				}
			}
			for _, c := range encodeRunCode(table2, a2-a1) {
				err = e.bw.WriteCode(c)
				if err != nil {
					return err
				}
			}
			a0 = a2
		}
	}
	return nil
}
