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

// Package asciihex implements the PDF ASCIIHexDecode and ASCIIHexEncode
// filters.
package asciihex

import (
	"errors"
	"io"
)

// ErrNoEOD is returned once the final byte of input has been consumed
// without finding a terminating '>'.
var ErrNoEOD = errors.New("asciihex: missing end-of-data marker")

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

func isWhite(b byte) bool {
	switch b {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	default:
		return false
	}
}

type reader struct {
	r    io.Reader
	buf  [1]byte
	done bool
	err  error
}

// Decode returns a reader that undoes ASCIIHexEncode. Whitespace is
// ignored; a trailing odd nibble is padded with a zero low nibble; '>'
// terminates the stream. If the source ends without a '>', the error
// returned alongside the final bytes is [ErrNoEOD].
func Decode(r io.Reader) io.Reader {
	return &reader{r: r}
}

func (d *reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := 0
	for n < len(p) {
		if d.done {
			if d.err != nil {
				return n, d.err
			}
			return n, io.EOF
		}

		var hi, lo byte
		var okHi, okLo bool

		hi, okHi = d.nextDigit()
		if !okHi {
			d.done = true
			if d.err == nil {
				d.err = io.EOF
			}
			continue
		}
		lo, okLo = d.nextDigit()
		if !okLo {
			// odd trailing nibble, padded with 0
			lo = 0
			d.done = true
			if d.err == nil {
				d.err = io.EOF
			}
		}
		p[n] = hi<<4 | lo
		n++
	}
	return n, nil
}

// nextDigit returns the next hex digit, skipping whitespace, stopping at
// '>' or EOF. The second return is false when no digit is available.
func (d *reader) nextDigit() (byte, bool) {
	for {
		b, err := d.readByte()
		if err != nil {
			if d.err == nil {
				d.err = ErrNoEOD
			}
			return 0, false
		}
		if b == '>' {
			d.err = nil
			return 0, false
		}
		if isWhite(b) {
			continue
		}
		v, ok := hexVal(b)
		if !ok {
			d.err = errors.New("asciihex: invalid character")
			return 0, false
		}
		return v, true
	}
}

func (d *reader) readByte() (byte, error) {
	_, err := io.ReadFull(d.r, d.buf[:])
	if err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

type writer struct {
	w       io.WriteCloser
	width   int
	col     int
	closed  bool
}

const hexDigits = "0123456789abcdef"

// Encode returns a WriteCloser that writes the ASCIIHexEncode form of the
// bytes written to it, wrapping lines at approximately width columns (0
// disables wrapping). Close writes the terminating '>' and closes w.
func Encode(w io.WriteCloser, width int) io.WriteCloser {
	return &writer{w: w, width: width}
}

func (e *writer) Write(p []byte) (int, error) {
	var out [2]byte
	for _, b := range p {
		out[0] = hexDigits[b>>4]
		out[1] = hexDigits[b&0xf]
		if _, err := e.w.Write(out[:]); err != nil {
			return 0, err
		}
		e.col += 2
		if e.width > 0 && e.col+2 > e.width {
			if _, err := e.w.Write([]byte{'\n'}); err != nil {
				return 0, err
			}
			e.col = 0
		}
	}
	return len(p), nil
}

func (e *writer) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if _, err := e.w.Write([]byte{'>'}); err != nil {
		return err
	}
	return e.w.Close()
}
