// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2023  the Archivekit Authors
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

// Package lzw implements the LZW compression scheme used in PDF files.
// This is the variant of LZW described in section 7.4.4 of
// PDF 32000-1:2008, with most-significant bits first, a clear-table
// marker of 256, an end-of-data marker of 257, and code lengths growing
// from 9 to 12 bits.  The EarlyChange parameter controls whether the
// code length increases one code early.
package lzw

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

const (
	clearCode = 256
	eodCode   = 257
	firstCode = 258
	maxWidth  = 12
)

// ErrCorrupt is returned when the compressed data is invalid.
var ErrCorrupt = errors.New("lzw: corrupt input")

type reader struct {
	r io.ByteReader

	bits  uint32
	nBits uint

	width       uint
	earlyChange int // 0 or 1

	// the decoder table; suffix and prefix are indexed by code (entries
	// below firstCode are unused)
	suffix [1 << maxWidth]byte
	prefix [1 << maxWidth]uint16
	next   int

	last int // previous code, or -1 after a clear marker

	// output holds decoded bytes which have not been read yet
	output [2 * 1 << maxWidth]byte
	o      int
	toRead []byte

	err error
}

// NewReader creates a new io.ReadCloser which decompresses data in the
// LZW format used by PDF.
func NewReader(r io.Reader, earlyChange bool) io.ReadCloser {
	d := &reader{
		width: 9,
		last:  -1,
		next:  firstCode,
	}
	if br, ok := r.(io.ByteReader); ok {
		d.r = br
	} else {
		d.r = bufio.NewReader(r)
	}
	if earlyChange {
		d.earlyChange = 1
	}
	return d
}

func (d *reader) Read(p []byte) (int, error) {
	for {
		if len(d.toRead) > 0 {
			n := copy(p, d.toRead)
			d.toRead = d.toRead[n:]
			return n, nil
		}
		if d.err != nil {
			return 0, d.err
		}
		d.decode()
	}
}

func (d *reader) readCode() (int, error) {
	for d.nBits < d.width {
		c, err := d.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		d.bits |= uint32(c) << (24 - d.nBits)
		d.nBits += 8
	}
	code := int(d.bits >> (32 - d.width))
	d.bits <<= d.width
	d.nBits -= d.width
	return code, nil
}

// decode decompresses bytes from d.r and places them in d.toRead.
func (d *reader) decode() {
	for {
		code, err := d.readCode()
		if err != nil {
			d.err = err
			break
		}

		switch {
		case code < 256:
			d.output[d.o] = byte(code)
			d.o++
			if d.last >= 0 && d.next < 1<<maxWidth {
				// add the new entry to the table
				d.suffix[d.next] = byte(code)
				d.prefix[d.next] = uint16(d.last)
				d.next++
			}
			d.last = code
		case code == clearCode:
			d.width = 9
			d.next = firstCode
			d.last = -1
			continue
		case code == eodCode:
			d.err = io.EOF
		case code <= d.next && d.last >= 0:
			if code == d.next {
				if d.next >= 1<<maxWidth {
					d.err = fmt.Errorf("%w: table overflow", ErrCorrupt)
					break
				}
				// the code refers to the entry we are about to create
				d.suffix[d.next] = d.firstByte(d.last)
				d.prefix[d.next] = uint16(d.last)
			}

			// Expand the code into the output buffer, back to front.
			i := len(d.output)
			c := code
			for c >= 256 {
				i--
				d.output[i] = d.suffix[c]
				c = int(d.prefix[c])
			}
			i--
			d.output[i] = byte(c)
			d.o += copy(d.output[d.o:], d.output[i:])

			if code == d.next {
				d.next++
			} else if d.next < 1<<maxWidth {
				d.suffix[d.next] = byte(c)
				d.prefix[d.next] = uint16(d.last)
				d.next++
			}
			d.last = code
		default:
			d.err = fmt.Errorf("%w: unexpected code %d", ErrCorrupt, code)
		}

		if d.err != nil {
			break
		}

		if d.next+d.earlyChange >= 1<<d.width && d.width < maxWidth {
			d.width++
		}

		if d.o >= 1<<maxWidth {
			break
		}
	}
	d.toRead = d.output[:d.o]
	d.o = 0
}

// firstByte returns the first byte of the expansion of code.
func (d *reader) firstByte(code int) byte {
	for code >= 256 {
		code = int(d.prefix[code])
	}
	return byte(code)
}

func (d *reader) Close() error {
	if d.err == io.EOF || d.err == nil {
		d.err = errors.New("lzw: reader is closed")
		return nil
	}
	err := d.err
	d.err = errors.New("lzw: reader is closed")
	return err
}
