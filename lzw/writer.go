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

package lzw

import (
	"errors"
	"io"
)

type writer struct {
	w io.Writer

	bits  uint32
	nBits uint

	width       uint
	earlyChange int

	// table maps (current code, next byte) pairs to codes.  The key is
	// current<<8 | byte.
	table map[uint32]uint16
	next  int

	current int // the code for the pending input prefix, or -1
	err     error
}

// NewWriter creates a new io.WriteCloser which compresses data using the
// LZW scheme used in PDF files.  The Close method must be called to
// write the end-of-data marker and to flush buffered codes.
func NewWriter(w io.Writer, earlyChange bool) (io.WriteCloser, error) {
	e := &writer{
		w:       w,
		width:   9,
		current: -1,
	}
	if earlyChange {
		e.earlyChange = 1
	}
	e.clear()

	// The stream starts with a clear-table marker.
	err := e.emit(clearCode)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (e *writer) clear() {
	e.table = make(map[uint32]uint16, 1<<maxWidth-firstCode)
	e.next = firstCode
}

func (e *writer) emit(code int) error {
	e.bits |= uint32(code) << (32 - e.width - e.nBits)
	e.nBits += e.width
	for e.nBits >= 8 {
		var buf [1]byte
		buf[0] = byte(e.bits >> 24)
		_, err := e.w.Write(buf[:])
		if err != nil {
			return err
		}
		e.bits <<= 8
		e.nBits -= 8
	}
	return nil
}

// updateWidth adjusts the code width after the table has grown.  When
// the table is about to overflow, the table is reset instead.
func (e *writer) updateWidth() error {
	if e.next+e.earlyChange >= 1<<maxWidth {
		err := e.emit(clearCode)
		if err != nil {
			return err
		}
		e.clear()
		e.width = 9
		return nil
	}
	for e.next+e.earlyChange > 1<<e.width {
		e.width++
	}
	return nil
}

func (e *writer) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	for i, b := range p {
		if e.current < 0 {
			e.current = int(b)
			continue
		}
		key := uint32(e.current)<<8 | uint32(b)
		if code, ok := e.table[key]; ok {
			e.current = int(code)
			continue
		}

		err := e.emit(e.current)
		if err != nil {
			e.err = err
			return i, err
		}
		e.table[key] = uint16(e.next)
		e.next++
		err = e.updateWidth()
		if err != nil {
			e.err = err
			return i, err
		}
		e.current = int(b)
	}
	return len(p), nil
}

func (e *writer) Close() error {
	if e.err != nil {
		return e.err
	}
	if e.current >= 0 {
		err := e.emit(e.current)
		if err != nil {
			return err
		}
	}
	err := e.emit(eodCode)
	if err != nil {
		return err
	}
	if e.nBits > 0 {
		var buf [1]byte
		buf[0] = byte(e.bits >> 24)
		_, err = e.w.Write(buf[:])
		if err != nil {
			return err
		}
	}
	e.err = errors.New("lzw: writer is closed")
	return nil
}
