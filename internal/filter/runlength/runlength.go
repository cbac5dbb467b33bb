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

// Package runlength implements the PDF RunLengthDecode/Encode filter.
package runlength

import "io"

// Decode returns a reader implementing RunLengthDecode: a length byte
// 0..127 copies the following n+1 bytes literally, 129..255 repeats the
// following byte 257-n times, and 128 is the end-of-data marker.
func Decode(r io.Reader) io.Reader {
	return &reader{r: r}
}

type reader struct {
	r       io.Reader
	pending []byte
	done    bool
	lenBuf  [1]byte
	runBuf  [1]byte
}

func (d *reader) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if len(d.pending) > 0 {
			n := copy(p[total:], d.pending)
			d.pending = d.pending[n:]
			total += n
			continue
		}
		if d.done {
			if total > 0 {
				return total, nil
			}
			return 0, io.EOF
		}
		if _, err := io.ReadFull(d.r, d.lenBuf[:]); err != nil {
			d.done = true
			if total > 0 {
				return total, nil
			}
			if err == io.ErrUnexpectedEOF {
				err = io.EOF
			}
			return 0, err
		}
		n := d.lenBuf[0]
		switch {
		case n == 128:
			d.done = true
		case n < 128:
			buf := make([]byte, int(n)+1)
			if _, err := io.ReadFull(d.r, buf); err != nil {
				d.done = true
				if total > 0 {
					return total, nil
				}
				return 0, err
			}
			d.pending = buf
		default:
			if _, err := io.ReadFull(d.r, d.runBuf[:]); err != nil {
				d.done = true
				if total > 0 {
					return total, nil
				}
				return 0, err
			}
			count := 257 - int(n)
			buf := make([]byte, count)
			for i := range buf {
				buf[i] = d.runBuf[0]
			}
			d.pending = buf
		}
	}
	return total, nil
}

type writer struct {
	w   io.WriteCloser
	buf []byte
}

// Encode returns a WriteCloser implementing RunLengthEncode. Input is
// buffered and the run-length packing is computed on Close, which then
// flushes the encoded form, writes the EOD marker (128), and closes w.
func Encode(w io.WriteCloser) io.WriteCloser {
	return &writer{w: w}
}

func (e *writer) Write(p []byte) (int, error) {
	e.buf = append(e.buf, p...)
	return len(p), nil
}

// pack splits data into alternating literal and repeat runs: a run of 3
// or more identical bytes is encoded as a repeat run, anything shorter
// stays in the surrounding literal run.
func (e *writer) pack() error {
	data := e.buf
	var literal []byte
	flush := func() error {
		if len(literal) == 0 {
			return nil
		}
		err := e.flushLiteral(literal)
		literal = literal[:0]
		return err
	}
	for i := 0; i < len(data); {
		j := i + 1
		for j < len(data) && data[j] == data[i] {
			j++
		}
		runLen := j - i
		if runLen >= 3 {
			if err := flush(); err != nil {
				return err
			}
			if err := e.writeRepeat(data[i], runLen); err != nil {
				return err
			}
		} else {
			literal = append(literal, data[i:j]...)
		}
		i = j
	}
	return flush()
}

func (e *writer) flushLiteral(data []byte) error {
	for len(data) > 0 {
		n := len(data)
		if n > 128 {
			n = 128
		}
		if _, err := e.w.Write([]byte{byte(n - 1)}); err != nil {
			return err
		}
		if _, err := e.w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func (e *writer) writeRepeat(b byte, count int) error {
	for count > 0 {
		n := count
		if n > 128 {
			n = 128
		}
		if _, err := e.w.Write([]byte{byte(257 - n)}); err != nil {
			return err
		}
		if _, err := e.w.Write([]byte{b}); err != nil {
			return err
		}
		count -= n
	}
	return nil
}

func (e *writer) Close() error {
	if err := e.pack(); err != nil {
		return err
	}
	e.buf = nil
	if _, err := e.w.Write([]byte{128}); err != nil {
		return err
	}
	return e.w.Close()
}
