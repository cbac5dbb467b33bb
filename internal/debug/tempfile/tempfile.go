// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2024  the Archivekit Authors
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

// Package tempfile provides an in-memory replacement for temporary
// files, for use in unit tests.
package tempfile

import (
	"errors"
	"io"
)

var (
	errInvalidOffset = errors.New("invalid offset")
	errInvalidWhence = errors.New("invalid whence")
)

// MemFile is an in-memory buffer which implements io.Reader, io.Writer
// and io.Seeker.
type MemFile struct {
	Data   []byte
	Offset int64
}

// New creates a new, empty MemFile.
func New() *MemFile {
	return &MemFile{}
}

// Read implements the io.Reader interface.
func (f *MemFile) Read(p []byte) (int, error) {
	if f.Offset >= int64(len(f.Data)) {
		return 0, io.EOF
	}
	n := copy(p, f.Data[f.Offset:])
	f.Offset += int64(n)
	return n, nil
}

// Write implements the io.Writer interface.  Writing past the end of
// the buffer extends the buffer, filling any gap with zero bytes.
func (f *MemFile) Write(p []byte) (int, error) {
	end := f.Offset + int64(len(p))
	for int64(len(f.Data)) < end {
		f.Data = append(f.Data, 0)
	}
	copy(f.Data[f.Offset:end], p)
	f.Offset = end
	return len(p), nil
}

// Seek implements the io.Seeker interface.
func (f *MemFile) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = f.Offset + offset
	case io.SeekEnd:
		pos = int64(len(f.Data)) + offset
	default:
		return 0, errInvalidWhence
	}
	if pos < 0 {
		return 0, errInvalidOffset
	}
	f.Offset = pos
	return pos, nil
}
