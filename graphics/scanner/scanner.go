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

// Package scanner provides an iterator over the operators of a PDF
// content stream.
package scanner

import (
	"io"

	"github.com/archivekit/pdfcore"
	base "github.com/archivekit/pdfcore/reader/scanner"
)

// Scanner reads the operators of a content stream.
type Scanner struct {
	s *base.Scanner
}

// NewScanner creates a new Scanner.
func NewScanner() *Scanner {
	return &Scanner{s: base.NewScanner()}
}

// Scan returns an iterator over the operators of the content stream r.
// The yield function is called once for each operator; scanning stops
// early if yield returns an error.  The argument slice passed to yield
// is reused between calls and must not be retained.
func (s *Scanner) Scan(r io.Reader) func(yield func(op string, args []pdf.Object) error) error {
	return func(yield func(op string, args []pdf.Object) error) error {
		s.s.SetInput(r)
		for s.s.Scan() {
			op := s.s.Operator()
			err := yield(op.Name, op.Args)
			if err != nil {
				return err
			}
		}
		return s.s.Error()
	}
}
