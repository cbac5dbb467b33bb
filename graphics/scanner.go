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

package graphics

import (
	"io"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/reader/scanner"
)

// Scanner reads the operators of a content stream.
type Scanner struct {
	s *scanner.Scanner
}

// NewScanner creates a new Scanner.
func NewScanner() *Scanner {
	return &Scanner{s: scanner.NewScanner()}
}

// Scan returns an iterator over the operators of the content stream r.
// Scanning stops early if the yield function returns false.
func (s *Scanner) Scan(r io.Reader) func(yield func(op string, args []pdf.Object) bool) {
	return func(yield func(op string, args []pdf.Object) bool) {
		s.s.SetInput(r)
		for s.s.Scan() {
			op := s.s.Operator()
			if !yield(op.Name, op.Args) {
				return
			}
		}
	}
}
