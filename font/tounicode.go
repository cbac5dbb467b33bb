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

package font

import (
	"bytes"
	"unicode/utf16"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/reader/scanner"
)

// ToUnicode maps character codes to text.
type ToUnicode struct {
	singles map[uint32]string
	ranges  []bfRange
}

type bfRange struct {
	lo, hi uint32
	dst    []string // either one entry (incremented), or one entry per code
}

// Lookup returns the text for a character code.
func (tu *ToUnicode) Lookup(code uint32) (string, bool) {
	if text, ok := tu.singles[code]; ok {
		return text, true
	}
	for _, r := range tu.ranges {
		if code < r.lo || code > r.hi {
			continue
		}
		idx := int(code - r.lo)
		if len(r.dst) > 1 {
			if idx < len(r.dst) {
				return r.dst[idx], true
			}
			return "", false
		}
		if len(r.dst) == 1 {
			// increment the last code point
			rr := []rune(r.dst[0])
			if len(rr) == 0 {
				return "", false
			}
			rr[len(rr)-1] += rune(idx)
			return string(rr), true
		}
		return "", false
	}
	return "", false
}

// ParseToUnicode parses a ToUnicode CMap.  Unparseable entries are
// skipped.
func ParseToUnicode(data []byte) (*ToUnicode, error) {
	tu := &ToUnicode{
		singles: map[uint32]string{},
	}

	s := scanner.NewScanner()
	s.SetInput(bytes.NewReader(data))
	for s.Scan() {
		op := s.Operator()
		switch op.Name {
		case "endbfchar":
			args := op.Args
			for i := 0; i+1 < len(args); i += 2 {
				src, ok1 := args[i].(pdf.String)
				dst, ok2 := args[i+1].(pdf.String)
				if !ok1 || !ok2 {
					continue
				}
				tu.singles[codeVal(src)] = utf16Decode(dst)
			}
		case "endbfrange":
			args := op.Args
			for i := 0; i+2 < len(args); i += 3 {
				lo, ok1 := args[i].(pdf.String)
				hi, ok2 := args[i+1].(pdf.String)
				if !ok1 || !ok2 {
					continue
				}
				r := bfRange{lo: codeVal(lo), hi: codeVal(hi)}
				switch dst := args[i+2].(type) {
				case pdf.String:
					r.dst = []string{utf16Decode(dst)}
				case pdf.Array:
					for _, elem := range dst {
						s, _ := elem.(pdf.String)
						r.dst = append(r.dst, utf16Decode(s))
					}
					if len(r.dst) == 1 {
						// avoid confusion with the incremented form
						r.dst = append(r.dst, "")
						r.hi = r.lo
					}
				default:
					continue
				}
				if r.hi < r.lo || r.hi-r.lo > 65535 {
					continue
				}
				tu.ranges = append(tu.ranges, r)
			}
		}
	}
	return tu, s.Error()
}

func codeVal(s pdf.String) uint32 {
	var res uint32
	for _, b := range s {
		res = res<<8 | uint32(b)
	}
	return res
}

func utf16Decode(s pdf.String) string {
	if len(s)%2 != 0 {
		return string([]byte(s))
	}
	buf := make([]uint16, 0, len(s)/2)
	for i := 0; i+1 < len(s); i += 2 {
		buf = append(buf, uint16(s[i])<<8|uint16(s[i+1]))
	}
	return string(utf16.Decode(buf))
}
