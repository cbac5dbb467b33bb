// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2021  the Archivekit Authors
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

package pdf

import (
	"bytes"
	"errors"
	"io"
	"strconv"
)

const scannerBufSize = 512

// scanner reads PDF objects from a stream of bytes.
type scanner struct {
	r       io.Reader
	buf     []byte
	bufPos  int
	bufEnd  int
	filePos int64

	// getInt resolves an object to an integer.  This is needed to read
	// streams where the /Length entry is an indirect reference.
	getInt func(Object) (Integer, error)

	// enc and encRef are used to decrypt strings while reading objects
	// from an encrypted file.
	enc    *encryptInfo
	encRef Reference
}

func newScanner(r io.Reader, getInt func(Object) (Integer, error), enc *encryptInfo) *scanner {
	return &scanner{
		r:      r,
		buf:    make([]byte, scannerBufSize),
		getInt: getInt,
		enc:    enc,
	}
}

// currentPos returns the current position in the file.
func (s *scanner) currentPos() int64 {
	return s.filePos + int64(s.bufPos)
}

// refill discards the consumed part of the buffer and reads more data
// from the underlying reader.  End of file is not an error; after refill
// at the end of input, the buffer is simply empty.
func (s *scanner) refill() error {
	s.filePos += int64(s.bufPos)
	n := copy(s.buf, s.buf[s.bufPos:s.bufEnd])
	s.bufPos = 0
	s.bufEnd = n

	for s.bufEnd < len(s.buf) {
		k, err := s.r.Read(s.buf[s.bufEnd:])
		s.bufEnd += k
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		} else if k == 0 {
			break
		}
	}
	return nil
}

// peek returns the next byte without advancing the position.
func (s *scanner) peek() (byte, error) {
	if s.bufPos >= s.bufEnd {
		err := s.refill()
		if err != nil {
			return 0, err
		}
		if s.bufPos >= s.bufEnd {
			return 0, io.EOF
		}
	}
	return s.buf[s.bufPos], nil
}

// peekN returns the next n bytes without advancing the position.  Fewer
// bytes may be returned at the end of the input.
func (s *scanner) peekN(n int) ([]byte, error) {
	if n > len(s.buf) {
		panic("peekN: n too large")
	}
	if s.bufEnd-s.bufPos < n {
		err := s.refill()
		if err != nil {
			return nil, err
		}
	}
	k := s.bufEnd - s.bufPos
	if k > n {
		k = n
	}
	return s.buf[s.bufPos : s.bufPos+k], nil
}

// next returns the next byte and advances the position.
func (s *scanner) next() (byte, error) {
	c, err := s.peek()
	if err != nil {
		return 0, err
	}
	s.bufPos++
	return c, nil
}

// skip advances the position by n bytes.  The bytes must be in the
// buffer, e.g. after a call to peekN.
func (s *scanner) skip(n int) {
	s.bufPos += n
	if s.bufPos > s.bufEnd {
		panic("skip: beyond end of buffer")
	}
}

func (s *scanner) malformed(msg string) error {
	return &MalformedFileError{
		Err: errors.New(msg),
		Pos: s.currentPos(),
	}
}

// SkipWhiteSpace skips white space and comments.
func (s *scanner) SkipWhiteSpace() error {
	for {
		c, err := s.peek()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if isSpaceByte(c) {
			s.bufPos++
		} else if c == '%' {
			// comments extend to the end of the line
			for {
				c, err = s.next()
				if err == io.EOF {
					return nil
				} else if err != nil {
					return err
				}
				if c == '\r' || c == '\n' {
					break
				}
			}
		} else {
			return nil
		}
	}
}

// ReadObject reads the next object from the input.
func (s *scanner) ReadObject() (Native, error) {
	err := s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}

	c, err := s.peek()
	if err == io.EOF {
		return nil, s.malformed("unexpected end of file")
	} else if err != nil {
		return nil, err
	}

	switch {
	case c == '/':
		return s.readName()
	case c == '(':
		return s.readLiteralString()
	case c == '<':
		head, err := s.peekN(2)
		if err != nil {
			return nil, err
		}
		if len(head) >= 2 && head[1] == '<' {
			dict, err := s.readDict()
			if err != nil {
				return nil, err
			}
			return s.maybeReadStream(dict)
		}
		return s.readHexString()
	case c == '[':
		return s.readArray()
	case c >= '0' && c <= '9', c == '+', c == '-', c == '.':
		return s.readNumber()
	case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		word, err := s.readKeyword()
		if err != nil {
			return nil, err
		}
		switch word {
		case "true":
			return Boolean(true), nil
		case "false":
			return Boolean(false), nil
		case "null":
			return nil, nil
		default:
			return nil, s.malformed("unexpected keyword " + strconv.Quote(word))
		}
	default:
		return nil, s.malformed("unexpected character " + strconv.Quote(string(c)))
	}
}

// ReadInteger skips white space and reads an integer.
func (s *scanner) ReadInteger() (Integer, error) {
	err := s.SkipWhiteSpace()
	if err != nil {
		return 0, err
	}
	obj, err := s.readNumber()
	if err != nil {
		return 0, err
	}
	x, ok := obj.(Integer)
	if !ok {
		return 0, s.malformed("expected integer")
	}
	return x, nil
}

// readKeyword reads a bare word, e.g. "true" or "stream".
func (s *scanner) readKeyword() (string, error) {
	var word []byte
	for {
		c, err := s.peek()
		if err == io.EOF {
			break
		} else if err != nil {
			return "", err
		}
		if isSpaceByte(c) || isDelimiterByte(c) {
			break
		}
		if len(word) > 16 {
			return "", s.malformed("keyword too long")
		}
		word = append(word, c)
		s.bufPos++
	}
	if len(word) == 0 {
		return "", s.malformed("expected keyword")
	}
	return string(word), nil
}

// expectKeyword reads the next token and checks that it equals word.
func (s *scanner) expectKeyword(word string) error {
	err := s.SkipWhiteSpace()
	if err != nil {
		return err
	}
	got, err := s.readKeyword()
	if err != nil {
		return err
	}
	if got != word {
		return s.malformed("expected " + strconv.Quote(word) + " but got " + strconv.Quote(got))
	}
	return nil
}

func (s *scanner) readNumber() (Native, error) {
	var body []byte
	hasDot := false
	hasDigit := false
	first := true
	for {
		c, err := s.peek()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		if c == '.' && !hasDot {
			hasDot = true
		} else if first && (c == '+' || c == '-') {
			// pass
		} else if c >= '0' && c <= '9' {
			hasDigit = true
		} else {
			break
		}
		body = append(body, c)
		s.bufPos++
		first = false
	}

	if !hasDigit {
		return nil, s.malformed("invalid number " + strconv.Quote(string(body)))
	}

	if !hasDot {
		x, err := strconv.ParseInt(string(body), 10, 64)
		if err == nil {
			return Integer(x), nil
		}
		// fall through to float for out-of-range integers
	}
	x, err := strconv.ParseFloat(string(body), 64)
	if err != nil {
		return nil, s.malformed("invalid number " + strconv.Quote(string(body)))
	}
	return Real(x), nil
}

func (s *scanner) readName() (Name, error) {
	err := s.expectByte('/')
	if err != nil {
		return "", err
	}

	var res []byte
	for {
		c, err := s.peek()
		if err == io.EOF {
			break
		} else if err != nil {
			return "", err
		}
		if isSpaceByte(c) || isDelimiterByte(c) {
			break
		}
		s.bufPos++
		if c == '#' {
			hex, err := s.peekN(2)
			if err != nil && err != io.EOF {
				return "", err
			}
			if len(hex) == 2 && isHexDigit(hex[0]) && isHexDigit(hex[1]) {
				c = hexVal(hex[0])<<4 | hexVal(hex[1])
				s.skip(2)
			}
		}
		res = append(res, c)
	}
	return Name(res), nil
}

func (s *scanner) readLiteralString() (String, error) {
	err := s.expectByte('(')
	if err != nil {
		return nil, err
	}

	var res []byte
	depth := 1
	for {
		c, err := s.next()
		if err == io.EOF {
			return nil, s.malformed("unterminated string")
		} else if err != nil {
			return nil, err
		}

		switch c {
		case '(':
			depth++
			res = append(res, c)
		case ')':
			depth--
			if depth == 0 {
				return s.maybeDecrypt(res)
			}
			res = append(res, c)
		case '\\':
			c, err = s.next()
			if err == io.EOF {
				return nil, s.malformed("unterminated string")
			} else if err != nil {
				return nil, err
			}
			switch {
			case c == 'n':
				res = append(res, '\n')
			case c == 'r':
				res = append(res, '\r')
			case c == 't':
				res = append(res, '\t')
			case c == 'b':
				res = append(res, '\b')
			case c == 'f':
				res = append(res, '\f')
			case c == '\r':
				// line continuation; skip an optional following LF
				c, err = s.peek()
				if err == nil && c == '\n' {
					s.bufPos++
				} else if err != nil && err != io.EOF {
					return nil, err
				}
			case c == '\n':
				// line continuation
			case c >= '0' && c <= '7':
				val := int(c - '0')
				for range 2 {
					c, err = s.peek()
					if err == io.EOF {
						break
					} else if err != nil {
						return nil, err
					}
					if c < '0' || c > '7' {
						break
					}
					val = val*8 + int(c-'0')
					s.bufPos++
				}
				res = append(res, byte(val))
			default:
				res = append(res, c)
			}
		default:
			res = append(res, c)
		}
	}
}

func (s *scanner) readHexString() (String, error) {
	err := s.expectByte('<')
	if err != nil {
		return nil, err
	}

	var res []byte
	var hi byte
	hasHi := false
	for {
		c, err := s.next()
		if err == io.EOF {
			return nil, s.malformed("unterminated hex string")
		} else if err != nil {
			return nil, err
		}
		if c == '>' {
			break
		}
		if isSpaceByte(c) {
			continue
		}
		if !isHexDigit(c) {
			return nil, s.malformed("invalid character in hex string")
		}
		if hasHi {
			res = append(res, hi<<4|hexVal(c))
			hasHi = false
		} else {
			hi = hexVal(c)
			hasHi = true
		}
	}
	if hasHi {
		// odd number of digits; the final digit is padded with zero
		res = append(res, hi<<4)
	}
	return s.maybeDecrypt(res)
}

func (s *scanner) maybeDecrypt(raw []byte) (String, error) {
	if s.enc == nil {
		return String(raw), nil
	}
	dec, err := s.enc.DecryptBytes(s.encRef, raw)
	if err != nil {
		return nil, err
	}
	return String(dec), nil
}

func (s *scanner) readArray() (Array, error) {
	err := s.expectByte('[')
	if err != nil {
		return nil, err
	}

	var res Array
	for {
		err := s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		c, err := s.peek()
		if err == io.EOF {
			return nil, s.malformed("unterminated array")
		} else if err != nil {
			return nil, err
		}

		if c == ']' {
			s.bufPos++
			return res, nil
		}

		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			word, err := s.readKeyword()
			if err != nil {
				return nil, err
			}
			switch word {
			case "true":
				res = append(res, Boolean(true))
			case "false":
				res = append(res, Boolean(false))
			case "null":
				res = append(res, nil)
			case "R":
				// an indirect reference, e.g. "1 2 R"
				if len(res) < 2 {
					return nil, s.malformed("invalid indirect reference")
				}
				number, ok1 := res[len(res)-2].(Integer)
				gen, ok2 := res[len(res)-1].(Integer)
				if !ok1 || !ok2 || number < 0 || number > 0xFFFF_FFFF || gen < 0 || gen > 0xFFFF {
					return nil, s.malformed("invalid indirect reference")
				}
				res = res[:len(res)-2]
				res = append(res, NewReference(uint32(number), uint16(gen)))
			default:
				return nil, s.malformed("unexpected keyword " + strconv.Quote(word))
			}
			continue
		}

		obj, err := s.ReadObject()
		if err != nil {
			return nil, err
		}
		res = append(res, obj)
	}
}

func (s *scanner) readDict() (Dict, error) {
	for _, c := range []byte{'<', '<'} {
		err := s.expectByte(c)
		if err != nil {
			return nil, err
		}
	}

	res := Dict{}
	for {
		err := s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		c, err := s.peek()
		if err == io.EOF {
			return nil, s.malformed("unterminated dictionary")
		} else if err != nil {
			return nil, err
		}

		if c == '>' {
			head, err := s.peekN(2)
			if err != nil {
				return nil, err
			}
			if len(head) < 2 || head[1] != '>' {
				return nil, s.malformed("unterminated dictionary")
			}
			s.skip(2)
			return res, nil
		}

		key, err := s.readName()
		if err != nil {
			return nil, err
		}
		val, err := s.readDictValue()
		if err != nil {
			return nil, err
		}
		res[key] = val
	}
}

// readDictValue reads a dictionary value, converting "n g R" sequences
// into [Reference] values.
func (s *scanner) readDictValue() (Native, error) {
	obj, err := s.ReadObject()
	if err != nil {
		return nil, err
	}

	number, ok := obj.(Integer)
	if !ok || number < 0 || number > 0xFFFF_FFFF {
		return obj, nil
	}

	// The value could be the start of an indirect reference.  Since
	// dictionary keys always start with a slash, the only valid
	// continuations after an integer value are "/", ">>", or "gen R".
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}
	c, err := s.peek()
	if err == io.EOF || err == nil && !(c >= '0' && c <= '9') {
		return obj, nil
	} else if err != nil {
		return nil, err
	}

	gen, err := s.ReadInteger()
	if err != nil {
		return nil, err
	}
	if gen < 0 || gen > 0xFFFF {
		return nil, s.malformed("invalid generation number")
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}
	c, err = s.next()
	if err != nil || c != 'R' {
		return nil, s.malformed("invalid indirect reference")
	}
	return NewReference(uint32(number), uint16(gen)), nil
}

// maybeReadStream checks whether the dictionary is followed by stream
// data, and if so reads the stream.
func (s *scanner) maybeReadStream(dict Dict) (Native, error) {
	err := s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}
	head, err := s.peekN(6)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if !bytes.Equal(head, []byte("stream")) {
		return dict, nil
	}
	s.skip(6)

	// "stream" must be followed by CR LF or a single LF
	c, err := s.next()
	if err != nil {
		return nil, s.malformed("unterminated stream")
	}
	if c == '\r' {
		c, err = s.next()
		if err != nil {
			return nil, s.malformed("unterminated stream")
		}
	}
	if c != '\n' {
		return nil, s.malformed("missing EOL after stream keyword")
	}

	var length Integer
	switch obj := dict["Length"].(type) {
	case Integer:
		length = obj
	default:
		if s.getInt == nil {
			return nil, s.malformed("unresolvable stream /Length")
		}
		length, err = s.getInt(obj)
		if err != nil {
			return nil, err
		}
	}
	if length < 0 {
		return nil, s.malformed("negative stream /Length")
	}

	data := make([]byte, length)
	pos := 0
	for pos < len(data) {
		if s.bufPos >= s.bufEnd {
			err = s.refill()
			if err != nil {
				return nil, err
			}
			if s.bufPos >= s.bufEnd {
				return nil, s.malformed("unexpected end of stream data")
			}
		}
		k := copy(data[pos:], s.buf[s.bufPos:s.bufEnd])
		pos += k
		s.bufPos += k
	}

	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}
	err = s.expectKeyword("endstream")
	if err != nil {
		return nil, err
	}

	return &Stream{
		Dict: dict,
		R:    bytes.NewReader(data),
	}, nil
}

func (s *scanner) expectByte(expected byte) error {
	c, err := s.next()
	if err == io.EOF {
		return s.malformed("unexpected end of file")
	} else if err != nil {
		return err
	}
	if c != expected {
		return s.malformed("expected " + strconv.Quote(string(expected)))
	}
	return nil
}

// readHeaderVersion reads the PDF version from the file header.
func (s *scanner) readHeaderVersion() (Version, error) {
	head, err := s.peekN(16)
	if err != nil && err != io.EOF {
		return 0, err
	}
	if len(head) < 8 || !bytes.HasPrefix(head, []byte("%PDF-")) {
		return 0, s.malformed("PDF header not found")
	}

	k := 5
	for k < len(head) && (head[k] >= '0' && head[k] <= '9' || head[k] == '.') {
		k++
	}
	version, err := ParseVersion(string(head[5:k]))
	if err != nil {
		return 0, &MalformedFileError{Err: err}
	}
	s.skip(k)
	return version, nil
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
