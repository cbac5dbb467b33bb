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

// Package scanner reads the operators and operands of PDF content
// streams.
package scanner

import (
	"bufio"
	"errors"
	"io"
	"strconv"

	"github.com/archivekit/pdfcore"
)

// maxOperands is the size of the operand stack.  If an operator has
// more operands, the extra operands at the bottom of the stack are
// discarded.  The limit is large enough for the operand blocks used in
// CMap files, which hold up to 100 mappings per block.
const maxOperands = 512

// Operator is a content stream operator, together with its operands.
type Operator struct {
	Name string
	Args []pdf.Object
}

// Scanner reads the operators of a content stream one by one.
type Scanner struct {
	br  *bufio.Reader
	op  Operator
	err error

	args []pdf.Object
}

// NewScanner creates a new Scanner.  Before the scanner can be used,
// an input must be set using [Scanner.SetInput].
func NewScanner() *Scanner {
	return &Scanner{}
}

// SetInput sets the input for the scanner and resets the scanner
// state.
func (s *Scanner) SetInput(r io.Reader) {
	s.Reset()
	s.br = bufio.NewReader(r)
}

// Reset returns the scanner to its initial state.
func (s *Scanner) Reset() {
	s.br = nil
	s.op = Operator{}
	s.err = nil
	s.args = s.args[:0]
}

// Error returns the first error encountered while scanning.  Reaching
// the end of the input is not an error.
func (s *Scanner) Error() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

// Operator returns the operator found by the last call to
// [Scanner.Scan].
func (s *Scanner) Operator() Operator {
	return s.op
}

// Scan advances the scanner to the next operator.  It returns false
// when the end of the input is reached or an error occurs.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.br == nil {
		return false
	}

	s.args = s.args[:0]
	for {
		err := s.skipWhiteSpace()
		if err != nil {
			s.err = err
			return false
		}

		c, err := s.br.ReadByte()
		if err != nil {
			s.err = err
			return false
		}

		var obj pdf.Object
		isObject := true
		switch {
		case c == '/':
			obj, err = s.readName()
		case c == '(':
			obj, err = s.readLiteralString()
		case c == '<':
			next, _ := s.br.Peek(1)
			if len(next) > 0 && next[0] == '<' {
				s.br.ReadByte()
				obj, err = s.readDict()
			} else {
				obj, err = s.readHexString()
			}
		case c == '[':
			obj, err = s.readArray()
		case c == ']', c == '>', c == ')', c == '{', c == '}':
			// stray delimiters are ignored
			isObject = false
		default:
			s.br.UnreadByte()
			var word string
			word, err = s.readToken()
			if err != nil {
				break
			}
			switch {
			case word == "true":
				obj = pdf.Boolean(true)
			case word == "false":
				obj = pdf.Boolean(false)
			case word == "null":
				obj = nil
			case isNumberToken(word):
				obj, err = parseNumber(word)
			default:
				// an operator has been found
				s.op = Operator{
					Name: word,
					Args: s.args,
				}
				return true
			}
		}
		if err != nil {
			s.err = err
			return false
		}

		if isObject {
			if len(s.args) >= maxOperands {
				copy(s.args, s.args[1:])
				s.args = s.args[:len(s.args)-1]
			}
			s.args = append(s.args, obj)
		}
	}
}

func (s *Scanner) skipWhiteSpace() error {
	for {
		c, err := s.br.ReadByte()
		if err != nil {
			return err
		}
		if isSpace(c) {
			continue
		}
		if c == '%' {
			for {
				c, err = s.br.ReadByte()
				if err != nil {
					return err
				}
				if c == '\r' || c == '\n' {
					break
				}
			}
			continue
		}
		return s.br.UnreadByte()
	}
}

// readToken reads a sequence of regular characters.
func (s *Scanner) readToken() (string, error) {
	var token []byte
	for {
		c, err := s.br.ReadByte()
		if err == io.EOF {
			break
		} else if err != nil {
			return "", err
		}
		if isSpace(c) || isDelimiter(c) {
			s.br.UnreadByte()
			break
		}
		token = append(token, c)
		if len(token) > 127 {
			return "", errors.New("token too long")
		}
	}
	if len(token) == 0 {
		return "", errors.New("expected token")
	}
	return string(token), nil
}

func isNumberToken(token string) bool {
	c := token[0]
	return c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'
}

func parseNumber(token string) (pdf.Object, error) {
	if x, err := strconv.ParseInt(token, 10, 64); err == nil {
		return pdf.Integer(x), nil
	}
	x, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil, errors.New("invalid number " + strconv.Quote(token))
	}
	return pdf.Real(x), nil
}

// readName reads a name.  The leading slash has already been consumed.
func (s *Scanner) readName() (pdf.Name, error) {
	var name []byte
	for {
		c, err := s.br.ReadByte()
		if err == io.EOF {
			break
		} else if err != nil {
			return "", err
		}
		if isSpace(c) || isDelimiter(c) {
			s.br.UnreadByte()
			break
		}
		if c == '#' {
			hex, err := s.br.Peek(2)
			if err == nil && len(hex) == 2 && isHexDigit(hex[0]) && isHexDigit(hex[1]) {
				c = hexVal(hex[0])<<4 | hexVal(hex[1])
				s.br.Discard(2)
			}
		}
		name = append(name, c)
	}
	return pdf.Name(name), nil
}

// readLiteralString reads a string.  The opening parenthesis has
// already been consumed.
func (s *Scanner) readLiteralString() (pdf.String, error) {
	var res []byte
	depth := 1
	for {
		c, err := s.br.ReadByte()
		if err != nil {
			return nil, errors.New("unterminated string")
		}
		switch c {
		case '(':
			depth++
			res = append(res, c)
		case ')':
			depth--
			if depth == 0 {
				return pdf.String(res), nil
			}
			res = append(res, c)
		case '\\':
			c, err = s.br.ReadByte()
			if err != nil {
				return nil, errors.New("unterminated string")
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
				next, _ := s.br.Peek(1)
				if len(next) > 0 && next[0] == '\n' {
					s.br.Discard(1)
				}
			case c == '\n':
				// line continuation
			case c >= '0' && c <= '7':
				val := int(c - '0')
				for range 2 {
					next, err := s.br.Peek(1)
					if err != nil || len(next) == 0 ||
						next[0] < '0' || next[0] > '7' {
						break
					}
					val = val*8 + int(next[0]-'0')
					s.br.Discard(1)
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

// readHexString reads a hexadecimal string.  The opening angle bracket
// has already been consumed.
func (s *Scanner) readHexString() (pdf.String, error) {
	var res []byte
	var hi byte
	hasHi := false
	for {
		c, err := s.br.ReadByte()
		if err != nil {
			return nil, errors.New("unterminated hex string")
		}
		if c == '>' {
			break
		}
		if isSpace(c) {
			continue
		}
		if !isHexDigit(c) {
			return nil, errors.New("invalid character in hex string")
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
		res = append(res, hi<<4)
	}
	return pdf.String(res), nil
}

// readArray reads an array.  The opening bracket has already been
// consumed.
func (s *Scanner) readArray() (pdf.Array, error) {
	var res pdf.Array
	for {
		err := s.skipWhiteSpace()
		if err != nil {
			return nil, errors.New("unterminated array")
		}
		c, err := s.br.ReadByte()
		if err != nil {
			return nil, errors.New("unterminated array")
		}
		if c == ']' {
			return res, nil
		}
		s.br.UnreadByte()
		obj, err := s.readObject()
		if err != nil {
			return nil, err
		}
		res = append(res, obj)
		if len(res) > 8192 {
			return nil, errors.New("array too long")
		}
	}
}

// readDict reads a dictionary.  The opening "<<" has already been
// consumed.
func (s *Scanner) readDict() (pdf.Dict, error) {
	res := pdf.Dict{}
	for {
		err := s.skipWhiteSpace()
		if err != nil {
			return nil, errors.New("unterminated dictionary")
		}
		c, err := s.br.ReadByte()
		if err != nil {
			return nil, errors.New("unterminated dictionary")
		}
		if c == '>' {
			c, err = s.br.ReadByte()
			if err != nil || c != '>' {
				return nil, errors.New("unterminated dictionary")
			}
			return res, nil
		}
		if c != '/' {
			return nil, errors.New("invalid dictionary key")
		}
		key, err := s.readName()
		if err != nil {
			return nil, err
		}
		err = s.skipWhiteSpace()
		if err != nil {
			return nil, errors.New("unterminated dictionary")
		}
		val, err := s.readObject()
		if err != nil {
			return nil, err
		}
		res[key] = val
	}
}

// readObject reads an object for use inside arrays and dictionaries.
func (s *Scanner) readObject() (pdf.Object, error) {
	c, err := s.br.ReadByte()
	if err != nil {
		return nil, err
	}
	switch {
	case c == '/':
		return s.readName()
	case c == '(':
		return s.readLiteralString()
	case c == '<':
		next, _ := s.br.Peek(1)
		if len(next) > 0 && next[0] == '<' {
			s.br.ReadByte()
			return s.readDict()
		}
		return s.readHexString()
	case c == '[':
		return s.readArray()
	default:
		s.br.UnreadByte()
		word, err := s.readToken()
		if err != nil {
			return nil, err
		}
		switch {
		case word == "true":
			return pdf.Boolean(true), nil
		case word == "false":
			return pdf.Boolean(false), nil
		case word == "null":
			return nil, nil
		case isNumberToken(word):
			return parseNumber(word)
		default:
			return nil, errors.New("unexpected token " + strconv.Quote(word))
		}
	}
}

// ReadInlineImageData reads the binary data of an inline image, after
// the "ID" operator has been seen.  The data extends up to the "EI"
// keyword.  The returned slice does not include the "EI" keyword.
func (s *Scanner) ReadInlineImageData() ([]byte, error) {
	// a single white space character separates "ID" from the data
	c, err := s.br.ReadByte()
	if err != nil {
		return nil, err
	}
	if !isSpace(c) {
		s.br.UnreadByte()
	}

	var data []byte
	for {
		c, err := s.br.ReadByte()
		if err != nil {
			return nil, errors.New("unterminated inline image")
		}
		data = append(data, c)

		// look for white space followed by "EI" followed by a
		// delimiter
		n := len(data)
		if n >= 3 && data[n-1] == 'I' && data[n-2] == 'E' && isSpace(data[n-3]) {
			next, err := s.br.Peek(1)
			if err == io.EOF || len(next) > 0 && (isSpace(next[0]) || isDelimiter(next[0])) {
				return data[:n-3], nil
			}
		}
	}
}

func isSpace(c byte) bool {
	switch c {
	case 0, 9, 10, 12, 13, 32:
		return true
	default:
		return false
	}
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return false
	}
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
