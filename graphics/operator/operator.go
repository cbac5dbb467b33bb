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

// Package operator describes the operators allowed in PDF content
// streams, together with the number and types of their operands.
package operator

import (
	"errors"
	"sort"

	"github.com/archivekit/pdfcore"
)

// ArgType restricts the type of an operand.
type ArgType uint8

// The operand types.
const (
	// Bool matches a boolean.
	Bool ArgType = iota

	// Int matches an integer.
	Int

	// Num matches an integer or a real number.
	Num

	// String matches a string.
	String

	// Name matches a name.
	Name

	// Array matches an array.
	Array

	// Props matches a dictionary or the name of a property list
	// resource.
	Props

	// SCN matches a number or a name (for the SC and SCN operators).
	SCN
)

// maxArgs is the largest number of operands any operator accepts.
// The TJ operator takes a single array; the SCN operator with a
// pattern takes up to 33 operands.
const maxArgs = 33

// Op describes one content stream operator.
//
// A negative Arity means that the operator takes up to -Arity
// operands; otherwise exactly Arity operands are required.  If more
// operands are present, the trailing operands are used and the rest is
// discarded.
type Op struct {
	Name  string
	Arity int
	Args  []ArgType

	// MinVersion is the first PDF version the operator is defined in.
	MinVersion pdf.Version
}

// ErrVersion is returned by Check when an operator is used in a PDF
// version which does not support it.
var ErrVersion = errors.New("operator not supported in this PDF version")

// ErrUnknown is returned when an operator name is not in the table.
var ErrUnknown = errors.New("unknown operator")

// ErrArgs is returned when the operands of an operator have the wrong
// number or types.
var ErrArgs = errors.New("invalid operands")

// The operator table, sorted by name.  The table is used via binary
// search, see Find.
var table = []Op{
	{Name: "\"", Arity: 3, Args: []ArgType{Num, Num, String}},
	{Name: "'", Arity: 1, Args: []ArgType{String}},
	{Name: "B", Arity: 0},
	{Name: "B*", Arity: 0},
	{Name: "BDC", Arity: 2, Args: []ArgType{Name, Props}, MinVersion: pdf.V1_2},
	{Name: "BI", Arity: 0},
	{Name: "BMC", Arity: 1, Args: []ArgType{Name}, MinVersion: pdf.V1_2},
	{Name: "BT", Arity: 0},
	{Name: "BX", Arity: 0, MinVersion: pdf.V1_1},
	{Name: "CS", Arity: 1, Args: []ArgType{Name}, MinVersion: pdf.V1_1},
	{Name: "DP", Arity: 2, Args: []ArgType{Name, Props}, MinVersion: pdf.V1_2},
	{Name: "Do", Arity: 1, Args: []ArgType{Name}},
	{Name: "EI", Arity: 0},
	{Name: "EMC", Arity: 0, MinVersion: pdf.V1_2},
	{Name: "ET", Arity: 0},
	{Name: "EX", Arity: 0, MinVersion: pdf.V1_1},
	{Name: "F", Arity: 0},
	{Name: "G", Arity: 1, Args: []ArgType{Num}},
	{Name: "ID", Arity: -maxArgs},
	{Name: "J", Arity: 1, Args: []ArgType{Int}},
	{Name: "K", Arity: 4, Args: []ArgType{Num, Num, Num, Num}},
	{Name: "M", Arity: 1, Args: []ArgType{Num}},
	{Name: "MP", Arity: 1, Args: []ArgType{Name}, MinVersion: pdf.V1_2},
	{Name: "Q", Arity: 0},
	{Name: "RG", Arity: 3, Args: []ArgType{Num, Num, Num}},
	{Name: "S", Arity: 0},
	{Name: "SC", Arity: -4, Args: []ArgType{Num, Num, Num, Num}, MinVersion: pdf.V1_1},
	{Name: "SCN", Arity: -maxArgs, MinVersion: pdf.V1_2},
	{Name: "T*", Arity: 0},
	{Name: "TD", Arity: 2, Args: []ArgType{Num, Num}},
	{Name: "TJ", Arity: 1, Args: []ArgType{Array}},
	{Name: "TL", Arity: 1, Args: []ArgType{Num}},
	{Name: "Tc", Arity: 1, Args: []ArgType{Num}},
	{Name: "Td", Arity: 2, Args: []ArgType{Num, Num}},
	{Name: "Tf", Arity: 2, Args: []ArgType{Name, Num}},
	{Name: "Tj", Arity: 1, Args: []ArgType{String}},
	{Name: "Tm", Arity: 6, Args: []ArgType{Num, Num, Num, Num, Num, Num}},
	{Name: "Tr", Arity: 1, Args: []ArgType{Int}},
	{Name: "Ts", Arity: 1, Args: []ArgType{Num}},
	{Name: "Tw", Arity: 1, Args: []ArgType{Num}},
	{Name: "Tz", Arity: 1, Args: []ArgType{Num}},
	{Name: "W", Arity: 0},
	{Name: "W*", Arity: 0},
	{Name: "b", Arity: 0},
	{Name: "b*", Arity: 0},
	{Name: "c", Arity: 6, Args: []ArgType{Num, Num, Num, Num, Num, Num}},
	{Name: "cm", Arity: 6, Args: []ArgType{Num, Num, Num, Num, Num, Num}},
	{Name: "cs", Arity: 1, Args: []ArgType{Name}, MinVersion: pdf.V1_1},
	{Name: "d", Arity: 2, Args: []ArgType{Array, Num}},
	{Name: "d0", Arity: 2, Args: []ArgType{Num, Num}},
	{Name: "d1", Arity: 6, Args: []ArgType{Num, Num, Num, Num, Num, Num}},
	{Name: "f", Arity: 0},
	{Name: "f*", Arity: 0},
	{Name: "g", Arity: 1, Args: []ArgType{Num}},
	{Name: "gs", Arity: 1, Args: []ArgType{Name}, MinVersion: pdf.V1_2},
	{Name: "h", Arity: 0},
	{Name: "i", Arity: 1, Args: []ArgType{Num}},
	{Name: "j", Arity: 1, Args: []ArgType{Int}},
	{Name: "k", Arity: 4, Args: []ArgType{Num, Num, Num, Num}},
	{Name: "l", Arity: 2, Args: []ArgType{Num, Num}},
	{Name: "m", Arity: 2, Args: []ArgType{Num, Num}},
	{Name: "n", Arity: 0},
	{Name: "q", Arity: 0},
	{Name: "re", Arity: 4, Args: []ArgType{Num, Num, Num, Num}},
	{Name: "rg", Arity: 3, Args: []ArgType{Num, Num, Num}},
	{Name: "ri", Arity: 1, Args: []ArgType{Name}, MinVersion: pdf.V1_1},
	{Name: "s", Arity: 0},
	{Name: "sc", Arity: -4, Args: []ArgType{Num, Num, Num, Num}, MinVersion: pdf.V1_1},
	{Name: "scn", Arity: -maxArgs, MinVersion: pdf.V1_2},
	{Name: "sh", Arity: 1, Args: []ArgType{Name}, MinVersion: pdf.V1_3},
	{Name: "v", Arity: 4, Args: []ArgType{Num, Num, Num, Num}},
	{Name: "w", Arity: 1, Args: []ArgType{Num}},
	{Name: "y", Arity: 4, Args: []ArgType{Num, Num, Num, Num}},
}

// Find looks up an operator by name, using binary search.  The second
// return value is false if the name is not a known operator.
func Find(name string) (*Op, bool) {
	idx := sort.Search(len(table), func(i int) bool {
		return table[i].Name >= name
	})
	if idx < len(table) && table[idx].Name == name {
		return &table[idx], true
	}
	return nil, false
}

// All returns the operator table, sorted by name.
func All() []Op {
	return table
}

// IsValidName checks whether name is a known operator which is
// allowed in the given PDF version.
func IsValidName(name pdf.Name, v pdf.Version) error {
	op, ok := Find(string(name))
	if !ok {
		return ErrUnknown
	}
	if v < op.MinVersion {
		return ErrVersion
	}
	return nil
}

// Check verifies the operands for the operator.  On success, the
// returned slice holds the accepted operands: for operators with fixed
// arity and an oversupply of operands, these are the trailing
// operands.  Operators with invalid operands must be skipped by the
// caller.
func (op *Op) Check(args []pdf.Object) ([]pdf.Object, error) {
	if op.Arity < 0 {
		// up to -Arity operands
		if len(args) > -op.Arity {
			return nil, ErrArgs
		}
		for i, arg := range args {
			tp := SCN
			if i < len(op.Args) {
				tp = op.Args[i]
			}
			if !matches(arg, tp) {
				return nil, ErrArgs
			}
		}
		return args, nil
	}

	if len(args) < op.Arity {
		return nil, ErrArgs
	}
	// extra leading operands are discarded
	args = args[len(args)-op.Arity:]
	for i, arg := range args {
		if !matches(arg, op.Args[i]) {
			return nil, ErrArgs
		}
	}
	return args, nil
}

func matches(arg pdf.Object, tp ArgType) bool {
	switch tp {
	case Bool:
		_, ok := arg.(pdf.Boolean)
		return ok
	case Int:
		_, ok := arg.(pdf.Integer)
		return ok
	case Num:
		switch arg.(type) {
		case pdf.Integer, pdf.Real, pdf.Number:
			return true
		}
		return false
	case String:
		_, ok := arg.(pdf.String)
		return ok
	case Name:
		_, ok := arg.(pdf.Name)
		return ok
	case Array:
		_, ok := arg.(pdf.Array)
		return ok
	case Props:
		switch arg.(type) {
		case pdf.Dict, pdf.Name:
			return true
		}
		return false
	case SCN:
		switch arg.(type) {
		case pdf.Integer, pdf.Real, pdf.Number, pdf.Name:
			return true
		}
		return false
	default:
		return false
	}
}
