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

package function

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/archivekit/pdfcore"
)

// Type4 represents a PostScript calculator function.  The function is
// given as a program in a small subset of the PostScript language.
type Type4 struct {
	// Domain gives the valid input ranges, as pairs of values.
	Domain []float64

	// Range gives the output value ranges, as pairs of values.
	Range []float64

	// Program is the body of the PostScript program, without the
	// outermost pair of braces.
	Program string
}

// FunctionType implements the [pdf.Function] interface.
func (f *Type4) FunctionType() int { return 4 }

// Shape implements the [pdf.Function] interface.
func (f *Type4) Shape() (int, int) {
	return len(f.Domain) / 2, len(f.Range) / 2
}

// GetDomain implements the [pdf.Function] interface.
func (f *Type4) GetDomain() []float64 {
	return f.Domain
}

func (f *Type4) validate() error {
	if len(f.Domain)%2 != 0 {
		return errors.New("invalid Domain length")
	}
	for i := 0; i+1 < len(f.Domain); i += 2 {
		if !isRange(f.Domain[i], f.Domain[i+1]) {
			return errors.New("invalid Domain")
		}
	}
	if len(f.Range) == 0 || len(f.Range)%2 != 0 {
		return errors.New("invalid Range length")
	}
	if strings.TrimSpace(f.Program) == "" {
		return errors.New("empty program")
	}
	_, err := compile(f.Program)
	return err
}

func (f *Type4) repair() {
	f.Domain = repairPairs(f.Domain)
	f.Range = repairPairs(f.Range)
	if len(f.Domain) == 0 {
		f.Domain = []float64{0, 1}
	}
	if len(f.Range) == 0 {
		f.Range = []float64{0, 1}
	}
}

// Apply implements the [pdf.Function] interface.
func (f *Type4) Apply(out []float64, inputs ...float64) {
	m, n := f.Shape()

	code, err := compile(f.Program)
	if err != nil {
		clipOutputs(out, nil, f.Range)
		return
	}

	stack := make([]value, 0, len(inputs))
	for i, x := range inputs {
		if i < m {
			x = clip(x, f.Domain[2*i], f.Domain[2*i+1])
		}
		stack = append(stack, realVal(x))
	}

	result, err := execute(code, stack)
	if err != nil {
		clipOutputs(out, nil, f.Range)
		return
	}

	// The outputs are the top n stack values; missing values are padded
	// with zeros.
	values := make([]float64, 0, n)
	start := 0
	if len(result) > n {
		start = len(result) - n
	}
	for _, v := range result[start:] {
		values = append(values, v.toFloat())
	}
	for len(values) < n {
		values = append(values, 0)
	}
	clipOutputs(out, values, f.Range)
}

// Embed implements the [pdf.Embedder] interface.
func (f *Type4) Embed(rm *pdf.ResourceManager) (pdf.Native, error) {
	err := f.validate()
	if err != nil {
		return nil, err
	}

	dict := pdf.Dict{
		"FunctionType": pdf.Integer(4),
		"Domain":       toFloatArray(f.Domain),
		"Range":        toFloatArray(f.Range),
	}

	ref := rm.Out.Alloc()
	w, err := rm.Out.OpenStream(ref, dict, &pdf.FilterCompress{})
	if err != nil {
		return nil, err
	}
	_, err = w.Write([]byte("{ " + f.Program + " }"))
	if err != nil {
		return nil, err
	}
	err = w.Close()
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func extractType4(x *pdf.Extractor, stream *pdf.Stream) (*Type4, error) {
	dict := stream.Dict

	domain, err := pdf.GetFloatArray(x.R, dict["Domain"])
	if err != nil {
		return nil, err
	}
	rng, err := pdf.GetFloatArray(x.R, dict["Range"])
	if err != nil {
		return nil, err
	}

	body, err := pdf.ReadAll(x.R, stream)
	if err != nil {
		return nil, err
	}
	program := strings.TrimSpace(string(body))
	if strings.HasPrefix(program, "{") && strings.HasSuffix(program, "}") {
		program = strings.TrimSpace(program[1 : len(program)-1])
	}

	f := &Type4{
		Domain:  domain,
		Range:   rng,
		Program: program,
	}
	f.repair()
	if err := f.validate(); err != nil {
		return nil, &pdf.MalformedFileError{Err: err}
	}
	return f, nil
}

// The calculator programs are executed on a small virtual machine.
// Programs are compiled into a sequence of instructions; procedures
// (delimited by braces) become constants which the "if" and "ifelse"
// instructions execute.

// maxStackDepth is the operand stack limit for calculator functions,
// from table C.1 of PDF 32000-1:2008.
const maxStackDepth = 100

var (
	errStackOverflow  = errors.New("operand stack overflow")
	errStackUnderflow = errors.New("operand stack underflow")
	errTypeCheck      = errors.New("typecheck error")
)

// value is an operand of the calculator virtual machine.
type value struct {
	num    float64
	isInt  bool
	isBool bool
	proc   code
}

func realVal(x float64) value {
	return value{num: x}
}

func intVal(x int64) value {
	return value{num: float64(x), isInt: true}
}

func boolVal(b bool) value {
	var x float64
	if b {
		x = 1
	}
	return value{num: x, isBool: true}
}

func procVal(c code) value {
	return value{proc: c}
}

func (v value) toFloat() float64 {
	return v.num
}

func (v value) toInt() (int64, error) {
	if v.isBool || v.proc != nil {
		return 0, errTypeCheck
	}
	if v.num != math.Trunc(v.num) {
		return 0, errTypeCheck
	}
	return int64(v.num), nil
}

type instr struct {
	op  opCode
	val value
}

type code []instr

type opCode int

const (
	opPush opCode = iota
	opAbs
	opAdd
	opAnd
	opAtan
	opBitshift
	opCeiling
	opCopy
	opCos
	opCvi
	opCvr
	opDiv
	opDup
	opEq
	opExch
	opExp
	opFloor
	opGe
	opGt
	opIdiv
	opIf
	opIfelse
	opIndex
	opLe
	opLn
	opLog
	opLt
	opMod
	opMul
	opNe
	opNeg
	opNot
	opOr
	opPop
	opRoll
	opRound
	opSin
	opSqrt
	opSub
	opTruncate
	opXor
)

var opNames = map[string]opCode{
	"abs":      opAbs,
	"add":      opAdd,
	"and":      opAnd,
	"atan":     opAtan,
	"bitshift": opBitshift,
	"ceiling":  opCeiling,
	"copy":     opCopy,
	"cos":      opCos,
	"cvi":      opCvi,
	"cvr":      opCvr,
	"div":      opDiv,
	"dup":      opDup,
	"eq":       opEq,
	"exch":     opExch,
	"exp":      opExp,
	"floor":    opFloor,
	"ge":       opGe,
	"gt":       opGt,
	"idiv":     opIdiv,
	"if":       opIf,
	"ifelse":   opIfelse,
	"index":    opIndex,
	"le":       opLe,
	"ln":       opLn,
	"log":      opLog,
	"lt":       opLt,
	"mod":      opMod,
	"mul":      opMul,
	"ne":       opNe,
	"neg":      opNeg,
	"not":      opNot,
	"or":       opOr,
	"pop":      opPop,
	"roll":     opRoll,
	"round":    opRound,
	"sin":      opSin,
	"sqrt":     opSqrt,
	"sub":      opSub,
	"truncate": opTruncate,
	"xor":      opXor,
}

// compile translates a calculator program into VM instructions.
func compile(program string) (code, error) {
	tokens := tokenize(program)
	res, rest, err := compileTokens(tokens)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, errors.New("unbalanced braces")
	}
	return res, nil
}

func tokenize(program string) []string {
	program = strings.ReplaceAll(program, "{", " { ")
	program = strings.ReplaceAll(program, "}", " } ")
	return strings.Fields(program)
}

func compileTokens(tokens []string) (code, []string, error) {
	var res code
	for len(tokens) > 0 {
		tok := tokens[0]
		tokens = tokens[1:]

		switch tok {
		case "{":
			proc, rest, err := compileTokens(tokens)
			if err != nil {
				return nil, nil, err
			}
			if len(rest) == 0 || rest[0] != "}" {
				return nil, nil, errors.New("unbalanced braces")
			}
			tokens = rest[1:]
			res = append(res, instr{op: opPush, val: procVal(proc)})
		case "}":
			return res, append([]string{"}"}, tokens...), nil
		case "true":
			res = append(res, instr{op: opPush, val: boolVal(true)})
		case "false":
			res = append(res, instr{op: opPush, val: boolVal(false)})
		default:
			if op, isOp := opNames[tok]; isOp {
				res = append(res, instr{op: op})
				continue
			}
			if x, err := strconv.ParseInt(tok, 10, 64); err == nil {
				res = append(res, instr{op: opPush, val: intVal(x)})
				continue
			}
			x, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, nil, errors.New("invalid token " + strconv.Quote(tok))
			}
			res = append(res, instr{op: opPush, val: realVal(x)})
		}
	}
	return res, nil, nil
}

// execute runs the compiled program on the given initial stack and
// returns the final stack contents.
func execute(program code, stack []value) ([]value, error) {
	return executeDepth(program, stack, 0)
}

func executeDepth(program code, stack []value, depth int) ([]value, error) {
	if depth > 32 {
		return nil, errors.New("procedure nesting too deep")
	}

	pop := func() (value, error) {
		if len(stack) == 0 {
			return value{}, errStackUnderflow
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}
	push := func(v value) error {
		if len(stack) >= maxStackDepth {
			return errStackOverflow
		}
		stack = append(stack, v)
		return nil
	}

	for _, ins := range program {
		var err error
		switch ins.op {
		case opPush:
			err = push(ins.val)

		case opAbs, opNeg, opCeiling, opFloor, opRound, opTruncate,
			opSqrt, opLn, opLog, opSin, opCos, opCvi, opCvr:
			var v value
			v, err = pop()
			if err != nil {
				break
			}
			err = push(applyUnary(ins.op, v))

		case opAdd, opSub, opMul, opDiv, opIdiv, opMod, opExp, opAtan,
			opBitshift:
			var a, b value
			b, err = pop()
			if err != nil {
				break
			}
			a, err = pop()
			if err != nil {
				break
			}
			var r value
			r, err = applyBinary(ins.op, a, b)
			if err != nil {
				break
			}
			err = push(r)

		case opEq, opNe, opGt, opGe, opLt, opLe:
			var a, b value
			b, err = pop()
			if err != nil {
				break
			}
			a, err = pop()
			if err != nil {
				break
			}
			err = push(boolVal(compare(ins.op, a, b)))

		case opAnd, opOr, opXor, opNot:
			err = applyLogic(ins.op, &stack)

		case opPop:
			_, err = pop()

		case opDup:
			if len(stack) == 0 {
				err = errStackUnderflow
				break
			}
			err = push(stack[len(stack)-1])

		case opExch:
			if len(stack) < 2 {
				err = errStackUnderflow
				break
			}
			k := len(stack)
			stack[k-1], stack[k-2] = stack[k-2], stack[k-1]

		case opCopy:
			var v value
			v, err = pop()
			if err != nil {
				break
			}
			var k int64
			k, err = v.toInt()
			if err != nil {
				break
			}
			if k < 0 || int(k) > len(stack) {
				err = errStackUnderflow
				break
			}
			if len(stack)+int(k) > maxStackDepth {
				err = errStackOverflow
				break
			}
			stack = append(stack, stack[len(stack)-int(k):]...)

		case opIndex:
			var v value
			v, err = pop()
			if err != nil {
				break
			}
			var k int64
			k, err = v.toInt()
			if err != nil {
				break
			}
			if k < 0 || int(k) >= len(stack) {
				err = errStackUnderflow
				break
			}
			err = push(stack[len(stack)-1-int(k)])

		case opRoll:
			var vj, vn value
			vj, err = pop()
			if err != nil {
				break
			}
			vn, err = pop()
			if err != nil {
				break
			}
			var j, n int64
			j, err = vj.toInt()
			if err != nil {
				break
			}
			n, err = vn.toInt()
			if err != nil {
				break
			}
			if n < 0 || int(n) > len(stack) {
				err = errStackUnderflow
				break
			}
			if n > 0 {
				part := stack[len(stack)-int(n):]
				shift := ((int(j) % int(n)) + int(n)) % int(n)
				rotated := make([]value, 0, len(part))
				rotated = append(rotated, part[len(part)-shift:]...)
				rotated = append(rotated, part[:len(part)-shift]...)
				copy(part, rotated)
			}

		case opIf:
			var proc, cond value
			proc, err = pop()
			if err != nil {
				break
			}
			cond, err = pop()
			if err != nil {
				break
			}
			if proc.proc == nil || !cond.isBool {
				err = errTypeCheck
				break
			}
			if cond.num != 0 {
				stack, err = executeDepth(proc.proc, stack, depth+1)
			}

		case opIfelse:
			var proc2, proc1, cond value
			proc2, err = pop()
			if err != nil {
				break
			}
			proc1, err = pop()
			if err != nil {
				break
			}
			cond, err = pop()
			if err != nil {
				break
			}
			if proc1.proc == nil || proc2.proc == nil || !cond.isBool {
				err = errTypeCheck
				break
			}
			if cond.num != 0 {
				stack, err = executeDepth(proc1.proc, stack, depth+1)
			} else {
				stack, err = executeDepth(proc2.proc, stack, depth+1)
			}
		}

		if err != nil {
			return nil, err
		}
	}
	return stack, nil
}

func applyUnary(op opCode, v value) value {
	x := v.num
	switch op {
	case opAbs:
		if v.isInt {
			return intVal(int64(math.Abs(x)))
		}
		return realVal(math.Abs(x))
	case opNeg:
		if v.isInt {
			return intVal(-int64(x))
		}
		return realVal(-x)
	case opCeiling:
		if v.isInt {
			return v
		}
		return realVal(math.Ceil(x))
	case opFloor:
		if v.isInt {
			return v
		}
		return realVal(math.Floor(x))
	case opRound:
		if v.isInt {
			return v
		}
		// PostScript rounds ties towards positive infinity
		return realVal(math.Floor(x + 0.5))
	case opTruncate:
		if v.isInt {
			return v
		}
		return realVal(math.Trunc(x))
	case opSqrt:
		return realVal(math.Sqrt(x))
	case opLn:
		return realVal(math.Log(x))
	case opLog:
		return realVal(math.Log10(x))
	case opSin:
		return realVal(math.Sin(x * math.Pi / 180))
	case opCos:
		return realVal(math.Cos(x * math.Pi / 180))
	case opCvi:
		return intVal(int64(math.Trunc(x)))
	case opCvr:
		return realVal(x)
	}
	return v
}

func applyBinary(op opCode, a, b value) (value, error) {
	bothInt := a.isInt && b.isInt
	switch op {
	case opAdd:
		if bothInt {
			return intVal(int64(a.num) + int64(b.num)), nil
		}
		return realVal(a.num + b.num), nil
	case opSub:
		if bothInt {
			return intVal(int64(a.num) - int64(b.num)), nil
		}
		return realVal(a.num - b.num), nil
	case opMul:
		if bothInt {
			return intVal(int64(a.num) * int64(b.num)), nil
		}
		return realVal(a.num * b.num), nil
	case opDiv:
		return realVal(a.num / b.num), nil
	case opIdiv:
		ai, err := a.toInt()
		if err != nil {
			return value{}, err
		}
		bi, err := b.toInt()
		if err != nil {
			return value{}, err
		}
		if bi == 0 {
			return value{}, errors.New("division by zero")
		}
		return intVal(ai / bi), nil
	case opMod:
		ai, err := a.toInt()
		if err != nil {
			return value{}, err
		}
		bi, err := b.toInt()
		if err != nil {
			return value{}, err
		}
		if bi == 0 {
			return value{}, errors.New("division by zero")
		}
		return intVal(ai % bi), nil
	case opExp:
		return realVal(math.Pow(a.num, b.num)), nil
	case opAtan:
		deg := math.Atan2(a.num, b.num) * 180 / math.Pi
		if deg < 0 {
			deg += 360
		}
		return realVal(deg), nil
	case opBitshift:
		ai, err := a.toInt()
		if err != nil {
			return value{}, err
		}
		bi, err := b.toInt()
		if err != nil {
			return value{}, err
		}
		if bi >= 0 {
			return intVal(ai << (bi & 63)), nil
		}
		return intVal(ai >> ((-bi) & 63)), nil
	}
	return value{}, errTypeCheck
}

func compare(op opCode, a, b value) bool {
	switch op {
	case opEq:
		return a.num == b.num
	case opNe:
		return a.num != b.num
	case opGt:
		return a.num > b.num
	case opGe:
		return a.num >= b.num
	case opLt:
		return a.num < b.num
	case opLe:
		return a.num <= b.num
	}
	return false
}

func applyLogic(op opCode, stackPtr *[]value) error {
	stack := *stackPtr

	if op == opNot {
		if len(stack) == 0 {
			return errStackUnderflow
		}
		v := stack[len(stack)-1]
		if v.isBool {
			stack[len(stack)-1] = boolVal(v.num == 0)
		} else {
			i, err := v.toInt()
			if err != nil {
				return err
			}
			stack[len(stack)-1] = intVal(^i)
		}
		return nil
	}

	if len(stack) < 2 {
		return errStackUnderflow
	}
	b := stack[len(stack)-1]
	a := stack[len(stack)-2]
	stack = stack[:len(stack)-2]

	var res value
	if a.isBool && b.isBool {
		av := a.num != 0
		bv := b.num != 0
		switch op {
		case opAnd:
			res = boolVal(av && bv)
		case opOr:
			res = boolVal(av || bv)
		case opXor:
			res = boolVal(av != bv)
		}
	} else {
		ai, err := a.toInt()
		if err != nil {
			return err
		}
		bi, err := b.toInt()
		if err != nil {
			return err
		}
		switch op {
		case opAnd:
			res = intVal(ai & bi)
		case opOr:
			res = intVal(ai | bi)
		case opXor:
			res = intVal(ai ^ bi)
		}
	}
	stack = append(stack, res)
	*stackPtr = stack
	return nil
}
