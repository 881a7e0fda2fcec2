// Package tape is the second half of the lowering pipeline: it turns a
// fully expanded pkg/stackir instruction stream into code for the
// 8-operator tape machine the whole compiler ultimately targets. The
// tape itself is an unbounded array of wrapping bytes with one movable
// head, the classic Brainfuck model.
package tape

import "strings"

// Op is one of the eight tape primitives. There is no ninth.
type Op byte

const (
	Left  Op = '<'
	Right Op = '>'
	Inc   Op = '+'
	Dec   Op = '-'
	In    Op = ','
	Out   Op = '.'
	LBrac Op = '['
	RBrac Op = ']'
)

// Program is a flat sequence of tape operators, the compiler's final
// output artifact.
type Program []Op

func (p Program) String() string {
	var b strings.Builder
	b.Grow(len(p))
	for _, op := range p {
		b.WriteByte(byte(op))
	}
	return b.String()
}

// Repeat returns n copies of op, the building block every gadget below
// uses for head shifts (Left/Right) and literal counts (Inc/Dec).
func Repeat(op Op, n int) Program {
	if n <= 0 {
		return nil
	}
	out := make(Program, n)
	for i := range out {
		out[i] = op
	}
	return out
}

// Parse reads a raw tape-source file: every byte outside the eight
// operators is ignored, including backtick-delimited debug comments
// and whitespace, so hand-written or --dump-tape-produced sources both
// load the same way.
func Parse(src string) Program {
	var out Program
	inComment := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inComment {
			if c == '`' {
				inComment = false
			}
			continue
		}
		switch Op(c) {
		case Left, Right, Inc, Dec, In, Out, LBrac, RBrac:
			out = append(out, Op(c))
		case '`':
			inComment = true
		}
	}
	return out
}
