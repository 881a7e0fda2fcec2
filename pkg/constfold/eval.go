// Package constfold implements a narrow constant-expression evaluator:
// literals, binary arithmetic/bitwise operators, unary bitwise-not/
// negate, and sizeof. It is used to fold array extents
// at declarator time and switch case labels at lowering time; anything
// outside this subset is reported as non-foldable rather than
// approximated.
package constfold

import (
	"tapecc/pkg/ast"
)

// Eval attempts to fold e to a compile-time uint16 value. ok is false
// when e falls outside the supported subset (a variable reference, a
// function call, a short-circuit operator, etc.).
func Eval(e ast.Expr) (value uint16, ok bool) {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Value, true

	case *ast.SizeofType:
		return uint16(n.Type.Size()), true

	case *ast.UnaryExpr:
		v, ok := Eval(n.Right)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case ast.BitNot:
			return ^v, true
		case ast.Negate:
			return uint16(-int32(v)), true
		default:
			return 0, false
		}

	case *ast.BinaryExpr:
		acc, ok := Eval(n.Head)
		if !ok {
			return 0, false
		}
		for i, op := range n.Op {
			rhs, ok := Eval(n.Operand[i])
			if !ok {
				return 0, false
			}
			v, ok := applyBinOp(op, acc, rhs)
			if !ok {
				return 0, false
			}
			acc = v
		}
		return acc, true

	default:
		return 0, false
	}
}

func applyBinOp(op ast.BinOp, a, b uint16) (uint16, bool) {
	switch op {
	case ast.Add:
		return a + b, true
	case ast.Sub:
		return a - b, true
	case ast.Mul:
		return a * b, true
	case ast.Div:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case ast.Mod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case ast.BitAnd:
		return a & b, true
	case ast.BitOr:
		return a | b, true
	case ast.BitXor:
		return a ^ b, true
	case ast.LShift:
		return a << (b % 16), true
	case ast.RShift:
		return a >> (b % 16), true
	default:
		return 0, false
	}
}
