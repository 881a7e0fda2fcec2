package ast

import (
	"fmt"

	"tapecc/pkg/ctypes"
)

// Expr is implemented by every node that produces a value. Lowering
// always leaves exactly one word on top of the symbolic stack for each
// Expr.
type Expr interface {
	exprNode()
	String() string
}

// Literal is a compile-time integer or character constant.
//
//	int x = 10;
//	         ^^  Literal{Value: 10}
//	char c = 'A';
//	          ^^^  Literal{Value: 65}
type Literal struct {
	Value uint16
}

func (*Literal) exprNode()        {}
func (l *Literal) String() string { return fmt.Sprintf("%d", l.Value) }

// VarRef is a read of a named variable.
type VarRef struct {
	Name string
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return v.Name }

// BinaryExpr is a left-associative chain: Head Op[0] Operand[0] Op[1]
// Operand[1] ... Lowering evaluates Head, then folds each (Op, Operand)
// pair in order.
type BinaryExpr struct {
	Head    Expr
	Op      []BinOp
	Operand []Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	s := b.Head.String()
	for i, op := range b.Op {
		s = fmt.Sprintf("(%s %s %s)", s, op, b.Operand[i])
	}
	return s
}

// UnaryExpr is Op Right: logical/bitwise negation, arithmetic negation,
// address-of, dereference, or prefix increment/decrement.
type UnaryExpr struct {
	Op    UnOp
	Right Expr
}

func (*UnaryExpr) exprNode()        {}
func (u *UnaryExpr) String() string { return fmt.Sprintf("(%s%s)", u.Op, u.Right) }

// SizeofType is `sizeof(Type)`.
type SizeofType struct {
	Type ctypes.Type
}

func (*SizeofType) exprNode()        {}
func (s *SizeofType) String() string { return fmt.Sprintf("sizeof(%s)", s.Type) }

// SizeofExpr is `sizeof Expr` (no parenthesized type-name). Lowering
// resolves Expr's static type from context and folds it the same way as
// a SizeofType.
type SizeofExpr struct {
	Expr Expr
}

func (*SizeofExpr) exprNode()        {}
func (s *SizeofExpr) String() string { return fmt.Sprintf("sizeof(%s)", s.Expr) }

// CastExpr is `(Type) Expr`.
type CastExpr struct {
	Type ctypes.Type
	Expr Expr
}

func (*CastExpr) exprNode()        {}
func (c *CastExpr) String() string { return fmt.Sprintf("(%s)(%s)", c.Type, c.Expr) }

// TernaryExpr is `Cond ? Then : Else`.
type TernaryExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (*TernaryExpr) exprNode() {}
func (t *TernaryExpr) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", t.Cond, t.Then, t.Else)
}

// SeqExpr is a comma-separated sequence; all but the last value are
// evaluated and discarded.
type SeqExpr struct {
	Exprs []Expr
}

func (*SeqExpr) exprNode()        {}
func (s *SeqExpr) String() string { return fmt.Sprintf("%v", s.Exprs) }

// InitList is a brace initializer `{ e, e, ... }`.
type InitList struct {
	Elements []Expr
}

func (*InitList) exprNode()        {}
func (l *InitList) String() string { return fmt.Sprintf("{%v}", l.Elements) }

// AssignExpr is `Target Op= Value` used as an expression (its value is
// the value stored).
type AssignExpr struct {
	Target Expr
	Op     AssignOp
	Value  Expr
}

func (*AssignExpr) exprNode()        {}
func (a *AssignExpr) String() string { return fmt.Sprintf("(%s = %s)", a.Target, a.Value) }

// IndexExpr is `Left[Index]`.
type IndexExpr struct {
	Left  Expr
	Index Expr
}

func (*IndexExpr) exprNode()        {}
func (e *IndexExpr) String() string { return fmt.Sprintf("%s[%s]", e.Left, e.Index) }

// CallExpr is `Callee(Args...)`.
type CallExpr struct {
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode()        {}
func (c *CallExpr) String() string { return fmt.Sprintf("%s(%v)", c.Callee, c.Args) }

// FieldExpr is `Left.Member` or, when Arrow is set, `Left->Member`.
// Parsed for front-end completeness; rejected at lowering time because
// the type system has no struct variant.
type FieldExpr struct {
	Left   Expr
	Member string
	Arrow  bool
}

func (*FieldExpr) exprNode() {}
func (e *FieldExpr) String() string {
	if e.Arrow {
		return fmt.Sprintf("%s->%s", e.Left, e.Member)
	}
	return fmt.Sprintf("%s.%s", e.Left, e.Member)
}

// PostfixExpr is `Left++` or `Left--`.
type PostfixExpr struct {
	Op   PostOp
	Left Expr
}

func (*PostfixExpr) exprNode()        {}
func (p *PostfixExpr) String() string { return fmt.Sprintf("%s%s", p.Left, p.Op) }
