package ctxt

import (
	"tapecc/pkg/ast"
	"tapecc/pkg/ctypes"
	"tapecc/pkg/stackir"
)

// binOpTable maps a fully-evaluated (non-short-circuit) BinOp to the
// stack-machine op (or macro) that implements it.
var binOpTable = map[ast.BinOp]stackir.Op{
	ast.Add: stackir.Add, ast.Sub: stackir.Sub, ast.Mul: stackir.Mul,
	ast.Div: stackir.Div, ast.Mod: stackir.Mod,
	ast.LShift: stackir.LShift, ast.RShift: stackir.RShift,
	ast.BitAnd: stackir.And, ast.BitOr: stackir.Or, ast.BitXor: stackir.Xor,
	ast.Eq: stackir.Eq, ast.Neq: stackir.Neq,
	ast.Lt: stackir.Lt, ast.LtEq: stackir.LtEq, ast.Gr: stackir.Gr, ast.GrEq: stackir.GrEq,
}

// compileExpr lowers e, leaving exactly one word on top of the stack
//.
func (c *Context) compileExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Literal:
		c.emit(stackir.Inst{Op: stackir.Push, W: stackir.Word(n.Value)})
		return nil

	case *ast.VarRef:
		return c.compileVarLoad(n.Name)

	case *ast.BinaryExpr:
		if err := c.compileExpr(n.Head); err != nil {
			return err
		}
		for i, op := range n.Op {
			if op.IsShortCircuit() {
				if err := c.compileShortCircuit(op, n.Operand[i]); err != nil {
					return err
				}
				continue
			}
			if err := c.compileExpr(n.Operand[i]); err != nil {
				return err
			}
			kop, ok := binOpTable[op]
			if !ok {
				return newErr(ErrUnsupported, "operator %s", op)
			}
			c.emit(stackir.Inst{Op: kop})
		}
		return nil

	case *ast.UnaryExpr:
		return c.compileUnary(n)

	case *ast.SizeofType:
		c.emit(stackir.Inst{Op: stackir.Push, W: stackir.Word(n.Type.Size())})
		return nil

	case *ast.SizeofExpr:
		ty, err := c.staticType(n.Expr)
		if err != nil {
			return err
		}
		c.emit(stackir.Inst{Op: stackir.Push, W: stackir.Word(ty.Size())})
		return nil

	case *ast.CastExpr:
		// Every value is one word regardless of declared width, so a
		// cast only changes how later code interprets the bits — it
		// has no runtime effect here.
		return c.compileExpr(n.Expr)

	case *ast.TernaryExpr:
		return c.compileTernary(n)

	case *ast.SeqExpr:
		for i, sub := range n.Exprs {
			if err := c.compileExpr(sub); err != nil {
				return err
			}
			if i != len(n.Exprs)-1 {
				c.emit(stackir.Inst{Op: stackir.Dealloc, N: 1})
			}
		}
		return nil

	case *ast.AssignExpr:
		return c.compileAssign(n)

	case *ast.IndexExpr:
		ty, err := c.compileAddr(n)
		if err != nil {
			return err
		}
		_ = ty
		c.emit(stackir.Inst{Op: stackir.StkRead})
		return nil

	case *ast.CallExpr:
		return c.compileCallExpr(n)

	case *ast.FieldExpr:
		return newErr(ErrUnsupported, "struct/union member access is not part of this language")

	case *ast.PostfixExpr:
		return c.compilePostfix(n)

	case *ast.InitList:
		return newErr(ErrUnsupported, "brace initializer used outside a declaration")

	default:
		return newErr(ErrUnsupported, "expression %T", e)
	}
}

// compileVarLoad pushes the value of a scalar variable, or the decayed
// address of an array variable.
func (c *Context) compileVarLoad(name string) error {
	if c.curFunc != nil {
		if lv, ok := c.curFunc.Locals[name]; ok {
			if lv.Type.IsArray() {
				return c.pushLocalAddr(lv.FramePos)
			}
			return c.readLocal(lv.FramePos)
		}
	}
	if ty, ok := c.globals[name]; ok {
		addr := c.globalAddr[name]
		if ty.IsArray() {
			c.emit(stackir.Inst{Op: stackir.Push, W: stackir.Word(addr)})
			return nil
		}
		c.emit(stackir.Inst{Op: stackir.Push, W: stackir.Word(addr)})
		c.emit(stackir.Inst{Op: stackir.StkRead})
		return nil
	}
	if fn, ok := c.funcs[name]; ok {
		c.emit(stackir.Inst{Op: stackir.Push, W: fn.Label})
		return nil
	}
	return newErr(ErrUndefined, "%q", name)
}

// pushLocalAddr pushes the absolute tape address of frame position p
// in the current frame: own base (slot 0) plus p.
func (c *Context) pushLocalAddr(p int) error {
	if err := c.readLocal(0); err != nil {
		return err
	}
	c.emit(stackir.Inst{Op: stackir.Push, W: stackir.Word(p)})
	c.emit(stackir.Inst{Op: stackir.Add})
	return nil
}

// compileAddr pushes the absolute address of lvalue e.
func (c *Context) compileAddr(e ast.Expr) (ctypes.Type, error) {
	switch n := e.(type) {
	case *ast.VarRef:
		if c.curFunc != nil {
			if lv, ok := c.curFunc.Locals[n.Name]; ok {
				return lv.Type, c.pushLocalAddr(lv.FramePos)
			}
		}
		if ty, ok := c.globals[n.Name]; ok {
			c.emit(stackir.Inst{Op: stackir.Push, W: stackir.Word(c.globalAddr[n.Name])})
			return ty, nil
		}
		return ctypes.Type{}, newErr(ErrUndefined, "%q", n.Name)

	case *ast.IndexExpr:
		if err := c.compileExpr(n.Left); err != nil {
			return ctypes.Type{}, err
		}
		if err := c.compileExpr(n.Index); err != nil {
			return ctypes.Type{}, err
		}
		c.emit(stackir.Inst{Op: stackir.Add})
		leftTy, err := c.staticType(n.Left)
		if err != nil {
			return ctypes.Type{}, err
		}
		elem, ok := leftTy.Decay().Deref()
		if !ok {
			return ctypes.Type{}, newErr(ErrShape, "%s is not indexable", leftTy)
		}
		return elem, nil

	case *ast.UnaryExpr:
		if n.Op != ast.Deref {
			return ctypes.Type{}, newErr(ErrShape, "cannot take the address of this expression")
		}
		if err := c.compileExpr(n.Right); err != nil {
			return ctypes.Type{}, err
		}
		ptrTy, err := c.staticType(n.Right)
		if err != nil {
			return ctypes.Type{}, err
		}
		elem, ok := ptrTy.Deref()
		if !ok {
			return ctypes.Type{}, newErr(ErrShape, "%s is not a pointer", ptrTy)
		}
		return elem, nil

	default:
		return ctypes.Type{}, newErr(ErrShape, "%T is not an lvalue", e)
	}
}

// compileStore stores the value already on top of the stack into
// target, consuming it.
func (c *Context) compileStore(target ast.Expr) error {
	switch t := target.(type) {
	case *ast.VarRef:
		if c.curFunc != nil {
			if lv, ok := c.curFunc.Locals[t.Name]; ok {
				if lv.Type.IsArray() {
					return newErr(ErrShape, "cannot assign to array %q", t.Name)
				}
				return c.writeLocal(lv.FramePos)
			}
		}
		if ty, ok := c.globals[t.Name]; ok {
			if ty.IsArray() {
				return newErr(ErrShape, "cannot assign to array %q", t.Name)
			}
			c.emit(stackir.Inst{Op: stackir.Push, W: stackir.Word(c.globalAddr[t.Name])})
			c.emit(stackir.Inst{Op: stackir.StkStr})
			return nil
		}
		return newErr(ErrUndefined, "%q", t.Name)

	case *ast.IndexExpr:
		if err := c.compileExpr(t.Left); err != nil {
			return err
		}
		if err := c.compileExpr(t.Index); err != nil {
			return err
		}
		c.emit(stackir.Inst{Op: stackir.Add})
		c.emit(stackir.Inst{Op: stackir.StkStr})
		return nil

	case *ast.UnaryExpr:
		if t.Op != ast.Deref {
			return newErr(ErrShape, "invalid assignment target")
		}
		if err := c.compileExpr(t.Right); err != nil {
			return err
		}
		c.emit(stackir.Inst{Op: stackir.StkStr})
		return nil

	default:
		return newErr(ErrShape, "%T is not assignable", target)
	}
}

func (c *Context) compileUnary(n *ast.UnaryExpr) error {
	switch n.Op {
	case ast.LogNot:
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.emit(stackir.Inst{Op: stackir.LNot})
		return nil
	case ast.BitNot:
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.emit(stackir.Inst{Op: stackir.Not})
		return nil
	case ast.Negate:
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.emit(stackir.Inst{Op: stackir.Negate})
		return nil
	case ast.Addr:
		_, err := c.compileAddr(n.Right)
		return err
	case ast.Deref:
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.emit(stackir.Inst{Op: stackir.StkRead})
		return nil
	case ast.PreInc, ast.PreDec:
		return c.compileIncDec(n.Right, n.Op == ast.PreInc, false)
	default:
		return newErr(ErrUnsupported, "unary operator %s", n.Op)
	}
}

func (c *Context) compilePostfix(n *ast.PostfixExpr) error {
	return c.compileIncDec(n.Left, n.Op == ast.PostInc, true)
}

// compileIncDec loads target, stores target+-1, and leaves either the
// new value (prefix) or the old value (postfix) on top.
func (c *Context) compileIncDec(target ast.Expr, inc bool, postfix bool) error {
	if err := c.compileExpr(target); err != nil {
		return err
	}
	if postfix {
		c.emit(stackir.Inst{Op: stackir.Copy})
	}
	c.emit(stackir.Inst{Op: stackir.Push, W: 1})
	if inc {
		c.emit(stackir.Inst{Op: stackir.Add})
	} else {
		c.emit(stackir.Inst{Op: stackir.Sub})
	}
	if !postfix {
		c.emit(stackir.Inst{Op: stackir.Copy})
	}
	if err := c.compileStore(target); err != nil {
		return err
	}
	return nil
}

func (c *Context) compileAssign(n *ast.AssignExpr) error {
	if arith, isCompound := n.Op.Arith(); isCompound {
		if err := c.compileExpr(n.Target); err != nil {
			return err
		}
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		kop, ok := binOpTable[arith]
		if !ok {
			return newErr(ErrUnsupported, "compound operator %s", arith)
		}
		c.emit(stackir.Inst{Op: kop})
	} else {
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
	}
	c.emit(stackir.Inst{Op: stackir.Copy})
	return c.compileStore(n.Target)
}

// compileShortCircuit evaluates `lhs && rhs` or `lhs || rhs` (lhs
// already on the stack) without evaluating rhs unless necessary.
func (c *Context) compileShortCircuit(op ast.BinOp, rhs ast.Expr) error {
	if !c.Height.Known {
		return newErr(ErrHeightMismatch, "short-circuit operator with unknown stack height")
	}
	h0 := c.Height.N
	skipLbl := c.label()
	joinLbl := c.label()

	if op == ast.LogAnd {
		// false short-circuits to false.
		c.emit(stackir.Inst{Op: stackir.LNot})
		c.emit(stackir.Inst{Op: stackir.Branch, W: skipLbl})
	} else {
		// true short-circuits to true.
		c.emit(stackir.Inst{Op: stackir.Branch, W: skipLbl})
	}

	if err := c.compileExpr(rhs); err != nil {
		return err
	}
	c.emit(stackir.Inst{Op: stackir.LNot})
	c.emit(stackir.Inst{Op: stackir.LNot})
	heightAfterEval := c.Height.N

	c.emit(stackir.Inst{Op: stackir.Push, W: joinLbl})
	c.emit(stackir.Inst{Op: stackir.Goto})

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: skipLbl})
	// Branch already popped lhs before jumping here, so the live
	// height at this join is h0-1, not h0.
	c.Height = KnownHeight(h0 - 1)
	if op == ast.LogAnd {
		c.emit(stackir.Inst{Op: stackir.Push, W: 0})
	} else {
		c.emit(stackir.Inst{Op: stackir.Push, W: 1})
	}
	if c.Height.N != heightAfterEval {
		return newErr(ErrHeightMismatch, "short-circuit branches disagree on height (%d vs %d)", c.Height.N, heightAfterEval)
	}

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: joinLbl})
	return nil
}

func (c *Context) compileTernary(n *ast.TernaryExpr) error {
	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	if !c.Height.Known {
		return newErr(ErrHeightMismatch, "ternary with unknown stack height")
	}
	h0 := c.Height.N - 1
	c.emit(stackir.Inst{Op: stackir.LNot})
	elseLbl := c.label()
	joinLbl := c.label()
	c.emit(stackir.Inst{Op: stackir.Branch, W: elseLbl})

	c.Height = KnownHeight(h0)
	if err := c.compileExpr(n.Then); err != nil {
		return err
	}
	thenHeight := c.Height.N
	c.emit(stackir.Inst{Op: stackir.Push, W: joinLbl})
	c.emit(stackir.Inst{Op: stackir.Goto})

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: elseLbl})
	c.Height = KnownHeight(h0)
	if err := c.compileExpr(n.Else); err != nil {
		return err
	}
	if c.Height.N != thenHeight {
		return newErr(ErrHeightMismatch, "ternary branches disagree on height (%d vs %d)", c.Height.N, thenHeight)
	}

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: joinLbl})
	return nil
}

func (c *Context) compileCallExpr(n *ast.CallExpr) error {
	callee, ok := n.Callee.(*ast.VarRef)
	if !ok {
		return newErr(ErrUnsupported, "indirect calls through a function pointer")
	}
	fn, ok := c.funcs[callee.Name]
	if !ok {
		return newErr(ErrUndefined, "call to undeclared function %q", callee.Name)
	}
	pushArgs := func() error {
		for _, a := range n.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		return nil
	}
	hasResult := fn.Def.Return.Kind != ctypes.Void
	if err := c.compileCallByLabel(fn.Label, c.ownBaseLocal, pushArgs, hasResult); err != nil {
		return err
	}
	if !hasResult {
		// A void call used in value position has no defined result;
		// push a placeholder zero so the one-word-per-Expr invariant
		// holds for callers that (incorrectly, but not rejected here)
		// use it as a subexpression.
		c.emit(stackir.Inst{Op: stackir.Push, W: 0})
	}
	return nil
}

// staticType does the minimal type inference compileAddr/sizeof need:
// variable references resolve directly, and one level of indexing or
// dereference resolves from its operand's type.
func (c *Context) staticType(e ast.Expr) (ctypes.Type, error) {
	switch n := e.(type) {
	case *ast.VarRef:
		if c.curFunc != nil {
			if lv, ok := c.curFunc.Locals[n.Name]; ok {
				return lv.Type, nil
			}
		}
		if ty, ok := c.globals[n.Name]; ok {
			return ty, nil
		}
		return ctypes.Type{}, newErr(ErrUndefined, "%q", n.Name)
	case *ast.IndexExpr:
		leftTy, err := c.staticType(n.Left)
		if err != nil {
			return ctypes.Type{}, err
		}
		elem, ok := leftTy.Decay().Deref()
		if !ok {
			return ctypes.Type{}, newErr(ErrShape, "%s is not indexable", leftTy)
		}
		return elem, nil
	case *ast.UnaryExpr:
		if n.Op == ast.Deref {
			ptrTy, err := c.staticType(n.Right)
			if err != nil {
				return ctypes.Type{}, err
			}
			elem, ok := ptrTy.Deref()
			if !ok {
				return ctypes.Type{}, newErr(ErrShape, "%s is not a pointer", ptrTy)
			}
			return elem, nil
		}
		if n.Op == ast.Addr {
			inner, err := c.staticType(n.Right)
			if err != nil {
				return ctypes.Type{}, err
			}
			return inner.Pointer(), nil
		}
		return ctypes.IntT, nil
	case *ast.CastExpr:
		return n.Type, nil
	default:
		return ctypes.IntT, nil
	}
}
