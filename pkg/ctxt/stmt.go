package ctxt

import (
	"tapecc/pkg/ast"
	"tapecc/pkg/constfold"
	"tapecc/pkg/stackir"
)

// compileStmt lowers s, leaving the symbolic stack height unchanged —
// a statement never leaves a residual value behind.
func (c *Context) compileStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case nil:
		return nil

	case *ast.BlockStmt:
		for _, inner := range n.Stmts {
			if err := c.compileStmt(inner); err != nil {
				return err
			}
		}
		return nil

	case *ast.DeclStmt:
		return c.compileDeclStmt(n)

	case *ast.ExprStmt:
		if n.Expr == nil {
			return nil
		}
		if err := c.compileExpr(n.Expr); err != nil {
			return err
		}
		c.emit(stackir.Inst{Op: stackir.Dealloc, N: 1})
		return nil

	case *ast.LabeledStmt:
		lbl, ok := c.curFunc.Labels[n.Label]
		if !ok {
			return newErr(ErrUndefined, "label %q", n.Label)
		}
		c.emit(stackir.Inst{Op: stackir.LabelOp, W: lbl})
		c.Height = KnownHeight(c.curFunc.Frame)
		return c.compileStmt(n.Stmt)

	case *ast.GotoStmt:
		lbl, ok := c.curFunc.Labels[n.Label]
		if !ok {
			return newErr(ErrUndefined, "goto target %q", n.Label)
		}
		c.emit(stackir.Inst{Op: stackir.Push, W: lbl})
		c.emit(stackir.Inst{Op: stackir.Goto})
		return nil

	case *ast.IfStmt:
		return c.compileIf(n)

	case *ast.WhileStmt:
		return c.compileWhile(n)

	case *ast.DoWhileStmt:
		return c.compileDoWhile(n)

	case *ast.ForStmt:
		return c.compileFor(n)

	case *ast.SwitchStmt:
		return c.compileSwitch(n)

	case *ast.CaseStmt:
		return c.compileStmt(n.Stmt)

	case *ast.DefaultStmt:
		return c.compileStmt(n.Stmt)

	case *ast.ContinueStmt:
		if len(c.contTarget) == 0 {
			return newErr(ErrShape, "continue outside a loop")
		}
		c.emit(stackir.Inst{Op: stackir.Push, W: c.contTarget[len(c.contTarget)-1]})
		c.emit(stackir.Inst{Op: stackir.Goto})
		return nil

	case *ast.BreakStmt:
		if len(c.breakTarget) == 0 {
			return newErr(ErrShape, "break outside a loop or switch")
		}
		c.emit(stackir.Inst{Op: stackir.Push, W: c.breakTarget[len(c.breakTarget)-1]})
		c.emit(stackir.Inst{Op: stackir.Goto})
		return nil

	case *ast.ReturnStmt:
		h := c.Height
		if n.Expr != nil {
			if err := c.compileExpr(n.Expr); err != nil {
				return err
			}
		}
		c.emit(stackir.Inst{Op: stackir.Push, W: c.retEpilogue})
		c.emit(stackir.Inst{Op: stackir.Goto})
		c.Height = h
		return nil

	case *ast.PrintStmt:
		if err := c.compileExpr(n.Expr); err != nil {
			return err
		}
		c.emit(stackir.Inst{Op: stackir.PutChar})
		return nil

	default:
		return newErr(ErrUnsupported, "statement %T", s)
	}
}

// compileDeclStmt lowers each local's initializer (if present) into its
// already-allocated frame slot. An omitted initializer relies on Alloc
// having zeroed the slot at function entry.
func (c *Context) compileDeclStmt(n *ast.DeclStmt) error {
	for _, d := range n.Decls {
		if d.Init == nil {
			continue
		}
		lv, ok := c.curFunc.Locals[d.Name]
		if !ok {
			return newErr(ErrUndefined, "%q", d.Name)
		}
		if lv.Type.IsArray() {
			if err := c.compileArrayInit(lv, d.Init); err != nil {
				return err
			}
			continue
		}
		if err := c.compileExpr(d.Init); err != nil {
			return err
		}
		if err := c.writeLocal(lv.FramePos); err != nil {
			return err
		}
	}
	return nil
}

// compileArrayInit lowers a brace initializer into an array local's
// inline storage, element by element.
func (c *Context) compileArrayInit(lv localVar, init ast.Expr) error {
	list, ok := init.(*ast.InitList)
	if !ok {
		return newErr(ErrShape, "array %q requires a brace initializer", lv.Type)
	}
	for i, elem := range list.Elements {
		if err := c.compileExpr(elem); err != nil {
			return err
		}
		if err := c.writeLocal(lv.FramePos + i); err != nil {
			return err
		}
	}
	return nil
}

// compileIf lowers if/else. The then and else arms
// must agree on symbolic height at the join, or lowering has miscounted
// somewhere and ErrHeightMismatch is reported rather than silently
// producing a machine that corrupts its own stack.
func (c *Context) compileIf(n *ast.IfStmt) error {
	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	c.emit(stackir.Inst{Op: stackir.LNot})
	if !c.Height.Known {
		return newErr(ErrHeightMismatch, "if with unknown stack height")
	}
	elseLbl := c.label()
	c.emit(stackir.Inst{Op: stackir.Branch, W: elseLbl})
	h0 := c.Height.N

	if err := c.compileStmt(n.Body); err != nil {
		return err
	}
	thenHeight := c.Height.N

	if n.ElseBody == nil {
		c.emit(stackir.Inst{Op: stackir.LabelOp, W: elseLbl})
		c.Height = KnownHeight(h0)
		if thenHeight != h0 {
			return newErr(ErrHeightMismatch, "if-body changed stack height (%d vs %d)", thenHeight, h0)
		}
		return nil
	}

	joinLbl := c.label()
	c.emit(stackir.Inst{Op: stackir.Push, W: joinLbl})
	c.emit(stackir.Inst{Op: stackir.Goto})

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: elseLbl})
	c.Height = KnownHeight(h0)
	if err := c.compileStmt(n.ElseBody); err != nil {
		return err
	}
	if c.Height.N != thenHeight {
		return newErr(ErrHeightMismatch, "if/else branches disagree on stack height (%d vs %d)", thenHeight, c.Height.N)
	}

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: joinLbl})
	c.Height = KnownHeight(thenHeight)
	return nil
}

func (c *Context) compileWhile(n *ast.WhileStmt) error {
	if !c.Height.Known {
		return newErr(ErrHeightMismatch, "while with unknown stack height")
	}
	h0 := c.Height.N
	loopLbl := c.label()
	exitLbl := c.label()

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: loopLbl})
	c.Height = KnownHeight(h0)

	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	c.emit(stackir.Inst{Op: stackir.LNot})
	c.emit(stackir.Inst{Op: stackir.Branch, W: exitLbl})

	c.breakTarget = append(c.breakTarget, exitLbl)
	c.contTarget = append(c.contTarget, loopLbl)
	err := c.compileStmt(n.Body)
	c.breakTarget = c.breakTarget[:len(c.breakTarget)-1]
	c.contTarget = c.contTarget[:len(c.contTarget)-1]
	if err != nil {
		return err
	}
	if c.Height.N != h0 {
		return newErr(ErrHeightMismatch, "while-body changed stack height (%d vs %d)", c.Height.N, h0)
	}

	c.emit(stackir.Inst{Op: stackir.Push, W: loopLbl})
	c.emit(stackir.Inst{Op: stackir.Goto})

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: exitLbl})
	c.Height = KnownHeight(h0)
	return nil
}

func (c *Context) compileDoWhile(n *ast.DoWhileStmt) error {
	if !c.Height.Known {
		return newErr(ErrHeightMismatch, "do-while with unknown stack height")
	}
	h0 := c.Height.N
	bodyLbl := c.label()
	testLbl := c.label()
	exitLbl := c.label()

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: bodyLbl})
	c.Height = KnownHeight(h0)

	c.breakTarget = append(c.breakTarget, exitLbl)
	c.contTarget = append(c.contTarget, testLbl)
	err := c.compileStmt(n.Body)
	c.breakTarget = c.breakTarget[:len(c.breakTarget)-1]
	c.contTarget = c.contTarget[:len(c.contTarget)-1]
	if err != nil {
		return err
	}
	if c.Height.N != h0 {
		return newErr(ErrHeightMismatch, "do-while body changed stack height (%d vs %d)", c.Height.N, h0)
	}

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: testLbl})
	c.Height = KnownHeight(h0)
	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	c.emit(stackir.Inst{Op: stackir.Branch, W: bodyLbl})

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: exitLbl})
	c.Height = KnownHeight(h0)
	return nil
}

func (c *Context) compileFor(n *ast.ForStmt) error {
	if n.Init != nil {
		if err := c.compileStmt(n.Init); err != nil {
			return err
		}
	}
	if !c.Height.Known {
		return newErr(ErrHeightMismatch, "for with unknown stack height")
	}
	h0 := c.Height.N

	loopLbl := c.label()
	continueLbl := c.label()
	exitLbl := c.label()

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: loopLbl})
	c.Height = KnownHeight(h0)

	if n.Cond != nil {
		if err := c.compileExpr(n.Cond); err != nil {
			return err
		}
		c.emit(stackir.Inst{Op: stackir.LNot})
		c.emit(stackir.Inst{Op: stackir.Branch, W: exitLbl})
	}

	c.breakTarget = append(c.breakTarget, exitLbl)
	c.contTarget = append(c.contTarget, continueLbl)
	err := c.compileStmt(n.Body)
	c.breakTarget = c.breakTarget[:len(c.breakTarget)-1]
	c.contTarget = c.contTarget[:len(c.contTarget)-1]
	if err != nil {
		return err
	}
	if c.Height.N != h0 {
		return newErr(ErrHeightMismatch, "for-body changed stack height (%d vs %d)", c.Height.N, h0)
	}

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: continueLbl})
	c.Height = KnownHeight(h0)
	if n.Step != nil {
		if err := c.compileExpr(n.Step); err != nil {
			return err
		}
		c.emit(stackir.Inst{Op: stackir.Dealloc, N: 1})
	}

	c.emit(stackir.Inst{Op: stackir.Push, W: loopLbl})
	c.emit(stackir.Inst{Op: stackir.Goto})

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: exitLbl})
	c.Height = KnownHeight(h0)
	return nil
}

// compileSwitch lowers a switch with fallthrough semantics: the target
// is evaluated once, compared against each case
// in source order, then the matched (or default, or none) body runs
// with ordinary sequential fallthrough between cases.
func (c *Context) compileSwitch(n *ast.SwitchStmt) error {
	body, ok := n.Body.(*ast.BlockStmt)
	if !ok {
		return newErr(ErrShape, "switch body must be a block")
	}
	if err := c.compileExpr(n.Target); err != nil {
		return err
	}
	if !c.Height.Known {
		return newErr(ErrHeightMismatch, "switch with unknown stack height")
	}
	h0 := c.Height.N - 1 // height with the target not yet on the stack

	type arm struct {
		lbl stackir.Label
	}
	var arms []arm
	var defaultLbl stackir.Label
	haveDefault := false
	exitLbl := c.label()

	for _, st := range body.Stmts {
		switch cs := st.(type) {
		case *ast.CaseStmt:
			v, ok := constfold.Eval(cs.Value)
			if !ok {
				return newErr(ErrConstant, "case label %s", cs.Value)
			}
			lbl := c.label()
			arms = append(arms, arm{lbl: lbl})
			c.emit(stackir.Inst{Op: stackir.Copy})
			c.emit(stackir.Inst{Op: stackir.Push, W: stackir.Word(v)})
			c.emit(stackir.Inst{Op: stackir.Eq})
			c.emit(stackir.Inst{Op: stackir.Branch, W: lbl})
			c.Height = KnownHeight(h0 + 1)
		case *ast.DefaultStmt:
			if !haveDefault {
				defaultLbl = c.label()
				haveDefault = true
			}
		}
	}

	if haveDefault {
		c.emit(stackir.Inst{Op: stackir.Push, W: defaultLbl})
		c.emit(stackir.Inst{Op: stackir.Goto})
	} else {
		// No default: nothing matched, so drop the target copy here —
		// every other path into exitLbl does the same in its case body.
		c.emit(stackir.Inst{Op: stackir.Dealloc, N: 1})
		c.emit(stackir.Inst{Op: stackir.Push, W: exitLbl})
		c.emit(stackir.Inst{Op: stackir.Goto})
	}

	c.breakTarget = append(c.breakTarget, exitLbl)
	armIdx := 0
	for _, st := range body.Stmts {
		switch cs := st.(type) {
		case *ast.CaseStmt:
			// Fallthrough from the previous arm skips this arm's Dealloc.
			bodyLbl := c.label()
			c.emit(stackir.Inst{Op: stackir.Push, W: bodyLbl})
			c.emit(stackir.Inst{Op: stackir.Goto})
			c.emit(stackir.Inst{Op: stackir.LabelOp, W: arms[armIdx].lbl})
			armIdx++
			c.Height = KnownHeight(h0 + 1)
			c.emit(stackir.Inst{Op: stackir.Dealloc, N: 1})
			c.emit(stackir.Inst{Op: stackir.LabelOp, W: bodyLbl})
			if err := c.compileStmt(cs.Stmt); err != nil {
				c.breakTarget = c.breakTarget[:len(c.breakTarget)-1]
				return err
			}
		case *ast.DefaultStmt:
			bodyLbl := c.label()
			c.emit(stackir.Inst{Op: stackir.Push, W: bodyLbl})
			c.emit(stackir.Inst{Op: stackir.Goto})
			c.emit(stackir.Inst{Op: stackir.LabelOp, W: defaultLbl})
			c.Height = KnownHeight(h0 + 1)
			c.emit(stackir.Inst{Op: stackir.Dealloc, N: 1})
			c.emit(stackir.Inst{Op: stackir.LabelOp, W: bodyLbl})
			if err := c.compileStmt(cs.Stmt); err != nil {
				c.breakTarget = c.breakTarget[:len(c.breakTarget)-1]
				return err
			}
		default:
			if err := c.compileStmt(st); err != nil {
				c.breakTarget = c.breakTarget[:len(c.breakTarget)-1]
				return err
			}
		}
	}
	c.breakTarget = c.breakTarget[:len(c.breakTarget)-1]

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: exitLbl})
	c.Height = KnownHeight(h0)
	return nil
}
