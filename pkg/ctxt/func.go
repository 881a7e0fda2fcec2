package ctxt

import (
	"tapecc/pkg/ast"
	"tapecc/pkg/ctypes"
	"tapecc/pkg/stackir"
)

// collectLocals walks s's statement tree gathering every LocalDecl in
// source order, matching the original compiler's body.vars() pre-scan:
// every local variable in a function gets one flat frame slot, assigned
// before any statement is lowered, regardless of block nesting (spec
// §4.3 "Declarations are block scoped" is honored at name-resolution
// time only — see Context.lookupVar).
func collectLocals(s ast.Stmt) []ast.LocalDecl {
	var out []ast.LocalDecl
	var walk func(ast.Stmt)
	walk = func(s ast.Stmt) {
		switch n := s.(type) {
		case nil:
			return
		case *ast.DeclStmt:
			out = append(out, n.Decls...)
		case *ast.BlockStmt:
			for _, inner := range n.Stmts {
				walk(inner)
			}
		case *ast.IfStmt:
			walk(n.Body)
			walk(n.ElseBody)
		case *ast.WhileStmt:
			walk(n.Body)
		case *ast.DoWhileStmt:
			walk(n.Body)
		case *ast.ForStmt:
			walk(n.Init)
			walk(n.Body)
		case *ast.SwitchStmt:
			walk(n.Body)
		case *ast.LabeledStmt:
			walk(n.Stmt)
		case *ast.CaseStmt:
			walk(n.Stmt)
		case *ast.DefaultStmt:
			walk(n.Stmt)
		}
	}
	walk(s)
	return out
}

// collectLabelNames walks s's statement tree gathering every named
// goto target, mirroring collectLocals' pre-scan so a goto may appear
// before the label it targets in source order.
func collectLabelNames(s ast.Stmt) []string {
	var out []string
	var walk func(ast.Stmt)
	walk = func(s ast.Stmt) {
		switch n := s.(type) {
		case nil:
			return
		case *ast.LabeledStmt:
			out = append(out, n.Label)
			walk(n.Stmt)
		case *ast.BlockStmt:
			for _, inner := range n.Stmts {
				walk(inner)
			}
		case *ast.IfStmt:
			walk(n.Body)
			walk(n.ElseBody)
		case *ast.WhileStmt:
			walk(n.Body)
		case *ast.DoWhileStmt:
			walk(n.Body)
		case *ast.ForStmt:
			walk(n.Body)
		case *ast.SwitchStmt:
			walk(n.Body)
		case *ast.CaseStmt:
			walk(n.Stmt)
		case *ast.DefaultStmt:
			walk(n.Stmt)
		}
	}
	walk(s)
	return out
}

// compileFunc lowers one function definition: frame layout, prologue,
// body, and the shared return epilogue.
func (c *Context) compileFunc(name string, def ast.FuncDef) error {
	fn := c.funcs[name]
	fn.Def = def
	fn.Locals = make(map[string]localVar)
	fn.Labels = make(map[string]stackir.Label)
	for _, lbl := range collectLabelNames(def.Body) {
		fn.Labels[lbl] = c.label()
	}

	pos := 1 // slot 0 is the frame's own base
	for _, p := range def.Params {
		fn.Locals[p.Name] = localVar{FramePos: pos, Type: p.Type}
		pos++
	}
	locals := collectLocals(def.Body)
	for _, l := range locals {
		if _, exists := fn.Locals[l.Name]; exists {
			continue
		}
		fn.Locals[l.Name] = localVar{FramePos: pos, Type: l.Type}
		pos++
	}
	fn.Frame = pos

	c.curFunc = fn
	c.retEpilogue = c.label()
	c.breakTarget = nil
	c.contTarget = nil

	c.emit(stackir.Inst{Op: stackir.Comment, Text: name})
	c.emit(stackir.Inst{Op: stackir.LabelOp, W: fn.Label})
	c.emit(stackir.Inst{Op: stackir.Alloc, N: fn.Frame - 1 - len(def.Params)})
	c.Height = KnownHeight(fn.Frame)

	if err := c.compileStmt(def.Body); err != nil {
		return err
	}

	// Fallthrough off the end of the body reaches the epilogue exactly
	// like an explicit `return;` would.
	c.emit(stackir.Inst{Op: stackir.Push, W: c.retEpilogue})
	c.emit(stackir.Inst{Op: stackir.Goto})

	c.emit(stackir.Inst{Op: stackir.LabelOp, W: c.retEpilogue})
	if def.Return.Kind == ctypes.Void {
		c.emit(stackir.Inst{Op: stackir.Dealloc, N: fn.Frame})
		c.emit(stackir.Inst{Op: stackir.Goto})
	} else {
		c.emit(stackir.Inst{Op: stackir.Move, N: fn.Frame})
		c.emit(stackir.Inst{Op: stackir.Swap})
		c.emit(stackir.Inst{Op: stackir.Goto})
	}
	c.Height = Height{}
	c.curFunc = nil
	return nil
}

// lookupVar resolves name to either a local (current function's frame)
// or a global.
func (c *Context) lookupVar(name string) (localVar, bool, ctypes.Type, bool) {
	if c.curFunc != nil {
		if lv, ok := c.curFunc.Locals[name]; ok {
			return lv, true, ctypes.Type{}, false
		}
	}
	if ty, ok := c.globals[name]; ok {
		return localVar{}, false, ty, true
	}
	return localVar{}, false, ctypes.Type{}, false
}

// compileCallByLabel emits a call to a statically known function label.
// pushArgs lowers and pushes each argument (nil for none). hasResult
// controls whether Height gains one slot after the call returns.
//
// Every frame but the outermost has a real slot 0 holding its own
// absolute base, readable with readLocal(0); the outermost scope (the
// global segment compileEntry sets up) has no such slot because
// nothing called it, so its base is simply the tape's absolute zero.
// ownBase lets both cases share this one call-codegen path.
func (c *Context) compileCallByLabel(target stackir.Label, ownBase func() error, pushArgs func() error, hasResult bool) error {
	if !c.Height.Known {
		return newErr(ErrHeightMismatch, "call with unknown stack height")
	}
	h := c.Height.N

	retLbl := c.label()
	c.emit(stackir.Inst{Op: stackir.Push, W: retLbl})
	if err := ownBase(); err != nil {
		return err
	}
	c.emit(stackir.Inst{Op: stackir.Push, W: stackir.Word(h + 1)})
	c.emit(stackir.Inst{Op: stackir.Add})

	if pushArgs != nil {
		if err := pushArgs(); err != nil {
			return err
		}
	}

	c.emit(stackir.Inst{Op: stackir.Push, W: target})
	c.emit(stackir.Inst{Op: stackir.Goto})
	c.emit(stackir.Inst{Op: stackir.LabelOp, W: retLbl})

	if hasResult {
		c.Height = KnownHeight(h + 1)
	} else {
		c.Height = KnownHeight(h)
	}
	return nil
}

// ownBaseLocal is the in-function ownBase callback: read the current
// frame's real slot 0.
func (c *Context) ownBaseLocal() error { return c.readLocal(0) }

// ownBaseRoot is the outermost-scope ownBase callback: the global
// segment's base is the tape's absolute zero, a compile-time constant.
func (c *Context) ownBaseRoot() error {
	c.emit(stackir.Inst{Op: stackir.Push, W: 0})
	return nil
}
