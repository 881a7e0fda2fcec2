// Package ctxt lowers pkg/ast trees to the pkg/stackir instruction
// stream: the AST-to-stack-machine half of the two-stage pipeline. It
// threads a symbolic stack height through every emitted instruction,
// generalized to a frame-base-as-slot-0 calling convention:
// every frame's slot 0 holds the absolute tape index of its own base,
// computed by the caller at call time, so neither a dedicated
// base-pointer register nor position-independent code is required.
package ctxt

import (
	"tapecc/pkg/ast"
	"tapecc/pkg/ctypes"
	"tapecc/pkg/stackir"
)

// Height is the symbolic stack height as a tagged optional:
// known everywhere except the instant after an unconditional jump
// whose target's height has not yet been fixed by a join.
type Height struct {
	Known bool
	N     int
}

func KnownHeight(n int) Height { return Height{Known: true, N: n} }

type localVar struct {
	FramePos int // 0 = frame base (self-reference), 1.. = params then locals
	Type     ctypes.Type
}

type funcInfo struct {
	Label  stackir.Label
	Def    ast.FuncDef
	Frame  int // total frame slots: 1 (base) + len(params) + locals
	Locals map[string]localVar
	Labels map[string]stackir.Label // goto targets declared anywhere in the body
}

// Context is the lowering state for one Program. A fresh Context is
// used per compilation; nothing here is safe for concurrent use.
type Context struct {
	Stream []stackir.Inst
	Height Height

	labelCount stackir.Label

	funcs      map[string]*funcInfo
	curFunc    *funcInfo
	globals    map[string]ctypes.Type
	globalAddr map[string]int
	nextGlobal int

	retEpilogue  stackir.Label
	breakTarget  []stackir.Label
	contTarget   []stackir.Label
}

// New returns an empty Context.
func New() *Context {
	return &Context{
		funcs:      make(map[string]*funcInfo),
		globals:    make(map[string]ctypes.Type),
		globalAddr: make(map[string]int),
	}
}

func (c *Context) label() stackir.Label {
	c.labelCount++
	return c.labelCount
}

// emit appends inst to the stream and threads Height through its
// Signature, matching the original CompileContext.emit.
func (c *Context) emit(inst stackir.Inst) {
	if c.Height.Known {
		if args, output, ok := inst.Signature(); ok {
			c.Height.N = c.Height.N - args + output
		}
	}
	c.Stream = append(c.Stream, inst)
}

func (c *Context) emitAll(insts ...stackir.Inst) {
	for _, i := range insts {
		c.emit(i)
	}
}

// readLocal emits the height-relative read of the slot at frame
// position p within the currently active frame. Offsets are always
// computed against the live c.Height, so emission order around other
// pushes never needs a stale snapshot.
func (c *Context) readLocal(p int) error {
	if !c.Height.Known {
		return newErr(ErrHeightMismatch, "local read with unknown stack height")
	}
	c.emit(stackir.Inst{Op: stackir.LclRead, N: c.Height.N - 1 - p})
	return nil
}

func (c *Context) writeLocal(p int) error {
	if !c.Height.Known {
		return newErr(ErrHeightMismatch, "local write with unknown stack height")
	}
	c.emit(stackir.Inst{Op: stackir.LclStr, N: c.Height.N - 1 - p})
	return nil
}

// declareGlobal assigns v a fixed absolute tape address. Globals sit
// at the bottom of the tape, below every call
// frame that will ever be pushed above them, so their address never
// depends on recursion depth — unlike a local's frame-relative offset.
func (c *Context) declareGlobal(name string, ty ctypes.Type) {
	c.globals[name] = ty
	c.globalAddr[name] = c.nextGlobal
	c.nextGlobal += ty.Size()
}

func (c *Context) declareFunc(name string, def ast.FuncDef) {
	c.funcs[name] = &funcInfo{Label: c.label(), Def: def}
}

// Program lowers an entire program: globals first (allocated and
// initialized in source order), then every function body, then an
// entry sequence that calls main and halts.
func (c *Context) Program(prog *ast.Program) error {
	for name, def := range prog.Funcs {
		c.declareFunc(name, def)
	}
	for name, v := range prog.Globals {
		c.declareGlobal(name, v.Type)
	}

	if err := c.compileEntry(prog); err != nil {
		return err
	}
	for _, name := range sortedKeys(prog.Funcs) {
		if err := c.compileFunc(name, prog.Funcs[name]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]ast.FuncDef) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic output without importing sort's full surface for
	// one call site; the function count is always small.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// compileEntry allocates the global segment at tape address 0, runs
// every global initializer in declaration order, then calls main with
// frame base 0 and terminates (Label(0) is the dispatch loop's halt).
func (c *Context) compileEntry(prog *ast.Program) error {
	c.Height = KnownHeight(0)
	c.emit(stackir.Inst{Op: stackir.Comment, Text: "entry"})
	c.emit(stackir.Inst{Op: stackir.Alloc, N: c.nextGlobal})

	for _, name := range prog.Order {
		v := prog.Globals[name]
		if v.Init == nil {
			continue
		}
		if err := c.compileExpr(v.Init); err != nil {
			return err
		}
		c.emit(stackir.Inst{Op: stackir.Push, W: stackir.Word(c.globalAddr[name])})
		c.emit(stackir.Inst{Op: stackir.StkStr})
	}

	mainFn, ok := c.funcs["main"]
	if !ok {
		return newErr(ErrUndefined, "program has no main function")
	}
	if err := c.compileCallByLabel(mainFn.Label, c.ownBaseRoot, nil, mainFn.Def.Return.Kind != ctypes.Void); err != nil {
		return err
	}
	// Discard main's return value, if any, and halt.
	if mainFn.Def.Return.Kind != ctypes.Void {
		c.emit(stackir.Inst{Op: stackir.Dealloc, N: 1})
	}
	c.emit(stackir.Inst{Op: stackir.Exit})
	return nil
}
