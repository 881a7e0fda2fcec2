// Package stackir is the intermediate stack machine the lowering
// context (pkg/ctxt) emits into and pkg/tape ultimately generates tape
// code from: one emission pass producing a flat instruction stream,
// plus a later expansion pass that rewrites convenience instructions
// down to the smaller set pkg/tape actually knows how to emit gadgets
// for.
package stackir

import "fmt"

// Word is the value domain of the stack machine: a single tape cell,
// wrapping modulo 256 under arithmetic.
type Word = uint8

// Label names a dispatch block. Label 0 is reserved for the outermost
// terminator; every other label guards one block of a function body.
type Label = Word

// Op identifies the shape of an Inst. Kernel ops have a direct tape
// gadget (pkg/tape/gadgets.go); macro ops exist only before Expand
// rewrites them away.
type Op int

const (
	// Misc / debug — zero height effect, no tape output except Comment
	// and Debug are stripped entirely before codegen.
	Nop Op = iota
	Comment
	Debug

	// Control flow
	LabelOp // avoid shadowing the Label type name
	Goto
	Branch

	// Stack shape
	Push
	Copy
	Swap
	Alloc
	Dealloc

	// Memory
	LclRead
	LclStr
	StkRead
	StkStr

	// Arithmetic / bitwise / relational (binary, pop 2 push 1)
	Add
	Sub
	Mul
	Div
	Mod
	LShift
	RShift
	And
	Or
	Xor
	Neq
	GrEq
	LAnd
	LOr

	// Unary (pop 1 push 1)
	Negate
	Not
	LNot

	// IO
	PutChar

	// --- Macro ops, expanded away by Expand before codegen ---
	Move
	Exit
	Eq
	LtEq
	Lt
	Gr
)

var opNames = map[Op]string{
	Nop: "nop", Comment: "comment", Debug: "debug",
	LabelOp: "label", Goto: "goto", Branch: "branch",
	Push: "push", Copy: "copy", Swap: "swap", Alloc: "alloc", Dealloc: "dealloc",
	LclRead: "lclread", LclStr: "lclstr", StkRead: "stkread", StkStr: "stkstr",
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", Mod: "mod",
	LShift: "shl", RShift: "shr", And: "and", Or: "or", Xor: "xor",
	Neq: "neq", GrEq: "greq", LAnd: "land", LOr: "lor",
	Negate: "neg", Not: "not", LNot: "lnot", PutChar: "putchar",
	Move: "move", Exit: "exit", Eq: "eq", LtEq: "lteq", Lt: "lt", Gr: "gr",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Inst is one stack-machine instruction. Not every field is meaningful
// for every Op — see Signature and the doc comment on each Op group.
type Inst struct {
	Op   Op
	N    int    // Alloc/Dealloc/LclRead/LclStr count or offset; Move's dead-slot count
	W    Word   // Push's literal, Label's own label, Branch's target label (Goto pops its target)
	Text string // Comment/Debug payload
}

func (i Inst) String() string {
	switch i.Op {
	case Comment, Debug:
		return fmt.Sprintf("%s %q", i.Op, i.Text)
	case Push:
		return fmt.Sprintf("push %d", i.W)
	case LabelOp, Branch:
		return fmt.Sprintf("%s %d", i.Op, i.W)
	case Alloc, Dealloc, LclRead, LclStr, Move:
		return fmt.Sprintf("%s %d", i.Op, i.N)
	default:
		return i.Op.String()
	}
}

// Signature reports how many words an instruction pops (args) and
// pushes (output), for threading the symbolic stack height through
// emission. ok is false for
// instructions whose effect cannot be known in isolation (there are
// none in the kernel; this mirrors the Rust original's
// Option-returning signature so the shape survives the port).
func (i Inst) Signature() (args, output int, ok bool) {
	switch i.Op {
	case Nop, Comment, Debug, LabelOp:
		return 0, 0, true
	case Goto:
		return 1, 0, true
	case Push:
		return 0, 1, true
	case Copy:
		return 1, 2, true
	case Swap:
		return 2, 2, true
	case Alloc:
		return 0, i.N, true
	case Dealloc:
		return i.N, 0, true
	case LclRead:
		return 0, 1, true
	case LclStr:
		return 1, 0, true
	case StkRead:
		return 1, 1, true
	case StkStr:
		return 2, 0, true
	case Add, Sub, Mul, Div, Mod, LShift, RShift, And, Or, Xor, Neq, GrEq, LAnd, LOr:
		return 2, 1, true
	case Negate, Not, LNot:
		return 1, 1, true
	case Branch:
		return 1, 0, true
	case PutChar:
		return 1, 0, true
	case Move:
		return i.N + 1, 1, true
	case Exit:
		return 0, 0, true
	case Eq, LtEq, Lt, Gr:
		return 2, 1, true
	default:
		return 0, 0, false
	}
}
