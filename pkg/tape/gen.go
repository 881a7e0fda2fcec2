package tape

import (
	"fmt"

	"tapecc/pkg/stackir"
)

// Generate turns a compiled stackir program into tape code. It first
// runs stackir.Expand and stackir.Lower so every instruction it sees
// is one of the handful of kernel ops gadgets.go knows how to
// translate directly, then assembles those into segments split at
// label boundaries and wraps them in a dispatch sweep.
//
// The eight operators have no call/return and no indirect jump, so a
// computed Goto can only be realized by re-scanning every reachable
// label each time control needs to move: the sweep below tests the
// pending target against each segment's label in turn and runs the
// first (only) match, a trampoline generalized here to also cover
// Branch's fall-through case.
func Generate(prog []stackir.Inst) (Program, error) {
	kernel := stackir.Lower(stackir.Expand(prog))

	segs, err := splitSegments(kernel)
	if err != nil {
		return nil, err
	}

	var out Program
	out = append(out, segs[0].body...)

	if len(segs) > 1 {
		out = append(out, LBrac) // while pending target != 0
		for _, seg := range segs[1:] {
			out = append(out, dispatchOne(seg)...)
		}
		out = append(out, RBrac)
	}
	return out, nil
}

type segment struct {
	label stackir.Word // 0 for the entry segment, which has no label
	body  Program
}

// splitSegments walks the kernel-only instruction stream and breaks
// it at every LabelOp, translating each straight-line run with
// genStraightLine. The first segment (before the first LabelOp, if
// any) is the program's entry point and is never label-tested. A run
// with no Goto of its own falls off its end into the next label, so
// flush gives it an explicit jump there (to 0, which halts, after the
// last run).
func splitSegments(prog []stackir.Inst) ([]segment, error) {
	var segs []segment
	start := 0
	label := stackir.Word(0)
	flushed := false

	flush := func(end int, next stackir.Word) error {
		insts := prog[start:end:end]
		jumps := false
		for _, inst := range insts {
			if inst.Op == stackir.Goto {
				jumps = true
			}
		}
		if !jumps {
			insts = append(insts, stackir.Inst{Op: stackir.Push, W: next}, stackir.Inst{Op: stackir.Goto})
		}
		body, err := genStraightLine(insts)
		if err != nil {
			return err
		}
		segs = append(segs, segment{label: label, body: body})
		return nil
	}

	for i, inst := range prog {
		if inst.Op == stackir.LabelOp {
			if err := flush(i, inst.W); err != nil {
				return nil, err
			}
			start = i + 1
			label = inst.W
			flushed = true
		}
	}
	if err := flush(len(prog), 0); err != nil {
		return nil, err
	}
	if !flushed && len(segs) == 1 {
		// No labels at all: a single straight-line program (the entry
		// segment only). Generate still returns it unwrapped.
	}
	return segs, nil
}

// dispatchOne emits the "is the pending target == seg.label?" test
// and gates seg's body behind it. copyTop preserves the target, so a
// non-match leaves it intact for the next segment's test; a match
// discards the copy-turned-flag and the target itself (restoring the
// height seg's own code was compiled against), runs the body, then
// parks on an explicit zeroed checkpoint so the closing bracket always
// falls through regardless of what the body left on top.
func dispatchOne(seg segment) Program {
	var out Program
	out = append(out, copyTop()...)
	out = append(out, Repeat(Dec, int(seg.label))...)
	out = append(out, lnot()...)
	out = append(out, LBrac)
	out = append(out, discard()...) // drop the flag
	out = append(out, discard()...) // drop the target
	out = append(out, seg.body...)
	out = append(out, push(0)...) // checkpoint: always falls through
	out = append(out, RBrac)
	out = append(out, discard()...) // drop the checkpoint, or the flag if unmatched
	return out
}

// genStraightLine translates one label-bounded run of kernel
// instructions. A Branch splits the run in two: its target path
// materializes the branch label as the new pending value and
// abandons the rest of the segment, its fall-through path runs the
// remainder of insts unchanged — the standard BF if/else idiom, where
// both arms must leave the head at the same relative offset for the
// enclosing bracket to close correctly.
func genStraightLine(insts []stackir.Inst) (Program, error) {
	var out Program
	for i, inst := range insts {
		switch inst.Op {
		case stackir.Nop, stackir.Comment, stackir.Debug, stackir.LabelOp:
			// no tape effect

		case stackir.Push:
			out = append(out, push(inst.W)...)
		case stackir.Copy:
			out = append(out, copyTop()...)
		case stackir.Swap:
			out = append(out, swap()...)
		case stackir.Alloc:
			out = append(out, alloc(inst.N)...)
		case stackir.Dealloc:
			for i := 0; i < inst.N; i++ {
				out = append(out, dealloc(1)...)
			}
		case stackir.LclRead:
			out = append(out, lclRead(inst.N)...)
		case stackir.LclStr:
			out = append(out, lclStr(inst.N)...)
		case stackir.Add:
			out = append(out, add()...)
		case stackir.Sub:
			out = append(out, sub()...)
		case stackir.Negate:
			out = append(out, negate()...)
		case stackir.Not:
			out = append(out, not()...)
		case stackir.LNot:
			out = append(out, lnot()...)
		case stackir.PutChar:
			out = append(out, putChar()...)

		case stackir.Goto:
			// The label value is already on top (pushed by whatever
			// preceded this Goto); it simply becomes the sweep's next
			// pending target. No tape instructions needed, and
			// anything textually after a Goto in the same segment is
			// unreachable, so stop here.
			return out, nil

		case stackir.Branch:
			rest, err := genStraightLine(insts[i+1:])
			if err != nil {
				return nil, err
			}
			out = append(out, branchGadget(inst.W, rest)...)
			return out, nil

		default:
			return nil, fmt.Errorf("tape: %s has no tape gadget (expected Expand+Lower to remove it)", inst.Op)
		}
	}
	return out, nil
}

// branchGadget realizes "if cond: pending = target else: run rest",
// cond already on top. It first turns cond's own cell into either
// target (taken) or 0 (untaken, since not-taken means cond literally
// was 0), gated by a disposable copy so the gate and the payload are
// different cells — the classic reason a plain "[...]<" can't do this
// job: the payload has to end up nonzero while the bracket's own test
// cell has to end up zero. A second gate then decides, from that
// settled value, whether to hand control to the sweep (taken, leave
// it as the new pending target) or run rest inline (untaken).
func branchGadget(target stackir.Word, rest Program) Program {
	var out Program
	out = append(out, copyTop()...) // [cond, flag]; cond preserved
	out = append(out, LBrac)        // flag != 0 (i.e. cond was truthy)
	out = append(out, clearCurrent()...)
	out = append(out, Left)
	out = append(out, clearCurrent()...)
	out = append(out, Repeat(Inc, int(target))...) // cond's cell := target
	out = append(out, Right)                       // back onto flag (0)
	out = append(out, RBrac)
	out = append(out, discard()...) // drop flag; land on cond's cell (target or 0)

	out = append(out, copyTop()...) // [pc, pcCopy]
	out = append(out, lnot()...)    // [pc, isZero]  (isZero <=> untaken)
	out = append(out, LBrac)
	out = append(out, clearCurrent()...)
	out = append(out, Left)
	out = append(out, clearCurrent()...) // pc was 0 (untaken); drop it
	out = append(out, Left)
	out = append(out, rest...)
	out = append(out, push(0)...) // checkpoint, guaranteed zero
	out = append(out, RBrac)
	out = append(out, discard()...) // drop the checkpoint, or isZero if taken
	return out
}
