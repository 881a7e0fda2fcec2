package tape

import "tapecc/pkg/stackir"

// The gadgets below keep the head parked on the current stack top
// before and after every call. Swap, Copy, LclRead and LclStr need a
// genuine non-destructive temp-cell relay (the source must survive),
// built from the standard BF "preserve while copying" idiom rather
// than a single destructive move loop.

// push appends w copies of Inc after moving onto a fresh (zeroed)
// cell to the right — PushB in the original.
func push(w stackir.Word) Program {
	var out Program
	out = append(out, Right)
	out = append(out, Repeat(Inc, int(w))...)
	return out
}

// discard drops the current top cell and steps back onto the one
// below it — DiscardB in the original ("[-]<").
func discard() Program {
	return Program{LBrac, Dec, RBrac, Left}
}

// clearCurrent zeroes the current cell without moving the head.
func clearCurrent() Program {
	return Program{LBrac, Dec, RBrac}
}

// swap exchanges the top two cells (a below, b on top) using a
// scratch cell one past the top as a relay: move b into the scratch,
// move a into b's old slot, move the scratch into a's old slot.
func swap() Program {
	var out Program
	out = append(out, LBrac, Dec, Right, Inc, Left, RBrac) // b -> scratch; b now 0
	out = append(out, Left)                                // to a
	out = append(out, LBrac, Dec, Right, Inc, Left, RBrac) // a -> b's slot; a now 0
	out = append(out, Right, Right)                        // to scratch
	out = append(out, LBrac, Dec, Left, Left, Inc, Right, Right, RBrac) // scratch -> a's slot
	out = append(out, Left) // back onto the (new) top
	return out
}

// copyTop duplicates the current top cell, preserving it, via two
// fresh cells (dup and a relay): drain the source into both
// simultaneously, then drain the relay back into the source to
// restore it, leaving the dup as the new top — CopyB generalized to
// not destroy its input.
func copyTop() Program {
	var out Program
	out = append(out, Right, Right) // allocate dup and relay, now at relay
	out = append(out, Left, Left)   // back to source
	out = append(out, LBrac)
	out = append(out, Right, Inc) // dup++
	out = append(out, Right, Inc) // relay++
	out = append(out, Left, Left, Dec)
	out = append(out, RBrac)
	// source=0, dup=orig, relay=orig; head at source
	out = append(out, Right, Right) // to relay
	out = append(out, LBrac)
	out = append(out, Left, Left, Inc) // source++
	out = append(out, Right, Right, Dec)
	out = append(out, RBrac)
	// relay=0, source restored; head at relay
	out = append(out, Left) // onto dup, the new top
	return out
}

// add pops the top cell into the one below it — AddB ("[-<+>]<").
func add() Program {
	return Program{LBrac, Dec, Left, Inc, Right, RBrac, Left}
}

// sub is add's mirror: subtract the top cell from the one below it.
func sub() Program {
	return Program{LBrac, Dec, Left, Dec, Right, RBrac, Left}
}

// alloc shifts onto n fresh cells, all guaranteed zero because
// dealloc below always clears a slot before abandoning it.
func alloc(n int) Program { return Repeat(Right, n) }

// dealloc clears then steps back over n cells. Unlike the original's
// bare head-shift, this zeroes every freed slot: frame positions are
// reused across recursive calls and loop iterations, and push/copyTop
// both assume a freshly allocated cell reads as zero, so a dealloc
// that didn't clear would corrupt the next frame to land there.
func dealloc(n int) Program {
	var out Program
	for i := 0; i < n; i++ {
		out = append(out, LBrac, Dec, RBrac, Left)
	}
	return out
}

// lclRead non-destructively duplicates the cell n slots below the
// current top onto a fresh cell above it, restoring the source the
// same way copyTop does, just over a wider span.
func lclRead(n int) Program {
	var out Program
	out = append(out, Repeat(Left, n)...) // to X, the source
	out = append(out, LBrac)
	out = append(out, Repeat(Right, n+1)...)
	out = append(out, Inc) // dup++ (dup sits 1 past the old top)
	out = append(out, Right)
	out = append(out, Inc) // relay++ (2 past the old top)
	out = append(out, Repeat(Left, n+2)...)
	out = append(out, Dec) // X--
	out = append(out, RBrac)
	// X=0, dup=origX, relay=origX; head at X
	out = append(out, Repeat(Right, n+2)...) // to relay
	out = append(out, LBrac)
	out = append(out, Repeat(Left, n+2)...)
	out = append(out, Inc) // X++ (restore)
	out = append(out, Repeat(Right, n+2)...)
	out = append(out, Dec) // relay--
	out = append(out, RBrac)
	// relay=0, X restored; head at relay
	out = append(out, Left) // onto dup, the new top
	return out
}

// lclStr overwrites the cell n slots below the value on top with that
// value, consuming it, then settles the head on the slot that is now
// the top (one below where the value used to sit).
func lclStr(n int) Program {
	var out Program
	out = append(out, Repeat(Left, n)...) // to X, the target local
	out = append(out, LBrac, Dec, RBrac)  // erase X's old value
	out = append(out, Repeat(Right, n)...) // back to the value
	out = append(out, LBrac)
	out = append(out, Dec)
	out = append(out, Repeat(Left, n)...)
	out = append(out, Inc) // X++
	out = append(out, Repeat(Right, n)...)
	out = append(out, RBrac)
	// value's old cell is now 0, X holds the stored value
	out = append(out, Left) // onto the new top (one below the old value slot)
	return out
}

// negate computes 0-a via sub over a fresh zero pushed above a.
func negate() Program {
	var out Program
	out = append(out, push(0)...)
	out = append(out, swap()...)
	out = append(out, sub()...)
	return out
}

// not computes bitwise complement as 255-a, the same shape as negate
// with the additive identity replaced by the all-ones byte.
func not() Program {
	var out Program
	out = append(out, push(255)...)
	out = append(out, swap()...)
	out = append(out, sub()...)
	return out
}

// lnot is the standard zero-test idiom: allocate a 1 to the right,
// then if the operand is nonzero, walk it down to 0 while clearing
// the 1 back to 0; whatever the 1 slot holds at the end is the
// answer, then it's swapped down over the spent operand.
func lnot() Program {
	var out Program
	out = append(out, Right, Inc, Left) // result = 1, back on the operand
	out = append(out, LBrac)
	out = append(out, Right, Dec, Left)  // operand nonzero: result = 0
	out = append(out, LBrac, Dec, RBrac) // drain the rest of operand
	out = append(out, RBrac)
	out = append(out, Right) // head now on result
	out = append(out, swap()...)
	out = append(out, discard()...)
	return out
}

// putChar prints the current top cell, then pops it the same way every
// other consuming gadget does — PutChar's Signature is (1 arg, 0
// output), so the head must leave on the new top, not stay on the
// printed cell.
func putChar() Program {
	var out Program
	out = append(out, Out)
	out = append(out, discard()...)
	return out
}
