package tape

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// runGadgets assembles the given gadget programs in sequence and runs
// the result on the interpreter, returning everything printed.
func runGadgets(t *testing.T, parts ...Program) string {
	t.Helper()
	var prog Program
	for _, p := range parts {
		prog = append(prog, p...)
	}
	var out bytes.Buffer
	require.NoError(t, Run(prog, strings.NewReader(""), &out))
	return out.String()
}

// byteStr builds a string from raw byte values, unlike string(rune(n))
// which UTF-8-encodes anything >= 128 instead of producing one byte.
func byteStr(bs ...byte) string {
	return string(bs)
}

func TestPushAndPutChar(t *testing.T) {
	got := runGadgets(t, push('A'), putChar())
	require.Equal(t, "A", got)
}

func TestAdd(t *testing.T) {
	got := runGadgets(t, push(5), push(7), add(), putChar())
	require.Equal(t, byteStr(12), got)
}

func TestSub(t *testing.T) {
	got := runGadgets(t, push(10), push(3), sub(), putChar())
	require.Equal(t, byteStr(7), got)
}

func TestSwap(t *testing.T) {
	// push 1, push 2 -> [1,2]; swap -> [2,1]; putChar prints top (1),
	// then putChar again prints what's left (2).
	got := runGadgets(t, push(1), push(2), swap(), putChar(), putChar())
	require.Equal(t, string([]byte{1, 2}), got)
}

func TestCopyTopPreservesSource(t *testing.T) {
	// push 'x'; copyTop -> [x, x]; print both.
	got := runGadgets(t, push('x'), copyTop(), putChar(), putChar())
	require.Equal(t, "xx", got)
}

func TestCopyTopLeavesRestOfStackUntouched(t *testing.T) {
	// push 'a'; push 'b'; copyTop -> [a, b, b]; print all three.
	got := runGadgets(t, push('a'), push('b'), copyTop(), putChar(), putChar(), putChar())
	require.Equal(t, "bba", got)
}

func TestDiscard(t *testing.T) {
	// push 1; push 2; discard drops the 2; print leaves 1.
	got := runGadgets(t, push(1), push(2), discard(), putChar())
	require.Equal(t, byteStr(1), got)
}

func TestLclReadNonDestructive(t *testing.T) {
	// Frame: [base=9]. lclRead(0) duplicates slot 0 onto a fresh top.
	got := runGadgets(t, push(9), lclRead(0), putChar(), putChar())
	require.Equal(t, string([]byte{9, 9}), got)
}

func TestLclReadDeeperOffset(t *testing.T) {
	// Frame: [10, 20, 30] (30 on top). lclRead(2) reads the slot 2 below
	// top, i.e. the 10.
	got := runGadgets(t, push(10), push(20), push(30), lclRead(2), putChar())
	require.Equal(t, byteStr(10), got)
}

func TestLclStrOverwritesAndConsumes(t *testing.T) {
	// Frame: [10, 20] (20 on top). lclStr(1) stores 20 into slot 1 below
	// (the 10), consuming the 20, then prints the whole frame back out:
	// the surviving top (originally the slot-1 local) should now read 20.
	got := runGadgets(t, push(10), push(20), lclStr(1), putChar())
	require.Equal(t, byteStr(20), got)
}

func TestDeallocClearsCells(t *testing.T) {
	// push a nonzero value, dealloc it, alloc a fresh cell in its place
	// (alloc never clears — it relies on dealloc having cleared), and
	// confirm the fresh cell reads zero.
	got := runGadgets(t, push(42), dealloc(1), alloc(1), putChar())
	require.Equal(t, byteStr(0), got)
}

func TestNegate(t *testing.T) {
	got := runGadgets(t, push(5), negate(), putChar())
	require.Equal(t, byteStr(256-5), got)
}

func TestNot(t *testing.T) {
	got := runGadgets(t, push(0), not(), putChar())
	require.Equal(t, byteStr(255), got)
}

func TestLNot(t *testing.T) {
	got := runGadgets(t, push(0), lnot(), putChar())
	require.Equal(t, byteStr(1), got)

	got = runGadgets(t, push(7), lnot(), putChar())
	require.Equal(t, byteStr(0), got)
}
