package stackir

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// runProg executes prog on the reference interpreter and returns its
// printed output.
func runProg(t *testing.T, prog []Inst) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, Run(prog, &out))
	return out.String()
}

// binaryOpProg pushes a then b then applies op, printing the result.
func binaryOpProg(a, b Word, op Op) []Inst {
	return []Inst{
		{Op: Push, W: a},
		{Op: Push, W: b},
		{Op: op},
		{Op: PutChar},
	}
}

func TestLowerArithmeticMatchesInterpreter(t *testing.T) {
	cases := []struct {
		name string
		a, b Word
		op   Op
	}{
		{"mul", 7, 6, Mul},
		{"mul-wrap", 200, 3, Mul},
		{"div", 17, 5, Div},
		{"mod", 17, 5, Mod},
		{"div-by-bigger", 3, 9, Div},
		{"lshift", 3, 4, LShift},
		{"lshift-wrap", 3, 7, LShift},
		{"rshift", 200, 3, RShift},
		{"and", 0b10110, 0b11010, And},
		{"or", 0b10110, 0b11010, Or},
		{"xor", 0b10110, 0b11010, Xor},
		{"neq-true", 3, 4, Neq},
		{"neq-false", 4, 4, Neq},
		{"greq-true", 9, 4, GrEq},
		{"greq-eq", 4, 4, GrEq},
		{"greq-false", 2, 4, GrEq},
		{"land-tt", 1, 1, LAnd},
		{"land-tf", 1, 0, LAnd},
		{"lor-ff", 0, 0, LOr},
		{"lor-tf", 1, 0, LOr},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			want := runProg(t, binaryOpProg(c.a, c.b, c.op))

			lowered := Lower(binaryOpProg(c.a, c.b, c.op))
			got := runProg(t, lowered)

			require.Equal(t, want, got, "lowering %s(%d,%d) diverged from the reference interpreter", c.op, c.a, c.b)

			for _, inst := range lowered {
				require.NotContains(t, []Op{Mul, Div, Mod, LShift, RShift, And, Or, Xor, Neq, GrEq, LAnd, LOr}, inst.Op,
					"Lower left a non-kernel ALU op in the output: %s", inst.Op)
			}
		})
	}
}

func TestLowerPreservesLabelsAndControlFlow(t *testing.T) {
	// if (3 >= 2) goto L1 else fallthrough; L1: push 'y'; putchar
	prog := []Inst{
		{Op: Push, W: 3},
		{Op: Push, W: 2},
		{Op: GrEq},
		{Op: Branch, W: 1},
		{Op: Push, W: 'n'},
		{Op: PutChar},
		{Op: Push, W: 0},
		{Op: Goto},
		{Op: LabelOp, W: 1},
		{Op: Push, W: 'y'},
		{Op: PutChar},
		{Op: LabelOp, W: 0},
	}
	lowered := Lower(prog)
	got := runProg(t, lowered)
	require.Equal(t, "y", got)
}

func TestMaxLabelSeedsFreshLabelsAboveExisting(t *testing.T) {
	prog := []Inst{
		{Op: LabelOp, W: 5},
		{Op: Push, W: 2},
		{Op: Push, W: 3},
		{Op: Mul},
		{Op: PutChar},
	}
	ls := lowerState{nextLabel: maxLabel(prog) + 1}
	require.Greater(t, ls.label(), Label(5))
}
