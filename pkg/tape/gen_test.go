package tape

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tapecc/pkg/stackir"
)

func runGenerated(t *testing.T, prog []stackir.Inst) string {
	t.Helper()
	out, err := Generate(prog)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Run(out, strings.NewReader(""), &buf))
	return buf.String()
}

func TestGenerateStraightLine(t *testing.T) {
	prog := []stackir.Inst{
		{Op: stackir.Push, W: 'A'},
		{Op: stackir.PutChar},
	}
	require.Equal(t, "A", runGenerated(t, prog))
}

// Every labeled block below ends with an explicit Push+Goto to its
// continuation rather than letting control fall off the end of a
// segment (splitSegments turns such a fall-off into a jump to the next
// label).

func TestGenerateBranchTaken(t *testing.T) {
	// if (1) goto L1 else print 'n'; L1: print 'y'; goto halt(L0)
	prog := []stackir.Inst{
		{Op: stackir.Push, W: 1},
		{Op: stackir.Branch, W: 1},
		{Op: stackir.Push, W: 'n'},
		{Op: stackir.PutChar},
		{Op: stackir.Push, W: 0},
		{Op: stackir.Goto},
		{Op: stackir.LabelOp, W: 1},
		{Op: stackir.Push, W: 'y'},
		{Op: stackir.PutChar},
		{Op: stackir.Push, W: 0},
		{Op: stackir.Goto},
	}
	require.Equal(t, "y", runGenerated(t, prog))
}

func TestGenerateBranchNotTaken(t *testing.T) {
	// if (0) goto L1 else print 'n'; L1: print 'y'; goto halt(L0)
	prog := []stackir.Inst{
		{Op: stackir.Push, W: 0},
		{Op: stackir.Branch, W: 1},
		{Op: stackir.Push, W: 'n'},
		{Op: stackir.PutChar},
		{Op: stackir.Push, W: 1},
		{Op: stackir.Goto},
		{Op: stackir.LabelOp, W: 1},
		{Op: stackir.Push, W: 'y'},
		{Op: stackir.PutChar},
		{Op: stackir.Push, W: 0},
		{Op: stackir.Goto},
	}
	require.Equal(t, "ny", runGenerated(t, prog))
}

func TestGenerateLoopViaGoto(t *testing.T) {
	// Print 'x' 3 times, counting a local down to zero and looping back
	// via Goto; the exit path lands on its own non-terminator label
	// (2) before explicitly Goto-ing the halt label (0), matching the
	// invariant that label 0 is only ever reached via an explicit Goto,
	// never a Branch target.
	//
	// L1: if count == 0 goto L2
	//     print 'x'; count = count - 1; goto L1
	// L2: drop count; goto halt(L0)
	prog := []stackir.Inst{
		{Op: stackir.Push, W: 3}, // count at frame slot 0
		{Op: stackir.LabelOp, W: 1},
		{Op: stackir.LclRead, N: 0}, // dup count
		{Op: stackir.LNot},          // isZero
		{Op: stackir.Branch, W: 2},  // if zero, goto exit
		{Op: stackir.Push, W: 'x'},
		{Op: stackir.PutChar},
		{Op: stackir.LclRead, N: 0},
		{Op: stackir.Push, W: 1},
		{Op: stackir.Sub},
		{Op: stackir.LclStr, N: 1},
		{Op: stackir.Push, W: 1},
		{Op: stackir.Goto},
		{Op: stackir.LabelOp, W: 2},
		{Op: stackir.Dealloc, N: 1}, // drop count
		{Op: stackir.Push, W: 0},
		{Op: stackir.Goto},
	}
	require.Equal(t, "xxx", runGenerated(t, prog))
}

func TestGenerateNoLabelsIsJustStraightLine(t *testing.T) {
	prog := []stackir.Inst{
		{Op: stackir.Push, W: 1},
		{Op: stackir.Push, W: 2},
		{Op: stackir.Add},
		{Op: stackir.PutChar},
	}
	require.Equal(t, byteStr(3), runGenerated(t, prog))
}
