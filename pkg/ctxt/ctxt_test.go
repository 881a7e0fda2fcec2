package ctxt_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"tapecc/pkg/ctxt"
	"tapecc/pkg/parser"
	"tapecc/pkg/stackir"
)

// compileAndRun lowers src through ctxt.Program, then expands and
// lowers the result to kernel-only instructions before executing it on
// the stack-IR reference interpreter, the same pipeline cmd/tapecc's
// verify-ir subcommand runs (Run only accepts a fully-expanded stream).
func compileAndRun(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	c := ctxt.New()
	require.NoError(t, c.Program(prog))

	kernel := stackir.Lower(stackir.Expand(c.Stream))

	var out bytes.Buffer
	require.NoError(t, stackir.Run(kernel, &out))
	return out.String()
}

func TestIfTakenAndNotTaken(t *testing.T) {
	src := `int main(){
		if (1) print('y'); else print('n');
		if (0) print('y'); else print('n');
		return 0;
	}`
	require.Equal(t, "yn", compileAndRun(t, src))
}

func TestIfWithNoElse(t *testing.T) {
	src := `int main(){ if (0) print('y'); print('z'); return 0; }`
	require.Equal(t, "z", compileAndRun(t, src))
}

func TestWhileLoop(t *testing.T) {
	src := `int main(){ int i = 0; while (i < 4) { print('x'); i = i + 1; } return 0; }`
	require.Equal(t, "xxxx", compileAndRun(t, src))
}

func TestDoWhileRunsBodyAtLeastOnce(t *testing.T) {
	src := `int main(){ int i = 0; do { print('x'); i = i + 1; } while (i < 0); return 0; }`
	require.Equal(t, "x", compileAndRun(t, src))
}

func TestForLoopWithBreakAndContinue(t *testing.T) {
	src := `int main(){
		int i;
		for (i = 0; i < 10; i = i + 1) {
			if (i == 2) continue;
			if (i == 5) break;
			print('0' + i);
		}
		return 0;
	}`
	require.Equal(t, "0134", compileAndRun(t, src))
}

func TestSwitchFallsThroughWithoutBreak(t *testing.T) {
	src := `int main(){
		int i;
		for (i = 0; i < 3; i = i + 1) {
			switch (i) {
			case 0:
				print('a');
			case 1:
				print('b');
				break;
			default:
				print('c');
			}
		}
		return 0;
	}`
	// i=0: no break after case 0, falls into case 1's body too -> "ab"
	// i=1: case 1 matches directly, break after -> "b"
	// i=2: no case matches, default -> "c"
	require.Equal(t, "ab"+"b"+"c", compileAndRun(t, src))
}

func TestSwitchWithNoDefaultAndNoMatchPrintsNothing(t *testing.T) {
	src := `int main(){
		switch (9) {
		case 1:
			print('x');
			break;
		}
		print('z');
		return 0;
	}`
	require.Equal(t, "z", compileAndRun(t, src))
}

func TestShortCircuitAndSkipsRHS(t *testing.T) {
	src := `int g;
	int sideEffect(){ g = g + 1; return 1; }
	int main(){
		g = 0;
		int r = 0 && sideEffect();
		print('0' + g);
		print('0' + r);
		return 0;
	}`
	// sideEffect must never run: g stays 0, result of && is 0.
	require.Equal(t, "00", compileAndRun(t, src))
}

func TestShortCircuitOrSkipsRHS(t *testing.T) {
	src := `int g;
	int sideEffect(){ g = g + 1; return 1; }
	int main(){
		g = 0;
		int r = 1 || sideEffect();
		print('0' + g);
		print('0' + r);
		return 0;
	}`
	require.Equal(t, "01", compileAndRun(t, src))
}

func TestShortCircuitEvaluatesRHSWhenNeeded(t *testing.T) {
	src := `int g;
	int sideEffect(){ g = g + 1; return 1; }
	int main(){
		g = 0;
		int r = 1 && sideEffect();
		print('0' + g);
		print('0' + r);
		return 0;
	}`
	require.Equal(t, "11", compileAndRun(t, src))
}

func TestCompoundAssignment(t *testing.T) {
	src := `int main(){ int x = 10; x += 5; x -= 2; x *= 2; print('0' + x); return 0; }`
	// (10+5-2)*2 = 26, and '0'+26 = 74 is 'J':
	require.Equal(t, string([]byte{'0' + 26}), compileAndRun(t, src))
}

func TestPreAndPostIncrement(t *testing.T) {
	src := `int main(){
		int x = 5;
		print('0' + x++);
		print('0' + x);
		print('0' + ++x);
		print('0' + x);
		return 0;
	}`
	// x++ yields old value 5 (prints '5'), x now 6 (prints '6'),
	// ++x yields new value 7 (prints '7'), x now 7 (prints '7').
	require.Equal(t, "5677", compileAndRun(t, src))
}

func TestRecursion(t *testing.T) {
	src := `int fact(int n){
		if (n <= 1) return 1;
		return n * fact(n - 1);
	}
	int main(){
		print(fact(4));
		return 0;
	}`
	require.Equal(t, string([]byte{24}), compileAndRun(t, src))
}

func TestMutualFunctionCallsWithMultipleArgs(t *testing.T) {
	src := `int add3(int a, int b, int c){ return a + b + c; }
	int main(){ print('0' + add3(1,2,3)); return 0; }`
	require.Equal(t, "6", compileAndRun(t, src))
}

func TestGlobalVariableInitAndMutation(t *testing.T) {
	src := `int counter = 41;
	int main(){ counter = counter + 1; print('0' + (counter - 40)); return 0; }`
	require.Equal(t, "2", compileAndRun(t, src))
}

func TestArrayDeclarationInitAndIndex(t *testing.T) {
	src := `int main(){
		int a[3] = {1, 2, 3};
		print('0' + a[0]);
		print('0' + a[1]);
		print('0' + a[2]);
		return 0;
	}`
	require.Equal(t, "123", compileAndRun(t, src))
}

func TestArrayAssignment(t *testing.T) {
	src := `int main(){
		int a[2];
		a[0] = 3;
		a[1] = a[0] + 1;
		print('0' + a[1]);
		return 0;
	}`
	require.Equal(t, "4", compileAndRun(t, src))
}

func TestTernary(t *testing.T) {
	src := `int main(){
		int x = 7;
		print((x > 5) ? 'y' : 'n');
		print((x > 50) ? 'y' : 'n');
		return 0;
	}`
	require.Equal(t, "yn", compileAndRun(t, src))
}

func TestPointerDerefAndAddrOf(t *testing.T) {
	src := `int main(){
		int x = 9;
		int *p = &x;
		*p = 3;
		print('0' + x);
		return 0;
	}`
	require.Equal(t, "3", compileAndRun(t, src))
}
