package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runSource compiles and runs src through the full run-source pipeline,
// the same way a user invoking `tapecc run-source <file>` would.
func runSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.c")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"run-source", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("run-source failed: %v\nstderr: %s", err, errOut.String())
	}
	return out.String()
}

func TestRunSourcePrintLiteral(t *testing.T) {
	got := runSource(t, `int main(){ print('A'); return 0; }`)
	if got != "A" {
		t.Fatalf("got %q, want %q", got, "A")
	}
}

func TestRunSourceForLoop(t *testing.T) {
	got := runSource(t, `int main(){ int i; for(i=0;i<3;i=i+1) print('x'); return 0; }`)
	if got != "xxx" {
		t.Fatalf("got %q, want %q", got, "xxx")
	}
}

func TestRunSourceRecursion(t *testing.T) {
	src := `int f(int n){ if (n<=0) return 0; return f(n-1)+1; } int main(){ int r=f(4); print(r+48); return 0; }`
	got := runSource(t, src)
	if got != "4" {
		t.Fatalf("got %q, want %q", got, "4")
	}
}

func TestRunSourceArithmeticWraps(t *testing.T) {
	src := `int g; int main(){ g=5; g=g*g; print(g+6); return 0; }`
	got := runSource(t, src)
	want := "\x1f"
	if got != want {
		t.Fatalf("got %q (%v), want %q (%v)", got, []byte(got), want, []byte(want))
	}
}

func TestRunSourceShortCircuitSkipsDivideByZero(t *testing.T) {
	got := runSource(t, `int main(){ return 0 && (1/0); }`)
	if got != "" {
		t.Fatalf("got %q, want no output", got)
	}
}

func TestRunSourceComparison(t *testing.T) {
	got := runSource(t, `int main(){ int a=1; int b=2; print((a<b)+48); return 0; }`)
	if got != "1" {
		t.Fatalf("got %q, want %q", got, "1")
	}
}

func TestVerifyIRMatchesRunSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.c")
	src := `int main(){ int i; for(i=0;i<3;i=i+1) print('x'); return 0; }`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"verify-ir", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("verify-ir failed: %v\nstderr: %s", err, errOut.String())
	}
	if out.String() != "xxx" {
		t.Fatalf("got %q, want %q", out.String(), "xxx")
	}
}

func TestRunSourceDumpFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.c")
	if err := os.WriteFile(path, []byte(`int main(){ print('A'); return 0; }`), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"run-source", "--dump-ir", "--dump-tape", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("run-source failed: %v\nstderr: %s", err, errOut.String())
	}
	if !bytes.Contains(out.Bytes(), []byte("A")) {
		t.Fatalf("expected dump output to still end with the program's own output, got %q", out.String())
	}
}

func TestRunTapeRawSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.bf")
	// A minimal program: push 65 ('A') by incrementing the first cell 65
	// times, then print it.
	src := strings.Repeat("+", 65) + "."
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"run-tape", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("run-tape failed: %v\nstderr: %s", err, errOut.String())
	}
	if out.String() != "A" {
		t.Fatalf("got %q, want %q", out.String(), "A")
	}
}
