package tape

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMoveLoop(t *testing.T) {
	// Classic BF move idiom: put 8 in cell 0, drain it into cell 1,
	// print cell 1.
	prog := Program(Parse("++++++++[->+<]>."))
	var out bytes.Buffer
	require.NoError(t, Run(prog, strings.NewReader(""), &out))
	require.Equal(t, byteStr(8), out.String())
}

func TestRunRejectsUnmatchedBrackets(t *testing.T) {
	_, err := matchBrackets(Program("[+"))
	require.Error(t, err)

	_, err = matchBrackets(Program("+]"))
	require.Error(t, err)
}

func TestRunRejectsLeftOfOrigin(t *testing.T) {
	var out bytes.Buffer
	err := Run(Program("<"), strings.NewReader(""), &out)
	require.Error(t, err)
}

func TestRunGrowsTapeRightward(t *testing.T) {
	var out bytes.Buffer
	prog := Program(">>>+.")
	require.NoError(t, Run(prog, strings.NewReader(""), &out))
	require.Equal(t, byteStr(1), out.String())
}

func TestRunReadsInputByte(t *testing.T) {
	var out bytes.Buffer
	prog := Program(",.")
	require.NoError(t, Run(prog, strings.NewReader("Z"), &out))
	require.Equal(t, "Z", out.String())
}

func TestRunInputEOFFails(t *testing.T) {
	var out bytes.Buffer
	prog := Program(",.")
	require.Equal(t, ErrNoInput, Run(prog, strings.NewReader(""), &out))
	require.Equal(t, "", out.String())
}

func TestRunWrapsArithmetic(t *testing.T) {
	var out bytes.Buffer
	prog := Program(Repeat(Inc, 256)) // wraps back to 0
	prog = append(prog, Out)
	require.NoError(t, Run(prog, strings.NewReader(""), &out))
	require.Equal(t, byteStr(0), out.String())
}

func TestParseIgnoresCommentsAndNoise(t *testing.T) {
	prog := Parse("start `this is a comment [ ] < >` ++.")
	require.Equal(t, Program{Inc, Inc, Out}, prog)
}
