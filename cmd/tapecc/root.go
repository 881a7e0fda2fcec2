package main

import (
	"io"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// newRootCmd builds the tapecc command tree: run-source, verify-ir and
// run-tape, each independently flagged. out/errOut are threaded through
// rather than read from os.Stdout/os.Stderr directly so tests can
// capture output.
func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tapecc",
		Short:         "tapecc compiles a C-like language subset to an eight-operator tape machine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.AddCommand(newRunSourceCmd(out, errOut))
	rootCmd.AddCommand(newVerifyIRCmd(out, errOut))
	rootCmd.AddCommand(newRunTapeCmd(out, errOut))
	return rootCmd
}
