package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tapecc/pkg/ctxt"
	"tapecc/pkg/parser"
	"tapecc/pkg/stackir"
	"tapecc/pkg/tape"
	"tapecc/pkg/utils"
)

func newRunSourceCmd(out, errOut io.Writer) *cobra.Command {
	var dumpIR bool
	var dumpTape bool

	cmd := &cobra.Command{
		Use:   "run-source <file>",
		Short: "compile a source file and run it on the tape machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, fullPath, err := utils.ReadInputFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", fullPath, err)
			}

			stream, err := compile(string(src))
			if err != nil {
				return err
			}
			kernel := stackir.Lower(stackir.Expand(stream))

			if dumpIR {
				for _, inst := range kernel {
					fmt.Fprintln(out, inst.String())
				}
			}

			prog, err := tape.Generate(stream)
			if err != nil {
				return fmt.Errorf("generating tape code: %w", err)
			}

			if dumpTape {
				fmt.Fprintln(out, prog.String())
			}

			return tape.Run(prog, cmd.InOrStdin(), out)
		},
	}
	cmd.Flags().BoolVar(&dumpIR, "dump-ir", false, "print the post-expansion stack-IR listing before running")
	cmd.Flags().BoolVar(&dumpTape, "dump-tape", false, "print the generated tape program before running")
	return cmd
}

// compile runs the front end and the AST-to-stack-IR lowering shared by
// run-source and verify-ir.
func compile(src string) ([]stackir.Inst, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	c := ctxt.New()
	if err := c.Program(prog); err != nil {
		return nil, fmt.Errorf("lowering: %w", err)
	}
	return c.Stream, nil
}
