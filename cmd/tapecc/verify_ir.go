package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tapecc/pkg/stackir"
	"tapecc/pkg/utils"
)

func newVerifyIRCmd(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify-ir <file>",
		Short: "compile a source file and run it on the stack-IR reference interpreter",
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
			return stackir.Run(kernel, out)
		},
	}
	return cmd
}
