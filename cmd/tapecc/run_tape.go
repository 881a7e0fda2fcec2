package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tapecc/pkg/tape"
	"tapecc/pkg/utils"
)

func newRunTapeCmd(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-tape <file>",
		Short: "run a raw tape-machine source file directly, with no compilation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, fullPath, err := utils.ReadInputFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", fullPath, err)
			}

			prog := tape.Parse(string(src))
			return tape.Run(prog, cmd.InOrStdin(), out)
		},
	}
	return cmd
}
