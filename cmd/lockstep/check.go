package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/lockstep/internal/model"
)

func newCheckCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{Mode: model.CheckOnly}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether each subsystem satisfies its hardening target",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))

			if err := validateRunOptions(opts); err != nil {
				return newExitError(exitConfig, err)
			}

			return runCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ProfilePath, "config", "c", "", "Path to profile file")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}
