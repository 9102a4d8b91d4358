package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/lockstep/internal/model"
)

func newBackoutCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{Mode: model.Backout}
	var yes bool

	cmd := &cobra.Command{
		Use:   "backout",
		Short: "Restore every subsystem to its pre-hardening state",
		Long: "Runs each subsystem's separately declared restore actions: drop-ins are " +
			"removed, masked units are unmasked and re-enabled, purged packages are " +
			"reinstalled.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.AuthorizeDestructive = yes
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))

			if err := validateRunOptions(opts); err != nil {
				return newExitError(exitConfig, err)
			}

			return runCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ProfilePath, "config", "c", "", "Path to profile file")
	cmd.MarkFlagRequired("config") //nolint:errcheck
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Preauthorize destructive restore actions")

	return cmd
}
