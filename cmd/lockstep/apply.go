package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/lockstep/internal/model"
)

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}
	var yes bool
	var purge bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Harden every subsystem in the profile",
		Long: "Observes each subsystem, applies the corrective actions for unsatisfied " +
			"facts, and verifies the result. Prompts before destructive actions unless " +
			"--yes is given, in which case destructive actions run only when --purge " +
			"preauthorizes them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Mode = model.Apply
			if yes {
				opts.Mode = model.ApplyUnattended
			}
			opts.Verbose = root.verbose
			opts.AuthorizeDestructive = purge
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))

			if err := validateRunOptions(opts); err != nil {
				return newExitError(exitConfig, err)
			}

			return runCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ProfilePath, "config", "c", "", "Path to profile file")
	cmd.MarkFlagRequired("config") //nolint:errcheck
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Run unattended, never prompt")
	cmd.Flags().BoolVar(&purge, "purge", false, "Preauthorize destructive package removals")

	return cmd
}
