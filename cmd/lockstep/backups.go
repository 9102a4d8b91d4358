package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/lockstep/internal/backup"
	"github.com/alexisbeaulieu97/lockstep/internal/config"
)

func newBackupsCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "backups",
		Short: "Show the snapshot history of the profile's backup store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRunOptions(opts); err != nil {
				return newExitError(exitConfig, err)
			}
			return runBackups(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ProfilePath, "config", "c", "", "Path to profile file")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}

func runBackups(cmd *cobra.Command, opts runOptions) error {
	profile, err := config.ParseProfile(opts.ProfilePath)
	if err != nil {
		return newExitError(exitConfig, err)
	}

	store, err := backup.Open(profile.Settings.EffectiveBackupDir())
	if err != nil {
		return newExitError(exitInternal, fmt.Errorf("open backup store: %w", err))
	}

	history, err := store.History()
	if err != nil {
		return newExitError(exitInternal, err)
	}

	if len(history) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no snapshots recorded")
		return nil
	}
	for _, entry := range history {
		fmt.Fprintln(cmd.OutOrStdout(), entry)
	}
	return nil
}
