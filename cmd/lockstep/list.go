package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/lockstep/internal/subsystem"
)

type listOptions struct {
	jsonOutput bool
}

func newListCmd() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available subsystem types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runList(cmd *cobra.Command, opts *listOptions) error {
	metas := appRegistry.List()

	if opts.jsonOutput {
		return renderListJSON(cmd, metas)
	}
	return renderListTable(cmd, metas)
}

func renderListTable(cmd *cobra.Command, metas []subsystem.Metadata) error {
	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	fmt.Fprintln(writer, "TYPE\tDESCRIPTION")
	for _, meta := range metas {
		fmt.Fprintf(writer, "%s\t%s\n", meta.Type, meta.Description)
	}

	return writer.Flush()
}

type listJSONSubsystem struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type listJSONPayload struct {
	Count      int                 `json:"count"`
	Subsystems []listJSONSubsystem `json:"subsystems"`
}

func renderListJSON(cmd *cobra.Command, metas []subsystem.Metadata) error {
	payload := listJSONPayload{
		Count:      len(metas),
		Subsystems: make([]listJSONSubsystem, len(metas)),
	}
	for i, meta := range metas {
		payload.Subsystems[i] = listJSONSubsystem{Type: meta.Type, Description: meta.Description}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
