package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"voicedecoder/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, tools, and the compute device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			results := preflight.RunAll(cmd.Context(), cfg)
			results = append(results, preflight.CheckDevice(cmd.Context(), ctx.selector()))
			summary := preflight.Summary(results)

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Preflight", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, line := range preflightLines(results, colorize) {
					fmt.Fprintln(out, line)
				}
			}
			if summary != "" {
				return silent(fmt.Errorf("%s", summary))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output check results as JSON")
	return cmd
}
