package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type deviceOutput struct {
	Kind     string `json:"kind"`
	Advisory string `json:"advisory,omitempty"`
	Label    string `json:"label"`
}

func newDeviceCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "device",
		Short: "Show the compute device transcription would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			choice := ctx.selector().Select(cmd.Context())
			if asJSON {
				return writeJSON(cmd, deviceOutput{
					Kind:     choice.Kind.String(),
					Advisory: choice.Advisory,
					Label:    choice.Label(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Device: %s\n", choice.Label())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the device choice as JSON")
	return cmd
}
