package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"voicedecoder/internal/estimate"
)

type estimateOutput struct {
	Input            string  `json:"input"`
	Model            string  `json:"model"`
	Device           string  `json:"device"`
	DurationSeconds  float64 `json:"duration_seconds"`
	ProjectedSeconds float64 `json:"projected_seconds"`
	Projected        string  `json:"projected"`
}

func newEstimateCommand(ctx *commandContext) *cobra.Command {
	var model string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "estimate <file>",
		Short: "Estimate transcription time for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := ctx.resolveSize(model)
			if err != nil {
				return err
			}
			est := ctx.estimator(ctx.selector())
			result, err := est.Estimate(cmd.Context(), args[0], size)
			if err != nil {
				message := estimate.Describe(result, err)
				if asJSON {
					if werr := writeJSON(cmd, map[string]string{"error": message}); werr != nil {
						return werr
					}
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), message)
				}
				return silent(err)
			}
			if asJSON {
				return writeJSON(cmd, estimateOutput{
					Input:            args[0],
					Model:            size.String(),
					Device:           result.Device.Label(),
					DurationSeconds:  result.DurationSeconds,
					ProjectedSeconds: result.ProjectedSecs,
					Projected:        result.Projected(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), estimate.Describe(result, nil))
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model size: small, medium, or large (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the estimate as JSON")
	return cmd
}
