package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"voicedecoder/internal/history"
	"voicedecoder/internal/timefmt"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past transcription runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRunTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run and its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, run)
			}
			writeRunDetail(cmd, run)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the run as JSON")
	return cmd
}

func renderRunTable(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			string(run.Status),
			run.Model,
			run.Device,
			filepath.Base(run.Input),
			runDuration(run),
		})
	}
	return renderTable(
		[]string{"ID", "Started", "Status", "Model", "Device", "Input", "Took"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func runDuration(run history.Run) string {
	if run.FinishedAt == nil {
		return ""
	}
	return timefmt.Clock(run.Duration().Seconds())
}

func writeRunDetail(cmd *cobra.Command, run *history.Run) {
	out := cmd.OutOrStdout()
	field := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fmt.Fprintf(out, "%-14s %s\n", label+":", value)
	}
	field("ID", run.ID)
	field("Input", run.Input)
	field("Status", string(run.Status))
	field("Model", run.Model)
	field("Language", run.Language)
	field("Device", run.Device)
	field("Started", run.StartedAt.Local().Format(time.RFC3339))
	if run.FinishedAt != nil {
		field("Finished", run.FinishedAt.Local().Format(time.RFC3339))
		field("Took", runDuration(*run))
	}
	field("Failure", run.FailureKind)
	field("Error", run.ErrorMessage)
	if run.Converted {
		field("Converted", run.WorkingPath)
	}
	if run.Status == history.StatusCompleted {
		field("Segments", strconv.Itoa(run.SegmentCount))
	}
	field("Content hash", run.ContentHash)
	if run.Document != "" {
		fmt.Fprintln(out)
		fmt.Fprint(out, ensureTrailingNewline(run.Document))
	}
}
