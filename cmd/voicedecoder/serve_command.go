package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voicedecoder/internal/logging"
	"voicedecoder/internal/preflight"
	"voicedecoder/internal/server"
	"voicedecoder/internal/services"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local transcription service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if bind != "" {
				cfg.Server.Bind = bind
			}
			logger := ctx.logger()

			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			var historyStore server.HistoryStore
			if store != nil {
				defer store.Close()
				historyStore = store
				if n, err := store.MarkInterrupted(cmd.Context()); err != nil {
					logging.WarnWithContext(logger, "failed to mark interrupted runs", "history_recovery_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "stale runs stay in the running state"),
					)
				} else if n > 0 {
					logger.Info("marked interrupted runs as failed", logging.Int64("count", n))
				}
			}

			selector := ctx.selector()
			srv, err := server.New(server.Dependencies{
				Config:      cfg,
				Transcriber: ctx.orchestrator(selector),
				Selector:    selector,
				Estimator:   ctx.estimator(selector),
				History:     historyStore,
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			results := srv.Preflight(cmd.Context())
			if summary := preflight.Summary(results); summary != "" {
				if !skipPreflight {
					colorize := shouldColorize(cmd.ErrOrStderr())
					for _, line := range preflightLines(results, colorize) {
						fmt.Fprintln(cmd.ErrOrStderr(), line)
					}
					return services.Wrap(services.ErrConfiguration, "cli", "serve", summary, nil)
				}
				logging.WarnWithContext(logger, "starting despite preflight failures", "preflight_skipped",
					logging.String("summary", summary),
				)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", srv.Addr())

			<-runCtx.Done()
			srv.Stop()
			fmt.Fprintln(cmd.OutOrStdout(), "Service stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Start even when required checks fail")
	return cmd
}
