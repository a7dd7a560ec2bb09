package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"voicedecoder/internal/fileutil"
	"voicedecoder/internal/runexec"
	"voicedecoder/internal/services"
	"voicedecoder/internal/transcription"
	"voicedecoder/internal/whisper"
)

type transcribeOutput struct {
	RunID       string `json:"run_id"`
	Input       string `json:"input"`
	Model       string `json:"model"`
	Device      string `json:"device,omitempty"`
	OK          bool   `json:"ok"`
	Text        string `json:"text"`
	FailureKind string `json:"failure_kind,omitempty"`
	Error       string `json:"error,omitempty"`
	WorkingPath string `json:"working_path,omitempty"`
	Converted   bool   `json:"converted"`
	Removed     bool   `json:"removed"`
	Segments    int    `json:"segments"`
	Reused      bool   `json:"reused,omitempty"`
	PreviousRun string `json:"previous_run,omitempty"`
}

var errLockHeld = errors.New("another transcription is already running")

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var (
		model         string
		keepConverted bool
		language      string
		outputPath    string
		asJSON        bool
		reuse         bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe speech in an audio or video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			input, err := filepath.Abs(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve input path: %w", err)
			}
			size, err := ctx.resolveSize(model)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("language") {
				language = cfg.Transcription.Language
			}
			lang, err := whisper.NormalizeLanguage(language)
			if err != nil {
				return err
			}
			keep := cfg.Transcription.KeepConverted
			if cmd.Flags().Changed("keep-converted") {
				keep = keepConverted
			}

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock %s: %w", cfg.LockPath(), err)
			}
			if !locked {
				return services.Wrap(services.ErrTransient, "cli", "transcribe", "lock "+cfg.LockPath()+" is held", errLockHeld)
			}
			defer func() { _ = lock.Unlock() }()

			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errOut := cmd.ErrOrStderr()
			colorize := shouldColorize(errOut)
			req := transcription.Request{
				Input:         input,
				Size:          size,
				KeepConverted: keep,
				Language:      lang,
			}
			if !asJSON {
				req.Progress = func(percent int) {
					fmt.Fprintln(errOut, renderProgressLine(percent, colorize))
				}
			}

			opts := runexec.Options{
				Logger:      ctx.logger(),
				Transcriber: ctx.orchestrator(ctx.selector()),
				Reuse:       reuse,
			}
			if store != nil {
				opts.Store = store
			}
			record, err := runexec.Run(runCtx, opts, req)
			if err != nil {
				return err
			}
			return writeTranscript(cmd, record, input, size, outputPath, asJSON)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model size: small, medium, or large (default from config)")
	cmd.Flags().BoolVar(&keepConverted, "keep-converted", false, "Keep the converted WAV file next to the input")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Spoken language (e.g. en, de, french); empty lets the model detect it")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the transcript to this file instead of stdout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&reuse, "reuse", false, "Return an earlier transcript of identical content instead of rerunning the model")
	return cmd
}

func writeTranscript(cmd *cobra.Command, record runexec.Record, input string, size whisper.Size, outputPath string, asJSON bool) error {
	result := record.Result
	out := cmd.OutOrStdout()

	var runErr error
	if !result.OK() {
		runErr = silent(fmt.Errorf("transcription failed (%s)", result.Kind()))
	}

	if asJSON {
		payload := transcribeOutput{
			RunID:       record.ID,
			Input:       input,
			Model:       size.String(),
			OK:          result.OK(),
			Text:        result.Text(),
			WorkingPath: result.WorkingPath,
			Converted:   result.Converted,
			Removed:     result.Removed,
			Segments:    len(result.Segments),
			Reused:      record.Reused,
		}
		if result.Device.Kind != "" {
			payload.Device = result.Device.Label()
		}
		if record.Previous != nil {
			payload.PreviousRun = record.Previous.ID
		}
		if !result.OK() {
			payload.FailureKind = result.Kind().String()
			payload.Error = result.Err.Error()
		}
		if err := writeJSON(cmd, payload); err != nil {
			return err
		}
		return runErr
	}

	errOut := cmd.ErrOrStderr()
	if record.Reused {
		fmt.Fprintf(errOut, "Reusing transcript from run %s\n", shortID(record.Previous.ID))
	} else if record.Previous != nil {
		fmt.Fprintf(errOut, "An earlier transcript of this content exists (run %s); pass --reuse to skip the model\n", shortID(record.Previous.ID))
	}
	if !result.OK() {
		fmt.Fprintln(out, result.Text())
		if result.Converted && !result.Removed && result.WorkingPath != "" {
			fmt.Fprintf(errOut, "Converted file left at %s\n", result.WorkingPath)
		}
		return runErr
	}

	if strings.TrimSpace(outputPath) == "" {
		return writeDocument(out, result.Document)
	}
	if err := fileutil.WriteFileAtomic(outputPath, []byte(ensureTrailingNewline(result.Document)), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	fmt.Fprintf(out, "Transcript written to %s\n", outputPath)
	return nil
}

func writeDocument(w io.Writer, document string) error {
	_, err := io.WriteString(w, ensureTrailingNewline(document))
	return err
}

func ensureTrailingNewline(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}

func progressLabel(percent int) string {
	switch {
	case percent <= 0:
		return "failed"
	case percent < 50:
		return "input prepared"
	case percent < 75:
		return "loading model"
	case percent < 100:
		return "transcribing"
	default:
		return "done"
	}
}

func renderProgressLine(percent int, colorize bool) string {
	kind := statusInfo
	switch {
	case percent <= 0:
		kind = statusError
	case percent >= 100:
		kind = statusOK
	}
	return renderStatusLine("Progress", kind, fmt.Sprintf("%3d%% %s", percent, progressLabel(percent)), colorize)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
