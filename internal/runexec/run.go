package runexec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"voicedecoder/internal/history"
	"voicedecoder/internal/logging"
	"voicedecoder/internal/services"
	"voicedecoder/internal/transcription"
)

// StageName labels log records emitted while a run is active.
const StageName = "transcribe"

// Transcriber runs the pipeline.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.Request) transcription.Result
}

// Recorder persists run history. *history.Store satisfies it.
type Recorder interface {
	Begin(ctx context.Context, run history.Run) (history.Run, error)
	Finish(ctx context.Context, id string, outcome history.Outcome) error
	FindByHash(ctx context.Context, hash, model string) (*history.Run, error)
}

// Options controls run execution and history behavior.
type Options struct {
	Logger      *slog.Logger
	Transcriber Transcriber
	// Store is optional; nil disables history.
	Store Recorder
	// RunID is generated when empty.
	RunID string
	// Reuse returns an earlier completed transcript of identical content
	// instead of running the model again.
	Reuse bool
}

// Record is the outcome of Run.
type Record struct {
	ID     string
	Result transcription.Result
	// Previous is the newest earlier completed run on the same content and
	// model, when history knows one.
	Previous *history.Run
	// Reused is true when Result came from Previous rather than a new run.
	Reused   bool
	Recorded bool
}

// Run executes one transcription request.
func Run(ctx context.Context, opts Options, req transcription.Request) (Record, error) {
	if opts.Transcriber == nil {
		return Record{}, fmt.Errorf("transcriber is required")
	}
	runID := strings.TrimSpace(opts.RunID)
	if runID == "" {
		runID = uuid.NewString()
	}
	record := Record{ID: runID}

	runCtx := services.WithStage(services.WithRunID(ctx, runID), StageName)
	logger := logging.WithContext(runCtx, logging.NewComponentLogger(opts.Logger, "run"))

	logger.Info(
		"run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("input", req.Input),
		logging.String("model", req.Size.String()),
		logging.Bool("keep_converted", req.KeepConverted),
	)

	var hash string
	if opts.Store != nil {
		sum, err := history.HashFile(req.Input)
		if err != nil {
			logger.Debug("content hash unavailable", logging.Error(err))
		} else {
			hash = sum
			prior, findErr := opts.Store.FindByHash(runCtx, hash, req.Size.String())
			if findErr != nil {
				logger.Warn("history lookup failed", logging.Error(findErr))
			}
			record.Previous = prior
		}
	}

	if opts.Reuse && record.Previous != nil {
		record.Reused = true
		record.Result = transcription.Result{
			Document:    record.Previous.Document,
			WorkingPath: record.Previous.WorkingPath,
		}
		logger.Info(
			"reusing earlier transcript",
			logging.String(logging.FieldEventType, "run_reused"),
			logging.String("previous_run", record.Previous.ID),
		)
		return record, nil
	}

	begun := false
	if opts.Store != nil {
		_, err := opts.Store.Begin(runCtx, history.Run{
			ID:          runID,
			Input:       req.Input,
			ContentHash: hash,
			Model:       req.Size.String(),
			Language:    req.Language,
		})
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable for run", "history_begin_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run will not appear in history"),
			)
		} else {
			begun = true
		}
	}

	record.Result = opts.Transcriber.Transcribe(runCtx, req)

	if begun {
		if err := opts.Store.Finish(runCtx, runID, outcomeFor(record.Result)); err != nil {
			logger.Error("failed to persist run outcome", logging.Error(err))
		} else {
			record.Recorded = true
		}
	}

	if record.Result.OK() {
		logger.Info(
			"run completed",
			logging.String(logging.FieldEventType, "run_complete"),
			logging.String("device", record.Result.Device.Label()),
		)
	} else {
		logger.Info(
			"run failed",
			logging.String(logging.FieldEventType, "run_failure"),
			logging.String("failure_kind", record.Result.Kind().String()),
		)
	}
	return record, nil
}

func outcomeFor(result transcription.Result) history.Outcome {
	outcome := history.Outcome{
		Status:       history.StatusCompleted,
		Device:       result.Device.Kind.String(),
		Document:     result.Document,
		WorkingPath:  result.WorkingPath,
		Converted:    result.Converted && !result.Removed,
		SegmentCount: len(result.Segments),
	}
	if !result.OK() {
		outcome.Status = history.StatusFailed
		outcome.FailureKind = result.Kind().String()
		outcome.ErrorMessage = strings.TrimSpace(result.Err.Error())
		outcome.Document = ""
	}
	return outcome
}
