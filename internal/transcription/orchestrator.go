package transcription

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"voicedecoder/internal/config"
	"voicedecoder/internal/device"
	"voicedecoder/internal/logging"
	"voicedecoder/internal/media/normalize"
	"voicedecoder/internal/services"
	"voicedecoder/internal/whisper"
)

// Normalizer converts inputs the model cannot read directly.
type Normalizer interface {
	Normalize(ctx context.Context, ref normalize.MediaReference) (string, error)
}

// DeviceSelector picks the compute device for a run.
type DeviceSelector interface {
	Select(ctx context.Context) device.Choice
}

// Dependencies are the collaborators an Orchestrator drives.
type Dependencies struct {
	Normalizer Normalizer
	Selector   DeviceSelector
	Loader     whisper.Loader
	// ModelDir holds model weights. It must exist before a run starts.
	ModelDir string
	Logger   *slog.Logger
}

// Request describes one run.
type Request struct {
	Input         string
	Size          whisper.Size
	KeepConverted bool
	// Language is an optional two-letter code; empty lets the model detect it.
	Language string
	Progress ProgressFunc
}

// Orchestrator runs the transcription pipeline. It holds no per-run state.
type Orchestrator struct {
	deps             Dependencies
	directFormats    []string
	checkpoints      Checkpoints
	silenceThreshold float64
	logger           *slog.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithDirectFormats replaces the set of extensions fed to the model as is.
func WithDirectFormats(formats []string) Option {
	return func(o *Orchestrator) {
		o.directFormats = append([]string(nil), formats...)
	}
}

// WithCheckpoints replaces the progress schedule.
func WithCheckpoints(c Checkpoints) Option {
	return func(o *Orchestrator) { o.checkpoints = c }
}

// WithSilenceThreshold sets the paragraph gap in seconds. Non-positive values
// are ignored.
func WithSilenceThreshold(seconds float64) Option {
	return func(o *Orchestrator) {
		if seconds > 0 {
			o.silenceThreshold = seconds
		}
	}
}

// New builds an Orchestrator.
func New(deps Dependencies, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		deps:             deps,
		directFormats:    append([]string(nil), config.DefaultDirectFormats...),
		checkpoints:      DefaultCheckpoints,
		silenceThreshold: DefaultSilenceThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(deps.Logger, "transcription")
	return o
}

// Transcribe runs the pipeline for req. It always returns; failures are
// reported through Result.Err and a single Failed progress event.
func (o *Orchestrator) Transcribe(ctx context.Context, req Request) (result Result) {
	started := time.Now()
	logger := logging.WithContext(ctx, o.logger)
	emit := safeProgress(req.Progress, logger)

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("pipeline panic: %v", r)
		}
		if result.Err != nil {
			result.Document = ""
			emit(o.checkpoints.Failed)
			logging.ErrorWithContext(logger, "transcription failed", "transcription_failed",
				logging.String("input", req.Input),
				logging.String("failure_kind", result.Kind().String()),
				logging.Error(result.Err),
				logging.String(logging.FieldErrorHint, hintFor(result.Kind())),
			)
			return
		}
		logger.Info("transcription complete",
			logging.String("input", req.Input),
			logging.String("device", result.Device.Kind.String()),
			logging.Int("segments", len(result.Segments)),
			logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
		)
	}()

	result.Err = o.run(ctx, req, emit, &result)
	return result
}

func (o *Orchestrator) run(ctx context.Context, req Request, emit ProgressFunc, result *Result) error {
	logger := logging.WithContext(ctx, o.logger)

	ref := normalize.Resolve(req.Input, o.directFormats)
	result.WorkingPath = ref.Path
	if !ref.Direct() {
		if o.deps.Normalizer == nil {
			return errors.New("no normalizer configured")
		}
		stageCtx := services.WithStage(ctx, "normalize")
		converted, err := o.deps.Normalizer.Normalize(stageCtx, ref)
		if err != nil {
			return err
		}
		result.WorkingPath = converted
		result.Converted = true
	}
	if _, err := os.Stat(result.WorkingPath); err != nil {
		return services.Wrap(services.ErrNotFound, "transcription", "check input",
			"file to transcribe not found", err)
	}

	result.Device = device.Choice{Kind: device.KindCPU}
	if o.deps.Selector != nil {
		result.Device = o.deps.Selector.Select(services.WithStage(ctx, "device"))
	}
	emit(o.checkpoints.Prepared)

	logger.Info("loading model",
		logging.String("model", req.Size.ModelName()),
		logging.String("device", result.Device.Kind.String()),
		logging.String("working_path", result.WorkingPath),
	)
	emit(o.checkpoints.Loading)

	if err := checkModelDir(o.deps.ModelDir); err != nil {
		return err
	}
	if o.deps.Loader == nil {
		return errors.New("no model loader configured")
	}
	loadCtx := services.WithStage(ctx, "model")
	model, err := o.deps.Loader.Load(loadCtx, req.Size, result.Device.Kind, o.deps.ModelDir)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	emit(o.checkpoints.Loaded)

	runCtx := whisper.ContextWithLanguage(services.WithStage(ctx, "inference"), req.Language)
	output, err := model.Transcribe(runCtx, result.WorkingPath, result.Device.Kind != device.KindCPU)
	if err != nil {
		return fmt.Errorf("run model: %w", err)
	}

	result.Segments = output.Segments
	result.Document = Assemble(output.Segments, o.silenceThreshold)
	emit(o.checkpoints.Done)

	if result.Converted && !req.KeepConverted {
		if err := os.Remove(result.WorkingPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(logger, "could not remove converted file", "cleanup_failed",
				logging.String("path", result.WorkingPath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "a temporary WAV file remains next to the input"),
			)
		} else {
			result.Removed = true
		}
	}
	return nil
}

func checkModelDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: no directory configured", ErrModelStorageMissing)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrModelStorageMissing, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrModelStorageMissing, dir)
	}
	return nil
}

// safeProgress makes a nil callback a no-op and keeps a panicking callback
// from failing the run.
func safeProgress(fn ProgressFunc, logger *slog.Logger) ProgressFunc {
	return func(percent int) {
		if fn == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				logger.Warn("progress callback panicked",
					logging.Int("percent", percent),
					logging.String("panic", fmt.Sprint(r)),
				)
			}
		}()
		fn(percent)
	}
}

func hintFor(kind FailureKind) string {
	switch kind {
	case FailureTranscoderInvocation:
		return "the transcoder rejected the file; check that it is a readable audio or video file"
	case FailureTranscoderOutputMissing:
		return "the transcoder produced no output; check free space and write access next to the input"
	case FailureModelStorageMissing:
		return "create the model directory or set paths.model_dir"
	default:
		return "run voicedecoder doctor and check logs for details"
	}
}
