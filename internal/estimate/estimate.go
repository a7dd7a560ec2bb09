package estimate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"voicedecoder/internal/device"
	"voicedecoder/internal/logging"
	"voicedecoder/internal/services"
	"voicedecoder/internal/timefmt"
	"voicedecoder/internal/whisper"
)

// ErrDurationUndetermined reports that the media length could not be read.
var ErrDurationUndetermined = errors.New("could not determine the file duration")

// DeviceSelector picks the compute device for a run.
type DeviceSelector interface {
	Select(ctx context.Context) device.Choice
}

// Result is a projection for one file.
type Result struct {
	Device          device.Choice `json:"device"`
	Size            whisper.Size  `json:"model"`
	DurationSeconds float64       `json:"duration_seconds"`
	ProjectedSecs   float64       `json:"projected_seconds"`
}

// Projected returns the estimate formatted as HH:MM:SS.
func (r Result) Projected() string {
	return timefmt.Clock(r.ProjectedSecs)
}

// Estimator probes media and applies the model profile table.
type Estimator struct {
	ffmpeg   string
	selector DeviceSelector
	runner   services.CommandRunner
	logger   *slog.Logger
}

// Option customizes an Estimator.
type Option func(*Estimator)

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(runner services.CommandRunner) Option {
	return func(e *Estimator) { e.runner = runner }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Estimator) { e.logger = logger }
}

// New builds an Estimator that probes with the transcoder at ffmpegPath.
func New(ffmpegPath string, selector DeviceSelector, opts ...Option) *Estimator {
	ffmpegPath = strings.TrimSpace(ffmpegPath)
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	e := &Estimator{ffmpeg: ffmpegPath, selector: selector}
	for _, opt := range opts {
		opt(e)
	}
	e.runner = services.RunnerOrDefault(e.runner)
	e.logger = logging.NewComponentLogger(e.logger, "estimate")
	return e
}

// ProbeDuration asks the transcoder to describe path without encoding and
// reads the duration from its diagnostics. The exit status is ignored: the
// transcoder always complains when no output is given. A missing file or
// missing marker yields false.
func (e *Estimator) ProbeDuration(ctx context.Context, path string) (float64, bool) {
	if _, err := os.Stat(path); err != nil {
		return 0, false
	}
	out, _ := e.runner(ctx, e.ffmpeg, "-i", path, "-hide_banner")
	seconds, ok := ParseDuration(out.Stderr)
	if !ok {
		logging.WithContext(ctx, e.logger).Debug("duration marker not found",
			logging.String("path", path),
		)
	}
	return seconds, ok
}

// Estimate projects processing time as
// duration * coefficient * accel + load, where accel is 0.5 on any
// accelerator and 1 on the cpu.
func (e *Estimator) Estimate(ctx context.Context, path string, size whisper.Size) (Result, error) {
	duration, ok := e.ProbeDuration(ctx, path)
	if !ok {
		return Result{}, ErrDurationUndetermined
	}

	choice := device.Choice{Kind: device.KindCPU}
	if e.selector != nil {
		choice = e.selector.Select(ctx)
	}
	profile := ProfileFor(size)
	accel := 1.0
	if choice.Accelerated() {
		accel = AcceleratorMultiplier
	}
	result := Result{
		Device:          choice,
		Size:            size,
		DurationSeconds: duration,
		ProjectedSecs:   duration*profile.Coefficient*accel + profile.LoadSeconds,
	}
	logging.WithContext(ctx, e.logger).Debug("estimate computed",
		logging.String("path", path),
		logging.String("model", string(size)),
		logging.String("device", choice.Kind.String()),
		logging.Float64("duration_seconds", duration),
		logging.Float64("projected_seconds", result.ProjectedSecs),
	)
	return result, nil
}

// Describe renders an estimate, or the reason there is none, for people.
func Describe(result Result, err error) string {
	if err != nil {
		if errors.Is(err, ErrDurationUndetermined) {
			return "Could not determine the file duration"
		}
		return "Estimate unavailable"
	}
	return fmt.Sprintf("Device: %s\nEstimated transcription time: %s", result.Device.Label(), result.Projected())
}
