package normalize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"voicedecoder/internal/logging"
	"voicedecoder/internal/services"
)

var (
	// ErrTranscoderInvocation marks a transcoder run that failed to start or
	// exited unsuccessfully.
	ErrTranscoderInvocation = errors.New("transcoder invocation failed")
	// ErrTranscoderOutputMissing marks a run that looked successful but left no
	// output file behind.
	ErrTranscoderOutputMissing = errors.New("transcoder output missing")
)

// InvocationError carries the transcoder's diagnostic output.
type InvocationError struct {
	Binary string
	Stderr string
	Err    error
}

func (e *InvocationError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Binary, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *InvocationError) Unwrap() []error {
	return []error{ErrTranscoderInvocation, e.Err}
}

// Normalizer runs the transcoder.
type Normalizer struct {
	ffmpeg string
	runner services.CommandRunner
	logger *slog.Logger
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(runner services.CommandRunner) Option {
	return func(n *Normalizer) { n.runner = runner }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) { n.logger = logger }
}

// New builds a Normalizer that invokes the transcoder at ffmpegPath.
func New(ffmpegPath string, opts ...Option) *Normalizer {
	ffmpegPath = strings.TrimSpace(ffmpegPath)
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	n := &Normalizer{ffmpeg: ffmpegPath}
	for _, opt := range opts {
		opt(n)
	}
	n.runner = services.RunnerOrDefault(n.runner)
	n.logger = logging.NewComponentLogger(n.logger, "normalize")
	return n
}

// Binary returns the transcoder path this normalizer invokes.
func (n *Normalizer) Binary() string {
	return n.ffmpeg
}

// Normalize converts ref to mono 16 kHz 16-bit PCM next to the input and
// returns the new path. Success is judged by the output file existing, not by
// the exit status alone. The input is never touched.
func (n *Normalizer) Normalize(ctx context.Context, ref MediaReference) (string, error) {
	output := OutputPathFor(ref.Path)
	args := BuildArgs(ref.Path, output)
	logger := logging.WithContext(ctx, n.logger)
	logger.Debug("converting input",
		logging.String("input", ref.Path),
		logging.String("output", output),
		logging.String("args", strings.Join(args, " ")),
	)

	out, err := n.runner(ctx, n.ffmpeg, args...)
	if err != nil {
		return "", &InvocationError{Binary: n.ffmpeg, Stderr: out.StderrText(), Err: err}
	}

	info, statErr := os.Stat(output)
	if statErr != nil || info.IsDir() {
		if statErr == nil || errors.Is(statErr, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTranscoderOutputMissing, output)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrTranscoderOutputMissing, output, statErr)
	}
	logger.Info("input converted",
		logging.String("output", output),
		logging.Int64("bytes", info.Size()),
	)
	return output, nil
}

// BuildArgs returns the transcoder arguments for converting input to output.
func BuildArgs(input, output string) []string {
	return []string{
		"-i", input,
		"-ac", "1",
		"-ar", "16000",
		"-acodec", "pcm_s16le",
		"-threads", "0",
		"-y",
		output,
	}
}
