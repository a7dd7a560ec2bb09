package whisper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"voicedecoder/internal/device"
	"voicedecoder/internal/logging"
	"voicedecoder/internal/services"
)

// DefaultBinary is the openai-whisper entry point.
const DefaultBinary = "whisper"

// CLILoader loads models by resolving the whisper executable. Weights are
// read from the storage directory passed to Load.
type CLILoader struct {
	binary   string
	workDir  string
	language string
	runner   services.CommandRunner
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

// CLIOption customizes a CLILoader.
type CLIOption func(*CLILoader)

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(runner services.CommandRunner) CLIOption {
	return func(l *CLILoader) { l.runner = runner }
}

// WithLookPath replaces executable resolution (for testing).
func WithLookPath(fn func(string) (string, error)) CLIOption {
	return func(l *CLILoader) { l.lookPath = fn }
}

// WithWorkDir sets where per-run output directories are created. The system
// temp directory is used when empty.
func WithWorkDir(dir string) CLIOption {
	return func(l *CLILoader) { l.workDir = dir }
}

// WithLanguage pins the spoken language (two-letter code). Empty lets the
// model detect it.
func WithLanguage(code string) CLIOption {
	return func(l *CLILoader) { l.language = strings.TrimSpace(code) }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) CLIOption {
	return func(l *CLILoader) { l.logger = logger }
}

// NewCLILoader builds a loader around the whisper executable named binary.
func NewCLILoader(binary string, opts ...CLIOption) *CLILoader {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	l := &CLILoader{binary: binary, lookPath: exec.LookPath}
	for _, opt := range opts {
		opt(l)
	}
	l.runner = services.RunnerOrDefault(l.runner)
	l.logger = logging.NewComponentLogger(l.logger, "whisper")
	return l
}

// Load verifies storageDir and resolves the executable. The returned model
// is bound to size and kind.
func (l *CLILoader) Load(ctx context.Context, size Size, kind device.Kind, storageDir string) (Model, error) {
	info, err := os.Stat(storageDir)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", storageDir)
		}
		return nil, services.Wrap(services.ErrConfiguration, "whisper", "load model",
			"model directory unavailable", err)
	}

	executable, err := l.lookPath(l.binary)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisper", "load model",
			fmt.Sprintf("%s not found; install openai-whisper or set tools.whisper", l.binary), err)
	}

	name := size.ModelName()
	weights := filepath.Join(storageDir, name+".pt")
	if _, err := os.Stat(weights); errors.Is(err, fs.ErrNotExist) {
		logging.WarnWithContext(logging.WithContext(ctx, l.logger), "model weights not cached", "model_weights_missing",
			logging.String("model", name),
			logging.String("model_dir", storageDir),
			logging.String(logging.FieldErrorHint, "copy "+name+".pt into the model directory"),
			logging.String(logging.FieldImpact, "the recognizer may try to download weights"),
		)
	}

	return &cliModel{
		loader:     l,
		executable: executable,
		modelName:  name,
		storageDir: storageDir,
		device:     kind,
	}, nil
}

type cliModel struct {
	loader     *CLILoader
	executable string
	modelName  string
	storageDir string
	device     device.Kind
}

// Transcribe runs the recognizer and decodes <outdir>/<stem>.json.
func (m *cliModel) Transcribe(ctx context.Context, audioPath string, reducedPrecision bool) (Result, error) {
	if strings.TrimSpace(audioPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "whisper", "transcribe", "audio path required", nil)
	}
	if m.loader.workDir != "" {
		if err := os.MkdirAll(m.loader.workDir, 0o755); err != nil {
			return Result{}, fmt.Errorf("whisper: ensure work dir: %w", err)
		}
	}
	outputDir, err := os.MkdirTemp(m.loader.workDir, "whisper-")
	if err != nil {
		return Result{}, fmt.Errorf("whisper: create output dir: %w", err)
	}
	defer os.RemoveAll(outputDir)

	language := m.loader.language
	if code, ok := LanguageFromContext(ctx); ok {
		language = code
	}
	args := m.buildArgs(audioPath, outputDir, language, reducedPrecision)
	logger := logging.WithContext(ctx, m.loader.logger)
	logger.Debug("running recognizer",
		logging.String("executable", m.executable),
		logging.String("args", strings.Join(args, " ")),
	)

	out, err := m.loader.runner(ctx, m.executable, args...)
	if err != nil {
		msg := "recognizer failed"
		if stderr := out.StderrText(); stderr != "" {
			msg = msg + ": " + lastLine(stderr)
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "whisper", "transcribe", msg, err)
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	result, err := LoadSegments(filepath.Join(outputDir, stem+".json"))
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "whisper", "read output", "recognizer produced no usable json", err)
	}
	logger.Debug("recognizer finished",
		logging.Int("segments", len(result.Segments)),
		logging.String("language", result.Language),
	)
	return result, nil
}

func (m *cliModel) buildArgs(audioPath, outputDir, language string, reducedPrecision bool) []string {
	fp16 := "False"
	if reducedPrecision {
		fp16 = "True"
	}
	args := []string{
		audioPath,
		"--model", m.modelName,
		"--model_dir", m.storageDir,
		"--device", m.device.String(),
		"--fp16", fp16,
		"--output_format", "json",
		"--output_dir", outputDir,
		"--verbose", "False",
	}
	if language != "" {
		args = append(args, "--language", language)
	}
	return args
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
