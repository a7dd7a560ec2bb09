package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"voicedecoder/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfgVal.Paths.ModelDir = filepath.Join(base, "models")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithModel sets the default model size on the test config.
func WithModel(size string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.Model = size
	}
}

// WithServerToken sets the bearer token required by the service.
func WithServerToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.Token = token
	}
}

// WithModelDir creates the model directory so model-storage checks pass.
func WithModelDir() ConfigOption {
	return func(b *configBuilder) {
		if err := os.MkdirAll(b.cfg.Paths.ModelDir, 0o755); err != nil {
			b.t.Fatalf("mkdir model dir: %v", err)
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names into a
// temp bin dir and points the config's tool paths at them. If names is empty,
// the default voicedecoder external binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "whisper"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
			switch name {
			case "ffmpeg":
				b.cfg.Tools.FFmpeg = target
			case "ffprobe":
				b.cfg.Tools.FFprobe = target
			case "whisper":
				b.cfg.Tools.Whisper = target
			case "nvidia-smi":
				b.cfg.Tools.NvidiaSMI = target
			}
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
