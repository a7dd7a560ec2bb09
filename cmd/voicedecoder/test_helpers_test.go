package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"voicedecoder/internal/config"
	"voicedecoder/internal/testsupport"
)

// stubWhisper writes one segment to <output_dir>/<stem>.json like the real
// recognizer does.
const stubWhisper = `#!/bin/sh
audio="$1"
shift
out=""
while [ $# -gt 0 ]; do
	if [ "$1" = "--output_dir" ]; then
		out="$2"
	fi
	shift
done
stem=$(basename "$audio")
stem="${stem%.*}"
printf '{"text":" Hello world.","language":"en","segments":[{"start":0.0,"end":1.5,"text":" Hello world."}]}' > "$out/$stem.json"
`

// stubFFmpeg reports a ten minute duration on stderr and exits non-zero,
// like ffmpeg does when no output is given.
const stubFFmpeg = `#!/bin/sh
echo "  Duration: 00:10:00.00, start: 0.000000, bitrate: 128 kb/s" >&2
exit 1
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	mediaDir   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	for _, key := range []string{config.EnvFFmpeg, config.EnvFFprobe, config.EnvWhisper, config.EnvModelDir, config.EnvServerToken} {
		t.Setenv(key, "")
	}

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	binDir := filepath.Join(base, "cli-bin")
	cfg.Tools.Whisper = writeScript(t, binDir, "whisper", stubWhisper)
	cfg.Tools.FFmpeg = writeScript(t, binDir, "ffmpeg", stubFFmpeg)
	cfg.Tools.NvidiaSMI = filepath.Join(binDir, "missing-nvidia-smi")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		mediaDir:   filepath.Join(base, "media"),
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
