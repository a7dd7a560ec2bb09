package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"voicedecoder/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "voicedecoder", "config.toml"); resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "voicedecoder"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if want := filepath.Join(tempHome, ".cache", "whisper"); cfg.Paths.ModelDir != want {
		t.Fatalf("unexpected model dir: got %q want %q", cfg.Paths.ModelDir, want)
	}
	if cfg.Transcription.Model != "medium" {
		t.Fatalf("unexpected default model %q", cfg.Transcription.Model)
	}
	if cfg.Transcription.SilenceThreshold != 1.2 {
		t.Fatalf("unexpected silence threshold %v", cfg.Transcription.SilenceThreshold)
	}
	if len(cfg.Transcription.DirectFormats) != 6 {
		t.Fatalf("unexpected direct formats %v", cfg.Transcription.DirectFormats)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" {
		t.Fatalf("bare tool names should stay unresolved, got %q", cfg.Tools.FFmpeg)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.HistoryPath() != filepath.Join(cfg.Paths.StateDir, "history.db") {
		t.Fatalf("unexpected history path %q", cfg.HistoryPath())
	}
}

func TestLoadCustomFileNormalizesValues(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
state_dir = "~/state"
model_dir = "~/models"

[tools]
ffmpeg = "~/bin/ffmpeg"

[transcription]
model = " LARGE "
direct_formats = ["MP3", ".wav", "mp3"]
language = "de"

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected existing file at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, "state") {
		t.Fatalf("unexpected state dir %q", cfg.Paths.StateDir)
	}
	if cfg.Tools.FFmpeg != filepath.Join(tempHome, "bin", "ffmpeg") {
		t.Fatalf("unexpected ffmpeg path %q", cfg.Tools.FFmpeg)
	}
	if cfg.Transcription.Model != "large" {
		t.Fatalf("unexpected model %q", cfg.Transcription.Model)
	}
	if got := strings.Join(cfg.Transcription.DirectFormats, ","); got != ".mp3,.wav" {
		t.Fatalf("unexpected direct formats %q", got)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	models := t.TempDir()
	t.Setenv(config.EnvFFmpeg, "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv(config.EnvModelDir, models)
	t.Setenv(config.EnvServerToken, "secret")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("ffmpeg override ignored: %q", cfg.Tools.FFmpeg)
	}
	if cfg.Paths.ModelDir != models {
		t.Fatalf("model dir override ignored: %q", cfg.Paths.ModelDir)
	}
	if cfg.Server.Token != "secret" {
		t.Fatalf("token override ignored: %q", cfg.Server.Token)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cases := map[string]string{
		"unknown model":      "[transcription]\nmodel = \"tiny\"\n",
		"negative silence":   "[transcription]\nsilence_threshold = -1.0\n",
		"bad language":       "[transcription]\nlanguage = \"not a tag!\"\n",
		"bad log format":     "[logging]\nformat = \"xml\"\n",
		"unknown key":        "[transcription]\nmodle = \"small\"\n",
		"malformed document": "[paths\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSampleConfigRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	for _, section := range []string{"paths", "tools", "transcription", "server", "history", "logging"} {
		if _, ok := raw[section]; !ok {
			t.Fatalf("sample missing [%s] section", section)
		}
	}

	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ModelDir = filepath.Join(base, "models")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
	if _, err := os.Stat(cfg.Paths.ModelDir); !os.IsNotExist(err) {
		t.Fatalf("model dir must not be created, stat err = %v", err)
	}
}
