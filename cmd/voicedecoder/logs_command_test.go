package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicedecoder/internal/logging"
)

func TestLogsShowsTrailingLines(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	path := filepath.Join(env.cfg.Paths.LogDir, logging.LogFileName)
	if err := os.WriteFile(path, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Contains(out, "first") {
		t.Fatalf("expected only two lines, got %q", out)
	}
	requireContains(t, out, "second\nthird\n")
}
