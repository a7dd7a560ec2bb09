package deps

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"voicedecoder/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func TestCheckBinariesRecordsResolvedPath(t *testing.T) {
	lookPath := func(name string) (string, error) {
		if name == "ffmpeg" {
			return "/opt/bin/ffmpeg", nil
		}
		return "", errors.New("not found")
	}
	results := checkBinaries([]Requirement{{Name: "FFmpeg", Command: "ffmpeg"}}, lookPath)
	if results[0].Command != "/opt/bin/ffmpeg" {
		t.Fatalf("expected resolved path, got %q", results[0].Command)
	}
}

func TestRequirementsFollowConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.Whisper = "/custom/whisper"
	reqs := Requirements(&cfg)
	if len(reqs) != 4 {
		t.Fatalf("expected 4 requirements, got %d", len(reqs))
	}
	if reqs[2].Command != "/custom/whisper" || reqs[2].Optional {
		t.Fatalf("unexpected whisper requirement %#v", reqs[2])
	}
	if Requirements(nil) != nil {
		t.Fatal("expected nil for nil config")
	}
}

func TestMissingRequiredSkipsOptional(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: true},
		{Name: "Whisper"},
		{Name: "nvidia-smi", Optional: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "Whisper" {
		t.Fatalf("unexpected missing list %v", missing)
	}
}
