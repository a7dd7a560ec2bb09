package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"voicedecoder/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Whisper", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Whisper:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Progress", statusOK, "Done", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestPreflightLines(t *testing.T) {
	results := []preflight.Result{
		{Name: "FFmpeg", Passed: false, Detail: "not found"},
		{Name: "Whisper", Passed: true, Detail: "/usr/bin/whisper"},
		{Name: "nvidia-smi", Passed: false, Optional: true, Detail: "not found (optional)"},
	}
	lines := preflightLines(results, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[ERROR] 1 of 2 required checks failed") {
		t.Fatalf("expected summary line first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] not found") {
		t.Fatalf("expected error detail, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[OK] /usr/bin/whisper") {
		t.Fatalf("expected ok detail, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "[WARN] not found (optional)") {
		t.Fatalf("expected warn detail, got %q", lines[3])
	}
}

func TestPreflightLinesAllPassed(t *testing.T) {
	lines := preflightLines([]preflight.Result{{Name: "FFmpeg", Passed: true}}, false)
	if !strings.Contains(lines[0], "[OK] 1 checks passed") {
		t.Fatalf("unexpected summary %q", lines[0])
	}
}

func TestRenderProgressLine(t *testing.T) {
	if got := renderProgressLine(100, false); !strings.Contains(got, "[OK]") {
		t.Fatalf("expected ok status at 100%%, got %q", got)
	}
	if got := renderProgressLine(0, false); !strings.Contains(got, "[ERROR]") {
		t.Fatalf("expected error status at 0%%, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
