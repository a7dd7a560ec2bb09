package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"voicedecoder/internal/testsupport"
)

func TestEstimatePrintsProjection(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteMedia(t, env.mediaDir, "lecture.mp4", 64)

	out, _, err := runCLI(t, []string{"estimate", input, "--model", "medium"}, env.configPath)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	requireContains(t, out, "Device: CPU")
	requireContains(t, out, "Estimated transcription time: 00:10:10")
}

func TestEstimateJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteMedia(t, env.mediaDir, "lecture.mp4", 64)

	out, _, err := runCLI(t, []string{"estimate", input, "--model", "small", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	var payload estimateOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v (%q)", err, out)
	}
	if payload.DurationSeconds != 600 || payload.ProjectedSeconds != 305 || payload.Projected != "00:05:05" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestEstimateMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"estimate", filepath.Join(env.mediaDir, "absent.mp4")}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var silentErr *silentError
	if !errors.As(err, &silentErr) {
		t.Fatalf("expected silent error, got %v", err)
	}
	requireContains(t, out, "Could not determine the file duration")
}

func TestDeviceCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"device"}, env.configPath)
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	requireContains(t, out, "Device: CPU")

	out, _, err = runCLI(t, []string{"device", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("device --json: %v", err)
	}
	var payload deviceOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Kind != "cpu" || !strings.HasPrefix(payload.Label, "CPU") {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestEstimateMissingFileJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"estimate", filepath.Join(env.mediaDir, "absent.mp4"), "--json"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var payload map[string]string
	if jerr := json.Unmarshal([]byte(out), &payload); jerr != nil {
		t.Fatalf("expected JSON output, got %q: %v", out, jerr)
	}
	if payload["error"] != "Could not determine the file duration" {
		t.Fatalf("unexpected payload %v", payload)
	}
}
