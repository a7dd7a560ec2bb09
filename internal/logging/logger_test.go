package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicedecoder/internal/config"
	"voicedecoder/internal/logging"
	"voicedecoder/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Warn("disk almost full")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "disk almost full") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")
	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")
	if !strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleHeaderCarriesComponentAndRun(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "0123456789abcdef")
	ctx = services.WithStage(ctx, "inference")
	component := logging.NewComponentLogger(logger, "transcription")
	logging.WithContext(ctx, component).Info("model loaded", logging.String("model", "medium"))

	out := buf.String()
	first := strings.SplitN(out, "\n", 2)[0]
	if !strings.Contains(first, "INFO [transcription] Run 01234567 (inference) – model loaded") {
		t.Fatalf("unexpected header %q", first)
	}
	if !strings.Contains(out, "    - model: medium") {
		t.Fatalf("expected field line, got %q", out)
	}
	if strings.Contains(out, "run_id:") {
		t.Fatalf("run id should be folded into the header at info level, got %q", out)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if payload["msg"] != "json message" || payload["k"] != "v" || payload["level"] != "info" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("visible")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected info threshold, got %q", buf.String())
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WarnWithContext(logger, "probe failed", "device_probe_failed", logging.String(logging.FieldImpact, "runs on cpu"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload[logging.FieldEventType] != "device_probe_failed" {
		t.Fatalf("missing event type: %v", payload)
	}
	if payload[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("missing default hint: %v", payload)
	}
	if payload[logging.FieldImpact] != "runs on cpu" {
		t.Fatalf("impact should not be overwritten: %v", payload)
	}
}

func TestContextFields(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithStage(ctx, "normalize")
	ctx = services.WithRequestID(ctx, "req-xyz")

	got := map[string]string{}
	for _, attr := range logging.ContextFields(ctx) {
		got[attr.Key] = attr.Value.String()
	}
	if got[logging.FieldRunID] != "run-1" || got[logging.FieldStage] != "normalize" || got[logging.FieldCorrelationID] != "req-xyz" {
		t.Fatalf("unexpected context fields %v", got)
	}
	if fields := logging.ContextFields(context.Background()); len(fields) != 0 {
		t.Fatalf("expected no fields, got %v", fields)
	}
}
