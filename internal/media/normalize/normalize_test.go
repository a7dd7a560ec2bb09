package normalize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicedecoder/internal/config"
	"voicedecoder/internal/services"
)

func TestResolve(t *testing.T) {
	formats := config.DefaultDirectFormats
	cases := map[string]Category{
		"/in/talk.MP3":     CategoryDirect,
		"/in/talk.m4a":     CategoryDirect,
		"/in/lecture.mp4":  CategoryNeedsNormalization,
		"/in/noextension":  CategoryNeedsNormalization,
		"/in/archive.tar.": CategoryNeedsNormalization,
	}
	for path, want := range cases {
		ref := Resolve(path, formats)
		if ref.Category != want {
			t.Fatalf("Resolve(%q) category = %s, want %s", path, ref.Category, want)
		}
		if ref.Path != path {
			t.Fatalf("Resolve should keep the path, got %q", ref.Path)
		}
	}
	if ref := Resolve("clip.webm", []string{"WEBM"}); !ref.Direct() || ref.Extension != ".webm" {
		t.Fatalf("custom format without dot should match, got %+v", ref)
	}
}

func TestOutputPathFor(t *testing.T) {
	got := OutputPathFor("/data/meet/standup.mkv")
	if got != "/data/meet/convert_file_standup.wav" {
		t.Fatalf("unexpected output path %q", got)
	}
}

func writingRunner(t *testing.T, calls *[][]string) services.CommandRunner {
	t.Helper()
	return func(_ context.Context, name string, args ...string) (services.CommandOutput, error) {
		*calls = append(*calls, append([]string{name}, args...))
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("RIFF"+strings.Repeat("x", len(*calls))), 0o644); err != nil {
			t.Fatalf("write output: %v", err)
		}
		return services.CommandOutput{}, nil
	}
}

func TestNormalizeSuccess(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "lecture.mp4")
	if err := os.WriteFile(input, []byte("video"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	var calls [][]string
	n := New("/opt/ffmpeg/bin/ffmpeg", WithCommandRunner(writingRunner(t, &calls)))

	out, err := n.Normalize(context.Background(), Resolve(input, nil))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if out != filepath.Join(dir, "convert_file_lecture.wav") {
		t.Fatalf("unexpected output %q", out)
	}
	want := []string{"/opt/ffmpeg/bin/ffmpeg", "-i", input, "-ac", "1", "-ar", "16000", "-acodec", "pcm_s16le", "-threads", "0", "-y", out}
	if strings.Join(calls[0], " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected invocation:\n got %v\nwant %v", calls[0], want)
	}
	if _, err := os.Stat(input); err != nil {
		t.Fatalf("input must be left in place: %v", err)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "call.mkv")
	var calls [][]string
	n := New("ffmpeg", WithCommandRunner(writingRunner(t, &calls)))

	first, err := n.Normalize(context.Background(), Resolve(input, nil))
	if err != nil {
		t.Fatalf("first Normalize: %v", err)
	}
	second, err := n.Normalize(context.Background(), Resolve(input, nil))
	if err != nil {
		t.Fatalf("second Normalize: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same target, got %q and %q", first, second)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one converted file, found %d", len(entries))
	}
}

func TestNormalizeInvocationFailureCarriesStderr(t *testing.T) {
	runner := func(context.Context, string, ...string) (services.CommandOutput, error) {
		return services.CommandOutput{Stderr: []byte("input.xyz: Invalid data found when processing input\n")}, errors.New("exit status 1")
	}
	n := New("ffmpeg", WithCommandRunner(runner))
	_, err := n.Normalize(context.Background(), Resolve(filepath.Join(t.TempDir(), "input.xyz"), nil))
	if !errors.Is(err, ErrTranscoderInvocation) {
		t.Fatalf("expected invocation failure, got %v", err)
	}
	var invErr *InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected *InvocationError, got %T", err)
	}
	if !strings.Contains(invErr.Stderr, "Invalid data found") {
		t.Fatalf("stderr not captured: %q", invErr.Stderr)
	}
	if errors.Is(err, ErrTranscoderOutputMissing) {
		t.Fatal("invocation failure must not be reported as missing output")
	}
}

func TestNormalizeOutputMissing(t *testing.T) {
	runner := func(context.Context, string, ...string) (services.CommandOutput, error) {
		return services.CommandOutput{}, nil
	}
	n := New("ffmpeg", WithCommandRunner(runner))
	_, err := n.Normalize(context.Background(), Resolve(filepath.Join(t.TempDir(), "clip.avi"), nil))
	if !errors.Is(err, ErrTranscoderOutputMissing) {
		t.Fatalf("expected output-missing failure, got %v", err)
	}
	if errors.Is(err, ErrTranscoderInvocation) {
		t.Fatal("output-missing must be distinct from invocation failure")
	}
}
