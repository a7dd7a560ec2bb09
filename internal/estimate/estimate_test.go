package estimate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicedecoder/internal/device"
	"voicedecoder/internal/services"
	"voicedecoder/internal/whisper"
)

type fixedSelector device.Choice

func (f fixedSelector) Select(context.Context) device.Choice { return device.Choice(f) }

const ffmpegBanner = `Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'talk.mp4':
  Metadata:
    major_brand     : isom
  Duration: 00:10:00.00, start: 0.000000, bitrate: 1205 kb/s
  Stream #0:0[0x1](und): Video: h264
At least one output file must be specified
`

func stderrRunner(stderr string) services.CommandRunner {
	return func(context.Context, string, ...string) (services.CommandOutput, error) {
		return services.CommandOutput{Stderr: []byte(stderr)}, errors.New("exit status 1")
	}
}

func mediaFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.mp4")
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	return path
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{"ten minutes", ffmpegBanner, 600, true},
		{"hours and fraction", "  Duration: 01:01:01.50, start: 0", 3661.5, true},
		{"first match wins", "Duration: 00:00:02.00, x\nDuration: 00:00:09.00, y", 2, true},
		{"not available", "  Duration: N/A, bitrate: N/A", 0, false},
		{"no marker", "Stream #0:0: Audio: mp3", 0, false},
		{"empty", "", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDuration([]byte(tc.in))
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ParseDuration = (%v, %v), want (%v, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestProbeDurationIgnoresExitStatus(t *testing.T) {
	var gotArgs []string
	runner := func(_ context.Context, name string, args ...string) (services.CommandOutput, error) {
		gotArgs = append([]string{name}, args...)
		return services.CommandOutput{Stderr: []byte(ffmpegBanner)}, errors.New("exit status 1")
	}
	path := mediaFile(t)
	e := New("/usr/local/bin/ffmpeg", nil, WithCommandRunner(runner))
	got, ok := e.ProbeDuration(context.Background(), path)
	if !ok || got != 600 {
		t.Fatalf("ProbeDuration = (%v, %v)", got, ok)
	}
	if strings.Join(gotArgs, " ") != "/usr/local/bin/ffmpeg -i "+path+" -hide_banner" {
		t.Fatalf("unexpected invocation %v", gotArgs)
	}
}

func TestProbeDurationMissingFile(t *testing.T) {
	called := false
	runner := func(context.Context, string, ...string) (services.CommandOutput, error) {
		called = true
		return services.CommandOutput{}, nil
	}
	e := New("ffmpeg", nil, WithCommandRunner(runner))
	if _, ok := e.ProbeDuration(context.Background(), filepath.Join(t.TempDir(), "absent.mp4")); ok {
		t.Fatal("missing file should be undetermined")
	}
	if called {
		t.Fatal("transcoder should not run for a missing file")
	}
}

func TestEstimateMediumOnCPU(t *testing.T) {
	e := New("ffmpeg", fixedSelector{Kind: device.KindCPU}, WithCommandRunner(stderrRunner(ffmpegBanner)))
	result, err := e.Estimate(context.Background(), mediaFile(t), whisper.SizeMedium)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if result.ProjectedSecs != 610 {
		t.Fatalf("projected = %v, want 610", result.ProjectedSecs)
	}
	if result.Projected() != "00:10:10" {
		t.Fatalf("unexpected clock %q", result.Projected())
	}
}

func TestEstimateProfiles(t *testing.T) {
	cases := []struct {
		size   whisper.Size
		choice device.Choice
		want   float64
	}{
		{whisper.SizeSmall, device.Choice{Kind: device.KindCPU}, 600*0.5 + 5},
		{whisper.SizeLarge, device.Choice{Kind: device.KindCUDA}, 600*2.0*0.5 + 20},
		{whisper.SizeMedium, device.Choice{Kind: device.KindMPS}, 600*1.0*0.5 + 10},
		{whisper.Size("huge"), device.Choice{Kind: device.KindCPU}, 600*2.0 + 10},
		{whisper.SizeMedium, device.Choice{Kind: device.KindCPU, Advisory: device.AdvisoryUnusedAccelerator}, 610},
	}
	for _, tc := range cases {
		e := New("ffmpeg", fixedSelector(tc.choice), WithCommandRunner(stderrRunner(ffmpegBanner)))
		result, err := e.Estimate(context.Background(), mediaFile(t), tc.size)
		if err != nil {
			t.Fatalf("Estimate(%s): %v", tc.size, err)
		}
		if result.ProjectedSecs != tc.want {
			t.Fatalf("Estimate(%s on %s) = %v, want %v", tc.size, tc.choice.Kind, result.ProjectedSecs, tc.want)
		}
	}
}

func TestEstimateUndetermined(t *testing.T) {
	e := New("ffmpeg", fixedSelector{Kind: device.KindCPU}, WithCommandRunner(stderrRunner("no duration here")))
	result, err := e.Estimate(context.Background(), mediaFile(t), whisper.SizeSmall)
	if !errors.Is(err, ErrDurationUndetermined) {
		t.Fatalf("expected ErrDurationUndetermined, got %v", err)
	}
	if msg := Describe(result, err); msg != "Could not determine the file duration" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestDescribe(t *testing.T) {
	msg := Describe(Result{Device: device.Choice{Kind: device.KindCUDA}, ProjectedSecs: 3661}, nil)
	want := "Device: CUDA\nEstimated transcription time: 01:01:01"
	if msg != want {
		t.Fatalf("Describe = %q, want %q", msg, want)
	}
}
