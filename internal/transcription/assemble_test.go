package transcription

import (
	"strings"
	"testing"

	"voicedecoder/internal/whisper"
)

func TestAssembleInsertsBlankLineOnGap(t *testing.T) {
	segments := []whisper.Segment{{Start: 0, End: 1, Text: "a"}, {Start: 3, End: 4, Text: "b"}}
	got := Assemble(segments, DefaultSilenceThreshold)
	want := "[0.00] - [0.01] a\n\n[0.03] - [0.04] b\n"
	if got != want {
		t.Fatalf("Assemble = %q, want %q", got, want)
	}
}

func TestAssembleNoGapNoBlankLine(t *testing.T) {
	segments := []whisper.Segment{
		{Start: 0, End: 2.5, Text: " one"},
		{Start: 3.5, End: 5, Text: " two"},
		{Start: 6, End: 8, Text: " three"},
	}
	got := Assemble(segments, DefaultSilenceThreshold)
	if strings.Contains(got, "\n\n") {
		t.Fatalf("expected no blank lines, got %q", got)
	}
	if strings.Count(got, "\n") != 3 {
		t.Fatalf("expected three lines, got %q", got)
	}
	if !strings.HasPrefix(got, "[0.00] - [0.02]  one\n") {
		t.Fatalf("text should be written verbatim after one space, got %q", got)
	}
}

func TestAssembleLeadingSilenceStartsWithBlankLine(t *testing.T) {
	got := Assemble([]whisper.Segment{{Start: 5, End: 6, Text: "late"}}, DefaultSilenceThreshold)
	if got != "\n[0.05] - [0.06] late\n" {
		t.Fatalf("unexpected document %q", got)
	}
}

func TestAssembleExactThresholdIsNotAGap(t *testing.T) {
	segments := []whisper.Segment{{Start: 0, End: 1, Text: "a"}, {Start: 3, End: 4, Text: "b"}}
	if got := Assemble(segments, 2); strings.Contains(got, "\n\n") {
		t.Fatalf("a gap equal to the threshold must not split paragraphs, got %q", got)
	}
}

func TestAssembleHoursAndEmpty(t *testing.T) {
	if got := Assemble(nil, DefaultSilenceThreshold); got != "" {
		t.Fatalf("expected empty document, got %q", got)
	}
	got := Assemble([]whisper.Segment{{Start: 3600, End: 3661, Text: "x"}}, 1e9)
	if got != "[1.00.00] - [1.01.01] x\n" {
		t.Fatalf("unexpected document %q", got)
	}
}
