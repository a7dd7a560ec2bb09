package transcription

import (
	"errors"

	"voicedecoder/internal/device"
	"voicedecoder/internal/media/normalize"
	"voicedecoder/internal/whisper"
)

// FailureText is returned by Result.Text for any failed run.
const FailureText = "Error while processing the file"

// ErrModelStorageMissing reports that the model directory does not exist.
var ErrModelStorageMissing = errors.New("model storage directory missing")

// FailureKind classifies a failed run.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureTranscoderInvocation
	FailureTranscoderOutputMissing
	FailureModelStorageMissing
	FailureUnclassified
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureTranscoderInvocation:
		return "transcoder_invocation"
	case FailureTranscoderOutputMissing:
		return "transcoder_output_missing"
	case FailureModelStorageMissing:
		return "model_storage_missing"
	default:
		return "unclassified"
	}
}

// Result is the outcome of one run.
type Result struct {
	Document string
	Device   device.Choice
	// WorkingPath is the file the model read: the input itself, or the
	// converted WAV when Converted is true.
	WorkingPath string
	Converted   bool
	// Removed is true when the converted file was deleted after the run.
	Removed  bool
	Segments []whisper.Segment
	Err      error
}

// Kind classifies Err.
func (r Result) Kind() FailureKind {
	return Classify(r.Err)
}

// OK reports whether the run produced a document.
func (r Result) OK() bool {
	return r.Err == nil
}

// Text returns the document, or FailureText when the run failed.
func (r Result) Text() string {
	if r.Err != nil {
		return FailureText
	}
	return r.Document
}

// Classify maps an error to its FailureKind.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, normalize.ErrTranscoderInvocation):
		return FailureTranscoderInvocation
	case errors.Is(err, normalize.ErrTranscoderOutputMissing):
		return FailureTranscoderOutputMissing
	case errors.Is(err, ErrModelStorageMissing):
		return FailureModelStorageMissing
	default:
		return FailureUnclassified
	}
}
