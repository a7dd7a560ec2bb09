package whisper

import (
	"context"

	"voicedecoder/internal/device"
)

// Segment is one recognized span of speech. Times are seconds from the start
// of the audio.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the recognizer output for one file. Segments are in the order the
// model produced them.
type Result struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language,omitempty"`
}

// Loader prepares a model handle. storageDir holds the model weights.
type Loader interface {
	Load(ctx context.Context, size Size, kind device.Kind, storageDir string) (Model, error)
}

// Model runs inference on an audio file. reducedPrecision requests half
// precision arithmetic where the device supports it.
type Model interface {
	Transcribe(ctx context.Context, audioPath string, reducedPrecision bool) (Result, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, size Size, kind device.Kind, storageDir string) (Model, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, size Size, kind device.Kind, storageDir string) (Model, error) {
	return f(ctx, size, kind, storageDir)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, audioPath string, reducedPrecision bool) (Result, error)

// Transcribe calls f.
func (f ModelFunc) Transcribe(ctx context.Context, audioPath string, reducedPrecision bool) (Result, error) {
	return f(ctx, audioPath, reducedPrecision)
}
