// Package services defines shared utilities consumed by the transcription
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification uniform across packages and the CLI exit status.
//   - A CommandRunner abstraction so ffmpeg, whisper, and probe invocations
//     can be replaced in tests.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
