// Package transcription runs one media file through the full pipeline:
// optional conversion, device selection, model load, inference, and
// paragraph assembly.
//
// Orchestrator.Transcribe never returns an error value and never panics.
// Every outcome is a Result whose Kind says whether and how the run failed;
// Result.Text yields either the dialogue document or the fixed FailureText.
// Progress is reported as coarse milestones through a callback.
//
// Runs are strictly sequential. Two concurrent runs on the same input share
// the converted file name; callers serialize runs (the CLI with a lock file,
// the service with a single worker).
package transcription
