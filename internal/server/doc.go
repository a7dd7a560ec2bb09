// Package server exposes the transcription pipeline as a local HTTP service.
//
// Submissions are queued and drained by a single worker, so at most one run
// is active at a time. Progress milestones and results are pushed to
// WebSocket subscribers on /ws; the REST endpoints report queue state,
// history, device choice, and time estimates.
package server
