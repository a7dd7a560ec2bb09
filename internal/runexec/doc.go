// Package runexec executes a single transcription run with the bookkeeping
// shared by the CLI and the service: run identifiers, context-scoped logging,
// content hashing, and history persistence.
//
// History is best effort. A store that cannot be written is logged and the
// run proceeds; only the pipeline's own outcome decides success.
package runexec
