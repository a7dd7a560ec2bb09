// Package history records transcription runs in a SQLite database.
//
// Each run is inserted when it starts and finalized when the pipeline
// returns, so an interrupted run stays visible as "running". Inputs are
// identified by a blake3 content hash, which lets callers find an earlier
// transcript of the same media even after the file was renamed or moved.
package history
