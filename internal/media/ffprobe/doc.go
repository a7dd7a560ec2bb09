// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and returns a Result with stream and container
// metadata. The probe command uses it to show what a file contains before
// committing to a transcription: whether there is any audio at all, how many
// tracks, and the container's own duration.
package ffprobe
