// Package normalize converts arbitrary media into the 16 kHz mono PCM WAV the
// recognizer reads, and decides which inputs need that conversion at all.
//
// The transcoder executable is passed in explicitly; the process environment
// is never modified.
package normalize
