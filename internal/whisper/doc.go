// Package whisper is the boundary to the speech-recognition model.
//
// A Loader prepares a Model for a given size and compute device; the Model
// turns an audio file into ordered Segments. CLILoader backs both with the
// openai-whisper command-line program, pointing it at a local model
// directory and decoding its JSON output.
package whisper
