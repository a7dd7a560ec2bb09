// Package estimate projects how long a transcription will take.
//
// The projection is a linear heuristic over the media duration: a per-model
// coefficient, halved on any accelerator, plus a fixed model load time. It is
// approximate and has not been benchmarked against real hardware.
package estimate
