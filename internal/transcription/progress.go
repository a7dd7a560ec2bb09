package transcription

// ProgressFunc receives milestone values. It may be called from the goroutine
// running the pipeline; implementations hand off to their own thread.
type ProgressFunc func(percent int)

// Checkpoints is the milestone schedule. Success values must not decrease.
type Checkpoints struct {
	// Prepared follows conversion and device selection.
	Prepared int
	// Loading is emitted just before the model loads.
	Loading int
	// Loaded is emitted before inference starts.
	Loaded int
	// Done follows assembly.
	Done int
	// Failed is emitted once when the run fails.
	Failed int
}

// DefaultCheckpoints is the 25/50/75/100 schedule with 0 on failure.
var DefaultCheckpoints = Checkpoints{Prepared: 25, Loading: 50, Loaded: 75, Done: 100, Failed: 0}
