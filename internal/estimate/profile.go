package estimate

import "voicedecoder/internal/whisper"

// Profile holds the heuristic parameters for one model size.
type Profile struct {
	// Coefficient is processing seconds per second of media on the cpu.
	Coefficient float64
	// LoadSeconds is the fixed model load overhead.
	LoadSeconds float64
}

var profiles = map[whisper.Size]Profile{
	whisper.SizeSmall:  {Coefficient: 0.5, LoadSeconds: 5},
	whisper.SizeMedium: {Coefficient: 1.0, LoadSeconds: 10},
	whisper.SizeLarge:  {Coefficient: 2.0, LoadSeconds: 20},
}

// DefaultProfile is used for sizes missing from the table.
var DefaultProfile = Profile{Coefficient: 2.0, LoadSeconds: 10}

// AcceleratorMultiplier scales the coefficient when any accelerator is used.
const AcceleratorMultiplier = 0.5

// ProfileFor returns the parameters for size, or DefaultProfile.
func ProfileFor(size whisper.Size) Profile {
	if p, ok := profiles[size]; ok {
		return p
	}
	return DefaultProfile
}
