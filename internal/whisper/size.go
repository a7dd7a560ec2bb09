package whisper

import (
	"fmt"
	"strings"

	"voicedecoder/internal/services"
)

// Size selects a model capacity tier.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Sizes lists the supported tiers, smallest first.
func Sizes() []Size {
	return []Size{SizeSmall, SizeMedium, SizeLarge}
}

// ParseSize accepts a tier name case-insensitively. "large-v3" is accepted as
// an alias for SizeLarge.
func ParseSize(value string) (Size, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "small":
		return SizeSmall, nil
	case "medium":
		return SizeMedium, nil
	case "large", largeModelName:
		return SizeLarge, nil
	default:
		return "", services.Wrap(services.ErrValidation, "whisper", "parse size",
			fmt.Sprintf("unknown model size %q (want small, medium, or large)", value), nil)
	}
}

const largeModelName = "large-v3"

// ModelName returns the checkpoint name the recognizer expects.
func (s Size) ModelName() string {
	if s == SizeLarge {
		return largeModelName
	}
	return string(s)
}

func (s Size) String() string { return string(s) }
