package normalize

import (
	"path/filepath"
	"strings"
)

// Category tells whether an input can be handed to the recognizer as is.
type Category int

const (
	CategoryNeedsNormalization Category = iota
	CategoryDirect
)

func (c Category) String() string {
	if c == CategoryDirect {
		return "direct"
	}
	return "needs_normalization"
}

// MediaReference is a resolved input path. It is not modified after Resolve.
type MediaReference struct {
	Path      string
	Extension string
	Category  Category
}

// Direct reports whether the recognizer can read the file without conversion.
func (r MediaReference) Direct() bool {
	return r.Category == CategoryDirect
}

// Resolve classifies path by its lowercase extension. directFormats entries
// are compared case-insensitively and may omit the leading dot.
func Resolve(path string, directFormats []string) MediaReference {
	ext := strings.ToLower(filepath.Ext(path))
	ref := MediaReference{Path: path, Extension: ext, Category: CategoryNeedsNormalization}
	if ext == "" {
		return ref
	}
	for _, format := range directFormats {
		candidate := strings.ToLower(strings.TrimSpace(format))
		if !strings.HasPrefix(candidate, ".") {
			candidate = "." + candidate
		}
		if candidate == ext {
			ref.Category = CategoryDirect
			break
		}
	}
	return ref
}

// OutputPathFor returns the sibling WAV path Normalize writes for input.
// The name is deterministic, so repeated runs overwrite the same file.
func OutputPathFor(input string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(filepath.Dir(input), OutputPrefix+stem+".wav")
}

// OutputPrefix marks converted files.
const OutputPrefix = "convert_file_"
