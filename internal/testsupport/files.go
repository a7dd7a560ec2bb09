package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteMedia creates dir/name filled with size bytes of a repeating pattern
// and returns its path. The content is never decoded; it only needs to exist
// for stat and hashing. A size <= 0 writes a single byte.
func WriteMedia(t testing.TB, dir, name string, size int) string {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = byte('a' + i%26)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
