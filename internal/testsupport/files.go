package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with data, making parent directories as needed.
// A nil data slice writes a single byte so the file counts as present.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if data == nil {
		data = []byte{0x42}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
