// Package testutil builds throwaway containers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

// WriteContainer writes a .vos container into a fresh temp directory and
// returns its path. Keys ending in "/" become directory records; every
// other key becomes a file holding the mapped content. Members are written
// in key order so the result is deterministic.
func WriteContainer(t testing.TB, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.vos")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer f.Close()

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	zw := zip.NewWriter(f)
	for _, key := range keys {
		w, err := zw.Create(key)
		if err != nil {
			t.Fatalf("Failed to add %q: %v", key, err)
		}
		if strings.HasSuffix(key, "/") {
			continue
		}
		if _, err := w.Write([]byte(entries[key])); err != nil {
			t.Fatalf("Failed to write %q: %v", key, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to finish container: %v", err)
	}
	return path
}
