// Package fileutil tracks files written during one operation so that a
// failure part-way through leaves no partial output behind.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// Set writes files into a directory and remembers every path it wrote.
// Discard removes them all; call it on any failure path so a half-finished
// issuance is never mistaken for valid output.
type Set struct {
	dir     string
	written []string
}

// NewSet returns a Set rooted at dir. The directory must already exist.
func NewSet(dir string) *Set {
	return &Set{dir: dir}
}

// Path returns the full path for name within the set's directory.
func (s *Set) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Write writes data to name within the set's directory with the given
// permissions and records the path for a later Discard.
func (s *Set) Write(name string, data []byte, perm os.FileMode) (string, error) {
	path := s.Path(name)
	if err := os.WriteFile(path, data, perm); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	s.written = append(s.written, path)
	return path, nil
}

// Written returns the paths written so far, in order.
func (s *Set) Written() []string {
	return append([]string(nil), s.written...)
}

// Discard removes every file written through this set. Removal errors are
// ignored; the files may already be gone.
func (s *Set) Discard() {
	for _, path := range s.written {
		os.Remove(path)
	}
	s.written = nil
}
