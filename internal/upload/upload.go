// Package upload persists client files under the uploads directory and maps
// them to public URLs served by the static file route.
package upload

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes uploaded files to disk.
type Store struct {
	dir     string
	baseURL string
}

func NewStore(dir, baseURL string) *Store {
	return &Store{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Allowed reports whether the filename carries one of the given extensions.
func Allowed(filename string, extensions ...string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	for _, allowed := range extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Ext returns the lower-cased extension of filename without the dot.
func Ext(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Save writes data under folder with a uuid-prefixed name derived from the
// original filename and returns the path relative to the uploads directory.
func (s *Store) Save(folder, filename string, data []byte) (string, error) {
	base := filepath.Base(filename)
	unique := fmt.Sprintf("%s_%s", strings.ReplaceAll(uuid.New().String(), "-", ""), base)

	dir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, unique), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return path.Join(folder, unique), nil
}

// URL maps a relative upload path to its public URL.
func (s *Store) URL(relPath string) string {
	return fmt.Sprintf("%s/static/uploads/%s", s.baseURL, relPath)
}
