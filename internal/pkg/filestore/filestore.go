package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes uploaded files into a single local directory under generated
// unique names, keeping the sanitized original name only as metadata.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes data under a fresh uuid-based name that preserves the original
// extension. Returns the server-local path and bytes written.
func (s *Store) Save(originalName string, data []byte) (path string, size int64, err error) {
	ext := filepath.Ext(SanitizeFilename(originalName))
	stored := uuid.New().String() + ext
	path = filepath.Join(s.dir, stored)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("write upload failed: %w", err)
	}
	return path, int64(len(data)), nil
}

// SanitizeFilename strips path components and anything outside a conservative
// character set, so a client-supplied name can never escape the upload dir.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}
