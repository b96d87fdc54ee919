package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// CreateTableDir creates a new, empty table directory under root, named by
// a random UUID, and returns its path.
func CreateTableDir(root string) (string, error) {
	// Generate an id
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	// Make the directory
	p := filepath.Join(root, id.String())
	if err := os.MkdirAll(p, 0755); err != nil {
		return "", fmt.Errorf("failed to create sst dir=%q: %w", p, err)
	}
	return p, nil
}

// IsTableDir reports whether dir holds both table files.
func IsTableDir(dir string) bool {
	for _, name := range []string{IndexFileName, ValuesFileName} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.Mode().IsRegular() {
			return false
		}
	}
	return true
}
