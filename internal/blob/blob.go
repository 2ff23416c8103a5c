// Package blob persists uploaded images on the filesystem. Stored paths
// follow <collection>/<owner-id>/<uuid>.<ext> and are saved relative to
// the store root; turning a path into a URL is a presentation concern.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Collections.
const (
	CollectionDonations = "donations"
	CollectionProducts  = "products"
)

// Store is a filesystem-backed blob store rooted at a single directory.
type Store struct {
	root string
}

// NewStore creates the root directory if needed and returns the store.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Save writes data under <collection>/<owner-id>/<uuid><ext> and returns
// the relative path (forward slashes) for persistence.
func (s *Store) Save(collection string, ownerID int64, ext string, data []byte) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	rel := filepath.Join(collection, strconv.FormatInt(ownerID, 10), uuid.NewString()+ext)
	full := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating blob directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}

	return filepath.ToSlash(rel), nil
}

// Remove deletes a stored blob by its relative path. Paths escaping the
// store root are refused.
func (s *Store) Remove(rel string) error {
	full := filepath.Join(s.root, filepath.FromSlash(rel))

	cleanRoot := filepath.Clean(s.root) + string(filepath.Separator)
	if !strings.HasPrefix(filepath.Clean(full), cleanRoot) {
		return fmt.Errorf("path %q escapes blob root", rel)
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing blob: %w", err)
	}
	return nil
}
