package blob

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSavePathConvention(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	rel, err := store.Save(CollectionDonations, 42, ".jpg", []byte("photo bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !strings.HasPrefix(rel, "donations/42/") {
		t.Errorf("expected path under donations/42/, got %q", rel)
	}
	if !strings.HasSuffix(rel, ".jpg") {
		t.Errorf("expected .jpg suffix, got %q", rel)
	}

	data, err := os.ReadFile(filepath.Join(store.Root(), filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading saved blob: %v", err)
	}
	if string(data) != "photo bytes" {
		t.Errorf("expected saved content, got %q", string(data))
	}
}

func TestSaveExtensionNormalized(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	rel, err := store.Save(CollectionProducts, 1, "jpg", []byte("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(rel, ".jpg") {
		t.Errorf("expected normalized .jpg suffix, got %q", rel)
	}
}

func TestRemove(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	rel, _ := store.Save(CollectionDonations, 1, ".jpg", []byte("x"))
	if err := store.Remove(rel); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, err := os.Stat(filepath.Join(store.Root(), filepath.FromSlash(rel))); !os.IsNotExist(err) {
		t.Error("expected blob to be gone after Remove")
	}

	// Removing again is not an error.
	if err := store.Remove(rel); err != nil {
		t.Errorf("Remove of missing blob: %v", err)
	}
}

func TestRemoveRefusesEscape(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	if err := store.Remove("../../etc/passwd"); err == nil {
		t.Error("expected error for path escaping the store root")
	}
}
