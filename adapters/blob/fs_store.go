// Package blob stores uploaded song media. The filesystem store is the
// production implementation; the memory store is its test twin.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/songclash/songclash/ports"
)

// FSStore keeps song blobs as files under one directory. Callers are
// expected to pass ids already reduced to safe filename components.
type FSStore struct {
	dir string
}

// NewFSStore creates the media directory if needed.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

var _ ports.BlobStore = (*FSStore)(nil)

// Exists reports whether a blob file is present for id.
func (s *FSStore) Exists(ctx context.Context, id string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("blob stat: %w", err)
}

// Store writes a blob file for id, replacing any previous content.
func (s *FSStore) Store(ctx context.Context, id string, data []byte) error {
	if err := os.WriteFile(filepath.Join(s.dir, id), data, 0o644); err != nil {
		return fmt.Errorf("blob write: %w", err)
	}
	return nil
}
