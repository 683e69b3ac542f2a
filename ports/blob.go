package ports

import "context"

// BlobStore is the media-storage collaborator for uploaded song files.
type BlobStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Store(ctx context.Context, id string, data []byte) error
}
