package service

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/songclash/songclash/core"
	"github.com/songclash/songclash/ports"
)

// UploadService gatekeeps song uploads. The allow flag is process-wide
// mutable state toggled administratively; no per-connection override exists.
type UploadService struct {
	blobs ports.BlobStore
	log   *slog.Logger
	allow atomic.Bool
}

func NewUploadService(blobs ports.BlobStore, allowed bool, log *slog.Logger) *UploadService {
	s := &UploadService{blobs: blobs, log: log}
	s.allow.Store(allowed)
	return s
}

// SetAllowed toggles the process-wide upload gate.
func (s *UploadService) SetAllowed(v bool) { s.allow.Store(v) }

// Allowed reports the current gate state.
func (s *UploadService) Allowed() bool { return s.allow.Load() }

// IsUploaded reports whether a blob exists for id. Store faults are logged
// and reported as "not uploaded".
func (s *UploadService) IsUploaded(ctx context.Context, id string) bool {
	safe := SanitizeID(id)
	if safe == "" {
		return false
	}
	ok, err := s.blobs.Exists(ctx, safe)
	if err != nil {
		s.log.Error("blob existence check failed", "id", safe, "err", err)
		return false
	}
	return ok
}

// Upload writes a song blob. When the gate is closed the blob store is never
// touched.
func (s *UploadService) Upload(ctx context.Context, id string, data []byte) error {
	if !s.allow.Load() {
		return core.ErrUploadsDisabled
	}
	safe := SanitizeID(id)
	if safe == "" || len(data) == 0 {
		return core.ErrMalformedRequest
	}
	if err := s.blobs.Store(ctx, safe, data); err != nil {
		s.log.Error("blob store failed", "id", safe, "err", err)
		return err
	}
	return nil
}

// SanitizeID reduces an id to a safe filename component: letters, digits,
// dot, dash and underscore, with no way to traverse out of the media
// directory. Returns "" when nothing safe remains.
func SanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	safe := strings.Trim(b.String(), ".")
	return safe
}
