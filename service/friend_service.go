package service

import (
	"context"
	"log/slog"

	"github.com/songclash/songclash/core"
	"github.com/songclash/songclash/ports"
	"github.com/songclash/songclash/presence"
)

// FriendService joins the directory's friendship graph with live presence.
type FriendService struct {
	directory ports.Directory
	registry  *presence.Registry
	log       *slog.Logger
}

func NewFriendService(directory ports.Directory, registry *presence.Registry, log *slog.Logger) *FriendService {
	return &FriendService{directory: directory, registry: registry, log: log}
}

// Friends returns the caller's friends keyed by uid, each stamped with its
// current online status. The mapping is computed fresh on every call. A
// directory fault is logged and reported as an empty mapping rather than a
// broken session.
func (s *FriendService) Friends(ctx context.Context, identity *core.Identity) map[string]core.FriendEntry {
	edges, err := s.directory.ListFriendships(ctx, identity.RowID)
	if err != nil {
		s.log.Error("friendship lookup failed", "uid", identity.UID, "err", err)
		return map[string]core.FriendEntry{}
	}

	out := make(map[string]core.FriendEntry, len(edges))
	for _, f := range edges {
		out[f.UID] = core.FriendEntry{
			Username: f.Username,
			Online:   s.registry.IsOnline(f.UID),
		}
	}
	return out
}
