// Package presence tracks which identities currently have live,
// authenticated connections. It is the single source of truth for online
// status and owns the "deliver to all live connections of identity X"
// primitive used by the challenge relays.
package presence

import (
	"hash/fnv"
	"sync"

	"github.com/songclash/songclash/ports"
)

const shardCount = 32

type shard struct {
	mu    sync.RWMutex
	links map[string]map[ports.Link]struct{}
}

// Registry maps identity uid to the set of live connections for that
// identity. The map is striped so presence updates for unrelated identities
// do not contend on one lock. Invariant: a uid is present iff its set is
// non-empty.
type Registry struct {
	shards [shardCount]*shard
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &shard{links: make(map[string]map[ports.Link]struct{})}
	}
	return r
}

func (r *Registry) shardFor(uid string) *shard {
	h := fnv.New32a()
	h.Write([]byte(uid))
	return r.shards[h.Sum32()%shardCount]
}

// Register adds a connection for uid. Idempotent per (uid, link) pair.
// Reports whether the identity went from offline to online.
func (r *Registry) Register(uid string, link ports.Link) (cameOnline bool) {
	s := r.shardFor(uid)
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.links[uid]
	if !ok {
		set = make(map[ports.Link]struct{})
		s.links[uid] = set
	}
	set[link] = struct{}{}
	return !ok
}

// Unregister removes a connection for uid. A no-op if the pair was never
// registered. Removing the last connection removes the uid entirely; no
// empty set is left behind. Reports whether the identity went offline.
func (r *Registry) Unregister(uid string, link ports.Link) (wentOffline bool) {
	s := r.shardFor(uid)
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.links[uid]
	if !ok {
		return false
	}
	delete(set, link)
	if len(set) == 0 {
		delete(s.links, uid)
		return true
	}
	return false
}

// IsOnline reports whether uid has at least one live connection. A direct
// key lookup, never a scan.
func (r *Registry) IsOnline(uid string) bool {
	s := r.shardFor(uid)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.links[uid]
	return ok
}

// ConnectionsFor returns a snapshot of uid's live connections. The snapshot
// is safe to use after the call; later register/unregister calls do not
// mutate it.
func (r *Registry) ConnectionsFor(uid string) []ports.Link {
	s := r.shardFor(uid)
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.links[uid]
	if len(set) == 0 {
		return nil
	}
	out := make([]ports.Link, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	return out
}

// Broadcast sends event to every live connection of uid and reports how many
// connections it was queued on. Delivery order across a recipient's sibling
// connections is unspecified. Sends happen outside the shard lock so a slow
// link cannot stall registry mutations.
func (r *Registry) Broadcast(uid string, event string, payload any) int {
	links := r.ConnectionsFor(uid)
	for _, l := range links {
		_ = l.Send(event, payload)
	}
	return len(links)
}
