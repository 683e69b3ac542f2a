package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/songclash/songclash/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePurge(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	live := &core.Session{UID: "u1", Secret: "live", IssuedAt: now, ExpiresAt: now.Add(time.Minute)}
	dead := &core.Session{UID: "u1", Secret: "dead", IssuedAt: now.Add(-2 * time.Minute), ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, store.Save(ctx, live))
	require.NoError(t, store.Save(ctx, dead))

	n, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.Contains(t, store.sessions, "live", "live secret survives the purge")
	assert.NotContains(t, store.sessions, "dead")

	n, err = store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}
