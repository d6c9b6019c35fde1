package api

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/adminshell/gateway"
	"github.com/jmcleod/adminshell/route"
	"github.com/jmcleod/adminshell/shell"
)

func testClient(id string) *Client {
	now := time.Now()
	return &Client{
		ID:             id,
		Shell:          shell.New(route.DefaultTable(), gateway.NewSimulated(0), nil),
		CSRFToken:      "csrf-" + id,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// clientStoreTests runs the common suite against any ClientStore implementation.
func clientStoreTests(t *testing.T, store ClientStore) {
	t.Helper()

	t.Run("PutAndGet", func(t *testing.T) {
		c := testClient("c-1")
		store.Put(c)
		got, ok := store.Get("c-1")
		require.True(t, ok)
		assert.Same(t, c, got)
		assert.Equal(t, "csrf-c-1", got.CSRFToken)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, ok := store.Get("no-such-client")
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		store.Put(testClient("c-del"))
		store.Delete("c-del")
		_, ok := store.Get("c-del")
		assert.False(t, ok)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		store.Delete("never-existed")
	})

	t.Run("Overwrite", func(t *testing.T) {
		store.Put(testClient("c-ow"))
		second := testClient("c-ow")
		second.CSRFToken = "replaced"
		store.Put(second)

		got, ok := store.Get("c-ow")
		require.True(t, ok)
		assert.Equal(t, "replaced", got.CSRFToken)
	})
}

func TestMemoryClientStore(t *testing.T) {
	clientStoreTests(t, NewMemoryClientStore(0))
}

func TestMemoryClientStoreIdleEviction(t *testing.T) {
	store := NewMemoryClientStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	c := testClient("idle")
	c.LastAccessedAt = now
	store.Put(c)

	now = now.Add(30 * time.Second)
	_, ok := store.Get("idle")
	require.True(t, ok, "access within the timeout")
	assert.Equal(t, now, c.LastAccessedAt, "access refreshes the idle clock")

	now = now.Add(2 * time.Minute)
	_, ok = store.Get("idle")
	assert.False(t, ok)
	assert.Zero(t, store.Len())

	// An evicted shell no longer follows its session.
	c.Shell.Sessions.Login("a@x.com", "A")
	assert.Equal(t, "/login", c.Shell.Router.Active().Path)
}

func TestMemoryClientStoreClear(t *testing.T) {
	store := NewMemoryClientStore(0)
	store.Put(testClient("a"))
	store.Put(testClient("b"))
	require.Equal(t, 2, store.Len())

	store.Clear()
	assert.Zero(t, store.Len())
}

func TestMemoryClientStoreSweepsAbandonedClients(t *testing.T) {
	store := NewMemoryClientStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	var abandoned []*Client
	for _, id := range []string{"a", "b", "c"} {
		c := testClient(id)
		c.LastAccessedAt = now
		store.Put(c)
		abandoned = append(abandoned, c)
	}
	require.Equal(t, 3, store.Len())

	// None of them is looked up again; the next Put reclaims them.
	now = now.Add(2 * time.Minute)
	fresh := testClient("fresh")
	fresh.LastAccessedAt = now
	store.Put(fresh)

	store.mu.Lock()
	remaining := len(store.data)
	store.mu.Unlock()
	assert.Equal(t, 1, remaining)

	for _, c := range abandoned {
		c.Shell.Sessions.Login("a@x.com", "A")
		assert.Equal(t, "/login", c.Shell.Router.Active().Path, "swept shells are closed")
	}
}

func TestMemoryClientStoreLenDropsAfterIdleTimeout(t *testing.T) {
	store := NewMemoryClientStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	for i := range 50 {
		c := testClient(fmt.Sprintf("c-%d", i))
		c.LastAccessedAt = now
		store.Put(c)
	}
	require.Equal(t, 50, store.Len())

	now = now.Add(time.Minute + time.Second)
	assert.Zero(t, store.Len())
}
