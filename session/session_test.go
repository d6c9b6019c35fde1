package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertConsistent(t *testing.T, s Session) {
	t.Helper()
	assert.Equal(t, s.Authenticated, s.Identity != nil, "authenticated must match identity presence")
}

func TestStoreStartsAnonymous(t *testing.T) {
	s := NewStore()
	assert.False(t, s.IsAuthenticated())
	_, ok := s.CurrentUser()
	assert.False(t, ok)
	assert.Equal(t, Anonymous, s.Snapshot())
	assertConsistent(t, s.Snapshot())
}

func TestStoreLogin(t *testing.T) {
	s := NewStore()
	s.Login("a@x.com", "A")

	assert.True(t, s.IsAuthenticated())
	user, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "A", user.DisplayName)
	assertConsistent(t, s.Snapshot())
}

func TestStoreLogout(t *testing.T) {
	s := NewStore()
	s.Login("a@x.com", "A")
	s.Logout()

	assert.False(t, s.IsAuthenticated())
	assertConsistent(t, s.Snapshot())

	t.Run("Idempotent", func(t *testing.T) {
		before := s.Snapshot()
		s.Logout()
		assert.Equal(t, before, s.Snapshot())
	})
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := NewStore()
	s.Login("a@x.com", "A")
	snap := s.Snapshot()
	snap.Identity.Email = "mutated@x.com"

	user, _ := s.CurrentUser()
	assert.Equal(t, "a@x.com", user.Email)
}

func TestStoreNotifiesObservers(t *testing.T) {
	s := NewStore()

	var seen []Session
	unsubscribe := s.Subscribe(func(sn Session) {
		// Reads from inside an observer see the committed state.
		assert.Equal(t, sn.Authenticated, s.IsAuthenticated())
		seen = append(seen, sn)
	})

	s.Login("a@x.com", "A")
	require.Len(t, seen, 1, "notification must happen before Login returns")
	assert.True(t, seen[0].Authenticated)
	assert.Equal(t, "a@x.com", seen[0].Identity.Email)

	s.Logout()
	require.Len(t, seen, 2)
	assert.False(t, seen[1].Authenticated)

	// No-op logout does not notify.
	s.Logout()
	assert.Len(t, seen, 2)

	for _, sn := range seen {
		assertConsistent(t, sn)
	}

	unsubscribe()
	unsubscribe()
	s.Login("b@x.com", "B")
	assert.Len(t, seen, 2)
}

func TestStoreNotifiesInSubscriptionOrder(t *testing.T) {
	s := NewStore()
	var order []int
	s.Subscribe(func(Session) { order = append(order, 1) })
	unsub := s.Subscribe(func(Session) { order = append(order, 2) })
	s.Subscribe(func(Session) { order = append(order, 3) })

	s.Login("a@x.com", "A")
	assert.Equal(t, []int{1, 2, 3}, order)

	unsub()
	order = nil
	s.Logout()
	assert.Equal(t, []int{1, 3}, order)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	s.Subscribe(func(sn Session) { assertConsistent(t, sn) })

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				if (i+j)%2 == 0 {
					s.Login("a@x.com", "A")
				} else {
					s.Logout()
				}
				assertConsistent(t, s.Snapshot())
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
