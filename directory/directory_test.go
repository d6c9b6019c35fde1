package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/adminshell/storage/memory"
)

func TestDirectoryEmptyByDefault(t *testing.T) {
	d := New(memory.NewRepository())
	empty, err := d.Empty()
	require.NoError(t, err)
	assert.True(t, empty)

	users, err := d.Users(t.Context())
	require.NoError(t, err)
	assert.Empty(t, users)

	stats, err := d.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestDirectoryApplyDemoSeed(t *testing.T) {
	d := New(memory.NewRepository())
	require.NoError(t, d.Apply(t.Context(), DemoSeed()))

	empty, err := d.Empty()
	require.NoError(t, err)
	assert.False(t, empty)

	users, err := d.Users(t.Context())
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.Equal(t, "Kim Cheolsu", users[0].Name)
	assert.False(t, users[2].Active())

	stats, err := d.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(12500000), stats.Revenue)
}

func TestDirectoryUsersOrderedNumerically(t *testing.T) {
	d := New(memory.NewRepository())
	for _, id := range []int{10, 2, 1} {
		require.NoError(t, d.PutUser(t.Context(), User{ID: id, Name: "u", Status: StatusActive}))
	}
	users, err := d.Users(t.Context())
	require.NoError(t, err)
	ids := []int{users[0].ID, users[1].ID, users[2].ID}
	assert.Equal(t, []int{1, 2, 10}, ids)
}

func TestDirectoryRejectsInvalidUser(t *testing.T) {
	d := New(memory.NewRepository())
	assert.Error(t, d.PutUser(t.Context(), User{ID: 0, Status: StatusActive}))
	assert.Error(t, d.PutUser(t.Context(), User{ID: 1, Status: "archived"}))

	// A bad row rolls back the whole batch.
	err := d.Apply(t.Context(), Seed{Users: []User{
		{ID: 1, Status: StatusActive},
		{ID: 2, Status: "bogus"},
	}})
	assert.Error(t, err)
	users, err := d.Users(t.Context())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSeedRoundTripThroughFile(t *testing.T) {
	data, err := MarshalSeed(DemoSeed())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	s, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Equal(t, DemoSeed(), s)
}

func TestParseSeed(t *testing.T) {
	s, err := ParseSeed([]byte(`
[stats]
total_users = 2
revenue = 100

[[users]]
id = 7
name = "Seven"
email = "seven@example.com"
role = "User"
status = "inactive"
`))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Stats.TotalUsers)
	require.Len(t, s.Users, 1)
	assert.Equal(t, StatusInactive, s.Users[0].Status)

	_, err = ParseSeed([]byte("[[users]]\nid = 1\nstatus = \"gone\"\n"))
	assert.Error(t, err)

	_, err = ParseSeed([]byte("unknown_key = 1\n"))
	assert.Error(t, err)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
