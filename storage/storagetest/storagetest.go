// Package storagetest holds the behaviour suite every storage.Repository
// implementation must pass.
package storagetest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/adminshell/storage"
)

// Run exercises repo. The repository must start empty.
func Run(t *testing.T, repo storage.Repository) {
	t.Helper()

	t.Run("PutAndGet", func(t *testing.T) {
		require.NoError(t, repo.Put("b1", "id1", []byte("value")))
		got, err := repo.Get("b1", "id1")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), got)

		// Returned slices are copies.
		got[0] = 'X'
		again, err := repo.Get("b1", "id1")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), again)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := repo.Get("no-bucket", "id1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = repo.Get("b1", "no-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, repo.Put("b1", "ow", []byte("v1")))
		require.NoError(t, repo.Put("b1", "ow", []byte("v2")))
		got, err := repo.Get("b1", "ow")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})

	t.Run("PutNew", func(t *testing.T) {
		require.NoError(t, repo.PutNew("b2", "once", []byte("first")))
		err := repo.PutNew("b2", "once", []byte("second"))
		assert.ErrorIs(t, err, storage.ErrExists)
		got, err := repo.Get("b2", "once")
		require.NoError(t, err)
		assert.Equal(t, []byte("first"), got)
	})

	t.Run("ListSorted", func(t *testing.T) {
		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, repo.Put("list", id, []byte(id)))
		}
		ids, err := repo.List("list")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, ids)

		empty, err := repo.List("never-written")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Put("b1", "del", []byte("x")))
		require.NoError(t, repo.Delete("b1", "del"))
		_, err := repo.Get("b1", "del")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, repo.Delete("b1", "del"), storage.ErrNotFound)
	})

	t.Run("BatchCommit", func(t *testing.T) {
		err := repo.Batch("batch", func(tx storage.BatchTx) error {
			if err := tx.Put("x", []byte("1")); err != nil {
				return err
			}
			return tx.Put("y", []byte("2"))
		})
		require.NoError(t, err)
		ids, err := repo.List("batch")
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, ids)
	})

	t.Run("BatchRollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := repo.Batch("batch", func(tx storage.BatchTx) error {
			if err := tx.Put("z", []byte("3")); err != nil {
				return err
			}
			if err := tx.Delete("x"); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		ids, err := repo.List("batch")
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, ids)
	})

	t.Run("JSONHelpers", func(t *testing.T) {
		type rec struct {
			Name string `json:"name"`
			N    int    `json:"n"`
		}
		require.NoError(t, storage.PutJSON(repo, "json", "r1", rec{Name: "a", N: 3}))
		got, err := storage.GetJSON[rec](repo, "json", "r1")
		require.NoError(t, err)
		assert.Equal(t, rec{Name: "a", N: 3}, got)

		_, err = storage.GetJSON[rec](repo, "json", "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
