package output

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func forEachStorage(t *testing.T, f func(t *testing.T, s storage)) {
	t.Run("memory", func(t *testing.T) {
		s := newMemStorage()
		defer s.Close()
		f(t, s)
	})
	t.Run("bolt", func(t *testing.T) {
		// A large initial mmap keeps the writer from waiting on the open reader to remap.
		bdb, err := bbolt.Open(filepath.Join(t.TempDir(), "test.bolt"), 0666, &bbolt.Options{InitialMmapSize: 1 << 20})
		require.NoError(t, err)
		s := newBoltStorage(bdb)
		defer s.Close()
		f(t, s)
	})
}

func TestStorage_snapshots(t *testing.T) {
	forEachStorage(t, func(t *testing.T, s storage) {
		wtx, err := s.BeginTx(true)
		require.NoError(t, err)
		assert.True(t, wtx.Writable())
		b, err := wtx.CreateBucket("t")
		require.NoError(t, err)
		require.NoError(t, b.Put([]byte("b"), []byte("2")))
		require.NoError(t, b.Put([]byte("a"), []byte("1")))
		assert.Equal(t, 2, b.KeyCount())
		require.NoError(t, wtx.Commit())

		rtx, err := s.BeginTx(false)
		require.NoError(t, err)
		defer rtx.Rollback()

		wtx, err = s.BeginTx(true)
		require.NoError(t, err)
		require.NoError(t, wtx.Bucket("t").Delete([]byte("a")))
		require.NoError(t, wtx.Commit())

		rb := rtx.Bucket("t")
		require.NotNil(t, rb)
		assert.Equal(t, []byte("1"), rb.Get([]byte("a")))
		assert.Equal(t, 2, rb.KeyCount())

		var keys []string
		require.NoError(t, rb.ForEach(func(k, v []byte) error {
			keys = append(keys, string(k))
			return nil
		}))
		assert.Equal(t, []string{"a", "b"}, keys)
		assert.Nil(t, rtx.Bucket("missing"))
	})
}

func TestStorage_deleteBucket(t *testing.T) {
	forEachStorage(t, func(t *testing.T, s storage) {
		tx, err := s.BeginTx(true)
		require.NoError(t, err)
		defer tx.Rollback()
		assert.Equal(t, errBucketNotFound, tx.DeleteBucket("t"))
		_, err = tx.CreateBucket("t")
		require.NoError(t, err)
		require.NoError(t, tx.DeleteBucket("t"))
		assert.Nil(t, tx.Bucket("t"))
		require.NoError(t, tx.Rollback())
	})
}
