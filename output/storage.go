package output

import "errors"

// errBucketNotFound is returned by storageTx.DeleteBucket when the bucket doesn't exist.
var errBucketNotFound = errors.New("bucket not found")

// storage is a key-value store with named buckets (Bolt, in-memory).
type storage interface {
	BeginTx(writable bool) (storageTx, error)
	Close() error
}

type storageTx interface {
	Writable() bool

	// Bucket returns nil if the bucket doesn't exist.
	Bucket(name string) storageBucket

	// CreateBucket creates a bucket if it doesn't exist.
	CreateBucket(name string) (storageBucket, error)

	DeleteBucket(name string) error

	Commit() error

	// Rollback aborts the transaction. It should be safe to call multiple times.
	Rollback() error
}

// storageBucket is a sorted key-value collection.
type storageBucket interface {
	// Get returns nil if not found. The value is only valid until the
	// transaction ends.
	Get(key []byte) []byte

	// Put stores a key-value pair. Both slices must stay untouched until the
	// transaction ends.
	Put(key, value []byte) error

	Delete(key []byte) error

	// ForEach visits all pairs in key order.
	ForEach(f func(k, v []byte) error) error

	KeyCount() int
}
