package output

import (
	"errors"
	"maps"
	"slices"
	"sync"
)

var errMemStorageClosed = errors.New("storage closed")

type memStorage struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buckets map[string]*memBucket
	closed  bool
	writer  bool
}

// newMemStorage returns a transient in-memory storage with Bolt-like
// transaction semantics: a single writer, snapshot isolation for readers.
func newMemStorage() storage {
	s := &memStorage{buckets: make(map[string]*memBucket)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *memStorage) BeginTx(writable bool) (storageTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errMemStorageClosed
	}
	if writable {
		for s.writer && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			return nil, errMemStorageClosed
		}
		s.writer = true
	}

	snap := make(map[string]*memBucket, len(s.buckets))
	for k, b := range s.buckets {
		snap[k] = b.clone()
	}
	return &memTx{base: s, writable: writable, buckets: snap}, nil
}

func (s *memStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.buckets = nil
	s.cond.Broadcast()
	return nil
}

type memTx struct {
	base     *memStorage
	writable bool
	buckets  map[string]*memBucket
	closed   bool
}

func (tx *memTx) Writable() bool { return tx.writable }

func (tx *memTx) Bucket(name string) storageBucket {
	if tx.closed {
		panic("tx is closed")
	}
	b := tx.buckets[name]
	if b == nil {
		return nil
	}
	return memBucketHandle{tx: tx, b: b}
}

func (tx *memTx) CreateBucket(name string) (storageBucket, error) {
	if tx.closed {
		panic("tx is closed")
	}
	if !tx.writable {
		return nil, errors.New("tx not writable")
	}
	b := tx.buckets[name]
	if b == nil {
		b = &memBucket{data: make(map[string][]byte)}
		tx.buckets[name] = b
	}
	return memBucketHandle{tx: tx, b: b}, nil
}

func (tx *memTx) DeleteBucket(name string) error {
	if !tx.writable {
		return errors.New("tx not writable")
	}
	if tx.buckets[name] == nil {
		return errBucketNotFound
	}
	delete(tx.buckets, name)
	return nil
}

func (tx *memTx) Commit() error {
	s := tx.base
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.closed {
		return errors.New("tx is closed")
	}
	if tx.writable && !s.closed {
		s.buckets = tx.buckets
	}
	tx.closeLocked()
	return nil
}

func (tx *memTx) Rollback() error {
	s := tx.base
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.closeLocked()
	return nil
}

func (tx *memTx) closeLocked() {
	if tx.closed {
		return
	}
	tx.closed = true
	if tx.writable {
		tx.base.writer = false
		tx.base.cond.Broadcast()
	}
}

type memBucket struct {
	data map[string][]byte
}

func (b *memBucket) clone() *memBucket {
	return &memBucket{data: maps.Clone(b.data)}
}

type memBucketHandle struct {
	tx *memTx
	b  *memBucket
}

func (h memBucketHandle) Get(key []byte) []byte {
	return h.b.data[string(key)]
}

func (h memBucketHandle) Put(key, value []byte) error {
	if !h.tx.writable {
		return errors.New("tx not writable")
	}
	h.b.data[string(key)] = slices.Clone(value)
	return nil
}

func (h memBucketHandle) Delete(key []byte) error {
	if !h.tx.writable {
		return errors.New("tx not writable")
	}
	delete(h.b.data, string(key))
	return nil
}

func (h memBucketHandle) ForEach(f func(k, v []byte) error) error {
	for _, k := range slices.Sorted(maps.Keys(h.b.data)) {
		if err := f([]byte(k), h.b.data[k]); err != nil {
			return err
		}
	}
	return nil
}

func (h memBucketHandle) KeyCount() int {
	return len(h.b.data)
}
