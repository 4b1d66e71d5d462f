package output

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// KVBackend stores rows in a key-value store: one bucket per table, keyed by
// entity id, with msgpack-encoded Row values.
type KVBackend struct {
	s   storage
	tx  storageTx
	opt *Options
	rb  rowBuilder
}

// OpenBolt opens or creates a Bolt database at path.
func OpenBolt(path string) (*KVBackend, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	bopt.FreelistType = bbolt.FreelistMapType
	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("bolt: %w", err)
	}
	return &KVBackend{s: newBoltStorage(bdb)}, nil
}

// NewMemory returns a KVBackend that keeps everything in memory.
func NewMemory() *KVBackend {
	return &KVBackend{s: newMemStorage()}
}

func (kb *KVBackend) Start(ctx context.Context, opt *Options) error {
	if kb.tx != nil {
		return errors.New("already started")
	}
	kb.opt = opt
	tx, err := kb.s.BeginTx(true)
	if err != nil {
		return err
	}
	for _, t := range AllTables {
		name := opt.TableName(t)
		if !opt.Append {
			if err := tx.DeleteBucket(name); err != nil && err != errBucketNotFound {
				tx.Rollback()
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		if _, err := tx.CreateBucket(name); err != nil {
			tx.Rollback()
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	kb.tx = tx
	return nil
}

func (kb *KVBackend) Handle(ctx context.Context, ev *Event) error {
	if kb.tx == nil {
		return ErrNotStarted
	}
	switch ev.Op {
	case OpAdd:
		return kb.put(ev)
	case OpModify:
		if err := kb.delete(ev); err != nil {
			return err
		}
		return kb.put(ev)
	case OpDelete:
		return kb.delete(ev)
	default:
		return fmt.Errorf("unsupported op %v", ev.Op)
	}
}

func (kb *KVBackend) put(ev *Event) error {
	row, keep := kb.rb.build(kb.opt, ev)
	if !keep {
		return nil
	}
	// Bolt requires values to stay intact until commit, so no buffer reuse.
	val := MsgPack.EncodeValue(nil, row)
	return kb.bucket(ev.Table()).Put(idKey(ev.ID), val)
}

func (kb *KVBackend) delete(ev *Event) error {
	key := idKey(ev.ID)
	for _, t := range tablesOf(ev.Type) {
		if err := kb.bucket(t).Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (kb *KVBackend) bucket(t Table) storageBucket {
	b := kb.tx.Bucket(kb.opt.TableName(t))
	if b == nil {
		panic(fmt.Errorf("missing bucket %s", kb.opt.TableName(t)))
	}
	return b
}

func (kb *KVBackend) Flush(ctx context.Context) error {
	if kb.tx == nil {
		return ErrNotStarted
	}
	if err := kb.commit(); err != nil {
		return err
	}
	tx, err := kb.s.BeginTx(true)
	if err != nil {
		return err
	}
	kb.tx = tx
	return nil
}

func (kb *KVBackend) commit() error {
	tx := kb.tx
	kb.tx = nil
	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return err
	}
	return nil
}

func (kb *KVBackend) Stop(ctx context.Context) error {
	if kb.tx == nil {
		return ErrNotStarted
	}
	return kb.commit()
}

// Close discards uncommitted changes and closes the store.
func (kb *KVBackend) Close() error {
	if kb.tx != nil {
		kb.tx.Rollback()
		kb.tx = nil
	}
	return kb.s.Close()
}

// Get returns the stored row, or nil if there is none. Before Stop, it sees
// changes that have not been flushed yet.
func (kb *KVBackend) Get(t Table, id int64) (*Row, error) {
	var row *Row
	err := kb.view(t, func(b storageBucket) error {
		raw := b.Get(idKey(id))
		if raw == nil {
			return nil
		}
		row = new(Row)
		return MsgPack.DecodeValue(raw, row)
	})
	return row, err
}

// IDs returns the ids stored in a table, in ascending order.
func (kb *KVBackend) IDs(t Table) ([]int64, error) {
	var ids []int64
	err := kb.view(t, func(b storageBucket) error {
		return b.ForEach(func(k, _ []byte) error {
			ids = append(ids, idFromKey(k))
			return nil
		})
	})
	return ids, err
}

func (kb *KVBackend) view(t Table, f func(b storageBucket) error) error {
	if kb.opt == nil {
		return ErrNotStarted
	}
	name := kb.opt.TableName(t)
	tx := kb.tx
	if tx == nil {
		var err error
		tx, err = kb.s.BeginTx(false)
		if err != nil {
			return err
		}
		defer tx.Rollback()
	}
	b := tx.Bucket(name)
	if b == nil {
		return fmt.Errorf("%s: %w", name, errBucketNotFound)
	}
	return f(b)
}

// Count returns the number of rows in a table.
func (kb *KVBackend) Count(t Table) (int, error) {
	var n int
	err := kb.view(t, func(b storageBucket) error {
		n = b.KeyCount()
		return nil
	})
	return n, err
}
