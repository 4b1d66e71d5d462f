// Package mmap maps files into memory as growable regions.
//
// Growing a region remaps the file, so the address of its data changes.
// Callers must not keep slices of Data across Grow.
package mmap

import (
	"errors"
	"fmt"
	"os"
)

type Options uint

const (
	// Writable opens the mapping for writing (otherwise, it's read-only).
	Writable Options = 1 << 0

	// SequentialAccess is a hint requesting aggressive read-ahead.
	// Incompatible with RandomAccess. Maps to MADV_SEQUENTIAL on Unix.
	SequentialAccess Options = 1 << 1

	// RandomAccess is a hint that read ahead is less useful than normally.
	// Incompatible with SequentialAccess. Maps to MADV_RANDOM on Unix.
	RandomAccess Options = 1 << 2

	// Prefault is a hint requesting the entire file to be loaded in memory
	// for fastest access. Maps to MAP_POPULATE on Linux.
	Prefault Options = 1 << 3
)

var (
	ErrTooLarge = errors.New("mapping exceeds maximum size")
	ErrReadOnly = errors.New("read-only mapping")
	ErrClosed   = errors.New("mapping closed")
)

func (o Options) Has(v Options) bool {
	return o&v != 0
}

// Region is a memory mapping of an entire file.
type Region struct {
	f    *os.File
	data []byte
	opt  Options
}

// Map maps the first size bytes of f. A writable mapping extends the file
// to size bytes first if it is shorter. The region does not own f.
func Map(f *os.File, size int, opt Options) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmap: invalid size %d", size)
	}
	if size > MaxSize {
		return nil, ErrTooLarge
	}
	if opt.Has(Writable) {
		if err := extendFile(f, size); err != nil {
			return nil, err
		}
	}
	data, err := mmap(f, size, opt)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", f.Name(), err)
	}
	return &Region{f: f, data: data, opt: opt}, nil
}

func extendFile(f *os.File, size int) error {
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if fi.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	}
	return nil
}

// Data returns the mapped bytes. The slice is invalidated by Grow and Close.
func (r *Region) Data() []byte {
	return r.data
}

func (r *Region) Len() int {
	return len(r.data)
}

func (r *Region) Writable() bool {
	return r.opt.Has(Writable)
}

// Grow extends the file to size bytes and maps it again. The data usually
// moves to a different address.
//
// If extending the file fails, the region is left as it was. If mapping the
// larger file fails, the old size is mapped again (at a new address); only
// if that fails too the region ends up closed, with Data returning nil.
func (r *Region) Grow(size int) error {
	if r.data == nil {
		return ErrClosed
	}
	if !r.opt.Has(Writable) {
		return ErrReadOnly
	}
	if size <= len(r.data) {
		return nil
	}
	if size > MaxSize {
		return ErrTooLarge
	}
	if err := extendFile(r.f, size); err != nil {
		return err
	}
	oldSize := len(r.data)
	if err := munmap(r.data); err != nil {
		return fmt.Errorf("munmap %s: %w", r.f.Name(), err)
	}
	r.data = nil
	data, err := mmap(r.f, size, r.opt)
	if err != nil {
		if restored, rerr := mmap(r.f, oldSize, r.opt); rerr == nil {
			r.data = restored
		}
		return fmt.Errorf("mmap %s: %w", r.f.Name(), err)
	}
	r.data = data
	return nil
}

// Sync makes the data written through the mapping durable.
//
// WARNING: ERRORS RETURNED BY THIS FUNCTION ARE NOT RECOVERABLE. Many operating
// systems and file systems mark modified pages as clean in case of fsync
// failures, so there is no way to ensure data correctness after a failure.
// Treat the file as corrupted.
func (r *Region) Sync() error {
	if r.data == nil {
		return ErrClosed
	}
	if !r.opt.Has(Writable) {
		return nil
	}
	return r.sync()
}

// Close unmaps the region. It does not close the file.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}
	err := munmap(r.data)
	r.data = nil
	return err
}
