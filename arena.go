package georec

import (
	"iter"
	"log/slog"
	"unsafe"
)

// Arena is an append-only region of packed records.
//
// Records are appended with a Builder, one at a time, and read through
// RefList views once sealed. Growing the arena may move its contents; every
// such relocation bumps Generation and invalidates all views obtained
// earlier. Offsets stay valid for the lifetime of the arena.
//
// An Arena has a single writer. Sealed records may be read concurrently by
// any number of goroutines as long as nothing appends at the same time.
type Arena struct {
	buf     []byte
	gen     uint64
	open    int
	closed  bool
	backing backing
	logger  *slog.Logger

	// lost is set when a failed growth took the arena's memory with it.
	lost error

	relocations uint64
}

type backing interface {
	// grow returns a slice with the contents and length of buf and a
	// capacity of at least minCap. On error, it returns the slice to keep
	// using (buf itself, or the same contents at a new address), or nil if
	// the contents are gone.
	grow(buf []byte, minCap int) ([]byte, error)
	sync(used []byte) error
	close(used []byte) error

	// abandon releases resources without persisting anything.
	abandon()
}

// NewArena returns an empty memory-backed arena with the given initial
// capacity in bytes.
func NewArena(capacity int) *Arena {
	if capacity < 0 {
		fatalf("negative arena capacity %d", capacity)
	}
	return &Arena{
		buf:     make([]byte, 0, capacity),
		open:    -1,
		backing: memBacking{},
		logger:  slog.Default(),
	}
}

type memBacking struct{}

func (memBacking) grow(buf []byte, minCap int) ([]byte, error) {
	return ensureCapacity(buf, minCap), nil
}

func (memBacking) sync([]byte) error  { return nil }
func (memBacking) close([]byte) error { return nil }
func (memBacking) abandon()             {}

// Len returns the number of bytes used, including an unsealed record.
func (a *Arena) Len() int {
	return len(a.buf)
}

// Cap returns the number of bytes available before the next relocation.
func (a *Arena) Cap() int {
	return cap(a.buf)
}

// Generation is incremented every time the arena is relocated or closed.
func (a *Arena) Generation() uint64 {
	return a.gen
}

// Grow makes sure at least n more bytes can be appended without relocation.
// If it has to relocate, all outstanding views become invalid.
//
// If growing fails and takes the arena's memory with it, the arena is
// closed, and Grow, Sync and Builder.Seal keep returning the error.
func (a *Arena) Grow(n int) error {
	if a.lost != nil {
		return a.lost
	}
	if a.closed {
		return ErrClosed
	}
	if n < 0 {
		fatalf("negative growth %d", n)
	}
	need := len(a.buf) + n
	if need <= cap(a.buf) {
		return nil
	}
	buf, err := a.backing.grow(a.buf, need)
	if err != nil {
		switch {
		case buf == nil:
			a.lose(err)
		case unsafe.SliceData(buf) != unsafe.SliceData(a.buf):
			a.buf = buf
			a.gen++
			a.relocations++
		}
		return err
	}
	a.buf = buf
	a.gen++
	a.relocations++
	a.logger.Debug("georec: arena relocated", "cap", cap(buf), "generation", a.gen)
	return nil
}

func (a *Arena) extend(n int) (int, error) {
	if err := a.Grow(n); err != nil {
		return 0, err
	}
	off := len(a.buf)
	a.buf = a.buf[:off+n]
	return off, nil
}

// View returns a view of the sealed record at off.
//
// Panics if off does not point at a sealed record within the arena.
func (a *Arena) View(off Offset) RefList {
	o := int(off)
	if a.closed {
		fatalf("View of closed arena")
	}
	if o < 0 || o+HeaderSize > len(a.buf) {
		fatalf("offset %d out of arena bounds [0:%d]", o, len(a.buf))
	}
	h := decodeHeader(a.buf[o:])
	if !h.Sealed() || o == a.open {
		fatalf("View of unsealed record at %d", o)
	}
	if checkInvariants {
		assertRecord(a.buf, o, h)
	}
	return RefList{arena: a, off: o, gen: a.gen, hdr: h}
}

func (a *Arena) viewKind(off Offset, kind Kind) RefList {
	v := a.View(off)
	if v.hdr.Kind != kind {
		fatalf("record at %d is %v, wanted %v", off, v.hdr.Kind, kind)
	}
	return v
}

// WayNodes returns a typed view; panics if the record is of another kind.
func (a *Arena) WayNodes(off Offset) WayNodes {
	return WayNodes{a.viewKind(off, KindWayNodes)}
}

// OuterRing returns a typed view; panics if the record is of another kind.
func (a *Arena) OuterRing(off Offset) OuterRing {
	return OuterRing{a.viewKind(off, KindOuterRing)}
}

// InnerRing returns a typed view; panics if the record is of another kind.
func (a *Arena) InnerRing(off Offset) InnerRing {
	return InnerRing{a.viewKind(off, KindInnerRing)}
}

// Records iterates over all sealed records in the order they were appended.
// The iteration must not be interleaved with appends.
func (a *Arena) Records() iter.Seq[RefList] {
	return func(yield func(RefList) bool) {
		if a.closed {
			fatalf("Records of closed arena")
		}
		gen := a.gen
		for off := 0; off+HeaderSize <= len(a.buf); {
			if a.gen != gen {
				fatalf("arena relocated during Records iteration")
			}
			h := decodeHeader(a.buf[off:])
			if !h.Sealed() {
				return // only the record being built can be unsealed, and it is always last
			}
			if checkInvariants {
				assertRecord(a.buf, off, h)
			}
			if !yield(RefList{arena: a, off: off, gen: gen, hdr: h}) {
				return
			}
			off += int(h.ByteSize)
		}
	}
}

// Validate walks the record chain and reports the first malformed record.
// A trailing record that is still being built is accepted.
func (a *Arena) Validate() error {
	for off := 0; off < len(a.buf); {
		if off+HeaderSize > len(a.buf) {
			return dataErrf(a.buf, off, ErrCorrupted, "truncated record header")
		}
		h := decodeHeader(a.buf[off:])
		if !h.wellFormed() {
			return dataErrf(a.buf, off, ErrCorrupted, "invalid record byte size %d", h.ByteSize)
		}
		if !h.Kind.IsRefList() {
			return dataErrf(a.buf, off, ErrCorrupted, "unknown record kind %v", h.Kind)
		}
		end := off + int(h.ByteSize)
		if end > len(a.buf) {
			return dataErrf(a.buf, off, ErrCorrupted, "record of %d bytes overruns arena of %d bytes", h.ByteSize, len(a.buf))
		}
		if !h.Sealed() && off != a.open {
			return dataErrf(a.buf, off, ErrCorrupted, "unsealed record")
		}
		off = end
	}
	return nil
}

// committedLen is the length of the prefix made of sealed records.
func (a *Arena) committedLen() int {
	if a.open >= 0 {
		return a.open
	}
	return len(a.buf)
}

// lose closes an arena whose memory is gone. Every view becomes stale.
func (a *Arena) lose(err error) {
	a.logger.Error("georec: arena memory lost", "err", err)
	a.lost = err
	a.closed = true
	a.buf = nil
	a.open = -1
	a.gen++
	a.backing.abandon()
}

// Sync persists sealed records of a file-backed arena. A no-op in memory.
func (a *Arena) Sync() error {
	if a.lost != nil {
		return a.lost
	}
	if a.closed {
		return ErrClosed
	}
	return a.backing.sync(a.buf[:a.committedLen()])
}

// Close releases the arena's memory. All views become invalid. An unsealed
// record is discarded.
func (a *Arena) Close() error {
	if a.closed {
		return nil
	}
	err := a.backing.close(a.buf[:a.committedLen()])
	a.closed = true
	a.buf = nil
	a.open = -1
	a.gen++
	return err
}
