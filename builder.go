package georec

import "math"

// Builder appends a single record to an arena. It is the only way the bytes
// of a record ever change: Append adds exactly one element, Seal freezes the
// record.
//
// Errors from growing the arena are sticky: once an Append fails, further
// Appends are no-ops and Seal reports the error.
type Builder struct {
	arena *Arena
	off   int
	kind  Kind
	n     int
	err   error
	done  bool
}

// NewBuilder starts a new record of the given kind at the end of the arena.
// Panics if another record is still being built.
func (a *Arena) NewBuilder(kind Kind) *Builder {
	if !kind.IsRefList() {
		fatalf("NewBuilder: %v is not a reference list kind", kind)
	}
	if a.closed {
		fatalf("NewBuilder on closed arena")
	}
	if a.open >= 0 {
		fatalf("NewBuilder: record at %d is still being built", a.open)
	}
	b := &Builder{arena: a, off: -1, kind: kind}
	off, err := a.extend(HeaderSize)
	if err != nil {
		b.err = err
		return b
	}
	putHeader(a.buf[off:], RecordHeader{ByteSize: HeaderSize, Kind: kind})
	b.off = off
	a.open = off
	return b
}

func (b *Builder) checkOpen() {
	if b.done {
		fatalf("use of finished builder")
	}
}

func (b *Builder) Kind() Kind {
	return b.kind
}

// Err returns the first error encountered while appending.
func (b *Builder) Err() error {
	return b.err
}

// Len returns the number of elements appended so far.
func (b *Builder) Len() int {
	return b.n
}

// At returns the i-th appended element. Panics unless 0 <= i < Len().
func (b *Builder) At(i int) Element {
	b.checkOpen()
	if b.arena.closed {
		fatalf("builder At on closed arena")
	}
	if i < 0 || i >= b.n {
		fatalf("builder element index %d out of range [0:%d]", i, b.n)
	}
	return decodeElement(b.arena.buf[b.off+HeaderSize+i*ElementSize:])
}

// Append adds e to the end of the record.
func (b *Builder) Append(e Element) {
	b.checkOpen()
	if b.err != nil {
		return
	}
	size := HeaderSize + (b.n+1)*ElementSize
	if uint64(size) > math.MaxUint32 {
		b.err = ErrRecordTooLarge
		return
	}
	a := b.arena
	eoff, err := a.extend(ElementSize)
	if err != nil {
		b.err = err
		return
	}
	putElement(a.buf[eoff:], e.normalized())
	putHeaderByteSize(a.buf[b.off:], uint32(size))
	b.n++
}

// AppendRef appends a reference without a location.
func (b *Builder) AppendRef(id int64) {
	b.Append(NewRef(id))
}

// AppendAt appends a reference located at loc.
func (b *Builder) AppendAt(id int64, loc Location) {
	b.Append(NewRefAt(id, loc))
}

// Seal freezes the record and returns its offset. On error, the partial
// record is discarded. The builder cannot be used afterwards.
//
// Sealing after the arena was closed returns ErrClosed.
func (b *Builder) Seal() (Offset, error) {
	b.checkOpen()
	if b.err == nil && b.arena.closed {
		b.err = ErrClosed
	}
	if b.err != nil {
		b.Abort()
		return -1, b.err
	}
	a := b.arena
	putHeaderFlags(a.buf[b.off:], headerFlagSealed)
	a.open = -1
	b.done = true
	return Offset(b.off), nil
}

// Abort discards the record being built.
func (b *Builder) Abort() {
	if b.done {
		return
	}
	b.done = true
	a := b.arena
	if b.off < 0 || a.closed {
		return
	}
	a.buf = a.buf[:b.off]
	a.open = -1
}
