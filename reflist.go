package georec

import "iter"

// Offset locates a record within an arena. Unlike a RefList, an Offset stays
// meaningful across arena growth.
type Offset int

// RefList is a read-only view of a sealed record: a header followed by an
// ordered run of elements.
//
// A RefList holds no pointers into the arena's memory. Every access goes
// through the arena and checks that the arena has not been relocated or
// closed since the view was taken, so a stale view panics instead of
// reading freed or moved bytes. Re-derive views from their Offset after any
// call that may grow the arena.
//
// The zero RefList is not usable.
type RefList struct {
	arena *Arena
	off   int
	gen   uint64
	hdr   RecordHeader
}

func (v RefList) bytes() []byte {
	a := v.arena
	if a == nil {
		fatalf("use of zero RefList")
	}
	if v.gen != a.gen {
		fatalf("stale view of record at %d: arena relocated or closed (generation %d, now %d)", v.off, v.gen, a.gen)
	}
	b := a.buf[v.off:]
	if checkInvariants {
		h := decodeHeader(b)
		if h != v.hdr {
			fatalf("sealed record at %d changed: %v, was %v", v.off, h, v.hdr)
		}
		assertRecord(a.buf, v.off, h)
	}
	return b
}

// Valid reports whether the view can still be used, i.e. the arena has not
// been relocated or closed since the view was taken.
func (v RefList) Valid() bool {
	return v.arena != nil && v.gen == v.arena.gen
}

func (v RefList) Offset() Offset {
	return Offset(v.off)
}

func (v RefList) Kind() Kind {
	return v.hdr.Kind
}

func (v RefList) Header() RecordHeader {
	return v.hdr
}

// Len returns the number of elements.
//
// Complexity: constant.
func (v RefList) Len() int {
	return v.hdr.Len()
}

// Empty reports whether the record has no elements.
func (v RefList) Empty() bool {
	return v.hdr.Empty()
}

// At returns the i-th element. Panics unless 0 <= i < Len().
//
// Complexity: constant.
func (v RefList) At(i int) Element {
	b := v.bytes()
	if n := v.hdr.Len(); i < 0 || i >= n {
		fatalf("element index %d out of range [0:%d] in record at %d", i, n, v.off)
	}
	return decodeElement(b[HeaderSize+i*ElementSize:])
}

// Front returns the first element. Panics on an empty record.
func (v RefList) Front() Element {
	if v.hdr.Empty() {
		fatalf("Front of empty %v record at %d", v.hdr.Kind, v.off)
	}
	return v.At(0)
}

// Back returns the last element. Panics on an empty record.
func (v RefList) Back() Element {
	if v.hdr.Empty() {
		fatalf("Back of empty %v record at %d", v.hdr.Kind, v.off)
	}
	return v.At(v.hdr.Len() - 1)
}

// IsClosed reports whether the first and the last element reference the
// same entity. Locations are not compared. Panics on an empty record.
//
// IsClosed and EndsHaveSameID are the same operation.
func (v RefList) IsClosed() bool {
	return v.EndsHaveSameID()
}

// EndsHaveSameID is the same as IsClosed.
func (v RefList) EndsHaveSameID() bool {
	return v.Front().Ref == v.Back().Ref
}

// EndsHaveSameLocation reports whether the first and the last element have
// exactly the same location. Ids are not compared. Panics unless both ends
// carry a location.
func (v RefList) EndsHaveSameLocation() bool {
	front, back := v.Front(), v.Back()
	if !front.HasLoc || !back.HasLoc {
		fatalf("EndsHaveSameLocation on record at %d without locations at both ends", v.off)
	}
	return front.Loc == back.Loc
}

// All iterates over the elements in stored order.
func (v RefList) All() iter.Seq2[int, Element] {
	return func(yield func(int, Element) bool) {
		n := v.hdr.Len()
		for i := 0; i < n; i++ {
			if !yield(i, v.At(i)) {
				return
			}
		}
	}
}

// Backward iterates over the elements in reverse order. Indices are those of
// the stored order, starting at Len()-1.
func (v RefList) Backward() iter.Seq2[int, Element] {
	return func(yield func(int, Element) bool) {
		for i := v.hdr.Len() - 1; i >= 0; i-- {
			if !yield(i, v.At(i)) {
				return
			}
		}
	}
}

// Refs appends the referenced ids to dst and returns the extended slice.
func (v RefList) Refs(dst []int64) []int64 {
	for _, e := range v.All() {
		dst = append(dst, e.Ref)
	}
	return dst
}

// Locations appends element locations to dst. If any element lacks a
// location, it returns dst unchanged and false.
func (v RefList) Locations(dst []Location) ([]Location, bool) {
	start := len(dst)
	for _, e := range v.All() {
		if !e.HasLoc {
			return dst[:start], false
		}
		dst = append(dst, e.Loc)
	}
	return dst, true
}

// WayNodes is the node sequence of a line.
type WayNodes struct{ RefList }

// OuterRing is the outer boundary of an area.
type OuterRing struct{ RefList }

// InnerRing is a hole in an area.
type InnerRing struct{ RefList }
