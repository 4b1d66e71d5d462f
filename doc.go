/*
Package georec stores sequences of geographic references in packed,
append-only arenas, so that billions of lines and polygon rings can be held
and traversed without a heap allocation per entity.

An Arena holds records back to back. A record is a fixed header followed by
a run of fixed-size elements:

	record  = header element*
	header  = byteSize:u32 kind:u16 flags:u16
	element = ref:i64 flags:u8 reserved:u8*3 x:i32 y:i32

All integers are little-endian. byteSize includes the header, so the number
of elements is (byteSize - HeaderSize) / ElementSize. The kind is a tag
(KindWayNodes, KindOuterRing, KindInnerRing); every kind has the same layout.
Element flag bit 0 says whether the element carries a location; without one,
x and y are zero.

# Writing

Records are written by a Builder, one at a time per arena:

	b := arena.NewBuilder(georec.KindWayNodes)
	b.AppendAt(10, georec.LocationFromDegrees(13.37, 52.52))
	b.AppendRef(20)
	off, err := b.Seal()

Seal freezes the record; after that its bytes never change.

# Reading

A RefList is a read-only view of a sealed record. It does not hold pointers
into the arena's memory: every access is resolved through the arena, and a
view taken before the arena was relocated (by growth) or closed panics on
use. Keep the Offset, and call Arena.View again when needed.

Broken preconditions (Front of an empty record, an index out of range, a
stale view) panic. The well-formedness of byteSize is guaranteed by the
Builder and is not rechecked on every read, unless built with the
georec_debug tag. Persisted arenas are verified when opened with OpenFile.
*/
package georec
