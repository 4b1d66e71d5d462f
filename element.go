package georec

import (
	"encoding/binary"
	"strconv"
)

const elemFlagLocation byte = 1 << 0

// Element is one entry of a RefList: the id of a referenced point entity and,
// optionally, its location.
//
// Packed layout: ref:i64 flags:u8 reserved:u8*3 x:i32 y:i32, little-endian.
// Elements are compared with ==; an element without a location always has a
// zero Loc, both in memory after decoding and on disk.
type Element struct {
	Ref    int64
	Loc    Location
	HasLoc bool
}

// NewRef returns an element that references id and carries no location.
func NewRef(id int64) Element {
	return Element{Ref: id}
}

// NewRefAt returns an element that references id located at loc.
func NewRefAt(id int64, loc Location) Element {
	return Element{Ref: id, Loc: loc, HasLoc: true}
}

func (e Element) normalized() Element {
	if !e.HasLoc {
		e.Loc = Location{}
	}
	return e
}

func (e Element) String() string {
	s := "n" + strconv.FormatInt(e.Ref, 10)
	if e.HasLoc {
		s += e.Loc.String()
	}
	return s
}

func putElement(b []byte, e Element) {
	_ = b[ElementSize-1]
	binary.LittleEndian.PutUint64(b[0:8], uint64(e.Ref))
	var flags byte
	if e.HasLoc {
		flags |= elemFlagLocation
	}
	b[8] = flags
	b[9], b[10], b[11] = 0, 0, 0
	binary.LittleEndian.PutUint32(b[12:16], uint32(e.Loc.X))
	binary.LittleEndian.PutUint32(b[16:20], uint32(e.Loc.Y))
}

func decodeElement(b []byte) Element {
	_ = b[ElementSize-1]
	return Element{
		Ref: int64(binary.LittleEndian.Uint64(b[0:8])),
		Loc: Location{
			X: int32(binary.LittleEndian.Uint32(b[12:16])),
			Y: int32(binary.LittleEndian.Uint32(b[16:20])),
		},
		HasLoc: b[8]&elemFlagLocation != 0,
	}
}
