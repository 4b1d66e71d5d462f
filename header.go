package georec

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the size of RecordHeader in its packed form.
	HeaderSize = 8

	// ElementSize is the size of a single packed Element.
	ElementSize = 20

	headerFlagSealed uint16 = 1 << 0
)

// RecordHeader starts every record in an arena.
//
// Packed layout: byteSize:u32 kind:u16 flags:u16, little-endian. ByteSize
// covers the header itself plus all elements, so a well-formed header always
// has ByteSize = HeaderSize + k*ElementSize.
type RecordHeader struct {
	ByteSize uint32
	Kind     Kind
	Flags    uint16
}

// Len returns the number of elements following the header.
func (h RecordHeader) Len() int {
	return int(h.ByteSize-HeaderSize) / ElementSize
}

func (h RecordHeader) Empty() bool {
	return h.ByteSize == HeaderSize
}

// Sealed reports whether the record has been frozen by Builder.Seal.
func (h RecordHeader) Sealed() bool {
	return h.Flags&headerFlagSealed != 0
}

func (h RecordHeader) wellFormed() bool {
	return h.ByteSize >= HeaderSize && (h.ByteSize-HeaderSize)%ElementSize == 0
}

func (h RecordHeader) String() string {
	s := fmt.Sprintf("%v/%d", h.Kind, h.ByteSize)
	if !h.Sealed() {
		s += "/open"
	}
	return s
}

func decodeHeader(b []byte) RecordHeader {
	_ = b[HeaderSize-1]
	return RecordHeader{
		ByteSize: binary.LittleEndian.Uint32(b[0:4]),
		Kind:     Kind(binary.LittleEndian.Uint16(b[4:6])),
		Flags:    binary.LittleEndian.Uint16(b[6:8]),
	}
}

func putHeader(b []byte, h RecordHeader) {
	_ = b[HeaderSize-1]
	binary.LittleEndian.PutUint32(b[0:4], h.ByteSize)
	binary.LittleEndian.PutUint16(b[4:6], uint16(h.Kind))
	binary.LittleEndian.PutUint16(b[6:8], h.Flags)
}

func putHeaderByteSize(b []byte, size uint32) {
	binary.LittleEndian.PutUint32(b[0:4], size)
}

func putHeaderFlags(b []byte, flags uint16) {
	binary.LittleEndian.PutUint16(b[6:8], flags)
}

// assertRecord is only called when checkInvariants is on; see assert_debug.go.
func assertRecord(buf []byte, off int, h RecordHeader) {
	if !h.wellFormed() {
		fatalf("record at %d has malformed byte size %d", off, h.ByteSize)
	}
	if off+int(h.ByteSize) > len(buf) {
		fatalf("record at %d (%d bytes) overruns arena of %d bytes", off, h.ByteSize, len(buf))
	}
}
