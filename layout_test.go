package georec

import (
	"encoding/hex"
	"testing"
)

func TestLayout_BitExact(t *testing.T) {
	a := NewArena(0)
	off := appendRecord(a, KindOuterRing,
		NewRefAt(0x0102030405060708, Location{X: 1, Y: -1}),
		NewRef(-2),
	)
	if off != 0 {
		t.Fatalf("off = %d", off)
	}
	want := "" +
		"30000000" + "4000" + "0100" + // byteSize=48, kind=0x40, flags=sealed
		"0807060504030201" + "01" + "000000" + "01000000" + "ffffffff" +
		"feffffffffffffff" + "00" + "000000" + "00000000" + "00000000"
	if got := hex.EncodeToString(a.buf); got != want {
		t.Fatalf("arena bytes:\n got %s\nwant %s", got, want)
	}
}

func TestHeader_Accessors(t *testing.T) {
	h := RecordHeader{ByteSize: HeaderSize + 3*ElementSize, Kind: KindWayNodes}
	if h.Len() != 3 || h.Empty() || h.Sealed() || !h.wellFormed() {
		t.Fatalf("header %v: Len=%d Empty=%v Sealed=%v", h, h.Len(), h.Empty(), h.Sealed())
	}
	if s := h.String(); s != "way_nodes/68/open" {
		t.Fatalf("String = %q", s)
	}
	h = RecordHeader{ByteSize: HeaderSize, Kind: KindInnerRing, Flags: headerFlagSealed}
	if h.Len() != 0 || !h.Empty() || !h.Sealed() {
		t.Fatalf("empty sealed header %v misreported", h)
	}
	if (RecordHeader{ByteSize: HeaderSize - 1}).wellFormed() {
		t.Fatalf("header shorter than HeaderSize reported well-formed")
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind    Kind
		str     string
		refList bool
		ring    bool
	}{
		{KindUnknown, "unknown", false, false},
		{KindWayNodes, "way_nodes", true, false},
		{KindOuterRing, "outer_ring", true, true},
		{KindInnerRing, "inner_ring", true, true},
		{Kind(0x99), "kind(0x99)", false, false},
	}
	for _, tt := range tests {
		if tt.kind.String() != tt.str || tt.kind.IsRefList() != tt.refList || tt.kind.IsRing() != tt.ring {
			t.Errorf("%v: String=%q IsRefList=%v IsRing=%v", uint16(tt.kind), tt.kind.String(), tt.kind.IsRefList(), tt.kind.IsRing())
		}
	}
}

func TestLocation(t *testing.T) {
	l := LocationFromDegrees(13.3777041, 52.5162746)
	if l.X != 133777041 || l.Y != 525162746 {
		t.Fatalf("LocationFromDegrees = %#v", l)
	}
	if l.Lon() != 13.3777041 || l.Lat() != 52.5162746 {
		t.Fatalf("Lon/Lat = %v/%v", l.Lon(), l.Lat())
	}
	if !l.Valid() {
		t.Fatalf("Valid = false")
	}
	if s := l.String(); s != "(13.3777041 52.5162746)" {
		t.Fatalf("String = %q", s)
	}
	if (Location{X: 181 * CoordinatePrecision}).Valid() || (Location{Y: -91 * CoordinatePrecision}).Valid() {
		t.Fatalf("out-of-range location reported Valid")
	}
	if s := (Location{X: -5, Y: 0}).String(); s != "(-0.0000005 0.0000000)" {
		t.Fatalf("String = %q", s)
	}
}

func TestElement_String(t *testing.T) {
	if s := NewRef(42).String(); s != "n42" {
		t.Fatalf("String = %q", s)
	}
	if s := NewRefAt(7, Location{X: 10000000, Y: 20000000}).String(); s != "n7(1.0000000 2.0000000)" {
		t.Fatalf("String = %q", s)
	}
}
