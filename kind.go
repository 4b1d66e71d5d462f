package georec

import "fmt"

// Kind is the type tag stored in a RecordHeader. All kinds defined here share
// the same physical layout (a run of elements); the tag only tells higher
// layers how to interpret the sequence.
type Kind uint16

const (
	KindUnknown   Kind = 0
	KindWayNodes  Kind = 0x12
	KindOuterRing Kind = 0x40
	KindInnerRing Kind = 0x41
)

// IsRefList reports whether records of this kind are element sequences.
func (k Kind) IsRefList() bool {
	switch k {
	case KindWayNodes, KindOuterRing, KindInnerRing:
		return true
	default:
		return false
	}
}

// IsRing reports whether the kind denotes a polygon boundary.
func (k Kind) IsRing() bool {
	return k == KindOuterRing || k == KindInnerRing
}

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindWayNodes:
		return "way_nodes"
	case KindOuterRing:
		return "outer_ring"
	case KindInnerRing:
		return "inner_ring"
	default:
		return fmt.Sprintf("kind(0x%x)", uint16(k))
	}
}
