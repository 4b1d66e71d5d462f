package georec

// Stats summarizes the contents of an arena.
type Stats struct {
	Records    int
	WayNodes   int
	OuterRings int
	InnerRings int

	Elements int
	Empty    int
	Closed   int

	Used        int
	Capacity    int
	Generation  uint64
	Relocations uint64
}

// Stats walks all sealed records. It is O(records).
func (a *Arena) Stats() Stats {
	s := Stats{
		Used:        a.committedLen(),
		Capacity:    cap(a.buf),
		Generation:  a.gen,
		Relocations: a.relocations,
	}
	for v := range a.Records() {
		s.Records++
		switch v.Kind() {
		case KindWayNodes:
			s.WayNodes++
		case KindOuterRing:
			s.OuterRings++
		case KindInnerRing:
			s.InnerRings++
		}
		s.Elements += v.Len()
		if v.Empty() {
			s.Empty++
		} else if v.IsClosed() {
			s.Closed++
		}
	}
	return s
}

// Rings returns the number of outer and inner rings.
func (s Stats) Rings() int {
	return s.OuterRings + s.InnerRings
}
