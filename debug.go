package georec

import (
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpHeaders = DumpFlags(1 << iota)
	DumpElements
	DumpStats

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)

	indentStep = "  "
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders the arena contents for debugging and the CLI.
func (a *Arena) Dump(f DumpFlags) string {
	var buf strings.Builder
	if f.Contains(DumpStats) {
		s := a.Stats()
		fmt.Fprintln(&buf, dumpSep1)
		fmt.Fprintf(&buf, "records = %d (way_nodes = %d, outer_ring = %d, inner_ring = %d), elements = %d, closed = %d, empty = %d\n", s.Records, s.WayNodes, s.OuterRings, s.InnerRings, s.Elements, s.Closed, s.Empty)
		fmt.Fprintf(&buf, "used = %d, capacity = %d, generation = %d, relocations = %d\n", s.Used, s.Capacity, s.Generation, s.Relocations)
	}
	if f.Contains(DumpHeaders) {
		var pos int
		for v := range a.Records() {
			pos++
			dumpRecord(&buf, f, pos, v)
		}
	}
	return buf.String()
}

func dumpRecord(w *strings.Builder, f DumpFlags, pos int, v RefList) {
	if f.Contains(DumpElements) {
		fmt.Fprintln(w, dumpSep2)
	}
	fmt.Fprintf(w, "#%d @%d %v (%d refs, %d bytes)", pos, v.Offset(), v.Kind(), v.Len(), v.Header().ByteSize)
	if !v.Empty() && v.IsClosed() {
		w.WriteString(" closed")
	}
	w.WriteByte('\n')
	if f.Contains(DumpElements) {
		for i, e := range v.All() {
			fmt.Fprintf(w, "%s%d: %v\n", indentStep, i, e)
		}
	}
}
