package output

import "github.com/andreyvit/georec"

// Row is the stored form of an entity.
type Row struct {
	ID int64 `msgpack:"id"`

	// Coords holds x, y pairs in output units: one pair for a point, one per
	// node for a way. Empty if some node of a way has no location.
	Coords []int64 `msgpack:"coords,omitempty"`

	Nodes   []int64  `msgpack:"nodes,omitempty"`
	Members []Member `msgpack:"members,omitempty"`

	Columns map[string]string            `msgpack:"cols,omitempty"`
	Tags    map[string]string            `msgpack:"tags,omitempty"`
	Hstores map[string]map[string]string `msgpack:"hstores,omitempty"`
}

// rowBuilder holds scratch space reused between rows.
type rowBuilder struct {
	locs []georec.Location
}

// build returns the row for an add or modify event, or false if the tags
// filter it out.
func (rb *rowBuilder) build(o *Options, ev *Event) (*Row, bool) {
	split, keep := splitTags(o, ev.Tags)
	if !keep {
		return nil, false
	}
	row := &Row{
		ID:      ev.ID,
		Columns: split.Columns,
		Tags:    split.Hstore,
		Hstores: split.Extra,
	}
	switch ev.Type {
	case Node:
		row.Coords = []int64{o.scaleCoord(ev.Loc.X), o.scaleCoord(ev.Loc.Y)}
	case Way:
		n := ev.Nodes.Len()
		row.Nodes = ev.Nodes.Refs(make([]int64, 0, n))
		var ok bool
		rb.locs, ok = ev.Nodes.Locations(rb.locs[:0])
		if ok {
			row.Coords = make([]int64, 0, 2*n)
			for _, l := range rb.locs {
				row.Coords = append(row.Coords, o.scaleCoord(l.X), o.scaleCoord(l.Y))
			}
		}
	case Relation:
		row.Members = ev.Members
	}
	return row, true
}
