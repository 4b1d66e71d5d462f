package output

import (
	"fmt"

	"github.com/andreyvit/georec"
)

type (
	// Op is what happened to an entity.
	Op int

	// EntityType is the type of a geographic entity.
	EntityType int

	// Table is a geometry class; each has a table of its own.
	Table string
)

const (
	OpNone   Op = 0
	OpAdd    Op = 1
	OpModify Op = 2
	OpDelete Op = 3
)

const (
	Node     EntityType = 1
	Way      EntityType = 2
	Relation EntityType = 3
)

const (
	TablePoint   Table = "point"
	TableLine    Table = "line"
	TablePolygon Table = "polygon"
	TableRel     Table = "rel"
)

var AllTables = []Table{TablePoint, TableLine, TablePolygon, TableRel}

// Member is an entry of a relation.
type Member struct {
	Type EntityType `msgpack:"type" json:"type"`
	Ref  int64      `msgpack:"ref" json:"ref"`
	Role string     `msgpack:"role" json:"role"`
}

// Event is one change delivered to a Backend.
type Event struct {
	Op   Op
	Type EntityType
	ID   int64

	// Loc is set for nodes.
	Loc georec.Location

	// Nodes is set for ways. The view is only valid during Backend.Handle.
	Nodes georec.RefList

	// Members is set for relations.
	Members []Member

	// Tags are empty for deletions.
	Tags Tags

	// Polygon marks a way that is a closed ring describing an area.
	Polygon bool
}

// Table returns the table the event's entity is stored in.
func (ev *Event) Table() Table {
	switch ev.Type {
	case Node:
		return TablePoint
	case Way:
		if ev.Polygon {
			return TablePolygon
		}
		return TableLine
	case Relation:
		return TableRel
	default:
		panic(fmt.Errorf("invalid entity type %d", int(ev.Type)))
	}
}

// tablesOf returns every table an entity of type t can be stored in.
func tablesOf(t EntityType) []Table {
	switch t {
	case Node:
		return []Table{TablePoint}
	case Way:
		return []Table{TableLine, TablePolygon}
	case Relation:
		return []Table{TableRel}
	default:
		panic(fmt.Errorf("invalid entity type %d", int(t)))
	}
}

func (ev *Event) String() string {
	return fmt.Sprintf("%v %v %d", ev.Op, ev.Type, ev.ID)
}

func (v Op) String() string {
	switch v {
	case OpNone:
		return "none"
	case OpAdd:
		return "add"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("invalid op %d", int(v))
	}
}

func (t EntityType) String() string {
	switch t {
	case Node:
		return "node"
	case Way:
		return "way"
	case Relation:
		return "relation"
	default:
		return fmt.Sprintf("entity(%d)", int(t))
	}
}

func (t EntityType) MarshalText() ([]byte, error) {
	switch t {
	case Node, Way, Relation:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("invalid entity type %d", int(t))
	}
}

func (t *EntityType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "node":
		*t = Node
	case "way":
		*t = Way
	case "relation":
		*t = Relation
	default:
		return fmt.Errorf("invalid entity type %q", b)
	}
	return nil
}
