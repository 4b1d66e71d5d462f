package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/andreyvit/georec"
)

// Dispatcher fans entity events out to a set of backends.
//
// Events are delivered synchronously and in order, so a RefList passed to
// WayAdd or WayModify stays valid for every backend that sees it. Start,
// Flush and Stop run on up to Options.NumProcs backends concurrently.
type Dispatcher struct {
	opt      Options
	backends []Backend
	logger   *slog.Logger

	counts map[EntityType]*[4]int
}

func NewDispatcher(opt Options, backends ...Backend) (*Dispatcher, error) {
	opt.setDefaults()
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return &Dispatcher{
		opt:      opt,
		backends: backends,
		logger:   opt.Logger,
		counts: map[EntityType]*[4]int{
			Node:     {},
			Way:      {},
			Relation: {},
		},
	}, nil
}

func (d *Dispatcher) Options() *Options {
	return &d.opt
}

// Count returns the number of events of the given kind dispatched so far.
func (d *Dispatcher) Count(t EntityType, op Op) int {
	c := d.counts[t]
	if c == nil || op < 0 || int(op) >= len(c) {
		return 0
	}
	return c[op]
}

func (d *Dispatcher) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Debug("output: starting", "backends", len(d.backends), "prefix", d.opt.Prefix)
	return d.each("start", func(b Backend) error {
		return b.Start(ctx, &d.opt)
	})
}

func (d *Dispatcher) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.each("flush", func(b Backend) error {
		return b.Flush(ctx)
	})
}

// Stop stops every backend, even if ctx is already done, so that each one
// can release its resources.
func (d *Dispatcher) Stop(ctx context.Context) error {
	err := d.each("stop", func(b Backend) error {
		return b.Stop(ctx)
	})
	d.logger.Info("output: stopped",
		"nodes", d.total(Node), "ways", d.total(Way), "relations", d.total(Relation),
		"err", err)
	return err
}

func (d *Dispatcher) total(t EntityType) int {
	var n int
	for _, c := range d.counts[t] {
		n += c
	}
	return n
}

func (d *Dispatcher) each(phase string, f func(b Backend) error) error {
	errs := make([]error, len(d.backends))
	sem := make(chan struct{}, d.opt.NumProcs)
	var wg sync.WaitGroup
	for i, b := range d.backends {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := f(b); err != nil {
				errs[i] = fmt.Errorf("output #%d %s: %w", i, phase, err)
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (d *Dispatcher) dispatch(ctx context.Context, ev *Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i, b := range d.backends {
		if err := b.Handle(ctx, ev); err != nil {
			return fmt.Errorf("%v: output #%d: %w", ev, i, err)
		}
	}
	d.counts[ev.Type][ev.Op]++
	return nil
}

func (d *Dispatcher) NodeAdd(ctx context.Context, id int64, loc georec.Location, tags Tags) error {
	return d.dispatch(ctx, &Event{Op: OpAdd, Type: Node, ID: id, Loc: loc, Tags: tags})
}

func (d *Dispatcher) NodeModify(ctx context.Context, id int64, loc georec.Location, tags Tags) error {
	return d.dispatch(ctx, &Event{Op: OpModify, Type: Node, ID: id, Loc: loc, Tags: tags})
}

func (d *Dispatcher) NodeDelete(ctx context.Context, id int64) error {
	return d.dispatch(ctx, &Event{Op: OpDelete, Type: Node, ID: id})
}

// WayAdd dispatches a new way. nodes must have at least two elements.
func (d *Dispatcher) WayAdd(ctx context.Context, id int64, nodes georec.RefList, tags Tags) error {
	return d.way(ctx, OpAdd, id, nodes, tags)
}

func (d *Dispatcher) WayModify(ctx context.Context, id int64, nodes georec.RefList, tags Tags) error {
	return d.way(ctx, OpModify, id, nodes, tags)
}

func (d *Dispatcher) WayDelete(ctx context.Context, id int64) error {
	return d.dispatch(ctx, &Event{Op: OpDelete, Type: Way, ID: id})
}

func (d *Dispatcher) way(ctx context.Context, op Op, id int64, nodes georec.RefList, tags Tags) error {
	if nodes.Len() < 2 {
		return fmt.Errorf("way %d: %w", id, ErrInvalidWay)
	}
	return d.dispatch(ctx, &Event{
		Op:      op,
		Type:    Way,
		ID:      id,
		Nodes:   nodes,
		Tags:    tags,
		Polygon: isPolygon(nodes, tags),
	})
}

func (d *Dispatcher) RelationAdd(ctx context.Context, id int64, members []Member, tags Tags) error {
	return d.dispatch(ctx, &Event{Op: OpAdd, Type: Relation, ID: id, Members: members, Tags: tags})
}

func (d *Dispatcher) RelationModify(ctx context.Context, id int64, members []Member, tags Tags) error {
	return d.dispatch(ctx, &Event{Op: OpModify, Type: Relation, ID: id, Members: members, Tags: tags})
}

func (d *Dispatcher) RelationDelete(ctx context.Context, id int64) error {
	return d.dispatch(ctx, &Event{Op: OpDelete, Type: Relation, ID: id})
}

// isPolygon decides whether a way is stored as an area. The node list must
// be closed, by id or, when ids differ but both ends are located, by
// location. Ring records are areas by definition; plain way node lists are
// areas only if their tags say so.
func isPolygon(nodes georec.RefList, tags Tags) bool {
	closed := nodes.IsClosed()
	if !closed {
		front, back := nodes.Front(), nodes.Back()
		closed = front.HasLoc && back.HasLoc && nodes.EndsHaveSameLocation()
	}
	if !closed {
		return false
	}
	switch nodes.Kind() {
	case georec.KindOuterRing, georec.KindInnerRing:
		return true
	default:
		return IsArea(tags)
	}
}
