package output

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/andreyvit/georec"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testOptions() Options {
	opt := DefaultOptions()
	opt.Logger = quietLogger
	return opt
}

// wayNodes builds a way node list in a fresh arena. Each pair of coords is
// a lon, lat location in degrees; nodes without coords have no location.
func wayNodes(t testing.TB, kind georec.Kind, ids []int64, coords ...float64) georec.RefList {
	t.Helper()
	a := georec.NewArena(0)
	b := a.NewBuilder(kind)
	for i, id := range ids {
		if 2*i+1 < len(coords) {
			b.AppendAt(id, georec.LocationFromDegrees(coords[2*i], coords[2*i+1]))
		} else {
			b.AppendRef(id)
		}
	}
	off, err := b.Seal()
	require.NoError(t, err)
	return a.View(off)
}

func newTestDispatcher(t testing.TB, opt Options, backends ...Backend) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(opt, backends...)
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))
	return d
}

// recorded is what a recordingBackend saw of an event.
type recorded struct {
	Op    Op
	Type  EntityType
	ID    int64
	Table Table
	Nodes []int64
}

type recordingBackend struct {
	started, stopped bool
	flushes          int
	events           []recorded

	startErr, handleErr error
}

func (rb *recordingBackend) Start(ctx context.Context, opt *Options) error {
	rb.started = true
	return rb.startErr
}

func (rb *recordingBackend) Handle(ctx context.Context, ev *Event) error {
	if rb.handleErr != nil {
		return rb.handleErr
	}
	r := recorded{Op: ev.Op, Type: ev.Type, ID: ev.ID}
	if ev.Op != OpDelete {
		r.Table = ev.Table()
	}
	if ev.Type == Way && ev.Op != OpDelete {
		r.Nodes = ev.Nodes.Refs(nil)
	}
	rb.events = append(rb.events, r)
	return nil
}

func (rb *recordingBackend) Flush(ctx context.Context) error {
	rb.flushes++
	return nil
}

func (rb *recordingBackend) Stop(ctx context.Context) error {
	rb.stopped = true
	return nil
}
