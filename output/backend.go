package output

import (
	"context"
	"errors"
)

var (
	ErrNotStarted = errors.New("backend not started")
	ErrInvalidWay = errors.New("way has fewer than two nodes")
)

// Backend receives the entities of a dataset.
//
// Start is called once before any event; Handle is called for every event,
// in order, never concurrently; Flush may be called any number of times and
// makes everything handled so far durable; Stop finishes the output.
type Backend interface {
	Start(ctx context.Context, opt *Options) error
	Handle(ctx context.Context, ev *Event) error
	Flush(ctx context.Context) error
	Stop(ctx context.Context) error
}
