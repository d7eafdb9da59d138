// Package browse tracks the lifecycle of catalog lookups for interactive
// frontends: one Query per widget, snapshots out, input changes in. Renderers
// poll Result or block on Updates; they never see a half-applied transition.
package browse

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
)

// State is where a query sits in its lifecycle.
type State int

const (
	// Idle means no input has been supplied yet.
	Idle State = iota
	// Loading means a fetch for the current input is in flight.
	Loading
	// Succeeded means the snapshot carries the response for the current input.
	Succeeded
	// Failed means the fetch for the current input was classified as failed.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Result is an immutable snapshot of a query. While a refetch is in flight
// the previous payload stays visible, so a renderer never flashes to empty.
type Result[T any] struct {
	State State
	Data  T
	Total int
	Err   error
}

// Query drives one remote lookup. Every deep-value change of the input
// re-enters Loading and issues a new fetch; completions carrying a stale
// generation are discarded, so a late response can never clobber the result
// of a newer input.
type Query[P, T any] struct {
	fetch func(ctx context.Context, input P) (T, int, error)

	// shortcut, when set, answers inputs that must not reach the network
	// (e.g. no set selected) with a synchronous empty success.
	shortcut func(P) (T, bool)

	logger *slog.Logger

	mu     sync.Mutex
	input  P
	hasRun bool
	gen    uint64
	state  State
	data   T
	total  int
	err    error

	updates chan struct{}
}

// QueryOption adjusts a Query at construction time.
type QueryOption func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger attaches a logger for transition diagnostics.
func WithLogger(l *slog.Logger) QueryOption {
	return func(c *config) { c.logger = l }
}

// NewQuery builds a query around a fetch function. fetch returns the payload
// and the server-reported total for one input.
func NewQuery[P, T any](fetch func(ctx context.Context, input P) (T, int, error), opts ...QueryOption) *Query[P, T] {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Query[P, T]{
		fetch:   fetch,
		logger:  cfg.logger.With("component", "browse"),
		updates: make(chan struct{}, 1),
	}
}

// Set supplies the query's input. The first call always issues; later calls
// issue only when the input differs by deep value equality from the previous
// one. Issuing moves the query to Loading without touching the visible
// payload, bumps the generation, and starts the fetch.
func (q *Query[P, T]) Set(ctx context.Context, input P) {
	q.mu.Lock()
	if q.hasRun && reflect.DeepEqual(q.input, input) {
		q.mu.Unlock()
		return
	}
	q.input = input
	q.hasRun = true
	q.gen++
	gen := q.gen

	if q.shortcut != nil {
		if empty, ok := q.shortcut(input); ok {
			q.state = Succeeded
			q.data = empty
			q.total = 0
			q.err = nil
			q.mu.Unlock()
			q.notify()
			return
		}
	}

	q.state = Loading
	q.mu.Unlock()
	q.notify()

	go q.run(ctx, gen, input)
}

func (q *Query[P, T]) run(ctx context.Context, gen uint64, input P) {
	data, total, err := q.fetch(ctx, input)

	q.mu.Lock()
	if gen != q.gen {
		q.mu.Unlock()
		q.logger.Debug("discarding stale completion", "generation", gen)
		return
	}
	if err != nil {
		q.state = Failed
		q.err = err
		// previous data and total stay visible alongside the failure
	} else {
		q.state = Succeeded
		q.data = data
		q.total = total
		q.err = nil
	}
	q.mu.Unlock()
	q.notify()
}

// Result returns the current snapshot.
func (q *Query[P, T]) Result() Result[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Result[T]{State: q.state, Data: q.data, Total: q.total, Err: q.err}
}

// Updates signals after every transition. The channel coalesces: a slow
// consumer sees at least one signal for any burst of changes and reads the
// latest snapshot via Result.
func (q *Query[P, T]) Updates() <-chan struct{} {
	return q.updates
}

func (q *Query[P, T]) notify() {
	select {
	case q.updates <- struct{}{}:
	default:
	}
}
