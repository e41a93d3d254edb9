package pager

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FetchFunc loads one page for query q.
type FetchFunc[Q, T any] func(ctx context.Context, q Q) (Page[T], error)

// State is what a Cycle currently displays.
type State[Q, T any] struct {
	Query      Q
	Status     Status
	Err        string
	Page       Page[T]
	Generation uint64
}

// Cycle runs fetches for a query controller. Each Start supersedes the
// previous fetch: its context is cancelled and its result, if it still
// arrives, is dropped. Only the most recently started fetch can update State.
type Cycle[Q, T any] struct {
	mu      sync.Mutex
	fetch   FetchFunc[Q, T]
	ctx     context.Context
	stop    context.CancelFunc
	cancel  context.CancelFunc
	state   State[Q, T]
	settled chan struct{}
	closed  bool
	log     zerolog.Logger
}

func NewCycle[Q, T any](parent context.Context, fetch FetchFunc[Q, T], log zerolog.Logger) *Cycle[Q, T] {
	ctx, stop := context.WithCancel(parent)
	return &Cycle[Q, T]{
		fetch: fetch,
		ctx:   ctx,
		stop:  stop,
		state: State[Q, T]{Status: StatusIdle, Page: Page[T]{Items: []T{}}},
		log:   log,
	}
}

// Start begins a fetch for q and returns its generation. After Close it is a
// no-op returning the last generation.
func (c *Cycle[Q, T]) Start(q Q) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.state.Generation
	}
	c.supersedeLocked()

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.settled = make(chan struct{})
	c.state.Generation++
	c.state.Query = q
	c.state.Status = StatusLoading
	c.state.Err = ""

	go c.run(ctx, c.state.Generation, q, c.settled)
	return c.state.Generation
}

func (c *Cycle[Q, T]) run(ctx context.Context, gen uint64, q Q, settled chan struct{}) {
	page, err := c.fetch(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.state.Generation || c.closed {
		c.log.Debug().Uint64("generation", gen).Msg("discarding superseded fetch")
		return
	}

	if err != nil {
		c.log.Warn().Err(err).Uint64("generation", gen).Msg("fetch failed")
		c.state.Status = StatusError
		c.state.Err = err.Error()
		c.state.Page.Items = []T{}
	} else {
		if page.Items == nil {
			page.Items = []T{}
		}
		c.state.Status = StatusSuccess
		c.state.Page = page
	}
	c.cancel()
	c.cancel = nil
	close(settled)
	c.settled = nil
}

// supersedeLocked cancels the in-flight fetch and releases its waiters.
func (c *Cycle[Q, T]) supersedeLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.settled != nil {
		close(c.settled)
		c.settled = nil
	}
}

// Wait blocks until fetch gen has settled or been superseded, or ctx ends.
func (c *Cycle[Q, T]) Wait(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	if gen != c.state.Generation || c.settled == nil {
		c.mu.Unlock()
		return nil
	}
	settled := c.settled
	c.mu.Unlock()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cycle[Q, T]) State() State[Q, T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Page.Items = append([]T(nil), c.state.Page.Items...)
	if s.Page.Items == nil {
		s.Page.Items = []T{}
	}
	return s
}

// Close cancels any outstanding fetch. Later Starts do nothing.
func (c *Cycle[Q, T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.supersedeLocked()
	c.stop()
}
