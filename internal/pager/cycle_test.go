package pager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetch hands each call a reply channel so tests decide when and how
// every fetch finishes.
type scriptedFetch struct {
	mu    sync.Mutex
	calls []*call
	added chan *call
}

type call struct {
	query int
	ctx   context.Context
	reply chan result
}

type result struct {
	page Page[string]
	err  error
}

func newScriptedFetch() *scriptedFetch {
	return &scriptedFetch{added: make(chan *call, 16)}
}

func (f *scriptedFetch) fetch(ctx context.Context, q int) (Page[string], error) {
	c := &call{query: q, ctx: ctx, reply: make(chan result, 1)}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	f.added <- c

	r := <-c.reply
	return r.page, r.err
}

func (f *scriptedFetch) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-f.added:
		return c
	case <-time.After(time.Second):
		t.Fatal("fetch was not called")
		return nil
	}
}

func page(current, total int, items ...string) Page[string] {
	return Page[string]{Items: items, CurrentPage: current, TotalPages: total, TotalCount: total * 2, HasNext: current < total, HasPrevious: current > 1}
}

func newTestCycle(f *scriptedFetch) *Cycle[int, string] {
	return NewCycle[int, string](context.Background(), f.fetch, zerolog.Nop())
}

func TestCycle_InitialState(t *testing.T) {
	c := newTestCycle(newScriptedFetch())

	s := c.State()

	assert.Equal(t, StatusIdle, s.Status)
	assert.Empty(t, s.Page.Items)
	assert.NotNil(t, s.Page.Items)
}

func TestCycle_Success(t *testing.T) {
	f := newScriptedFetch()
	c := newTestCycle(f)

	gen := c.Start(1)
	assert.Equal(t, StatusLoading, c.State().Status)

	f.next(t).reply <- result{page: page(1, 3, "a", "b")}
	require.NoError(t, c.Wait(context.Background(), gen))

	s := c.State()
	assert.Equal(t, StatusSuccess, s.Status)
	assert.Equal(t, []string{"a", "b"}, s.Page.Items)
	assert.Equal(t, 3, s.Page.TotalPages)
	assert.Equal(t, 1, s.Query)
	assert.Empty(t, s.Err)
}

func TestCycle_ErrorClearsItemsKeepsPagination(t *testing.T) {
	f := newScriptedFetch()
	c := newTestCycle(f)

	gen := c.Start(2)
	f.next(t).reply <- result{page: page(2, 5, "a")}
	require.NoError(t, c.Wait(context.Background(), gen))

	gen = c.Start(3)
	f.next(t).reply <- result{err: errors.New("API response unsuccessful")}
	require.NoError(t, c.Wait(context.Background(), gen))

	s := c.State()
	assert.Equal(t, StatusError, s.Status)
	assert.Equal(t, "API response unsuccessful", s.Err)
	assert.Empty(t, s.Page.Items)
	assert.Equal(t, 2, s.Page.CurrentPage)
	assert.Equal(t, 5, s.Page.TotalPages)
}

func TestCycle_LatestRequestWins(t *testing.T) {
	f := newScriptedFetch()
	c := newTestCycle(f)

	first := c.Start(1)
	slow := f.next(t)
	second := c.Start(2)
	fast := f.next(t)

	// The superseded fetch sees its context cancelled
	select {
	case <-slow.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}
	// and its waiters are released
	require.NoError(t, c.Wait(context.Background(), first))

	fast.reply <- result{page: page(2, 4, "new")}
	require.NoError(t, c.Wait(context.Background(), second))

	// The late response from the first fetch must not overwrite the second
	slow.reply <- result{page: page(1, 4, "stale")}
	time.Sleep(20 * time.Millisecond)

	s := c.State()
	assert.Equal(t, []string{"new"}, s.Page.Items)
	assert.Equal(t, 2, s.Page.CurrentPage)
	assert.Equal(t, second, s.Generation)
}

func TestCycle_LateErrorIsDiscarded(t *testing.T) {
	f := newScriptedFetch()
	c := newTestCycle(f)

	c.Start(1)
	slow := f.next(t)
	second := c.Start(2)
	f.next(t).reply <- result{page: page(2, 2, "ok")}
	require.NoError(t, c.Wait(context.Background(), second))

	slow.reply <- result{err: context.Canceled}
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, StatusSuccess, c.State().Status)
}

func TestCycle_Close(t *testing.T) {
	f := newScriptedFetch()
	c := newTestCycle(f)

	gen := c.Start(1)
	inflight := f.next(t)

	c.Close()

	select {
	case <-inflight.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("close did not cancel the in-flight fetch")
	}
	require.NoError(t, c.Wait(context.Background(), gen))

	inflight.reply <- result{page: page(1, 1, "late")}
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, c.State().Page.Items)

	// Start after Close is a no-op
	assert.Equal(t, gen, c.Start(2))
	select {
	case <-f.added:
		t.Fatal("fetch started after close")
	case <-time.After(20 * time.Millisecond):
	}

	c.Close()
}

func TestCycle_WaitHonoursContext(t *testing.T) {
	f := newScriptedFetch()
	c := newTestCycle(f)

	gen := c.Start(1)
	inflight := f.next(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := c.Wait(ctx, gen)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	inflight.reply <- result{page: page(1, 1)}
}

func TestCycle_StateReturnsCopy(t *testing.T) {
	f := newScriptedFetch()
	c := newTestCycle(f)

	gen := c.Start(1)
	f.next(t).reply <- result{page: page(1, 1, "a")}
	require.NoError(t, c.Wait(context.Background(), gen))

	s := c.State()
	s.Page.Items[0] = "mutated"

	assert.Equal(t, []string{"a"}, c.State().Page.Items)
}
