package blog

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Picces04/ToyStore-Client/internal/backend"
	"github.com/Picces04/ToyStore-Client/internal/domain/product"
	"github.com/Picces04/ToyStore-Client/internal/pager"
	"github.com/rs/zerolog"
)

var ErrPageOutOfRange = errors.New("page out of range")

// NewsFetcher is the slice of the backend client the blog needs.
type NewsFetcher interface {
	News(ctx context.Context, q backend.NewsQuery) (pager.Page[product.BlogItem], error)
	NewsByID(ctx context.Context, id string) (product.BlogItem, error)
}

type Options struct {
	PageSize   int
	WindowSize int
}

type Snapshot struct {
	Query       backend.NewsQuery `json:"query"`
	Status      pager.Status      `json:"status"`
	Error       string            `json:"error,omitempty"`
	Items       []Post            `json:"items"`
	CurrentPage int               `json:"currentPage"`
	TotalPages  int               `json:"totalPages"`
	TotalCount  int               `json:"totalCount"`
	HasPrevious bool              `json:"hasPrevious"`
	HasNext     bool              `json:"hasNext"`
	Window      pager.Window      `json:"window"`
}

// Post is a blog item with its decoded cover image.
type Post struct {
	product.BlogItem
	Cover product.ImageRef `json:"cover"`
}

func toPosts(items []product.BlogItem) []Post {
	out := make([]Post, len(items))
	for i, it := range items {
		out[i] = Post{BlogItem: it, Cover: it.CoverImage()}
	}
	return out
}

// Controller drives the paginated, searchable news list.
type Controller struct {
	mu         sync.Mutex
	fetcher    NewsFetcher
	query      backend.NewsQuery
	cycle      *pager.Cycle[backend.NewsQuery, product.BlogItem]
	windowSize int
}

func New(ctx context.Context, fetcher NewsFetcher, opts Options, log zerolog.Logger) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = 9
	}
	if opts.WindowSize <= 0 {
		opts.WindowSize = 5
	}
	return &Controller{
		fetcher:    fetcher,
		query:      backend.NewsQuery{Page: 1, PageSize: opts.PageSize},
		cycle:      pager.NewCycle[backend.NewsQuery, product.BlogItem](ctx, fetcher.News, log.With().Str("component", "blog").Logger()),
		windowSize: opts.WindowSize,
	}
}

func (c *Controller) Load() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.cycle.State()
	if st.Status != pager.StatusIdle {
		return st.Generation
	}
	return c.cycle.Start(c.query)
}

func (c *Controller) SetPage(p int) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.cycle.State()
	total := st.Page.TotalPages
	if st.Page.CurrentPage == 0 {
		total = 1
	}
	if p < 1 || p > total {
		return st.Generation, ErrPageOutOfRange
	}

	c.query.Page = p
	return c.cycle.Start(c.query), nil
}

// SetSearch changes the search text and returns to the first page.
func (c *Controller) SetSearch(q string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.query.Search = strings.TrimSpace(q)
	c.query.Page = 1
	return c.cycle.Start(c.query)
}

func (c *Controller) Wait(ctx context.Context, gen uint64) error {
	return c.cycle.Wait(ctx, gen)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	q := c.query
	c.mu.Unlock()
	st := c.cycle.State()

	return Snapshot{
		Query:       q,
		Status:      st.Status,
		Error:       st.Err,
		Items:       toPosts(st.Page.Items),
		CurrentPage: st.Page.CurrentPage,
		TotalPages:  st.Page.TotalPages,
		TotalCount:  st.Page.TotalCount,
		HasPrevious: st.Page.HasPrevious,
		HasNext:     st.Page.HasNext,
		Window:      pager.NewWindow(st.Page.CurrentPage, st.Page.TotalPages, c.windowSize),
	}
}

// Latest fetches the n newest posts, independently of the list state.
func (c *Controller) Latest(ctx context.Context, n int) ([]Post, error) {
	page, err := c.fetcher.News(ctx, backend.NewsQuery{Page: 1, PageSize: n})
	if err != nil {
		return nil, err
	}
	return toPosts(page.Items), nil
}

func (c *Controller) Get(ctx context.Context, id string) (Post, error) {
	item, err := c.fetcher.NewsByID(ctx, id)
	if err != nil {
		return Post{}, err
	}
	return Post{BlogItem: item, Cover: item.CoverImage()}, nil
}

func (c *Controller) Close() {
	c.cycle.Close()
}
