package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/Picces04/ToyStore-Client/internal/backend"
	"github.com/Picces04/ToyStore-Client/internal/domain/product"
	"github.com/Picces04/ToyStore-Client/internal/pager"
	"github.com/rs/zerolog"
)

// ProductFetcher is the slice of the backend client the catalog needs.
type ProductFetcher interface {
	Products(ctx context.Context, q backend.ProductQuery) (pager.Page[product.Product], error)
}

type Options struct {
	PageSize        int
	WindowSize      int
	InitialCategory string
}

// Snapshot is the catalog as the listing page renders it.
type Snapshot struct {
	Query            Query             `json:"query"`
	Status           pager.Status      `json:"status"`
	Error            string            `json:"error,omitempty"`
	Items            []product.Product `json:"items"`
	CurrentPage      int               `json:"currentPage"`
	TotalPages       int               `json:"totalPages"`
	TotalCount       int               `json:"totalCount"`
	HasPrevious      bool              `json:"hasPrevious"`
	HasNext          bool              `json:"hasNext"`
	Window           pager.Window      `json:"window"`
	HasActiveFilters bool              `json:"hasActiveFilters"`
}

// Controller owns the catalog query and the fetch cycle that loads it. Every
// mutation starts a new fetch that supersedes any fetch still in flight.
type Controller struct {
	mu         sync.Mutex
	query      Query
	cycle      *pager.Cycle[Query, product.Product]
	windowSize int
}

func New(ctx context.Context, fetcher ProductFetcher, opts Options, log zerolog.Logger) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.WindowSize <= 0 {
		opts.WindowSize = 5
	}

	q := Query{
		Page:        1,
		PageSize:    opts.PageSize,
		Sort:        DefaultSort,
		CategoryIDs: []string{},
		Price:       DefaultPriceRange(),
	}
	if opts.InitialCategory != "" {
		q.CategoryIDs = []string{opts.InitialCategory}
	}

	fetch := func(ctx context.Context, q Query) (pager.Page[product.Product], error) {
		return fetcher.Products(ctx, toBackend(q))
	}

	return &Controller{
		query:      q,
		cycle:      pager.NewCycle[Query, product.Product](ctx, fetch, log.With().Str("component", "catalog").Logger()),
		windowSize: opts.WindowSize,
	}
}

func toBackend(q Query) backend.ProductQuery {
	bq := backend.ProductQuery{
		Page:        q.Page,
		PageSize:    q.PageSize,
		Sort:        q.Sort.Wire(),
		CategoryIDs: slices.Clone(q.CategoryIDs),
	}
	if !q.Price.IsDefault() {
		lo, hi := q.Price.Min, q.Price.Max
		bq.MinPrice = &lo
		bq.MaxPrice = &hi
	}
	return bq
}

// Load fetches the current query if nothing has been fetched yet and returns
// the generation to wait for.
func (c *Controller) Load() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.cycle.State()
	if st.Status != pager.StatusIdle {
		return st.Generation
	}
	return c.cycle.Start(c.query.clone())
}

// Refresh refetches the current query.
func (c *Controller) Refresh() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycle.Start(c.query.clone())
}

// SetPage moves to page p. Pages outside 1..totalPages of the last response
// are rejected and nothing is fetched.
func (c *Controller) SetPage(p int) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.cycle.State()
	total := st.Page.TotalPages
	if st.Page.CurrentPage == 0 {
		// Nothing loaded yet: only the first page exists.
		total = 1
	}
	if p < 1 || p > total {
		return st.Generation, ErrPageOutOfRange
	}

	c.query.Page = p
	return c.cycle.Start(c.query.clone()), nil
}

func (c *Controller) SetSort(s Sort) (uint64, error) {
	if _, ok := wireSorts[s]; !ok {
		return 0, ErrUnknownSort
	}
	return c.mutate(func(q *Query) { q.Sort = s }), nil
}

func (c *Controller) ClearSort() uint64 {
	return c.mutate(func(q *Query) { q.Sort = DefaultSort })
}

func (c *Controller) SetCategories(ids []string) uint64 {
	ids = dedupe(ids)
	return c.mutate(func(q *Query) { q.CategoryIDs = ids })
}

// FollowCategory narrows the listing to a single category, as when arriving
// from a category link. A catalog already filtered to exactly that category
// is only loaded, keeping its page.
func (c *Controller) FollowCategory(id string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if slices.Equal(c.query.CategoryIDs, []string{id}) {
		st := c.cycle.State()
		if st.Status != pager.StatusIdle {
			return st.Generation
		}
		return c.cycle.Start(c.query.clone())
	}
	c.query.CategoryIDs = []string{id}
	c.query.Page = 1
	return c.cycle.Start(c.query.clone())
}

// ToggleCategory selects id when unselected and deselects it otherwise.
func (c *Controller) ToggleCategory(id string) uint64 {
	return c.mutate(func(q *Query) {
		if i := slices.Index(q.CategoryIDs, id); i >= 0 {
			q.CategoryIDs = slices.Delete(slices.Clone(q.CategoryIDs), i, i+1)
			return
		}
		q.CategoryIDs = append(slices.Clone(q.CategoryIDs), id)
	})
}

func (c *Controller) RemoveCategory(id string) uint64 {
	return c.mutate(func(q *Query) {
		q.CategoryIDs = slices.DeleteFunc(slices.Clone(q.CategoryIDs), func(s string) bool { return s == id })
	})
}

func (c *Controller) SetPriceRange(r PriceRange) (uint64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return c.mutate(func(q *Query) { q.Price = r }), nil
}

func (c *Controller) ClearPriceRange() uint64 {
	return c.mutate(func(q *Query) { q.Price = DefaultPriceRange() })
}

// ClearFilters resets categories, price and sort.
func (c *Controller) ClearFilters() uint64 {
	return c.mutate(func(q *Query) {
		q.CategoryIDs = []string{}
		q.Price = DefaultPriceRange()
		q.Sort = DefaultSort
	})
}

// mutate applies a filter change, resets to page 1 and starts a fetch.
func (c *Controller) mutate(fn func(q *Query)) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(&c.query)
	c.query.Page = 1
	return c.cycle.Start(c.query.clone())
}

func (c *Controller) Wait(ctx context.Context, gen uint64) error {
	return c.cycle.Wait(ctx, gen)
}

func (c *Controller) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.clone()
}

// Find returns a product from the currently displayed page.
func (c *Controller) Find(productID string) (product.Product, bool) {
	st := c.cycle.State()
	for _, p := range st.Page.Items {
		if p.ID == productID {
			return p, true
		}
	}
	return product.Product{}, false
}

func (c *Controller) Snapshot() Snapshot {
	q := c.Query()
	st := c.cycle.State()

	return Snapshot{
		Query:            q,
		Status:           st.Status,
		Error:            st.Err,
		Items:            st.Page.Items,
		CurrentPage:      st.Page.CurrentPage,
		TotalPages:       st.Page.TotalPages,
		TotalCount:       st.Page.TotalCount,
		HasPrevious:      st.Page.HasPrevious,
		HasNext:          st.Page.HasNext,
		Window:           pager.NewWindow(st.Page.CurrentPage, st.Page.TotalPages, c.windowSize),
		HasActiveFilters: q.HasActiveFilters(),
	}
}

// Close cancels any outstanding fetch.
func (c *Controller) Close() {
	c.cycle.Close()
}
