package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Picces04/ToyStore-Client/internal/api/middleware"
	"github.com/Picces04/ToyStore-Client/internal/backend"
	"github.com/Picces04/ToyStore-Client/internal/domain/product"
	"github.com/Picces04/ToyStore-Client/internal/storefront"
	"github.com/rs/zerolog"
)

// Shop is the visitor-independent part of the backend.
type Shop interface {
	Categories(ctx context.Context, page, pageSize int) ([]product.Category, error)
	BestSellers(ctx context.Context, year int, month time.Month, topN int) ([]product.BestSeller, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	ListingQuickAdd bool
	LatestPosts     int
	BestSellersTopN int
	// MaxListSize caps the client-chosen size of the latest posts and best
	// seller lists.
	MaxListSize int
}

type Handlers struct {
	registry *storefront.Registry
	shop     Shop
	storage  Pinger
	opts     Options
	now      func() time.Time
	log      zerolog.Logger
}

func NewHandlers(registry *storefront.Registry, shop Shop, storage Pinger, opts Options, log zerolog.Logger) *Handlers {
	if opts.LatestPosts <= 0 {
		opts.LatestPosts = 3
	}
	if opts.BestSellersTopN <= 0 {
		opts.BestSellersTopN = 8
	}
	if opts.MaxListSize <= 0 {
		opts.MaxListSize = 20
	}
	return &Handlers{
		registry: registry,
		shop:     shop,
		storage:  storage,
		opts:     opts,
		now:      time.Now,
		log:      log.With().Str("component", "api").Logger(),
	}
}

// WithClock replaces the clock that picks the best-seller month.
func (h *Handlers) WithClock(now func() time.Time) *Handlers {
	h.now = now
	return h
}

// storefront loads the calling visitor's storefront and answers the request
// itself when that fails.
func (h *Handlers) storefront(w http.ResponseWriter, r *http.Request) (*storefront.Storefront, bool) {
	sf, err := h.registry.Get(r.Context(), middleware.VisitorID(r.Context()))
	if err != nil {
		h.respondErr(w, r, err)
		return nil, false
	}
	return sf, true
}

// backendContext forwards the visitor's bearer token, if signed in.
func backendContext(r *http.Request, sf *storefront.Storefront) context.Context {
	ctx := r.Context()
	if tok, ok, err := sf.Session.Token(ctx); err == nil && ok {
		return backend.WithToken(ctx, tok)
	}
	return ctx
}

// settle waits for the fetch issued by this request. A request that gives up
// early still gets the current snapshot.
func (h *Handlers) settle(r *http.Request, wait func(context.Context, uint64) error, gen uint64) {
	if err := wait(r.Context(), gen); err != nil {
		h.log.Debug().Err(err).Uint64("generation", gen).Msg("stopped waiting for fetch")
	}
}

// Health Handlers

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("storage not ready")
		respondJSONError(w, r, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// listSize reads a positive size from the query parameter key, capped at
// MaxListSize. Missing or invalid values yield def.
func (h *Handlers) listSize(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return min(v, h.opts.MaxListSize)
}
