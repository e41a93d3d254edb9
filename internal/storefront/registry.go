package storefront

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Picces04/ToyStore-Client/internal/infrastructure/kv"
	"github.com/rs/zerolog"
)

// Registry maps visitor IDs to their storefronts and closes the ones that
// have been idle for longer than the idle TTL.
type Registry struct {
	mu       sync.Mutex
	visitors map[string]*Storefront
	deps     Deps
	idleTTL  time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	return &Registry{
		visitors: make(map[string]*Storefront),
		deps:     deps,
		idleTTL:  idleTTL,
		now:      time.Now,
		log:      deps.Log.With().Str("component", "registry").Logger(),
	}
}

// WithClock replaces the clock used for idle tracking.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Get returns the visitor's storefront, creating it and restoring its session
// on first use.
func (r *Registry) Get(ctx context.Context, visitorID string) (*Storefront, error) {
	const op = "Registry.Get"

	r.mu.Lock()
	if sf, ok := r.visitors[visitorID]; ok {
		r.mu.Unlock()
		sf.touch(r.now())
		return sf, nil
	}
	r.mu.Unlock()

	sf := New(visitorID, r.deps)
	if err := sf.Session.Init(ctx); err != nil {
		sf.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	if existing, ok := r.visitors[visitorID]; ok {
		r.mu.Unlock()
		sf.Close()
		existing.touch(r.now())
		return existing, nil
	}
	r.visitors[visitorID] = sf
	r.mu.Unlock()

	sf.touch(r.now())
	r.log.Debug().Str("visitor", visitorID).Msg("storefront created")
	return sf, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Evict closes and forgets one visitor's storefront.
func (r *Registry) Evict(visitorID string) {
	r.mu.Lock()
	sf, ok := r.visitors[visitorID]
	delete(r.visitors, visitorID)
	r.mu.Unlock()

	if ok {
		sf.Close()
	}
}

// Sweep evicts every storefront idle for longer than the TTL and reports how
// many were evicted.
func (r *Registry) Sweep() int {
	now := r.now()

	var idle []*Storefront
	r.mu.Lock()
	for id, sf := range r.visitors {
		if sf.idleSince(now) > r.idleTTL {
			idle = append(idle, sf)
			delete(r.visitors, id)
		}
	}
	r.mu.Unlock()

	for _, sf := range idle {
		sf.Close()
	}
	if len(idle) > 0 {
		r.log.Info().Int("evicted", len(idle)).Msg("idle storefronts evicted")
	}
	return len(idle)
}

// PurgeStorage drops expired session values from storage that does not expire
// them itself.
func (r *Registry) PurgeStorage(ctx context.Context) (int64, error) {
	p, ok := r.deps.Storage.(kv.Purger)
	if !ok {
		return 0, nil
	}
	n, err := p.Purge(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.log.Info().Int64("purged", n).Msg("expired session values purged")
	}
	return n, nil
}

// Run sweeps periodically until ctx ends, then closes every storefront.
// Each sweep also purges expired session values.
func (r *Registry) Run(ctx context.Context) error {
	interval := r.idleTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
			if _, err := r.PurgeStorage(ctx); err != nil {
				r.log.Error().Err(err).Msg("failed to purge session storage")
			}
		case <-ctx.Done():
			r.Close()
			return nil
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	all := r.visitors
	r.visitors = make(map[string]*Storefront)
	r.mu.Unlock()

	for _, sf := range all {
		sf.Close()
	}
}
