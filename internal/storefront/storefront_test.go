package storefront

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Picces04/ToyStore-Client/internal/backend"
	"github.com/Picces04/ToyStore-Client/internal/checkout"
	"github.com/Picces04/ToyStore-Client/internal/domain/cart"
	"github.com/Picces04/ToyStore-Client/internal/domain/product"
	"github.com/Picces04/ToyStore-Client/internal/domain/wishlist"
	"github.com/Picces04/ToyStore-Client/internal/infrastructure/kafka"
	"github.com/Picces04/ToyStore-Client/internal/infrastructure/kv"
	"github.com/Picces04/ToyStore-Client/internal/infrastructure/kv/mocks"
	"github.com/Picces04/ToyStore-Client/internal/modal"
	"github.com/Picces04/ToyStore-Client/internal/pager"
	"github.com/Picces04/ToyStore-Client/internal/session"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mu       sync.Mutex
	products []product.Product
	tokens   []string
}

func (m *mockFetcher) record(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, backend.TokenFrom(ctx))
}

func (m *mockFetcher) Products(ctx context.Context, _ backend.ProductQuery) (pager.Page[product.Product], error) {
	m.record(ctx)
	return pager.Page[product.Product]{Items: m.products, CurrentPage: 1, TotalPages: 1, TotalCount: len(m.products)}, nil
}

func (m *mockFetcher) News(ctx context.Context, _ backend.NewsQuery) (pager.Page[product.BlogItem], error) {
	m.record(ctx)
	return pager.Page[product.BlogItem]{Items: []product.BlogItem{}, CurrentPage: 1, TotalPages: 1}, nil
}

func (m *mockFetcher) NewsByID(ctx context.Context, id string) (product.BlogItem, error) {
	m.record(ctx)
	return product.BlogItem{ID: id}, nil
}

func (m *mockFetcher) lastToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tokens) == 0 {
		return ""
	}
	return m.tokens[len(m.tokens)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.Activity
}

func (p *recordingPublisher) Publish(a kafka.Activity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, a)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func robot() product.Product {
	return product.Product{
		ID:        "p1",
		Name:      "Robot",
		Price:     decimal.NewFromInt(200),
		Promotion: product.NoPromotion{},
		Images:    []product.ImageRef{"/r1.png", "/r2.png"},
	}
}

func newTestStorefront(t *testing.T) (*Storefront, *mockFetcher, *recordingPublisher) {
	t.Helper()
	f := &mockFetcher{products: []product.Product{robot()}}
	pub := &recordingPublisher{}
	sf := New("visitor-1", Deps{
		Fetcher:   f,
		Storage:   kv.NewMemory(),
		Publisher: pub,
		Log:       zerolog.Nop(),
	})
	t.Cleanup(sf.Close)
	return sf, f, pub
}

func loadCatalog(t *testing.T, sf *Storefront) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sf.Catalog.Wait(ctx, sf.Catalog.Load()))
}

// ============================================
// Resolve / AddToCart
// ============================================

func TestStorefront_AddToCart_NotInView(t *testing.T) {
	sf, _, pub := newTestStorefront(t)

	_, err := sf.AddToCart("p1", 1)

	assert.ErrorIs(t, err, ErrNotInView)
	assert.Empty(t, sf.Cart.Items())
	assert.Empty(t, pub.types())
}

func TestStorefront_AddToCart_FromCatalog(t *testing.T) {
	sf, _, pub := newTestStorefront(t)
	loadCatalog(t, sf)

	totals, err := sf.AddToCart("p1", 2)

	require.NoError(t, err)
	assert.Equal(t, 2, totals.Count)
	assert.Equal(t, []string{cart.EventItemAdded}, pub.types())
}

func TestStorefront_Resolve_QuickViewAndDetails(t *testing.T) {
	sf, _, _ := newTestStorefront(t)

	other := robot()
	other.ID = "p2"
	sf.Details.Select(other)
	sf.QuickView.Open(robot())

	p, err := sf.Resolve("p1")
	require.NoError(t, err)
	assert.Equal(t, "Robot", p.Name)

	p, err = sf.Resolve("p2")
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ID)
}

func TestStorefront_AddQuickViewToCart(t *testing.T) {
	sf, _, _ := newTestStorefront(t)

	_, err := sf.AddQuickViewToCart()
	assert.ErrorIs(t, err, modal.ErrNoSelection)

	sf.QuickView.Open(robot())
	sf.QuickView.Increment()
	sf.QuickView.Increment()

	totals, err := sf.AddQuickViewToCart()
	require.NoError(t, err)
	assert.Equal(t, 3, totals.Count)
}

func TestStorefront_ShowDetails(t *testing.T) {
	sf, _, _ := newTestStorefront(t)

	_, err := sf.ShowDetails()
	assert.ErrorIs(t, err, modal.ErrNoSelection)

	sf.QuickView.Open(robot())
	require.NoError(t, sf.QuickView.SelectImage(1))

	p, err := sf.ShowDetails()
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	selected, ok := sf.Details.Selected()
	require.True(t, ok)
	assert.Equal(t, "p1", selected.ID)
	st := sf.QuickView.State()
	assert.False(t, st.Open)
	assert.Equal(t, 0, st.ImageIndex)
}

// ============================================
// Wishlist
// ============================================

func TestStorefront_ToggleWishlist(t *testing.T) {
	sf, _, pub := newTestStorefront(t)

	_, err := sf.ToggleWishlist("p1")
	assert.ErrorIs(t, err, ErrNotInView)

	loadCatalog(t, sf)
	in, err := sf.ToggleWishlist("p1")
	require.NoError(t, err)
	assert.True(t, in)

	in, err = sf.ToggleWishlist("p1")
	require.NoError(t, err)
	assert.False(t, in)
	assert.Equal(t, []string{wishlist.EventAdded, wishlist.EventRemoved}, pub.types())
}

func TestStorefront_ToggleWishlist_RemovesOffscreenEntry(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	sf.Wishlist.Add(wishlist.Entry{ProductID: "gone"})

	in, err := sf.ToggleWishlist("gone")

	require.NoError(t, err)
	assert.False(t, in)
	assert.Equal(t, 0, sf.Wishlist.Len())
}

// ============================================
// Session / Checkout
// ============================================

func TestStorefront_SignInForwardsToken(t *testing.T) {
	sf, f, pub := newTestStorefront(t)
	ctx := context.Background()

	require.NoError(t, sf.SignIn(ctx, session.User{ID: "u1", FullName: "Lan"}, "tok-1", time.Now().Add(time.Hour)))
	loadCatalog(t, sf)

	assert.Equal(t, "tok-1", f.lastToken())
	assert.True(t, sf.Session.IsAuthenticated(ctx))

	require.NoError(t, sf.Logout(ctx))
	assert.False(t, sf.Session.IsAuthenticated(ctx))
	assert.Equal(t, []string{EventSignedIn, EventLoggedOut}, pub.types())
}

func TestStorefront_Checkout(t *testing.T) {
	sf, _, pub := newTestStorefront(t)
	form := checkout.Form{
		FullName:      "Nguyen Van A",
		Email:         "a@example.com",
		Phone:         "0901234567",
		Address:       "1 Le Loi",
		PaymentMethod: checkout.PaymentCOD,
	}

	_, err := sf.Checkout(form)
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)

	sf.QuickView.Open(robot())
	_, err = sf.AddQuickViewToCart()
	require.NoError(t, err)

	draft, err := sf.Checkout(form)
	require.NoError(t, err)
	assert.Len(t, draft.Items, 1)
	assert.Len(t, sf.Cart.Items(), 1)
	assert.Contains(t, pub.types(), EventDraftCreated)
}

func TestStorefront_CloseStopsPublishing(t *testing.T) {
	sf, _, pub := newTestStorefront(t)
	sf.Close()
	sf.Close()

	sf.Cart.AddItem(cart.FromProduct(robot()), 1)

	assert.Empty(t, pub.types())
}

// ============================================
// Registry
// ============================================

func newTestRegistry(storage kv.Backend, now *time.Time) *Registry {
	deps := Deps{
		Fetcher: &mockFetcher{},
		Storage: storage,
		Log:     zerolog.Nop(),
	}
	return NewRegistry(deps, time.Minute).WithClock(func() time.Time { return *now })
}

func TestRegistry_GetReusesStorefront(t *testing.T) {
	now := time.Now()
	r := newTestRegistry(kv.NewMemory(), &now)
	defer r.Close()

	a, err := r.Get(context.Background(), "v1")
	require.NoError(t, err)
	b, err := r.Get(context.Background(), "v1")
	require.NoError(t, err)
	c, err := r.Get(context.Background(), "v2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_GetRestoresSession(t *testing.T) {
	now := time.Now()
	backendMock := mocks.NewMockBackend()
	backendMock.Seed("v1", session.KeyUser, `{"id":"u1","fullName":"Lan","email":"lan@example.com","roles":[]}`)
	backendMock.Seed("v1", session.KeyToken, "tok")
	r := newTestRegistry(backendMock, &now)
	defer r.Close()

	sf, err := r.Get(context.Background(), "v1")

	require.NoError(t, err)
	require.NotNil(t, sf.Session.User())
	assert.Equal(t, "u1", sf.Session.User().ID)
}

func TestRegistry_GetStorageError(t *testing.T) {
	now := time.Now()
	backendMock := mocks.NewMockBackend()
	backendMock.GetErr = errors.New("connection refused")
	r := newTestRegistry(backendMock, &now)

	_, err := r.Get(context.Background(), "v1")

	assert.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_SweepEvictsIdle(t *testing.T) {
	now := time.Now()
	r := newTestRegistry(kv.NewMemory(), &now)
	defer r.Close()

	_, err := r.Get(context.Background(), "old")
	require.NoError(t, err)
	now = now.Add(50 * time.Second)
	_, err = r.Get(context.Background(), "fresh")
	require.NoError(t, err)
	now = now.Add(20 * time.Second)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())

	r.Evict("fresh")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RunClosesOnShutdown(t *testing.T) {
	now := time.Now()
	r := newTestRegistry(kv.NewMemory(), &now)
	_, err := r.Get(context.Background(), "v1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, 0, r.Len())
}

type purgingBackend struct {
	*kv.Memory
	purged int
	err    error
}

func (p *purgingBackend) Purge(context.Context) (int64, error) {
	p.purged++
	return 3, p.err
}

func TestRegistry_PurgeStorage(t *testing.T) {
	now := time.Now()
	storage := &purgingBackend{Memory: kv.NewMemory()}
	r := newTestRegistry(storage, &now)
	defer r.Close()

	n, err := r.PurgeStorage(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 1, storage.purged)

	storage.err = errors.New("connection reset")
	_, err = r.PurgeStorage(context.Background())
	assert.Error(t, err)
}

func TestRegistry_PurgeStorage_NotAPurger(t *testing.T) {
	now := time.Now()
	r := newTestRegistry(kv.NewMemory(), &now)
	defer r.Close()

	n, err := r.PurgeStorage(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
}
