package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Picces04/ToyStore-Client/internal/backend"
	"github.com/Picces04/ToyStore-Client/internal/blog"
	"github.com/Picces04/ToyStore-Client/internal/catalog"
	"github.com/Picces04/ToyStore-Client/internal/checkout"
	"github.com/Picces04/ToyStore-Client/internal/domain/cart"
	"github.com/Picces04/ToyStore-Client/internal/domain/product"
	"github.com/Picces04/ToyStore-Client/internal/domain/wishlist"
	"github.com/Picces04/ToyStore-Client/internal/infrastructure/kafka"
	"github.com/Picces04/ToyStore-Client/internal/infrastructure/kv"
	"github.com/Picces04/ToyStore-Client/internal/modal"
	"github.com/Picces04/ToyStore-Client/internal/pager"
	"github.com/Picces04/ToyStore-Client/internal/session"
	"github.com/rs/zerolog"
)

var ErrNotInView = errors.New("product is not in view")

const (
	EventSignedIn     = "SignedIn"
	EventLoggedOut    = "LoggedOut"
	EventDraftCreated = "CheckoutDraftCreated"
)

// Fetcher is the part of the backend client a visitor's controllers use.
type Fetcher interface {
	catalog.ProductFetcher
	blog.NewsFetcher
}

// Deps are shared by every visitor's storefront.
type Deps struct {
	Fetcher   Fetcher
	Storage   kv.Backend
	Publisher kafka.ActivityPublisher
	Checkout  *checkout.Builder
	Catalog   catalog.Options
	Blog      blog.Options
	Log       zerolog.Logger
}

// Storefront is everything one visitor holds: session, cart, wishlist, the
// modal coordinators and the catalog and blog controllers.
type Storefront struct {
	VisitorID   string
	Session     *session.Store
	Cart        *cart.Store
	Wishlist    *wishlist.Store
	QuickView   *modal.QuickView
	Details     *modal.Details
	CartSidebar *modal.CartSidebar
	Preview     *modal.PreviewSlider
	Catalog     *catalog.Controller
	Blog        *blog.Controller

	publisher kafka.ActivityPublisher
	checkout  *checkout.Builder
	cancel    context.CancelFunc
	unsub     []func()

	mu       sync.Mutex
	lastSeen time.Time
	closed   bool
}

// New builds a storefront for visitorID. The controllers' fetches live until
// Close.
func New(visitorID string, deps Deps) *Storefront {
	ctx, cancel := context.WithCancel(context.Background())
	log := deps.Log.With().Str("visitor", visitorID).Logger()

	pub := deps.Publisher
	if pub == nil {
		pub = kafka.NopPublisher{}
	}
	builder := deps.Checkout
	if builder == nil {
		builder = checkout.NewBuilder()
	}

	sess := session.NewStore(kv.Namespace(deps.Storage, visitorID), log)
	fetcher := &tokenFetcher{inner: deps.Fetcher, session: sess}

	sf := &Storefront{
		VisitorID:   visitorID,
		Session:     sess,
		Cart:        cart.NewStore(),
		Wishlist:    wishlist.NewStore(),
		QuickView:   modal.NewQuickView(),
		Details:     &modal.Details{},
		CartSidebar: &modal.CartSidebar{},
		Preview:     &modal.PreviewSlider{},
		Catalog:     catalog.New(ctx, fetcher, deps.Catalog, log),
		Blog:        blog.New(ctx, fetcher, deps.Blog, log),
		publisher:   pub,
		checkout:    builder,
		cancel:      cancel,
	}

	sf.unsub = append(sf.unsub,
		sf.Cart.Subscribe(func(ev cart.Event) {
			pub.Publish(kafka.NewActivity(kafka.ActivityCart, ev.Type, visitorID, ev))
		}),
		sf.Wishlist.Subscribe(func(ev wishlist.Event) {
			pub.Publish(kafka.NewActivity(kafka.ActivityWishlist, ev.Type, visitorID, ev))
		}),
	)
	return sf
}

// Resolve finds a product the visitor currently has on screen: the quick-view
// selection, the detail page selection or an item of the loaded catalog page.
func (s *Storefront) Resolve(productID string) (product.Product, error) {
	if p, _, ok := s.QuickView.Selection(); ok && p.ID == productID {
		return p, nil
	}
	if p, ok := s.Details.Selected(); ok && p.ID == productID {
		return p, nil
	}
	if p, ok := s.Catalog.Find(productID); ok {
		return p, nil
	}
	return product.Product{}, fmt.Errorf("%s: %w", productID, ErrNotInView)
}

// AddToCart adds a product the visitor is viewing.
func (s *Storefront) AddToCart(productID string, qty int) (cart.Totals, error) {
	p, err := s.Resolve(productID)
	if err != nil {
		return cart.Totals{}, err
	}
	return s.Cart.AddItem(cart.FromProduct(p), qty), nil
}

// AddQuickViewToCart adds the quick-view product with the stepper quantity.
func (s *Storefront) AddQuickViewToCart() (cart.Totals, error) {
	p, qty, ok := s.QuickView.Selection()
	if !ok {
		return cart.Totals{}, modal.ErrNoSelection
	}
	return s.Cart.AddItem(cart.FromProduct(p), qty), nil
}

// ToggleWishlist flips membership of a product the visitor is viewing. Saved
// products can always be removed, even when no longer on screen.
func (s *Storefront) ToggleWishlist(productID string) (bool, error) {
	if s.Wishlist.Contains(productID) {
		s.Wishlist.Remove(productID)
		return false, nil
	}
	p, err := s.Resolve(productID)
	if err != nil {
		return false, err
	}
	return s.Wishlist.Toggle(wishlist.FromProduct(p)), nil
}

// ShowDetails moves the quick-view selection to the detail page and closes
// the quick view.
func (s *Storefront) ShowDetails() (product.Product, error) {
	p, _, ok := s.QuickView.Selection()
	if !ok {
		return product.Product{}, modal.ErrNoSelection
	}
	s.Details.Select(p)
	s.QuickView.Close()
	return p, nil
}

func (s *Storefront) SignIn(ctx context.Context, u session.User, token string, expiry time.Time) error {
	if err := s.Session.SignIn(ctx, u, token, expiry); err != nil {
		return err
	}
	s.publisher.Publish(kafka.NewActivity(kafka.ActivitySession, EventSignedIn, s.VisitorID, map[string]string{"user_id": u.ID}))
	return nil
}

func (s *Storefront) Logout(ctx context.Context) error {
	err := s.Session.Logout(ctx)
	s.publisher.Publish(kafka.NewActivity(kafka.ActivitySession, EventLoggedOut, s.VisitorID, nil))
	return err
}

// Checkout validates the form against the current cart and returns an order
// draft. The cart is left as is.
func (s *Storefront) Checkout(form checkout.Form) (checkout.Draft, error) {
	draft, err := s.checkout.Build(form, s.Cart.Items())
	if err != nil {
		return checkout.Draft{}, err
	}
	s.publisher.Publish(kafka.NewActivity(kafka.ActivityCheckout, EventDraftCreated, s.VisitorID, draft))
	return draft, nil
}

func (s *Storefront) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Storefront) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Close cancels outstanding fetches and detaches activity listeners. It is
// safe to call more than once.
func (s *Storefront) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	for _, fn := range s.unsub {
		fn()
	}
	s.Catalog.Close()
	s.Blog.Close()
	s.cancel()
}

// tokenFetcher forwards the visitor's bearer token to the backend.
type tokenFetcher struct {
	inner   Fetcher
	session *session.Store
}

func (f *tokenFetcher) withToken(ctx context.Context) context.Context {
	if tok, ok, err := f.session.Token(ctx); err == nil && ok {
		return backend.WithToken(ctx, tok)
	}
	return ctx
}

func (f *tokenFetcher) Products(ctx context.Context, q backend.ProductQuery) (pager.Page[product.Product], error) {
	return f.inner.Products(f.withToken(ctx), q)
}

func (f *tokenFetcher) News(ctx context.Context, q backend.NewsQuery) (pager.Page[product.BlogItem], error) {
	return f.inner.News(f.withToken(ctx), q)
}

func (f *tokenFetcher) NewsByID(ctx context.Context, id string) (product.BlogItem, error) {
	return f.inner.NewsByID(f.withToken(ctx), id)
}
