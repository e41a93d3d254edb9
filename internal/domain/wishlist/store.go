package wishlist

import (
	"sync"

	"github.com/Picces04/ToyStore-Client/internal/domain/product"
	"github.com/shopspring/decimal"
)

// Entry is a saved product. The wishlist holds at most one entry per product.
type Entry struct {
	ProductID       string           `json:"productId"`
	Title           string           `json:"title"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice,omitempty"`
	Image           product.ImageRef `json:"image"`
	Status          int              `json:"status"`
}

func FromProduct(p product.Product) Entry {
	return Entry{
		ProductID:       p.ID,
		Title:           p.Name,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice(),
		Image:           p.Cover(),
		Status:          p.Status,
	}
}

const (
	EventAdded   = "WishlistItemAdded"
	EventRemoved = "WishlistItemRemoved"
	EventCleared = "WishlistCleared"
)

type Event struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id,omitempty"`
	Len       int    `json:"len"`
}

type Listener func(Event)

type Store struct {
	mu        sync.Mutex
	entries   []Entry
	listeners map[int]Listener
	nextSubID int
}

func NewStore() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// Toggle adds the entry when absent and removes it when present. It reports
// whether the product is in the wishlist afterwards.
func (s *Store) Toggle(e Entry) bool {
	s.mu.Lock()
	var ev Event
	added := false
	if i := s.indexOf(e.ProductID); i >= 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		ev = Event{Type: EventRemoved, ProductID: e.ProductID}
	} else {
		s.entries = append(s.entries, e)
		ev = Event{Type: EventAdded, ProductID: e.ProductID}
		added = true
	}
	ev.Len = len(s.entries)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, ev)
	return added
}

// Add is a no-op when the product is already saved.
func (s *Store) Add(e Entry) {
	s.mu.Lock()
	if s.indexOf(e.ProductID) >= 0 {
		s.mu.Unlock()
		return
	}
	s.entries = append(s.entries, e)
	ev := Event{Type: EventAdded, ProductID: e.ProductID, Len: len(s.entries)}
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, ev)
}

// Remove reports whether an entry was deleted.
func (s *Store) Remove(productID string) bool {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	ev := Event{Type: EventRemoved, ProductID: productID, Len: len(s.entries)}
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, ev)
	return true
}

func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(productID) >= 0
}

func (s *Store) Items() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = nil
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, Event{Type: EventCleared})
}

func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) indexOf(productID string) int {
	for i, e := range s.entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) listenersLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []Listener, ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}
