package cart

import (
	"sync"

	"github.com/Picces04/ToyStore-Client/internal/domain/product"
	"github.com/shopspring/decimal"
)

// LineItem is one product in the cart with its quantity.
type LineItem struct {
	ProductID       string             `json:"productId"`
	Title           string             `json:"title"`
	Price           decimal.Decimal    `json:"price"`
	DiscountedPrice *decimal.Decimal   `json:"discountedPrice,omitempty"`
	Quantity        int                `json:"quantity"`
	Images          []product.ImageRef `json:"images"`
}

// FromProduct snapshots the display fields of a product into a line item with quantity 1.
func FromProduct(p product.Product) LineItem {
	return LineItem{
		ProductID:       p.ID,
		Title:           p.Name,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice(),
		Quantity:        1,
		Images:          append([]product.ImageRef(nil), p.Images...),
	}
}

// UnitPrice is discountedPrice ?? price.
func (li LineItem) UnitPrice() decimal.Decimal {
	if li.DiscountedPrice != nil {
		return *li.DiscountedPrice
	}
	return li.Price
}

func (li LineItem) clone() LineItem {
	li.Images = append([]product.ImageRef(nil), li.Images...)
	if li.DiscountedPrice != nil {
		d := *li.DiscountedPrice
		li.DiscountedPrice = &d
	}
	return li
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Totals are the derived cart selectors.
type Totals struct {
	Count int             `json:"count"`
	Price decimal.Decimal `json:"price"`
}

type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Store is an ordered cart keyed by product ID. It holds at most one line
// item per product.
type Store struct {
	mu        sync.Mutex
	items     []LineItem
	listeners []subscription
	nextSubID int
}

func NewStore() *Store {
	return &Store{}
}

// AddItem increments the quantity of an existing line or appends a new one.
// Quantities below 1 are clamped to 1.
func (s *Store) AddItem(item LineItem, quantity int) Totals {
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	if i := s.indexOf(item.ProductID); i >= 0 {
		existing := s.items[i]
		existing.Quantity += quantity
		existing.Price = item.Price
		existing.DiscountedPrice = item.clone().DiscountedPrice
		s.items[i] = existing
	} else {
		item.Quantity = quantity
		s.items = append(s.items, item.clone())
	}
	totals := s.totalsLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, Event{Type: EventItemAdded, ProductID: item.ProductID, Quantity: quantity, Count: totals.Count, Total: totals.Price})
	return totals
}

// RemoveItem deletes the line for productID; absent products are a no-op.
func (s *Store) RemoveItem(productID string) Totals {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		totals := s.totalsLocked()
		s.mu.Unlock()
		return totals
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	totals := s.totalsLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, Event{Type: EventItemRemoved, ProductID: productID, Count: totals.Count, Total: totals.Price})
	return totals
}

// SetQuantity updates a line in place; qty <= 0 removes it.
func (s *Store) SetQuantity(productID string, qty int) Totals {
	if qty <= 0 {
		return s.RemoveItem(productID)
	}

	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		totals := s.totalsLocked()
		s.mu.Unlock()
		return totals
	}
	s.items[i].Quantity = qty
	totals := s.totalsLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, Event{Type: EventQuantityChanged, ProductID: productID, Quantity: qty, Count: totals.Count, Total: totals.Price})
	return totals
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, Event{Type: EventCartCleared, Total: decimal.Zero})
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.clone()
	}
	return out
}

// Get returns the line for productID.
func (s *Store) Get(productID string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		return s.items[i].clone(), true
	}
	return LineItem{}, false
}

// TotalPrice sums (discountedPrice ?? price) * quantity over all lines.
func (s *Store) TotalPrice() decimal.Decimal {
	return s.Totals().Price
}

// Count is the total number of units, used for the header badge.
func (s *Store) Count() int {
	return s.Totals().Count
}

func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalsLocked()
}

// Subscribe registers fn for every subsequent mutation and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) indexOf(productID string) int {
	for i, it := range s.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) totalsLocked() Totals {
	total := decimal.Zero
	count := 0
	for _, it := range s.items {
		total = total.Add(it.Subtotal())
		count += it.Quantity
	}
	return Totals{Count: count, Price: total}
}

func (s *Store) listenersLocked() []Listener {
	out := make([]Listener, len(s.listeners))
	for i, sub := range s.listeners {
		out[i] = sub.fn
	}
	return out
}

func notify(listeners []Listener, ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}
