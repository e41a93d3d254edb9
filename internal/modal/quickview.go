package modal

import (
	"sync"

	"github.com/Picces04/ToyStore-Client/internal/domain/product"
)

// QuickView is the product quick-view modal: the selected product, the image
// being shown and the quantity stepper.
type QuickView struct {
	mu       sync.RWMutex
	open     bool
	product  *product.Product
	image    int
	quantity int
}

type QuickViewState struct {
	Open       bool             `json:"open"`
	Product    *product.Product `json:"product"`
	ImageIndex int              `json:"imageIndex"`
	Quantity   int              `json:"quantity"`
}

func NewQuickView() *QuickView {
	return &QuickView{quantity: 1}
}

// Open selects p and shows the modal from its first image with quantity 1.
func (q *QuickView) Open(p product.Product) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.open = true
	q.product = &p
	q.image = 0
	q.quantity = 1
}

// Close hides the modal and resets the image index and stepper. The product
// stays selected so it can still be moved to the detail page.
func (q *QuickView) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.open = false
	q.image = 0
	q.quantity = 1
}

func (q *QuickView) SelectImage(i int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.product == nil {
		return ErrNoSelection
	}
	if i < 0 || i >= len(q.product.Images) {
		return ErrImageOutOfRange
	}
	q.image = i
	return nil
}

func (q *QuickView) Increment() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.quantity++
	return q.quantity
}

// Decrement never goes below 1.
func (q *QuickView) Decrement() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.quantity > 1 {
		q.quantity--
	}
	return q.quantity
}

// Selection returns the selected product and the stepper quantity.
func (q *QuickView) Selection() (product.Product, int, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.product == nil {
		return product.Product{}, 0, false
	}
	return *q.product, q.quantity, true
}

func (q *QuickView) State() QuickViewState {
	q.mu.RLock()
	defer q.mu.RUnlock()

	st := QuickViewState{Open: q.open, ImageIndex: q.image, Quantity: q.quantity}
	if q.product != nil {
		p := *q.product
		st.Product = &p
	}
	return st
}
