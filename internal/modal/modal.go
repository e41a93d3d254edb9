package modal

import (
	"errors"
	"sync"

	"github.com/Picces04/ToyStore-Client/internal/domain/product"
)

var (
	ErrNoSelection     = errors.New("no product selected")
	ErrImageOutOfRange = errors.New("image index out of range")
)

// Flag is an open/closed switch for a single overlay.
type Flag struct {
	mu   sync.RWMutex
	open bool
}

func (f *Flag) Open() {
	f.mu.Lock()
	f.open = true
	f.mu.Unlock()
}

func (f *Flag) Close() {
	f.mu.Lock()
	f.open = false
	f.mu.Unlock()
}

func (f *Flag) IsOpen() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.open
}

// CartSidebar is the slide-in cart panel.
type CartSidebar = Flag

// PreviewSlider is the full-screen image viewer. Closing it returns to the
// first image.
type PreviewSlider struct {
	mu    sync.RWMutex
	open  bool
	index int
}

type PreviewState struct {
	Open  bool `json:"open"`
	Index int  `json:"index"`
}

// Open shows the slider at image index; negative indexes start at 0.
func (p *PreviewSlider) Open(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.open = true
	p.index = max(index, 0)
}

func (p *PreviewSlider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.open = false
	p.index = 0
}

func (p *PreviewSlider) State() PreviewState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PreviewState{Open: p.open, Index: p.index}
}

// Details is the product selected for the detail page.
type Details struct {
	mu       sync.RWMutex
	selected *product.Product
}

func (d *Details) Select(p product.Product) {
	d.mu.Lock()
	d.selected = &p
	d.mu.Unlock()
}

func (d *Details) Selected() (product.Product, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.selected == nil {
		return product.Product{}, false
	}
	return *d.selected, true
}

func (d *Details) Clear() {
	d.mu.Lock()
	d.selected = nil
	d.mu.Unlock()
}
