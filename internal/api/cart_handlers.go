package api

import (
	"net/http"

	"github.com/Picces04/ToyStore-Client/internal/readmodel"
	"github.com/go-chi/chi/v5"
)

// Listing components that add products directly from a product card.
const (
	SourceGrid = "grid"
	SourceList = "list"
)

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Source    string `json:"source,omitempty"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handlers) checkSource(source string) error {
	if (source == SourceGrid || source == SourceList) && !h.opts.ListingQuickAdd {
		return ErrListingQuickAddDisabled
	}
	return nil
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, readmodel.NewCart(sf.Cart.Items()))
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	sf.Cart.Clear()
	respondJSON(w, r, http.StatusOK, readmodel.NewCart(nil))
}

// AddToCart adds a product the visitor is currently viewing.
func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req addToCartRequest
	if err := decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	if err := h.checkSource(req.Source); err != nil {
		h.respondErr(w, r, err)
		return
	}

	if _, err := sf.AddToCart(req.ProductID, req.Quantity); err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, readmodel.NewCart(sf.Cart.Items()))
}

func (h *Handlers) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req quantityRequest
	if err := decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	sf.Cart.SetQuantity(chi.URLParam(r, "productID"), req.Quantity)
	respondJSON(w, r, http.StatusOK, readmodel.NewCart(sf.Cart.Items()))
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	sf.Cart.RemoveItem(chi.URLParam(r, "productID"))
	respondJSON(w, r, http.StatusOK, readmodel.NewCart(sf.Cart.Items()))
}

// Wishlist Handlers

func (h *Handlers) GetWishlist(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, readmodel.NewWishlist(sf.Wishlist.Items()))
}

func (h *Handlers) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	if err := h.checkSource(r.URL.Query().Get("source")); err != nil {
		h.respondErr(w, r, err)
		return
	}

	productID := chi.URLParam(r, "productID")
	in, err := sf.ToggleWishlist(productID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, readmodel.ToggleReadModel{
		ProductID:  productID,
		InWishlist: in,
		Count:      sf.Wishlist.Len(),
	})
}

func (h *Handlers) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	sf.Wishlist.Remove(chi.URLParam(r, "productID"))
	respondJSON(w, r, http.StatusOK, readmodel.NewWishlist(sf.Wishlist.Items()))
}
