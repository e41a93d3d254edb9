package api

import (
	"net/http"

	"github.com/Picces04/ToyStore-Client/internal/readmodel"
)

type openQuickViewRequest struct {
	ProductID string `json:"productId"`
}

type imageRequest struct {
	Index int `json:"index"`
}

type stepRequest struct {
	Action string `json:"action"`
}

// Quick View Handlers

func (h *Handlers) GetQuickView(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, sf.QuickView.State())
}

// OpenQuickView opens the modal on a product the visitor is viewing.
func (h *Handlers) OpenQuickView(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req openQuickViewRequest
	if err := decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	p, err := sf.Resolve(req.ProductID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	sf.QuickView.Open(p)
	respondJSON(w, r, http.StatusOK, sf.QuickView.State())
}

func (h *Handlers) CloseQuickView(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	sf.QuickView.Close()
	respondJSON(w, r, http.StatusOK, sf.QuickView.State())
}

func (h *Handlers) SelectQuickViewImage(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req imageRequest
	if err := decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	if err := sf.QuickView.SelectImage(req.Index); err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sf.QuickView.State())
}

// StepQuickViewQuantity moves the quantity stepper by one.
func (h *Handlers) StepQuickViewQuantity(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req stepRequest
	if err := decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	var qty int
	switch req.Action {
	case "increment":
		qty = sf.QuickView.Increment()
	case "decrement":
		qty = sf.QuickView.Decrement()
	default:
		respondJSONError(w, r, "action must be increment or decrement", http.StatusBadRequest)
		return
	}
	respondJSON(w, r, http.StatusOK, readmodel.QuantityReadModel{Quantity: qty})
}

func (h *Handlers) AddQuickViewToCart(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	if _, err := sf.AddQuickViewToCart(); err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, readmodel.NewCart(sf.Cart.Items()))
}

func (h *Handlers) ShowQuickViewDetails(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	p, err := sf.ShowDetails()
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, readmodel.DetailsReadModel{Product: &p})
}

// Modal Handlers

func (h *Handlers) GetCartSidebar(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, readmodel.FlagReadModel{Open: sf.CartSidebar.IsOpen()})
}

func (h *Handlers) OpenCartSidebar(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	sf.CartSidebar.Open()
	respondJSON(w, r, http.StatusOK, readmodel.FlagReadModel{Open: true})
}

func (h *Handlers) CloseCartSidebar(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	sf.CartSidebar.Close()
	respondJSON(w, r, http.StatusOK, readmodel.FlagReadModel{Open: false})
}

func (h *Handlers) GetPreview(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, sf.Preview.State())
}

func (h *Handlers) OpenPreview(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req imageRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			h.respondErr(w, r, err)
			return
		}
	}
	sf.Preview.Open(req.Index)
	respondJSON(w, r, http.StatusOK, sf.Preview.State())
}

func (h *Handlers) ClosePreview(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	sf.Preview.Close()
	respondJSON(w, r, http.StatusOK, sf.Preview.State())
}

// Details Handlers

func (h *Handlers) GetDetails(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var out readmodel.DetailsReadModel
	if p, ok := sf.Details.Selected(); ok {
		out.Product = &p
	}
	respondJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) ClearDetails(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	sf.Details.Clear()
	respondJSON(w, r, http.StatusOK, readmodel.DetailsReadModel{})
}
