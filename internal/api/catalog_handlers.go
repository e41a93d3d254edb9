package api

import (
	"net/http"
	"strconv"

	"github.com/Picces04/ToyStore-Client/internal/catalog"
	"github.com/Picces04/ToyStore-Client/internal/domain/product"
	"github.com/Picces04/ToyStore-Client/internal/storefront"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const categoryPageSize = 100

type pageRequest struct {
	Page int `json:"page"`
}

type sortRequest struct {
	Sort string `json:"sort"`
}

type categoriesRequest struct {
	CategoryIDs []string `json:"categoryIds"`
}

type priceRequest struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Catalog Handlers

// GetCatalog returns the catalog, loading the first page on first use. A
// category query parameter narrows the listing to that category whenever it
// differs from the current selection.
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}

	var gen uint64
	if id := r.URL.Query().Get("category"); id != "" {
		gen = sf.Catalog.FollowCategory(id)
	} else {
		gen = sf.Catalog.Load()
	}
	h.respondCatalog(w, r, sf, gen)
}

func (h *Handlers) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	h.respondCatalog(w, r, sf, sf.Catalog.Refresh())
}

func (h *Handlers) SetCatalogPage(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req pageRequest
	if err := decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	gen, err := sf.Catalog.SetPage(req.Page)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondCatalog(w, r, sf, gen)
}

func (h *Handlers) SetCatalogSort(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req sortRequest
	if err := decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	s, err := catalog.ParseSort(req.Sort)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	gen, err := sf.Catalog.SetSort(s)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondCatalog(w, r, sf, gen)
}

func (h *Handlers) ClearCatalogSort(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	h.respondCatalog(w, r, sf, sf.Catalog.ClearSort())
}

func (h *Handlers) SetCatalogCategories(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req categoriesRequest
	if err := decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondCatalog(w, r, sf, sf.Catalog.SetCategories(req.CategoryIDs))
}

func (h *Handlers) ToggleCatalogCategory(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	h.respondCatalog(w, r, sf, sf.Catalog.ToggleCategory(chi.URLParam(r, "id")))
}

func (h *Handlers) RemoveCatalogCategory(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	h.respondCatalog(w, r, sf, sf.Catalog.RemoveCategory(chi.URLParam(r, "id")))
}

func (h *Handlers) SetCatalogPrice(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req priceRequest
	if err := decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	gen, err := sf.Catalog.SetPriceRange(catalog.PriceRange{Min: req.Min, Max: req.Max})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondCatalog(w, r, sf, gen)
}

func (h *Handlers) ClearCatalogPrice(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	h.respondCatalog(w, r, sf, sf.Catalog.ClearPriceRange())
}

func (h *Handlers) ClearCatalogFilters(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	h.respondCatalog(w, r, sf, sf.Catalog.ClearFilters())
}

func (h *Handlers) respondCatalog(w http.ResponseWriter, r *http.Request, sf *storefront.Storefront, gen uint64) {
	h.settle(r, sf.Catalog.Wait, gen)
	respondJSON(w, r, http.StatusOK, sf.Catalog.Snapshot())
}

// Category Handlers

// ListCategories returns the top-level categories, or every category with
// ?all=true.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}

	categories, err := h.shop.Categories(backendContext(r, sf), 1, categoryPageSize)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); !all {
		categories = product.TopLevel(categories)
	}
	if categories == nil {
		categories = []product.Category{}
	}
	respondJSON(w, r, http.StatusOK, categories)
}

// ListBestSellers returns this month's best sellers.
func (h *Handlers) ListBestSellers(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}

	topN := h.listSize(r, "topN", h.opts.BestSellersTopN)
	now := h.now()

	items, err := h.shop.BestSellers(backendContext(r, sf), now.Year(), now.Month(), topN)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if items == nil {
		items = []product.BestSeller{}
	}
	respondJSON(w, r, http.StatusOK, items)
}
