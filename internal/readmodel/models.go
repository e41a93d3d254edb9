package readmodel

import (
	"github.com/Picces04/ToyStore-Client/internal/domain/cart"
	"github.com/Picces04/ToyStore-Client/internal/domain/product"
	"github.com/Picces04/ToyStore-Client/internal/domain/wishlist"
	"github.com/Picces04/ToyStore-Client/internal/modal"
	"github.com/shopspring/decimal"
)

// CartItemReadModel represents an item in the cart
type CartItemReadModel struct {
	cart.LineItem
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	Cover     product.ImageRef `json:"cover"`
}

// CartReadModel is the read model for shopping cart
type CartReadModel struct {
	Items []CartItemReadModel `json:"items"`
	Count int                 `json:"count"`
	Total decimal.Decimal     `json:"total"`
}

func NewCart(items []cart.LineItem) CartReadModel {
	out := CartReadModel{Items: make([]CartItemReadModel, 0, len(items)), Total: decimal.Zero}
	for _, li := range items {
		sub := li.Subtotal()
		out.Items = append(out.Items, CartItemReadModel{
			LineItem:  li,
			UnitPrice: li.UnitPrice(),
			Subtotal:  sub,
			Cover:     product.Cover(li.Images),
		})
		out.Count += li.Quantity
		out.Total = out.Total.Add(sub)
	}
	return out
}

// WishlistReadModel is the read model for the wishlist
type WishlistReadModel struct {
	Items []wishlist.Entry `json:"items"`
	Count int              `json:"count"`
}

func NewWishlist(entries []wishlist.Entry) WishlistReadModel {
	if entries == nil {
		entries = []wishlist.Entry{}
	}
	return WishlistReadModel{Items: entries, Count: len(entries)}
}

// ToggleReadModel answers a wishlist toggle.
type ToggleReadModel struct {
	ProductID  string `json:"productId"`
	InWishlist bool   `json:"inWishlist"`
	Count      int    `json:"count"`
}

// FlagReadModel is the visibility of a simple modal.
type FlagReadModel struct {
	Open bool `json:"open"`
}

// DetailsReadModel is the product picked for the detail page.
type DetailsReadModel struct {
	Product *product.Product `json:"product"`
}

// QuantityReadModel answers a quick-view stepper change.
type QuantityReadModel struct {
	Quantity int `json:"quantity"`
}

type PreviewReadModel = modal.PreviewState

type QuickViewReadModel = modal.QuickViewState
