package cart

import "github.com/shopspring/decimal"

const (
	EventItemAdded       = "ItemAddedToCart"
	EventItemRemoved     = "ItemRemovedFromCart"
	EventQuantityChanged = "CartQuantityChanged"
	EventCartCleared     = "CartCleared"
)

// Event describes a completed cart mutation. Listeners receive it after the
// store lock is released.
type Event struct {
	Type      string          `json:"type"`
	ProductID string          `json:"product_id,omitempty"`
	Quantity  int             `json:"quantity"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
}
