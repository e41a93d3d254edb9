package product

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Promotion is one of NoPromotion, Discount or Label. Callers switch on the
// concrete type instead of probing fields.
type Promotion interface {
	isPromotion()
}

// NoPromotion marks a product sold at list price.
type NoPromotion struct{}

// Discount is a promotion that lowers the selling price.
type Discount struct {
	Name            string
	DiscountedPrice decimal.Decimal
}

// Label is a named campaign without a price change.
type Label struct {
	Name string
}

func (NoPromotion) isPromotion() {}
func (Discount) isPromotion()    {}
func (Label) isPromotion()       {}

type promotionJSON struct {
	Name            *string          `json:"name"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice,omitempty"`
}

// DecodePromotion maps the untyped promotion payload onto a variant. Anything
// that is not an object, or an object carrying neither a positive discounted
// price nor a name, is NoPromotion.
func DecodePromotion(raw json.RawMessage) Promotion {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return NoPromotion{}
	}
	var p promotionJSON
	if err := json.Unmarshal(raw, &p); err != nil {
		return NoPromotion{}
	}
	name := deref(p.Name)
	if p.DiscountedPrice != nil && p.DiscountedPrice.IsPositive() {
		return Discount{Name: name, DiscountedPrice: *p.DiscountedPrice}
	}
	if name != "" {
		return Label{Name: name}
	}
	return NoPromotion{}
}

func encodePromotion(p Promotion) *promotionJSON {
	switch v := p.(type) {
	case Discount:
		price := v.DiscountedPrice
		return &promotionJSON{Name: &v.Name, DiscountedPrice: &price}
	case Label:
		return &promotionJSON{Name: &v.Name}
	default:
		return nil
	}
}

// PromotionName returns the campaign name, if any.
func PromotionName(p Promotion) string {
	switch v := p.(type) {
	case Discount:
		return v.Name
	case Label:
		return v.Name
	default:
		return ""
	}
}
