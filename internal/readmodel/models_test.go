package readmodel

import (
	"encoding/json"
	"testing"

	"github.com/Picces04/ToyStore-Client/internal/domain/cart"
	"github.com/Picces04/ToyStore-Client/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCart(t *testing.T) {
	disc := decimal.NewFromInt(80)
	items := []cart.LineItem{
		{ProductID: "p1", Price: decimal.NewFromInt(100), DiscountedPrice: &disc, Quantity: 2, Images: []product.ImageRef{"/a.png"}},
		{ProductID: "p2", Price: decimal.NewFromInt(50), Quantity: 1},
	}

	rm := NewCart(items)

	require.Len(t, rm.Items, 2)
	assert.Equal(t, 3, rm.Count)
	assert.True(t, decimal.NewFromInt(210).Equal(rm.Total))
	assert.True(t, decimal.NewFromInt(160).Equal(rm.Items[0].Subtotal))
	assert.True(t, decimal.NewFromInt(80).Equal(rm.Items[0].UnitPrice))
	assert.Equal(t, product.ImageRef("/a.png"), rm.Items[0].Cover)
	assert.Equal(t, product.Placeholder, rm.Items[1].Cover)
}

func TestNewCart_EmptyEncodesArray(t *testing.T) {
	data, err := json.Marshal(NewCart(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"count":0,"total":"0"}`, string(data))
}

func TestNewWishlist(t *testing.T) {
	rm := NewWishlist(nil)
	assert.NotNil(t, rm.Items)
	assert.Equal(t, 0, rm.Count)
}
