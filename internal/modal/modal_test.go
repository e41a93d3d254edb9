package modal

import (
	"testing"

	"github.com/Picces04/ToyStore-Client/internal/domain/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func robot() product.Product {
	return product.Product{ID: "p-1", Name: "Robot", Images: []product.ImageRef{"/a.png", "/b.png", "/c.png"}}
}

// ============================================
// Flag / PreviewSlider / Details
// ============================================

func TestFlag(t *testing.T) {
	var f CartSidebar
	assert.False(t, f.IsOpen())

	f.Open()
	assert.True(t, f.IsOpen())

	f.Close()
	assert.False(t, f.IsOpen())
}

func TestPreviewSlider_CloseResetsIndex(t *testing.T) {
	var p PreviewSlider

	p.Open(2)
	assert.Equal(t, PreviewState{Open: true, Index: 2}, p.State())

	p.Close()
	assert.Equal(t, PreviewState{Open: false, Index: 0}, p.State())

	p.Open(-4)
	assert.Equal(t, 0, p.State().Index)
}

func TestDetails(t *testing.T) {
	var d Details
	_, ok := d.Selected()
	assert.False(t, ok)

	d.Select(robot())
	got, ok := d.Selected()
	require.True(t, ok)
	assert.Equal(t, "p-1", got.ID)

	d.Clear()
	_, ok = d.Selected()
	assert.False(t, ok)
}

// ============================================
// QuickView
// ============================================

func TestQuickView_Open(t *testing.T) {
	q := NewQuickView()

	q.Open(robot())

	st := q.State()
	assert.True(t, st.Open)
	require.NotNil(t, st.Product)
	assert.Equal(t, "p-1", st.Product.ID)
	assert.Equal(t, 0, st.ImageIndex)
	assert.Equal(t, 1, st.Quantity)
}

func TestQuickView_CloseResetsImageAndQuantity(t *testing.T) {
	q := NewQuickView()
	q.Open(robot())
	require.NoError(t, q.SelectImage(2))
	q.Increment()
	q.Increment()

	q.Close()

	st := q.State()
	assert.False(t, st.Open)
	assert.Equal(t, 0, st.ImageIndex)
	assert.Equal(t, 1, st.Quantity)
	_, _, ok := q.Selection()
	assert.True(t, ok)
}

func TestQuickView_ReopenResets(t *testing.T) {
	q := NewQuickView()
	q.Open(robot())
	q.Increment()
	require.NoError(t, q.SelectImage(1))

	other := robot()
	other.ID = "p-2"
	q.Open(other)

	p, qty, ok := q.Selection()
	require.True(t, ok)
	assert.Equal(t, "p-2", p.ID)
	assert.Equal(t, 1, qty)
	assert.Equal(t, 0, q.State().ImageIndex)
}

func TestQuickView_SelectImage(t *testing.T) {
	q := NewQuickView()
	assert.ErrorIs(t, q.SelectImage(0), ErrNoSelection)

	q.Open(robot())

	tests := []struct {
		name  string
		index int
		err   error
	}{
		{"first", 0, nil},
		{"last", 2, nil},
		{"past end", 3, ErrImageOutOfRange},
		{"negative", -1, ErrImageOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := q.SelectImage(tt.index)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.index, q.State().ImageIndex)
		})
	}
}

func TestQuickView_Stepper(t *testing.T) {
	q := NewQuickView()
	q.Open(robot())

	assert.Equal(t, 1, q.Decrement())
	assert.Equal(t, 2, q.Increment())
	assert.Equal(t, 3, q.Increment())
	assert.Equal(t, 2, q.Decrement())
	assert.Equal(t, 1, q.Decrement())
	assert.Equal(t, 1, q.Decrement())
}
