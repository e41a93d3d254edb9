package product

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Supplier is the vendor a product is sourced from
type Supplier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryRef is the category summary embedded in a product
type CategoryRef struct {
	ID         string  `json:"id"`
	Name       string  `json:"categoryName"`
	ParentID   *string `json:"parentId"`
	ParentName *string `json:"parentName"`
}

// Product is a catalog item as served by the storefront API. It is read-only
// to the storefront; display price and discount are derived on demand.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Supplier    Supplier
	Category    CategoryRef
	Promotion   Promotion
	Images      []ImageRef
	Status      int
	Slug        string
}

type productJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"productName"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Supplier    Supplier        `json:"supplier"`
	Category    CategoryRef     `json:"category"`
	Promotion   json.RawMessage `json:"promotion"`
	Image       json.RawMessage `json:"image"`
	Status      int             `json:"productStatus"`
	Slug        string          `json:"slug"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var raw productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Price:       raw.Price,
		Quantity:    raw.Quantity,
		Supplier:    raw.Supplier,
		Category:    raw.Category,
		Promotion:   DecodePromotion(raw.Promotion),
		Images:      DecodeImages(raw.Image),
		Status:      raw.Status,
		Slug:        raw.Slug,
	}
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	images := p.Images
	if images == nil {
		images = []ImageRef{}
	}
	return json.Marshal(struct {
		ID              string          `json:"id"`
		Name            string          `json:"productName"`
		Description     string          `json:"description"`
		Price           decimal.Decimal `json:"price"`
		DisplayPrice    decimal.Decimal `json:"displayPrice"`
		DiscountPercent int             `json:"discountPercent"`
		Quantity        int             `json:"quantity"`
		Supplier        Supplier        `json:"supplier"`
		Category        CategoryRef     `json:"category"`
		Promotion       *promotionJSON  `json:"promotion"`
		Image           []ImageRef      `json:"image"`
		Cover           ImageRef        `json:"cover"`
		Status          int             `json:"productStatus"`
		Slug            string          `json:"slug"`
	}{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		DisplayPrice:    p.DisplayPrice(),
		DiscountPercent: p.DiscountPercent(),
		Quantity:        p.Quantity,
		Supplier:        p.Supplier,
		Category:        p.Category,
		Promotion:       encodePromotion(p.Promotion),
		Image:           images,
		Cover:           Cover(p.Images),
		Status:          p.Status,
		Slug:            p.Slug,
	})
}

// DisplayPrice is the price a shopper pays: the promotion's discounted price
// when one applies, the list price otherwise.
func (p Product) DisplayPrice() decimal.Decimal {
	if d, ok := p.Promotion.(Discount); ok {
		return d.DiscountedPrice
	}
	return p.Price
}

// DiscountedPrice returns the promotional price or nil when the product is not discounted.
func (p Product) DiscountedPrice() *decimal.Decimal {
	if d, ok := p.Promotion.(Discount); ok {
		v := d.DiscountedPrice
		return &v
	}
	return nil
}

// DiscountPercent is round((price - discounted) / price * 100), or 0 without a discount.
func (p Product) DiscountPercent() int {
	d, ok := p.Promotion.(Discount)
	if !ok || !p.Price.IsPositive() {
		return 0
	}
	pct := p.Price.Sub(d.DiscountedPrice).Div(p.Price).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// Cover is the first product image or the placeholder.
func (p Product) Cover() ImageRef {
	return Cover(p.Images)
}

// Category is a catalog category. Top-level categories have no parent.
type Category struct {
	ID         string     `json:"id"`
	Name       string     `json:"categoryName"`
	Slug       string     `json:"slug"`
	Image      *string    `json:"image"`
	ParentID   *string    `json:"parentId"`
	ParentName *string    `json:"parentName"`
	Children   []Category `json:"children"`
}

func (c Category) IsTopLevel() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// TopLevel keeps only categories without a parent, preserving order.
func TopLevel(cs []Category) []Category {
	out := make([]Category, 0, len(cs))
	for _, c := range cs {
		if c.IsTopLevel() {
			out = append(out, c)
		}
	}
	return out
}

// BlogItem is a news article.
type BlogItem struct {
	ID             string  `json:"id"`
	Image          string  `json:"image"`
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	CreatedBy      string  `json:"createdBy"`
	CreatedOn      string  `json:"createdOn"`
	Slug           string  `json:"slug"`
	ApprovedBy     *string `json:"approvedBy"`
	ApprovedByName *string `json:"approvedByName"`
	IsApproved     bool    `json:"isApproved"`
	ApprovedOn     *string `json:"approvedOn"`
	IsDeleted      bool    `json:"isDeleted"`
	Author         string  `json:"createdbyStr"`
}

// CoverImage decodes the JSON-encoded image list stored on the article.
func (b BlogItem) CoverImage() ImageRef {
	return Cover(ParseImageList(b.Image))
}

// BestSeller is a row of the monthly best-selling statistic.
type BestSeller struct {
	ID             string
	Name           string
	Description    string
	Price          decimal.Decimal
	Quantity       int
	SupplierName   string
	ParentCategory string
	ChildCategory  string
	PromotionName  string
	Images         []ImageRef
	Status         int
	Slug           string
}

type bestSellerJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"productName"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Supplier    *struct {
		Name *string `json:"name"`
	} `json:"supplier"`
	Category *struct {
		ParentName *string `json:"parentName"`
		ChildName  *string `json:"childName"`
	} `json:"category"`
	Promotion *struct {
		Name *string `json:"name"`
	} `json:"promotion"`
	Image  json.RawMessage `json:"image"`
	Status int             `json:"productStatus"`
	Slug   string          `json:"slug"`
}

func (b *BestSeller) UnmarshalJSON(data []byte) error {
	var raw bestSellerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = BestSeller{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: deref(raw.Description),
		Price:       raw.Price,
		Quantity:    raw.Quantity,
		Images:      DecodeImages(raw.Image),
		Status:      raw.Status,
		Slug:        raw.Slug,
	}
	if raw.Supplier != nil {
		b.SupplierName = deref(raw.Supplier.Name)
	}
	if raw.Category != nil {
		b.ParentCategory = deref(raw.Category.ParentName)
		b.ChildCategory = deref(raw.Category.ChildName)
	}
	if raw.Promotion != nil {
		b.PromotionName = deref(raw.Promotion.Name)
	}
	return nil
}

func (b BestSeller) MarshalJSON() ([]byte, error) {
	images := b.Images
	if images == nil {
		images = []ImageRef{}
	}
	return json.Marshal(struct {
		ID             string          `json:"id"`
		Name           string          `json:"productName"`
		Description    string          `json:"description"`
		Price          decimal.Decimal `json:"price"`
		Quantity       int             `json:"quantity"`
		SupplierName   string          `json:"supplierName"`
		ParentCategory string          `json:"parentCategory"`
		ChildCategory  string          `json:"childCategory"`
		PromotionName  string          `json:"promotionName,omitempty"`
		Image          []ImageRef      `json:"image"`
		Cover          ImageRef        `json:"cover"`
		Status         int             `json:"productStatus"`
		Slug           string          `json:"slug"`
	}{
		ID:             b.ID,
		Name:           b.Name,
		Description:    b.Description,
		Price:          b.Price,
		Quantity:       b.Quantity,
		SupplierName:   b.SupplierName,
		ParentCategory: b.ParentCategory,
		ChildCategory:  b.ChildCategory,
		PromotionName:  b.PromotionName,
		Image:          images,
		Cover:          Cover(b.Images),
		Status:         b.Status,
		Slug:           b.Slug,
	})
}

// AsProduct lets a best seller be added to the cart or wishlist like any catalog product.
func (b BestSeller) AsProduct() Product {
	var promo Promotion = NoPromotion{}
	if b.PromotionName != "" {
		promo = Label{Name: b.PromotionName}
	}
	return Product{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Price:       b.Price,
		Quantity:    b.Quantity,
		Supplier:    Supplier{Name: b.SupplierName},
		Category:    CategoryRef{Name: b.ChildCategory},
		Promotion:   promo,
		Images:      b.Images,
		Status:      b.Status,
		Slug:        b.Slug,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
