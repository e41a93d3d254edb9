package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

var (
	ErrPageOutOfRange    = errors.New("page out of range")
	ErrInvalidPriceRange = errors.New("invalid price range")
	ErrUnknownSort       = errors.New("unknown sort")
)

type Sort string

const (
	SortNewest      Sort = "newest"
	SortBestSelling Sort = "best-selling"
	SortPriceAsc    Sort = "price-asc"
	SortPriceDesc   Sort = "price-desc"
	SortNone        Sort = "none"
)

// DefaultSort is what a fresh catalog and ClearSort use.
const DefaultSort = SortNewest

var wireSorts = map[Sort]string{
	SortNewest:      "CreateOn",
	SortBestSelling: "BestSelling",
	SortPriceAsc:    "PriceAsc",
	SortPriceDesc:   "PriceDesc",
	SortNone:        "",
}

// ParseSort accepts both the enum names and the backend wire values. The
// empty wire value means no sort.
func ParseSort(s string) (Sort, error) {
	if _, ok := wireSorts[Sort(s)]; ok {
		return Sort(s), nil
	}
	for sort, wire := range wireSorts {
		if wire == s {
			return sort, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSort, s)
}

// Wire is the value sent as the Sorts query parameter.
func (s Sort) Wire() string {
	return wireSorts[s]
}

// DefaultMaxPrice is the upper bound of the unfiltered price slider.
var DefaultMaxPrice = decimal.NewFromInt(5_000_000)

type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

func DefaultPriceRange() PriceRange {
	return PriceRange{Min: decimal.Zero, Max: DefaultMaxPrice}
}

// IsDefault reports whether the range filters nothing. Only a non-default
// range is sent to the backend.
func (p PriceRange) IsDefault() bool {
	return !p.Min.IsPositive() && !p.Max.LessThan(DefaultMaxPrice)
}

func (p PriceRange) Validate() error {
	if p.Min.IsNegative() || p.Min.GreaterThan(p.Max) {
		return fmt.Errorf("%w: min %s, max %s", ErrInvalidPriceRange, p.Min, p.Max)
	}
	return nil
}

// Query is the catalog filter state. Page is the page requested; the page
// actually displayed comes from the backend response.
type Query struct {
	Page        int        `json:"page"`
	PageSize    int        `json:"pageSize"`
	Sort        Sort       `json:"sort"`
	CategoryIDs []string   `json:"categoryIds"`
	Price       PriceRange `json:"price"`
}

func (q Query) clone() Query {
	q.CategoryIDs = slices.Clone(q.CategoryIDs)
	if q.CategoryIDs == nil {
		q.CategoryIDs = []string{}
	}
	return q
}

// HasActiveFilters is true when categories are selected, the price range is
// narrowed or the sort differs from the default.
func (q Query) HasActiveFilters() bool {
	return len(q.CategoryIDs) > 0 || !q.Price.IsDefault() || q.Sort != DefaultSort
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
