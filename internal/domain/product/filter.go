package product

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Filter is a conjunction of optional catalog query criteria. A zero Filter
// matches every product.
type Filter struct {
	// Category matches the stored category case-insensitively. Empty means
	// any category.
	Category string
	// MaxPrice is an inclusive upper bound on price. A non-positive value
	// means no limit.
	MaxPrice decimal.Decimal
	// Color matches the stored color case-insensitively. Empty means any.
	Color string
	// Keyword matches case-insensitively as a substring of the product name
	// or description. Empty means no keyword restriction.
	Keyword string
}

// IsZero reports whether the filter places no restriction at all.
func (f Filter) IsZero() bool {
	return f.Category == "" && !f.MaxPrice.IsPositive() && f.Color == "" && f.Keyword == ""
}

// Matches reports whether p satisfies every criterion of the filter.
func (f Filter) Matches(p Product) bool {
	if f.Category != "" && !strings.EqualFold(string(p.Category), f.Category) {
		return false
	}
	if f.MaxPrice.IsPositive() && p.Price.GreaterThan(f.MaxPrice) {
		return false
	}
	if f.Color != "" && !strings.EqualFold(p.Color, f.Color) {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(p.Name), kw) &&
			!strings.Contains(strings.ToLower(p.Description), kw) {
			return false
		}
	}
	return true
}

// Apply returns the products matching the filter, preserving catalog order.
// There is no ranking; result order is exactly the input order.
func (f Filter) Apply(products []Product) []Product {
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			matched = append(matched, p)
		}
	}
	return matched
}
