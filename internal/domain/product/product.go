package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog access.
var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrCatalogUnavailable is returned when the catalog source cannot be
	// loaded. Callers treat it as an empty catalog, not a fatal condition.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// NotFoundError carries the product name that failed to resolve.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %q not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Category classifies a product. The set of known categories is closed;
// ParseCategory validates free-form input at the conversational boundary.
type Category string

const (
	CategoryMug    Category = "mug"
	CategoryTShirt Category = "tshirt"
	CategoryHoodie Category = "hoodie"
	CategoryBottle Category = "bottle"
	CategoryCap    Category = "cap"
)

// Categories lists every known category in a stable order.
func Categories() []Category {
	return []Category{CategoryMug, CategoryTShirt, CategoryHoodie, CategoryBottle, CategoryCap}
}

// ParseCategory resolves a free-form category string (case-insensitive) to a
// known Category. It returns an error for unknown values so typos surface at
// the boundary instead of silently matching nothing downstream.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", errors.Errorf("unknown category %q", s)
}

// Product represents a catalog item available for purchase. Products are
// immutable after load; ID and Name are each unique across the catalog.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    Category        `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Color       string          `json:"color,omitempty"`
	Description string          `json:"description"`
	Attributes  Attributes      `json:"attributes,omitzero"`
}

// Attributes holds optional per-product variant data.
type Attributes struct {
	// Sizes is the ordered set of selectable sizes for apparel items.
	Sizes []string `json:"sizes,omitempty"`
}

// HasSizes reports whether the product offers size variants.
func (p Product) HasSizes() bool {
	return len(p.Attributes.Sizes) > 0
}

// Validate checks the catalog invariants for a single product.
func (p Product) Validate() error {
	if p.ID == "" {
		return errors.New("product id is empty")
	}
	if p.Name == "" {
		return errors.Errorf("product %s: name is empty", p.ID)
	}
	if p.Price.IsNegative() {
		return errors.Errorf("product %s: negative price %s", p.ID, p.Price)
	}
	if _, err := ParseCategory(string(p.Category)); err != nil {
		return errors.Wrapf(err, "product %s", p.ID)
	}
	return nil
}

// ValidateCatalog checks per-product invariants plus catalog-wide
// uniqueness of IDs and names.
func ValidateCatalog(products []Product) error {
	ids := make(map[string]struct{}, len(products))
	names := make(map[string]struct{}, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := ids[p.ID]; dup {
			return errors.Errorf("duplicate product id %q", p.ID)
		}
		if _, dup := names[p.Name]; dup {
			return errors.Errorf("duplicate product name %q", p.Name)
		}
		ids[p.ID] = struct{}{}
		names[p.Name] = struct{}{}
	}
	return nil
}

// Repository defines read operations for the product catalog.
type Repository interface {
	// List returns the full catalog in stored order.
	List(ctx context.Context) ([]Product, error)
	// GetByName resolves a product by its exact (case-sensitive) name.
	// It returns a *NotFoundError when no product matches.
	GetByName(ctx context.Context, name string) (*Product, error)
}
