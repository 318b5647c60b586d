// Package cart holds the per-session shopping cart. A Cart is owned by
// exactly one conversation session and lives only in memory; it is consumed
// by order placement and never persisted on its own.
package cart

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/voicecart/internal/domain/product"
)

// ErrLineNotFound is returned when a removal target is absent or names a
// variant that no line in the cart carries.
var ErrLineNotFound = errors.New("cart line not found")

// LineNotFoundError carries the name and variant that failed to match.
type LineNotFoundError struct {
	Name    string
	Variant string
}

func (e *LineNotFoundError) Error() string {
	if e.Variant != "" {
		return fmt.Sprintf("no %q (size %s) in cart", e.Name, e.Variant)
	}
	return fmt.Sprintf("no %q in cart", e.Name)
}

func (e *LineNotFoundError) Is(target error) bool {
	return target == ErrLineNotFound
}

// Line is a single pending cart entry. ProductName and UnitPrice are
// snapshots taken at add time; order placement re-resolves both against the
// current catalog.
type Line struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Variant     string
}

// LineTotal returns UnitPrice times Quantity for this line.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered sequence of lines. Two lines occupy the same slot when
// both product ID and variant match exactly; adds into an occupied slot
// accumulate quantity instead of appending a duplicate line.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add places quantity units of p (with an optional variant such as a size)
// into the cart and returns the resulting line. A non-positive quantity is
// coerced to 1.
func (c *Cart) Add(p product.Product, quantity int, variant string) Line {
	if quantity <= 0 {
		quantity = 1
	}

	for i := range c.lines {
		if c.lines[i].ProductID == p.ID && c.lines[i].Variant == variant {
			c.lines[i].Quantity += quantity
			return c.lines[i]
		}
	}

	line := Line{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		UnitPrice:   p.Price,
		Variant:     variant,
	}
	c.lines = append(c.lines, line)
	return line
}

// Remove deletes the first line matching the given product name and variant
// exactly and returns it. A variant mismatch reports *LineNotFoundError
// rather than removing a different-variant line.
func (c *Cart) Remove(name, variant string) (Line, error) {
	for i, l := range c.lines {
		if l.ProductName == name && l.Variant == variant {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return l, nil
		}
	}
	return Line{}, &LineNotFoundError{Name: name, Variant: variant}
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct lines in the cart.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Subtotal sums the line totals using the prices snapshotted at add time.
// The authoritative total is recomputed from the catalog at commit.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// Clear removes every line from the cart.
func (c *Cart) Clear() {
	c.lines = nil
}
