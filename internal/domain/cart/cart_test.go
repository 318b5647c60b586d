package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/voicecart/internal/domain/product"
)

func hoodie() product.Product {
	return product.Product{
		ID:          "hoodie-01",
		Name:        "Black Pullover Hoodie",
		Category:    product.CategoryHoodie,
		Price:       decimal.NewFromInt(1800),
		Color:       "black",
		Description: "Warm black hoodie with a front pocket",
		Attributes:  product.Attributes{Sizes: []string{"S", "M", "L", "XL"}},
	}
}

func mug() product.Product {
	return product.Product{
		ID:       "mug-001",
		Name:     "Classic White Mug",
		Category: product.CategoryMug,
		Price:    decimal.NewFromInt(350),
	}
}

func TestAdd_NewLine(t *testing.T) {
	c := New()
	line := c.Add(hoodie(), 2, "M")

	assert.Equal(t, "hoodie-01", line.ProductID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "M", line.Variant)
	assert.True(t, decimal.NewFromInt(1800).Equal(line.UnitPrice))
	assert.Equal(t, 1, c.Len())
}

func TestAdd_CoercesNonPositiveQuantity(t *testing.T) {
	c := New()
	assert.Equal(t, 1, c.Add(mug(), 0, "").Quantity)

	c = New()
	assert.Equal(t, 1, c.Add(mug(), -3, "").Quantity)
}

// Same product and variant accumulate into one slot.
func TestAdd_MergesMatchingSlot(t *testing.T) {
	c := New()
	c.Add(hoodie(), 2, "M")
	line := c.Add(hoodie(), 3, "M")

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 5, line.Quantity)
}

func TestAdd_DifferentVariantIsSeparateSlot(t *testing.T) {
	c := New()
	c.Add(hoodie(), 1, "M")
	c.Add(hoodie(), 1, "L")

	require.Equal(t, 2, c.Len())
	lines := c.Lines()
	assert.Equal(t, "M", lines[0].Variant)
	assert.Equal(t, "L", lines[1].Variant)
}

func TestRemove_ExactVariant(t *testing.T) {
	c := New()
	c.Add(hoodie(), 1, "M")
	c.Add(mug(), 1, "")

	removed, err := c.Remove("Black Pullover Hoodie", "M")
	require.NoError(t, err)
	assert.Equal(t, "hoodie-01", removed.ProductID)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "mug-001", c.Lines()[0].ProductID)
}

// Removing size L when only size M is in the cart fails and leaves the cart
// unchanged.
func TestRemove_VariantMismatch(t *testing.T) {
	c := New()
	c.Add(hoodie(), 1, "M")

	_, err := c.Remove("Black Pullover Hoodie", "L")
	require.ErrorIs(t, err, ErrLineNotFound)

	var lnf *LineNotFoundError
	require.ErrorAs(t, err, &lnf)
	assert.Equal(t, "L", lnf.Variant)
	assert.Equal(t, 1, c.Len())
}

func TestRemove_VariantlessAgainstVariantlessLine(t *testing.T) {
	c := New()
	c.Add(mug(), 1, "")

	_, err := c.Remove("Classic White Mug", "")
	require.NoError(t, err)
	assert.True(t, c.Empty())
}

func TestRemove_Absent(t *testing.T) {
	c := New()
	_, err := c.Remove("Classic White Mug", "")
	require.ErrorIs(t, err, ErrLineNotFound)
}

// Add followed by remove of the same (name, variant) restores the prior content.
func TestAddRemove_RoundTrip(t *testing.T) {
	c := New()
	c.Add(mug(), 2, "")
	before := c.Lines()

	c.Add(hoodie(), 1, "S")
	_, err := c.Remove("Black Pullover Hoodie", "S")
	require.NoError(t, err)

	assert.Equal(t, before, c.Lines())
}

func TestSubtotal(t *testing.T) {
	c := New()
	c.Add(hoodie(), 2, "M")
	c.Add(mug(), 1, "")

	assert.True(t, decimal.NewFromInt(3950).Equal(c.Subtotal()))
}

func TestClear(t *testing.T) {
	c := New()
	c.Add(mug(), 1, "")
	c.Clear()
	assert.True(t, c.Empty())
	assert.True(t, decimal.Zero.Equal(c.Subtotal()))
}

func TestLines_ReturnsCopy(t *testing.T) {
	c := New()
	c.Add(mug(), 1, "")

	lines := c.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, c.Lines()[0].Quantity)
}
