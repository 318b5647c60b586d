package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/voicecart/internal/domain/cart"
	"github.com/xenking/voicecart/internal/domain/order"
	"github.com/xenking/voicecart/internal/domain/product"
)

// maxSpokenProducts caps how many products a single browse response reads
// out; the rest are offered as a follow-up.
const maxSpokenProducts = 5

// Tools is the spoken-string surface handed to the conversational driver.
// Every method returns text suitable for reading aloud; recoverable errors
// become clarification prompts and never escape as failures.
type Tools struct {
	svc *Service
}

// NewTools wraps a Service in the spoken-response surface.
func NewTools(svc *Service) *Tools {
	return &Tools{svc: svc}
}

// QueryCatalog browses the catalog with optional filters and describes the
// matches. An invalid category is reported back instead of matching nothing.
func (t *Tools) QueryCatalog(ctx context.Context, sess *Session, f product.Filter) string {
	if f.Category != "" {
		if _, err := product.ParseCategory(f.Category); err != nil {
			return fmt.Sprintf("I don't have a %q category. You can browse %s.",
				f.Category, spokenCategories())
		}
	}

	products, err := t.svc.Browse(ctx, sess, f)
	if err != nil {
		return "Sorry, I had trouble accessing the catalog. Please try again."
	}
	if len(products) == 0 {
		return "I couldn't find any products matching those criteria. " +
			"Would you like to try different filters or browse another category?"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d product%s:\n\n", len(products), plural(len(products)))

	shown := min(len(products), maxSpokenProducts)
	for i, p := range products[:shown] {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Name)
		fmt.Fprintf(&b, "   Price: ₹%s\n", p.Price)
		fmt.Fprintf(&b, "   %s\n", p.Description)
		if p.Color != "" {
			fmt.Fprintf(&b, "   Color: %s\n", p.Color)
		}
		if p.HasSizes() {
			fmt.Fprintf(&b, "   Sizes: %s\n", strings.Join(p.Attributes.Sizes, ", "))
		}
		b.WriteString("\n")
	}

	if len(products) > shown {
		fmt.Fprintf(&b, "I have %d more option%s. Would you like to hear about them?",
			len(products)-shown, plural(len(products)-shown))
	}
	return b.String()
}

// AddToCart adds the named product to the session cart and confirms.
func (t *Tools) AddToCart(ctx context.Context, sess *Session, name string, quantity int, variant string) string {
	line, err := t.svc.AddToCart(ctx, sess, name, quantity, variant)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return fmt.Sprintf("I couldn't find a product called %q. "+
				"Could you say the exact product name, or browse the catalog first?", name)
		}
		return "I'm sorry, there was an issue adding that to your cart. Could you try again?"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Great! I've added %d x %s ", line.Quantity, line.ProductName)
	if line.Variant != "" {
		fmt.Fprintf(&b, "(size %s) ", line.Variant)
	}
	fmt.Fprintf(&b, "to your cart for ₹%s. ", line.LineTotal())
	fmt.Fprintf(&b, "Your cart now has %d item%s. ", sess.Cart.Len(), plural(sess.Cart.Len()))
	b.WriteString("Would you like to continue shopping or view your cart?")
	return b.String()
}

// RemoveFromCart removes the named line and confirms, or explains exactly
// what was missing (including a variant that isn't in the cart).
func (t *Tools) RemoveFromCart(sess *Session, name, variant string) string {
	if sess.Cart.Empty() {
		return "Your cart is empty. There's nothing to remove."
	}

	line, err := t.svc.RemoveFromCart(sess, name, variant)
	if err != nil {
		var lnf *cart.LineNotFoundError
		if errors.As(err, &lnf) {
			if lnf.Variant != "" {
				return fmt.Sprintf("I don't see %s in size %s in your cart, "+
					"so I haven't removed anything. Could you check the size?", lnf.Name, lnf.Variant)
			}
			return fmt.Sprintf("I don't see %s in your cart.", lnf.Name)
		}
		return "I'm sorry, there was an issue removing that item. Could you try again?"
	}

	if sess.Cart.Empty() {
		return fmt.Sprintf("I've removed %s from your cart. Your cart is now empty.", line.ProductName)
	}
	return fmt.Sprintf("I've removed %s from your cart. You now have %d item%s remaining in your cart.",
		line.ProductName, sess.Cart.Len(), plural(sess.Cart.Len()))
}

// ListCart reads out the cart contents with a running total.
func (t *Tools) ListCart(sess *Session) string {
	lines := t.svc.ListCart(sess)
	if len(lines) == 0 {
		return "Your cart is empty. Browse our products and add items to get started!"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your cart has %d item%s:\n\n", len(lines), plural(len(lines)))
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %d x %s", i+1, l.Quantity, l.ProductName)
		if l.Variant != "" {
			fmt.Fprintf(&b, " (size %s)", l.Variant)
		}
		fmt.Fprintf(&b, " - ₹%s\n", l.LineTotal())
	}
	fmt.Fprintf(&b, "\nCart Total: ₹%s\n\n", sess.Cart.Subtotal())
	b.WriteString("Would you like to place your order or continue shopping?")
	return b.String()
}

// CommitOrder places the order for everything in the cart. On success the
// cart is cleared; on failure it is kept so the customer can retry.
func (t *Tools) CommitOrder(ctx context.Context, sess *Session) string {
	res, err := t.svc.PlaceOrder(ctx, sess)
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			if sess.Cart.Empty() {
				return "Your cart is empty. Please add some items before placing an order."
			}
			// Every line was dropped: the products are gone from the catalog.
			return "I'm sorry, none of the items in your cart are available any more, " +
				"so I couldn't place the order."
		}
		return "I'm sorry, there was an issue placing your order. Your cart is still saved. Please try again."
	}

	o := res.Order
	var b strings.Builder
	fmt.Fprintf(&b, "Excellent! Your order has been placed successfully. Order ID: %s.\n\n", o.ID)
	b.WriteString("Order Summary:\n")
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "- %d x %s", l.Quantity, l.ProductName)
		if l.Variant != "" {
			fmt.Fprintf(&b, " (size %s)", l.Variant)
		}
		fmt.Fprintf(&b, " - ₹%s\n", l.LineTotal)
	}
	fmt.Fprintf(&b, "\nTotal Amount: ₹%s\n", o.Total)
	fmt.Fprintf(&b, "Status: %s\n", title(string(o.Status)))
	if res.Dropped > 0 {
		fmt.Fprintf(&b, "\nPlease note: %d item%s in your cart %s no longer available and %s left out of the order.\n",
			res.Dropped, plural(res.Dropped), wasWere(res.Dropped), wasWere(res.Dropped))
	}
	b.WriteString("\nThank you for your order! Is there anything else I can help you with?")
	return b.String()
}

// GetLastOrder reads back the most recent order.
func (t *Tools) GetLastOrder(ctx context.Context) string {
	o, err := t.svc.LastOrder(ctx)
	if err != nil {
		if errors.Is(err, order.ErrNoOrders) {
			return "You haven't placed any orders yet. Would you like to browse our catalog?"
		}
		return "Sorry, I couldn't retrieve your order information right now."
	}
	return describeOrder(o, fmt.Sprintf("Your last order, Order ID %s, was placed on %s. ",
		o.ID, o.CreatedAt.Format("2006-01-02")))
}

// GetOrderByID reads back a specific order.
func (t *Tools) GetOrderByID(ctx context.Context, id string) string {
	o, err := t.svc.OrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return fmt.Sprintf("I couldn't find an order with ID %s.", id)
		}
		return "Sorry, I couldn't retrieve your order information right now."
	}
	return describeOrder(o, fmt.Sprintf("Order %s was placed on %s. ",
		o.ID, o.CreatedAt.Format("2006-01-02")))
}

func describeOrder(o *order.Order, lead string) string {
	var b strings.Builder
	b.WriteString(lead)
	b.WriteString("You ordered: ")
	for i, l := range o.Lines {
		if i > 0 {
			b.WriteString("and ")
		}
		fmt.Fprintf(&b, "%d %s ", l.Quantity, l.ProductName)
		if l.Variant != "" {
			fmt.Fprintf(&b, "in size %s ", l.Variant)
		}
		fmt.Fprintf(&b, "for %s rupees, ", l.LineTotal)
	}
	fmt.Fprintf(&b, "Total amount: %s rupees. Status: %s.", o.Total, o.Status)
	return b.String()
}

func spokenCategories() string {
	cats := product.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func wasWere(n int) string {
	if n == 1 {
		return "was"
	}
	return "were"
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
