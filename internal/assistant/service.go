package assistant

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/voicecart/internal/domain/cart"
	"github.com/xenking/voicecart/internal/domain/order"
	"github.com/xenking/voicecart/internal/domain/product"
)

// Service implements the driver-facing operations with structured results.
// The Tools wrapper turns these into spoken strings.
type Service struct {
	catalog product.Repository
	orders  *order.Service
	lg      *zap.Logger
}

// NewService constructs a Service with the required domain dependencies.
func NewService(catalog product.Repository, orders *order.Service, lg *zap.Logger) *Service {
	return &Service{
		catalog: catalog,
		orders:  orders,
		lg:      lg,
	}
}

// Browse applies the filter to the catalog and records the result in the
// session context. An unavailable catalog surfaces its load error; callers
// treat it as "zero products", not as a fatal condition.
func (s *Service) Browse(ctx context.Context, sess *Session, f product.Filter) ([]product.Product, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "browse catalog")
	}

	matched := f.Apply(products)

	sess.LastShown = matched
	if f.Category != "" {
		if c, err := product.ParseCategory(f.Category); err == nil {
			sess.CurrentCategory = c
		}
	}

	s.lg.Info("catalog browsed",
		zap.String("session", sess.ID),
		zap.String("category", f.Category),
		zap.String("color", f.Color),
		zap.String("keyword", f.Keyword),
		zap.Int("matches", len(matched)),
	)
	return matched, nil
}

// AddToCart resolves the product by exact name and places it in the session
// cart. The cart is unchanged when the name does not resolve.
func (s *Service) AddToCart(ctx context.Context, sess *Session, name string, quantity int, variant string) (cart.Line, error) {
	p, err := s.catalog.GetByName(ctx, name)
	if err != nil {
		return cart.Line{}, err
	}

	line := sess.Cart.Add(*p, quantity, variant)
	s.lg.Info("added to cart",
		zap.String("session", sess.ID),
		zap.String("product", p.ID),
		zap.Int("quantity", line.Quantity),
		zap.String("variant", variant),
		zap.Int("cart_lines", sess.Cart.Len()),
	)
	return line, nil
}

// RemoveFromCart removes the first line matching name and variant exactly.
func (s *Service) RemoveFromCart(sess *Session, name, variant string) (cart.Line, error) {
	line, err := sess.Cart.Remove(name, variant)
	if err != nil {
		return cart.Line{}, err
	}
	s.lg.Info("removed from cart",
		zap.String("session", sess.ID),
		zap.String("product", line.ProductID),
		zap.Int("cart_lines", sess.Cart.Len()),
	)
	return line, nil
}

// ListCart returns the current cart contents.
func (s *Service) ListCart(sess *Session) []cart.Line {
	return sess.Cart.Lines()
}

// PlaceOrder commits the session cart as a new order. The cart is cleared
// only after the commit succeeds, so a persistence failure can be retried.
func (s *Service) PlaceOrder(ctx context.Context, sess *Session) (*order.CommitResult, error) {
	lines := sess.Cart.Lines()
	reqs := make([]order.LineRequest, len(lines))
	for i, l := range lines {
		reqs[i] = order.LineRequest{
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Variant:     l.Variant,
		}
	}

	res, err := s.orders.Commit(ctx, reqs)
	if err != nil {
		return nil, err
	}

	sess.Cart.Clear()
	s.lg.Info("order placed",
		zap.String("session", sess.ID),
		zap.String("order_id", res.Order.ID),
		zap.Int("lines", len(res.Order.Lines)),
		zap.Int("dropped", res.Dropped),
		zap.String("total", res.Order.Total.String()),
	)
	return res, nil
}

// LastOrder returns the most recent order in the ledger.
func (s *Service) LastOrder(ctx context.Context) (*order.Order, error) {
	return s.orders.Last(ctx)
}

// OrderByID looks up an order by its exact identifier.
func (s *Service) OrderByID(ctx context.Context, id string) (*order.Order, error) {
	return s.orders.ByID(ctx, id)
}
