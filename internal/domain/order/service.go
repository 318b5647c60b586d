package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/voicecart/internal/domain/product"
)

// Sentinel errors for order placement and lookup.
var (
	// ErrEmptyCart is returned when a commit is attempted with no lines, or
	// when every requested line was dropped as unresolvable.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoOrders is returned by Last when the ledger holds no orders.
	ErrNoOrders = errors.New("no orders placed yet")
	// ErrOrderNotFound is returned by ByID when no order matches.
	ErrOrderNotFound = errors.New("order not found")
)

// LineRequest names a product and quantity to commit. The product is
// re-resolved against the current catalog at commit time.
type LineRequest struct {
	ProductName string
	Quantity    int
	Variant     string
}

// CommitResult is the outcome of a successful commit. Dropped counts the
// requested lines whose product no longer resolved and were therefore left
// out of the order; callers that need strict semantics can inspect it.
type CommitResult struct {
	Order   *Order
	Dropped int
}

// Service converts line requests into durable ledger entries. The entire
// read-ledger, assign-id, append, persist cycle runs under one mutex so
// order identifiers stay unique even with concurrent committing sessions.
type Service struct {
	catalog product.Repository
	ledger  Repository
	now     func() time.Time

	mu sync.Mutex
}

// NewService creates an order Service over the given catalog and ledger.
func NewService(catalog product.Repository, ledger Repository) *Service {
	return &Service{
		catalog: catalog,
		ledger:  ledger,
		now:     time.Now,
	}
}

// Commit resolves every requested line against the current catalog, prices
// it, assigns the next order identifier from the ledger length as read at
// the start of the commit, and appends the order to the ledger.
//
// Lines whose product name no longer resolves are dropped from the order
// rather than failing the commit; the count is reported in the result. A
// persistence failure leaves no trace in the ledger and is returned to the
// caller, who keeps the cart for a retry.
func (s *Service) Commit(ctx context.Context, lines []LineRequest) (*CommitResult, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.ledger.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read ledger")
	}

	dropped := 0
	orderLines := make([]Line, 0, len(lines))
	total := decimal.Zero
	for _, req := range lines {
		p, err := s.catalog.GetByName(ctx, req.ProductName)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				dropped++
				continue
			}
			return nil, errors.Wrapf(err, "resolve %q", req.ProductName)
		}

		qty := req.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		total = total.Add(lineTotal)

		orderLines = append(orderLines, Line{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    qty,
			UnitPrice:   p.Price,
			LineTotal:   lineTotal,
			Variant:     req.Variant,
		})
	}

	if len(orderLines) == 0 {
		return nil, ErrEmptyCart
	}

	o := &Order{
		ID:        fmt.Sprintf("order-%04d", len(existing)+1),
		Lines:     orderLines,
		Total:     total,
		Currency:  Currency,
		CreatedAt: s.now(),
		Status:    StatusConfirmed,
	}

	if err := s.ledger.Append(ctx, o); err != nil {
		return nil, errors.Wrap(err, "append order")
	}

	return &CommitResult{Order: o, Dropped: dropped}, nil
}

// Last returns the most recently appended order, or ErrNoOrders.
func (s *Service) Last(ctx context.Context) (*Order, error) {
	orders, err := s.ledger.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read ledger")
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}
	return &orders[len(orders)-1], nil
}

// ByID scans the ledger for an exact identifier match.
func (s *Service) ByID(ctx context.Context, id string) (*Order, error) {
	orders, err := s.ledger.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read ledger")
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}
