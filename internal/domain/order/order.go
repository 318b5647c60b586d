package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the fixed currency for every order.
const Currency = "INR"

// Status tracks the lifecycle of an order. Only the initial state is
// modeled; there are no transitions.
type Status string

// StatusConfirmed is assigned to every newly placed order.
const StatusConfirmed Status = "confirmed"

// Line is a single priced entry of a committed order. UnitPrice is the
// catalog price at commit time, not the price snapshotted in the cart.
type Line struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"item_total"`
	Variant     string          `json:"size,omitempty"`
}

// Order is a finalized, durable purchase record. IDs follow the
// "order-NNNN" scheme and increase strictly with ledger length; Total always
// equals the sum of the line totals.
type Order struct {
	ID        string          `json:"id"`
	Lines     []Line          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	Status    Status          `json:"status"`
}

// Repository is the order ledger: an append-only ordered sequence of
// orders, persisted as a whole. List must return orders in append order.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	Append(ctx context.Context, o *Order) error
}
