package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/go-faster/errors"

	"github.com/xenking/voicecart/internal/domain/order"
)

const (
	listOrdersSQL = `SELECT id, items, total, currency, status, created_at
	FROM orders ORDER BY position`

	appendOrderSQL = `INSERT INTO orders (id, items, total, currency, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`
)

var _ order.Repository = (*LedgerRepository)(nil)

// LedgerRepository implements order.Repository backed by PostgreSQL. The
// position column preserves append order across reads.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository returns a LedgerRepository that uses the given pool.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// List returns every order in append order.
func (r *LedgerRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		var (
			o     order.Order
			items []byte
		)
		if err := rows.Scan(&o.ID, &items, &o.Total, &o.Currency, &o.Status, &o.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		if err := json.Unmarshal(items, &o.Lines); err != nil {
			return nil, errors.Wrapf(err, "decode items of %q", o.ID)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// Append persists a new order. The lines are serialized to JSON for storage
// in the JSONB column.
func (r *LedgerRepository) Append(ctx context.Context, o *order.Order) error {
	items, err := json.Marshal(o.Lines)
	if err != nil {
		return errors.Wrapf(err, "encode items of %q", o.ID)
	}

	_, err = r.pool.Exec(ctx, appendOrderSQL,
		o.ID, items, o.Total, o.Currency, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "append order %q", o.ID)
	}
	return nil
}
