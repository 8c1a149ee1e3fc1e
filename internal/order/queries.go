package order

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cuongthieu-itme/ecm-be/internal/fault"
	"github.com/cuongthieu-itme/ecm-be/pkg/contracts"
	"github.com/cuongthieu-itme/ecm-be/pkg/pagination"
)

const summaryColumns = `o.id, o.user_id, o.status, o.total_price::text, o.created_at,
	(SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id)`

func (e *Engine) list(ctx context.Context, cond string, args []any, page, limit int) ([]Summary, pagination.Meta, error) {
	var total int64
	if err := e.pool.QueryRow(ctx, `SELECT count(*) FROM orders o `+cond, args...).Scan(&total); err != nil {
		return nil, pagination.Meta{}, err
	}

	query := `SELECT ` + summaryColumns + ` FROM orders o ` + cond + ` ORDER BY o.created_at DESC`
	switch len(args) {
	case 0:
		query += ` LIMIT $1 OFFSET $2`
	case 1:
		query += ` LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, pagination.Offset(page, limit))

	rows, err := e.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var s Summary
		var price string
		if err := rows.Scan(&s.ID, &s.UserID, &s.Status, &price, &s.CreatedAt, &s.ItemCount); err != nil {
			return nil, pagination.Meta{}, err
		}
		if s.TotalPrice, err = decimal.NewFromString(price); err != nil {
			return nil, pagination.Meta{}, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, pagination.Meta{}, err
	}
	return summaries, pagination.NewMeta(total, page, limit), nil
}

// ListForUser returns the caller's orders, newest first.
func (e *Engine) ListForUser(ctx context.Context, userID int64, page, limit int) ([]Summary, pagination.Meta, error) {
	return e.list(ctx, `WHERE o.user_id = $1`, []any{userID}, page, limit)
}

// ListAll is the admin view across all users.
func (e *Engine) ListAll(ctx context.Context, page, limit int) ([]Summary, pagination.Meta, error) {
	return e.list(ctx, ``, nil, page, limit)
}

// Get returns one order. Existence is checked before access, so a caller
// probing someone else's order id learns it exists but not its contents.
func (e *Engine) Get(ctx context.Context, id, requesterID int64, isAdmin bool) (*Order, error) {
	o, err := e.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != requesterID {
		return nil, fault.Forbidden("access denied")
	}
	return o, nil
}

func (e *Engine) byID(ctx context.Context, id int64) (*Order, error) {
	var o Order
	var price string
	err := e.pool.QueryRow(ctx,
		`SELECT id, user_id, status, total_price::text, created_at, updated_at FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.UserID, &o.Status, &price, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound("order not found")
	}
	if err != nil {
		return nil, err
	}
	if o.TotalPrice, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}

	rows, err := e.pool.Query(ctx,
		`SELECT id, product_id, product_name, product_price::text, quantity
		 FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		var itemPrice string
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &itemPrice, &it.Quantity); err != nil {
			return nil, err
		}
		if it.ProductPrice, err = decimal.NewFromString(itemPrice); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

// UpdateStatus overwrites the status unconditionally; no transition graph
// is enforced. The status event shares the update's transaction.
func (e *Engine) UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var o Order
	var price string
	err = tx.QueryRow(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1
		 RETURNING id, user_id, status, total_price::text, created_at, updated_at`,
		id, string(status),
	).Scan(&o.ID, &o.UserID, &o.Status, &price, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound("order not found")
	}
	if err != nil {
		return nil, err
	}
	if o.TotalPrice, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}

	if err := e.insertEvent(ctx, tx, &o, contracts.EventOrderStatusChanged, map[string]any{
		"status": string(o.Status),
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}
