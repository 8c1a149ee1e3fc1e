package order

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cuongthieu-itme/ecm-be/internal/catalog"
	"github.com/cuongthieu-itme/ecm-be/internal/database"
	"github.com/cuongthieu-itme/ecm-be/internal/fault"
	"github.com/cuongthieu-itme/ecm-be/pkg/contracts"
	"github.com/cuongthieu-itme/ecm-be/pkg/logging"
	"github.com/cuongthieu-itme/ecm-be/pkg/outbox"
)

var errIdempotencyRace = errors.New("idempotency race")

// Line is one cart line joined with the product state read at validation
// time. The price carried here is the price the order will record.
type Line struct {
	ProductID    int64
	ProductName  string
	ProductPrice decimal.Decimal
	Stock        int
	IsActive     bool
	Quantity     int
}

// validateLines is all-or-nothing: the first bad line aborts the placement.
func validateLines(lines []Line) error {
	for _, l := range lines {
		if !l.IsActive {
			return fault.InvalidRequest("product %q is no longer available", l.ProductName)
		}
		if l.Stock < l.Quantity {
			return fault.InvalidRequest("insufficient stock for %q", l.ProductName)
		}
	}
	return nil
}

func linesTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.ProductPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Place converts the user's cart into an order. The mutating steps (order
// insert, item snapshots, stock decrements, cart delete, outbox event) run
// in one transaction; a failure in any of them leaves no trace of the rest.
//
// idemKey, when non-empty, makes the placement replay-safe: the same key
// returns the order created the first time instead of placing again.
func (e *Engine) Place(ctx context.Context, userID int64, idemKey string) (*Order, error) {
	start := time.Now()

	if idemKey != "" {
		if existing, err := e.byIdempotencyKey(ctx, idemKey); err == nil && existing != nil {
			return existing, nil
		}
	}

	cartID, lines, err := e.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fault.InvalidRequest("cart is empty")
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	total := linesTotal(lines)

	o, err := e.commit(ctx, userID, cartID, idemKey, lines, total)
	if errors.Is(err, errIdempotencyRace) {
		// another replica won the key; hand back its order
		if existing, qerr := e.byIdempotencyKey(ctx, idemKey); qerr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	logging.Log(logging.Fields{
		Service:    "shop-server",
		UserID:     userID,
		OrderID:    o.ID,
		Step:       "place_order",
		Status:     "committed",
		DurationMS: time.Since(start).Milliseconds(),
	})
	return o, nil
}

func (e *Engine) loadCart(ctx context.Context, userID int64) (int64, []Line, error) {
	var cartID int64
	err := e.pool.QueryRow(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, nil
	}
	if err != nil {
		return 0, nil, err
	}

	rows, err := e.pool.Query(ctx,
		`SELECT p.id, p.name, p.price::text, p.stock, p.is_active, ci.quantity
		 FROM cart_items ci JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1 ORDER BY ci.id`, cartID)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		var price string
		if err := rows.Scan(&l.ProductID, &l.ProductName, &price, &l.Stock, &l.IsActive, &l.Quantity); err != nil {
			return 0, nil, err
		}
		if l.ProductPrice, err = decimal.NewFromString(price); err != nil {
			return 0, nil, err
		}
		lines = append(lines, l)
	}
	return cartID, lines, rows.Err()
}

func (e *Engine) commit(ctx context.Context, userID, cartID int64, idemKey string, lines []Line, total decimal.Decimal) (*Order, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o := &Order{UserID: userID, Status: StatusPending, TotalPrice: total}
	err = tx.QueryRow(ctx,
		`INSERT INTO orders(user_id, total_price) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		userID, total.String(),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		item := Item{
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			ProductPrice: l.ProductPrice,
			Quantity:     l.Quantity,
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO order_items(order_id, product_id, product_name, product_price, quantity)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			o.ID, l.ProductID, l.ProductName, l.ProductPrice.String(), l.Quantity,
		).Scan(&item.ID)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}

	// Decrement after validation has passed for every line. The conditional
	// form re-checks under the transaction, so a concurrent placement that
	// already took the stock fails this order instead of overselling.
	for _, l := range lines {
		ok, err := catalog.DecrementStock(ctx, tx, l.ProductID, l.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fault.InvalidRequest("insufficient stock for %q", l.ProductName)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return nil, err
	}

	if idemKey != "" {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_idempotency(idempotency_key, order_id) VALUES ($1, $2)`, idemKey, o.ID)
		if database.IsUniqueViolation(err) {
			return nil, errIdempotencyRace
		}
		if err != nil {
			return nil, err
		}
	}

	if err := e.insertEvent(ctx, tx, o, contracts.EventOrderCreated, map[string]any{
		"total_price": o.TotalPrice.String(),
		"item_count":  len(o.Items),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// insertEvent records the event in the outbox within tx, keyed by order id
// so one order's events land on one partition.
func (e *Engine) insertEvent(ctx context.Context, tx pgx.Tx, o *Order, eventType string, payload map[string]any) error {
	eventID := uuid.NewString()
	return outbox.Insert(ctx, tx, eventID, contracts.TopicOrders, strconv.FormatInt(o.ID, 10), contracts.Event{
		EventID:   eventID,
		OrderID:   o.ID,
		UserID:    o.UserID,
		CreatedAt: time.Now().UTC(),
		Type:      eventType,
		Payload:   payload,
	})
}

func (e *Engine) byIdempotencyKey(ctx context.Context, key string) (*Order, error) {
	var orderID int64
	err := e.pool.QueryRow(ctx,
		`SELECT order_id FROM order_idempotency WHERE idempotency_key = $1`, key).Scan(&orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e.byID(ctx, orderID)
}
