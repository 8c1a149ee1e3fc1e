// Package cart maintains one active cart per user. Cart writes are
// optimistic: stock is checked against the requested quantity, but the
// merged line total is not re-validated. The order engine is the
// authoritative check at placement time.
package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cuongthieu-itme/ecm-be/internal/fault"
)

type ItemProduct struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Image    string          `json:"image"`
	IsActive bool            `json:"isActive"`
}

type Item struct {
	ID       int64       `json:"id"`
	Quantity int         `json:"quantity"`
	Product  ItemProduct `json:"product"`
}

type Cart struct {
	ID         int64           `json:"id"`
	Items      []Item          `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Total sums price × quantity over the live product prices.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Get returns the user's cart with items and a computed total. A user
// without a cart row gets a synthetic empty cart, not an error.
func (s *Service) Get(ctx context.Context, userID int64) (*Cart, error) {
	var cartID int64
	err := s.pool.QueryRow(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Cart{Items: []Item{}, TotalPrice: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := s.items(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return &Cart{ID: cartID, Items: items, TotalPrice: Total(items)}, nil
}

func (s *Service) items(ctx context.Context, cartID int64) ([]Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ci.id, ci.quantity, p.id, p.name, p.price::text, p.stock, p.image, p.is_active
		 FROM cart_items ci JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1 ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		var price string
		if err := rows.Scan(&it.ID, &it.Quantity, &it.Product.ID, &it.Product.Name,
			&price, &it.Product.Stock, &it.Product.Image, &it.Product.IsActive); err != nil {
			return nil, err
		}
		if it.Product.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddItem puts qty units of a product into the cart, creating the cart on
// first use and merging into an existing line for the same product.
func (s *Service) AddItem(ctx context.Context, userID, productID int64, qty int) (*Cart, error) {
	if qty < 1 {
		return nil, fault.InvalidRequest("quantity must be at least 1")
	}

	var stock int
	var active bool
	err := s.pool.QueryRow(ctx,
		`SELECT stock, is_active FROM products WHERE id = $1`, productID).Scan(&stock, &active)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && !active) {
		return nil, fault.NotFound("product not found or unavailable")
	}
	if err != nil {
		return nil, err
	}
	if stock < qty {
		return nil, fault.InvalidRequest("insufficient stock")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO carts(user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return nil, err
	}
	var cartID int64
	if err := s.pool.QueryRow(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&cartID); err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO cart_items(cart_id, product_id, quantity) VALUES ($1, $2, $3)
		 ON CONFLICT (cart_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cartID, productID, qty)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// UpdateItem sets an absolute quantity. Ownership is enforced by the join:
// the item is only visible through a cart belonging to userID.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID int64, qty int) (*Cart, error) {
	if qty < 1 {
		return nil, fault.InvalidRequest("quantity must be at least 1")
	}

	var stock int
	err := s.pool.QueryRow(ctx,
		`SELECT p.stock FROM cart_items ci
		 JOIN carts c ON c.id = ci.cart_id AND c.user_id = $1
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.id = $2`, userID, itemID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound("cart item not found")
	}
	if err != nil {
		return nil, err
	}
	if stock < qty {
		return nil, fault.InvalidRequest("insufficient stock")
	}

	_, err = s.pool.Exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, qty)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) (*Cart, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM cart_items ci USING carts c
		 WHERE ci.id = $2 AND c.id = ci.cart_id AND c.user_id = $1`, userID, itemID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fault.NotFound("cart item not found")
	}
	return s.Get(ctx, userID)
}

// Clear empties the user's cart; a user without a cart is a no-op success.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM cart_items ci USING carts c
		 WHERE c.id = ci.cart_id AND c.user_id = $1`, userID)
	return err
}
