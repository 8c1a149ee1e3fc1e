// Package order turns a cart into an immutable order: one transaction
// creates the order with price-at-purchase line items, decrements stock
// conditionally, and empties the cart. Everything else here is reads plus
// the admin status overwrite.
package order

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cuongthieu-itme/ecm-be/internal/fault"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// ParseStatus validates enum membership only; transitions between statuses
// are deliberately unconstrained.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), nil
	}
	return "", fault.InvalidRequest("invalid order status %q", s)
}

// Item is the historical record of one purchased line. Name and price are
// captured at purchase time and never re-derived from the catalog.
type Item struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int             `json:"quantity"`
}

type Order struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	Status     Status          `json:"status"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Items      []Item          `json:"items,omitempty"`
}

// Summary is the listing row; items are reduced to a count.
type Summary struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	Status     Status          `json:"status"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	ItemCount  int64           `json:"itemCount"`
}

type Engine struct {
	pool *pgxpool.Pool
}

func NewEngine(pool *pgxpool.Pool) *Engine {
	return &Engine{pool: pool}
}
