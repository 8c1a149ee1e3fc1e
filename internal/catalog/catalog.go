// Package catalog owns products and categories. It is read-mostly: the one
// write the rest of the system performs against it is the conditional stock
// decrement during order placement.
package catalog

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryDetail adds the dependent-product count to a single-category read.
type CategoryDetail struct {
	Category
	ProductCount int64 `json:"productCount"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	IsActive    bool            `json:"isActive"`
	Category    CategoryRef     `json:"category"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}
