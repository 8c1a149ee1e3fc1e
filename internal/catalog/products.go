package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cuongthieu-itme/ecm-be/internal/fault"
	"github.com/cuongthieu-itme/ecm-be/pkg/pagination"
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
)

type ProductQuery struct {
	Page       int
	Limit      int
	Search     string
	CategoryID int64
	SortBy     string
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Image       string
	CategoryID  int64
}

// ProductUpdate carries only the fields the caller wants changed.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Image       *string
	CategoryID  *int64
}

const productColumns = `p.id, p.name, p.slug, p.description, p.price::text, p.stock, p.image, p.is_active,
	c.id, c.name, p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var price string
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &price, &p.Stock, &p.Image, &p.IsActive,
		&p.Category.ID, &p.Category.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func orderClause(sortBy string) string {
	switch sortBy {
	case SortPriceAsc:
		return "p.price ASC"
	case SortPriceDesc:
		return "p.price DESC"
	case SortNameAsc:
		return "p.name ASC"
	case SortNameDesc:
		return "p.name DESC"
	default:
		return "p.created_at DESC"
	}
}

// ListProducts returns active products only; inactive ones stay reachable
// through GetProduct for historical reads.
func (s *Service) ListProducts(ctx context.Context, q ProductQuery) ([]Product, pagination.Meta, error) {
	where := []string{"p.is_active"}
	args := []any{}
	if q.CategoryID != 0 {
		args = append(args, q.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where = append(where, fmt.Sprintf("p.name ILIKE $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM products p WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, pagination.Meta{}, err
	}

	args = append(args, q.Limit, pagination.Offset(q.Page, q.Limit))
	query := fmt.Sprintf(`SELECT %s FROM products p JOIN categories c ON c.id = p.category_id
		WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, cond, orderClause(q.SortBy), len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, pagination.Meta{}, err
	}
	return products, pagination.NewMeta(total, q.Page, q.Limit), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products p JOIN categories c ON c.id = p.category_id WHERE p.id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO products(name, slug, description, price, stock, image, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		in.Name, productSlug(in.Name), in.Description, in.Price.String(), in.Stock, in.Image, in.CategoryID,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductUpdate) (*Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	sets := []string{"updated_at = now()"}
	args := []any{id}
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if in.Name != nil {
		set("name", *in.Name)
		set("slug", productSlug(*in.Name))
	}
	if in.Description != nil {
		set("description", *in.Description)
	}
	if in.Price != nil {
		set("price", in.Price.String())
	}
	if in.Stock != nil {
		set("stock", *in.Stock)
	}
	if in.Image != nil {
		set("image", *in.Image)
	}
	if in.CategoryID != nil {
		set("category_id", *in.CategoryID)
	}

	_, err := s.pool.Exec(ctx,
		"UPDATE products SET "+strings.Join(sets, ", ")+" WHERE id = $1", args...)
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// DeactivateProduct soft-deletes: historical orders keep referencing the row.
func (s *Service) DeactivateProduct(ctx context.Context, id int64) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `UPDATE products SET is_active = false, updated_at = now() WHERE id = $1`, id)
	return err
}

func (s *Service) checkCategory(ctx context.Context, id int64) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fault.InvalidRequest("category not found")
	}
	return nil
}
