package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/cuongthieu-itme/ecm-be/internal/database"
	"github.com/cuongthieu-itme/ecm-be/internal/fault"
)

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, slug, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*CategoryDetail, error) {
	var c CategoryDetail
	err := s.pool.QueryRow(ctx,
		`SELECT c.id, c.name, c.slug, c.created_at,
			(SELECT count(*) FROM products p WHERE p.category_id = c.id)
		 FROM categories c WHERE c.id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.ProductCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound("category not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory pre-checks the slug; the unique index catches the race
// between two identical creates and is reported the same way.
func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	slug := slugify(name)

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, fault.Conflict("category with this name already exists")
	}

	var c Category
	err := s.pool.QueryRow(ctx,
		`INSERT INTO categories(name, slug) VALUES ($1, $2) RETURNING id, name, slug, created_at`,
		name, slug,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if database.IsUniqueViolation(err) {
		return nil, fault.Conflict("category with this name already exists")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, name string) (*Category, error) {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return nil, err
	}

	var c Category
	err := s.pool.QueryRow(ctx,
		`UPDATE categories SET name = $2, slug = $3 WHERE id = $1 RETURNING id, name, slug, created_at`,
		id, name, slugify(name),
	).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if database.IsUniqueViolation(err) {
		return nil, fault.Conflict("category with this name already exists")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if database.IsForeignKeyViolation(err) {
		return fault.Conflict("category has dependent products")
	}
	return err
}
