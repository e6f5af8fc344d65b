package repository

import (
	"context"

	"foodhub/internal/domain"
)

type CategoryRepository interface {
	Create(ctx context.Context, category domain.Category) error
	GetByID(ctx context.Context, id string) (domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

type PgCategoryRepository struct {
	db DBTX
}

func NewPgCategoryRepository(db DBTX) *PgCategoryRepository {
	return &PgCategoryRepository{db: db}
}

func (r *PgCategoryRepository) Create(ctx context.Context, category domain.Category) error {
	const query = `
		INSERT INTO categories (id, name, picture, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.Name, category.Picture, category.CreatedAt)
	return mapError(err)
}

func (r *PgCategoryRepository) GetByID(ctx context.Context, id string) (domain.Category, error) {
	const query = `SELECT id::text, name, picture, created_at FROM categories WHERE id = $1`
	var c domain.Category
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Picture, &c.CreatedAt)
	if err != nil {
		return domain.Category{}, mapError(err)
	}
	return c, nil
}

func (r *PgCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	const query = `SELECT id::text, name, picture, created_at FROM categories ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Picture, &c.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		categories = append(categories, c)
	}
	return categories, mapError(rows.Err())
}
