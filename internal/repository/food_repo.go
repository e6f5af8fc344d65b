package repository

import (
	"context"
	"strings"

	"foodhub/internal/domain"
)

type FoodRepository interface {
	Create(ctx context.Context, food domain.Food) error
	GetByID(ctx context.Context, id string) (domain.Food, error)
	List(ctx context.Context) ([]domain.Food, error)
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Food, error)
	SearchByName(ctx context.Context, keyword string) ([]domain.Food, error)
	Update(ctx context.Context, food domain.Food) error
	Delete(ctx context.Context, id string) error
}

type PgFoodRepository struct {
	db DBTX
}

func NewPgFoodRepository(db DBTX) *PgFoodRepository {
	return &PgFoodRepository{db: db}
}

// foodSelect une categoría y creador; el hash de password nunca se selecciona.
const foodSelect = `
	SELECT f.id::text, f.name, f.category_id::text, COALESCE(f.user_id::text, ''), f.photo, f.details,
	       f.created_at, f.updated_at,
	       c.id::text, c.name, c.picture, c.created_at,
	       COALESCE(u.id::text, ''), COALESCE(u.username, ''), COALESCE(u.email, ''), COALESCE(u.avatar, '')
	FROM foods f
	JOIN categories c ON c.id = f.category_id
	LEFT JOIN users u ON u.id = f.user_id
`

func (r *PgFoodRepository) Create(ctx context.Context, food domain.Food) error {
	const query = `
		INSERT INTO foods (id, name, category_id, user_id, photo, details, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		food.ID,
		food.Name,
		food.CategoryID,
		food.UserID,
		food.Photo,
		food.Details,
		food.CreatedAt,
		food.UpdatedAt,
	)
	return mapError(err)
}

func (r *PgFoodRepository) GetByID(ctx context.Context, id string) (domain.Food, error) {
	return scanFood(r.db.QueryRow(ctx, foodSelect+` WHERE f.id = $1`, id))
}

func (r *PgFoodRepository) List(ctx context.Context) ([]domain.Food, error) {
	return r.query(ctx, foodSelect+` ORDER BY f.created_at`)
}

func (r *PgFoodRepository) ListByCategory(ctx context.Context, categoryID string) ([]domain.Food, error) {
	return r.query(ctx, foodSelect+` WHERE f.category_id = $1 ORDER BY f.created_at`, categoryID)
}

// SearchByName busca por subcadena sin distinguir mayúsculas.
func (r *PgFoodRepository) SearchByName(ctx context.Context, keyword string) ([]domain.Food, error) {
	pattern := "%" + escapeLike(keyword) + "%"
	return r.query(ctx, foodSelect+` WHERE f.name ILIKE $1 ESCAPE '\' ORDER BY f.name`, pattern)
}

func (r *PgFoodRepository) Update(ctx context.Context, food domain.Food) error {
	const query = `
		UPDATE foods
		SET name = $2, category_id = $3, photo = $4, details = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, food.ID, food.Name, food.CategoryID, food.Photo, food.Details, food.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgFoodRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM foods WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgFoodRepository) query(ctx context.Context, query string, args ...any) ([]domain.Food, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	foods := make([]domain.Food, 0)
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		foods = append(foods, f)
	}
	return foods, mapError(rows.Err())
}

func scanFood(row rowScanner) (domain.Food, error) {
	var (
		f domain.Food
		c domain.Category
		u domain.User
	)
	err := row.Scan(
		&f.ID, &f.Name, &f.CategoryID, &f.UserID, &f.Photo, &f.Details,
		&f.CreatedAt, &f.UpdatedAt,
		&c.ID, &c.Name, &c.Picture, &c.CreatedAt,
		&u.ID, &u.Username, &u.Email, &u.Avatar,
	)
	if err != nil {
		return domain.Food{}, mapError(err)
	}
	f.Category = &c
	if u.ID != "" {
		f.User = &u
	}
	return f, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
