package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"foodhub/internal/domain"
	"foodhub/internal/repository"
	"foodhub/internal/storage"
)

type FoodService struct {
	logger     *zap.Logger
	foods      repository.FoodRepository
	categories *CategoryService
	images     storage.ImageStore
	now        func() time.Time
}

func NewFoodService(logger *zap.Logger, foods repository.FoodRepository, categories *CategoryService, images storage.ImageStore) *FoodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FoodService{
		logger:     logger,
		foods:      foods,
		categories: categories,
		images:     images,
		now:        time.Now,
	}
}

type CreateFoodInput struct {
	CategoryID string
	UserID     string
	Name       string
	Details    string
	Photo      *storage.Upload
}

// UpdateFoodInput usa punteros: nil deja el campo como está.
type UpdateFoodInput struct {
	Name       *string
	Details    *string
	CategoryID *string
	Photo      *storage.Upload
}

func (s *FoodService) Create(ctx context.Context, input CreateFoodInput) (domain.Food, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Food{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	category, err := s.categories.Get(ctx, input.CategoryID)
	if err != nil {
		return domain.Food{}, err
	}

	now := s.now().UTC()
	food := domain.Food{
		ID:         uuid.NewString(),
		Name:       name,
		CategoryID: category.ID,
		UserID:     strings.TrimSpace(input.UserID),
		Details:    strings.TrimSpace(input.Details),
		Category:   &category,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if input.Photo != nil {
		url, err := putImage(ctx, s.images, "foods", *input.Photo)
		if err != nil {
			return domain.Food{}, err
		}
		food.Photo = url
	}

	if err := s.foods.Create(ctx, food); err != nil {
		discardImage(ctx, s.logger, s.images, food.Photo)
		switch {
		case errors.Is(err, repository.ErrMissingUser):
			// El token de sesión sigue firmado pero su usuario ya no existe.
			return domain.Food{}, ErrInvalidToken
		case errors.Is(err, repository.ErrNotFound):
			return domain.Food{}, ErrCategoryNotFound
		}
		return domain.Food{}, fmt.Errorf("create food: %w", err)
	}
	s.logger.Info("food created", zap.String("food_id", food.ID), zap.String("category_id", food.CategoryID))
	return food, nil
}

func (s *FoodService) List(ctx context.Context) ([]domain.Food, error) {
	return s.foods.List(ctx)
}

func (s *FoodService) ListByCategory(ctx context.Context, categoryID string) ([]domain.Food, error) {
	return s.foods.ListByCategory(ctx, strings.TrimSpace(categoryID))
}

func (s *FoodService) Get(ctx context.Context, id string) (domain.Food, error) {
	food, err := s.foods.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Food{}, ErrFoodNotFound
		}
		return domain.Food{}, err
	}
	return food, nil
}

func (s *FoodService) Update(ctx context.Context, id string, input UpdateFoodInput) (domain.Food, error) {
	food, err := s.Get(ctx, id)
	if err != nil {
		return domain.Food{}, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return domain.Food{}, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		food.Name = name
	}
	if input.Details != nil {
		food.Details = strings.TrimSpace(*input.Details)
	}
	if input.CategoryID != nil && strings.TrimSpace(*input.CategoryID) != food.CategoryID {
		category, err := s.categories.Get(ctx, *input.CategoryID)
		if err != nil {
			return domain.Food{}, err
		}
		food.CategoryID = category.ID
		food.Category = &category
	}
	var uploaded string
	if input.Photo != nil {
		url, err := putImage(ctx, s.images, "foods", *input.Photo)
		if err != nil {
			return domain.Food{}, err
		}
		food.Photo = url
		uploaded = url
	}
	food.UpdatedAt = s.now().UTC()

	if err := s.foods.Update(ctx, food); err != nil {
		discardImage(ctx, s.logger, s.images, uploaded)
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Food{}, ErrFoodNotFound
		}
		return domain.Food{}, fmt.Errorf("update food: %w", err)
	}
	return food, nil
}

// Remove borra el plato y devuelve lo que había.
func (s *FoodService) Remove(ctx context.Context, id string) (domain.Food, error) {
	food, err := s.Get(ctx, id)
	if err != nil {
		return domain.Food{}, err
	}
	if err := s.foods.Delete(ctx, food.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Food{}, ErrFoodNotFound
		}
		return domain.Food{}, fmt.Errorf("delete food: %w", err)
	}
	s.logger.Info("food removed", zap.String("food_id", food.ID))
	return food, nil
}

// Search hace match por subcadena del nombre; una palabra vacía es error de validación.
func (s *FoodService) Search(ctx context.Context, keyword string) ([]domain.Food, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword is required", ErrValidation)
	}
	return s.foods.SearchByName(ctx, keyword)
}
