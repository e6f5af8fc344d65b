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

type CategoryService struct {
	logger *zap.Logger
	repo   repository.CategoryRepository
	images storage.ImageStore
	now    func() time.Time
}

func NewCategoryService(logger *zap.Logger, repo repository.CategoryRepository, images storage.ImageStore) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{logger: logger, repo: repo, images: images, now: time.Now}
}

// Create guarda la categoría; la imagen es opcional y va a la carpeta "categories".
func (s *CategoryService) Create(ctx context.Context, name string, picture *storage.Upload) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	category := domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	if picture != nil {
		url, err := putImage(ctx, s.images, "categories", *picture)
		if err != nil {
			return domain.Category{}, err
		}
		category.Picture = url
	}

	if err := s.repo.Create(ctx, category); err != nil {
		discardImage(ctx, s.logger, s.images, category.Picture)
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.logger.Info("category created", zap.String("category_id", category.ID))
	return category, nil
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id string) (domain.Category, error) {
	category, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Category{}, ErrCategoryNotFound
		}
		return domain.Category{}, err
	}
	return category, nil
}

func putImage(ctx context.Context, images storage.ImageStore, folder string, upload storage.Upload) (string, error) {
	if images == nil {
		return "", errors.New("image store not configured")
	}
	return images.Put(ctx, folder, upload)
}

// discardImage borra una imagen subida cuyo registro no llegó a guardarse.
func discardImage(ctx context.Context, logger *zap.Logger, images storage.ImageStore, url string) {
	if url == "" || images == nil {
		return
	}
	if err := images.Delete(ctx, url); err != nil {
		logger.Warn("discard uploaded image failed", zap.Error(err), zap.String("url", url))
	}
}
