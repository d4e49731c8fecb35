package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrCategoryInUse = errors.New("category is used by some products")
)

// CategoryPatch carries the mutable category fields; nil means "leave
// unchanged".
type CategoryPatch struct {
	Name   *string
	Status *bool
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	List(ctx context.Context, activeOnly bool) ([]*domain.Category, error)
	Create(ctx context.Context, name string, status bool) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch CategoryPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// List returns categories, optionally restricted to active ones
func (s *categoryService) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Create adds a new category. The unique name constraint surfaces as
// repository.ErrCategoryAlreadyExists.
func (s *categoryService) Create(ctx context.Context, name string, status bool) (*domain.Category, error) {
	now := time.Now()
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// Update applies the patch. A name change is a full rename: every
// product referencing the old name is rewritten to the new name, and
// products pick up the category's (possibly unchanged) status, all in
// one repository transaction.
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, patch CategoryPatch) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return err
		}
		return fmt.Errorf("failed to find category: %w", err)
	}

	oldName := category.Name
	if patch.Name != nil {
		category.Name = *patch.Name
	}
	if patch.Status != nil {
		category.Status = *patch.Status
	}
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category, oldName); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) || errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return err
		}
		return fmt.Errorf("failed to update category: %w", err)
	}

	return nil
}

// Delete removes a category that no product references. Deletion is
// refused with ErrCategoryInUse while references exist.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return err
		}
		return fmt.Errorf("failed to find category: %w", err)
	}

	count, err := s.productRepo.CountByCategory(ctx, category.Name)
	if err != nil {
		return fmt.Errorf("failed to count category references: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}
