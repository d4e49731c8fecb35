package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
	"catalog-api/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrCategoryDoesNotExist = errors.New("category doesn't exist")
)

// ProductInput carries the caller-supplied fields for product creation.
// Defaults for Description and Rating are applied at the transport
// boundary before the input reaches the service.
type ProductInput struct {
	Name        string
	Price       float64
	Quantity    int
	Category    string
	Description string
	Rating      int
}

// ProductPatch carries the mutable product fields; nil means "leave
// unchanged". Status cannot be patched directly: it always follows the
// product's category.
type ProductPatch struct {
	Name        *string
	Price       *float64
	Quantity    *int
	Category    *string
	Description *string
	Rating      *int
}

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error)
	ListActive(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch ProductPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	images       *storage.ImageStore
	logger       *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	images *storage.ImageStore,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		images:       images,
		logger:       logger,
	}
}

// List returns products matching the filter, newest first
func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListActive is List constrained to active products. Any caller-supplied
// status predicate is overridden.
func (s *productService) ListActive(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	active := true
	filter.Status = &active
	return s.List(ctx, filter)
}

// Get retrieves a product by ID
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Create persists a new product. The category must exist; the product
// inherits its status. Image slots start empty.
func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	category, err := s.categoryRepo.FindByName(ctx, input.Category)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryDoesNotExist
		}
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Category:    category.Name,
		Description: input.Description,
		Rating:      input.Rating,
		Status:      category.Status,
		Images:      domain.ImageList{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update applies the patch. A category change must resolve to an
// existing category, and the product's status is overwritten with that
// category's current status regardless of caller input.
func (s *productService) Update(ctx context.Context, id uuid.UUID, patch ProductPatch) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to find product: %w", err)
	}

	if patch.Category != nil {
		category, err := s.categoryRepo.FindByName(ctx, *patch.Category)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return repository.ErrCategoryNotFound
			}
			return fmt.Errorf("failed to resolve category: %w", err)
		}
		product.Category = category.Name
		product.Status = category.Status
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Quantity != nil {
		product.Quantity = *patch.Quantity
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Rating != nil {
		product.Rating = *patch.Rating
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes a product and, best-effort, every image file its slots
// reference. A file that fails to delete is logged and skipped; the
// record deletion proceeds regardless.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to find product: %w", err)
	}

	for i, name := range product.Images {
		if name == "" {
			continue
		}
		if err := s.images.Remove(name); err != nil {
			s.logger.Warn("Failed to remove product image during deletion",
				zap.String("product_id", product.ID.String()),
				zap.Int("slot", i),
				zap.String("file", name),
				zap.Error(err),
			)
		}
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
