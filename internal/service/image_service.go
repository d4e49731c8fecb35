package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
	"catalog-api/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidSlotIndex = errors.New("image slot index out of range")
	ErrNoImageAtSlot    = errors.New("no image at this slot")
	ErrImageNotFound    = errors.New("image file not found")
)

// ImageService binds uploaded files to product image slots. It holds no
// state of its own: the slot array lives on the product record and the
// files live in the image store, and the two are kept in lockstep.
type ImageService interface {
	Attach(ctx context.Context, productID uuid.UUID, index int, filename string, content io.Reader) (*domain.Product, error)
	Detach(ctx context.Context, productID uuid.UUID, index int) (*domain.Product, error)
}

type imageService struct {
	productRepo repository.ProductRepository
	images      *storage.ImageStore
	logger      *zap.Logger
}

// NewImageService creates a new instance of ImageService
func NewImageService(
	productRepo repository.ProductRepository,
	images *storage.ImageStore,
	logger *zap.Logger,
) ImageService {
	return &imageService{
		productRepo: productRepo,
		images:      images,
		logger:      logger,
	}
}

// Attach stores content and binds it to the product's slot at index,
// replacing (and deleting) any previous file there. If anything fails
// after the new file hits storage, the file is removed again so a
// failed operation never leaks storage.
func (s *imageService) Attach(ctx context.Context, productID uuid.UUID, index int, filename string, content io.Reader) (*domain.Product, error) {
	if index < 0 || index >= domain.ImageSlots {
		return nil, ErrInvalidSlotIndex
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	stored, err := s.images.Save(filename, content)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	// Replacing an occupied slot releases the old file before the new
	// reference is committed. Unlike the best-effort cleanup on product
	// deletion, a failure here is fatal to the whole operation.
	if product.Images.Occupied(index) {
		if err := s.images.Remove(product.Images[index]); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
			s.discard(stored)
			return nil, fmt.Errorf("failed to replace image at slot %d: %w", index, err)
		}
	}

	product.Images[index] = stored
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.discard(stored)
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to persist image slot: %w", err)
	}

	return product, nil
}

// Detach removes the file behind the slot at index and clears the slot.
// A slot whose file has already vanished from storage is cleared anyway
// so the dangling reference heals, and ErrImageNotFound is reported.
func (s *imageService) Detach(ctx context.Context, productID uuid.UUID, index int) (*domain.Product, error) {
	if index < 0 || index >= domain.ImageSlots {
		return nil, ErrInvalidSlotIndex
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	if !product.Images.Occupied(index) {
		return nil, ErrNoImageAtSlot
	}

	removeErr := s.images.Remove(product.Images[index])
	if removeErr != nil && !errors.Is(removeErr, storage.ErrFileNotFound) {
		return nil, fmt.Errorf("failed to remove image: %w", removeErr)
	}

	product.Images[index] = ""
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to persist image slot: %w", err)
	}

	if errors.Is(removeErr, storage.ErrFileNotFound) {
		return nil, ErrImageNotFound
	}

	return product, nil
}

// discard is the compensating cleanup for a freshly stored file whose
// operation failed afterwards.
func (s *imageService) discard(stored string) {
	if err := s.images.Remove(stored); err != nil {
		s.logger.Warn("Failed to clean up stored image after error",
			zap.String("file", stored),
			zap.Error(err),
		)
	}
}
