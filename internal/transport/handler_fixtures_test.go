package transport

import (
	"context"
	"sort"
	"strings"
	"testing"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"
	"catalog-api/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Mock repositories for testing. The category mock cascades renames into
// the product mock the way the real transactional update does.
type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
	}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	results := []*domain.Product{}
	for _, product := range m.products {
		if filter.Name != nil && !strings.Contains(product.Name, *filter.Name) {
			continue
		}
		if filter.Category != nil && !strings.Contains(product.Category, *filter.Category) {
			continue
		}
		if filter.Description != nil && !strings.Contains(product.Description, *filter.Description) {
			continue
		}
		if filter.Price != nil && product.Price != *filter.Price {
			continue
		}
		if filter.Quantity != nil && product.Quantity != *filter.Quantity {
			continue
		}
		if filter.Rating != nil && product.Rating != *filter.Rating {
			continue
		}
		if filter.Status != nil && product.Status != *filter.Status {
			continue
		}
		copied := *product
		results = append(results, &copied)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (m *mockProductRepository) CountByCategory(ctx context.Context, categoryName string) (int, error) {
	count := 0
	for _, product := range m.products {
		if product.Category == categoryName {
			count++
		}
	}
	return count, nil
}

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
	products   *mockProductRepository
}

func newMockCategoryRepository(products *mockProductRepository) *mockCategoryRepository {
	return &mockCategoryRepository{
		categories: make(map[uuid.UUID]*domain.Category),
		products:   products,
	}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, existing := range m.categories {
		if existing.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	copied := *category
	m.categories[category.ID] = &copied
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category, oldName string) error {
	if _, exists := m.categories[category.ID]; !exists {
		return repository.ErrCategoryNotFound
	}
	for id, existing := range m.categories {
		if id != category.ID && existing.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	copied := *category
	m.categories[category.ID] = &copied

	for _, product := range m.products.products {
		if product.Category == oldName {
			product.Category = category.Name
			product.Status = category.Status
		}
	}
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.categories[id]; !exists {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, exists := m.categories[id]
	if !exists {
		return nil, repository.ErrCategoryNotFound
	}
	copied := *category
	return &copied, nil
}

func (m *mockCategoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	for _, category := range m.categories {
		if category.Name == name {
			copied := *category
			return &copied, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	results := []*domain.Category{}
	for _, category := range m.categories {
		if activeOnly && !category.Status {
			continue
		}
		copied := *category
		results = append(results, &copied)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name > results[j].Name
		}
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	return results, nil
}

// testAPI wires real services over mock repositories and an in-memory
// image store behind the full route table.
type testAPI struct {
	router       *chi.Mux
	categoryRepo *mockCategoryRepository
	productRepo  *mockProductRepository
	store        *storage.ImageStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	productRepo := newMockProductRepository()
	categoryRepo := newMockCategoryRepository(productRepo)

	store, err := storage.NewImageStore(afero.NewMemMapFs(), "images")
	if err != nil {
		t.Fatalf("Failed to create image store: %v", err)
	}

	logger := zap.NewNop()
	categoryService := service.NewCategoryService(categoryRepo, productRepo)
	productService := service.NewProductService(productRepo, categoryRepo, store, logger)
	imageService := service.NewImageService(productRepo, store, logger)

	router := chi.NewRouter()
	NewCategoryHandler(categoryService, logger).RegisterRoutes(router)
	NewProductHandler(productService, logger).RegisterRoutes(router)
	NewImageHandler(imageService, store, logger).RegisterRoutes(router)

	return &testAPI{
		router:       router,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		store:        store,
	}
}

func (api *testAPI) seedCategory(t *testing.T, name string, status bool) *domain.Category {
	t.Helper()
	category := &domain.Category{ID: uuid.New(), Name: name, Status: status}
	if err := api.categoryRepo.Create(context.Background(), category); err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}
	return category
}

func (api *testAPI) seedProduct(t *testing.T, name, category string, status bool) *domain.Product {
	t.Helper()
	product := &domain.Product{
		ID:       uuid.New(),
		Name:     name,
		Price:    9.99,
		Quantity: 1,
		Category: category,
		Status:   status,
	}
	if err := api.productRepo.Create(context.Background(), product); err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return product
}
