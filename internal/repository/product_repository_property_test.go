package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalog-api/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_CreatedProductsRoundTrip(t *testing.T) {
	clearTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("a created product is retrievable with all fields intact", prop.ForAll(
		func(name string, price float64, quantity int, rating int) bool {
			if price < 0 {
				price = -price
			}
			if quantity < 0 {
				quantity = -quantity
			}
			rating = rating % 6
			if rating < 0 {
				rating = -rating
			}

			now := time.Now()
			product := &domain.Product{
				ID:          uuid.New(),
				Name:        name,
				Price:       price,
				Quantity:    quantity,
				Category:    "roundtrip",
				Description: "No Description",
				Rating:      rating,
				Status:      true,
				Images:      domain.ImageList{"", "stored-1.png", "", "", ""},
				CreatedAt:   now,
				UpdatedAt:   now,
			}

			if err := repo.Create(ctx, product); err != nil {
				t.Logf("failed to create product: %v", err)
				return false
			}
			defer testDB.Exec("DELETE FROM products WHERE id = $1", product.ID)

			got, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("failed to find product: %v", err)
				return false
			}

			if got.Name != product.Name || got.Quantity != product.Quantity || got.Rating != product.Rating {
				t.Logf("field mismatch: got %+v", got)
				return false
			}
			if got.Images != product.Images {
				t.Logf("images mismatch: got %v, want %v", got.Images, product.Images)
				return false
			}

			return true
		},
		gen.RegexMatch(`[A-Za-z ]{1,40}`),
		gen.Float64Range(0, 100000),
		gen.IntRange(0, 10000),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_NameFilterMatchesSubstring(t *testing.T) {
	clearTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("a product is found by any substring of its name", prop.ForAll(
		func(prefix string, core string, suffix string) bool {
			name := prefix + core + suffix

			product := newTestProduct(name, "filters", true)
			if err := repo.Create(ctx, product); err != nil {
				t.Logf("failed to create product: %v", err)
				return false
			}
			defer testDB.Exec("DELETE FROM products WHERE id = $1", product.ID)

			results, err := repo.List(ctx, ProductFilter{Name: &core})
			if err != nil {
				t.Logf("failed to list products: %v", err)
				return false
			}

			for _, p := range results {
				if p.ID == product.ID {
					return true
				}
			}

			t.Logf("product %q not matched by substring %q", name, core)
			return false
		},
		gen.RegexMatch(`[a-z]{0,5}`),
		gen.RegexMatch(`[a-z]{3,10}`),
		gen.RegexMatch(`[a-z]{0,5}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductRepository_ListOrderedByCreatedAtDescending(t *testing.T) {
	clearTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	names := []string{"oldest", "middle", "newest"}
	for i, name := range names {
		product := newTestProduct(name, "ordering", true)
		product.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		product.UpdatedAt = product.CreatedAt
		if err := repo.Create(ctx, product); err != nil {
			t.Fatalf("failed to create product %s: %v", name, err)
		}
	}

	products, err := repo.List(ctx, ProductFilter{})
	if err != nil {
		t.Fatalf("failed to list products: %v", err)
	}

	expected := []string{"newest", "middle", "oldest"}
	if len(products) != len(expected) {
		t.Fatalf("expected %d products, got %d", len(expected), len(products))
	}
	for i, name := range expected {
		if products[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, products[i].Name)
		}
	}
}

func TestProductRepository_FilterCombinesPredicates(t *testing.T) {
	clearTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	hammer := newTestProduct("hammer", "tools", true)
	hammer.Price = 9.99
	saw := newTestProduct("saw", "tools", true)
	saw.Price = 19.99
	brush := newTestProduct("brush", "paint", true)
	brush.Price = 9.99
	for _, p := range []*domain.Product{hammer, saw, brush} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("failed to create product: %v", err)
		}
	}

	category := "tool"
	price := 9.99
	products, err := repo.List(ctx, ProductFilter{Category: &category, Price: &price})
	if err != nil {
		t.Fatalf("failed to list products: %v", err)
	}

	if len(products) != 1 || products[0].Name != "hammer" {
		t.Errorf("expected only hammer, got %+v", products)
	}
}

func TestProductRepository_FilterIsCaseSensitive(t *testing.T) {
	clearTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product := newTestProduct("Hammer", "tools", true)
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	lower := "hammer"
	products, err := repo.List(ctx, ProductFilter{Name: &lower})
	if err != nil {
		t.Fatalf("failed to list products: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("expected case-sensitive match to exclude 'Hammer', got %+v", products)
	}

	upper := "Ham"
	products, err = repo.List(ctx, ProductFilter{Name: &upper})
	if err != nil {
		t.Fatalf("failed to list products: %v", err)
	}
	if len(products) != 1 {
		t.Errorf("expected 'Ham' to match 'Hammer', got %+v", products)
	}
}

func TestProductRepository_StatusFilter(t *testing.T) {
	clearTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	active := newTestProduct("active", "mixed", true)
	inactive := newTestProduct("inactive", "mixed", false)
	for _, p := range []*domain.Product{active, inactive} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("failed to create product: %v", err)
		}
	}

	status := true
	products, err := repo.List(ctx, ProductFilter{Status: &status})
	if err != nil {
		t.Fatalf("failed to list products: %v", err)
	}

	if len(products) != 1 || products[0].Name != "active" {
		t.Errorf("expected only the active product, got %+v", products)
	}
}

func TestProductRepository_CountByCategory(t *testing.T) {
	clearTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	for _, name := range []string{"a", "b"} {
		if err := repo.Create(ctx, newTestProduct(name, "counted", true)); err != nil {
			t.Fatalf("failed to create product: %v", err)
		}
	}

	count, err := repo.CountByCategory(ctx, "counted")
	if err != nil {
		t.Fatalf("failed to count products: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 products, got %d", count)
	}

	count, err = repo.CountByCategory(ctx, "empty")
	if err != nil {
		t.Fatalf("failed to count products: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 products, got %d", count)
	}
}

func TestProductRepository_UpdatePersistsImageSlots(t *testing.T) {
	clearTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product := newTestProduct("slotted", "images", true)
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	product.Images[2] = "12345-photo.png"
	product.UpdatedAt = time.Now()
	if err := repo.Update(ctx, product); err != nil {
		t.Fatalf("failed to update product: %v", err)
	}

	got, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("failed to find product: %v", err)
	}
	if got.Images[2] != "12345-photo.png" {
		t.Errorf("expected slot 2 to hold the file reference, got %q", got.Images[2])
	}
	for _, i := range []int{0, 1, 3, 4} {
		if got.Images[i] != "" {
			t.Errorf("expected slot %d to be empty, got %q", i, got.Images[i])
		}
	}
}

func TestProductRepository_UpdateNotFound(t *testing.T) {
	clearTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	missing := newTestProduct("ghost", "none", true)
	err := repo.Update(ctx, missing)
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_DeleteNotFound(t *testing.T) {
	clearTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	err := repo.Delete(ctx, uuid.New())
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}
