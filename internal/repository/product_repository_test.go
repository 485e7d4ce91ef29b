package repository

import (
	"context"
	"testing"

	"socks-bot/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(size domain.Size, material domain.Material, color string, price string, stock int) *domain.Product {
	return &domain.Product{
		Name:     domain.DefaultProductName,
		Size:     size,
		Material: material,
		Color:    color,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	}
}

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(sizeIdx int, materialIdx int, color string, cents int64, stock int) bool {
			product := &domain.Product{
				Size:     domain.Sizes[sizeIdx],
				Material: domain.Materials[materialIdx],
				Color:    color,
				Price:    decimal.New(cents, -2),
				Stock:    stock,
			}

			if err := repo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			retrieved, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			// decimal prices must round-trip exactly
			if !retrieved.Price.Equal(product.Price) {
				t.Logf("FAIL: Price mismatch. Expected %s, got %s", product.Price, retrieved.Price)
				return false
			}

			return retrieved.Name == domain.DefaultProductName &&
				retrieved.Size == product.Size &&
				retrieved.Material == product.Material &&
				retrieved.Color == color &&
				retrieved.Stock == stock
		},
		gen.IntRange(0, len(domain.Sizes)-1),
		gen.IntRange(0, len(domain.Materials)-1),
		gen.RegexMatch(`[a-z]{1,20}`),
		gen.Int64Range(0, 99999999),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductRepository_ListAvailableFilters(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	for _, p := range []*domain.Product{
		newProduct(domain.Size41to43, domain.MaterialCotton, "black", "2000", 5),
		newProduct(domain.Size41to43, domain.MaterialWool, "black", "2500", 5),
		newProduct(domain.Size38to40, domain.MaterialCotton, "white", "1500", 5),
		newProduct(domain.Size41to43, domain.MaterialCotton, "red", "1800", 0),
	} {
		require.NoError(t, repo.Create(ctx, p))
	}

	all, err := repo.ListAvailable(ctx, domain.CatalogFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, p := range all {
		assert.Positive(t, p.Stock)
	}

	size := domain.Size41to43
	bySize, err := repo.ListAvailable(ctx, domain.CatalogFilter{Size: &size})
	require.NoError(t, err)
	assert.Len(t, bySize, 2)

	material := domain.MaterialWool
	both, err := repo.ListAvailable(ctx, domain.CatalogFilter{Size: &size, Material: &material})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "2500", both[0].Price.String())

	everything, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, everything, 4)
}

func TestProductRepository_UpsertMatchesSizeMaterialColor(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	created, err := repo.Upsert(ctx, newProduct(domain.Size41to43, domain.MaterialCotton, "black", "2000.00", 49))
	require.NoError(t, err)
	assert.True(t, created)

	again := newProduct(domain.Size41to43, domain.MaterialCotton, "black", "2100.00", 10)
	created, err = repo.Upsert(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, again.ID, products[0].ID)
	assert.Equal(t, 10, products[0].Stock)
	assert.Equal(t, "2100.00", products[0].Price.StringFixed(2))
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product := newProduct(domain.Size44to46, domain.MaterialSynthetic, "blue", "990.50", 3)
	require.NoError(t, repo.Create(ctx, product))

	product.Color = "navy"
	require.NoError(t, repo.Update(ctx, product))

	stored, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "navy", stored.Color)

	require.NoError(t, repo.Delete(ctx, product.ID))
	_, err = repo.FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, product.ID), ErrProductNotFound)
	assert.ErrorIs(t, repo.Update(ctx, product), ErrProductNotFound)
}
