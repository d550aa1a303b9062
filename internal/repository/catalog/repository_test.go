package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joaocamilod/catalogo-online/internal/repository/catalog"
)

func setupTestDB(t *testing.T) *catalog.Repository {
	repo, err := catalog.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.RunMigrations("./migrations"))
	return repo
}

func TestListProducts_SeededCatalog(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 5)
	assert.Equal(t, int64(1), products[0].ID)
}

func TestGetProduct_PricingFields(t *testing.T) {
	repo := setupTestDB(t)

	p, err := repo.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Camiseta Básica", p.Name)
	assert.Equal(t, 100.0, p.Price)
	assert.Zero(t, p.PixPrice)
	assert.Equal(t, 10.0, p.PixDiscountPercent)
	assert.Equal(t, 110.0, p.CardTotal)
	assert.Equal(t, 5, p.InstallmentCount)
	assert.Equal(t, 20, p.Stock)
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetProduct(context.Background(), 999)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestGetProducts_SkipsMissing(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.GetProducts(context.Background(), []int64{2, 999, 3})
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, 54.90, products[2].PixPrice)
	assert.Equal(t, 8, products[3].Stock)
}

func TestGetProducts_Empty(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.GetProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGetProducts_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetProducts(ctx, []int64{1})
	assert.ErrorIs(t, err, context.Canceled)
}
