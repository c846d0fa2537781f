package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/bandejao/cantina-backend/pkg/errors"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  sort_order INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  image_url TEXT,
  is_available INTEGER NOT NULL DEFAULT 1,
  category_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type stubImageStore struct {
	url string
	err error
}

func (s *stubImageStore) SaveImage(data []byte) (string, error) {
	return s.url, s.err
}

func newCatalogService(t *testing.T, db *gorm.DB, images ImageStore) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), images)
	require.NoError(t, err)
	return svc
}

func mustCategory(t *testing.T, svc Service, name string) *CategoryDTO {
	t.Helper()

	category, err := svc.CreateCategory(context.Background(), CreateCategoryRequest{Name: name})
	require.NoError(t, err)
	return category
}

func TestCreateCategoryDuplicateNameConflicts(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db, nil)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Bebidas"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Bebidas"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestDeactivatedCategoryHiddenFromDefaultListing(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db, nil)
	ctx := context.Background()

	active := mustCategory(t, svc, "Pratos")
	retired := mustCategory(t, svc, "Sobremesas")

	require.NoError(t, svc.DeactivateCategory(ctx, retired.ID))

	listed, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, active.ID, listed[0].ID)

	all, err := svc.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Still readable by id.
	found, err := svc.GetCategory(ctx, retired.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestCreateProductValidatesPriceAndCategory(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db, nil)
	ctx := context.Background()

	category := mustCategory(t, svc, "Lanches")

	_, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name:       "Coxinha",
		Price:      decimal.RequireFromString("-1.00"),
		CategoryID: category.ID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateProduct(ctx, CreateProductRequest{
		Name:       "Coxinha",
		Price:      decimal.RequireFromString("5.00"),
		CategoryID: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	product, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name:       "Coxinha",
		Price:      decimal.RequireFromString("5.005"),
		CategoryID: category.ID,
	})
	require.NoError(t, err)
	assert.True(t, product.IsAvailable)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("5.01")), "price %s", product.Price)
}

func TestDeleteProductIsSoftAndKeepsItReadable(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db, nil)
	ctx := context.Background()

	category := mustCategory(t, svc, "Almoco")
	product, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name:       "Feijoada",
		Price:      decimal.RequireFromString("18.00"),
		CategoryID: category.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))

	listed, err := svc.ListProducts(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, listed)

	all, err := svc.ListProducts(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsAvailable)

	found, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, found.IsAvailable)
}

func TestSetProductAvailabilityRestores(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db, nil)
	ctx := context.Background()

	category := mustCategory(t, svc, "Sucos")
	product, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name:       "Laranja",
		Price:      decimal.RequireFromString("4.50"),
		CategoryID: category.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))

	restored, err := svc.SetProductAvailability(ctx, product.ID, true)
	require.NoError(t, err)
	assert.True(t, restored.IsAvailable)

	listed, err := svc.ListProducts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestListProductsByCategoryScopes(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db, nil)
	ctx := context.Background()

	lanches := mustCategory(t, svc, "Lanches")
	doces := mustCategory(t, svc, "Doces")

	_, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name: "Misto", Price: decimal.RequireFromString("7.00"), CategoryID: lanches.ID,
	})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, CreateProductRequest{
		Name: "Brigadeiro", Price: decimal.RequireFromString("2.50"), CategoryID: doces.ID,
	})
	require.NoError(t, err)

	listed, err := svc.ListProductsByCategory(ctx, doces.ID, false)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Brigadeiro", listed[0].Name)

	_, err = svc.ListProductsByCategory(ctx, uuid.New(), false)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestAttachProductImageStoresURL(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db, &stubImageStore{url: "/uploads/abc.png"})
	ctx := context.Background()

	category := mustCategory(t, svc, "Pratos")
	product, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name: "Strogonoff", Price: decimal.RequireFromString("16.00"), CategoryID: category.ID,
	})
	require.NoError(t, err)

	updated, err := svc.AttachProductImage(ctx, product.ID, []byte{0x89, 0x50})
	require.NoError(t, err)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, "/uploads/abc.png", *updated.ImageURL)
}
