package cart

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

	"github.com/bandejao/cantina-backend/internal/catalog"
	"github.com/bandejao/cantina-backend/pkg/db/models"
	pkgerrors "github.com/bandejao/cantina-backend/pkg/errors"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
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
);`, `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE(cart_id, product_id)
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, available bool) *models.Product {
	t.Helper()

	category := &models.Category{ID: uuid.New(), Name: "Lunch " + name, IsActive: true}
	require.NoError(t, db.Create(category).Error)

	product := &models.Product{
		ID:          uuid.New(),
		Name:        name,
		Price:       decimal.RequireFromString(price),
		IsAvailable: available,
		CategoryID:  category.ID,
	}
	require.NoError(t, db.Create(product).Error)
	// GORM skips zero-valued fields that have a default tag, so write the
	// availability column explicitly to honor the `available` argument.
	require.NoError(t, db.Model(product).Update("is_available", available).Error)
	return product
}

func newCartService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), catalog.NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestAddItemMergesExistingLine(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, "Feijoada", "12.50", true)

	_, err := svc.AddItem(ctx, userID, AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	resp, err := svc.AddItem(ctx, userID, AddItemRequest{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5, resp.Items[0].Quantity)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("62.50")), "total %s", resp.Total)
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, "Suco", "4.00", true)

	resp, err := svc.AddItem(ctx, userID, AddItemRequest{ProductID: product.ID})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Items[0].Quantity)
}

func TestAddItemRejectsUnknownAndUnavailableProducts(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.AddItem(ctx, userID, AddItemRequest{ProductID: uuid.New(), Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	unavailable := seedProduct(t, db, "Esgotado", "9.00", false)
	_, err = svc.AddItem(ctx, userID, AddItemRequest{ProductID: unavailable.ID, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestUpdateItemZeroQuantityRemovesLine(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, "Pastel", "6.00", true)

	added, err := svc.AddItem(ctx, userID, AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, added.Items, 1)

	resp, err := svc.UpdateItem(ctx, userID, added.Items[0].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.True(t, resp.Total.IsZero())
}

func TestUpdateItemUnknownLineNotFound(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()

	_, err := svc.UpdateItem(ctx, uuid.New(), uuid.New(), 2)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestClearIsIdempotentAndKeepsCart(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, "Coxinha", "5.00", true)
	_, err := svc.AddItem(ctx, userID, AddItemRequest{ProductID: product.ID, Quantity: 4})
	require.NoError(t, err)

	first, err := svc.Clear(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, first.Items)

	second, err := svc.Clear(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, second.Items)
	assert.Equal(t, first.ID, second.ID, "cart survives clears")
}

func TestItemsAreScopedToTheOwnersCart(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()

	owner := uuid.New()
	stranger := uuid.New()

	product := seedProduct(t, db, "Misto", "7.00", true)
	added, err := svc.AddItem(ctx, owner, AddItemRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.RemoveItem(ctx, stranger, added.Items[0].ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
