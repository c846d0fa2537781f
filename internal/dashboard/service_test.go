package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bandejao/cantina-backend/pkg/config"
	"github.com/bandejao/cantina-backend/pkg/db/models"
	"github.com/bandejao/cantina-backend/pkg/enums"
)

func setupDashboardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'CLIENTE',
  created_at DATETIME,
  updated_at DATETIME
);`, `
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
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDENTE',
  total NUMERIC NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  subtotal NUMERIC NOT NULL,
  created_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newDashboardService(t *testing.T, db *gorm.DB, cfg config.OrdersConfig) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), cfg)
	require.NoError(t, err)
	return svc
}

var nextOrderNumber int64

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, total string, createdAt time.Time) *models.Order {
	t.Helper()

	nextOrderNumber++
	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: nextOrderNumber,
		UserID:      uuid.New(),
		Status:      status,
		Total:       decimal.RequireFromString(total),
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func seedOrderItem(t *testing.T, db *gorm.DB, orderID, productID uuid.UUID, name string, quantity int, unitPrice string) {
	t.Helper()

	price := decimal.RequireFromString(unitPrice)
	require.NoError(t, db.Create(&models.OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   price,
		Subtotal:    price.Mul(decimal.NewFromInt(int64(quantity))),
	}).Error)
}

func TestStatsExcludesCancelledRevenue(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := newDashboardService(t, db, config.OrdersConfig{})
	ctx := context.Background()
	now := time.Now().UTC()

	seedOrder(t, db, enums.OrderStatusPendente, "20.00", now)
	seedOrder(t, db, enums.OrderStatusConcluido, "35.00", now)
	seedOrder(t, db, enums.OrderStatusCancelado, "99.00", now)

	require.NoError(t, db.Create(&models.User{
		ID:           uuid.New(),
		Email:        "a@test.com",
		PasswordHash: "x",
		Name:         "A",
		Role:         enums.UserRoleCliente,
	}).Error)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Zero(t, stats.TotalProducts)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("55.00")),
		"revenue %s", stats.TotalRevenue)
}

func TestSalesGroupsByDayOldestFirst(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := newDashboardService(t, db, config.OrdersConfig{})
	ctx := context.Background()

	day1 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)

	seedOrder(t, db, enums.OrderStatusConcluido, "10.00", day1)
	seedOrder(t, db, enums.OrderStatusConcluido, "15.00", day1)
	seedOrder(t, db, enums.OrderStatusConcluido, "8.00", day2)
	seedOrder(t, db, enums.OrderStatusCancelado, "50.00", day2)

	points, err := svc.Sales(ctx, SalesFilters{})
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2026-03-10", points[0].Day)
	assert.Equal(t, int64(2), points[0].Orders)
	assert.True(t, points[0].Revenue.Equal(decimal.RequireFromString("25.00")))

	assert.Equal(t, "2026-03-11", points[1].Day)
	assert.Equal(t, int64(1), points[1].Orders)
	assert.True(t, points[1].Revenue.Equal(decimal.RequireFromString("8.00")))

	// Date filters narrow the window.
	start := day2.Add(-time.Hour)
	filtered, err := svc.Sales(ctx, SalesFilters{StartDate: &start})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "2026-03-11", filtered[0].Day)
}

func TestTopProductsRanksAndBreaksTies(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := newDashboardService(t, db, config.OrdersConfig{})
	ctx := context.Background()
	now := time.Now().UTC()

	kept := seedOrder(t, db, enums.OrderStatusConcluido, "100.00", now)
	cancelled := seedOrder(t, db, enums.OrderStatusCancelado, "40.00", now)

	first := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	second := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	third := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	seedOrderItem(t, db, kept.ID, third, "Suco", 5, "4.00")
	seedOrderItem(t, db, kept.ID, first, "Coxinha", 3, "5.00")
	seedOrderItem(t, db, kept.ID, second, "Pastel", 3, "6.00")
	seedOrderItem(t, db, cancelled.ID, first, "Coxinha", 50, "5.00")

	products, err := svc.TopProducts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, third, products[0].ProductID)
	assert.Equal(t, int64(5), products[0].QuantitySold)

	// Equal quantities fall back to product id ordering.
	assert.Equal(t, first, products[1].ProductID)
	assert.Equal(t, second, products[2].ProductID)

	// Cancelled order items never count.
	assert.Equal(t, int64(3), products[1].QuantitySold)

	limited, err := svc.TopProducts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestOrdersByStatusCounts(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := newDashboardService(t, db, config.OrdersConfig{})
	ctx := context.Background()
	now := time.Now().UTC()

	seedOrder(t, db, enums.OrderStatusPendente, "10.00", now)
	seedOrder(t, db, enums.OrderStatusPendente, "10.00", now)
	seedOrder(t, db, enums.OrderStatusConcluido, "10.00", now)

	counts, err := svc.OrdersByStatus(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)

	assert.Equal(t, enums.OrderStatusPendente, counts[0].Status)
	assert.Equal(t, int64(2), counts[0].Count)
	assert.Equal(t, enums.OrderStatusConcluido, counts[1].Status)
	assert.Equal(t, int64(1), counts[1].Count)
}

func TestRecentOrdersHonorsConfiguredLimit(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := newDashboardService(t, db, config.OrdersConfig{RecentOrdersLimit: 2})
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	seedOrder(t, db, enums.OrderStatusConcluido, "10.00", base)
	seedOrder(t, db, enums.OrderStatusConcluido, "11.00", base.Add(time.Hour))
	newest := seedOrder(t, db, enums.OrderStatusPendente, "12.00", base.Add(2*time.Hour))

	recent, err := svc.RecentOrders(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, newest.ID, recent[0].ID)
}

func TestPeakHoursGroupsByHour(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := newDashboardService(t, db, config.OrdersConfig{})
	ctx := context.Background()

	lunch := time.Date(2026, 3, 10, 12, 15, 0, 0, time.UTC)
	seedOrder(t, db, enums.OrderStatusConcluido, "10.00", lunch)
	seedOrder(t, db, enums.OrderStatusConcluido, "10.00", lunch.Add(20*time.Minute))
	seedOrder(t, db, enums.OrderStatusPendente, "10.00", lunch.Add(-3*time.Hour))

	hours, err := svc.PeakHours(ctx)
	require.NoError(t, err)
	require.Len(t, hours, 2)

	assert.Equal(t, 12, hours[0].Hour)
	assert.Equal(t, int64(2), hours[0].Orders)
	assert.Equal(t, 9, hours[1].Hour)
	assert.Equal(t, int64(1), hours[1].Orders)
}
