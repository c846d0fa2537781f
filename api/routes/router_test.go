package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandejao/cantina-backend/internal/auth"
	"github.com/bandejao/cantina-backend/internal/cart"
	"github.com/bandejao/cantina-backend/internal/catalog"
	"github.com/bandejao/cantina-backend/internal/dashboard"
	"github.com/bandejao/cantina-backend/internal/users"
	pkgAuth "github.com/bandejao/cantina-backend/pkg/auth"
	"github.com/bandejao/cantina-backend/pkg/config"
	"github.com/bandejao/cantina-backend/pkg/enums"
	"github.com/bandejao/cantina-backend/pkg/logger"
)

type stubAuthService struct {
	user *users.UserDTO
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{Token: "stub-token", User: s.user}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{Token: "stub-token", User: s.user}, nil
}

func (s *stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return s.user, nil
}

type stubCartService struct{}

func (s *stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, req cart.AddItemRequest) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (s *stubCartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

type stubCatalogService struct{}

func (s *stubCatalogService) ListCategories(ctx context.Context, includeInactive bool) ([]catalog.CategoryDTO, error) {
	return []catalog.CategoryDTO{}, nil
}

func (s *stubCatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*catalog.CategoryDTO, error) {
	return &catalog.CategoryDTO{ID: id}, nil
}

func (s *stubCatalogService) CreateCategory(ctx context.Context, req catalog.CreateCategoryRequest) (*catalog.CategoryDTO, error) {
	return &catalog.CategoryDTO{Name: req.Name}, nil
}

func (s *stubCatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req catalog.UpdateCategoryRequest) (*catalog.CategoryDTO, error) {
	return &catalog.CategoryDTO{ID: id}, nil
}

func (s *stubCatalogService) DeactivateCategory(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubCatalogService) ListProducts(ctx context.Context, includeUnavailable bool) ([]catalog.ProductDTO, error) {
	return []catalog.ProductDTO{}, nil
}

func (s *stubCatalogService) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, includeUnavailable bool) ([]catalog.ProductDTO, error) {
	return []catalog.ProductDTO{}, nil
}

func (s *stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{ID: id}, nil
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, req catalog.CreateProductRequest) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{Name: req.Name}, nil
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req catalog.UpdateProductRequest) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{ID: id}, nil
}

func (s *stubCatalogService) SetProductAvailability(ctx context.Context, id uuid.UUID, available bool) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{ID: id, IsAvailable: available}, nil
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubCatalogService) AttachProductImage(ctx context.Context, id uuid.UUID, data []byte) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{ID: id}, nil
}

type stubDashboardService struct{}

func (s *stubDashboardService) Stats(ctx context.Context) (*dashboard.StatsDTO, error) {
	return &dashboard.StatsDTO{TotalOrders: 7}, nil
}

func (s *stubDashboardService) Sales(ctx context.Context, filters dashboard.SalesFilters) ([]dashboard.SalesPointDTO, error) {
	return []dashboard.SalesPointDTO{}, nil
}

func (s *stubDashboardService) TopProducts(ctx context.Context, limit int) ([]dashboard.TopProductDTO, error) {
	return []dashboard.TopProductDTO{}, nil
}

func (s *stubDashboardService) PeakHours(ctx context.Context) ([]dashboard.PeakHourDTO, error) {
	return []dashboard.PeakHourDTO{}, nil
}

func (s *stubDashboardService) OrdersByStatus(ctx context.Context) ([]dashboard.StatusCountDTO, error) {
	return []dashboard.StatusCountDTO{}, nil
}

func (s *stubDashboardService) RecentOrders(ctx context.Context) ([]dashboard.RecentOrderDTO, error) {
	return []dashboard.RecentOrderDTO{}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "cantina-test",
			ExpirationMinutes: 60,
		},
		Uploads: config.UploadsConfig{PublicBaseURL: "/uploads", MaxUploadMB: 1},
	}

	userID := uuid.New()
	return NewRouter(Dependencies{
		Config: cfg,
		Logger: logger.New(logger.Options{ServiceName: "router-test"}),

		AuthService: &stubAuthService{user: &users.UserDTO{
			ID:    userID,
			Email: "a@test.com",
			Name:  "A",
			Role:  enums.UserRoleCliente,
		}},
		CatalogService:   &stubCatalogService{},
		CartService:      &stubCartService{},
		DashboardService: &stubDashboardService{},
	})
}

func bearerFor(t *testing.T, role enums.UserRole) string {
	t.Helper()

	token, err := pkgAuth.MintAccessToken(config.JWTConfig{
		Secret:            "router-test-secret",
		Issuer:            "cantina-test",
		ExpirationMinutes: 60,
	}, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(t *testing.T, handler http.Handler, method, target, body, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterReturnsCreatedEnvelope(t *testing.T) {
	handler := testRouter(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/auth/register",
		`{"email":"a@test.com","password":"x123456","name":"A"}`, "")

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := envelope(t, rec)
	assert.Equal(t, true, body["success"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "stub-token", data["token"])
}

func TestRegisterRejectsMalformedBody(t *testing.T) {
	handler := testRouter(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/auth/register",
		`{"email":"not-an-email","password":"x","name":"A","bogus":true}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := envelope(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestCartRequiresAuthentication(t *testing.T) {
	handler := testRouter(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/cart", "", bearerFor(t, enums.UserRoleCliente))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, envelope(t, rec)["success"])
}

func TestDashboardIsAdminOnly(t *testing.T) {
	handler := testRouter(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/dashboard/stats", "", bearerFor(t, enums.UserRoleCliente))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/dashboard/stats", "", bearerFor(t, enums.UserRoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data, ok := envelope(t, rec)["data"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 7, data["total_orders"])
}

func TestCatalogWritesAreAdminOnly(t *testing.T) {
	handler := testRouter(t)

	// Public read.
	rec := doRequest(t, handler, http.MethodGet, "/api/products", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Anonymous write.
	rec = doRequest(t, handler, http.MethodPost, "/api/categories", `{"name":"Doces"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authenticated non-admin write.
	rec = doRequest(t, handler, http.MethodPost, "/api/categories", `{"name":"Doces"}`, bearerFor(t, enums.UserRoleCliente))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin write.
	rec = doRequest(t, handler, http.MethodPost, "/api/categories", `{"name":"Doces"}`, bearerFor(t, enums.UserRoleAdmin))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestHealthLiveIsPublic(t *testing.T) {
	handler := testRouter(t)

	rec := doRequest(t, handler, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
