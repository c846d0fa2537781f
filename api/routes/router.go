package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bandejao/cantina-backend/api/controllers"
	"github.com/bandejao/cantina-backend/api/middleware"
	"github.com/bandejao/cantina-backend/internal/auth"
	"github.com/bandejao/cantina-backend/internal/cart"
	"github.com/bandejao/cantina-backend/internal/catalog"
	"github.com/bandejao/cantina-backend/internal/dashboard"
	"github.com/bandejao/cantina-backend/internal/orders"
	"github.com/bandejao/cantina-backend/pkg/config"
	"github.com/bandejao/cantina-backend/pkg/enums"
	"github.com/bandejao/cantina-backend/pkg/logger"
	"github.com/bandejao/cantina-backend/pkg/metrics"
	"github.com/bandejao/cantina-backend/pkg/redis"
)

// Dependencies carries everything the router needs wired in.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    controllers.Pinger
	Redis       *redis.Client
	HTTPMetrics *metrics.HTTPMetrics
	MetricsHTTP http.Handler

	AuthService      auth.Service
	CatalogService   catalog.Service
	CartService      cart.Service
	OrderService     orders.Service
	DashboardService dashboard.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	authn := middleware.Auth(cfg.JWT, logg)
	adminOnly := middleware.RequireRole(enums.UserRoleAdmin, logg)

	limiter := deps.Redis

	var cachePinger controllers.Pinger
	if deps.Redis != nil {
		cachePinger = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DBPinger, cachePinger, logg))
	})

	metricsHandler := deps.MetricsHTTP
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/auth", func(r chi.Router) {
		if limiter != nil {
			r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		} else {
			r.Post("/register", controllers.AuthRegister(deps.AuthService, logg))
			r.Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		}
		r.With(authn).Get("/me", controllers.AuthMe(deps.AuthService, logg))
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", controllers.CategoriesList(deps.CatalogService, logg))
		r.Get("/{id}", controllers.CategoriesGet(deps.CatalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authn, adminOnly)
			r.Post("/", controllers.CategoriesCreate(deps.CatalogService, logg))
			r.Put("/{id}", controllers.CategoriesUpdate(deps.CatalogService, logg))
			r.Delete("/{id}", controllers.CategoriesDelete(deps.CatalogService, logg))
		})
	})

	maxUpload := int64(cfg.Uploads.MaxUploadMB) << 20

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(deps.CatalogService, logg))
		r.Get("/{id}", controllers.ProductsGet(deps.CatalogService, logg))
		r.Get("/category/{id}", controllers.ProductsListByCategory(deps.CatalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authn, adminOnly)
			r.Post("/", controllers.ProductsCreate(deps.CatalogService, logg))
			r.Put("/{id}", controllers.ProductsUpdate(deps.CatalogService, logg))
			r.Delete("/{id}", controllers.ProductsDelete(deps.CatalogService, logg))
			r.Patch("/{id}/availability", controllers.ProductsSetAvailability(deps.CatalogService, logg))
			r.Post("/{id}/image", controllers.ProductsUploadImage(deps.CatalogService, maxUpload, logg))
		})
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authn)
		r.Get("/", controllers.CartGet(deps.CartService, logg))
		r.Post("/", controllers.CartAddItem(deps.CartService, logg))
		r.Put("/items/{itemId}", controllers.CartUpdateItem(deps.CartService, logg))
		r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.CartService, logg))
		r.Delete("/", controllers.CartClear(deps.CartService, logg))
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authn)

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/all", controllers.AdminOrdersList(deps.OrderService, logg))
			r.Patch("/{id}/status", controllers.AdminOrdersUpdateStatus(deps.OrderService, logg))
		})

		r.Get("/", controllers.OrdersListMine(deps.OrderService, logg))
		r.Post("/", controllers.OrdersCreate(deps.OrderService, logg))
		r.Get("/{id}", controllers.OrdersGet(deps.OrderService, logg))
		r.Patch("/{id}/cancel", controllers.OrdersCancel(deps.OrderService, logg))
	})

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(authn, adminOnly)
		r.Get("/stats", controllers.DashboardStats(deps.DashboardService, logg))
		r.Get("/sales", controllers.DashboardSales(deps.DashboardService, logg))
		r.Get("/top-products", controllers.DashboardTopProducts(deps.DashboardService, logg))
		r.Get("/peak-hours", controllers.DashboardPeakHours(deps.DashboardService, logg))
		r.Get("/orders-by-status", controllers.DashboardOrdersByStatus(deps.DashboardService, logg))
		r.Get("/recent-orders", controllers.DashboardRecentOrders(deps.DashboardService, logg))
	})

	if dir := cfg.Uploads.Dir; dir != "" {
		fileServer := http.StripPrefix(cfg.Uploads.PublicBaseURL+"/", http.FileServer(http.Dir(dir)))
		r.Get(cfg.Uploads.PublicBaseURL+"/*", func(w http.ResponseWriter, r *http.Request) {
			fileServer.ServeHTTP(w, r)
		})
	}

	return r
}
