package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/auth"
	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/redis"
	"github.com/vladislavdragonenkov/shop/internal/service/cart"
	"github.com/vladislavdragonenkov/shop/internal/service/catalog"
	"github.com/vladislavdragonenkov/shop/internal/service/orders"
	"github.com/vladislavdragonenkov/shop/internal/service/reviews"
)

// Лимиты запросов с одного IP.
const (
	loginRateLimit     = 5
	loginRateWindow    = 5 * time.Minute
	registerRateLimit  = 3
	registerRateWindow = time.Hour
	apiRateLimit       = 100
	apiRateWindow      = time.Minute
)

// Server собирает все обработчики API поверх сервисного слоя.
type Server struct {
	auth    *auth.Service
	tokens  *auth.TokenManager
	catalog *catalog.Service
	carts   *cart.Manager
	orders  *orders.Engine
	reviews *reviews.Service

	idempotency    domain.IdempotencyRepository
	idempotencyTTL time.Duration

	limiter redis.Limiter
	logger  *log.Entry
	now     func() time.Time
}

// ServerOption настраивает Server.
type ServerOption func(*Server)

// WithIdempotency включает поддержку Idempotency-Key на создании заказа.
func WithIdempotency(repo domain.IdempotencyRepository, ttl time.Duration) ServerOption {
	return func(s *Server) {
		s.idempotency = repo
		s.idempotencyTTL = ttl
	}
}

// WithRateLimiter включает ограничение частоты запросов.
func WithRateLimiter(limiter redis.Limiter) ServerOption {
	return func(s *Server) {
		s.limiter = limiter
	}
}

// NewServer создаёт HTTP-слой API.
func NewServer(
	authSvc *auth.Service,
	tokens *auth.TokenManager,
	catalogSvc *catalog.Service,
	carts *cart.Manager,
	ordersSvc *orders.Engine,
	reviewsSvc *reviews.Service,
	logger *log.Entry,
	options ...ServerOption,
) *Server {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}

	s := &Server{
		auth:           authSvc,
		tokens:         tokens,
		catalog:        catalogSvc,
		carts:          carts,
		orders:         ordersSvc,
		reviews:        reviewsSvc,
		idempotencyTTL: 24 * time.Hour,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Router собирает маршруты API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(requestLogger(s.logger))

	authenticated := requireAuth(s.tokens)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(s.limiter, "api", apiRateLimit, apiRateWindow))

		r.Group(func(r chi.Router) {
			r.With(rateLimit(s.limiter, "register", registerRateLimit, registerRateWindow)).
				Post("/auth/register", s.handleRegister)
			r.With(rateLimit(s.limiter, "login", loginRateLimit, loginRateWindow)).
				Post("/auth/login", s.handleLogin)
		})

		// Каталог открыт для чтения без аутентификации.
		r.Get("/products", s.handleListProducts)
		r.Get("/products/{id}", s.handleGetProduct)
		r.Get("/products/{id}/reviews", s.handleProductReviews)
		r.Get("/products/{id}/reviews/stats", s.handleProductReviewStats)
		r.Get("/categories", s.handleListCategories)
		r.Get("/categories/{id}/products", s.handleCategoryProducts)
		r.Get("/users/{id}/reviews", s.handleUserReviews)

		// Административные операции каталога.
		r.Group(func(r chi.Router) {
			r.Use(authenticated, requireStaff)
			r.Post("/products", s.handleCreateProduct)
			r.Put("/products/{id}", s.handleUpdateProduct)
			r.Delete("/products/{id}", s.handleDeleteProduct)
			r.Post("/categories", s.handleCreateCategory)
			r.Put("/orders/{id}/status", s.handleUpdateOrderStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Get("/cart", s.handleGetCart)
			r.Get("/cart/count", s.handleCartCount)
			r.Get("/cart/total", s.handleCartTotal)
			r.Delete("/cart", s.handleClearCart)
			r.Post("/cart/items", s.handleAddCartItem)
			r.Put("/cart/items/{id}", s.handleUpdateCartItem)
			r.Post("/cart/items/{id}/increase", s.handleIncreaseCartItem)
			r.Post("/cart/items/{id}/decrease", s.handleDecreaseCartItem)
			r.Delete("/cart/items/{id}", s.handleRemoveCartItem)

			r.Post("/orders", s.handleCreateOrder)
			r.Get("/orders", s.handleListOrders)
			r.Get("/orders/{id}", s.handleGetOrder)
			r.Get("/orders/{id}/status", s.handleOrderStatus)
			r.Post("/orders/{id}/cancel", s.handleCancelOrder)
			r.Post("/orders/{id}/payment", s.handlePayOrder)
			r.Get("/orders/{id}/track", s.handleTrackOrder)

			r.Post("/reviews", s.handleCreateReview)
			r.Put("/reviews/{id}", s.handleUpdateReview)
			r.Delete("/reviews/{id}", s.handleDeleteReview)
			r.Get("/me/reviews", s.handleMyReviews)

			r.Post("/addresses", s.handleCreateAddress)
		})
	})

	return r
}
