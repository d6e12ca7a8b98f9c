// Package httpapi exposes the catalog services over a thin JSON REST boundary.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"productcatalog/service"
)

const shutdownTimeout = 30 * time.Second

// Server wraps an echo instance wired to the catalog services.
type Server struct {
	echo    *echo.Echo
	metrics *Metrics
}

// NewServer builds the router, middleware chain and routes.
func NewServer(svc *service.Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = errorHandler

	m := NewMetrics()
	// logger sits outside metrics so it observes the status written by the error handler
	e.Use(middleware.Recover(), requestLogger(), m.Middleware())

	s := &Server{echo: e, metrics: m}
	s.routes(&handlers{svc: svc})
	return s
}

func (s *Server) routes(h *handlers) {
	e := s.echo
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	api := e.Group("/api")

	products := api.Group("/products")
	products.GET("", h.listProducts)
	products.POST("", h.createProduct)
	products.POST("/import", h.importProducts)
	products.GET("/:id", h.getProduct)
	products.PUT("/:id", h.updateProduct)
	products.DELETE("/:id", h.deleteProduct)
	products.PUT("/:id/price", h.changePrice)
	products.POST("/:id/discount", h.applyDiscount)
	products.POST("/:id/stock/increase", h.increaseStock)
	products.POST("/:id/stock/decrease", h.decreaseStock)
	products.PUT("/:id/category", h.assignCategory)

	categories := api.Group("/categories")
	categories.GET("", h.listCategories)
	categories.POST("", h.createCategory)
	categories.GET("/:id", h.getCategory)
	categories.PUT("/:id", h.updateCategory)
	categories.DELETE("/:id", h.deleteCategory)

	orders := api.Group("/orders")
	orders.GET("", h.listOrders)
	orders.POST("", h.createOrder)
	orders.GET("/:id", h.getOrder)
	orders.DELETE("/:id", h.deleteOrder)
}

// ServeHTTP lets the server be mounted or driven by httptest directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
