// Package api is the HTTP transport: routing, request binding and the
// mapping from service errors to status codes. No business logic lives
// here; every route is a thin dispatch into the service layer.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/service"
)

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	users    *service.UserService
	products *service.ProductService
	orders   *service.OrderService
}

func NewServer(cfg *config.Config, logger *zap.Logger, users *service.UserService, products *service.ProductService, orders *service.OrderService) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	s := &Server{
		config:   cfg,
		logger:   logger,
		router:   router,
		users:    users,
		products: products,
		orders:   orders,
	}
	s.setupRoutes()
	return s
}

// Router exposes the engine for httptest.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	users := s.router.Group("/users")
	{
		users.POST("", s.createUser)
		users.GET("", s.listUsers)
		users.GET("/:id", s.getUser)
		users.PATCH("/:id", s.patchUser)
		users.DELETE("/:id", s.deleteUser)
		users.GET("/:id/saved-products", s.listSavedProducts)
		users.POST("/:id/saved-products", s.toggleSavedProduct)
		users.GET("/:id/orders", s.listUserOrders)
	}

	products := s.router.Group("/products")
	{
		products.POST("", s.createProduct)
		products.GET("", s.listProducts)
		products.GET("/:id", s.getProduct)
		products.PATCH("/:id", s.patchProduct)
		products.DELETE("/:id", s.deleteProduct)
	}

	orders := s.router.Group("/orders")
	{
		orders.POST("", s.createOrder)
		orders.GET("/:id", s.getOrder)
		orders.PATCH("/:id", s.patchOrder)
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("HTTP server starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// respondError sends the error through the total kind-to-status mapping.
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"message": err.Error()})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("invalid request body: %v", err)})
}

func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
