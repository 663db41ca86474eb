package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicehub-be/internal/category"
	"servicehub-be/internal/metrics"
	"servicehub-be/internal/middleware"
	"servicehub-be/internal/order"
	"servicehub-be/internal/product"
	"servicehub-be/internal/tag"
)

type Server struct {
	engine     *gin.Engine
	categories category.Service
	tags       tag.Service
	products   product.Service
	orders     order.Service
}

func NewServer(
	categories category.Service,
	tags tag.Service,
	products product.Service,
	orders order.Service,
) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.RateLimit())

	s := &Server{
		engine:     r,
		categories: categories,
		tags:       tags,
		products:   products,
		orders:     orders,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.healthz)

	v1 := s.engine.Group("/api/v1")
	{
		categories := v1.Group("/categories")
		categories.GET("", s.listCategories)
		categories.GET(":id", s.getCategory)
		categories.POST("", s.createCategory)
		categories.PUT(":id", s.updateCategory)
		categories.DELETE(":id", s.deleteCategory)

		tags := v1.Group("/tags")
		tags.GET("", s.listTags)
		tags.GET(":id", s.getTag)
		tags.POST("", s.createTag)
		tags.PUT(":id", s.updateTag)
		tags.DELETE(":id", s.deleteTag)

		products := v1.Group("/products")
		products.GET("", s.listProducts)
		products.GET(":id", s.getProduct)
		products.POST("", s.createProduct)
		products.PUT(":id", s.updateProduct)
		products.DELETE(":id", s.deleteProduct)

		orders := v1.Group("/orders")
		orders.GET("", s.listOrders)
		orders.GET(":id", s.getOrder)
		orders.POST("", s.createOrder)
		orders.PUT(":id/status", s.updateOrderStatus)
		orders.DELETE(":id", s.deleteOrder)

		orders.POST(":id/items", s.addOrderItem)

		items := v1.Group("/order-items")
		items.PUT(":id", s.updateOrderItem)
		items.DELETE(":id", s.removeOrderItem)
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"requests_served": metrics.RequestsServed.Load(),
		"orders_created":  metrics.OrdersCreated.Load(),
		"total_recalcs":   metrics.TotalRecalcs.Load(),
	})
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, order.ErrInvalidLineItem),
		errors.Is(err, order.ErrInvalidInput),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, category.ErrInvalidInput),
		errors.Is(err, tag.ErrInvalidInput),
		errors.Is(err, product.ErrInvalidInput),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidCategory):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrItemNotFound),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, category.ErrNotFound),
		errors.Is(err, tag.ErrNotFound),
		errors.Is(err, product.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, category.ErrInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
}
