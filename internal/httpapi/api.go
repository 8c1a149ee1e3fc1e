// Package httpapi is the gin transport over the catalog, cart, and order
// services. It authenticates nothing itself: identity arrives from the
// fronting auth proxy as X-User-ID / X-User-Role headers, and this layer
// only enforces presence, ownership, and role.
package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/cuongthieu-itme/ecm-be/internal/cart"
	"github.com/cuongthieu-itme/ecm-be/internal/catalog"
	"github.com/cuongthieu-itme/ecm-be/internal/order"
	"github.com/cuongthieu-itme/ecm-be/pkg/metrics"
	"github.com/cuongthieu-itme/ecm-be/pkg/pagination"
)

type CatalogService interface {
	ListProducts(ctx context.Context, q catalog.ProductQuery) ([]catalog.Product, pagination.Meta, error)
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	CreateProduct(ctx context.Context, in catalog.ProductInput) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, id int64, in catalog.ProductUpdate) (*catalog.Product, error)
	DeactivateProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	GetCategory(ctx context.Context, id int64) (*catalog.CategoryDetail, error)
	CreateCategory(ctx context.Context, name string) (*catalog.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*catalog.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type CartService interface {
	Get(ctx context.Context, userID int64) (*cart.Cart, error)
	AddItem(ctx context.Context, userID, productID int64, qty int) (*cart.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID int64, qty int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID int64) (*cart.Cart, error)
	Clear(ctx context.Context, userID int64) error
}

type OrderService interface {
	Place(ctx context.Context, userID int64, idemKey string) (*order.Order, error)
	ListForUser(ctx context.Context, userID int64, page, limit int) ([]order.Summary, pagination.Meta, error)
	ListAll(ctx context.Context, page, limit int) ([]order.Summary, pagination.Meta, error)
	Get(ctx context.Context, id, requesterID int64, isAdmin bool) (*order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error)
}

type Server struct {
	catalog CatalogService
	carts   CartService
	orders  OrderService
	metrics *metrics.ServerMetrics
}

func NewServer(cat CatalogService, carts CartService, orders OrderService, m *metrics.ServerMetrics) *Server {
	return &Server{catalog: cat, carts: carts, orders: orders, metrics: m}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe(), identity())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	products := api.Group("/products")
	products.GET("", s.listProducts)
	products.GET("/:id", s.getProduct)
	products.POST("", requireAdmin(), s.createProduct)
	products.PATCH("/:id", requireAdmin(), s.updateProduct)
	products.DELETE("/:id", requireAdmin(), s.deleteProduct)

	categories := api.Group("/categories")
	categories.GET("", s.listCategories)
	categories.GET("/:id", s.getCategory)
	categories.POST("", requireAdmin(), s.createCategory)
	categories.PATCH("/:id", requireAdmin(), s.updateCategory)
	categories.DELETE("/:id", requireAdmin(), s.deleteCategory)

	carts := api.Group("/cart", requireAuth())
	carts.GET("", s.getCart)
	carts.POST("/items", s.addCartItem)
	carts.PATCH("/items/:id", s.updateCartItem)
	carts.DELETE("/items/:id", s.removeCartItem)
	carts.DELETE("", s.clearCart)

	orders := api.Group("/orders", requireAuth())
	orders.POST("", s.placeOrder)
	orders.GET("", s.listMyOrders)
	orders.GET("/admin/all", requireAdmin(), s.listAllOrders)
	orders.GET("/:id", s.getOrder)
	orders.PATCH("/:id/status", requireAdmin(), s.updateOrderStatus)

	return r
}
