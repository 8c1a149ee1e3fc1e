package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/cuongthieu-itme/ecm-be/internal/catalog"
	"github.com/cuongthieu-itme/ecm-be/internal/fault"
)

type createProductRequest struct {
	Name        string          `json:"name" binding:"required,min=2,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"min=0"`
	Image       string          `json:"image" binding:"max=500"`
	CategoryID  int64           `json:"categoryId" binding:"required"`
}

type updateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=2,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	Image       *string          `json:"image" binding:"omitempty,max=500"`
	CategoryID  *int64           `json:"categoryId"`
}

type categoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

func (s *Server) listProducts(c *gin.Context) {
	page, limit := pageParams(c)
	categoryID, _ := strconv.ParseInt(c.Query("categoryId"), 10, 64)
	q := catalog.ProductQuery{
		Page:       page,
		Limit:      limit,
		Search:     c.Query("search"),
		CategoryID: categoryID,
		SortBy:     c.DefaultQuery("sortBy", catalog.SortNewest),
	}
	products, meta, err := s.catalog.ListProducts(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	okList(c, products, meta)
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := s.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (s *Server) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fault.InvalidRequest("%s", err.Error()))
		return
	}
	if req.Price.IsNegative() {
		fail(c, fault.InvalidRequest("price must not be negative"))
		return
	}
	p, err := s.catalog.CreateProduct(c.Request.Context(), catalog.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fault.InvalidRequest("%s", err.Error()))
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		fail(c, fault.InvalidRequest("price must not be negative"))
		return
	}
	p, err := s.catalog.UpdateProduct(c.Request.Context(), id, catalog.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.catalog.DeactivateProduct(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	okMessage(c, "Product deactivated successfully")
}

func (s *Server) listCategories(c *gin.Context) {
	cats, err := s.catalog.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, cats)
}

func (s *Server) getCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	cat, err := s.catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, cat)
}

func (s *Server) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fault.InvalidRequest("%s", err.Error()))
		return
	}
	cat, err := s.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, cat)
}

func (s *Server) updateCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fault.InvalidRequest("%s", err.Error()))
		return
	}
	cat, err := s.catalog.UpdateCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, cat)
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	okMessage(c, "Category deleted successfully")
}
