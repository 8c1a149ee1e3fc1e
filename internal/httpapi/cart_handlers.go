package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongthieu-itme/ecm-be/internal/fault"
)

type addCartItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

func (s *Server) getCart(c *gin.Context) {
	userID, _ := currentUser(c)
	crt, err := s.carts.Get(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, crt)
}

func (s *Server) addCartItem(c *gin.Context) {
	userID, _ := currentUser(c)
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fault.InvalidRequest("%s", err.Error()))
		return
	}
	crt, err := s.carts.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, crt)
}

func (s *Server) updateCartItem(c *gin.Context) {
	userID, _ := currentUser(c)
	itemID, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fault.InvalidRequest("%s", err.Error()))
		return
	}
	crt, err := s.carts.UpdateItem(c.Request.Context(), userID, itemID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, crt)
}

func (s *Server) removeCartItem(c *gin.Context) {
	userID, _ := currentUser(c)
	itemID, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	crt, err := s.carts.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, crt)
}

func (s *Server) clearCart(c *gin.Context) {
	userID, _ := currentUser(c)
	if err := s.carts.Clear(c.Request.Context(), userID); err != nil {
		fail(c, err)
		return
	}
	okMessage(c, "Cart cleared successfully")
}
