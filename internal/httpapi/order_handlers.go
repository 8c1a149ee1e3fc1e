package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cuongthieu-itme/ecm-be/internal/fault"
	"github.com/cuongthieu-itme/ecm-be/internal/order"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) placeOrder(c *gin.Context) {
	userID, _ := currentUser(c)
	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	o, err := s.orders.Place(c.Request.Context(), userID, idemKey)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, o)
}

func (s *Server) listMyOrders(c *gin.Context) {
	userID, _ := currentUser(c)
	page, limit := pageParams(c)
	orders, meta, err := s.orders.ListForUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	okList(c, orders, meta)
}

func (s *Server) listAllOrders(c *gin.Context) {
	page, limit := pageParams(c)
	orders, meta, err := s.orders.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	okList(c, orders, meta)
}

func (s *Server) getOrder(c *gin.Context) {
	userID, isAdmin := currentUser(c)
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	o, err := s.orders.Get(c.Request.Context(), id, userID, isAdmin)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fault.InvalidRequest("%s", err.Error()))
		return
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	o, err := s.orders.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}
