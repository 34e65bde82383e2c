package controller

import (
	"net/http"

	"freshbasket-backend/internal/dto"
	"freshbasket-backend/internal/model"
	"freshbasket-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service *service.OrderService
}

func NewOrderController(s *service.OrderService) *OrderController {
	return &OrderController{Service: s}
}

// POST /api/orders — user
func (ctl *OrderController) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := actor(c)
	order, err := ctl.Service.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GET /api/orders/mine — user
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	userID, _ := actor(c)
	orders, err := ctl.Service.GetUserOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/orders/:orderId — dueño o admin
func (ctl *OrderController) GetOrder(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	actorID, isAdmin := actor(c)
	order, err := ctl.Service.GetOrder(c.Request.Context(), orderID, actorID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// PUT /api/orders/:orderId/cancel — dueño o admin
func (ctl *OrderController) CancelOrder(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	actorID, isAdmin := actor(c)
	order, err := ctl.Service.CancelOrder(c.Request.Context(), orderID, actorID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// PUT /api/orders/:orderId/deliveries/:subOrderId/cancel — dueño o admin
func (ctl *OrderController) CancelSubOrder(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	subOrderID, ok := pathID(c, "subOrderId")
	if !ok {
		return
	}

	actorID, isAdmin := actor(c)
	order, err := ctl.Service.CancelSubOrder(c.Request.Context(), orderID, subOrderID, actorID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GET /api/orders/admin/all — admin only
func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := ctl.Service.GetAllOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// PUT /api/orders/admin/:orderId/status — admin only
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Service.UpdateStatus(c.Request.Context(), orderID, model.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
