package controller

import (
	"net/http"

	"freshbasket-backend/internal/dto"
	"freshbasket-backend/internal/model"
	"freshbasket-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type BusinessOrderController struct {
	Service *service.BusinessOrderService
}

func NewBusinessOrderController(s *service.BusinessOrderService) *BusinessOrderController {
	return &BusinessOrderController{Service: s}
}

// POST /api/business-orders — usuario business
func (ctl *BusinessOrderController) Create(c *gin.Context) {
	var req dto.CreateBusinessOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := actor(c)
	order, err := ctl.Service.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GET /api/business-orders/mine — user
func (ctl *BusinessOrderController) GetMyOrders(c *gin.Context) {
	userID, _ := actor(c)
	orders, err := ctl.Service.GetUserOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/business-orders/admin/all — admin only
func (ctl *BusinessOrderController) GetAllOrders(c *gin.Context) {
	orders, err := ctl.Service.GetAllOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// PUT /api/business-orders/admin/:orderId/quote — admin only
func (ctl *BusinessOrderController) SendQuote(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	var req dto.SendQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Service.SendQuote(c.Request.Context(), orderID, req.FinalAmount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// PUT /api/business-orders/admin/:orderId/status — admin only
func (ctl *BusinessOrderController) UpdateStatus(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Service.UpdateStatus(c.Request.Context(), orderID, model.BusinessOrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
