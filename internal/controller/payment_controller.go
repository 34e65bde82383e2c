package controller

import (
	"net/http"

	"freshbasket-backend/internal/dto"
	"freshbasket-backend/internal/model"
	"freshbasket-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	Service *service.PaymentService
}

func NewPaymentController(s *service.PaymentService) *PaymentController {
	return &PaymentController{Service: s}
}

// POST /api/payments/order — user; abre el pago de una orden existente.
func (ctl *PaymentController) CreateGatewayOrder(c *gin.Context) {
	var req dto.CreateGatewayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := actor(c)
	res, err := ctl.Service.CreateGatewayOrder(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/payments/checkout — user; checkout-first, aún sin orden.
func (ctl *PaymentController) CreateCheckout(c *gin.Context) {
	var req dto.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := actor(c)
	res, err := ctl.Service.CreateCheckout(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/payments/verify — user; solo sobre pagos propios
func (ctl *PaymentController) VerifyPayment(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := actor(c)
	res, err := ctl.Service.VerifyPayment(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/payments/admin/all — admin only
func (ctl *PaymentController) GetAllPayments(c *gin.Context) {
	payments, err := ctl.Service.GetAllPayments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "total": len(payments)})
}

// POST /api/payments/admin/cod — admin only
func (ctl *PaymentController) RecordCODPayment(c *gin.Context) {
	var req dto.RecordCODPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := ctl.Service.RecordCODPayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pago COD registrado", "payment": payment})
}

// PUT /api/payments/admin/cod/:paymentId — admin only
func (ctl *PaymentController) UpdateCODStatus(c *gin.Context) {
	var req dto.UpdateCODStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := ctl.Service.UpdateCODStatus(c.Request.Context(), c.Param("paymentId"), model.PaymentState(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "estado de pago actualizado", "payment": payment})
}
