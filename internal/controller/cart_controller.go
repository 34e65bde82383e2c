package controller

import (
	"net/http"

	"freshbasket-backend/internal/dto"
	"freshbasket-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	Service *service.CartService
}

func NewCartController(s *service.CartService) *CartController {
	return &CartController{Service: s}
}

// GET /api/cart — user
func (ctl *CartController) GetCart(c *gin.Context) {
	userID, _ := actor(c)
	cart, err := ctl.Service.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// POST /api/cart — user
func (ctl *CartController) AddToCart(c *gin.Context) {
	var req dto.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := actor(c)
	cart, err := ctl.Service.AddToCart(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// PUT /api/cart — user
func (ctl *CartController) UpdateItem(c *gin.Context) {
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := actor(c)
	cart, err := ctl.Service.UpdateItem(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// DELETE /api/cart/items/:itemId — user
func (ctl *CartController) DeleteItem(c *gin.Context) {
	userID, _ := actor(c)
	cart, err := ctl.Service.DeleteItem(c.Request.Context(), userID, c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}
