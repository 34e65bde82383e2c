package controller

import (
	"errors"
	"net/http"

	"freshbasket-backend/internal/middleware"
	"freshbasket-backend/internal/repository"
	"freshbasket-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actor saca el principal que dejó el middleware. Para un admin el userID
// es el ObjectID cero; los services resuelven autorización con el flag.
func actor(c *gin.Context) (primitive.ObjectID, bool) {
	isAdmin := c.GetBool(middleware.CtxIsAdmin)
	if v, ok := c.Get(middleware.CtxUserID); ok {
		return v.(primitive.ObjectID), isAdmin
	}
	return primitive.NilObjectID, isAdmin
}

func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "id inválido"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondError traduce errores de negocio a códigos HTTP. Todo error llega
// al caller con mensaje; nada se traga en silencio.
func respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrSubOrderNotFound),
		errors.Is(err, service.ErrAddressNotFound),
		errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotBusinessUser):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrGatewayUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, service.ErrGatewayNotConfigured):
		status = http.StatusInternalServerError
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrNoDeliveryDates),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrFinalState),
		errors.Is(err, service.ErrNotRecurring),
		errors.Is(err, service.ErrDeliveredSubOrder),
		errors.Is(err, service.ErrInvalidTotal),
		errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrPaymentFinal),
		errors.Is(err, service.ErrNotCODPayment),
		errors.Is(err, service.ErrInvalidVariation),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrQuoteNotAllowed),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrUnknownWeekday),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
