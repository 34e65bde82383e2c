// dto.go
package dto

import (
	"time"

	"freshbasket-backend/internal/model"
)

// ---- Auth ----

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

type UserSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	IsBusiness bool   `json:"isBusiness"`
}

type AddAddressRequest struct {
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required"`
}

// ---- Carrito ----

type AddToCartRequest struct {
	ProductID      string `json:"productId" binding:"required"`
	VariationIndex int    `json:"variationIndex"`
	Quantity       int    `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// ---- Órdenes ----

// Las fechas viajan como "2006-01-02"; el service las parsea y valida.
type CreateOrderRequest struct {
	AddressID   string   `json:"addressId" binding:"required"`
	IsRecurring bool     `json:"isRecurring"`
	Schedule    []string `json:"schedule"`
	StartDate   string   `json:"startDate" binding:"required"`
	EndDate     string   `json:"endDate"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ---- Pagos ----

type CreateGatewayOrderRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// CreateCheckoutRequest comparte forma con CreateOrderRequest: mismo
// carrito, misma dirección, mismos parámetros de recurrencia.
type CreateCheckoutRequest struct {
	AddressID   string   `json:"addressId" binding:"required"`
	IsRecurring bool     `json:"isRecurring"`
	Schedule    []string `json:"schedule"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
	RazorpaySignature string `json:"razorpaySignature" binding:"required"`
	PaymentID         string `json:"paymentId" binding:"required"`
}

type RecordCODPaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type UpdateCODStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GatewayOrderResponse es lo que el front necesita para abrir el
// widget de pago: la orden de la pasarela más nuestro paymentId.
type GatewayOrderResponse struct {
	OrderID   string `json:"orderId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaymentID string `json:"paymentId"`
}

type VerifyPaymentResponse struct {
	Message string         `json:"message"`
	Payment *model.Payment `json:"payment"`
	Order   *model.Order   `json:"order,omitempty"`
}

// ---- Pedidos mayoristas ----

type CreateBusinessOrderRequest struct {
	AddressID string `json:"addressId" binding:"required"`
}

type SendQuoteRequest struct {
	FinalAmount float64 `json:"finalAmount" binding:"required"`
}

// ---- Estadísticas ----

type StatsResponse struct {
	Users struct {
		Total         int64 `json:"total"`
		BusinessUsers int64 `json:"businessUsers"`
	} `json:"users"`
	Inventory struct {
		Products int64 `json:"products"`
	} `json:"inventory"`
	Orders struct {
		Total      int64 `json:"total"`
		Scheduled  int64 `json:"scheduled"`
		Processing int64 `json:"processing"`
		Delivered  int64 `json:"delivered"`
		Canceled   int64 `json:"canceled"`
	} `json:"orders"`
	BusinessOrders struct {
		Total        int64   `json:"total"`
		QuotedAmount float64 `json:"quotedAmount"`
	} `json:"businessOrders"`
	Finance struct {
		TotalIncome float64 `json:"totalIncome"`
	} `json:"finance"`
}

// ---- Eventos ----

// OrderPlacedEvent es el mensaje fanout que consumen otros servicios
// cuando una orden queda materializada.
type OrderPlacedEvent struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	Total       float64   `json:"total"`
	IsRecurring bool      `json:"isRecurring"`
	Deliveries  int       `json:"deliveries"`
	PlacedAt    time.Time `json:"placedAt"`
}
