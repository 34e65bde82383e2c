// status.go
package model

// Estados tipados. El origen de datos nunca se confía: cada valor que entra
// por la API o desde Mongo se valida con IsValid antes de usarse.

type OrderStatus string

const (
	OrderPlaced     OrderStatus = "Order Placed"
	OrderProcessing OrderStatus = "Processing"
	OrderCanceled   OrderStatus = "Canceled"
	OrderDelivered  OrderStatus = "Delivered"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPlaced, OrderProcessing, OrderCanceled, OrderDelivered:
		return true
	}
	return false
}

// Estados finales de una orden: no admiten más transiciones.
func (s OrderStatus) IsFinal() bool {
	return s == OrderCanceled || s == OrderDelivered
}

type SubOrderStatus string

const (
	SubOrderScheduled  SubOrderStatus = "Scheduled"
	SubOrderProcessing SubOrderStatus = "Processing"
	SubOrderCanceled   SubOrderStatus = "Canceled"
	SubOrderDelivered  SubOrderStatus = "Delivered"
)

func (s SubOrderStatus) IsValid() bool {
	switch s {
	case SubOrderScheduled, SubOrderProcessing, SubOrderCanceled, SubOrderDelivered:
		return true
	}
	return false
}

func (s SubOrderStatus) IsFinal() bool {
	return s == SubOrderCanceled || s == SubOrderDelivered
}

type PaymentMethod string

const (
	PaymentCOD      PaymentMethod = "COD"
	PaymentRazorpay PaymentMethod = "RAZORPAY"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentCOD || m == PaymentRazorpay
}

// Estado de un intento de pago. SUCCESS y FAILED son terminales:
// un pago nunca sale de esos estados.
type PaymentState string

const (
	PaymentPending PaymentState = "PENDING"
	PaymentSuccess PaymentState = "SUCCESS"
	PaymentFailed  PaymentState = "FAILED"
)

func (s PaymentState) IsValid() bool {
	switch s {
	case PaymentPending, PaymentSuccess, PaymentFailed:
		return true
	}
	return false
}

func (s PaymentState) IsFinal() bool {
	return s == PaymentSuccess || s == PaymentFailed
}

// Estado de pago visto desde la orden (no desde el intento de pago).
type OrderPaymentStatus string

const (
	OrderPaymentPending OrderPaymentStatus = "PENDING"
	OrderPaymentPaid    OrderPaymentStatus = "PAID"
)

// Estado de un checkout provisional.
type CheckoutState string

const (
	CheckoutPending   CheckoutState = "Pending"
	CheckoutCompleted CheckoutState = "Completed"
	CheckoutFailed    CheckoutState = "Failed"
)

type BusinessOrderStatus string

const (
	BusinessOrderPlaced     BusinessOrderStatus = "Order Placed"
	BusinessQuoteSent       BusinessOrderStatus = "Quote Sent"
	BusinessOrderProcessing BusinessOrderStatus = "Processing"
	BusinessOrderCanceled   BusinessOrderStatus = "Canceled"
	BusinessOrderDelivered  BusinessOrderStatus = "Delivered"
)

func (s BusinessOrderStatus) IsValid() bool {
	switch s {
	case BusinessOrderPlaced, BusinessQuoteSent, BusinessOrderProcessing,
		BusinessOrderCanceled, BusinessOrderDelivered:
		return true
	}
	return false
}

func (s BusinessOrderStatus) IsFinal() bool {
	return s == BusinessOrderCanceled || s == BusinessOrderDelivered
}
