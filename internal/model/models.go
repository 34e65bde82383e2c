// models.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variation es la presentación concreta de un producto (peso/precio/unidades).
// Se copia entera dentro del carrito y de la orden: el precio queda congelado
// al momento de agregar, no se relee del catálogo.
type Variation struct {
	Weight string  `bson:"weight" json:"weight"`
	Price  float64 `bson:"price" json:"price"`
	Pcs    int     `bson:"pcs" json:"pcs"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Images      []string           `bson:"images" json:"images"`
	CategoryID  primitive.ObjectID `bson:"category_id" json:"categoryId"`
	Description string             `bson:"description" json:"description"`
	Variations  []Variation        `bson:"variations" json:"variations"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Address es una dirección guardada del usuario. Las órdenes copian
// los campos, nunca referencian: editar la libreta no toca órdenes viejas.
type Address struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Address string             `bson:"address" json:"address"`
	City    string             `bson:"city" json:"city"`
	State   string             `bson:"state" json:"state"`
	Pincode string             `bson:"pincode" json:"pincode"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone" json:"phone"`
	PasswordHash string             `bson:"password" json:"-"`
	IsBusiness   bool               `bson:"is_business" json:"isBusiness"`
	SavedAddress []Address          `bson:"saved_address" json:"savedAddress"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (u *User) AddressByID(id primitive.ObjectID) *Address {
	for i := range u.SavedAddress {
		if u.SavedAddress[i].ID == id {
			return &u.SavedAddress[i]
		}
	}
	return nil
}

type Admin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
}

type CartItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	Variation Variation          `bson:"variation" json:"variation"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	Total     float64            `bson:"total" json:"total"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// RecomputeTotal suma precio × cantidad de cada ítem.
func (c *Cart) RecomputeTotal() {
	total := 0.0
	for _, it := range c.Items {
		total += it.Variation.Price * float64(it.Quantity)
	}
	c.Total = total
}

// ShippingAddress es la copia desnormalizada que viaja con la orden.
type ShippingAddress struct {
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Pincode string `bson:"pincode" json:"pincode"`
}

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	Variation Variation          `bson:"variation" json:"variation"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// SubOrder es una entrega individual dentro de una orden. Para órdenes no
// recurrentes hay exactamente una, con fecha igual al startDate.
type SubOrder struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DeliveryDate time.Time          `bson:"delivery_date" json:"deliveryDate"`
	Status       SubOrderStatus     `bson:"status" json:"status"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingAddress ShippingAddress    `bson:"shipping_address" json:"shippingAddress"`
	IsRecurring     bool               `bson:"is_recurring" json:"isRecurring"`
	StartDate       time.Time          `bson:"start_date" json:"startDate"`
	EndDate         *time.Time         `bson:"end_date,omitempty" json:"endDate,omitempty"`
	Schedule        []string           `bson:"schedule" json:"schedule"`
	RecurringOrders []SubOrder         `bson:"recurring_orders" json:"recurringOrders"`
	Total           float64            `bson:"total" json:"total"`
	PaymentMethod   PaymentMethod      `bson:"payment_method" json:"paymentMethod"`
	PaymentStatus   OrderPaymentStatus `bson:"payment_status" json:"paymentStatus"`
	Status          OrderStatus        `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (o *Order) SubOrderByID(id primitive.ObjectID) *SubOrder {
	for i := range o.RecurringOrders {
		if o.RecurringOrders[i].ID == id {
			return &o.RecurringOrders[i]
		}
	}
	return nil
}

// Checkout es el registro provisional previo al pago por pasarela.
// Guarda todo lo necesario para materializar la orden cuando el pago
// se confirme. Se consume exactamente una vez.
type Checkout struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"userId"`
	CartID          primitive.ObjectID `bson:"cart_id" json:"cartId"`
	ShippingAddress ShippingAddress    `bson:"shipping_address" json:"shippingAddress"`
	IsRecurring     bool               `bson:"is_recurring" json:"isRecurring"`
	StartDate       time.Time          `bson:"start_date" json:"startDate"`
	EndDate         *time.Time         `bson:"end_date,omitempty" json:"endDate,omitempty"`
	Schedule        []string           `bson:"schedule" json:"schedule"`
	Total           float64            `bson:"total" json:"total"`
	PaymentStatus   CheckoutState      `bson:"payment_status" json:"paymentStatus"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Payment registra un intento de pago. Exactamente uno de OrderID o
// CheckoutID viene poblado al crearse; en el flujo checkout-first el
// OrderID se rellena cuando la orden se materializa.
type Payment struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderID           *primitive.ObjectID `bson:"order_id,omitempty" json:"orderId,omitempty"`
	CheckoutID        *primitive.ObjectID `bson:"checkout_id,omitempty" json:"checkoutId,omitempty"`
	UserID            primitive.ObjectID  `bson:"user_id" json:"userId"`
	Amount            float64             `bson:"amount" json:"amount"`
	PaymentMethod     PaymentMethod       `bson:"payment_method" json:"paymentMethod"`
	Status            PaymentState        `bson:"status" json:"status"`
	RazorpayOrderID   string              `bson:"razorpay_order_id,omitempty" json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string              `bson:"razorpay_payment_id,omitempty" json:"razorpayPaymentId,omitempty"`
	RazorpaySignature string              `bson:"razorpay_signature,omitempty" json:"razorpaySignature,omitempty"`
	PaidAt            *time.Time          `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	CreatedAt         time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updated_at" json:"updatedAt"`
}

type BusinessOrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// BusinessOrder es el pedido mayorista: sin precio al crearse,
// el monto lo fija el admin al enviar la cotización.
type BusinessOrder struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID  `bson:"user_id" json:"userId"`
	Products        []BusinessOrderItem `bson:"products" json:"products"`
	ShippingAddress ShippingAddress     `bson:"shipping_address" json:"shippingAddress"`
	IsQuoteSent     bool                `bson:"is_quote_sent" json:"isQuoteSent"`
	FinalAmount     *float64            `bson:"final_amount,omitempty" json:"finalAmount,omitempty"`
	Status          BusinessOrderStatus `bson:"status" json:"status"`
	CreatedAt       time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updated_at" json:"updatedAt"`
}
