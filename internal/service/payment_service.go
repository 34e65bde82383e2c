package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"freshbasket-backend/internal/dto"
	"freshbasket-backend/internal/model"
	"freshbasket-backend/internal/razorpay"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gateway es la pasarela de pagos vista desde el service. La implementación
// real vive en internal/razorpay; los tests inyectan un doble.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*razorpay.GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

var (
	ErrGatewayNotConfigured = errors.New("pasarela de pago no configurada")
	ErrGatewayUnavailable   = errors.New("la pasarela de pago no respondió")
	ErrInvalidTotal         = errors.New("total inválido")
	ErrInvalidSignature     = errors.New("firma inválida")
	ErrPaymentFinal         = errors.New("el pago ya está en un estado final")
	ErrNotCODPayment        = errors.New("solo se puede actualizar un pago COD")
)

const gatewayCurrency = "INR"

type PaymentService struct {
	payments  PaymentRepository
	orders    OrderRepository
	checkouts CheckoutRepository
	carts     CartRepository
	users     UserRepository
	gateway   Gateway
	events    EventPublisher
}

func NewPaymentService(payments PaymentRepository, orders OrderRepository, checkouts CheckoutRepository,
	carts CartRepository, users UserRepository, gateway Gateway, events EventPublisher) *PaymentService {
	return &PaymentService{
		payments:  payments,
		orders:    orders,
		checkouts: checkouts,
		carts:     carts,
		users:     users,
		gateway:   gateway,
		events:    events,
	}
}

// CreateGatewayOrder abre un intento de pago por pasarela para una orden ya
// existente (flujo order-first).
func (s *PaymentService) CreateGatewayOrder(ctx context.Context, userID primitive.ObjectID, req dto.CreateGatewayOrderRequest) (*dto.GatewayOrderResponse, error) {
	if s.gateway == nil {
		return nil, ErrGatewayNotConfigured
	}

	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	if order.Total <= 0 {
		return nil, ErrInvalidTotal
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, toMinorUnits(order.Total), gatewayCurrency, orderReceipt(orderID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	// La orden de la pasarela existe antes de persistir el Payment que la
	// referencia; nunca al revés.
	payment := &model.Payment{
		OrderID:         &order.ID,
		UserID:          userID,
		Amount:          order.Total,
		PaymentMethod:   model.PaymentRazorpay,
		Status:          model.PaymentPending,
		RazorpayOrderID: gwOrder.ID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &dto.GatewayOrderResponse{
		OrderID:   gwOrder.ID,
		Amount:    gwOrder.Amount,
		Currency:  gwOrder.Currency,
		PaymentID: payment.ID.Hex(),
	}, nil
}

// CreateCheckout inicia el flujo checkout-first: todavía no existe orden,
// se congela el carrito + dirección + cronograma en un Checkout provisional
// y se abre la orden de pasarela por el total a cobrar.
func (s *PaymentService) CreateCheckout(ctx context.Context, userID primitive.ObjectID, req dto.CreateCheckoutRequest) (*dto.GatewayOrderResponse, error) {
	if s.gateway == nil {
		return nil, ErrGatewayNotConfigured
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	addressID, err := primitive.ObjectIDFromHex(req.AddressID)
	if err != nil {
		return nil, ErrAddressNotFound
	}
	selected := user.AddressByID(addressID)
	if selected == nil {
		return nil, ErrAddressNotFound
	}

	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// El total guardado del carrito manda; si falta o está corrupto se
	// recalcula desde cero con Σ precio × cantidad.
	perDelivery := cart.Total
	if perDelivery <= 0 {
		perDelivery = 0
		for _, it := range cart.Items {
			perDelivery += it.Variation.Price * float64(it.Quantity)
		}
	}
	if perDelivery <= 0 {
		return nil, ErrInvalidTotal
	}

	startDate := time.Now().UTC()
	if req.StartDate != "" {
		startDate, err = ParseDate(req.StartDate)
		if err != nil {
			return nil, err
		}
	}
	var endDate *time.Time
	if req.EndDate != "" {
		ed, err := ParseDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		endDate = &ed
	}

	// Para recurrentes se cobra el total por entrega multiplicado por la
	// cantidad de entregas generadas.
	total := perDelivery
	schedule := []string{}
	if req.IsRecurring {
		days, err := ParseSchedule(req.Schedule)
		if err != nil {
			return nil, err
		}
		dates := GenerateDeliveryDates(startDate, endDate, days)
		if len(dates) == 0 {
			return nil, ErrNoDeliveryDates
		}
		total = perDelivery * float64(len(dates))
		schedule = req.Schedule
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, toMinorUnits(total), gatewayCurrency, checkoutReceipt())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	checkout := &model.Checkout{
		UserID:          userID,
		CartID:          cart.ID,
		ShippingAddress: snapshotAddress(selected),
		IsRecurring:     req.IsRecurring,
		StartDate:       startDate,
		EndDate:         endDate,
		Schedule:        schedule,
		Total:           total,
		PaymentStatus:   model.CheckoutPending,
	}
	if err := s.checkouts.Create(ctx, checkout); err != nil {
		return nil, err
	}

	payment := &model.Payment{
		CheckoutID:      &checkout.ID,
		UserID:          userID,
		Amount:          total,
		PaymentMethod:   model.PaymentRazorpay,
		Status:          model.PaymentPending,
		RazorpayOrderID: gwOrder.ID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &dto.GatewayOrderResponse{
		OrderID:   gwOrder.ID,
		Amount:    gwOrder.Amount,
		Currency:  gwOrder.Currency,
		PaymentID: payment.ID.Hex(),
	}, nil
}

// VerifyPayment cierra el protocolo de conciliación:
//  1. firma inválida ⇒ el pago queda FAILED, sin reintento posible;
//  2. firma válida ⇒ primero se persiste SUCCESS (un pago confirmado sin
//     orden es reparable, una orden sin pago confirmado no), después se
//     materializa la orden si el pago venía de un checkout.
//
// Repetir la verificación de un pago ya exitoso con orden materializada es
// un no-op que devuelve lo ya creado; si el proceso murió entre el SUCCESS
// y la materialización, la reinvocación la completa. Solo el dueño del
// pago puede verificarlo.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID primitive.ObjectID, req dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	if s.gateway == nil {
		return nil, ErrGatewayNotConfigured
	}

	paymentID, err := primitive.ObjectIDFromHex(req.PaymentID)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrForbidden
	}

	// FAILED es terminal: ni una firma válida lo resucita.
	if payment.Status == model.PaymentFailed {
		return nil, ErrPaymentFinal
	}

	// SUCCESS también es terminal, así que la firma no se rechequea: ya se
	// aceptó una vez y una reinvocación no puede degradar el pago. Con
	// orden es un no-op idempotente; sin orden el proceso murió entre el
	// SUCCESS y la materialización y la reinvocación la completa.
	if payment.Status == model.PaymentSuccess {
		if payment.OrderID != nil {
			order, err := s.orders.FindByID(ctx, *payment.OrderID)
			if err != nil {
				return nil, err
			}
			return &dto.VerifyPaymentResponse{Message: "pago ya verificado", Payment: payment, Order: order}, nil
		}
		if payment.CheckoutID != nil {
			order, err := s.materializeCheckout(ctx, payment)
			if err != nil {
				return nil, err
			}
			return &dto.VerifyPaymentResponse{Message: "pago verificado", Payment: payment, Order: order}, nil
		}
		return &dto.VerifyPaymentResponse{Message: "pago ya verificado", Payment: payment}, nil
	}

	if !s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		payment.Status = model.PaymentFailed
		if err := s.payments.Save(ctx, payment); err != nil {
			return nil, err
		}
		return nil, ErrInvalidSignature
	}

	// SUCCESS se persiste antes de cualquier materialización dependiente.
	now := time.Now().UTC()
	payment.Status = model.PaymentSuccess
	payment.RazorpayPaymentID = req.RazorpayPaymentID
	payment.RazorpaySignature = req.RazorpaySignature
	payment.PaidAt = &now
	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, err
	}

	if payment.CheckoutID != nil && payment.OrderID == nil {
		order, err := s.materializeCheckout(ctx, payment)
		if err != nil {
			return nil, err
		}
		return &dto.VerifyPaymentResponse{Message: "pago verificado", Payment: payment, Order: order}, nil
	}

	if payment.OrderID != nil {
		order, err := s.orders.FindByID(ctx, *payment.OrderID)
		if err != nil {
			return nil, err
		}
		order.PaymentStatus = model.OrderPaymentPaid
		if err := s.orders.Save(ctx, order); err != nil {
			return nil, err
		}
		return &dto.VerifyPaymentResponse{Message: "pago verificado", Payment: payment, Order: order}, nil
	}

	return &dto.VerifyPaymentResponse{Message: "pago verificado", Payment: payment}, nil
}

var ErrPaymentNotFound = errors.New("pago no encontrado")

// materializeCheckout convierte un Checkout pagado en una Orden definitiva:
// recarga el carrito (que pudo cambiar desde que se inició el checkout),
// regenera las entregas desde los parámetros congelados y deja todo el
// rastro consistente: orden creada, carrito eliminado, checkout Completed,
// payment con orderId rellenado.
func (s *PaymentService) materializeCheckout(ctx context.Context, payment *model.Payment) (*model.Order, error) {
	checkout, err := s.checkouts.FindByID(ctx, *payment.CheckoutID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.FindByID(ctx, checkout.CartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	subOrders, schedule, err := buildSubOrders(checkout.IsRecurring, checkout.StartDate, checkout.EndDate, checkout.Schedule)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		UserID:          checkout.UserID,
		Items:           snapshotCartItems(cart),
		ShippingAddress: checkout.ShippingAddress,
		IsRecurring:     checkout.IsRecurring,
		StartDate:       checkout.StartDate,
		EndDate:         checkout.EndDate,
		Schedule:        schedule,
		RecurringOrders: subOrders,
		Total:           checkout.Total,
		PaymentMethod:   model.PaymentRazorpay,
		PaymentStatus:   model.OrderPaymentPaid,
		Status:          model.OrderPlaced,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.carts.Delete(ctx, cart.ID); err != nil {
		log.Printf("orden %s materializada pero no se pudo eliminar el carrito %s: %v",
			order.ID.Hex(), cart.ID.Hex(), err)
	}

	checkout.PaymentStatus = model.CheckoutCompleted
	if err := s.checkouts.Save(ctx, checkout); err != nil {
		return nil, err
	}

	payment.OrderID = &order.ID
	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.OrderPlaced(ctx, dto.OrderPlacedEvent{
			OrderID:     order.ID.Hex(),
			UserID:      order.UserID.Hex(),
			Total:       order.Total,
			IsRecurring: order.IsRecurring,
			Deliveries:  len(order.RecurringOrders),
			PlacedAt:    order.CreatedAt,
		})
	}
	return order, nil
}

// RecordCODPayment deja asentado un pago contra entrega pendiente.
func (s *PaymentService) RecordCODPayment(ctx context.Context, req dto.RecordCODPaymentRequest) (*model.Payment, error) {
	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		OrderID:       &order.ID,
		UserID:        order.UserID,
		Amount:        order.Total,
		PaymentMethod: model.PaymentCOD,
		Status:        model.PaymentPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// UpdateCODStatus confirma o rechaza un pago contra entrega.
func (s *PaymentService) UpdateCODStatus(ctx context.Context, paymentIDHex string, status model.PaymentState) (*model.Payment, error) {
	if status != model.PaymentSuccess && status != model.PaymentFailed {
		return nil, ErrInvalidStatus
	}

	paymentID, err := primitive.ObjectIDFromHex(paymentIDHex)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.PaymentMethod != model.PaymentCOD {
		return nil, ErrNotCODPayment
	}
	if payment.Status.IsFinal() {
		return nil, ErrPaymentFinal
	}

	payment.Status = status
	if status == model.PaymentSuccess {
		now := time.Now().UTC()
		payment.PaidAt = &now
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, err
	}

	if status == model.PaymentSuccess && payment.OrderID != nil {
		order, err := s.orders.FindByID(ctx, *payment.OrderID)
		if err != nil {
			return nil, err
		}
		order.PaymentStatus = model.OrderPaymentPaid
		if err := s.orders.Save(ctx, order); err != nil {
			return nil, err
		}
	}
	return payment, nil
}

func (s *PaymentService) GetAllPayments(ctx context.Context) ([]*model.Payment, error) {
	return s.payments.FindAll(ctx)
}

func toMinorUnits(total float64) int64 {
	return int64(math.Round(total * 100))
}

// Los receipts de la pasarela admiten hasta 40 caracteres:
// prefijo + id truncado + timestamp queda siempre por debajo.
func orderReceipt(orderID primitive.ObjectID) string {
	return fmt.Sprintf("ord_%s_%d", orderID.Hex()[:12], time.Now().Unix())
}

func checkoutReceipt() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("chk_%s_%d", id[:12], time.Now().Unix())
}
