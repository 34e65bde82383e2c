package service

import (
	"context"
	"errors"
	"log"
	"time"

	"freshbasket-backend/internal/dto"
	"freshbasket-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interfaces que debe implementar repository
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*model.Order, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
	Save(ctx context.Context, o *model.Order) error
}

type CartRepository interface {
	Create(ctx context.Context, c *model.Cart) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Cart, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*model.Cart, error)
	Save(ctx context.Context, c *model.Cart) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Save(ctx context.Context, u *model.User) error
}

type AdminRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Admin, error)
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Payment, error)
	FindAll(ctx context.Context) ([]*model.Payment, error)
	Save(ctx context.Context, p *model.Payment) error
}

type CheckoutRepository interface {
	Create(ctx context.Context, c *model.Checkout) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Checkout, error)
	Save(ctx context.Context, c *model.Checkout) error
}

type BusinessOrderRepository interface {
	Create(ctx context.Context, o *model.BusinessOrder) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.BusinessOrder, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*model.BusinessOrder, error)
	FindAll(ctx context.Context) ([]*model.BusinessOrder, error)
	Save(ctx context.Context, o *model.BusinessOrder) error
}

// EventPublisher emite eventos de dominio. Puede ser nil cuando no hay
// broker configurado; los services toleran esa ausencia.
type EventPublisher interface {
	OrderPlaced(ctx context.Context, ev dto.OrderPlacedEvent)
}

// Errores de negocio exportados (los usa el controller)
var (
	ErrForbidden         = errors.New("forbidden")
	ErrOrderNotFound     = errors.New("orden no encontrada")
	ErrAddressNotFound   = errors.New("dirección no encontrada")
	ErrEmptyCart         = errors.New("el carrito está vacío")
	ErrNoDeliveryDates   = errors.New("el cronograma no genera ninguna entrega")
	ErrInvalidStatus     = errors.New("estado inválido")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrFinalState        = errors.New("la orden está en un estado final")
	ErrNotRecurring      = errors.New("la orden no es recurrente")
	ErrDeliveredSubOrder = errors.New("no se puede cancelar una entrega ya realizada")
)

type OrderService struct {
	orders OrderRepository
	carts  CartRepository
	users  UserRepository
	events EventPublisher
}

func NewOrderService(orders OrderRepository, carts CartRepository, users UserRepository, events EventPublisher) *OrderService {
	return &OrderService{orders: orders, carts: carts, users: users, events: events}
}

// Transiciones permitidas para el estado global de la orden.
// La cancelación va por CancelOrder, no por acá.
var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderPlaced:     {model.OrderProcessing, model.OrderCanceled},
	model.OrderProcessing: {model.OrderDelivered, model.OrderCanceled},
}

// CreateOrder crea una orden COD desde el carrito del usuario.
// El carrito se elimina tras crear la orden; si esa eliminación falla,
// se deja registro para reconciliación manual (nunca se ignora).
func (s *OrderService) CreateOrder(ctx context.Context, userID primitive.ObjectID, req dto.CreateOrderRequest) (*model.Order, error) {
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

	startDate, err := ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	var endDate *time.Time
	if req.EndDate != "" {
		ed, err := ParseDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		endDate = &ed
	}

	subOrders, schedule, err := buildSubOrders(req.IsRecurring, startDate, endDate, req.Schedule)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		UserID:          userID,
		Items:           snapshotCartItems(cart),
		ShippingAddress: snapshotAddress(selected),
		IsRecurring:     req.IsRecurring,
		StartDate:       startDate,
		EndDate:         endDate,
		Schedule:        schedule,
		RecurringOrders: subOrders,
		Total:           cart.Total,
		PaymentMethod:   model.PaymentCOD,
		PaymentStatus:   model.OrderPaymentPending,
		Status:          model.OrderPlaced,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.carts.Delete(ctx, cart.ID); err != nil {
		// La orden ya existe; un carrito viejo colgado se resuelve a mano.
		log.Printf("orden %s creada pero no se pudo eliminar el carrito %s: %v",
			order.ID.Hex(), cart.ID.Hex(), err)
	}

	s.publishOrderPlaced(ctx, order)
	return order, nil
}

// Getters
func (s *OrderService) GetOrder(ctx context.Context, orderID primitive.ObjectID, actorID primitive.ObjectID, isAdmin bool) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != actorID {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID primitive.ObjectID) ([]*model.Order, error) {
	return s.orders.FindByUserID(ctx, userID)
}

func (s *OrderService) GetAllOrders(ctx context.Context) ([]*model.Order, error) {
	return s.orders.FindAll(ctx)
}

// UpdateStatus valida y realiza la transición del estado global (solo admin,
// el router ya lo garantiza).
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, newStatus model.OrderStatus) (*model.Order, error) {
	if !newStatus.IsValid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == newStatus {
		return order, nil
	}
	if order.Status.IsFinal() {
		return nil, ErrFinalState
	}
	if !containsStatus(orderTransitions[order.Status], newStatus) {
		return nil, ErrInvalidTransition
	}

	order.Status = newStatus
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder cancela la orden completa. No toca las sub-órdenes: el estado
// global y el de cada entrega son independientes.
func (s *OrderService) CancelOrder(ctx context.Context, orderID primitive.ObjectID, actorID primitive.ObjectID, isAdmin bool) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != actorID {
		return nil, ErrForbidden
	}
	if order.Status == model.OrderDelivered {
		return nil, ErrFinalState
	}

	order.Status = model.OrderCanceled
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelSubOrder cancela una entrega puntual de una orden recurrente.
// Scheduled|Processing → Canceled; una entrega ya realizada no se cancela.
func (s *OrderService) CancelSubOrder(ctx context.Context, orderID, subOrderID primitive.ObjectID, actorID primitive.ObjectID, isAdmin bool) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsRecurring {
		return nil, ErrNotRecurring
	}
	if !isAdmin && order.UserID != actorID {
		return nil, ErrForbidden
	}

	sub := order.SubOrderByID(subOrderID)
	if sub == nil {
		return nil, ErrSubOrderNotFound
	}
	if sub.Status == model.SubOrderDelivered {
		return nil, ErrDeliveredSubOrder
	}

	sub.Status = model.SubOrderCanceled
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

var ErrSubOrderNotFound = errors.New("entrega no encontrada")

func (s *OrderService) publishOrderPlaced(ctx context.Context, order *model.Order) {
	if s.events == nil {
		return
	}
	s.events.OrderPlaced(ctx, dto.OrderPlacedEvent{
		OrderID:     order.ID.Hex(),
		UserID:      order.UserID.Hex(),
		Total:       order.Total,
		IsRecurring: order.IsRecurring,
		Deliveries:  len(order.RecurringOrders),
		PlacedAt:    order.CreatedAt,
	})
}

// buildSubOrders arma las entregas de la orden: una por fecha generada si es
// recurrente, o una única con fecha startDate si no lo es.
func buildSubOrders(isRecurring bool, startDate time.Time, endDate *time.Time, rawSchedule []string) ([]model.SubOrder, []string, error) {
	if !isRecurring {
		return []model.SubOrder{{DeliveryDate: startDate, Status: model.SubOrderScheduled}}, []string{}, nil
	}

	days, err := ParseSchedule(rawSchedule)
	if err != nil {
		return nil, nil, err
	}
	dates := GenerateDeliveryDates(startDate, endDate, days)
	if len(dates) == 0 {
		return nil, nil, ErrNoDeliveryDates
	}

	subOrders := make([]model.SubOrder, 0, len(dates))
	for _, d := range dates {
		subOrders = append(subOrders, model.SubOrder{DeliveryDate: d, Status: model.SubOrderScheduled})
	}
	return subOrders, rawSchedule, nil
}

func snapshotCartItems(cart *model.Cart) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, model.OrderItem{
			ProductID: it.ProductID,
			Variation: it.Variation,
			Quantity:  it.Quantity,
		})
	}
	return items
}

func snapshotAddress(a *model.Address) model.ShippingAddress {
	return model.ShippingAddress{
		Address: a.Address,
		City:    a.City,
		State:   a.State,
		Pincode: a.Pincode,
	}
}

func containsStatus[T comparable](arr []T, s T) bool {
	for _, v := range arr {
		if v == s {
			return true
		}
	}
	return false
}
