package service

import (
	"context"
	"errors"
	"log"

	"freshbasket-backend/internal/dto"
	"freshbasket-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotBusinessUser = errors.New("usuario no habilitado para pedidos mayoristas")
	ErrInvalidAmount   = errors.New("el monto cotizado debe ser mayor a cero")
	ErrQuoteNotAllowed = errors.New("el pedido no admite cotización en su estado actual")
)

type BusinessOrderService struct {
	orders BusinessOrderRepository
	carts  CartRepository
	users  UserRepository
}

func NewBusinessOrderService(orders BusinessOrderRepository, carts CartRepository, users UserRepository) *BusinessOrderService {
	return &BusinessOrderService{orders: orders, carts: carts, users: users}
}

// Transiciones del pedido mayorista. Canceled es alcanzable desde cualquier
// estado no final vía la propia tabla.
var businessTransitions = map[model.BusinessOrderStatus][]model.BusinessOrderStatus{
	model.BusinessOrderPlaced:     {model.BusinessQuoteSent, model.BusinessOrderCanceled},
	model.BusinessQuoteSent:       {model.BusinessOrderProcessing, model.BusinessOrderCanceled},
	model.BusinessOrderProcessing: {model.BusinessOrderDelivered, model.BusinessOrderCanceled},
}

// Create arma un pedido mayorista desde el carrito de un usuario business.
// Sin precios: el monto lo decide el admin al cotizar.
func (s *BusinessOrderService) Create(ctx context.Context, userID primitive.ObjectID, req dto.CreateBusinessOrderRequest) (*model.BusinessOrder, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsBusiness {
		return nil, ErrNotBusinessUser
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

	products := make([]model.BusinessOrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		products = append(products, model.BusinessOrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	order := &model.BusinessOrder{
		UserID:          userID,
		Products:        products,
		ShippingAddress: snapshotAddress(selected),
		Status:          model.BusinessOrderPlaced,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.carts.Delete(ctx, cart.ID); err != nil {
		log.Printf("pedido mayorista %s creado pero no se pudo eliminar el carrito %s: %v",
			order.ID.Hex(), cart.ID.Hex(), err)
	}
	return order, nil
}

// SendQuote fija el monto final y marca el pedido como cotizado.
func (s *BusinessOrderService) SendQuote(ctx context.Context, orderID primitive.ObjectID, finalAmount float64) (*model.BusinessOrder, error) {
	if finalAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Se puede recotizar mientras el pedido no haya avanzado.
	if order.Status != model.BusinessOrderPlaced && order.Status != model.BusinessQuoteSent {
		return nil, ErrQuoteNotAllowed
	}

	order.FinalAmount = &finalAmount
	order.IsQuoteSent = true
	order.Status = model.BusinessQuoteSent
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *BusinessOrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, newStatus model.BusinessOrderStatus) (*model.BusinessOrder, error) {
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
	if !containsStatus(businessTransitions[order.Status], newStatus) {
		return nil, ErrInvalidTransition
	}

	order.Status = newStatus
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *BusinessOrderService) GetUserOrders(ctx context.Context, userID primitive.ObjectID) ([]*model.BusinessOrder, error) {
	return s.orders.FindByUserID(ctx, userID)
}

func (s *BusinessOrderService) GetAllOrders(ctx context.Context) ([]*model.BusinessOrder, error) {
	return s.orders.FindAll(ctx)
}
