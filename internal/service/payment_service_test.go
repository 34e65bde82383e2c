package service_test

import (
	"context"
	"errors"
	"testing"

	"freshbasket-backend/internal/dto"
	"freshbasket-backend/internal/model"
	"freshbasket-backend/internal/razorpay"
	"freshbasket-backend/internal/repository"
	"freshbasket-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type paymentFixture struct {
	payments  *memPayments
	orders    *memOrders
	checkouts *memCheckouts
	carts     *memCarts
	users     *memUsers
	gateway   *fakeGateway
	events    *recordingPublisher
	svc       *service.PaymentService

	userID    primitive.ObjectID
	addressID primitive.ObjectID
	cartID    primitive.ObjectID
}

// newPaymentFixture deja un usuario con dirección y un carrito de 200
// (2 × 100) listo para pagar.
func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	ctx := context.Background()

	payments := newMemPayments()
	orders := newMemOrders()
	checkouts := newMemCheckouts()
	carts := newMemCarts()
	users := newMemUsers()
	gateway := &fakeGateway{}
	events := &recordingPublisher{}

	addressID := primitive.NewObjectID()
	user := &model.User{
		Name:  "Ravi",
		Email: "ravi@example.com",
		SavedAddress: []model.Address{{
			ID:      addressID,
			Address: "4 Park St",
			City:    "Kolkata",
			State:   "WB",
			Pincode: "700016",
		}},
	}
	require.NoError(t, users.Create(ctx, user))

	cart := &model.Cart{
		UserID: user.ID,
		Items: []model.CartItem{{
			ID:        primitive.NewObjectID(),
			ProductID: primitive.NewObjectID(),
			Variation: model.Variation{Weight: "1kg", Price: 100},
			Quantity:  2,
		}},
	}
	cart.RecomputeTotal()
	require.NoError(t, carts.Create(ctx, cart))

	return &paymentFixture{
		payments:  payments,
		orders:    orders,
		checkouts: checkouts,
		carts:     carts,
		users:     users,
		gateway:   gateway,
		events:    events,
		svc:       service.NewPaymentService(payments, orders, checkouts, carts, users, gateway, events),
		userID:    user.ID,
		addressID: addressID,
		cartID:    cart.ID,
	}
}

func (f *paymentFixture) existingOrder(t *testing.T, total float64) *model.Order {
	t.Helper()
	order := &model.Order{
		UserID:        f.userID,
		Total:         total,
		PaymentMethod: model.PaymentRazorpay,
		PaymentStatus: model.OrderPaymentPending,
		Status:        model.OrderPlaced,
	}
	require.NoError(t, f.orders.Create(context.Background(), order))
	return order
}

func TestCreateGatewayOrder(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.existingOrder(t, 400.5)

	resp, err := f.svc.CreateGatewayOrder(context.Background(), f.userID, dto.CreateGatewayOrderRequest{
		OrderID: order.ID.Hex(),
	})
	require.NoError(t, err)

	// Monto en unidades menores, redondeado.
	require.Len(t, f.gateway.createdAmounts, 1)
	assert.Equal(t, int64(40050), f.gateway.createdAmounts[0])
	assert.Equal(t, "order_gw_test", resp.OrderID)
	assert.Equal(t, "INR", resp.Currency)

	// El receipt respeta el límite de 40 caracteres de la pasarela.
	assert.Less(t, len(f.gateway.createdReceipts[0]), 40)

	// Quedó un Payment PENDING apuntando a la orden.
	paymentID, err := primitive.ObjectIDFromHex(resp.PaymentID)
	require.NoError(t, err)
	payment, err := f.payments.FindByID(context.Background(), paymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, payment.Status)
	require.NotNil(t, payment.OrderID)
	assert.Equal(t, order.ID, *payment.OrderID)
	assert.Equal(t, "order_gw_test", payment.RazorpayOrderID)
}

func TestCreateGatewayOrderValidation(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	// Orden ajena.
	foreign := &model.Order{UserID: primitive.NewObjectID(), Total: 100, Status: model.OrderPlaced}
	require.NoError(t, f.orders.Create(ctx, foreign))
	_, err := f.svc.CreateGatewayOrder(ctx, f.userID, dto.CreateGatewayOrderRequest{OrderID: foreign.ID.Hex()})
	assert.ErrorIs(t, err, service.ErrForbidden)

	// Total no positivo.
	zero := f.existingOrder(t, 0)
	_, err = f.svc.CreateGatewayOrder(ctx, f.userID, dto.CreateGatewayOrderRequest{OrderID: zero.ID.Hex()})
	assert.ErrorIs(t, err, service.ErrInvalidTotal)

	// Id ilegible.
	_, err = f.svc.CreateGatewayOrder(ctx, f.userID, dto.CreateGatewayOrderRequest{OrderID: "nope"})
	assert.ErrorIs(t, err, service.ErrOrderNotFound)
}

func TestCreateGatewayOrderDoesNotPersistOnGatewayError(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.existingOrder(t, 100)

	f.gateway.CreateOrderFunc = func(context.Context, int64, string, string) (*razorpay.GatewayOrder, error) {
		return nil, errors.New("timeout")
	}

	_, err := f.svc.CreateGatewayOrder(context.Background(), f.userID, dto.CreateGatewayOrderRequest{
		OrderID: order.ID.Hex(),
	})
	assert.ErrorIs(t, err, service.ErrGatewayUnavailable)

	// Si la pasarela falló, no queda ningún Payment huérfano.
	all, err := f.payments.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateCheckoutNonRecurring(t *testing.T) {
	f := newPaymentFixture(t)

	resp, err := f.svc.CreateCheckout(context.Background(), f.userID, dto.CreateCheckoutRequest{
		AddressID: f.addressID.Hex(),
	})
	require.NoError(t, err)

	// Total del carrito: 2 × 100 = 200 ⇒ 20000 unidades menores.
	require.Len(t, f.gateway.createdAmounts, 1)
	assert.Equal(t, int64(20000), f.gateway.createdAmounts[0])
	assert.Less(t, len(f.gateway.createdReceipts[0]), 40)

	paymentID, err := primitive.ObjectIDFromHex(resp.PaymentID)
	require.NoError(t, err)
	payment, err := f.payments.FindByID(context.Background(), paymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, payment.Status)
	assert.Nil(t, payment.OrderID)
	require.NotNil(t, payment.CheckoutID)

	checkout, err := f.checkouts.FindByID(context.Background(), *payment.CheckoutID)
	require.NoError(t, err)
	assert.Equal(t, model.CheckoutPending, checkout.PaymentStatus)
	assert.Equal(t, 200.0, checkout.Total)
	assert.Equal(t, f.cartID, checkout.CartID)
}

func TestCreateCheckoutRecomputesCorruptTotal(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	// Total guardado corrupto: el respaldo suma los ítems desde cero,
	// sin arrastrar el valor negativo.
	cart, err := f.carts.FindByID(ctx, f.cartID)
	require.NoError(t, err)
	cart.Total = -50
	require.NoError(t, f.carts.Save(ctx, cart))

	_, err = f.svc.CreateCheckout(ctx, f.userID, dto.CreateCheckoutRequest{
		AddressID: f.addressID.Hex(),
	})
	require.NoError(t, err)

	require.Len(t, f.gateway.createdAmounts, 1)
	assert.Equal(t, int64(20000), f.gateway.createdAmounts[0])
}

func TestCreateCheckoutRecurringChargesPerDelivery(t *testing.T) {
	f := newPaymentFixture(t)

	// Lunes y miércoles del 3 al 14 de junio: 4 entregas de 200 cada una.
	_, err := f.svc.CreateCheckout(context.Background(), f.userID, dto.CreateCheckoutRequest{
		AddressID:   f.addressID.Hex(),
		IsRecurring: true,
		Schedule:    []string{"mon", "wed"},
		StartDate:   "2024-06-03",
		EndDate:     "2024-06-14",
	})
	require.NoError(t, err)

	require.Len(t, f.gateway.createdAmounts, 1)
	assert.Equal(t, int64(80000), f.gateway.createdAmounts[0])
}

func TestCreateCheckoutRecurringWithoutDeliveries(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateCheckout(context.Background(), f.userID, dto.CreateCheckoutRequest{
		AddressID:   f.addressID.Hex(),
		IsRecurring: true,
		Schedule:    []string{"sun"},
		StartDate:   "2024-06-03",
		EndDate:     "2024-06-07",
	})
	assert.ErrorIs(t, err, service.ErrNoDeliveryDates)

	// Nada quedó persistido.
	all, err := f.payments.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestVerifyPaymentMaterializesCheckout(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateCheckout(ctx, f.userID, dto.CreateCheckoutRequest{
		AddressID:   f.addressID.Hex(),
		IsRecurring: true,
		Schedule:    []string{"mon", "wed"},
		StartDate:   "2024-06-03",
		EndDate:     "2024-06-14",
	})
	require.NoError(t, err)

	result, err := f.svc.VerifyPayment(ctx, f.userID, dto.VerifyPaymentRequest{
		RazorpayOrderID:   resp.OrderID,
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "firma-válida",
		PaymentID:         resp.PaymentID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Order)

	// La orden nace pagada, con las entregas regeneradas del cronograma
	// congelado.
	order := result.Order
	assert.Equal(t, model.OrderPaymentPaid, order.PaymentStatus)
	assert.Equal(t, model.PaymentRazorpay, order.PaymentMethod)
	assert.Equal(t, model.OrderPlaced, order.Status)
	assert.Equal(t, 800.0, order.Total)
	require.Len(t, order.RecurringOrders, 4)

	// El pago quedó SUCCESS con el orderId rellenado.
	assert.Equal(t, model.PaymentSuccess, result.Payment.Status)
	require.NotNil(t, result.Payment.OrderID)
	assert.Equal(t, order.ID, *result.Payment.OrderID)
	assert.NotNil(t, result.Payment.PaidAt)

	// El carrito se consumió y el checkout cerró.
	_, err = f.carts.FindByID(ctx, f.cartID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	checkout, err := f.checkouts.FindByID(ctx, *result.Payment.CheckoutID)
	require.NoError(t, err)
	assert.Equal(t, model.CheckoutCompleted, checkout.PaymentStatus)

	// Y la materialización emitió el evento.
	require.Len(t, f.events.events, 1)
	assert.Equal(t, order.ID.Hex(), f.events.events[0].OrderID)
}

func TestVerifyPaymentOrderFirst(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	order := f.existingOrder(t, 300)

	resp, err := f.svc.CreateGatewayOrder(ctx, f.userID, dto.CreateGatewayOrderRequest{OrderID: order.ID.Hex()})
	require.NoError(t, err)

	result, err := f.svc.VerifyPayment(ctx, f.userID, dto.VerifyPaymentRequest{
		RazorpayOrderID:   resp.OrderID,
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: "firma-válida",
		PaymentID:         resp.PaymentID,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentSuccess, result.Payment.Status)
	require.NotNil(t, result.Order)
	assert.Equal(t, model.OrderPaymentPaid, result.Order.PaymentStatus)

	saved, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPaymentPaid, saved.PaymentStatus)
}

func TestVerifyPaymentInvalidSignature(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	order := f.existingOrder(t, 300)

	resp, err := f.svc.CreateGatewayOrder(ctx, f.userID, dto.CreateGatewayOrderRequest{OrderID: order.ID.Hex()})
	require.NoError(t, err)

	f.gateway.VerifySignatureFunc = func(string, string, string) bool { return false }

	req := dto.VerifyPaymentRequest{
		RazorpayOrderID:   resp.OrderID,
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: "firma-adulterada",
		PaymentID:         resp.PaymentID,
	}
	_, err = f.svc.VerifyPayment(ctx, f.userID, req)
	assert.ErrorIs(t, err, service.ErrInvalidSignature)

	// El pago quedó FAILED y la orden no se tocó.
	paymentID, _ := primitive.ObjectIDFromHex(resp.PaymentID)
	payment, err := f.payments.FindByID(ctx, paymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, payment.Status)

	saved, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPaymentPending, saved.PaymentStatus)

	// FAILED es terminal: repetir la verificación, incluso con una firma
	// ahora válida, no resucita el pago.
	f.gateway.VerifySignatureFunc = func(string, string, string) bool { return true }
	_, err = f.svc.VerifyPayment(ctx, f.userID, req)
	assert.ErrorIs(t, err, service.ErrPaymentFinal)

	payment, err = f.payments.FindByID(ctx, paymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, payment.Status)
}

func TestVerifyPaymentIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateCheckout(ctx, f.userID, dto.CreateCheckoutRequest{
		AddressID: f.addressID.Hex(),
	})
	require.NoError(t, err)

	req := dto.VerifyPaymentRequest{
		RazorpayOrderID:   resp.OrderID,
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "firma-válida",
		PaymentID:         resp.PaymentID,
	}
	first, err := f.svc.VerifyPayment(ctx, f.userID, req)
	require.NoError(t, err)
	require.NotNil(t, first.Order)

	// Repetir la verificación no crea una segunda orden.
	second, err := f.svc.VerifyPayment(ctx, f.userID, req)
	require.NoError(t, err)
	require.NotNil(t, second.Order)
	assert.Equal(t, first.Order.ID, second.Order.ID)

	all, err := f.orders.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// Y el evento salió una sola vez.
	assert.Len(t, f.events.events, 1)
}

func TestVerifyPaymentRepairsInterruptedMaterialization(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateCheckout(ctx, f.userID, dto.CreateCheckoutRequest{
		AddressID: f.addressID.Hex(),
	})
	require.NoError(t, err)

	// Simula un proceso muerto entre el SUCCESS y la materialización:
	// pago confirmado pero sin orden.
	paymentID, err := primitive.ObjectIDFromHex(resp.PaymentID)
	require.NoError(t, err)
	payment, err := f.payments.FindByID(ctx, paymentID)
	require.NoError(t, err)
	payment.Status = model.PaymentSuccess
	require.NoError(t, f.payments.Save(ctx, payment))

	result, err := f.svc.VerifyPayment(ctx, f.userID, dto.VerifyPaymentRequest{
		RazorpayOrderID:   resp.OrderID,
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "firma-válida",
		PaymentID:         resp.PaymentID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.Equal(t, model.OrderPaymentPaid, result.Order.PaymentStatus)

	saved, err := f.payments.FindByID(ctx, paymentID)
	require.NoError(t, err)
	require.NotNil(t, saved.OrderID)
	assert.Equal(t, result.Order.ID, *saved.OrderID)
}

func TestVerifyPaymentSuccessIsTerminalEvenWithBadSignature(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateCheckout(ctx, f.userID, dto.CreateCheckoutRequest{
		AddressID: f.addressID.Hex(),
	})
	require.NoError(t, err)

	// Pago confirmado pero sin orden, como quedaría tras una caída entre
	// el SUCCESS y la materialización.
	paymentID, err := primitive.ObjectIDFromHex(resp.PaymentID)
	require.NoError(t, err)
	payment, err := f.payments.FindByID(ctx, paymentID)
	require.NoError(t, err)
	payment.Status = model.PaymentSuccess
	require.NoError(t, f.payments.Save(ctx, payment))

	// Aunque la reinvocación traiga una firma que no valida, el pago no
	// puede salir de SUCCESS: la firma ya se aceptó una vez.
	f.gateway.VerifySignatureFunc = func(string, string, string) bool { return false }

	result, err := f.svc.VerifyPayment(ctx, f.userID, dto.VerifyPaymentRequest{
		RazorpayOrderID:   resp.OrderID,
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "firma-adulterada",
		PaymentID:         resp.PaymentID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Order)

	saved, err := f.payments.FindByID(ctx, paymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentSuccess, saved.Status)
	require.NotNil(t, saved.OrderID)
	assert.Equal(t, result.Order.ID, *saved.OrderID)
}

func TestVerifyPaymentRejectsForeignUser(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateCheckout(ctx, f.userID, dto.CreateCheckoutRequest{
		AddressID: f.addressID.Hex(),
	})
	require.NoError(t, err)

	_, err = f.svc.VerifyPayment(ctx, primitive.NewObjectID(), dto.VerifyPaymentRequest{
		RazorpayOrderID:   resp.OrderID,
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "firma-válida",
		PaymentID:         resp.PaymentID,
	})
	assert.ErrorIs(t, err, service.ErrForbidden)

	// El pago quedó intacto.
	paymentID, err := primitive.ObjectIDFromHex(resp.PaymentID)
	require.NoError(t, err)
	payment, err := f.payments.FindByID(ctx, paymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, payment.Status)
}

func TestVerifyPaymentGatewayNotConfigured(t *testing.T) {
	f := newPaymentFixture(t)
	svc := service.NewPaymentService(f.payments, f.orders, f.checkouts, f.carts, f.users, nil, nil)

	_, err := svc.VerifyPayment(context.Background(), primitive.NewObjectID(), dto.VerifyPaymentRequest{
		RazorpayOrderID:   "x",
		RazorpayPaymentID: "y",
		RazorpaySignature: "z",
		PaymentID:         primitive.NewObjectID().Hex(),
	})
	assert.ErrorIs(t, err, service.ErrGatewayNotConfigured)
}

func TestRecordCODPayment(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	order := f.existingOrder(t, 150)

	payment, err := f.svc.RecordCODPayment(ctx, dto.RecordCODPaymentRequest{OrderID: order.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCOD, payment.PaymentMethod)
	assert.Equal(t, model.PaymentPending, payment.Status)
	assert.Equal(t, 150.0, payment.Amount)
	require.NotNil(t, payment.OrderID)
	assert.Equal(t, order.ID, *payment.OrderID)
}

func TestUpdateCODStatus(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	order := f.existingOrder(t, 150)

	payment, err := f.svc.RecordCODPayment(ctx, dto.RecordCODPaymentRequest{OrderID: order.ID.Hex()})
	require.NoError(t, err)

	updated, err := f.svc.UpdateCODStatus(ctx, payment.ID.Hex(), model.PaymentSuccess)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentSuccess, updated.Status)
	assert.NotNil(t, updated.PaidAt)

	// El cobro confirmado marca la orden como pagada.
	saved, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPaymentPaid, saved.PaymentStatus)

	// SUCCESS es terminal.
	_, err = f.svc.UpdateCODStatus(ctx, payment.ID.Hex(), model.PaymentFailed)
	assert.ErrorIs(t, err, service.ErrPaymentFinal)
}

func TestUpdateCODStatusValidation(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	// Estado que no es SUCCESS ni FAILED.
	_, err := f.svc.UpdateCODStatus(ctx, primitive.NewObjectID().Hex(), model.PaymentPending)
	assert.ErrorIs(t, err, service.ErrInvalidStatus)

	// Un pago de pasarela no se actualiza por esta vía.
	order := f.existingOrder(t, 100)
	resp, err := f.svc.CreateGatewayOrder(ctx, f.userID, dto.CreateGatewayOrderRequest{OrderID: order.ID.Hex()})
	require.NoError(t, err)
	_, err = f.svc.UpdateCODStatus(ctx, resp.PaymentID, model.PaymentSuccess)
	assert.ErrorIs(t, err, service.ErrNotCODPayment)
}
