package service_test

import (
	"context"
	"sync"

	"freshbasket-backend/internal/dto"
	"freshbasket-backend/internal/model"
	"freshbasket-backend/internal/razorpay"
	"freshbasket-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dobles en memoria para todos los repositorios. Mantienen la misma
// semántica que los repos Mongo: ErrNotFound, ids asignados en Create.

type memOrders struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*model.Order
}

func newMemOrders() *memOrders {
	return &memOrders{byID: map[primitive.ObjectID]*model.Order{}}
}

func (m *memOrders) Create(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = primitive.NewObjectID()
	for i := range o.RecurringOrders {
		if o.RecurringOrders[i].ID.IsZero() {
			o.RecurringOrders[i].ID = primitive.NewObjectID()
		}
	}
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id primitive.ObjectID) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) FindByUserID(_ context.Context, userID primitive.ObjectID) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Order
	for _, o := range m.byID {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memOrders) FindAll(_ context.Context) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Order
	for _, o := range m.byID {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memOrders) Save(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[o.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

type memCarts struct {
	mu        sync.Mutex
	byID      map[primitive.ObjectID]*model.Cart
	findErr   error
	deleteErr error
}

func newMemCarts() *memCarts {
	return &memCarts{byID: map[primitive.ObjectID]*model.Cart{}}
}

func (m *memCarts) Create(_ context.Context, c *model.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = primitive.NewObjectID()
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCarts) FindByID(_ context.Context, id primitive.ObjectID) (*model.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCarts) FindByUserID(_ context.Context, userID primitive.ObjectID) (*model.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, c := range m.byID {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCarts) Save(_ context.Context, c *model.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCarts) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*model.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[primitive.ObjectID]*model.User{}}
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = primitive.NewObjectID()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) Save(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

type memAdmins struct {
	byID map[primitive.ObjectID]*model.Admin
}

func newMemAdmins() *memAdmins {
	return &memAdmins{byID: map[primitive.ObjectID]*model.Admin{}}
}

func (m *memAdmins) add(a *model.Admin) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	m.byID[a.ID] = a
}

func (m *memAdmins) FindByID(_ context.Context, id primitive.ObjectID) (*model.Admin, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (m *memAdmins) FindByEmail(_ context.Context, email string) (*model.Admin, error) {
	for _, a := range m.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memProducts struct {
	byID map[primitive.ObjectID]*model.Product
}

func newMemProducts() *memProducts {
	return &memProducts{byID: map[primitive.ObjectID]*model.Product{}}
}

func (m *memProducts) add(p *model.Product) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.byID[p.ID] = p
}

func (m *memProducts) FindByID(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

type memPayments struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*model.Payment
}

func newMemPayments() *memPayments {
	return &memPayments{byID: map[primitive.ObjectID]*model.Payment{}}
}

func (m *memPayments) Create(_ context.Context, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPayments) FindByID(_ context.Context, id primitive.ObjectID) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPayments) FindAll(_ context.Context) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.byID {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPayments) Save(_ context.Context, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

type memCheckouts struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*model.Checkout
}

func newMemCheckouts() *memCheckouts {
	return &memCheckouts{byID: map[primitive.ObjectID]*model.Checkout{}}
}

func (m *memCheckouts) Create(_ context.Context, c *model.Checkout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = primitive.NewObjectID()
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCheckouts) FindByID(_ context.Context, id primitive.ObjectID) (*model.Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCheckouts) Save(_ context.Context, c *model.Checkout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

type memBusinessOrders struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*model.BusinessOrder
}

func newMemBusinessOrders() *memBusinessOrders {
	return &memBusinessOrders{byID: map[primitive.ObjectID]*model.BusinessOrder{}}
}

func (m *memBusinessOrders) Create(_ context.Context, o *model.BusinessOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = primitive.NewObjectID()
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memBusinessOrders) FindByID(_ context.Context, id primitive.ObjectID) (*model.BusinessOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memBusinessOrders) FindByUserID(_ context.Context, userID primitive.ObjectID) ([]*model.BusinessOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.BusinessOrder
	for _, o := range m.byID {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBusinessOrders) FindAll(_ context.Context) ([]*model.BusinessOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.BusinessOrder
	for _, o := range m.byID {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memBusinessOrders) Save(_ context.Context, o *model.BusinessOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[o.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

// fakeGateway implementa service.Gateway para los tests, sin salir a la red.
type fakeGateway struct {
	CreateOrderFunc     func(ctx context.Context, amount int64, currency, receipt string) (*razorpay.GatewayOrder, error)
	VerifySignatureFunc func(orderID, paymentID, signature string) bool

	createdAmounts  []int64
	createdReceipts []string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*razorpay.GatewayOrder, error) {
	g.createdAmounts = append(g.createdAmounts, amount)
	g.createdReceipts = append(g.createdReceipts, receipt)
	if g.CreateOrderFunc != nil {
		return g.CreateOrderFunc(ctx, amount, currency, receipt)
	}
	return &razorpay.GatewayOrder{ID: "order_gw_test", Amount: amount, Currency: currency}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	if g.VerifySignatureFunc != nil {
		return g.VerifySignatureFunc(orderID, paymentID, signature)
	}
	return true
}

// recordingPublisher captura los eventos emitidos.
type recordingPublisher struct {
	events []dto.OrderPlacedEvent
}

func (p *recordingPublisher) OrderPlaced(_ context.Context, ev dto.OrderPlacedEvent) {
	p.events = append(p.events, ev)
}
